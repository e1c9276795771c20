package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type TradeType string

const (
	TradeTypeBuy   TradeType = "buy"
	TradeTypeSell  TradeType = "sell"
	TradeTypeLong  TradeType = "long"
	TradeTypeShort TradeType = "short"
)

type PostStatus string

const (
	PostStatusActive  PostStatus = "active"
	PostStatusOffline PostStatus = "offline"
)

type Post struct {
	ID           string     `gorm:"type:uuid;primary_key" json:"id"`
	UserID       string     `gorm:"type:uuid;not null;index" json:"user_id"`
	Title        string     `gorm:"not null" json:"title"`
	Keywords     string     `gorm:"index" json:"keywords"`
	Price        float64    `gorm:"not null" json:"price"`
	TradeType    TradeType  `gorm:"type:varchar(10);not null;index" json:"trade_type"`
	DeliveryDate *time.Time `json:"delivery_date,omitempty"`
	ExtraInfo    string     `json:"extra_info,omitempty"`
	ViewLimit    int        `gorm:"default:10" json:"view_limit"`
	ViewCount    int        `gorm:"default:0" json:"view_count"`
	DealCount    int        `gorm:"default:0" json:"deal_count"`
	Status       PostStatus `gorm:"type:varchar(10);default:'active';index" json:"status"`
	ExpireAt     time.Time  `gorm:"not null;index" json:"expire_at"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

func (p *Post) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	return nil
}
