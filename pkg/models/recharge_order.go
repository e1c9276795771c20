package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type OrderStatus string

const (
	OrderStatusPending  OrderStatus = "pending"
	OrderStatusApproved OrderStatus = "approved"
	OrderStatusRejected OrderStatus = "rejected"
)

type PaymentMethod string

const (
	PaymentMethodWechat PaymentMethod = "wechat"
	PaymentMethodAlipay PaymentMethod = "alipay"
)

type RechargeOrder struct {
	ID            string        `gorm:"type:uuid;primary_key" json:"id"`
	OrderNo       string        `gorm:"uniqueIndex;not null" json:"order_no"`
	UserID        string        `gorm:"type:uuid;not null;index" json:"user_id"`
	Amount        float64       `gorm:"not null" json:"amount"`
	Points        int           `gorm:"not null" json:"points"`
	BonusPoints   int           `gorm:"default:0" json:"bonus_points"`
	PaymentMethod PaymentMethod `gorm:"type:varchar(10);not null" json:"payment_method"`
	ProofImageURL string        `json:"proof_image_url,omitempty"`
	Status        OrderStatus   `gorm:"type:varchar(10);default:'pending';index" json:"status"`
	AdminNote     string        `json:"admin_note,omitempty"`
	ReviewedBy    *string       `gorm:"type:uuid" json:"reviewed_by,omitempty"`
	ReviewedAt    *time.Time    `json:"reviewed_at,omitempty"`
	CreatedAt     time.Time     `json:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at"`
}

func (o *RechargeOrder) BeforeCreate(tx *gorm.DB) error {
	if o.ID == "" {
		o.ID = uuid.New().String()
	}
	return nil
}
