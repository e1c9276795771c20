package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type UserRole string

const (
	RoleUser  UserRole = "user"
	RoleAdmin UserRole = "admin"
)

type User struct {
	ID         string    `gorm:"type:uuid;primary_key" json:"id"`
	Phone      string    `gorm:"uniqueIndex;not null" json:"phone"`
	WechatID   string    `gorm:"uniqueIndex;not null" json:"wechat_id"`
	InviteCode string    `gorm:"uniqueIndex;not null" json:"invite_code"`
	Password   string    `json:"-"` // set only for admin accounts
	Points     int       `gorm:"default:0" json:"points"`
	TotalPosts int       `gorm:"default:0" json:"total_posts"`
	TotalDeals int       `gorm:"default:0" json:"total_deals"`
	DealRate   int       `gorm:"default:0" json:"deal_rate"`
	Role       UserRole  `gorm:"type:varchar(20);default:'user'" json:"role"`
	IsActive   bool      `gorm:"default:true" json:"is_active"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.New().String()
	}
	return nil
}
