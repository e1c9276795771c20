package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type SmsCodeStatus string

const (
	SmsCodeActive SmsCodeStatus = "active"
	SmsCodeSpent  SmsCodeStatus = "spent"
)

type SmsCode struct {
	ID        string        `gorm:"type:uuid;primary_key" json:"id"`
	Phone     string        `gorm:"not null;index" json:"phone"`
	Code      string        `gorm:"not null" json:"-"`
	Attempts  int           `gorm:"default:0" json:"attempts"`
	Status    SmsCodeStatus `gorm:"type:varchar(10);default:'active';index" json:"status"`
	ExpiresAt time.Time     `gorm:"not null" json:"expires_at"`
	CreatedAt time.Time     `json:"created_at"`
}

func (s *SmsCode) BeforeCreate(tx *gorm.DB) error {
	if s.ID == "" {
		s.ID = uuid.New().String()
	}
	return nil
}
