package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PointChangeType string

const (
	PointChangeTopUp   PointChangeType = "topup"
	PointChangePublish PointChangeType = "publish"
	PointChangeUnlock  PointChangeType = "unlock"
	PointChangeReward  PointChangeType = "reward"
	PointChangeRefund  PointChangeType = "refund"
)

// PointTransaction is append-only. Amount is signed; BalanceAfter is the
// user's balance immediately after this entry, so the history is a
// verifiable running total.
type PointTransaction struct {
	ID           string          `gorm:"type:uuid;primary_key" json:"id"`
	UserID       string          `gorm:"type:uuid;not null;index" json:"user_id"`
	ChangeType   PointChangeType `gorm:"type:varchar(20);not null" json:"change_type"`
	Amount       int             `gorm:"not null" json:"amount"`
	BalanceAfter int             `gorm:"not null" json:"balance_after"`
	Description  string          `json:"description"`
	RelatedID    *string         `gorm:"type:uuid;index" json:"related_id,omitempty"`
	OrderID      *string         `gorm:"type:uuid;index" json:"order_id,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
}

func (t *PointTransaction) BeforeCreate(tx *gorm.DB) error {
	if t.ID == "" {
		t.ID = uuid.New().String()
	}
	return nil
}
