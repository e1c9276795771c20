package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ViewRecord marks that a user paid to see a post's contact info.
// The (user_id, post_id) unique index enforces at-most-once charging.
type ViewRecord struct {
	ID              string     `gorm:"type:uuid;primary_key" json:"id"`
	UserID          string     `gorm:"type:uuid;not null;uniqueIndex:idx_view_user_post" json:"user_id"`
	PostID          string     `gorm:"type:uuid;not null;uniqueIndex:idx_view_user_post" json:"post_id"`
	PointsCost      int        `gorm:"default:1" json:"points_cost"`
	ConfirmedDeal   bool       `gorm:"default:false" json:"confirmed_deal"`
	DealConfirmedAt *time.Time `json:"deal_confirmed_at,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
}

func (v *ViewRecord) BeforeCreate(tx *gorm.DB) error {
	if v.ID == "" {
		v.ID = uuid.New().String()
	}
	return nil
}
