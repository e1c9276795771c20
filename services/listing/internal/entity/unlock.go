package entity

import "time"

// UnlockResult carries the seller contact revealed by an unlock. PointsCost
// is 0 when the caller had already paid for this listing.
type UnlockResult struct {
	RecordID        string `json:"record_id"`
	ListingID       string `json:"listing_id"`
	SellerWechatID  string `json:"seller_wechat_id"`
	SellerPhone     string `json:"seller_phone"`
	PointsCost      int    `json:"points_cost"`
	AlreadyUnlocked bool   `json:"already_unlocked"`
}

type UnlockRecord struct {
	ID              string     `json:"id"`
	UserID          string     `json:"user_id"`
	ListingID       string     `json:"listing_id"`
	PointsCost      int        `json:"points_cost"`
	ConfirmedDeal   bool       `json:"confirmed_deal"`
	DealConfirmedAt *time.Time `json:"deal_confirmed_at,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
}
