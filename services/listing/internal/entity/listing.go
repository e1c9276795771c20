package entity

import "time"

type Listing struct {
	ID           string     `json:"id"`
	UserID       string     `json:"user_id"`
	Title        string     `json:"title"`
	Keywords     string     `json:"keywords"`
	Price        float64    `json:"price"`
	TradeType    string     `json:"trade_type"`
	DeliveryDate *time.Time `json:"delivery_date,omitempty"`
	ExtraInfo    string     `json:"extra_info,omitempty"`
	ViewLimit    int        `json:"view_limit"`
	ViewCount    int        `json:"view_count"`
	DealCount    int        `json:"deal_count"`
	Status       string     `json:"status"`
	ExpireAt     time.Time  `json:"expire_at"`
	CreatedAt    time.Time  `json:"created_at"`
}

// ListingDraft is the validated input for a publish; the repository fills in
// the fee, view limit and expiry.
type ListingDraft struct {
	Title        string
	Keywords     string
	Price        float64
	TradeType    string
	DeliveryDate *time.Time
	ExtraInfo    string
}
