package entity

import "time"

type Wallet struct {
	UserID     string `json:"user_id"`
	Phone      string `json:"phone"`
	Points     int    `json:"points"`
	TotalPosts int    `json:"total_posts"`
	TotalDeals int    `json:"total_deals"`
	DealRate   int    `json:"deal_rate"`
}

type Transaction struct {
	ID           string    `json:"id"`
	ChangeType   string    `json:"change_type"`
	Amount       int       `json:"amount"`
	BalanceAfter int       `json:"balance_after"`
	Description  string    `json:"description"`
	RelatedID    string    `json:"related_id,omitempty"`
	OrderID      string    `json:"order_id,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

type RechargeOrder struct {
	ID            string     `json:"id"`
	OrderNo       string     `json:"order_no"`
	UserID        string     `json:"user_id"`
	Amount        float64    `json:"amount"`
	Points        int        `json:"points"`
	BonusPoints   int        `json:"bonus_points"`
	PaymentMethod string     `json:"payment_method"`
	ProofImageURL string     `json:"proof_image_url,omitempty"`
	Status        string     `json:"status"`
	AdminNote     string     `json:"admin_note,omitempty"`
	ReviewedBy    string     `json:"reviewed_by,omitempty"`
	ReviewedAt    *time.Time `json:"reviewed_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
}
