package entity

import "time"

type User struct {
	ID         string    `json:"id"`
	Phone      string    `json:"phone"`
	WechatID   string    `json:"wechat_id"`
	InviteCode string    `json:"invite_code"`
	Points     int       `json:"points"`
	TotalPosts int       `json:"total_posts"`
	TotalDeals int       `json:"total_deals"`
	DealRate   int       `json:"deal_rate"`
	Role       string    `json:"role"`
	IsActive   bool      `json:"is_active"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}
