package persistent

import (
	"tradelink/pkg/models"
	"tradelink/services/auth/internal/entity"
)

func ToUserEntity(m *models.User) *entity.User {
	if m == nil {
		return nil
	}

	return &entity.User{
		ID:         m.ID,
		Phone:      m.Phone,
		WechatID:   m.WechatID,
		InviteCode: m.InviteCode,
		Points:     m.Points,
		TotalPosts: m.TotalPosts,
		TotalDeals: m.TotalDeals,
		DealRate:   m.DealRate,
		Role:       string(m.Role),
		IsActive:   m.IsActive,
		CreatedAt:  m.CreatedAt,
		UpdatedAt:  m.UpdatedAt,
	}
}
