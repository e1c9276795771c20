package persistent

import (
	"tradelink/pkg/models"
	"tradelink/services/listing/internal/entity"
)

func ToListingEntity(post *models.Post) *entity.Listing {
	return &entity.Listing{
		ID:           post.ID,
		UserID:       post.UserID,
		Title:        post.Title,
		Keywords:     post.Keywords,
		Price:        post.Price,
		TradeType:    string(post.TradeType),
		DeliveryDate: post.DeliveryDate,
		ExtraInfo:    post.ExtraInfo,
		ViewLimit:    post.ViewLimit,
		ViewCount:    post.ViewCount,
		DealCount:    post.DealCount,
		Status:       string(post.Status),
		ExpireAt:     post.ExpireAt,
		CreatedAt:    post.CreatedAt,
	}
}

func toUnlockRecordEntity(record *models.ViewRecord) *entity.UnlockRecord {
	return &entity.UnlockRecord{
		ID:              record.ID,
		UserID:          record.UserID,
		ListingID:       record.PostID,
		PointsCost:      record.PointsCost,
		ConfirmedDeal:   record.ConfirmedDeal,
		DealConfirmedAt: record.DealConfirmedAt,
		CreatedAt:       record.CreatedAt,
	}
}
