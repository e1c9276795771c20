package persistent

import (
	"tradelink/pkg/models"
	"tradelink/services/listing/internal/entity"

	"gorm.io/gorm"
)

type AnnouncementRepository interface {
	ListActive() ([]*entity.Announcement, error)
}

type announcementRepository struct {
	db *gorm.DB
}

func NewAnnouncementRepository(db *gorm.DB) AnnouncementRepository {
	return &announcementRepository{db: db}
}

func (r *announcementRepository) ListActive() ([]*entity.Announcement, error) {
	var rows []*models.Announcement
	err := r.db.Where("is_active = ?", true).
		Order("priority DESC, created_at DESC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	announcements := make([]*entity.Announcement, len(rows))
	for i, row := range rows {
		announcements[i] = &entity.Announcement{
			ID:        row.ID,
			Title:     row.Title,
			Content:   row.Content,
			Priority:  row.Priority,
			CreatedAt: row.CreatedAt,
		}
	}
	return announcements, nil
}
