package persistent

import (
	"errors"
	"fmt"
	"time"

	"tradelink/pkg/ledger"
	"tradelink/pkg/models"
	"tradelink/services/listing/internal/entity"

	"gorm.io/gorm"
)

const (
	publishFee       = 10
	defaultViewLimit = 10
	listingLifetime  = 72 * time.Hour
)

type ListingRepository interface {
	Publish(userID string, draft *entity.ListingDraft) (*entity.Listing, error)
	PublishBatch(userID string, drafts []*entity.ListingDraft) ([]*entity.Listing, error)
	GetByID(id string) (*entity.Listing, error)
	SetStatus(listingID, userID string, status models.PostStatus) (*entity.Listing, error)
	Feed(keyword, tradeType string, limit, offset int) ([]*entity.Listing, error)
	GetUserListings(userID string, limit, offset int) ([]*entity.Listing, error)
}

type listingRepository struct {
	db *gorm.DB
}

func NewListingRepository(db *gorm.DB) ListingRepository {
	return &listingRepository{db: db}
}

// Publish inserts the listing and debits the publish fee in one transaction.
// If either step fails nothing is committed, so a charged fee always has a
// live listing behind it.
func (r *listingRepository) Publish(userID string, draft *entity.ListingDraft) (*entity.Listing, error) {
	post := newPostFromDraft(userID, draft)

	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(post).Error; err != nil {
			return err
		}

		if _, err := ledger.Debit(tx, userID, publishFee, models.PointChangePublish, "发布信息扣费", post.ID, ""); err != nil {
			return err
		}

		return bumpTotalPosts(tx, userID, 1)
	})
	if err != nil {
		return nil, err
	}

	return ToListingEntity(post), nil
}

// PublishBatch is all-or-nothing: one aggregate debit for the whole batch and
// a bulk insert, in a single transaction. A balance short of fee*count fails
// the debit and no listing is created.
func (r *listingRepository) PublishBatch(userID string, drafts []*entity.ListingDraft) ([]*entity.Listing, error) {
	if len(drafts) == 0 {
		return nil, fmt.Errorf("empty batch")
	}

	posts := make([]*models.Post, len(drafts))
	for i, draft := range drafts {
		posts[i] = newPostFromDraft(userID, draft)
	}

	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&posts).Error; err != nil {
			return err
		}

		fee := publishFee * len(posts)
		desc := fmt.Sprintf("批量发布 %d 条信息扣费", len(posts))
		if _, err := ledger.Debit(tx, userID, fee, models.PointChangePublish, desc, "", ""); err != nil {
			return err
		}

		return bumpTotalPosts(tx, userID, len(posts))
	})
	if err != nil {
		return nil, err
	}

	listings := make([]*entity.Listing, len(posts))
	for i, post := range posts {
		listings[i] = ToListingEntity(post)
	}
	return listings, nil
}

func (r *listingRepository) GetByID(id string) (*entity.Listing, error) {
	var post models.Post
	if err := r.db.First(&post, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, entity.ErrListingNotFound
		}
		return nil, err
	}
	return ToListingEntity(&post), nil
}

// SetStatus flips the listing offline or back online. Reactivation resets the
// expiry clock; going offline refunds nothing.
func (r *listingRepository) SetStatus(listingID, userID string, status models.PostStatus) (*entity.Listing, error) {
	var post models.Post
	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&post, "id = ?", listingID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return entity.ErrListingNotFound
			}
			return err
		}
		if post.UserID != userID {
			return entity.ErrNotOwner
		}

		updates := map[string]interface{}{"status": status}
		if status == models.PostStatusActive {
			updates["expire_at"] = time.Now().Add(listingLifetime)
		}
		if err := tx.Model(&post).Updates(updates).Error; err != nil {
			return err
		}

		return tx.First(&post, "id = ?", listingID).Error
	})
	if err != nil {
		return nil, err
	}

	return ToListingEntity(&post), nil
}

// Feed returns publicly visible listings: active and not yet expired.
// Staleness is decided at query time, there is no background sweeper.
func (r *listingRepository) Feed(keyword, tradeType string, limit, offset int) ([]*entity.Listing, error) {
	query := r.db.Model(&models.Post{}).
		Where("status = ? AND expire_at > ?", models.PostStatusActive, time.Now())

	if keyword != "" {
		pattern := "%" + keyword + "%"
		query = query.Where("title LIKE ? OR keywords LIKE ?", pattern, pattern)
	}
	if tradeType != "" {
		query = query.Where("trade_type = ?", tradeType)
	}

	var posts []*models.Post
	if err := query.Order("created_at DESC").Limit(limit).Offset(offset).Find(&posts).Error; err != nil {
		return nil, err
	}

	listings := make([]*entity.Listing, len(posts))
	for i, post := range posts {
		listings[i] = ToListingEntity(post)
	}
	return listings, nil
}

func (r *listingRepository) GetUserListings(userID string, limit, offset int) ([]*entity.Listing, error) {
	var posts []*models.Post
	err := r.db.Where("user_id = ?", userID).
		Order("created_at DESC").Limit(limit).Offset(offset).
		Find(&posts).Error
	if err != nil {
		return nil, err
	}

	listings := make([]*entity.Listing, len(posts))
	for i, post := range posts {
		listings[i] = ToListingEntity(post)
	}
	return listings, nil
}

func newPostFromDraft(userID string, draft *entity.ListingDraft) *models.Post {
	return &models.Post{
		UserID:       userID,
		Title:        draft.Title,
		Keywords:     draft.Keywords,
		Price:        draft.Price,
		TradeType:    models.TradeType(draft.TradeType),
		DeliveryDate: draft.DeliveryDate,
		ExtraInfo:    draft.ExtraInfo,
		ViewLimit:    defaultViewLimit,
		Status:       models.PostStatusActive,
		ExpireAt:     time.Now().Add(listingLifetime),
	}
}

func bumpTotalPosts(tx *gorm.DB, userID string, n int) error {
	if err := tx.Model(&models.User{}).
		Where("id = ?", userID).
		Update("total_posts", gorm.Expr("total_posts + ?", n)).Error; err != nil {
		return err
	}
	return recomputeDealRate(tx, userID)
}

// recomputeDealRate keeps deal_rate = total_deals * 100 / total_posts in sync
// after either counter moves.
func recomputeDealRate(tx *gorm.DB, userID string) error {
	return tx.Model(&models.User{}).
		Where("id = ?", userID).
		Update("deal_rate", gorm.Expr(
			"CASE WHEN total_posts = 0 THEN 0 ELSE total_deals * 100 / total_posts END",
		)).Error
}
