package persistent

import (
	"errors"
	"time"

	"tradelink/pkg/ledger"
	"tradelink/pkg/models"
	"tradelink/services/listing/internal/entity"

	"gorm.io/gorm"
)

const unlockFee = 1

type UnlockRepository interface {
	Unlock(userID, listingID string) (*entity.UnlockResult, error)
	ConfirmDeal(recordID, userID string) (*entity.UnlockRecord, error)
	GetUserUnlocks(userID string, limit, offset int) ([]*entity.UnlockRecord, error)
}

type unlockRepository struct {
	db *gorm.DB
}

func NewUnlockRepository(db *gorm.DB) UnlockRepository {
	return &unlockRepository{db: db}
}

// Unlock charges for and records a contact view. The whole mutation runs in
// one transaction: the view-count increment is conditional on the limit, the
// debit is conditional on the balance, and the (user_id, post_id) unique
// index backstops concurrent unlocks — the loser's insert fails, its debit
// rolls back, and the caller gets the existing record at zero charge.
func (r *unlockRepository) Unlock(userID, listingID string) (*entity.UnlockResult, error) {
	var post models.Post
	if err := r.db.First(&post, "id = ?", listingID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, entity.ErrListingNotFound
		}
		return nil, err
	}
	if post.UserID == userID {
		return nil, entity.ErrSelfUnlock
	}

	if result, err := r.existingUnlock(userID, listingID, &post); err == nil {
		return result, nil
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	record := &models.ViewRecord{
		UserID:     userID,
		PostID:     listingID,
		PointsCost: unlockFee,
	}

	err := r.db.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Post{}).
			Where("id = ? AND view_count < view_limit", listingID).
			Update("view_count", gorm.Expr("view_count + 1"))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return entity.ErrViewLimitReached
		}

		if _, err := ledger.Debit(tx, userID, unlockFee, models.PointChangeUnlock, "查看联系方式扣费", listingID, ""); err != nil {
			return err
		}

		return tx.Create(record).Error
	})
	if err != nil {
		if errors.Is(err, entity.ErrViewLimitReached) || errors.Is(err, ledger.ErrInsufficientFunds) {
			return nil, err
		}
		// The insert may have lost a race with a concurrent unlock; if a
		// record exists now, hand back the paid-for contact instead of an
		// error.
		if result, raceErr := r.existingUnlock(userID, listingID, &post); raceErr == nil {
			return result, nil
		}
		return nil, err
	}

	seller, err := r.sellerContact(post.UserID)
	if err != nil {
		return nil, err
	}

	return &entity.UnlockResult{
		RecordID:       record.ID,
		ListingID:      listingID,
		SellerWechatID: seller.WechatID,
		SellerPhone:    seller.Phone,
		PointsCost:     unlockFee,
	}, nil
}

// ConfirmDeal marks the unlock as having led to a deal, exactly once, and
// bumps the listing and seller counters in the same transaction.
func (r *unlockRepository) ConfirmDeal(recordID, userID string) (*entity.UnlockRecord, error) {
	var record models.ViewRecord
	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&record, "id = ?", recordID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return entity.ErrUnlockNotFound
			}
			return err
		}
		if record.UserID != userID {
			return entity.ErrNotOwner
		}

		now := time.Now()
		res := tx.Model(&models.ViewRecord{}).
			Where("id = ? AND confirmed_deal = ?", recordID, false).
			Updates(map[string]interface{}{
				"confirmed_deal":    true,
				"deal_confirmed_at": now,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return entity.ErrAlreadyConfirmed
		}

		var post models.Post
		if err := tx.First(&post, "id = ?", record.PostID).Error; err != nil {
			return err
		}
		if err := tx.Model(&post).
			Update("deal_count", gorm.Expr("deal_count + 1")).Error; err != nil {
			return err
		}

		if err := tx.Model(&models.User{}).
			Where("id = ?", post.UserID).
			Update("total_deals", gorm.Expr("total_deals + 1")).Error; err != nil {
			return err
		}
		if err := recomputeDealRate(tx, post.UserID); err != nil {
			return err
		}

		return tx.First(&record, "id = ?", recordID).Error
	})
	if err != nil {
		return nil, err
	}

	return toUnlockRecordEntity(&record), nil
}

func (r *unlockRepository) GetUserUnlocks(userID string, limit, offset int) ([]*entity.UnlockRecord, error) {
	var records []*models.ViewRecord
	err := r.db.Where("user_id = ?", userID).
		Order("created_at DESC").Limit(limit).Offset(offset).
		Find(&records).Error
	if err != nil {
		return nil, err
	}

	unlocks := make([]*entity.UnlockRecord, len(records))
	for i, record := range records {
		unlocks[i] = toUnlockRecordEntity(record)
	}
	return unlocks, nil
}

func (r *unlockRepository) existingUnlock(userID, listingID string, post *models.Post) (*entity.UnlockResult, error) {
	var record models.ViewRecord
	if err := r.db.First(&record, "user_id = ? AND post_id = ?", userID, listingID).Error; err != nil {
		return nil, err
	}

	seller, err := r.sellerContact(post.UserID)
	if err != nil {
		return nil, err
	}

	return &entity.UnlockResult{
		RecordID:        record.ID,
		ListingID:       listingID,
		SellerWechatID:  seller.WechatID,
		SellerPhone:     seller.Phone,
		PointsCost:      0,
		AlreadyUnlocked: true,
	}, nil
}

func (r *unlockRepository) sellerContact(sellerID string) (*models.User, error) {
	var seller models.User
	if err := r.db.Select("phone", "wechat_id").First(&seller, "id = ?", sellerID).Error; err != nil {
		return nil, err
	}
	return &seller, nil
}
