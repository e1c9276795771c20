package persistent

import (
	"errors"
	"time"

	"tradelink/pkg/models"
	"tradelink/services/auth/internal/entity"

	"gorm.io/gorm"
)

const (
	otpTTL          = 5 * time.Minute
	otpSendCooldown = 60 * time.Second
	otpMaxAttempts  = 3
)

type OtpRepository interface {
	Issue(phone, code string) error
	Verify(phone, code string) error
}

type otpRepository struct {
	db *gorm.DB
}

func NewOtpRepository(db *gorm.DB) OtpRepository {
	return &otpRepository{db: db}
}

// Issue stores a fresh challenge. A phone with an active unexpired challenge
// created inside the cooldown window is rejected; older active challenges are
// invalidated so only one code per phone can ever verify.
func (r *otpRepository) Issue(phone, code string) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var recent int64
		err := tx.Model(&models.SmsCode{}).
			Where("phone = ? AND status = ? AND created_at > ?", phone, models.SmsCodeActive, time.Now().Add(-otpSendCooldown)).
			Count(&recent).Error
		if err != nil {
			return err
		}
		if recent > 0 {
			return entity.ErrSendCooldown
		}

		err = tx.Model(&models.SmsCode{}).
			Where("phone = ? AND status = ?", phone, models.SmsCodeActive).
			Update("status", models.SmsCodeSpent).Error
		if err != nil {
			return err
		}

		challenge := &models.SmsCode{
			Phone:     phone,
			Code:      code,
			Status:    models.SmsCodeActive,
			ExpiresAt: time.Now().Add(otpTTL),
		}
		return tx.Create(challenge).Error
	})
}

// Verify consumes the active challenge for the phone. The attempts counter is
// checked before it is incremented, so a challenge with 3 recorded failures
// is dead even when the submitted code is correct. A successful match spends
// the challenge immediately; later failures in the caller's flow do not
// revive it.
func (r *otpRepository) Verify(phone, code string) error {
	var challenge models.SmsCode
	err := r.db.
		Where("phone = ? AND status = ?", phone, models.SmsCodeActive).
		Order("created_at DESC").
		First(&challenge).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entity.ErrCodeInvalid
		}
		return err
	}

	if challenge.Attempts >= otpMaxAttempts {
		return entity.ErrTooManyAttempts
	}

	if challenge.Code != code || time.Now().After(challenge.ExpiresAt) {
		if err := r.db.Model(&challenge).Update("attempts", gorm.Expr("attempts + 1")).Error; err != nil {
			return err
		}
		return entity.ErrCodeInvalid
	}

	res := r.db.Model(&models.SmsCode{}).
		Where("id = ? AND status = ?", challenge.ID, models.SmsCodeActive).
		Update("status", models.SmsCodeSpent)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		// Lost the race to a concurrent verify of the same code.
		return entity.ErrCodeInvalid
	}

	return nil
}
