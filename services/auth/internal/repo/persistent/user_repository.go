package persistent

import (
	"errors"
	"strings"

	"tradelink/pkg/ledger"
	"tradelink/pkg/models"
	"tradelink/services/auth/internal/entity"

	"gorm.io/gorm"
)

const (
	registerBonus = 100
	referredBonus = 30
	inviterBonus  = 10
)

type UserRepository interface {
	RegisterUser(phone, wechatID, inviteCode, inviterID string) (*entity.User, error)
	GetByID(id string) (*entity.User, error)
	GetByPhone(phone string) (*entity.User, error)
	GetByWechatID(wechatID string) (*entity.User, error)
	GetByInviteCode(code string) (*entity.User, error)
	GetAdminByPhone(phone string) (*models.User, error)
	InviteCodeExists(code string) (bool, error)
}

type userRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

// RegisterUser creates the user row, grants the registration bonus and, when
// inviterID is set, fans out the referral bonuses — all in one transaction so
// a failure mid-bonus leaves no partially credited account.
func (r *userRepository) RegisterUser(phone, wechatID, inviteCode, inviterID string) (*entity.User, error) {
	user := &models.User{
		Phone:      phone,
		WechatID:   wechatID,
		InviteCode: inviteCode,
		Points:     0,
		Role:       models.RoleUser,
		IsActive:   true,
	}

	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(user).Error; err != nil {
			return translateUserConflict(err)
		}

		if _, err := ledger.Credit(tx, user.ID, registerBonus, models.PointChangeReward, "新用户注册奖励", "", ""); err != nil {
			return err
		}

		if inviterID != "" {
			if _, err := ledger.Credit(tx, user.ID, referredBonus, models.PointChangeReward, "被邀请奖励", inviterID, ""); err != nil {
				return err
			}
			if _, err := ledger.Credit(tx, inviterID, inviterBonus, models.PointChangeReward, "邀请用户 "+phone+" 注册奖励", user.ID, ""); err != nil {
				return err
			}
		}

		return tx.First(user, "id = ?", user.ID).Error
	})
	if err != nil {
		return nil, err
	}

	return ToUserEntity(user), nil
}

// translateUserConflict maps a unique-constraint violation on the user row to
// the matching domain error, so a registration that races past the pre-checks
// still reports which field is taken instead of a bare persistence failure.
func translateUserConflict(err error) error {
	if !errors.Is(err, gorm.ErrDuplicatedKey) && !isDuplicateKeyError(err) {
		return err
	}
	msg := err.Error()
	switch {
	case strings.Contains(msg, "phone"):
		return entity.ErrPhoneTaken
	case strings.Contains(msg, "wechat"):
		return entity.ErrWechatTaken
	}
	return err
}

func isDuplicateKeyError(err error) bool {
	msg := err.Error()
	// sqlite and postgres phrase the violation differently.
	return strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "duplicate key value")
}

func (r *userRepository) GetByID(id string) (*entity.User, error) {
	var user models.User
	if err := r.db.First(&user, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, entity.ErrUserNotFound
		}
		return nil, err
	}
	return ToUserEntity(&user), nil
}

func (r *userRepository) GetByPhone(phone string) (*entity.User, error) {
	var user models.User
	if err := r.db.First(&user, "phone = ?", phone).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, entity.ErrUserNotFound
		}
		return nil, err
	}
	return ToUserEntity(&user), nil
}

func (r *userRepository) GetByWechatID(wechatID string) (*entity.User, error) {
	var user models.User
	if err := r.db.First(&user, "wechat_id = ?", wechatID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, entity.ErrUserNotFound
		}
		return nil, err
	}
	return ToUserEntity(&user), nil
}

func (r *userRepository) GetByInviteCode(code string) (*entity.User, error) {
	var user models.User
	if err := r.db.First(&user, "invite_code = ?", code).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, entity.ErrUserNotFound
		}
		return nil, err
	}
	return ToUserEntity(&user), nil
}

// GetAdminByPhone returns the raw model because the admin login flow needs
// the bcrypt hash, which the entity deliberately omits.
func (r *userRepository) GetAdminByPhone(phone string) (*models.User, error) {
	var user models.User
	if err := r.db.First(&user, "phone = ? AND role = ?", phone, models.RoleAdmin).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, entity.ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) InviteCodeExists(code string) (bool, error) {
	var count int64
	if err := r.db.Model(&models.User{}).Where("invite_code = ?", code).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}
