package persistent

import (
	"errors"

	"tradelink/pkg/models"
	"tradelink/services/wallet/internal/entity"

	"gorm.io/gorm"
)

type WalletRepository interface {
	GetWallet(userID string) (*entity.Wallet, error)
	GetTransactions(userID string, limit, offset int) ([]*entity.Transaction, error)
}

type walletRepository struct {
	db *gorm.DB
}

func NewWalletRepository(db *gorm.DB) WalletRepository {
	return &walletRepository{db: db}
}

func (r *walletRepository) GetWallet(userID string) (*entity.Wallet, error) {
	var user models.User
	if err := r.db.First(&user, "id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, entity.ErrUserNotFound
		}
		return nil, err
	}

	return &entity.Wallet{
		UserID:     user.ID,
		Phone:      user.Phone,
		Points:     user.Points,
		TotalPosts: user.TotalPosts,
		TotalDeals: user.TotalDeals,
		DealRate:   user.DealRate,
	}, nil
}

func (r *walletRepository) GetTransactions(userID string, limit, offset int) ([]*entity.Transaction, error) {
	var rows []*models.PointTransaction
	err := r.db.Where("user_id = ?", userID).
		Order("created_at DESC").Limit(limit).Offset(offset).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	transactions := make([]*entity.Transaction, len(rows))
	for i, row := range rows {
		transactions[i] = &entity.Transaction{
			ID:           row.ID,
			ChangeType:   string(row.ChangeType),
			Amount:       row.Amount,
			BalanceAfter: row.BalanceAfter,
			Description:  row.Description,
			RelatedID:    refString(row.RelatedID),
			OrderID:      refString(row.OrderID),
			CreatedAt:    row.CreatedAt,
		}
	}
	return transactions, nil
}
