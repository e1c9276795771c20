// Package ledger implements the points ledger shared by all services.
// Every balance change goes through Credit or Debit so that the balance
// column and the append-only transaction history can never drift apart.
package ledger

import (
	"errors"
	"fmt"

	"tradelink/pkg/models"

	"gorm.io/gorm"
)

var (
	ErrInsufficientFunds = errors.New("insufficient points balance")
	ErrUserNotFound      = errors.New("user not found")
)

// Credit adds amount points to the user and appends a ledger entry with the
// resulting balance. It must be called inside the caller's transaction so the
// balance update and the entry commit or roll back together.
func Credit(tx *gorm.DB, userID string, amount int, changeType models.PointChangeType, description, relatedID, orderID string) (int, error) {
	if amount <= 0 {
		return 0, fmt.Errorf("credit amount must be positive, got %d", amount)
	}

	res := tx.Model(&models.User{}).
		Where("id = ?", userID).
		Update("points", gorm.Expr("points + ?", amount))
	if res.Error != nil {
		return 0, res.Error
	}
	if res.RowsAffected == 0 {
		return 0, ErrUserNotFound
	}

	return appendEntry(tx, userID, amount, changeType, description, relatedID, orderID)
}

// Debit removes amount points from the user. The update is conditional on
// points >= amount, so a concurrent debit can never drive the balance
// negative; zero affected rows means insufficient funds and nothing is
// mutated.
func Debit(tx *gorm.DB, userID string, amount int, changeType models.PointChangeType, description, relatedID, orderID string) (int, error) {
	if amount <= 0 {
		return 0, fmt.Errorf("debit amount must be positive, got %d", amount)
	}

	res := tx.Model(&models.User{}).
		Where("id = ? AND points >= ?", userID, amount).
		Update("points", gorm.Expr("points - ?", amount))
	if res.Error != nil {
		return 0, res.Error
	}
	if res.RowsAffected == 0 {
		var count int64
		if err := tx.Model(&models.User{}).Where("id = ?", userID).Count(&count).Error; err != nil {
			return 0, err
		}
		if count == 0 {
			return 0, ErrUserNotFound
		}
		return 0, ErrInsufficientFunds
	}

	return appendEntry(tx, userID, -amount, changeType, description, relatedID, orderID)
}

func appendEntry(tx *gorm.DB, userID string, signedAmount int, changeType models.PointChangeType, description, relatedID, orderID string) (int, error) {
	var user models.User
	if err := tx.Select("points").First(&user, "id = ?", userID).Error; err != nil {
		return 0, err
	}

	entry := &models.PointTransaction{
		UserID:       userID,
		ChangeType:   changeType,
		Amount:       signedAmount,
		BalanceAfter: user.Points,
		Description:  description,
		RelatedID:    uuidRef(relatedID),
		OrderID:      uuidRef(orderID),
	}
	if err := tx.Create(entry).Error; err != nil {
		return 0, err
	}

	return user.Points, nil
}

// uuidRef maps an absent reference to NULL; the columns are typed uuid and
// reject an empty string.
func uuidRef(id string) *string {
	if id == "" {
		return nil
	}
	return &id
}
