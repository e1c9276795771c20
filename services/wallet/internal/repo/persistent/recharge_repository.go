package persistent

import (
	"errors"
	"time"

	"tradelink/pkg/ledger"
	"tradelink/pkg/models"
	"tradelink/services/wallet/internal/entity"

	"gorm.io/gorm"
)

type RechargeRepository interface {
	CreateOrder(order *models.RechargeOrder) (*entity.RechargeOrder, error)
	GetOrder(id string) (*entity.RechargeOrder, error)
	GetUserOrders(userID string, limit, offset int) ([]*entity.RechargeOrder, error)
	ListByStatus(status models.OrderStatus, limit, offset int) ([]*entity.RechargeOrder, error)
	Review(orderID, adminID string, approve bool, note string) (*entity.RechargeOrder, error)
}

type rechargeRepository struct {
	db *gorm.DB
}

func NewRechargeRepository(db *gorm.DB) RechargeRepository {
	return &rechargeRepository{db: db}
}

func (r *rechargeRepository) CreateOrder(order *models.RechargeOrder) (*entity.RechargeOrder, error) {
	if err := r.db.Create(order).Error; err != nil {
		return nil, err
	}
	return toOrderEntity(order), nil
}

func (r *rechargeRepository) GetOrder(id string) (*entity.RechargeOrder, error) {
	var order models.RechargeOrder
	if err := r.db.First(&order, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, entity.ErrOrderNotFound
		}
		return nil, err
	}
	return toOrderEntity(&order), nil
}

func (r *rechargeRepository) GetUserOrders(userID string, limit, offset int) ([]*entity.RechargeOrder, error) {
	var rows []*models.RechargeOrder
	err := r.db.Where("user_id = ?", userID).
		Order("created_at DESC").Limit(limit).Offset(offset).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return toOrderEntities(rows), nil
}

func (r *rechargeRepository) ListByStatus(status models.OrderStatus, limit, offset int) ([]*entity.RechargeOrder, error) {
	var rows []*models.RechargeOrder
	err := r.db.Where("status = ?", status).
		Order("created_at ASC").Limit(limit).Offset(offset).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return toOrderEntities(rows), nil
}

// Review settles a pending order exactly once. The status flip is conditional
// on the order still being pending, so a second reviewer (or a double click)
// changes nothing; an approval credits base plus bonus points through the
// ledger inside the same transaction as the status flip.
func (r *rechargeRepository) Review(orderID, adminID string, approve bool, note string) (*entity.RechargeOrder, error) {
	var order models.RechargeOrder
	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&order, "id = ?", orderID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return entity.ErrOrderNotFound
			}
			return err
		}

		status := models.OrderStatusRejected
		if approve {
			status = models.OrderStatusApproved
		}

		now := time.Now()
		res := tx.Model(&models.RechargeOrder{}).
			Where("id = ? AND status = ?", orderID, models.OrderStatusPending).
			Updates(map[string]interface{}{
				"status":      status,
				"admin_note":  note,
				"reviewed_by": adminID,
				"reviewed_at": now,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return entity.ErrAlreadyReviewed
		}

		if approve {
			total := order.Points + order.BonusPoints
			if _, err := ledger.Credit(tx, order.UserID, total, models.PointChangeTopUp, "充值到账", "", order.ID); err != nil {
				return err
			}
		}

		return tx.First(&order, "id = ?", orderID).Error
	})
	if err != nil {
		return nil, err
	}

	return toOrderEntity(&order), nil
}

func toOrderEntity(order *models.RechargeOrder) *entity.RechargeOrder {
	return &entity.RechargeOrder{
		ID:            order.ID,
		OrderNo:       order.OrderNo,
		UserID:        order.UserID,
		Amount:        order.Amount,
		Points:        order.Points,
		BonusPoints:   order.BonusPoints,
		PaymentMethod: string(order.PaymentMethod),
		ProofImageURL: order.ProofImageURL,
		Status:        string(order.Status),
		AdminNote:     order.AdminNote,
		ReviewedBy:    refString(order.ReviewedBy),
		ReviewedAt:    order.ReviewedAt,
		CreatedAt:     order.CreatedAt,
	}
}

func refString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func toOrderEntities(rows []*models.RechargeOrder) []*entity.RechargeOrder {
	orders := make([]*entity.RechargeOrder, len(rows))
	for i, row := range rows {
		orders[i] = toOrderEntity(row)
	}
	return orders
}
