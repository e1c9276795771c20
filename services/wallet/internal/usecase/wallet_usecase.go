package usecase

import (
	"fmt"
	"io"
	"math/rand"
	"mime/multipart"
	"path/filepath"
	"time"

	"tradelink/pkg/logger"
	"tradelink/pkg/models"
	"tradelink/pkg/queue"
	"tradelink/services/wallet/internal/entity"
	"tradelink/services/wallet/internal/repo/persistent"
)

// rechargePlan is a fixed top-up tier. Custom amounts convert at
// customPointsPerYuan with no bonus.
type rechargePlan struct {
	Amount float64
	Points int
	Bonus  int
}

var rechargePlans = map[string]rechargePlan{
	"A": {Amount: 100, Points: 1000, Bonus: 5},
	"B": {Amount: 200, Points: 2000, Bonus: 20},
	"C": {Amount: 300, Points: 3000, Bonus: 50},
	"D": {Amount: 500, Points: 5000, Bonus: 200},
}

const customPointsPerYuan = 10

// ProofUploader stores the payment-proof image and returns its URL.
type ProofUploader interface {
	UploadFile(key string, file io.Reader, contentType string) (string, error)
}

// AlertPublisher queues an admin alert for a new pending order.
type AlertPublisher interface {
	PublishRechargeAlert(task queue.RechargeAlertTask) error
}

type RechargeInput struct {
	PlanID        string
	CustomAmount  float64
	PaymentMethod string
	Proof         *multipart.FileHeader
}

type WalletUseCase interface {
	GetWallet(userID string) (*entity.Wallet, error)
	GetTransactions(userID string, limit, offset int) ([]*entity.Transaction, error)
	CreateRechargeOrder(userID string, input RechargeInput) (*entity.RechargeOrder, error)
	GetUserOrders(userID string, limit, offset int) ([]*entity.RechargeOrder, error)
	ListOrdersByStatus(status string, limit, offset int) ([]*entity.RechargeOrder, error)
	ReviewOrder(orderID, adminID string, approve bool, note string) (*entity.RechargeOrder, error)
}

type walletUseCase struct {
	walletRepo   persistent.WalletRepository
	rechargeRepo persistent.RechargeRepository
	uploader     ProofUploader
	publisher    AlertPublisher
	logger       *logger.Logger
}

func NewWalletUseCase(
	walletRepo persistent.WalletRepository,
	rechargeRepo persistent.RechargeRepository,
	uploader ProofUploader,
	publisher AlertPublisher,
	logger *logger.Logger,
) WalletUseCase {
	return &walletUseCase{
		walletRepo:   walletRepo,
		rechargeRepo: rechargeRepo,
		uploader:     uploader,
		publisher:    publisher,
		logger:       logger,
	}
}

func (uc *walletUseCase) GetWallet(userID string) (*entity.Wallet, error) {
	return uc.walletRepo.GetWallet(userID)
}

func (uc *walletUseCase) GetTransactions(userID string, limit, offset int) ([]*entity.Transaction, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return uc.walletRepo.GetTransactions(userID, limit, offset)
}

// CreateRechargeOrder persists a pending top-up and alerts the admins. The
// alert is fire-and-forget: a dead broker must not lose the order.
func (uc *walletUseCase) CreateRechargeOrder(userID string, input RechargeInput) (*entity.RechargeOrder, error) {
	amount, points, bonus, err := resolvePlan(input)
	if err != nil {
		return nil, err
	}

	method := models.PaymentMethod(input.PaymentMethod)
	if method != models.PaymentMethodWechat && method != models.PaymentMethodAlipay {
		return nil, entity.ErrInvalidPayment
	}

	wallet, err := uc.walletRepo.GetWallet(userID)
	if err != nil {
		return nil, err
	}

	proofURL := ""
	if input.Proof != nil {
		proofURL, err = uc.uploadProof(userID, input.Proof)
		if err != nil {
			return nil, fmt.Errorf("failed to upload payment proof: %w", err)
		}
	}

	order, err := uc.rechargeRepo.CreateOrder(&models.RechargeOrder{
		OrderNo:       generateOrderNo(),
		UserID:        userID,
		Amount:        amount,
		Points:        points,
		BonusPoints:   bonus,
		PaymentMethod: method,
		ProofImageURL: proofURL,
	})
	if err != nil {
		return nil, err
	}

	if uc.publisher != nil {
		task := queue.RechargeAlertTask{
			OrderID:   order.ID,
			OrderNo:   order.OrderNo,
			UserPhone: wallet.Phone,
			Amount:    order.Amount,
		}
		if err := uc.publisher.PublishRechargeAlert(task); err != nil {
			uc.logger.Error("Failed to publish recharge alert for order %s: %v", order.OrderNo, err)
		}
	}

	return order, nil
}

func (uc *walletUseCase) GetUserOrders(userID string, limit, offset int) ([]*entity.RechargeOrder, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	return uc.rechargeRepo.GetUserOrders(userID, limit, offset)
}

func (uc *walletUseCase) ListOrdersByStatus(status string, limit, offset int) ([]*entity.RechargeOrder, error) {
	if status == "" {
		status = string(models.OrderStatusPending)
	}
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	return uc.rechargeRepo.ListByStatus(models.OrderStatus(status), limit, offset)
}

func (uc *walletUseCase) ReviewOrder(orderID, adminID string, approve bool, note string) (*entity.RechargeOrder, error) {
	return uc.rechargeRepo.Review(orderID, adminID, approve, note)
}

func resolvePlan(input RechargeInput) (amount float64, points, bonus int, err error) {
	if input.PlanID != "" {
		plan, ok := rechargePlans[input.PlanID]
		if !ok {
			return 0, 0, 0, entity.ErrInvalidPlan
		}
		return plan.Amount, plan.Points, plan.Bonus, nil
	}

	if input.CustomAmount <= 0 {
		return 0, 0, 0, entity.ErrInvalidAmount
	}
	return input.CustomAmount, int(input.CustomAmount * customPointsPerYuan), 0, nil
}

func (uc *walletUseCase) uploadProof(userID string, proof *multipart.FileHeader) (string, error) {
	file, err := proof.Open()
	if err != nil {
		return "", err
	}
	defer file.Close()

	key := fmt.Sprintf("recharge-proofs/%s/%d%s", userID, time.Now().UnixNano(), filepath.Ext(proof.Filename))
	contentType := proof.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	return uc.uploader.UploadFile(key, file, contentType)
}

func generateOrderNo() string {
	return fmt.Sprintf("R%s%06d", time.Now().Format("20060102150405"), rand.Intn(1000000))
}
