package http

import (
	"errors"
	"net/http"
	"strconv"

	"tradelink/services/wallet/internal/entity"
	"tradelink/services/wallet/internal/usecase"

	"github.com/gin-gonic/gin"
)

type WalletHandler struct {
	walletUseCase usecase.WalletUseCase
}

func NewWalletHandler(walletUseCase usecase.WalletUseCase) *WalletHandler {
	return &WalletHandler{
		walletUseCase: walletUseCase,
	}
}

type ReviewRequest struct {
	Approve *bool  `json:"approve" binding:"required"`
	Note    string `json:"note"`
}

// GetWallet godoc
// @Summary      Get wallet balance and stats
// @Tags         wallet
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  entity.Wallet
// @Failure      404  {object}  map[string]string
// @Router       /wallet [get]
func (h *WalletHandler) GetWallet(c *gin.Context) {
	wallet, err := h.walletUseCase.GetWallet(c.GetString("user_id"))
	if err != nil {
		h.writeWalletError(c, err)
		return
	}

	c.JSON(http.StatusOK, wallet)
}

// GetTransactions godoc
// @Summary      Paged points ledger history
// @Tags         wallet
// @Produce      json
// @Security     BearerAuth
// @Param        limit   query int false "Page size"
// @Param        offset  query int false "Page offset"
// @Success      200  {object}  map[string]interface{}
// @Router       /wallet/transactions [get]
func (h *WalletHandler) GetTransactions(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	transactions, err := h.walletUseCase.GetTransactions(c.GetString("user_id"), limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"count":        len(transactions),
		"transactions": transactions,
	})
}

// CreateRecharge godoc
// @Summary      Submit a manual top-up order
// @Description  Fixed plan (plan_id A-D) or custom amount; multipart with optional proof image
// @Tags         wallet
// @Accept       multipart/form-data
// @Produce      json
// @Security     BearerAuth
// @Param        plan_id         formData string false "Fixed plan ID (A, B, C, D)"
// @Param        amount          formData number false "Custom amount in yuan"
// @Param        payment_method  formData string true  "wechat or alipay"
// @Param        proof           formData file   false "Payment proof image"
// @Success      201  {object}  entity.RechargeOrder
// @Failure      400  {object}  map[string]string
// @Router       /wallet/recharge [post]
func (h *WalletHandler) CreateRecharge(c *gin.Context) {
	input := usecase.RechargeInput{
		PlanID:        c.PostForm("plan_id"),
		PaymentMethod: c.PostForm("payment_method"),
	}

	if raw := c.PostForm("amount"); raw != "" {
		amount, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "amount must be a number"})
			return
		}
		input.CustomAmount = amount
	}

	if proof, err := c.FormFile("proof"); err == nil {
		input.Proof = proof
	}

	order, err := h.walletUseCase.CreateRechargeOrder(c.GetString("user_id"), input)
	if err != nil {
		h.writeWalletError(c, err)
		return
	}

	c.JSON(http.StatusCreated, order)
}

// GetMyOrders godoc
// @Summary      Caller's top-up order history
// @Tags         wallet
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  map[string]interface{}
// @Router       /wallet/recharge [get]
func (h *WalletHandler) GetMyOrders(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	orders, err := h.walletUseCase.GetUserOrders(c.GetString("user_id"), limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"count":  len(orders),
		"orders": orders,
	})
}

// ListOrders godoc
// @Summary      List top-up orders for review (admin)
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Param        status query string false "pending, approved or rejected (default pending)"
// @Success      200  {object}  map[string]interface{}
// @Failure      403  {object}  map[string]string
// @Router       /admin/recharge [get]
func (h *WalletHandler) ListOrders(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	orders, err := h.walletUseCase.ListOrdersByStatus(c.Query("status"), limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"count":  len(orders),
		"orders": orders,
	})
}

// ReviewOrder godoc
// @Summary      Approve or reject a top-up order (admin)
// @Description  Approval credits base plus bonus points; a reviewed order cannot be re-reviewed
// @Tags         admin
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id      path string        true "Order ID"
// @Param        request body ReviewRequest true "Review decision"
// @Success      200  {object}  entity.RechargeOrder
// @Failure      404  {object}  map[string]string
// @Failure      409  {object}  map[string]string
// @Router       /admin/recharge/{id}/review [post]
func (h *WalletHandler) ReviewOrder(c *gin.Context) {
	var req ReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	order, err := h.walletUseCase.ReviewOrder(c.Param("id"), c.GetString("user_id"), *req.Approve, req.Note)
	if err != nil {
		h.writeWalletError(c, err)
		return
	}

	c.JSON(http.StatusOK, order)
}

func (h *WalletHandler) writeWalletError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, entity.ErrUserNotFound), errors.Is(err, entity.ErrOrderNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, entity.ErrAlreadyReviewed):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, entity.ErrInvalidPlan), errors.Is(err, entity.ErrInvalidAmount),
		errors.Is(err, entity.ErrInvalidPayment):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
