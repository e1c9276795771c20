package http

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"tradelink/pkg/ledger"
	"tradelink/services/listing/internal/entity"
	"tradelink/services/listing/internal/usecase"

	"github.com/gin-gonic/gin"
)

type ListingHandler struct {
	listingUseCase usecase.ListingUseCase
}

func NewListingHandler(listingUseCase usecase.ListingUseCase) *ListingHandler {
	return &ListingHandler{
		listingUseCase: listingUseCase,
	}
}

type PublishRequest struct {
	Title        string  `json:"title" binding:"required"`
	Keywords     string  `json:"keywords" binding:"required"`
	Price        float64 `json:"price" binding:"required"`
	TradeType    string  `json:"trade_type" binding:"required"`
	DeliveryDate string  `json:"delivery_date"`
	ExtraInfo    string  `json:"extra_info"`
}

type BatchPublishRequest struct {
	Listings []PublishRequest `json:"listings" binding:"required"`
}

type BatchParseRequest struct {
	Content string `json:"content" binding:"required"`
}

type SetStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

func (req *PublishRequest) toInput() (usecase.PublishInput, error) {
	input := usecase.PublishInput{
		Title:     req.Title,
		Keywords:  req.Keywords,
		Price:     req.Price,
		TradeType: req.TradeType,
		ExtraInfo: req.ExtraInfo,
	}
	if req.DeliveryDate != "" {
		parsed, err := time.Parse("2006-01-02", req.DeliveryDate)
		if err != nil {
			return input, errors.New("delivery_date must be YYYY-MM-DD")
		}
		input.DeliveryDate = &parsed
	}
	return input, nil
}

// Publish godoc
// @Summary      Publish a listing
// @Description  Publish one trade listing; charges the publish fee
// @Tags         listings
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body PublishRequest true "Listing data"
// @Success      201  {object}  entity.Listing
// @Failure      400  {object}  map[string]string
// @Failure      402  {object}  map[string]string
// @Router       /listings [post]
func (h *ListingHandler) Publish(c *gin.Context) {
	var req PublishRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	input, err := req.toInput()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	listing, err := h.listingUseCase.Publish(c.GetString("user_id"), input)
	if err != nil {
		h.writeListingError(c, err)
		return
	}

	c.JSON(http.StatusCreated, listing)
}

// PublishBatch godoc
// @Summary      Publish a batch of listings
// @Description  All-or-nothing: one aggregate fee debit, every listing created or none
// @Tags         listings
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body BatchPublishRequest true "Batch data"
// @Success      201  {object}  map[string]interface{}
// @Failure      400  {object}  map[string]string
// @Failure      402  {object}  map[string]string
// @Router       /listings/batch [post]
func (h *ListingHandler) PublishBatch(c *gin.Context) {
	var req BatchPublishRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	inputs := make([]usecase.PublishInput, len(req.Listings))
	for i, item := range req.Listings {
		input, err := item.toInput()
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		inputs[i] = input
	}

	listings, err := h.listingUseCase.PublishBatch(c.GetString("user_id"), inputs)
	if err != nil {
		h.writeListingError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"count":    len(listings),
		"listings": listings,
	})
}

// BatchParse godoc
// @Summary      Parse free text into listing drafts
// @Description  Extract {title, price} pairs from pasted text
// @Tags         listings
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body BatchParseRequest true "Raw text"
// @Success      200  {object}  map[string]interface{}
// @Failure      400  {object}  map[string]string
// @Router       /listings/batch-parse [post]
func (h *ListingHandler) BatchParse(c *gin.Context) {
	var req BatchParseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	items, err := h.listingUseCase.BatchParse(c.Request.Context(), req.Content)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"count": len(items),
		"items": items,
	})
}

// SetStatus godoc
// @Summary      Take a listing offline or back online
// @Tags         listings
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Listing ID"
// @Param        request body SetStatusRequest true "Target status"
// @Success      200  {object}  entity.Listing
// @Failure      400  {object}  map[string]string
// @Failure      403  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /listings/{id}/status [patch]
func (h *ListingHandler) SetStatus(c *gin.Context) {
	var req SetStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	listing, err := h.listingUseCase.SetStatus(c.Param("id"), c.GetString("user_id"), req.Status)
	if err != nil {
		h.writeListingError(c, err)
		return
	}

	c.JSON(http.StatusOK, listing)
}

// Feed godoc
// @Summary      Browse active listings
// @Description  Public feed of active, unexpired listings
// @Tags         listings
// @Produce      json
// @Param        keyword     query string false "Keyword filter"
// @Param        trade_type  query string false "Trade type filter"
// @Param        limit       query int    false "Page size"
// @Param        offset      query int    false "Page offset"
// @Success      200  {object}  map[string]interface{}
// @Router       /listings [get]
func (h *ListingHandler) Feed(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	listings, err := h.listingUseCase.Feed(c.Query("keyword"), c.Query("trade_type"), limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"count":    len(listings),
		"listings": listings,
	})
}

// GetListing godoc
// @Summary      Get one listing
// @Tags         listings
// @Produce      json
// @Param        id path string true "Listing ID"
// @Success      200  {object}  entity.Listing
// @Failure      404  {object}  map[string]string
// @Router       /listings/{id} [get]
func (h *ListingHandler) GetListing(c *gin.Context) {
	listing, err := h.listingUseCase.GetListing(c.Param("id"))
	if err != nil {
		h.writeListingError(c, err)
		return
	}

	c.JSON(http.StatusOK, listing)
}

// MyListings godoc
// @Summary      List the caller's listings
// @Tags         listings
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  map[string]interface{}
// @Router       /my/listings [get]
func (h *ListingHandler) MyListings(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	listings, err := h.listingUseCase.GetUserListings(c.GetString("user_id"), limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"count":    len(listings),
		"listings": listings,
	})
}

// Unlock godoc
// @Summary      Unlock a listing's contact info
// @Description  Charges the unlock fee once per (user, listing); repeats are free
// @Tags         unlocks
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Listing ID"
// @Success      200  {object}  entity.UnlockResult
// @Failure      400  {object}  map[string]string
// @Failure      402  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /listings/{id}/unlock [post]
func (h *ListingHandler) Unlock(c *gin.Context) {
	result, err := h.listingUseCase.Unlock(c.GetString("user_id"), c.Param("id"))
	if err != nil {
		h.writeListingError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// ConfirmDeal godoc
// @Summary      Confirm a deal on an unlocked listing
// @Tags         unlocks
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Unlock record ID"
// @Success      200  {object}  entity.UnlockRecord
// @Failure      403  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Failure      409  {object}  map[string]string
// @Router       /unlocks/{id}/confirm-deal [post]
func (h *ListingHandler) ConfirmDeal(c *gin.Context) {
	record, err := h.listingUseCase.ConfirmDeal(c.Param("id"), c.GetString("user_id"))
	if err != nil {
		h.writeListingError(c, err)
		return
	}

	c.JSON(http.StatusOK, record)
}

// MyUnlocks godoc
// @Summary      List the caller's unlocked contacts
// @Tags         unlocks
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  map[string]interface{}
// @Router       /my/unlocks [get]
func (h *ListingHandler) MyUnlocks(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	unlocks, err := h.listingUseCase.GetUserUnlocks(c.GetString("user_id"), limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"count":   len(unlocks),
		"unlocks": unlocks,
	})
}

// Announcements godoc
// @Summary      Active platform announcements
// @Tags         announcements
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Router       /announcements [get]
func (h *ListingHandler) Announcements(c *gin.Context) {
	announcements, err := h.listingUseCase.Announcements()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"announcements": announcements})
}

func (h *ListingHandler) writeListingError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, entity.ErrListingNotFound), errors.Is(err, entity.ErrUnlockNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, entity.ErrNotOwner):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, ledger.ErrInsufficientFunds):
		c.JSON(http.StatusPaymentRequired, gin.H{"error": err.Error()})
	case errors.Is(err, entity.ErrAlreadyConfirmed):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, entity.ErrSelfUnlock), errors.Is(err, entity.ErrViewLimitReached),
		errors.Is(err, usecase.ErrTitleRequired), errors.Is(err, usecase.ErrKeywordsRequired),
		errors.Is(err, usecase.ErrInvalidPrice), errors.Is(err, usecase.ErrInvalidTradeType),
		errors.Is(err, usecase.ErrFuturesInfoNeeded), errors.Is(err, usecase.ErrInvalidStatus),
		errors.Is(err, usecase.ErrEmptyBatch):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
