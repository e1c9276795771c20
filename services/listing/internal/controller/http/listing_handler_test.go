package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"tradelink/pkg/ledger"
	"tradelink/pkg/llm"
	"tradelink/services/listing/internal/entity"
	"tradelink/services/listing/internal/usecase"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// MockListingUseCase is a mock implementation of ListingUseCase
type MockListingUseCase struct {
	mock.Mock
}

func (m *MockListingUseCase) Publish(userID string, input usecase.PublishInput) (*entity.Listing, error) {
	args := m.Called(userID, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Listing), args.Error(1)
}

func (m *MockListingUseCase) PublishBatch(userID string, inputs []usecase.PublishInput) ([]*entity.Listing, error) {
	args := m.Called(userID, inputs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entity.Listing), args.Error(1)
}

func (m *MockListingUseCase) BatchParse(ctx context.Context, content string) ([]llm.ParsedItem, error) {
	args := m.Called(content)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]llm.ParsedItem), args.Error(1)
}

func (m *MockListingUseCase) GetListing(id string) (*entity.Listing, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Listing), args.Error(1)
}

func (m *MockListingUseCase) SetStatus(listingID, userID, status string) (*entity.Listing, error) {
	args := m.Called(listingID, userID, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Listing), args.Error(1)
}

func (m *MockListingUseCase) Feed(keyword, tradeType string, limit, offset int) ([]*entity.Listing, error) {
	args := m.Called(keyword, tradeType, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entity.Listing), args.Error(1)
}

func (m *MockListingUseCase) GetUserListings(userID string, limit, offset int) ([]*entity.Listing, error) {
	args := m.Called(userID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entity.Listing), args.Error(1)
}

func (m *MockListingUseCase) Unlock(userID, listingID string) (*entity.UnlockResult, error) {
	args := m.Called(userID, listingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.UnlockResult), args.Error(1)
}

func (m *MockListingUseCase) ConfirmDeal(recordID, userID string) (*entity.UnlockRecord, error) {
	args := m.Called(recordID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.UnlockRecord), args.Error(1)
}

func (m *MockListingUseCase) GetUserUnlocks(userID string, limit, offset int) ([]*entity.UnlockRecord, error) {
	args := m.Called(userID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entity.UnlockRecord), args.Error(1)
}

func (m *MockListingUseCase) Announcements() ([]*entity.Announcement, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entity.Announcement), args.Error(1)
}

var _ usecase.ListingUseCase = (*MockListingUseCase)(nil)

func setupTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	return gin.New()
}

func TestPublish_Success(t *testing.T) {
	mockUseCase := new(MockListingUseCase)
	handler := NewListingHandler(mockUseCase)

	router := setupTestRouter()
	router.POST("/listings", func(c *gin.Context) {
		c.Set("user_id", "user-123")
		handler.Publish(c)
	})

	mockListing := &entity.Listing{
		ID:        "listing-1",
		UserID:    "user-123",
		Title:     "成都周深演唱会门票",
		TradeType: "sell",
		Status:    "active",
	}
	mockUseCase.On("Publish", "user-123", mock.AnythingOfType("usecase.PublishInput")).Return(mockListing, nil)

	body := `{"title":"成都周深演唱会门票","keywords":"演唱会","price":399,"trade_type":"sell"}`
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/listings", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)
	mockUseCase.AssertExpectations(t)
}

func TestPublish_InsufficientBalance(t *testing.T) {
	mockUseCase := new(MockListingUseCase)
	handler := NewListingHandler(mockUseCase)

	router := setupTestRouter()
	router.POST("/listings", func(c *gin.Context) {
		c.Set("user_id", "user-123")
		handler.Publish(c)
	})

	mockUseCase.On("Publish", "user-123", mock.AnythingOfType("usecase.PublishInput")).Return(nil, ledger.ErrInsufficientFunds)

	body := `{"title":"成都周深演唱会门票","keywords":"演唱会","price":399,"trade_type":"sell"}`
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/listings", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusPaymentRequired, w.Code)
	mockUseCase.AssertExpectations(t)
}

func TestPublish_BadDeliveryDate(t *testing.T) {
	mockUseCase := new(MockListingUseCase)
	handler := NewListingHandler(mockUseCase)

	router := setupTestRouter()
	router.POST("/listings", handler.Publish)

	body := `{"title":"t","keywords":"k","price":1,"trade_type":"long","delivery_date":"not-a-date"}`
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/listings", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	mockUseCase.AssertNotCalled(t, "Publish")
}

func TestUnlock_Success(t *testing.T) {
	mockUseCase := new(MockListingUseCase)
	handler := NewListingHandler(mockUseCase)

	router := setupTestRouter()
	router.POST("/listings/:id/unlock", func(c *gin.Context) {
		c.Set("user_id", "buyer-123")
		handler.Unlock(c)
	})

	mockResult := &entity.UnlockResult{
		RecordID:       "record-1",
		ListingID:      "listing-1",
		SellerWechatID: "wx_seller",
		PointsCost:     1,
	}
	mockUseCase.On("Unlock", "buyer-123", "listing-1").Return(mockResult, nil)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/listings/listing-1/unlock", nil)

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	var response entity.UnlockResult
	json.Unmarshal(w.Body.Bytes(), &response)
	assert.Equal(t, "wx_seller", response.SellerWechatID)
	assert.Equal(t, 1, response.PointsCost)

	mockUseCase.AssertExpectations(t)
}

func TestUnlock_SelfView(t *testing.T) {
	mockUseCase := new(MockListingUseCase)
	handler := NewListingHandler(mockUseCase)

	router := setupTestRouter()
	router.POST("/listings/:id/unlock", func(c *gin.Context) {
		c.Set("user_id", "seller-123")
		handler.Unlock(c)
	})

	mockUseCase.On("Unlock", "seller-123", "listing-1").Return(nil, entity.ErrSelfUnlock)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/listings/listing-1/unlock", nil)

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	mockUseCase.AssertExpectations(t)
}

func TestUnlock_ViewLimitReached(t *testing.T) {
	mockUseCase := new(MockListingUseCase)
	handler := NewListingHandler(mockUseCase)

	router := setupTestRouter()
	router.POST("/listings/:id/unlock", func(c *gin.Context) {
		c.Set("user_id", "buyer-123")
		handler.Unlock(c)
	})

	mockUseCase.On("Unlock", "buyer-123", "listing-1").Return(nil, entity.ErrViewLimitReached)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/listings/listing-1/unlock", nil)

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	mockUseCase.AssertExpectations(t)
}

func TestConfirmDeal_AlreadyConfirmed(t *testing.T) {
	mockUseCase := new(MockListingUseCase)
	handler := NewListingHandler(mockUseCase)

	router := setupTestRouter()
	router.POST("/unlocks/:id/confirm-deal", func(c *gin.Context) {
		c.Set("user_id", "buyer-123")
		handler.ConfirmDeal(c)
	})

	mockUseCase.On("ConfirmDeal", "record-1", "buyer-123").Return(nil, entity.ErrAlreadyConfirmed)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/unlocks/record-1/confirm-deal", nil)

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusConflict, w.Code)
	mockUseCase.AssertExpectations(t)
}

func TestSetStatus_NotOwner(t *testing.T) {
	mockUseCase := new(MockListingUseCase)
	handler := NewListingHandler(mockUseCase)

	router := setupTestRouter()
	router.PATCH("/listings/:id/status", func(c *gin.Context) {
		c.Set("user_id", "other-123")
		handler.SetStatus(c)
	})

	mockUseCase.On("SetStatus", "listing-1", "other-123", "offline").Return(nil, entity.ErrNotOwner)

	body := `{"status":"offline"}`
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("PATCH", "/listings/listing-1/status", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
	mockUseCase.AssertExpectations(t)
}

func TestFeed_Success(t *testing.T) {
	mockUseCase := new(MockListingUseCase)
	handler := NewListingHandler(mockUseCase)

	router := setupTestRouter()
	router.GET("/listings", handler.Feed)

	mockListings := []*entity.Listing{
		{ID: "listing-1", Title: "门票 A", Status: "active"},
		{ID: "listing-2", Title: "门票 B", Status: "active"},
	}
	mockUseCase.On("Feed", "", "sell", 20, 0).Return(mockListings, nil)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/listings?trade_type=sell", nil)

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	var response map[string]interface{}
	json.Unmarshal(w.Body.Bytes(), &response)
	assert.Equal(t, float64(2), response["count"])

	mockUseCase.AssertExpectations(t)
}

func TestBatchParse_Success(t *testing.T) {
	mockUseCase := new(MockListingUseCase)
	handler := NewListingHandler(mockUseCase)

	router := setupTestRouter()
	router.POST("/listings/batch-parse", handler.BatchParse)

	mockItems := []llm.ParsedItem{{Title: "成都周深演唱会门票", Price: 399}}
	mockUseCase.On("BatchParse", "成都周深演唱会门票 399元").Return(mockItems, nil)

	body := `{"content":"成都周深演唱会门票 399元"}`
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/listings/batch-parse", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	mockUseCase.AssertExpectations(t)
}

func TestGetListing_NotFound(t *testing.T) {
	mockUseCase := new(MockListingUseCase)
	handler := NewListingHandler(mockUseCase)

	router := setupTestRouter()
	router.GET("/listings/:id", handler.GetListing)

	mockUseCase.On("GetListing", "no-such-listing").Return(nil, entity.ErrListingNotFound)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/listings/no-such-listing", nil)

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
	mockUseCase.AssertExpectations(t)
}

func TestAnnouncements_Success(t *testing.T) {
	mockUseCase := new(MockListingUseCase)
	handler := NewListingHandler(mockUseCase)

	router := setupTestRouter()
	router.GET("/announcements", handler.Announcements)

	mockUseCase.On("Announcements").Return([]*entity.Announcement{
		{ID: "a-1", Title: "平台公告", Priority: 5},
	}, nil)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/announcements", nil)

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	mockUseCase.AssertExpectations(t)
}

func TestNewListingHandler(t *testing.T) {
	mockUseCase := new(MockListingUseCase)
	handler := NewListingHandler(mockUseCase)

	assert.NotNil(t, handler)
}
