package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"tradelink/pkg/llm"
	"tradelink/pkg/logger"
	"tradelink/pkg/models"
	"tradelink/services/listing/internal/entity"
	"tradelink/services/listing/internal/repo/persistent"

	"github.com/redis/go-redis/v9"
)

var (
	ErrTitleRequired     = errors.New("title is required")
	ErrKeywordsRequired  = errors.New("keywords are required")
	ErrInvalidPrice      = errors.New("price must be positive")
	ErrInvalidTradeType  = errors.New("trade type must be one of buy, sell, long, short")
	ErrFuturesInfoNeeded = errors.New("long/short listings require delivery date and extra info")
	ErrInvalidStatus     = errors.New("status must be active or offline")
	ErrEmptyBatch        = errors.New("batch contains no listings")
)

const (
	maxBatchSize    = 20
	listingCacheTTL = 5 * time.Minute
)

// ListingParser is the slice of the LLM client the batch-parse flow needs.
type ListingParser interface {
	ParseListings(ctx context.Context, content string) ([]llm.ParsedItem, error)
}

type PublishInput struct {
	Title        string
	Keywords     string
	Price        float64
	TradeType    string
	DeliveryDate *time.Time
	ExtraInfo    string
}

type ListingUseCase interface {
	Publish(userID string, input PublishInput) (*entity.Listing, error)
	PublishBatch(userID string, inputs []PublishInput) ([]*entity.Listing, error)
	BatchParse(ctx context.Context, content string) ([]llm.ParsedItem, error)
	GetListing(id string) (*entity.Listing, error)
	SetStatus(listingID, userID, status string) (*entity.Listing, error)
	Feed(keyword, tradeType string, limit, offset int) ([]*entity.Listing, error)
	GetUserListings(userID string, limit, offset int) ([]*entity.Listing, error)
	Unlock(userID, listingID string) (*entity.UnlockResult, error)
	ConfirmDeal(recordID, userID string) (*entity.UnlockRecord, error)
	GetUserUnlocks(userID string, limit, offset int) ([]*entity.UnlockRecord, error)
	Announcements() ([]*entity.Announcement, error)
}

type listingUseCase struct {
	listingRepo      persistent.ListingRepository
	unlockRepo       persistent.UnlockRepository
	announcementRepo persistent.AnnouncementRepository
	parser           ListingParser
	redisClient      *redis.Client
	logger           *logger.Logger
}

func NewListingUseCase(
	listingRepo persistent.ListingRepository,
	unlockRepo persistent.UnlockRepository,
	announcementRepo persistent.AnnouncementRepository,
	parser ListingParser,
	redisClient *redis.Client,
	logger *logger.Logger,
) ListingUseCase {
	return &listingUseCase{
		listingRepo:      listingRepo,
		unlockRepo:       unlockRepo,
		announcementRepo: announcementRepo,
		parser:           parser,
		redisClient:      redisClient,
		logger:           logger,
	}
}

func (uc *listingUseCase) Publish(userID string, input PublishInput) (*entity.Listing, error) {
	draft, err := validateDraft(input)
	if err != nil {
		return nil, err
	}

	listing, err := uc.listingRepo.Publish(userID, draft)
	if err != nil {
		return nil, err
	}

	uc.cacheListing(listing)
	return listing, nil
}

func (uc *listingUseCase) PublishBatch(userID string, inputs []PublishInput) ([]*entity.Listing, error) {
	if len(inputs) == 0 {
		return nil, ErrEmptyBatch
	}
	if len(inputs) > maxBatchSize {
		return nil, fmt.Errorf("batch too large: %d listings, max %d", len(inputs), maxBatchSize)
	}

	drafts := make([]*entity.ListingDraft, len(inputs))
	for i, input := range inputs {
		draft, err := validateDraft(input)
		if err != nil {
			return nil, fmt.Errorf("listing %d: %w", i+1, err)
		}
		drafts[i] = draft
	}

	listings, err := uc.listingRepo.PublishBatch(userID, drafts)
	if err != nil {
		return nil, err
	}

	for _, listing := range listings {
		uc.cacheListing(listing)
	}
	return listings, nil
}

// BatchParse extracts {title, price} drafts from free text. The LLM gets the
// first shot; any failure there drops to the deterministic line parser so the
// endpoint never hard-fails on upstream trouble.
func (uc *listingUseCase) BatchParse(ctx context.Context, content string) ([]llm.ParsedItem, error) {
	if uc.parser != nil {
		items, err := uc.parser.ParseListings(ctx, content)
		if err == nil {
			return items, nil
		}
		uc.logger.Warn("LLM parse failed, falling back to line parser: %v", err)
	}

	return parseLines(content), nil
}

func (uc *listingUseCase) GetListing(id string) (*entity.Listing, error) {
	if cached := uc.cachedListing(id); cached != nil {
		return cached, nil
	}

	listing, err := uc.listingRepo.GetByID(id)
	if err != nil {
		return nil, err
	}

	uc.cacheListing(listing)
	return listing, nil
}

func (uc *listingUseCase) SetStatus(listingID, userID, status string) (*entity.Listing, error) {
	if status != string(models.PostStatusActive) && status != string(models.PostStatusOffline) {
		return nil, ErrInvalidStatus
	}

	listing, err := uc.listingRepo.SetStatus(listingID, userID, models.PostStatus(status))
	if err != nil {
		return nil, err
	}

	uc.invalidateListing(listingID)
	return listing, nil
}

func (uc *listingUseCase) Feed(keyword, tradeType string, limit, offset int) ([]*entity.Listing, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return uc.listingRepo.Feed(keyword, tradeType, limit, offset)
}

func (uc *listingUseCase) GetUserListings(userID string, limit, offset int) ([]*entity.Listing, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	return uc.listingRepo.GetUserListings(userID, limit, offset)
}

func (uc *listingUseCase) Unlock(userID, listingID string) (*entity.UnlockResult, error) {
	result, err := uc.unlockRepo.Unlock(userID, listingID)
	if err != nil {
		return nil, err
	}

	// View count moved, the cached copy is stale.
	uc.invalidateListing(listingID)
	return result, nil
}

func (uc *listingUseCase) ConfirmDeal(recordID, userID string) (*entity.UnlockRecord, error) {
	record, err := uc.unlockRepo.ConfirmDeal(recordID, userID)
	if err != nil {
		return nil, err
	}

	uc.invalidateListing(record.ListingID)
	return record, nil
}

func (uc *listingUseCase) GetUserUnlocks(userID string, limit, offset int) ([]*entity.UnlockRecord, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	return uc.unlockRepo.GetUserUnlocks(userID, limit, offset)
}

func (uc *listingUseCase) Announcements() ([]*entity.Announcement, error) {
	return uc.announcementRepo.ListActive()
}

func validateDraft(input PublishInput) (*entity.ListingDraft, error) {
	if input.Title == "" {
		return nil, ErrTitleRequired
	}
	if input.Keywords == "" {
		return nil, ErrKeywordsRequired
	}
	if input.Price <= 0 {
		return nil, ErrInvalidPrice
	}

	switch models.TradeType(input.TradeType) {
	case models.TradeTypeBuy, models.TradeTypeSell:
	case models.TradeTypeLong, models.TradeTypeShort:
		if input.DeliveryDate == nil || input.ExtraInfo == "" {
			return nil, ErrFuturesInfoNeeded
		}
	default:
		return nil, ErrInvalidTradeType
	}

	return &entity.ListingDraft{
		Title:        input.Title,
		Keywords:     input.Keywords,
		Price:        input.Price,
		TradeType:    input.TradeType,
		DeliveryDate: input.DeliveryDate,
		ExtraInfo:    input.ExtraInfo,
	}, nil
}

// Cache writes are best effort; a dead Redis never fails a request.
func (uc *listingUseCase) cacheListing(listing *entity.Listing) {
	if uc.redisClient == nil {
		return
	}
	data, err := json.Marshal(listing)
	if err != nil {
		return
	}
	uc.redisClient.Set(context.Background(), listingCacheKey(listing.ID), data, listingCacheTTL)
}

func (uc *listingUseCase) cachedListing(id string) *entity.Listing {
	if uc.redisClient == nil {
		return nil
	}
	data, err := uc.redisClient.Get(context.Background(), listingCacheKey(id)).Bytes()
	if err != nil {
		return nil
	}
	var listing entity.Listing
	if err := json.Unmarshal(data, &listing); err != nil {
		return nil
	}
	return &listing
}

func (uc *listingUseCase) invalidateListing(id string) {
	if uc.redisClient == nil {
		return
	}
	uc.redisClient.Del(context.Background(), listingCacheKey(id))
}

func listingCacheKey(id string) string {
	return fmt.Sprintf("listing:%s", id)
}
