package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/catireiro/backend/internal/model"
	"github.com/catireiro/backend/internal/money"
	"github.com/catireiro/backend/internal/repository"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	minDurationDays = 1
	maxDurationDays = 30
	maxTitleLen     = 120 // characters, not bytes
)

type CreateListingInput struct {
	Title         string
	Description   string
	Category      model.Category
	UrgencyReason string
	MinimumPrice  money.Money
	DurationDays  int
}

type UpdateListingInput struct {
	Title         string
	Description   string
	Category      model.Category
	UrgencyReason string
}

type ListingService interface {
	Create(ctx context.Context, sellerUID string, in CreateListingInput) (*model.Listing, error)
	Get(ctx context.Context, id string) (*model.Listing, error)
	List(ctx context.Context, category model.Category, limit, offset int) ([]model.Listing, int64, error)
	ListBySeller(ctx context.Context, sellerUID string) ([]model.Listing, error)
	Update(ctx context.Context, id, sellerUID string, in UpdateListingInput) (*model.Listing, error)
}

type listingService struct {
	repo   repository.ListingRepository
	logger *zap.Logger
	now    func() time.Time
}

func NewListingService(repo repository.ListingRepository, logger *zap.Logger) ListingService {
	return &listingService{repo: repo, logger: logger, now: time.Now}
}

func (s *listingService) Create(ctx context.Context, sellerUID string, in CreateListingInput) (*model.Listing, error) {
	if sellerUID == "" {
		return nil, ErrForbidden
	}
	title := strings.TrimSpace(in.Title)
	if title == "" || utf8.RuneCountInString(title) > maxTitleLen {
		return nil, errors.New("invalid title")
	}
	if !in.Category.Valid() {
		return nil, errors.New("invalid category")
	}
	if !in.MinimumPrice.IsPositive() {
		return nil, fmt.Errorf("%w: minimum price must be positive", ErrInvalidAmount)
	}
	if in.DurationDays < minDurationDays || in.DurationDays > maxDurationDays {
		return nil, fmt.Errorf("duration must be between %d and %d days", minDurationDays, maxDurationDays)
	}

	now := s.now()
	listing := &model.Listing{
		ID:            uuid.NewString(),
		SellerUID:     sellerUID,
		Title:         title,
		Description:   strings.TrimSpace(in.Description),
		Category:      in.Category,
		UrgencyReason: strings.TrimSpace(in.UrgencyReason),
		MinimumPrice:  in.MinimumPrice,
		DurationDays:  in.DurationDays,
		Deadline:      now.AddDate(0, 0, in.DurationDays),
		Status:        model.ListingStatusActive,
	}
	if err := s.repo.Create(ctx, listing); err != nil {
		return nil, mapRepoErr(err)
	}
	s.logger.Info("listing created",
		zap.String("listing_id", listing.ID),
		zap.String("seller_uid", sellerUID),
		zap.String("category", string(listing.Category)))
	return listing, nil
}

func (s *listingService) Get(ctx context.Context, id string) (*model.Listing, error) {
	listing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, mapRepoErr(err)
	}
	s.refreshStatus(ctx, listing)
	return listing, nil
}

func (s *listingService) List(ctx context.Context, category model.Category, limit, offset int) ([]model.Listing, int64, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	if category != "" && !category.Valid() {
		return nil, 0, errors.New("invalid category")
	}
	listings, total, err := s.repo.List(ctx, category, limit, offset)
	if err != nil {
		return nil, 0, mapRepoErr(err)
	}
	for i := range listings {
		s.refreshStatus(ctx, &listings[i])
	}
	return listings, total, nil
}

func (s *listingService) ListBySeller(ctx context.Context, sellerUID string) ([]model.Listing, error) {
	listings, err := s.repo.ListBySeller(ctx, sellerUID)
	if err != nil {
		return nil, mapRepoErr(err)
	}
	for i := range listings {
		s.refreshStatus(ctx, &listings[i])
	}
	return listings, nil
}

func (s *listingService) Update(ctx context.Context, id, sellerUID string, in UpdateListingInput) (*model.Listing, error) {
	listing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, mapRepoErr(err)
	}
	if listing.SellerUID != sellerUID {
		return nil, ErrForbidden
	}
	s.refreshStatus(ctx, listing)
	if listing.Status != model.ListingStatusActive {
		return nil, fmt.Errorf("%w: only active listings can be edited", ErrInvalidState)
	}

	title := strings.TrimSpace(in.Title)
	if title == "" || utf8.RuneCountInString(title) > maxTitleLen {
		return nil, errors.New("invalid title")
	}
	if !in.Category.Valid() {
		return nil, errors.New("invalid category")
	}

	// Deadline, minimum price and status are immutable here.
	listing.Title = title
	listing.Description = strings.TrimSpace(in.Description)
	listing.Category = in.Category
	listing.UrgencyReason = strings.TrimSpace(in.UrgencyReason)
	if err := s.repo.Update(ctx, listing); err != nil {
		return nil, mapRepoErr(err)
	}
	return listing, nil
}

// refreshStatus persists the derived active -> awaiting_choice transition when
// the deadline has passed. Best effort: losing the guarded update to a
// concurrent writer just means someone else already moved it.
func (s *listingService) refreshStatus(ctx context.Context, listing *model.Listing) {
	effective := listing.EffectiveStatus(s.now())
	if effective == listing.Status {
		return
	}
	err := s.repo.UpdateStatus(ctx, listing.ID, listing.Status, effective)
	if err != nil && !errors.Is(err, repository.ErrNoRowsAffected) {
		s.logger.Warn("persisting deadline transition failed",
			zap.String("listing_id", listing.ID), zap.Error(err))
	}
	listing.Status = effective
}

func mapRepoErr(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return fmt.Errorf("%w: %v", ErrTransient, err)
}
