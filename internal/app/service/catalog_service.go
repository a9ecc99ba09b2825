package service

import (
	"context"
	"math"
	"strconv"
	"strings"
	"time"

	"autohaven/internal/common"
	"autohaven/internal/domain/filter"
	"autohaven/internal/domain/model"
	"autohaven/internal/domain/repository"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
)

const (
	DefaultPage  = 1
	DefaultLimit = 10
	MaxLimit     = 100
)

type CatalogService struct {
	listingRepo repository.ListingRepository
	now         func() time.Time
}

func NewCatalogService(listingRepo repository.ListingRepository) *CatalogService {
	return &CatalogService{listingRepo: listingRepo, now: time.Now}
}

type CreateListingRequest struct {
	Make         string   `json:"make" validate:"required"`
	Model        string   `json:"model" validate:"required"`
	Year         *int     `json:"year" validate:"required,gt=0"`
	Price        *float64 `json:"price" validate:"required,gte=0"`
	Mileage      *float64 `json:"mileage" validate:"required,gte=0"`
	FuelType     string   `json:"fuelType" validate:"required"`
	Transmission string   `json:"transmission" validate:"required"`
	ImageURL     string   `json:"imageUrl" validate:"required,uri"`
	Description  string   `json:"description" validate:"required"`
	Features     []string `json:"features"`
	IsAvailable  *bool    `json:"isAvailable"`
}

type ListResult struct {
	Items []model.Listing
	Total int
	Page  int
	Limit int
}

// NormalizePage applies the paging defaults: non-positive values fall back
// to page 1 and limit 10, and limit is capped at MaxLimit.
func NormalizePage(page, limit int) (int, int) {
	if page <= 0 {
		page = DefaultPage
	}
	if limit <= 0 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	return page, limit
}

// pageOffset is the number of rows before page. It saturates at math.MaxInt
// instead of wrapping, so a page past every row is simply empty.
func pageOffset(page, limit int) int {
	if page-1 > math.MaxInt/limit {
		return math.MaxInt
	}
	return (page - 1) * limit
}

func (s *CatalogService) List(ctx context.Context, page, limit int, criteria filter.Criteria) (*ListResult, error) {
	page, limit = NormalizePage(page, limit)
	items, total, err := s.listingRepo.List(ctx, criteria, limit, pageOffset(page, limit))
	if err != nil {
		return nil, common.Errorf("failed to list cars: %w", err)
	}
	return &ListResult{Items: items, Total: total, Page: page, Limit: limit}, nil
}

func (s *CatalogService) Get(ctx context.Context, id string) (*model.Listing, error) {
	l, err := s.listingRepo.FindByID(ctx, id)
	if err != nil {
		return nil, common.Errorf("failed to get car %s: %w", id, err)
	}
	return l, nil
}

func requireAdmin(caller model.CallerIdentity) error {
	if !caller.IsAdmin() {
		return common.Errorf("admin access required: %w", common.ErrForbidden)
	}
	return nil
}

// listingSlug builds "2022-toyota-camry" style slugs.
func listingSlug(year int, carMake, carModel string) string {
	return slug.Make(strconv.Itoa(year) + " " + carMake + " " + carModel)
}

func trimFeatures(features []string) []string {
	out := make([]string, 0, len(features))
	for _, f := range features {
		if f = strings.TrimSpace(f); f != "" {
			out = append(out, f)
		}
	}
	return out
}

func (s *CatalogService) Create(ctx context.Context, caller model.CallerIdentity, req CreateListingRequest) (*model.Listing, error) {
	if err := requireAdmin(caller); err != nil {
		return nil, err
	}

	req.Make = strings.TrimSpace(req.Make)
	req.Model = strings.TrimSpace(req.Model)
	req.FuelType = strings.TrimSpace(req.FuelType)
	req.Transmission = strings.TrimSpace(req.Transmission)
	req.ImageURL = strings.TrimSpace(req.ImageURL)
	req.Description = strings.TrimSpace(req.Description)
	if err := common.Validate(req); err != nil {
		return nil, err
	}

	now := s.now().UTC()
	listing := &model.Listing{
		ID:           uuid.NewString(),
		Slug:         listingSlug(*req.Year, req.Make, req.Model),
		Make:         req.Make,
		Model:        req.Model,
		Year:         *req.Year,
		Price:        *req.Price,
		Mileage:      *req.Mileage,
		FuelType:     req.FuelType,
		Transmission: req.Transmission,
		ImageURL:     req.ImageURL,
		Description:  req.Description,
		Features:     trimFeatures(req.Features),
		IsAvailable:  true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if req.IsAvailable != nil {
		listing.IsAvailable = *req.IsAvailable
	}

	if err := s.listingRepo.Create(ctx, listing); err != nil {
		return nil, common.Errorf("failed to create car: %w", err)
	}
	return listing, nil
}

func trimPtr(p *string) {
	if p != nil {
		*p = strings.TrimSpace(*p)
	}
}

// Update replaces the fields present in patch. The merged record must still
// satisfy the listing invariants; only the patched columns are written.
func (s *CatalogService) Update(ctx context.Context, caller model.CallerIdentity, id string, patch model.ListingPatch) (*model.Listing, error) {
	if err := requireAdmin(caller); err != nil {
		return nil, err
	}

	existing, err := s.listingRepo.FindByID(ctx, id)
	if err != nil {
		return nil, common.Errorf("failed to get car %s: %w", id, err)
	}

	patch.Slug = nil
	if patch.IsEmpty() {
		return existing, nil
	}

	trimPtr(patch.Make)
	trimPtr(patch.Model)
	trimPtr(patch.FuelType)
	trimPtr(patch.Transmission)
	trimPtr(patch.ImageURL)
	trimPtr(patch.Description)
	if patch.Features != nil {
		features := trimFeatures(*patch.Features)
		patch.Features = &features
	}

	merged := patch.ApplyTo(*existing)
	if err := common.Validate(merged); err != nil {
		return nil, err
	}
	if patch.TouchesTitle() {
		newSlug := listingSlug(merged.Year, merged.Make, merged.Model)
		patch.Slug = &newSlug
	}

	updated, err := s.listingRepo.Update(ctx, id, patch)
	if err != nil {
		return nil, common.Errorf("failed to update car %s: %w", id, err)
	}
	return updated, nil
}

func (s *CatalogService) Delete(ctx context.Context, caller model.CallerIdentity, id string) error {
	if err := requireAdmin(caller); err != nil {
		return err
	}
	if err := s.listingRepo.Delete(ctx, id); err != nil {
		return common.Errorf("failed to delete car %s: %w", id, err)
	}
	return nil
}
