package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/wallsetting-api/internal/models"
	"github.com/noah-isme/wallsetting-api/internal/repository"
	appErrors "github.com/noah-isme/wallsetting-api/pkg/errors"
)

type brandInfoRepository interface {
	List(ctx context.Context, filter models.BrandInfoFilter) ([]models.BrandInfo, int, error)
	FindByID(ctx context.Context, id string) (*models.BrandInfo, error)
	ExistsByName(ctx context.Context, name string, excludeID string) (bool, error)
	Create(ctx context.Context, brand *models.BrandInfo) error
	Update(ctx context.Context, brand *models.BrandInfo) error
	UpdateProfileImage(ctx context.Context, id string, path *string) error
	Delete(ctx context.Context, id string) error
}

// BrandInfoRequest is the create and full-update payload for a brand profile.
type BrandInfoRequest struct {
	Name         string   `json:"name" validate:"required,max=100"`
	Brand        string   `json:"brand" validate:"required,max=100"`
	NameKR       string   `json:"name_kr" validate:"required,max=100"`
	WallNames    []string `json:"wall_names" validate:"dive,required,max=100"`
	ProfileImage *string  `json:"profile_image" validate:"omitempty,max=255"`
}

type brandListPage struct {
	Items      []models.BrandInfo `json:"items"`
	Pagination models.Pagination  `json:"pagination"`
}

// BrandInfoService coordinates brand profile operations.
type BrandInfoService struct {
	repo      brandInfoRepository
	cache     *CacheService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewBrandInfoService constructs BrandInfoService. cache may be nil.
func NewBrandInfoService(repo brandInfoRepository, cache *CacheService, validate *validator.Validate, logger *zap.Logger) *BrandInfoService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BrandInfoService{repo: repo, cache: cache, validator: validate, logger: logger}
}

// List returns brand profiles with pagination metadata and whether the page
// was served from cache.
func (s *BrandInfoService) List(ctx context.Context, filter models.BrandInfoFilter) ([]models.BrandInfo, *models.Pagination, bool, error) {
	filter.Page, filter.PageSize = models.Normalize(filter.Page, filter.PageSize)
	key := s.cache.Key("list", strings.ToLower(filter.Search), strconv.Itoa(filter.Page), strconv.Itoa(filter.PageSize), filter.SortBy, strings.ToUpper(filter.SortOrder))

	var cached brandListPage
	if s.cache.Get(ctx, key, &cached) {
		pagination := cached.Pagination
		return cached.Items, &pagination, true, nil
	}

	brands, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list brands info")
	}
	if brands == nil {
		brands = []models.BrandInfo{}
	}
	pagination := models.Pagination{Page: filter.Page, PageSize: filter.PageSize, TotalCount: total}
	s.cache.Set(ctx, key, brandListPage{Items: brands, Pagination: pagination})
	return brands, &pagination, false, nil
}

// Get returns a brand profile by ID.
func (s *BrandInfoService) Get(ctx context.Context, id string) (*models.BrandInfo, error) {
	brand, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "brand info not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load brand info")
	}
	return brand, nil
}

// Create adds a brand profile. Names are unique.
func (s *BrandInfoService) Create(ctx context.Context, req BrandInfoRequest) (*models.BrandInfo, error) {
	if err := s.validate(&req); err != nil {
		return nil, err
	}

	exists, err := s.repo.ExistsByName(ctx, req.Name, "")
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check brand name")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrConflict, "brand name already exists")
	}

	brand := &models.BrandInfo{
		Name:         req.Name,
		Brand:        req.Brand,
		NameKR:       req.NameKR,
		WallNames:    models.WallNames(req.WallNames),
		ProfileImage: req.ProfileImage,
	}
	if err := s.repo.Create(ctx, brand); err != nil {
		if errors.Is(err, repository.ErrDuplicateName) {
			return nil, appErrors.Clone(appErrors.ErrConflict, "brand name already exists")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create brand info")
	}
	s.cache.Invalidate(ctx)
	return brand, nil
}

// Update replaces a brand profile.
func (s *BrandInfoService) Update(ctx context.Context, id string, req BrandInfoRequest) (*models.BrandInfo, error) {
	if err := s.validate(&req); err != nil {
		return nil, err
	}

	brand, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	exists, err := s.repo.ExistsByName(ctx, req.Name, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check brand name")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrConflict, "brand name already exists")
	}

	brand.Name = req.Name
	brand.Brand = req.Brand
	brand.NameKR = req.NameKR
	brand.WallNames = models.WallNames(req.WallNames)
	brand.ProfileImage = req.ProfileImage

	if err := s.repo.Update(ctx, brand); err != nil {
		switch {
		case errors.Is(err, repository.ErrDuplicateName):
			return nil, appErrors.Clone(appErrors.ErrConflict, "brand name already exists")
		case errors.Is(err, sql.ErrNoRows):
			return nil, appErrors.Clone(appErrors.ErrNotFound, "brand info not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update brand info")
	}
	s.cache.Invalidate(ctx)
	return brand, nil
}

// SetProfileImage records a new profile image reference for the brand.
func (s *BrandInfoService) SetProfileImage(ctx context.Context, id string, path string) error {
	if err := s.repo.UpdateProfileImage(ctx, id, &path); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "brand info not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update profile image")
	}
	s.cache.Invalidate(ctx)
	return nil
}

// Delete removes a brand profile.
func (s *BrandInfoService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "brand info not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete brand info")
	}
	s.cache.Invalidate(ctx)
	return nil
}

func (s *BrandInfoService) validate(req *BrandInfoRequest) error {
	req.Name = strings.TrimSpace(req.Name)
	req.Brand = strings.TrimSpace(req.Brand)
	req.NameKR = strings.TrimSpace(req.NameKR)
	if req.WallNames != nil {
		walls := make([]string, len(req.WallNames))
		for i, wall := range req.WallNames {
			walls[i] = strings.TrimSpace(wall)
		}
		req.WallNames = walls
	}
	if err := s.validator.Struct(req); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid brand info payload")
	}
	seen := make(map[string]struct{}, len(req.WallNames))
	for _, wall := range req.WallNames {
		if _, dup := seen[wall]; dup {
			return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("duplicate wall name %q", wall))
		}
		seen[wall] = struct{}{}
	}
	return nil
}
