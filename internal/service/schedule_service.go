package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/wallsetting-api/internal/models"
	appErrors "github.com/noah-isme/wallsetting-api/pkg/errors"
)

type scheduleRepository interface {
	List(ctx context.Context, filter models.ScheduleFilter) ([]models.Schedule, int, error)
	FindByID(ctx context.Context, id string) (*models.Schedule, error)
	Create(ctx context.Context, schedule *models.Schedule) error
	Update(ctx context.Context, schedule *models.Schedule) error
	Delete(ctx context.Context, id string) error
}

// ScheduleRequest is the create and full-update payload for a schedule.
type ScheduleRequest struct {
	BrandName   string              `json:"brand_name" validate:"required,max=100"`
	NameKR      string              `json:"name_kr" validate:"required,max=100"`
	WallName    string              `json:"wall_name" validate:"required,max=100"`
	Type        models.ScheduleType `json:"type" validate:"required,oneof=SETTING REMOVAL EVENT"`
	Date        models.Date         `json:"date"`
	Description *string             `json:"description" validate:"omitempty,max=1000"`
}

// ScheduleService coordinates schedule operations.
type ScheduleService struct {
	repo      scheduleRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewScheduleService constructs ScheduleService.
func NewScheduleService(repo scheduleRepository, validate *validator.Validate, logger *zap.Logger) *ScheduleService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ScheduleService{repo: repo, validator: validate, logger: logger}
}

// List returns schedules with pagination metadata.
func (s *ScheduleService) List(ctx context.Context, filter models.ScheduleFilter) ([]models.Schedule, *models.Pagination, error) {
	if filter.Type != "" && !filter.Type.Valid() {
		return nil, nil, appErrors.Clone(appErrors.ErrValidation, "type must be one of SETTING, REMOVAL, EVENT")
	}
	if filter.From != nil && filter.To != nil && filter.From.AfterDate(*filter.To) {
		return nil, nil, appErrors.Clone(appErrors.ErrValidation, "from must not be after to")
	}
	filter.Page, filter.PageSize = models.Normalize(filter.Page, filter.PageSize)

	schedules, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list schedules")
	}
	if schedules == nil {
		schedules = []models.Schedule{}
	}
	return schedules, &models.Pagination{Page: filter.Page, PageSize: filter.PageSize, TotalCount: total}, nil
}

// Get returns a schedule by ID.
func (s *ScheduleService) Get(ctx context.Context, id string) (*models.Schedule, error) {
	schedule, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "schedule not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load schedule")
	}
	return schedule, nil
}

// Create inserts a schedule and returns it with its new ID.
func (s *ScheduleService) Create(ctx context.Context, req ScheduleRequest) (*models.Schedule, error) {
	if err := s.validate(&req); err != nil {
		return nil, err
	}
	schedule := &models.Schedule{}
	applyScheduleRequest(schedule, req)
	if err := s.repo.Create(ctx, schedule); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create schedule")
	}
	s.logger.Debug("schedule created", zap.String("id", schedule.ID), zap.String("brand_name", schedule.BrandName), zap.String("type", string(schedule.Type)))
	return schedule, nil
}

// Update replaces every field of a schedule.
func (s *ScheduleService) Update(ctx context.Context, id string, req ScheduleRequest) (*models.Schedule, error) {
	if err := s.validate(&req); err != nil {
		return nil, err
	}
	schedule, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	applyScheduleRequest(schedule, req)
	if err := s.repo.Update(ctx, schedule); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "schedule not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update schedule")
	}
	return schedule, nil
}

// Delete removes a schedule.
func (s *ScheduleService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "schedule not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete schedule")
	}
	return nil
}

// validate trims the name fields in place so that whitespace-only values
// fail the required rule instead of reaching the store.
func (s *ScheduleService) validate(req *ScheduleRequest) error {
	req.BrandName = strings.TrimSpace(req.BrandName)
	req.NameKR = strings.TrimSpace(req.NameKR)
	req.WallName = strings.TrimSpace(req.WallName)
	if err := s.validator.Struct(req); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid schedule payload")
	}
	if req.Date.IsZero() {
		return appErrors.Clone(appErrors.ErrValidation, "date is required (YYYY-MM-DD)")
	}
	return nil
}

func applyScheduleRequest(schedule *models.Schedule, req ScheduleRequest) {
	schedule.BrandName = req.BrandName
	schedule.NameKR = req.NameKR
	schedule.WallName = req.WallName
	schedule.Type = req.Type
	schedule.Date = req.Date
	schedule.Description = req.Description
}
