package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/wallsetting-api/internal/models"
)

const scheduleColumns = "id, brand_name, name_kr, wall_name, type, date, description, created_at, updated_at"

// ScheduleRepository manages persistence for wall schedules.
type ScheduleRepository struct {
	db *sqlx.DB
}

// NewScheduleRepository constructs a schedule repository.
func NewScheduleRepository(db *sqlx.DB) *ScheduleRepository {
	return &ScheduleRepository{db: db}
}

// List returns schedules matching filter criteria.
func (r *ScheduleRepository) List(ctx context.Context, filter models.ScheduleFilter) ([]models.Schedule, int, error) {
	base := "FROM schedules WHERE 1=1"
	var conditions []string
	var args []interface{}

	if filter.BrandName != "" {
		conditions = append(conditions, fmt.Sprintf("brand_name = $%d", len(args)+1))
		args = append(args, filter.BrandName)
	}
	if filter.WallName != "" {
		conditions = append(conditions, fmt.Sprintf("wall_name = $%d", len(args)+1))
		args = append(args, filter.WallName)
	}
	if filter.Type != "" {
		conditions = append(conditions, fmt.Sprintf("type = $%d", len(args)+1))
		args = append(args, string(filter.Type))
	}
	if filter.From != nil {
		conditions = append(conditions, fmt.Sprintf("date >= $%d", len(args)+1))
		args = append(args, *filter.From)
	}
	if filter.To != nil {
		conditions = append(conditions, fmt.Sprintf("date <= $%d", len(args)+1))
		args = append(args, *filter.To)
	}
	if len(conditions) > 0 {
		base += " AND " + strings.Join(conditions, " AND ")
	}

	sortBy := filter.SortBy
	allowedSorts := map[string]bool{
		"date":       true,
		"brand_name": true,
		"wall_name":  true,
		"type":       true,
		"created_at": true,
	}
	if !allowedSorts[sortBy] {
		sortBy = "date"
	}
	order := strings.ToUpper(filter.SortOrder)
	if order != "ASC" && order != "DESC" {
		order = "DESC"
	}

	page, size := models.Normalize(filter.Page, filter.PageSize)
	offset := (page - 1) * size

	query := fmt.Sprintf("SELECT %s %s ORDER BY %s %s, id ASC LIMIT %d OFFSET %d", scheduleColumns, base, sortBy, order, size, offset)
	var schedules []models.Schedule
	if err := r.db.SelectContext(ctx, &schedules, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list schedules: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", base)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count schedules: %w", err)
	}
	return schedules, total, nil
}

// ListByType returns every schedule of the given type without paging,
// ordered by brand, wall and date.
func (r *ScheduleRepository) ListByType(ctx context.Context, scheduleType models.ScheduleType) ([]models.Schedule, error) {
	query := "SELECT " + scheduleColumns + " FROM schedules WHERE type = $1 ORDER BY brand_name, wall_name, date, id"
	var schedules []models.Schedule
	if err := r.db.SelectContext(ctx, &schedules, query, string(scheduleType)); err != nil {
		return nil, fmt.Errorf("list schedules by type: %w", err)
	}
	return schedules, nil
}

// FindByID returns a schedule by ID.
func (r *ScheduleRepository) FindByID(ctx context.Context, id string) (*models.Schedule, error) {
	query := "SELECT " + scheduleColumns + " FROM schedules WHERE id = $1"
	var schedule models.Schedule
	if err := r.db.GetContext(ctx, &schedule, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find schedule: %w", err)
	}
	return &schedule, nil
}

// Create inserts a schedule.
func (r *ScheduleRepository) Create(ctx context.Context, schedule *models.Schedule) error {
	if schedule.ID == "" {
		schedule.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if schedule.CreatedAt.IsZero() {
		schedule.CreatedAt = now
	}
	schedule.UpdatedAt = now

	const query = `INSERT INTO schedules (id, brand_name, name_kr, wall_name, type, date, description, created_at, updated_at)
VALUES (:id, :brand_name, :name_kr, :wall_name, :type, :date, :description, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, schedule); err != nil {
		return fmt.Errorf("create schedule: %w", err)
	}
	return nil
}

// Update replaces every editable field of a schedule.
func (r *ScheduleRepository) Update(ctx context.Context, schedule *models.Schedule) error {
	schedule.UpdatedAt = time.Now().UTC()
	const query = `UPDATE schedules SET brand_name = :brand_name, name_kr = :name_kr, wall_name = :wall_name, type = :type,
date = :date, description = :description, updated_at = :updated_at WHERE id = :id`
	res, err := r.db.NamedExecContext(ctx, query, schedule)
	if err != nil {
		return fmt.Errorf("update schedule: %w", err)
	}
	return expectAffected(res)
}

// Delete removes a schedule.
func (r *ScheduleRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM schedules WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("delete schedule: %w", err)
	}
	return expectAffected(res)
}
