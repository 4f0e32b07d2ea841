package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/noah-isme/wallsetting-api/internal/models"
)

// ErrDuplicateName is returned when a unique name constraint is violated.
var ErrDuplicateName = errors.New("duplicate name")

const uniqueViolation = "23505"

const brandInfoColumns = "id, name, brand, name_kr, wall_names, profile_image, created_at, updated_at"

// BrandInfoRepository manages persistence for brand profiles.
type BrandInfoRepository struct {
	db *sqlx.DB
}

// NewBrandInfoRepository constructs a new brand profile repository.
func NewBrandInfoRepository(db *sqlx.DB) *BrandInfoRepository {
	return &BrandInfoRepository{db: db}
}

// List returns brand profiles matching filter criteria.
func (r *BrandInfoRepository) List(ctx context.Context, filter models.BrandInfoFilter) ([]models.BrandInfo, int, error) {
	base := "FROM brands_info WHERE 1=1"
	var args []interface{}

	if filter.Search != "" {
		placeholder := len(args) + 1
		base += fmt.Sprintf(" AND (LOWER(name) LIKE $%d OR LOWER(brand) LIKE $%d OR name_kr LIKE $%d)", placeholder, placeholder, placeholder)
		args = append(args, "%"+strings.ToLower(filter.Search)+"%")
	}

	sortBy := filter.SortBy
	allowedSorts := map[string]bool{
		"name":       true,
		"brand":      true,
		"name_kr":    true,
		"created_at": true,
		"updated_at": true,
	}
	if !allowedSorts[sortBy] {
		sortBy = "name"
	}

	order := strings.ToUpper(filter.SortOrder)
	if order != "ASC" && order != "DESC" {
		order = "ASC"
	}

	page, size := models.Normalize(filter.Page, filter.PageSize)
	offset := (page - 1) * size

	query := fmt.Sprintf("SELECT %s %s ORDER BY %s %s LIMIT %d OFFSET %d", brandInfoColumns, base, sortBy, order, size, offset)
	var brands []models.BrandInfo
	if err := r.db.SelectContext(ctx, &brands, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list brands info: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", base)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count brands info: %w", err)
	}
	return brands, total, nil
}

// FindByID returns a brand profile by ID.
func (r *BrandInfoRepository) FindByID(ctx context.Context, id string) (*models.BrandInfo, error) {
	query := "SELECT " + brandInfoColumns + " FROM brands_info WHERE id = $1"
	var brand models.BrandInfo
	if err := r.db.GetContext(ctx, &brand, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find brand info: %w", err)
	}
	return &brand, nil
}

// ExistsByName checks whether another brand already uses name.
func (r *BrandInfoRepository) ExistsByName(ctx context.Context, name string, excludeID string) (bool, error) {
	query := "SELECT 1 FROM brands_info WHERE name = $1"
	args := []interface{}{name}
	if excludeID != "" {
		query += " AND id <> $2"
		args = append(args, excludeID)
	}
	var exists int
	if err := r.db.GetContext(ctx, &exists, query+" LIMIT 1", args...); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check brand name: %w", err)
	}
	return true, nil
}

// Create persists a brand profile.
func (r *BrandInfoRepository) Create(ctx context.Context, brand *models.BrandInfo) error {
	if brand.ID == "" {
		brand.ID = uuid.NewString()
	}
	if brand.WallNames == nil {
		brand.WallNames = models.WallNames{}
	}
	now := time.Now().UTC()
	if brand.CreatedAt.IsZero() {
		brand.CreatedAt = now
	}
	brand.UpdatedAt = now

	const query = `INSERT INTO brands_info (id, name, brand, name_kr, wall_names, profile_image, created_at, updated_at)
VALUES (:id, :name, :brand, :name_kr, :wall_names, :profile_image, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, brand); err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateName
		}
		return fmt.Errorf("create brand info: %w", err)
	}
	return nil
}

// Update replaces every editable field of a brand profile.
func (r *BrandInfoRepository) Update(ctx context.Context, brand *models.BrandInfo) error {
	if brand.WallNames == nil {
		brand.WallNames = models.WallNames{}
	}
	brand.UpdatedAt = time.Now().UTC()
	const query = `UPDATE brands_info SET name = :name, brand = :brand, name_kr = :name_kr, wall_names = :wall_names,
profile_image = :profile_image, updated_at = :updated_at WHERE id = :id`
	res, err := r.db.NamedExecContext(ctx, query, brand)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateName
		}
		return fmt.Errorf("update brand info: %w", err)
	}
	return expectAffected(res)
}

// UpdateProfileImage sets only the profile image reference.
func (r *BrandInfoRepository) UpdateProfileImage(ctx context.Context, id string, path *string) error {
	const query = `UPDATE brands_info SET profile_image = $2, updated_at = $3 WHERE id = $1`
	res, err := r.db.ExecContext(ctx, query, id, path, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("update brand profile image: %w", err)
	}
	return expectAffected(res)
}

// Delete removes a brand profile.
func (r *BrandInfoRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM brands_info WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("delete brand info: %w", err)
	}
	return expectAffected(res)
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && string(pqErr.Code) == uniqueViolation
}

// expectAffected maps a zero-row write to sql.ErrNoRows.
func expectAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}
