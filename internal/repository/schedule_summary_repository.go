package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/wallsetting-api/internal/models"
)

// cycleSummaryQuery pairs every SETTING with the next one on the same wall
// and averages the day gaps. Walls with a single SETTING produce no pair and
// therefore no row. name_kr is the byte-wise minimum over all of the wall's
// SETTING rows, including the last one.
const cycleSummaryQuery = `WITH settings AS (
	SELECT brand_name, wall_name, date,
		MIN(name_kr COLLATE "C") OVER (PARTITION BY brand_name, wall_name) AS wall_name_kr,
		LEAD(date) OVER (PARTITION BY brand_name, wall_name ORDER BY date, id) AS next_date
	FROM schedules
	WHERE type = 'SETTING'
)
SELECT brand_name, MIN(wall_name_kr) AS name_kr, wall_name,
	ROUND(AVG(next_date - date))::int AS avg_cycle,
	COUNT(*)::int AS setting_count
FROM settings
WHERE next_date IS NOT NULL
GROUP BY brand_name, wall_name
ORDER BY brand_name COLLATE "C", wall_name COLLATE "C"`

// nextSettingQuery picks, per brand, the earliest SETTING strictly after the
// reference day. Ties on date resolve to the smallest wall_name, then id.
const nextSettingQuery = `WITH upcoming AS (
	SELECT brand_name, name_kr, wall_name, date,
		ROW_NUMBER() OVER (PARTITION BY brand_name ORDER BY date, wall_name COLLATE "C", id) AS rn
	FROM schedules
	WHERE type = 'SETTING' AND date > $1::date
)
SELECT brand_name, name_kr, wall_name, date
FROM upcoming
WHERE rn = 1
ORDER BY brand_name`

// ScheduleSummaryRepository runs the aggregated summary reads in the database.
type ScheduleSummaryRepository struct {
	db *sqlx.DB
}

// NewScheduleSummaryRepository constructs the summary repository.
func NewScheduleSummaryRepository(db *sqlx.DB) *ScheduleSummaryRepository {
	return &ScheduleSummaryRepository{db: db}
}

// CycleSummaries returns the average setting cycle per (brand, wall).
func (r *ScheduleSummaryRepository) CycleSummaries(ctx context.Context) ([]models.CycleSummary, error) {
	var rows []models.CycleSummary
	if err := r.db.SelectContext(ctx, &rows, cycleSummaryQuery); err != nil {
		return nil, fmt.Errorf("query cycle summaries: %w", err)
	}
	return rows, nil
}

// NextSettings returns the nearest SETTING after today's date per brand.
func (r *ScheduleSummaryRepository) NextSettings(ctx context.Context, today models.Date) ([]models.NextSetting, error) {
	var rows []models.NextSetting
	if err := r.db.SelectContext(ctx, &rows, nextSettingQuery, today); err != nil {
		return nil, fmt.Errorf("query next settings: %w", err)
	}
	return rows, nil
}
