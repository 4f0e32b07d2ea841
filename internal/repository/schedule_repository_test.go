package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/wallsetting-api/internal/models"
)

var scheduleRowColumns = []string{"id", "brand_name", "name_kr", "wall_name", "type", "date", "description", "created_at", "updated_at"}

func TestScheduleRepositoryListWithFilters(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewScheduleRepository(db)

	from := models.NewDate(2024, time.January, 1)
	to := models.NewDate(2024, time.January, 31)
	now := time.Now()
	rows := sqlmock.NewRows(scheduleRowColumns).
		AddRow("s1", "A", "에이", "main", "SETTING", time.Date(2024, 1, 11, 0, 0, 0, 0, time.UTC), nil, now, now)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, brand_name, name_kr, wall_name, type, date, description, created_at, updated_at FROM schedules WHERE 1=1 AND brand_name = $1 AND type = $2 AND date >= $3 AND date <= $4 ORDER BY date DESC, id ASC LIMIT 20 OFFSET 0")).
		WithArgs("A", "SETTING", "2024-01-01", "2024-01-31").
		WillReturnRows(rows)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM schedules WHERE 1=1 AND brand_name = $1")).
		WithArgs("A", "SETTING", "2024-01-01", "2024-01-31").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	schedules, total, err := repo.List(context.Background(), models.ScheduleFilter{
		BrandName: "A",
		Type:      models.ScheduleTypeSetting,
		From:      &from,
		To:        &to,
	})
	require.NoError(t, err)
	require.Len(t, schedules, 1)
	assert.Equal(t, 1, total)
	assert.Equal(t, "2024-01-11", schedules[0].Date.String())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestScheduleRepositoryListByType(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewScheduleRepository(db)

	now := time.Now()
	rows := sqlmock.NewRows(scheduleRowColumns).
		AddRow("s1", "A", "에이", "main", "SETTING", "2024-01-01", nil, now, now).
		AddRow("s2", "A", "에이", "main", "SETTING", "2024-01-11", "new set", now, now)
	mock.ExpectQuery(regexp.QuoteMeta("FROM schedules WHERE type = $1 ORDER BY brand_name, wall_name, date, id")).
		WithArgs("SETTING").
		WillReturnRows(rows)

	schedules, err := repo.ListByType(context.Background(), models.ScheduleTypeSetting)
	require.NoError(t, err)
	require.Len(t, schedules, 2)
	require.NotNil(t, schedules[1].Description)
	assert.Equal(t, "new set", *schedules[1].Description)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestScheduleRepositoryCreate(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewScheduleRepository(db)

	mock.ExpectExec("INSERT INTO schedules").WillReturnResult(sqlmock.NewResult(1, 1))

	schedule := &models.Schedule{BrandName: "A", NameKR: "에이", WallName: "main", Type: models.ScheduleTypeSetting, Date: models.NewDate(2024, 1, 1)}
	require.NoError(t, repo.Create(context.Background(), schedule))
	assert.NotEmpty(t, schedule.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestScheduleRepositoryUpdateMissing(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewScheduleRepository(db)

	mock.ExpectExec("UPDATE schedules SET").WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Update(context.Background(), &models.Schedule{ID: "missing"})
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestScheduleRepositoryListWrapsErrors(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewScheduleRepository(db)

	mock.ExpectQuery("FROM schedules").WillReturnError(sql.ErrConnDone)

	_, _, err := repo.List(context.Background(), models.ScheduleFilter{})
	require.Error(t, err)
	assert.ErrorIs(t, err, sql.ErrConnDone)
	assert.Contains(t, err.Error(), "list schedules")
}
