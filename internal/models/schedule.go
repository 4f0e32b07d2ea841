package models

import "time"

// ScheduleType categorises a dated wall event.
type ScheduleType string

const (
	ScheduleTypeSetting ScheduleType = "SETTING"
	ScheduleTypeRemoval ScheduleType = "REMOVAL"
	ScheduleTypeEvent   ScheduleType = "EVENT"
)

// Valid reports whether t is one of the known schedule types.
func (t ScheduleType) Valid() bool {
	switch t {
	case ScheduleTypeSetting, ScheduleTypeRemoval, ScheduleTypeEvent:
		return true
	}
	return false
}

// Schedule is a dated event on one wall of a brand.
type Schedule struct {
	ID          string       `db:"id" json:"id"`
	BrandName   string       `db:"brand_name" json:"brand_name"`
	NameKR      string       `db:"name_kr" json:"name_kr"`
	WallName    string       `db:"wall_name" json:"wall_name"`
	Type        ScheduleType `db:"type" json:"type"`
	Date        Date         `db:"date" json:"date"`
	Description *string      `db:"description" json:"description,omitempty"`
	CreatedAt   time.Time    `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time    `db:"updated_at" json:"updated_at"`
}

// ScheduleFilter describes query params for listing schedules.
type ScheduleFilter struct {
	BrandName string
	WallName  string
	Type      ScheduleType
	From      *Date
	To        *Date
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}
