package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// WallNames is the ordered wall list of a brand, stored as JSON text.
type WallNames []string

// Value implements driver.Valuer.
func (w WallNames) Value() (driver.Value, error) {
	if w == nil {
		return "[]", nil
	}
	raw, err := json.Marshal([]string(w))
	if err != nil {
		return nil, err
	}
	return string(raw), nil
}

// Scan implements sql.Scanner.
func (w *WallNames) Scan(v interface{}) error {
	var raw []byte
	switch x := v.(type) {
	case nil:
		*w = WallNames{}
		return nil
	case []byte:
		raw = x
	case string:
		raw = []byte(x)
	default:
		return fmt.Errorf("wall_names: unsupported scan type %T", v)
	}
	if len(raw) == 0 {
		*w = WallNames{}
		return nil
	}
	var names []string
	if err := json.Unmarshal(raw, &names); err != nil {
		return fmt.Errorf("wall_names: decode %q: %w", string(raw), err)
	}
	if names == nil {
		names = []string{}
	}
	*w = names
	return nil
}

// Contains reports whether name is one of the walls.
func (w WallNames) Contains(name string) bool {
	for _, n := range w {
		if n == name {
			return true
		}
	}
	return false
}

// BrandInfo is a climbing gym brand profile.
type BrandInfo struct {
	ID           string    `db:"id" json:"id"`
	Name         string    `db:"name" json:"name"`
	Brand        string    `db:"brand" json:"brand"`
	NameKR       string    `db:"name_kr" json:"name_kr"`
	WallNames    WallNames `db:"wall_names" json:"wall_names"`
	ProfileImage *string   `db:"profile_image" json:"profile_image,omitempty"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// BrandInfoFilter defines filter criteria for listing brands.
type BrandInfoFilter struct {
	Search    string
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}
