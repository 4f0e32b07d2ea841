package dto

import "github.com/noah-isme/wallsetting-api/internal/models"

// WallCycle is the setting cadence of one wall.
type WallCycle struct {
	AvgCycle     int `json:"avg_cycle"`
	SettingCount int `json:"setting_count"`
}

// NextSettingView points at the upcoming SETTING of a brand.
type NextSettingView struct {
	Date     models.Date `json:"date"`
	WallName string      `json:"wall_name"`
}

// BrandScheduleView is one brand entry of the schedule summary.
// Walls is never nil so that it serialises as {}.
type BrandScheduleView struct {
	BrandName   string               `json:"brand_name"`
	NameKR      string               `json:"name_kr"`
	Walls       map[string]WallCycle `json:"walls"`
	NextSetting *NextSettingView     `json:"next_setting"`
}
