package models

// CycleSummary is the average re-setting cycle for one wall of a brand.
// SettingCount counts consecutive SETTING pairs, not events.
type CycleSummary struct {
	BrandName    string `db:"brand_name" json:"brand_name"`
	NameKR       string `db:"name_kr" json:"name_kr"`
	WallName     string `db:"wall_name" json:"wall_name"`
	AvgCycle     int    `db:"avg_cycle" json:"avg_cycle"`
	SettingCount int    `db:"setting_count" json:"setting_count"`
}

// NextSetting is the nearest future SETTING event of a brand.
type NextSetting struct {
	BrandName string `db:"brand_name" json:"brand_name"`
	NameKR    string `db:"name_kr" json:"name_kr"`
	WallName  string `db:"wall_name" json:"wall_name"`
	Date      Date   `db:"date" json:"date"`
}
