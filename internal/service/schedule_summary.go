package service

import (
	"fmt"
	"sort"
	"strings"

	"github.com/noah-isme/wallsetting-api/internal/dto"
	"github.com/noah-isme/wallsetting-api/internal/models"
	appErrors "github.com/noah-isme/wallsetting-api/pkg/errors"
)

type wallKey struct {
	brand string
	wall  string
}

// AggregateCycles computes the average day gap between consecutive SETTING
// events per (brand, wall). Groups with a single SETTING yield no row and
// non-SETTING records are ignored. name_kr is the smallest value seen on the
// wall's SETTING events. Rows are ordered by brand then wall.
func AggregateCycles(records []models.Schedule) ([]models.CycleSummary, error) {
	groups := make(map[wallKey][]models.Schedule)
	for _, rec := range records {
		if rec.Type != models.ScheduleTypeSetting {
			continue
		}
		if err := checkRecord(rec); err != nil {
			return nil, err
		}
		key := wallKey{brand: rec.BrandName, wall: rec.WallName}
		groups[key] = append(groups[key], rec)
	}

	out := make([]models.CycleSummary, 0, len(groups))
	for key, events := range groups {
		if len(events) < 2 {
			continue
		}
		sort.SliceStable(events, func(i, j int) bool {
			if !events[i].Date.Equal(events[j].Date.Time) {
				return events[i].Date.BeforeDate(events[j].Date)
			}
			return events[i].ID < events[j].ID
		})
		total := 0
		for i := 1; i < len(events); i++ {
			total += events[i].Date.DaysSince(events[i-1].Date)
		}
		nameKR := events[0].NameKR
		for _, e := range events[1:] {
			if e.NameKR < nameKR {
				nameKR = e.NameKR
			}
		}
		gaps := len(events) - 1
		out = append(out, models.CycleSummary{
			BrandName:    key.brand,
			NameKR:       nameKR,
			WallName:     key.wall,
			AvgCycle:     roundHalfUp(total, gaps),
			SettingCount: gaps,
		})
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].BrandName != out[j].BrandName {
			return out[i].BrandName < out[j].BrandName
		}
		return out[i].WallName < out[j].WallName
	})
	return out, nil
}

// ResolveNextSettings returns, per brand, the earliest SETTING dated strictly
// after today. Equal dates resolve to the smallest wall_name in byte order,
// then the smallest id.
func ResolveNextSettings(records []models.Schedule, today models.Date) ([]models.NextSetting, error) {
	best := make(map[string]models.Schedule)
	for _, rec := range records {
		if rec.Type != models.ScheduleTypeSetting {
			continue
		}
		if err := checkRecord(rec); err != nil {
			return nil, err
		}
		if !rec.Date.AfterDate(today) {
			continue
		}
		current, ok := best[rec.BrandName]
		if !ok || precedes(rec, current) {
			best[rec.BrandName] = rec
		}
	}

	out := make([]models.NextSetting, 0, len(best))
	for _, rec := range best {
		out = append(out, models.NextSetting{
			BrandName: rec.BrandName,
			NameKR:    rec.NameKR,
			WallName:  rec.WallName,
			Date:      rec.Date,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].BrandName < out[j].BrandName })
	return out, nil
}

// MergeSummary joins cycle rows and next-setting rows into one view per
// brand, ordered by brand_name. A brand missing from one side keeps an empty
// walls map or a nil next_setting.
func MergeSummary(cycles []models.CycleSummary, next []models.NextSetting) []dto.BrandScheduleView {
	views := make(map[string]*dto.BrandScheduleView)
	entry := func(brand, nameKR string) *dto.BrandScheduleView {
		v, ok := views[brand]
		if !ok {
			v = &dto.BrandScheduleView{BrandName: brand, NameKR: nameKR, Walls: map[string]dto.WallCycle{}}
			views[brand] = v
		}
		return v
	}

	for _, row := range cycles {
		entry(row.BrandName, row.NameKR).Walls[row.WallName] = dto.WallCycle{
			AvgCycle:     row.AvgCycle,
			SettingCount: row.SettingCount,
		}
	}
	for _, row := range next {
		entry(row.BrandName, row.NameKR).NextSetting = &dto.NextSettingView{
			Date:     row.Date,
			WallName: row.WallName,
		}
	}

	out := make([]dto.BrandScheduleView, 0, len(views))
	for _, v := range views {
		out = append(out, *v)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].BrandName < out[j].BrandName })
	return out
}

func precedes(a, b models.Schedule) bool {
	if !a.Date.Equal(b.Date.Time) {
		return a.Date.BeforeDate(b.Date)
	}
	if a.WallName != b.WallName {
		return a.WallName < b.WallName
	}
	return a.ID < b.ID
}

// roundHalfUp returns round(sum/n) with halves rounded up. sum must be >= 0.
func roundHalfUp(sum, n int) int {
	return (2*sum + n) / (2 * n)
}

func checkRecord(rec models.Schedule) error {
	var problem string
	switch {
	case rec.Date.IsZero():
		problem = "missing date"
	case strings.TrimSpace(rec.BrandName) == "":
		problem = "missing brand_name"
	case strings.TrimSpace(rec.WallName) == "":
		problem = "missing wall_name"
	default:
		return nil
	}
	return appErrors.Clone(appErrors.ErrMalformedRecord, fmt.Sprintf("schedule %q: %s", rec.ID, problem))
}
