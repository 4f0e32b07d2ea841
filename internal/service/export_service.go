package service

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/wallsetting-api/internal/dto"
	appErrors "github.com/noah-isme/wallsetting-api/pkg/errors"
	"github.com/noah-isme/wallsetting-api/pkg/export"
)

// Export formats.
const (
	ExportFormatCSV = "csv"
	ExportFormatPDF = "pdf"
)

var summaryExportHeaders = []string{"brand_name", "name_kr", "wall_name", "avg_cycle", "setting_count", "next_setting_date", "next_setting_wall"}

type summaryProvider interface {
	Summary(ctx context.Context) ([]dto.BrandScheduleView, error)
}

type csvRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

type pdfRenderer interface {
	Render(data export.Dataset, title string) ([]byte, error)
}

// ExportFile is a rendered download.
type ExportFile struct {
	Filename    string
	ContentType string
	Body        []byte
}

// ExportService renders the schedule summary as CSV or PDF.
type ExportService struct {
	summary summaryProvider
	csv     csvRenderer
	pdf     pdfRenderer
	logger  *zap.Logger
	enabled bool
	now     func() time.Time
}

// NewExportService constructs an ExportService.
func NewExportService(summary summaryProvider, csv csvRenderer, pdf pdfRenderer, logger *zap.Logger, enabled bool) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if csv == nil {
		csv = export.NewCSVExporter()
	}
	if pdf == nil {
		pdf = export.NewPDFExporter("")
	}
	return &ExportService{summary: summary, csv: csv, pdf: pdf, logger: logger, enabled: enabled, now: time.Now}
}

// ExportSummary renders the current schedule summary in the requested format.
func (s *ExportService) ExportSummary(ctx context.Context, format string) (*ExportFile, error) {
	if !s.enabled {
		return nil, appErrors.Clone(appErrors.ErrFeatureDisabled, "exports are disabled")
	}
	format = strings.ToLower(strings.TrimSpace(format))
	if format == "" {
		format = ExportFormatCSV
	}
	if format != ExportFormatCSV && format != ExportFormatPDF {
		return nil, appErrors.Clone(appErrors.ErrValidation, "format must be csv or pdf")
	}

	views, err := s.summary.Summary(ctx)
	if err != nil {
		return nil, err
	}
	dataset := SummaryDataset(views)
	stamp := s.now().UTC().Format("20060102-150405")

	var file ExportFile
	switch format {
	case ExportFormatPDF:
		file.Body, err = s.pdf.Render(dataset, "Schedule summary "+stamp)
		file.ContentType = "application/pdf"
	default:
		file.Body, err = s.csv.Render(dataset)
		file.ContentType = "text/csv; charset=utf-8"
	}
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render export")
	}
	file.Filename = fmt.Sprintf("schedule-summary-%s.%s", stamp, format)
	s.logger.Info("schedule summary exported", zap.String("format", format), zap.Int("brands", len(views)), zap.Int("bytes", len(file.Body)))
	return &file, nil
}

// SummaryDataset flattens views to one row per wall. A brand without cycle
// data still gets a single row carrying its next setting.
func SummaryDataset(views []dto.BrandScheduleView) export.Dataset {
	rows := make([]map[string]string, 0, len(views))
	for _, v := range views {
		nextDate, nextWall := "", ""
		if v.NextSetting != nil {
			nextDate = v.NextSetting.Date.String()
			nextWall = v.NextSetting.WallName
		}
		base := func() map[string]string {
			return map[string]string{
				"brand_name":        v.BrandName,
				"name_kr":           v.NameKR,
				"next_setting_date": nextDate,
				"next_setting_wall": nextWall,
			}
		}
		if len(v.Walls) == 0 {
			rows = append(rows, base())
			continue
		}
		walls := make([]string, 0, len(v.Walls))
		for wall := range v.Walls {
			walls = append(walls, wall)
		}
		sort.Strings(walls)
		for _, wall := range walls {
			row := base()
			row["wall_name"] = wall
			row["avg_cycle"] = strconv.Itoa(v.Walls[wall].AvgCycle)
			row["setting_count"] = strconv.Itoa(v.Walls[wall].SettingCount)
			rows = append(rows, row)
		}
	}
	return export.Dataset{Headers: summaryExportHeaders, Rows: rows}
}
