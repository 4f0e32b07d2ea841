package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/wallsetting-api/internal/dto"
	"github.com/noah-isme/wallsetting-api/internal/service"
	"github.com/noah-isme/wallsetting-api/pkg/response"
)

type scheduleSummaryService interface {
	Summary(ctx context.Context) ([]dto.BrandScheduleView, error)
}

type summaryExporter interface {
	ExportSummary(ctx context.Context, format string) (*service.ExportFile, error)
}

// ScheduleSummaryHandler serves the per-brand setting summary.
type ScheduleSummaryHandler struct {
	summary  scheduleSummaryService
	exporter summaryExporter
}

// NewScheduleSummaryHandler constructs the handler.
func NewScheduleSummaryHandler(summary scheduleSummaryService, exporter summaryExporter) *ScheduleSummaryHandler {
	return &ScheduleSummaryHandler{summary: summary, exporter: exporter}
}

// Summary godoc
// @Summary Brand wall-setting summary
// @Description Average setting cycle per wall and the next scheduled setting per brand
// @Tags ScheduleSummary
// @Produce json
// @Success 200 {object} response.Envelope{data=[]dto.BrandScheduleView}
// @Failure 500 {object} response.Envelope
// @Router /schedule-summary [get]
func (h *ScheduleSummaryHandler) Summary(c *gin.Context) {
	views, err := h.summary.Summary(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, views, nil)
}

// Export godoc
// @Summary Export the brand wall-setting summary
// @Tags ScheduleSummary
// @Produce text/csv
// @Produce application/pdf
// @Security BearerAuth
// @Param format query string false "csv (default) or pdf"
// @Success 200 {file} binary
// @Router /schedule-summary/export [get]
func (h *ScheduleSummaryHandler) Export(c *gin.Context) {
	format := strings.ToLower(strings.TrimSpace(c.DefaultQuery("format", service.ExportFormatCSV)))
	file, err := h.exporter.ExportSummary(c.Request.Context(), format)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Attachment(c, file.Filename, file.ContentType, file.Body)
}
