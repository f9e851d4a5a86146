package handler

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"finlens/internal/middleware"
	"finlens/internal/service"
)

// ExportHandler serves the downloads tied to a session's last analysis.
type ExportHandler struct {
	svc    service.AnalysisService
	logger *zap.Logger
}

// NewExportHandler creates a new ExportHandler.
func NewExportHandler(svc service.AnalysisService, logger *zap.Logger) *ExportHandler {
	return &ExportHandler{svc: svc, logger: logger}
}

// Excel handles GET /download-excel
// @Summary Download the last financial analysis as xlsx
// @Tags export
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param X-Session-ID header string false "Session id"
// @Success 200 {file} file "financial-analysis.xlsx"
// @Failure 404 {object} ErrorResponse "No financial analysis in this session"
// @Failure 500 {object} ErrorResponse "Workbook generation failed"
// @Router /download-excel [get]
func (h *ExportHandler) Excel(c *gin.Context) {
	h.send(c, h.svc.Workbook)
}

// CSV handles GET /download-csv
// @Summary Download the last financial analysis as CSV
// @Tags export
// @Produce text/csv
// @Param X-Session-ID header string false "Session id"
// @Success 200 {file} file "Line items, one row per entry"
// @Failure 404 {object} ErrorResponse "No financial analysis in this session"
// @Router /download-csv [get]
func (h *ExportHandler) CSV(c *gin.Context) {
	h.send(c, h.svc.CSV)
}

// Extraction handles GET /download-ocr
// @Summary Download the last extraction report
// @Description Returns the text report written for the session's most recent PDF extraction
// @Tags export
// @Produce plain
// @Param X-Session-ID header string false "Session id"
// @Success 200 {file} file "Extraction report"
// @Failure 404 {object} ErrorResponse "No extraction file in this session"
// @Router /download-ocr [get]
func (h *ExportHandler) Extraction(c *gin.Context) {
	h.send(c, h.svc.Artifact)
}

func (h *ExportHandler) send(c *gin.Context, fetch func(context.Context, string) (*service.Download, error)) {
	dl, err := fetch(c.Request.Context(), middleware.GetSessionID(c))
	if err != nil {
		HandleError(c, h.logger, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", dl.Filename))
	c.Data(http.StatusOK, dl.ContentType, dl.Content)
}
