package handler

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"finlens/internal/domain"
	"finlens/internal/middleware"
	"finlens/internal/multipart"
	"finlens/internal/service"
)

// AnalysisHandler handles document upload and analysis.
type AnalysisHandler struct {
	svc       service.AnalysisService
	maxUpload int64
	logger    *zap.Logger
}

// NewAnalysisHandler creates a new AnalysisHandler. maxUpload bounds the
// request body in bytes.
func NewAnalysisHandler(svc service.AnalysisService, maxUpload int64, logger *zap.Logger) *AnalysisHandler {
	return &AnalysisHandler{svc: svc, maxUpload: maxUpload, logger: logger}
}

// Analyze handles POST /analyze
// @Summary Analyze a financial document
// @Description Upload a PDF or TXT file and run either a financial statement extraction or an earnings call analysis
// @Tags analysis
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "PDF or TXT document (field may also be named document)"
// @Param analysisType formData string false "financial or earnings" Enums(financial, earnings) default(earnings)
// @Param X-Session-ID header string false "Session id returned by a previous call"
// @Success 200 {object} AnalyzeResponse "Analysis completed"
// @Success 202 {object} NeedsReviewResponse "Text could not be extracted; manual review required"
// @Failure 400 {object} ErrorResponse "Missing boundary, missing file, unsupported type or too little text"
// @Failure 413 {object} ErrorResponse "Body too large"
// @Failure 500 {object} ErrorResponse "Unexpected failure"
// @Router /analyze [post]
func (h *AnalysisHandler) Analyze(c *gin.Context) {
	boundary, err := multipart.BoundaryFromContentType(c.GetHeader("Content-Type"))
	if err != nil {
		HandleError(c, h.logger, err)
		return
	}

	body, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUpload))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			HandleError(c, h.logger, domain.ErrFileTooLarge)
			return
		}
		HandleError(c, h.logger, fmt.Errorf("reading request body: %w", err))
		return
	}

	parts := multipart.Decode(body, boundary)
	file, ok := multipart.FindFile(parts, "file", "document")
	if !ok {
		HandleError(c, h.logger, domain.ErrMissingFile)
		return
	}
	analysisType := domain.ParseAnalysisType(multipart.FieldValue(parts, "analysisType"))
	sessionID := middleware.GetSessionID(c)

	result, err := h.svc.Analyze(c.Request.Context(), service.AnalyzeInput{
		SessionID: sessionID,
		Filename:  file.Filename,
		Content:   file.Content,
		Type:      analysisType,
	})
	if err != nil {
		HandleError(c, h.logger, err)
		return
	}

	if result.NeedsReview {
		c.JSON(http.StatusAccepted, NeedsReviewResponse{
			Success:  false,
			NeedsOCR: true,
			Filename: result.Filename,
			OCRFile:  result.ArtifactName,
			Message:  result.Message,
		})
		return
	}

	c.JSON(http.StatusOK, AnalyzeResponse{
		Success:      true,
		AnalysisType: string(result.Type),
		Filename:     result.Filename,
		Analysis:     result.Analysis(),
		OCRAvailable: result.ArtifactName != "",
		OCRFile:      result.ArtifactName,
		Method:       string(result.Method),
		SessionID:    sessionID,
		Source:       string(result.Outcome.Source),
		Provider:     result.Outcome.Provider,
	})
}
