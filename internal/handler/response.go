package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"finlens/internal/domain"
	"finlens/internal/middleware"
)

// ErrorResponse is the body of every error response.
type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Code    string `json:"code"`
}

// RespondError sends an error response with the given status code.
func RespondError(c *gin.Context, status int, code, msg string) {
	c.JSON(status, ErrorResponse{Success: false, Error: msg, Code: code})
}

// MapDomainError translates domain errors to HTTP status codes and error codes.
// Unknown errors map to 500 and carry their own message.
func MapDomainError(err error) (status int, code, msg string) {
	switch {
	case errors.Is(err, domain.ErrMissingBoundary):
		return http.StatusBadRequest, "MISSING_BOUNDARY", "request must be multipart/form-data with a boundary"
	case errors.Is(err, domain.ErrMissingFile):
		return http.StatusBadRequest, "MISSING_FILE", "No file uploaded"
	case errors.Is(err, domain.ErrUnsupportedFileType):
		return http.StatusBadRequest, "UNSUPPORTED_FILE_TYPE", "Unsupported file type. Use PDF or TXT."
	case errors.Is(err, domain.ErrTextTooShort):
		return http.StatusBadRequest, "TEXT_TOO_SHORT", "Could not extract enough text from file. For scanned PDFs, convert to TXT first."
	case errors.Is(err, domain.ErrFileTooLarge):
		return http.StatusRequestEntityTooLarge, "FILE_TOO_LARGE", "file exceeds maximum allowed size"
	case errors.Is(err, domain.ErrNoAnalysis):
		return http.StatusNotFound, "NO_ANALYSIS", "No financial analysis available. Analyze a document first."
	case errors.Is(err, domain.ErrArtifactNotFound):
		return http.StatusNotFound, "NO_EXTRACTION_FILE", "No extraction file available."
	default:
		return http.StatusInternalServerError, "INTERNAL_ERROR", err.Error()
	}
}

// HandleError maps a domain error and sends the appropriate error response.
func HandleError(c *gin.Context, logger *zap.Logger, err error) {
	status, code, msg := MapDomainError(err)
	if status >= 500 {
		logger.Error("handler: internal error",
			zap.String("request_id", middleware.GetRequestID(c)),
			zap.Error(err),
		)
	}
	_ = c.Error(err)
	RespondError(c, status, code, msg)
}
