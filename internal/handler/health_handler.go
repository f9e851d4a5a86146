package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"finlens/internal/service"
)

// HealthHandler handles health check endpoints.
type HealthHandler struct {
	svc service.AnalysisService
}

// NewHealthHandler creates a new HealthHandler.
func NewHealthHandler(svc service.AnalysisService) *HealthHandler {
	return &HealthHandler{svc: svc}
}

// Liveness handles GET /healthz
// @Summary Liveness probe
// @Tags health
// @Produce json
// @Success 200 {object} map[string]string
// @Router /healthz [get]
func (h *HealthHandler) Liveness(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Readiness handles GET /readyz. The service stays ready without OCR or
// completion providers since both have local fallbacks; the body reports which
// are present.
// @Summary Readiness probe
// @Tags health
// @Produce json
// @Success 200 {object} ReadinessResponse
// @Router /readyz [get]
func (h *HealthHandler) Readiness(c *gin.Context) {
	r := h.svc.Readiness()
	c.JSON(http.StatusOK, ReadinessResponse{
		Status:       "ok",
		OCRAvailable: r.OCRAvailable,
		Providers:    r.Providers,
		Degraded:     len(r.Providers) == 0,
	})
}
