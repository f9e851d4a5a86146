package router_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"finlens/internal/analysis"
	"finlens/internal/export"
	"finlens/internal/extract"
	"finlens/internal/handler"
	"finlens/internal/middleware"
	"finlens/internal/router"
	"finlens/internal/service"
	"finlens/internal/session"
	"finlens/internal/storage/local"
	"finlens/mocks"
)

const statementText = `ACME Ltd results for the year
All amounts are stated in Rs. crore unless otherwise mentioned in the notes below.
Particulars 2024 2023
Revenue from operations 1,200 1,050
Other income 40 35
Profit before tax 300 260

Management commentary follows here.`

func init() {
	gin.SetMode(gin.TestMode)
}

// newServer wires the real pipeline with a completion client that always fails.
func newServer(t *testing.T) *gin.Engine {
	t.Helper()
	logger := zap.NewNop()

	client := new(mocks.MockCompletionClient)
	client.On("Complete", mock.Anything, mock.Anything).Return(nil, errors.New("service unavailable"))

	sink, err := local.NewSink(t.TempDir())
	require.NoError(t, err)

	engine := extract.NewEngine(extract.DefaultStrategies(nil), sink, logger)
	financial := analysis.NewOrchestrator(analysis.FinancialConfig(analysis.DefaultFinancialOptions()), client, time.Second, logger)
	earnings := analysis.NewOrchestrator(analysis.EarningsConfig(15000), client, time.Second, logger)
	svc := service.NewAnalysisService(engine, financial, earnings, session.NewStore(time.Hour, logger), sink, nil, logger)

	return router.Setup(
		router.Options{AllowedOrigins: []string{"http://localhost:3000"}, SessionMaxAge: 3600, Logger: logger},
		handler.NewAnalysisHandler(svc, 1<<20, logger),
		handler.NewExportHandler(svc, logger),
		handler.NewHealthHandler(svc),
	)
}

func upload(t *testing.T, r http.Handler, path, filename, content, analysisType, sessionID string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	if analysisType != "" {
		require.NoError(t, w.WriteField("analysisType", analysisType))
	}
	fw, err := w.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, _ = fw.Write([]byte(content))
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	if sessionID != "" {
		req.Header.Set(middleware.SessionHeader, sessionID)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func get(r http.Handler, path, sessionID string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, http.NoBody)
	if sessionID != "" {
		req.Header.Set(middleware.SessionHeader, sessionID)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestFinancialTXTWithFailingModel(t *testing.T) {
	r := newServer(t)

	rec := upload(t, r, "/analyze", "results.txt", statementText, "financial", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp struct {
		Success   bool   `json:"success"`
		SessionID string `json:"sessionId"`
		Source    string `json:"source"`
		Analysis  struct {
			IncomeStatement []struct {
				LineItem   string `json:"line_item"`
				Confidence string `json:"confidence"`
			} `json:"income_statement"`
		} `json:"analysis"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, "fallback", resp.Source)
	require.NotEmpty(t, resp.Analysis.IncomeStatement)
	assert.Equal(t, "Revenue from operations", resp.Analysis.IncomeStatement[0].LineItem)
	for _, e := range resp.Analysis.IncomeStatement {
		assert.Contains(t, []string{"medium", "low"}, e.Confidence)
	}

	xlsx := get(r, "/api/download-excel", resp.SessionID)
	require.Equal(t, http.StatusOK, xlsx.Code)
	assert.Equal(t, export.WorkbookContentType, xlsx.Header().Get("Content-Type"))
	assert.Contains(t, xlsx.Header().Get("Content-Disposition"), "financial-analysis.xlsx")

	other := get(r, "/download-excel", session.NewID())
	assert.Equal(t, http.StatusNotFound, other.Code)
}

func TestShortTextRejected(t *testing.T) {
	r := newServer(t)

	for _, typ := range []string{"financial", "earnings", ""} {
		rec := upload(t, r, "/api/analyze", "tiny.txt", "Revenue 10 20", typ, "")
		assert.Equal(t, http.StatusBadRequest, rec.Code, typ)
		assert.Contains(t, rec.Body.String(), "TEXT_TOO_SHORT")
	}
}

func TestUnreadablePDFNeedsReview(t *testing.T) {
	r := newServer(t)

	rec := upload(t, r, "/analyze", "scan.pdf", "%PDF-1.4 not really a pdf", "financial", "")
	require.Equal(t, http.StatusAccepted, rec.Code, rec.Body.String())

	var resp struct {
		NeedsOCR bool   `json:"needsOcr"`
		OCRFile  string `json:"ocrFile"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.NeedsOCR)
	assert.NotEmpty(t, resp.OCRFile)

	report := get(r, "/download-ocr", rec.Header().Get(middleware.SessionHeader))
	require.Equal(t, http.StatusOK, report.Code)
	assert.Contains(t, report.Body.String(), "Status: FAILED")
}

func TestHealthAndCORS(t *testing.T) {
	r := newServer(t)

	assert.Equal(t, http.StatusOK, get(r, "/healthz", "").Code)

	ready := get(r, "/readyz", "")
	require.Equal(t, http.StatusOK, ready.Code)
	assert.Contains(t, ready.Body.String(), `"degraded":true`)

	req := httptest.NewRequest(http.MethodOptions, "/api/analyze", http.NoBody)
	req.Header.Set("Origin", "http://localhost:3000")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "http://localhost:3000", rec.Header().Get("Access-Control-Allow-Origin"))
}
