package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"finlens/internal/middleware"
	"finlens/internal/session"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func serve(r *gin.Engine, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRequestID_GeneratedAndEchoed(t *testing.T) {
	r := gin.New()
	r.Use(middleware.RequestID())
	var seen string
	r.GET("/test", func(c *gin.Context) {
		seen = middleware.GetRequestID(c)
		c.Status(http.StatusOK)
	})

	w := serve(r, httptest.NewRequest(http.MethodGet, "/test", http.NoBody))
	assert.NotEmpty(t, seen)
	assert.Equal(t, seen, w.Header().Get("X-Request-ID"))

	req := httptest.NewRequest(http.MethodGet, "/test", http.NoBody)
	req.Header.Set("X-Request-ID", "abc-123")
	w = serve(r, req)
	assert.Equal(t, "abc-123", w.Header().Get("X-Request-ID"))
}

func TestLogger_LevelByStatus(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	r := gin.New()
	r.Use(middleware.RequestID(), middleware.Logger(zap.New(core)))
	r.GET("/ok", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/bad", func(c *gin.Context) { c.Status(http.StatusBadRequest) })
	r.GET("/boom", func(c *gin.Context) { c.Status(http.StatusInternalServerError) })

	for _, p := range []string{"/ok", "/bad", "/boom"} {
		serve(r, httptest.NewRequest(http.MethodGet, p, http.NoBody))
	}

	entries := logs.All()
	require.Len(t, entries, 3)
	assert.Equal(t, zap.InfoLevel, entries[0].Level)
	assert.Equal(t, zap.WarnLevel, entries[1].Level)
	assert.Equal(t, zap.ErrorLevel, entries[2].Level)
	assert.Equal(t, "/bad", entries[1].ContextMap()["path"])
	assert.EqualValues(t, 500, entries[2].ContextMap()["status"])
	assert.NotEmpty(t, entries[0].ContextMap()["request_id"])
}

func TestRecovery(t *testing.T) {
	core, logs := observer.New(zap.ErrorLevel)
	r := gin.New()
	r.Use(middleware.Recovery(zap.New(core)))
	r.GET("/panic", func(c *gin.Context) { panic("kaboom") })

	w := serve(r, httptest.NewRequest(http.MethodGet, "/panic", http.NoBody))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "INTERNAL_ERROR")
	assert.Equal(t, 1, logs.FilterMessage("panic recovered").Len())
}

func TestCORS_AllowedOrigin(t *testing.T) {
	r := gin.New()
	r.Use(middleware.CORS([]string{"https://app.example.com", "http://localhost:3000"}))
	r.GET("/test", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/test", http.NoBody)
	req.Header.Set("Origin", "https://app.example.com")
	w := serve(r, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "https://app.example.com", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", w.Header().Get("Access-Control-Allow-Credentials"))
	assert.Contains(t, w.Header().Get("Access-Control-Expose-Headers"), "Content-Disposition")
}

func TestCORS_DisallowedOrigin(t *testing.T) {
	r := gin.New()
	r.Use(middleware.CORS([]string{"https://app.example.com"}))
	r.GET("/test", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/test", http.NoBody)
	req.Header.Set("Origin", "https://evil.com")
	w := serve(r, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}

func TestCORS_Preflight(t *testing.T) {
	r := gin.New()
	r.Use(middleware.CORS([]string{"https://app.example.com"}))
	r.POST("/analyze", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodOptions, "/analyze", http.NoBody)
	req.Header.Set("Origin", "https://app.example.com")
	w := serve(r, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Contains(t, w.Header().Get("Access-Control-Allow-Methods"), "POST")
	assert.Contains(t, w.Header().Get("Access-Control-Allow-Headers"), middleware.SessionHeader)
}

func TestSession(t *testing.T) {
	r := gin.New()
	r.Use(middleware.Session(3600, false))
	var seen string
	r.GET("/test", func(c *gin.Context) {
		seen = middleware.GetSessionID(c)
		c.Status(http.StatusOK)
	})

	t.Run("issues new id", func(t *testing.T) {
		w := serve(r, httptest.NewRequest(http.MethodGet, "/test", http.NoBody))

		assert.True(t, session.Valid(seen))
		assert.Equal(t, seen, w.Header().Get(middleware.SessionHeader))
		assert.Contains(t, w.Header().Get("Set-Cookie"), middleware.SessionCookie+"="+seen)
	})

	t.Run("header wins over cookie", func(t *testing.T) {
		id := session.NewID()
		req := httptest.NewRequest(http.MethodGet, "/test", http.NoBody)
		req.Header.Set(middleware.SessionHeader, id)
		req.AddCookie(&http.Cookie{Name: middleware.SessionCookie, Value: session.NewID()})
		serve(r, req)

		assert.Equal(t, id, seen)
	})

	t.Run("cookie", func(t *testing.T) {
		id := session.NewID()
		req := httptest.NewRequest(http.MethodGet, "/test", http.NoBody)
		req.AddCookie(&http.Cookie{Name: middleware.SessionCookie, Value: id})
		serve(r, req)

		assert.Equal(t, id, seen)
	})

	t.Run("invalid id replaced", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/test", http.NoBody)
		req.Header.Set(middleware.SessionHeader, "../../etc")
		serve(r, req)

		assert.NotEqual(t, "../../etc", seen)
		assert.True(t, session.Valid(seen))
	})
}
