package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func newAPIKeyRouter(key string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(APIKey(key, zap.NewNop()))
	ok := func(c *gin.Context) { c.Status(http.StatusOK) }
	r.GET("/api/events", ok)
	r.GET("/api/ping", ok)
	r.POST("/api/events", ok)
	r.GET("/api/logs", ok)
	return r
}

func TestAPIKeyAllowsPublicGets(t *testing.T) {
	r := newAPIKeyRouter("sekret")
	for _, path := range []string{"/api/events", "/api/ping"} {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusOK, rec.Code, path)
	}
}

func TestAPIKeyGatesEverythingElse(t *testing.T) {
	r := newAPIKeyRouter("sekret")

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/events", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/logs", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/events", nil)
	req.Header.Set("x-api-key", "sekret")
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/api/events", nil)
	req.Header.Set("x-api-key", "wrong")
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAPIKeyDisabledAllowsAll(t *testing.T) {
	r := newAPIKeyRouter("")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/events", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}
