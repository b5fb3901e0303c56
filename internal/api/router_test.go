package api

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"financeiro-service/internal/api/handlers"
	"financeiro-service/internal/core/ingest"
	"financeiro-service/internal/core/reconcile"
	"financeiro-service/internal/erp"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	client := erp.NewClient("http://erp.invalid")
	return NewRouter(Handlers{
		Extrato: handlers.NewExtratoHandler(ingest.NewService(nil), reconcile.NewService(client, nil, nil)),
		ERP:     handlers.NewERPHandler(client),
	}, 8)
}

func TestHealthAndMetrics(t *testing.T) {
	router := newTestRouter()

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"UP","service":"financeiro-service"}`, w.Body.String())

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestValidationHappensBeforeERPCall(t *testing.T) {
	router := newTestRouter()

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/erp/recebiveis?startDate=ontem", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHardenSetsHeadersAndLimitsRate(t *testing.T) {
	handler := Harden(newTestRouter(), HardenOptions{RateLimit: 2})

	for i := 0; i < 2; i++ {
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "DENY", w.Header().Get("X-Frame-Options"))
		assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
	}

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
}

func TestHardenWithoutRateLimit(t *testing.T) {
	handler := Harden(newTestRouter(), HardenOptions{Production: true})
	for i := 0; i < 5; i++ {
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
		assert.Equal(t, http.StatusOK, w.Code)
	}
}
