//nolint:noctx // Test file uses http.NewRequest for simplicity
package admin

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/slimcircle/slimcircle/internal/models"
	"github.com/slimcircle/slimcircle/internal/service/settlement"
	"github.com/slimcircle/slimcircle/pkg/logger"
)

const testSecret = "test-admin-secret"

type mockSettlementService struct {
	result *settlement.Result
	err    error
	week   int
	force  bool
	calls  int
}

func (m *mockSettlementService) Settle(ctx context.Context, weekNumber int, force bool) (*settlement.Result, error) {
	m.calls++
	m.week = weekNumber
	m.force = force
	return m.result, m.err
}

type mockBoardService struct {
	invalidated []int
}

func (m *mockBoardService) InvalidateWeek(ctx context.Context, weekNumber int) {
	m.invalidated = append(m.invalidated, weekNumber)
}

type mockCertStore struct {
	cfg *models.CertConfig
	err error
}

func (m *mockCertStore) Get(weekNumber *int) (*models.CertConfig, error) {
	return m.cfg, m.err
}

func (m *mockCertStore) Upsert(cfg *models.CertConfig) error {
	m.cfg = cfg
	return m.err
}

func setupTestHandler() (*Handler, *mockSettlementService, *mockBoardService, *mockCertStore) {
	settler := &mockSettlementService{}
	boards := &mockBoardService{}
	certs := &mockCertStore{}
	log := logger.New("debug", "text", "stdout")
	h := NewHandlerWithInterfaces(settler, boards, certs, testSecret, log)
	return h, settler, boards, certs
}

func setupRouter(h *Handler) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	h.RegisterRoutes(router.Group("/api/v1"))
	return router
}

func authedRequest(method, url string, body []byte) *http.Request {
	var req *http.Request
	if body != nil {
		req, _ = http.NewRequest(method, url, bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req, _ = http.NewRequest(method, url, http.NoBody)
	}
	req.Header.Set("Authorization", "Bearer "+testSecret)
	return req
}

func TestSettle_Success(t *testing.T) {
	h, settler, boards, _ := setupTestHandler()
	settler.result = &settlement.Result{Success: true, WeekNumber: 202602, Count: 3}
	router := setupRouter(h)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, authedRequest("POST", "/api/v1/admin/settle?week=2&year=2026", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 202602, settler.week)
	assert.True(t, settler.force, "force should default to true")
	assert.Equal(t, []int{202602}, boards.invalidated)

	var resp map[string]interface{}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, float64(200), resp["code"])
}

func TestSettle_DefaultsToCurrentWeek(t *testing.T) {
	h, settler, _, _ := setupTestHandler()
	settler.result = &settlement.Result{Success: true, WeekNumber: 202610, Count: 1}
	router := setupRouter(h)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, authedRequest("POST", "/api/v1/admin/settle", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 0, settler.week, "omitted week resolves inside the engine")
}

func TestSettle_AlreadySettled(t *testing.T) {
	h, settler, boards, _ := setupTestHandler()
	settler.result = &settlement.Result{
		WeekNumber:     202602,
		Count:          3,
		AlreadySettled: true,
		Message:        "week already settled",
	}
	router := setupRouter(h)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, authedRequest("POST", "/api/v1/admin/settle?week=2&year=2026&force=false", nil))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.False(t, settler.force)
	assert.Empty(t, boards.invalidated, "no invalidation when nothing changed")
}

func TestSettle_NoData(t *testing.T) {
	h, settler, _, _ := setupTestHandler()
	settler.result = &settlement.Result{
		WeekNumber: 202602,
		Message:    "no check-ins this week",
	}
	router := setupRouter(h)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, authedRequest("POST", "/api/v1/admin/settle?week=2&year=2026", nil))

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSettle_InternalError(t *testing.T) {
	h, settler, _, _ := setupTestHandler()
	settler.err = errors.New("database unavailable")
	router := setupRouter(h)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, authedRequest("POST", "/api/v1/admin/settle?week=2&year=2026", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestSettle_InvalidParams(t *testing.T) {
	tests := []struct {
		name  string
		query string
	}{
		{"week without year", "?week=2"},
		{"year without week", "?year=2026"},
		{"week out of range", "?week=54&year=2026"},
		{"week zero", "?week=0&year=2026"},
		{"non-numeric week", "?week=two&year=2026"},
		{"bad force flag", "?week=2&year=2026&force=maybe"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, settler, _, _ := setupTestHandler()
			router := setupRouter(h)

			w := httptest.NewRecorder()
			router.ServeHTTP(w, authedRequest("POST", "/api/v1/admin/settle"+tt.query, nil))

			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Zero(t, settler.calls, "engine must not be invoked on bad input")
		})
	}
}

func TestSettle_Unauthorized(t *testing.T) {
	h, settler, _, _ := setupTestHandler()
	router := setupRouter(h)

	tests := []struct {
		name   string
		header string
	}{
		{"missing header", ""},
		{"wrong secret", "Bearer not-the-secret"},
		{"not bearer", testSecret},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, _ := http.NewRequest("POST", "/api/v1/admin/settle", http.NoBody)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, http.StatusUnauthorized, w.Code)
		})
	}
	assert.Zero(t, settler.calls)
}

func TestGetCertConfig(t *testing.T) {
	h, _, _, certs := setupTestHandler()
	certs.cfg = &models.CertConfig{ImgGold: "https://cdn.example.com/gold.png"}
	router := setupRouter(h)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, authedRequest("GET", "/api/v1/admin/cert-config", nil))

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestGetCertConfig_NotFound(t *testing.T) {
	h, _, _, _ := setupTestHandler()
	router := setupRouter(h)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, authedRequest("GET", "/api/v1/admin/cert-config?week=202602", nil))

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSetCertConfig(t *testing.T) {
	h, _, _, certs := setupTestHandler()
	router := setupRouter(h)

	body, _ := json.Marshal(map[string]interface{}{
		"weekNumber":     202602,
		"imgGold":        "https://cdn.example.com/gold.png",
		"imgSilver":      "https://cdn.example.com/silver.png",
		"imgBronze":      "https://cdn.example.com/bronze.png",
		"imgParticipate": "https://cdn.example.com/participate.png",
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, authedRequest("POST", "/api/v1/admin/cert-config", body))

	assert.Equal(t, http.StatusOK, w.Code)
	if assert.NotNil(t, certs.cfg) && assert.NotNil(t, certs.cfg.WeekNumber) {
		assert.Equal(t, 202602, *certs.cfg.WeekNumber)
	}
}

func TestSetCertConfig_MissingImages(t *testing.T) {
	h, _, _, certs := setupTestHandler()
	router := setupRouter(h)

	body, _ := json.Marshal(map[string]interface{}{
		"imgGold": "https://cdn.example.com/gold.png",
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, authedRequest("POST", "/api/v1/admin/cert-config", body))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Nil(t, certs.cfg)
}
