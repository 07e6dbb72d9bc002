package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"captionflow/internal/api/v1/dto"
	v1routes "captionflow/internal/api/v1/routes"
	"captionflow/internal/api/v1/services"
	"captionflow/internal/app/api/provider"
	"captionflow/internal/app/delivery"
	"captionflow/internal/app/testutil"
)

type staticProviders struct{}

func (staticProviders) ListProviders(context.Context) ([]dto.ProviderResponse, error) {
	return []dto.ProviderResponse{{ID: "speechmatics", Available: true}}, nil
}

func newTestServer(t *testing.T) *Server {
	t.Helper()
	gin.SetMode(gin.TestMode)

	reg := prometheus.NewRegistry()
	metrics := provider.NewMetrics(reg)
	metrics.Observe("speechmatics", "submit", time.Now(), nil)

	persister, err := delivery.NewPersister(context.Background(), delivery.StorageSettings{})
	require.NoError(t, err)

	container := &v1routes.ServiceContainer{
		ExportService:   services.NewExportService(persister),
		StorageService:  services.NewStorageService(persister, 0),
		ProviderService: staticProviders{},
	}
	return NewServer(DefaultConfig(":0", "test"), container, reg, zap.NewNop())
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "healthy")
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}

func TestMetricsEndpoint(t *testing.T) {
	s := newTestServer(t)
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "speechmatics")
}

func TestRoutesAreWired(t *testing.T) {
	s := newTestServer(t)

	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/providers", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var body map[string][]dto.ProviderResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "speechmatics", body["providers"][0].ID)

	req := httptest.NewRequest(http.MethodPost, "/export", strings.NewReader(`{"srt":"`+strings.ReplaceAll(testutil.ThreeCuesSRT, "\n", `\n`)+`","title":"Demo"}`))
	req.Header.Set("Content-Type", "application/json")
	rec = httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, `attachment; filename="Demo.srt"`, rec.Header().Get("Content-Disposition"))

	req = httptest.NewRequest(http.MethodPost, "/persist", strings.NewReader(`{"srt":"`+strings.ReplaceAll(testutil.ThreeCuesSRT, "\n", `\n`)+`"}`))
	req.Header.Set("Content-Type", "application/json")
	rec = httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestShutdownOnCancel(t *testing.T) {
	s := newTestServer(t)
	s.httpServer.Addr = "127.0.0.1:0"

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.NoError(t, s.ListenAndServe(ctx, time.Second))
}
