package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/taskboard/core/internal/application/services"
	"github.com/taskboard/core/internal/domain/entities"
	"github.com/taskboard/core/internal/infrastructure/config"
	"github.com/taskboard/core/internal/infrastructure/logger"
)

// stubRepo is an in-memory document repository with a controllable
// health probe.
type stubRepo struct {
	healthErr error
}

func (r *stubRepo) Load(ctx context.Context) (*entities.Document, error) {
	return entities.NewDocument(), nil
}

func (r *stubRepo) Save(ctx context.Context, doc *entities.Document) error { return nil }

func (r *stubRepo) HealthCheck(ctx context.Context) error { return r.healthErr }

func (r *stubRepo) Close() error { return nil }

func newTestServer(t *testing.T, repo *stubRepo) *Server {
	t.Helper()

	cfg := &config.Config{}
	cfg.App.Version = "1.0.0"
	cfg.Storage.Backend = "file"
	cfg.Security.CORSAllowedOrigins = "*"
	cfg.Security.RateLimitRequests = 100
	cfg.Security.RateLimitWindow = time.Minute

	svc, err := services.NewBoardService(context.Background(), repo, logger.NewNop())
	require.NoError(t, err)

	srv, err := New(cfg, svc, repo, logger.NewNop())
	require.NoError(t, err)
	return srv
}

func doGet(srv *Server, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	srv.echo.ServeHTTP(rec, req)
	return rec
}

func TestHealthCheck(t *testing.T) {
	srv := newTestServer(t, &stubRepo{})

	rec := doGet(srv, "/health")
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, "ok", body["status"])
}

func TestDetailedHealthCheckReportsStorage(t *testing.T) {
	srv := newTestServer(t, &stubRepo{})

	rec := doGet(srv, "/health/detailed")
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Status string `json:"status"`
		Checks map[string]struct {
			Status  string `json:"status"`
			Backend string `json:"backend"`
			Error   string `json:"error"`
		} `json:"checks"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, "ok", body.Status)
	require.Equal(t, "ok", body.Checks["storage"].Status)
	require.Equal(t, "file", body.Checks["storage"].Backend)
}

func TestDetailedHealthCheckStorageFailure(t *testing.T) {
	repo := &stubRepo{}
	srv := newTestServer(t, repo)
	repo.healthErr = errors.New("connection refused")

	rec := doGet(srv, "/health/detailed")
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)

	var body struct {
		Status string `json:"status"`
		Checks map[string]struct {
			Status string `json:"status"`
			Error  string `json:"error"`
		} `json:"checks"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, "error", body.Status)
	require.Equal(t, "error", body.Checks["storage"].Status)
	require.Contains(t, body.Checks["storage"].Error, "connection refused")
}

func TestReadinessCheckFollowsStorage(t *testing.T) {
	repo := &stubRepo{}
	srv := newTestServer(t, repo)

	rec := doGet(srv, "/ready")
	require.Equal(t, http.StatusOK, rec.Code)

	repo.healthErr = errors.New("connection refused")
	rec = doGet(srv, "/ready")
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
