package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dashlab/labctl/internal/compose"
	"github.com/dashlab/labctl/internal/config"
	"github.com/dashlab/labctl/internal/models"
)

type fakeStore struct {
	runs    []*models.Run
	pingErr error
}

func (f *fakeStore) Connect(ctx context.Context) error    { return nil }
func (f *fakeStore) Disconnect(ctx context.Context) error { return nil }
func (f *fakeStore) Ping(ctx context.Context) error       { return f.pingErr }

func (f *fakeStore) CreateRun(ctx context.Context, run *models.Run) error {
	f.runs = append(f.runs, run)
	return nil
}

func (f *fakeStore) FinishRun(ctx context.Context, id string, status models.RunStatus, exitCode int, errMsg string) error {
	return nil
}

func (f *fakeStore) GetRun(ctx context.Context, id string) (*models.Run, error) {
	for _, run := range f.runs {
		if run.ID == id {
			return run, nil
		}
	}
	return nil, errors.New("run not found")
}

func (f *fakeStore) ListRuns(ctx context.Context, limit, offset int) ([]*models.Run, int, error) {
	total := len(f.runs)
	if offset >= total {
		return nil, total, nil
	}
	end := offset + limit
	if end > total {
		end = total
	}
	return f.runs[offset:end], total, nil
}

type fakePsRunner struct {
	states []models.ServiceState
	err    error
}

func (f *fakePsRunner) Ps(ctx context.Context) ([]models.ServiceState, error) {
	return f.states, f.err
}

func newTestServer(t *testing.T, store *fakeStore) *Server {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.Docs.OutputDir = t.TempDir()
	return NewServer(cfg, store, "*")
}

func doRequest(t *testing.T, s *Server, method, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func TestHealthCheck(t *testing.T) {
	t.Run("healthy", func(t *testing.T) {
		rec := doRequest(t, newTestServer(t, &fakeStore{}), http.MethodGet, "/api/v1/health")
		require.Equal(t, http.StatusOK, rec.Code)

		var body map[string]interface{}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, "ok", body["status"])
		assert.Equal(t, "ok", body["history"])
	})

	t.Run("history unavailable", func(t *testing.T) {
		store := &fakeStore{pingErr: errors.New("closed")}
		rec := doRequest(t, newTestServer(t, store), http.MethodGet, "/api/v1/health")
		require.Equal(t, http.StatusOK, rec.Code)

		var body map[string]interface{}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, "unavailable", body["history"])
	})
}

func TestListEnvironments(t *testing.T) {
	rec := doRequest(t, newTestServer(t, &fakeStore{}), http.MethodGet, "/api/v1/environments")
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Data []models.Environment `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Data, 3)
	// Sorted by name: dev, docs, prod.
	assert.Equal(t, "dev", body.Data[0].Name)
	assert.Equal(t, "docs", body.Data[1].Name)
	assert.Equal(t, "prod", body.Data[2].Name)
}

func TestListRuns(t *testing.T) {
	store := &fakeStore{}
	for i := 0; i < 3; i++ {
		store.runs = append(store.runs, &models.Run{
			ID:        fmt.Sprintf("run-%d", i),
			Action:    "up",
			Status:    models.RunSucceeded,
			StartedAt: time.Now().UTC(),
		})
	}

	rec := doRequest(t, newTestServer(t, store), http.MethodGet, "/api/v1/runs?page=1&limit=2")
	require.Equal(t, http.StatusOK, rec.Code)

	var body models.PaginatedResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, 3, body.Total)
	assert.Equal(t, 2, body.TotalPages)
	assert.Equal(t, 1, body.Page)
}

func TestGetRun(t *testing.T) {
	store := &fakeStore{runs: []*models.Run{{
		ID:     "abc",
		Action: "lint",
		Status: models.RunFailed,
	}}}
	server := newTestServer(t, store)

	t.Run("found", func(t *testing.T) {
		rec := doRequest(t, server, http.MethodGet, "/api/v1/runs/abc")
		require.Equal(t, http.StatusOK, rec.Code)

		var run models.Run
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &run))
		assert.Equal(t, "lint", run.Action)
	})

	t.Run("not found", func(t *testing.T) {
		rec := doRequest(t, server, http.MethodGet, "/api/v1/runs/missing")
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestListServices(t *testing.T) {
	orig := newPsRunner
	newPsRunner = func(opts compose.Options) (psRunner, error) {
		return &fakePsRunner{states: []models.ServiceState{
			{Service: "dashboard", State: "running"},
		}}, nil
	}
	t.Cleanup(func() { newPsRunner = orig })

	server := newTestServer(t, &fakeStore{})

	t.Run("known environment", func(t *testing.T) {
		rec := doRequest(t, server, http.MethodGet, "/api/v1/environments/dev/services")
		require.Equal(t, http.StatusOK, rec.Code)

		var body struct {
			Data []models.ServiceState `json:"data"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		require.Len(t, body.Data, 1)
		assert.Equal(t, "dashboard", body.Data[0].Service)
	})

	t.Run("unknown environment", func(t *testing.T) {
		rec := doRequest(t, server, http.MethodGet, "/api/v1/environments/staging/services")
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestDocsAreServedStatically(t *testing.T) {
	cfg := config.DefaultConfig()
	docsDir := t.TempDir()
	cfg.Docs.OutputDir = docsDir
	require.NoError(t, os.WriteFile(filepath.Join(docsDir, "index.html"), []byte("<h1>DashLab</h1>"), 0644))

	server := NewServer(cfg, &fakeStore{}, "")
	rec := doRequest(t, server, http.MethodGet, "/docs/index.html")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "DashLab")
}

func TestCORSHeader(t *testing.T) {
	server := newTestServer(t, &fakeStore{})
	rec := doRequest(t, server, http.MethodGet, "/api/v1/health")
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}
