package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Simplici0/printquote/internal/catalog"
	"github.com/Simplici0/printquote/internal/db"
	"github.com/Simplici0/printquote/internal/metrics"
	"github.com/Simplici0/printquote/internal/migrations"
	"github.com/Simplici0/printquote/internal/session"
	"github.com/Simplici0/printquote/internal/submission"
)

func newTestServer(t *testing.T) (*server, http.Handler) {
	t.Helper()
	return newTestServerWithRegistry(t, prometheus.NewRegistry())
}

func newTestServerWithRegistry(t *testing.T, reg *prometheus.Registry) (*server, http.Handler) {
	t.Helper()

	database, err := db.Open(filepath.Join(t.TempDir(), "server-test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close() })
	require.NoError(t, migrations.Up(database))

	srv := &server{
		catalog:     catalog.Default(),
		profile:     catalog.StandardProfile,
		sessions:    session.NewMemoryStore(0),
		submissions: submission.NewStore(database),
		metrics:     metrics.NewCollector("test", reg, zap.NewNop()),
		logger:      zap.NewNop(),
	}
	return srv, srv.routes()
}

func doJSON(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		data, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func decodeBody[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &v), "body: %s", rr.Body.String())
	return v
}

func createSession(t *testing.T, h http.Handler) string {
	t.Helper()
	rr := doJSON(t, h, http.MethodPost, "/sessions", nil)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	return decodeBody[sessionView](t, rr).ID
}

func attachReferenceGeometry(t *testing.T, h http.Handler, id string) sessionView {
	t.Helper()
	rr := doJSON(t, h, http.MethodPut, "/sessions/"+id+"/geometry", map[string]any{
		"volume_cm3":     50,
		"dimensions_cm":  map[string]float64{"x": 10, "y": 5, "z": 4},
		"triangle_count": 2048,
	})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	return decodeBody[sessionView](t, rr)
}

func counterValue(t *testing.T, reg *prometheus.Registry, name string) float64 {
	t.Helper()
	families, err := reg.Gather()
	require.NoError(t, err)
	for _, mf := range families {
		if mf.GetName() != name {
			continue
		}
		var sum float64
		for _, m := range mf.GetMetric() {
			sum += m.GetCounter().GetValue()
		}
		return sum
	}
	return 0
}
