package internal

import (
	"chat-memory/infrastructure/storage"
	"chat-memory/observability"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/dgraph-io/badger/v4"
	"github.com/mama165/sdk-go/logs"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
)

func Test_DebugServer_Endpoints(t *testing.T) {
	req := require.New(t)
	log := logs.GetLoggerFromLevel(slog.LevelError)

	kv, err := badger.Open(badger.DefaultOptions("").WithInMemory(true).WithLoggingLevel(badger.ERROR))
	req.NoError(err)
	t.Cleanup(func() { _ = kv.Close() })
	db, err := storage.Open(filepath.Join(t.TempDir(), "history.db"))
	req.NoError(err)
	t.Cleanup(func() { _ = db.Close() })

	registry := prometheus.NewRegistry()
	observability.NewMetrics(registry).HistoryLoads.WithLabelValues(observability.SourceCache).Inc()
	server := NewDebugServer(log, 0, registry, kv, db)

	for _, tc := range []struct {
		path     string
		contains string
	}{
		{"/healthz", "OK"},
		{"/metrics", "chat_memory_history_loads_total"},
	} {
		recorder := httptest.NewRecorder()
		server.Handler().ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, tc.path, nil))
		req.Equal(http.StatusOK, recorder.Code, tc.path)
		req.Contains(recorder.Body.String(), tc.contains, tc.path)
	}
}

func Test_DebugServer_Healthz_Reports_Closed_Cache(t *testing.T) {
	req := require.New(t)
	log := logs.GetLoggerFromLevel(slog.LevelError)

	kv, err := badger.Open(badger.DefaultOptions("").WithInMemory(true).WithLoggingLevel(badger.ERROR))
	req.NoError(err)
	db, err := storage.Open(filepath.Join(t.TempDir(), "history.db"))
	req.NoError(err)
	t.Cleanup(func() { _ = db.Close() })
	req.NoError(kv.Close())

	server := NewDebugServer(log, 0, prometheus.NewRegistry(), kv, db)
	recorder := httptest.NewRecorder()
	server.Handler().ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	req.Equal(http.StatusServiceUnavailable, recorder.Code)
}
