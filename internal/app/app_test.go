package app

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	promclient "github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"deliverydash/internal/config"
	"deliverydash/internal/infrastructure"
	"deliverydash/internal/shared/testutil"
	"deliverydash/pkg/contracts/events"
)

// newTestApp builds an application over the sample dataset in a temp dir
func newTestApp(t *testing.T, mutate func(cfg *config.Config)) *Application {
	t.Helper()

	dir := t.TempDir()
	testutil.WriteDataset(t, dir, testutil.SampleRows()...)

	cfg := config.Default()
	cfg.Paths.BaseDir = dir
	cfg.Server.Port = 0
	cfg.Server.ShutdownTimeout = 5 * time.Second
	cfg.Security.RateLimit.Enabled = false
	cfg.Watch.Debounce = 50 * time.Millisecond
	cfg.Telemetry.TraceExporter = "none"
	if mutate != nil {
		mutate(cfg)
	}

	logger, _ := testutil.NewTestLogger(t)
	providers, err := infrastructure.InitializeOTel(&infrastructure.OTelConfig{
		ServiceName:    config.AppSlug,
		ServiceVersion: config.AppVersion,
		TraceExporter:  cfg.Telemetry.TraceExporter,
		MetricExporter: cfg.Telemetry.MetricExporter,
		SampleRatio:    1,
		Registry:       promclient.NewRegistry(),
	}, logger)
	require.NoError(t, err)

	app, err := Build(cfg, logger, providers)
	require.NoError(t, err)
	t.Cleanup(func() { _ = app.Stop(context.Background()) })
	return app
}

func get(t *testing.T, h http.Handler, target string) *httptest.ResponseRecorder {
	t.Helper()

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func TestBuild_Routes(t *testing.T) {
	app := newTestApp(t, nil)

	tests := []struct {
		target          string
		wantStatus      int
		wantContentType string
	}{
		{target: "/", wantStatus: http.StatusTemporaryRedirect},
		{target: "/company", wantStatus: http.StatusOK, wantContentType: "text/html; charset=utf-8"},
		{target: "/couriers?traffic=Jam", wantStatus: http.StatusOK, wantContentType: "text/html; charset=utf-8"},
		{target: "/restaurants", wantStatus: http.StatusOK, wantContentType: "text/html; charset=utf-8"},
		{target: "/api/views/company", wantStatus: http.StatusOK, wantContentType: "application/json"},
		{target: "/api/views/couriers?top=2", wantStatus: http.StatusOK, wantContentType: "application/json"},
		{target: "/api/views/drivers", wantStatus: http.StatusNotFound, wantContentType: "application/json"},
		{target: "/api/charts/restaurants/time_by_city", wantStatus: http.StatusOK, wantContentType: "image/svg+xml"},
		{target: "/api/maps/deliveries.geojson", wantStatus: http.StatusOK, wantContentType: "application/json"},
		{target: "/api/export/cleaned.csv", wantStatus: http.StatusOK, wantContentType: "text/csv; charset=utf-8"},
		{target: "/api/export/dashboard.xlsx", wantStatus: http.StatusOK, wantContentType: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"},
		{target: "/api/health", wantStatus: http.StatusOK, wantContentType: "application/json"},
		{target: "/api/health/ready", wantStatus: http.StatusOK, wantContentType: "application/json"},
		{target: "/api/version", wantStatus: http.StatusOK, wantContentType: "application/json"},
		{target: "/assets/logo", wantStatus: http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.target, func(t *testing.T) {
			rec := get(t, app.Router, tt.target)
			require.Equal(t, tt.wantStatus, rec.Code, rec.Body.String())
			if tt.wantContentType != "" {
				assert.True(t, strings.HasPrefix(rec.Header().Get("Content-Type"), tt.wantContentType),
					"content type %q", rec.Header().Get("Content-Type"))
			}
			assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
		})
	}
}

func TestBuild_SecurityHeaders(t *testing.T) {
	app := newTestApp(t, nil)

	rec := get(t, app.Router, "/company")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.Contains(t, rec.Header().Get("Content-Security-Policy"), "connect-src 'self' ws: wss:")
}

func TestBuild_Metrics(t *testing.T) {
	t.Run("prometheus", func(t *testing.T) {
		app := newTestApp(t, nil)

		require.Equal(t, http.StatusOK, get(t, app.Router, "/api/views/company").Code)

		rec := get(t, app.Router, "/metrics")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "pipeline_runs_total")
		assert.Contains(t, rec.Body.String(), "http_requests_total")
	})

	t.Run("disabled", func(t *testing.T) {
		app := newTestApp(t, func(cfg *config.Config) { cfg.Telemetry.MetricExporter = "none" })

		rec := get(t, app.Router, "/metrics")
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestBuild_DatasetMissing(t *testing.T) {
	app := newTestApp(t, func(cfg *config.Config) { cfg.Paths.DataFile = "other.csv" })

	assert.Equal(t, http.StatusServiceUnavailable, get(t, app.Router, "/api/views/company").Code)
	assert.Equal(t, http.StatusServiceUnavailable, get(t, app.Router, "/company").Code)
	assert.Equal(t, http.StatusServiceUnavailable, get(t, app.Router, "/api/health/ready").Code)
	assert.Equal(t, http.StatusOK, get(t, app.Router, "/api/health/live").Code)
}

func TestBuild_LiveReloadSettings(t *testing.T) {
	tests := []struct {
		name        string
		mutate      func(cfg *config.Config)
		wantWatcher bool
	}{
		{name: "enabled", wantWatcher: true},
		{name: "disabled", mutate: func(cfg *config.Config) { cfg.Watch.Enabled = false }},
		{name: "directory missing", mutate: func(cfg *config.Config) { cfg.Paths.DataFile = filepath.Join("missing", "train.csv") }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := newTestApp(t, tt.mutate)

			assert.Equal(t, tt.wantWatcher, app.Watcher != nil)

			rec := get(t, app.Router, "/restaurants")
			if tt.wantWatcher {
				assert.Contains(t, rec.Body.String(), "new WebSocket")
			} else {
				assert.NotContains(t, rec.Body.String(), "new WebSocket")
			}
		})
	}
}

func TestApplication_LiveReload(t *testing.T) {
	app := newTestApp(t, nil)
	require.NotNil(t, app.Watcher)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, app.Start(ctx, cancel))

	server := httptest.NewServer(app.Router)
	defer server.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(server.URL, "http")+config.WebSocketEndpoint, nil)
	require.NoError(t, err)
	defer conn.Close()

	read := func() events.WebSocketMessage {
		t.Helper()
		require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
		_, data, err := conn.ReadMessage()
		require.NoError(t, err)

		var msg events.WebSocketMessage
		require.NoError(t, json.Unmarshal(data, &msg))
		return msg
	}

	assert.Equal(t, events.MessageTypeConnect, read().Type)
	require.Eventually(t, func() bool { return app.WebSocketHub.ClientCount() == 1 }, 2*time.Second, 10*time.Millisecond)

	rows := testutil.SampleRows()[:3]
	require.NoError(t, os.WriteFile(app.Paths.DataFile, testutil.DatasetCSV(t, rows...), 0o644))

	msg := read()
	assert.Equal(t, events.MessageTypeDatasetChanged, msg.Type)
	change, ok := msg.Data.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, app.Paths.DataFile, change["path"])

	// Views read the file again on every request
	rec := get(t, app.Router, "/api/views/company")
	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Data struct {
			RowsLoaded int `json:"rows_loaded"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, len(rows), body.Data.RowsLoaded)
}

func TestApplication_StopTwice(t *testing.T) {
	app := newTestApp(t, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, app.Start(ctx, cancel))

	assert.NoError(t, app.Stop(context.Background()))
	assert.NoError(t, app.Stop(context.Background()))
	assert.Zero(t, app.WebSocketHub.ClientCount())
}
