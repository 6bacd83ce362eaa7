package services

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"deliverydash/internal/shared/testutil"
)

type fixedClients int

func (c fixedClients) ClientCount() int { return int(c) }

func TestHealthService_ReadinessCheck(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name     string
		dataFile string
		want     string
	}{
		{name: "readable dataset", dataFile: testutil.WriteDataset(t, dir, testutil.SampleRows()...), want: "ready"},
		{name: "missing dataset", dataFile: filepath.Join(dir, "missing.csv"), want: "not_ready"},
		{name: "directory", dataFile: dir, want: "not_ready"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, _ := testutil.NewTestLogger(t)
			hs := NewHealthService("1.0.0", "", tt.dataFile, nil, logger)

			status := hs.ReadinessCheck(context.Background())
			assert.Equal(t, tt.want, status.Status)
			assert.Contains(t, status.Services, "dataset")
			assert.Contains(t, status.Services, "websocket")
		})
	}
}

func TestHealthService_Checks(t *testing.T) {
	logger, handler := testutil.NewTestLogger(t)
	dataFile := testutil.WriteSampleDataset(t)
	hs := NewHealthService("1.2.3", "2024-05-01", dataFile, fixedClients(3), logger)
	ctx := context.Background()

	health := hs.HealthCheck(ctx)
	assert.Equal(t, "ok", health.Status)
	assert.Equal(t, "1.2.3", health.Version)

	live := hs.LivenessCheck(ctx)
	assert.Equal(t, "alive", live.Status)
	assert.Contains(t, live.Runtime, "goroutines")

	version := hs.Version()
	assert.Equal(t, "1.2.3", version["version"])
	assert.Equal(t, "2024-05-01", version["build_time"])

	info, err := os.Stat(dataFile)
	require.NoError(t, err)
	stats := hs.SystemStats(ctx)
	assert.Equal(t, 3, stats.WebSocketClients)
	assert.Equal(t, info.Size(), stats.DatasetBytes)

	detailed := hs.GetDetailedHealth(ctx)
	assert.Contains(t, detailed, "readiness")
	assert.Contains(t, detailed, "stats")

	testutil.AssertLogContains(t, handler, slog.LevelDebug, "HealthCheck")
	testutil.AssertNoErrors(t, handler)
}
