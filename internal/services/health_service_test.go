package services

import (
	"context"
	"errors"
	"log/slog"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"companylens/internal/shared/testutil"
	"companylens/pkg/contracts"
)

type readinessFunc func() error

func (f readinessFunc) Ready() error { return f() }

func TestHealthService_HealthCheck(t *testing.T) {
	svc := NewHealthService("1.2.3", "", nil, nil)

	status := svc.HealthCheck(context.Background())
	assert.Equal(t, "ok", status.Status)
	assert.Equal(t, "1.2.3", status.Version)
	assert.False(t, status.Timestamp.IsZero())
	assert.Nil(t, status.Services)
}

func TestHealthService_DefaultVersion(t *testing.T) {
	svc := NewHealthService("", "", nil, nil)
	assert.Equal(t, contracts.Version, svc.HealthCheck(context.Background()).Version)
}

func TestHealthService_ReadinessCheck(t *testing.T) {
	tests := []struct {
		name       string
		checks     map[string]ReadinessChecker
		wantStatus string
		wantFailed []string
	}{
		{
			name:       "no checks",
			checks:     nil,
			wantStatus: "ready",
		},
		{
			name: "all ready",
			checks: map[string]ReadinessChecker{
				"data": readinessFunc(func() error { return nil }),
			},
			wantStatus: "ready",
		},
		{
			name: "one failing",
			checks: map[string]ReadinessChecker{
				"data":    readinessFunc(func() error { return errors.New("data directory missing") }),
				"reports": readinessFunc(func() error { return nil }),
			},
			wantStatus: "not_ready",
			wantFailed: []string{"data"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, handler := testutil.NewTestLogger(t)
			svc := NewHealthService("1.0.0", "", tt.checks, logger)

			status := svc.ReadinessCheck(context.Background())
			assert.Equal(t, tt.wantStatus, status.Status)
			assert.Equal(t, tt.wantStatus == "ready", status.IsReady())
			assert.Len(t, status.Services, len(tt.checks))

			for _, name := range tt.wantFailed {
				require.Contains(t, status.Services, name)
				assert.Equal(t, "not_ready", status.Services[name].Status)
				assert.NotEmpty(t, status.Services[name].Message)
				testutil.AssertLogContains(t, handler, slog.LevelWarn, "readiness probe failed")
			}
		})
	}
}

func TestHealthService_ReadinessWithRepository(t *testing.T) {
	repo := newTestRepository(t, t.TempDir(), testAnalysisConfig())
	svc := NewHealthService("1.0.0", "", map[string]ReadinessChecker{"data": repo}, nil)

	assert.True(t, svc.ReadinessCheck(context.Background()).IsReady())
}

func TestHealthService_LivenessCheck(t *testing.T) {
	svc := NewHealthService("1.0.0", "", nil, nil)

	status := svc.LivenessCheck(context.Background())
	assert.Equal(t, "alive", status.Status)
	require.NotNil(t, status.Runtime)
	assert.Equal(t, runtime.Version(), status.Runtime["go_version"])
	assert.Contains(t, status.Runtime, "uptime")
	assert.Contains(t, status.Runtime, "goroutines")
}

func TestHealthService_Version(t *testing.T) {
	svc := NewHealthService("2.0.0", "2026-01-01T00:00:00Z", nil, nil)

	info := svc.Version()
	assert.Equal(t, "2.0.0", info["version"])
	assert.Equal(t, "2026-01-01T00:00:00Z", info["build_time"])
	assert.Equal(t, runtime.GOOS, info["os"])
	assert.Equal(t, runtime.GOARCH, info["arch"])
	for _, key := range []string{"stage", "git_commit", "go_version", "uptime", "start_time", "current_time"} {
		assert.Contains(t, info, key)
	}

	noBuild := NewHealthService("2.0.0", "", nil, nil).Version()
	assert.NotContains(t, noBuild, "build_time")
}
