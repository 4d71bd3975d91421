package health_test

import (
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"

	"securenotes/internal/notes/health"
)

type fakeSource struct {
	ready atomic.Bool
}

func (f *fakeSource) Ready() bool { return f.ready.Load() }

func TestReporter_Liveness(t *testing.T) {
	reporter := health.NewReporter(&fakeSource{})

	live := reporter.Liveness()
	assert.False(t, live.Healthy)
	assert.Equal(t, health.StatusStarting, live.Status)

	reporter.MarkStarted()

	live = reporter.Liveness()
	assert.True(t, live.Healthy, "liveness does not depend on the database")
	assert.Equal(t, health.StatusHealthy, live.Status)
	assert.False(t, live.Timestamp.IsZero())
}

func TestReporter_Readiness(t *testing.T) {
	source := &fakeSource{}
	reporter := health.NewReporter(source)

	tests := []struct {
		name     string
		started  bool
		dbReady  bool
		ready    bool
		status   string
		database string
	}{
		{name: "starting, database down", status: health.StatusNotReady, database: health.DatabaseDisconnected},
		{name: "starting, database up", dbReady: true, status: health.StatusNotReady, database: health.DatabaseConnected},
		{name: "started, database down", started: true, status: health.StatusNotReady, database: health.DatabaseDisconnected},
		{name: "started, database up", started: true, dbReady: true, ready: true, status: health.StatusReady, database: health.DatabaseConnected},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.started {
				reporter.MarkStarted()
			}
			source.ready.Store(tt.dbReady)

			got := reporter.Readiness()

			assert.Equal(t, tt.ready, got.Ready)
			assert.Equal(t, tt.status, got.Status)
			assert.Equal(t, tt.database, got.Database)
		})
	}
}

func TestReporter_NilSource(t *testing.T) {
	reporter := health.NewReporter(nil)
	reporter.MarkStarted()

	assert.False(t, reporter.Readiness().Ready)
}
