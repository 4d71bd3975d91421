package db_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"securenotes/internal/notes/config"
	"securenotes/internal/notes/db"
	"securenotes/pkg/logger"
	"securenotes/pkg/resilience"
)

var errUnreachable = errors.New("connection refused")

func testSettings(maxAttempts int) db.Settings {
	return db.Settings{
		ConnectionURL:  "postgres://notes@localhost:5432/notes",
		MigrationsPath: "file:///migrations",
		Backoff:        resilience.Backoff{Base: time.Millisecond, Max: 2 * time.Millisecond, Factor: 2},
		MaxAttempts:    maxAttempts,
		ProbeInterval:  time.Millisecond,
		PingTimeout:    time.Second,
	}
}

func newPingMock(t *testing.T) pgxmock.PgxPoolIface {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return mock
}

type migrateRecorder struct {
	calls atomic.Int32
	err   error
}

func (m *migrateRecorder) migrate(_ context.Context, _, _ string) error {
	m.calls.Add(1)
	return m.err
}

// pingerFunc позволяет описать поведение базы функцией.
type pingerFunc func(ctx context.Context) error

func (f pingerFunc) Ping(ctx context.Context) error { return f(ctx) }

func TestGateway_Connect(t *testing.T) {
	ctx := logger.NewContext(context.Background(), logger.NewNop())

	t.Run("first attempt succeeds", func(t *testing.T) {
		mock := newPingMock(t)
		mock.ExpectPing()
		migrator := &migrateRecorder{}

		gateway := db.NewGateway(mock, testSettings(3), db.WithMigrateFunc(migrator.migrate))
		var states []bool
		gateway.OnStateChange(func(_ context.Context, ready bool) { states = append(states, ready) })

		require.False(t, gateway.Ready())
		require.NoError(t, gateway.Connect(ctx))

		assert.True(t, gateway.Ready())
		assert.Equal(t, int32(1), migrator.calls.Load())
		assert.Equal(t, []bool{true}, states)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("recovers after failed attempts", func(t *testing.T) {
		mock := newPingMock(t)
		mock.ExpectPing().WillReturnError(errUnreachable)
		mock.ExpectPing().WillReturnError(errUnreachable)
		mock.ExpectPing()
		migrator := &migrateRecorder{}

		gateway := db.NewGateway(mock, testSettings(5), db.WithMigrateFunc(migrator.migrate))

		require.NoError(t, gateway.Connect(ctx))
		assert.True(t, gateway.Ready())
		assert.Equal(t, int32(1), migrator.calls.Load())
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("not ready while backing off", func(t *testing.T) {
		var (
			gateway  *db.Gateway
			attempts int
			observed []bool
		)
		gateway = db.NewGateway(pingerFunc(func(context.Context) error {
			attempts++
			observed = append(observed, gateway.Ready())
			if attempts < 3 {
				return errUnreachable
			}
			return nil
		}), testSettings(5), db.WithMigrateFunc((&migrateRecorder{}).migrate))

		require.NoError(t, gateway.Connect(ctx))
		assert.Equal(t, []bool{false, false, false}, observed)
		assert.True(t, gateway.Ready())
	})

	t.Run("retries exhausted", func(t *testing.T) {
		mock := newPingMock(t)
		for range 3 {
			mock.ExpectPing().WillReturnError(errUnreachable)
		}
		migrator := &migrateRecorder{}

		gateway := db.NewGateway(mock, testSettings(3), db.WithMigrateFunc(migrator.migrate))
		err := gateway.Connect(ctx)

		require.ErrorIs(t, err, db.ErrRetriesExhausted)
		require.ErrorIs(t, err, errUnreachable)
		assert.False(t, gateway.Ready())
		assert.Zero(t, migrator.calls.Load())
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("migration failure keeps the gateway not ready", func(t *testing.T) {
		mock := newPingMock(t)
		mock.ExpectPing()
		mock.ExpectPing()
		migrator := &migrateRecorder{err: errors.New("dirty database")}

		gateway := db.NewGateway(mock, testSettings(2), db.WithMigrateFunc(migrator.migrate))
		err := gateway.Connect(ctx)

		require.ErrorIs(t, err, db.ErrRetriesExhausted)
		assert.False(t, gateway.Ready())
		assert.Equal(t, int32(2), migrator.calls.Load())
	})

	t.Run("canceled context stops backoff", func(t *testing.T) {
		settings := testSettings(10)
		settings.Backoff = resilience.Backoff{Base: time.Hour, Max: time.Hour}
		gateway := db.NewGateway(pingerFunc(func(context.Context) error { return errUnreachable }),
			settings, db.WithMigrateFunc((&migrateRecorder{}).migrate))

		canceled, cancel := context.WithCancel(ctx)
		time.AfterFunc(10*time.Millisecond, cancel)

		err := gateway.Connect(canceled)
		require.ErrorIs(t, err, context.Canceled)
		assert.False(t, gateway.Ready())
	})
}

func TestGateway_Monitor(t *testing.T) {
	ctx, cancel := context.WithCancel(logger.NewContext(context.Background(), logger.NewNop()))
	defer cancel()

	var (
		mu    sync.Mutex
		calls int
	)
	// Доступна, затем два сбоя, затем снова доступна.
	pinger := pingerFunc(func(context.Context) error {
		mu.Lock()
		defer mu.Unlock()
		calls++
		if calls == 2 || calls == 3 {
			return errUnreachable
		}
		return nil
	})
	migrator := &migrateRecorder{}
	gateway := db.NewGateway(pinger, testSettings(5), db.WithMigrateFunc(migrator.migrate))

	states := make(chan bool, 16)
	gateway.OnStateChange(func(_ context.Context, ready bool) {
		select {
		case states <- ready:
		default:
		}
	})

	go gateway.Run(ctx)

	var got []bool
	for len(got) < 3 {
		select {
		case s := <-states:
			got = append(got, s)
		case <-time.After(5 * time.Second):
			t.Fatalf("timed out waiting for readiness changes, got %v", got)
		}
	}

	assert.Equal(t, []bool{true, false, true}, got)
	assert.Equal(t, int32(1), migrator.calls.Load())
}

func TestGateway_ReportFailure(t *testing.T) {
	ctx, cancel := context.WithCancel(logger.NewContext(context.Background(), logger.NewNop()))
	defer cancel()

	var pings atomic.Int32
	pinger := pingerFunc(func(context.Context) error {
		pings.Add(1)
		return nil
	})
	settings := testSettings(3)
	settings.ProbeInterval = time.Hour
	gateway := db.NewGateway(pinger, settings, db.WithMigrateFunc((&migrateRecorder{}).migrate))

	states := make(chan bool, 16)
	gateway.OnStateChange(func(_ context.Context, ready bool) {
		select {
		case states <- ready:
		default:
		}
	})

	next := func() bool {
		t.Helper()
		select {
		case s := <-states:
			return s
		case <-time.After(5 * time.Second):
			t.Fatal("timed out waiting for readiness change")
			return false
		}
	}

	go gateway.Run(ctx)
	require.True(t, next())

	gateway.ReportFailure(ctx)
	assert.False(t, gateway.Ready())
	assert.False(t, next())

	// Повторная проверка не ждет часового интервала.
	assert.True(t, next())
	assert.True(t, gateway.Ready())
	assert.Equal(t, int32(2), pings.Load())
}

func TestNew(t *testing.T) {
	ctx := logger.NewContext(context.Background(), logger.NewNop())

	pgCfg := &config.PostgresConfig{
		Host:           "127.0.0.1",
		Port:           1,
		Database:       "notes",
		User:           "notes",
		Password:       "secret",
		SSLMode:        "disable",
		MinConn:        0,
		MaxConn:        2,
		ConnectTimeout: 100 * time.Millisecond,
		QueryTimeout:   time.Second,
	}
	resCfg := &config.ResilienceConfig{
		ConnectBaseDelay:   time.Millisecond,
		ConnectMaxDelay:    time.Millisecond,
		ConnectMaxAttempts: 2,
		ProbeInterval:      time.Second,
	}

	gateway, err := db.New(ctx, pgCfg, resCfg, "./migrations")
	require.NoError(t, err, "pool creation must not require a reachable database")
	defer gateway.Close(ctx)

	assert.NotNil(t, gateway.Pool())
	assert.False(t, gateway.Ready())

	err = gateway.Connect(ctx)
	require.ErrorIs(t, err, db.ErrRetriesExhausted)
	assert.False(t, gateway.Ready())
}
