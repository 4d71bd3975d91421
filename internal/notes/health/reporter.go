// Package health отвечает на вопросы "жив ли процесс" и "готов ли он
// обслуживать запросы".
package health

import (
	"sync/atomic"
	"time"
)

// Значения статусов.
const (
	StatusHealthy  = "healthy"
	StatusStarting = "starting"
	StatusReady    = "ready"
	StatusNotReady = "not ready"

	DatabaseConnected    = "connected"
	DatabaseDisconnected = "disconnected"
)

// ReadinessSource сообщает, доступно ли хранилище.
type ReadinessSource interface {
	Ready() bool
}

// Liveness - ответ на проверку живости.
type Liveness struct {
	Healthy   bool
	Status    string
	Timestamp time.Time
}

// Readiness - ответ на проверку готовности.
type Readiness struct {
	Ready     bool
	Status    string
	Database  string
	Timestamp time.Time
}

// Reporter собирает состояние процесса для проверок.
type Reporter struct {
	started atomic.Bool
	source  ReadinessSource
	now     func() time.Time
}

// NewReporter создает Reporter поверх источника готовности хранилища.
func NewReporter(source ReadinessSource) *Reporter {
	return &Reporter{
		source: source,
		now:    time.Now,
	}
}

// MarkStarted отмечает, что процесс завершил запуск.
func (r *Reporter) MarkStarted() {
	r.started.Store(true)
}

// Started сообщает, завершен ли запуск.
func (r *Reporter) Started() bool {
	return r.started.Load()
}

// Liveness не зависит от хранилища: процесс жив, даже если база недоступна.
func (r *Reporter) Liveness() Liveness {
	if !r.Started() {
		return Liveness{Status: StatusStarting, Timestamp: r.now().UTC()}
	}
	return Liveness{Healthy: true, Status: StatusHealthy, Timestamp: r.now().UTC()}
}

// Readiness готов, только если запуск завершен и хранилище доступно.
func (r *Reporter) Readiness() Readiness {
	dbReady := r.source != nil && r.source.Ready()

	out := Readiness{
		Status:    StatusNotReady,
		Database:  DatabaseDisconnected,
		Timestamp: r.now().UTC(),
	}
	if dbReady {
		out.Database = DatabaseConnected
	}
	if dbReady && r.Started() {
		out.Ready = true
		out.Status = StatusReady
	}
	return out
}
