package health

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/vladislavdragonenkov/orderhub/internal/domain"
)

const pingTimeout = 2 * time.Second

// DatabaseChecker проверяет доступность БД через Ping.
type DatabaseChecker struct {
	name string
	db   *sql.DB
}

// NewDatabaseChecker создаёт проверку подключения к БД.
func NewDatabaseChecker(name string, db *sql.DB) *DatabaseChecker {
	return &DatabaseChecker{name: name, db: db}
}

// Check выполняет ping с коротким таймаутом.
func (c *DatabaseChecker) Check() Check {
	start := time.Now()

	if c.db == nil {
		return Check{
			Name:       c.name,
			Status:     StatusUnhealthy,
			Message:    "database is not configured",
			DurationMs: time.Since(start).Milliseconds(),
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()

	if err := c.db.PingContext(ctx); err != nil {
		return Check{
			Name:       c.name,
			Status:     StatusUnhealthy,
			Message:    err.Error(),
			DurationMs: time.Since(start).Milliseconds(),
		}
	}

	return Check{
		Name:       c.name,
		Status:     StatusHealthy,
		DurationMs: time.Since(start).Milliseconds(),
	}
}

// OutboxBacklogChecker следит за отставанием transactional outbox.
// Застрявший backlog не валит readiness, но помечает сервис degraded.
type OutboxBacklogChecker struct {
	name   string
	repo   domain.OutboxRepository
	maxAge time.Duration
}

// NewOutboxBacklogChecker создаёт проверку backlog outbox: события старше
// maxAge переводят компонент в degraded.
func NewOutboxBacklogChecker(name string, repo domain.OutboxRepository, maxAge time.Duration) *OutboxBacklogChecker {
	if maxAge <= 0 {
		maxAge = time.Minute
	}
	return &OutboxBacklogChecker{name: name, repo: repo, maxAge: maxAge}
}

// Check читает статистику backlog.
func (c *OutboxBacklogChecker) Check() Check {
	start := time.Now()

	if c.repo == nil {
		return Check{
			Name:       c.name,
			Status:     StatusDegraded,
			Message:    "outbox repository is not configured",
			DurationMs: time.Since(start).Milliseconds(),
		}
	}

	stats, err := c.repo.Stats()
	if err != nil {
		return Check{
			Name:       c.name,
			Status:     StatusUnhealthy,
			Message:    err.Error(),
			DurationMs: time.Since(start).Milliseconds(),
		}
	}

	if stats.PendingCount > 0 && !stats.OldestPendingAt.IsZero() {
		if age := time.Since(stats.OldestPendingAt); age > c.maxAge {
			return Check{
				Name:       c.name,
				Status:     StatusDegraded,
				Message:    fmt.Sprintf("%d pending events, oldest is %s old", stats.PendingCount, age.Truncate(time.Second)),
				DurationMs: time.Since(start).Milliseconds(),
			}
		}
	}

	return Check{
		Name:       c.name,
		Status:     StatusHealthy,
		DurationMs: time.Since(start).Milliseconds(),
	}
}
