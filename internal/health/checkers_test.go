package health

import (
	"errors"
	"testing"
	"time"

	"github.com/vladislavdragonenkov/orderhub/internal/domain"
)

func TestDatabaseChecker_NilDB(t *testing.T) {
	checker := NewDatabaseChecker("postgres", nil)

	check := checker.Check()
	if check.Status != StatusUnhealthy {
		t.Fatalf("nil db must be unhealthy, got %s", check.Status)
	}
	if check.Message == "" {
		t.Fatal("expected explanatory message")
	}
}

type stubOutboxStats struct {
	stats domain.OutboxStats
	err   error
}

func (s *stubOutboxStats) Enqueue(msg domain.OutboxMessage) (domain.OutboxMessage, error) {
	return msg, nil
}
func (s *stubOutboxStats) PullPending(int) ([]domain.OutboxMessage, error) { return nil, nil }
func (s *stubOutboxStats) Stats() (domain.OutboxStats, error)             { return s.stats, s.err }
func (s *stubOutboxStats) MarkSent(string) error                          { return nil }
func (s *stubOutboxStats) MarkFailed(string) error                        { return nil }

func TestOutboxBacklogChecker(t *testing.T) {
	t.Run("empty backlog is healthy", func(t *testing.T) {
		checker := NewOutboxBacklogChecker("outbox", &stubOutboxStats{}, time.Minute)
		if check := checker.Check(); check.Status != StatusHealthy {
			t.Fatalf("expected healthy, got %s: %s", check.Status, check.Message)
		}
	})

	t.Run("fresh backlog is healthy", func(t *testing.T) {
		repo := &stubOutboxStats{stats: domain.OutboxStats{
			PendingCount:    3,
			OldestPendingAt: time.Now().Add(-time.Second),
		}}
		checker := NewOutboxBacklogChecker("outbox", repo, time.Minute)
		if check := checker.Check(); check.Status != StatusHealthy {
			t.Fatalf("expected healthy, got %s: %s", check.Status, check.Message)
		}
	})

	t.Run("stale backlog is degraded", func(t *testing.T) {
		repo := &stubOutboxStats{stats: domain.OutboxStats{
			PendingCount:    10,
			OldestPendingAt: time.Now().Add(-time.Hour),
		}}
		checker := NewOutboxBacklogChecker("outbox", repo, time.Minute)
		check := checker.Check()
		if check.Status != StatusDegraded {
			t.Fatalf("expected degraded, got %s", check.Status)
		}
		if check.Message == "" {
			t.Fatal("expected backlog details in message")
		}
	})

	t.Run("stats error is unhealthy", func(t *testing.T) {
		repo := &stubOutboxStats{err: errors.New("storage down")}
		checker := NewOutboxBacklogChecker("outbox", repo, time.Minute)
		if check := checker.Check(); check.Status != StatusUnhealthy {
			t.Fatalf("expected unhealthy, got %s", check.Status)
		}
	})

	t.Run("nil repo is degraded", func(t *testing.T) {
		checker := NewOutboxBacklogChecker("outbox", nil, 0)
		if check := checker.Check(); check.Status != StatusDegraded {
			t.Fatalf("expected degraded, got %s", check.Status)
		}
	})
}
