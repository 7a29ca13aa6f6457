package memory

import (
	"testing"

	"github.com/vladislavdragonenkov/orderhub/internal/domain"
)

func TestOutboxRepository_EnqueueAndPull(t *testing.T) {
	repo := NewOutboxRepository()

	msg := domain.OutboxMessage{
		AggregateType: "order",
		AggregateID:   "1",
		EventType:     "order.status_changed",
		Payload:       []byte(`{"status":"PENDING"}`),
	}

	saved, err := repo.Enqueue(msg)
	if err != nil {
		t.Fatalf("enqueue failed: %v", err)
	}
	if saved.ID == "" {
		t.Fatal("expected generated id")
	}

	pending, err := repo.PullPending(10)
	if err != nil {
		t.Fatalf("pull pending failed: %v", err)
	}
	if len(pending) != 1 {
		t.Fatalf("expected 1 pending message, got %d", len(pending))
	}
	if pending[0].ID != saved.ID {
		t.Fatalf("expected same message id, got %s", pending[0].ID)
	}
}

func TestOutboxRepository_PullPendingKeepsEnqueueOrder(t *testing.T) {
	repo := NewOutboxRepository()

	first, err := repo.Enqueue(domain.OutboxMessage{AggregateType: "order", AggregateID: "1"})
	if err != nil {
		t.Fatalf("enqueue first: %v", err)
	}
	second, err := repo.Enqueue(domain.OutboxMessage{AggregateType: "order", AggregateID: "2"})
	if err != nil {
		t.Fatalf("enqueue second: %v", err)
	}

	pending, err := repo.PullPending(0)
	if err != nil {
		t.Fatalf("pull pending: %v", err)
	}
	if len(pending) != 2 || pending[0].ID != first.ID || pending[1].ID != second.ID {
		t.Fatalf("expected enqueue order, got %+v", pending)
	}
}

func TestOutboxRepository_MarkSentAndFailed(t *testing.T) {
	repo := NewOutboxRepository()

	saved, err := repo.Enqueue(domain.OutboxMessage{AggregateType: "order"})
	if err != nil {
		t.Fatalf("enqueue failed: %v", err)
	}

	if err := repo.MarkSent(saved.ID); err != nil {
		t.Fatalf("mark sent failed: %v", err)
	}

	if err := repo.MarkFailed(saved.ID); err != nil {
		t.Fatalf("mark failed: %v", err)
	}

	if err := repo.MarkFailed("missing"); err == nil {
		t.Fatal("expected error for missing record")
	}
}

func TestOutboxRepository_Stats(t *testing.T) {
	repo := NewOutboxRepository()

	stats, err := repo.Stats()
	if err != nil {
		t.Fatalf("stats on empty: %v", err)
	}
	if stats.PendingCount != 0 {
		t.Fatalf("expected empty backlog, got %d", stats.PendingCount)
	}

	first, err := repo.Enqueue(domain.OutboxMessage{AggregateType: "order", AggregateID: "1"})
	if err != nil {
		t.Fatalf("enqueue: %v", err)
	}
	if _, err := repo.Enqueue(domain.OutboxMessage{AggregateType: "order", AggregateID: "2"}); err != nil {
		t.Fatalf("enqueue: %v", err)
	}

	stats, err = repo.Stats()
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if stats.PendingCount != 2 || stats.OldestPendingAt.IsZero() {
		t.Fatalf("unexpected stats: %+v", stats)
	}

	if err := repo.MarkSent(first.ID); err != nil {
		t.Fatalf("mark sent: %v", err)
	}
	stats, err = repo.Stats()
	if err != nil {
		t.Fatalf("stats after mark: %v", err)
	}
	if stats.PendingCount != 1 {
		t.Fatalf("expected 1 pending after mark, got %d", stats.PendingCount)
	}
}
