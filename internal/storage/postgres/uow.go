package postgres

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/vladislavdragonenkov/orderhub/internal/domain"
)

type orderUnitOfWork struct {
	store *Store
}

// NewOrderUnitOfWork создаёт атомарную единицу работы над заказами
// поверх SQL-транзакции. Все делегаты внутри Within разделяют одну
// транзакцию; outbox-событие фиксируется тем же коммитом, что и данные.
func NewOrderUnitOfWork(store *Store) domain.OrderUnitOfWork {
	return &orderUnitOfWork{store: store}
}

func (u *orderUnitOfWork) Within(ctx context.Context, fn func(tx domain.OrderTx) error) error {
	tx, err := u.store.DB().BeginTx(ctx, nil)
	if err != nil {
		return storageFailure("begin order tx", err)
	}

	if err := fn(&orderTx{q: tx}); err != nil {
		_ = tx.Rollback()
		return err
	}

	if err := tx.Commit(); err != nil {
		return storageFailure("commit order tx", err)
	}

	return nil
}

type orderTx struct {
	q querier
}

func (t *orderTx) Orders() domain.Delegate[domain.Order, domain.OrderPatch] {
	return &orderDelegate{q: t.q}
}

func (t *orderTx) OrderItems() domain.Delegate[domain.OrderItem, domain.OrderItemPatch] {
	return &orderItemDelegate{q: t.q}
}

func (t *orderTx) EnqueueOutbox(ctx context.Context, msg domain.OutboxMessage) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	if msg.ID == "" {
		msg.ID = uuid.NewString()
	}
	now := time.Now().UTC()

	if _, err := t.q.ExecContext(ctx, `
		INSERT INTO outbox_messages (
			id, aggregate_type, aggregate_id, event_type, payload,
			status, attempt_count, created_at, updated_at
		) VALUES ($1,$2,$3,$4,$5,'pending',0,$6,$7)
	`, msg.ID, msg.AggregateType, msg.AggregateID, msg.EventType, msg.Payload, now, now); err != nil {
		return storageFailure("enqueue outbox message", err)
	}

	return nil
}

var _ domain.OrderUnitOfWork = (*orderUnitOfWork)(nil)
var _ domain.OrderTx = (*orderTx)(nil)
