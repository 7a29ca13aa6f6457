package postgres

import (
	"context"
	"errors"
	"strconv"
	"testing"

	"github.com/vladislavdragonenkov/orderhub/internal/domain"
)

func TestOrderUnitOfWork_PostgresCommitsDataAndOutboxTogether(t *testing.T) {
	store := openPostgresStoreForIntegrationTest(t)
	ctx := context.Background()

	client := seedUserForIntegrationTest(t, store, "UoW Client", "uow@example.com")
	item := seedItemForIntegrationTest(t, store, "uow item", 2)

	uow := NewOrderUnitOfWork(store)
	var orderID int64
	err := uow.Within(ctx, func(tx domain.OrderTx) error {
		order, err := tx.Orders().Create(ctx, domain.Order{
			ClientID:      client.ID,
			CreatedByID:   client.ID,
			PaymentMethod: domain.PaymentMethodCredit,
			Items:         []domain.OrderItem{{ItemID: item.ID, Quantity: 2}},
		})
		if err != nil {
			return err
		}
		orderID = order.ID
		return tx.EnqueueOutbox(ctx, domain.OutboxMessage{
			AggregateType: "order",
			AggregateID:   strconv.FormatInt(order.ID, 10),
			EventType:     "order.created",
			Payload:       []byte(`{}`),
		})
	})
	if err != nil {
		t.Fatalf("unit of work: %v", err)
	}

	if _, err := NewOrderDelegate(store).FindByID(ctx, orderID); err != nil {
		t.Fatalf("committed order must exist: %v", err)
	}
	pending, err := NewOutboxRepository(store).PullPending(10)
	if err != nil {
		t.Fatalf("pull pending: %v", err)
	}
	if len(pending) != 1 || pending[0].AggregateID != strconv.FormatInt(orderID, 10) {
		t.Fatalf("expected one committed outbox message, got %+v", pending)
	}
}

func TestOrderUnitOfWork_PostgresRollsBackEverything(t *testing.T) {
	store := openPostgresStoreForIntegrationTest(t)
	ctx := context.Background()

	client := seedUserForIntegrationTest(t, store, "Rollback Client", "rollback@example.com")
	item := seedItemForIntegrationTest(t, store, "rollback item", 2)

	boom := errors.New("boom")
	uow := NewOrderUnitOfWork(store)
	err := uow.Within(ctx, func(tx domain.OrderTx) error {
		if _, err := tx.Orders().Create(ctx, domain.Order{
			ClientID:      client.ID,
			CreatedByID:   client.ID,
			PaymentMethod: domain.PaymentMethodCash,
			Items:         []domain.OrderItem{{ItemID: item.ID, Quantity: 1}},
		}); err != nil {
			return err
		}
		if err := tx.EnqueueOutbox(ctx, domain.OutboxMessage{
			AggregateType: "order",
			AggregateID:   "0",
			EventType:     "order.created",
			Payload:       []byte(`{}`),
		}); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("callback error must surface unchanged, got %v", err)
	}

	total, err := NewOrderDelegate(store).Count(ctx, domain.MatchAll{})
	if err != nil {
		t.Fatalf("count orders: %v", err)
	}
	if total != 0 {
		t.Fatalf("rolled back order must not persist, count=%d", total)
	}
	pending, err := NewOutboxRepository(store).PullPending(10)
	if err != nil {
		t.Fatalf("pull pending: %v", err)
	}
	if len(pending) != 0 {
		t.Fatalf("rolled back outbox message must not persist, got %d", len(pending))
	}
}

func TestOrderUnitOfWork_PostgresCascadeDelete(t *testing.T) {
	store := openPostgresStoreForIntegrationTest(t)
	ctx := context.Background()

	client := seedUserForIntegrationTest(t, store, "Delete Client", "delete@example.com")
	item := seedItemForIntegrationTest(t, store, "delete item", 2)
	order := seedOrderForIntegrationTest(t, store, client.ID, item.ID)

	uow := NewOrderUnitOfWork(store)
	err := uow.Within(ctx, func(tx domain.OrderTx) error {
		if _, err := tx.OrderItems().DeleteMany(ctx, domain.Equals{Field: domain.FieldOrderID, Value: order.ID}); err != nil {
			return err
		}
		return tx.Orders().Delete(ctx, order.ID)
	})
	if err != nil {
		t.Fatalf("delete unit of work: %v", err)
	}

	_, err = NewOrderDelegate(store).FindByID(ctx, order.ID)
	var se *domain.StorageError
	if !errors.As(err, &se) || se.Code != domain.CodeNotFound {
		t.Fatalf("expected CodeNotFound after delete, got %v", err)
	}
	left, err := NewOrderItemDelegate(store).Count(ctx, domain.Equals{Field: domain.FieldOrderID, Value: order.ID})
	if err != nil {
		t.Fatalf("count order items: %v", err)
	}
	if left != 0 {
		t.Fatalf("order items must be gone, count=%d", left)
	}
}
