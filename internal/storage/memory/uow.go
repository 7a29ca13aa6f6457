package memory

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/vladislavdragonenkov/orderhub/internal/domain"
)

type orderUnitOfWork struct {
	store *Store

	// commitHook вызывается между успешным callback и публикацией
	// изменений; тесты подставляют сюда отказ фиксации.
	commitHook func() error
}

// NewOrderUnitOfWork создаёт единицу работы над заказами поверх in-memory
// хранилища. Изменения собираются в теневых копиях таблиц и становятся
// видимыми только после успешного завершения callback.
func NewOrderUnitOfWork(store *Store) domain.OrderUnitOfWork {
	return &orderUnitOfWork{store: store}
}

func (u *orderUnitOfWork) Within(ctx context.Context, fn func(tx domain.OrderTx) error) error {
	u.store.mu.Lock()
	defer u.store.mu.Unlock()

	stagedOrders := u.store.orders.clone()
	stagedOrderItems := u.store.orderItems.clone()

	tx := &orderTx{
		store:      u.store,
		orders:     stagedOrders,
		orderItems: stagedOrderItems,
	}
	if err := fn(tx); err != nil {
		return err
	}
	if u.commitHook != nil {
		if err := u.commitHook(); err != nil {
			return domain.NewStorageError(domain.CodeConnection, "commit order tx", err)
		}
	}

	// События ставятся в outbox до публикации таблиц: отказ Enqueue
	// оставляет хранилище в состоянии до транзакции.
	for _, msg := range tx.outbox {
		if _, err := u.store.outbox.Enqueue(msg); err != nil {
			return err
		}
	}
	// Публикация in-place: делегаты, созданные до фиксации, держат тот же
	// rowSet и видят зафиксированные строки.
	u.store.orders.adopt(stagedOrders)
	u.store.orderItems.adopt(stagedOrderItems)

	return nil
}

type orderTx struct {
	store      *Store
	txMu       sync.RWMutex
	orders     *rowSet[domain.Order]
	orderItems *rowSet[domain.OrderItem]
	outbox     []domain.OutboxMessage
}

func (t *orderTx) Orders() domain.Delegate[domain.Order, domain.OrderPatch] {
	return t.store.orderCollection(&t.txMu, t.orders, t.orderItems, t.store.items, t.store.users)
}

func (t *orderTx) OrderItems() domain.Delegate[domain.OrderItem, domain.OrderItemPatch] {
	return t.store.orderItemCollection(&t.txMu, t.orderItems)
}

func (t *orderTx) EnqueueOutbox(ctx context.Context, msg domain.OutboxMessage) error {
	if msg.ID == "" {
		msg.ID = uuid.NewString()
	}
	t.outbox = append(t.outbox, msg)
	return nil
}

var _ domain.OrderUnitOfWork = (*orderUnitOfWork)(nil)
var _ domain.OrderTx = (*orderTx)(nil)
