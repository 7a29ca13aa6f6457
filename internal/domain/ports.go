package domain

import (
	"context"
	"time"
)

// Имена связей для жадной подгрузки в FindMany/FindByID.
const (
	IncludeCategory = "category"
	IncludeAddress  = "address"
	IncludeClient   = "client"
	IncludeItems    = "items"
)

// Delegate — узкий набор способностей хранилища для строк одной сущности.
// E — форма строки, P — тип частичного обновления. Делегат ничего не знает
// о постраничном протоколе и сигнализирует отказы через StorageError.
type Delegate[E any, P any] interface {
	// FindMany возвращает упорядоченную выборку, ограниченную skip/take,
	// с жадно подгруженными связями из include.
	FindMany(ctx context.Context, pred Predicate, sort Sort, skip, take int, include []string) ([]E, error)
	// Count возвращает число строк, удовлетворяющих предикату.
	Count(ctx context.Context, pred Predicate) (int64, error)
	// FindByID возвращает строку или CodeNotFound.
	FindByID(ctx context.Context, id int64) (E, error)
	// Create сохраняет новую строку и возвращает её с присвоенным ID.
	Create(ctx context.Context, data E) (E, error)
	// Update применяет частичное обновление и возвращает строку целиком.
	Update(ctx context.Context, id int64, patch P) (E, error)
	// Delete удаляет строку или возвращает CodeNotFound.
	Delete(ctx context.Context, id int64) error
	// DeleteMany удаляет все строки по предикату и возвращает их число.
	DeleteMany(ctx context.Context, pred Predicate) (int64, error)
}

// OrderTx — делегаты, привязанные к одной открытой транзакции заказов.
type OrderTx interface {
	Orders() Delegate[Order, OrderPatch]
	OrderItems() Delegate[OrderItem, OrderItemPatch]
	// EnqueueOutbox сохраняет событие в outbox той же транзакцией.
	EnqueueOutbox(ctx context.Context, msg OutboxMessage) error
}

// OrderUnitOfWork открывает атомарную единицу работы над заказами:
// все вызовы внутри fn фиксируются вместе или не фиксируются вовсе.
type OrderUnitOfWork interface {
	Within(ctx context.Context, fn func(tx OrderTx) error) error
}

// OutboxPublisher публикует события из transactional outbox.
type OutboxPublisher interface {
	// Publish передаёт событие наружу; должен быть идемпотентным.
	Publish(event OutboxMessage) error
}

// OutboxRepository позволяет сохранять события для последующей публикации.
type OutboxRepository interface {
	Enqueue(msg OutboxMessage) (OutboxMessage, error)
	PullPending(limit int) ([]OutboxMessage, error)
	Stats() (OutboxStats, error)
	MarkSent(id string) error
	MarkFailed(id string) error
}

// TimelineRepository хранит события жизненного цикла заказа.
type TimelineRepository interface {
	Append(event TimelineEvent) error
	List(orderID int64) ([]TimelineEvent, error)
}

// IdempotencyRepository хранит состояние обработки запросов по idempotency-key.
type IdempotencyRepository interface {
	CreateProcessing(key, requestHash string, ttlAt time.Time) (IdempotencyRecord, error)
	Get(key string) (IdempotencyRecord, error)
	MarkDone(key string, responseBody []byte, httpStatus int) error
	MarkFailed(key string, responseBody []byte, httpStatus int) error
	DeleteExpired(before time.Time, limit int) (int, error)
}

// OutboxMessage хранит данные публикуемого события.
type OutboxMessage struct {
	ID            string
	AggregateType string
	AggregateID   string
	EventType     string
	Payload       []byte
}

// OutboxStats описывает текущее состояние backlog transactional outbox.
type OutboxStats struct {
	PendingCount    int
	OldestPendingAt time.Time
}

// TimelineEvent описывает событие в жизненном цикле заказа.
type TimelineEvent struct {
	OrderID  int64
	Type     string
	Reason   string
	Occurred time.Time
}
