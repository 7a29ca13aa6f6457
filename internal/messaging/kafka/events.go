package kafka

import (
	"strconv"
	"time"
)

// EventType определяет тип события заказа.
type EventType string

const (
	EventTypeOrderCreated       EventType = "order.created"
	EventTypeOrderDeleted       EventType = "order.deleted"
	EventTypeOrderStatusChanged EventType = "order.status_changed"
)

// Topics для Kafka.
const (
	TopicOrderEvents     = "orderhub.order.events"
	TopicDeadLetterQueue = "orderhub.dlq" // Dead Letter Queue для failed messages
)

// Kafka headers для retry логики.
const (
	HeaderRetryCount    = "x-retry-count"
	HeaderOriginalTopic = "x-original-topic"
	HeaderErrorMessage  = "x-error-message"
	HeaderFailedAt      = "x-failed-at"
)

// OrderEvent представляет событие заказа на проводе.
type OrderEvent struct {
	EventType EventType              `json:"event_type"`
	OrderID   int64                  `json:"order_id"`
	ClientID  int64                  `json:"client_id,omitempty"`
	Status    string                 `json:"status,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
}

// NewOrderEvent создает новое событие заказа.
func NewOrderEvent(eventType EventType, orderID, clientID int64, status string, metadata map[string]interface{}) *OrderEvent {
	return &OrderEvent{
		EventType: eventType,
		OrderID:   orderID,
		ClientID:  clientID,
		Status:    status,
		Timestamp: time.Now(),
		Metadata:  metadata,
	}
}

// Key возвращает партиционирующий ключ события: все события одного
// заказа попадают в одну партицию.
func (e *OrderEvent) Key() string {
	return strconv.FormatInt(e.OrderID, 10)
}
