package domain

import "time"

// PaymentMethod — форма оплаты заказа.
type PaymentMethod string

const (
	PaymentMethodCash   PaymentMethod = "CASH"
	PaymentMethodCredit PaymentMethod = "CREDIT"
	PaymentMethodDebit  PaymentMethod = "DEBIT"
	PaymentMethodPix    PaymentMethod = "PIX"
)

// Valid проверяет принадлежность значения к поддерживаемым формам оплаты.
func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentMethodCash, PaymentMethodCredit, PaymentMethodDebit, PaymentMethodPix:
		return true
	default:
		return false
	}
}

// OrderStatus описывает жизненный цикл заказа.
type OrderStatus string

const (
	// OrderStatusPending — заказ создан, обработка не начата.
	OrderStatusPending OrderStatus = "PENDING"
	// OrderStatusInProgress — заказ взят в работу.
	OrderStatusInProgress OrderStatus = "IN_PROGRESS"
	// OrderStatusCompleted — заказ исполнен.
	OrderStatusCompleted OrderStatus = "COMPLETED"
	// OrderStatusCancelled — заказ отменён до завершения цикла.
	OrderStatusCancelled OrderStatus = "CANCELLED"
)

// Valid проверяет принадлежность значения к поддерживаемым статусам.
func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusPending, OrderStatusInProgress, OrderStatusCompleted, OrderStatusCancelled:
		return true
	default:
		return false
	}
}

// CanTransitionTo проверяет допустимость перехода статуса:
// PENDING → IN_PROGRESS → COMPLETED, отмена возможна из PENDING и IN_PROGRESS.
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	switch s {
	case OrderStatusPending:
		return next == OrderStatusInProgress || next == OrderStatusCancelled
	case OrderStatusInProgress:
		return next == OrderStatusCompleted || next == OrderStatusCancelled
	default:
		return false
	}
}

// OrderItem — позиция заказа. Жизненный цикл строго привязан к заказу:
// создаётся только вместе с ним, удаляется только вместе с ним.
type OrderItem struct {
	ID       int64 `json:"id"`
	OrderID  int64 `json:"orderId"`
	ItemID   int64 `json:"itemId"`
	Quantity int32 `json:"quantity"`
	Item     *Item `json:"item,omitempty"`
}

// Order агрегирует заказ и его позиции. Позициями заказ владеет
// эксклюзивно; каскадное удаление обеспечивает транзакция ядра.
type Order struct {
	ID            int64         `json:"id"`
	ClientID      int64         `json:"clientId"`
	CreatedByID   int64         `json:"createdById"`
	PaymentMethod PaymentMethod `json:"paymentMethod"`
	Status        OrderStatus   `json:"status"`
	CreatedAt     time.Time     `json:"createdAt"`
	UpdatedAt     time.Time     `json:"updatedAt"`
	Items         []OrderItem   `json:"items,omitempty"`
	Client        *User         `json:"client,omitempty"`
}

// OrderPatch — частичное обновление заказа; nil-поля не трогаются.
type OrderPatch struct {
	Status        *OrderStatus
	PaymentMethod *PaymentMethod
}

// OrderItemPatch — частичное обновление позиции заказа.
type OrderItemPatch struct {
	Quantity *int32
}

// CreateOrderItem — входная позиция команды создания заказа.
type CreateOrderItem struct {
	ItemID   int64 `json:"itemId"`
	Quantity int32 `json:"quantity"`
}

// CreateOrder — команда создания заказа вместе с позициями.
type CreateOrder struct {
	ClientID      int64             `json:"clientId"`
	PaymentMethod PaymentMethod     `json:"paymentMethod"`
	Status        OrderStatus       `json:"status"`
	CreatedByID   int64             `json:"createdById"`
	Items         []CreateOrderItem `json:"items"`
}

// ValidateInvariants проверяет инварианты команды и возвращает список замечаний.
func (c *CreateOrder) ValidateInvariants() []error {
	var errs []error

	if c.ClientID == 0 {
		errs = append(errs, ErrOrderClientRequired)
	}
	if c.CreatedByID == 0 {
		errs = append(errs, ErrOrderCreatorRequired)
	}
	if !c.PaymentMethod.Valid() {
		errs = append(errs, ErrPaymentMethodInvalid)
	}
	if c.Status != "" && !c.Status.Valid() {
		errs = append(errs, ErrOrderStatusInvalid)
	}
	if len(c.Items) == 0 {
		errs = append(errs, ErrOrderItemsRequired)
	}
	for _, item := range c.Items {
		if item.Quantity <= 0 {
			errs = append(errs, ErrOrderItemQtyInvalid)
			break
		}
	}

	return errs
}
