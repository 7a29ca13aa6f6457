// Package order содержит транзакционный workflow заказов.
package order

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/orderhub/internal/domain"
	"github.com/vladislavdragonenkov/orderhub/internal/repository"
)

// Типы событий жизненного цикла заказа: они же идут в outbox и в timeline.
const (
	EventOrderCreated       = "order.created"
	EventOrderDeleted       = "order.deleted"
	EventOrderStatusChanged = "order.status_changed"

	aggregateOrder = "order"
)

// Service — операции над заказами. Чтение идёт через постраничный
// репозиторий, записи — через единицу работы: заказ, его позиции и
// outbox-событие фиксируются одной транзакцией.
type Service struct {
	repo     *repository.Repository[domain.Order, domain.OrderPatch]
	uow      domain.OrderUnitOfWork
	timeline domain.TimelineRepository
	logger   *log.Entry
}

// NewService конструирует сервис заказов.
func NewService(
	delegate domain.Delegate[domain.Order, domain.OrderPatch],
	uow domain.OrderUnitOfWork,
	timeline domain.TimelineRepository,
	logger *log.Entry,
) *Service {
	if logger == nil {
		logger = log.WithField("component", "order-service")
	}
	return &Service{
		repo:     repository.New(delegate),
		uow:      uow,
		timeline: timeline,
		logger:   logger,
	}
}

// List возвращает страницу заказов по фильтру, новые первыми,
// с клиентом и позициями.
func (s *Service) List(ctx context.Context, pageable domain.Pageable, filter domain.OrderFilter) (domain.Page[domain.Order], error) {
	pred, err := filter.Predicate()
	if err != nil {
		return domain.Page[domain.Order]{}, err
	}
	sort := domain.Sort{Field: domain.FieldCreatedAt, Desc: true}
	include := []string{domain.IncludeClient, domain.IncludeItems}
	return s.repo.ListPage(ctx, pred, sort, pageable, include)
}

// Get возвращает заказ со связями.
func (s *Service) Get(ctx context.Context, id int64) (domain.Order, error) {
	return s.repo.FindOne(ctx, id)
}

// Create создаёт заказ вместе с позициями. Команда валидируется до
// какой-либо записи; заказ, позиции и событие order.created фиксируются
// одной единицей работы.
func (s *Service) Create(ctx context.Context, cmd domain.CreateOrder) (domain.Order, error) {
	if errs := cmd.ValidateInvariants(); len(errs) > 0 {
		// Каждое замечание уже несёт ErrValidation; Join сохраняет их все
		// для errors.Is, не дублируя префикс таксономии.
		return domain.Order{}, errors.Join(errs...)
	}

	items := make([]domain.OrderItem, 0, len(cmd.Items))
	for _, line := range cmd.Items {
		items = append(items, domain.OrderItem{
			ItemID:   line.ItemID,
			Quantity: line.Quantity,
		})
	}

	var created domain.Order
	err := s.uow.Within(ctx, func(tx domain.OrderTx) error {
		var txErr error
		created, txErr = tx.Orders().Create(ctx, domain.Order{
			ClientID:      cmd.ClientID,
			CreatedByID:   cmd.CreatedByID,
			PaymentMethod: cmd.PaymentMethod,
			Status:        cmd.Status,
			Items:         items,
		})
		if txErr != nil {
			return txErr
		}
		// Перечитываем той же транзакцией: заказ возвращается с позициями
		// независимо от бэкенда.
		created, txErr = tx.Orders().FindByID(ctx, created.ID)
		if txErr != nil {
			return txErr
		}
		return tx.EnqueueOutbox(ctx, s.orderEvent(EventOrderCreated, created))
	})
	if err != nil {
		return domain.Order{}, domain.Translate(err)
	}

	s.appendTimeline(created.ID, EventOrderCreated, "")
	s.logger.WithFields(log.Fields{
		"order_id":  created.ID,
		"client_id": created.ClientID,
	}).Info("order created")
	return created, nil
}

// Delete удаляет заказ и все его позиции одной единицей работы.
// Отсутствующий заказ — ErrNotFound независимо от наличия осиротевших позиций.
func (s *Service) Delete(ctx context.Context, id int64) error {
	err := s.uow.Within(ctx, func(tx domain.OrderTx) error {
		pred := domain.Equals{Field: domain.FieldOrderID, Value: id}
		if _, txErr := tx.OrderItems().DeleteMany(ctx, pred); txErr != nil {
			return txErr
		}
		if txErr := tx.Orders().Delete(ctx, id); txErr != nil {
			return txErr
		}
		return tx.EnqueueOutbox(ctx, s.orderEvent(EventOrderDeleted, domain.Order{ID: id}))
	})
	if err != nil {
		return domain.Translate(err)
	}

	s.appendTimeline(id, EventOrderDeleted, "")
	s.logger.WithField("order_id", id).Info("order deleted")
	return nil
}

// ChangeStatus переводит заказ в следующий статус по state machine:
// PENDING → IN_PROGRESS → COMPLETED, отмена из PENDING и IN_PROGRESS.
func (s *Service) ChangeStatus(ctx context.Context, id int64, next domain.OrderStatus) (domain.Order, error) {
	if !next.Valid() {
		return domain.Order{}, domain.Validationf("unknown order status %q", string(next))
	}

	var updated domain.Order
	var prev domain.OrderStatus
	err := s.uow.Within(ctx, func(tx domain.OrderTx) error {
		current, txErr := tx.Orders().FindByID(ctx, id)
		if txErr != nil {
			return txErr
		}
		if !current.Status.CanTransitionTo(next) {
			return domain.Validationf("cannot transition order from %s to %s", current.Status, next)
		}
		prev = current.Status

		updated, txErr = tx.Orders().Update(ctx, id, domain.OrderPatch{Status: &next})
		if txErr != nil {
			return txErr
		}
		return tx.EnqueueOutbox(ctx, s.orderEvent(EventOrderStatusChanged, updated))
	})
	if err != nil {
		return domain.Order{}, domain.Translate(err)
	}

	s.appendTimeline(id, EventOrderStatusChanged, string(prev)+" -> "+string(next))
	s.logger.WithFields(log.Fields{
		"order_id": id,
		"from":     prev,
		"to":       next,
	}).Info("order status changed")
	return updated, nil
}

// orderEventPayload — содержимое outbox-события заказа.
type orderEventPayload struct {
	EventType     string    `json:"event_type"`
	OrderID       int64     `json:"order_id"`
	ClientID      int64     `json:"client_id,omitempty"`
	Status        string    `json:"status,omitempty"`
	PaymentMethod string    `json:"payment_method,omitempty"`
	ItemCount     int       `json:"item_count,omitempty"`
	Timestamp     time.Time `json:"timestamp"`
}

func (s *Service) orderEvent(eventType string, o domain.Order) domain.OutboxMessage {
	payload, err := json.Marshal(orderEventPayload{
		EventType:     eventType,
		OrderID:       o.ID,
		ClientID:      o.ClientID,
		Status:        string(o.Status),
		PaymentMethod: string(o.PaymentMethod),
		ItemCount:     len(o.Items),
		Timestamp:     time.Now().UTC(),
	})
	if err != nil {
		// orderEventPayload сериализуется всегда; ветка держит компилятор честным.
		payload = []byte("{}")
	}
	return domain.OutboxMessage{
		AggregateType: aggregateOrder,
		AggregateID:   strconv.FormatInt(o.ID, 10),
		EventType:     eventType,
		Payload:       payload,
	}
}

// appendTimeline пишет событие жизненного цикла best-effort: отказ
// timeline не откатывает уже зафиксированную транзакцию.
func (s *Service) appendTimeline(orderID int64, eventType, reason string) {
	if s.timeline == nil {
		return
	}
	event := domain.TimelineEvent{
		OrderID:  orderID,
		Type:     eventType,
		Reason:   reason,
		Occurred: time.Now().UTC(),
	}
	if err := s.timeline.Append(event); err != nil {
		s.logger.WithError(err).WithField("order_id", orderID).Warn("failed to append timeline event")
	}
}
