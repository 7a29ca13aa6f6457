package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/vladislavdragonenkov/orderhub/internal/domain"
	"github.com/vladislavdragonenkov/orderhub/internal/service/catalog"
	"github.com/vladislavdragonenkov/orderhub/internal/service/order"
	"github.com/vladislavdragonenkov/orderhub/internal/service/outbox"
	"github.com/vladislavdragonenkov/orderhub/internal/service/user"
	"github.com/vladislavdragonenkov/orderhub/internal/storage/memory"
	httpapi "github.com/vladislavdragonenkov/orderhub/internal/transport/http"
)

// OrderLifecycleTestSuite тестирует полный жизненный цикл заказов
// через HTTP API поверх in-memory хранилища.
type OrderLifecycleTestSuite struct {
	suite.Suite
	api      *gin.Engine
	outbox   domain.OutboxRepository
	timeline domain.TimelineRepository

	clientID int64
	itemID   int64
}

// recordingPublisher накапливает опубликованные события для проверок.
type recordingPublisher struct {
	mu     sync.Mutex
	events []domain.OutboxMessage
}

func (p *recordingPublisher) Publish(event domain.OutboxMessage) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return nil
}

func (p *recordingPublisher) published() []domain.OutboxMessage {
	p.mu.Lock()
	defer p.mu.Unlock()
	result := make([]domain.OutboxMessage, len(p.events))
	copy(result, p.events)
	return result
}

func (suite *OrderLifecycleTestSuite) SetupTest() {
	baseLogger := log.New()
	baseLogger.SetLevel(log.WarnLevel) // Уменьшаем шум в тестах
	logger := baseLogger.WithField("component", "integration-test")

	store := memory.NewStore()
	suite.outbox = store.Outbox()
	suite.timeline = memory.NewTimelineRepository()

	services := httpapi.Services{
		Items:       catalog.NewItemService(store.Items(), logger),
		Categories:  catalog.NewCategoryService(store.Categories(), logger),
		Users:       user.NewService(store.Users(), logger),
		Orders:      order.NewService(store.Orders(), memory.NewOrderUnitOfWork(store), suite.timeline, logger),
		Idempotency: memory.NewIdempotencyRepository(),
	}
	suite.api = httpapi.NewRouter(services, nil, logger)

	suite.clientID = suite.seedClient("Lena Costa", "lena.costa@example.com")
	suite.itemID = suite.seedItem("Laptop Pro 16")
}

func (suite *OrderLifecycleTestSuite) TestSuccessfulOrderLifecycle() {
	// 1. Создаём заказ
	created := suite.createOrder(suite.clientID, suite.itemID, 2)
	require.Equal(suite.T(), string(domain.OrderStatusPending), created["status"])

	orderID := int64(created["id"].(float64))

	// 2. Проводим заказ через все допустимые статусы
	suite.changeStatus(orderID, domain.OrderStatusInProgress, http.StatusOK)
	suite.changeStatus(orderID, domain.OrderStatusCompleted, http.StatusOK)

	// 3. Проверяем финальное состояние
	final := suite.getOrder(orderID)
	require.Equal(suite.T(), string(domain.OrderStatusCompleted), final["status"])

	// 4. Проверяем хронологию: создание и два перехода
	events, err := suite.timeline.List(orderID)
	require.NoError(suite.T(), err)
	require.Len(suite.T(), events, 3)
	require.Equal(suite.T(), order.EventOrderCreated, events[0].Type)
	require.Equal(suite.T(), order.EventOrderStatusChanged, events[1].Type)
	require.Equal(suite.T(), "PENDING -> IN_PROGRESS", events[1].Reason)
	require.Equal(suite.T(), "IN_PROGRESS -> COMPLETED", events[2].Reason)

	// 5. Проверяем, что каждое изменение попало в outbox
	pending, err := suite.outbox.PullPending(10)
	require.NoError(suite.T(), err)
	require.Len(suite.T(), pending, 3)
	require.Equal(suite.T(), order.EventOrderCreated, pending[0].EventType)
	require.Equal(suite.T(), fmt.Sprintf("%d", orderID), pending[0].AggregateID)
}

func (suite *OrderLifecycleTestSuite) TestIllegalTransitionLeavesNoTrace() {
	created := suite.createOrder(suite.clientID, suite.itemID, 1)
	orderID := int64(created["id"].(float64))

	// PENDING -> COMPLETED запрещён
	suite.changeStatus(orderID, domain.OrderStatusCompleted, http.StatusBadRequest)

	// Статус не изменился, побочных записей нет
	current := suite.getOrder(orderID)
	require.Equal(suite.T(), string(domain.OrderStatusPending), current["status"])

	events, err := suite.timeline.List(orderID)
	require.NoError(suite.T(), err)
	require.Len(suite.T(), events, 1)

	pending, err := suite.outbox.PullPending(10)
	require.NoError(suite.T(), err)
	require.Len(suite.T(), pending, 1)
}

func (suite *OrderLifecycleTestSuite) TestOrderCancellation() {
	created := suite.createOrder(suite.clientID, suite.itemID, 1)
	orderID := int64(created["id"].(float64))

	suite.changeStatus(orderID, domain.OrderStatusInProgress, http.StatusOK)
	suite.changeStatus(orderID, domain.OrderStatusCancelled, http.StatusOK)

	final := suite.getOrder(orderID)
	require.Equal(suite.T(), string(domain.OrderStatusCancelled), final["status"])

	// Из CANCELLED пути назад нет
	suite.changeStatus(orderID, domain.OrderStatusInProgress, http.StatusBadRequest)
}

func (suite *OrderLifecycleTestSuite) TestDeleteOrderEnqueuesEvent() {
	created := suite.createOrder(suite.clientID, suite.itemID, 1)
	orderID := int64(created["id"].(float64))

	recorder := suite.doJSON(http.MethodDelete, fmt.Sprintf("/api/v1/orders/%d", orderID), nil)
	require.Equal(suite.T(), http.StatusNoContent, recorder.Code)

	recorder = suite.doJSON(http.MethodGet, fmt.Sprintf("/api/v1/orders/%d", orderID), nil)
	require.Equal(suite.T(), http.StatusNotFound, recorder.Code)

	pending, err := suite.outbox.PullPending(10)
	require.NoError(suite.T(), err)
	require.Len(suite.T(), pending, 2)
	require.Equal(suite.T(), order.EventOrderDeleted, pending[1].EventType)
}

func (suite *OrderLifecycleTestSuite) TestOutboxWorkerDrainsBacklog() {
	created := suite.createOrder(suite.clientID, suite.itemID, 1)
	orderID := int64(created["id"].(float64))
	suite.changeStatus(orderID, domain.OrderStatusInProgress, http.StatusOK)

	publisher := &recordingPublisher{}
	worker := outbox.NewWorker(suite.outbox, publisher,
		outbox.WithPollInterval(10*time.Millisecond),
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go worker.Run(ctx)

	// Ждём, пока воркер опубликует оба события
	suite.waitFor(2*time.Second, func() bool {
		return len(publisher.published()) >= 2
	}, "outbox worker did not publish enqueued events")

	published := publisher.published()
	require.Equal(suite.T(), order.EventOrderCreated, published[0].EventType)
	require.Equal(suite.T(), order.EventOrderStatusChanged, published[1].EventType)

	// Backlog должен опустеть
	suite.waitFor(2*time.Second, func() bool {
		pending, err := suite.outbox.PullPending(10)
		return err == nil && len(pending) == 0
	}, "outbox backlog was not drained")

	var payload struct {
		OrderID int64  `json:"order_id"`
		Status  string `json:"status"`
	}
	require.NoError(suite.T(), json.Unmarshal(published[1].Payload, &payload))
	require.Equal(suite.T(), orderID, payload.OrderID)
	require.Equal(suite.T(), string(domain.OrderStatusInProgress), payload.Status)
}

func (suite *OrderLifecycleTestSuite) TestIdempotentCreateSurvivesRetries() {
	body := map[string]any{
		"clientId":      suite.clientID,
		"createdById":   suite.clientID,
		"paymentMethod": "PIX",
		"items":         []map[string]any{{"itemId": suite.itemID, "quantity": 1}},
	}
	headers := map[string]string{"Idempotency-Key": "lifecycle-retry-1"}

	first := suite.doJSONWithHeaders(http.MethodPost, "/api/v1/orders", body, headers)
	require.Equal(suite.T(), http.StatusCreated, first.Code, first.Body.String())

	second := suite.doJSONWithHeaders(http.MethodPost, "/api/v1/orders", body, headers)
	require.Equal(suite.T(), http.StatusCreated, second.Code)
	require.Equal(suite.T(), first.Body.String(), second.Body.String())

	// Повтор не породил второго заказа и второго события
	pending, err := suite.outbox.PullPending(10)
	require.NoError(suite.T(), err)
	require.Len(suite.T(), pending, 1)
}

// Вспомогательные методы

func (suite *OrderLifecycleTestSuite) doJSON(method, path string, body any) *httptest.ResponseRecorder {
	return suite.doJSONWithHeaders(method, path, body, nil)
}

func (suite *OrderLifecycleTestSuite) doJSONWithHeaders(method, path string, body any, headers map[string]string) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(suite.T(), err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	for name, value := range headers {
		req.Header.Set(name, value)
	}

	recorder := httptest.NewRecorder()
	suite.api.ServeHTTP(recorder, req)
	return recorder
}

func (suite *OrderLifecycleTestSuite) decode(recorder *httptest.ResponseRecorder) map[string]any {
	var decoded map[string]any
	require.NoError(suite.T(), json.Unmarshal(recorder.Body.Bytes(), &decoded))
	return decoded
}

func (suite *OrderLifecycleTestSuite) seedClient(name, email string) int64 {
	recorder := suite.doJSON(http.MethodPost, "/api/v1/users", map[string]any{
		"name":     name,
		"email":    email,
		"phone":    "+5547999990001",
		"password": "s3cret",
	})
	require.Equal(suite.T(), http.StatusCreated, recorder.Code, recorder.Body.String())
	return int64(suite.decode(recorder)["id"].(float64))
}

func (suite *OrderLifecycleTestSuite) seedItem(description string) int64 {
	recorder := suite.doJSON(http.MethodPost, "/api/v1/items", map[string]any{
		"description": description,
		"unitPrice":   1999.90,
	})
	require.Equal(suite.T(), http.StatusCreated, recorder.Code, recorder.Body.String())
	return int64(suite.decode(recorder)["id"].(float64))
}

func (suite *OrderLifecycleTestSuite) createOrder(clientID, itemID int64, quantity int) map[string]any {
	recorder := suite.doJSON(http.MethodPost, "/api/v1/orders", map[string]any{
		"clientId":      clientID,
		"createdById":   clientID,
		"paymentMethod": "CREDIT",
		"items":         []map[string]any{{"itemId": itemID, "quantity": quantity}},
	})
	require.Equal(suite.T(), http.StatusCreated, recorder.Code, recorder.Body.String())
	return suite.decode(recorder)
}

func (suite *OrderLifecycleTestSuite) getOrder(orderID int64) map[string]any {
	recorder := suite.doJSON(http.MethodGet, fmt.Sprintf("/api/v1/orders/%d", orderID), nil)
	require.Equal(suite.T(), http.StatusOK, recorder.Code, recorder.Body.String())
	return suite.decode(recorder)
}

func (suite *OrderLifecycleTestSuite) changeStatus(orderID int64, next domain.OrderStatus, wantCode int) {
	recorder := suite.doJSON(http.MethodPatch, fmt.Sprintf("/api/v1/orders/%d/status", orderID), map[string]any{
		"status": string(next),
	})
	require.Equal(suite.T(), wantCode, recorder.Code, recorder.Body.String())
}

func (suite *OrderLifecycleTestSuite) waitFor(timeout time.Duration, cond func() bool, message string) {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	suite.T().Fatal(message)
}

func TestOrderLifecycle(t *testing.T) {
	suite.Run(t, new(OrderLifecycleTestSuite))
}
