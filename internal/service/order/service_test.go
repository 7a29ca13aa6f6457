package order_test

import (
	"context"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/vladislavdragonenkov/orderhub/internal/domain"
	"github.com/vladislavdragonenkov/orderhub/internal/service/order"
	"github.com/vladislavdragonenkov/orderhub/internal/storage/memory"
)

type orderFixture struct {
	store    *memory.Store
	timeline domain.TimelineRepository
	svc      *order.Service
	client   domain.User
	item     domain.Item
}

func newOrderFixture(t *testing.T) *orderFixture {
	t.Helper()
	ctx := context.Background()

	store := memory.NewStore()
	timeline := memory.NewTimelineRepository()
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	svc := order.NewService(
		store.Orders(),
		memory.NewOrderUnitOfWork(store),
		timeline,
		logger.WithField("component", "order-service-test"),
	)

	client, err := store.Users().Create(ctx, domain.User{
		Name:     "Maria Souza",
		Email:    "maria@example.com",
		Password: "secret",
	})
	require.NoError(t, err)

	item, err := store.Items().Create(ctx, domain.Item{
		Description: "espresso",
		UnitPrice:   7.5,
	})
	require.NoError(t, err)

	return &orderFixture{store: store, timeline: timeline, svc: svc, client: client, item: item}
}

func (f *orderFixture) createCmd() domain.CreateOrder {
	return domain.CreateOrder{
		ClientID:      f.client.ID,
		CreatedByID:   f.client.ID,
		PaymentMethod: domain.PaymentMethodCash,
		Items:         []domain.CreateOrderItem{{ItemID: f.item.ID, Quantity: 2}},
	}
}

func TestService_Create(t *testing.T) {
	f := newOrderFixture(t)
	ctx := context.Background()

	created, err := f.svc.Create(ctx, f.createCmd())
	require.NoError(t, err)
	require.NotZero(t, created.ID)
	require.Equal(t, domain.OrderStatusPending, created.Status)
	require.Len(t, created.Items, 1)

	// Заказ, позиции и outbox-событие фиксируются вместе.
	pending, err := f.store.Outbox().PullPending(10)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	require.Equal(t, order.EventOrderCreated, pending[0].EventType)

	events, err := f.timeline.List(created.ID)
	require.NoError(t, err)
	require.Len(t, events, 1)
	require.Equal(t, order.EventOrderCreated, events[0].Type)
}

func TestService_Create_RejectsEmptyItems(t *testing.T) {
	f := newOrderFixture(t)

	cmd := f.createCmd()
	cmd.Items = nil

	_, err := f.svc.Create(context.Background(), cmd)
	require.True(t, domain.IsValidation(err), "want validation error, got %v", err)

	count, err := f.store.Orders().Count(context.Background(), domain.MatchAll{})
	require.NoError(t, err)
	require.Zero(t, count, "rejected command must not write anything")
}

func TestService_Create_InvariantErrorsKeepSentinels(t *testing.T) {
	f := newOrderFixture(t)

	cmd := f.createCmd()
	cmd.ClientID = 0
	cmd.Items = nil

	_, err := f.svc.Create(context.Background(), cmd)
	require.ErrorIs(t, err, domain.ErrOrderClientRequired)
	require.ErrorIs(t, err, domain.ErrOrderItemsRequired)
	require.True(t, domain.IsValidation(err))
	require.NotContains(t, err.Error(), "invalid input: invalid input",
		"taxonomy prefix must not be duplicated")
}

func TestService_Create_RejectsNonPositiveQuantity(t *testing.T) {
	f := newOrderFixture(t)

	cmd := f.createCmd()
	cmd.Items = []domain.CreateOrderItem{{ItemID: f.item.ID, Quantity: 0}}

	_, err := f.svc.Create(context.Background(), cmd)
	require.True(t, domain.IsValidation(err))
}

func TestService_Create_UnknownClientIsValidation(t *testing.T) {
	f := newOrderFixture(t)

	cmd := f.createCmd()
	cmd.ClientID = 9999
	cmd.CreatedByID = 9999

	_, err := f.svc.Create(context.Background(), cmd)
	require.True(t, domain.IsValidation(err), "storage invalid-reference must translate to validation, got %v", err)

	pending, pullErr := f.store.Outbox().PullPending(10)
	require.NoError(t, pullErr)
	require.Empty(t, pending, "failed create must not leave outbox events")
}

func TestService_Delete(t *testing.T) {
	f := newOrderFixture(t)
	ctx := context.Background()

	created, err := f.svc.Create(ctx, f.createCmd())
	require.NoError(t, err)

	require.NoError(t, f.svc.Delete(ctx, created.ID))

	_, err = f.svc.Get(ctx, created.ID)
	require.True(t, domain.IsNotFound(err))

	left, err := f.store.OrderItems().Count(ctx, domain.MatchAll{})
	require.NoError(t, err)
	require.Zero(t, left, "order items must be deleted with the order")
}

func TestService_Delete_AbsentOrderIsNotFound(t *testing.T) {
	f := newOrderFixture(t)

	err := f.svc.Delete(context.Background(), 404)
	require.True(t, domain.IsNotFound(err), "want not found, got %v", err)
}

func TestService_ChangeStatus(t *testing.T) {
	f := newOrderFixture(t)
	ctx := context.Background()

	created, err := f.svc.Create(ctx, f.createCmd())
	require.NoError(t, err)

	updated, err := f.svc.ChangeStatus(ctx, created.ID, domain.OrderStatusInProgress)
	require.NoError(t, err)
	require.Equal(t, domain.OrderStatusInProgress, updated.Status)

	updated, err = f.svc.ChangeStatus(ctx, created.ID, domain.OrderStatusCompleted)
	require.NoError(t, err)
	require.Equal(t, domain.OrderStatusCompleted, updated.Status)

	events, err := f.timeline.List(created.ID)
	require.NoError(t, err)
	require.Len(t, events, 3)
	require.Equal(t, order.EventOrderStatusChanged, events[2].Type)
	require.Equal(t, "IN_PROGRESS -> COMPLETED", events[2].Reason)
}

func TestService_ChangeStatus_IllegalTransition(t *testing.T) {
	f := newOrderFixture(t)
	ctx := context.Background()

	created, err := f.svc.Create(ctx, f.createCmd())
	require.NoError(t, err)

	_, err = f.svc.ChangeStatus(ctx, created.ID, domain.OrderStatusCompleted)
	require.True(t, domain.IsValidation(err), "PENDING -> COMPLETED must be rejected, got %v", err)

	current, err := f.svc.Get(ctx, created.ID)
	require.NoError(t, err)
	require.Equal(t, domain.OrderStatusPending, current.Status, "rejected transition must not change the order")
}

func TestService_ChangeStatus_UnknownStatus(t *testing.T) {
	f := newOrderFixture(t)

	_, err := f.svc.ChangeStatus(context.Background(), 1, domain.OrderStatus("SHIPPED"))
	require.True(t, domain.IsValidation(err))
}

func TestService_List(t *testing.T) {
	f := newOrderFixture(t)
	ctx := context.Background()

	first, err := f.svc.Create(ctx, f.createCmd())
	require.NoError(t, err)
	second, err := f.svc.Create(ctx, f.createCmd())
	require.NoError(t, err)

	page, err := f.svc.List(ctx, domain.Pageable{Page: 1, Limit: 10}, domain.OrderFilter{ClientID: f.client.ID})
	require.NoError(t, err)
	require.EqualValues(t, 2, page.TotalItems)
	require.Len(t, page.Items, 2)
	require.Equal(t, second.ID, page.Items[0].ID, "newest order comes first")
	require.Equal(t, first.ID, page.Items[1].ID)
	require.NotNil(t, page.Items[0].Client, "client relation must be eager-loaded")
	require.NotEmpty(t, page.Items[0].Items, "items relation must be eager-loaded")
}

func TestService_List_InvalidFilterDate(t *testing.T) {
	f := newOrderFixture(t)

	_, err := f.svc.List(context.Background(), domain.Pageable{Page: 1, Limit: 10}, domain.OrderFilter{DateFrom: "10-03-2024"})
	require.True(t, domain.IsValidation(err))
}
