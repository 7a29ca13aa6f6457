package app

import (
	"context"
	"errors"
	"fmt"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/orderhub/internal/domain"
	healthcheck "github.com/vladislavdragonenkov/orderhub/internal/health"
	"github.com/vladislavdragonenkov/orderhub/internal/storage/memory"
	"github.com/vladislavdragonenkov/orderhub/internal/storage/postgres"
)

// runtimeDependencies собирает всё, что нужно сервисному слою: делегаты
// сущностей, unit of work и инфраструктурные репозитории выбранного бэкенда.
type runtimeDependencies struct {
	items      domain.Delegate[domain.Item, domain.ItemPatch]
	categories domain.Delegate[domain.Category, domain.CategoryPatch]
	users      domain.Delegate[domain.User, domain.UserPatch]
	orders     domain.Delegate[domain.Order, domain.OrderPatch]

	uow             domain.OrderUnitOfWork
	outboxRepo      domain.OutboxRepository
	timelineRepo    domain.TimelineRepository
	idempotencyRepo domain.IdempotencyRepository

	storageChecker healthcheck.Checker
	closeFn        func() error
}

// initRuntimeDependencies поднимает хранилище по cfg.StorageDriver.
// Пустой драйвер трактуется как memory.
func initRuntimeDependencies(ctx context.Context, cfg Config, logger *log.Entry) (runtimeDependencies, error) {
	if logger == nil {
		logger = log.WithField("component", "app")
	}

	switch cfg.StorageDriver {
	case StorageDriverMemory, "":
		store := memory.NewStore()
		return runtimeDependencies{
			items:           store.Items(),
			categories:      store.Categories(),
			users:           store.Users(),
			orders:          store.Orders(),
			uow:             memory.NewOrderUnitOfWork(store),
			outboxRepo:      store.Outbox(),
			timelineRepo:    memory.NewTimelineRepository(),
			idempotencyRepo: memory.NewIdempotencyRepository(),
		}, nil

	case StorageDriverPostgres:
		if strings.TrimSpace(cfg.PostgresDSN) == "" {
			return runtimeDependencies{}, errors.New("postgres storage driver requires a DSN")
		}

		store, err := postgres.Open(ctx, cfg.PostgresDSN)
		if err != nil {
			return runtimeDependencies{}, fmt.Errorf("open postgres storage: %w", err)
		}

		if cfg.PostgresAutoMigrate {
			if err := store.EnsureSchema(ctx); err != nil {
				_ = store.Close()
				return runtimeDependencies{}, fmt.Errorf("apply postgres migrations: %w", err)
			}
			logger.Info("postgres schema is up to date")
		}

		return runtimeDependencies{
			items:           postgres.NewItemDelegate(store),
			categories:      postgres.NewCategoryDelegate(store),
			users:           postgres.NewUserDelegate(store),
			orders:          postgres.NewOrderDelegate(store),
			uow:             postgres.NewOrderUnitOfWork(store),
			outboxRepo:      postgres.NewOutboxRepository(store),
			timelineRepo:    postgres.NewTimelineRepository(store),
			idempotencyRepo: postgres.NewIdempotencyRepository(store),
			storageChecker:  healthcheck.NewDatabaseChecker("postgres", store.DB()),
			closeFn:         store.Close,
		}, nil

	default:
		return runtimeDependencies{}, fmt.Errorf("unsupported storage driver %q", cfg.StorageDriver)
	}
}

// close освобождает ресурсы хранилища, если они есть.
func (d runtimeDependencies) close(logger *log.Entry) {
	if d.closeFn == nil {
		return
	}
	if err := d.closeFn(); err != nil {
		logger.WithError(err).Warn("failed to close storage")
	}
}
