// Package app связывает хранилище, сервисы, воркеры и HTTP-слой в один
// процесс с graceful shutdown.
package app

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"

	healthcheck "github.com/vladislavdragonenkov/orderhub/internal/health"
	"github.com/vladislavdragonenkov/orderhub/internal/messaging/kafka"
	"github.com/vladislavdragonenkov/orderhub/internal/metrics"
	"github.com/vladislavdragonenkov/orderhub/internal/service/catalog"
	"github.com/vladislavdragonenkov/orderhub/internal/service/idempotency"
	"github.com/vladislavdragonenkov/orderhub/internal/service/order"
	"github.com/vladislavdragonenkov/orderhub/internal/service/outbox"
	"github.com/vladislavdragonenkov/orderhub/internal/service/user"
	httpapi "github.com/vladislavdragonenkov/orderhub/internal/transport/http"
	"github.com/vladislavdragonenkov/orderhub/internal/version"
)

// Run запускает приложение и блокируется до отмены ctx либо фатальной
// ошибки HTTP-сервера.
func Run(ctx context.Context, cfg Config) error {
	logger := log.WithField("component", "app")

	deps, err := initRuntimeDependencies(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer deps.close(logger)

	orderMetrics := metrics.NewOrderMetrics()
	serviceLogger := logger.WithField("layer", "service")

	services := httpapi.Services{
		Items:       catalog.NewItemService(deps.items, serviceLogger),
		Categories:  catalog.NewCategoryService(deps.categories, serviceLogger),
		Users:       user.NewService(deps.users, serviceLogger),
		Orders:      order.NewService(deps.orders, deps.uow, deps.timelineRepo, serviceLogger),
		Idempotency: deps.idempotencyRepo,
	}

	// Kafka опционален: без brokers события остаются в outbox.
	producer, _ := initKafkaProducer(cfg.KafkaBrokers, logger)
	defer closeKafka(producer, logger)

	workerCtx, stopWorkers := context.WithCancel(ctx)
	defer stopWorkers()

	if producer != nil {
		publisher := kafka.NewOutboxPublisher(producer, kafka.TopicOrderEvents)
		dlqPublisher := kafka.NewOutboxPublisher(producer, kafka.TopicDeadLetterQueue)
		worker := outbox.NewWorker(deps.outboxRepo, publisher,
			outbox.WithLogger(logger.WithField("component", "outbox-worker")),
			outbox.WithDLQPublisher(dlqPublisher),
			outbox.WithPollInterval(cfg.OutboxPollInterval),
			outbox.WithBatchSize(cfg.OutboxBatchSize),
			outbox.WithMaxAttempts(cfg.OutboxMaxAttempts),
			outbox.WithRetryBaseDelay(cfg.OutboxRetryDelay),
		)
		go worker.Run(workerCtx)
	}

	cleanupWorker := idempotency.NewCleanupWorker(deps.idempotencyRepo,
		idempotency.WithLogger(logger.WithField("component", "idempotency-cleanup")),
		idempotency.WithInterval(cfg.IdempotencyCleanupInterval),
		idempotency.WithBatchSize(cfg.IdempotencyCleanupBatchSize),
	)
	go cleanupWorker.Run(workerCtx)

	healthHandler := healthcheck.NewHandler(version.GetVersion())
	if deps.storageChecker != nil {
		healthHandler.RegisterChecker("storage", deps.storageChecker)
	}
	healthHandler.RegisterChecker("outbox", healthcheck.NewOutboxBacklogChecker("outbox", deps.outboxRepo, cfg.OutboxBacklogMaxAge))

	metricsSrv := startMetricsServer(ctx, cfg.MetricsAddr, logger, healthHandler)

	router := httpapi.NewRouter(services, orderMetrics, logger.WithField("layer", "http"))
	apiSrv := &http.Server{Addr: cfg.HTTPAddr, Handler: router}

	errCh := make(chan error, 1)
	go func() {
		logger.Infof("HTTP API слушает %s", cfg.HTTPAddr)
		errCh <- apiSrv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		logger.Info("получен сигнал остановки, останавливаем HTTP сервер")
		shutdownHTTP(apiSrv, logger)
		shutdownHTTP(metricsSrv, logger)
		stopWorkers()
		return ctx.Err()
	case err := <-errCh:
		shutdownHTTP(metricsSrv, logger)
		stopWorkers()
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

// startMetricsServer запускает служебный listener: /metrics для Prometheus
// и health-пробы.
func startMetricsServer(ctx context.Context, addr string, logger *log.Entry, healthHandler *healthcheck.Handler) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.Handle("/healthz", healthHandler)
	mux.HandleFunc("/livez", healthcheck.LivenessHandler)
	mux.HandleFunc("/readyz", healthHandler.ReadinessHandler)

	srv := &http.Server{Addr: addr, Handler: mux}
	go func() {
		logger.Infof("метрики доступны по адресу %s/metrics", addr)
		logger.Infof("health checks: %s/healthz, %s/livez, %s/readyz", addr, addr, addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Warn("metrics server failed")
		}
	}()

	go func() {
		<-ctx.Done()
		shutdownHTTP(srv, logger)
	}()

	return srv
}

// shutdownHTTP аккуратно останавливает HTTP-сервер.
func shutdownHTTP(srv *http.Server, logger *log.Entry) {
	if srv == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.WithError(err).Warn("http shutdown with error")
	}
}
