package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/orderhub/internal/app"
)

const (
	envHTTPAddr                    = "ORDERHUB_HTTP_ADDR"
	envMetricsAddr                 = "ORDERHUB_METRICS_ADDR"
	envStorageDriver               = "ORDERHUB_STORAGE_DRIVER"
	envPostgresDSN                 = "ORDERHUB_POSTGRES_DSN"
	envPostgresAutoMigrate         = "ORDERHUB_POSTGRES_AUTO_MIGRATE"
	envKafkaBrokers                = "KAFKA_BROKERS"
	envOutboxPollInterval          = "ORDERHUB_OUTBOX_POLL_INTERVAL"
	envOutboxBatchSize             = "ORDERHUB_OUTBOX_BATCH_SIZE"
	envOutboxMaxAttempts           = "ORDERHUB_OUTBOX_MAX_ATTEMPTS"
	envOutboxRetryDelay            = "ORDERHUB_OUTBOX_RETRY_DELAY"
	envOutboxBacklogMaxAge         = "ORDERHUB_OUTBOX_BACKLOG_MAX_AGE"
	envIdempotencyCleanupInterval  = "ORDERHUB_IDEMPOTENCY_CLEANUP_INTERVAL"
	envIdempotencyCleanupBatchSize = "ORDERHUB_IDEMPOTENCY_CLEANUP_BATCH_SIZE"
)

// envLookup абстрагирует os.LookupEnv для тестов.
type envLookup func(key string) (string, bool)

// setupLogger настраивает формат и уровень логирования для сервиса.
func setupLogger() {
	log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	log.SetLevel(log.InfoLevel)
}

// readConfigFromEnv собирает конфигурацию из переменных окружения.
// Невалидное значение оставляет дефолт и добавляет warning.
func readConfigFromEnv(lookup envLookup) (app.Config, []string) {
	cfg := app.DefaultConfig()
	var warnings []string

	warn := func(key, raw string, err error) {
		warnings = append(warnings, fmt.Sprintf("%s=%q: %v", key, raw, err))
	}

	if raw, ok := lookup(envHTTPAddr); ok && strings.TrimSpace(raw) != "" {
		cfg.HTTPAddr = strings.TrimSpace(raw)
	}
	if raw, ok := lookup(envMetricsAddr); ok && strings.TrimSpace(raw) != "" {
		cfg.MetricsAddr = strings.TrimSpace(raw)
	}
	if raw, ok := lookup(envStorageDriver); ok && strings.TrimSpace(raw) != "" {
		cfg.StorageDriver = strings.ToLower(strings.TrimSpace(raw))
	}
	if raw, ok := lookup(envPostgresDSN); ok && strings.TrimSpace(raw) != "" {
		cfg.PostgresDSN = strings.TrimSpace(raw)
	}
	if raw, ok := lookup(envKafkaBrokers); ok && strings.TrimSpace(raw) != "" {
		cfg.KafkaBrokers = strings.TrimSpace(raw)
	}

	if raw, ok := lookup(envPostgresAutoMigrate); ok {
		value, err := parseBool(raw)
		if err != nil {
			warn(envPostgresAutoMigrate, raw, err)
		} else {
			cfg.PostgresAutoMigrate = value
		}
	}

	if raw, ok := lookup(envOutboxPollInterval); ok {
		value, err := parseDuration(raw, func(v time.Duration) bool { return v > 0 }, "must be > 0")
		if err != nil {
			warn(envOutboxPollInterval, raw, err)
		} else {
			cfg.OutboxPollInterval = value
		}
	}
	if raw, ok := lookup(envOutboxBatchSize); ok {
		value, err := parseInt(raw, func(v int) bool { return v > 0 }, "must be > 0")
		if err != nil {
			warn(envOutboxBatchSize, raw, err)
		} else {
			cfg.OutboxBatchSize = value
		}
	}
	if raw, ok := lookup(envOutboxMaxAttempts); ok {
		value, err := parseInt(raw, func(v int) bool { return v > 0 }, "must be > 0")
		if err != nil {
			warn(envOutboxMaxAttempts, raw, err)
		} else {
			cfg.OutboxMaxAttempts = value
		}
	}
	if raw, ok := lookup(envOutboxRetryDelay); ok {
		value, err := parseDuration(raw, func(v time.Duration) bool { return v >= 0 }, "must be >= 0")
		if err != nil {
			warn(envOutboxRetryDelay, raw, err)
		} else {
			cfg.OutboxRetryDelay = value
		}
	}
	if raw, ok := lookup(envOutboxBacklogMaxAge); ok {
		value, err := parseDuration(raw, func(v time.Duration) bool { return v > 0 }, "must be > 0")
		if err != nil {
			warn(envOutboxBacklogMaxAge, raw, err)
		} else {
			cfg.OutboxBacklogMaxAge = value
		}
	}

	if raw, ok := lookup(envIdempotencyCleanupInterval); ok {
		value, err := parseDuration(raw, func(v time.Duration) bool { return v > 0 }, "must be > 0")
		if err != nil {
			warn(envIdempotencyCleanupInterval, raw, err)
		} else {
			cfg.IdempotencyCleanupInterval = value
		}
	}
	if raw, ok := lookup(envIdempotencyCleanupBatchSize); ok {
		value, err := parseInt(raw, func(v int) bool { return v > 0 }, "must be > 0")
		if err != nil {
			warn(envIdempotencyCleanupBatchSize, raw, err)
		} else {
			cfg.IdempotencyCleanupBatchSize = value
		}
	}

	return cfg, warnings
}

func parseBool(raw string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "1", "t", "true", "y", "yes", "on":
		return true, nil
	case "0", "f", "false", "n", "no", "off":
		return false, nil
	default:
		return false, errors.New("invalid bool value")
	}
}

func parseInt(raw string, valid func(int) bool, requirement string) (int, error) {
	value, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, err
	}
	if !valid(value) {
		return 0, errors.New(requirement)
	}
	return value, nil
}

func parseDuration(raw string, valid func(time.Duration) bool, requirement string) (time.Duration, error) {
	value, err := time.ParseDuration(strings.TrimSpace(raw))
	if err != nil {
		return 0, err
	}
	if !valid(value) {
		return 0, errors.New(requirement)
	}
	return value, nil
}

func main() {
	setupLogger()

	cfg, warnings := readConfigFromEnv(os.LookupEnv)
	for _, warning := range warnings {
		log.Warnf("ignoring invalid configuration value: %s", warning)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.WithFields(log.Fields{
		"http_addr":      cfg.HTTPAddr,
		"metrics_addr":   cfg.MetricsAddr,
		"storage_driver": cfg.StorageDriver,
	}).Info("запускаем orderhub")

	if err := app.Run(ctx, cfg); err != nil && !errors.Is(err, context.Canceled) {
		log.WithError(err).Fatal("приложение завершилось с ошибкой")
	}

	log.Info("orderhub остановлен")
}
