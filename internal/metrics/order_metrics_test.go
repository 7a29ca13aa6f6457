package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func TestNewOrderMetrics(t *testing.T) {
	metrics := newOrderMetricsWithRegisterer(prometheus.NewRegistry())

	if metrics == nil {
		t.Fatal("NewOrderMetrics should not return nil")
	}
	if metrics.ordersCreated == nil {
		t.Error("ordersCreated counter should not be nil")
	}
	if metrics.ordersDeleted == nil {
		t.Error("ordersDeleted counter should not be nil")
	}
	if metrics.orderStatusChanges == nil {
		t.Error("orderStatusChanges counter vec should not be nil")
	}
	if metrics.orderCreateFailures == nil {
		t.Error("orderCreateFailures counter should not be nil")
	}
	if metrics.requestDuration == nil {
		t.Error("requestDuration histogram vec should not be nil")
	}
	if metrics.timelineEvents == nil {
		t.Error("timelineEvents counter should not be nil")
	}
	if metrics.outboxEvents == nil {
		t.Error("outboxEvents counter should not be nil")
	}
	if metrics.inflightRequests == nil {
		t.Error("inflightRequests gauge should not be nil")
	}
}

func TestNewOrderMetrics_AlreadyRegistered(t *testing.T) {
	reg := prometheus.NewRegistry()

	first := newOrderMetricsWithRegisterer(reg)
	second := newOrderMetricsWithRegisterer(reg)

	// Повторная регистрация возвращает существующие коллекторы.
	first.RecordOrderCreated()
	second.RecordOrderCreated()

	metric := &dto.Metric{}
	if err := first.ordersCreated.Write(metric); err != nil {
		t.Fatalf("failed to write metric: %v", err)
	}
	if metric.Counter.GetValue() != 2.0 {
		t.Errorf("expected shared counter value 2.0, got %f", metric.Counter.GetValue())
	}
}

func TestRecordOrderCounters(t *testing.T) {
	metrics := newOrderMetricsWithRegisterer(prometheus.NewRegistry())

	metrics.RecordOrderCreated()
	metrics.RecordOrderCreated()
	metrics.RecordOrderDeleted()
	metrics.RecordOrderCreateFailure()

	metric := &dto.Metric{}
	if err := metrics.ordersCreated.Write(metric); err != nil {
		t.Fatalf("failed to write metric: %v", err)
	}
	if metric.Counter.GetValue() != 2.0 {
		t.Errorf("expected counter value 2.0, got %f", metric.Counter.GetValue())
	}

	metric = &dto.Metric{}
	if err := metrics.ordersDeleted.Write(metric); err != nil {
		t.Fatalf("failed to write metric: %v", err)
	}
	if metric.Counter.GetValue() != 1.0 {
		t.Errorf("expected counter value 1.0, got %f", metric.Counter.GetValue())
	}
}

func TestRecordOrderStatusChange(t *testing.T) {
	metrics := newOrderMetricsWithRegisterer(prometheus.NewRegistry())

	metrics.RecordOrderStatusChange("IN_PROGRESS")
	metrics.RecordOrderStatusChange("IN_PROGRESS")
	metrics.RecordOrderStatusChange("CANCELLED")

	metric := &dto.Metric{}
	if err := metrics.orderStatusChanges.WithLabelValues("IN_PROGRESS").Write(metric); err != nil {
		t.Fatalf("failed to write metric: %v", err)
	}
	if metric.Counter.GetValue() != 2.0 {
		t.Errorf("expected IN_PROGRESS count 2.0, got %f", metric.Counter.GetValue())
	}
}

func TestRecordRequest(t *testing.T) {
	metrics := newOrderMetricsWithRegisterer(prometheus.NewRegistry())

	metrics.RecordRequest("GET", "/api/v1/orders", "200", 25*time.Millisecond)
	metrics.RecordRequest("GET", "/api/v1/orders", "200", 75*time.Millisecond)

	histogram := &dto.Metric{}
	observer, err := metrics.requestDuration.MetricVec.GetMetricWithLabelValues("GET", "/api/v1/orders", "200")
	if err != nil {
		t.Fatalf("failed to get labeled histogram: %v", err)
	}
	if err := observer.(prometheus.Histogram).Write(histogram); err != nil {
		t.Fatalf("failed to write histogram: %v", err)
	}
	if histogram.Histogram.GetSampleCount() != 2 {
		t.Errorf("expected 2 observations, got %d", histogram.Histogram.GetSampleCount())
	}
}

func TestInflightRequests(t *testing.T) {
	metrics := newOrderMetricsWithRegisterer(prometheus.NewRegistry())

	metrics.RequestStarted()
	metrics.RequestStarted()
	metrics.RequestFinished()

	gauge := &dto.Metric{}
	if err := metrics.inflightRequests.Write(gauge); err != nil {
		t.Fatalf("failed to write gauge: %v", err)
	}
	if gauge.Gauge.GetValue() != 1.0 {
		t.Errorf("expected inflight 1.0, got %f", gauge.Gauge.GetValue())
	}
}

func TestRecordTimelineAndOutboxEvents(t *testing.T) {
	metrics := newOrderMetricsWithRegisterer(prometheus.NewRegistry())

	metrics.RecordTimelineEvent()
	metrics.RecordOutboxEvent()
	metrics.RecordOutboxEvent()

	metric := &dto.Metric{}
	if err := metrics.timelineEvents.Write(metric); err != nil {
		t.Fatalf("failed to write metric: %v", err)
	}
	if metric.Counter.GetValue() != 1.0 {
		t.Errorf("expected timeline count 1.0, got %f", metric.Counter.GetValue())
	}

	metric = &dto.Metric{}
	if err := metrics.outboxEvents.Write(metric); err != nil {
		t.Fatalf("failed to write metric: %v", err)
	}
	if metric.Counter.GetValue() != 2.0 {
		t.Errorf("expected outbox count 2.0, got %f", metric.Counter.GetValue())
	}
}
