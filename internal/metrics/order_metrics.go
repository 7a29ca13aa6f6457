package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// OrderMetrics содержит метрики workflow заказов и HTTP-границы.
type OrderMetrics struct {
	// Счётчики операций
	ordersCreated       prometheus.Counter
	ordersDeleted       prometheus.Counter
	orderStatusChanges  *prometheus.CounterVec
	orderCreateFailures prometheus.Counter

	// Гистограммы времени выполнения
	requestDuration *prometheus.HistogramVec

	// Счётчики событий timeline и outbox
	timelineEvents prometheus.Counter
	outboxEvents   prometheus.Counter

	// Gauge для запросов в обработке
	inflightRequests prometheus.Gauge
}

// NewOrderMetrics создаёт новый экземпляр метрик заказов.
func NewOrderMetrics() *OrderMetrics {
	return newOrderMetricsWithRegisterer(prometheus.DefaultRegisterer)
}

func newOrderMetricsWithRegisterer(registerer prometheus.Registerer) *OrderMetrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	return &OrderMetrics{
		ordersCreated: registerCounter(registerer, prometheus.CounterOpts{
			Name: "orderhub_orders_created_total",
			Help: "Total number of orders created",
		}),
		ordersDeleted: registerCounter(registerer, prometheus.CounterOpts{
			Name: "orderhub_orders_deleted_total",
			Help: "Total number of orders deleted",
		}),
		orderStatusChanges: registerCounterVec(registerer, prometheus.CounterOpts{
			Name: "orderhub_order_status_changes_total",
			Help: "Total number of order status transitions grouped by target status",
		}, []string{"status"}),
		orderCreateFailures: registerCounter(registerer, prometheus.CounterOpts{
			Name: "orderhub_order_create_failures_total",
			Help: "Total number of rejected or failed order creations",
		}),
		requestDuration: registerHistogramVec(registerer, prometheus.HistogramOpts{
			Name:    "orderhub_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0},
		}, []string{"method", "route", "status"}),
		timelineEvents: registerCounter(registerer, prometheus.CounterOpts{
			Name: "orderhub_timeline_events_total",
			Help: "Total number of timeline events recorded",
		}),
		outboxEvents: registerCounter(registerer, prometheus.CounterOpts{
			Name: "orderhub_outbox_events_total",
			Help: "Total number of outbox events published",
		}),
		inflightRequests: registerGauge(registerer, prometheus.GaugeOpts{
			Name: "orderhub_http_inflight_requests",
			Help: "Number of HTTP requests currently being served",
		}),
	}
}

func registerCounter(registerer prometheus.Registerer, opts prometheus.CounterOpts) prometheus.Counter {
	collector := prometheus.NewCounter(opts)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(prometheus.Counter)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register counter %q: %v", opts.Name, err))
	}
	return collector
}

func registerCounterVec(registerer prometheus.Registerer, opts prometheus.CounterOpts, labels []string) *prometheus.CounterVec {
	collector := prometheus.NewCounterVec(opts, labels)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(*prometheus.CounterVec)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register counter vec %q: %v", opts.Name, err))
	}
	return collector
}

func registerGauge(registerer prometheus.Registerer, opts prometheus.GaugeOpts) prometheus.Gauge {
	collector := prometheus.NewGauge(opts)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(prometheus.Gauge)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register gauge %q: %v", opts.Name, err))
	}
	return collector
}

func registerHistogramVec(registerer prometheus.Registerer, opts prometheus.HistogramOpts, labels []string) *prometheus.HistogramVec {
	collector := prometheus.NewHistogramVec(opts, labels)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(*prometheus.HistogramVec)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register histogram vec %q: %v", opts.Name, err))
	}
	return collector
}

// RecordOrderCreated увеличивает счётчик созданных заказов.
func (m *OrderMetrics) RecordOrderCreated() {
	m.ordersCreated.Inc()
}

// RecordOrderDeleted увеличивает счётчик удалённых заказов.
func (m *OrderMetrics) RecordOrderDeleted() {
	m.ordersDeleted.Inc()
}

// RecordOrderStatusChange увеличивает счётчик переходов в указанный статус.
func (m *OrderMetrics) RecordOrderStatusChange(status string) {
	m.orderStatusChanges.WithLabelValues(status).Inc()
}

// RecordOrderCreateFailure увеличивает счётчик неудачных созданий заказа.
func (m *OrderMetrics) RecordOrderCreateFailure() {
	m.orderCreateFailures.Inc()
}

// RecordRequest записывает длительность HTTP-запроса.
func (m *OrderMetrics) RecordRequest(method, route, status string, duration time.Duration) {
	m.requestDuration.WithLabelValues(method, route, status).Observe(duration.Seconds())
}

// RequestStarted увеличивает количество запросов в обработке.
func (m *OrderMetrics) RequestStarted() {
	m.inflightRequests.Inc()
}

// RequestFinished уменьшает количество запросов в обработке.
func (m *OrderMetrics) RequestFinished() {
	m.inflightRequests.Dec()
}

// RecordTimelineEvent увеличивает счётчик событий timeline.
func (m *OrderMetrics) RecordTimelineEvent() {
	m.timelineEvents.Inc()
}

// RecordOutboxEvent увеличивает счётчик событий outbox.
func (m *OrderMetrics) RecordOutboxEvent() {
	m.outboxEvents.Inc()
}
