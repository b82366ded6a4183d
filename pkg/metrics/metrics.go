package metrics

import (
	"database/sql"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics набор prometheus-метрик сервиса
// Все методы безопасны для nil-получателя: при выключенных метриках передаётся nil
type Metrics struct {
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	DBQueryDuration    *prometheus.HistogramVec
	DBOpenConnections  prometheus.Gauge
	DBInUseConnections prometheus.Gauge
	DBIdleConnections  prometheus.Gauge
	DBWaitCountTotal   prometheus.Gauge

	BookingEventsTotal    *prometheus.CounterVec
	DiscountResultsTotal  *prometheus.CounterVec
	CapacityConflicts     prometheus.Counter
	SchedulerRunsTotal    *prometheus.CounterVec
	SchedulerItemFailures *prometheus.CounterVec
}

// New создает метрики и регистрирует их в стандартном реестре prometheus
func New(serviceName string) *Metrics {
	return NewWithRegistry(serviceName, prometheus.DefaultRegisterer)
}

// NewWithRegistry создает метрики и регистрирует их в переданном реестре
func NewWithRegistry(serviceName string, reg prometheus.Registerer) *Metrics {
	labels := prometheus.Labels{"service": serviceName}

	m := &Metrics{
		HTTPRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "http_requests_total",
			Help:        "Total number of HTTP requests",
			ConstLabels: labels,
		}, []string{"method", "route", "status"}),
		HTTPRequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:        "http_request_duration_seconds",
			Help:        "HTTP request duration in seconds",
			ConstLabels: labels,
			Buckets:     prometheus.DefBuckets,
		}, []string{"method", "route"}),
		DBQueryDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:        "db_query_duration_seconds",
			Help:        "Database query duration in seconds",
			ConstLabels: labels,
			Buckets:     []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
		}, []string{"operation"}),
		DBOpenConnections: prometheus.NewGauge(prometheus.GaugeOpts{
			Name:        "db_open_connections",
			Help:        "Number of established connections",
			ConstLabels: labels,
		}),
		DBInUseConnections: prometheus.NewGauge(prometheus.GaugeOpts{
			Name:        "db_in_use_connections",
			Help:        "Number of connections currently in use",
			ConstLabels: labels,
		}),
		DBIdleConnections: prometheus.NewGauge(prometheus.GaugeOpts{
			Name:        "db_idle_connections",
			Help:        "Number of idle connections",
			ConstLabels: labels,
		}),
		DBWaitCountTotal: prometheus.NewGauge(prometheus.GaugeOpts{
			Name:        "db_wait_count_total",
			Help:        "Total number of connections waited for",
			ConstLabels: labels,
		}),
		BookingEventsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "booking_events_total",
			Help:        "Booking lifecycle transitions",
			ConstLabels: labels,
		}, []string{"event"}),
		DiscountResultsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "discount_results_total",
			Help:        "Discount chain results by handler type and status",
			ConstLabels: labels,
		}, []string{"type", "status", "mode"}),
		CapacityConflicts: prometheus.NewCounter(prometheus.CounterOpts{
			Name:        "capacity_version_conflicts_total",
			Help:        "Optimistic locking conflicts on walk capacity updates",
			ConstLabels: labels,
		}),
		SchedulerRunsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "scheduler_runs_total",
			Help:        "Scheduler job runs by result",
			ConstLabels: labels,
		}, []string{"job", "result"}),
		SchedulerItemFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "scheduler_item_failures_total",
			Help:        "Per-booking failures inside scheduler jobs",
			ConstLabels: labels,
		}, []string{"job"}),
	}

	reg.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.DBQueryDuration,
		m.DBOpenConnections,
		m.DBInUseConnections,
		m.DBIdleConnections,
		m.DBWaitCountTotal,
		m.BookingEventsTotal,
		m.DiscountResultsTotal,
		m.CapacityConflicts,
		m.SchedulerRunsTotal,
		m.SchedulerItemFailures,
	)

	return m
}

// ObserveHTTPRequest фиксирует HTTP запрос
func (m *Metrics) ObserveHTTPRequest(method, route, status string, seconds float64) {
	if m == nil {
		return
	}
	m.HTTPRequestsTotal.WithLabelValues(method, route, status).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, route).Observe(seconds)
}

// ObserveDBQuery фиксирует длительность запроса к БД
func (m *Metrics) ObserveDBQuery(operation string, seconds float64) {
	if m == nil {
		return
	}
	m.DBQueryDuration.WithLabelValues(operation).Observe(seconds)
}

// IncBookingEvent фиксирует переход бронирования (created, paid, expired, canceled, rejected, completed)
func (m *Metrics) IncBookingEvent(event string) {
	if m == nil {
		return
	}
	m.BookingEventsTotal.WithLabelValues(event).Inc()
}

// IncDiscountResult фиксирует результат цепочки скидок; mode = quote|apply
func (m *Metrics) IncDiscountResult(discountType, status, mode string) {
	if m == nil {
		return
	}
	m.DiscountResultsTotal.WithLabelValues(discountType, status, mode).Inc()
}

// IncCapacityConflict фиксирует конфликт версий при изменении вместимости прогулки
func (m *Metrics) IncCapacityConflict() {
	if m == nil {
		return
	}
	m.CapacityConflicts.Inc()
}

// IncSchedulerRun фиксирует запуск фоновой задачи; result = ok|error
func (m *Metrics) IncSchedulerRun(job, result string) {
	if m == nil {
		return
	}
	m.SchedulerRunsTotal.WithLabelValues(job, result).Inc()
}

// IncSchedulerItemFailure фиксирует ошибку обработки одного бронирования в фоновой задаче
func (m *Metrics) IncSchedulerItemFailure(job string) {
	if m == nil {
		return
	}
	m.SchedulerItemFailures.WithLabelValues(job).Inc()
}

// SetDBPoolStats обновляет метрики пула соединений
func (m *Metrics) SetDBPoolStats(stats sql.DBStats) {
	if m == nil {
		return
	}
	m.DBOpenConnections.Set(float64(stats.OpenConnections))
	m.DBInUseConnections.Set(float64(stats.InUse))
	m.DBIdleConnections.Set(float64(stats.Idle))
	m.DBWaitCountTotal.Set(float64(stats.WaitCount))
}
