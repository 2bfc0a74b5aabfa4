package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector owns a private registry so tests and multiple servers in one
// process do not collide on the default one. A nil *Collector records
// nothing.
type Collector struct {
	registry *prometheus.Registry

	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec
	authAttempts *prometheus.CounterVec
	auditEvents  *prometheus.CounterVec
	bills        *prometheus.CounterVec
	billRevenue  *prometheus.CounterVec
	bookings     *prometheus.CounterVec
}

func New() *Collector {
	m := &Collector{
		registry: prometheus.NewRegistry(),
		httpRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "hms_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "endpoint", "status_code"},
		),
		httpDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "hms_http_request_duration_seconds",
				Help:    "Duration of HTTP requests in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "endpoint"},
		),
		authAttempts: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "hms_auth_attempts_total",
				Help: "Login attempts by outcome",
			},
			[]string{"status"},
		),
		auditEvents: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "hms_audit_events_total",
				Help: "Audit log entries appended, by staff role",
			},
			[]string{"role"},
		),
		bills: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "hms_bills_total",
				Help: "Pharmacy bills created, by payment method",
			},
			[]string{"payment_method"},
		),
		billRevenue: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "hms_bill_revenue_total",
				Help: "Sum of billed amounts, by payment method",
			},
			[]string{"payment_method"},
		),
		bookings: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "hms_appointment_bookings_total",
				Help: "Appointment booking attempts by outcome",
			},
			[]string{"status"},
		),
	}
	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.httpRequests,
		m.httpDuration,
		m.authAttempts,
		m.auditEvents,
		m.bills,
		m.billRevenue,
		m.bookings,
	)
	return m
}

func (m *Collector) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus text format.
func (m *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Middleware records count and latency per route template, so ids in the
// path do not explode label cardinality.
func (m *Collector) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if m == nil {
				return next(c)
			}
			start := time.Now()
			err := next(c)

			status := c.Response().Status
			if he, ok := err.(*echo.HTTPError); ok {
				status = he.Code
			} else if err != nil {
				status = http.StatusInternalServerError
			}
			endpoint := c.Path()
			if endpoint == "" {
				endpoint = "unmatched"
			}
			method := c.Request().Method
			m.httpRequests.WithLabelValues(method, endpoint, strconv.Itoa(status)).Inc()
			m.httpDuration.WithLabelValues(method, endpoint).Observe(time.Since(start).Seconds())
			return err
		}
	}
}

func (m *Collector) RecordAuthAttempt(success bool) {
	if m == nil {
		return
	}
	status := "failure"
	if success {
		status = "success"
	}
	m.authAttempts.WithLabelValues(status).Inc()
}

func (m *Collector) RecordAuditEvent(role string) {
	if m == nil {
		return
	}
	m.auditEvents.WithLabelValues(role).Inc()
}

func (m *Collector) RecordBill(paymentMethod string, amount float64) {
	if m == nil {
		return
	}
	m.bills.WithLabelValues(paymentMethod).Inc()
	m.billRevenue.WithLabelValues(paymentMethod).Add(amount)
}

// RecordBooking counts a booking attempt; status is "booked" or the reason it
// was refused.
func (m *Collector) RecordBooking(status string) {
	if m == nil {
		return
	}
	m.bookings.WithLabelValues(status).Inc()
}
