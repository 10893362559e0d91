// Package metrics exposes booking and HTTP counters for Prometheus.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recorder is what the modules report into.
type Recorder interface {
	RecordClassCreated()
	RecordBookingAdmitted(latency time.Duration)
	RecordBookingRejected(reason string)
}

type Collector struct {
	classesCreated   prometheus.Counter
	bookingsAdmitted prometheus.Counter
	bookingsRejected *prometheus.CounterVec
	admissionLatency prometheus.Histogram
	httpRequests     *prometheus.CounterVec
}

func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		classesCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "fitness_classes_created_total",
			Help: "Fitness classes created.",
		}),
		bookingsAdmitted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "fitness_bookings_admitted_total",
			Help: "Bookings committed to the ledger.",
		}),
		bookingsRejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "fitness_bookings_rejected_total",
			Help: "Booking requests rejected, by reason.",
		}, []string{"reason"}),
		admissionLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "fitness_booking_admission_seconds",
			Help:    "Time spent admitting a booking, lock wait included.",
			Buckets: prometheus.DefBuckets,
		}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "fitness_http_requests_total",
			Help: "HTTP responses by route and status code.",
		}, []string{"method", "route", "status_code"}),
	}

	reg.MustRegister(
		c.classesCreated,
		c.bookingsAdmitted,
		c.bookingsRejected,
		c.admissionLatency,
		c.httpRequests,
	)

	return c
}

func (c *Collector) RecordClassCreated() {
	c.classesCreated.Inc()
}

func (c *Collector) RecordBookingAdmitted(latency time.Duration) {
	c.bookingsAdmitted.Inc()
	c.admissionLatency.Observe(latency.Seconds())
}

func (c *Collector) RecordBookingRejected(reason string) {
	c.bookingsRejected.WithLabelValues(reason).Inc()
}

// Middleware counts every response by matched route template.
func (c *Collector) Middleware() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		ctx.Next()

		route := ctx.FullPath()
		if route == "" {
			route = "unmatched"
		}
		c.httpRequests.WithLabelValues(ctx.Request.Method, route, strconv.Itoa(ctx.Writer.Status())).Inc()
	}
}

// Handler returns the Prometheus scrape handler.
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

type Nop struct{}

func (Nop) RecordClassCreated() {}
func (Nop) RecordBookingAdmitted(time.Duration) {}
func (Nop) RecordBookingRejected(string) {}
