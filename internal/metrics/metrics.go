// Package metrics exposes Prometheus instrumentation for the service.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/moore-mac/vehicle-rental-manager/internal/fleet"
	"github.com/moore-mac/vehicle-rental-manager/internal/models"
)

var (
	RequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fleet_api_requests_total",
			Help: "Total number of API requests by method and status",
		},
		[]string{"method", "status"},
	)

	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "fleet_api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method"},
	)
)

func init() {
	prometheus.MustRegister(RequestsTotal)
	prometheus.MustRegister(RequestDuration)
}

var (
	vehiclesDesc = prometheus.NewDesc(
		"fleet_vehicles_total",
		"Number of vehicles by status",
		[]string{"status"}, nil,
	)
	customersDesc = prometheus.NewDesc(
		"fleet_customers_total",
		"Number of customers on the roster",
		nil, nil,
	)
)

// FleetCollector reads the repository at scrape time, so the gauges are
// always consistent with the collections without bookkeeping in mutations.
type FleetCollector struct {
	repo *fleet.Repository
}

// NewFleetCollector creates a collector over the given repository.
func NewFleetCollector(repo *fleet.Repository) *FleetCollector {
	return &FleetCollector{repo: repo}
}

// Describe implements prometheus.Collector.
func (c *FleetCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- vehiclesDesc
	ch <- customersDesc
}

// Collect implements prometheus.Collector.
func (c *FleetCollector) Collect(ch chan<- prometheus.Metric) {
	byStatus := map[string]int{}
	for _, v := range c.repo.Vehicles() {
		byStatus[v.Status]++
	}
	// Emit the known statuses even at zero so dashboards see stable series.
	for _, status := range []string{
		models.StatusAvailable, models.StatusRented,
		models.StatusDamaged, models.StatusServiceRequired,
	} {
		count := byStatus[status]
		delete(byStatus, status)
		ch <- prometheus.MustNewConstMetric(vehiclesDesc, prometheus.GaugeValue, float64(count), status)
	}
	for status, count := range byStatus {
		ch <- prometheus.MustNewConstMetric(vehiclesDesc, prometheus.GaugeValue, float64(count), status)
	}
	ch <- prometheus.MustNewConstMetric(customersDesc, prometheus.GaugeValue, float64(len(c.repo.Customers())))
}

// Register registers the fleet collector on the default registry.
func Register(repo *fleet.Repository) {
	prometheus.MustRegister(NewFleetCollector(repo))
}

// Middleware records request counts and latency.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		RequestsTotal.WithLabelValues(r.Method, strconv.Itoa(ww.Status())).Inc()
		RequestDuration.WithLabelValues(r.Method).Observe(time.Since(start).Seconds())
	})
}

// Handler returns the Prometheus HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}
