package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

// HTTPMetricsOptions configures the HTTP metrics middleware.
type HTTPMetricsOptions struct {
	Registerer prometheus.Registerer
	Namespace  string
	Subsystem  string
	Buckets    []float64
}

// HTTPMetrics exposes Prometheus collectors for request instrumentation.
type HTTPMetrics struct {
	Requests *prometheus.CounterVec
	Duration *prometheus.HistogramVec
	InFlight prometheus.Gauge
}

// NewHTTPMetrics constructs collectors for HTTP request metrics and
// registers them with the provided registerer.
func NewHTTPMetrics(opts HTTPMetricsOptions) (*HTTPMetrics, error) {
	namespace := opts.Namespace
	if namespace == "" {
		namespace = "workshop"
	}
	subsystem := opts.Subsystem
	if subsystem == "" {
		subsystem = "http"
	}
	reg := opts.Registerer
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	buckets := opts.Buckets
	if len(buckets) == 0 {
		buckets = prometheus.DefBuckets
	}

	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "requests_total",
		Help:      "Total number of HTTP requests partitioned by method, route, and status code.",
	}, []string{"method", "route", "status"})

	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "request_duration_seconds",
		Help:      "HTTP request latencies partitioned by method and route.",
		Buckets:   buckets,
	}, []string{"method", "route"})

	inFlight := prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "in_flight_requests",
		Help:      "Number of HTTP requests currently being served.",
	})

	if err := registerCounterVec(reg, &requests); err != nil {
		return nil, err
	}
	if err := registerHistogramVec(reg, &duration); err != nil {
		return nil, err
	}
	if err := registerGauge(reg, &inFlight); err != nil {
		return nil, err
	}

	return &HTTPMetrics{Requests: requests, Duration: duration, InFlight: inFlight}, nil
}

// Handler instruments each request with counters, latency and in-flight tracking.
func (m *HTTPMetrics) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		m.InFlight.Inc()

		c.Next()

		m.InFlight.Dec()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}

		m.Requests.WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).Inc()
		m.Duration.WithLabelValues(c.Request.Method, route).Observe(time.Since(start).Seconds())
	}
}

func registerCounterVec(reg prometheus.Registerer, vec **prometheus.CounterVec) error {
	if err := reg.Register(*vec); err != nil {
		already, ok := err.(prometheus.AlreadyRegisteredError)
		if !ok {
			return err
		}
		existing, ok := already.ExistingCollector.(*prometheus.CounterVec)
		if !ok {
			return err
		}
		*vec = existing
	}
	return nil
}

func registerHistogramVec(reg prometheus.Registerer, vec **prometheus.HistogramVec) error {
	if err := reg.Register(*vec); err != nil {
		already, ok := err.(prometheus.AlreadyRegisteredError)
		if !ok {
			return err
		}
		existing, ok := already.ExistingCollector.(*prometheus.HistogramVec)
		if !ok {
			return err
		}
		*vec = existing
	}
	return nil
}

func registerGauge(reg prometheus.Registerer, gauge *prometheus.Gauge) error {
	if err := reg.Register(*gauge); err != nil {
		already, ok := err.(prometheus.AlreadyRegisteredError)
		if !ok {
			return err
		}
		existing, ok := already.ExistingCollector.(prometheus.Gauge)
		if !ok {
			return err
		}
		*gauge = existing
	}
	return nil
}
