package metrics

import (
	"runtime"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Registry is served on /api/metrics. A dedicated registry keeps tests free of
	// duplicate-registration panics from the default one.
	Registry = prometheus.NewRegistry()

	factory = promauto.With(Registry)

	// Buckets span fast local work up to the external call timeout.
	CustomAPIBuckets = []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 3, 5, 8, 13}

	// HTTP Metrics
	HTTPRequestDuration = factory.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_server_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: CustomAPIBuckets,
		},
		[]string{"http_request_method", "http_route", "http_response_status_code"},
	)

	HTTPRequestTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_server_request_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"http_request_method", "http_route", "http_response_status_code"},
	)

	ActiveRequests = factory.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "http_server_active_requests",
			Help: "Number of active HTTP requests",
		},
		[]string{"http_request_method"},
	)

	// Business Metrics
	FormSubmissions = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mountarc_form_submissions_total",
			Help: "Total number of form submissions by form type and outcome",
		},
		[]string{"form_type", "status"},
	)

	CaptchaVerifications = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mountarc_captcha_verifications_total",
			Help: "Total number of reCAPTCHA verifications by result",
		},
		[]string{"result"},
	)

	RateLimitRejections = factory.NewCounter(
		prometheus.CounterOpts{
			Name: "mountarc_rate_limit_rejections_total",
			Help: "Submissions rejected by the per-email rate limiter",
		},
	)

	RateLimitEntries = factory.NewGauge(
		prometheus.GaugeOpts{
			Name: "mountarc_rate_limit_entries",
			Help: "Number of live entries in the per-email rate limiter",
		},
	)

	// Mail provider client metrics
	EmailSendDuration = factory.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "mail_client_operation_duration_seconds",
			Help:    "Email provider call duration in seconds",
			Buckets: CustomAPIBuckets,
		},
		[]string{"provider", "status"},
	)

	EmailsSent = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mountarc_emails_sent_total",
			Help: "Total number of outbound emails by provider, role and outcome",
		},
		[]string{"provider", "role", "status"},
	)

	CircuitBreakerState = factory.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "mail_client_circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"breaker"},
	)

	// Infrastructure Metrics
	GoRoutines = factory.NewGauge(
		prometheus.GaugeOpts{
			Name: "process_runtime_go_goroutines",
			Help: "Number of goroutines",
		},
	)

	HeapAlloc = factory.NewGauge(
		prometheus.GaugeOpts{
			Name: "process_runtime_go_mem_heap_alloc_bytes",
			Help: "Heap allocated bytes",
		},
	)
)

func init() {
	Registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
}

// RecordInfrastructureMetrics collects infrastructure metrics periodically until stop is closed.
func RecordInfrastructureMetrics(stop <-chan struct{}) {
	ticker := time.NewTicker(15 * time.Second)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				var m runtime.MemStats
				runtime.ReadMemStats(&m)

				GoRoutines.Set(float64(runtime.NumGoroutine()))
				HeapAlloc.Set(float64(m.HeapAlloc))
			}
		}
	}()
}

// MeasureDuration measures the duration of an operation
func MeasureDuration(start time.Time) float64 {
	return time.Since(start).Seconds()
}
