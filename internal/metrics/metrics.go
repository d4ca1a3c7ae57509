package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// uploadSizeBuckets covers the typical spread of stored files, from small
// documents to large media.
var uploadSizeBuckets = []float64{
	1 << 10,  // 1KiB
	64 << 10, // 64KiB
	1 << 20,  // 1MiB
	8 << 20,  // 8MiB
	32 << 20, // 32MiB
	128 << 20,
	512 << 20,
}

// Metrics holds the service's Prometheus collectors on a private registry.
type Metrics struct {
	registry *prometheus.Registry

	uploads       prometheus.Counter
	downloads     prometheus.Counter
	deletes       prometheus.Counter
	uploadBytes   prometheus.Counter
	downloadBytes prometheus.Counter
	uploadSize    prometheus.Histogram

	requestDuration *prometheus.HistogramVec
	inFlight        prometheus.Gauge
}

// New creates the collector set and registers it together with the
// standard Go and process collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		uploads: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "depot_uploads_total",
			Help: "Number of files stored.",
		}),
		downloads: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "depot_downloads_total",
			Help: "Number of files served through the download endpoint.",
		}),
		deletes: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "depot_deletes_total",
			Help: "Number of files deleted.",
		}),
		uploadBytes: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "depot_upload_bytes_total",
			Help: "Total bytes accepted by uploads.",
		}),
		downloadBytes: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "depot_download_bytes_total",
			Help: "Total bytes served by downloads.",
		}),
		uploadSize: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "depot_upload_size_bytes",
			Help:    "Sizes of stored files.",
			Buckets: uploadSizeBuckets,
		}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "depot_http_request_duration_seconds",
			Help:    "HTTP request latency by method, route pattern, and status.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
		inFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "depot_http_requests_in_flight",
			Help: "Number of HTTP requests currently being handled.",
		}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.uploads,
		m.downloads,
		m.deletes,
		m.uploadBytes,
		m.downloadBytes,
		m.uploadSize,
		m.requestDuration,
		m.inFlight,
	)

	return m
}

// Handler returns the /metrics endpoint handler.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// FileUploaded records one stored file of the given size.
func (m *Metrics) FileUploaded(bytes int64) {
	m.uploads.Inc()
	m.uploadBytes.Add(float64(bytes))
	m.uploadSize.Observe(float64(bytes))
}

// FileDownloaded records one served file of the given size.
func (m *Metrics) FileDownloaded(bytes int64) {
	m.downloads.Inc()
	m.downloadBytes.Add(float64(bytes))
}

// FileDeleted records one deleted file.
func (m *Metrics) FileDeleted() {
	m.deletes.Inc()
}

// Middleware instruments request latency and the in-flight gauge. The
// route label uses the chi route pattern, not the raw path, so label
// cardinality stays bounded.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		m.inFlight.Inc()
		defer m.inFlight.Dec()

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if pattern := rctx.RoutePattern(); pattern != "" {
				route = pattern
			}
		}

		m.requestDuration.
			WithLabelValues(r.Method, route, strconv.Itoa(rec.status)).
			Observe(time.Since(start).Seconds())
	})
}

// statusRecorder captures the response status for the duration labels.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (rec *statusRecorder) WriteHeader(status int) {
	rec.status = status
	rec.ResponseWriter.WriteHeader(status)
}

// Unwrap exposes the underlying writer for http.ResponseController.
func (rec *statusRecorder) Unwrap() http.ResponseWriter {
	return rec.ResponseWriter
}
