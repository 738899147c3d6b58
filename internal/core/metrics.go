package core

import (
	"expvar"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// MetricsRecorder receives timing and outcome signals from the store. The
// mutation observation covers the synchronous mirror commit; the persist
// observation covers the background remote write; rollbacks count mirror
// reverts after a failed persist.
type MetricsRecorder interface {
	ObserveMutation(op string, err error, d time.Duration)
	ObservePersist(op string, err error, d time.Duration)
	ObserveRollback(op string)
}

type noopMetrics struct{}

func (noopMetrics) ObserveMutation(string, error, time.Duration) {}
func (noopMetrics) ObservePersist(string, error, time.Duration)  {}
func (noopMetrics) ObserveRollback(string)                       {}

// PrometheusMetricsRecorder exports store metrics as Prometheus collectors.
type PrometheusMetricsRecorder struct {
	mutations *prometheus.HistogramVec
	persists  *prometheus.HistogramVec
	rollbacks *prometheus.CounterVec
}

// NewPrometheusMetricsRecorder constructs the recorder and registers its
// collectors with the supplied registerer. A nil registerer uses the default
// registry.
func NewPrometheusMetricsRecorder(reg prometheus.Registerer) *PrometheusMetricsRecorder {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	r := &PrometheusMetricsRecorder{
		mutations: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "hostelcore",
			Name:      "mutation_duration_seconds",
			Help:      "Synchronous mirror commit latency per operation.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"op", "status"}),
		persists: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "hostelcore",
			Name:      "persist_duration_seconds",
			Help:      "Background remote persistence latency per operation.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"op", "status"}),
		rollbacks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "hostelcore",
			Name:      "rollbacks_total",
			Help:      "Mirror rollbacks after failed persistence, per operation.",
		}, []string{"op"}),
	}
	reg.MustRegister(r.mutations, r.persists, r.rollbacks)
	return r
}

func statusLabel(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}

// ObserveMutation records one mirror commit outcome.
func (r *PrometheusMetricsRecorder) ObserveMutation(op string, err error, d time.Duration) {
	r.mutations.WithLabelValues(op, statusLabel(err)).Observe(d.Seconds())
}

// ObservePersist records one remote persistence outcome.
func (r *PrometheusMetricsRecorder) ObservePersist(op string, err error, d time.Duration) {
	r.persists.WithLabelValues(op, statusLabel(err)).Observe(d.Seconds())
}

// ObserveRollback counts one mirror rollback.
func (r *PrometheusMetricsRecorder) ObserveRollback(op string) {
	r.rollbacks.WithLabelValues(op).Inc()
}

var expvarSeq uint64

// ExpvarMetricsRecorder publishes aggregate timing and result counters via
// expvar, for deployments that prefer process-local metrics without external
// dependencies. Totals are kept in milliseconds per operation.
type ExpvarMetricsRecorder struct {
	name      string
	mu        sync.Mutex
	durations map[string]float64
	results   map[string]map[string]int64
	rollbacks map[string]int64
}

// ExpvarMetricsSnapshot captures a read-only view of the recorded metrics.
type ExpvarMetricsSnapshot struct {
	DurationsMS map[string]float64          `json:"durations_ms_total"`
	Results     map[string]map[string]int64 `json:"results_total"`
	Rollbacks   map[string]int64            `json:"rollbacks_total"`
	RecordedAt  time.Time                   `json:"recorded_at"`
}

// NewExpvarMetricsRecorder constructs an expvar-backed recorder and publishes
// it under the supplied name. When name is empty, a unique identifier is
// generated.
func NewExpvarMetricsRecorder(name string) *ExpvarMetricsRecorder {
	if name == "" {
		id := atomic.AddUint64(&expvarSeq, 1)
		name = fmt.Sprintf("hostelcore_store_metrics_%d", id)
	}
	rec := &ExpvarMetricsRecorder{
		name:      name,
		durations: make(map[string]float64),
		results:   make(map[string]map[string]int64),
		rollbacks: make(map[string]int64),
	}
	expvar.Publish(name, expvar.Func(func() any {
		return rec.Snapshot()
	}))
	return rec
}

// Name returns the expvar export name associated with the recorder.
func (r *ExpvarMetricsRecorder) Name() string {
	return r.name
}

// Snapshot returns an immutable copy of the aggregated metrics.
func (r *ExpvarMetricsRecorder) Snapshot() ExpvarMetricsSnapshot {
	r.mu.Lock()
	defer r.mu.Unlock()

	durations := make(map[string]float64, len(r.durations))
	for op, total := range r.durations {
		durations[op] = total
	}
	results := make(map[string]map[string]int64, len(r.results))
	for op, statusCounts := range r.results {
		cpy := make(map[string]int64, len(statusCounts))
		for status, count := range statusCounts {
			cpy[status] = count
		}
		results[op] = cpy
	}
	rollbacks := make(map[string]int64, len(r.rollbacks))
	for op, count := range r.rollbacks {
		rollbacks[op] = count
	}

	return ExpvarMetricsSnapshot{
		DurationsMS: durations,
		Results:     results,
		Rollbacks:   rollbacks,
		RecordedAt:  time.Now().UTC(),
	}
}

func (r *ExpvarMetricsRecorder) observe(kind, op string, err error, d time.Duration) {
	if op == "" {
		return
	}
	key := kind + ":" + op
	ms := float64(d) / float64(time.Millisecond)

	r.mu.Lock()
	r.durations[key] += ms
	if _, ok := r.results[key]; !ok {
		r.results[key] = make(map[string]int64, 2)
	}
	r.results[key][statusLabel(err)]++
	r.mu.Unlock()
}

// ObserveMutation records one mirror commit outcome.
func (r *ExpvarMetricsRecorder) ObserveMutation(op string, err error, d time.Duration) {
	r.observe("mutation", op, err, d)
}

// ObservePersist records one remote persistence outcome.
func (r *ExpvarMetricsRecorder) ObservePersist(op string, err error, d time.Duration) {
	r.observe("persist", op, err, d)
}

// ObserveRollback counts one mirror rollback.
func (r *ExpvarMetricsRecorder) ObserveRollback(op string) {
	if op == "" {
		return
	}
	r.mu.Lock()
	r.rollbacks[op]++
	r.mu.Unlock()
}
