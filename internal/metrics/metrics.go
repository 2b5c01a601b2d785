// Package metrics exposes Prometheus collectors for the calculation tools.
package metrics

import (
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Outcome labels.
const (
	OutcomeSuccess = "success"
	OutcomeInvalid = "invalid"
	OutcomeError   = "error"
)

// Recorder records calculation metrics. All methods are no-ops on a nil
// *Recorder so handlers can run without one.
type Recorder struct {
	registry     *prometheus.Registry
	calculations *prometheus.CounterVec
	warnings     *prometheus.CounterVec
	duration     *prometheus.HistogramVec
}

// New registers the collectors on a fresh registry.
func New() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		calculations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "pumpstation",
			Name:      "calculations_total",
			Help:      "Calculations by tool and outcome.",
		}, []string{"tool", "outcome"}),
		warnings: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "pumpstation",
			Name:      "warnings_total",
			Help:      "Physical warnings attached to results, by code.",
		}, []string{"code"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "pumpstation",
			Name:      "calculation_duration_seconds",
			Help:      "Time spent serving a calculation request.",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 10),
		}, []string{"tool"}),
	}
	r.registry.MustRegister(r.calculations, r.warnings, r.duration)
	r.registry.MustRegister(collectors.NewGoCollector())
	return r
}

// Outcome maps an error to an outcome label. Errors matching invalid count as
// the caller's fault.
func Outcome(err error, invalid error) string {
	switch {
	case err == nil:
		return OutcomeSuccess
	case invalid != nil && errors.Is(err, invalid):
		return OutcomeInvalid
	default:
		return OutcomeError
	}
}

// ObserveCalculation counts one request of tool and its duration.
func (r *Recorder) ObserveCalculation(tool, outcome string, d time.Duration) {
	r.CountCalculation(tool, outcome)
	r.ObserveDuration(tool, d)
}

// CountCalculation counts one calculation without timing it. Batch tools call
// it per item and ObserveDuration once per request.
func (r *Recorder) CountCalculation(tool, outcome string) {
	if r == nil {
		return
	}
	r.calculations.WithLabelValues(tool, outcome).Inc()
}

func (r *Recorder) ObserveDuration(tool string, d time.Duration) {
	if r == nil {
		return
	}
	r.duration.WithLabelValues(tool).Observe(d.Seconds())
}

// ObserveWarning counts one warning by code.
func (r *Recorder) ObserveWarning(code string) {
	if r == nil {
		return
	}
	r.warnings.WithLabelValues(code).Inc()
}

// Handler serves the registry in the Prometheus text format.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}
