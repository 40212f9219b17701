// Package metrics exposes Prometheus metrics for daemon-mode verification
// runs: per-stage durations and results, and overall run outcomes.
package metrics

import (
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
)

// Recorder registers and updates the cratecheck metric family. It
// implements pipeline.Observer.
type Recorder struct {
	stageDuration *prom.HistogramVec
	stageResults  *prom.CounterVec
	runDuration   prom.Histogram
	runOutcomes   *prom.CounterVec
}

// NewRecorder constructs and registers the metrics on reg.
func NewRecorder(reg *prom.Registry) *Recorder {
	r := &Recorder{
		stageDuration: prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: "cratecheck",
			Name:      "stage_duration_seconds",
			Help:      "Duration of individual verification stages",
			Buckets:   prom.DefBuckets,
		}, []string{"stage"}),
		stageResults: prom.NewCounterVec(prom.CounterOpts{
			Namespace: "cratecheck",
			Name:      "stage_results_total",
			Help:      "Stage results by outcome",
		}, []string{"stage", "result"}),
		runDuration: prom.NewHistogram(prom.HistogramOpts{
			Namespace: "cratecheck",
			Name:      "run_duration_seconds",
			Help:      "Total verification run duration",
			Buckets:   prom.DefBuckets,
		}),
		runOutcomes: prom.NewCounterVec(prom.CounterOpts{
			Namespace: "cratecheck",
			Name:      "run_outcomes_total",
			Help:      "Verification run outcomes",
		}, []string{"outcome"}),
	}
	reg.MustRegister(r.stageDuration, r.stageResults, r.runDuration, r.runOutcomes)
	return r
}

func (r *Recorder) StageDone(stage string, d time.Duration, err error) {
	r.stageDuration.WithLabelValues(stage).Observe(d.Seconds())
	r.stageResults.WithLabelValues(stage, resultLabel(err)).Inc()
}

func (r *Recorder) RunDone(d time.Duration, err error) {
	r.runDuration.Observe(d.Seconds())
	r.runOutcomes.WithLabelValues(resultLabel(err)).Inc()
}

func resultLabel(err error) string {
	if err != nil {
		return "failed"
	}
	return "passed"
}
