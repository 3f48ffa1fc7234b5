package bench

import (
	"time"

	"github.com/HdrHistogram/hdrhistogram-go"
	"github.com/google/uuid"
)

// Latency histogram bounds, in microseconds.
const (
	histMinMicros = 1
	histMaxMicros = 60_000_000
	histSigFigs   = 3
)

// EvalReport is the result of one single-query evaluation run.
type EvalReport struct {
	RunID    string
	Split    string
	Examples int
	Correct  int

	// Durations holds per-request latencies in milliseconds, truncated
	// to 3 decimal digits, in request order.
	Durations []float64

	hist *hdrhistogram.Histogram
}

func newEvalReport(split string, examples int) *EvalReport {
	return &EvalReport{
		RunID:     uuid.New().String(),
		Split:     split,
		Examples:  examples,
		Durations: make([]float64, 0, examples),
		hist:      hdrhistogram.New(histMinMicros, histMaxMicros, histSigFigs),
	}
}

func (r *EvalReport) record(d time.Duration) {
	micros := d.Microseconds()
	r.Durations = append(r.Durations, float64(micros)/1000)
	_ = r.hist.RecordValue(micros)
}

// Accuracy returns Correct/Examples. A positive example count is a
// caller precondition; zero examples yields NaN, never a silent 0%.
func (r *EvalReport) Accuracy() float64 {
	return float64(r.Correct) / float64(r.Examples)
}

// LatencyMillis returns the recorded latency at quantile q (0-100) in
// milliseconds.
func (r *EvalReport) LatencyMillis(q float64) float64 {
	return float64(r.hist.ValueAtQuantile(q)) / 1000
}

// MeanLatencyMillis returns the mean recorded latency in milliseconds.
func (r *EvalReport) MeanLatencyMillis() float64 {
	return r.hist.Mean() / 1000
}

// MaxLatencyMillis returns the largest recorded latency in milliseconds.
func (r *EvalReport) MaxLatencyMillis() float64 {
	return float64(r.hist.Max()) / 1000
}

// ThroughputReport is the result of one throughput run. PerSecond is
// Requests divided by the configured duration in seconds.
type ThroughputReport struct {
	RunID     string
	Split     string
	BatchSize int
	Duration  time.Duration
	Requests  int
	PerSecond float64
}
