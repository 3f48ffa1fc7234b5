// Package bench exports the benchmarking API.
//
// Example usage:
//
//	ds, _ := emnist.Load("emnist_data", false)
//	c, _ := client.New(client.ProtocolHTTP, "http://localhost:9000/predict")
//	defer c.Close()
//
//	ev, _ := bench.NewEvaluator(c, ds, bench.EvalConfig{
//	    Examples: 1000,
//	    Seed:     42,
//	    Split:    "test",
//	})
//	report, _ := ev.Run()
//	fmt.Printf("p99 latency: %.3f ms\n", report.LatencyMillis(99))
package bench

import (
	"github.com/emnist-ml/servebench/client"
	"github.com/emnist-ml/servebench/emnist"
	"github.com/emnist-ml/servebench/internal/bench"
)

// EvalConfig configures a single-query evaluation run.
type EvalConfig = bench.EvalConfig

// Evaluator fires one classification request per sampled example.
type Evaluator = bench.Evaluator

// EvalReport is the result of an evaluation run.
type EvalReport = bench.EvalReport

// ThroughputConfig configures a throughput run.
type ThroughputConfig = bench.ThroughputConfig

// Driver sends fixed-size batches continuously for a wall-clock
// duration.
type Driver = bench.Driver

// ThroughputReport is the result of a throughput run.
type ThroughputReport = bench.ThroughputReport

// NewEvaluator builds an evaluator over the configured split of ds.
func NewEvaluator(c client.Client, ds *emnist.Dataset, cfg EvalConfig) (*Evaluator, error) {
	return bench.NewEvaluator(c, ds, cfg)
}

// NewDriver builds a throughput driver over the configured split of ds.
func NewDriver(c client.Client, ds *emnist.Dataset, cfg ThroughputConfig) (*Driver, error) {
	return bench.NewDriver(c, ds, cfg)
}
