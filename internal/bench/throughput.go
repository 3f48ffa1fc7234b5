package bench

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/emnist-ml/servebench/internal/client"
	"github.com/emnist-ml/servebench/internal/emnist"
)

// ThroughputConfig configures a throughput run.
type ThroughputConfig struct {
	// Duration is the wall-clock time to keep sending for.
	Duration time.Duration
	// BatchSize is the number of samples per request; must be positive.
	BatchSize int
	// Split selects the dataset partition, "train" or "test".
	Split string
}

// Driver sends fixed-size batches continuously until the deadline
// passes, discarding response content.
type Driver struct {
	cfg    ThroughputConfig
	client client.Client
	data   [][]float32
}

// NewDriver builds a throughput driver over the configured split of ds.
// The full split is flattened row-major and scaled by 1/255 up front so
// the send loop does no per-batch conversion work.
func NewDriver(c client.Client, ds *emnist.Dataset, cfg ThroughputConfig) (*Driver, error) {
	split, err := ds.Split(cfg.Split)
	if err != nil {
		return nil, err
	}
	if cfg.BatchSize <= 0 {
		return nil, fmt.Errorf("batch size must be positive, got %d", cfg.BatchSize)
	}

	data := make([][]float32, split.Len())
	for i := range data {
		data[i] = scaleRowMajor(&split.Images[i])
	}
	return &Driver{cfg: cfg, client: c, data: data}, nil
}

// Run executes the throughput loop. Batches step through the split
// contiguously with no wrapping; near dataset exhaustion the slice
// clamps at the end of the split (eventually empty) while the request
// counter still advances by the full batch size, so Requests counts
// samples submitted, and PerSecond is Requests over the configured
// duration.
func (d *Driver) Run() (*ThroughputReport, error) {
	slog.Info("throughput evaluation starting",
		"duration", d.cfg.Duration, "batch_size", d.cfg.BatchSize, "split", d.cfg.Split)

	sent := 0
	deadline := time.Now().Add(d.cfg.Duration)
	for !time.Now().After(deadline) {
		lo, hi := sent, sent+d.cfg.BatchSize
		if lo > len(d.data) {
			lo = len(d.data)
		}
		if hi > len(d.data) {
			hi = len(d.data)
		}
		if _, err := d.client.Predict(d.data[lo:hi]); err != nil {
			return nil, fmt.Errorf("predict batch at offset %d: %w", sent, err)
		}
		sent += d.cfg.BatchSize
	}

	report := &ThroughputReport{
		RunID:     uuid.New().String(),
		Split:     d.cfg.Split,
		BatchSize: d.cfg.BatchSize,
		Duration:  d.cfg.Duration,
		Requests:  sent,
		PerSecond: float64(sent) / d.cfg.Duration.Seconds(),
	}

	slog.Info("throughput summary",
		"duration", d.cfg.Duration,
		"total_requests", report.Requests,
		"requests_per_second", report.PerSecond)
	return report, nil
}
