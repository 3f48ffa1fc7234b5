// Package bench drives load against a remote classification endpoint
// and measures it.
//
// Two workloads exist: the Evaluator samples random examples and sends
// one request per example, recording latency and accuracy; the Driver
// sends fixed-size batches back to back for a wall-clock duration and
// counts what it got through. Both are single sequential loops with
// blocking I/O, bounded purely by request round-trip time.
package bench

import (
	"fmt"
	"io"
	"math/rand"
	"os"
	"time"

	"github.com/emnist-ml/servebench/internal/client"
	"github.com/emnist-ml/servebench/internal/emnist"
)

// EvalConfig configures a single-query evaluation run.
type EvalConfig struct {
	// Examples is the number of requests; must be positive (see
	// EvalReport.Accuracy).
	Examples int
	// PrintExamples is how many leading samples, in iteration order,
	// get rendered together with their true and predicted labels.
	PrintExamples int
	// Seed feeds the random generator that samples example indices;
	// runs with equal seeds sample equal index sequences.
	Seed int64
	// Split selects the dataset partition, "train" or "test".
	Split string
}

// Evaluator fires one classification request per sampled example and
// tallies latency and accuracy.
type Evaluator struct {
	cfg     EvalConfig
	client  client.Client
	split   *emnist.Split
	mapping map[int]rune
	out     io.Writer
}

// NewEvaluator builds an evaluator over the configured split of ds,
// sending requests through c.
func NewEvaluator(c client.Client, ds *emnist.Dataset, cfg EvalConfig) (*Evaluator, error) {
	split, err := ds.Split(cfg.Split)
	if err != nil {
		return nil, err
	}
	if cfg.Examples > split.Len() {
		return nil, fmt.Errorf("%d examples requested but %s split has only %d", cfg.Examples, cfg.Split, split.Len())
	}
	return &Evaluator{
		cfg:     cfg,
		client:  c,
		split:   split,
		mapping: emnist.ClassMapping(),
		out:     os.Stdout,
	}, nil
}

// SetOutput redirects example rendering and the accuracy line.
func (e *Evaluator) SetOutput(w io.Writer) { e.out = w }

// Run executes the evaluation and returns the collected report. Any
// request or malformed-response error aborts the run.
func (e *Evaluator) Run() (*EvalReport, error) {
	report := newEvalReport(e.cfg.Split, e.cfg.Examples)

	for i, idx := range sampleIndices(e.cfg.Seed, e.cfg.Examples, e.split.Len()) {
		img := &e.split.Images[idx]

		start := time.Now()
		scores, err := e.client.Predict([][]float32{scaleRowMajor(img)})
		if err != nil {
			return nil, fmt.Errorf("predict sample %d: %w", idx, err)
		}
		report.record(time.Since(start))

		if len(scores) == 0 {
			return nil, fmt.Errorf("empty prediction for sample %d", idx)
		}
		predicted := argmax(scores[0])
		truth := e.split.Labels[idx]
		if predicted == truth {
			report.Correct++
		}

		if i < e.cfg.PrintExamples {
			emnist.Render(e.out, img)
			fmt.Fprintf(e.out, "True Label: %c\n", e.mapping[truth])
			fmt.Fprintf(e.out, "Predicted Label: %c\n", e.mapping[predicted])
		}
	}

	fmt.Fprintf(e.out, "Accuracy on %d %s images: %.2f%%\n",
		e.cfg.Examples, e.cfg.Split, 100*report.Accuracy())
	return report, nil
}

// sampleIndices draws n distinct indices from [0, total), reproducibly
// for a given seed.
func sampleIndices(seed int64, n, total int) []int {
	rng := rand.New(rand.NewSource(seed))
	return rng.Perm(total)[:n]
}

// scaleRowMajor flattens the image row-major and scales every pixel by
// 1/255 into [0, 1].
func scaleRowMajor(img *emnist.Image) []float32 {
	flat := img.Flatten()
	for i := range flat {
		flat[i] /= 255
	}
	return flat
}

// argmax returns the index of the greatest score; ties go to the lowest
// index.
func argmax(scores []float32) int {
	best := 0
	for i, s := range scores {
		if s > scores[best] {
			best = i
		}
	}
	return best
}
