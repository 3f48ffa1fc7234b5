// Command servebench benchmarks an EMNIST character-classification
// service: it downloads and parses the dataset, evaluates serving
// accuracy and per-request latency, and measures request throughput.
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/jedib0t/go-pretty/table"
	"github.com/spf13/cobra"

	"github.com/emnist-ml/servebench/bench"
	"github.com/emnist-ml/servebench/client"
	"github.com/emnist-ml/servebench/emnist"
	"github.com/emnist-ml/servebench/internal/logging"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

type rootFlags struct {
	dataDir  string
	download bool
	logLevel string
}

func newRootCmd() *cobra.Command {
	flags := &rootFlags{}

	root := &cobra.Command{
		Use:   "servebench",
		Short: "Benchmark an EMNIST classification service",
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			level, err := logging.ParseLevel(flags.logLevel)
			if err != nil {
				return err
			}
			logging.Setup(level)
			return nil
		},
		SilenceUsage: true,
	}

	pf := root.PersistentFlags()
	pf.StringVar(&flags.dataDir, "data-dir", "emnist_data", "folder containing the EMNIST matlab files")
	pf.BoolVar(&flags.download, "download", false, "download the dataset when the matrix file is missing")
	pf.StringVar(&flags.logLevel, "log-level", "info", "minimum log level (debug, info, warn, error)")

	root.AddCommand(newDownloadCmd(flags), newEvalCmd(flags), newThroughputCmd(flags))
	return root
}

func newDownloadCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "download",
		Short: "Fetch and extract the EMNIST archive",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			return emnist.Download(flags.dataDir)
		},
	}
}

func newEvalCmd(flags *rootFlags) *cobra.Command {
	var (
		examples      int
		printExamples int
		url           string
		seed          int64
		split         string
		protocol      string
	)

	cmd := &cobra.Command{
		Use:   "eval",
		Short: "Evaluate serving accuracy and per-request latency",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			ds, err := emnist.Load(flags.dataDir, flags.download)
			if err != nil {
				return err
			}

			c, err := client.New(client.Protocol(protocol), url)
			if err != nil {
				return err
			}
			defer func() {
				_ = c.Close()
			}()

			ev, err := bench.NewEvaluator(c, ds, bench.EvalConfig{
				Examples:      examples,
				PrintExamples: printExamples,
				Seed:          seed,
				Split:         split,
			})
			if err != nil {
				return err
			}

			report, err := ev.Run()
			if err != nil {
				return err
			}
			renderEvalReport(report)
			return nil
		},
	}

	cmd.Flags().IntVarP(&examples, "examples", "n", 1000, "number of queries to send")
	cmd.Flags().IntVar(&printExamples, "print", 0, "number of leading examples to render with labels")
	cmd.Flags().StringVar(&url, "url", "http://localhost:9000/predict", "classification endpoint")
	cmd.Flags().Int64Var(&seed, "seed", 42, "random seed for example sampling")
	cmd.Flags().StringVar(&split, "split", "test", "dataset split to sample from (train or test)")
	cmd.Flags().StringVar(&protocol, "protocol", "http", "request protocol (http or rpc)")
	return cmd
}

func newThroughputCmd(flags *rootFlags) *cobra.Command {
	var (
		duration  time.Duration
		batchSize int
		url       string
		split     string
		protocol  string
	)

	cmd := &cobra.Command{
		Use:   "throughput",
		Short: "Measure sustained request throughput",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			ds, err := emnist.Load(flags.dataDir, flags.download)
			if err != nil {
				return err
			}

			c, err := client.New(client.Protocol(protocol), url)
			if err != nil {
				return err
			}
			defer func() {
				_ = c.Close()
			}()

			driver, err := bench.NewDriver(c, ds, bench.ThroughputConfig{
				Duration:  duration,
				BatchSize: batchSize,
				Split:     split,
			})
			if err != nil {
				return err
			}

			report, err := driver.Run()
			if err != nil {
				return err
			}
			renderThroughputReport(report)
			return nil
		},
	}

	cmd.Flags().DurationVar(&duration, "duration", 30*time.Second, "wall-clock time to keep sending for")
	cmd.Flags().IntVar(&batchSize, "batch-size", 1, "samples per request")
	cmd.Flags().StringVar(&url, "url", "http://localhost:9000/predict", "classification endpoint")
	cmd.Flags().StringVar(&split, "split", "test", "dataset split to send from (train or test)")
	cmd.Flags().StringVar(&protocol, "protocol", "http", "request protocol (http or rpc)")
	return cmd
}

func renderEvalReport(r *bench.EvalReport) {
	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.AppendHeader(table.Row{"Run", "Split", "Examples", "Accuracy", "Mean [ms]", "p50 [ms]", "p95 [ms]", "p99 [ms]", "Max [ms]"})
	t.AppendRow(table.Row{
		r.RunID,
		r.Split,
		r.Examples,
		fmt.Sprintf("%.2f%%", 100*r.Accuracy()),
		fmt.Sprintf("%.3f", r.MeanLatencyMillis()),
		fmt.Sprintf("%.3f", r.LatencyMillis(50)),
		fmt.Sprintf("%.3f", r.LatencyMillis(95)),
		fmt.Sprintf("%.3f", r.LatencyMillis(99)),
		fmt.Sprintf("%.3f", r.MaxLatencyMillis()),
	})
	t.Render()
}

func renderThroughputReport(r *bench.ThroughputReport) {
	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.AppendHeader(table.Row{"Run", "Split", "Batch", "Duration", "Requests", "Requests/s"})
	t.AppendRow(table.Row{
		r.RunID,
		r.Split,
		r.BatchSize,
		r.Duration,
		r.Requests,
		fmt.Sprintf("%.2f", r.PerSecond),
	})
	t.Render()
}
