package bench

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// discardReply answers every batch with empty score rows; the driver
// never reads them.
func discardReply(batch [][]float32) ([][]float32, error) {
	return make([][]float32, len(batch)), nil
}

func TestDriverThroughputConsistency(t *testing.T) {
	ds := testDataset(10, 5000)
	stub := &stubClient{reply: discardReply}

	driver, err := NewDriver(stub, ds, ThroughputConfig{
		Duration:  100 * time.Millisecond,
		BatchSize: 4,
		Split:     "test",
	})
	require.NoError(t, err)

	report, err := driver.Run()
	require.NoError(t, err)

	require.Positive(t, report.Requests)
	require.Zero(t, report.Requests%4, "counter advances by whole batches")
	require.Equal(t, float64(report.Requests)/report.Duration.Seconds(), report.PerSecond)
	require.Equal(t, 4, report.BatchSize)
	require.Equal(t, "test", report.Split)
	require.NotEmpty(t, report.RunID)
}

func TestDriverBatchesAreContiguous(t *testing.T) {
	ds := testDataset(10, 5000)
	stub := &stubClient{reply: discardReply}

	driver, err := NewDriver(stub, ds, ThroughputConfig{
		Duration:  20 * time.Millisecond,
		BatchSize: 3,
		Split:     "test",
	})
	require.NoError(t, err)

	_, err = driver.Run()
	require.NoError(t, err)
	require.NotEmpty(t, stub.batches)

	// Sample i carries the value i in pixel (0, 0), so flat index 0
	// identifies it after the 1/255 scaling.
	for call, batch := range stub.batches[:3] {
		require.Len(t, batch, 3)
		for row, vec := range batch {
			want := float32(call*3+row) / 255
			require.Equal(t, want, vec[0], "call %d row %d", call, row)
		}
	}
}

// TestDriverClampsAtSplitEnd covers dataset exhaustion: batches shrink
// at the end of the split and then go empty, while the request counter
// keeps advancing by the full batch size. No wrapping.
func TestDriverClampsAtSplitEnd(t *testing.T) {
	ds := testDataset(10, 6)
	stub := &stubClient{reply: discardReply}

	driver, err := NewDriver(stub, ds, ThroughputConfig{
		Duration:  20 * time.Millisecond,
		BatchSize: 4,
		Split:     "test",
	})
	require.NoError(t, err)

	report, err := driver.Run()
	require.NoError(t, err)

	require.GreaterOrEqual(t, len(stub.batches), 3)
	require.Len(t, stub.batches[0], 4)
	require.Len(t, stub.batches[1], 2)
	require.Empty(t, stub.batches[2])
	require.Zero(t, report.Requests%4)
}

func TestDriverScalesData(t *testing.T) {
	ds := testDataset(10, 8)
	for i := range ds.Test.Images {
		ds.Test.Images[i][2][3] = 255
	}
	stub := &stubClient{reply: discardReply}

	driver, err := NewDriver(stub, ds, ThroughputConfig{
		Duration:  time.Millisecond,
		BatchSize: 2,
		Split:     "test",
	})
	require.NoError(t, err)

	_, err = driver.Run()
	require.NoError(t, err)
	require.NotEmpty(t, stub.batches)

	vec := stub.batches[0][0]
	require.Len(t, vec, 784)
	require.Equal(t, float32(1), vec[2*28+3], "pixels are scaled into [0, 1]")
}

func TestDriverRejectsBadBatchSize(t *testing.T) {
	ds := testDataset(10, 10)
	stub := &stubClient{reply: discardReply}

	_, err := NewDriver(stub, ds, ThroughputConfig{Duration: time.Second, BatchSize: 0, Split: "test"})
	require.Error(t, err)

	_, err = NewDriver(stub, ds, ThroughputConfig{Duration: time.Second, BatchSize: -2, Split: "test"})
	require.Error(t, err)
}

func TestDriverRejectsUnknownSplit(t *testing.T) {
	ds := testDataset(10, 10)
	stub := &stubClient{reply: discardReply}

	_, err := NewDriver(stub, ds, ThroughputConfig{Duration: time.Second, BatchSize: 1, Split: "dev"})
	require.Error(t, err)
}

func TestDriverPropagatesClientError(t *testing.T) {
	ds := testDataset(10, 10)
	stub := &stubClient{reply: func([][]float32) ([][]float32, error) {
		return nil, errors.New("broken pipe")
	}}

	driver, err := NewDriver(stub, ds, ThroughputConfig{
		Duration:  time.Second,
		BatchSize: 1,
		Split:     "test",
	})
	require.NoError(t, err)

	_, err = driver.Run()
	require.Error(t, err)
	require.Contains(t, err.Error(), "broken pipe")
}
