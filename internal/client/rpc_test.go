package client

import (
	"encoding/gob"
	"net"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"
)

// serveTensor accepts one connection and answers every request with the
// given handler until the connection closes.
func serveTensor(t *testing.T, handler func(tensorRequest) tensorReply) net.Listener {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()
		dec := gob.NewDecoder(conn)
		enc := gob.NewEncoder(conn)
		for {
			var req tensorRequest
			if err := dec.Decode(&req); err != nil {
				return
			}
			if err := enc.Encode(handler(req)); err != nil {
				return
			}
		}
	}()
	return ln
}

func TestRPCPredict(t *testing.T) {
	seen := make(chan tensorRequest, 1)
	ln := serveTensor(t, func(req tensorRequest) tensorReply {
		seen <- req
		return tensorReply{Rows: 1, Cols: 3, Data: []float32{0.2, 0.5, 0.3}}
	})
	defer ln.Close()

	c, err := NewRPC(ln.Addr().String() + "/emnist")
	require.NoError(t, err)
	defer c.Close()

	scores, err := c.Predict([][]float32{{1, 2, 3, 4}})
	require.NoError(t, err)

	got := <-seen
	require.Equal(t, "emnist", got.Name)
	require.Equal(t, 1, got.Rows)
	require.Equal(t, 4, got.Cols)
	require.Equal(t, []float32{1, 2, 3, 4}, got.Data)
	require.Equal(t, [][]float32{{0.2, 0.5, 0.3}}, scores)
}

func TestRPCPredictBatchReuse(t *testing.T) {
	var calls atomic.Int32
	ln := serveTensor(t, func(req tensorRequest) tensorReply {
		calls.Add(1)
		data := make([]float32, req.Rows*2)
		return tensorReply{Rows: req.Rows, Cols: 2, Data: data}
	})
	defer ln.Close()

	c, err := NewRPC(ln.Addr().String())
	require.NoError(t, err)
	defer c.Close()

	// The connection persists across requests.
	for i := 0; i < 3; i++ {
		scores, err := c.Predict([][]float32{{1, 2}, {3, 4}})
		require.NoError(t, err)
		require.Len(t, scores, 2)
	}
	require.Equal(t, int32(3), calls.Load())
}

func TestRPCPredictRemoteError(t *testing.T) {
	ln := serveTensor(t, func(tensorRequest) tensorReply {
		return tensorReply{Err: "no model named bogus"}
	})
	defer ln.Close()

	c, err := NewRPC(ln.Addr().String() + "/bogus")
	require.NoError(t, err)
	defer c.Close()

	_, err = c.Predict([][]float32{{1}})
	require.Error(t, err)
	require.Contains(t, err.Error(), "no model named bogus")
}

func TestRPCPredictBadReplyDims(t *testing.T) {
	ln := serveTensor(t, func(tensorRequest) tensorReply {
		return tensorReply{Rows: 2, Cols: 3, Data: []float32{1}}
	})
	defer ln.Close()

	c, err := NewRPC(ln.Addr().String())
	require.NoError(t, err)
	defer c.Close()

	_, err = c.Predict([][]float32{{1}})
	require.Error(t, err)
}

func TestRPCPredictRaggedBatch(t *testing.T) {
	ln := serveTensor(t, func(tensorRequest) tensorReply {
		return tensorReply{}
	})
	defer ln.Close()

	c, err := NewRPC(ln.Addr().String())
	require.NoError(t, err)
	defer c.Close()

	_, err = c.Predict([][]float32{{1, 2}, {3}})
	require.Error(t, err)
	require.Contains(t, err.Error(), "ragged")
}

func TestRPCDialFailure(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()
	require.NoError(t, ln.Close())

	_, err = NewRPC(addr + "/emnist")
	require.Error(t, err)
}
