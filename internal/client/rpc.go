package client

import (
	"encoding/gob"
	"fmt"
	"net"
	"strings"
)

// tensorRequest and tensorReply are the fixed message shapes of the
// binary protocol: an endpoint name plus a flat row-major float32
// tensor with explicit dimensions. The wire encoding is the codec's
// concern, not the caller's.
type tensorRequest struct {
	Name string
	Rows int
	Cols int
	Data []float32
}

type tensorReply struct {
	Rows int
	Cols int
	Data []float32
	Err  string
}

// RPCClient speaks the binary protocol over a single persistent TCP
// connection with a gob codec, one request/reply pair per Predict.
type RPCClient struct {
	conn net.Conn
	enc  *gob.Encoder
	dec  *gob.Decoder
	name string
}

// NewRPC dials the endpoint, spelled "host:port" or "host:port/name"
// where name identifies the served model on the remote side.
func NewRPC(endpoint string) (*RPCClient, error) {
	addr, name, _ := strings.Cut(endpoint, "/")
	conn, err := net.Dial("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", addr, err)
	}
	return &RPCClient{
		conn: conn,
		enc:  gob.NewEncoder(conn),
		dec:  gob.NewDecoder(conn),
		name: name,
	}, nil
}

// Predict implements Client.
func (c *RPCClient) Predict(instances [][]float32) ([][]float32, error) {
	req := tensorRequest{Name: c.name, Rows: len(instances)}
	if len(instances) > 0 {
		req.Cols = len(instances[0])
	}
	req.Data = make([]float32, 0, req.Rows*req.Cols)
	for _, row := range instances {
		if len(row) != req.Cols {
			return nil, fmt.Errorf("ragged batch: row has %d values, want %d", len(row), req.Cols)
		}
		req.Data = append(req.Data, row...)
	}

	if err := c.enc.Encode(req); err != nil {
		return nil, fmt.Errorf("send tensor: %w", err)
	}

	var rep tensorReply
	if err := c.dec.Decode(&rep); err != nil {
		return nil, fmt.Errorf("receive scores: %w", err)
	}
	if rep.Err != "" {
		return nil, fmt.Errorf("remote execution failed: %s", rep.Err)
	}
	if len(rep.Data) != rep.Rows*rep.Cols {
		return nil, fmt.Errorf("reply tensor has %d values for %dx%d dims", len(rep.Data), rep.Rows, rep.Cols)
	}

	scores := make([][]float32, rep.Rows)
	for i := range scores {
		scores[i] = rep.Data[i*rep.Cols : (i+1)*rep.Cols]
	}
	return scores, nil
}

// Close implements Client.
func (c *RPCClient) Close() error { return c.conn.Close() }
