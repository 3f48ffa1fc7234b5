// Package client provides the classification clients the benchmark
// drives load through.
//
// Two transports exist: a textual HTTP client posting JSON instances,
// and a binary RPC client sending raw tensors over a persistent TCP
// connection. The transport is chosen once at construction; callers
// hold only the Client capability and never branch on protocol again.
package client

import "fmt"

// Protocol selects the request transport.
type Protocol string

// Supported protocols.
const (
	ProtocolHTTP Protocol = "http"
	ProtocolRPC  Protocol = "rpc"
)

// Client sends classification requests to a model service. Predict
// submits one batch of flattened, scaled images and returns one class
// score vector per row. Implementations block until the response
// arrives and are not safe for concurrent use; the harness is
// single-threaded by design.
type Client interface {
	Predict(instances [][]float32) ([][]float32, error)
	Close() error
}

// New constructs a client for the given protocol and endpoint.
func New(protocol Protocol, endpoint string) (Client, error) {
	switch protocol {
	case ProtocolHTTP:
		return NewHTTP(endpoint), nil
	case ProtocolRPC:
		return NewRPC(endpoint)
	default:
		return nil, fmt.Errorf("unknown protocol %q (want %q or %q)", protocol, ProtocolHTTP, ProtocolRPC)
	}
}
