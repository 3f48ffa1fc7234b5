// Package client exports the classification client API.
//
// A Client is the single polymorphic capability both benchmark
// workloads drive requests through; the transport (textual HTTP or
// binary RPC) is fixed once at construction.
package client

import (
	"github.com/emnist-ml/servebench/internal/client"
)

// Protocol selects the request transport.
type Protocol = client.Protocol

// Supported protocols.
const (
	ProtocolHTTP = client.ProtocolHTTP
	ProtocolRPC  = client.ProtocolRPC
)

// Client sends classification requests to a model service.
type Client = client.Client

// HTTPClient speaks the textual protocol: JSON instances over POST.
type HTTPClient = client.HTTPClient

// RPCClient speaks the binary protocol over a persistent connection.
type RPCClient = client.RPCClient

// New constructs a client for the given protocol and endpoint.
func New(protocol Protocol, endpoint string) (Client, error) {
	return client.New(protocol, endpoint)
}

// NewHTTP returns a textual-protocol client posting to the given URL.
func NewHTTP(url string) *HTTPClient {
	return client.NewHTTP(url)
}

// NewRPC returns a binary-protocol client dialing the given endpoint.
func NewRPC(endpoint string) (*RPCClient, error) {
	return client.NewRPC(endpoint)
}
