package transport

import (
	"context"

	"github.com/ValentinKolb/gaea/rpc/common"
)

// Frame is the unit a transport carries: a message type and an opaque payload
type Frame struct {
	Type    common.MessageType
	Payload []byte
}

// --------------------------------------------------------------------------
// Server Transport
// --------------------------------------------------------------------------

// ServerHandleFunc is a function type that handles incoming requests.
// It is called by a server transport for every received frame and must return
// exactly one frame, which the transport writes back to the caller.
// remote is the address of the peer as reported by the transport.
type ServerHandleFunc func(ctx context.Context, remote string, req Frame) (resp Frame)

// IRPCServerTransport is the interface for the RPC transport layer
// It must accept a ServerConfig as a parameter
type IRPCServerTransport interface {
	// RegisterHandler registers a handler for the transport layer
	// This handler should be called when a request is received
	RegisterHandler(handler ServerHandleFunc)
	// Listen starts the transport layer and listens for incoming requests.
	// It blocks until Close is called or the listener fails.
	Listen(config common.ServerConfig) error
	// Close stops accepting connections
	Close() error
}

// --------------------------------------------------------------------------
// Client Transport
// --------------------------------------------------------------------------

// IRPCClientTransport is the interface for the RPC client transport
type IRPCClientTransport interface {
	// Connect initializes the transport with the given configuration
	Connect(config common.ClientConfig) error
	// Send sends a frame to the server and returns the response frame
	Send(ctx context.Context, req Frame) (resp Frame, err error)
	// Close closes the transport connection
	Close() error
}
