package client

import (
	"context"
	"errors"

	"github.com/ValentinKolb/gaea/rpc/common"
	"github.com/ValentinKolb/gaea/rpc/serializer"
	"github.com/ValentinKolb/gaea/rpc/transport"
)

// rpcClientAdapter is a struct that stores all data needed to talk to a server.
// Used by RPCClient and Service with composition pattern.
type rpcClientAdapter struct {
	config     common.ClientConfig
	transport  transport.IRPCClientTransport
	serializer serializer.IRPCSerializer
}

// invokeRPCRequest is a helper function used by all clients to send a frame
// It serializes v, sends it as msgType and returns the payload of the reply.
// Exception replies are returned as *common.RemoteError, as are transport failures
// (Timeout or Net kind). The reply must be of type expect.
func (a *rpcClientAdapter) invokeRPCRequest(ctx context.Context, msgType common.MessageType, v any, expect common.MessageType) ([]byte, error) {
	// Serialize the request
	payload, err := a.serializer.Serialize(v)
	if err != nil {
		return nil, common.ToRemoteError(err)
	}

	// Send the frame
	resp, err := a.transport.Send(ctx, transport.Frame{Type: msgType, Payload: payload})
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, common.NewTimeoutError("%v", err)
		}
		return nil, common.NewNetError("%v", err)
	}

	// Check if the response is an error response
	if resp.Type == common.MsgTException {
		exc, err := serializer.DeserializeAs[*common.ExceptionProtocol](a.serializer, resp.Payload)
		if err != nil {
			return nil, common.ToRemoteError(err)
		}
		if exc == nil {
			return nil, common.NewRemoteError(common.ErrKindUnknown, "server sent an empty exception")
		}
		return nil, exc.RemoteError()
	}

	// Check if the type of the response is the expected type
	if resp.Type != expect {
		return nil, common.NewProtocolError("unexpected message type: %s, expected %s", resp.Type, expect)
	}

	return resp.Payload, nil
}
