package client

import (
	"context"
	"reflect"

	"github.com/ValentinKolb/gaea/rpc/common"
	"github.com/ValentinKolb/gaea/rpc/serializer"
	"github.com/ValentinKolb/gaea/rpc/transport"
	"github.com/lni/dragonboat/v4/logger"
	"github.com/pkg/errors"
)

var Logger = logger.GetLogger("client")

// NewRPCClient creates a new RPC client
// The function takes a config, a transport and a serializer as parameters.
// The protocol envelopes are registered with the serializer and the transport
// is connected before the client is returned.
func NewRPCClient(
	config common.ClientConfig,
	transport transport.IRPCClientTransport,
	s *serializer.Serializer,
) (*RPCClient, error) {
	if err := common.RegisterProtocol(s.Registry()); err != nil {
		return nil, errors.Wrap(err, "register protocol types")
	}

	// Connect the transport
	if err := transport.Connect(config); err != nil {
		return nil, err
	}

	Logger.Debugf("Created RPC client for %v", config.Transport.Endpoints)

	return &RPCClient{
		rpcClientAdapter{
			config:     config,
			transport:  transport,
			serializer: s,
		},
	}, nil
}

// RPCClient calls methods of remote services
type RPCClient struct {
	rpcClientAdapter
}

// Invoke calls lookup.method with positional parameters. Remote failures are
// returned as *common.RemoteError.
func (c *RPCClient) Invoke(ctx context.Context, lookup, method string, params ...any) (*common.ResponseProtocol, error) {
	payload, err := c.invokeRPCRequest(ctx, common.MsgTRequest, common.NewRequest(lookup, method, params...), common.MsgTResponse)
	if err != nil {
		return nil, err
	}

	resp, err := serializer.DeserializeAs[*common.ResponseProtocol](c.serializer, payload)
	if err != nil {
		return nil, common.ToRemoteError(err)
	}
	if resp == nil {
		return nil, common.NewProtocolError("empty response to %s.%s", lookup, method)
	}
	return resp, nil
}

// Handshake exchanges protocol versions with the server and returns the
// version the server speaks
func (c *RPCClient) Handshake(ctx context.Context) (string, error) {
	payload, err := c.invokeRPCRequest(ctx, common.MsgTHandshake, common.ProtocolVersion, common.MsgTHandshake)
	if err != nil {
		return "", err
	}
	version, err := serializer.DeserializeAs[string](c.serializer, payload)
	if err != nil {
		return "", common.ToRemoteError(err)
	}
	return version, nil
}

// Service returns a handle bound to one lookup key
func (c *RPCClient) Service(lookup string) *Service {
	return &Service{client: c, lookup: lookup}
}

// Close closes the underlying transport
func (c *RPCClient) Close() error {
	return c.transport.Close()
}

// Service is a client side handle of a remote service
type Service struct {
	client *RPCClient
	lookup string
}

// Invoke calls a method of the service
func (s *Service) Invoke(ctx context.Context, method string, params ...any) (*common.ResponseProtocol, error) {
	return s.client.Invoke(ctx, s.lookup, method, params...)
}

// --------------------------------------------------------------------------
// Typed calls
// --------------------------------------------------------------------------

// Call invokes lookup.method and converts the result to R. Numbers are
// converted within range, lists and maps element wise.
func Call[R any](ctx context.Context, c *RPCClient, lookup, method string, params ...any) (R, error) {
	var zero R
	resp, err := c.Invoke(ctx, lookup, method, params...)
	if err != nil {
		return zero, err
	}

	target := reflect.TypeFor[R]()
	out, err := serializer.Coerce(resp.Result, target)
	if err != nil {
		return zero, common.ToRemoteError(errors.Wrapf(err, "result of %s.%s", lookup, method))
	}
	if out == nil {
		return zero, nil
	}
	dst := reflect.New(target).Elem()
	dst.Set(reflect.ValueOf(out))
	return dst.Interface().(R), nil
}
