// Package client implements the calling side of Gaea. An RPCClient wraps a
// client transport and a serializer, encodes RequestProtocol envelopes and turns
// the reply into a ResponseProtocol or a *common.RemoteError.
//
// Key Components:
//
//   - NewRPCClient: registers the protocol envelopes with the serializer and
//     connects the transport.
//
//   - RPCClient.Invoke: calls a method with positional parameters. Exception
//     replies keep the error kind, sub code and call site of the server.
//
//   - Call: typed variant of Invoke converting the result to the requested type.
//
//   - RPCClient.Handshake: exchanges the protocol version with the server.
//
// Usage Example:
//
//	config := common.ClientConfig{
//	  TimeoutSecond: 5,
//	  Transport: common.ClientTransportConfig{
//	    Endpoints:              []string{"localhost:8080"},
//	    RetryCount:             3,
//	    ConnectionsPerEndpoint: 1,
//	  },
//	}
//
//	c, err := client.NewRPCClient(config, tcp.NewTCPClientTransport(),
//	  serializer.NewSerializer(serializer.NewTypeRegistry()))
//	if err != nil {
//	  log.Fatalf("Failed to connect: %v", err)
//	}
//	defer c.Close()
//
//	greeting, err := client.Call[string](ctx, c, "Echo", "say", "hello")
//
// Error Handling:
//
//	Every error returned by Invoke, Call and Handshake is a *common.RemoteError.
//	Use errors.Is with a RemoteError of the wanted kind, or errors.As to read
//	the details. Transport failures are reported with ErrKindNet, expired
//	deadlines with ErrKindTimeout.
package client
