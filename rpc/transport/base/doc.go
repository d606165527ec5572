// Package base provides the framed stream carrier shared by the tcp and unix
// transports. It is independent of the network protocol, connectors supply the
// listener and dialer.
//
// Frame layout:
//
//	[msgType u8][requestID u64 BE][length u32 BE][payload]
//
// Key Components:
//
//   - IClientConnector/IServerConnector: protocol specific dial, listen and socket
//     options.
//
//   - clientTransport: keeps several connections per endpoint with round-robin
//     selection. Responses are matched to waiting calls by request id, so many
//     calls share one connection. Failed sends are retried with exponential
//     backoff, a broken connection fails its pending calls and is redialed.
//
//   - serverTransport: one goroutine per connection reads frames, a bounded
//     number of workers per connection runs the handler. Writes are serialized
//     per connection, read buffers come from a sync.Pool.
//
// Thread Safety:
//
//	All public methods are thread-safe.
package base
