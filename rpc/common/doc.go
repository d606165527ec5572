// Package common provides the types shared by the server, client and transport
// packages of the gaea RPC framework.
//
// The package focuses on:
//   - Protocol envelopes exchanged between client and server
//   - The closed error taxonomy reported across the wire
//   - Configuration structures for client and server components
//   - Logging integrated with the dragonboat logger facade
//
// Key Components:
//
//   - RequestProtocol, ResponseProtocol, ExceptionProtocol: payloads of request,
//     response and exception frames. RegisterProtocol adds them to a serializer
//     registry.
//
//   - MessageType: the kind of a frame (request, response, exception, handshake).
//
//   - ErrorKind and RemoteError: every failure a caller can observe. ToRemoteError
//     classifies arbitrary errors, codec errors keep their specific kind.
//
//   - ServerConfig, ClientConfig: transport, timeout, serializer and admin settings.
//
//   - Logger: CreateLogger is a dragonboat logger.Factory writing through zerolog.
//     InitLoggers installs it and sets the level of all package loggers.
package common
