// Package http implements an HTTP carrier for the gaea RPC framework.
//
// Every frame is a POST to /{msgType} (request, handshake) with the payload as
// body. The response body is the payload of the returned frame, its message type
// travels in the X-Gaea-Msg-Type header. Service routing stays in the payload,
// the path only names the frame type.
//
// Key Components:
//
//   - httpClientTransport: implements IRPCClientTransport with round-robin
//     selection across endpoints and retries per request.
//
//   - httpServerTransport: implements IRPCServerTransport. Handler exposes the
//     routing so it can be mounted in tests or next to other handlers.
//
// Thread Safety:
//
//	The client transport is safe for concurrent use once connected. It uses an
//	atomic counter for the round-robin selection.
package http
