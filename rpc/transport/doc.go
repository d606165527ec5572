// Package transport defines the carrier interfaces of the gaea RPC framework.
// A carrier moves opaque frames between client and server, it never looks into
// the payload. Decoding and dispatch happen in the server package.
//
// Key Components:
//
//   - Frame: message type plus payload bytes.
//
//   - IRPCServerTransport: accepts frames and hands them to a ServerHandleFunc.
//     Every inbound frame yields exactly one outbound frame.
//
//   - IRPCClientTransport: sends a frame and waits for the matching response.
//
// Implementations live in the subpackages base (framed streams), tcp, unix and http.
package transport
