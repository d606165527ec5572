// Package rpc provides the Gaea remote procedure call framework: a compact
// binary object codec and a server pipeline that dispatches decoded calls to
// registered services.
//
// The package is organized into several subpackages:
//
//   - common: Protocol envelopes (request, response, exception), error kinds,
//     configuration structures and logging.
//
//   - serializer: The type-tagged binary codec, the type registry with its
//     startup scan, field hashing and codec statistics.
//
//   - transport: Network communication abstractions with pluggable implementations
//     (TCP, Unix sockets, HTTP) carrying length-prefixed frames.
//
//   - server: Service registration, method binding, the filter pipeline, dispatch
//     metrics and the JSON-RPC admin endpoint.
//
//   - client: A client invoking remote methods and a client for the admin endpoint.
package rpc
