// Package cmd implements the command-line interface of the Gaea RPC framework.
// It provides a hierarchical command structure for running a server with the
// demo services and for calling and inspecting it as a client.
//
// The package is organized into several subpackages:
//
//   - serve: Commands for starting and configuring a Gaea server
//   - call: Commands for invoking methods (call, handshake, perf)
//   - admin: Commands for the JSON-RPC admin endpoint (services, type, stats)
//   - util: Shared utilities for command-line processing and configuration (internal use)
//
// See gaea -help for a list of all commands.
package cmd
