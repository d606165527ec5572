// Package tcp implements the TCP carrier of the gaea RPC framework on top of the
// framed stream transport in package base.
//
// Key Components:
//
//   - clientConnector: dials TCP endpoints and applies SocketConf and TCPConf
//
//   - serverConnector: listens on a TCP endpoint and applies the same options to
//     accepted connections
package tcp
