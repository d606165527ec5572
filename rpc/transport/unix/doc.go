// Package unix implements a carrier over Unix domain sockets for processes on the
// same machine. It reuses the framed stream transport of package base, only the
// listener and dialer differ.
//
// The server removes a stale socket file at the configured path before listening.
package unix
