package common

import (
	"fmt"
	"strconv"
	"strings"
)

// --------------------------------------------------------------------------
// Shared socket settings
// --------------------------------------------------------------------------

// SocketConf holds buffer settings applied to every stream socket
type SocketConf struct {
	WriteBufferSize int
	ReadBufferSize  int
}

// TCPConf holds settings that only apply to TCP connections.
// A negative TCPLingerSec keeps the OS default.
type TCPConf struct {
	TCPNoDelay      bool
	TCPKeepAliveSec int
	TCPLingerSec    int
}

// --------------------------------------------------------------------------
// RPC server configuration struct
// --------------------------------------------------------------------------

// ScanMode controls if and how registered sample types are walked at startup
type ScanMode string

const (
	ScanModeOff   ScanMode = "off"
	ScanModeSync  ScanMode = "sync"
	ScanModeAsync ScanMode = "async"
)

// ParseScanMode accepts off, sync and async (case-insensitive), empty means off
func ParseScanMode(s string) (ScanMode, error) {
	switch ScanMode(strings.ToLower(s)) {
	case ScanModeOff, "":
		return ScanModeOff, nil
	case ScanModeSync:
		return ScanModeSync, nil
	case ScanModeAsync:
		return ScanModeAsync, nil
	default:
		return ScanModeOff, fmt.Errorf("invalid scan mode: %s. must be one of off, sync, async", s)
	}
}

// ServerTransportConfig holds the settings of the server transport layer
type ServerTransportConfig struct {
	Endpoint string
	// WorkersPerConn limits concurrent requests per connection, at least one
	WorkersPerConn int
	// BufferSize is the size of the pooled read buffers
	BufferSize int
	SocketConf
	TCPConf
}

// ServerConfig holds all configuration parameters of an RPC server
type ServerConfig struct {
	Transport ServerTransportConfig

	// request timeout applied to socket reads and writes and to method calls
	TimeoutSecond int64

	// Logging configuration
	LogLevel string

	// Serializer settings
	TextEncoding string
	ScanMode     ScanMode

	// Admin endpoint (metrics and json-rpc), disabled when empty
	AdminEndpoint string

	// StatsIntervalSecond is the period of the codec stats log, disabled when 0
	StatsIntervalSecond int
}

// DefaultServerConfig returns a config with sensible defaults
func DefaultServerConfig() ServerConfig {
	return ServerConfig{
		Transport: ServerTransportConfig{
			Endpoint:       "localhost:8080",
			WorkersPerConn: 100,
			BufferSize:     512 * 1024,
			TCPConf:        TCPConf{TCPNoDelay: true, TCPKeepAliveSec: 30, TCPLingerSec: -1},
		},
		TimeoutSecond:       5,
		LogLevel:            "info",
		TextEncoding:        "utf-8",
		ScanMode:            ScanModeOff,
		StatsIntervalSecond: 30,
	}
}

// String returns a formatted string representation of the configuration
func (c *ServerConfig) String() string {
	var sb strings.Builder

	// Create helper functions for consistent formatting
	addSection := func(title string) {
		sb.WriteString("\n")
		sb.WriteString(fmt.Sprintf("%s\n", strings.ToUpper(title)))
	}

	addField := func(name, value string) {
		sb.WriteString(fmt.Sprintf("  %-22s: %s\n", name, value))
	}

	// RPC settings
	addSection("RPC Server")
	addField("Endpoint", c.Transport.Endpoint)
	addField("Timeout", fmt.Sprintf("%d sec", c.TimeoutSecond))
	addField("Workers Per Conn", strconv.Itoa(c.Transport.WorkersPerConn))
	addField("Buffer Size", fmt.Sprintf("%d bytes", c.Transport.BufferSize))

	addSection("Socket")
	addField("TCP No Delay", strconv.FormatBool(c.Transport.TCPNoDelay))
	addField("TCP Keep Alive", fmt.Sprintf("%d sec", c.Transport.TCPKeepAliveSec))
	addField("TCP Linger", fmt.Sprintf("%d sec", c.Transport.TCPLingerSec))
	addField("Write Buffer", fmt.Sprintf("%d bytes", c.Transport.WriteBufferSize))
	addField("Read Buffer", fmt.Sprintf("%d bytes", c.Transport.ReadBufferSize))

	// Serializer
	addSection("Serializer")
	addField("Text Encoding", c.TextEncoding)
	addField("Scan Mode", string(c.ScanMode))

	// Admin
	addSection("Admin")
	if c.AdminEndpoint == "" {
		addField("Endpoint", "disabled")
	} else {
		addField("Endpoint", c.AdminEndpoint)
	}
	addField("Stats Interval", fmt.Sprintf("%d sec", c.StatsIntervalSecond))

	// Logging configuration
	addSection("Logging")
	addField("Log Level", c.LogLevel)

	return sb.String()
}

// --------------------------------------------------------------------------
// RPC client configuration struct
// --------------------------------------------------------------------------

// ClientTransportConfig holds the settings of the client transport layer
type ClientTransportConfig struct {
	Endpoints              []string
	RetryCount             int
	ConnectionsPerEndpoint int
	SocketConf
	TCPConf
}

// ClientConfig holds all configuration parameters of an RPC client
type ClientConfig struct {
	TimeoutSecond int
	TextEncoding  string
	Transport     ClientTransportConfig
}

// String returns a formatted string representation of the client configuration
func (c *ClientConfig) String() string {
	var sb strings.Builder

	// Create helper functions for consistent formatting
	addSection := func(title string) {
		sb.WriteString("\n")
		sb.WriteString(fmt.Sprintf("%s\n", strings.ToUpper(title)))
	}

	addField := func(name, value string) {
		sb.WriteString(fmt.Sprintf("  %-22s: %s\n", name, value))
	}

	// General Client Settings
	addSection("Client Configuration")
	addField("Timeout", fmt.Sprintf("%d sec", c.TimeoutSecond))
	addField("Retry Count", strconv.Itoa(c.Transport.RetryCount))
	addField("Connections Per Endpoint", strconv.Itoa(max(1, c.Transport.ConnectionsPerEndpoint)))
	addField("Text Encoding", c.TextEncoding)

	// Endpoints
	addSection("Endpoints")
	for i, endpoint := range c.Transport.Endpoints {
		addField(strconv.Itoa(i), endpoint)
	}

	return sb.String()
}
