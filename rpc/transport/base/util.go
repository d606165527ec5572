package base

import (
	"encoding/binary"
	"fmt"
	"io"
	"net"

	"github.com/ValentinKolb/gaea/rpc/common"
)

const (
	headerSize = 13
	// maxPayloadSize bounds a single frame, larger length fields are treated as corrupt
	maxPayloadSize = 64 << 20
)

// writeFrame writes a frame to the connection with the format:
// - 1 byte: message type
// - 8 bytes: requestID (uint64, big endian)
// - 4 bytes: data length (uint32, big endian)
// - N bytes: data payload
func writeFrame(conn net.Conn, msgType common.MessageType, requestID uint64, data []byte) error {
	if len(data) > maxPayloadSize {
		return fmt.Errorf("payload of %d bytes exceeds the frame limit of %d", len(data), maxPayloadSize)
	}

	header := make([]byte, headerSize)
	header[0] = byte(msgType)
	binary.BigEndian.PutUint64(header[1:9], requestID)
	binary.BigEndian.PutUint32(header[9:13], uint32(len(data)))

	b := net.Buffers{header, data}
	_, err := b.WriteTo(conn)
	return err
}

// readFrame reads a frame from the connection using the provided buffer
// If the buffer is too small, it will allocate a new temporary buffer for the data
func readFrame(conn io.Reader, buf []byte) (common.MessageType, uint64, []byte, error) {
	var header [headerSize]byte
	if _, err := io.ReadFull(conn, header[:]); err != nil {
		return common.MsgTUnknown, 0, nil, err
	}

	msgType := common.MessageType(header[0])
	requestID := binary.BigEndian.Uint64(header[1:9])
	contentLength := binary.BigEndian.Uint32(header[9:13])

	if contentLength > maxPayloadSize {
		return msgType, requestID, nil, fmt.Errorf("frame of %d bytes exceeds the frame limit of %d", contentLength, maxPayloadSize)
	}

	// If no data, return empty slice
	if contentLength == 0 {
		return msgType, requestID, []byte{}, nil
	}

	// Check if buffer is large enough for data
	if len(buf) < int(contentLength) {
		buf = make([]byte, contentLength)
	}

	if _, err := io.ReadFull(conn, buf[:contentLength]); err != nil {
		return msgType, requestID, nil, err
	}

	return msgType, requestID, buf[:contentLength], nil
}
