package common

import (
	"encoding/json"
	"fmt"

	"github.com/ValentinKolb/gaea/rpc/serializer"
)

// ProtocolVersion is exchanged in handshake frames
const ProtocolVersion = "gaea/1"

// --------------------------------------------------------------------------
// Protocol envelopes
// --------------------------------------------------------------------------

// RequestProtocol is the payload of a request frame. Parameters are positional,
// the key of each pair carries the declared parameter type name (may be nil).
type RequestProtocol struct {
	Lookup     string
	MethodName string
	ParaKVList []serializer.KeyValuePair
}

// NewRequest creates a request with the given positional parameters
func NewRequest(lookup, method string, params ...any) *RequestProtocol {
	kv := make([]serializer.KeyValuePair, len(params))
	for i, p := range params {
		kv[i] = serializer.KeyValuePair{Value: p}
	}
	return &RequestProtocol{Lookup: lookup, MethodName: method, ParaKVList: kv}
}

// Params returns the parameter values in order
func (r *RequestProtocol) Params() []any {
	params := make([]any, len(r.ParaKVList))
	for i, kv := range r.ParaKVList {
		params[i] = kv.Value
	}
	return params
}

// ResponseProtocol is the payload of a successful response frame
type ResponseProtocol struct {
	Result  any
	OutPara []any
}

// ExceptionProtocol is the payload of an exception frame
type ExceptionProtocol struct {
	ErrorCode  int32
	ErrorMsg   string
	SubCode    int32
	SubMsg     string
	Lookup     string
	MethodName string
}

// NewExceptionProtocol converts a RemoteError into its wire form
func NewExceptionProtocol(err *RemoteError) *ExceptionProtocol {
	return &ExceptionProtocol{
		ErrorCode:  int32(err.Kind),
		ErrorMsg:   err.Message,
		SubCode:    err.SubCode,
		SubMsg:     err.SubMessage,
		Lookup:     err.Lookup,
		MethodName: err.Method,
	}
}

// RemoteError converts the wire form back into a RemoteError.
// Codes outside the known set become ErrKindUnknown.
func (e *ExceptionProtocol) RemoteError() *RemoteError {
	kind := ErrorKind(e.ErrorCode)
	if kind < ErrKindUnknown || kind > ErrKindOutOfRange {
		kind = ErrKindUnknown
	}
	return &RemoteError{
		Kind:       kind,
		Message:    e.ErrorMsg,
		SubCode:    e.SubCode,
		SubMessage: e.SubMsg,
		Lookup:     e.Lookup,
		Method:     e.MethodName,
	}
}

// RegisterProtocol registers the envelope types. Both sides of a connection
// must call it on the registry their serializer uses.
func RegisterProtocol(reg *serializer.TypeRegistry) error {
	if _, err := serializer.Register(reg, serializer.Struct[RequestProtocol]("RequestProtocol",
		serializer.Member("Lookup", func(r *RequestProtocol) *string { return &r.Lookup }),
		serializer.Member("MethodName", func(r *RequestProtocol) *string { return &r.MethodName }),
		serializer.Member("ParaKVList", func(r *RequestProtocol) *[]serializer.KeyValuePair { return &r.ParaKVList }),
	)); err != nil {
		return err
	}

	if _, err := serializer.Register(reg, serializer.Struct[ResponseProtocol]("ResponseProtocol",
		serializer.Member("Result", func(r *ResponseProtocol) *any { return &r.Result }),
		serializer.Member("OutPara", func(r *ResponseProtocol) *[]any { return &r.OutPara }),
	)); err != nil {
		return err
	}

	_, err := serializer.Register(reg, serializer.Struct[ExceptionProtocol]("ExceptionProtocol",
		serializer.Member("ErrorCode", func(e *ExceptionProtocol) *int32 { return &e.ErrorCode }),
		serializer.Member("ErrorMsg", func(e *ExceptionProtocol) *string { return &e.ErrorMsg }),
		serializer.Member("SubCode", func(e *ExceptionProtocol) *int32 { return &e.SubCode }),
		serializer.Member("SubMsg", func(e *ExceptionProtocol) *string { return &e.SubMsg }),
		serializer.Member("Lookup", func(e *ExceptionProtocol) *string { return &e.Lookup }),
		serializer.Member("MethodName", func(e *ExceptionProtocol) *string { return &e.MethodName }),
	))
	return err
}

// --------------------------------------------------------------------------
// Message Type Definition
// --------------------------------------------------------------------------

// MessageType defines the type of frame used in RPC communication.
type MessageType uint8

// --------------------------------------------------------------------------
// Message Type Constants
// --------------------------------------------------------------------------

const (
	MsgTUnknown   MessageType = 0
	MsgTRequest   MessageType = 1 // RequestProtocol payload
	MsgTResponse  MessageType = 2 // ResponseProtocol payload
	MsgTException MessageType = 3 // ExceptionProtocol payload
	MsgTHandshake MessageType = 5 // ProtocolVersion as string payload
)

// String returns the string representation of a MessageType.
func (t MessageType) String() string {
	switch t {
	case MsgTRequest:
		return "request"
	case MsgTResponse:
		return "response"
	case MsgTException:
		return "exception"
	case MsgTHandshake:
		return "handshake"
	default:
		return "unknown"
	}
}

// ParseMessageType is the inverse of MessageType.String
func ParseMessageType(s string) (MessageType, error) {
	switch s {
	case "request":
		return MsgTRequest, nil
	case "response":
		return MsgTResponse, nil
	case "exception":
		return MsgTException, nil
	case "handshake":
		return MsgTHandshake, nil
	default:
		return MsgTUnknown, fmt.Errorf("unknown message type: %s", s)
	}
}

// MarshalJSON implements the json.Marshaller interface for MessageType.
// This allows MessageType to be serialized as a string in JSON.
func (t MessageType) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

// UnmarshalJSON implements the json.Unmarshaler interface for MessageType.
func (t *MessageType) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	mt, err := ParseMessageType(s)
	if err != nil {
		return err
	}
	*t = mt
	return nil
}
