package common

import (
	"context"
	"fmt"

	"github.com/ValentinKolb/gaea/rpc/serializer"
	"github.com/pkg/errors"
)

// --------------------------------------------------------------------------
// Error kinds
// --------------------------------------------------------------------------

// ErrorKind is the closed set of failures reported across the wire
type ErrorKind int32

const (
	ErrKindUnknown ErrorKind = iota
	ErrKindDB
	ErrKindNet
	ErrKindTimeout
	ErrKindProtocol
	ErrKindJSON
	ErrKindParameterConversion
	ErrKindNotFoundMethod
	ErrKindNotFoundService
	ErrKindJSONSerialize
	ErrKindService
	ErrKindDataOverflow
	ErrKindOther
	ErrKindDisallowedSerialize
	ErrKindClassNotFound
	ErrKindClassNoMatch
	ErrKindOutOfRange
)

// String returns the string representation of an ErrorKind
func (k ErrorKind) String() string {
	switch k {
	case ErrKindDB:
		return "DB"
	case ErrKindNet:
		return "Net"
	case ErrKindTimeout:
		return "Timeout"
	case ErrKindProtocol:
		return "Protocol"
	case ErrKindJSON:
		return "JSON"
	case ErrKindParameterConversion:
		return "ParameterConversion"
	case ErrKindNotFoundMethod:
		return "NotFoundMethod"
	case ErrKindNotFoundService:
		return "NotFoundService"
	case ErrKindJSONSerialize:
		return "JSONSerialize"
	case ErrKindService:
		return "Service"
	case ErrKindDataOverflow:
		return "DataOverflow"
	case ErrKindOther:
		return "Other"
	case ErrKindDisallowedSerialize:
		return "DisallowedSerialize"
	case ErrKindClassNotFound:
		return "ClassNotFound"
	case ErrKindClassNoMatch:
		return "ClassNoMatch"
	case ErrKindOutOfRange:
		return "OutOfRange"
	default:
		return "Unknown"
	}
}

// --------------------------------------------------------------------------
// Remote error
// --------------------------------------------------------------------------

// RemoteError is an error that is reported to the caller of a remote method.
// Stack traces stay on the server, only kind and messages travel.
type RemoteError struct {
	Kind       ErrorKind
	Message    string
	SubCode    int32
	SubMessage string
	Lookup     string
	Method     string
}

func (e *RemoteError) Error() string {
	msg := fmt.Sprintf("%s error", e.Kind)
	if e.Lookup != "" || e.Method != "" {
		msg += fmt.Sprintf(" in %s.%s", e.Lookup, e.Method)
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.SubCode != 0 || e.SubMessage != "" {
		msg += fmt.Sprintf(" (sub %d: %s)", e.SubCode, e.SubMessage)
	}
	return msg
}

// Is matches another *RemoteError of the same kind, so errors.Is(err,
// &RemoteError{Kind: ErrKindNotFoundMethod}) tests for a kind.
func (e *RemoteError) Is(target error) bool {
	t, ok := target.(*RemoteError)
	return ok && t.Kind == e.Kind
}

// NewRemoteError creates a RemoteError of the given kind
func NewRemoteError(kind ErrorKind, format string, args ...any) *RemoteError {
	return &RemoteError{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// WithSubError attaches an application defined sub code and message
func (e *RemoteError) WithSubError(code int32, msg string) *RemoteError {
	e.SubCode = code
	e.SubMessage = msg
	return e
}

// Constructors for the kinds service implementations commonly return

func NewDBError(format string, args ...any) *RemoteError {
	return NewRemoteError(ErrKindDB, format, args...)
}

func NewNetError(format string, args ...any) *RemoteError {
	return NewRemoteError(ErrKindNet, format, args...)
}

func NewTimeoutError(format string, args ...any) *RemoteError {
	return NewRemoteError(ErrKindTimeout, format, args...)
}

func NewProtocolError(format string, args ...any) *RemoteError {
	return NewRemoteError(ErrKindProtocol, format, args...)
}

func NewServiceError(format string, args ...any) *RemoteError {
	return NewRemoteError(ErrKindService, format, args...)
}

// ToRemoteError classifies any error into a RemoteError. Codec errors keep their
// kind, context deadlines become timeouts, everything else is a service error.
func ToRemoteError(err error) *RemoteError {
	if err == nil {
		return nil
	}

	var remote *RemoteError
	if errors.As(err, &remote) {
		return remote
	}

	kind := ErrKindService
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		kind = ErrKindTimeout
	case errors.Is(err, context.Canceled):
		kind = ErrKindOther
	case errors.Is(err, serializer.ErrDisallowedSerialize):
		kind = ErrKindDisallowedSerialize
	case errors.Is(err, serializer.ErrClassNotFound):
		kind = ErrKindClassNotFound
	case errors.Is(err, serializer.ErrClassNoMatch):
		kind = ErrKindClassNoMatch
	case errors.Is(err, serializer.ErrOutOfRange):
		kind = ErrKindOutOfRange
	case errors.Is(err, serializer.ErrUnresolvedReference), errors.Is(err, serializer.ErrUnknownEnumName):
		kind = ErrKindProtocol
	case errors.Is(err, serializer.ErrAllocation):
		kind = ErrKindOther
	}

	return &RemoteError{Kind: kind, Message: err.Error()}
}
