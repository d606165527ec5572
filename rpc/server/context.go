package server

import (
	"context"
	"time"

	"github.com/ValentinKolb/gaea/rpc/common"
)

// RequestContext carries one in-flight call through the pipeline. It is created
// for every inbound frame, handed to every filter and the handler, and dropped
// once the response frame is built.
type RequestContext struct {
	ctx   context.Context
	start time.Time

	// Remote is the peer address reported by the transport
	Remote string
	// MsgType is the type of the inbound frame
	MsgType common.MessageType
	// Payload is the raw inbound payload
	Payload []byte

	// Request is the decoded request, nil for other frame types or when decoding failed
	Request *common.RequestProtocol
	Lookup  string
	Method  string
	Params  []any

	// DoInvoke is cleared by filters that answer the call themselves
	DoInvoke bool
	// Err is the first error recorded for this call
	Err *common.RemoteError

	Result  any
	OutPara []any
	// ReplyType overrides the response frame type, zero means response
	ReplyType common.MessageType

	annotations map[string]any
}

func newRequestContext(ctx context.Context, remote string, msgType common.MessageType, payload []byte) *RequestContext {
	return &RequestContext{
		ctx:      ctx,
		start:    time.Now(),
		Remote:   remote,
		MsgType:  msgType,
		Payload:  payload,
		DoInvoke: true,
	}
}

// Context returns the context of the call, it carries the call deadline
func (rc *RequestContext) Context() context.Context { return rc.ctx }

// Elapsed returns the time since the frame was received
func (rc *RequestContext) Elapsed() time.Duration { return time.Since(rc.start) }

// SetError records err as the error of the call and stops the invocation.
// The lookup and method of the call are attached when err does not name them.
func (rc *RequestContext) SetError(err error) {
	if err == nil {
		return
	}
	remote := common.ToRemoteError(err)
	if remote.Lookup == "" && remote.Method == "" {
		// copy, the error may be shared
		cp := *remote
		cp.Lookup, cp.Method = rc.Lookup, rc.Method
		remote = &cp
	}
	rc.Err = remote
	rc.DoInvoke = false
}

// Failed reports whether an error was recorded
func (rc *RequestContext) Failed() bool { return rc.Err != nil }

// Annotate attaches a value for later filters
func (rc *RequestContext) Annotate(key string, v any) {
	if rc.annotations == nil {
		rc.annotations = make(map[string]any)
	}
	rc.annotations[key] = v
}

// Annotation returns a value attached with Annotate
func (rc *RequestContext) Annotation(key string) (any, bool) {
	v, ok := rc.annotations[key]
	return v, ok
}
