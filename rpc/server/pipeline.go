package server

import (
	"context"
	"runtime/debug"
	"time"

	"github.com/ValentinKolb/gaea/rpc/common"
	"github.com/ValentinKolb/gaea/rpc/serializer"
	"github.com/ValentinKolb/gaea/rpc/transport"
	"github.com/pkg/errors"
)

// PipelineOption configures a Pipeline
type PipelineOption func(p *Pipeline)

// WithConnectionFilters appends filters to the connection phase
func WithConnectionFilters(filters ...IFilter) PipelineOption {
	return func(p *Pipeline) { p.connFilters = append(p.connFilters, filters...) }
}

// WithRequestFilters appends filters to the request phase
func WithRequestFilters(filters ...IFilter) PipelineOption {
	return func(p *Pipeline) { p.reqFilters = append(p.reqFilters, filters...) }
}

// WithResponseFilters appends filters to the response phase
func WithResponseFilters(filters ...IFilter) PipelineOption {
	return func(p *Pipeline) { p.respFilters = append(p.respFilters, filters...) }
}

// WithTimeout sets the deadline of every call, zero disables it
func WithTimeout(d time.Duration) PipelineOption {
	return func(p *Pipeline) { p.timeout = d }
}

// Pipeline decodes inbound frames, runs the filter chains, invokes the method
// and encodes the response. It is safe for concurrent use, all per call state
// lives in the RequestContext.
type Pipeline struct {
	serializer  serializer.IRPCSerializer
	services    *Services
	connFilters []IFilter
	reqFilters  []IFilter
	respFilters []IFilter
	timeout     time.Duration
}

// NewPipeline creates a pipeline dispatching to services. The serializer must
// know the protocol envelopes (see common.RegisterProtocol).
func NewPipeline(s serializer.IRPCSerializer, services *Services, opts ...PipelineOption) *Pipeline {
	p := &Pipeline{serializer: s, services: services}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Dispatch handles one inbound frame and returns exactly one response frame.
// It matches transport.ServerHandleFunc.
func (p *Pipeline) Dispatch(ctx context.Context, remote string, req transport.Frame) transport.Frame {
	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	rc := newRequestContext(ctx, remote, req.Type, req.Payload)
	p.decode(rc)

	if !rc.Failed() {
		p.runPhase(phaseConnection, p.connFilters, rc)
	}
	if !rc.Failed() {
		p.runPhase(phaseRequest, p.reqFilters, rc)
	}

	if rc.DoInvoke && !rc.Failed() {
		p.invoke(rc)
	}

	p.runPhase(phaseResponse, p.respFilters, rc)

	return p.encode(rc)
}

// decode reads the request envelope of request frames. Handshake frames are
// left to the filters, everything else is a protocol error.
func (p *Pipeline) decode(rc *RequestContext) {
	switch rc.MsgType {
	case common.MsgTRequest:
		req, err := serializer.DeserializeAs[*common.RequestProtocol](p.serializer, rc.Payload)
		if err != nil {
			Logger.Debugf("Failed to decode request from %s: %+v", rc.Remote, err)
			rc.SetError(err)
			return
		}
		if req == nil {
			rc.SetError(common.NewProtocolError("empty request"))
			return
		}
		rc.Request = req
		rc.Lookup = req.Lookup
		rc.Method = req.MethodName
		rc.Params = req.Params()

	case common.MsgTHandshake:
		// answered by a filter, invoking would have nothing to call
		rc.DoInvoke = false

	default:
		rc.SetError(common.NewProtocolError("unexpected %s frame", rc.MsgType))
	}
}

// runPhase applies the filters of one phase in registration order. In the
// connection and request phase the first error ends the phase. Response filters
// all run, their errors are recorded only if the call has none yet.
func (p *Pipeline) runPhase(ph phase, filters []IFilter, rc *RequestContext) {
	for _, f := range filters {
		if !ph.runs(f.ExecType()) {
			continue
		}

		err := applyFilter(f, rc)
		if err == nil {
			continue
		}

		if ph == phaseResponse {
			Logger.Warningf("Response filter %s failed for %s.%s: %v", f.Name(), rc.Lookup, rc.Method, err)
			if !rc.Failed() {
				rc.SetError(err)
			}
			continue
		}

		Logger.Debugf("%s filter %s rejected %s.%s: %v", ph, f.Name(), rc.Lookup, rc.Method, err)
		rc.SetError(err)
		return
	}
}

// invoke resolves and calls the method. Panics of the handler are recovered and
// reported as service errors.
func (p *Pipeline) invoke(rc *RequestContext) {
	def, rerr := p.services.resolve(rc)
	if rerr != nil {
		rc.SetError(rerr)
		return
	}

	call := &Call{rc: rc, params: rc.Params}

	result, err := func() (result any, err error) {
		defer func() {
			if r := recover(); r != nil {
				Logger.Errorf("Method %s.%s panicked: %v\n%s", rc.Lookup, rc.Method, r, debug.Stack())
				err = common.NewServiceError("panic: %v", r)
			}
		}()
		return def.Handler(call)
	}()

	if err != nil {
		Logger.Debugf("Method %s.%s failed: %+v", rc.Lookup, rc.Method, err)
		rc.SetError(err)
		return
	}
	rc.Result = result
}

// encode builds the response frame. If the response cannot be encoded the
// encoding error is reported as an exception instead.
func (p *Pipeline) encode(rc *RequestContext) transport.Frame {
	if !rc.Failed() && rc.MsgType == common.MsgTHandshake && rc.ReplyType != common.MsgTHandshake {
		rc.SetError(common.NewProtocolError("handshake not supported"))
	}

	if !rc.Failed() {
		var (
			payload []byte
			err     error
			msgType = common.MsgTResponse
		)
		switch {
		case rc.ReplyType != common.MsgTUnknown && rc.ReplyType != common.MsgTResponse:
			msgType = rc.ReplyType
			payload, err = p.serializer.Serialize(rc.Result)
		default:
			payload, err = p.serializer.Serialize(&common.ResponseProtocol{Result: rc.Result, OutPara: rc.OutPara})
		}
		if err == nil {
			return transport.Frame{Type: msgType, Payload: payload}
		}

		Logger.Errorf("Failed to encode response of %s.%s: %+v", rc.Lookup, rc.Method, err)
		rc.SetError(errors.Wrap(err, "encode response"))
	}

	payload, err := p.serializer.Serialize(common.NewExceptionProtocol(rc.Err))
	if err != nil {
		// nothing left to report with, the caller gets an empty exception
		Logger.Errorf("Failed to encode exception of %s.%s: %v", rc.Lookup, rc.Method, err)
		payload = nil
	}
	return transport.Frame{Type: common.MsgTException, Payload: payload}
}
