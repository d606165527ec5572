package server

import (
	"github.com/ValentinKolb/gaea/rpc/common"
	"github.com/ValentinKolb/gaea/rpc/serializer"
)

// HandshakeFilter answers handshake frames with the server protocol version.
// Clients send their version, a mismatch is a protocol error. Other frames pass.
func HandshakeFilter(s serializer.IRPCSerializer) IFilter {
	return NewFilter("handshake", FilterAll, func(rc *RequestContext) error {
		if rc.MsgType != common.MsgTHandshake {
			return nil
		}
		rc.DoInvoke = false

		version, err := serializer.DeserializeAs[string](s, rc.Payload)
		if err != nil {
			return err
		}
		if version != common.ProtocolVersion {
			return common.NewProtocolError("unsupported protocol version %q, server speaks %q", version, common.ProtocolVersion)
		}

		rc.Result = common.ProtocolVersion
		rc.ReplyType = common.MsgTHandshake
		return nil
	})
}

// AccessLogFilter logs every call with its outcome and duration at debug level
func AccessLogFilter() IFilter {
	return NewFilter("access-log", FilterResponseOnly, func(rc *RequestContext) error {
		if rc.Failed() {
			Logger.Debugf("%s %s %s.%s => %s error (%s): %s", rc.Remote, rc.MsgType, rc.Lookup, rc.Method,
				rc.Err.Kind, rc.Elapsed(), rc.Err.Message)
			return nil
		}
		Logger.Debugf("%s %s %s.%s => ok (%s)", rc.Remote, rc.MsgType, rc.Lookup, rc.Method, rc.Elapsed())
		return nil
	})
}
