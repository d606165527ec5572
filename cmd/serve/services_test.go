package serve

import (
	"context"
	"errors"
	"os"
	"reflect"
	"testing"

	"github.com/ValentinKolb/gaea/rpc/common"
	"github.com/ValentinKolb/gaea/rpc/serializer"
	"github.com/ValentinKolb/gaea/rpc/server"
	"github.com/ValentinKolb/gaea/rpc/transport"
)

func newDemoPipeline(t *testing.T) (*server.Pipeline, *serializer.Serializer) {
	t.Helper()
	reg := serializer.NewTypeRegistry()
	if err := common.RegisterProtocol(reg); err != nil {
		t.Fatalf("Failed to register protocol: %v", err)
	}
	if err := reg.Scan(false, Samples()...).Wait(); err != nil {
		t.Fatalf("Failed to scan samples: %v", err)
	}
	services := server.NewServices()
	if err := services.Register(demoServices()...); err != nil {
		t.Fatalf("Failed to register demo services: %v", err)
	}
	s := serializer.NewSerializer(reg)
	return server.NewPipeline(s, services), s
}

func dispatch(t *testing.T, p *server.Pipeline, s *serializer.Serializer, req *common.RequestProtocol) transport.Frame {
	t.Helper()
	payload, err := s.Serialize(req)
	if err != nil {
		t.Fatalf("Failed to encode request: %v", err)
	}
	return p.Dispatch(context.Background(), "test", transport.Frame{Type: common.MsgTRequest, Payload: payload})
}

func TestDemoServices(t *testing.T) {
	p, s := newDemoPipeline(t)

	tests := []struct {
		name   string
		req    *common.RequestProtocol
		result any
		out    []any
	}{
		{"Echo.say", common.NewRequest("Echo", "say", "hi"), "hi", nil},
		{"Echo.upper", common.NewRequest("Echo", "upper", "gaea"), "GAEA", nil},
		{"Math.add", common.NewRequest("Math", "add", 1.5, 2.5), 4.0, nil},
		{"Math.mul with ints", common.NewRequest("Math", "mul", int64(3), int64(4)), 12.0, nil},
		{"Math.divmod", common.NewRequest("Math", "divmod", int64(7), int64(2)), int64(3), []any{int64(1)}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			f := dispatch(t, p, s, tc.req)
			if f.Type != common.MsgTResponse {
				t.Fatalf("Expected response frame, got %s", f.Type)
			}
			resp, err := serializer.DeserializeAs[*common.ResponseProtocol](s, f.Payload)
			if err != nil {
				t.Fatalf("Failed to decode response: %v", err)
			}
			if !reflect.DeepEqual(resp.Result, tc.result) {
				t.Errorf("Expected result %#v, got %#v", tc.result, resp.Result)
			}
			if len(resp.OutPara) != len(tc.out) || (len(tc.out) > 0 && !reflect.DeepEqual(resp.OutPara, tc.out)) {
				t.Errorf("Expected out params %#v, got %#v", tc.out, resp.OutPara)
			}
		})
	}
}

func TestDemoServerInfo(t *testing.T) {
	p, s := newDemoPipeline(t)

	f := dispatch(t, p, s, common.NewRequest("Echo", "info"))
	if f.Type != common.MsgTResponse {
		t.Fatalf("Expected response frame, got %s", f.Type)
	}
	resp, err := serializer.DeserializeAs[*common.ResponseProtocol](s, f.Payload)
	if err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}

	info, ok := resp.Result.(*ServerInfo)
	if !ok {
		t.Fatalf("Expected *ServerInfo, got %T", resp.Result)
	}
	if info.PID != int32(os.Getpid()) {
		t.Errorf("Expected pid %d, got %d", os.Getpid(), info.PID)
	}
	if info.Started.UnixMilli() != started.UnixMilli() {
		t.Errorf("Expected start time %v, got %v", started, info.Started)
	}
}

func TestDemoDivisionByZero(t *testing.T) {
	p, s := newDemoPipeline(t)

	f := dispatch(t, p, s, common.NewRequest("Math", "divmod", int64(1), int64(0)))
	if f.Type != common.MsgTException {
		t.Fatalf("Expected exception frame, got %s", f.Type)
	}
	exc, err := serializer.DeserializeAs[*common.ExceptionProtocol](s, f.Payload)
	if err != nil {
		t.Fatalf("Failed to decode exception: %v", err)
	}
	remote := exc.RemoteError()
	if remote.Kind != common.ErrKindService {
		t.Errorf("Expected kind %s, got %s", common.ErrKindService, remote.Kind)
	}
	if !errors.Is(remote, common.NewServiceError("")) {
		t.Errorf("Expected a service error, got %v", remote)
	}
}
