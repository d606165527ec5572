package server

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ValentinKolb/gaea/rpc/common"
	"github.com/ValentinKolb/gaea/rpc/serializer"
	"github.com/ValentinKolb/gaea/rpc/transport"
)

// fakeTransport hands frames directly to the registered handler
type fakeTransport struct {
	handler   transport.ServerHandleFunc
	listening chan struct{}
	closed    chan struct{}
	once      sync.Once
}

func newFakeTransport() *fakeTransport {
	return &fakeTransport{listening: make(chan struct{}), closed: make(chan struct{})}
}

func (f *fakeTransport) RegisterHandler(h transport.ServerHandleFunc) { f.handler = h }

func (f *fakeTransport) Listen(common.ServerConfig) error {
	close(f.listening)
	<-f.closed
	return nil
}

func (f *fakeTransport) Close() error {
	f.once.Do(func() { close(f.closed) })
	return nil
}

type scanned struct {
	Name string `gaea:"name"`
}

func (*scanned) SerialName() string { return "Scanned" }

func TestRPCServer(t *testing.T) {
	var invoked atomic.Int32
	services := NewServices()
	if err := services.Register(echoService(&invoked)); err != nil {
		t.Fatalf("Failed to register service: %v", err)
	}

	config := common.DefaultServerConfig()
	config.ScanMode = common.ScanModeSync
	config.StatsIntervalSecond = 1

	reg := serializer.NewTypeRegistry()
	stats := serializer.NewStats(reg)
	s := serializer.NewSerializer(reg, serializer.WithStats(stats))
	ft := newFakeTransport()

	srv, err := NewRPCServer(config, ft, s, services, WithStats(stats), WithScanSamples(&scanned{}))
	if err != nil {
		t.Fatalf("Failed to create server: %v", err)
	}
	if ft.handler == nil {
		t.Fatalf("Expected server to register a transport handler")
	}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Serve() }()

	select {
	case <-ft.listening:
	case err := <-errCh:
		t.Fatalf("Serve failed: %v", err)
	case <-time.After(5 * time.Second):
		t.Fatalf("Server did not start listening")
	}

	t.Run("scan registered samples", func(t *testing.T) {
		if _, ok := reg.Lookup(serializer.HashCode("Scanned")); !ok {
			t.Errorf("Expected sample type to be registered before listening")
		}
	})

	t.Run("handshake filter installed", func(t *testing.T) {
		payload, _ := s.Serialize(common.ProtocolVersion)
		f := ft.handler(context.Background(), "test", transport.Frame{Type: common.MsgTHandshake, Payload: payload})
		if f.Type != common.MsgTHandshake {
			t.Errorf("Expected handshake frame, got %s", f.Type)
		}
	})

	t.Run("requests are dispatched and counted", func(t *testing.T) {
		payload, _ := s.Serialize(common.NewRequest("Echo", "say", "hi"))
		f := ft.handler(context.Background(), "test", transport.Frame{Type: common.MsgTRequest, Payload: payload})
		resp := decodeResponse(t, s, f)
		if resp.Result != "hi" {
			t.Errorf("Expected hi, got %#v", resp.Result)
		}
		if got := srv.Metrics().Requests("Echo", "say", "ok"); got != 1 {
			t.Errorf("Expected 1 counted request, got %d", got)
		}
		if stats.Snapshot()["serializer.bytes.in"] == 0 {
			t.Errorf("Expected codec stats to record decoded bytes")
		}
	})

	if err := srv.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	select {
	case err := <-errCh:
		if err != nil {
			t.Errorf("Serve returned error: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("Serve did not return after Close")
	}
}
