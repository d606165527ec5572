package client

import (
	"context"
	"net/http/httptest"
	"testing"

	"github.com/ValentinKolb/gaea/rpc/common"
	"github.com/ValentinKolb/gaea/rpc/serializer"
	"github.com/ValentinKolb/gaea/rpc/server"
)

func TestAdminClient(t *testing.T) {
	reg := serializer.NewTypeRegistry()
	if err := common.RegisterProtocol(reg); err != nil {
		t.Fatalf("Failed to register protocol: %v", err)
	}
	services := server.NewServices()
	if err := services.Register(mathService()); err != nil {
		t.Fatalf("Failed to register service: %v", err)
	}
	handler, err := server.NewAdminHandler(services, reg, serializer.NewStats(reg), server.NewDispatchMetrics())
	if err != nil {
		t.Fatalf("Failed to create admin handler: %v", err)
	}
	ts := httptest.NewServer(handler)
	defer ts.Close()

	admin, err := NewAdminClient(ts.URL)
	if err != nil {
		t.Fatalf("Failed to create admin client: %v", err)
	}
	ctx := context.Background()

	t.Run("ListServices", func(t *testing.T) {
		infos, err := admin.ListServices(ctx)
		if err != nil {
			t.Fatalf("ListServices failed: %v", err)
		}
		if len(infos) != 1 || infos[0].Lookup != "Math" || len(infos[0].Methods) != 4 {
			t.Errorf("Expected Math with 4 methods, got %+v", infos)
		}
	})

	t.Run("DescribeType", func(t *testing.T) {
		info, err := admin.DescribeType(ctx, "ExceptionProtocol", 0)
		if err != nil {
			t.Fatalf("DescribeType failed: %v", err)
		}
		if info.ID != -1300746967 || len(info.Fields) != 6 {
			t.Errorf("Expected ExceptionProtocol with 6 fields, got %+v", info)
		}

		if _, err := admin.DescribeType(ctx, "Missing", 0); err == nil {
			t.Errorf("Expected error for unknown type")
		}
	})

	t.Run("Stats", func(t *testing.T) {
		stats, err := admin.Stats(ctx)
		if err != nil {
			t.Fatalf("Stats failed: %v", err)
		}
		if stats.Services != 1 || stats.Types != reg.Len() {
			t.Errorf("Expected 1 service and %d types, got %+v", reg.Len(), stats)
		}
	})
}
