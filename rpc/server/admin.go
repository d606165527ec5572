package server

import (
	"net/http"

	"github.com/ValentinKolb/gaea/rpc/serializer"
	"github.com/VictoriaMetrics/metrics"
	"github.com/gorilla/rpc/v2"
	"github.com/gorilla/rpc/v2/json2"
	"github.com/pkg/errors"
)

// --------------------------------------------------------------------------
// JSON-RPC admin service
// --------------------------------------------------------------------------

// AdminService is the JSON-RPC 2.0 service "Admin" of the admin endpoint
type AdminService struct {
	services *Services
	registry *serializer.TypeRegistry
	stats    *serializer.Stats
}

type ListServicesArgs struct{}

type ServiceInfo struct {
	Lookup  string   `json:"lookup"`
	Methods []string `json:"methods"`
}

type ListServicesReply struct {
	Services []ServiceInfo `json:"services"`
}

// ListServices returns every registered service with its methods
func (a *AdminService) ListServices(_ *http.Request, _ *ListServicesArgs, reply *ListServicesReply) error {
	for _, name := range a.services.Names() {
		svc, ok := a.services.Get(name)
		if !ok {
			continue
		}
		reply.Services = append(reply.Services, ServiceInfo{Lookup: name, Methods: svc.Methods()})
	}
	return nil
}

type DescribeTypeArgs struct {
	// Name is the registered type name, ID is used when Name is empty
	Name string `json:"name"`
	ID   int32  `json:"id"`
}

type FieldInfo struct {
	Name string `json:"name"`
	Hash int32  `json:"hash"`
	Type string `json:"type"`
}

type DescribeTypeReply struct {
	ID          int32       `json:"id"`
	Name        string      `json:"name"`
	Kind        string      `json:"kind"`
	GoType      string      `json:"goType"`
	Fields      []FieldInfo `json:"fields,omitempty"`
	Fingerprint uint32      `json:"fingerprint,omitempty"`
}

// DescribeType returns a registered type and, for structs, its wire schema
func (a *AdminService) DescribeType(_ *http.Request, args *DescribeTypeArgs, reply *DescribeTypeReply) error {
	id := args.ID
	if args.Name != "" {
		id = serializer.HashCode(args.Name)
	}
	e, ok := a.registry.Lookup(id)
	if !ok {
		return errors.Wrapf(serializer.ErrClassNotFound, "type id %d", id)
	}

	reply.ID, reply.Name, reply.Kind = e.ID, e.Name, e.Kind.String()
	if e.Type != nil {
		reply.GoType = e.Type.String()
	}
	if e.Kind == serializer.KindComposite {
		schema := a.registry.SchemaOf(e)
		for _, f := range schema.Fields {
			reply.Fields = append(reply.Fields, FieldInfo{Name: f.Name, Hash: f.Hash, Type: f.Type.String()})
		}
		reply.Fingerprint = schema.Fingerprint()
	}
	return nil
}

type StatsArgs struct{}

type StatsReply struct {
	Codec    map[string]int64 `json:"codec"`
	Services int              `json:"services"`
	Types    int              `json:"types"`
}

// Stats returns the codec statistics and registry sizes
func (a *AdminService) Stats(_ *http.Request, _ *StatsArgs, reply *StatsReply) error {
	reply.Codec = a.stats.Snapshot()
	reply.Services = len(a.services.Names())
	reply.Types = a.registry.Len()
	return nil
}

// --------------------------------------------------------------------------
// Admin HTTP handler
// --------------------------------------------------------------------------

// NewAdminHandler serves /admin (JSON-RPC 2.0, service "Admin") and /metrics
// (Prometheus text of the dispatch metrics and the process).
func NewAdminHandler(services *Services, registry *serializer.TypeRegistry, stats *serializer.Stats, dm *DispatchMetrics) (http.Handler, error) {
	rpcServer := rpc.NewServer()
	rpcServer.RegisterCodec(json2.NewCodec(), "application/json")
	if err := rpcServer.RegisterService(&AdminService{services: services, registry: registry, stats: stats}, "Admin"); err != nil {
		return nil, errors.Wrap(err, "register admin service")
	}

	mux := http.NewServeMux()
	mux.Handle("/admin", rpcServer)
	mux.HandleFunc("/metrics", func(w http.ResponseWriter, _ *http.Request) {
		if dm != nil {
			dm.WritePrometheus(w)
		}
		metrics.WriteProcessMetrics(w)
	})
	return mux, nil
}
