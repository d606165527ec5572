// Package server implements the server side of Gaea: the service registry, the
// filter chains and the dispatch pipeline that turns an inbound frame into
// exactly one response frame.
//
// Key Components:
//
//   - Service / Services: named method tables. Methods are resolved by lookup
//     name, method name (case-insensitive) and number of parameters.
//
//   - IFilter: a hook running in the connection, request or response phase,
//     selected by its ExecFilterType. Connection and request filters can reject a
//     call or answer it themselves by clearing DoInvoke. Response filters always
//     run, also for failed calls.
//
//   - Pipeline: decode, connection filters, request filters, invoke, response
//     filters, encode. Every error on the way is reported to the caller as an
//     ExceptionProtocol carrying its ErrorKind.
//
//   - RPCServer: binds the pipeline to a transport, installs the handshake,
//     access log and metrics filters, and optionally serves the admin endpoint.
//
// Usage Example:
//
//	echo := server.NewService("Echo").Handle(
//	  server.Method1("say", func(ctx context.Context, s string) (string, error) {
//	    return s, nil
//	  }),
//	)
//
//	services := server.NewServices()
//	if err := services.Register(echo); err != nil {
//	  log.Fatal(err)
//	}
//
//	s, err := server.NewRPCServer(
//	  common.DefaultServerConfig(),
//	  tcp.NewTCPServerTransport(),
//	  serializer.NewSerializer(serializer.NewTypeRegistry()),
//	  services,
//	)
//	if err != nil {
//	  log.Fatal(err)
//	}
//	if err := s.Serve(); err != nil {
//	  log.Fatalf("Server error: %v", err)
//	}
//
// The admin endpoint (ServerConfig.AdminEndpoint) serves a JSON-RPC 2.0 service
// "Admin" under /admin with the methods ListServices, DescribeType and Stats, and
// the dispatch metrics under /metrics.
//
// Thread Safety:
//
//	Services and the pipeline are safe for concurrent use. Services should be
//	registered before the server starts serving.
package server
