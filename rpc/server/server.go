package server

import (
	"context"
	"net/http"
	"os/signal"
	"runtime"
	"sync"
	"syscall"
	"time"

	"github.com/ValentinKolb/gaea/rpc/common"
	"github.com/ValentinKolb/gaea/rpc/serializer"
	"github.com/ValentinKolb/gaea/rpc/transport"
	"github.com/lni/dragonboat/v4/logger"
	"github.com/pkg/errors"
	"github.com/sourcegraph/conc"
)

var Logger = logger.GetLogger("server")

// Option configures an RPCServer
type Option func(s *RPCServer)

// WithStats records codec statistics in stats. They are logged every
// StatsIntervalSecond and served by the admin endpoint.
func WithStats(stats *serializer.Stats) Option {
	return func(s *RPCServer) { s.stats = stats }
}

// WithScanSamples registers the types of the samples at startup according to
// the configured scan mode
func WithScanSamples(samples ...any) Option {
	return func(s *RPCServer) { s.samples = append(s.samples, samples...) }
}

// WithPipelineOptions passes additional filters to the dispatch pipeline. They
// run after the built-in filters of their phase.
func WithPipelineOptions(opts ...PipelineOption) Option {
	return func(s *RPCServer) { s.pipelineOpts = append(s.pipelineOpts, opts...) }
}

// RPCServer binds a transport to the dispatch pipeline
type RPCServer struct {
	config     common.ServerConfig
	transport  transport.IRPCServerTransport
	serializer *serializer.Serializer
	services   *Services
	pipeline   *Pipeline
	metrics    *DispatchMetrics

	stats        *serializer.Stats
	samples      []any
	pipelineOpts []PipelineOption

	mu     sync.Mutex
	admin  *http.Server
	cancel context.CancelFunc
	bg     conc.WaitGroup
}

// NewRPCServer creates a new RPC server
// It takes a config, transport, serializer and the services to dispatch to.
//
// Usage:
//
//	services := server.NewServices()
//	_ = services.Register(echoService)
//
//	s, err := server.NewRPCServer(
//		*config,
//		tcp.NewTCPServerTransport(),
//		serializer.NewSerializer(serializer.NewTypeRegistry()),
//		services,
//	)
//	if err != nil {
//		panic(err)
//	}
//	if err := s.Serve(); err != nil {
//		panic(err)
//	}
func NewRPCServer(
	config common.ServerConfig,
	transport transport.IRPCServerTransport,
	s *serializer.Serializer,
	services *Services,
	opts ...Option,
) (*RPCServer, error) {
	// https://github.com/golang/go/issues/17393
	if runtime.GOOS == "darwin" {
		signal.Ignore(syscall.Signal(0xd))
	}

	if err := common.RegisterProtocol(s.Registry()); err != nil {
		return nil, errors.Wrap(err, "register protocol types")
	}

	srv := &RPCServer{
		config:     config,
		transport:  transport,
		serializer: s,
		services:   services,
		metrics:    NewDispatchMetrics(),
	}
	for _, opt := range opts {
		opt(srv)
	}

	pipelineOpts := []PipelineOption{
		WithTimeout(time.Duration(config.TimeoutSecond) * time.Second),
		WithConnectionFilters(HandshakeFilter(s)),
		WithResponseFilters(AccessLogFilter(), MetricsFilter(srv.metrics)),
	}
	srv.pipeline = NewPipeline(s, services, append(pipelineOpts, srv.pipelineOpts...)...)
	transport.RegisterHandler(srv.pipeline.Dispatch)

	Logger.Infof("Created RPC Server with services %v", services.Names())
	Logger.Infof(config.String())

	return srv, nil
}

// Pipeline returns the dispatch pipeline of the server
func (s *RPCServer) Pipeline() *Pipeline { return s.pipeline }

// Metrics returns the dispatch metrics of the server
func (s *RPCServer) Metrics() *DispatchMetrics { return s.metrics }

// Serve runs the type scan, starts the background jobs and blocks in the
// transport until Close is called
func (s *RPCServer) Serve() error {
	if err := s.scan(); err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	s.mu.Lock()
	s.cancel = cancel
	s.mu.Unlock()
	defer cancel()

	if s.stats != nil && s.config.StatsIntervalSecond > 0 {
		s.bg.Go(func() {
			s.stats.Monitor(ctx, time.Duration(s.config.StatsIntervalSecond)*time.Second, serializer.Logger)
		})
	}

	if s.config.AdminEndpoint != "" {
		if err := s.startAdmin(); err != nil {
			return err
		}
	}

	return s.transport.Listen(s.config)
}

// Close stops the transport, the admin endpoint and the background jobs
func (s *RPCServer) Close() error {
	s.mu.Lock()
	if s.cancel != nil {
		s.cancel()
	}
	admin := s.admin
	s.admin = nil
	s.mu.Unlock()

	var adminErr error
	if admin != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		adminErr = admin.Shutdown(ctx)
		cancel()
	}

	err := s.transport.Close()
	s.bg.Wait()
	if err != nil {
		return err
	}
	return adminErr
}

func (s *RPCServer) scan() error {
	if len(s.samples) == 0 || s.config.ScanMode == common.ScanModeOff || s.config.ScanMode == "" {
		return nil
	}

	task := s.serializer.Registry().Scan(s.config.ScanMode == common.ScanModeAsync, s.samples...)
	if s.config.ScanMode == common.ScanModeSync {
		return errors.Wrap(task.Wait(), "type scan")
	}

	s.bg.Go(func() {
		if err := task.Wait(); err != nil {
			Logger.Warningf("type scan failed: %v", err)
		}
	})
	return nil
}

func (s *RPCServer) startAdmin() error {
	handler, err := NewAdminHandler(s.services, s.serializer.Registry(), s.stats, s.metrics)
	if err != nil {
		return err
	}

	admin := &http.Server{
		Addr:              s.config.AdminEndpoint,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}
	s.mu.Lock()
	s.admin = admin
	s.mu.Unlock()

	s.bg.Go(func() {
		Logger.Infof("Admin endpoint listening on %s", admin.Addr)
		if err := admin.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			Logger.Errorf("admin endpoint failed: %v", err)
		}
	})
	return nil
}
