package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/Domenick1991/flightdesk/config"
	"github.com/Domenick1991/flightdesk/internal/logging"
	"github.com/Domenick1991/flightdesk/internal/metrics"
	"github.com/grpc-ecosystem/grpc-gateway/v2/runtime"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// DirectoryService is the health service name that tracks the flight
// directory. It reports NOT_SERVING while the last load failed.
const DirectoryService = "flightdesk.directory"

const shutdownTimeout = 5 * time.Second

// Catalog is the part of the flight directory the servers refresh.
type Catalog interface {
	Load(ctx context.Context) error
}

// DirectoryHealth publishes the directory state on the gRPC health service.
// It is a directory observer, so every stored load updates the status,
// including reloads triggered by admin writes.
type DirectoryHealth struct {
	server *health.Server
}

// NewDirectoryHealth starts out NOT_SERVING until the first load reports.
func NewDirectoryHealth() *DirectoryHealth {
	hs := health.NewServer()
	hs.SetServingStatus(DirectoryService, healthpb.HealthCheckResponse_NOT_SERVING)
	return &DirectoryHealth{server: hs}
}

func (h *DirectoryHealth) DirectoryLoaded(_ int, _ time.Duration, err error) {
	if err != nil {
		logging.Warn("flight directory unavailable", "error", err)
		h.server.SetServingStatus(DirectoryService, healthpb.HealthCheckResponse_NOT_SERVING)
		return
	}
	h.server.SetServingStatus(DirectoryService, healthpb.HealthCheckResponse_SERVING)
}

type Servers struct {
	grpcServer  *grpc.Server
	httpServer  *http.Server
	health      *health.Server
	gatewayConn *grpc.ClientConn
}

// Run starts the gRPC health server and the HTTP server (REST API, healthz
// gateway, metrics and swagger) and blocks until ctx is canceled or a server
// fails. The catalog is reloaded every worker.directory_refresh_minutes.
func Run(ctx context.Context, cfg *config.Config, app http.Handler, catalog Catalog, hs *DirectoryHealth, reg *metrics.MetricsRegistry) error {
	s, err := newServers(cfg, app, hs, reg)
	if err != nil {
		return err
	}
	defer s.gatewayConn.Close()

	lis, err := net.Listen("tcp", cfg.GRPC.Address)
	if err != nil {
		return fmt.Errorf("listen gRPC %s: %w", cfg.GRPC.Address, err)
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logging.Info("gRPC server listening", "address", cfg.GRPC.Address)
		if err := s.grpcServer.Serve(lis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
			return fmt.Errorf("serve gRPC: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		logging.Info("HTTP server listening", "address", cfg.HTTP.Address)
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serve HTTP: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		refresh := time.Duration(cfg.Worker.DirectoryRefreshMinutes) * time.Minute
		RefreshCatalog(gctx, catalog, refresh)
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		logging.Info("shutting down servers")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		s.health.Shutdown()
		s.grpcServer.GracefulStop()
		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown http server: %w", err)
		}
		return nil
	})

	return g.Wait()
}

func newServers(cfg *config.Config, app http.Handler, dh *DirectoryHealth, reg *metrics.MetricsRegistry) (*Servers, error) {
	grpcSrv := grpc.NewServer()
	hs := dh.server
	healthpb.RegisterHealthServer(grpcSrv, hs)

	conn, err := grpc.NewClient(dialTarget(cfg.GRPC.Address), grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, fmt.Errorf("dial gRPC health: %w", err)
	}
	gateway := runtime.NewServeMux(runtime.WithHealthzEndpoint(healthpb.NewHealthClient(conn)))

	return &Servers{
		grpcServer:  grpcSrv,
		health:      hs,
		gatewayConn: conn,
		httpServer: &http.Server{
			Addr:              cfg.HTTP.Address,
			Handler:           NewHandler(cfg.HTTP.SwaggerDir, app, gateway, reg),
			ReadHeaderTimeout: 10 * time.Second,
		},
	}, nil
}

// NewHandler mounts the operational endpoints next to the application
// router. Everything not matched here goes to app.
func NewHandler(swaggerDir string, app, gateway http.Handler, reg *metrics.MetricsRegistry) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/healthz", gateway)
	if reg != nil {
		mux.Handle("/metrics", promhttp.HandlerFor(reg.Registry, promhttp.HandlerOpts{Registry: reg.Registry}))
	}
	if swaggerDir != "" {
		fs := http.FileServer(http.Dir(swaggerDir))
		mux.Handle("/swagger/", http.StripPrefix("/swagger/", fs))
		mux.Handle("/docs/", httpSwagger.Handler(httpSwagger.URL("/swagger/flightdesk.swagger.json")))
	}
	mux.Handle("/", app)
	return mux
}

// RefreshCatalog reloads the catalog every interval until ctx is done.
// Health follows from the load itself through DirectoryHealth. config
// guarantees a positive interval.
func RefreshCatalog(ctx context.Context, catalog Catalog, every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := catalog.Load(ctx); err != nil {
				logging.Error("reload flight directory", "error", err)
			}
		}
	}
}

// dialTarget turns a listen address like ":9090" into something dialable.
func dialTarget(addr string) string {
	host, port, err := net.SplitHostPort(addr)
	if err != nil || host != "" {
		return addr
	}
	return net.JoinHostPort("localhost", port)
}
