package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	api "github.com/oshokin/lockable/internal/api/grpc/lock"
	"github.com/oshokin/lockable/internal/config"
	domain "github.com/oshokin/lockable/internal/domain/lock"
	"github.com/oshokin/lockable/internal/logger"
	pb "github.com/oshokin/lockable/internal/pb/v1"
	repository "github.com/oshokin/lockable/internal/repository/state"
	"github.com/oshokin/lockable/internal/service/common"
	"github.com/oshokin/lockable/internal/telemetry"
	"github.com/oshokin/lockable/internal/version"
)

// serviceName is the name reported to tracing and the health service.
const serviceName = "lockable.v1.LockService"

// Options controls the lockable-server process and configuration.
type Options struct {
	// ConfigPath specifies the path to settings YAML file.
	ConfigPath string
	// ListenAddress provides an optional listen address override for the gRPC server.
	ListenAddress string
	// StateFile specifies the path to persist the guard state JSON.
	StateFile string
}

// ErrNoServerAddress indicates missing server configuration.
var ErrNoServerAddress = errors.New("no server address configured")

// Run starts the gRPC server and blocks until context is canceled or server stops.
// Loads configuration first, then determines listen address from config or override.
//
//nolint:funlen // Wiring of every server dependency lives in one place.
func Run(ctx context.Context, opts *Options) error {
	// Set context with logger name for tracking.
	ctx = logger.WithName(ctx, "lockable-server")

	// Load configuration first to get server settings.
	settings, err := config.Load(opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("load settings: %w", err)
	}

	if err := config.ValidateServer(settings); err != nil {
		return fmt.Errorf("validate server settings: %w", err)
	}

	applyLogLevel(ctx, settings.LogLevel)

	// Use StateFile from config unless overridden by command line option.
	stateFile := settings.StateFile
	if opts.StateFile != "" {
		stateFile = opts.StateFile
	}

	// Determine listen address: CLI argument overrides config port extraction.
	listenAddress, err := resolveListenAddress(settings.ServerAddress, opts.ListenAddress)
	if err != nil {
		return fmt.Errorf("resolve listen address: %w", err)
	}

	shutdownTracing, err := telemetry.SetupTracing(ctx, serviceName, version.Short(), settings.Tracing, os.Stdout)
	if err != nil {
		return fmt.Errorf("setup tracing: %w", err)
	}

	defer func() {
		if err := shutdownTracing(context.WithoutCancel(ctx)); err != nil {
			logger.Errorf(ctx, "Failed to flush traces: %v", err)
		}
	}()

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())

	deps, err := resolveOwnership(settings)
	if err != nil {
		return err
	}

	deps.repo = repository.NewFileRepository(stateFile)
	deps.metrics = telemetry.NewMetrics(registry)

	svc, err := newService(ctx, deps)
	if err != nil {
		return fmt.Errorf("initialise service: %w", err)
	}

	// Setup TCP listener for gRPC server.
	lc := net.ListenConfig{}

	lis, err := lc.Listen(ctx, "tcp", listenAddress)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", listenAddress, err)
	}

	var serverOptions []grpc.ServerOption
	if settings.Auth.Enabled {
		authenticator := api.NewAuthenticator(identitiesFromKeys(settings.Auth.Keys))
		serverOptions = append(serverOptions, grpc.ChainUnaryInterceptor(authenticator.UnaryInterceptor()))
	}

	grpcServer := grpc.NewServer(serverOptions...)
	pb.RegisterLockServiceServer(grpcServer, api.NewServer(svc))

	healthServer := health.NewServer()
	healthServer.SetServingStatus(serviceName, healthpb.HealthCheckResponse_SERVING)
	healthpb.RegisterHealthServer(grpcServer, healthServer)

	if settings.MetricsAddress != "" {
		go func() {
			if err := telemetry.ServeMetrics(ctx, settings.MetricsAddress, registry); err != nil {
				logger.ErrorKV(ctx, "Metrics endpoint failed", "error", err)
			}
		}()
	}

	logger.InfoKV(
		ctx,
		"Lock server listening",
		"listen_address", listenAddress,
		"state_file", stateFile,
		"auth", settings.Auth.Enabled,
		"metrics_address", settings.MetricsAddress,
	)

	// Done channel is closed after GracefulStop finishes to ensure we block
	// until the server fully stops before returning.
	done := make(chan struct{})

	go func() {
		<-ctx.Done()
		logger.Info(ctx, "Shutting down gRPC server")
		healthServer.Shutdown()
		grpcServer.GracefulStop()
		close(done)
	}()

	if err := grpcServer.Serve(lis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
		return fmt.Errorf("serve gRPC: %w", err)
	}

	<-done
	logger.Info(ctx, "GRPC server stopped")

	return nil
}

// resolveOwnership picks the admin of a guard created from scratch.
// A configured admin is pinned; otherwise the server process user becomes the owner.
func resolveOwnership(settings *config.Config) (serviceDeps, error) {
	if settings.Admin != nil {
		return serviceDeps{
			admin: domain.Actor{
				Hostname: settings.Admin.Hostname,
				Username: settings.Admin.Username,
			},
			pinned: true,
		}, nil
	}

	creator, err := common.DetectActor()
	if err != nil {
		return serviceDeps{}, fmt.Errorf("detect guard owner: %w", err)
	}

	return serviceDeps{admin: *creator}, nil
}

// identitiesFromKeys builds the token table of the authenticator.
func identitiesFromKeys(keys []config.APIKey) map[string]domain.Actor {
	identities := make(map[string]domain.Actor, len(keys))
	for _, key := range keys {
		identities[key.Token] = domain.Actor{
			Hostname: key.Identity.Hostname,
			Username: key.Identity.Username,
		}
	}

	return identities
}

// applyLogLevel switches the global level, keeping the current one on bad input.
func applyLogLevel(ctx context.Context, level string) {
	parsed, ok := logger.ParseLogLevel(level)
	if !ok {
		logger.WarnKV(ctx, "Unknown log level, keeping current", "log_level", level, "current", logger.Level())
		return
	}

	logger.SetLevel(parsed)
}

// resolveListenAddress determines the listen address for the gRPC server.
// If override is provided, uses it directly. Otherwise extracts port from configAddr.
// Returns appropriate listen address (e.g., ":8080" for port-only binding).
func resolveListenAddress(configAddr, override string) (string, error) {
	if override != "" {
		return override, nil
	}

	if configAddr == "" {
		return "", ErrNoServerAddress
	}

	_, port, err := net.SplitHostPort(configAddr)
	if err != nil {
		return "", fmt.Errorf("invalid server address format %q: %w", configAddr, err)
	}

	// Bind on all interfaces.
	return ":" + port, nil
}
