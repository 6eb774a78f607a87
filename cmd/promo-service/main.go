package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"os"

	"github.com/alecthomas/kong"
	"go.uber.org/fx"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"api-gateway-go/internal/config"
	"api-gateway-go/internal/promo"
	"api-gateway-go/internal/promorpc"
)

// Set by goreleaser ldflags.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	if err := config.LoadEnvFiles(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	var cli config.CLI
	kong.Parse(&cli,
		kong.Name("promo-service"),
		kong.Description("Promo RPC service backed by an in-memory store."),
		kong.Vars{"version": fmt.Sprintf("%s (%s, %s)", version, commit, date)},
	)

	fx.New(
		fx.Provide(
			func() *config.CLI { return &cli },
			config.Load,
			newLogger,
			promo.NewStore,
			promo.NewServer,
			health.NewServer,
			newGRPCServer,
		),
		fx.Invoke(registerServices, startServer),
	).Run()
}

func newLogger(cfg *config.Config) *slog.Logger {
	return config.NewLogger(cfg, os.Stdout)
}

func newGRPCServer(logger *slog.Logger) *grpc.Server {
	return grpc.NewServer(grpc.ChainUnaryInterceptor(promo.LoggingInterceptor(logger)))
}

func registerServices(s *grpc.Server, srv *promo.Server, hs *health.Server) {
	promorpc.RegisterPromoServiceServer(s, srv)
	healthpb.RegisterHealthServer(s, hs)
	hs.SetServingStatus(promorpc.ServiceName, healthpb.HealthCheckResponse_SERVING)
}

func startServer(lc fx.Lifecycle, s *grpc.Server, hs *health.Server, cfg *config.Config, logger *slog.Logger) {
	serveErr := make(chan error, 1)

	lc.Append(fx.Hook{
		OnStart: func(_ context.Context) error {
			addr := cfg.PromoService.ListenAddr()
			ln, err := net.Listen("tcp", addr)
			if err != nil {
				return fmt.Errorf("bind %s: %w", addr, err)
			}
			logger.Info("starting promo service", "addr", addr, "version", version)
			go func() {
				err := s.Serve(ln)
				if err != nil && !errors.Is(err, grpc.ErrServerStopped) {
					logger.Error("server error", "err", err)
				}
				serveErr <- err
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			logger.Info("shutting down promo service")
			hs.Shutdown()

			stopped := make(chan struct{})
			go func() {
				s.GracefulStop()
				close(stopped)
			}()

			select {
			case <-stopped:
			case <-ctx.Done():
				s.Stop()
			}
			<-serveErr
			return nil
		},
	})
}
