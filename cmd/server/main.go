package main

import (
	"context"
	"errors"
	"log"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"
	grpclib "google.golang.org/grpc"
	"google.golang.org/grpc/reflection"

	grpcadapter "github.com/simaogato/resourceflow-backend/internal/adapter/grpc"
	"github.com/simaogato/resourceflow-backend/internal/adapter/metrics"
	"github.com/simaogato/resourceflow-backend/internal/adapter/repository/postgres"
	"github.com/simaogato/resourceflow-backend/internal/adapter/repository/yamlfile"
	"github.com/simaogato/resourceflow-backend/internal/config"
	"github.com/simaogato/resourceflow-backend/internal/domain"
	"github.com/simaogato/resourceflow-backend/internal/usecase/economy"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger, err := newLogger(cfg)
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	// 1. Metrics
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.NewMetrics("resourceflow", registry)

	// 2. Bootstrap the world (YAML file or Postgres)
	records, definitions, closeSource, err := openWorldSource(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("failed to open world source", zap.Error(err))
	}
	svc, err := economy.Bootstrap(ctx, records, definitions,
		economy.WithLogger(logger.Named("economy")),
		economy.WithRecorder(m),
	)
	closeSource()
	if err != nil {
		logger.Fatal("failed to bootstrap world", zap.Error(err))
	}

	// 3. Start gRPC Server
	grpcServer := grpclib.NewServer(
		grpclib.ChainUnaryInterceptor(
			grpcadapter.LoggingInterceptor(logger.Named("grpc")),
			grpcadapter.MetricsInterceptor(m),
			grpcadapter.AuthInterceptor(cfg.APIToken),
		),
	)
	grpcadapter.RegisterEconomyServiceServer(grpcServer, grpcadapter.NewServer(svc))
	reflection.Register(grpcServer)

	lis, err := net.Listen("tcp", cfg.GRPCAddr)
	if err != nil {
		logger.Fatal("failed to listen", zap.String("addr", cfg.GRPCAddr), zap.Error(err))
	}

	go func() {
		logger.Info("gRPC server listening", zap.String("addr", cfg.GRPCAddr))
		if err := grpcServer.Serve(lis); err != nil {
			logger.Fatal("failed to serve gRPC server", zap.Error(err))
		}
	}()

	// 4. Metrics endpoint
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler(registry))
	metricsServer := &http.Server{
		Addr:              cfg.MetricsAddr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info("metrics server listening", zap.String("addr", cfg.MetricsAddr))
		if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server failed", zap.Error(err))
		}
	}()

	// 5. Tick loop
	tickDone := make(chan struct{})
	go func() {
		defer close(tickDone)
		if err := svc.Run(ctx, cfg.TickInterval); err != nil {
			logger.Error("tick loop failed", zap.Error(err))
		}
	}()

	// Graceful shutdown
	<-ctx.Done()
	logger.Info("shutting down gracefully")

	grpcServer.GracefulStop()
	logger.Info("gRPC server stopped")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := metricsServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("failed to stop metrics server", zap.Error(err))
	}

	<-tickDone
	logger.Info("tick loop stopped", zap.Uint64("ticks", svc.Ticks()))
}

// openWorldSource returns the bootstrap repositories and a function releasing
// them once the world is seeded.
func openWorldSource(ctx context.Context, cfg *config.Config, logger *zap.Logger) (domain.ContainerRecordRepository, domain.DefinitionRepository, func(), error) {
	if !cfg.UsePostgres() {
		world, err := yamlfile.LoadWorld(cfg.WorldFile)
		if err != nil {
			return nil, nil, nil, err
		}
		logger.Info("loading world from file", zap.String("path", cfg.WorldFile))
		return world, world, func() {}, nil
	}

	// Give Postgres a moment to come up (simple retry for docker-compose)
	time.Sleep(cfg.DBStartupDelay)

	db, err := postgres.NewDB(cfg.DBConnString)
	if err != nil {
		return nil, nil, nil, err
	}
	if cfg.DBApplySchema {
		if err := db.ApplySchema(ctx); err != nil {
			_ = db.Close()
			return nil, nil, nil, err
		}
	}

	logger.Info("loading world from database")
	closeDB := func() {
		if err := db.Close(); err != nil {
			logger.Warn("failed to close database", zap.Error(err))
		}
	}
	return postgres.NewContainerRecordRepository(db), postgres.NewDefinitionRepository(db), closeDB, nil
}

func newLogger(cfg *config.Config) (*zap.Logger, error) {
	zcfg := zap.NewProductionConfig()
	if cfg.Development {
		zcfg = zap.NewDevelopmentConfig()
	}
	zcfg.Level = zap.NewAtomicLevelAt(cfg.LogLevel)
	return zcfg.Build()
}
