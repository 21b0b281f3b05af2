package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	grpcapi "rentlink-backend/internal/api/grpc"
	httpapi "rentlink-backend/internal/api/http"
	"rentlink-backend/internal/config"
	"rentlink-backend/internal/events"
	"rentlink-backend/internal/logger"
	"rentlink-backend/internal/metrics"
	"rentlink-backend/internal/security"
	"rentlink-backend/internal/service"
	"rentlink-backend/internal/storage"
)

func main() {
	// Parse command-line flags
	configPath := flag.String("config", "config/config.dev.yaml", "Path to configuration file")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	logger.Initialize(cfg.Log.Level, cfg.Log.Format)
	logger.Info("Starting RentLink booking core...", "log_level", cfg.Log.Level, "log_format", cfg.Log.Format)
	logger.Info("Server configuration", "http", cfg.GetServerAddress(), "grpc", cfg.GetGRPCAddress(), "storage", cfg.Storage.Type)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		logger.Error("Server exited with error", "error", err)
		stop()
		os.Exit(1)
	}
}

// run serves until ctx is cancelled or a listener fails. Every resource it
// opens is closed before it returns.
func run(ctx context.Context, cfg *config.Config) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// Metrics
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New()
	m.MustRegister(registry)

	// Initialize Storage
	backend, err := storage.Open(ctx, cfg, m)
	if err != nil {
		return fmt.Errorf("open storage: %w", err)
	}
	defer backend.Close()

	// Initialize Event Publisher
	publisher := events.NewNoop()
	if len(cfg.Events.Brokers) > 0 {
		kafka, err := events.NewKafkaPublisher(cfg.Events.Brokers, cfg.Events.ClientID, cfg.Events.Topic, m)
		if err != nil {
			return fmt.Errorf("connect to kafka %v: %w", cfg.Events.Brokers, err)
		}
		publisher = kafka
		logger.Info("Publishing domain events", "brokers", cfg.Events.Brokers, "topic", cfg.Events.Topic)
	}
	defer publisher.Close()

	// Initialize Services
	mode, err := service.ParseOverlapMode(cfg.Booking.OverlapMode)
	if err != nil {
		return err
	}
	opts := []service.Option{
		service.WithPublisher(publisher),
		service.WithMetrics(m),
		service.WithOverlapMode(mode),
	}
	repos := backend.Repositories()
	requestSvc := service.NewRentalRequestService(backend, repos, opts...)
	rentalSvc := service.NewRentalService(repos, opts...)

	// Initialize Security
	tokenManager := security.NewTokenManager(cfg.JWT.Secret, cfg.JWT.Issuer, cfg.JWT.Audience)

	serveErr := make(chan error, 2)

	// HTTP server
	httpLis, err := net.Listen("tcp", cfg.GetServerAddress())
	if err != nil {
		return fmt.Errorf("listen http: %w", err)
	}
	httpServer := &http.Server{
		Handler:           httpapi.NewServer(requestSvc, rentalSvc, tokenManager, registry, backend.Ping).Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		logger.Info("HTTP server listening", "address", httpLis.Addr().String())
		if err := httpServer.Serve(httpLis); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- fmt.Errorf("serve http: %w", err)
		}
	}()
	defer func() {
		shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancelShutdown()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP shutdown error", "error", err)
		}
	}()

	// gRPC health server
	if addr := cfg.GetGRPCAddress(); addr != "" {
		lis, err := net.Listen("tcp", addr)
		if err != nil {
			return fmt.Errorf("listen grpc: %w", err)
		}
		grpcServer, health := grpcapi.NewServer(backend.Ping)
		go health.Run(ctx, 15*time.Second)
		go func() {
			logger.Info("gRPC server listening", "address", addr)
			if err := grpcServer.Serve(lis); err != nil {
				serveErr <- fmt.Errorf("serve grpc: %w", err)
			}
		}()
		defer grpcServer.GracefulStop()
	}

	select {
	case <-ctx.Done():
		logger.Info("Shutting down...")
		return nil
	case err := <-serveErr:
		return err
	}
}
