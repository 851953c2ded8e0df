package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/gartstein/bawsala/internal/directory/auth"
	"github.com/gartstein/bawsala/internal/directory/controller"
	"github.com/gartstein/bawsala/internal/directory/events"
	"github.com/gartstein/bawsala/internal/directory/handlers"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"google.golang.org/grpc"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the directory over gRPC and HTTP",
	Long: `Loads the catalog (retrying with exponential backoff), then serves the
directory API. Health reports SERVING only while a catalog is loaded.
Reloads are triggered by an authenticated request or by a reload event on
CONTROL_TOPIC.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	source, closeSource, err := openSource(cfg, logger)
	if err != nil {
		return err
	}
	defer closeSource()

	producer, closeProducer, err := newProducer(cfg, logger)
	if err != nil {
		return err
	}
	defer closeProducer()

	svc := controller.NewDirectoryService(source, producer, logger)

	// Initialize auth interceptor
	authInterceptor := auth.NewAuthInterceptor(cfg.JWTSecret)
	server := handlers.NewServer(cfg.GRPCPort, cfg.HTTPPort, logger, grpc.UnaryInterceptor(authInterceptor.Unary()))
	server.RegisterGRPCHandler(handlers.NewDirectoryHandler(svc, logger))
	if err := server.RegisterHTTPGateway(handlers.NewHTTPHandler(svc, logger), handlers.HTTPConfig{
		JWTSecret:      cfg.JWTSecret,
		AllowedOrigins: cfg.AllowedOrigins,
		Limiter:        cfg.limiter(),
	}); err != nil {
		return fmt.Errorf("register HTTP gateway: %w", err)
	}
	svc.OnLoad(func(st controller.Status) {
		server.SetServing(st.Serving)
	})

	go func() {
		b := backoff.NewExponentialBackOff()
		b.MaxElapsedTime = 2 * time.Minute
		if err := svc.LoadWithRetry(ctx, b); err != nil {
			logger.Error("Catalog unavailable, serving without data", zap.Error(err))
		}
	}()

	if len(cfg.KafkaBrokers) > 0 && cfg.ControlTopic != "" {
		consumer := events.NewConsumer(cfg.KafkaBrokers, cfg.GroupID, cfg.ControlTopic, logger)
		consumer.RegisterHandler(events.ReloadHandler(svc.Reload))
		consumer.Start(ctx)
		defer consumer.Close()
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	return waitForShutdown(server, errCh, logger)
}

// newProducer connects to Kafka, or logs events when no brokers are set.
func newProducer(cfg *Config, logger *zap.Logger) (controller.EventProducer, func(), error) {
	if len(cfg.KafkaBrokers) == 0 {
		logger.Info("No Kafka brokers configured, logging catalog events")
		return events.NewLogProducer(logger), func() {}, nil
	}
	p, err := events.NewProducer(cfg.KafkaBrokers, logger, cfg.Topic)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize Kafka producer: %w", err)
	}
	return p, p.Close, nil
}

// waitForShutdown blocks until an interrupt or SIGTERM is received, or a
// server fails, then shuts down servers.
func waitForShutdown(server *handlers.Server, errCh <-chan error, logger *zap.Logger) error {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(stop)

	select {
	case <-stop:
	case err := <-errCh:
		if err != nil {
			server.Stop()
			return fmt.Errorf("server failed: %w", err)
		}
	}

	server.Stop()
	logger.Info("Servers stopped properly")
	return nil
}
