package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"syscall"
	"time"

	"unifiedinbox/internal/config"
	"unifiedinbox/internal/constants"
	"unifiedinbox/internal/metrics"
	"unifiedinbox/internal/models"
	"unifiedinbox/internal/service"
	"unifiedinbox/internal/store"
	"unifiedinbox/internal/tracing"
	"unifiedinbox/pkg/circuitbreaker"
	"unifiedinbox/pkg/whatsapp"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

var (
	// Version information (set at build time)
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"

	// CLI flags
	verbose    = flag.Bool("verbose", false, "Enable verbose logging (includes phone numbers and raw payloads)")
	configPath = flag.String("config", "", "Path to an optional JSON configuration file")
	version    = flag.Bool("version", false, "Show version information")
)

func main() {
	flag.Parse()

	if *version {
		fmt.Printf("Unified Inbox %s\nBuild Time: %s\nGit Commit: %s\n", Version, BuildTime, GitCommit)
		os.Exit(0)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		logrus.Fatalf("Application error: %v", err)
	}
}

func run(ctx context.Context) error {
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		logger.WithError(err).Warn("Failed to load .env file")
	}

	logger.WithFields(logrus.Fields{
		"version": Version,
		"build":   BuildTime,
		"commit":  GitCommit,
	}).Info("Starting Unified Inbox")

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	configureLogLevel(logger, cfg.LogLevel, *verbose)

	tracingManager := tracing.NewTracingManager(tracing.TracingConfig{
		ServiceName:    cfg.Tracing.ServiceName,
		ServiceVersion: cfg.Tracing.ServiceVersion,
		Environment:    cfg.Tracing.Environment,
		OTLPEndpoint:   cfg.Tracing.OTLPEndpoint,
		SampleRate:     cfg.Tracing.SampleRate,
		Enabled:        cfg.Tracing.Enabled,
		UseStdout:      cfg.Tracing.UseStdout,
	}, logger)

	if err := tracingManager.Initialize(ctx); err != nil {
		logger.Warnf("Failed to initialize tracing: %v", err)
	}
	defer func() {
		if err := tracingManager.Shutdown(context.Background()); err != nil {
			logger.Warnf("Failed to shutdown tracing: %v", err)
		}
	}()

	inboxStore, err := store.New(ctx, cfg.Store, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize inbox store: %w", err)
	}
	defer inboxStore.Close()

	if cfg.ShouldSeedDemo() {
		if err := store.SeedDemo(ctx, inboxStore); err != nil {
			return fmt.Errorf("failed to seed demo inbox: %w", err)
		}
		logger.Info("Loaded demo inbox records")
	}

	inbox, broadcaster := buildInboxService(cfg, inboxStore, logger)
	logger.WithField("backend", cfg.Store.Backend).Info("Inbox service initialized")

	server := NewServer(cfg, inbox, metrics.GetRegistry(), logger, *verbose)
	serverErrCh := make(chan error, constants.ServerErrorChannelSize)
	go func() {
		if err := server.Start(); err != nil {
			serverErrCh <- fmt.Errorf("server error: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("Received shutdown signal")
	case err := <-serverErrCh:
		logger.Error(err)
		return err
	}

	broadcaster.Close()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(constants.DefaultGracefulShutdownSec)*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shutdown server gracefully: %w", err)
	}

	logger.Info("Server shutdown completed")
	return nil
}

// buildInboxService wires the WhatsApp client behind its circuit breaker
// into the inbox service
func buildInboxService(cfg *models.Config, inboxStore store.Store, logger *logrus.Logger) (service.InboxService, *service.Broadcaster) {
	if !cfg.WhatsApp.HasCredentials() {
		logger.Warn("WHATSAPP_PHONE_NUMBER_ID or WHATSAPP_ACCESS_TOKEN not set; replies will be rejected")
	}

	breaker := circuitbreaker.New("whatsapp",
		constants.DefaultBreakerMaxFailures,
		time.Duration(constants.DefaultBreakerTimeoutSec)*time.Second,
		logger)

	client := whatsapp.NewClient(whatsapp.ClientConfig{
		BaseURL:       cfg.WhatsApp.APIBaseURL,
		APIVersion:    cfg.WhatsApp.APIVersion,
		PhoneNumberID: cfg.WhatsApp.PhoneNumberID,
		AccessToken:   cfg.WhatsApp.AccessToken,
		Timeout:       time.Duration(cfg.WhatsApp.TimeoutSec) * time.Second,
		Breaker:       breaker,
	})

	broadcaster := service.NewBroadcaster(constants.DefaultSubscriberBuffer, logger)
	inbox := service.NewInboxService(inboxStore, client, logger,
		service.WithBroadcaster(broadcaster),
		service.WithMetrics(metrics.GetRegistry()))

	return inbox, broadcaster
}

// configureLogLevel applies the configured level; debug output needs the
// -verbose flag
func configureLogLevel(logger *logrus.Logger, level string, verbose bool) {
	if verbose {
		logger.SetLevel(logrus.DebugLevel)
		logger.Info("Verbose logging enabled - phone numbers and payloads will be logged")
		return
	}

	if level == "" {
		logger.SetLevel(logrus.InfoLevel)
		return
	}

	parsed, err := logrus.ParseLevel(level)
	if err != nil {
		logger.Warnf("Invalid log level %q, defaulting to info", level)
		logger.SetLevel(logrus.InfoLevel)
		return
	}
	if parsed > logrus.InfoLevel {
		parsed = logrus.InfoLevel
	}
	logger.SetLevel(parsed)
}
