package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"unifiedinbox/internal/constants"
	"unifiedinbox/internal/metrics"
	"unifiedinbox/internal/middleware"
	"unifiedinbox/internal/models"
	"unifiedinbox/internal/service"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
)

type Server struct {
	cfg      *models.Config
	router   *mux.Router
	handler  http.Handler
	logger   *logrus.Logger
	inbox    service.InboxService
	registry *metrics.Registry
	verbose  bool
	server   *http.Server
}

func NewServer(cfg *models.Config, inbox service.InboxService, registry *metrics.Registry, logger *logrus.Logger, verbose bool) *Server {
	s := &Server{
		cfg:      cfg,
		router:   mux.NewRouter(),
		logger:   logger,
		inbox:    inbox,
		registry: registry,
		verbose:  verbose,
	}

	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.router.Use(middleware.ObservabilityMiddleware(s.logger, s.registry))
	s.router.Use(middleware.BodyLimitMiddleware(s.cfg.Server.BodyLimitBytes))
	if s.verbose {
		s.router.Use(middleware.DetailedLoggingMiddleware(s.logger, middleware.DefaultDetailedLoggingConfig()))
	}

	s.router.HandleFunc("/health", s.handleHealth()).Methods(http.MethodGet)
	s.router.HandleFunc("/metrics", s.handleMetrics()).Methods(http.MethodGet)

	s.router.HandleFunc("/messages", s.handleListMessages()).Methods(http.MethodGet)
	s.router.HandleFunc("/messages/ws", s.handleMessageFeed()).Methods(http.MethodGet)

	whatsapp := s.router.PathPrefix("/webhook/whatsapp").Subrouter()
	whatsapp.HandleFunc("", s.handleWhatsAppVerify()).Methods(http.MethodGet)
	whatsapp.HandleFunc("", s.handleWhatsAppWebhook()).Methods(http.MethodPost)

	s.router.HandleFunc("/reply/whatsapp", s.handleWhatsAppReply()).Methods(http.MethodPost)

	// CORS wraps the router so preflights reach it before method matching
	s.handler = middleware.CORSMiddleware(middleware.DefaultCORSOptions())(s.router)
}

func (s *Server) Handler() http.Handler {
	return s.handler
}

func (s *Server) Start() error {
	s.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", s.cfg.Server.Port),
		Handler:      s.handler,
		ReadTimeout:  time.Duration(constants.DefaultServerReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(constants.DefaultServerWriteTimeoutSec) * time.Second,
		IdleTimeout:  time.Duration(constants.DefaultServerIdleTimeoutSec) * time.Second,
	}

	s.logger.WithField("port", s.cfg.Server.Port).Info("Starting server")
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}
