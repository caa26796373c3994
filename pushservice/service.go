// Package pushservice assembles the push-notification pipeline: queue,
// dispatcher, producer facade, metrics, and the HTTP surface.
package pushservice

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/review-with-friends/reviewwithfriends-backend/internal/api"
	"github.com/review-with-friends/reviewwithfriends-backend/internal/dispatch"
	"github.com/review-with-friends/reviewwithfriends-backend/internal/metrics"
	"github.com/review-with-friends/reviewwithfriends-backend/internal/notify"
	"github.com/review-with-friends/reviewwithfriends-backend/internal/queue"
	"github.com/review-with-friends/reviewwithfriends-backend/pkg/push"
	"github.com/review-with-friends/reviewwithfriends-backend/pushservice/config"
)

// Service owns the process-wide queue and the single dispatcher. Both are
// constructed here, once, and handed to collaborators by reference; there
// are no ambient globals.
type Service struct {
	queue      *queue.Queue
	notifier   *notify.Notifier
	dispatcher *dispatch.Dispatcher
	server     *http.Server
	logger     *slog.Logger

	cancelDispatcher context.CancelFunc
	dispatcherDone   chan struct{}
}

// New assembles the service.
func New(
	cfg *config.Config,
	directory push.UserDirectory,
	store push.NotificationStore,
	gateway push.GatewayClient,
	logger *slog.Logger,
) *Service {
	registry := prometheus.NewRegistry()

	q := queue.New(cfg.QueueCapacity)
	m := metrics.New(registry, q.Len)
	onDelivered, onFailed, onSkipped := m.DispatchHooks()

	dispatcher := dispatch.New(q, directory, gateway, logger, dispatch.Hooks{
		OnDelivered: onDelivered,
		OnFailed:    onFailed,
		OnSkipped:   onSkipped,
	})
	notifier := notify.New(q, directory, store, logger)

	server := &http.Server{
		Addr:         cfg.ListenAddr,
		Handler:      api.NewRouter(store, registry, logger),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	return &Service{
		queue:      q,
		notifier:   notifier,
		dispatcher: dispatcher,
		server:     server,
		logger:     logger.With("component", "PushService"),
	}
}

// Notifier exposes the producer facade for the domain operations that embed
// this service.
func (s *Service) Notifier() *notify.Notifier {
	return s.notifier
}

// Start launches the dispatcher and blocks serving HTTP until Shutdown is
// called or the listener fails.
func (s *Service) Start(ctx context.Context) error {
	dispatchCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	s.cancelDispatcher = cancel
	s.dispatcherDone = make(chan struct{})

	go func() {
		s.dispatcher.Run(dispatchCtx)
		close(s.dispatcherDone)
	}()

	s.logger.Info("service is now ready", "addr", s.server.Addr)
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops the HTTP server, then the dispatcher. Items still queued
// are lost; pending deliveries were never guaranteed.
func (s *Service) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down service components...")

	var finalErr error
	if err := s.server.Shutdown(ctx); err != nil {
		s.logger.Error("HTTP server shutdown failed", "err", err)
		finalErr = err
	}

	if s.cancelDispatcher != nil {
		s.cancelDispatcher()
		select {
		case <-s.dispatcherDone:
		case <-ctx.Done():
			finalErr = ctx.Err()
		}
	}

	s.logger.Info("service shutdown complete")
	return finalErr
}
