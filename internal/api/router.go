package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/time/rate"

	"github.com/review-with-friends/reviewwithfriends-backend/internal/api/middleware"
	"github.com/review-with-friends/reviewwithfriends-backend/pkg/push"
)

// NewRouter assembles the HTTP surface: the notification inbox endpoints,
// health, and metrics.
func NewRouter(store push.NotificationStore, registry *prometheus.Registry, logger *slog.Logger) http.Handler {
	notificationsAPI := NewNotificationsAPI(store, logger)
	limiter := middleware.NewRateLimiter(rate.Limit(20), 40)

	r := chi.NewRouter()
	r.Use(limiter.Limit)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))

	r.Route("/v1/notifications", func(r chi.Router) {
		r.Use(middleware.RequireUser)
		r.Get("/", notificationsAPI.List)
		r.Post("/confirm", notificationsAPI.Confirm)
	})

	return r
}
