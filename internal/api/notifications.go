// Package api exposes the thin REST surface over the persisted notification
// store.
package api

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/review-with-friends/reviewwithfriends-backend/internal/api/middleware"
	"github.com/review-with-friends/reviewwithfriends-backend/pkg/push"
)

// NotificationsAPI serves a user's notification inbox.
type NotificationsAPI struct {
	store  push.NotificationStore
	logger *slog.Logger
}

func NewNotificationsAPI(store push.NotificationStore, logger *slog.Logger) *NotificationsAPI {
	return &NotificationsAPI{
		store:  store,
		logger: logger.With("component", "NotificationsAPI"),
	}
}

// NotificationPub is the wire form of a notification record. Storage types
// are never serialized directly.
type NotificationPub struct {
	ID           string `json:"id"`
	Created      int64  `json:"created"`
	ActorUserID  string `json:"actor_user_id"`
	TargetUserID string `json:"target_user_id"`
	SubjectID    string `json:"subject_id"`
	ActionType   uint8  `json:"action_type"`
}

// List returns the 50 newest notifications for the authenticated user.
func (a *NotificationsAPI) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID, ok := middleware.UserIDFromContext(ctx)
	if !ok {
		writeJSONError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	notifications, err := a.store.ListForUser(ctx, userID)
	if err != nil {
		a.logger.Error("failed to list notifications", "user_id", userID, "err", err)
		writeJSONError(w, http.StatusInternalServerError, "unable to get notifications")
		return
	}

	out := make([]NotificationPub, 0, len(notifications))
	for _, n := range notifications {
		out = append(out, NotificationPub{
			ID:           n.ID,
			Created:      n.Created.UnixMilli(),
			ActorUserID:  n.ActorUserID,
			TargetUserID: n.TargetUserID,
			SubjectID:    n.SubjectID,
			ActionType:   uint8(n.ActionType),
		})
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(out); err != nil {
		a.logger.Error("failed to encode notifications", "err", err)
	}
}

// Confirm acknowledges that the client has received all notifications.
func (a *NotificationsAPI) Confirm(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID, ok := middleware.UserIDFromContext(ctx)
	if !ok {
		writeJSONError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	if err := a.store.Confirm(ctx, userID); err != nil {
		a.logger.Error("failed to confirm notifications", "user_id", userID, "err", err)
		writeJSONError(w, http.StatusInternalServerError, "unable to confirm notifications")
		return
	}

	w.WriteHeader(http.StatusOK)
}

func writeJSONError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}
