package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/review-with-friends/reviewwithfriends-backend/pkg/push"
)

type MockNotificationStore struct {
	mock.Mock
}

func (m *MockNotificationStore) Create(ctx context.Context, actorID, targetID, subjectID string, action push.ActionType) error {
	args := m.Called(ctx, actorID, targetID, subjectID, action)
	return args.Error(0)
}

func (m *MockNotificationStore) ListForUser(ctx context.Context, userID string) ([]push.Notification, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]push.Notification), args.Error(1)
}

func (m *MockNotificationStore) Confirm(ctx context.Context, userID string) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

func newTestRouter(store push.NotificationStore) http.Handler {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewRouter(store, prometheus.NewRegistry(), logger)
}

func TestListNotifications(t *testing.T) {
	t.Run("returns newest-first records as JSON", func(t *testing.T) {
		store := new(MockNotificationStore)
		router := newTestRouter(store)

		created := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
		store.On("ListForUser", mock.Anything, "user-b").Return([]push.Notification{
			{
				ID:           "n2",
				Created:      created.Add(time.Hour),
				ActorUserID:  "user-a",
				TargetUserID: "user-b",
				SubjectID:    "review-1",
				ActionType:   push.ActionLike,
			},
			{
				ID:           "n1",
				Created:      created,
				ActorUserID:  "user-c",
				TargetUserID: "user-b",
				SubjectID:    "review-2",
				ActionType:   push.ActionReply,
			},
		}, nil)

		req := httptest.NewRequest(http.MethodGet, "/v1/notifications/", nil)
		req.Header.Set("X-User-Id", "user-b")
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)

		var out []NotificationPub
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&out))
		require.Len(t, out, 2)
		assert.Equal(t, "n2", out[0].ID)
		assert.Equal(t, created.Add(time.Hour).UnixMilli(), out[0].Created)
		assert.EqualValues(t, push.ActionLike, out[0].ActionType)
		assert.Equal(t, "n1", out[1].ID)
	})

	t.Run("rejects anonymous requests", func(t *testing.T) {
		store := new(MockNotificationStore)
		router := newTestRouter(store)

		req := httptest.NewRequest(http.MethodGet, "/v1/notifications/", nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		store.AssertNotCalled(t, "ListForUser", mock.Anything, mock.Anything)
	})

	t.Run("store failure maps to 500", func(t *testing.T) {
		store := new(MockNotificationStore)
		router := newTestRouter(store)

		store.On("ListForUser", mock.Anything, "user-b").Return(nil, errors.New("db down"))

		req := httptest.NewRequest(http.MethodGet, "/v1/notifications/", nil)
		req.Header.Set("X-User-Id", "user-b")
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
	})
}

func TestConfirmNotifications(t *testing.T) {
	store := new(MockNotificationStore)
	router := newTestRouter(store)

	store.On("Confirm", mock.Anything, "user-b").Return(nil)

	req := httptest.NewRequest(http.MethodPost, "/v1/notifications/confirm", nil)
	req.Header.Set("X-User-Id", "user-b")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	store.AssertExpectations(t)
}

func TestHealthz(t *testing.T) {
	router := newTestRouter(new(MockNotificationStore))

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}
