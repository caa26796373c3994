package apns

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/review-with-friends/reviewwithfriends-backend/pkg/push"
)

type staticBearer string

func (s staticBearer) Bearer() string { return string(s) }

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestClient_Send(t *testing.T) {
	type captured struct {
		path    string
		headers http.Header
		body    map[string]map[string]string
	}
	var got captured

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got.path = r.URL.Path
		got.headers = r.Header.Clone()
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got.body))
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := NewClient(Config{Host: server.URL, Topic: "com.spacedoglabs.spotster"}, staticBearer("signed-token"), discardLogger())

	err := client.Send(context.Background(), "device-abc", "Alice liked your review!", push.CategoryFavorite, "review-1")
	require.NoError(t, err)

	assert.Equal(t, "/3/device/device-abc", got.path)
	assert.Equal(t, "bearer signed-token", got.headers.Get("authorization"))
	assert.Equal(t, "alert", got.headers.Get("apns-push-type"))
	assert.Equal(t, "0", got.headers.Get("apns-expiration"))
	assert.Equal(t, requestID, got.headers.Get("apns-id"))
	assert.Equal(t, "com.spacedoglabs.spotster", got.headers.Get("apns-topic"))
	assert.Equal(t, "10", got.headers.Get("apns-priority"))

	assert.Equal(t, map[string]map[string]string{
		"aps": {
			"alert":              "Alice liked your review!",
			"notification_type":  "favorite",
			"notification_value": "review-1",
		},
	}, got.body)
}

func TestClient_Send_EmptySubjectValue(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		// A missing subject travels as an empty string, never omitted.
		assert.Equal(t, "", body["aps"]["notification_value"])
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := NewClient(Config{Host: server.URL, Topic: "com.test.app"}, staticBearer("tok"), discardLogger())
	err := client.Send(context.Background(), "device-abc", "Bob sent you a friend request!", push.CategoryAdd, "")
	require.NoError(t, err)
}

func TestClient_Send_NonSuccessStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusGone)
		_, _ = w.Write([]byte(`{"reason":"Unregistered"}`))
	}))
	defer server.Close()

	client := NewClient(Config{Host: server.URL, Topic: "com.test.app"}, staticBearer("tok"), discardLogger())
	err := client.Send(context.Background(), "dead-device", "hello", push.CategoryReply, "r1")

	var deliveryErr *DeliveryError
	require.ErrorAs(t, err, &deliveryErr)
	assert.Equal(t, http.StatusGone, deliveryErr.Status)
	assert.Contains(t, deliveryErr.Body, "Unregistered")
}

func TestClient_Send_TransportFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close() // connection refused from here on

	client := NewClient(Config{Host: server.URL, Topic: "com.test.app"}, staticBearer("tok"), discardLogger())
	err := client.Send(context.Background(), "device-abc", "hello", push.CategoryPost, "")

	var deliveryErr *DeliveryError
	require.ErrorAs(t, err, &deliveryErr)
	assert.Zero(t, deliveryErr.Status)
	assert.Error(t, deliveryErr.Err)
}
