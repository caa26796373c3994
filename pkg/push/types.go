// Package push contains the public domain models and collaborator interfaces
// for the push-notification delivery pipeline.
package push

import "time"

// Category selects the deep-link behaviour inside the iOS client. The wire
// value travels in the payload as notification_type.
type Category string

const (
	// CategoryFavorite is sent when a user likes a review.
	CategoryFavorite Category = "favorite"
	// CategoryReply is sent when a user replies to a review or to a reply.
	CategoryReply Category = "reply"
	// CategoryAdd is sent when a user receives a new friend request.
	CategoryAdd Category = "add"
	// CategoryPost is sent when a friend posts a new review.
	CategoryPost Category = "post"
)

// QueueItem is a single pending push delivery. Items are ephemeral: they are
// consumed exactly once by the dispatcher and discarded regardless of the
// delivery outcome. They are never persisted and never retried.
type QueueItem struct {
	// TargetUserID is the user who will receive the notification.
	TargetUserID string

	// SubjectID is the optional deep-link value (usually a review id).
	// Empty when the notification has no subject.
	SubjectID string

	// Message is the user-facing alert text.
	Message string

	// Category drives client-side deep linking.
	Category Category
}

// ActionType classifies persisted notification records.
type ActionType uint8

const (
	ActionUnknown ActionType = iota
	// ActionLike: someone liked your review.
	ActionLike
	// ActionReply: someone replied to your review.
	ActionReply
	// ActionReplyTo: someone replied to your reply.
	ActionReplyTo
)

// User is the subset of the user directory this pipeline needs.
type User struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	DisplayName string `json:"display_name"`

	// DeviceToken addresses the user's device through APNs. Empty means the
	// user has no registered device; pushes for them are silently dropped.
	DeviceToken string `json:"device_token"`
}

// Notification is a persisted inbox record. It is written independently of
// push delivery: failure of either write never rolls back the other.
type Notification struct {
	ID           string     `json:"id"`
	Created      time.Time  `json:"created"`
	ActorUserID  string     `json:"actor_user_id"`
	TargetUserID string     `json:"target_user_id"`
	SubjectID    string     `json:"subject_id"`
	ActionType   ActionType `json:"action_type"`
}
