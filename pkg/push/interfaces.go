package push

import "context"

// UserDirectory resolves users and their device tokens.
type UserDirectory interface {
	// GetUser returns (nil, nil) when the user does not exist. A missing
	// user is an expected condition for this pipeline, not an error.
	GetUser(ctx context.Context, id string) (*User, error)
}

// NotificationStore is the reliable inbox backing the best-effort push.
type NotificationStore interface {
	// Create inserts a new notification record.
	Create(ctx context.Context, actorID, targetID, subjectID string, action ActionType) error

	// ListForUser returns at most 50 records, newest first.
	ListForUser(ctx context.Context, userID string) ([]Notification, error)

	// Confirm acknowledges that the user's client has received all records.
	Confirm(ctx context.Context, userID string) error
}

// GatewayClient performs exactly one HTTP request per notification against
// the third-party push gateway.
type GatewayClient interface {
	Send(ctx context.Context, deviceToken, message string, category Category, subjectID string) error
}
