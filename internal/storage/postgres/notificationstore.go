package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/review-with-friends/reviewwithfriends-backend/pkg/push"
)

// NotificationStore persists inbox records. These are the reliable half of a
// notification; the push item is the best-effort decoration on top.
type NotificationStore struct {
	pool *pgxpool.Pool
}

// NewNotificationStore returns a push.NotificationStore backed by PostgreSQL.
func NewNotificationStore(pool *pgxpool.Pool) *NotificationStore {
	return &NotificationStore{pool: pool}
}

func (s *NotificationStore) Create(ctx context.Context, actorID, targetID, subjectID string, action push.ActionType) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO notifications (id, created, actor_user_id, target_user_id, subject_id, action_type)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		uuid.NewString(), time.Now().UTC(), actorID, targetID, subjectID, uint8(action),
	)
	if err != nil {
		return fmt.Errorf("insert notification: %w", err)
	}
	return nil
}

// ListForUser returns the 50 newest records for the user, newest first.
func (s *NotificationStore) ListForUser(ctx context.Context, userID string) ([]push.Notification, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, created, actor_user_id, target_user_id, subject_id, action_type
		FROM notifications
		WHERE target_user_id = $1
		ORDER BY created DESC
		LIMIT 50`, userID)
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	defer rows.Close()

	var notifications []push.Notification
	for rows.Next() {
		var n push.Notification
		var action uint8
		if err := rows.Scan(&n.ID, &n.Created, &n.ActorUserID, &n.TargetUserID, &n.SubjectID, &action); err != nil {
			return nil, fmt.Errorf("scan notification: %w", err)
		}
		n.ActionType = push.ActionType(action)
		notifications = append(notifications, n)
	}
	return notifications, rows.Err()
}

// Confirm marks every record for the user as received by the client.
func (s *NotificationStore) Confirm(ctx context.Context, userID string) error {
	_, err := s.pool.Exec(ctx, `
		UPDATE notifications SET confirmed = TRUE
		WHERE target_user_id = $1 AND NOT confirmed`, userID)
	if err != nil {
		return fmt.Errorf("confirm notifications: %w", err)
	}
	return nil
}
