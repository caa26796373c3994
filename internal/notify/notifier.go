// Package notify is the producer side of the push pipeline: domain operations
// call it after their own persistence has succeeded.
package notify

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/review-with-friends/reviewwithfriends-backend/internal/queue"
	"github.com/review-with-friends/reviewwithfriends-backend/pkg/push"
)

// Notifier records inbox rows and enqueues best-effort pushes.
//
// Every method is best effort: callers must discard the returned error and
// never fail or delay their own response because of it. The error exists so
// the intentional discard is visible at the call site:
//
//	_ = notifier.ReviewLiked(ctx, actorID, review.UserID, review.ID)
type Notifier struct {
	queue     *queue.Queue
	directory push.UserDirectory
	store     push.NotificationStore
	logger    *slog.Logger
}

// New creates a notifier sharing the process-wide queue.
func New(q *queue.Queue, directory push.UserDirectory, store push.NotificationStore, logger *slog.Logger) *Notifier {
	return &Notifier{
		queue:     q,
		directory: directory,
		store:     store,
		logger:    logger.With("component", "Notifier"),
	}
}

// ReviewLiked notifies a review's author that actor liked it.
func (n *Notifier) ReviewLiked(ctx context.Context, actorID, targetID, reviewID string) error {
	if actorID == targetID {
		return nil
	}
	n.record(ctx, actorID, targetID, reviewID, push.ActionLike)
	return n.enqueuePush(ctx, actorID, targetID, reviewID, push.CategoryFavorite, "%s liked your review!")
}

// ReplyToAuthor notifies a review's author about a new reply.
func (n *Notifier) ReplyToAuthor(ctx context.Context, actorID, targetID, reviewID string) error {
	if actorID == targetID {
		return nil
	}
	n.record(ctx, actorID, targetID, reviewID, push.ActionReply)
	return n.enqueuePush(ctx, actorID, targetID, reviewID, push.CategoryReply, "%s replied to your review!")
}

// ReplyToReply notifies the owner of a parent reply that actor replied to it.
func (n *Notifier) ReplyToReply(ctx context.Context, actorID, targetID, reviewID string) error {
	if actorID == targetID {
		return nil
	}
	n.record(ctx, actorID, targetID, reviewID, push.ActionReplyTo)
	return n.enqueuePush(ctx, actorID, targetID, reviewID, push.CategoryReply, "%s replied to you!")
}

// FriendRequested notifies target of a new friend request. Friend requests
// have their own inbox in the friend tables, so no notification row is
// written here.
func (n *Notifier) FriendRequested(ctx context.Context, actorID, targetID string) error {
	if actorID == targetID {
		return nil
	}
	return n.enqueuePush(ctx, actorID, targetID, "", push.CategoryAdd, "%s sent you a friend request!")
}

// ReviewPosted notifies a friend that actor published a new review.
func (n *Notifier) ReviewPosted(ctx context.Context, actorID, targetID, reviewID string) error {
	if actorID == targetID {
		return nil
	}
	return n.enqueuePush(ctx, actorID, targetID, reviewID, push.CategoryPost, "%s just posted a new review!")
}

// record writes the reliable inbox row. Its failure is logged and otherwise
// ignored: it never blocks the push, and vice versa.
func (n *Notifier) record(ctx context.Context, actorID, targetID, subjectID string, action push.ActionType) {
	if err := n.store.Create(ctx, actorID, targetID, subjectID, action); err != nil {
		n.logger.Warn("failed to create notification record", "actor_id", actorID, "target_id", targetID, "err", err)
	}
}

// enqueuePush resolves both parties and queues the delivery item. The message
// format receives the actor's display name.
func (n *Notifier) enqueuePush(ctx context.Context, actorID, targetID, subjectID string, category push.Category, format string) error {
	target, err := n.directory.GetUser(ctx, targetID)
	if err != nil {
		return fmt.Errorf("resolve target user: %w", err)
	}
	if target == nil {
		return nil
	}

	actor, err := n.directory.GetUser(ctx, actorID)
	if err != nil {
		return fmt.Errorf("resolve acting user: %w", err)
	}
	if actor == nil {
		return nil
	}

	item := push.QueueItem{
		TargetUserID: target.ID,
		SubjectID:    subjectID,
		Message:      fmt.Sprintf(format, actor.DisplayName),
		Category:     category,
	}
	if err := n.queue.Enqueue(item); err != nil {
		n.logger.Warn("push dropped", "target_id", targetID, "category", category, "err", err)
		return err
	}
	return nil
}
