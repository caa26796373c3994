// Package dispatch runs the single background consumer that drains the
// notification queue and performs delivery.
package dispatch

import (
	"context"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/review-with-friends/reviewwithfriends-backend/internal/queue"
	"github.com/review-with-friends/reviewwithfriends-backend/pkg/push"
)

// Hooks let the pool owner observe outcomes without coupling the dispatcher
// to a metrics backend. Nil hooks are replaced with no-ops.
type Hooks struct {
	OnDelivered func(latency time.Duration)
	OnFailed    func()
	OnSkipped   func()
}

// Dispatcher is the single long-lived consumer of the queue. Exactly one
// delivery is in flight at a time; a slow delivery delays all subsequent
// items. That throughput ceiling is accepted for this traffic volume.
type Dispatcher struct {
	queue     *queue.Queue
	directory push.UserDirectory
	gateway   push.GatewayClient
	tracer    trace.Tracer
	logger    *slog.Logger
	hooks     Hooks
}

// New creates a dispatcher. Run must be called exactly once.
func New(q *queue.Queue, directory push.UserDirectory, gateway push.GatewayClient, logger *slog.Logger, hooks Hooks) *Dispatcher {
	if hooks.OnDelivered == nil {
		hooks.OnDelivered = func(time.Duration) {}
	}
	if hooks.OnFailed == nil {
		hooks.OnFailed = func() {}
	}
	if hooks.OnSkipped == nil {
		hooks.OnSkipped = func() {}
	}
	return &Dispatcher{
		queue:     q,
		directory: directory,
		gateway:   gateway,
		tracer:    otel.Tracer("apple-push-notification"),
		logger:    logger.With("component", "Dispatcher"),
		hooks:     hooks,
	}
}

// Run blocks until ctx is cancelled, delivering one queue item per iteration.
// The dispatcher suspends on the queue receive when idle; there is no polling
// interval.
func (d *Dispatcher) Run(ctx context.Context) {
	d.logger.Info("dispatcher started")
	for {
		item, ok := d.queue.Dequeue(ctx)
		if !ok {
			d.logger.Info("dispatcher stopping")
			return
		}
		d.process(ctx, item)
	}
}

// process performs one delivery attempt. The outcome is terminal either way:
// the item is never re-enqueued.
func (d *Dispatcher) process(ctx context.Context, item push.QueueItem) {
	ctx, span := d.tracer.Start(ctx, "notification.deliver",
		trace.WithAttributes(attribute.String("push.category", string(item.Category))))
	defer span.End()

	start := time.Now()

	user, err := d.directory.GetUser(ctx, item.TargetUserID)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		d.logger.Warn("user lookup failed, dropping notification", "user_id", item.TargetUserID, "err", err)
		d.hooks.OnFailed()
		return
	}

	// A missing user or device token is expected, not an error.
	if user == nil || user.DeviceToken == "" {
		span.AddEvent("no device token; notification discarded")
		d.hooks.OnSkipped()
		return
	}

	if err := d.gateway.Send(ctx, user.DeviceToken, item.Message, item.Category, item.SubjectID); err != nil {
		span.SetStatus(codes.Error, err.Error())
		d.logger.Warn("delivery failed", "user_id", item.TargetUserID, "err", err)
		d.hooks.OnFailed()
		return
	}

	d.hooks.OnDelivered(time.Since(start))
}
