// Package notifications publishes notification events on admin and
// per-user Redis channels.
package notifications

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"wayfarer/internal/middleware"

	"github.com/redis/go-redis/v9"
)

// Event types published on the admin channel.
const (
	EventContactMessage   = "contact_message"
	EventObjectiveInquiry = "objective_inquiry"
	EventGuideBooking     = "guide_booking"
	EventReportFiled      = "report_filed"
)

// Event types published on per-user channels.
const (
	EventReportClosed = "report_closed"
)

const adminChannel = "notifications:admin"

// Notifier publishes notification payloads into Redis channels. Delivery is
// best effort: a nil client or a publish failure is logged and counted, never
// surfaced to the caller.
type Notifier struct {
	rdb *redis.Client
}

// NewNotifier creates a new Notifier using the provided Redis client.
// A nil client yields a no-op notifier.
func NewNotifier(rdb *redis.Client) *Notifier {
	return &Notifier{rdb: rdb}
}

// Event is the wire shape published to subscribers.
type Event struct {
	Type       string         `json:"type"`
	Recipient  string         `json:"recipient,omitempty"`
	Data       map[string]any `json:"data,omitempty"`
	OccurredAt time.Time      `json:"occurred_at"`
}

// NotifyAdmin publishes an event to the admin channel. Errors are swallowed
// after logging so submission paths never fail on notification trouble.
func (n *Notifier) NotifyAdmin(ctx context.Context, eventType, recipient string, data map[string]any) {
	if n == nil || n.rdb == nil {
		return
	}
	payload, err := json.Marshal(Event{
		Type:       eventType,
		Recipient:  recipient,
		Data:       data,
		OccurredAt: time.Now().UTC(),
	})
	if err != nil {
		middleware.NotificationFailures.Inc()
		slog.WarnContext(ctx, "notification payload marshal failed", "type", eventType, "error", err)
		return
	}
	if err := n.rdb.Publish(ctx, adminChannel, string(payload)).Err(); err != nil {
		middleware.NotificationFailures.Inc()
		slog.WarnContext(ctx, "notification publish failed", "type", eventType, "error", err)
	}
}

// NotifyUser publishes an event to a single user's channel, same best-effort
// semantics as NotifyAdmin.
func (n *Notifier) NotifyUser(ctx context.Context, userID uint, eventType string, data map[string]any) {
	if n == nil || n.rdb == nil {
		return
	}
	payload, err := json.Marshal(Event{
		Type:       eventType,
		Data:       data,
		OccurredAt: time.Now().UTC(),
	})
	if err != nil {
		middleware.NotificationFailures.Inc()
		slog.WarnContext(ctx, "notification payload marshal failed", "type", eventType, "error", err)
		return
	}
	channel := fmt.Sprintf("notifications:user:%d", userID)
	if err := n.rdb.Publish(ctx, channel, string(payload)).Err(); err != nil {
		middleware.NotificationFailures.Inc()
		slog.WarnContext(ctx, "notification publish failed", "type", eventType, "user_id", userID, "error", err)
	}
}
