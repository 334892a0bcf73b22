// Package notification is the fire-and-forget event sink the core publishes
// lifecycle events to. Delivery is best effort; nothing in the core depends
// on an event having been received.
package notification

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Event names published by the core.
const (
	EventSubscriptionActivated = "subscription.activated"
	EventSubscriptionEnded     = "subscription.ended"
	EventWalletPurchased       = "wallet.purchased"
	EventOrderPlaced           = "order.placed"
	EventOrderCancelled        = "order.cancelled"
	EventUpgradeApplied        = "upgrade.applied"
	EventUpgradeRemoved        = "upgrade.removed"
)

type Event struct {
	Name         string
	SubscriberID snowflake.ID
	Payload      map[string]any
}

type Notifier interface {
	// Publish never returns an error; sinks swallow their own failures.
	Publish(ctx context.Context, event Event)
}

// Module provides the default log-backed notifier.
var Module = fx.Provide(NewLogNotifier)

// LogNotifier writes events to the structured log. Production deployments
// swap in a push-gateway sink behind the same interface.
type LogNotifier struct {
	log *zap.Logger
}

func NewLogNotifier(logger *zap.Logger) Notifier {
	return &LogNotifier{log: logger.Named("notification")}
}

func (n *LogNotifier) Publish(_ context.Context, event Event) {
	n.log.Info("event published",
		zap.String("event", event.Name),
		zap.String("subscriber_id", event.SubscriberID.String()),
		zap.Any("payload", event.Payload),
	)
}
