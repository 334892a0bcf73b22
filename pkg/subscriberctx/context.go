// Package subscriberctx carries the gateway-verified subscriber identity
// through the request context.
package subscriberctx

import (
	"context"

	"github.com/bwmarrin/snowflake"
)

type keyType string

const subscriberIDKey keyType = "subscriber_id"

// WithSubscriberID annotates ctx with the verified subscriber id.
func WithSubscriberID(ctx context.Context, id snowflake.ID) context.Context {
	return context.WithValue(ctx, subscriberIDKey, id)
}

// SubscriberID returns the verified subscriber id, if present.
func SubscriberID(ctx context.Context) (snowflake.ID, bool) {
	id, ok := ctx.Value(subscriberIDKey).(snowflake.ID)
	return id, ok
}
