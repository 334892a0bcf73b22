package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	catalogdomain "github.com/tiffinlabs/dabba/internal/catalog/domain"
)

var (
	ErrSubscriptionNotFound = errors.New("subscription_not_found")
	ErrSubscriptionNotOwned = errors.New("subscription_not_owned")
	ErrInvalidStartDate     = errors.New("invalid_start_date")
	ErrInvalidEndReason     = errors.New("invalid_end_reason")
	ErrInvalidContainer     = errors.New("invalid_container_type")
)

// EndReason selects the terminal status a subscription ends with.
type EndReason string

const (
	EndReasonCompleted EndReason = "completed"
	EndReasonCancelled EndReason = "cancelled"
)

type CreateSubscriptionRequest struct {
	MealPackageID snowflake.ID                `json:"meal_package_id"`
	AddressID     snowflake.ID                `json:"address_id"`
	ContainerType catalogdomain.ContainerType `json:"container_type"`
	StartDate     time.Time                   `json:"start_date"`
}

type Service interface {
	// Create opens a subscription for the calling subscriber. At most one
	// active subscription may exist per subscriber at any time.
	Create(ctx context.Context, req CreateSubscriptionRequest) (Subscription, error)
	// End transitions an active subscription to completed or cancelled.
	// Ending an already-terminal subscription is an idempotent no-op.
	End(ctx context.Context, id snowflake.ID, reason EndReason) (Subscription, error)
	// GetActive returns the caller's active subscription.
	GetActive(ctx context.Context) (Subscription, error)
	// GetByID returns the caller's subscription by id.
	GetByID(ctx context.Context, id snowflake.ID) (Subscription, error)
}
