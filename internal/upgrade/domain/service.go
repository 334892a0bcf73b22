package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	catalogdomain "github.com/tiffinlabs/dabba/internal/catalog/domain"
)

var (
	ErrUpgradeNotFound     = errors.New("upgrade_not_found")
	ErrUpgradeNotOwned     = errors.New("upgrade_not_owned")
	ErrInvalidUpgradeRange = errors.New("invalid_upgrade_range")
	ErrMissingMealType     = errors.New("missing_meal_type")
)

type ApplyUpgradeRequest struct {
	SubscriptionID snowflake.ID               `json:"subscription_id"`
	UpgradeType    catalogdomain.UpgradeType  `json:"upgrade_type"`
	Scope          catalogdomain.UpgradeScope `json:"scope"`
	MealType       *catalogdomain.ItemType    `json:"meal_type,omitempty"`
	StartDate      time.Time                  `json:"start_date"`
	EndDate        time.Time                  `json:"end_date"`
}

type Service interface {
	// Apply validates eligibility, prices the upgrade, persists it, and tags
	// every already-materialized meal it covers.
	Apply(ctx context.Context, req ApplyUpgradeRequest) (SubscriptionUpgrade, error)
	// Remove deletes an upgrade that has not started yet and untags the
	// meals it covered.
	Remove(ctx context.Context, id snowflake.ID) error
}
