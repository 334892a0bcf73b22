package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, upgrade *SubscriptionUpgrade) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*SubscriptionUpgrade, error)
	FindByIDForUpdate(ctx context.Context, db *gorm.DB, id snowflake.ID) (*SubscriptionUpgrade, error)
	// FindCovering returns the upgrades of a subscription whose date range
	// includes the given service date.
	FindCovering(ctx context.Context, db *gorm.DB, subscriptionID snowflake.ID, date time.Time) ([]SubscriptionUpgrade, error)
	Delete(ctx context.Context, db *gorm.DB, id snowflake.ID) error
	// TagMeals stamps the upgrade onto every already-materialized meal it
	// covers; UntagMeals clears the stamp again.
	TagMeals(ctx context.Context, db *gorm.DB, upgrade *SubscriptionUpgrade) error
	UntagMeals(ctx context.Context, db *gorm.DB, upgradeID snowflake.ID) error
}
