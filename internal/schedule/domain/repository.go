package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	// UpsertMeals inserts the given rows, silently skipping any that
	// collide with the (subscription, date, item type) unique index.
	UpsertMeals(ctx context.Context, db *gorm.DB, meals []ScheduledMeal) error
	FindByDate(ctx context.Context, db *gorm.DB, subscriptionID snowflake.ID, date time.Time) ([]ScheduledMeal, error)
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*ScheduledMeal, error)
	FindByIDForUpdate(ctx context.Context, db *gorm.DB, id snowflake.ID) (*ScheduledMeal, error)
	Update(ctx context.Context, db *gorm.DB, meal *ScheduledMeal) error
	InsertAudit(ctx context.Context, db *gorm.DB, entry *PauseAuditEntry) error
	ListAudit(ctx context.Context, db *gorm.DB, mealID snowflake.ID) ([]PauseAuditEntry, error)
}
