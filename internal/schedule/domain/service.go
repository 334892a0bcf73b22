package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
)

var (
	ErrMealNotFound = errors.New("meal_not_found")
	ErrMealNotOwned = errors.New("meal_not_owned")
)

// DaySchedule is the materialized meal set for one service date.
type DaySchedule struct {
	ServiceDate time.Time       `json:"service_date"`
	Meals       []ScheduledMeal `json:"meals"`
}

type Service interface {
	// EnsureScheduled lazily materializes the meal rows of a subscription
	// for a date inside the two-day window. Idempotent and race-safe:
	// concurrent calls never produce duplicate rows. Returns the full row
	// set for the date, newly created or pre-existing.
	EnsureScheduled(ctx context.Context, subscriptionID snowflake.ID, date time.Time) ([]ScheduledMeal, error)
	// Schedule materializes and returns today's and tomorrow's meals for
	// the caller's active subscription.
	Schedule(ctx context.Context) ([]DaySchedule, error)
	// SetPaused transitions a meal between active and paused under the
	// window and cutoff rules, appending one audit entry per effective
	// transition. The caller is the acting subscriber.
	SetPaused(ctx context.Context, mealID snowflake.ID, paused bool) (ScheduledMeal, error)
	// AuditTrail returns the pause transitions of a meal, oldest first.
	AuditTrail(ctx context.Context, mealID snowflake.ID) ([]PauseAuditEntry, error)
}
