// Package domain contains persistence models and contracts for the meal
// schedule: lazily materialized per-date meal rows, the pause state machine,
// and its append-only audit trail.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	catalogdomain "github.com/tiffinlabs/dabba/internal/catalog/domain"
)

// MealState is the pause state machine: active and paused toggle freely, no
// terminal state.
type MealState string

const (
	MealStateActive MealState = "active"
	MealStatePaused MealState = "paused"
)

func StateOf(paused bool) MealState {
	if paused {
		return MealStatePaused
	}
	return MealStateActive
}

// ScheduledMeal is one deliverable meal on one service date. Rows exist only
// after materialization, are unique per (subscription, date, item type), and
// are never deleted; they are the historical record.
type ScheduledMeal struct {
	ID              snowflake.ID               `gorm:"primaryKey" json:"id"`
	SubscriptionID  snowflake.ID               `gorm:"not null;uniqueIndex:idx_meal_per_date,priority:1" json:"subscription_id"`
	SubscriberID    snowflake.ID               `gorm:"not null;index" json:"subscriber_id"`
	ServiceDate     time.Time                  `gorm:"type:date;not null;uniqueIndex:idx_meal_per_date,priority:2" json:"service_date"`
	ItemType        catalogdomain.ItemType     `gorm:"type:text;not null;uniqueIndex:idx_meal_per_date,priority:3" json:"item_type"`
	DeliverySlot    catalogdomain.DeliverySlot `gorm:"type:text;not null" json:"delivery_slot"`
	IsPaused        bool                       `gorm:"not null;default:false" json:"is_paused"`
	DeliveryGroupID *snowflake.ID              `gorm:"index" json:"delivery_group_id,omitempty"`
	UpgradeID       *snowflake.ID              `gorm:"index" json:"upgrade_id,omitempty"`
	CreatedAt       time.Time                  `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt       time.Time                  `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (ScheduledMeal) TableName() string { return "scheduled_meals" }

// PauseAuditEntry records one pause/unpause transition. Append-only;
// immutable once written.
type PauseAuditEntry struct {
	ID              snowflake.ID `gorm:"primaryKey" json:"id"`
	ScheduledMealID snowflake.ID `gorm:"not null;index" json:"scheduled_meal_id"`
	PreviousState   MealState    `gorm:"type:text;not null" json:"previous_state"`
	NewState        MealState    `gorm:"type:text;not null" json:"new_state"`
	ActorID         snowflake.ID `gorm:"not null" json:"actor_id"`
	CreatedAt       time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

func (PauseAuditEntry) TableName() string { return "pause_audit_entries" }
