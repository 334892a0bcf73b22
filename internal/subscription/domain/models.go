// Package domain contains persistence models and contracts for the
// subscription lifecycle manager.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	catalogdomain "github.com/tiffinlabs/dabba/internal/catalog/domain"
	"gorm.io/datatypes"
)

// Status represents lifecycle states for a subscription.
type Status string

const (
	StatusActive    Status = "active"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

// Terminal reports whether the status can no longer transition.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// Subscription is a subscriber's recurring meal delivery agreement.
// The partial unique index on subscriber_id is the storage-level backstop
// for the one-active-subscription invariant; the service layer re-checks it
// for a friendlier rejection before relying on the constraint.
type Subscription struct {
	ID            snowflake.ID                `gorm:"primaryKey" json:"id"`
	SubscriberID  snowflake.ID                `gorm:"not null;index;uniqueIndex:idx_subscriptions_one_active,where:status = 'active'" json:"subscriber_id"`
	MealPackageID snowflake.ID                `gorm:"not null;index" json:"meal_package_id"`
	AddressID     snowflake.ID                `gorm:"not null" json:"address_id"`
	ContainerType catalogdomain.ContainerType `gorm:"type:text;not null" json:"container_type"`
	StartDate     time.Time                   `gorm:"type:date;not null" json:"start_date"`
	EndDate       time.Time                   `gorm:"type:date;not null" json:"end_date"`
	Status        Status                      `gorm:"type:text;not null" json:"status"`
	EndedAt       *time.Time                  `gorm:"" json:"ended_at,omitempty"`
	Metadata      datatypes.JSONMap           `gorm:"type:jsonb" json:"metadata,omitempty"`
	CreatedAt     time.Time                   `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt     time.Time                   `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (Subscription) TableName() string { return "subscriptions" }

// CoversDate reports whether date falls inside the subscription period.
func (s Subscription) CoversDate(date time.Time) bool {
	return !date.Before(s.StartDate) && !date.After(s.EndDate)
}
