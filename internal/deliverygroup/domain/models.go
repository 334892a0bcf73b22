// Package domain contains persistence models and contracts for delivery
// groups: same-day, same-subscriber deliverable items merged to share one
// delivery slot and trip.
package domain

import (
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	catalogdomain "github.com/tiffinlabs/dabba/internal/catalog/domain"
	scheduledomain "github.com/tiffinlabs/dabba/internal/schedule/domain"
	walletdomain "github.com/tiffinlabs/dabba/internal/wallet/domain"
)

var (
	ErrGroupNotFound        = errors.New("group_not_found")
	ErrGroupNotOwned        = errors.New("group_not_owned")
	ErrMemberNotFound       = errors.New("member_not_found")
	ErrMemberNotOwned       = errors.New("member_not_owned")
	ErrMemberCancelled      = errors.New("member_cancelled")
	ErrMemberAlreadyGrouped = errors.New("member_already_grouped")
	ErrInvalidMemberKind    = errors.New("invalid_member_kind")
)

// MemberKind tags what a group member reference points at.
type MemberKind string

const (
	MemberMeal       MemberKind = "meal"
	MemberCurryOrder MemberKind = "curry_order"
)

// MemberRef identifies one deliverable item in caller-provided order.
type MemberRef struct {
	Kind MemberKind   `json:"kind"`
	ID   snowflake.ID `json:"id"`
}

// DeliveryGroup merges its members onto one delivery slot. It references
// members but does not own them: ungrouping leaves each member's slot as it
// was while grouped.
type DeliveryGroup struct {
	ID           snowflake.ID               `gorm:"primaryKey" json:"id"`
	SubscriberID snowflake.ID               `gorm:"not null;index" json:"subscriber_id"`
	ServiceDate  time.Time                  `gorm:"type:date;not null" json:"service_date"`
	DeliverySlot catalogdomain.DeliverySlot `gorm:"type:text;not null" json:"delivery_slot"`
	CreatedAt    time.Time                  `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

func (DeliveryGroup) TableName() string { return "delivery_groups" }

// GroupResult is a group with its resolved members.
type GroupResult struct {
	Group  DeliveryGroup                 `json:"group"`
	Meals  []scheduledomain.ScheduledMeal `json:"meals"`
	Orders []walletdomain.CurryOrder     `json:"orders"`
}
