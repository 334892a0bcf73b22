// Package domain contains the reference catalog: meal packages, curry token
// packages, upgrade price rules, and the subscriber address book. Catalog
// rows are read-only from the core's perspective.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

// ItemType is a deliverable meal slot within a package.
type ItemType string

const (
	ItemBreakfast ItemType = "breakfast"
	ItemLunch     ItemType = "lunch"
	ItemSnacks    ItemType = "snacks"
	ItemDinner    ItemType = "dinner"
)

// DeliverySlot is a delivery time band.
type DeliverySlot string

const (
	SlotMorning   DeliverySlot = "morning"
	SlotAfternoon DeliverySlot = "afternoon"
	SlotEvening   DeliverySlot = "evening"
	SlotNight     DeliverySlot = "night"
)

// DefaultSlotFor returns the delivery slot an item type ships in unless a
// delivery group overrides it.
func DefaultSlotFor(item ItemType) DeliverySlot {
	switch item {
	case ItemBreakfast:
		return SlotMorning
	case ItemLunch:
		return SlotAfternoon
	case ItemSnacks:
		return SlotEvening
	default:
		return SlotNight
	}
}

type DietType string

const (
	DietVeg    DietType = "veg"
	DietNonVeg DietType = "nonveg"
)

type CuisineType string

const (
	CuisineSouthIndian CuisineType = "south_indian"
	CuisineNorthIndian CuisineType = "north_indian"
)

type ContainerType string

const (
	ContainerSteel      ContainerType = "steel"
	ContainerDisposable ContainerType = "disposable"
)

type UpgradeType string

const (
	UpgradeVegToNonVeg  UpgradeType = "veg_to_nonveg"
	UpgradeSouthToNorth UpgradeType = "south_to_north"
)

type UpgradeScope string

const (
	ScopeMeal UpgradeScope = "meal"
	ScopeDay  UpgradeScope = "day"
	ScopeWeek UpgradeScope = "week"
)

// MealPackage is a catalog definition a subscription is created from.
type MealPackage struct {
	ID                    snowflake.ID                   `gorm:"primaryKey" json:"id"`
	Name                  string                         `gorm:"type:text;not null" json:"name"`
	DietType              DietType                       `gorm:"type:text;not null" json:"diet_type"`
	CuisineType           CuisineType                    `gorm:"type:text;not null" json:"cuisine_type"`
	ItemTypes             datatypes.JSONSlice[ItemType]  `gorm:"not null" json:"item_types"`
	DurationDays          int                            `gorm:"not null" json:"duration_days"`
	DefaultContainer      ContainerType                  `gorm:"type:text;not null" json:"default_container"`
	AllowsDietUpgrade     bool                           `gorm:"not null;default:false" json:"allows_diet_upgrade"`
	AllowsCuisineUpgrade  bool                           `gorm:"not null;default:false" json:"allows_cuisine_upgrade"`
	AllowsContainerChoice bool                           `gorm:"not null;default:false" json:"allows_container_choice"`
	PriceRupees           int64                          `gorm:"not null" json:"price_rupees"`
	CreatedAt             time.Time                      `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt             time.Time                      `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (MealPackage) TableName() string { return "meal_packages" }

// Includes reports whether the package ships the given item type.
func (p MealPackage) Includes(item ItemType) bool {
	for _, it := range p.ItemTypes {
		if it == item {
			return true
		}
	}
	return false
}

// AllowsUpgrade reports whether the package permits the given upgrade type.
func (p MealPackage) AllowsUpgrade(t UpgradeType) bool {
	switch t {
	case UpgradeVegToNonVeg:
		return p.AllowsDietUpgrade
	case UpgradeSouthToNorth:
		return p.AllowsCuisineUpgrade
	default:
		return false
	}
}

// CurryTokenPackage is a purchasable bundle of curry tokens.
type CurryTokenPackage struct {
	ID           snowflake.ID `gorm:"primaryKey" json:"id"`
	Name         string       `gorm:"type:text;not null" json:"name"`
	DietType     DietType     `gorm:"type:text;not null" json:"diet_type"`
	TokenCount   int          `gorm:"not null" json:"token_count"`
	ValidityDays int          `gorm:"not null" json:"validity_days"`
	PriceRupees  int64        `gorm:"not null" json:"price_rupees"`
	CreatedAt    time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

func (CurryTokenPackage) TableName() string { return "curry_token_packages" }

// UpgradePriceRule prices an upgrade by (type, scope, meal type).
// MealType is set only for meal-scoped rules.
type UpgradePriceRule struct {
	ID          snowflake.ID `gorm:"primaryKey" json:"id"`
	UpgradeType UpgradeType  `gorm:"type:text;not null;index:idx_price_rule" json:"upgrade_type"`
	Scope       UpgradeScope `gorm:"type:text;not null;index:idx_price_rule" json:"scope"`
	MealType    *ItemType    `gorm:"type:text;index:idx_price_rule" json:"meal_type,omitempty"`
	PriceRupees int64        `gorm:"not null" json:"price_rupees"`
	CreatedAt   time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

func (UpgradePriceRule) TableName() string { return "upgrade_price_rules" }

// Address is a delivery address owned by a subscriber. The address book is
// managed outside this core; subscription creation only checks ownership.
type Address struct {
	ID           snowflake.ID `gorm:"primaryKey" json:"id"`
	SubscriberID snowflake.ID `gorm:"not null;index" json:"subscriber_id"`
	Label        string       `gorm:"type:text" json:"label"`
	Line1        string       `gorm:"type:text;not null" json:"line1"`
	Line2        string       `gorm:"type:text" json:"line2"`
	City         string       `gorm:"type:text;not null" json:"city"`
	Pincode      string       `gorm:"type:text;not null" json:"pincode"`
	CreatedAt    time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

func (Address) TableName() string { return "addresses" }
