// Package domain contains persistence models and contracts for temporary
// diet/cuisine upgrades applied to scheduled meals.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	catalogdomain "github.com/tiffinlabs/dabba/internal/catalog/domain"
)

// SubscriptionUpgrade is a purchased temporary diet or cuisine change over a
// date range of a subscription. Removable only while it has not started.
type SubscriptionUpgrade struct {
	ID               snowflake.ID               `gorm:"primaryKey" json:"id"`
	SubscriptionID   snowflake.ID               `gorm:"not null;index" json:"subscription_id"`
	SubscriberID     snowflake.ID               `gorm:"not null;index" json:"subscriber_id"`
	UpgradeType      catalogdomain.UpgradeType  `gorm:"type:text;not null" json:"upgrade_type"`
	Scope            catalogdomain.UpgradeScope `gorm:"type:text;not null" json:"scope"`
	MealType         *catalogdomain.ItemType    `gorm:"type:text" json:"meal_type,omitempty"`
	StartDate        time.Time                  `gorm:"type:date;not null" json:"start_date"`
	EndDate          time.Time                  `gorm:"type:date;not null" json:"end_date"`
	TotalPriceRupees int64                      `gorm:"not null" json:"total_price_rupees"`
	CreatedAt        time.Time                  `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

func (SubscriptionUpgrade) TableName() string { return "subscription_upgrades" }

// CoversMeal reports whether the upgrade applies to a meal of the given item
// type on the given service date. Week scope only covers dates inside full
// Monday-start calendar weeks contained in the upgrade range.
func (u SubscriptionUpgrade) CoversMeal(date time.Time, itemType catalogdomain.ItemType) bool {
	if date.Before(u.StartDate) || date.After(u.EndDate) {
		return false
	}
	switch u.Scope {
	case catalogdomain.ScopeMeal:
		return u.MealType != nil && *u.MealType == itemType
	case catalogdomain.ScopeDay:
		return true
	case catalogdomain.ScopeWeek:
		for _, monday := range FullCalendarWeeks(u.StartDate, u.EndDate) {
			if !date.Before(monday) && !date.After(monday.AddDate(0, 0, 6)) {
				return true
			}
		}
		return false
	default:
		return false
	}
}

// FullCalendarWeeks returns the Monday start of every Monday-to-Sunday week
// fully contained in [start, end].
func FullCalendarWeeks(start, end time.Time) []time.Time {
	monday := start
	for monday.Weekday() != time.Monday {
		monday = monday.AddDate(0, 0, 1)
	}

	var weeks []time.Time
	for !monday.AddDate(0, 0, 6).After(end) {
		weeks = append(weeks, monday)
		monday = monday.AddDate(0, 0, 7)
	}
	return weeks
}

// InclusiveDays counts the days in [start, end], both ends included.
func InclusiveDays(start, end time.Time) int {
	days := 0
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		days++
	}
	return days
}
