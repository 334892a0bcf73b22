package repository

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	catalogdomain "github.com/tiffinlabs/dabba/internal/catalog/domain"
	scheduledomain "github.com/tiffinlabs/dabba/internal/schedule/domain"
	upgradedomain "github.com/tiffinlabs/dabba/internal/upgrade/domain"
	pkgdb "github.com/tiffinlabs/dabba/pkg/db"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() upgradedomain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, upgrade *upgradedomain.SubscriptionUpgrade) error {
	return db.WithContext(ctx).Create(upgrade).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*upgradedomain.SubscriptionUpgrade, error) {
	return r.findByID(ctx, db, id, false)
}

func (r *repo) FindByIDForUpdate(ctx context.Context, db *gorm.DB, id snowflake.ID) (*upgradedomain.SubscriptionUpgrade, error) {
	return r.findByID(ctx, db, id, true)
}

func (r *repo) findByID(ctx context.Context, db *gorm.DB, id snowflake.ID, lock bool) (*upgradedomain.SubscriptionUpgrade, error) {
	stmt := db.WithContext(ctx)
	if lock {
		stmt = pkgdb.ForUpdate(stmt)
	}

	var upgrade upgradedomain.SubscriptionUpgrade
	err := stmt.Where("id = ?", id).First(&upgrade).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &upgrade, nil
}

func (r *repo) FindCovering(ctx context.Context, db *gorm.DB, subscriptionID snowflake.ID, date time.Time) ([]upgradedomain.SubscriptionUpgrade, error) {
	var upgrades []upgradedomain.SubscriptionUpgrade
	err := db.WithContext(ctx).
		Where("subscription_id = ? AND start_date <= ? AND end_date >= ?", subscriptionID, date, date).
		Order("id").
		Find(&upgrades).Error
	return upgrades, err
}

func (r *repo) Delete(ctx context.Context, db *gorm.DB, id snowflake.ID) error {
	return db.WithContext(ctx).Where("id = ?", id).Delete(&upgradedomain.SubscriptionUpgrade{}).Error
}

// TagMeals stamps the upgrade onto every already-materialized meal it
// covers: one date-range update for meal and day scopes, one update per full
// calendar week for week scope.
func (r *repo) TagMeals(ctx context.Context, db *gorm.DB, upgrade *upgradedomain.SubscriptionUpgrade) error {
	switch upgrade.Scope {
	case catalogdomain.ScopeMeal:
		return db.WithContext(ctx).
			Model(&scheduledomain.ScheduledMeal{}).
			Where("subscription_id = ? AND service_date BETWEEN ? AND ? AND item_type = ?",
				upgrade.SubscriptionID, upgrade.StartDate, upgrade.EndDate, *upgrade.MealType).
			Update("upgrade_id", upgrade.ID).Error
	case catalogdomain.ScopeDay:
		return db.WithContext(ctx).
			Model(&scheduledomain.ScheduledMeal{}).
			Where("subscription_id = ? AND service_date BETWEEN ? AND ?",
				upgrade.SubscriptionID, upgrade.StartDate, upgrade.EndDate).
			Update("upgrade_id", upgrade.ID).Error
	case catalogdomain.ScopeWeek:
		for _, monday := range upgradedomain.FullCalendarWeeks(upgrade.StartDate, upgrade.EndDate) {
			err := db.WithContext(ctx).
				Model(&scheduledomain.ScheduledMeal{}).
				Where("subscription_id = ? AND service_date BETWEEN ? AND ?",
					upgrade.SubscriptionID, monday, monday.AddDate(0, 0, 6)).
				Update("upgrade_id", upgrade.ID).Error
			if err != nil {
				return err
			}
		}
		return nil
	default:
		return nil
	}
}

// UntagMeals clears the upgrade from every meal it was stamped on.
func (r *repo) UntagMeals(ctx context.Context, db *gorm.DB, upgradeID snowflake.ID) error {
	return db.WithContext(ctx).
		Model(&scheduledomain.ScheduledMeal{}).
		Where("upgrade_id = ?", upgradeID).
		Update("upgrade_id", nil).Error
}
