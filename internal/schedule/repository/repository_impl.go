package repository

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	scheduledomain "github.com/tiffinlabs/dabba/internal/schedule/domain"
	pkgdb "github.com/tiffinlabs/dabba/pkg/db"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type repo struct{}

func Provide() scheduledomain.Repository {
	return &repo{}
}

func (r *repo) UpsertMeals(ctx context.Context, db *gorm.DB, meals []scheduledomain.ScheduledMeal) error {
	if len(meals) == 0 {
		return nil
	}
	return db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{
				{Name: "subscription_id"},
				{Name: "service_date"},
				{Name: "item_type"},
			},
			DoNothing: true,
		}).
		Create(&meals).Error
}

func (r *repo) FindByDate(ctx context.Context, db *gorm.DB, subscriptionID snowflake.ID, date time.Time) ([]scheduledomain.ScheduledMeal, error) {
	var meals []scheduledomain.ScheduledMeal
	err := db.WithContext(ctx).
		Where("subscription_id = ? AND service_date = ?", subscriptionID, date).
		Order("item_type").
		Find(&meals).Error
	return meals, err
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*scheduledomain.ScheduledMeal, error) {
	var meal scheduledomain.ScheduledMeal
	err := db.WithContext(ctx).Where("id = ?", id).First(&meal).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &meal, nil
}

func (r *repo) FindByIDForUpdate(ctx context.Context, db *gorm.DB, id snowflake.ID) (*scheduledomain.ScheduledMeal, error) {
	var meal scheduledomain.ScheduledMeal
	err := pkgdb.ForUpdate(db.WithContext(ctx)).
		Where("id = ?", id).
		First(&meal).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &meal, nil
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, meal *scheduledomain.ScheduledMeal) error {
	return db.WithContext(ctx).Save(meal).Error
}

func (r *repo) InsertAudit(ctx context.Context, db *gorm.DB, entry *scheduledomain.PauseAuditEntry) error {
	return db.WithContext(ctx).Create(entry).Error
}

func (r *repo) ListAudit(ctx context.Context, db *gorm.DB, mealID snowflake.ID) ([]scheduledomain.PauseAuditEntry, error) {
	var entries []scheduledomain.PauseAuditEntry
	err := db.WithContext(ctx).
		Where("scheduled_meal_id = ?", mealID).
		Order("id").
		Find(&entries).Error
	return entries, err
}
