package repository

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	catalogdomain "github.com/tiffinlabs/dabba/internal/catalog/domain"
	groupdomain "github.com/tiffinlabs/dabba/internal/deliverygroup/domain"
	scheduledomain "github.com/tiffinlabs/dabba/internal/schedule/domain"
	walletdomain "github.com/tiffinlabs/dabba/internal/wallet/domain"
	pkgdb "github.com/tiffinlabs/dabba/pkg/db"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() groupdomain.Repository {
	return &repo{}
}

func (r *repo) InsertGroup(ctx context.Context, db *gorm.DB, group *groupdomain.DeliveryGroup) error {
	return db.WithContext(ctx).Create(group).Error
}

func (r *repo) FindGroupByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*groupdomain.DeliveryGroup, error) {
	return r.findGroup(ctx, db, id, false)
}

func (r *repo) FindGroupByIDForUpdate(ctx context.Context, db *gorm.DB, id snowflake.ID) (*groupdomain.DeliveryGroup, error) {
	return r.findGroup(ctx, db, id, true)
}

func (r *repo) findGroup(ctx context.Context, db *gorm.DB, id snowflake.ID, lock bool) (*groupdomain.DeliveryGroup, error) {
	stmt := db.WithContext(ctx)
	if lock {
		stmt = pkgdb.ForUpdate(stmt)
	}

	var group groupdomain.DeliveryGroup
	err := stmt.Where("id = ?", id).First(&group).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &group, nil
}

func (r *repo) DeleteGroup(ctx context.Context, db *gorm.DB, id snowflake.ID) error {
	return db.WithContext(ctx).Where("id = ?", id).Delete(&groupdomain.DeliveryGroup{}).Error
}

func (r *repo) FindMealForUpdate(ctx context.Context, db *gorm.DB, id snowflake.ID) (*scheduledomain.ScheduledMeal, error) {
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

func (r *repo) FindOrderForUpdate(ctx context.Context, db *gorm.DB, id snowflake.ID) (*walletdomain.CurryOrder, error) {
	var order walletdomain.CurryOrder
	err := pkgdb.ForUpdate(db.WithContext(ctx)).
		Where("id = ?", id).
		First(&order).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &order, nil
}

func (r *repo) AssignMeal(ctx context.Context, db *gorm.DB, mealID snowflake.ID, groupID *snowflake.ID, slot catalogdomain.DeliverySlot) error {
	return db.WithContext(ctx).
		Model(&scheduledomain.ScheduledMeal{}).
		Where("id = ?", mealID).
		Updates(map[string]any{
			"delivery_group_id": groupID,
			"delivery_slot":     slot,
			"updated_at":        time.Now().UTC(),
		}).Error
}

func (r *repo) AssignOrder(ctx context.Context, db *gorm.DB, orderID snowflake.ID, groupID *snowflake.ID, slot catalogdomain.DeliverySlot) error {
	return db.WithContext(ctx).
		Model(&walletdomain.CurryOrder{}).
		Where("id = ?", orderID).
		Updates(map[string]any{
			"delivery_group_id": groupID,
			"delivery_slot":     slot,
			"updated_at":        time.Now().UTC(),
		}).Error
}

func (r *repo) DetachMembers(ctx context.Context, db *gorm.DB, groupID snowflake.ID) error {
	if err := db.WithContext(ctx).
		Model(&scheduledomain.ScheduledMeal{}).
		Where("delivery_group_id = ?", groupID).
		Update("delivery_group_id", nil).Error; err != nil {
		return err
	}
	return db.WithContext(ctx).
		Model(&walletdomain.CurryOrder{}).
		Where("delivery_group_id = ?", groupID).
		Update("delivery_group_id", nil).Error
}

func (r *repo) ListMembers(ctx context.Context, db *gorm.DB, groupID snowflake.ID) ([]scheduledomain.ScheduledMeal, []walletdomain.CurryOrder, error) {
	var meals []scheduledomain.ScheduledMeal
	if err := db.WithContext(ctx).
		Where("delivery_group_id = ?", groupID).
		Order("id").
		Find(&meals).Error; err != nil {
		return nil, nil, err
	}

	var orders []walletdomain.CurryOrder
	if err := db.WithContext(ctx).
		Where("delivery_group_id = ?", groupID).
		Order("id").
		Find(&orders).Error; err != nil {
		return nil, nil, err
	}
	return meals, orders, nil
}
