package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	catalogdomain "github.com/tiffinlabs/dabba/internal/catalog/domain"
	catalogrepository "github.com/tiffinlabs/dabba/internal/catalog/repository"
	catalogservice "github.com/tiffinlabs/dabba/internal/catalog/service"
	"github.com/tiffinlabs/dabba/internal/clock"
	"github.com/tiffinlabs/dabba/internal/config"
	"github.com/tiffinlabs/dabba/internal/notification"
	scheduledomain "github.com/tiffinlabs/dabba/internal/schedule/domain"
	"github.com/tiffinlabs/dabba/internal/schedule/repository"
	subscriptiondomain "github.com/tiffinlabs/dabba/internal/subscription/domain"
	subscriptionrepository "github.com/tiffinlabs/dabba/internal/subscription/repository"
	subscriptionservice "github.com/tiffinlabs/dabba/internal/subscription/service"
	upgradedomain "github.com/tiffinlabs/dabba/internal/upgrade/domain"
	upgraderepository "github.com/tiffinlabs/dabba/internal/upgrade/repository"
	"github.com/tiffinlabs/dabba/pkg/rules"
	"github.com/tiffinlabs/dabba/pkg/subscriberctx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

var ist = time.FixedZone("IST", 5*3600+1800)

type fixture struct {
	db   *gorm.DB
	node *snowflake.Node
	clk  *clock.FakeClock
	svc  scheduledomain.Service

	subscriberID snowflake.ID
	subscription subscriptiondomain.Subscription
	pkg          catalogdomain.MealPackage
}

func setupService(t *testing.T) *fixture {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&catalogdomain.MealPackage{},
		&catalogdomain.Address{},
		&subscriptiondomain.Subscription{},
		&scheduledomain.ScheduledMeal{},
		&scheduledomain.PauseAuditEntry{},
		&upgradedomain.SubscriptionUpgrade{},
	))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	clk := clock.NewFakeClock(time.Date(2026, 3, 10, 10, 0, 0, 0, ist))

	catalogSvc := catalogservice.NewService(catalogservice.ServiceParam{
		DB:   db,
		Log:  zap.NewNop(),
		Repo: catalogrepository.Provide(),
	})
	subscriptionSvc := subscriptionservice.NewService(subscriptionservice.ServiceParam{
		DB:       db,
		Log:      zap.NewNop(),
		GenID:    node,
		Clock:    clk,
		Repo:     subscriptionrepository.Provide(),
		Catalog:  catalogSvc,
		Notifier: notification.NewLogNotifier(zap.NewNop()),
	})

	svc := NewService(ServiceParam{
		DB:            db,
		Log:           zap.NewNop(),
		Cfg:           config.Config{CutoffHour: 20},
		GenID:         node,
		Clock:         clk,
		Repo:          repository.Provide(),
		UpgradeRepo:   upgraderepository.Provide(),
		Subscriptions: subscriptionSvc,
		Catalog:       catalogSvc,
	})

	f := &fixture{db: db, node: node, clk: clk, svc: svc, subscriberID: node.Generate()}
	f.pkg = catalogdomain.MealPackage{
		ID:          node.Generate(),
		Name:        "South Veg Lunch+Dinner (30d)",
		DietType:    catalogdomain.DietVeg,
		CuisineType: catalogdomain.CuisineSouthIndian,
		ItemTypes: datatypes.NewJSONSlice([]catalogdomain.ItemType{
			catalogdomain.ItemLunch,
			catalogdomain.ItemDinner,
		}),
		DurationDays:     30,
		DefaultContainer: catalogdomain.ContainerSteel,
		PriceRupees:      4500,
	}
	require.NoError(t, db.Create(&f.pkg).Error)

	today := clock.Today(clk)
	f.subscription = subscriptiondomain.Subscription{
		ID:            node.Generate(),
		SubscriberID:  f.subscriberID,
		MealPackageID: f.pkg.ID,
		AddressID:     node.Generate(),
		ContainerType: catalogdomain.ContainerSteel,
		StartDate:     today,
		EndDate:       today.AddDate(0, 0, 29),
		Status:        subscriptiondomain.StatusActive,
		CreatedAt:     clk.Now(),
		UpdatedAt:     clk.Now(),
	}
	require.NoError(t, db.Create(&f.subscription).Error)

	return f
}

func (f *fixture) ctx() context.Context {
	return subscriberctx.WithSubscriberID(context.Background(), f.subscriberID)
}

func (f *fixture) countMeals(t *testing.T) int64 {
	t.Helper()
	var count int64
	require.NoError(t, f.db.Model(&scheduledomain.ScheduledMeal{}).Count(&count).Error)
	return count
}

func TestScheduleMaterializesTwoDays(t *testing.T) {
	f := setupService(t)

	days, err := f.svc.Schedule(f.ctx())
	require.NoError(t, err)
	require.Len(t, days, 2)

	assert.True(t, days[0].ServiceDate.Equal(clock.Today(f.clk)))
	assert.True(t, days[1].ServiceDate.Equal(clock.Tomorrow(f.clk)))

	for _, day := range days {
		require.Len(t, day.Meals, 2)
		for _, meal := range day.Meals {
			switch meal.ItemType {
			case catalogdomain.ItemLunch:
				assert.Equal(t, catalogdomain.SlotAfternoon, meal.DeliverySlot)
			case catalogdomain.ItemDinner:
				assert.Equal(t, catalogdomain.SlotNight, meal.DeliverySlot)
			default:
				t.Fatalf("unexpected item type %s", meal.ItemType)
			}
			assert.False(t, meal.IsPaused)
		}
	}

	// A second call returns the same rows instead of materializing again.
	again, err := f.svc.Schedule(f.ctx())
	require.NoError(t, err)
	assert.Equal(t, days[0].Meals[0].ID, again[0].Meals[0].ID)
	assert.Equal(t, int64(4), f.countMeals(t))
}

func TestEnsureScheduledRejectsOutsideWindow(t *testing.T) {
	f := setupService(t)

	_, err := f.svc.EnsureScheduled(f.ctx(), f.subscription.ID, clock.Today(f.clk).AddDate(0, 0, 2))
	assert.ErrorIs(t, err, rules.ErrWindowExceeded)

	_, err = f.svc.EnsureScheduled(f.ctx(), f.subscription.ID, clock.Today(f.clk).AddDate(0, 0, -1))
	assert.ErrorIs(t, err, rules.ErrWindowExceeded)
}

func TestEnsureScheduledSkipsTerminalSubscription(t *testing.T) {
	f := setupService(t)
	require.NoError(t, f.db.Model(&subscriptiondomain.Subscription{}).
		Where("id = ?", f.subscription.ID).
		Update("status", subscriptiondomain.StatusCancelled).Error)

	meals, err := f.svc.EnsureScheduled(f.ctx(), f.subscription.ID, clock.Today(f.clk))
	require.NoError(t, err)
	assert.Empty(t, meals)
	assert.Equal(t, int64(0), f.countMeals(t))
}

func TestEnsureScheduledTagsCoveringUpgrade(t *testing.T) {
	f := setupService(t)

	upgrade := upgradedomain.SubscriptionUpgrade{
		ID:             f.node.Generate(),
		SubscriptionID: f.subscription.ID,
		SubscriberID:   f.subscriberID,
		UpgradeType:    catalogdomain.UpgradeVegToNonVeg,
		Scope:          catalogdomain.ScopeDay,
		StartDate:      clock.Tomorrow(f.clk),
		EndDate:        clock.Tomorrow(f.clk),
		CreatedAt:      f.clk.Now(),
	}
	require.NoError(t, f.db.Create(&upgrade).Error)

	meals, err := f.svc.EnsureScheduled(f.ctx(), f.subscription.ID, clock.Tomorrow(f.clk))
	require.NoError(t, err)
	require.Len(t, meals, 2)
	for _, meal := range meals {
		require.NotNil(t, meal.UpgradeID)
		assert.Equal(t, upgrade.ID, *meal.UpgradeID)
	}
}

func TestSetPausedBeforeCutoff(t *testing.T) {
	f := setupService(t)
	f.clk.Set(time.Date(2026, 3, 10, 19, 59, 59, 0, ist))

	meals, err := f.svc.EnsureScheduled(f.ctx(), f.subscription.ID, clock.Today(f.clk))
	require.NoError(t, err)

	paused, err := f.svc.SetPaused(f.ctx(), meals[0].ID, true)
	require.NoError(t, err)
	assert.True(t, paused.IsPaused)

	trail, err := f.svc.AuditTrail(f.ctx(), meals[0].ID)
	require.NoError(t, err)
	require.Len(t, trail, 1)
	assert.Equal(t, scheduledomain.MealStateActive, trail[0].PreviousState)
	assert.Equal(t, scheduledomain.MealStatePaused, trail[0].NewState)
	assert.Equal(t, f.subscriberID, trail[0].ActorID)
}

func TestSetPausedAtCutoffRejectsBothDirections(t *testing.T) {
	f := setupService(t)

	meals, err := f.svc.EnsureScheduled(f.ctx(), f.subscription.ID, clock.Today(f.clk))
	require.NoError(t, err)

	_, err = f.svc.SetPaused(f.ctx(), meals[0].ID, true)
	require.NoError(t, err)

	f.clk.Set(time.Date(2026, 3, 10, 20, 0, 0, 0, ist))

	_, err = f.svc.SetPaused(f.ctx(), meals[1].ID, true)
	assert.ErrorIs(t, err, rules.ErrCutoffPassed)

	// Unpausing today's meal is gated by the same cutoff.
	_, err = f.svc.SetPaused(f.ctx(), meals[0].ID, false)
	assert.ErrorIs(t, err, rules.ErrCutoffPassed)
}

func TestSetPausedTomorrowIgnoresCutoff(t *testing.T) {
	f := setupService(t)

	meals, err := f.svc.EnsureScheduled(f.ctx(), f.subscription.ID, clock.Tomorrow(f.clk))
	require.NoError(t, err)

	f.clk.Set(time.Date(2026, 3, 10, 21, 30, 0, 0, ist))

	paused, err := f.svc.SetPaused(f.ctx(), meals[0].ID, true)
	require.NoError(t, err)
	assert.True(t, paused.IsPaused)
}

func TestSetPausedNoOpSkipsAudit(t *testing.T) {
	f := setupService(t)

	meals, err := f.svc.EnsureScheduled(f.ctx(), f.subscription.ID, clock.Today(f.clk))
	require.NoError(t, err)

	meal, err := f.svc.SetPaused(f.ctx(), meals[0].ID, false)
	require.NoError(t, err)
	assert.False(t, meal.IsPaused)

	trail, err := f.svc.AuditTrail(f.ctx(), meals[0].ID)
	require.NoError(t, err)
	assert.Empty(t, trail)
}

func TestSetPausedRejectsForeignMeal(t *testing.T) {
	f := setupService(t)

	meals, err := f.svc.EnsureScheduled(f.ctx(), f.subscription.ID, clock.Today(f.clk))
	require.NoError(t, err)

	intruderCtx := subscriberctx.WithSubscriberID(context.Background(), f.node.Generate())
	_, err = f.svc.SetPaused(intruderCtx, meals[0].ID, true)
	assert.ErrorIs(t, err, scheduledomain.ErrMealNotOwned)
}
