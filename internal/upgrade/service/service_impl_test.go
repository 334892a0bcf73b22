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
	"github.com/tiffinlabs/dabba/internal/notification"
	scheduledomain "github.com/tiffinlabs/dabba/internal/schedule/domain"
	subscriptiondomain "github.com/tiffinlabs/dabba/internal/subscription/domain"
	subscriptionrepository "github.com/tiffinlabs/dabba/internal/subscription/repository"
	subscriptionservice "github.com/tiffinlabs/dabba/internal/subscription/service"
	upgradedomain "github.com/tiffinlabs/dabba/internal/upgrade/domain"
	"github.com/tiffinlabs/dabba/internal/upgrade/repository"
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
	svc  upgradedomain.Service

	subscriberID snowflake.ID
	subscription subscriptiondomain.Subscription
}

// The fixture clock starts on Sunday 2026-03-01; the subscription covers
// 2026-03-01 through 2026-03-30.
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
		&catalogdomain.UpgradePriceRule{},
		&subscriptiondomain.Subscription{},
		&scheduledomain.ScheduledMeal{},
		&upgradedomain.SubscriptionUpgrade{},
	))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	clk := clock.NewFakeClock(time.Date(2026, 3, 1, 10, 0, 0, 0, ist))

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
		GenID:         node,
		Clock:         clk,
		Repo:          repository.Provide(),
		Subscriptions: subscriptionSvc,
		Catalog:       catalogSvc,
		Notifier:      notification.NewLogNotifier(zap.NewNop()),
	})

	f := &fixture{db: db, node: node, clk: clk, svc: svc, subscriberID: node.Generate()}

	pkg := catalogdomain.MealPackage{
		ID:          node.Generate(),
		Name:        "South Veg Lunch+Dinner (30d)",
		DietType:    catalogdomain.DietVeg,
		CuisineType: catalogdomain.CuisineSouthIndian,
		ItemTypes: datatypes.NewJSONSlice([]catalogdomain.ItemType{
			catalogdomain.ItemLunch,
			catalogdomain.ItemDinner,
		}),
		DurationDays:      30,
		DefaultContainer:  catalogdomain.ContainerSteel,
		AllowsDietUpgrade: true,
		PriceRupees:       4500,
	}
	require.NoError(t, db.Create(&pkg).Error)

	lunch := catalogdomain.ItemLunch
	priceRules := []catalogdomain.UpgradePriceRule{
		{ID: node.Generate(), UpgradeType: catalogdomain.UpgradeVegToNonVeg, Scope: catalogdomain.ScopeMeal, MealType: &lunch, PriceRupees: 40},
		{ID: node.Generate(), UpgradeType: catalogdomain.UpgradeVegToNonVeg, Scope: catalogdomain.ScopeDay, PriceRupees: 100},
		{ID: node.Generate(), UpgradeType: catalogdomain.UpgradeVegToNonVeg, Scope: catalogdomain.ScopeWeek, PriceRupees: 300},
	}
	require.NoError(t, db.Create(&priceRules).Error)

	today := clock.Today(clk)
	f.subscription = subscriptiondomain.Subscription{
		ID:            node.Generate(),
		SubscriberID:  f.subscriberID,
		MealPackageID: pkg.ID,
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

func (f *fixture) date(day int) time.Time {
	return time.Date(2026, 3, day, 0, 0, 0, 0, ist)
}

func (f *fixture) seedMeal(t *testing.T, date time.Time, itemType catalogdomain.ItemType) scheduledomain.ScheduledMeal {
	t.Helper()
	meal := scheduledomain.ScheduledMeal{
		ID:             f.node.Generate(),
		SubscriptionID: f.subscription.ID,
		SubscriberID:   f.subscriberID,
		ServiceDate:    date,
		ItemType:       itemType,
		DeliverySlot:   catalogdomain.DefaultSlotFor(itemType),
		CreatedAt:      f.clk.Now(),
		UpdatedAt:      f.clk.Now(),
	}
	require.NoError(t, f.db.Create(&meal).Error)
	return meal
}

func (f *fixture) reloadMeal(t *testing.T, id snowflake.ID) scheduledomain.ScheduledMeal {
	t.Helper()
	var meal scheduledomain.ScheduledMeal
	require.NoError(t, f.db.Where("id = ?", id).First(&meal).Error)
	return meal
}

func TestApplyDayScopePricesPerDay(t *testing.T) {
	f := setupService(t)

	upgrade, err := f.svc.Apply(f.ctx(), upgradedomain.ApplyUpgradeRequest{
		SubscriptionID: f.subscription.ID,
		UpgradeType:    catalogdomain.UpgradeVegToNonVeg,
		Scope:          catalogdomain.ScopeDay,
		StartDate:      f.date(2),
		EndDate:        f.date(4),
	})
	require.NoError(t, err)
	assert.Equal(t, int64(300), upgrade.TotalPriceRupees)
	assert.Nil(t, upgrade.MealType)
}

func TestApplyWeekScopeCountsFullWeeks(t *testing.T) {
	f := setupService(t)

	// 2026-03-02 is a Monday; 2026-03-15 a Sunday. Two full weeks.
	upgrade, err := f.svc.Apply(f.ctx(), upgradedomain.ApplyUpgradeRequest{
		SubscriptionID: f.subscription.ID,
		UpgradeType:    catalogdomain.UpgradeVegToNonVeg,
		Scope:          catalogdomain.ScopeWeek,
		StartDate:      f.date(2),
		EndDate:        f.date(15),
	})
	require.NoError(t, err)
	assert.Equal(t, int64(600), upgrade.TotalPriceRupees)
}

func TestApplyWeekScopeRejectsPartialWeeks(t *testing.T) {
	f := setupService(t)

	// Tuesday through Friday contains no full Monday-to-Sunday week.
	_, err := f.svc.Apply(f.ctx(), upgradedomain.ApplyUpgradeRequest{
		SubscriptionID: f.subscription.ID,
		UpgradeType:    catalogdomain.UpgradeVegToNonVeg,
		Scope:          catalogdomain.ScopeWeek,
		StartDate:      f.date(3),
		EndDate:        f.date(6),
	})
	assert.ErrorIs(t, err, upgradedomain.ErrInvalidUpgradeRange)
}

func TestApplyMealScopeRequiresIncludedMealType(t *testing.T) {
	f := setupService(t)

	_, err := f.svc.Apply(f.ctx(), upgradedomain.ApplyUpgradeRequest{
		SubscriptionID: f.subscription.ID,
		UpgradeType:    catalogdomain.UpgradeVegToNonVeg,
		Scope:          catalogdomain.ScopeMeal,
		StartDate:      f.date(2),
		EndDate:        f.date(3),
	})
	assert.ErrorIs(t, err, upgradedomain.ErrMissingMealType)

	breakfast := catalogdomain.ItemBreakfast
	_, err = f.svc.Apply(f.ctx(), upgradedomain.ApplyUpgradeRequest{
		SubscriptionID: f.subscription.ID,
		UpgradeType:    catalogdomain.UpgradeVegToNonVeg,
		Scope:          catalogdomain.ScopeMeal,
		MealType:       &breakfast,
		StartDate:      f.date(2),
		EndDate:        f.date(3),
	})
	assert.ErrorIs(t, err, upgradedomain.ErrInvalidUpgradeRange)
}

func TestApplyRejectsDisallowedUpgradeType(t *testing.T) {
	f := setupService(t)

	_, err := f.svc.Apply(f.ctx(), upgradedomain.ApplyUpgradeRequest{
		SubscriptionID: f.subscription.ID,
		UpgradeType:    catalogdomain.UpgradeSouthToNorth,
		Scope:          catalogdomain.ScopeDay,
		StartDate:      f.date(2),
		EndDate:        f.date(3),
	})
	assert.ErrorIs(t, err, rules.ErrUpgradeNotAllowed)
}

func TestApplyRejectsRangeOutsideSubscription(t *testing.T) {
	f := setupService(t)

	_, err := f.svc.Apply(f.ctx(), upgradedomain.ApplyUpgradeRequest{
		SubscriptionID: f.subscription.ID,
		UpgradeType:    catalogdomain.UpgradeVegToNonVeg,
		Scope:          catalogdomain.ScopeDay,
		StartDate:      f.date(29),
		EndDate:        f.date(31),
	})
	assert.ErrorIs(t, err, rules.ErrDateOutOfBounds)
}

func TestApplyTagsMaterializedMeals(t *testing.T) {
	f := setupService(t)
	lunch := f.seedMeal(t, f.date(2), catalogdomain.ItemLunch)
	dinner := f.seedMeal(t, f.date(2), catalogdomain.ItemDinner)

	mealType := catalogdomain.ItemLunch
	upgrade, err := f.svc.Apply(f.ctx(), upgradedomain.ApplyUpgradeRequest{
		SubscriptionID: f.subscription.ID,
		UpgradeType:    catalogdomain.UpgradeVegToNonVeg,
		Scope:          catalogdomain.ScopeMeal,
		MealType:       &mealType,
		StartDate:      f.date(2),
		EndDate:        f.date(3),
	})
	require.NoError(t, err)

	taggedLunch := f.reloadMeal(t, lunch.ID)
	require.NotNil(t, taggedLunch.UpgradeID)
	assert.Equal(t, upgrade.ID, *taggedLunch.UpgradeID)

	assert.Nil(t, f.reloadMeal(t, dinner.ID).UpgradeID)
}

func TestRemoveUntagsAndDeletes(t *testing.T) {
	f := setupService(t)
	lunch := f.seedMeal(t, f.date(2), catalogdomain.ItemLunch)

	upgrade, err := f.svc.Apply(f.ctx(), upgradedomain.ApplyUpgradeRequest{
		SubscriptionID: f.subscription.ID,
		UpgradeType:    catalogdomain.UpgradeVegToNonVeg,
		Scope:          catalogdomain.ScopeDay,
		StartDate:      f.date(2),
		EndDate:        f.date(3),
	})
	require.NoError(t, err)
	require.NotNil(t, f.reloadMeal(t, lunch.ID).UpgradeID)

	require.NoError(t, f.svc.Remove(f.ctx(), upgrade.ID))
	assert.Nil(t, f.reloadMeal(t, lunch.ID).UpgradeID)

	var count int64
	require.NoError(t, f.db.Model(&upgradedomain.SubscriptionUpgrade{}).Count(&count).Error)
	assert.Equal(t, int64(0), count)
}

func TestRemoveRejectsStartedUpgrade(t *testing.T) {
	f := setupService(t)

	// Starts today, so it can no longer be removed.
	upgrade, err := f.svc.Apply(f.ctx(), upgradedomain.ApplyUpgradeRequest{
		SubscriptionID: f.subscription.ID,
		UpgradeType:    catalogdomain.UpgradeVegToNonVeg,
		Scope:          catalogdomain.ScopeDay,
		StartDate:      f.date(1),
		EndDate:        f.date(3),
	})
	require.NoError(t, err)

	err = f.svc.Remove(f.ctx(), upgrade.ID)
	assert.ErrorIs(t, err, rules.ErrUpgradeAlreadyStarted)
}

func TestRemoveRejectsForeignUpgrade(t *testing.T) {
	f := setupService(t)

	upgrade, err := f.svc.Apply(f.ctx(), upgradedomain.ApplyUpgradeRequest{
		SubscriptionID: f.subscription.ID,
		UpgradeType:    catalogdomain.UpgradeVegToNonVeg,
		Scope:          catalogdomain.ScopeDay,
		StartDate:      f.date(2),
		EndDate:        f.date(3),
	})
	require.NoError(t, err)

	intruderCtx := subscriberctx.WithSubscriberID(context.Background(), f.node.Generate())
	err = f.svc.Remove(intruderCtx, upgrade.ID)
	assert.ErrorIs(t, err, upgradedomain.ErrUpgradeNotOwned)
}
