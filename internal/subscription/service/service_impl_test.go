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
	subscriptiondomain "github.com/tiffinlabs/dabba/internal/subscription/domain"
	"github.com/tiffinlabs/dabba/internal/subscription/repository"
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
	svc  subscriptiondomain.Service
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
	))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	clk := clock.NewFakeClock(time.Date(2026, 3, 10, 10, 0, 0, 0, ist))

	catalogSvc := catalogservice.NewService(catalogservice.ServiceParam{
		DB:   db,
		Log:  zap.NewNop(),
		Repo: catalogrepository.Provide(),
	})

	svc := NewService(ServiceParam{
		DB:       db,
		Log:      zap.NewNop(),
		GenID:    node,
		Clock:    clk,
		Repo:     repository.Provide(),
		Catalog:  catalogSvc,
		Notifier: notification.NewLogNotifier(zap.NewNop()),
	})

	return &fixture{db: db, node: node, clk: clk, svc: svc}
}

func (f *fixture) seedPackage(t *testing.T, allowsContainerChoice bool) catalogdomain.MealPackage {
	t.Helper()
	pkg := catalogdomain.MealPackage{
		ID:          f.node.Generate(),
		Name:        "South Veg Lunch+Dinner (30d)",
		DietType:    catalogdomain.DietVeg,
		CuisineType: catalogdomain.CuisineSouthIndian,
		ItemTypes: datatypes.NewJSONSlice([]catalogdomain.ItemType{
			catalogdomain.ItemLunch,
			catalogdomain.ItemDinner,
		}),
		DurationDays:          30,
		DefaultContainer:      catalogdomain.ContainerSteel,
		AllowsDietUpgrade:     true,
		AllowsContainerChoice: allowsContainerChoice,
		PriceRupees:           4500,
	}
	require.NoError(t, f.db.Create(&pkg).Error)
	return pkg
}

func (f *fixture) seedAddress(t *testing.T, subscriberID snowflake.ID) catalogdomain.Address {
	t.Helper()
	addr := catalogdomain.Address{
		ID:           f.node.Generate(),
		SubscriberID: subscriberID,
		Label:        "home",
		Line1:        "12 Gandhi Road",
		City:         "Chennai",
		Pincode:      "600001",
	}
	require.NoError(t, f.db.Create(&addr).Error)
	return addr
}

func TestCreateAppliesPackageDefaults(t *testing.T) {
	f := setupService(t)
	subscriberID := f.node.Generate()
	pkg := f.seedPackage(t, false)
	addr := f.seedAddress(t, subscriberID)
	ctx := subscriberctx.WithSubscriberID(context.Background(), subscriberID)

	sub, err := f.svc.Create(ctx, subscriptiondomain.CreateSubscriptionRequest{
		MealPackageID: pkg.ID,
		AddressID:     addr.ID,
		ContainerType: catalogdomain.ContainerDisposable,
		StartDate:     clock.Today(f.clk),
	})
	require.NoError(t, err)

	// The package does not allow container choice; the request's disposable
	// is overridden by the package default.
	assert.Equal(t, catalogdomain.ContainerSteel, sub.ContainerType)
	assert.Equal(t, subscriptiondomain.StatusActive, sub.Status)
	assert.True(t, sub.EndDate.Equal(clock.Today(f.clk).AddDate(0, 0, 29)))
}

func TestCreateRejectsSecondActive(t *testing.T) {
	f := setupService(t)
	subscriberID := f.node.Generate()
	pkg := f.seedPackage(t, true)
	addr := f.seedAddress(t, subscriberID)
	ctx := subscriberctx.WithSubscriberID(context.Background(), subscriberID)

	req := subscriptiondomain.CreateSubscriptionRequest{
		MealPackageID: pkg.ID,
		AddressID:     addr.ID,
		ContainerType: catalogdomain.ContainerSteel,
		StartDate:     clock.Today(f.clk),
	}

	_, err := f.svc.Create(ctx, req)
	require.NoError(t, err)

	_, err = f.svc.Create(ctx, req)
	assert.ErrorIs(t, err, rules.ErrDuplicateActiveSubscription)

	var count int64
	require.NoError(t, f.db.Model(&subscriptiondomain.Subscription{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestCreateAllowsNewAfterEnding(t *testing.T) {
	f := setupService(t)
	subscriberID := f.node.Generate()
	pkg := f.seedPackage(t, true)
	addr := f.seedAddress(t, subscriberID)
	ctx := subscriberctx.WithSubscriberID(context.Background(), subscriberID)

	req := subscriptiondomain.CreateSubscriptionRequest{
		MealPackageID: pkg.ID,
		AddressID:     addr.ID,
		ContainerType: catalogdomain.ContainerSteel,
		StartDate:     clock.Today(f.clk),
	}

	first, err := f.svc.Create(ctx, req)
	require.NoError(t, err)

	_, err = f.svc.End(ctx, first.ID, subscriptiondomain.EndReasonCancelled)
	require.NoError(t, err)

	second, err := f.svc.Create(ctx, req)
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, second.ID)
}

func TestCreateRejectsPastStartDate(t *testing.T) {
	f := setupService(t)
	subscriberID := f.node.Generate()
	pkg := f.seedPackage(t, true)
	addr := f.seedAddress(t, subscriberID)
	ctx := subscriberctx.WithSubscriberID(context.Background(), subscriberID)

	_, err := f.svc.Create(ctx, subscriptiondomain.CreateSubscriptionRequest{
		MealPackageID: pkg.ID,
		AddressID:     addr.ID,
		ContainerType: catalogdomain.ContainerSteel,
		StartDate:     clock.Today(f.clk).AddDate(0, 0, -1),
	})
	assert.ErrorIs(t, err, subscriptiondomain.ErrInvalidStartDate)
}

func TestCreateRejectsForeignAddress(t *testing.T) {
	f := setupService(t)
	subscriberID := f.node.Generate()
	otherID := f.node.Generate()
	pkg := f.seedPackage(t, true)
	foreign := f.seedAddress(t, otherID)
	ctx := subscriberctx.WithSubscriberID(context.Background(), subscriberID)

	_, err := f.svc.Create(ctx, subscriptiondomain.CreateSubscriptionRequest{
		MealPackageID: pkg.ID,
		AddressID:     foreign.ID,
		ContainerType: catalogdomain.ContainerSteel,
		StartDate:     clock.Today(f.clk),
	})
	assert.ErrorIs(t, err, catalogdomain.ErrAddressNotOwned)
}

func TestEndIsIdempotent(t *testing.T) {
	f := setupService(t)
	subscriberID := f.node.Generate()
	pkg := f.seedPackage(t, true)
	addr := f.seedAddress(t, subscriberID)
	ctx := subscriberctx.WithSubscriberID(context.Background(), subscriberID)

	sub, err := f.svc.Create(ctx, subscriptiondomain.CreateSubscriptionRequest{
		MealPackageID: pkg.ID,
		AddressID:     addr.ID,
		ContainerType: catalogdomain.ContainerSteel,
		StartDate:     clock.Today(f.clk),
	})
	require.NoError(t, err)

	ended, err := f.svc.End(ctx, sub.ID, subscriptiondomain.EndReasonCancelled)
	require.NoError(t, err)
	assert.Equal(t, subscriptiondomain.StatusCancelled, ended.Status)
	require.NotNil(t, ended.EndedAt)

	// A second end keeps the original terminal status, even with a
	// different reason.
	again, err := f.svc.End(ctx, sub.ID, subscriptiondomain.EndReasonCompleted)
	require.NoError(t, err)
	assert.Equal(t, subscriptiondomain.StatusCancelled, again.Status)
}

func TestEndRejectsUnknownReason(t *testing.T) {
	f := setupService(t)
	subscriberID := f.node.Generate()
	ctx := subscriberctx.WithSubscriberID(context.Background(), subscriberID)

	_, err := f.svc.End(ctx, f.node.Generate(), subscriptiondomain.EndReason("paused"))
	assert.ErrorIs(t, err, subscriptiondomain.ErrInvalidEndReason)
}

func TestEndRejectsForeignSubscription(t *testing.T) {
	f := setupService(t)
	ownerID := f.node.Generate()
	intruderID := f.node.Generate()
	pkg := f.seedPackage(t, true)
	addr := f.seedAddress(t, ownerID)

	ownerCtx := subscriberctx.WithSubscriberID(context.Background(), ownerID)
	sub, err := f.svc.Create(ownerCtx, subscriptiondomain.CreateSubscriptionRequest{
		MealPackageID: pkg.ID,
		AddressID:     addr.ID,
		ContainerType: catalogdomain.ContainerSteel,
		StartDate:     clock.Today(f.clk),
	})
	require.NoError(t, err)

	intruderCtx := subscriberctx.WithSubscriberID(context.Background(), intruderID)
	_, err = f.svc.End(intruderCtx, sub.ID, subscriptiondomain.EndReasonCancelled)
	assert.ErrorIs(t, err, subscriptiondomain.ErrSubscriptionNotOwned)
}

func TestGetActiveReturnsNotFoundWhenNoneExists(t *testing.T) {
	f := setupService(t)
	ctx := subscriberctx.WithSubscriberID(context.Background(), f.node.Generate())

	_, err := f.svc.GetActive(ctx)
	assert.ErrorIs(t, err, subscriptiondomain.ErrSubscriptionNotFound)
}
