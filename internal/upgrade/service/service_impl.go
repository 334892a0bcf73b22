package service

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	catalogdomain "github.com/tiffinlabs/dabba/internal/catalog/domain"
	"github.com/tiffinlabs/dabba/internal/clock"
	"github.com/tiffinlabs/dabba/internal/notification"
	subscriptiondomain "github.com/tiffinlabs/dabba/internal/subscription/domain"
	upgradedomain "github.com/tiffinlabs/dabba/internal/upgrade/domain"
	"github.com/tiffinlabs/dabba/pkg/rules"
	"github.com/tiffinlabs/dabba/pkg/subscriberctx"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Service struct {
	db  *gorm.DB
	log *zap.Logger

	genID         *snowflake.Node
	clock         clock.Clock
	repo          upgradedomain.Repository
	subscriptions subscriptiondomain.Service
	catalog       catalogdomain.Service
	notifier      notification.Notifier
}

type ServiceParam struct {
	fx.In

	DB            *gorm.DB
	Log           *zap.Logger
	GenID         *snowflake.Node
	Clock         clock.Clock
	Repo          upgradedomain.Repository
	Subscriptions subscriptiondomain.Service
	Catalog       catalogdomain.Service
	Notifier      notification.Notifier
}

func NewService(p ServiceParam) upgradedomain.Service {
	return &Service{
		db:            p.DB,
		log:           p.Log.Named("upgrade.service"),
		genID:         p.GenID,
		clock:         p.Clock,
		repo:          p.Repo,
		subscriptions: p.Subscriptions,
		catalog:       p.Catalog,
		notifier:      p.Notifier,
	}
}

func (s *Service) Apply(ctx context.Context, req upgradedomain.ApplyUpgradeRequest) (upgradedomain.SubscriptionUpgrade, error) {
	subscriberID, ok := subscriberctx.SubscriberID(ctx)
	if !ok {
		return upgradedomain.SubscriptionUpgrade{}, upgradedomain.ErrUpgradeNotOwned
	}

	subscription, err := s.subscriptions.GetByID(ctx, req.SubscriptionID)
	if err != nil {
		return upgradedomain.SubscriptionUpgrade{}, err
	}

	pkg, err := s.catalog.GetMealPackage(ctx, subscription.MealPackageID)
	if err != nil {
		return upgradedomain.SubscriptionUpgrade{}, err
	}
	if !pkg.AllowsUpgrade(req.UpgradeType) {
		return upgradedomain.SubscriptionUpgrade{}, rules.ErrUpgradeNotAllowed
	}

	loc := s.clock.Now().Location()
	startDate := clock.ServiceDate(req.StartDate.In(loc))
	endDate := clock.ServiceDate(req.EndDate.In(loc))
	if endDate.Before(startDate) {
		return upgradedomain.SubscriptionUpgrade{}, upgradedomain.ErrInvalidUpgradeRange
	}
	if startDate.Before(subscription.StartDate) || endDate.After(subscription.EndDate) {
		return upgradedomain.SubscriptionUpgrade{}, rules.ErrDateOutOfBounds
	}

	mealType := req.MealType
	if req.Scope == catalogdomain.ScopeMeal {
		if mealType == nil {
			return upgradedomain.SubscriptionUpgrade{}, upgradedomain.ErrMissingMealType
		}
		if !pkg.Includes(*mealType) {
			return upgradedomain.SubscriptionUpgrade{}, upgradedomain.ErrInvalidUpgradeRange
		}
	} else {
		mealType = nil
	}

	rule, err := s.catalog.FindUpgradePriceRule(ctx, req.UpgradeType, req.Scope, mealType)
	if err != nil {
		return upgradedomain.SubscriptionUpgrade{}, err
	}

	var totalPrice int64
	switch req.Scope {
	case catalogdomain.ScopeMeal, catalogdomain.ScopeDay:
		totalPrice = rule.PriceRupees * int64(upgradedomain.InclusiveDays(startDate, endDate))
	case catalogdomain.ScopeWeek:
		weeks := upgradedomain.FullCalendarWeeks(startDate, endDate)
		if len(weeks) == 0 {
			return upgradedomain.SubscriptionUpgrade{}, upgradedomain.ErrInvalidUpgradeRange
		}
		totalPrice = rule.PriceRupees * int64(len(weeks))
	default:
		return upgradedomain.SubscriptionUpgrade{}, upgradedomain.ErrInvalidUpgradeRange
	}

	upgrade := upgradedomain.SubscriptionUpgrade{
		ID:               s.genID.Generate(),
		SubscriptionID:   subscription.ID,
		SubscriberID:     subscriberID,
		UpgradeType:      req.UpgradeType,
		Scope:            req.Scope,
		MealType:         mealType,
		StartDate:        startDate,
		EndDate:          endDate,
		TotalPriceRupees: totalPrice,
		CreatedAt:        s.clock.Now(),
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.repo.Insert(ctx, tx, &upgrade); err != nil {
			return err
		}
		return s.repo.TagMeals(ctx, tx, &upgrade)
	})
	if err != nil {
		s.log.Error("upgrade apply failed",
			zap.String("subscriber_id", subscriberID.String()),
			zap.String("subscription_id", subscription.ID.String()),
			zap.Error(err),
		)
		return upgradedomain.SubscriptionUpgrade{}, err
	}

	s.notifier.Publish(ctx, notification.Event{
		Name:         notification.EventUpgradeApplied,
		SubscriberID: subscriberID,
		Payload: map[string]any{
			"upgrade_id":  upgrade.ID.String(),
			"type":        string(upgrade.UpgradeType),
			"scope":       string(upgrade.Scope),
			"start_date":  upgrade.StartDate.Format(time.DateOnly),
			"end_date":    upgrade.EndDate.Format(time.DateOnly),
			"total_price": upgrade.TotalPriceRupees,
		},
	})

	return upgrade, nil
}

func (s *Service) Remove(ctx context.Context, id snowflake.ID) error {
	subscriberID, ok := subscriberctx.SubscriberID(ctx)
	if !ok {
		return upgradedomain.ErrUpgradeNotOwned
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		upgrade, err := s.repo.FindByIDForUpdate(ctx, tx, id)
		if err != nil {
			return err
		}
		if upgrade == nil {
			return upgradedomain.ErrUpgradeNotFound
		}
		if upgrade.SubscriberID != subscriberID {
			return upgradedomain.ErrUpgradeNotOwned
		}
		if !upgrade.StartDate.After(clock.Today(s.clock)) {
			return rules.ErrUpgradeAlreadyStarted
		}

		if err := s.repo.UntagMeals(ctx, tx, upgrade.ID); err != nil {
			return err
		}
		return s.repo.Delete(ctx, tx, upgrade.ID)
	})
	if err != nil {
		s.log.Warn("upgrade remove rejected",
			zap.String("subscriber_id", subscriberID.String()),
			zap.String("upgrade_id", id.String()),
			zap.Error(err),
		)
		return err
	}

	s.notifier.Publish(ctx, notification.Event{
		Name:         notification.EventUpgradeRemoved,
		SubscriberID: subscriberID,
		Payload:      map[string]any{"upgrade_id": id.String()},
	})

	return nil
}
