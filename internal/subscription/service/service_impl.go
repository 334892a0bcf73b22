package service

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	catalogdomain "github.com/tiffinlabs/dabba/internal/catalog/domain"
	"github.com/tiffinlabs/dabba/internal/clock"
	"github.com/tiffinlabs/dabba/internal/notification"
	subscriptiondomain "github.com/tiffinlabs/dabba/internal/subscription/domain"
	"github.com/tiffinlabs/dabba/pkg/db"
	"github.com/tiffinlabs/dabba/pkg/rules"
	"github.com/tiffinlabs/dabba/pkg/subscriberctx"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Service struct {
	db  *gorm.DB
	log *zap.Logger

	genID    *snowflake.Node
	clock    clock.Clock
	repo     subscriptiondomain.Repository
	catalog  catalogdomain.Service
	notifier notification.Notifier
}

type ServiceParam struct {
	fx.In

	DB       *gorm.DB
	Log      *zap.Logger
	GenID    *snowflake.Node
	Clock    clock.Clock
	Repo     subscriptiondomain.Repository
	Catalog  catalogdomain.Service
	Notifier notification.Notifier
}

func NewService(p ServiceParam) subscriptiondomain.Service {
	return &Service{
		db:       p.DB,
		log:      p.Log.Named("subscription.service"),
		genID:    p.GenID,
		clock:    p.Clock,
		repo:     p.Repo,
		catalog:  p.Catalog,
		notifier: p.Notifier,
	}
}

func (s *Service) Create(ctx context.Context, req subscriptiondomain.CreateSubscriptionRequest) (subscriptiondomain.Subscription, error) {
	subscriberID, ok := subscriberctx.SubscriberID(ctx)
	if !ok {
		return subscriptiondomain.Subscription{}, subscriptiondomain.ErrSubscriptionNotOwned
	}

	pkg, err := s.catalog.GetMealPackage(ctx, req.MealPackageID)
	if err != nil {
		return subscriptiondomain.Subscription{}, err
	}

	if err := s.catalog.VerifyAddressOwned(ctx, req.AddressID, subscriberID); err != nil {
		return subscriptiondomain.Subscription{}, err
	}

	startDate := clock.ServiceDate(req.StartDate.In(s.clock.Now().Location()))
	if startDate.Before(clock.Today(s.clock)) {
		return subscriptiondomain.Subscription{}, subscriptiondomain.ErrInvalidStartDate
	}

	container := req.ContainerType
	if !pkg.AllowsContainerChoice {
		// Container choice is a package capability; requests against a
		// fixed-container package get the package default silently.
		container = pkg.DefaultContainer
	} else if container != catalogdomain.ContainerSteel && container != catalogdomain.ContainerDisposable {
		return subscriptiondomain.Subscription{}, subscriptiondomain.ErrInvalidContainer
	}

	now := s.clock.Now()
	subscription := subscriptiondomain.Subscription{
		ID:            s.genID.Generate(),
		SubscriberID:  subscriberID,
		MealPackageID: pkg.ID,
		AddressID:     req.AddressID,
		ContainerType: container,
		StartDate:     startDate,
		EndDate:       startDate.AddDate(0, 0, pkg.DurationDays-1),
		Status:        subscriptiondomain.StatusActive,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		existing, err := s.repo.FindActiveBySubscriber(ctx, tx, subscriberID)
		if err != nil {
			return err
		}
		if existing != nil {
			return rules.ErrDuplicateActiveSubscription
		}
		return s.repo.Insert(ctx, tx, &subscription)
	})
	if err != nil {
		// The partial unique index is the authoritative backstop when two
		// creations race past the application check.
		if db.IsDuplicateKeyErr(err) {
			err = rules.ErrDuplicateActiveSubscription
		}
		s.log.Warn("subscription create rejected",
			zap.String("subscriber_id", subscriberID.String()),
			zap.String("meal_package_id", req.MealPackageID.String()),
			zap.Error(err),
		)
		return subscriptiondomain.Subscription{}, err
	}

	s.notifier.Publish(ctx, notification.Event{
		Name:         notification.EventSubscriptionActivated,
		SubscriberID: subscriberID,
		Payload: map[string]any{
			"subscription_id": subscription.ID.String(),
			"start_date":      subscription.StartDate.Format(time.DateOnly),
			"end_date":        subscription.EndDate.Format(time.DateOnly),
		},
	})

	return subscription, nil
}

func (s *Service) End(ctx context.Context, id snowflake.ID, reason subscriptiondomain.EndReason) (subscriptiondomain.Subscription, error) {
	subscriberID, ok := subscriberctx.SubscriberID(ctx)
	if !ok {
		return subscriptiondomain.Subscription{}, subscriptiondomain.ErrSubscriptionNotOwned
	}

	var target subscriptiondomain.Status
	switch reason {
	case subscriptiondomain.EndReasonCompleted:
		target = subscriptiondomain.StatusCompleted
	case subscriptiondomain.EndReasonCancelled:
		target = subscriptiondomain.StatusCancelled
	default:
		return subscriptiondomain.Subscription{}, subscriptiondomain.ErrInvalidEndReason
	}

	var ended subscriptiondomain.Subscription
	alreadyTerminal := false
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		subscription, err := s.repo.FindByIDForUpdate(ctx, tx, id)
		if err != nil {
			return err
		}
		if subscription == nil {
			return subscriptiondomain.ErrSubscriptionNotFound
		}
		if subscription.SubscriberID != subscriberID {
			return subscriptiondomain.ErrSubscriptionNotOwned
		}
		if subscription.Status.Terminal() {
			ended = *subscription
			alreadyTerminal = true
			return nil
		}

		now := s.clock.Now()
		subscription.Status = target
		subscription.EndedAt = &now
		subscription.UpdatedAt = now
		if err := s.repo.Update(ctx, tx, subscription); err != nil {
			return err
		}
		ended = *subscription
		return nil
	})
	if err != nil {
		s.log.Warn("subscription end rejected",
			zap.String("subscriber_id", subscriberID.String()),
			zap.String("subscription_id", id.String()),
			zap.Error(err),
		)
		return subscriptiondomain.Subscription{}, err
	}

	if !alreadyTerminal {
		s.notifier.Publish(ctx, notification.Event{
			Name:         notification.EventSubscriptionEnded,
			SubscriberID: subscriberID,
			Payload: map[string]any{
				"subscription_id": ended.ID.String(),
				"status":          string(ended.Status),
			},
		})
	}

	return ended, nil
}

func (s *Service) GetActive(ctx context.Context) (subscriptiondomain.Subscription, error) {
	subscriberID, ok := subscriberctx.SubscriberID(ctx)
	if !ok {
		return subscriptiondomain.Subscription{}, subscriptiondomain.ErrSubscriptionNotOwned
	}

	subscription, err := s.repo.FindActiveBySubscriber(ctx, s.db, subscriberID)
	if err != nil {
		return subscriptiondomain.Subscription{}, err
	}
	if subscription == nil {
		return subscriptiondomain.Subscription{}, subscriptiondomain.ErrSubscriptionNotFound
	}
	return *subscription, nil
}

func (s *Service) GetByID(ctx context.Context, id snowflake.ID) (subscriptiondomain.Subscription, error) {
	subscriberID, ok := subscriberctx.SubscriberID(ctx)
	if !ok {
		return subscriptiondomain.Subscription{}, subscriptiondomain.ErrSubscriptionNotOwned
	}

	subscription, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return subscriptiondomain.Subscription{}, err
	}
	if subscription == nil {
		return subscriptiondomain.Subscription{}, subscriptiondomain.ErrSubscriptionNotFound
	}
	if subscription.SubscriberID != subscriberID {
		return subscriptiondomain.Subscription{}, subscriptiondomain.ErrSubscriptionNotOwned
	}
	return *subscription, nil
}
