package service

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	catalogdomain "github.com/tiffinlabs/dabba/internal/catalog/domain"
	"github.com/tiffinlabs/dabba/internal/clock"
	"github.com/tiffinlabs/dabba/internal/config"
	scheduledomain "github.com/tiffinlabs/dabba/internal/schedule/domain"
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

	genID      *snowflake.Node
	clock      clock.Clock
	cutoffHour int

	repo          scheduledomain.Repository
	upgradeRepo   upgradedomain.Repository
	subscriptions subscriptiondomain.Service
	catalog       catalogdomain.Service
}

type ServiceParam struct {
	fx.In

	DB            *gorm.DB
	Log           *zap.Logger
	Cfg           config.Config
	GenID         *snowflake.Node
	Clock         clock.Clock
	Repo          scheduledomain.Repository
	UpgradeRepo   upgradedomain.Repository
	Subscriptions subscriptiondomain.Service
	Catalog       catalogdomain.Service
}

func NewService(p ServiceParam) scheduledomain.Service {
	return &Service{
		db:            p.DB,
		log:           p.Log.Named("schedule.service"),
		genID:         p.GenID,
		clock:         p.Clock,
		cutoffHour:    p.Cfg.CutoffHour,
		repo:          p.Repo,
		upgradeRepo:   p.UpgradeRepo,
		subscriptions: p.Subscriptions,
		catalog:       p.Catalog,
	}
}

func (s *Service) EnsureScheduled(ctx context.Context, subscriptionID snowflake.ID, date time.Time) ([]scheduledomain.ScheduledMeal, error) {
	if !clock.InWindow(s.clock, date) {
		return nil, rules.ErrWindowExceeded
	}
	serviceDate := clock.ServiceDate(date.In(s.clock.Now().Location()))

	subscription, err := s.subscriptions.GetByID(ctx, subscriptionID)
	if err != nil {
		return nil, err
	}

	// A terminal subscription, or a date outside the subscription period,
	// yields whatever was materialized before and nothing new.
	if subscription.Status == subscriptiondomain.StatusActive && subscription.CoversDate(serviceDate) {
		pkg, err := s.catalog.GetMealPackage(ctx, subscription.MealPackageID)
		if err != nil {
			return nil, err
		}

		upgrades, err := s.upgradeRepo.FindCovering(ctx, s.db, subscription.ID, serviceDate)
		if err != nil {
			return nil, err
		}

		now := s.clock.Now()
		meals := make([]scheduledomain.ScheduledMeal, 0, len(pkg.ItemTypes))
		for _, itemType := range pkg.ItemTypes {
			meal := scheduledomain.ScheduledMeal{
				ID:             s.genID.Generate(),
				SubscriptionID: subscription.ID,
				SubscriberID:   subscription.SubscriberID,
				ServiceDate:    serviceDate,
				ItemType:       itemType,
				DeliverySlot:   catalogdomain.DefaultSlotFor(itemType),
				CreatedAt:      now,
				UpdatedAt:      now,
			}
			for i := range upgrades {
				if upgrades[i].CoversMeal(serviceDate, itemType) {
					id := upgrades[i].ID
					meal.UpgradeID = &id
					break
				}
			}
			meals = append(meals, meal)
		}

		// The unique index absorbs races: a concurrent call inserts first
		// and this one skips, then both read back the same row set.
		if err := s.repo.UpsertMeals(ctx, s.db, meals); err != nil {
			s.log.Error("meal materialization failed",
				zap.String("subscription_id", subscription.ID.String()),
				zap.String("subscriber_id", subscription.SubscriberID.String()),
				zap.Time("service_date", serviceDate),
				zap.Error(err),
			)
			return nil, err
		}
	}

	return s.repo.FindByDate(ctx, s.db, subscriptionID, serviceDate)
}

func (s *Service) Schedule(ctx context.Context) ([]scheduledomain.DaySchedule, error) {
	subscription, err := s.subscriptions.GetActive(ctx)
	if err != nil {
		return nil, err
	}

	days := []time.Time{clock.Today(s.clock), clock.Tomorrow(s.clock)}
	schedule := make([]scheduledomain.DaySchedule, 0, len(days))
	for _, day := range days {
		meals, err := s.EnsureScheduled(ctx, subscription.ID, day)
		if err != nil {
			return nil, err
		}
		schedule = append(schedule, scheduledomain.DaySchedule{ServiceDate: day, Meals: meals})
	}
	return schedule, nil
}

func (s *Service) SetPaused(ctx context.Context, mealID snowflake.ID, paused bool) (scheduledomain.ScheduledMeal, error) {
	actorID, ok := subscriberctx.SubscriberID(ctx)
	if !ok {
		return scheduledomain.ScheduledMeal{}, scheduledomain.ErrMealNotOwned
	}

	var updated scheduledomain.ScheduledMeal
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		meal, err := s.repo.FindByIDForUpdate(ctx, tx, mealID)
		if err != nil {
			return err
		}
		if meal == nil {
			return scheduledomain.ErrMealNotFound
		}
		if meal.SubscriberID != actorID {
			return scheduledomain.ErrMealNotOwned
		}

		if !clock.InWindow(s.clock, meal.ServiceDate) {
			return rules.ErrWindowExceeded
		}
		// The cutoff gates both directions for today's meals; tomorrow's
		// meals can be toggled at any hour.
		if clock.IsToday(s.clock, meal.ServiceDate) && !clock.BeforeCutoff(s.clock, s.cutoffHour) {
			return rules.ErrCutoffPassed
		}

		if meal.IsPaused == paused {
			// Validated no-op: the audit trail records transitions, not
			// attempts.
			updated = *meal
			return nil
		}

		entry := scheduledomain.PauseAuditEntry{
			ID:              s.genID.Generate(),
			ScheduledMealID: meal.ID,
			PreviousState:   scheduledomain.StateOf(meal.IsPaused),
			NewState:        scheduledomain.StateOf(paused),
			ActorID:         actorID,
			CreatedAt:       s.clock.Now(),
		}

		meal.IsPaused = paused
		meal.UpdatedAt = s.clock.Now()
		if err := s.repo.Update(ctx, tx, meal); err != nil {
			return err
		}
		if err := s.repo.InsertAudit(ctx, tx, &entry); err != nil {
			return err
		}
		updated = *meal
		return nil
	})
	if err != nil {
		s.log.Warn("pause transition rejected",
			zap.String("subscriber_id", actorID.String()),
			zap.String("meal_id", mealID.String()),
			zap.Bool("target_paused", paused),
			zap.Error(err),
		)
		return scheduledomain.ScheduledMeal{}, err
	}

	return updated, nil
}

func (s *Service) AuditTrail(ctx context.Context, mealID snowflake.ID) ([]scheduledomain.PauseAuditEntry, error) {
	subscriberID, ok := subscriberctx.SubscriberID(ctx)
	if !ok {
		return nil, scheduledomain.ErrMealNotOwned
	}

	meal, err := s.repo.FindByID(ctx, s.db, mealID)
	if err != nil {
		return nil, err
	}
	if meal == nil {
		return nil, scheduledomain.ErrMealNotFound
	}
	if meal.SubscriberID != subscriberID {
		return nil, scheduledomain.ErrMealNotOwned
	}

	return s.repo.ListAudit(ctx, s.db, mealID)
}
