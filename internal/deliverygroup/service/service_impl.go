package service

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	catalogdomain "github.com/tiffinlabs/dabba/internal/catalog/domain"
	"github.com/tiffinlabs/dabba/internal/clock"
	groupdomain "github.com/tiffinlabs/dabba/internal/deliverygroup/domain"
	walletdomain "github.com/tiffinlabs/dabba/internal/wallet/domain"
	"github.com/tiffinlabs/dabba/pkg/rules"
	"github.com/tiffinlabs/dabba/pkg/subscriberctx"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Service struct {
	db  *gorm.DB
	log *zap.Logger

	genID *snowflake.Node
	clock clock.Clock
	repo  groupdomain.Repository
}

type ServiceParam struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Clock clock.Clock
	Repo  groupdomain.Repository
}

func NewService(p ServiceParam) groupdomain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("deliverygroup.service"),
		genID: p.GenID,
		clock: p.Clock,
		repo:  p.Repo,
	}
}

// member is the validation view of one locked group candidate.
type member struct {
	ref          groupdomain.MemberRef
	subscriberID snowflake.ID
	serviceDate  time.Time
	slot         catalogdomain.DeliverySlot
	paused       bool
	cancelled    bool
	grouped      bool
}

func (s *Service) Group(ctx context.Context, refs []groupdomain.MemberRef) (groupdomain.GroupResult, error) {
	subscriberID, ok := subscriberctx.SubscriberID(ctx)
	if !ok {
		return groupdomain.GroupResult{}, groupdomain.ErrGroupNotOwned
	}

	if len(refs) < 2 {
		return groupdomain.GroupResult{}, rules.ErrInsufficientMembers
	}

	var result groupdomain.GroupResult
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		members := make([]member, 0, len(refs))
		for _, ref := range refs {
			m, err := s.lockMember(ctx, tx, ref)
			if err != nil {
				return err
			}
			members = append(members, m)
		}

		first := members[0]
		for _, m := range members[1:] {
			if !clock.ServiceDate(m.serviceDate).Equal(clock.ServiceDate(first.serviceDate)) {
				return rules.ErrDateMismatch
			}
		}
		for _, m := range members {
			if m.subscriberID != subscriberID {
				return groupdomain.ErrMemberNotOwned
			}
		}
		for _, m := range members {
			if m.paused {
				return rules.ErrAlreadyPaused
			}
			if m.cancelled {
				return groupdomain.ErrMemberCancelled
			}
			if m.grouped {
				return groupdomain.ErrMemberAlreadyGrouped
			}
		}

		group := groupdomain.DeliveryGroup{
			ID:           s.genID.Generate(),
			SubscriberID: subscriberID,
			ServiceDate:  clock.ServiceDate(first.serviceDate),
			DeliverySlot: first.slot,
			CreatedAt:    s.clock.Now(),
		}
		if err := s.repo.InsertGroup(ctx, tx, &group); err != nil {
			return err
		}

		groupID := group.ID
		for _, m := range members {
			var err error
			switch m.ref.Kind {
			case groupdomain.MemberMeal:
				err = s.repo.AssignMeal(ctx, tx, m.ref.ID, &groupID, group.DeliverySlot)
			case groupdomain.MemberCurryOrder:
				err = s.repo.AssignOrder(ctx, tx, m.ref.ID, &groupID, group.DeliverySlot)
			}
			if err != nil {
				return err
			}
		}

		meals, orders, err := s.repo.ListMembers(ctx, tx, group.ID)
		if err != nil {
			return err
		}
		result = groupdomain.GroupResult{Group: group, Meals: meals, Orders: orders}
		return nil
	})
	if err != nil {
		s.log.Warn("delivery grouping rejected",
			zap.String("subscriber_id", subscriberID.String()),
			zap.Int("member_count", len(refs)),
			zap.Error(err),
		)
		return groupdomain.GroupResult{}, err
	}

	return result, nil
}

func (s *Service) lockMember(ctx context.Context, tx *gorm.DB, ref groupdomain.MemberRef) (member, error) {
	switch ref.Kind {
	case groupdomain.MemberMeal:
		meal, err := s.repo.FindMealForUpdate(ctx, tx, ref.ID)
		if err != nil {
			return member{}, err
		}
		if meal == nil {
			return member{}, groupdomain.ErrMemberNotFound
		}
		return member{
			ref:          ref,
			subscriberID: meal.SubscriberID,
			serviceDate:  meal.ServiceDate,
			slot:         meal.DeliverySlot,
			paused:       meal.IsPaused,
			grouped:      meal.DeliveryGroupID != nil,
		}, nil
	case groupdomain.MemberCurryOrder:
		order, err := s.repo.FindOrderForUpdate(ctx, tx, ref.ID)
		if err != nil {
			return member{}, err
		}
		if order == nil {
			return member{}, groupdomain.ErrMemberNotFound
		}
		return member{
			ref:          ref,
			subscriberID: order.SubscriberID,
			serviceDate:  order.OrderDate,
			slot:         order.DeliverySlot,
			cancelled:    order.Status == walletdomain.OrderStatusCancelled,
			grouped:      order.DeliveryGroupID != nil,
		}, nil
	default:
		return member{}, groupdomain.ErrInvalidMemberKind
	}
}

func (s *Service) Ungroup(ctx context.Context, groupID snowflake.ID) error {
	subscriberID, ok := subscriberctx.SubscriberID(ctx)
	if !ok {
		return groupdomain.ErrGroupNotOwned
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		group, err := s.repo.FindGroupByIDForUpdate(ctx, tx, groupID)
		if err != nil {
			return err
		}
		if group == nil {
			return groupdomain.ErrGroupNotFound
		}
		if group.SubscriberID != subscriberID {
			return groupdomain.ErrGroupNotOwned
		}

		// Members keep whatever slot they carried inside the group; only
		// the group reference is cleared.
		if err := s.repo.DetachMembers(ctx, tx, groupID); err != nil {
			return err
		}
		return s.repo.DeleteGroup(ctx, tx, groupID)
	})
	if err != nil {
		s.log.Warn("ungroup rejected",
			zap.String("subscriber_id", subscriberID.String()),
			zap.String("group_id", groupID.String()),
			zap.Error(err),
		)
	}
	return err
}

func (s *Service) Get(ctx context.Context, groupID snowflake.ID) (groupdomain.GroupResult, error) {
	subscriberID, ok := subscriberctx.SubscriberID(ctx)
	if !ok {
		return groupdomain.GroupResult{}, groupdomain.ErrGroupNotOwned
	}

	group, err := s.repo.FindGroupByID(ctx, s.db, groupID)
	if err != nil {
		return groupdomain.GroupResult{}, err
	}
	if group == nil {
		return groupdomain.GroupResult{}, groupdomain.ErrGroupNotFound
	}
	if group.SubscriberID != subscriberID {
		return groupdomain.GroupResult{}, groupdomain.ErrGroupNotOwned
	}

	meals, orders, err := s.repo.ListMembers(ctx, s.db, groupID)
	if err != nil {
		return groupdomain.GroupResult{}, err
	}
	return groupdomain.GroupResult{Group: *group, Meals: meals, Orders: orders}, nil
}
