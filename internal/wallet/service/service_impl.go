package service

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	catalogdomain "github.com/tiffinlabs/dabba/internal/catalog/domain"
	"github.com/tiffinlabs/dabba/internal/clock"
	"github.com/tiffinlabs/dabba/internal/notification"
	walletdomain "github.com/tiffinlabs/dabba/internal/wallet/domain"
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
	repo     walletdomain.Repository
	catalog  catalogdomain.Service
	notifier notification.Notifier
}

type ServiceParam struct {
	fx.In

	DB       *gorm.DB
	Log      *zap.Logger
	GenID    *snowflake.Node
	Clock    clock.Clock
	Repo     walletdomain.Repository
	Catalog  catalogdomain.Service
	Notifier notification.Notifier
}

func NewService(p ServiceParam) walletdomain.Service {
	return &Service{
		db:       p.DB,
		log:      p.Log.Named("wallet.service"),
		genID:    p.GenID,
		clock:    p.Clock,
		repo:     p.Repo,
		catalog:  p.Catalog,
		notifier: p.Notifier,
	}
}

func (s *Service) Purchase(ctx context.Context, tokenPackageID snowflake.ID) (walletdomain.CurryWallet, error) {
	subscriberID, ok := subscriberctx.SubscriberID(ctx)
	if !ok {
		return walletdomain.CurryWallet{}, walletdomain.ErrWalletNotFound
	}

	pkg, err := s.catalog.GetTokenPackage(ctx, tokenPackageID)
	if err != nil {
		return walletdomain.CurryWallet{}, err
	}

	wallet, err := s.purchaseTx(ctx, subscriberID, pkg)
	if db.IsDuplicateKeyErr(err) {
		// Two first-time purchases raced on the (subscriber, diet) unique
		// index; the loser retries against the row the winner created.
		wallet, err = s.purchaseTx(ctx, subscriberID, pkg)
	}
	if err != nil {
		s.log.Error("wallet purchase failed",
			zap.String("subscriber_id", subscriberID.String()),
			zap.String("token_package_id", tokenPackageID.String()),
			zap.Error(err),
		)
		return walletdomain.CurryWallet{}, err
	}

	s.notifier.Publish(ctx, notification.Event{
		Name:         notification.EventWalletPurchased,
		SubscriberID: subscriberID,
		Payload: map[string]any{
			"wallet_id":    wallet.ID.String(),
			"diet_type":    string(wallet.DietType),
			"total_tokens": wallet.TotalTokens,
			"valid_until":  wallet.ValidUntil.Format(time.DateOnly),
		},
	})

	return wallet, nil
}

func (s *Service) purchaseTx(ctx context.Context, subscriberID snowflake.ID, pkg catalogdomain.CurryTokenPackage) (walletdomain.CurryWallet, error) {
	var wallet walletdomain.CurryWallet
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		existing, err := s.repo.FindWalletForUpdate(ctx, tx, subscriberID, pkg.DietType)
		if err != nil {
			return err
		}

		now := s.clock.Now()
		today := clock.Today(s.clock)

		if existing == nil {
			wallet = walletdomain.CurryWallet{
				ID:           s.genID.Generate(),
				SubscriberID: subscriberID,
				DietType:     pkg.DietType,
				TotalTokens:  pkg.TokenCount,
				ValidUntil:   today.AddDate(0, 0, pkg.ValidityDays),
				CreatedAt:    now,
				UpdatedAt:    now,
			}
			return s.repo.InsertWallet(ctx, tx, &wallet)
		}

		base := existing.ValidUntil
		if base.Before(today) {
			base = today
		}
		existing.TotalTokens += pkg.TokenCount
		existing.ValidUntil = base.AddDate(0, 0, pkg.ValidityDays)
		existing.UpdatedAt = now
		if err := s.repo.UpdateWallet(ctx, tx, existing); err != nil {
			return err
		}
		wallet = *existing
		return nil
	})
	return wallet, err
}

func (s *Service) Wallets(ctx context.Context) ([]walletdomain.CurryWallet, error) {
	subscriberID, ok := subscriberctx.SubscriberID(ctx)
	if !ok {
		return nil, walletdomain.ErrWalletNotFound
	}
	return s.repo.ListWallets(ctx, s.db, subscriberID)
}

func (s *Service) PlaceOrder(ctx context.Context, req walletdomain.PlaceOrderRequest) (walletdomain.CurryOrder, error) {
	subscriberID, ok := subscriberctx.SubscriberID(ctx)
	if !ok {
		return walletdomain.CurryOrder{}, walletdomain.ErrWalletNotFound
	}

	if req.ItemType != walletdomain.CurryLunch && req.ItemType != walletdomain.CurryDinner {
		return walletdomain.CurryOrder{}, walletdomain.ErrInvalidItemType
	}
	if !clock.InWindow(s.clock, req.OrderDate) {
		return walletdomain.CurryOrder{}, rules.ErrWindowExceeded
	}
	orderDate := clock.ServiceDate(req.OrderDate.In(s.clock.Now().Location()))

	var order walletdomain.CurryOrder
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		wallet, err := s.repo.FindWalletForUpdate(ctx, tx, subscriberID, req.DietType)
		if err != nil {
			return err
		}
		if wallet == nil {
			return walletdomain.ErrWalletNotFound
		}
		if wallet.ValidUntil.Before(clock.Today(s.clock)) {
			return rules.ErrWalletExpired
		}

		// Balance check and increment are one conditional statement; the
		// guard in SQL is what keeps two racing orders from overdrawing.
		debited, err := s.repo.DebitToken(ctx, tx, wallet.ID)
		if err != nil {
			return err
		}
		if !debited {
			return rules.ErrInsufficientTokens
		}

		now := s.clock.Now()
		order = walletdomain.CurryOrder{
			ID:           s.genID.Generate(),
			WalletID:     wallet.ID,
			SubscriberID: subscriberID,
			OrderDate:    orderDate,
			ItemType:     req.ItemType,
			Status:       walletdomain.OrderStatusOrdered,
			DeliverySlot: walletdomain.DefaultSlotFor(req.ItemType),
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		return s.repo.InsertOrder(ctx, tx, &order)
	})
	if err != nil {
		s.log.Warn("curry order rejected",
			zap.String("subscriber_id", subscriberID.String()),
			zap.String("diet_type", string(req.DietType)),
			zap.Error(err),
		)
		return walletdomain.CurryOrder{}, err
	}

	s.notifier.Publish(ctx, notification.Event{
		Name:         notification.EventOrderPlaced,
		SubscriberID: subscriberID,
		Payload: map[string]any{
			"order_id":   order.ID.String(),
			"order_date": order.OrderDate.Format(time.DateOnly),
			"item_type":  string(order.ItemType),
		},
	})

	return order, nil
}

func (s *Service) CancelOrder(ctx context.Context, orderID snowflake.ID) (walletdomain.CurryOrder, error) {
	subscriberID, ok := subscriberctx.SubscriberID(ctx)
	if !ok {
		return walletdomain.CurryOrder{}, walletdomain.ErrOrderNotOwned
	}

	var cancelled walletdomain.CurryOrder
	alreadyCancelled := false
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		order, err := s.repo.FindOrderByIDForUpdate(ctx, tx, orderID)
		if err != nil {
			return err
		}
		if order == nil {
			return walletdomain.ErrOrderNotFound
		}
		if order.SubscriberID != subscriberID {
			return walletdomain.ErrOrderNotOwned
		}
		if order.Status == walletdomain.OrderStatusFulfilled {
			return rules.ErrAlreadyFulfilled
		}
		if order.Status == walletdomain.OrderStatusCancelled {
			// Already refunded; a second cancel must not refund again.
			cancelled = *order
			alreadyCancelled = true
			return nil
		}

		order.Status = walletdomain.OrderStatusCancelled
		order.UpdatedAt = s.clock.Now()
		if err := s.repo.UpdateOrder(ctx, tx, order); err != nil {
			return err
		}
		if err := s.repo.RefundToken(ctx, tx, order.WalletID); err != nil {
			return err
		}
		cancelled = *order
		return nil
	})
	if err != nil {
		s.log.Warn("curry order cancel rejected",
			zap.String("subscriber_id", subscriberID.String()),
			zap.String("order_id", orderID.String()),
			zap.Error(err),
		)
		return walletdomain.CurryOrder{}, err
	}

	if !alreadyCancelled {
		s.notifier.Publish(ctx, notification.Event{
			Name:         notification.EventOrderCancelled,
			SubscriberID: subscriberID,
			Payload:      map[string]any{"order_id": cancelled.ID.String()},
		})
	}

	return cancelled, nil
}
