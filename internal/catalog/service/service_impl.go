package service

import (
	"context"

	"github.com/bwmarrin/snowflake"
	catalogdomain "github.com/tiffinlabs/dabba/internal/catalog/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Service struct {
	db   *gorm.DB
	log  *zap.Logger
	repo catalogdomain.Repository
}

type ServiceParam struct {
	fx.In

	DB   *gorm.DB
	Log  *zap.Logger
	Repo catalogdomain.Repository
}

func NewService(p ServiceParam) catalogdomain.Service {
	return &Service{
		db:   p.DB,
		log:  p.Log.Named("catalog.service"),
		repo: p.Repo,
	}
}

func (s *Service) GetMealPackage(ctx context.Context, id snowflake.ID) (catalogdomain.MealPackage, error) {
	pkg, err := s.repo.FindMealPackageByID(ctx, s.db, id)
	if err != nil {
		return catalogdomain.MealPackage{}, err
	}
	if pkg == nil {
		return catalogdomain.MealPackage{}, catalogdomain.ErrPackageNotFound
	}
	return *pkg, nil
}

func (s *Service) ListMealPackages(ctx context.Context) ([]catalogdomain.MealPackage, error) {
	return s.repo.ListMealPackages(ctx, s.db)
}

func (s *Service) GetTokenPackage(ctx context.Context, id snowflake.ID) (catalogdomain.CurryTokenPackage, error) {
	pkg, err := s.repo.FindTokenPackageByID(ctx, s.db, id)
	if err != nil {
		return catalogdomain.CurryTokenPackage{}, err
	}
	if pkg == nil {
		return catalogdomain.CurryTokenPackage{}, catalogdomain.ErrTokenPackageNotFound
	}
	return *pkg, nil
}

func (s *Service) ListTokenPackages(ctx context.Context) ([]catalogdomain.CurryTokenPackage, error) {
	return s.repo.ListTokenPackages(ctx, s.db)
}

func (s *Service) ListUpgradePriceRules(ctx context.Context) ([]catalogdomain.UpgradePriceRule, error) {
	return s.repo.ListUpgradePriceRules(ctx, s.db)
}

func (s *Service) FindUpgradePriceRule(ctx context.Context, upgradeType catalogdomain.UpgradeType, scope catalogdomain.UpgradeScope, mealType *catalogdomain.ItemType) (catalogdomain.UpgradePriceRule, error) {
	if scope != catalogdomain.ScopeMeal {
		// Day and week rules never match on a meal type.
		mealType = nil
	}
	rule, err := s.repo.FindUpgradePriceRule(ctx, s.db, upgradeType, scope, mealType)
	if err != nil {
		return catalogdomain.UpgradePriceRule{}, err
	}
	if rule == nil {
		return catalogdomain.UpgradePriceRule{}, catalogdomain.ErrPriceRuleNotFound
	}
	return *rule, nil
}

func (s *Service) VerifyAddressOwned(ctx context.Context, addressID, subscriberID snowflake.ID) error {
	addr, err := s.repo.FindAddressByID(ctx, s.db, addressID)
	if err != nil {
		return err
	}
	if addr == nil {
		return catalogdomain.ErrAddressNotFound
	}
	if addr.SubscriberID != subscriberID {
		s.log.Warn("address ownership rejected",
			zap.String("address_id", addressID.String()),
			zap.String("subscriber_id", subscriberID.String()),
		)
		return catalogdomain.ErrAddressNotOwned
	}
	return nil
}
