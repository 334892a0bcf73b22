package repository

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	catalogdomain "github.com/tiffinlabs/dabba/internal/catalog/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() catalogdomain.Repository {
	return &repo{}
}

func (r *repo) FindMealPackageByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*catalogdomain.MealPackage, error) {
	var pkg catalogdomain.MealPackage
	err := db.WithContext(ctx).Where("id = ?", id).First(&pkg).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &pkg, nil
}

func (r *repo) ListMealPackages(ctx context.Context, db *gorm.DB) ([]catalogdomain.MealPackage, error) {
	var pkgs []catalogdomain.MealPackage
	err := db.WithContext(ctx).Order("id").Find(&pkgs).Error
	return pkgs, err
}

func (r *repo) FindTokenPackageByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*catalogdomain.CurryTokenPackage, error) {
	var pkg catalogdomain.CurryTokenPackage
	err := db.WithContext(ctx).Where("id = ?", id).First(&pkg).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &pkg, nil
}

func (r *repo) ListTokenPackages(ctx context.Context, db *gorm.DB) ([]catalogdomain.CurryTokenPackage, error) {
	var pkgs []catalogdomain.CurryTokenPackage
	err := db.WithContext(ctx).Order("id").Find(&pkgs).Error
	return pkgs, err
}

func (r *repo) ListUpgradePriceRules(ctx context.Context, db *gorm.DB) ([]catalogdomain.UpgradePriceRule, error) {
	var rulesList []catalogdomain.UpgradePriceRule
	err := db.WithContext(ctx).Order("id").Find(&rulesList).Error
	return rulesList, err
}

func (r *repo) FindUpgradePriceRule(ctx context.Context, db *gorm.DB, upgradeType catalogdomain.UpgradeType, scope catalogdomain.UpgradeScope, mealType *catalogdomain.ItemType) (*catalogdomain.UpgradePriceRule, error) {
	stmt := db.WithContext(ctx).
		Where("upgrade_type = ?", upgradeType).
		Where("scope = ?", scope)
	if mealType != nil {
		stmt = stmt.Where("meal_type = ?", *mealType)
	} else {
		stmt = stmt.Where("meal_type IS NULL")
	}

	var rule catalogdomain.UpgradePriceRule
	err := stmt.First(&rule).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &rule, nil
}

func (r *repo) FindAddressByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*catalogdomain.Address, error) {
	var addr catalogdomain.Address
	err := db.WithContext(ctx).Where("id = ?", id).First(&addr).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &addr, nil
}
