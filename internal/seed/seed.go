// Package seed bootstraps the reference catalog so a fresh install serves
// requests immediately: meal packages, curry token packages, and upgrade
// price rules.
package seed

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	catalogdomain "github.com/tiffinlabs/dabba/internal/catalog/domain"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// EnsureReferenceData seeds catalog rows once; reruns are no-ops.
func EnsureReferenceData(db *gorm.DB) error {
	if db == nil {
		return errors.New("seed database handle is required")
	}

	node, err := snowflake.NewNode(1)
	if err != nil {
		return err
	}

	ctx := context.Background()
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := ensureMealPackages(ctx, tx, node); err != nil {
			return err
		}
		if err := ensureTokenPackages(ctx, tx, node); err != nil {
			return err
		}
		return ensureUpgradePriceRules(ctx, tx, node)
	})
}

func ensureMealPackages(ctx context.Context, tx *gorm.DB, node *snowflake.Node) error {
	var count int64
	if err := tx.WithContext(ctx).Model(&catalogdomain.MealPackage{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	allMeals := datatypes.NewJSONSlice([]catalogdomain.ItemType{
		catalogdomain.ItemBreakfast,
		catalogdomain.ItemLunch,
		catalogdomain.ItemSnacks,
		catalogdomain.ItemDinner,
	})
	lunchDinner := datatypes.NewJSONSlice([]catalogdomain.ItemType{
		catalogdomain.ItemLunch,
		catalogdomain.ItemDinner,
	})

	packages := []catalogdomain.MealPackage{
		{
			ID:                    node.Generate(),
			Name:                  "South Veg Full Day (30d)",
			DietType:              catalogdomain.DietVeg,
			CuisineType:           catalogdomain.CuisineSouthIndian,
			ItemTypes:             allMeals,
			DurationDays:          30,
			DefaultContainer:      catalogdomain.ContainerSteel,
			AllowsDietUpgrade:     true,
			AllowsCuisineUpgrade:  true,
			AllowsContainerChoice: true,
			PriceRupees:           7200,
		},
		{
			ID:                    node.Generate(),
			Name:                  "South Veg Lunch+Dinner (7d)",
			DietType:              catalogdomain.DietVeg,
			CuisineType:           catalogdomain.CuisineSouthIndian,
			ItemTypes:             lunchDinner,
			DurationDays:          7,
			DefaultContainer:      catalogdomain.ContainerDisposable,
			AllowsDietUpgrade:     true,
			AllowsCuisineUpgrade:  false,
			AllowsContainerChoice: false,
			PriceRupees:           1400,
		},
		{
			ID:               node.Generate(),
			Name:             "North NonVeg Lunch+Dinner (30d)",
			DietType:         catalogdomain.DietNonVeg,
			CuisineType:      catalogdomain.CuisineNorthIndian,
			ItemTypes:        lunchDinner,
			DurationDays:     30,
			DefaultContainer: catalogdomain.ContainerSteel,
			PriceRupees:      9000,
		},
	}
	return tx.WithContext(ctx).Create(&packages).Error
}

func ensureTokenPackages(ctx context.Context, tx *gorm.DB, node *snowflake.Node) error {
	var count int64
	if err := tx.WithContext(ctx).Model(&catalogdomain.CurryTokenPackage{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	packages := []catalogdomain.CurryTokenPackage{
		{ID: node.Generate(), Name: "Veg Curry 10-pack", DietType: catalogdomain.DietVeg, TokenCount: 10, ValidityDays: 30, PriceRupees: 600},
		{ID: node.Generate(), Name: "Veg Curry 20-pack", DietType: catalogdomain.DietVeg, TokenCount: 20, ValidityDays: 60, PriceRupees: 1100},
		{ID: node.Generate(), Name: "NonVeg Curry 10-pack", DietType: catalogdomain.DietNonVeg, TokenCount: 10, ValidityDays: 30, PriceRupees: 900},
	}
	return tx.WithContext(ctx).Create(&packages).Error
}

func ensureUpgradePriceRules(ctx context.Context, tx *gorm.DB, node *snowflake.Node) error {
	var count int64
	if err := tx.WithContext(ctx).Model(&catalogdomain.UpgradePriceRule{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	lunch := catalogdomain.ItemLunch
	dinner := catalogdomain.ItemDinner
	rules := []catalogdomain.UpgradePriceRule{
		{ID: node.Generate(), UpgradeType: catalogdomain.UpgradeVegToNonVeg, Scope: catalogdomain.ScopeMeal, MealType: &lunch, PriceRupees: 40},
		{ID: node.Generate(), UpgradeType: catalogdomain.UpgradeVegToNonVeg, Scope: catalogdomain.ScopeMeal, MealType: &dinner, PriceRupees: 40},
		{ID: node.Generate(), UpgradeType: catalogdomain.UpgradeVegToNonVeg, Scope: catalogdomain.ScopeDay, PriceRupees: 70},
		{ID: node.Generate(), UpgradeType: catalogdomain.UpgradeVegToNonVeg, Scope: catalogdomain.ScopeWeek, PriceRupees: 420},
		{ID: node.Generate(), UpgradeType: catalogdomain.UpgradeSouthToNorth, Scope: catalogdomain.ScopeDay, PriceRupees: 50},
		{ID: node.Generate(), UpgradeType: catalogdomain.UpgradeSouthToNorth, Scope: catalogdomain.ScopeWeek, PriceRupees: 300},
	}
	return tx.WithContext(ctx).Create(&rules).Error
}
