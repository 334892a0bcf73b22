package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	FindMealPackageByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*MealPackage, error)
	ListMealPackages(ctx context.Context, db *gorm.DB) ([]MealPackage, error)
	FindTokenPackageByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*CurryTokenPackage, error)
	ListTokenPackages(ctx context.Context, db *gorm.DB) ([]CurryTokenPackage, error)
	ListUpgradePriceRules(ctx context.Context, db *gorm.DB) ([]UpgradePriceRule, error)
	FindUpgradePriceRule(ctx context.Context, db *gorm.DB, upgradeType UpgradeType, scope UpgradeScope, mealType *ItemType) (*UpgradePriceRule, error)
	FindAddressByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Address, error)
}
