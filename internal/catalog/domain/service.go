package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
)

var (
	ErrPackageNotFound      = errors.New("package_not_found")
	ErrTokenPackageNotFound = errors.New("token_package_not_found")
	ErrPriceRuleNotFound    = errors.New("price_rule_not_found")
	ErrAddressNotFound      = errors.New("address_not_found")
	ErrAddressNotOwned      = errors.New("address_not_owned")
)

type Service interface {
	GetMealPackage(ctx context.Context, id snowflake.ID) (MealPackage, error)
	ListMealPackages(ctx context.Context) ([]MealPackage, error)
	GetTokenPackage(ctx context.Context, id snowflake.ID) (CurryTokenPackage, error)
	ListTokenPackages(ctx context.Context) ([]CurryTokenPackage, error)
	ListUpgradePriceRules(ctx context.Context) ([]UpgradePriceRule, error)
	// FindUpgradePriceRule resolves the rule for (upgradeType, scope,
	// mealType). mealType is only consulted for meal-scoped rules.
	FindUpgradePriceRule(ctx context.Context, upgradeType UpgradeType, scope UpgradeScope, mealType *ItemType) (UpgradePriceRule, error)
	// VerifyAddressOwned returns ErrAddressNotOwned when the address exists
	// but belongs to another subscriber, ErrAddressNotFound when it does not
	// exist at all.
	VerifyAddressOwned(ctx context.Context, addressID, subscriberID snowflake.ID) error
}
