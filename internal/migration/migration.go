// Package migration ensures the service is fully usable out of the box for
// local and self-hosted environments: all core tables are created
// automatically on startup.
package migration

import (
	"errors"

	catalogdomain "github.com/tiffinlabs/dabba/internal/catalog/domain"
	groupdomain "github.com/tiffinlabs/dabba/internal/deliverygroup/domain"
	scheduledomain "github.com/tiffinlabs/dabba/internal/schedule/domain"
	subscriptiondomain "github.com/tiffinlabs/dabba/internal/subscription/domain"
	upgradedomain "github.com/tiffinlabs/dabba/internal/upgrade/domain"
	walletdomain "github.com/tiffinlabs/dabba/internal/wallet/domain"
	"gorm.io/gorm"
)

func RunMigrations(db *gorm.DB) error {
	if db == nil {
		return errors.New("migration database handle is required")
	}

	return db.AutoMigrate(
		&catalogdomain.MealPackage{},
		&catalogdomain.CurryTokenPackage{},
		&catalogdomain.UpgradePriceRule{},
		&catalogdomain.Address{},
		&subscriptiondomain.Subscription{},
		&scheduledomain.ScheduledMeal{},
		&scheduledomain.PauseAuditEntry{},
		&groupdomain.DeliveryGroup{},
		&walletdomain.CurryWallet{},
		&walletdomain.CurryOrder{},
		&upgradedomain.SubscriptionUpgrade{},
	)
}
