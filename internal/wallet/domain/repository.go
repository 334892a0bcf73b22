package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	catalogdomain "github.com/tiffinlabs/dabba/internal/catalog/domain"
	"gorm.io/gorm"
)

type Repository interface {
	InsertWallet(ctx context.Context, db *gorm.DB, wallet *CurryWallet) error
	UpdateWallet(ctx context.Context, db *gorm.DB, wallet *CurryWallet) error
	FindWallet(ctx context.Context, db *gorm.DB, subscriberID snowflake.ID, dietType catalogdomain.DietType) (*CurryWallet, error)
	FindWalletForUpdate(ctx context.Context, db *gorm.DB, subscriberID snowflake.ID, dietType catalogdomain.DietType) (*CurryWallet, error)
	ListWallets(ctx context.Context, db *gorm.DB, subscriberID snowflake.ID) ([]CurryWallet, error)
	// DebitToken increments used_tokens iff a token remains; reports
	// whether the debit happened.
	DebitToken(ctx context.Context, db *gorm.DB, walletID snowflake.ID) (bool, error)
	// RefundToken decrements used_tokens, never below zero.
	RefundToken(ctx context.Context, db *gorm.DB, walletID snowflake.ID) error
	InsertOrder(ctx context.Context, db *gorm.DB, order *CurryOrder) error
	FindOrderByIDForUpdate(ctx context.Context, db *gorm.DB, id snowflake.ID) (*CurryOrder, error)
	UpdateOrder(ctx context.Context, db *gorm.DB, order *CurryOrder) error
}
