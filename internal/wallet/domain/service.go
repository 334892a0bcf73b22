package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	catalogdomain "github.com/tiffinlabs/dabba/internal/catalog/domain"
)

var (
	ErrWalletNotFound  = errors.New("wallet_not_found")
	ErrOrderNotFound   = errors.New("order_not_found")
	ErrOrderNotOwned   = errors.New("order_not_owned")
	ErrInvalidItemType = errors.New("invalid_curry_item_type")
)

type PlaceOrderRequest struct {
	DietType  catalogdomain.DietType `json:"diet_type"`
	OrderDate time.Time              `json:"order_date"`
	ItemType  CurryItemType          `json:"item_type"`
}

type Service interface {
	// Purchase credits the caller's wallet for the token package's diet
	// type, creating the wallet on first purchase. Validity extends to
	// max(currentValidUntil, today) + validityDays, never shrinking.
	Purchase(ctx context.Context, tokenPackageID snowflake.ID) (CurryWallet, error)
	// Wallets returns the caller's wallets.
	Wallets(ctx context.Context) ([]CurryWallet, error)
	// PlaceOrder spends one token atomically; two concurrent orders can
	// never overdraw the same wallet.
	PlaceOrder(ctx context.Context, req PlaceOrderRequest) (CurryOrder, error)
	// CancelOrder refunds the token unless the order was fulfilled.
	// Cancelling an already-cancelled order is an idempotent no-op.
	CancelOrder(ctx context.Context, orderID snowflake.ID) (CurryOrder, error)
}
