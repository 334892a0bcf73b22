// Package domain contains persistence models and contracts for the curry
// token wallet ledger and curry orders.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	catalogdomain "github.com/tiffinlabs/dabba/internal/catalog/domain"
)

// CurryWallet is the token ledger for one (subscriber, diet type) pair.
// remaining = totalTokens - usedTokens must never go negative; every debit
// and refund is a conditional update guarded in SQL.
type CurryWallet struct {
	ID           snowflake.ID           `gorm:"primaryKey" json:"id"`
	SubscriberID snowflake.ID           `gorm:"not null;uniqueIndex:idx_wallet_per_diet,priority:1" json:"subscriber_id"`
	DietType     catalogdomain.DietType `gorm:"type:text;not null;uniqueIndex:idx_wallet_per_diet,priority:2" json:"diet_type"`
	TotalTokens  int                    `gorm:"not null;default:0" json:"total_tokens"`
	UsedTokens   int                    `gorm:"not null;default:0" json:"used_tokens"`
	ValidUntil   time.Time              `gorm:"type:date;not null" json:"valid_until"`
	CreatedAt    time.Time              `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt    time.Time              `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (CurryWallet) TableName() string { return "curry_wallets" }

// Remaining returns the spendable token count.
func (w CurryWallet) Remaining() int { return w.TotalTokens - w.UsedTokens }

// CurryItemType is a curry order slot.
type CurryItemType string

const (
	CurryLunch  CurryItemType = "curry_lunch"
	CurryDinner CurryItemType = "curry_dinner"
)

// DefaultSlotFor returns the delivery slot a curry item ships in unless a
// delivery group overrides it.
func DefaultSlotFor(item CurryItemType) catalogdomain.DeliverySlot {
	if item == CurryLunch {
		return catalogdomain.SlotAfternoon
	}
	return catalogdomain.SlotNight
}

// OrderStatus is the curry order lifecycle.
type OrderStatus string

const (
	OrderStatusOrdered   OrderStatus = "ordered"
	OrderStatusCancelled OrderStatus = "cancelled"
	OrderStatusFulfilled OrderStatus = "fulfilled"
)

// CurryOrder spends one wallet token for one curry delivery.
type CurryOrder struct {
	ID              snowflake.ID               `gorm:"primaryKey" json:"id"`
	WalletID        snowflake.ID               `gorm:"not null;index" json:"wallet_id"`
	SubscriberID    snowflake.ID               `gorm:"not null;index" json:"subscriber_id"`
	OrderDate       time.Time                  `gorm:"type:date;not null" json:"order_date"`
	ItemType        CurryItemType              `gorm:"type:text;not null" json:"item_type"`
	Status          OrderStatus                `gorm:"type:text;not null" json:"status"`
	DeliverySlot    catalogdomain.DeliverySlot `gorm:"type:text;not null" json:"delivery_slot"`
	DeliveryGroupID *snowflake.ID              `gorm:"index" json:"delivery_group_id,omitempty"`
	CreatedAt       time.Time                  `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt       time.Time                  `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (CurryOrder) TableName() string { return "curry_orders" }
