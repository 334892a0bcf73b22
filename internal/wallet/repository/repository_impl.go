package repository

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	catalogdomain "github.com/tiffinlabs/dabba/internal/catalog/domain"
	walletdomain "github.com/tiffinlabs/dabba/internal/wallet/domain"
	pkgdb "github.com/tiffinlabs/dabba/pkg/db"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() walletdomain.Repository {
	return &repo{}
}

func (r *repo) InsertWallet(ctx context.Context, db *gorm.DB, wallet *walletdomain.CurryWallet) error {
	return db.WithContext(ctx).Create(wallet).Error
}

func (r *repo) UpdateWallet(ctx context.Context, db *gorm.DB, wallet *walletdomain.CurryWallet) error {
	return db.WithContext(ctx).Save(wallet).Error
}

func (r *repo) FindWallet(ctx context.Context, db *gorm.DB, subscriberID snowflake.ID, dietType catalogdomain.DietType) (*walletdomain.CurryWallet, error) {
	return r.findWallet(ctx, db, subscriberID, dietType, false)
}

func (r *repo) FindWalletForUpdate(ctx context.Context, db *gorm.DB, subscriberID snowflake.ID, dietType catalogdomain.DietType) (*walletdomain.CurryWallet, error) {
	return r.findWallet(ctx, db, subscriberID, dietType, true)
}

func (r *repo) findWallet(ctx context.Context, db *gorm.DB, subscriberID snowflake.ID, dietType catalogdomain.DietType, lock bool) (*walletdomain.CurryWallet, error) {
	stmt := db.WithContext(ctx)
	if lock {
		stmt = pkgdb.ForUpdate(stmt)
	}

	var wallet walletdomain.CurryWallet
	err := stmt.
		Where("subscriber_id = ? AND diet_type = ?", subscriberID, dietType).
		First(&wallet).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &wallet, nil
}

func (r *repo) ListWallets(ctx context.Context, db *gorm.DB, subscriberID snowflake.ID) ([]walletdomain.CurryWallet, error) {
	var wallets []walletdomain.CurryWallet
	err := db.WithContext(ctx).
		Where("subscriber_id = ?", subscriberID).
		Order("diet_type").
		Find(&wallets).Error
	return wallets, err
}

func (r *repo) DebitToken(ctx context.Context, db *gorm.DB, walletID snowflake.ID) (bool, error) {
	result := db.WithContext(ctx).Exec(
		`UPDATE curry_wallets
		 SET used_tokens = used_tokens + 1, updated_at = ?
		 WHERE id = ? AND used_tokens < total_tokens`,
		time.Now().UTC(),
		walletID,
	)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

func (r *repo) RefundToken(ctx context.Context, db *gorm.DB, walletID snowflake.ID) error {
	return db.WithContext(ctx).Exec(
		`UPDATE curry_wallets
		 SET used_tokens = used_tokens - 1, updated_at = ?
		 WHERE id = ? AND used_tokens > 0`,
		time.Now().UTC(),
		walletID,
	).Error
}

func (r *repo) InsertOrder(ctx context.Context, db *gorm.DB, order *walletdomain.CurryOrder) error {
	return db.WithContext(ctx).Create(order).Error
}

func (r *repo) FindOrderByIDForUpdate(ctx context.Context, db *gorm.DB, id snowflake.ID) (*walletdomain.CurryOrder, error) {
	var order walletdomain.CurryOrder
	err := pkgdb.ForUpdate(db.WithContext(ctx)).
		Where("id = ?", id).
		First(&order).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &order, nil
}

func (r *repo) UpdateOrder(ctx context.Context, db *gorm.DB, order *walletdomain.CurryOrder) error {
	return db.WithContext(ctx).Save(order).Error
}
