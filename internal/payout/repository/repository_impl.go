package repository

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/dukalabs/soko/internal/payout/domain"
	"gorm.io/gorm"
)

type repositoryImpl struct{}

func Provide() domain.Repository {
	return &repositoryImpl{}
}

func (r *repositoryImpl) Append(ctx context.Context, db *gorm.DB, txn *domain.PayoutTransaction) (bool, error) {
	result := db.WithContext(ctx).Exec(`
		INSERT INTO payout_transactions
			(id, seller_id, order_id, refund_id, type, gross_amount, commission_amount, currency, status, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT DO NOTHING
	`,
		txn.ID, txn.SellerID, txn.OrderID, txn.RefundID,
		txn.Type, txn.GrossAmount, txn.CommissionAmount,
		txn.Currency, txn.Status, txn.CreatedAt,
	)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *repositoryImpl) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.PayoutTransaction, error) {
	var txn domain.PayoutTransaction
	err := db.WithContext(ctx).First(&txn, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrTransactionNotFound
		}
		return nil, err
	}
	return &txn, nil
}

func (r *repositoryImpl) FindSaleByOrder(ctx context.Context, db *gorm.DB, orderID snowflake.ID) (*domain.PayoutTransaction, error) {
	return r.findOne(ctx, db, "order_id = ? AND type = ?", orderID, domain.TypeSale)
}

func (r *repositoryImpl) FindRefundByRefund(ctx context.Context, db *gorm.DB, refundID snowflake.ID) (*domain.PayoutTransaction, error) {
	return r.findOne(ctx, db, "refund_id = ? AND type = ?", refundID, domain.TypeRefund)
}

func (r *repositoryImpl) findOne(ctx context.Context, db *gorm.DB, query string, args ...any) (*domain.PayoutTransaction, error) {
	var txn domain.PayoutTransaction
	err := db.WithContext(ctx).Where(query, args...).First(&txn).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrTransactionNotFound
		}
		return nil, err
	}
	return &txn, nil
}

func (r *repositoryImpl) List(ctx context.Context, db *gorm.DB, filter domain.ListFilter) ([]domain.PayoutTransaction, error) {
	query := db.WithContext(ctx).Model(&domain.PayoutTransaction{})
	if filter.SellerID != 0 {
		query = query.Where("seller_id = ?", filter.SellerID)
	}
	if filter.Type != "" {
		query = query.Where("type = ?", filter.Type)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.From != nil {
		query = query.Where("created_at >= ?", *filter.From)
	}
	if filter.To != nil {
		query = query.Where("created_at < ?", *filter.To)
	}
	if filter.After != nil {
		createdAt, err := time.Parse(time.RFC3339Nano, filter.After.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("invalid page token: %w", err)
		}
		id, err := strconv.ParseInt(filter.After.ID, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid page token: %w", err)
		}
		query = query.Where("created_at < ? OR (created_at = ? AND id < ?)", createdAt, createdAt, id)
	}
	if filter.PageSize > 0 {
		// one extra row signals another page
		query = query.Limit(filter.PageSize + 1)
	}

	var txns []domain.PayoutTransaction
	if err := query.Order("created_at DESC, id DESC").Find(&txns).Error; err != nil {
		return nil, err
	}
	return txns, nil
}

func (r *repositoryImpl) PendingSales(ctx context.Context, db *gorm.DB, sellerID snowflake.ID) ([]domain.PayoutTransaction, error) {
	var txns []domain.PayoutTransaction
	err := db.WithContext(ctx).
		Where("seller_id = ? AND type = ? AND status = ?", sellerID, domain.TypeSale, domain.StatusPending).
		Order("created_at ASC, id ASC").
		Find(&txns).Error
	if err != nil {
		return nil, err
	}
	return txns, nil
}

func (r *repositoryImpl) MarkSalesPaid(ctx context.Context, db *gorm.DB, ids []snowflake.ID) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	result := db.WithContext(ctx).Exec(`
		UPDATE payout_transactions
		SET status = ?
		WHERE id IN ? AND type = ? AND status = ?
	`, domain.StatusPaid, ids, domain.TypeSale, domain.StatusPending)
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}
