package repository

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/dukalabs/soko/internal/refund/domain"
	"gorm.io/gorm"
)

type repositoryImpl struct{}

func Provide() domain.Repository {
	return &repositoryImpl{}
}

func (r *repositoryImpl) Insert(ctx context.Context, db *gorm.DB, refund *domain.RefundRequest) error {
	return db.WithContext(ctx).Create(refund).Error
}

func (r *repositoryImpl) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.RefundRequest, error) {
	var refund domain.RefundRequest
	err := db.WithContext(ctx).First(&refund, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrRefundNotFound
		}
		return nil, err
	}
	return &refund, nil
}

func (r *repositoryImpl) List(ctx context.Context, db *gorm.DB, filter domain.ListFilter) ([]domain.RefundRequest, error) {
	query := db.WithContext(ctx).Model(&domain.RefundRequest{})
	if filter.OrderID != 0 {
		query = query.Where("order_id = ?", filter.OrderID)
	}
	if filter.CustomerID != 0 {
		query = query.Where("customer_id = ?", filter.CustomerID)
	}
	if filter.SellerID != 0 {
		query = query.Where("seller_id = ?", filter.SellerID)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}

	var refunds []domain.RefundRequest
	if err := query.Order("created_at DESC, id DESC").Find(&refunds).Error; err != nil {
		return nil, err
	}
	return refunds, nil
}

func (r *repositoryImpl) CountActive(ctx context.Context, db *gorm.DB, orderID snowflake.ID) (int64, error) {
	var count int64
	err := db.WithContext(ctx).
		Model(&domain.RefundRequest{}).
		Where("order_id = ? AND status IN ?", orderID, []domain.RefundStatus{domain.StatusPending, domain.StatusApproved}).
		Count(&count).Error
	return count, err
}

func (r *repositoryImpl) SumProcessed(ctx context.Context, db *gorm.DB, orderID snowflake.ID) (int64, error) {
	var total int64
	err := db.WithContext(ctx).Raw(`
		SELECT COALESCE(SUM(amount), 0)
		FROM refund_requests
		WHERE order_id = ? AND status = ?
	`, orderID, domain.StatusProcessed).Scan(&total).Error
	return total, err
}

func (r *repositoryImpl) Transition(ctx context.Context, db *gorm.DB, refund *domain.RefundRequest, target domain.RefundStatus, adminNotes string, now time.Time) error {
	updates := map[string]any{
		"status":     target,
		"version":    gorm.Expr("version + 1"),
		"updated_at": now,
	}
	if adminNotes != "" {
		updates["admin_notes"] = adminNotes
	}
	if target == domain.StatusProcessed {
		updates["processed_at"] = now
	}

	result := db.WithContext(ctx).
		Model(&domain.RefundRequest{}).
		Where("id = ? AND version = ?", refund.ID, refund.Version).
		Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.ErrConflict
	}

	refund.Status = target
	refund.Version++
	refund.UpdatedAt = now
	if adminNotes != "" {
		refund.AdminNotes = adminNotes
	}
	if target == domain.StatusProcessed {
		refund.ProcessedAt = &now
	}
	return nil
}
