package repository

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/dukalabs/soko/internal/order/domain"
	pkgdb "github.com/dukalabs/soko/pkg/db"
	"gorm.io/gorm"
)

type repositoryImpl struct{}

func Provide() domain.Repository {
	return &repositoryImpl{}
}

func (r *repositoryImpl) Insert(ctx context.Context, db *gorm.DB, order *domain.Order) error {
	if err := db.WithContext(ctx).Create(order).Error; err != nil {
		if pkgdb.IsDuplicateKeyErr(err) {
			return domain.ErrConflict
		}
		return err
	}
	return nil
}

func (r *repositoryImpl) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Order, error) {
	var order domain.Order
	err := db.WithContext(ctx).
		Preload("Items").
		First(&order, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrOrderNotFound
		}
		return nil, err
	}
	return &order, nil
}

func (r *repositoryImpl) List(ctx context.Context, db *gorm.DB, filter domain.ListFilter) ([]domain.Order, error) {
	query := db.WithContext(ctx).Model(&domain.Order{})
	if filter.CustomerID != 0 {
		query = query.Where("customer_id = ?", filter.CustomerID)
	}
	if filter.SellerID != 0 {
		query = query.Where("seller_id = ?", filter.SellerID)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}

	var orders []domain.Order
	err := query.Preload("Items").Order("created_at DESC, id DESC").Find(&orders).Error
	if err != nil {
		return nil, err
	}
	return orders, nil
}

func (r *repositoryImpl) Transition(ctx context.Context, db *gorm.DB, order *domain.Order, target domain.OrderStatus, now time.Time) error {
	updates := map[string]any{
		"status":     target,
		"version":    gorm.Expr("version + 1"),
		"updated_at": now,
	}
	switch target {
	case domain.StatusDelivered:
		updates["delivered_at"] = now
	case domain.StatusCancelled:
		updates["cancelled_at"] = now
	}

	result := db.WithContext(ctx).
		Model(&domain.Order{}).
		Where("id = ? AND version = ?", order.ID, order.Version).
		Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.ErrConflict
	}

	order.Status = target
	order.Version++
	order.UpdatedAt = now
	switch target {
	case domain.StatusDelivered:
		order.DeliveredAt = &now
	case domain.StatusCancelled:
		order.CancelledAt = &now
	}
	return nil
}
