package repository

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"github.com/dukalabs/soko/internal/catalog/domain"
	"gorm.io/gorm"
)

type repositoryImpl struct{}

func Provide() domain.Repository {
	return &repositoryImpl{}
}

func (r *repositoryImpl) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Product, error) {
	var product domain.Product
	err := db.WithContext(ctx).First(&product, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrProductNotFound
		}
		return nil, err
	}
	return &product, nil
}

func (r *repositoryImpl) FindByIDs(ctx context.Context, db *gorm.DB, ids []snowflake.ID) ([]domain.Product, error) {
	var products []domain.Product
	err := db.WithContext(ctx).Where("id IN ?", ids).Find(&products).Error
	if err != nil {
		return nil, err
	}
	return products, nil
}

func (r *repositoryImpl) List(ctx context.Context, db *gorm.DB, sellerID *snowflake.ID) ([]domain.Product, error) {
	query := db.WithContext(ctx).Where("active = ?", true)
	if sellerID != nil {
		query = query.Where("seller_id = ?", *sellerID)
	}

	var products []domain.Product
	if err := query.Order("created_at DESC").Find(&products).Error; err != nil {
		return nil, err
	}
	return products, nil
}

func (r *repositoryImpl) Insert(ctx context.Context, db *gorm.DB, product *domain.Product) error {
	return db.WithContext(ctx).Create(product).Error
}

func (r *repositoryImpl) ReserveStock(ctx context.Context, db *gorm.DB, id snowflake.ID, quantity int64) error {
	result := db.WithContext(ctx).Exec(`
		UPDATE products
		SET stock_quantity = stock_quantity - ?
		WHERE id = ? AND stock_quantity >= ?
	`, quantity, id, quantity)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.ErrInsufficientStock
	}
	return nil
}

func (r *repositoryImpl) RestoreStock(ctx context.Context, db *gorm.DB, id snowflake.ID, quantity int64) error {
	return db.WithContext(ctx).Exec(`
		UPDATE products
		SET stock_quantity = stock_quantity + ?
		WHERE id = ?
	`, quantity, id).Error
}
