package repository

import (
	"context"
	"errors"
	"time"

	"github.com/dukalabs/soko/internal/commission/domain"
	"gorm.io/gorm"
)

type repositoryImpl struct{}

func Provide() domain.Repository {
	return &repositoryImpl{}
}

func (r *repositoryImpl) FindEffectiveAt(ctx context.Context, db *gorm.DB, at time.Time) (*domain.CommissionPolicy, error) {
	var policy domain.CommissionPolicy
	err := db.WithContext(ctx).
		Where("effective_from <= ?", at).
		Order("effective_from DESC").
		First(&policy).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrPolicyNotFound
		}
		return nil, err
	}
	return &policy, nil
}

func (r *repositoryImpl) Insert(ctx context.Context, db *gorm.DB, policy *domain.CommissionPolicy) error {
	return db.WithContext(ctx).Create(policy).Error
}

func (r *repositoryImpl) List(ctx context.Context, db *gorm.DB) ([]domain.CommissionPolicy, error) {
	var policies []domain.CommissionPolicy
	err := db.WithContext(ctx).
		Order("effective_from DESC").
		Find(&policies).Error
	if err != nil {
		return nil, err
	}
	return policies, nil
}
