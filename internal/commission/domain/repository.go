package domain

import (
	"context"
	"time"

	"gorm.io/gorm"
)

// Repository methods accept the executing *gorm.DB so callers can run them
// inside an enclosing transaction.
type Repository interface {
	FindEffectiveAt(ctx context.Context, db *gorm.DB, at time.Time) (*CommissionPolicy, error)
	Insert(ctx context.Context, db *gorm.DB, policy *CommissionPolicy) error
	List(ctx context.Context, db *gorm.DB) ([]CommissionPolicy, error)
}
