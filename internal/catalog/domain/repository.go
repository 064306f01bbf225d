package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Product, error)
	FindByIDs(ctx context.Context, db *gorm.DB, ids []snowflake.ID) ([]Product, error)
	List(ctx context.Context, db *gorm.DB, sellerID *snowflake.ID) ([]Product, error)
	Insert(ctx context.Context, db *gorm.DB, product *Product) error

	// ReserveStock decrements stock only when enough remains. It returns
	// ErrInsufficientStock when the guarded update matches no row.
	ReserveStock(ctx context.Context, db *gorm.DB, id snowflake.ID, quantity int64) error

	// RestoreStock returns previously reserved stock, for cancellations.
	RestoreStock(ctx context.Context, db *gorm.DB, id snowflake.ID, quantity int64) error
}
