package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type ListFilter struct {
	CustomerID snowflake.ID
	SellerID   snowflake.ID
	Status     OrderStatus
}

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, order *Order) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Order, error)
	List(ctx context.Context, db *gorm.DB, filter ListFilter) ([]Order, error)

	// Transition updates the status with an optimistic version guard. A
	// stale version matches no row and surfaces as ErrConflict.
	Transition(ctx context.Context, db *gorm.DB, order *Order, target OrderStatus, now time.Time) error
}
