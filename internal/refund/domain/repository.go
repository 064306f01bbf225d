package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type ListFilter struct {
	OrderID    snowflake.ID
	CustomerID snowflake.ID
	SellerID   snowflake.ID
	Status     RefundStatus
}

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, refund *RefundRequest) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*RefundRequest, error)
	List(ctx context.Context, db *gorm.DB, filter ListFilter) ([]RefundRequest, error)

	// CountActive counts PENDING and APPROVED requests for the order.
	CountActive(ctx context.Context, db *gorm.DB, orderID snowflake.ID) (int64, error)

	// SumProcessed totals the amounts already refunded for the order.
	SumProcessed(ctx context.Context, db *gorm.DB, orderID snowflake.ID) (int64, error)

	// Transition updates the status with an optimistic version guard. A
	// stale version matches no row and surfaces as ErrConflict.
	Transition(ctx context.Context, db *gorm.DB, refund *RefundRequest, target RefundStatus, adminNotes string, now time.Time) error
}
