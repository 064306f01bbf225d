package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/dukalabs/soko/pkg/db/pagination"
	"gorm.io/gorm"
)

// ListFilter narrows ledger queries. PageSize and After drive keyset
// pagination ordered by created_at, id descending.
type ListFilter struct {
	SellerID snowflake.ID
	Type     TransactionType
	Status   TransactionStatus
	From     *time.Time
	To       *time.Time

	PageSize int
	After    *pagination.Cursor
}

type Repository interface {
	// Append inserts a ledger row with ON CONFLICT DO NOTHING semantics so
	// duplicate accruals inside retried transactions collapse to one row.
	// The returned bool reports whether a row was actually inserted.
	Append(ctx context.Context, db *gorm.DB, txn *PayoutTransaction) (bool, error)

	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*PayoutTransaction, error)
	FindSaleByOrder(ctx context.Context, db *gorm.DB, orderID snowflake.ID) (*PayoutTransaction, error)
	FindRefundByRefund(ctx context.Context, db *gorm.DB, refundID snowflake.ID) (*PayoutTransaction, error)
	List(ctx context.Context, db *gorm.DB, filter ListFilter) ([]PayoutTransaction, error)

	PendingSales(ctx context.Context, db *gorm.DB, sellerID snowflake.ID) ([]PayoutTransaction, error)
	MarkSalesPaid(ctx context.Context, db *gorm.DB, ids []snowflake.ID) (int64, error)
}
