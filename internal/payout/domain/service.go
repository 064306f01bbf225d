package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/dukalabs/soko/internal/identity"
	"github.com/dukalabs/soko/pkg/db/pagination"
	"gorm.io/gorm"
)

type Service interface {
	// RecordSale appends the SALE accrual for a delivered order. It runs on
	// the supplied db handle so it joins the delivery transaction. The
	// returned bool reports whether the row was newly inserted.
	RecordSale(ctx context.Context, db *gorm.DB, txn *PayoutTransaction) (bool, error)

	// RecordRefund appends the REFUND reversal for a processed refund,
	// idempotently. When the row already exists the existing row is
	// returned and the bool is false.
	RecordRefund(ctx context.Context, db *gorm.DB, txn *PayoutTransaction) (*PayoutTransaction, bool, error)

	SaleForOrder(ctx context.Context, db *gorm.DB, orderID snowflake.ID) (*PayoutTransaction, error)
	RefundForRequest(ctx context.Context, db *gorm.DB, refundID snowflake.ID) (*PayoutTransaction, error)

	// SettleSellerPayout flips the seller's PENDING SALE rows to PAID and
	// appends one COMPLETED PAYOUT row for the summed net, atomically.
	SettleSellerPayout(ctx context.Context, actor identity.Actor, sellerID snowflake.ID) (*PayoutTransaction, error)

	// List pages through ledger rows newest first. The returned PageInfo
	// carries the cursor for the next page.
	List(ctx context.Context, actor identity.Actor, filter ListFilter, page pagination.Pagination) ([]PayoutTransaction, *pagination.PageInfo, error)
}
