package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

type TransactionType string

const (
	TypeSale   TransactionType = "SALE"
	TypeRefund TransactionType = "REFUND"
	TypePayout TransactionType = "PAYOUT"
)

type TransactionStatus string

const (
	StatusPending   TransactionStatus = "PENDING"
	StatusPaid      TransactionStatus = "PAID"
	StatusCompleted TransactionStatus = "COMPLETED"
)

// PayoutTransaction is an append-only ledger row. Rows are never updated
// except for the PENDING to PAID settlement flip on SALE rows. Amounts are
// minor currency units; REFUND rows carry negative amounts.
type PayoutTransaction struct {
	ID               snowflake.ID      `gorm:"primaryKey" json:"id"`
	SellerID         snowflake.ID      `gorm:"index;not null" json:"seller_id"`
	OrderID          *snowflake.ID     `gorm:"index" json:"order_id,omitempty"`
	RefundID         *snowflake.ID     `gorm:"index" json:"refund_id,omitempty"`
	Type             TransactionType   `gorm:"size:16;not null" json:"type"`
	GrossAmount      int64             `gorm:"not null" json:"gross_amount"`
	CommissionAmount int64             `gorm:"not null" json:"commission_amount"`
	Currency         string            `gorm:"size:3;not null" json:"currency"`
	Status           TransactionStatus `gorm:"size:16;index;not null" json:"status"`
	CreatedAt        time.Time         `gorm:"autoCreateTime" json:"created_at"`
}

func (PayoutTransaction) TableName() string {
	return "payout_transactions"
}

// NetAmount is always derived, never stored.
func (t PayoutTransaction) NetAmount() int64 {
	return t.GrossAmount - t.CommissionAmount
}
