package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/dukalabs/soko/internal/identity"
	payoutdomain "github.com/dukalabs/soko/internal/payout/domain"
)

type SubmitInput struct {
	OrderID     snowflake.ID `json:"order_id"`
	Amount      int64        `json:"amount"`
	Type        RefundType   `json:"type"`
	Reason      string       `json:"reason"`
	Description string       `json:"description,omitempty"`
}

type Service interface {
	// Submit opens a refund request against a delivered order.
	Submit(ctx context.Context, actor identity.Actor, input SubmitInput) (*RefundRequest, error)

	// Decide approves or rejects a pending request.
	Decide(ctx context.Context, actor identity.Actor, id snowflake.ID, approve bool, adminNotes string) (*RefundRequest, error)

	// Process executes an approved refund: it flips the request to
	// PROCESSED and appends the reversing ledger row, atomically and
	// idempotently. Processing an already processed request returns the
	// existing ledger row without side effects.
	Process(ctx context.Context, actor identity.Actor, id snowflake.ID) (*RefundRequest, *payoutdomain.PayoutTransaction, error)

	Get(ctx context.Context, actor identity.Actor, id snowflake.ID) (*RefundRequest, error)
	List(ctx context.Context, actor identity.Actor, filter ListFilter) ([]RefundRequest, error)
}
