package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/dukalabs/soko/internal/identity"
)

type Period string

const (
	PeriodAll     Period = "all"
	PeriodMonth   Period = "month"
	PeriodQuarter Period = "quarter"
	PeriodYear    Period = "year"
)

var ErrInvalidPeriod = errors.New("invalid_period")

func ParsePeriod(raw string) (Period, error) {
	switch Period(raw) {
	case "", PeriodAll:
		return PeriodAll, nil
	case PeriodMonth:
		return PeriodMonth, nil
	case PeriodQuarter:
		return PeriodQuarter, nil
	case PeriodYear:
		return PeriodYear, nil
	default:
		return "", ErrInvalidPeriod
	}
}

// Statement is a derived view over the payout ledger; it is never stored.
// All amounts are minor currency units.
type Statement struct {
	SellerID        snowflake.ID `json:"seller_id"`
	Period          Period       `json:"period"`
	PeriodStart     *time.Time   `json:"period_start,omitempty"`
	PeriodEnd       *time.Time   `json:"period_end,omitempty"`
	TotalSales      int64        `json:"total_sales"`
	TotalCommission int64        `json:"total_commission"`
	TotalRefunds    int64        `json:"total_refunds"`
	NetEarnings     int64        `json:"net_earnings"`
	TotalPayouts    int64        `json:"total_payouts"`
	PendingPayout   int64        `json:"pending_payout"`
	GrowthPct       float64      `json:"growth_pct"`
}

type Service interface {
	// Generate aggregates the seller's ledger over the requested calendar
	// period in a single read transaction. A zero sellerID aggregates the
	// whole platform and is restricted to admins.
	Generate(ctx context.Context, actor identity.Actor, sellerID snowflake.ID, period Period) (*Statement, error)
}
