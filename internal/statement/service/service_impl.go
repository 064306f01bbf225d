package service

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/dukalabs/soko/internal/clock"
	"github.com/dukalabs/soko/internal/identity"
	"github.com/dukalabs/soko/internal/statement/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	Clock clock.Clock
}

type serviceImpl struct {
	db    *gorm.DB
	log   *zap.Logger
	clock clock.Clock
}

func New(p Params) domain.Service {
	return &serviceImpl{
		db:    p.DB,
		log:   p.Log.Named("statement.service"),
		clock: p.Clock,
	}
}

type totalsRow struct {
	TotalSales      int64
	TotalCommission int64
	TotalRefunds    int64
	TotalPayouts    int64
	PendingPayout   int64
}

func (s *serviceImpl) Generate(ctx context.Context, actor identity.Actor, sellerID snowflake.ID, period domain.Period) (*domain.Statement, error) {
	switch {
	case actor.IsAdmin():
	case actor.Role == identity.RoleSeller && actor.ID == sellerID:
	default:
		return nil, identity.ErrForbidden
	}

	now := s.clock.Now()
	start, end := periodWindow(period, now)

	statement := &domain.Statement{
		SellerID: sellerID,
		Period:   period,
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		current, err := s.totals(ctx, tx, sellerID, start, end)
		if err != nil {
			return err
		}
		statement.TotalSales = current.TotalSales
		statement.TotalCommission = current.TotalCommission
		statement.TotalRefunds = current.TotalRefunds
		statement.NetEarnings = current.TotalSales - current.TotalRefunds
		statement.TotalPayouts = current.TotalPayouts
		statement.PendingPayout = current.PendingPayout

		if start == nil {
			return nil
		}
		statement.PeriodStart = start
		statement.PeriodEnd = end

		prevStart, prevEnd := previousWindow(period, *start)
		previous, err := s.totals(ctx, tx, sellerID, &prevStart, &prevEnd)
		if err != nil {
			return err
		}
		statement.GrowthPct = growthPct(previous.TotalSales, current.TotalSales)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return statement, nil
}

func (s *serviceImpl) totals(ctx context.Context, db *gorm.DB, sellerID snowflake.ID, start, end *time.Time) (totalsRow, error) {
	query := `
		SELECT
			COALESCE(SUM(CASE WHEN type = 'SALE' THEN gross_amount ELSE 0 END), 0)                AS total_sales,
			COALESCE(SUM(CASE WHEN type IN ('SALE', 'REFUND') THEN commission_amount ELSE 0 END), 0) AS total_commission,
			COALESCE(SUM(CASE WHEN type = 'REFUND' THEN -gross_amount ELSE 0 END), 0)             AS total_refunds,
			COALESCE(SUM(CASE WHEN type = 'PAYOUT' AND status = 'COMPLETED'
				THEN gross_amount - commission_amount ELSE 0 END), 0)                             AS total_payouts,
			COALESCE(SUM(CASE WHEN type = 'SALE' AND status = 'PENDING'
				THEN gross_amount - commission_amount ELSE 0 END), 0)                             AS pending_payout
		FROM payout_transactions
		WHERE 1 = 1
	`
	args := []any{}
	if sellerID != 0 {
		query += " AND seller_id = ?"
		args = append(args, sellerID)
	}
	if start != nil && end != nil {
		query += " AND created_at >= ? AND created_at < ?"
		args = append(args, *start, *end)
	}

	var row totalsRow
	if err := db.WithContext(ctx).Raw(query, args...).Scan(&row).Error; err != nil {
		return totalsRow{}, err
	}
	return row, nil
}

// periodWindow returns the calendar window [start, end) containing now, or
// nil bounds for the all-time period.
func periodWindow(period domain.Period, now time.Time) (*time.Time, *time.Time) {
	now = now.UTC()
	var start, end time.Time
	switch period {
	case domain.PeriodMonth:
		start = time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
		end = start.AddDate(0, 1, 0)
	case domain.PeriodQuarter:
		quarterMonth := time.Month((int(now.Month())-1)/3*3 + 1)
		start = time.Date(now.Year(), quarterMonth, 1, 0, 0, 0, 0, time.UTC)
		end = start.AddDate(0, 3, 0)
	case domain.PeriodYear:
		start = time.Date(now.Year(), time.January, 1, 0, 0, 0, 0, time.UTC)
		end = start.AddDate(1, 0, 0)
	default:
		return nil, nil
	}
	return &start, &end
}

func previousWindow(period domain.Period, start time.Time) (time.Time, time.Time) {
	switch period {
	case domain.PeriodQuarter:
		return start.AddDate(0, -3, 0), start
	case domain.PeriodYear:
		return start.AddDate(-1, 0, 0), start
	default:
		return start.AddDate(0, -1, 0), start
	}
}

func growthPct(previous, current int64) float64 {
	if previous == 0 {
		return 0
	}
	return float64(current-previous) / float64(previous) * 100
}
