package service

import (
	"context"
	"fmt"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/dukalabs/soko/internal/clock"
	"github.com/dukalabs/soko/internal/config"
	"github.com/dukalabs/soko/internal/identity"
	"github.com/dukalabs/soko/internal/observability/metrics"
	"github.com/dukalabs/soko/internal/payout/domain"
	"github.com/dukalabs/soko/pkg/db/pagination"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB      *gorm.DB
	Log     *zap.Logger
	GenID   *snowflake.Node
	Cfg     config.Config
	Clock   clock.Clock
	Repo    domain.Repository
	Metrics *metrics.Metrics `optional:"true"`
}

type serviceImpl struct {
	db      *gorm.DB
	log     *zap.Logger
	genID   *snowflake.Node
	cfg     config.Config
	clock   clock.Clock
	repo    domain.Repository
	metrics *metrics.Metrics
}

func New(p Params) domain.Service {
	return &serviceImpl{
		db:      p.DB,
		log:     p.Log.Named("payout.service"),
		genID:   p.GenID,
		cfg:     p.Cfg,
		clock:   p.Clock,
		repo:    p.Repo,
		metrics: p.Metrics,
	}
}

func (s *serviceImpl) RecordSale(ctx context.Context, db *gorm.DB, txn *domain.PayoutTransaction) (bool, error) {
	if db == nil {
		db = s.db
	}
	txn.Type = domain.TypeSale
	txn.Status = domain.StatusPending
	if txn.ID == 0 {
		txn.ID = s.genID.Generate()
	}
	if txn.CreatedAt.IsZero() {
		txn.CreatedAt = s.clock.Now()
	}

	inserted, err := s.repo.Append(ctx, db, txn)
	if err != nil {
		return false, err
	}
	if !inserted {
		s.log.Info("sale accrual already recorded", zap.String("order_id", txn.OrderID.String()))
		return false, nil
	}

	s.metrics.RecordLedgerEntry(ctx, string(domain.TypeSale))
	return true, nil
}

func (s *serviceImpl) RecordRefund(ctx context.Context, db *gorm.DB, txn *domain.PayoutTransaction) (*domain.PayoutTransaction, bool, error) {
	if db == nil {
		db = s.db
	}
	txn.Type = domain.TypeRefund
	txn.Status = domain.StatusPaid
	if txn.ID == 0 {
		txn.ID = s.genID.Generate()
	}
	if txn.CreatedAt.IsZero() {
		txn.CreatedAt = s.clock.Now()
	}

	inserted, err := s.repo.Append(ctx, db, txn)
	if err != nil {
		return nil, false, err
	}
	if !inserted {
		existing, err := s.repo.FindRefundByRefund(ctx, db, *txn.RefundID)
		if err != nil {
			return nil, false, err
		}
		return existing, false, nil
	}

	s.metrics.RecordLedgerEntry(ctx, string(domain.TypeRefund))
	return txn, true, nil
}

func (s *serviceImpl) SaleForOrder(ctx context.Context, db *gorm.DB, orderID snowflake.ID) (*domain.PayoutTransaction, error) {
	if db == nil {
		db = s.db
	}
	return s.repo.FindSaleByOrder(ctx, db, orderID)
}

func (s *serviceImpl) RefundForRequest(ctx context.Context, db *gorm.DB, refundID snowflake.ID) (*domain.PayoutTransaction, error) {
	if db == nil {
		db = s.db
	}
	return s.repo.FindRefundByRefund(ctx, db, refundID)
}

func (s *serviceImpl) SettleSellerPayout(ctx context.Context, actor identity.Actor, sellerID snowflake.ID) (*domain.PayoutTransaction, error) {
	if !actor.IsAdmin() {
		return nil, identity.ErrForbidden
	}

	var payout *domain.PayoutTransaction
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		pending, err := s.repo.PendingSales(ctx, tx, sellerID)
		if err != nil {
			return err
		}
		if len(pending) == 0 {
			return domain.ErrNothingToSettle
		}

		var gross, commission int64
		ids := make([]snowflake.ID, 0, len(pending))
		currency := s.cfg.DefaultCurrency
		for _, sale := range pending {
			gross += sale.GrossAmount
			commission += sale.CommissionAmount
			ids = append(ids, sale.ID)
			currency = sale.Currency
		}

		updated, err := s.repo.MarkSalesPaid(ctx, tx, ids)
		if err != nil {
			return err
		}
		if updated != int64(len(ids)) {
			return gorm.ErrInvalidTransaction
		}

		payout = &domain.PayoutTransaction{
			ID:               s.genID.Generate(),
			SellerID:         sellerID,
			GrossAmount:      gross,
			CommissionAmount: commission,
			Currency:         currency,
			Type:             domain.TypePayout,
			Status:           domain.StatusCompleted,
			CreatedAt:        s.clock.Now(),
		}
		inserted, err := s.repo.Append(ctx, tx, payout)
		if err != nil {
			return err
		}
		if !inserted {
			return gorm.ErrInvalidTransaction
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.RecordPayoutSettled(ctx)
	s.metrics.RecordLedgerEntry(ctx, string(domain.TypePayout))
	s.log.Info("seller payout settled",
		zap.String("seller_id", sellerID.String()),
		zap.Int64("net_amount", payout.NetAmount()),
	)
	return payout, nil
}

func (s *serviceImpl) List(ctx context.Context, actor identity.Actor, filter domain.ListFilter, page pagination.Pagination) ([]domain.PayoutTransaction, *pagination.PageInfo, error) {
	switch {
	case actor.IsAdmin():
	case actor.Role == identity.RoleSeller:
		filter.SellerID = actor.ID
	default:
		return nil, nil, identity.ErrForbidden
	}

	limit := page.PageSize
	if limit <= 0 {
		limit = 20
	}
	filter.PageSize = limit
	if page.PageToken != "" {
		cursor, err := pagination.DecodeCursor(page.PageToken)
		if err != nil {
			return nil, nil, fmt.Errorf("invalid page token: %w", err)
		}
		filter.After = cursor
	}

	txns, err := s.repo.List(ctx, s.db, filter)
	if err != nil {
		return nil, nil, err
	}

	ptrs := make([]*domain.PayoutTransaction, len(txns))
	for i := range txns {
		ptrs[i] = &txns[i]
	}
	pageInfo := pagination.BuildCursorPageInfo(ptrs, limit, func(txn *domain.PayoutTransaction) string {
		token, err := pagination.EncodeCursor(pagination.Cursor{
			ID:        txn.ID.String(),
			CreatedAt: txn.CreatedAt.UTC().Format(time.RFC3339Nano),
		})
		if err != nil {
			return ""
		}
		return token
	})

	if len(txns) > limit {
		txns = txns[:limit]
	}
	return txns, pageInfo, nil
}
