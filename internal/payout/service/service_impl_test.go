package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/dukalabs/soko/internal/clock"
	"github.com/dukalabs/soko/internal/config"
	"github.com/dukalabs/soko/internal/identity"
	"github.com/dukalabs/soko/internal/payout/domain"
	"github.com/dukalabs/soko/internal/payout/repository"
	"github.com/dukalabs/soko/pkg/db/pagination"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type testEnv struct {
	db     *gorm.DB
	node   *snowflake.Node
	svc    domain.Service
	seller identity.Actor
	admin  identity.Actor
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&domain.PayoutTransaction{}))
	require.NoError(t, db.Exec(`CREATE UNIQUE INDEX IF NOT EXISTS ux_payout_sale_order
		ON payout_transactions (order_id) WHERE type = 'SALE'`).Error)
	require.NoError(t, db.Exec(`CREATE UNIQUE INDEX IF NOT EXISTS ux_payout_refund_refund
		ON payout_transactions (refund_id) WHERE type = 'REFUND'`).Error)

	node, err := snowflake.NewNode(3)
	require.NoError(t, err)

	svc := New(Params{
		DB:    db,
		Log:   zap.NewNop(),
		GenID: node,
		Cfg:   config.Config{DefaultCurrency: "UGX"},
		Clock: clock.NewFakeClock(time.Date(2026, time.May, 1, 0, 0, 0, 0, time.UTC)),
		Repo:  repository.Provide(),
	})

	return &testEnv{
		db:     db,
		node:   node,
		svc:    svc,
		seller: identity.Actor{ID: node.Generate(), Role: identity.RoleSeller},
		admin:  identity.Actor{ID: node.Generate(), Role: identity.RoleAdmin},
	}
}

func (e *testEnv) recordSale(t *testing.T, gross, commission int64) *domain.PayoutTransaction {
	t.Helper()
	oid := e.node.Generate()
	txn := &domain.PayoutTransaction{
		SellerID:         e.seller.ID,
		OrderID:          &oid,
		GrossAmount:      gross,
		CommissionAmount: commission,
		Currency:         "UGX",
	}
	inserted, err := e.svc.RecordSale(context.Background(), nil, txn)
	require.NoError(t, err)
	require.True(t, inserted)
	return txn
}

func TestSettleSellerPayout(t *testing.T) {
	env := newTestEnv(t)
	env.recordSale(t, 1_000_000, 100_000)
	env.recordSale(t, 500_000, 50_000)

	payout, err := env.svc.SettleSellerPayout(context.Background(), env.admin, env.seller.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.TypePayout, payout.Type)
	assert.Equal(t, domain.StatusCompleted, payout.Status)
	assert.Equal(t, int64(1_500_000), payout.GrossAmount)
	assert.Equal(t, int64(150_000), payout.CommissionAmount)
	assert.Equal(t, int64(1_350_000), payout.NetAmount())

	var pending int64
	require.NoError(t, env.db.Model(&domain.PayoutTransaction{}).
		Where("seller_id = ? AND type = ? AND status = ?", env.seller.ID, domain.TypeSale, domain.StatusPending).
		Count(&pending).Error)
	assert.Zero(t, pending)

	// every sale flipped to PAID
	var paid int64
	require.NoError(t, env.db.Model(&domain.PayoutTransaction{}).
		Where("seller_id = ? AND type = ? AND status = ?", env.seller.ID, domain.TypeSale, domain.StatusPaid).
		Count(&paid).Error)
	assert.Equal(t, int64(2), paid)
}

func TestSettleWithNothingPending(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.svc.SettleSellerPayout(context.Background(), env.admin, env.seller.ID)
	assert.ErrorIs(t, err, domain.ErrNothingToSettle)

	env.recordSale(t, 100, 10)
	_, err = env.svc.SettleSellerPayout(context.Background(), env.admin, env.seller.ID)
	require.NoError(t, err)

	// settled sales do not settle twice
	_, err = env.svc.SettleSellerPayout(context.Background(), env.admin, env.seller.ID)
	assert.ErrorIs(t, err, domain.ErrNothingToSettle)
}

func TestSettleRequiresAdmin(t *testing.T) {
	env := newTestEnv(t)
	env.recordSale(t, 100, 10)

	_, err := env.svc.SettleSellerPayout(context.Background(), env.seller, env.seller.ID)
	assert.ErrorIs(t, err, identity.ErrForbidden)
}

func TestListScopesSellerToOwnRows(t *testing.T) {
	env := newTestEnv(t)
	env.recordSale(t, 100, 10)

	otherSeller := identity.Actor{ID: env.node.Generate(), Role: identity.RoleSeller}
	oid := env.node.Generate()
	_, err := env.svc.RecordSale(context.Background(), nil, &domain.PayoutTransaction{
		SellerID:         otherSeller.ID,
		OrderID:          &oid,
		GrossAmount:      200,
		CommissionAmount: 20,
		Currency:         "UGX",
	})
	require.NoError(t, err)

	mine, _, err := env.svc.List(context.Background(), env.seller, domain.ListFilter{}, pagination.Pagination{})
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, env.seller.ID, mine[0].SellerID)

	all, _, err := env.svc.List(context.Background(), env.admin, domain.ListFilter{}, pagination.Pagination{})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	customer := identity.Actor{ID: env.node.Generate(), Role: identity.RoleCustomer}
	_, _, err = env.svc.List(context.Background(), customer, domain.ListFilter{}, pagination.Pagination{})
	assert.ErrorIs(t, err, identity.ErrForbidden)
}

func TestListPaginates(t *testing.T) {
	env := newTestEnv(t)
	for i := 0; i < 5; i++ {
		env.recordSale(t, int64(100*(i+1)), int64(10*(i+1)))
	}

	first, pageInfo, err := env.svc.List(context.Background(), env.admin, domain.ListFilter{}, pagination.Pagination{PageSize: 2})
	require.NoError(t, err)
	assert.Len(t, first, 2)
	require.True(t, pageInfo.HasMore)
	require.NotEmpty(t, pageInfo.NextPageToken)

	second, pageInfo, err := env.svc.List(context.Background(), env.admin, domain.ListFilter{}, pagination.Pagination{
		PageSize:  2,
		PageToken: pageInfo.NextPageToken,
	})
	require.NoError(t, err)
	assert.Len(t, second, 2)
	assert.True(t, pageInfo.HasMore)

	// no overlap between pages
	seen := map[int64]bool{}
	for _, txn := range append(first, second...) {
		assert.False(t, seen[int64(txn.ID)])
		seen[int64(txn.ID)] = true
	}

	third, pageInfo, err := env.svc.List(context.Background(), env.admin, domain.ListFilter{}, pagination.Pagination{
		PageSize:  2,
		PageToken: pageInfo.NextPageToken,
	})
	require.NoError(t, err)
	assert.Len(t, third, 1)
	assert.False(t, pageInfo.HasMore)
}

func TestRecordRefundReturnsExistingOnConflict(t *testing.T) {
	env := newTestEnv(t)
	sale := env.recordSale(t, 1_000, 100)

	rid := env.node.Generate()
	first, inserted, err := env.svc.RecordRefund(context.Background(), nil, &domain.PayoutTransaction{
		SellerID:         env.seller.ID,
		OrderID:          sale.OrderID,
		RefundID:         &rid,
		GrossAmount:      -400,
		CommissionAmount: -40,
		Currency:         "UGX",
	})
	require.NoError(t, err)
	assert.True(t, inserted)
	assert.Equal(t, domain.StatusPaid, first.Status)

	second, inserted, err := env.svc.RecordRefund(context.Background(), nil, &domain.PayoutTransaction{
		SellerID:         env.seller.ID,
		OrderID:          sale.OrderID,
		RefundID:         &rid,
		GrossAmount:      -400,
		CommissionAmount: -40,
		Currency:         "UGX",
	})
	require.NoError(t, err)
	assert.False(t, inserted)
	assert.Equal(t, first.ID, second.ID)
}
