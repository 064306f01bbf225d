package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/dukalabs/soko/internal/clock"
	"github.com/dukalabs/soko/internal/identity"
	payoutdomain "github.com/dukalabs/soko/internal/payout/domain"
	"github.com/dukalabs/soko/internal/statement/domain"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type testEnv struct {
	db     *gorm.DB
	node   *snowflake.Node
	clock  *clock.FakeClock
	svc    domain.Service
	seller identity.Actor
	admin  identity.Actor
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&payoutdomain.PayoutTransaction{}))

	node, err := snowflake.NewNode(4)
	require.NoError(t, err)

	fake := clock.NewFakeClock(time.Date(2026, time.June, 15, 12, 0, 0, 0, time.UTC))
	svc := New(Params{DB: db, Log: zap.NewNop(), Clock: fake})

	return &testEnv{
		db:     db,
		node:   node,
		clock:  fake,
		svc:    svc,
		seller: identity.Actor{ID: node.Generate(), Role: identity.RoleSeller},
		admin:  identity.Actor{ID: node.Generate(), Role: identity.RoleAdmin},
	}
}

func (e *testEnv) insert(t *testing.T, txnType payoutdomain.TransactionType, status payoutdomain.TransactionStatus, gross, commission int64, at time.Time) {
	t.Helper()
	oid := e.node.Generate()
	rid := e.node.Generate()
	txn := payoutdomain.PayoutTransaction{
		ID:               e.node.Generate(),
		SellerID:         e.seller.ID,
		Type:             txnType,
		GrossAmount:      gross,
		CommissionAmount: commission,
		Currency:         "UGX",
		Status:           status,
		CreatedAt:        at,
	}
	switch txnType {
	case payoutdomain.TypeSale:
		txn.OrderID = &oid
	case payoutdomain.TypeRefund:
		txn.OrderID = &oid
		txn.RefundID = &rid
	}
	require.NoError(t, e.db.Create(&txn).Error)
}

func TestMonthlyStatementTotals(t *testing.T) {
	env := newTestEnv(t)
	june := time.Date(2026, time.June, 5, 0, 0, 0, 0, time.UTC)
	may := time.Date(2026, time.May, 20, 0, 0, 0, 0, time.UTC)

	// current month: two sales, one refund, one settled payout
	env.insert(t, payoutdomain.TypeSale, payoutdomain.StatusPending, 1_000_000, 100_000, june)
	env.insert(t, payoutdomain.TypeSale, payoutdomain.StatusPaid, 500_000, 50_000, june)
	env.insert(t, payoutdomain.TypeRefund, payoutdomain.StatusPaid, -200_000, -20_000, june)
	env.insert(t, payoutdomain.TypePayout, payoutdomain.StatusCompleted, 500_000, 50_000, june)

	// previous month sale, outside the window
	env.insert(t, payoutdomain.TypeSale, payoutdomain.StatusPaid, 750_000, 75_000, may)

	statement, err := env.svc.Generate(context.Background(), env.seller, env.seller.ID, domain.PeriodMonth)
	require.NoError(t, err)

	assert.Equal(t, int64(1_500_000), statement.TotalSales)
	assert.Equal(t, int64(130_000), statement.TotalCommission) // 100k + 50k - 20k
	assert.Equal(t, int64(200_000), statement.TotalRefunds)
	assert.Equal(t, int64(1_300_000), statement.NetEarnings)
	assert.Equal(t, int64(450_000), statement.TotalPayouts)
	assert.Equal(t, int64(900_000), statement.PendingPayout) // pending sale net

	require.NotNil(t, statement.PeriodStart)
	assert.Equal(t, time.Date(2026, time.June, 1, 0, 0, 0, 0, time.UTC), *statement.PeriodStart)
	assert.Equal(t, time.Date(2026, time.July, 1, 0, 0, 0, 0, time.UTC), *statement.PeriodEnd)

	// 750k in May, 1.5M in June: +100%
	assert.InDelta(t, 100.0, statement.GrowthPct, 0.001)
}

func TestGrowthIsZeroWithoutPriorPeriod(t *testing.T) {
	env := newTestEnv(t)
	june := time.Date(2026, time.June, 5, 0, 0, 0, 0, time.UTC)
	env.insert(t, payoutdomain.TypeSale, payoutdomain.StatusPending, 1_000_000, 100_000, june)

	statement, err := env.svc.Generate(context.Background(), env.seller, env.seller.ID, domain.PeriodMonth)
	require.NoError(t, err)
	assert.Zero(t, statement.GrowthPct)
}

func TestAllTimeStatementHasNoWindow(t *testing.T) {
	env := newTestEnv(t)
	env.insert(t, payoutdomain.TypeSale, payoutdomain.StatusPending, 100, 10,
		time.Date(2020, time.January, 1, 0, 0, 0, 0, time.UTC))
	env.insert(t, payoutdomain.TypeSale, payoutdomain.StatusPending, 200, 20,
		time.Date(2026, time.June, 1, 0, 0, 0, 0, time.UTC))

	statement, err := env.svc.Generate(context.Background(), env.seller, env.seller.ID, domain.PeriodAll)
	require.NoError(t, err)
	assert.Equal(t, int64(300), statement.TotalSales)
	assert.Nil(t, statement.PeriodStart)
	assert.Nil(t, statement.PeriodEnd)
	assert.Zero(t, statement.GrowthPct)
}

func TestQuarterWindow(t *testing.T) {
	env := newTestEnv(t)

	// Q2 sale in-window, Q1 sale for growth baseline
	env.insert(t, payoutdomain.TypeSale, payoutdomain.StatusPaid, 300, 30,
		time.Date(2026, time.April, 1, 0, 0, 0, 0, time.UTC))
	env.insert(t, payoutdomain.TypeSale, payoutdomain.StatusPaid, 600, 60,
		time.Date(2026, time.February, 10, 0, 0, 0, 0, time.UTC))

	statement, err := env.svc.Generate(context.Background(), env.seller, env.seller.ID, domain.PeriodQuarter)
	require.NoError(t, err)
	assert.Equal(t, int64(300), statement.TotalSales)
	assert.Equal(t, time.Date(2026, time.April, 1, 0, 0, 0, 0, time.UTC), *statement.PeriodStart)
	assert.Equal(t, time.Date(2026, time.July, 1, 0, 0, 0, 0, time.UTC), *statement.PeriodEnd)
	assert.InDelta(t, -50.0, statement.GrowthPct, 0.001)
}

func TestStatementOwnership(t *testing.T) {
	env := newTestEnv(t)

	other := identity.Actor{ID: env.node.Generate(), Role: identity.RoleSeller}
	_, err := env.svc.Generate(context.Background(), other, env.seller.ID, domain.PeriodAll)
	assert.ErrorIs(t, err, identity.ErrForbidden)

	_, err = env.svc.Generate(context.Background(), env.admin, env.seller.ID, domain.PeriodAll)
	assert.NoError(t, err)
}

func TestPlatformWideStatement(t *testing.T) {
	env := newTestEnv(t)
	june := time.Date(2026, time.June, 5, 0, 0, 0, 0, time.UTC)

	env.insert(t, payoutdomain.TypeSale, payoutdomain.StatusPending, 100, 10, june)
	oid := env.node.Generate()
	require.NoError(t, env.db.Create(&payoutdomain.PayoutTransaction{
		ID:               env.node.Generate(),
		SellerID:         env.node.Generate(),
		OrderID:          &oid,
		Type:             payoutdomain.TypeSale,
		GrossAmount:      200,
		CommissionAmount: 20,
		Currency:         "UGX",
		Status:           payoutdomain.StatusPending,
		CreatedAt:        june,
	}).Error)

	statement, err := env.svc.Generate(context.Background(), env.admin, 0, domain.PeriodAll)
	require.NoError(t, err)
	assert.Equal(t, int64(300), statement.TotalSales)
	assert.Equal(t, int64(270), statement.PendingPayout)

	// sellers never see the platform aggregate
	_, err = env.svc.Generate(context.Background(), env.seller, 0, domain.PeriodAll)
	assert.ErrorIs(t, err, identity.ErrForbidden)
}

func TestParsePeriod(t *testing.T) {
	period, err := domain.ParsePeriod("")
	require.NoError(t, err)
	assert.Equal(t, domain.PeriodAll, period)

	_, err = domain.ParsePeriod("week")
	assert.ErrorIs(t, err, domain.ErrInvalidPeriod)
}
