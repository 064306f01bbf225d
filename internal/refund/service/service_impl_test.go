package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	auditservice "github.com/dukalabs/soko/internal/audit/service"
	catalogdomain "github.com/dukalabs/soko/internal/catalog/domain"
	catalogrepo "github.com/dukalabs/soko/internal/catalog/repository"
	"github.com/dukalabs/soko/internal/clock"
	commissiondomain "github.com/dukalabs/soko/internal/commission/domain"
	commissionrepo "github.com/dukalabs/soko/internal/commission/repository"
	commissionservice "github.com/dukalabs/soko/internal/commission/service"
	"github.com/dukalabs/soko/internal/config"
	"github.com/dukalabs/soko/internal/identity"
	orderdomain "github.com/dukalabs/soko/internal/order/domain"
	orderrepo "github.com/dukalabs/soko/internal/order/repository"
	orderservice "github.com/dukalabs/soko/internal/order/service"
	payoutdomain "github.com/dukalabs/soko/internal/payout/domain"
	payoutrepo "github.com/dukalabs/soko/internal/payout/repository"
	payoutservice "github.com/dukalabs/soko/internal/payout/service"
	"github.com/dukalabs/soko/internal/providers/notify"
	"github.com/dukalabs/soko/internal/refund/domain"
	refundrepo "github.com/dukalabs/soko/internal/refund/repository"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type testEnv struct {
	db       *gorm.DB
	node     *snowflake.Node
	clock    *clock.FakeClock
	orders   orderdomain.Service
	refunds  domain.Service
	payouts  payoutdomain.Service
	customer identity.Actor
	seller   identity.Actor
	admin    identity.Actor
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&catalogdomain.Product{},
		&orderdomain.Order{},
		&orderdomain.OrderItem{},
		&domain.RefundRequest{},
		&payoutdomain.PayoutTransaction{},
		&commissiondomain.CommissionPolicy{},
	))
	require.NoError(t, db.Exec(`CREATE UNIQUE INDEX IF NOT EXISTS ux_payout_sale_order
		ON payout_transactions (order_id) WHERE type = 'SALE'`).Error)
	require.NoError(t, db.Exec(`CREATE UNIQUE INDEX IF NOT EXISTS ux_payout_refund_refund
		ON payout_transactions (refund_id) WHERE type = 'REFUND'`).Error)

	node, err := snowflake.NewNode(2)
	require.NoError(t, err)

	fake := clock.NewFakeClock(time.Date(2026, time.April, 2, 9, 0, 0, 0, time.UTC))
	log := zap.NewNop()
	cfg := config.Config{DefaultCurrency: "UGX", DefaultCommissionBps: 1000}

	require.NoError(t, db.Create(&commissiondomain.CommissionPolicy{
		ID:              node.Generate(),
		RateBasisPoints: 1000,
		EffectiveFrom:   time.Unix(0, 0).UTC(),
	}).Error)

	catalogRepo := catalogrepo.Provide()
	orderRepo := orderrepo.Provide()
	payoutRepo := payoutrepo.Provide()
	refundRepo := refundrepo.Provide()

	commissionSvc := commissionservice.New(commissionservice.Params{
		DB: db, Log: log, GenID: node, Repo: commissionrepo.Provide(),
	})
	payoutSvc := payoutservice.New(payoutservice.Params{
		DB: db, Log: log, GenID: node, Cfg: cfg, Clock: fake, Repo: payoutRepo,
	})
	auditSvc := auditservice.New(auditservice.Params{
		DB: db, Log: log, GenID: node, Clock: fake,
	})
	orders := orderservice.New(orderservice.Params{
		DB:          db,
		Log:         log,
		GenID:       node,
		Cfg:         cfg,
		Clock:       fake,
		Repo:        orderRepo,
		CatalogRepo: catalogRepo,
		Commission:  commissionSvc,
		Payout:      payoutSvc,
		Audit:       auditSvc,
		Notifier:    notify.NoOp{},
	})
	refunds := New(Params{
		DB:        db,
		Log:       log,
		GenID:     node,
		Clock:     fake,
		Repo:      refundRepo,
		OrderRepo: orderRepo,
		Payout:    payoutSvc,
		Audit:     auditSvc,
		Notifier:  notify.NoOp{},
	})

	return &testEnv{
		db:       db,
		node:     node,
		clock:    fake,
		orders:   orders,
		refunds:  refunds,
		payouts:  payoutSvc,
		customer: identity.Actor{ID: node.Generate(), Role: identity.RoleCustomer},
		seller:   identity.Actor{ID: node.Generate(), Role: identity.RoleSeller},
		admin:    identity.Actor{ID: node.Generate(), Role: identity.RoleAdmin},
	}
}

// deliveredOrder places an order for the given total and walks it to
// DELIVERED so a SALE accrual exists.
func (e *testEnv) deliveredOrder(t *testing.T, total int64) *orderdomain.Order {
	t.Helper()
	product := &catalogdomain.Product{
		ID:            e.node.Generate(),
		SellerID:      e.seller.ID,
		Name:          "Basket",
		UnitAmount:    total,
		Currency:      "UGX",
		StockQuantity: 10,
		Active:        true,
	}
	require.NoError(t, e.db.Create(product).Error)

	order, err := e.orders.PlaceOrder(context.Background(), e.customer, orderdomain.PlaceOrderInput{
		Items: []orderdomain.PlaceOrderItem{{ProductID: product.ID, Quantity: 1}},
	})
	require.NoError(t, err)

	for _, step := range []orderdomain.OrderStatus{
		orderdomain.StatusProcessing,
		orderdomain.StatusReadyToShip,
		orderdomain.StatusShipped,
		orderdomain.StatusDelivered,
	} {
		order, err = e.orders.Advance(context.Background(), e.seller, order.ID, step)
		require.NoError(t, err)
	}
	return order
}

func TestSubmitRequiresDeliveredOrder(t *testing.T) {
	env := newTestEnv(t)
	product := &catalogdomain.Product{
		ID: env.node.Generate(), SellerID: env.seller.ID, Name: "Basket",
		UnitAmount: 100_000, Currency: "UGX", StockQuantity: 5, Active: true,
	}
	require.NoError(t, env.db.Create(product).Error)
	order, err := env.orders.PlaceOrder(context.Background(), env.customer, orderdomain.PlaceOrderInput{
		Items: []orderdomain.PlaceOrderItem{{ProductID: product.ID, Quantity: 1}},
	})
	require.NoError(t, err)

	_, err = env.refunds.Submit(context.Background(), env.customer, domain.SubmitInput{
		OrderID: order.ID,
		Type:    domain.TypeFull,
		Reason:  "damaged",
	})
	assert.ErrorIs(t, err, domain.ErrOrderNotRefundable)
}

func TestSubmitFullSetsAmountToOrderTotal(t *testing.T) {
	env := newTestEnv(t)
	order := env.deliveredOrder(t, 2_000_000)

	refund, err := env.refunds.Submit(context.Background(), env.customer, domain.SubmitInput{
		OrderID: order.ID,
		Type:    domain.TypeFull,
		Reason:  "damaged",
	})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPending, refund.Status)
	assert.Equal(t, int64(2_000_000), refund.Amount)
	assert.Equal(t, env.seller.ID, refund.SellerID)
}

func TestSubmitPartialBounds(t *testing.T) {
	env := newTestEnv(t)
	order := env.deliveredOrder(t, 100)

	_, err := env.refunds.Submit(context.Background(), env.customer, domain.SubmitInput{
		OrderID: order.ID,
		Type:    domain.TypePartial,
		Amount:  101,
		Reason:  "late",
	})
	assert.ErrorIs(t, err, domain.ErrAmountNotRefundable)

	_, err = env.refunds.Submit(context.Background(), env.customer, domain.SubmitInput{
		OrderID: order.ID,
		Type:    domain.TypePartial,
		Reason:  "late",
	})
	assert.Error(t, err) // amount required for partial
}

func TestSubmitRejectsSecondActiveRefund(t *testing.T) {
	env := newTestEnv(t)
	order := env.deliveredOrder(t, 500_000)

	_, err := env.refunds.Submit(context.Background(), env.customer, domain.SubmitInput{
		OrderID: order.ID, Type: domain.TypePartial, Amount: 100_000, Reason: "late",
	})
	require.NoError(t, err)

	_, err = env.refunds.Submit(context.Background(), env.customer, domain.SubmitInput{
		OrderID: order.ID, Type: domain.TypePartial, Amount: 100_000, Reason: "late",
	})
	assert.ErrorIs(t, err, domain.ErrActiveRefundExists)
}

func TestSubmitOwnershipAndReason(t *testing.T) {
	env := newTestEnv(t)
	order := env.deliveredOrder(t, 500_000)

	stranger := identity.Actor{ID: env.node.Generate(), Role: identity.RoleCustomer}
	_, err := env.refunds.Submit(context.Background(), stranger, domain.SubmitInput{
		OrderID: order.ID, Type: domain.TypeFull, Reason: "damaged",
	})
	assert.ErrorIs(t, err, identity.ErrForbidden)

	_, err = env.refunds.Submit(context.Background(), env.customer, domain.SubmitInput{
		OrderID: order.ID, Type: domain.TypeFull,
	})
	assert.Error(t, err) // reason required
}

func TestDecideTransitions(t *testing.T) {
	env := newTestEnv(t)
	order := env.deliveredOrder(t, 500_000)
	refund, err := env.refunds.Submit(context.Background(), env.customer, domain.SubmitInput{
		OrderID: order.ID, Type: domain.TypeFull, Reason: "damaged",
	})
	require.NoError(t, err)

	_, err = env.refunds.Decide(context.Background(), env.customer, refund.ID, true, "")
	assert.ErrorIs(t, err, identity.ErrForbidden)

	approved, err := env.refunds.Decide(context.Background(), env.admin, refund.ID, true, "ok to refund")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusApproved, approved.Status)
	assert.Equal(t, "ok to refund", approved.AdminNotes)

	// deciding twice is an invalid transition
	_, err = env.refunds.Decide(context.Background(), env.admin, refund.ID, false, "")
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
}

func TestRejectedIsTerminal(t *testing.T) {
	env := newTestEnv(t)
	order := env.deliveredOrder(t, 500_000)
	refund, err := env.refunds.Submit(context.Background(), env.customer, domain.SubmitInput{
		OrderID: order.ID, Type: domain.TypeFull, Reason: "damaged",
	})
	require.NoError(t, err)

	rejected, err := env.refunds.Decide(context.Background(), env.admin, refund.ID, false, "no evidence")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusRejected, rejected.Status)

	_, _, err = env.refunds.Process(context.Background(), env.admin, refund.ID)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
}

func TestProcessRequiresApproval(t *testing.T) {
	env := newTestEnv(t)
	order := env.deliveredOrder(t, 500_000)
	refund, err := env.refunds.Submit(context.Background(), env.customer, domain.SubmitInput{
		OrderID: order.ID, Type: domain.TypeFull, Reason: "damaged",
	})
	require.NoError(t, err)

	_, _, err = env.refunds.Process(context.Background(), env.admin, refund.ID)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
}

func TestProcessPartialWritesProportionalReversal(t *testing.T) {
	env := newTestEnv(t)
	order := env.deliveredOrder(t, 100)

	refund, err := env.refunds.Submit(context.Background(), env.customer, domain.SubmitInput{
		OrderID: order.ID, Type: domain.TypePartial, Amount: 40, Reason: "late",
	})
	require.NoError(t, err)
	_, err = env.refunds.Decide(context.Background(), env.admin, refund.ID, true, "")
	require.NoError(t, err)

	processed, reversal, err := env.refunds.Process(context.Background(), env.admin, refund.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusProcessed, processed.Status)
	assert.NotNil(t, processed.ProcessedAt)

	// sale was 100 gross with 10 commission; refunding 40 reverses 4
	assert.Equal(t, payoutdomain.TypeRefund, reversal.Type)
	assert.Equal(t, payoutdomain.StatusPaid, reversal.Status)
	assert.Equal(t, int64(-40), reversal.GrossAmount)
	assert.Equal(t, int64(-4), reversal.CommissionAmount)
	assert.Equal(t, int64(-36), reversal.NetAmount())
}

func TestProcessIsIdempotent(t *testing.T) {
	env := newTestEnv(t)
	order := env.deliveredOrder(t, 1_000_000)

	refund, err := env.refunds.Submit(context.Background(), env.customer, domain.SubmitInput{
		OrderID: order.ID, Type: domain.TypeFull, Reason: "damaged",
	})
	require.NoError(t, err)
	_, err = env.refunds.Decide(context.Background(), env.admin, refund.ID, true, "")
	require.NoError(t, err)

	_, first, err := env.refunds.Process(context.Background(), env.admin, refund.ID)
	require.NoError(t, err)

	_, second, err := env.refunds.Process(context.Background(), env.admin, refund.ID)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)

	var count int64
	require.NoError(t, env.db.Model(&payoutdomain.PayoutTransaction{}).
		Where("refund_id = ? AND type = ?", refund.ID, payoutdomain.TypeRefund).
		Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestSubmitAfterFullRefundProcessed(t *testing.T) {
	env := newTestEnv(t)
	order := env.deliveredOrder(t, 1_000_000)

	refund, err := env.refunds.Submit(context.Background(), env.customer, domain.SubmitInput{
		OrderID: order.ID, Type: domain.TypeFull, Reason: "damaged",
	})
	require.NoError(t, err)
	_, err = env.refunds.Decide(context.Background(), env.admin, refund.ID, true, "")
	require.NoError(t, err)
	_, _, err = env.refunds.Process(context.Background(), env.admin, refund.ID)
	require.NoError(t, err)

	// nothing left to refund
	_, err = env.refunds.Submit(context.Background(), env.customer, domain.SubmitInput{
		OrderID: order.ID, Type: domain.TypePartial, Amount: 1, Reason: "late",
	})
	assert.ErrorIs(t, err, domain.ErrAmountNotRefundable)
}
