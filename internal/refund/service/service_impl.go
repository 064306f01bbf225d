package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	auditdomain "github.com/dukalabs/soko/internal/audit/domain"
	"github.com/dukalabs/soko/internal/clock"
	commissiondomain "github.com/dukalabs/soko/internal/commission/domain"
	"github.com/dukalabs/soko/internal/identity"
	"github.com/dukalabs/soko/internal/observability/metrics"
	orderdomain "github.com/dukalabs/soko/internal/order/domain"
	payoutdomain "github.com/dukalabs/soko/internal/payout/domain"
	"github.com/dukalabs/soko/internal/providers/notify"
	"github.com/dukalabs/soko/internal/refund/domain"
	"github.com/dukalabs/soko/internal/server/apperr"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB        *gorm.DB
	Log       *zap.Logger
	GenID     *snowflake.Node
	Clock     clock.Clock
	Repo      domain.Repository
	OrderRepo orderdomain.Repository
	Payout    payoutdomain.Service
	Audit     auditdomain.Service
	Notifier  notify.Notifier
	Metrics   *metrics.Metrics `optional:"true"`
}

type serviceImpl struct {
	db        *gorm.DB
	log       *zap.Logger
	genID     *snowflake.Node
	clock     clock.Clock
	repo      domain.Repository
	orderRepo orderdomain.Repository
	payout    payoutdomain.Service
	audit     auditdomain.Service
	notifier  notify.Notifier
	metrics   *metrics.Metrics
}

func New(p Params) domain.Service {
	return &serviceImpl{
		db:        p.DB,
		log:       p.Log.Named("refund.service"),
		genID:     p.GenID,
		clock:     p.Clock,
		repo:      p.Repo,
		orderRepo: p.OrderRepo,
		payout:    p.Payout,
		audit:     p.Audit,
		notifier:  p.Notifier,
		metrics:   p.Metrics,
	}
}

func (s *serviceImpl) Submit(ctx context.Context, actor identity.Actor, input domain.SubmitInput) (*domain.RefundRequest, error) {
	if actor.Role != identity.RoleCustomer && !actor.IsAdmin() {
		return nil, identity.ErrForbidden
	}
	if err := validateSubmit(input); err != nil {
		return nil, err
	}

	var refund *domain.RefundRequest
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		order, err := s.orderRepo.FindByID(ctx, tx, input.OrderID)
		if err != nil {
			return err
		}
		if actor.Role == identity.RoleCustomer && actor.ID != order.CustomerID {
			return identity.ErrForbidden
		}
		if order.Status != orderdomain.StatusDelivered {
			return domain.ErrOrderNotRefundable
		}

		active, err := s.repo.CountActive(ctx, tx, order.ID)
		if err != nil {
			return err
		}
		if active > 0 {
			return domain.ErrActiveRefundExists
		}

		refunded, err := s.repo.SumProcessed(ctx, tx, order.ID)
		if err != nil {
			return err
		}
		refundable := order.TotalAmount - refunded
		if refundable <= 0 {
			return domain.ErrAmountNotRefundable
		}

		amount := input.Amount
		if input.Type == domain.TypeFull {
			amount = refundable
		} else if amount <= 0 || amount > refundable {
			return domain.ErrAmountNotRefundable
		}

		refund = &domain.RefundRequest{
			ID:          s.genID.Generate(),
			OrderID:     order.ID,
			CustomerID:  order.CustomerID,
			SellerID:    order.SellerID,
			Amount:      amount,
			Type:        input.Type,
			Reason:      strings.TrimSpace(input.Reason),
			Description: strings.TrimSpace(input.Description),
			Status:      domain.StatusPending,
			Version:     1,
			CreatedAt:   s.clock.Now(),
			UpdatedAt:   s.clock.Now(),
		}
		return s.repo.Insert(ctx, tx, refund)
	})
	if err != nil {
		return nil, err
	}

	s.audit.Record(ctx, actor, "refund.submitted", "refund", refund.ID, map[string]any{
		"order_id": refund.OrderID.String(),
		"amount":   refund.Amount,
	})
	s.log.Info("refund submitted",
		zap.String("refund_id", refund.ID.String()),
		zap.String("order_id", refund.OrderID.String()),
		zap.Int64("amount", refund.Amount),
	)
	return refund, nil
}

func (s *serviceImpl) Decide(ctx context.Context, actor identity.Actor, id snowflake.ID, approve bool, adminNotes string) (*domain.RefundRequest, error) {
	if !actor.IsAdmin() {
		return nil, identity.ErrForbidden
	}

	target := domain.StatusRejected
	if approve {
		target = domain.StatusApproved
	}

	var refund *domain.RefundRequest
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		refund, err = s.repo.FindByID(ctx, tx, id)
		if err != nil {
			return err
		}
		if !domain.CanTransition(refund.Status, target) {
			return domain.ErrInvalidTransition
		}
		return s.repo.Transition(ctx, tx, refund, target, adminNotes, s.clock.Now())
	})
	if err != nil {
		return nil, err
	}

	s.audit.Record(ctx, actor, "refund.decided", "refund", refund.ID, map[string]any{
		"decision": string(target),
	})
	s.notifier.Notify(ctx, "refund."+strings.ToLower(string(target)), map[string]any{
		"refund_id": refund.ID.String(),
		"order_id":  refund.OrderID.String(),
	})
	return refund, nil
}

func (s *serviceImpl) Process(ctx context.Context, actor identity.Actor, id snowflake.ID) (*domain.RefundRequest, *payoutdomain.PayoutTransaction, error) {
	if !actor.IsAdmin() {
		return nil, nil, identity.ErrForbidden
	}

	var refund *domain.RefundRequest
	var reversal *payoutdomain.PayoutTransaction
	var inserted bool
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		refund, err = s.repo.FindByID(ctx, tx, id)
		if err != nil {
			return err
		}

		// Re-processing is a no-op: return the ledger row written the
		// first time.
		if refund.Status == domain.StatusProcessed {
			reversal, err = s.payout.RefundForRequest(ctx, tx, refund.ID)
			return err
		}

		if !domain.CanTransition(refund.Status, domain.StatusProcessed) {
			return domain.ErrInvalidTransition
		}

		order, err := s.orderRepo.FindByID(ctx, tx, refund.OrderID)
		if err != nil {
			return err
		}
		sale, err := s.payout.SaleForOrder(ctx, tx, order.ID)
		if err != nil {
			return err
		}

		if err := s.repo.Transition(ctx, tx, refund, domain.StatusProcessed, "", s.clock.Now()); err != nil {
			return err
		}

		reverseCommission := commissiondomain.ReverseShare(sale.CommissionAmount, refund.Amount, order.TotalAmount)
		rid := refund.ID
		oid := order.ID
		reversal, inserted, err = s.payout.RecordRefund(ctx, tx, &payoutdomain.PayoutTransaction{
			SellerID:         order.SellerID,
			OrderID:          &oid,
			RefundID:         &rid,
			GrossAmount:      -refund.Amount,
			CommissionAmount: -reverseCommission,
			Currency:         order.Currency,
		})
		return err
	})
	if err != nil {
		return nil, nil, err
	}

	if inserted {
		s.metrics.RecordRefundProcessed(ctx)
		s.audit.Record(ctx, actor, "refund.processed", "refund", refund.ID, map[string]any{
			"amount": refund.Amount,
		})
		s.notifier.Notify(ctx, "refund.processed", map[string]any{
			"refund_id": refund.ID.String(),
			"order_id":  refund.OrderID.String(),
			"amount":    refund.Amount,
		})
	}
	return refund, reversal, nil
}

func (s *serviceImpl) Get(ctx context.Context, actor identity.Actor, id snowflake.ID) (*domain.RefundRequest, error) {
	refund, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	if !canView(actor, refund) {
		return nil, identity.ErrForbidden
	}
	return refund, nil
}

func (s *serviceImpl) List(ctx context.Context, actor identity.Actor, filter domain.ListFilter) ([]domain.RefundRequest, error) {
	switch {
	case actor.IsAdmin():
	case actor.Role == identity.RoleCustomer:
		filter.CustomerID = actor.ID
	case actor.Role == identity.RoleSeller:
		filter.SellerID = actor.ID
	default:
		return nil, identity.ErrForbidden
	}
	return s.repo.List(ctx, s.db, filter)
}

func validateSubmit(input domain.SubmitInput) error {
	var verr apperr.ValidationErrors
	if input.OrderID == 0 {
		verr = append(verr, apperr.FieldError{Field: "order_id", Message: "order_id is required"})
	}
	if input.Type != domain.TypeFull && input.Type != domain.TypePartial {
		verr = append(verr, apperr.FieldError{Field: "type", Message: "type must be FULL or PARTIAL"})
	}
	if input.Type == domain.TypePartial && input.Amount <= 0 {
		verr = append(verr, apperr.FieldError{Field: "amount", Message: "amount must be positive for partial refunds"})
	}
	if strings.TrimSpace(input.Reason) == "" {
		verr = append(verr, apperr.FieldError{Field: "reason", Message: "reason is required"})
	}
	if len(verr) > 0 {
		return verr
	}
	return nil
}

func canView(actor identity.Actor, refund *domain.RefundRequest) bool {
	if actor.IsAdmin() {
		return true
	}
	switch actor.Role {
	case identity.RoleCustomer:
		return actor.ID == refund.CustomerID
	case identity.RoleSeller:
		return actor.ID == refund.SellerID
	default:
		return false
	}
}
