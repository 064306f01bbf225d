package service

import (
	"context"
	"fmt"

	"github.com/bwmarrin/snowflake"
	auditdomain "github.com/dukalabs/soko/internal/audit/domain"
	catalogdomain "github.com/dukalabs/soko/internal/catalog/domain"
	"github.com/dukalabs/soko/internal/clock"
	commissiondomain "github.com/dukalabs/soko/internal/commission/domain"
	"github.com/dukalabs/soko/internal/config"
	"github.com/dukalabs/soko/internal/identity"
	"github.com/dukalabs/soko/internal/observability/metrics"
	"github.com/dukalabs/soko/internal/order/domain"
	payoutdomain "github.com/dukalabs/soko/internal/payout/domain"
	"github.com/dukalabs/soko/internal/providers/notify"
	"github.com/dukalabs/soko/internal/server/apperr"
	"github.com/oklog/ulid/v2"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB          *gorm.DB
	Log         *zap.Logger
	GenID       *snowflake.Node
	Cfg         config.Config
	Clock       clock.Clock
	Repo        domain.Repository
	CatalogRepo catalogdomain.Repository
	Commission  commissiondomain.Service
	Payout      payoutdomain.Service
	Audit       auditdomain.Service
	Notifier    notify.Notifier
	Metrics     *metrics.Metrics `optional:"true"`
}

type serviceImpl struct {
	db          *gorm.DB
	log         *zap.Logger
	genID       *snowflake.Node
	cfg         config.Config
	clock       clock.Clock
	repo        domain.Repository
	catalogRepo catalogdomain.Repository
	commission  commissiondomain.Service
	payout      payoutdomain.Service
	audit       auditdomain.Service
	notifier    notify.Notifier
	metrics     *metrics.Metrics
}

func New(p Params) domain.Service {
	return &serviceImpl{
		db:          p.DB,
		log:         p.Log.Named("order.service"),
		genID:       p.GenID,
		cfg:         p.Cfg,
		clock:       p.Clock,
		repo:        p.Repo,
		catalogRepo: p.CatalogRepo,
		commission:  p.Commission,
		payout:      p.Payout,
		audit:       p.Audit,
		notifier:    p.Notifier,
		metrics:     p.Metrics,
	}
}

func (s *serviceImpl) PlaceOrder(ctx context.Context, actor identity.Actor, input domain.PlaceOrderInput) (*domain.Order, error) {
	if actor.Role != identity.RoleCustomer && !actor.IsAdmin() {
		return nil, identity.ErrForbidden
	}
	if err := validateItems(input.Items); err != nil {
		return nil, err
	}

	var order *domain.Order
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		ids := make([]snowflake.ID, 0, len(input.Items))
		for _, item := range input.Items {
			ids = append(ids, item.ProductID)
		}
		products, err := s.catalogRepo.FindByIDs(ctx, tx, ids)
		if err != nil {
			return err
		}

		byID := make(map[snowflake.ID]catalogdomain.Product, len(products))
		for _, product := range products {
			byID[product.ID] = product
		}

		orderID := s.genID.Generate()
		now := s.clock.Now()
		var total int64
		var sellerID snowflake.ID
		currency := s.cfg.DefaultCurrency
		items := make([]domain.OrderItem, 0, len(input.Items))

		for _, line := range input.Items {
			product, ok := byID[line.ProductID]
			if !ok {
				return catalogdomain.ErrProductNotFound
			}
			if !product.Active {
				return catalogdomain.ErrProductInactive
			}
			if sellerID == 0 {
				sellerID = product.SellerID
				currency = product.Currency
			} else if product.SellerID != sellerID {
				return apperr.ValidationErrors{{
					Field:   "items",
					Message: "all items must belong to the same seller",
				}}
			}

			if err := s.catalogRepo.ReserveStock(ctx, tx, product.ID, line.Quantity); err != nil {
				return err
			}

			total += product.UnitAmount * line.Quantity
			items = append(items, domain.OrderItem{
				ID:          s.genID.Generate(),
				OrderID:     orderID,
				ProductID:   product.ID,
				ProductName: product.Name,
				UnitAmount:  product.UnitAmount,
				Quantity:    line.Quantity,
				CreatedAt:   now,
			})
		}

		order = &domain.Order{
			ID:          orderID,
			OrderNumber: fmt.Sprintf("ORD-%s", ulid.Make()),
			CustomerID:  actor.ID,
			SellerID:    sellerID,
			Status:      domain.StatusPending,
			TotalAmount: total,
			Currency:    currency,
			Version:     1,
			Metadata:    input.Metadata,
			Items:       items,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		return s.repo.Insert(ctx, tx, order)
	})
	if err != nil {
		return nil, err
	}

	s.metrics.RecordOrderPlaced(ctx)
	s.audit.Record(ctx, actor, "order.placed", "order", order.ID, map[string]any{
		"order_number": order.OrderNumber,
		"total_amount": order.TotalAmount,
	})
	s.log.Info("order placed",
		zap.String("order_id", order.ID.String()),
		zap.String("order_number", order.OrderNumber),
		zap.Int64("total_amount", order.TotalAmount),
	)
	return order, nil
}

func (s *serviceImpl) Advance(ctx context.Context, actor identity.Actor, orderID snowflake.ID, target domain.OrderStatus) (*domain.Order, error) {
	if !domain.ValidStatus(target) || target == domain.StatusPending {
		return nil, domain.ErrInvalidTransition
	}

	var order *domain.Order
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		order, err = s.repo.FindByID(ctx, tx, orderID)
		if err != nil {
			return err
		}
		if err := allowTransition(actor, order, target); err != nil {
			return err
		}
		if !domain.CanTransition(order.Status, target) {
			return domain.ErrInvalidTransition
		}

		now := s.clock.Now()
		if err := s.repo.Transition(ctx, tx, order, target, now); err != nil {
			return err
		}

		switch target {
		case domain.StatusCancelled:
			for _, item := range order.Items {
				if err := s.catalogRepo.RestoreStock(ctx, tx, item.ProductID, item.Quantity); err != nil {
					return err
				}
			}
		case domain.StatusDelivered:
			rate, err := s.commission.RateAt(ctx, tx, now)
			if err != nil {
				return err
			}
			commission, _ := commissiondomain.Split(order.TotalAmount, rate)
			oid := order.ID
			_, err = s.payout.RecordSale(ctx, tx, &payoutdomain.PayoutTransaction{
				SellerID:         order.SellerID,
				OrderID:          &oid,
				GrossAmount:      order.TotalAmount,
				CommissionAmount: commission,
				Currency:         order.Currency,
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.RecordOrderTransition(ctx, string(target))
	s.audit.Record(ctx, actor, "order.advanced", "order", order.ID, map[string]any{
		"target": string(target),
	})
	s.notifier.Notify(ctx, "order."+string(target), map[string]any{
		"order_id":     order.ID.String(),
		"order_number": order.OrderNumber,
		"seller_id":    order.SellerID.String(),
	})
	return order, nil
}

func (s *serviceImpl) Get(ctx context.Context, actor identity.Actor, orderID snowflake.ID) (*domain.Order, error) {
	order, err := s.repo.FindByID(ctx, s.db, orderID)
	if err != nil {
		return nil, err
	}
	if !canView(actor, order) {
		return nil, identity.ErrForbidden
	}
	return order, nil
}

func (s *serviceImpl) List(ctx context.Context, actor identity.Actor, filter domain.ListFilter) ([]domain.Order, error) {
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

func validateItems(items []domain.PlaceOrderItem) error {
	var verr apperr.ValidationErrors
	if len(items) == 0 {
		verr = append(verr, apperr.FieldError{Field: "items", Message: "at least one item is required"})
	}
	for i, item := range items {
		if item.ProductID == 0 {
			verr = append(verr, apperr.FieldError{
				Field:   fmt.Sprintf("items[%d].product_id", i),
				Message: "product_id is required",
			})
		}
		if item.Quantity <= 0 {
			verr = append(verr, apperr.FieldError{
				Field:   fmt.Sprintf("items[%d].quantity", i),
				Message: "quantity must be positive",
			})
		}
	}
	if len(verr) > 0 {
		return verr
	}
	return nil
}

func allowTransition(actor identity.Actor, order *domain.Order, target domain.OrderStatus) error {
	if actor.IsAdmin() {
		return nil
	}
	switch target {
	case domain.StatusCancelled:
		if actor.Role == identity.RoleCustomer && actor.ID == order.CustomerID {
			return nil
		}
		if actor.Role == identity.RoleSeller && actor.ID == order.SellerID {
			return nil
		}
	default:
		if actor.Role == identity.RoleSeller && actor.ID == order.SellerID {
			return nil
		}
	}
	return identity.ErrForbidden
}

func canView(actor identity.Actor, order *domain.Order) bool {
	if actor.IsAdmin() {
		return true
	}
	switch actor.Role {
	case identity.RoleCustomer:
		return actor.ID == order.CustomerID
	case identity.RoleSeller:
		return actor.ID == order.SellerID
	default:
		return false
	}
}
