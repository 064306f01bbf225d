package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/dukalabs/soko/internal/catalog/domain"
	"github.com/dukalabs/soko/internal/config"
	"github.com/dukalabs/soko/internal/identity"
	"github.com/dukalabs/soko/internal/server/apperr"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Cfg   config.Config
	Repo  domain.Repository
}

type serviceImpl struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	cfg   config.Config
	repo  domain.Repository
}

func New(p Params) domain.Service {
	return &serviceImpl{
		db:    p.DB,
		log:   p.Log.Named("catalog.service"),
		genID: p.GenID,
		cfg:   p.Cfg,
		repo:  p.Repo,
	}
}

func (s *serviceImpl) Get(ctx context.Context, id snowflake.ID) (*domain.Product, error) {
	return s.repo.FindByID(ctx, s.db, id)
}

func (s *serviceImpl) List(ctx context.Context, sellerID *snowflake.ID) ([]domain.Product, error) {
	return s.repo.List(ctx, s.db, sellerID)
}

func (s *serviceImpl) Create(ctx context.Context, actor identity.Actor, product *domain.Product) (*domain.Product, error) {
	if actor.Role != identity.RoleSeller && !actor.IsAdmin() {
		return nil, identity.ErrForbidden
	}

	var verr apperr.ValidationErrors
	if strings.TrimSpace(product.Name) == "" {
		verr = append(verr, apperr.FieldError{Field: "name", Message: "name is required"})
	}
	if product.UnitAmount <= 0 {
		verr = append(verr, apperr.FieldError{Field: "unit_amount", Message: "unit_amount must be positive"})
	}
	if product.StockQuantity < 0 {
		verr = append(verr, apperr.FieldError{Field: "stock_quantity", Message: "stock_quantity must not be negative"})
	}
	if len(verr) > 0 {
		return nil, verr
	}

	product.ID = s.genID.Generate()
	if actor.Role == identity.RoleSeller {
		product.SellerID = actor.ID
	}
	if strings.TrimSpace(product.Currency) == "" {
		product.Currency = s.cfg.DefaultCurrency
	}
	product.Active = true

	if err := s.repo.Insert(ctx, s.db, product); err != nil {
		s.log.Error("failed to create product", zap.Error(err))
		return nil, err
	}

	s.log.Info("product created",
		zap.String("product_id", product.ID.String()),
		zap.String("seller_id", product.SellerID.String()),
	)
	return product, nil
}
