package service

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/dukalabs/soko/internal/commission/domain"
	"github.com/dukalabs/soko/internal/identity"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Repo  domain.Repository
}

type serviceImpl struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	repo  domain.Repository
}

func New(p Params) domain.Service {
	return &serviceImpl{
		db:    p.DB,
		log:   p.Log.Named("commission.service"),
		genID: p.GenID,
		repo:  p.Repo,
	}
}

func (s *serviceImpl) RateAt(ctx context.Context, db *gorm.DB, at time.Time) (int64, error) {
	if db == nil {
		db = s.db
	}
	policy, err := s.repo.FindEffectiveAt(ctx, db, at)
	if err != nil {
		return 0, err
	}
	return policy.RateBasisPoints, nil
}

func (s *serviceImpl) SetPolicy(ctx context.Context, actor identity.Actor, rateBps int64, effectiveFrom time.Time) (*domain.CommissionPolicy, error) {
	if !actor.IsAdmin() {
		return nil, identity.ErrForbidden
	}
	if !domain.ValidRate(rateBps) {
		return nil, domain.ErrInvalidRate
	}

	policy := &domain.CommissionPolicy{
		ID:              s.genID.Generate(),
		RateBasisPoints: rateBps,
		EffectiveFrom:   effectiveFrom.UTC(),
		CreatedBy:       actor.ID,
	}
	if err := s.repo.Insert(ctx, s.db, policy); err != nil {
		s.log.Error("failed to insert commission policy", zap.Error(err))
		return nil, err
	}

	s.log.Info("commission policy set",
		zap.Int64("rate_basis_points", rateBps),
		zap.Time("effective_from", policy.EffectiveFrom),
	)
	return policy, nil
}

func (s *serviceImpl) List(ctx context.Context, actor identity.Actor) ([]domain.CommissionPolicy, error) {
	if !actor.IsAdmin() {
		return nil, identity.ErrForbidden
	}
	return s.repo.List(ctx, s.db)
}
