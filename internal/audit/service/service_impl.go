package service

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/dukalabs/soko/internal/audit/domain"
	"github.com/dukalabs/soko/internal/clock"
	"github.com/dukalabs/soko/internal/identity"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Clock clock.Clock
}

type serviceImpl struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	clock clock.Clock
}

func New(p Params) domain.Service {
	return &serviceImpl{
		db:    p.DB,
		log:   p.Log.Named("audit.service"),
		genID: p.GenID,
		clock: p.Clock,
	}
}

func (s *serviceImpl) Record(ctx context.Context, actor identity.Actor, action, targetType string, targetID snowflake.ID, metadata map[string]any) {
	entry := domain.AuditLog{
		ID:         s.genID.Generate(),
		ActorID:    actor.ID,
		ActorRole:  string(actor.Role),
		Action:     action,
		TargetType: targetType,
		TargetID:   targetID,
		Metadata:   datatypes.JSONMap(metadata),
		CreatedAt:  s.clock.Now(),
	}
	if err := s.db.WithContext(ctx).Create(&entry).Error; err != nil {
		s.log.Warn("failed to record audit entry",
			zap.String("action", action),
			zap.Error(err),
		)
	}
}
