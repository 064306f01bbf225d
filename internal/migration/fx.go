package migration

import (
	"github.com/bwmarrin/snowflake"
	"github.com/dukalabs/soko/internal/config"
	"github.com/dukalabs/soko/internal/seed"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var Module = fx.Module("migration",
	fx.Invoke(run),
)

func run(db *gorm.DB, cfg config.Config, genID *snowflake.Node, log *zap.Logger) error {
	if err := Run(db, cfg, log); err != nil {
		return err
	}
	return seed.EnsureDefaultCommissionPolicy(db, cfg, genID, log)
}
