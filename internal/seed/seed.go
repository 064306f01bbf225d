// Package seed provisions baseline data a fresh deployment needs.
package seed

import (
	"time"

	"github.com/bwmarrin/snowflake"
	commissiondomain "github.com/dukalabs/soko/internal/commission/domain"
	"github.com/dukalabs/soko/internal/config"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// EnsureDefaultCommissionPolicy inserts the configured default rate when no
// policy exists yet, so every delivery can resolve a rate.
func EnsureDefaultCommissionPolicy(db *gorm.DB, cfg config.Config, genID *snowflake.Node, log *zap.Logger) error {
	var count int64
	if err := db.Model(&commissiondomain.CommissionPolicy{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	policy := commissiondomain.CommissionPolicy{
		ID:              genID.Generate(),
		RateBasisPoints: cfg.DefaultCommissionBps,
		EffectiveFrom:   time.Unix(0, 0).UTC(),
	}
	if err := db.Create(&policy).Error; err != nil {
		return err
	}

	log.Named("seed").Info("default commission policy created",
		zap.Int64("rate_basis_points", policy.RateBasisPoints),
	)
	return nil
}
