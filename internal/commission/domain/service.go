package domain

import (
	"context"
	"time"

	"github.com/dukalabs/soko/internal/identity"
	"gorm.io/gorm"
)

type Service interface {
	// RateAt resolves the commission rate in effect at the given time. It
	// runs on the supplied db handle so it can join a caller's transaction.
	RateAt(ctx context.Context, db *gorm.DB, at time.Time) (int64, error)

	SetPolicy(ctx context.Context, actor identity.Actor, rateBps int64, effectiveFrom time.Time) (*CommissionPolicy, error)
	List(ctx context.Context, actor identity.Actor) ([]CommissionPolicy, error)
}
