package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/dukalabs/soko/internal/commission/domain"
	"github.com/dukalabs/soko/internal/commission/repository"
	"github.com/dukalabs/soko/internal/identity"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func newTestService(t *testing.T) (domain.Service, *gorm.DB, *snowflake.Node) {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&domain.CommissionPolicy{}))

	node, err := snowflake.NewNode(5)
	require.NoError(t, err)

	svc := New(Params{DB: db, Log: zap.NewNop(), GenID: node, Repo: repository.Provide()})
	return svc, db, node
}

func TestRateAtPicksLatestEffectivePolicy(t *testing.T) {
	svc, db, node := newTestService(t)

	require.NoError(t, db.Create(&domain.CommissionPolicy{
		ID: node.Generate(), RateBasisPoints: 1000,
		EffectiveFrom: time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC),
	}).Error)
	require.NoError(t, db.Create(&domain.CommissionPolicy{
		ID: node.Generate(), RateBasisPoints: 1500,
		EffectiveFrom: time.Date(2026, time.June, 1, 0, 0, 0, 0, time.UTC),
	}).Error)

	rate, err := svc.RateAt(context.Background(), nil, time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, int64(1000), rate)

	rate, err = svc.RateAt(context.Background(), nil, time.Date(2026, time.June, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, int64(1500), rate)

	_, err = svc.RateAt(context.Background(), nil, time.Date(2025, time.June, 1, 0, 0, 0, 0, time.UTC))
	assert.ErrorIs(t, err, domain.ErrPolicyNotFound)
}

func TestSetPolicy(t *testing.T) {
	svc, _, node := newTestService(t)
	admin := identity.Actor{ID: node.Generate(), Role: identity.RoleAdmin}
	seller := identity.Actor{ID: node.Generate(), Role: identity.RoleSeller}

	_, err := svc.SetPolicy(context.Background(), seller, 1000, time.Now())
	assert.ErrorIs(t, err, identity.ErrForbidden)

	_, err = svc.SetPolicy(context.Background(), admin, 10_001, time.Now())
	assert.ErrorIs(t, err, domain.ErrInvalidRate)

	_, err = svc.SetPolicy(context.Background(), admin, -1, time.Now())
	assert.ErrorIs(t, err, domain.ErrInvalidRate)

	policy, err := svc.SetPolicy(context.Background(), admin, 1200, time.Date(2026, time.July, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, int64(1200), policy.RateBasisPoints)
	assert.Equal(t, admin.ID, policy.CreatedBy)

	policies, err := svc.List(context.Background(), admin)
	require.NoError(t, err)
	assert.Len(t, policies, 1)
}
