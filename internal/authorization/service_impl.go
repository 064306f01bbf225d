// Package authorization enforces role capabilities with casbin. Ownership
// checks stay in the domain services; this layer only answers whether a role
// may attempt an action at all.
package authorization

import (
	"context"
	_ "embed"
	"fmt"

	"github.com/casbin/casbin/v2"
	casbinmodel "github.com/casbin/casbin/v2/model"
	gormadapter "github.com/casbin/gorm-adapter/v3"
	"github.com/dukalabs/soko/internal/identity"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

//go:embed model.conf
var modelConf string

type Service interface {
	Authorize(ctx context.Context, actor identity.Actor, object, action string) error
}

type Params struct {
	fx.In

	DB  *gorm.DB
	Log *zap.Logger
}

type serviceImpl struct {
	enforcer *casbin.SyncedEnforcer
	log      *zap.Logger
}

func New(p Params) (Service, error) {
	adapter, err := gormadapter.NewAdapterByDB(p.DB)
	if err != nil {
		return nil, fmt.Errorf("init casbin adapter: %w", err)
	}

	model, err := casbinmodel.NewModelFromString(modelConf)
	if err != nil {
		return nil, fmt.Errorf("parse casbin model: %w", err)
	}

	enforcer, err := casbin.NewSyncedEnforcer(model, adapter)
	if err != nil {
		return nil, fmt.Errorf("init casbin enforcer: %w", err)
	}
	if err := enforcer.LoadPolicy(); err != nil {
		return nil, fmt.Errorf("load casbin policy: %w", err)
	}
	if err := seedPolicies(enforcer); err != nil {
		return nil, fmt.Errorf("seed casbin policy: %w", err)
	}

	return &serviceImpl{
		enforcer: enforcer,
		log:      p.Log.Named("authorization.service"),
	}, nil
}

func (s *serviceImpl) Authorize(_ context.Context, actor identity.Actor, object, action string) error {
	allowed, err := s.enforcer.Enforce(roleSubject(actor.Role), object, action)
	if err != nil {
		return err
	}
	if !allowed {
		s.log.Debug("authorization denied",
			zap.String("role", string(actor.Role)),
			zap.String("object", object),
			zap.String("action", action),
		)
		return identity.ErrForbidden
	}
	return nil
}

func roleSubject(role identity.Role) string {
	return "role:" + string(role)
}

func seedPolicies(enforcer *casbin.SyncedEnforcer) error {
	policies := [][]string{
		{"role:customer", "product", "read"},
		{"role:customer", "order", "create"},
		{"role:customer", "order", "read"},
		{"role:customer", "order", "advance"},
		{"role:customer", "refund", "create"},
		{"role:customer", "refund", "read"},

		{"role:seller", "product", "create"},
		{"role:seller", "product", "read"},
		{"role:seller", "order", "read"},
		{"role:seller", "order", "advance"},
		{"role:seller", "refund", "read"},
		{"role:seller", "statement", "read"},
		{"role:seller", "payout", "read"},

		{"role:admin", "product", "create"},
		{"role:admin", "product", "read"},
		{"role:admin", "order", "create"},
		{"role:admin", "order", "read"},
		{"role:admin", "order", "advance"},
		{"role:admin", "refund", "create"},
		{"role:admin", "refund", "read"},
		{"role:admin", "refund", "decide"},
		{"role:admin", "refund", "process"},
		{"role:admin", "statement", "read"},
		{"role:admin", "payout", "read"},
		{"role:admin", "payout", "settle"},
		{"role:admin", "commission_policy", "read"},
		{"role:admin", "commission_policy", "write"},
	}
	for _, policy := range policies {
		if _, err := enforcer.AddPolicy(policy[0], policy[1], policy[2]); err != nil {
			return err
		}
	}

	// system inherits everything admin can do
	if _, err := enforcer.AddGroupingPolicy("role:system", "role:admin"); err != nil {
		return err
	}
	return enforcer.SavePolicy()
}
