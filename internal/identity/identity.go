// Package identity carries the authenticated actor through request context.
// Authentication itself happens upstream; the engine only consumes the result.
package identity

import (
	"context"
	"errors"
	"strings"

	"github.com/bwmarrin/snowflake"
)

type Role string

const (
	RoleCustomer Role = "customer"
	RoleSeller   Role = "seller"
	RoleAdmin    Role = "admin"
	RoleSystem   Role = "system"
)

var (
	ErrInvalidActor = errors.New("invalid_actor")
	ErrForbidden    = errors.New("forbidden")
)

// Actor identifies who issued a command.
type Actor struct {
	ID   snowflake.ID
	Role Role
}

func (a Actor) IsAdmin() bool  { return a.Role == RoleAdmin || a.Role == RoleSystem }
func (a Actor) IsSystem() bool { return a.Role == RoleSystem }

func ParseRole(raw string) (Role, error) {
	switch Role(strings.ToLower(strings.TrimSpace(raw))) {
	case RoleCustomer:
		return RoleCustomer, nil
	case RoleSeller:
		return RoleSeller, nil
	case RoleAdmin:
		return RoleAdmin, nil
	case RoleSystem:
		return RoleSystem, nil
	default:
		return "", ErrInvalidActor
	}
}

type contextKey struct{}

func WithActor(ctx context.Context, actor Actor) context.Context {
	return context.WithValue(ctx, contextKey{}, actor)
}

func ActorFromContext(ctx context.Context) (Actor, bool) {
	if ctx == nil {
		return Actor{}, false
	}
	actor, ok := ctx.Value(contextKey{}).(Actor)
	return actor, ok
}
