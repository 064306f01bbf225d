package server

import (
	"strconv"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/dukalabs/soko/internal/authorization"
	"github.com/dukalabs/soko/internal/identity"
	"github.com/dukalabs/soko/internal/observability/obscontext"
	"github.com/dukalabs/soko/internal/server/apperr"
	"github.com/gin-gonic/gin"
)

// ActorContext resolves the authenticated actor from the trusted gateway
// headers and stores it on the request context.
func ActorContext() gin.HandlerFunc {
	return func(c *gin.Context) {
		rawID := strings.TrimSpace(c.GetHeader("X-Actor-Id"))
		rawRole := strings.TrimSpace(c.GetHeader("X-Actor-Role"))
		if rawID == "" || rawRole == "" {
			AbortWithError(c, identity.ErrInvalidActor)
			return
		}

		id, err := strconv.ParseInt(rawID, 10, 64)
		if err != nil || id <= 0 {
			AbortWithError(c, identity.ErrInvalidActor)
			return
		}
		role, err := identity.ParseRole(rawRole)
		if err != nil {
			AbortWithError(c, err)
			return
		}

		actor := identity.Actor{ID: snowflake.ID(id), Role: role}
		ctx := identity.WithActor(c.Request.Context(), actor)
		ctx = obscontext.WithActor(ctx, string(role), rawID)
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// RequireAuthz gates the route on a role capability check.
func RequireAuthz(authz authorization.Service, object, action string) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := identity.ActorFromContext(c.Request.Context())
		if !ok {
			AbortWithError(c, identity.ErrInvalidActor)
			return
		}
		if err := authz.Authorize(c.Request.Context(), actor, object, action); err != nil {
			AbortWithError(c, err)
			return
		}
		c.Next()
	}
}

func actorFrom(c *gin.Context) (identity.Actor, bool) {
	return identity.ActorFromContext(c.Request.Context())
}

func pathID(c *gin.Context, name string) (snowflake.ID, error) {
	raw := c.Param(name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, apperr.ValidationErrors{{Field: name, Message: "must be a numeric id"}}
	}
	return snowflake.ID(id), nil
}

func queryID(c *gin.Context, name string) (snowflake.ID, error) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return 0, nil
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, apperr.ValidationErrors{{Field: name, Message: "must be a numeric id"}}
	}
	return snowflake.ID(id), nil
}
