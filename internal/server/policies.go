package server

import (
	"net/http"
	"time"

	"github.com/dukalabs/soko/internal/server/apperr"
	"github.com/gin-gonic/gin"
)

type setPolicyRequest struct {
	RateBasisPoints int64     `json:"rate_basis_points"`
	EffectiveFrom   time.Time `json:"effective_from"`
}

func (s *Server) registerPolicyRoutes(admin *gin.RouterGroup) {
	admin.GET("/commission-policies", RequireAuthz(s.authz, "commission_policy", "read"), s.listPolicies)
	admin.POST("/commission-policies", RequireAuthz(s.authz, "commission_policy", "write"), s.setPolicy)
}

func (s *Server) listPolicies(c *gin.Context) {
	actor, _ := actorFrom(c)

	policies, err := s.policies.List(c.Request.Context(), actor)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": policies})
}

func (s *Server) setPolicy(c *gin.Context) {
	actor, _ := actorFrom(c)

	var req setPolicyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, apperr.ValidationErrors{{Field: "body", Message: "invalid JSON payload"}})
		return
	}
	if req.EffectiveFrom.IsZero() {
		req.EffectiveFrom = time.Now().UTC()
	}

	policy, err := s.policies.SetPolicy(c.Request.Context(), actor, req.RateBasisPoints, req.EffectiveFrom)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, policy)
}
