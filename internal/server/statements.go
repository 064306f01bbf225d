package server

import (
	"net/http"

	"github.com/dukalabs/soko/internal/identity"
	statementdomain "github.com/dukalabs/soko/internal/statement/domain"
	"github.com/gin-gonic/gin"
)

func (s *Server) registerStatementRoutes(api *gin.RouterGroup) {
	api.GET("/statements", RequireAuthz(s.authz, "statement", "read"), s.getStatement)
}

func (s *Server) getStatement(c *gin.Context) {
	actor, _ := actorFrom(c)

	sellerID, err := queryID(c, "seller_id")
	if err != nil {
		AbortWithError(c, err)
		return
	}
	// sellers default to their own statement; admins without a seller_id
	// get the platform-wide aggregate
	if sellerID == 0 && actor.Role == identity.RoleSeller {
		sellerID = actor.ID
	}

	period, err := statementdomain.ParsePeriod(c.Query("period"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	statement, err := s.statements.Generate(c.Request.Context(), actor, sellerID, period)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, statement)
}
