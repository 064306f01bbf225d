package server

import (
	"net/http"

	"github.com/bwmarrin/snowflake"
	payoutdomain "github.com/dukalabs/soko/internal/payout/domain"
	"github.com/dukalabs/soko/internal/server/apperr"
	"github.com/dukalabs/soko/pkg/db/pagination"
	"github.com/gin-gonic/gin"
)

type settlePayoutRequest struct {
	SellerID int64 `json:"seller_id,string"`
}

func (s *Server) registerPayoutRoutes(api, admin *gin.RouterGroup) {
	api.GET("/payouts", RequireAuthz(s.authz, "payout", "read"), s.listPayouts)
	admin.POST("/payouts/settle", RequireAuthz(s.authz, "payout", "settle"), s.settlePayout)
}

func (s *Server) listPayouts(c *gin.Context) {
	actor, _ := actorFrom(c)

	var filter payoutdomain.ListFilter
	if txnType := c.Query("type"); txnType != "" {
		filter.Type = payoutdomain.TransactionType(txnType)
	}
	if status := c.Query("status"); status != "" {
		filter.Status = payoutdomain.TransactionStatus(status)
	}
	sellerID, err := queryID(c, "seller_id")
	if err != nil {
		AbortWithError(c, err)
		return
	}
	filter.SellerID = sellerID

	var page pagination.Pagination
	if err := c.ShouldBindQuery(&page); err != nil {
		AbortWithError(c, apperr.ValidationErrors{{Field: "page_size", Message: "invalid pagination parameters"}})
		return
	}

	txns, pageInfo, err := s.payouts.List(c.Request.Context(), actor, filter, page)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": txns, "page_info": pageInfo})
}

func (s *Server) settlePayout(c *gin.Context) {
	actor, _ := actorFrom(c)

	var req settlePayoutRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.SellerID <= 0 {
		AbortWithError(c, apperr.ValidationErrors{{Field: "seller_id", Message: "seller_id is required"}})
		return
	}

	payout, err := s.payouts.SettleSellerPayout(c.Request.Context(), actor, snowflake.ID(req.SellerID))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, payout)
}
