package server

import (
	"net/http"

	refunddomain "github.com/dukalabs/soko/internal/refund/domain"
	"github.com/dukalabs/soko/internal/server/apperr"
	"github.com/gin-gonic/gin"
)

type decideRefundRequest struct {
	Approve    bool   `json:"approve"`
	AdminNotes string `json:"admin_notes"`
}

func (s *Server) registerRefundRoutes(api, admin *gin.RouterGroup) {
	refunds := api.Group("/refunds")
	refunds.POST("", RequireAuthz(s.authz, "refund", "create"), s.submitRefund)
	refunds.GET("", RequireAuthz(s.authz, "refund", "read"), s.listRefunds)
	refunds.GET("/:id", RequireAuthz(s.authz, "refund", "read"), s.getRefund)

	admin.POST("/refunds/:id/decide", RequireAuthz(s.authz, "refund", "decide"), s.decideRefund)
	admin.POST("/refunds/:id/process", RequireAuthz(s.authz, "refund", "process"), s.processRefund)
}

func (s *Server) submitRefund(c *gin.Context) {
	actor, _ := actorFrom(c)

	var input refunddomain.SubmitInput
	if err := c.ShouldBindJSON(&input); err != nil {
		AbortWithError(c, apperr.ValidationErrors{{Field: "body", Message: "invalid JSON payload"}})
		return
	}

	refund, err := s.refunds.Submit(c.Request.Context(), actor, input)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, refund)
}

func (s *Server) getRefund(c *gin.Context) {
	actor, _ := actorFrom(c)
	id, err := pathID(c, "id")
	if err != nil {
		AbortWithError(c, err)
		return
	}

	refund, err := s.refunds.Get(c.Request.Context(), actor, id)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, refund)
}

func (s *Server) listRefunds(c *gin.Context) {
	actor, _ := actorFrom(c)

	var filter refunddomain.ListFilter
	if status := c.Query("status"); status != "" {
		filter.Status = refunddomain.RefundStatus(status)
	}
	orderID, err := queryID(c, "order_id")
	if err != nil {
		AbortWithError(c, err)
		return
	}
	filter.OrderID = orderID

	refunds, err := s.refunds.List(c.Request.Context(), actor, filter)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": refunds})
}

func (s *Server) decideRefund(c *gin.Context) {
	actor, _ := actorFrom(c)
	id, err := pathID(c, "id")
	if err != nil {
		AbortWithError(c, err)
		return
	}

	var req decideRefundRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, apperr.ValidationErrors{{Field: "body", Message: "invalid JSON payload"}})
		return
	}

	refund, err := s.refunds.Decide(c.Request.Context(), actor, id, req.Approve, req.AdminNotes)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, refund)
}

func (s *Server) processRefund(c *gin.Context) {
	actor, _ := actorFrom(c)
	id, err := pathID(c, "id")
	if err != nil {
		AbortWithError(c, err)
		return
	}

	refund, reversal, err := s.refunds.Process(c.Request.Context(), actor, id)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"refund":      refund,
		"transaction": reversal,
	})
}
