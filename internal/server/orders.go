package server

import (
	"net/http"

	orderdomain "github.com/dukalabs/soko/internal/order/domain"
	"github.com/dukalabs/soko/internal/server/apperr"
	"github.com/gin-gonic/gin"
)

type advanceOrderRequest struct {
	Target string `json:"target"`
}

func (s *Server) registerOrderRoutes(api *gin.RouterGroup) {
	orders := api.Group("/orders")
	orders.POST("", RequireAuthz(s.authz, "order", "create"), s.placeOrder)
	orders.GET("", RequireAuthz(s.authz, "order", "read"), s.listOrders)
	orders.GET("/:id", RequireAuthz(s.authz, "order", "read"), s.getOrder)
	orders.POST("/:id/advance", RequireAuthz(s.authz, "order", "advance"), s.advanceOrder)
}

func (s *Server) placeOrder(c *gin.Context) {
	actor, _ := actorFrom(c)

	var input orderdomain.PlaceOrderInput
	if err := c.ShouldBindJSON(&input); err != nil {
		AbortWithError(c, apperr.ValidationErrors{{Field: "body", Message: "invalid JSON payload"}})
		return
	}

	order, err := s.orders.PlaceOrder(c.Request.Context(), actor, input)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, order)
}

func (s *Server) getOrder(c *gin.Context) {
	actor, _ := actorFrom(c)
	id, err := pathID(c, "id")
	if err != nil {
		AbortWithError(c, err)
		return
	}

	order, err := s.orders.Get(c.Request.Context(), actor, id)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

func (s *Server) listOrders(c *gin.Context) {
	actor, _ := actorFrom(c)

	var filter orderdomain.ListFilter
	if status := c.Query("status"); status != "" {
		filter.Status = orderdomain.OrderStatus(status)
	}

	orders, err := s.orders.List(c.Request.Context(), actor, filter)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": orders})
}

func (s *Server) advanceOrder(c *gin.Context) {
	actor, _ := actorFrom(c)
	id, err := pathID(c, "id")
	if err != nil {
		AbortWithError(c, err)
		return
	}

	var req advanceOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Target == "" {
		AbortWithError(c, apperr.ValidationErrors{{Field: "target", Message: "target status is required"}})
		return
	}

	order, err := s.orders.Advance(c.Request.Context(), actor, id, orderdomain.OrderStatus(req.Target))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}
