package server

import (
	"net/http"

	"github.com/bwmarrin/snowflake"
	catalogdomain "github.com/dukalabs/soko/internal/catalog/domain"
	"github.com/dukalabs/soko/internal/server/apperr"
	"github.com/gin-gonic/gin"
)

func (s *Server) registerCatalogRoutes(api *gin.RouterGroup) {
	products := api.Group("/products")
	products.GET("", RequireAuthz(s.authz, "product", "read"), s.listProducts)
	products.GET("/:id", RequireAuthz(s.authz, "product", "read"), s.getProduct)
	products.POST("", RequireAuthz(s.authz, "product", "create"), s.createProduct)
}

func (s *Server) listProducts(c *gin.Context) {
	sellerID, err := queryID(c, "seller_id")
	if err != nil {
		AbortWithError(c, err)
		return
	}

	var sellerFilter *snowflake.ID
	if sellerID != 0 {
		sellerFilter = &sellerID
	}
	products, err := s.catalog.List(c.Request.Context(), sellerFilter)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": products})
}

func (s *Server) getProduct(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		AbortWithError(c, err)
		return
	}

	product, err := s.catalog.Get(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, product)
}

func (s *Server) createProduct(c *gin.Context) {
	actor, _ := actorFrom(c)

	var product catalogdomain.Product
	if err := c.ShouldBindJSON(&product); err != nil {
		AbortWithError(c, apperr.ValidationErrors{{Field: "body", Message: "invalid JSON payload"}})
		return
	}

	created, err := s.catalog.Create(c.Request.Context(), actor, &product)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}
