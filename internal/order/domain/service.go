package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/dukalabs/soko/internal/identity"
	"gorm.io/datatypes"
)

type PlaceOrderItem struct {
	ProductID snowflake.ID `json:"product_id"`
	Quantity  int64        `json:"quantity"`
}

type PlaceOrderInput struct {
	Items    []PlaceOrderItem  `json:"items"`
	Metadata datatypes.JSONMap `json:"metadata,omitempty"`
}

type Service interface {
	PlaceOrder(ctx context.Context, actor identity.Actor, input PlaceOrderInput) (*Order, error)

	// Advance moves the order one step along the lifecycle. Moving to
	// CANCELLED restores reserved stock; moving to DELIVERED accrues the
	// seller's SALE ledger row in the same transaction.
	Advance(ctx context.Context, actor identity.Actor, orderID snowflake.ID, target OrderStatus) (*Order, error)

	Get(ctx context.Context, actor identity.Actor, orderID snowflake.ID) (*Order, error)
	List(ctx context.Context, actor identity.Actor, filter ListFilter) ([]Order, error)
}
