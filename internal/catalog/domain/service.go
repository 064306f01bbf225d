package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/dukalabs/soko/internal/identity"
)

type Service interface {
	Get(ctx context.Context, id snowflake.ID) (*Product, error)
	List(ctx context.Context, sellerID *snowflake.ID) ([]Product, error)
	Create(ctx context.Context, actor identity.Actor, product *Product) (*Product, error)
}
