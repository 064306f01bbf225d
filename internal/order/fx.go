package order

import (
	"github.com/dukalabs/soko/internal/order/repository"
	"github.com/dukalabs/soko/internal/order/service"
	"go.uber.org/fx"
)

var Module = fx.Module("order.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
