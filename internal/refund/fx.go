package refund

import (
	"github.com/dukalabs/soko/internal/refund/repository"
	"github.com/dukalabs/soko/internal/refund/service"
	"go.uber.org/fx"
)

var Module = fx.Module("refund.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
