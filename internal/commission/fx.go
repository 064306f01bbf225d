package commission

import (
	"github.com/dukalabs/soko/internal/commission/repository"
	"github.com/dukalabs/soko/internal/commission/service"
	"go.uber.org/fx"
)

var Module = fx.Module("commission.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
