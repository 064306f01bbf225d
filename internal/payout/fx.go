package payout

import (
	"github.com/dukalabs/soko/internal/payout/repository"
	"github.com/dukalabs/soko/internal/payout/service"
	"go.uber.org/fx"
)

var Module = fx.Module("payout.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
