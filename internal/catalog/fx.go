package catalog

import (
	"github.com/dukalabs/soko/internal/catalog/repository"
	"github.com/dukalabs/soko/internal/catalog/service"
	"go.uber.org/fx"
)

var Module = fx.Module("catalog.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
