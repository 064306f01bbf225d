package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/dukalabs/soko/internal/audit"
	"github.com/dukalabs/soko/internal/authorization"
	"github.com/dukalabs/soko/internal/catalog"
	"github.com/dukalabs/soko/internal/clock"
	"github.com/dukalabs/soko/internal/commission"
	"github.com/dukalabs/soko/internal/config"
	"github.com/dukalabs/soko/internal/migration"
	"github.com/dukalabs/soko/internal/observability"
	"github.com/dukalabs/soko/internal/order"
	"github.com/dukalabs/soko/internal/payout"
	"github.com/dukalabs/soko/internal/providers/notify"
	"github.com/dukalabs/soko/internal/refund"
	"github.com/dukalabs/soko/internal/server"
	"github.com/dukalabs/soko/internal/statement"
	"github.com/dukalabs/soko/pkg/db"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		config.Module,
		observability.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		clock.Module,
		migration.Module,
		authorization.Module,
		audit.Module,
		notify.Module,
		catalog.Module,
		commission.Module,
		payout.Module,
		order.Module,
		refund.Module,
		statement.Module,
		server.Module,
	)
	app.Run()
}

func RegisterSnowflake() (*snowflake.Node, error) {
	return snowflake.NewNode(1)
}
