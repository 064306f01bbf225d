package migration

import (
	"embed"
	"errors"
	"fmt"

	auditdomain "github.com/dukalabs/soko/internal/audit/domain"
	catalogdomain "github.com/dukalabs/soko/internal/catalog/domain"
	commissiondomain "github.com/dukalabs/soko/internal/commission/domain"
	"github.com/dukalabs/soko/internal/config"
	orderdomain "github.com/dukalabs/soko/internal/order/domain"
	payoutdomain "github.com/dukalabs/soko/internal/payout/domain"
	refunddomain "github.com/dukalabs/soko/internal/refund/domain"
	"github.com/golang-migrate/migrate/v4"
	migratepg "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

//go:embed sql/*.sql
var migrations embed.FS

// Run applies schema migrations. Postgres uses the embedded SQL files; other
// dialects fall back to AutoMigrate plus the indexes the SQL path creates.
func Run(db *gorm.DB, cfg config.Config, log *zap.Logger) error {
	log = log.Named("migration")

	if cfg.DBType == "postgres" {
		return runPostgres(db, cfg, log)
	}
	return runAutoMigrate(db, log)
}

func runPostgres(db *gorm.DB, cfg config.Config, log *zap.Logger) error {
	source, err := iofs.New(migrations, "sql")
	if err != nil {
		return fmt.Errorf("open migration source: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	driver, err := migratepg.WithInstance(sqlDB, &migratepg.Config{})
	if err != nil {
		return fmt.Errorf("init migration driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", source, cfg.DBName, driver)
	if err != nil {
		return fmt.Errorf("init migrator: %w", err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("apply migrations: %w", err)
	}

	log.Info("migrations applied")
	return nil
}

func runAutoMigrate(db *gorm.DB, log *zap.Logger) error {
	err := db.AutoMigrate(
		&catalogdomain.Product{},
		&orderdomain.Order{},
		&orderdomain.OrderItem{},
		&refunddomain.RefundRequest{},
		&payoutdomain.PayoutTransaction{},
		&commissiondomain.CommissionPolicy{},
		&auditdomain.AuditLog{},
	)
	if err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}

	// Partial unique indexes back the idempotent ledger appends; gorm tags
	// cannot express the WHERE clause.
	statements := []string{
		`CREATE UNIQUE INDEX IF NOT EXISTS ux_payout_sale_order
			ON payout_transactions (order_id) WHERE type = 'SALE'`,
		`CREATE UNIQUE INDEX IF NOT EXISTS ux_payout_refund_refund
			ON payout_transactions (refund_id) WHERE type = 'REFUND'`,
	}
	for _, stmt := range statements {
		if err := db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("create index: %w", err)
		}
	}

	log.Info("schema synchronized")
	return nil
}
