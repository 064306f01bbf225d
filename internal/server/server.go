package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/dukalabs/soko/internal/authorization"
	catalogdomain "github.com/dukalabs/soko/internal/catalog/domain"
	commissiondomain "github.com/dukalabs/soko/internal/commission/domain"
	"github.com/dukalabs/soko/internal/config"
	"github.com/dukalabs/soko/internal/observability"
	"github.com/dukalabs/soko/internal/observability/logger"
	"github.com/dukalabs/soko/internal/observability/metrics"
	"github.com/dukalabs/soko/internal/observability/tracing"
	orderdomain "github.com/dukalabs/soko/internal/order/domain"
	payoutdomain "github.com/dukalabs/soko/internal/payout/domain"
	refunddomain "github.com/dukalabs/soko/internal/refund/domain"
	statementdomain "github.com/dukalabs/soko/internal/statement/domain"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("server",
	fx.Provide(New),
	fx.Invoke(func(*Server) {}),
)

type Params struct {
	fx.In

	Lifecycle   fx.Lifecycle
	Cfg         config.Config
	ObsCfg      observability.Config
	Log         *zap.Logger
	HTTPMetrics *metrics.HTTPMetrics `optional:"true"`

	Orders     orderdomain.Service
	Refunds    refunddomain.Service
	Payouts    payoutdomain.Service
	Statements statementdomain.Service
	Catalog    catalogdomain.Service
	Policies   commissiondomain.Service
	Authz      authorization.Service
}

type Server struct {
	engine *gin.Engine
	log    *zap.Logger

	orders     orderdomain.Service
	refunds    refunddomain.Service
	payouts    payoutdomain.Service
	statements statementdomain.Service
	catalog    catalogdomain.Service
	policies   commissiondomain.Service
	authz      authorization.Service
}

func New(p Params) *Server {
	if p.ObsCfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	s := &Server{
		engine:     gin.New(),
		log:        p.Log.Named("server"),
		orders:     p.Orders,
		refunds:    p.Refunds,
		payouts:    p.Payouts,
		statements: p.Statements,
		catalog:    p.Catalog,
		policies:   p.Policies,
		authz:      p.Authz,
	}

	s.engine.Use(gin.Recovery())
	s.engine.Use(logger.GinMiddleware(logger.MiddlewareConfig{
		Debug:           p.ObsCfg.Debug(),
		ErrorClassifier: ClassifyError,
	}))
	s.engine.Use(tracing.GinMiddleware())
	if p.HTTPMetrics != nil {
		s.engine.Use(metrics.GinMiddleware(p.HTTPMetrics))
	}
	s.engine.Use(ErrorHandlingMiddleware())

	s.registerRoutes()

	srv := &http.Server{
		Addr:              p.Cfg.HTTPAddr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	p.Lifecycle.Append(fx.Hook{
		OnStart: func(_ context.Context) error {
			s.log.Info("http server starting", zap.String("addr", srv.Addr))
			go func() {
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					s.log.Error("http server stopped", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			s.log.Info("http server shutting down")
			return srv.Shutdown(ctx)
		},
	})

	return s
}

// Engine exposes the router for tests.
func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) registerRoutes() {
	s.engine.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	s.engine.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := s.engine.Group("/api", ActorContext())
	s.registerCatalogRoutes(api)
	s.registerOrderRoutes(api)
	s.registerStatementRoutes(api)

	admin := s.engine.Group("/admin", ActorContext())
	s.registerRefundRoutes(api, admin)
	s.registerPayoutRoutes(api, admin)
	s.registerPolicyRoutes(admin)
}
