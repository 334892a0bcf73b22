package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/tiffinlabs/dabba/internal/catalog"
	catalogdomain "github.com/tiffinlabs/dabba/internal/catalog/domain"
	"github.com/tiffinlabs/dabba/internal/config"
	"github.com/tiffinlabs/dabba/internal/deliverygroup"
	groupdomain "github.com/tiffinlabs/dabba/internal/deliverygroup/domain"
	"github.com/tiffinlabs/dabba/internal/notification"
	"github.com/tiffinlabs/dabba/internal/schedule"
	scheduledomain "github.com/tiffinlabs/dabba/internal/schedule/domain"
	"github.com/tiffinlabs/dabba/internal/subscription"
	subscriptiondomain "github.com/tiffinlabs/dabba/internal/subscription/domain"
	"github.com/tiffinlabs/dabba/internal/upgrade"
	upgradedomain "github.com/tiffinlabs/dabba/internal/upgrade/domain"
	"github.com/tiffinlabs/dabba/internal/wallet"
	walletdomain "github.com/tiffinlabs/dabba/internal/wallet/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("http.server",
	notification.Module,
	catalog.Module,
	subscription.Module,
	schedule.Module,
	deliverygroup.Module,
	wallet.Module,
	upgrade.Module,
	fx.Provide(NewHTTPMetrics),
	fx.Provide(NewEngine),
	fx.Provide(NewServer),
	fx.Invoke(func(s *Server) { s.RegisterRoutes() }),
	fx.Invoke(run),
)

func NewEngine(logger *zap.Logger, httpMetrics *HTTPMetrics) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(RequestID())
	r.Use(AccessLog(logger))
	r.Use(httpMetrics.GinMiddleware())
	r.Use(ErrorHandlingMiddleware())

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

func run(lc fx.Lifecycle, r *gin.Engine, cfg config.Config, logger *zap.Logger) {
	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: r,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					logger.Fatal("http server failed", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}

type Server struct {
	engine *gin.Engine
	cfg    config.Config

	catalogSvc      catalogdomain.Service
	subscriptionSvc subscriptiondomain.Service
	scheduleSvc     scheduledomain.Service
	groupSvc        groupdomain.Service
	walletSvc       walletdomain.Service
	upgradeSvc      upgradedomain.Service
}

type ServerParams struct {
	fx.In

	Gin *gin.Engine
	Cfg config.Config

	CatalogSvc      catalogdomain.Service
	SubscriptionSvc subscriptiondomain.Service
	ScheduleSvc     scheduledomain.Service
	GroupSvc        groupdomain.Service
	WalletSvc       walletdomain.Service
	UpgradeSvc      upgradedomain.Service
}

func NewServer(p ServerParams) *Server {
	return &Server{
		engine:          p.Gin,
		cfg:             p.Cfg,
		catalogSvc:      p.CatalogSvc,
		subscriptionSvc: p.SubscriptionSvc,
		scheduleSvc:     p.ScheduleSvc,
		groupSvc:        p.GroupSvc,
		walletSvc:       p.WalletSvc,
		upgradeSvc:      p.UpgradeSvc,
	}
}

// RegisterRoutes mounts the subscriber API. Every /v1 route requires the
// gateway-verified subscriber identity.
func (s *Server) RegisterRoutes() {
	v1 := s.engine.Group("/v1")
	v1.Use(SubscriberRequired())

	v1.GET("/packages", s.ListMealPackages)
	v1.GET("/token-packages", s.ListTokenPackages)
	v1.GET("/upgrade-prices", s.ListUpgradePrices)

	v1.POST("/subscriptions", s.CreateSubscription)
	v1.GET("/subscriptions/active", s.GetActiveSubscription)
	v1.POST("/subscriptions/:id/end", s.EndSubscription)

	v1.GET("/schedule", s.GetSchedule)
	v1.POST("/meals/:id/pause", s.SetMealPaused)
	v1.GET("/meals/:id/audit", s.GetMealAuditTrail)

	v1.POST("/delivery-groups", s.CreateDeliveryGroup)
	v1.GET("/delivery-groups/:id", s.GetDeliveryGroup)
	v1.DELETE("/delivery-groups/:id", s.DeleteDeliveryGroup)

	v1.POST("/wallets/purchase", s.PurchaseTokens)
	v1.GET("/wallets", s.ListWallets)
	v1.POST("/curry-orders", s.PlaceCurryOrder)
	v1.DELETE("/curry-orders/:id", s.CancelCurryOrder)

	v1.POST("/upgrades", s.ApplyUpgrade)
	v1.DELETE("/upgrades/:id", s.RemoveUpgrade)
}
