package router

import (
	"log/slog"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"go.uber.org/fx"

	"github.com/polkiloo/deliverydesk/internal/clock"
	"github.com/polkiloo/deliverydesk/internal/dialog"
	"github.com/polkiloo/deliverydesk/internal/metrics"
	"github.com/polkiloo/deliverydesk/internal/pkg/auth"
	"github.com/polkiloo/deliverydesk/internal/server/http/handlers"
	"github.com/polkiloo/deliverydesk/internal/server/http/middleware"
)

// ConsoleParams collects the partner console's HTTP dependencies.
type ConsoleParams struct {
	fx.In

	Tokens   middleware.TokenParser
	Sessions handlers.Sessions
	Command  handlers.StatusUpdater
	Dialogs  *dialog.Coordinator
	Clock    clock.Clock
	Metrics  *metrics.Metrics
	Logger   *slog.Logger
}

// ServiceParams collects the delivery service's HTTP dependencies.
type ServiceParams struct {
	fx.In

	Token   auth.ServiceToken
	Backend handlers.DeliveryBackend
	Health  handlers.HealthChecker `optional:"true"`
	Metrics *metrics.Metrics
	Logger  *slog.Logger
}

// SetupConsole configures the partner console router.
func SetupConsole(p ConsoleParams) *gin.Engine {
	engine := newEngine(p.Metrics, p.Logger)
	engine.GET("/healthz", handlers.Health(nil))

	console := handlers.NewConsoleHandler(p.Sessions, p.Command, p.Clock, p.Metrics, p.Logger)
	dialogs := handlers.NewDialogHandler(p.Dialogs, p.Sessions)

	partner := engine.Group("/api/partner")
	partner.Use(middleware.PartnerAuth(p.Tokens))

	partner.GET("/deliveries", console.Queue)
	partner.POST("/deliveries/refresh", console.Refresh)
	partner.PATCH("/deliveries/:orderID/status", console.UpdateStatus)

	partner.POST("/deliveries/:orderID/dialog", dialogs.Open)
	partner.GET("/deliveries/:orderID/dialog", dialogs.Get)
	partner.PATCH("/deliveries/:orderID/dialog", dialogs.Edit)
	partner.DELETE("/deliveries/:orderID/dialog", dialogs.Close)
	partner.POST("/deliveries/:orderID/dialog/submit", dialogs.Submit)

	partner.GET("/history", console.History)
	partner.GET("/history/export", console.Export)

	return engine
}

// SetupService configures the delivery service router.
func SetupService(p ServiceParams) *gin.Engine {
	engine := newEngine(p.Metrics, p.Logger)
	engine.GET("/healthz", handlers.Health(p.Health))

	deliveries := handlers.NewDeliveryHandler(p.Backend, p.Logger)

	api := engine.Group("/api")
	api.Use(middleware.ServiceAuth(p.Token))
	api.POST("/deliveries", deliveries.Assign)

	scoped := api.Group("")
	scoped.Use(middleware.PartnerScope())
	scoped.GET("/partners/:partnerID/deliveries/assigned", deliveries.Assigned)
	scoped.GET("/partners/:partnerID/deliveries/history", deliveries.History)
	scoped.PATCH("/deliveries/:orderID/status", deliveries.UpdateStatus)
	scoped.POST("/deliveries/:orderID/otp", deliveries.IssueOTP)

	return engine
}

func newEngine(m *metrics.Metrics, logger *slog.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(middleware.RequestLogger(logger))
	engine.Use(m.Middleware())
	engine.Use(middleware.DecompressRequest())
	engine.Use(gzip.Gzip(gzip.DefaultCompression, gzip.WithExcludedPaths([]string{"/metrics"})))
	engine.GET("/metrics", gin.WrapH(m.Handler()))
	return engine
}
