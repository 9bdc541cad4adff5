package main

import (
	"log"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"

	"campaignplane/internal/httpapi"
	"campaignplane/pkg/config"
	"campaignplane/pkg/db"
	"campaignplane/pkg/health"
	"campaignplane/pkg/logger"
	"campaignplane/pkg/server"
	"campaignplane/services/campaign"
	"campaignplane/services/dashboard"
	"campaignplane/services/report"
)

func main() {
	opts := []fx.Option{
		config.Module,
		logger.Module,
		db.Module,
		health.Module,
		fx.Provide(
			provideSnowflakeNode,
		),
		campaign.Module,
		dashboard.Module,
		report.Module,
		httpapi.Module,
		fx.Provide(server.ProvideHTTPServer),
		fx.Invoke(
			db.Otel,
			db.Metric,
			server.Run,
		),
		fxLogger,
	}

	if err := fx.ValidateApp(opts...); err != nil {
		log.Fatalf("fx validation failed: %v", err)
	}

	app := fx.New(opts...)

	app.Run()
}

var fxLogger = fx.WithLogger(func(cfg *config.Config, logger *zap.Logger) fxevent.Logger {
	return fxevent.NopLogger
})

func provideSnowflakeNode() (*snowflake.Node, error) {
	return snowflake.NewNode(1)
}
