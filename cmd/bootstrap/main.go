package main

import (
	"context"
	"os"

	"github.com/aws/aws-xray-sdk-go/xray"
	"github.com/joho/godotenv"
	adapterlogger "institute-admin/internal/adapters/logger"
	"institute-admin/internal/platform/app"
)

func main() {
	_ = godotenv.Load()
	logger := adapterlogger.New()

	cfg, err := app.LoadConfig()
	if err != nil {
		logger.Error(context.Background(), "configuration error", "error", err)
		os.Exit(1)
	}
	xray.Configure(xray.Config{LogLevel: "error"})

	e, err := app.Build(context.Background(), cfg, logger)
	if err != nil {
		logger.Error(context.Background(), "failed to build server", "error", err)
		os.Exit(1)
	}
	logger.Info(context.Background(), "starting http server", "port", cfg.Port)
	e.Logger.Fatal(e.Start(":" + cfg.Port))
}
