package main

import (
	"context"
	"os"

	awslambda "github.com/aws/aws-lambda-go/lambda"
	"github.com/aws/aws-xray-sdk-go/xray"
	adapterlogger "institute-admin/internal/adapters/logger"
	"institute-admin/internal/platform/app"
	platformlambda "institute-admin/internal/platform/lambda"
)

func main() {
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
	awslambda.Start(platformlambda.NewLambdaHandler(e))
}
