// Command functions is the Azure Functions custom handler. The Functions host
// starts it and forwards invocations to FUNCTIONS_CUSTOMHANDLER_PORT.
package main

import (
	"context"

	"github.com/jimmyshah83/doc-intellij-poc/internal/config"
	"github.com/jimmyshah83/doc-intellij-poc/internal/container"
	"github.com/jimmyshah83/doc-intellij-poc/internal/logger"
	"github.com/jimmyshah83/doc-intellij-poc/internal/transport"

	"github.com/gin-gonic/gin"
)

func main() {
	if err := config.LoadDotEnv(""); err != nil {
		logger.WithError(err).Warn("Could not load .env file")
	}

	cfg, err := config.LoadFromEnv()
	if err != nil {
		logger.WithError(err).Fatal("Failed to load config")
	}
	if err := cfg.Validate(config.VariantFunction); err != nil {
		logger.WithError(err).Fatal("Invalid configuration")
	}

	logger.Configure(cfg.LogLevel, cfg.LogFormat)
	if cfg.LogLevel != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}

	c, err := container.NewContainer(context.Background(), cfg, config.VariantFunction)
	if err != nil {
		logger.WithError(err).Fatal("Failed to initialize container")
	}
	defer c.Close()

	if err := transport.ListenAndServe(cfg.ServerAddress(), c.FunctionsHandler(), cfg.RequestTimeout); err != nil {
		logger.WithError(err).Error("Custom handler stopped")
	}
}
