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
	if err := cfg.Validate(config.VariantWebServer); err != nil {
		logger.WithError(err).Fatal("Invalid configuration")
	}

	logger.Configure(cfg.LogLevel, cfg.LogFormat)
	if cfg.LogLevel != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}

	c, err := container.NewContainer(context.Background(), cfg, config.VariantWebServer)
	if err != nil {
		logger.WithError(err).Fatal("Failed to initialize container")
	}
	defer c.Close()

	if err := transport.ListenAndServe(cfg.ServerAddress(), c.WebHandler(), cfg.RequestTimeout); err != nil {
		logger.WithError(err).Error("Server stopped")
	}
}
