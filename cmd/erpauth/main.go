package main

import (
	"log"

	"go.uber.org/zap"

	"github.com/you/erpauth/internal/app"
	"github.com/you/erpauth/internal/config"
	"github.com/you/erpauth/internal/logging"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger, err := logging.New(cfg.Env)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	if err := app.Run(cfg, logger); err != nil {
		logger.Fatal("app", zap.Error(err))
	}
}
