package main

import (
	"log"

	"authgate/internal/config"
	"authgate/internal/pkg/logger"
	"authgate/internal/stubserver"
)

func main() {
	cfg := config.LoadStub()

	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")
	defer sysLogger.Sync()

	srv := stubserver.New(cfg, sysLogger)
	log.Fatal(srv.Run())
}
