package main

import (
	"context"
	"log"

	"github.com/gin-gonic/gin"

	"hpoverlay/internal/api"
	"hpoverlay/internal/config"
	"hpoverlay/internal/hub"
	"hpoverlay/internal/metrics"
	"hpoverlay/internal/registry"
	"hpoverlay/internal/service/roster"
	"hpoverlay/internal/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	st, err := store.New(cfg.DataDir)
	if err != nil {
		log.Fatalf("open record store: %v", err)
	}
	reg, err := registry.New(cfg.UploadDir)
	if err != nil {
		log.Fatalf("open upload registry: %v", err)
	}

	collector := metrics.NewCollector()
	viewers := hub.New(collector)
	svc := roster.NewService(st, reg, viewers)

	sweepCtx, sweepCancel := context.WithCancel(context.Background())
	defer sweepCancel()
	reg.StartSweeper(sweepCtx, cfg.SweepInterval, cfg.TempFileMaxAge, collector)

	router := gin.Default()
	handlers := api.NewHandler(svc, reg, viewers, collector)
	handlers.RegisterRoutes(router)

	log.Printf("Server running on http://localhost:%d", cfg.Port)
	if err := router.Run(cfg.Addr()); err != nil {
		log.Fatalf("run server: %v", err)
	}
}
