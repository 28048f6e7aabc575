package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/Fazlibeqir/DeliverXY-sub000/internal/bootstrap"
	"github.com/Fazlibeqir/DeliverXY-sub000/internal/shared/config"
	"github.com/Fazlibeqir/DeliverXY-sub000/internal/shared/logger"
)

func main() {
	cfg := config.Load()

	log := logger.NewLogger("courier-service", cfg.Service.LogLevel)
	defer log.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	bootstrap.Run(ctx, cfg, log)
}
