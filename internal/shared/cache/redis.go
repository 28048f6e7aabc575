package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/Fazlibeqir/DeliverXY-sub000/internal/shared/config"
	"github.com/Fazlibeqir/DeliverXY-sub000/internal/shared/logger"

	"github.com/redis/go-redis/v9"
)

// NewClient создает подключение к Redis и проверяет его ping-ом
func NewClient(ctx context.Context, cfg config.RedisConfig, log *logger.Logger) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr: cfg.Addr(),
		DB:   cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}

	log.Info(logger.Entry{
		Action:  "redis_connected",
		Message: fmt.Sprintf("connected to %s", cfg.Addr()),
	})

	return client, nil
}

// Close безопасно закрывает клиент с логированием
func Close(client *redis.Client, log *logger.Logger) {
	if client != nil {
		_ = client.Close()
		log.Info(logger.Entry{Action: "redis_closed", Message: "redis client closed"})
	}
}
