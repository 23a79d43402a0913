// Copyright (c) 2025 Northbound System
// Author: Nicholas Skitch
package config

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/northbound/pagechunk/internal/logger"
)

// NewRedisClient creates a Redis client from the redis section and pings it.
// Returns a ready-to-use Redis client or an error.
func NewRedisClient(ctx context.Context, cfg RedisConfig) (*redis.Client, error) {
	logger.Debugf("NewRedisClient: addr=%s db=%d passwordSet=%v", cfg.Addr, cfg.DB, cfg.Password != "")

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		DB:       cfg.DB,
		Password: cfg.Password,
	})

	// Test connection
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to ping redis at %s: %w", cfg.Addr, err)
	}

	logger.Debugf("NewRedisClient: successfully connected to Redis")
	return client, nil
}
