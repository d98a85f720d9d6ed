package utils

import (
	"context"
	"net"
	"strconv"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/mentorhub/forum/config"
)

var (
	redisClient *redis.Client
	redisMu     sync.Mutex
	redisInit   bool
)

// GetRedis returns a singleton Redis client, or nil when Redis is disabled.
func GetRedis() *redis.Client {
	redisMu.Lock()
	defer redisMu.Unlock()
	if redisInit {
		return redisClient
	}
	redisInit = true

	cfg := config.Get()
	if !cfg.RedisEnabled {
		return nil
	}
	redisClient = redis.NewClient(&redis.Options{
		Addr:         net.JoinHostPort(cfg.RedisHost, strconv.Itoa(cfg.RedisPort)),
		Password:     cfg.RedisPassword,
		DB:           cfg.RedisDB,
		DialTimeout:  3 * time.Second,
		ReadTimeout:  2 * time.Second,
		WriteTimeout: 2 * time.Second,
	})
	// ping to surface misconfiguration early; callers still fall back on errors
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := redisClient.Ping(ctx).Err(); err != nil {
		Sugar.Warnf("redis ping failed addr=%s err=%v", redisClient.Options().Addr, err)
	}
	return redisClient
}

// SetRedis installs c as the shared client. Passing nil disables Redis.
func SetRedis(c *redis.Client) {
	redisMu.Lock()
	defer redisMu.Unlock()
	redisClient = c
	redisInit = true
}
