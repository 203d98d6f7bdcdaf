// Package bootstrap holds start-up wiring shared by the binaries.
package bootstrap

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	redisad "estate_dashboard/internal/adapters/redis"
	"estate_dashboard/internal/domain"
	"estate_dashboard/internal/shared"
)

// Cache connects to Redis when REDIS_ADDR is set. An unreachable Redis is
// logged and skipped; the returned close func is always safe to call.
func Cache(ctx context.Context, cfg shared.Config) (domain.Cache, func()) {
	if !cfg.CacheEnabled() {
		log.Info().Msg("cache disabled")
		return nil, func() {}
	}
	c := redisad.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)

	pctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := c.Ping(pctx); err != nil {
		log.Warn().Err(err).Str("addr", cfg.RedisAddr).Msg("redis not reachable, running without cache")
		_ = c.Close()
		return nil, func() {}
	}
	log.Info().Str("addr", cfg.RedisAddr).Msg("redis cache ok")
	return c, func() { _ = c.Close() }
}
