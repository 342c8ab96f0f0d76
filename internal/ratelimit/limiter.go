// Package ratelimit throttles unauthenticated endpoints with a Redis fixed window.
package ratelimit

import (
	"context"
	"math"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"workspace-identity/internal/apperr"
	"workspace-identity/internal/config"
	"workspace-identity/pkg/logger"
	"workspace-identity/pkg/utils"
)

const keyPrefix = "rl:auth:"

var ErrRateLimited = apperr.New(apperr.RateLimited, "too many requests, slow down")

type Limiter struct {
	rdb    redis.Scripter
	limit  int
	window time.Duration
}

func New(rdb redis.Scripter, cfg config.RateLimitConfig) *Limiter {
	return &Limiter{rdb: rdb, limit: cfg.AuthRequests, window: cfg.AuthWindow}
}

// Allow counts one hit for key. retryAfter is set when the hit is rejected.
func (l *Limiter) Allow(ctx context.Context, key string) (bool, time.Duration, error) {
	res, err := utils.HitFixedWindow(ctx, l.rdb, keyPrefix+key, l.limit, l.window)
	if err != nil {
		return false, 0, err
	}
	return res.Allowed, res.RetryAfter, nil
}

// Middleware limits requests per client IP. Redis failures let the request through.
func (l *Limiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		ok, retryAfter, err := l.Allow(c.Request.Context(), c.ClientIP())
		if err != nil {
			logger.FromGin(c).Warn("rate limiter unavailable", "err", err)
			c.Next()
			return
		}
		if !ok {
			if retryAfter > 0 {
				c.Header("Retry-After", strconv.Itoa(int(math.Ceil(retryAfter.Seconds()))))
			}
			status, body := apperr.ToResponse(ErrRateLimited)
			c.AbortWithStatusJSON(status, body)
			return
		}
		c.Next()
	}
}
