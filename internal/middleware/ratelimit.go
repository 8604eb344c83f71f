package middleware

import (
	"fmt"
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"

	"github.com/iliyamo/seating-chart/internal/config"
)

// Token bucket kept in a Redis hash; returns {allowed, tokens, retry_after_ms}.
var loginBucket = redis.NewScript(`
	local key = KEYS[1]
	local now_ms = tonumber(ARGV[1])
	local capacity = tonumber(ARGV[2])
	local interval_ms = tonumber(ARGV[3])
	local ttl_seconds = tonumber(ARGV[4])

	local state = redis.call('HMGET', key, 'tokens', 'last_refill_ms')
	local tokens = tonumber(state[1])
	local last_refill = tonumber(state[2])
	if tokens == nil or last_refill == nil then
		tokens = capacity
		last_refill = now_ms
	end

	if interval_ms > 0 then
		local intervals = math.floor(math.max(0, now_ms - last_refill) / interval_ms)
		if intervals > 0 then
			tokens = math.min(capacity, tokens + intervals)
			last_refill = last_refill + (intervals * interval_ms)
		end
	end

	local allowed = 0
	local retry_after_ms = 0
	if tokens > 0 then
		allowed = 1
		tokens = tokens - 1
	else
		retry_after_ms = math.max(0, interval_ms - (now_ms - last_refill))
	end

	redis.call('HSET', key, 'tokens', tokens, 'last_refill_ms', last_refill)
	redis.call('EXPIRE', key, ttl_seconds)
	return { allowed, tokens, retry_after_ms }
`)

// LoginThrottle limits requests per client IP.  With a Redis client the
// bucket lives in Redis; otherwise each IP gets an in-process limiter.
// Redis errors let the request through.
func LoginThrottle(cfg config.LoginLimitConfig, rdb *redis.Client) echo.MiddlewareFunc {
	if !cfg.Enabled {
		return func(next echo.HandlerFunc) echo.HandlerFunc { return next }
	}
	if rdb == nil {
		return localThrottle(cfg)
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			key := fmt.Sprintf("%s:login:%s", cfg.Prefix, clientIP(c))
			args := []interface{}{
				time.Now().UnixMilli(),
				cfg.Capacity,
				cfg.RefillInterval.Milliseconds(),
				int64(cfg.TTL / time.Second),
			}
			vals, err := loginBucket.Run(c.Request().Context(), rdb, []string{key}, args...).Int64Slice()
			if err != nil || len(vals) != 3 {
				c.Logger().Warnf("[ratelimit] redis error for key=%s: %v", key, err)
				return next(c)
			}
			setLimitHeaders(c, cfg.Capacity, vals[1])
			if vals[0] != 1 {
				return tooMany(c, time.Duration(vals[2])*time.Millisecond)
			}
			return next(c)
		}
	}
}

func localThrottle(cfg config.LoginLimitConfig) echo.MiddlewareFunc {
	var (
		mu       sync.Mutex
		limiters = make(map[string]*rate.Limiter)
	)
	every := rate.Every(cfg.RefillInterval)
	if cfg.RefillInterval <= 0 {
		every = rate.Inf
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ip := clientIP(c)
			mu.Lock()
			l, ok := limiters[ip]
			if !ok {
				l = rate.NewLimiter(every, cfg.Capacity)
				limiters[ip] = l
			}
			mu.Unlock()

			r := l.Reserve()
			if d := r.Delay(); d > 0 {
				r.Cancel()
				setLimitHeaders(c, cfg.Capacity, 0)
				return tooMany(c, d)
			}
			setLimitHeaders(c, cfg.Capacity, int64(l.Tokens()))
			return next(c)
		}
	}
}

func clientIP(c echo.Context) string {
	if ip := c.RealIP(); ip != "" {
		return ip
	}
	return "unknown"
}

func setLimitHeaders(c echo.Context, limit int, remaining int64) {
	c.Response().Header().Set("X-RateLimit-Limit", strconv.Itoa(limit))
	c.Response().Header().Set("X-RateLimit-Remaining", strconv.FormatInt(remaining, 10))
}

func tooMany(c echo.Context, retry time.Duration) error {
	secs := int(math.Ceil(retry.Seconds()))
	c.Response().Header().Set("Retry-After", strconv.Itoa(secs))
	return c.JSON(http.StatusTooManyRequests, echo.Map{
		"error":       "too many login attempts",
		"retry_after": secs,
	})
}
