package ratelimit

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/noah-isme/aw-admin-api/pkg/config"
	appErrors "github.com/noah-isme/aw-admin-api/pkg/errors"
	"github.com/noah-isme/aw-admin-api/pkg/response"
)

// bucketScript refills and takes one token atomically.
// It returns {allowed, remaining, retry_after_ms}.
var bucketScript = redis.NewScript(`
local key = KEYS[1]
local now_ms = tonumber(ARGV[1])
local capacity = tonumber(ARGV[2])
local refill = tonumber(ARGV[3])
local interval_ms = tonumber(ARGV[4])
local ttl = tonumber(ARGV[5])

local state = redis.call('HMGET', key, 'tokens', 'ts')
local tokens = tonumber(state[1])
local ts = tonumber(state[2])
if tokens == nil or ts == nil then
  tokens = capacity
  ts = now_ms
end

if interval_ms > 0 and refill > 0 then
  local steps = math.floor(math.max(0, now_ms - ts) / interval_ms)
  if steps > 0 then
    tokens = math.min(capacity, tokens + steps * refill)
    ts = ts + steps * interval_ms
  end
end

local allowed = 0
local retry_ms = 0
if tokens > 0 then
  allowed = 1
  tokens = tokens - 1
else
  retry_ms = math.max(0, interval_ms - (now_ms - ts))
end

redis.call('HSET', key, 'tokens', tokens, 'ts', ts)
redis.call('EXPIRE', key, ttl)
return { allowed, tokens, retry_ms }
`)

// Decision is the outcome of one bucket take.
type Decision struct {
	Allowed    bool
	Remaining  int64
	RetryAfter time.Duration
}

// TokenBucket limits requests per client IP and route using Redis.
type TokenBucket struct {
	cfg    config.RateLimitConfig
	client *redis.Client
	logger *zap.Logger
	now    func() time.Time
}

// NewTokenBucket builds a limiter. A nil client disables limiting.
func NewTokenBucket(cfg config.RateLimitConfig, client *redis.Client, logger *zap.Logger) *TokenBucket {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TokenBucket{cfg: cfg, client: client, logger: logger, now: time.Now}
}

// Middleware rejects requests with 429 once the caller's bucket is empty.
// Redis failures let the request through.
func (t *TokenBucket) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !t.cfg.Enabled || t.client == nil {
			c.Next()
			return
		}

		key := t.key(c)
		decision, err := t.take(c, key)
		if err != nil {
			t.logger.Warn("rate limiter unavailable", zap.String("key", key), zap.Error(err))
			c.Next()
			return
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(t.cfg.Capacity))
		c.Header("X-RateLimit-Remaining", strconv.FormatInt(decision.Remaining, 10))
		if !decision.Allowed {
			secs := int(math.Ceil(decision.RetryAfter.Seconds()))
			c.Header("Retry-After", strconv.Itoa(secs))
			t.logger.Info("rate limit exceeded", zap.String("key", key), zap.Int("retry_after", secs))
			response.Error(c, appErrors.ErrTooManyRequests)
			c.Abort()
			return
		}
		c.Next()
	}
}

func (t *TokenBucket) take(c *gin.Context, key string) (Decision, error) {
	args := []interface{}{
		t.now().UnixMilli(),
		t.cfg.Capacity,
		t.cfg.RefillTokens,
		t.cfg.RefillInterval.Milliseconds(),
		int64(t.cfg.TTL / time.Second),
	}
	raw, err := bucketScript.Run(c.Request.Context(), t.client, []string{key}, args...).Result()
	if err != nil {
		return Decision{}, err
	}
	return parseDecision(raw)
}

func (t *TokenBucket) key(c *gin.Context) string {
	ip := c.ClientIP()
	if ip == "" {
		ip = "unknown"
	}
	route := c.FullPath()
	if route == "" {
		route = c.Request.URL.Path
	}
	return strings.Join([]string{t.cfg.Prefix, ip, c.Request.Method + " " + route}, ":")
}

func parseDecision(raw interface{}) (Decision, error) {
	values, ok := raw.([]interface{})
	if !ok || len(values) != 3 {
		return Decision{}, fmt.Errorf("unexpected limiter result %#v", raw)
	}
	return Decision{
		Allowed:    toInt64(values[0]) == 1,
		Remaining:  toInt64(values[1]),
		RetryAfter: time.Duration(toInt64(values[2])) * time.Millisecond,
	}, nil
}

func toInt64(v interface{}) int64 {
	switch n := v.(type) {
	case int64:
		return n
	case int:
		return int64(n)
	case float64:
		return int64(n)
	case string:
		parsed, _ := strconv.ParseInt(n, 10, 64)
		return parsed
	}
	return 0
}
