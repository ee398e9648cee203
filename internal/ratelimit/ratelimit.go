package ratelimit

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

// Limiter counts hits per key in fixed windows stored in redis.
type Limiter struct {
	R *redis.Client
}

func New(r *redis.Client) *Limiter { return &Limiter{R: r} }

// NewFromAddr connects to redis at addr.
func NewFromAddr(addr string) *Limiter {
	rdb := redis.NewClient(&redis.Options{
		Addr:         addr,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  2 * time.Second,
		WriteTimeout: 2 * time.Second,
	})
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		log.Printf("Warning: redis at %s not reachable: %v", addr, err)
	}
	return New(rdb)
}

// Allow records a hit for key and reports whether it is within limit.
// The window is opened together with the first hit in one MULTI block, so
// a counter never exists without its expiry.
func (l *Limiter) Allow(ctx context.Context, key string, limit int64, window time.Duration) (bool, int64, error) {
	k := "rl:" + key
	var incr *redis.IntCmd
	_, err := l.R.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.SetNX(ctx, k, 0, window)
		incr = pipe.Incr(ctx, k)
		return nil
	})
	if err != nil {
		return false, 0, err
	}
	n := incr.Val()
	return n <= limit, n, nil
}

// PerUser limits an authenticated route per user. It must be used after
// the auth middleware. When redis fails the request is let through.
func (l *Limiter) PerUser(name string, limit int64, window time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, exists := c.Get("userID")
		if !exists {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
			return
		}

		key := fmt.Sprintf("%s:%d", name, userID.(uint))
		ok, n, err := l.Allow(c.Request.Context(), key, limit, window)
		if err != nil {
			log.Printf("ratelimit: %s: %v", key, err)
			c.Next()
			return
		}

		c.Header("X-RateLimit-Limit", strconv.FormatInt(limit, 10))
		if !ok {
			c.Header("Retry-After", strconv.Itoa(int(window.Seconds())))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error": fmt.Sprintf("Rate limit exceeded (count=%d, limit=%d)", n, limit),
			})
			return
		}
		c.Next()
	}
}
