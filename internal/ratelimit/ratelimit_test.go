package ratelimit

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newLimiter(t *testing.T) (*Limiter, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return New(rdb), mr
}

func TestAllowWithinWindow(t *testing.T) {
	l, mr := newLimiter(t)
	ctx := context.Background()

	for i := 1; i <= 3; i++ {
		ok, n, err := l.Allow(ctx, "k", 3, time.Minute)
		require.NoError(t, err)
		assert.True(t, ok)
		assert.EqualValues(t, i, n)
	}
	ok, n, err := l.Allow(ctx, "k", 3, time.Minute)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.EqualValues(t, 4, n)

	// The window restarts once the key expires.
	mr.FastForward(time.Minute + time.Second)
	ok, _, err = l.Allow(ctx, "k", 3, time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestAllowSetsExpiryWithFirstHit(t *testing.T) {
	l, mr := newLimiter(t)
	ctx := context.Background()

	_, _, err := l.Allow(ctx, "k", 3, time.Minute)
	require.NoError(t, err)
	assert.Equal(t, time.Minute, mr.TTL("rl:k"))

	// Later hits keep the window that is already open.
	mr.FastForward(30 * time.Second)
	_, n, err := l.Allow(ctx, "k", 3, time.Minute)
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)
	assert.Equal(t, 30*time.Second, mr.TTL("rl:k"))
}

func TestPerUserMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	l, _ := newLimiter(t)

	r := gin.New()
	r.POST("/x", func(c *gin.Context) {
		if id := c.GetHeader("X-User"); id != "" {
			c.Set("userID", uint(len(id)))
		}
		c.Next()
	}, l.PerUser("x", 2, time.Minute), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})

	do := func(user string) int {
		req := httptest.NewRequest(http.MethodPost, "/x", nil)
		if user != "" {
			req.Header.Set("X-User", user)
		}
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w.Code
	}

	assert.Equal(t, http.StatusUnauthorized, do(""))
	assert.Equal(t, http.StatusNoContent, do("a"))
	assert.Equal(t, http.StatusNoContent, do("a"))
	assert.Equal(t, http.StatusTooManyRequests, do("a"))
	// Another user has its own budget.
	assert.Equal(t, http.StatusNoContent, do("bb"))
}
