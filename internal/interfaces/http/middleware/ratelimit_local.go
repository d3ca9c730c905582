package middleware

import (
	"context"
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"
)

// LocalRateLimiter 进程内令牌桶限流，未启用 Redis 时使用
//
// 每个键一个 rate.Limiter，空闲一段时间后由 go-cache 回收。
type LocalRateLimiter struct {
	burst    int
	limiters *gocache.Cache
	mu       sync.Mutex
}

// NewLocalRateLimiter 创建进程内限流器，burst <= 0 时等于每秒请求数
func NewLocalRateLimiter(burst int, idle time.Duration) *LocalRateLimiter {
	if idle <= 0 {
		idle = 10 * time.Minute
	}
	return &LocalRateLimiter{
		burst:    burst,
		limiters: gocache.New(idle, idle),
	}
}

// Allow 实现 RateLimiter，limit/window 换算为令牌补充速率
func (l *LocalRateLimiter) Allow(_ context.Context, key string, limit int, window time.Duration) (bool, error) {
	return l.limiter(key, limit, window).Allow(), nil
}

func (l *LocalRateLimiter) limiter(key string, limit int, window time.Duration) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	if v, ok := l.limiters.Get(key); ok {
		lim := v.(*rate.Limiter)
		// 访问即续期
		l.limiters.SetDefault(key, lim)
		return lim
	}

	burst := l.burst
	if burst <= 0 {
		burst = limit
	}
	lim := rate.NewLimiter(rate.Limit(float64(limit)/window.Seconds()), burst)
	l.limiters.SetDefault(key, lim)
	return lim
}
