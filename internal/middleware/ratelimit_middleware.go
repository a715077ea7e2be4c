package middleware

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/bamboofin/bamboo_portal/internal/cache"
	"github.com/bamboofin/bamboo_portal/internal/utils"
)

// Counter is the shared store of failed login attempts.
type Counter interface {
	Incr(ctx context.Context, key string, ttl time.Duration) (int64, error)
	Get(ctx context.Context, key string) (string, error)
	Delete(ctx context.Context, keys ...string) error
}

// LoginLimiter blocks an IP after too many failed logins within a window.
// Counts live in Redis; when Redis fails the limiter falls back to a
// per-process count.
type LoginLimiter struct {
	counter Counter
	local   *InvalidAuthRateLimiter
	max     int
	window  time.Duration
}

// NewLoginLimiter creates a limiter allowing max failures per window.
func NewLoginLimiter(counter Counter, max int, window time.Duration) *LoginLimiter {
	if max <= 0 {
		max = 5
	}
	if window <= 0 {
		window = 15 * time.Minute
	}
	return &LoginLimiter{
		counter: counter,
		local:   NewInvalidAuthRateLimiter(max, window),
		max:     max,
		window:  window,
	}
}

func loginKey(ip string) string { return "login:fail:" + ip }

// Blocked reports whether ip is over the limit.
func (l *LoginLimiter) Blocked(ctx context.Context, ip string) bool {
	raw, err := l.counter.Get(ctx, loginKey(ip))
	switch {
	case errors.Is(err, cache.ErrMiss):
		return false
	case err != nil:
		log.Warn().Err(err).Msg("Login limiter store unavailable, using local count")
		return l.local.Blocked(ip)
	}
	n, _ := strconv.Atoi(raw)
	return n >= l.max
}

// Fail records a failed login from ip.
func (l *LoginLimiter) Fail(ctx context.Context, ip string) {
	if _, err := l.counter.Incr(ctx, loginKey(ip), l.window); err != nil {
		log.Warn().Err(err).Msg("Login limiter store unavailable, using local count")
		l.local.Fail(ip)
	}
}

// Reset clears the failures of ip after a successful login.
func (l *LoginLimiter) Reset(ctx context.Context, ip string) {
	if err := l.counter.Delete(ctx, loginKey(ip)); err != nil {
		log.Warn().Err(err).Msg("Failed to reset login attempts")
	}
	l.local.Reset(ip)
}

// Guard rejects login requests from blocked IPs.
func (l *LoginLimiter) Guard() gin.HandlerFunc {
	return func(c *gin.Context) {
		if l.Blocked(c.Request.Context(), c.ClientIP()) {
			utils.Error(c, 429, "TOO_MANY_REQUESTS", "Trop de tentatives de connexion, réessayez plus tard")
			c.Abort()
			return
		}
		c.Next()
	}
}

// InvalidAuthRateLimiter counts failed logins per IP in memory.
type InvalidAuthRateLimiter struct {
	mu       sync.Mutex
	attempts map[string]*attemptInfo
	max      int
	window   time.Duration
	now      func() time.Time
}

type attemptInfo struct {
	count   int
	firstAt time.Time
}

// NewInvalidAuthRateLimiter creates an in-memory limiter.
func NewInvalidAuthRateLimiter(max int, window time.Duration) *InvalidAuthRateLimiter {
	return &InvalidAuthRateLimiter{
		attempts: make(map[string]*attemptInfo),
		max:      max,
		window:   window,
		now:      time.Now,
	}
}

// Fail records one failed attempt from ip.
func (r *InvalidAuthRateLimiter) Fail(ip string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	r.cleanup(now)
	info, exists := r.attempts[ip]
	if !exists {
		r.attempts[ip] = &attemptInfo{count: 1, firstAt: now}
		return
	}
	info.count++
}

// Blocked reports whether ip reached the limit inside the window.
func (r *InvalidAuthRateLimiter) Blocked(ip string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	info, exists := r.attempts[ip]
	if !exists || r.now().Sub(info.firstAt) > r.window {
		return false
	}
	return info.count >= r.max
}

// Reset forgets ip.
func (r *InvalidAuthRateLimiter) Reset(ip string) {
	r.mu.Lock()
	delete(r.attempts, ip)
	r.mu.Unlock()
}

func (r *InvalidAuthRateLimiter) cleanup(now time.Time) {
	for ip, info := range r.attempts {
		if now.Sub(info.firstAt) > r.window {
			delete(r.attempts, ip)
		}
	}
}
