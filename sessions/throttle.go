package sessions

import (
	"academy/bizerror"
	"academy/common"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

const DefaultLoginRatePerMinute = 10

// LoginThrottle keeps a token bucket per client address. Idle buckets are evicted.
type LoginThrottle struct {
	limit   rate.Limit
	burst   int
	buckets *cache.Cache
}

func NewLoginThrottle(perMinute int) *LoginThrottle {
	if perMinute <= 0 {
		perMinute = DefaultLoginRatePerMinute
	}
	return &LoginThrottle{
		limit:   rate.Every(time.Minute / time.Duration(perMinute)),
		burst:   perMinute,
		buckets: cache.New(10*time.Minute, time.Minute),
	}
}

// LoginThrottleFromEnv reads LOGIN_RATE_PER_MINUTE.
func LoginThrottleFromEnv() *LoginThrottle {
	return NewLoginThrottle(common.EnvInt("LOGIN_RATE_PER_MINUTE", DefaultLoginRatePerMinute))
}

func (t *LoginThrottle) Allow(key string) bool {
	return t.bucket(key).Allow()
}

func (t *LoginThrottle) bucket(key string) *rate.Limiter {
	if v, found := t.buckets.Get(key); found {
		return v.(*rate.Limiter)
	}
	lim := rate.NewLimiter(t.limit, t.burst)
	if err := t.buckets.Add(key, lim, cache.DefaultExpiration); err != nil {
		// lost the race against a concurrent request of the same client
		if v, found := t.buckets.Get(key); found {
			return v.(*rate.Limiter)
		}
	}
	return lim
}

// Filter rejects the request with too_many_requests once the client address ran out of tokens.
func (t *LoginThrottle) Filter() gin.HandlerFunc {
	return func(c *gin.Context) {
		ip := c.ClientIP()
		if !t.Allow(ip) {
			logrus.WithField("ip", ip).Warn("login throttled")
			panic(bizerror.ErrTooManyRequests)
		}
		c.Next()
	}
}
