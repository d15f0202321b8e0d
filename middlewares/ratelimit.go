package middlewares

import (
	"net/http"
	"sync"
	"time"

	"InsureCost/utils"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// RateLimiterConfig holds the configuration for the rate limiter
type RateLimiterConfig struct {
	RequestsPerSecond float64
	Burst             int
}

type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// rateLimiterData keeps one limiter per client so a busy tab cannot starve
// the others.
type rateLimiterData struct {
	config  RateLimiterConfig
	mu      sync.Mutex
	clients map[string]*clientLimiter
	sweep   time.Time
}

const limiterIdle = 10 * time.Minute

func (d *rateLimiterData) allow(key string, now time.Time) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if now.Sub(d.sweep) > limiterIdle {
		for k, client := range d.clients {
			if now.Sub(client.lastSeen) > limiterIdle {
				delete(d.clients, k)
			}
		}
		d.sweep = now
	}

	client, ok := d.clients[key]
	if !ok {
		client = &clientLimiter{limiter: rate.NewLimiter(rate.Limit(d.config.RequestsPerSecond), d.config.Burst)}
		d.clients[key] = client
	}
	client.lastSeen = now
	return client.limiter.AllowN(now, 1)
}

// NewRateLimiterMiddleware creates a new rate limiter middleware. Clients are
// keyed by their dashboard tab, or by address before they have one.
func NewRateLimiterMiddleware(config RateLimiterConfig) gin.HandlerFunc {
	data := &rateLimiterData{
		config:  config,
		clients: make(map[string]*clientLimiter),
		sweep:   time.Now(),
	}

	return func(c *gin.Context) {
		key, ok := utils.TabID(c)
		if !ok {
			key = c.ClientIP()
		}

		if !data.allow(key, time.Now()) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error": "rate limit exceeded",
			})
			return
		}

		c.Next()
	}
}
