package shipping

import (
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// Tokens are dropped this long before their nominal expiry so in-flight
// requests don't race the provider's clock.
const refreshMargin = 30 * time.Second

// TokenCache holds the gateway access token shared by every request. It is an
// explicitly owned object injected into the Client, and refreshes are
// coalesced: N callers hitting an expired token cause one login.
type TokenCache struct {
	mu     sync.Mutex
	value  string
	expiry time.Time

	group singleflight.Group
}

func NewTokenCache() *TokenCache { return &TokenCache{} }

func (c *TokenCache) get() (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.value == "" || !time.Now().Before(c.expiry.Add(-refreshMargin)) {
		return "", false
	}
	return c.value, true
}

func (c *TokenCache) set(token string, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.value = token
	c.expiry = time.Now().Add(ttl)
}

// invalidate drops the cached token, but only if it is still the one the
// provider rejected; a concurrently refreshed token survives.
func (c *TokenCache) invalidate(rejected string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.value == rejected {
		c.value = ""
		c.expiry = time.Time{}
	}
}
