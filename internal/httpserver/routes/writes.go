package routes

import (
	"github.com/MrSnakeDoc/atal/internal/httpserver/deps"
	"github.com/MrSnakeDoc/atal/internal/httpserver/mw"
)

// writeLimit builds the per-IP token bucket of one route family. Each family
// gets its own buckets, so heavy project saves do not throttle user sign-ups.
func writeLimit(d deps.Deps, family string) Middleware {
	return mw.RateLimit(mw.RateLimitConfig{
		Name:              family,
		Burst:             d.RateLimitBurst,
		RefillPerIPPerMin: d.RateLimitRefill,
		MaxEntries:        10000,
		TrustProxy:        d.TrustProxy,
		Logger:            d.Logger,
		Now:               d.TimeNow,
	})
}
