package mw

import (
	"net/http"

	"github.com/MrSnakeDoc/atal/internal/logger"
	"github.com/MrSnakeDoc/atal/internal/utils"
)

// AllowOnlyCIDRS guards the readiness and admin routes: only client IPs
// inside one of the allowed CIDRs (or equal to a listed IP) get through.
// An empty list disables the check. Entries that do not parse are logged
// and ignored.
func AllowOnlyCIDRS(allowed []string, trustProxy bool, log logger.Logger) func(http.Handler) http.Handler {
	m, invalid := utils.NewIPMatcher(allowed)
	if len(invalid) > 0 {
		log.Warn("ignoring invalid CIDR entries", logger.Strings("entries", invalid))
	}
	if m.IsEmpty() {
		log.Debug("AllowOnlyCIDRS: no rules, passthrough mode")
		return func(next http.Handler) http.Handler { return next }
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := utils.ClientIP(r, trustProxy)
			if !m.Allow(ip) {
				log.Warn("request rejected: client IP not allowed",
					logger.String("client_ip", ip),
					logger.String("method", r.Method),
					logger.String("path", r.URL.Path))
				rejectJSON(w, http.StatusForbidden, "client IP not allowed")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
