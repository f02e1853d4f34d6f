package deps

import (
	"time"

	"github.com/MrSnakeDoc/atal/internal/hybrid"
	"github.com/MrSnakeDoc/atal/internal/logger"
)

type Deps struct {
	Logger       logger.Logger
	StartTime    time.Time
	Version      string
	Commit       string
	BuildDate    string
	GoVersion    string
	TimeNow      func() time.Time // for testing, defaults to time.Now
	AllowedHosts []string         // Host headers allowed to access the API
	AllowedCIDRS []string         // IPs allowed to reach readyz and the admin endpoints
	TrustProxy   bool             // true if running behind a trusted reverse proxy (e.g., cloudflared)
	CORSOrigins  []string         // Origins allowed by CORS; empty => "*"

	RateLimitBurst  int // write requests allowed in a burst per client IP
	RateLimitRefill int // write requests regained per minute per client IP

	Data *hybrid.Service // fallback dispatcher serving every data route
}
