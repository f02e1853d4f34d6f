package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	ListenPort      string        // ex: ":8080"
	ShutdownTimeout time.Duration // ex: 5s

	LogLevel  string // "debug" | "info" | "warn" | "error"
	PrettyLog bool   // true => zap dev (color), false => zap prod (JSON)

	// Local store
	DataDir string // directory holding local blobs; empty => in-memory only

	// Fallback dispatcher
	ProbeInterval  time.Duration // how long a connectivity check result is trusted (default: 60s)
	ProbeTimeout   time.Duration // timeout of the reachability ping (default: 2s)
	RetryAttempts  int           // remote attempts per operation (default: 3)
	RetryBaseDelay time.Duration // first backoff delay, doubled per attempt (default: 1s)
	RetryTimeout   time.Duration // per-attempt timeout (default: 10s)
	SeedOnStart    bool          // install default components when the catalog is empty
	GCInterval     time.Duration // how often dangling remote index entries are swept (default: 1h)

	// Redis (remote store)
	RedisAddr             string        // ex: "localhost:6379"
	RedisUser             string        // optional
	RedisPassword         string        // optional
	RedisPasswordRequired bool          // true => require password, false => allow empty password
	RedisDB               int           // Redis DB number
	RedisKeyPrefix        string        // namespace for every document key (default: "atal")
	RedisDT               time.Duration // Redis dial timeout (ex: 5s)
	RedisRT               time.Duration // Redis read timeout (ex: 3s)
	RedisWT               time.Duration // Redis write timeout (ex: 3s)
	RedisMaxWait          time.Duration // max wait between startup retries (ex: 5s)
	RedisPingTimeout      time.Duration // timeout for each startup ping (ex: 2s)
	RedisPoolSize         int           // Redis connection pool size
	RedisConnectTimeout   time.Duration // total time to wait for Redis at startup before going offline (ex: 10s)
	RedisRetryInterval    time.Duration // initial wait between startup retries (grows exponentially)
	RedisWarnThreshold    int           // warn after this many attempts

	AllowedHosts []string // optional, restrict access to specific Host headers
	AllowedCIDRS []string // optional, restrict access to admin endpoints (e.g. "1.2.3.4, 10.0.0.0/8")
	TrustProxy   bool     // true => trust X-Forwarded-For headers
	CORSOrigins  []string // browser origins allowed to call the API; empty => "*"

	RateLimitBurst  int // write requests allowed in a burst per client IP
	RateLimitRefill int // write requests regained per minute per client IP
}

// Load reads the configuration from the environment. Values found in
// .env.local and .env are used for keys not already set.
func Load() *Config {
	loadEnvFiles(".env.local", ".env")

	cfg := &Config{
		// Server settings
		ListenPort:      getenv("ATAL_LISTEN_PORT", ":8080"),
		ShutdownTimeout: mustDuration("ATAL_SHUTDOWN_TIMEOUT", 5*time.Second),

		// Logging
		LogLevel:  getenv("ATAL_LOG_LEVEL", "info"),
		PrettyLog: mustBool("ATAL_PRETTY_LOG", true),

		// Local store
		DataDir: getenv("ATAL_DATA_DIR", "./data"),

		// Dispatcher
		ProbeInterval:  mustDuration("ATAL_PROBE_INTERVAL", 60*time.Second),
		ProbeTimeout:   mustDuration("ATAL_PROBE_TIMEOUT", 2*time.Second),
		RetryAttempts:  getenvInt("ATAL_RETRY_ATTEMPTS", 3),
		RetryBaseDelay: mustDuration("ATAL_RETRY_BASE_DELAY", time.Second),
		RetryTimeout:   mustDuration("ATAL_RETRY_TIMEOUT", 10*time.Second),
		SeedOnStart:    mustBool("ATAL_SEED_ON_START", true),
		GCInterval:     mustDuration("ATAL_GC_INTERVAL", time.Hour),

		// Redis settings
		RedisAddr:             getenv("ATAL_REDIS_ADDR", "localhost:6379"),
		RedisUser:             getenv("ATAL_REDIS_USERNAME", ""),
		RedisPasswordRequired: mustBool("ATAL_REDIS_PASSWORD_REQUIRED", false),
		RedisPassword:         getenv("ATAL_REDIS_PASSWORD", ""),
		RedisDB:               getenvInt("ATAL_REDIS_DB", 0),
		RedisKeyPrefix:        getenv("ATAL_REDIS_KEY_PREFIX", "atal"),
		RedisDT:               mustDuration("REDIS_DIAL_TIMEOUT", 5*time.Second),
		RedisRT:               mustDuration("REDIS_READ_TIMEOUT", 3*time.Second),
		RedisWT:               mustDuration("REDIS_WRITE_TIMEOUT", 3*time.Second),
		RedisMaxWait:          mustDuration("REDIS_MAX_WAIT", 5*time.Second),
		RedisPingTimeout:      mustDuration("REDIS_PING_TIMEOUT", 2*time.Second),
		RedisPoolSize:         getenvInt("REDIS_POOL_SIZE", 10),
		RedisConnectTimeout:   mustDuration("REDIS_CONNECT_TIMEOUT", 10*time.Second),
		RedisRetryInterval:    mustDuration("REDIS_RETRY_INTERVAL", time.Second),
		RedisWarnThreshold:    getenvInt("REDIS_WARN_THRESHOLD", 3),

		// Access restrictions
		AllowedHosts: splitAndTrim(getenv("ATAL_ALLOWED_HOSTS", "")),
		AllowedCIDRS: parseAllowedIPs(getenv("ATAL_ALLOWED_CIDRS", "")),
		TrustProxy:   mustBool("ATAL_TRUST_PROXY", false),
		CORSOrigins:  splitAndTrim(getenv("ATAL_CORS_ORIGINS", "")),

		RateLimitBurst:  getenvInt("ATAL_RATE_LIMIT_BURST", 20),
		RateLimitRefill: getenvInt("ATAL_RATE_LIMIT_REFILL", 60),
	}

	cfg.validate()

	// Log config only in debug mode with redacted sensitive fields
	if cfg.LogLevel == "debug" {
		cfgCopy := *cfg
		cfgCopy.RedisPassword = "***REDACTED***"
		if cfg.RedisUser != "" {
			cfgCopy.RedisUser = "***REDACTED***"
		}
		log.Printf("[DEBUG] cfg: %+v\n", cfgCopy)
	}

	return cfg
}

// validate panics on settings the service cannot run with.
func (cfg *Config) validate() {
	if cfg.RedisPasswordRequired && cfg.RedisPassword == "" {
		panic("❌ FATAL: ATAL_REDIS_PASSWORD is required when ATAL_REDIS_PASSWORD_REQUIRED=true")
	}
	if cfg.RetryAttempts < 1 {
		panic(fmt.Sprintf("❌ FATAL: ATAL_RETRY_ATTEMPTS must be >= 1, got %d", cfg.RetryAttempts))
	}
	if cfg.ProbeInterval <= 0 {
		panic(fmt.Sprintf("❌ FATAL: ATAL_PROBE_INTERVAL must be > 0, got %v", cfg.ProbeInterval))
	}
	if cfg.RetryTimeout <= 0 {
		panic(fmt.Sprintf("❌ FATAL: ATAL_RETRY_TIMEOUT must be > 0, got %v", cfg.RetryTimeout))
	}
}

// loadEnvFiles loads the first value found for each key across files.
// Missing files are ignored; the process environment always wins.
func loadEnvFiles(files ...string) {
	for _, f := range files {
		if _, err := os.Stat(f); err != nil {
			continue
		}
		_ = godotenv.Load(f)
	}
}

// helpers
func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

func mustBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return def
}

func mustDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func parseAllowedIPs(allowed string) []string {
	if allowed == "" {
		return nil
	}
	ips := make([]string, 0, 4)
	for _, ip := range splitAndTrim(allowed) {
		if ip != "" {
			ips = append(ips, ip)
		}
	}
	return ips
}

func splitAndTrim(s string) []string {
	if s == "" {
		return nil
	}
	raw := strings.Split(s, ",")
	parts := make([]string, 0, len(raw))
	for _, part := range raw {
		trimmed := strings.TrimSpace(part)
		// Remove surrounding quotes if present
		trimmed = strings.Trim(trimmed, `"'`)
		if trimmed != "" {
			parts = append(parts, trimmed)
		}
	}
	return parts
}
