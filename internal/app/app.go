package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/MrSnakeDoc/atal/internal/config"
	"github.com/MrSnakeDoc/atal/internal/connectivity"
	"github.com/MrSnakeDoc/atal/internal/domain"
	"github.com/MrSnakeDoc/atal/internal/httpserver"
	"github.com/MrSnakeDoc/atal/internal/httpserver/deps"
	"github.com/MrSnakeDoc/atal/internal/hybrid"
	"github.com/MrSnakeDoc/atal/internal/logger"
	"github.com/MrSnakeDoc/atal/internal/redis"
	"github.com/MrSnakeDoc/atal/internal/retry"
	"github.com/MrSnakeDoc/atal/internal/scheduler"
	"github.com/MrSnakeDoc/atal/internal/store/local"
	redisstore "github.com/MrSnakeDoc/atal/internal/store/redis"
	"github.com/MrSnakeDoc/atal/internal/version"
)

// Options change how the application is assembled.
type Options struct {
	LocalOnly bool // never contact Redis
	Ephemeral bool // keep local data in memory instead of ATAL_DATA_DIR
}

type App struct {
	cfg         *config.Config
	logger      logger.Logger
	redisClient *goredis.Client
	prober      *connectivity.Prober
	local       *local.Service
	data        *hybrid.Service
	watcher     *scheduler.ConnectivityWatcher
	gc          *scheduler.GarbageCollector // nil in local-only mode
}

// New loads the configuration and wires the stores and the dispatcher.
// An unreachable Redis is not an error: the app starts offline.
func New(opts Options) (*App, error) {
	cfg := config.Load()
	loggerClient := logger.New(cfg.LogLevel, cfg.PrettyLog)

	localStore, err := newLocalStore(cfg, opts)
	if err != nil {
		return nil, err
	}

	a := &App{cfg: cfg, logger: loggerClient, local: localStore}

	var store *redisstore.Store
	var remote hybrid.Remote
	var checker connectivity.Checker
	if opts.LocalOnly {
		loggerClient.Info("local-only mode, remote store disabled")
	} else {
		store, err = a.connectRedis()
		if err != nil {
			return nil, err
		}
		remote = store
		checker = store
	}

	a.prober = connectivity.NewProber(checker, cfg.ProbeInterval, loggerClient)
	a.data = hybrid.New(remote, localStore, a.prober, retry.Policy{
		MaxAttempts: cfg.RetryAttempts,
		BaseDelay:   cfg.RetryBaseDelay,
		Timeout:     cfg.RetryTimeout,
	}, loggerClient)
	a.watcher = scheduler.NewConnectivityWatcher(a.prober, loggerClient, cfg.ProbeInterval, a.onConnectivityChange)
	if store != nil {
		a.gc = scheduler.NewGarbageCollector(store, a.prober, redisstore.Collections, loggerClient, cfg.GCInterval)
	}

	return a, nil
}

func newLocalStore(cfg *config.Config, opts Options) (*local.Service, error) {
	if opts.Ephemeral || cfg.DataDir == "" {
		return local.NewService(local.NewMemoryBlobs()), nil
	}
	blobs, err := local.NewFileBlobs(cfg.DataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to open local data dir: %w", err)
	}
	return local.NewService(blobs), nil
}

func (a *App) connectRedis() (*redisstore.Store, error) {
	cfg := a.cfg
	a.logger.Infof("Connecting to Redis at %s", cfg.RedisAddr)
	client, err := redis.New(redis.ConnectOptions{
		Addr:           cfg.RedisAddr,
		User:           cfg.RedisUser,
		Password:       cfg.RedisPassword,
		RedisDB:        cfg.RedisDB,
		DialTimeout:    cfg.RedisDT,
		ReadTimeout:    cfg.RedisRT,
		WriteTimeout:   cfg.RedisWT,
		PoolSize:       cfg.RedisPoolSize,
		ConnectTimeout: cfg.RedisConnectTimeout,
		RetryInterval:  cfg.RedisRetryInterval,
		MaxWait:        cfg.RedisMaxWait,
		PingTimeout:    cfg.RedisPingTimeout,
		WarnThreshold:  cfg.RedisWarnThreshold,
	}, a.logger)
	switch {
	case err == nil:
		a.logger.Info("Redis initialized successfully")
	case errors.Is(err, redis.ErrUnreachable):
		a.logger.Warn("starting with the local store, redis will be probed again",
			logger.Duration("probe_interval", cfg.ProbeInterval))
	case errors.Is(err, redis.ErrRejected):
		// Calls will fail with a configuration error until the settings are fixed.
		a.logger.Error("redis rejected the configured credentials", logger.Error(err))
	default:
		return nil, fmt.Errorf("failed to set up redis: %w", err)
	}
	a.redisClient = client

	return redisstore.NewStore(client,
		redisstore.WithKeyPrefix(cfg.RedisKeyPrefix),
		redisstore.WithPingTimeout(cfg.ProbeTimeout),
	), nil
}

// Data returns the dispatcher.
func (a *App) Data() *hybrid.Service { return a.data }

// Logger returns the application logger.
func (a *App) Logger() logger.Logger { return a.logger }

// Seed installs the default catalog into whichever store is active.
func (a *App) Seed(ctx context.Context) (hybrid.Result[bool], error) {
	return a.data.InitializeDefaultData(ctx)
}

// Ideas generates project suggestions for req.
func (a *App) Ideas(ctx context.Context, req domain.GenerateRequest) (hybrid.Result[[]domain.ProjectIdea], error) {
	return a.data.GenerateProjectIdeas(ctx, req)
}

// Status probes the remote store now and reports the result.
func (a *App) Status(ctx context.Context) hybrid.ConnectionStatus {
	a.data.ForceConnectionCheck(ctx)
	return a.data.ConnectionStatus()
}

// ResetLocal empties the local store. The remote store is left untouched.
func (a *App) ResetLocal(ctx context.Context) error {
	if err := a.local.ClearAllData(ctx); err != nil {
		return err
	}
	a.logger.Info("local data cleared", logger.String("data_dir", a.cfg.DataDir))
	return nil
}

func (a *App) onConnectivityChange(ctx context.Context, online bool) {
	if !a.cfg.SeedOnStart {
		return
	}
	res, err := a.data.InitializeDefaultData(ctx)
	if err != nil {
		a.logger.Warn("failed to install default data", logger.Error(err))
		return
	}
	a.logger.Debug("default data checked",
		logger.Bool("online", online),
		logger.Bool("seeded", res.Value),
		logger.String("source", string(res.Source)))
}

// Run serves HTTP until SIGINT/SIGTERM.
func (a *App) Run() error {
	a.logger.Infof("🚀 Starting Atal v%s on %s", version.Version, a.cfg.ListenPort)
	a.logger.Infof("Atal %s", version.String())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := a.watcher.Start(ctx); err != nil {
		return fmt.Errorf("failed to start connectivity watcher: %w", err)
	}
	a.logger.Info("connectivity watcher started",
		logger.Duration("interval", a.cfg.ProbeInterval))

	if a.gc != nil {
		if err := a.gc.Start(ctx); err != nil {
			return fmt.Errorf("failed to start garbage collector: %w", err)
		}
		a.logger.Info("garbage collector started",
			logger.Duration("interval", a.cfg.GCInterval))
	}

	d := deps.Deps{
		Logger:          a.logger,
		StartTime:       time.Now(),
		Version:         version.Version,
		Commit:          version.Commit,
		BuildDate:       version.BuildDate,
		GoVersion:       version.GoVersion,
		TimeNow:         time.Now,
		AllowedHosts:    a.cfg.AllowedHosts,
		AllowedCIDRS:    a.cfg.AllowedCIDRS,
		TrustProxy:      a.cfg.TrustProxy,
		CORSOrigins:     a.cfg.CORSOrigins,
		RateLimitBurst:  a.cfg.RateLimitBurst,
		RateLimitRefill: a.cfg.RateLimitRefill,
		Data:            a.data,
	}
	server := httpserver.New(a.cfg, a.logger, d)

	errCh := make(chan error, 1)
	go func() {
		if err := server.Start(); err != nil {
			errCh <- fmt.Errorf("http server error: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		a.logger.Info("⏳ Shutting down gracefully...")
	case err := <-errCh:
		a.stopBackground()
		return err
	}

	a.stopBackground()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
	defer cancel()
	if err := server.Stop(shutdownCtx); err != nil {
		return fmt.Errorf("failed to stop server: %w", err)
	}

	a.Close()
	a.logger.Info("✅ Atal stopped cleanly")
	return nil
}

func (a *App) stopBackground() {
	a.watcher.Stop()
	if a.gc != nil {
		a.gc.Stop()
	}
}

// Close releases the Redis client.
func (a *App) Close() {
	if a.redisClient == nil {
		return
	}
	if err := a.redisClient.Close(); err != nil {
		a.logger.Warnf("failed to close redis: %v", err)
	} else {
		a.logger.Info("✅ Redis closed cleanly")
	}
	a.redisClient = nil
}
