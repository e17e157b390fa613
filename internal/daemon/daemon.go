package daemon

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/gamepilot/gamepilot/internal/api"
	"github.com/gamepilot/gamepilot/internal/health"
	"github.com/gamepilot/gamepilot/internal/infra/sqlite"
	"github.com/gamepilot/gamepilot/internal/logger"
)

// shutdownTimeout bounds graceful HTTP shutdown.
const shutdownTimeout = 30 * time.Second

// Daemon is the core GamePilot runtime. It wires together all services.
type Daemon struct {
	Config Config
	Home   string
	DB     *sqlite.DB
	Server *api.Server
	Health *health.Checker
	Log    *zap.Logger
}

// New creates and initializes a Daemon from the on-disk configuration.
func New(version string) (*Daemon, error) {
	cfg, err := LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return NewWithConfig(cfg, Home(), version)
}

// NewWithConfig creates a Daemon with the given configuration whose state
// lives under home.
func NewWithConfig(cfg Config, home, version string) (*Daemon, error) {
	log, err := logger.New(logger.Config{
		Level:    cfg.Logging.Level,
		Encoding: cfg.Logging.Encoding,
		File:     cfg.Logging.File,
	})
	if err != nil {
		return nil, fmt.Errorf("build logger: %w", err)
	}

	engineCfg, err := cfg.AnalyticsConfig()
	if err != nil {
		return nil, err
	}

	db, err := sqlite.Open(home)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	srv := api.NewServer(db, api.Options{
		Version:         version,
		CORSOrigins:     cfg.API.CORSOrigins,
		MoodMaxAgeHours: cfg.Engine.MoodMaxAgeHours,
		Engine:          engineCfg,
		CacheSize:       cfg.Cache.Size,
		CacheTTL:        parseDuration(cfg.Cache.TTL, 5*time.Minute),
		RequestTimeout:  parseDuration(cfg.API.RequestTimeout, 30*time.Second),
	}, log)
	if cfg.Telemetry.Prometheus {
		srv.EnableMetrics()
	}

	checker := health.NewChecker(db, home, log)
	srv.SetHealth(checker)

	return &Daemon{
		Config: cfg,
		Home:   home,
		DB:     db,
		Server: srv,
		Health: checker,
		Log:    log,
	}, nil
}

// Addr is the host:port the API listens on.
func (d *Daemon) Addr() string {
	return net.JoinHostPort(d.Config.API.Host, strconv.Itoa(d.Config.API.Port))
}

// Serve starts the HTTP server and the health loop and blocks until ctx is
// cancelled, SIGINT/SIGTERM arrives, or either fails.
func (d *Daemon) Serve(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := d.DB.SetMeta("last_started_at", time.Now().UTC().Format(time.RFC3339)); err != nil {
		d.Log.Warn("record start time", zap.Error(err))
	}

	httpServer := &http.Server{
		Addr:         d.Addr(),
		Handler:      d.Server.Handler(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  2 * time.Minute,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		d.Health.Run(gctx)
		return nil
	})

	g.Go(func() error {
		d.Log.Info("gamepilot serving",
			zap.String("addr", "http://"+httpServer.Addr),
			zap.Bool("metrics", d.Config.Telemetry.Prometheus))
		if err := httpServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		d.Log.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	})

	err := g.Wait()
	d.Close()
	return err
}

// Close releases daemon resources.
func (d *Daemon) Close() {
	if d.DB != nil {
		_ = d.DB.Close()
	}
	if d.Log != nil {
		_ = d.Log.Sync()
	}
}
