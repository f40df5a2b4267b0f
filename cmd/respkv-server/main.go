package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/respkv/internal/infra/buildinfo"
	"github.com/yndnr/respkv/internal/infra/confloader"
	"github.com/yndnr/respkv/internal/infra/shutdown"
	"github.com/yndnr/respkv/internal/infra/tlsroots"
	"github.com/yndnr/respkv/internal/server/config"
	"github.com/yndnr/respkv/internal/server/httpserver"
	"github.com/yndnr/respkv/internal/server/redisserver"
	"github.com/yndnr/respkv/internal/storage/memory"
	"github.com/yndnr/respkv/internal/telemetry/logger"
	"github.com/yndnr/respkv/internal/telemetry/metric"
)

const shutdownTimeout = 30 * time.Second

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:    "respkv-server",
		Usage:   "RESP2/RESP3 compatible in-memory key-value server",
		Version: buildinfo.String(),
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to configuration file",
				EnvVars: []string{"RESPKV_CONFIG"},
			},
			&cli.StringFlag{
				Name:  "redis-addr",
				Usage: "RESP listen address (overrides server.redis.addr)",
			},
			&cli.StringFlag{
				Name:  "http-addr",
				Usage: "Admin HTTP listen address (overrides server.http.addr)",
			},
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "Log level: debug, info, warn, error (overrides log.level)",
			},
		},
		Action: func(c *cli.Context) error {
			return run(c.Context, c.String("config"), flagOverrides(c))
		},
	}
}

// overrideFlags maps flags to the configuration keys they replace.
var overrideFlags = map[string]string{
	"redis-addr": "server.redis.addr",
	"http-addr":  "server.http.addr",
	"log-level":  "log.level",
}

// flagOverrides collects the flags given on the command line.
func flagOverrides(c *cli.Context) map[string]any {
	out := make(map[string]any)
	for flag, key := range overrideFlags {
		if c.IsSet(flag) {
			out[key] = c.String(flag)
		}
	}
	return out
}

func run(ctx context.Context, configFile string, overrides map[string]any) error {
	cfg, loader, err := loadConfig(configFile, overrides)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log, err := initLogger(cfg)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}

	log.Info("starting respkv-server",
		"build", buildinfo.Get(),
		"config", configFile)

	store := memory.New(memory.WithShards(cfg.Backend.Shards))

	registry := metric.NewRegistry()
	build := buildinfo.Get()
	registry.BuildInfo.WithLabelValues(build.Version, build.Commit, build.GoVersion).Set(1)
	if err := registry.Register(metric.NewKeyspaceCollector(func() map[string]int {
		return store.Stats().ByType()
	})); err != nil {
		return fmt.Errorf("register keyspace collector: %w", err)
	}

	redisCfg, certs, err := redisConfig(cfg, log)
	if err != nil {
		return fmt.Errorf("redis config: %w", err)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	shutdownHandler := shutdown.NewHandler(shutdownTimeout, shutdown.WithLogger(log))

	if certs != nil {
		if err := certs.Start(); err != nil {
			return fmt.Errorf("watch tls key pair: %w", err)
		}
		shutdownHandler.OnShutdown("certificate watcher", func(context.Context) error {
			return certs.Stop()
		})
	}

	redisSrv := redisserver.New(redisCfg, store,
		redisserver.WithLogger(log),
		redisserver.WithMetrics(registry))
	if err := redisSrv.Start(ctx); err != nil {
		_ = shutdownHandler.Shutdown()
		return fmt.Errorf("start redis server: %w", err)
	}
	shutdownHandler.OnShutdown("redis server", redisSrv.Shutdown)

	if cfg.Server.HTTP.Addr != "" {
		router := httpserver.NewRouter(&httpserver.RouterConfig{
			Keyspace:  store,
			Clients:   redisSrv,
			Metrics:   registry,
			Logger:    log,
			AllowList: cfg.Server.HTTP.AllowList,
		})
		httpSrv := httpserver.New(cfg.Server.HTTP.Addr, router, log)
		if err := httpSrv.Start(); err != nil {
			_ = shutdownHandler.Shutdown()
			return fmt.Errorf("start http server: %w", err)
		}
		shutdownHandler.OnShutdown("http server", httpSrv.Shutdown)
	}

	if path := loader.FilePath(); path != "" {
		watcher, err := confloader.NewWatcher(path, func(string) {
			reloadConfig(loader, log)
		}, confloader.WithWatcherLogger(log))
		if err != nil {
			_ = shutdownHandler.Shutdown()
			return fmt.Errorf("watch config: %w", err)
		}
		watchCtx, stopWatch := context.WithCancel(ctx)
		watchDone := make(chan struct{})
		go func() {
			defer close(watchDone)
			_ = watcher.Run(watchCtx)
		}()
		shutdownHandler.OnShutdown("config watcher", func(context.Context) error {
			stopWatch()
			<-watchDone
			return nil
		})
	}

	log.Info("server started, press Ctrl+C to stop")
	if err := shutdownHandler.Wait(ctx); err != nil {
		log.Error("shutdown error", "error", err)
		return err
	}

	log.Info("server stopped gracefully")
	return nil
}

// loadConfig loads configuration from defaults, file, environment and
// flags. The loader is returned for reloads.
func loadConfig(configFile string, overrides map[string]any) (*config.ServerConfig, *confloader.Loader, error) {
	cfg := config.Default()

	opts := []confloader.Option{confloader.WithOverrides(overrides)}
	if configFile != "" {
		opts = append(opts, confloader.WithConfigFile(configFile))
	}
	loader := confloader.NewLoader(opts...)

	if err := loader.Load(cfg); err != nil {
		return nil, nil, err
	}
	if err := config.Verify(cfg); err != nil {
		return nil, nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, loader, nil
}

// reloadConfig re-reads every source and applies what can change at
// runtime. An invalid file keeps the running configuration.
func reloadConfig(loader *confloader.Loader, log logger.Logger) {
	cfg := config.Default()
	if err := loader.Reload(cfg); err != nil {
		log.Warn("config reload failed", "error", err)
		return
	}
	if err := config.Verify(cfg); err != nil {
		log.Warn("config reload rejected", "error", err)
		return
	}

	if err := logger.SetLevel(cfg.Log.Level); err != nil {
		log.Warn("config reload: log level", "error", err)
		return
	}
	log.Info("configuration reloaded", "log_level", cfg.Log.Level)
}

func initLogger(cfg *config.ServerConfig) (logger.Logger, error) {
	log, err := logger.New(logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: os.Stdout,
	})
	if err != nil {
		return nil, err
	}

	logger.SetDefault(log)
	return log, nil
}

// redisConfig maps the file configuration onto the RESP server's. When a
// TLS listener is configured the returned watcher serves its key pair and
// must be started by the caller.
func redisConfig(cfg *config.ServerConfig, log logger.Logger) (*redisserver.Config, *tlsroots.CertWatcher, error) {
	r := cfg.Server.Redis
	out := &redisserver.Config{
		Addr:         r.Addr,
		TLSAddr:      r.TLSAddr,
		ReadTimeout:  r.ReadTimeout,
		WriteTimeout: r.WriteTimeout,
		IdleTimeout:  r.IdleTimeout,
		RateLimit:    r.RateLimit,
		RateBurst:    r.RateBurst,
		MaxClients:   r.MaxClients,
		Limits:       cfg.Protocol.Limits(),
		MaxBuffer:    cfg.Protocol.MaxBuffer,
	}
	if r.TLSAddr == "" {
		return out, nil, nil
	}

	certs, err := tlsroots.NewCertWatcher(r.TLSCertFile, r.TLSKeyFile, tlsroots.WithLogger(log))
	if err != nil {
		return nil, nil, err
	}
	out.TLSConfig = certs.ServerConfig()
	return out, certs, nil
}
