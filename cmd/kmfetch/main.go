// Command kmfetch is the composition root: it wires Storage, Cache,
// HTTPClient, PathEngine, Downloader, Scheduler, Migrator, Validator, and
// PluginReloader into one process, hosts the single-instance RPC bridge,
// and runs an interactive shell over the §6 command surface. Grounded on
// the teacher's cmd/downurl/main.go (flag load -> config file -> validate
// -> build pipeline -> signal-driven cancellation), generalized from a
// one-shot batch run into a long-lived daemon with a resident scheduler.
package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/nyxaria/kmfetch/internal/cache"
	"github.com/nyxaria/kmfetch/internal/config"
	"github.com/nyxaria/kmfetch/internal/downloader"
	"github.com/nyxaria/kmfetch/internal/httpclient"
	"github.com/nyxaria/kmfetch/internal/migrator"
	"github.com/nyxaria/kmfetch/internal/notifier"
	"github.com/nyxaria/kmfetch/internal/pathengine"
	"github.com/nyxaria/kmfetch/internal/pluginreloader"
	"github.com/nyxaria/kmfetch/internal/proxypool"
	"github.com/nyxaria/kmfetch/internal/reporter"
	"github.com/nyxaria/kmfetch/internal/rpcbridge"
	"github.com/nyxaria/kmfetch/internal/scheduler"
	"github.com/nyxaria/kmfetch/internal/storage"
	"github.com/nyxaria/kmfetch/internal/ui"
	"github.com/nyxaria/kmfetch/internal/validator"
	"github.com/sirupsen/logrus"
)

var log = logrus.WithField("component", "main")

func main() {
	cfg := config.Load()

	if configFile, err := config.LoadConfigFile(); err == nil {
		configFile.ApplyToConfig(cfg)
	}

	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Configuration error: %v\n", err)
		os.Exit(1)
	}

	setupLogging(cfg)

	rpcAddr := fmt.Sprintf("127.0.0.1:%d", cfg.RPCPort)
	if client, ok := rpcbridge.Dial(rpcAddr, 300*time.Millisecond); ok {
		runAsClient(client)
		return
	}

	app, err := buildApp(cfg)
	if err != nil {
		fmt.Fprintln(os.Stderr, ui.WrapPermissionError(cfg.DataDir, err))
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		log.Info("received interrupt signal, shutting down gracefully")
		cancel()
		<-sigChan
		os.Exit(1)
	}()
	defer cancel()

	if err := app.client.Init(ctx); err != nil {
		log.WithError(err).Warn("landing-page init failed; continuing, requests may be unauthenticated")
	}

	go app.scheduler.Run(ctx)

	if cfg.RPCEnabled {
		srv, err := rpcbridge.Listen(rpcAddr, app.handle)
		if err != nil {
			log.WithError(err).Warn("rpc bridge failed to bind, continuing without it")
		} else {
			go srv.Serve(ctx)
			defer srv.Close()
		}
	}

	runShell(ctx, app)
}

// runAsClient turns this process into a thin remote shell against an
// already-running owner, per §6's "client first attempts to connect; on
// success, it runs as a thin remote shell" rule.
func runAsClient(client *rpcbridge.Client) {
	defer client.Close()
	fmt.Println("kmfetch: connected to running instance")
	reader := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !reader.Scan() {
			return
		}
		line := reader.Text()
		if line == "exit" || line == "quit" {
			return
		}
		if line == "" {
			continue
		}
		command, params := rpcbridge.ParseCommand(line)
		out, err := client.Execute(command, params)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			continue
		}
		fmt.Println(out)
	}
}

// app bundles every component the shell/RPC command handlers dispatch
// against, built once at startup (§9's "struct-of-interfaces passed at
// construction, no back-pointers").
type app struct {
	cfg        *config.Config
	storage    *storage.Storage
	cache      *cache.Cache
	client     *httpclient.Client
	paths      *pathengine.Engine
	downloader *downloader.Downloader
	scheduler  *scheduler.Scheduler
	migrator   *migrator.Migrator
	validator  *validator.Validator
	ignores    *validator.Store
	reporter   *reporter.Reporter
}

func buildApp(cfg *config.Config) (*app, error) {
	st, err := storage.New(cfg.DataDir)
	if err != nil {
		return nil, fmt.Errorf("storage: %w", err)
	}

	c, err := cache.New(cfg.CacheDir)
	if err != nil {
		return nil, fmt.Errorf("cache: %w", err)
	}

	domainCfg, err := st.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	authProvider, err := cfg.BuildAuthProvider()
	if err != nil {
		return nil, fmt.Errorf("auth: %w", err)
	}

	pool := proxypool.New(domainCfg.Proxies)
	client := httpclient.New(cfg.BaseURL, authProvider, pool, domainCfg.RequestsPerSecond)

	paths := pathengine.New()
	loader := pluginreloader.New(cfg.PluginSourcePath)
	paths.Hooks = pluginreloader.WireHooks(loader, pluginreloader.DefaultHookNames)

	dl := downloader.New(client, c, st, paths, cfg.DownloadDir, domainCfg)
	dl.SetNotifier(notifier.NewConsole(false))

	maxArtists := domainCfg.MaxConcurrentArtists
	if maxArtists <= 0 {
		maxArtists = cfg.Workers
	}
	sched := scheduler.New(dl, st, client, maxArtists, domainCfg.GlobalTimer)
	rep := reporter.New()
	sched.SetOnComplete(rep.Add)

	return &app{
		cfg:        cfg,
		storage:    st,
		cache:      c,
		client:     client,
		paths:      paths,
		downloader: dl,
		scheduler:  sched,
		migrator:   migrator.New(),
		validator:  validator.New(paths, cfg.DownloadDir),
		ignores:    validator.NewStore(cfg.IgnoreStorePath),
		reporter:   rep,
	}, nil
}
