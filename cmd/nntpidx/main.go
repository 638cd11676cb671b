// Command nntpidx fetches NNTP newsgroup overview metadata into a
// relational index and reassembles complete multipart sets as NZB files.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/usenet-tools/nntpidx/internal/adapters/driven/cache/redis"
	"github.com/usenet-tools/nntpidx/internal/adapters/driven/config/ini"
	"github.com/usenet-tools/nntpidx/internal/adapters/driven/config/toml"
	"github.com/usenet-tools/nntpidx/internal/adapters/driven/config/watch"
	"github.com/usenet-tools/nntpidx/internal/adapters/driven/events/kafka"
	"github.com/usenet-tools/nntpidx/internal/adapters/driven/nzbsink/fs"
	"github.com/usenet-tools/nntpidx/internal/adapters/driven/nzbsink/minio"
	"github.com/usenet-tools/nntpidx/internal/adapters/driven/storage/postgres"
	"github.com/usenet-tools/nntpidx/internal/adapters/driven/storage/sqlite"
	"github.com/usenet-tools/nntpidx/internal/adapters/driven/transport/nntp"
	"github.com/usenet-tools/nntpidx/internal/adapters/driving/cli"
	"github.com/usenet-tools/nntpidx/internal/adapters/driving/httpapi"
	"github.com/usenet-tools/nntpidx/internal/core/domain"
	"github.com/usenet-tools/nntpidx/internal/core/ports/driven"
	"github.com/usenet-tools/nntpidx/internal/core/ports/driving"
	"github.com/usenet-tools/nntpidx/internal/core/services"
	"github.com/usenet-tools/nntpidx/internal/logger"
)

func main() {
	configPath := flag.String("config", "nntpidx.ini", "path to the configuration file (INI, or TOML for a .toml path)")
	verbose := flag.Bool("verbose", false, "enable debug logging")
	flag.Parse()

	logger.SetVerbose(*verbose)

	cfg, err := buildConfigStore(*configPath).Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "nntpidx: %v\n", err)
		os.Exit(exitCodeForErr(err))
	}

	store, schedStore, closeStore, err := buildStore(cfg.Store, cfg.Fetch.Group)
	if err != nil {
		fmt.Fprintf(os.Stderr, "nntpidx: %v\n", err)
		os.Exit(exitCodeForErr(err))
	}
	defer closeStore()

	if err := store.EnsureSchema(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "nntpidx: %v\n", err)
		os.Exit(exitCodeForErr(err))
	}

	factory := nntp.NewFactory(nntp.Config{
		Host:     cfg.Server.Host,
		Port:     cfg.Server.Port,
		UseTLS:   cfg.Server.UseTLS,
		User:     cfg.Server.User,
		Password: cfg.Server.Password,
		Timeout:  cfg.Server.Timeout,
	})
	pool := nntp.NewPool(factory, cfg.Fetch.MaxWorkers)
	defer pool.Close()

	var publisher driven.ProgressPublisher
	if cfg.Kafka != nil {
		publisher = kafka.NewProgressPublisher(*cfg.Kafka)
	}

	var cache driven.QueryCache
	if cfg.Redis != nil {
		cache = redis.NewQueryCache(*cfg.Redis)
	}

	sink, err := buildNZBSink(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "nntpidx: %v\n", err)
		os.Exit(exitCodeForErr(err))
	}

	orchestrator := services.NewFetchOrchestrator(pool, store, publisher).WithRateLimit(cfg.Fetch.MaxRequestsPerSec)
	queryService := services.NewIndexQueryService(store, cache)
	nzbAssembler := services.NewNZBAssembler()

	schedCfg, err := loadSchedulerConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "nntpidx: %v\n", err)
		os.Exit(exitCodeForErr(err))
	}
	scheduler := services.NewScheduler(schedCfg, schedStore, orchestrator)

	var httpServer driving.HTTPServer
	if cfg.HTTP.Enabled {
		httpServer = httpapi.NewServer(cfg.HTTP, queryService, nzbAssembler, sink)
	}

	cli.SetPorts(orchestrator, queryService, nzbAssembler, sink, scheduler, httpServer)

	if len(os.Args) > 1 && os.Args[1] == "serve" {
		watchCtx, stopWatch := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stopWatch()

		go func() {
			err := watch.Run(watchCtx, *configPath, func(ctx context.Context) error {
				newCfg, err := loadSchedulerConfig(*configPath)
				if err != nil {
					return err
				}
				return scheduler.Reconfigure(ctx, newCfg)
			})
			if err != nil {
				fmt.Fprintf(os.Stderr, "nntpidx: config watch stopped: %v\n", err)
			}
		}()
	}

	if err := cli.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		if run := cli.LastFetchRun(); run != nil && run.ExitCode() != 0 {
			os.Exit(run.ExitCode())
		}
		os.Exit(exitCodeForErr(err))
	}

	if run := cli.LastFetchRun(); run != nil {
		os.Exit(run.ExitCode())
	}
}

// exitCodeForErr maps a driver-level error to the exit codes from spec.md
// §6: 2 for a configuration error, 3 for an NNTP authentication failure,
// 1 for anything else. Successful runs and run-level partial failure (4)
// or cancellation (5) are mapped by FetchRun.ExitCode() instead.
func exitCodeForErr(err error) int {
	switch {
	case errors.Is(err, domain.ErrConfig):
		return 2
	case errors.Is(err, domain.ErrAuth):
		return 3
	default:
		return 1
	}
}

// buildConfigStore selects the INI or TOML config loader by the config
// file's extension; ".toml" uses the TOML surface, anything else (including
// the default "nntpidx.ini") uses INI.
func buildConfigStore(path string) driven.ConfigStore {
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		return toml.NewConfigStore()
	}
	return ini.NewConfigStore()
}

// loadSchedulerConfig mirrors buildConfigStore's extension dispatch for the
// serve daemon's [scheduler] section.
func loadSchedulerConfig(path string) (domain.SchedulerConfig, error) {
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		return toml.LoadSchedulerConfig(path)
	}
	return ini.LoadSchedulerConfig(path)
}

// buildStore opens the configured Index Store backend. For sqlite, DSN
// names the data directory holding one database file per group, per
// spec.md §6's "one database per newsgroup" rule; for postgres, DSN is a
// standard connection string shared across all groups.
func buildStore(cfg domain.StoreConfig, group string) (driven.IndexStore, driven.SchedulerStore, func() error, error) {
	switch cfg.Driver {
	case "postgres":
		store, err := postgres.NewStore(cfg.DSN)
		if err != nil {
			return nil, nil, func() error { return nil }, err
		}
		return store, store.SchedulerStore(), store.Close, nil
	default:
		store, err := sqlite.NewStore(sqlite.DBPath(cfg.DSN, group))
		if err != nil {
			return nil, nil, func() error { return nil }, err
		}
		return store, store.SchedulerStore(), store.Close, nil
	}
}

// buildNZBSink selects the NZB output sink: object storage when [minio] is
// configured, otherwise the local filesystem under NZB.OutputPath.
func buildNZBSink(cfg *domain.Config) (driven.NZBSink, error) {
	if cfg.Minio != nil {
		return minio.NewSink(context.Background(), *cfg.Minio)
	}
	return fs.NewSink(cfg.NZB.OutputPath)
}
