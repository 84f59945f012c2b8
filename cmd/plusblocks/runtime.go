package main

import (
	"context"
	"database/sql"
	stderrors "errors"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/hpungsan/plusblocks/internal/browser"
	"github.com/hpungsan/plusblocks/internal/bulksync"
	"github.com/hpungsan/plusblocks/internal/cache"
	"github.com/hpungsan/plusblocks/internal/catalog"
	"github.com/hpungsan/plusblocks/internal/config"
	"github.com/hpungsan/plusblocks/internal/db"
	"github.com/hpungsan/plusblocks/internal/logging"
	"github.com/hpungsan/plusblocks/internal/mcp"
	"github.com/hpungsan/plusblocks/internal/ops"
	"github.com/hpungsan/plusblocks/internal/ratelimit"
	"github.com/hpungsan/plusblocks/internal/retry"
	"github.com/hpungsan/plusblocks/internal/scrape"
)

// runtime is the wired application: one browser, one cache, one journal.
type runtime struct {
	cfg    *config.Config
	paths  config.StatePaths
	logger logging.Logger
	env    *ops.Env

	driver  *browser.Driver
	journal *sql.DB

	closeOnce sync.Once
	closeErr  error
}

// openRuntime loads config from baseDir and builds every component.
// An empty baseDir resolves PLUSBLOCKS_HOME or ~/.plusblocks.
func openRuntime(baseDir string, logOut io.Writer) (*runtime, error) {
	if baseDir == "" {
		dir, err := config.DefaultBaseDir()
		if err != nil {
			return nil, fmt.Errorf("could not determine home directory: %w", err)
		}
		baseDir = dir
	}
	paths := config.Paths(baseDir)

	journal, err := db.Init(baseDir)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	cfg, err := config.Load(baseDir)
	if err != nil {
		journal.Close()
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger := logging.NewLogger(cfg.LogLevel, cfg.LogFormat, logOut)
	if unknown := mcp.ValidateDisabledTools(cfg.DisabledTools); len(unknown) > 0 {
		logger.WithField("tools", unknown).Warn("unknown tools in disabled_tools")
	}

	store, err := cache.Open(paths.CacheDir, cache.Options{
		TTL:      cfg.CacheTTL(),
		Debounce: cfg.ManifestDebounce(),
		Logger:   logger,
	})
	if err != nil {
		journal.Close()
		return nil, fmt.Errorf("failed to open cache: %w", err)
	}

	resolver := browser.NewResolver(cfg.ChromePath, paths.Browsers, logger)
	driver := browser.NewDriver(resolver, browser.DriverOptions{
		NavigationTimeout: cfg.NavigationTimeout(),
		Logger:            logger,
	})
	session := browser.NewSessionStore(paths.Cookies)

	fetcher := scrape.NewFetcher(driver, session, scrape.Options{
		Limiter: ratelimit.New(cfg.RateLimit()),
		Retry: retry.Options{
			MaxAttempts: cfg.RetryMaxAttempts,
			BaseDelay:   cfg.RetryBaseDelay(),
			MaxDelay:    cfg.RetryMaxDelay(),
			OnRetry: func(attempt int, err error, delay time.Duration) {
				logger.WithError(err).WithField("attempt", attempt).WithField("delay", delay).Warn("retrying extraction")
			},
		},
		SelectorTimeout: cfg.SelectorTimeout(),
		FormatSettle:    cfg.FormatSettle(),
		VersionSettle:   cfg.VersionSettle(),
		UISettle:        cfg.UISettle(),
		Logger:          logger,
	})

	catalogOpts := catalog.Options{RefreshAfter: cfg.CatalogRefresh(), Logger: logger}
	blocks := catalog.NewStore(paths.Catalog, catalogOpts)
	legacy := catalog.NewLegacyStore(paths.LegacyCatalog, catalogOpts)

	syncer := bulksync.New(bulksync.Deps{
		Fetcher:         fetcher,
		Browser:         driver,
		Catalog:         blocks,
		Legacy:          legacy,
		Cache:           store,
		Journal:         journal,
		Logger:          logger,
		RecycleInterval: cfg.RecycleInterval,
		RecyclePause:    cfg.RecyclePause(),
	})

	env := &ops.Env{
		Catalog: blocks,
		Legacy:  legacy,
		Cache:   store,
		Session: session,
		Journal: journal,
		Codes:   fetcher,
		Syncer:  syncer,
		Login: func(ctx context.Context) error {
			return browser.InteractiveLogin(ctx, resolver, session, browser.DefaultLoginTimeout, os.Stderr)
		},
		Logger: logger,
	}

	return &runtime{
		cfg:     cfg,
		paths:   paths,
		logger:  logger,
		env:     env,
		driver:  driver,
		journal: journal,
	}, nil
}

// Close shuts the browser, flushes the cache manifest and closes the journal.
// Later calls return the first result.
func (rt *runtime) Close() error {
	rt.closeOnce.Do(func() {
		var errs []error
		if rt.driver != nil {
			errs = append(errs, rt.driver.Close())
		}
		if rt.env != nil && rt.env.Cache != nil {
			errs = append(errs, rt.env.Cache.Close())
		}
		if rt.journal != nil {
			errs = append(errs, rt.journal.Close())
		}
		rt.closeErr = stderrors.Join(errs...)
	})
	return rt.closeErr
}
