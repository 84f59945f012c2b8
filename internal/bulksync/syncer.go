// Package bulksync walks the catalog site and fills the block catalog and
// the variant code cache, one block page at a time.
package bulksync

import (
	"context"
	"database/sql"
	"time"

	"github.com/hpungsan/plusblocks/internal/block"
	"github.com/hpungsan/plusblocks/internal/cache"
	"github.com/hpungsan/plusblocks/internal/catalog"
	"github.com/hpungsan/plusblocks/internal/db"
	apperrors "github.com/hpungsan/plusblocks/internal/errors"
	"github.com/hpungsan/plusblocks/internal/logging"
	"github.com/hpungsan/plusblocks/internal/scrape"
)

// Modes recorded in the journal.
const (
	ModeFull  = "full"
	ModeBlock = "block"
)

// SyncTheme is the only theme bulk sync extracts.
const SyncTheme = block.ThemeLight

// Fetcher is the extraction surface a sync needs. *scrape.Fetcher implements it.
type Fetcher interface {
	FetchBlockIndex(ctx context.Context) ([]scrape.IndexEntry, error)
	FetchBlockComplete(ctx context.Context, ref scrape.BlockRef, formats []block.Format, versions []block.Version, theme block.Theme, progress scrape.ProgressFunc) (*block.Block, []block.VariantCode, error)
}

// Browser is the shared browser lifecycle. *browser.Driver implements it.
type Browser interface {
	Recycle(ctx context.Context, pause time.Duration) error
	Close() error
}

// Deps wires a Syncer. Journal may be nil.
type Deps struct {
	Fetcher Fetcher
	Browser Browser
	Catalog *catalog.Store
	Legacy  *catalog.LegacyStore
	Cache   *cache.Manager
	Journal *sql.DB
	Logger  logging.Logger
	Now     func() time.Time

	// RecycleInterval is the number of processed blocks after which the
	// browser is restarted. Zero disables recycling.
	RecycleInterval int
	RecyclePause    time.Duration
}

// Options selects what a run syncs.
type Options struct {
	// Context limits a full run to one context. With Block it names the
	// block's context.
	Context block.Context
	// Block switches to single-block mode. It requires Context and an
	// existing catalog entry.
	Block        string
	Force        bool
	MetadataOnly bool
	// Verbose logs per-combination progress at info instead of debug.
	Verbose bool
}

// BlockFailure is a block the run could not sync.
type BlockFailure struct {
	Block   string `json:"block"`
	Code    string `json:"code,omitempty"`
	Message string `json:"message"`
}

// Report summarizes a run.
type Report struct {
	RunID         string         `json:"runId"`
	Mode          string         `json:"mode"`
	BlocksTotal   int            `json:"blocksTotal"`
	BlocksSynced  int            `json:"blocksSynced"`
	BlocksSkipped int            `json:"blocksSkipped"`
	BlocksFailed  int            `json:"blocksFailed"`
	Variants      int            `json:"variants"`
	Codes         int            `json:"codes"`
	Halted        bool           `json:"halted"`
	Failures      []BlockFailure `json:"failures"`
	DurationMs    int64          `json:"durationMs"`
}

// Syncer runs bulk syncs. Runs are sequential; blocks share one browser.
type Syncer struct {
	deps   Deps
	logger logging.Logger
}

// New creates a Syncer.
func New(deps Deps) *Syncer {
	if deps.Now == nil {
		deps.Now = time.Now
	}
	return &Syncer{deps: deps, logger: logging.OrDiscard(deps.Logger)}
}

// formatsFor returns the formats and versions a run extracts.
func formatsFor(metadataOnly bool) ([]block.Format, []block.Version) {
	if metadataOnly {
		return []block.Format{}, []block.Version{}
	}
	return block.Formats, block.Versions
}

// Run executes one sync. An auth failure halts the loop and is returned with
// the partial report; other per-block failures are recorded and skipped.
// The cache manifest is flushed and the browser closed before returning.
func (s *Syncer) Run(ctx context.Context, opts Options) (*Report, error) {
	if opts.Block != "" && opts.Context == "" {
		return nil, apperrors.NewInvalidRequest("a context is required with a block")
	}

	started := s.deps.Now()
	r := &run{
		s:      s,
		opts:   opts,
		report: &Report{RunID: db.NewRunID(started), Mode: ModeFull, Failures: []BlockFailure{}},
	}
	if opts.Block != "" {
		r.report.Mode = ModeBlock
	}
	r.logger = s.logger.WithField("run_id", r.report.RunID)
	r.begin(started)

	var err error
	if opts.Block != "" {
		err = r.single(ctx)
	} else {
		err = r.full(ctx)
	}

	r.report.DurationMs = s.deps.Now().Sub(started).Milliseconds()
	s.finish()
	r.end(err)
	return r.report, err
}

// finish persists cache state and releases the browser.
func (s *Syncer) finish() {
	if s.deps.Cache != nil {
		if s.deps.Catalog != nil {
			if err := s.deps.Catalog.SetCachedVariants(s.deps.Cache.VariantStats().TotalVariants); err != nil {
				s.logger.WithError(err).Warn("record cached variant count")
			}
		}
		if err := s.deps.Cache.Flush(); err != nil {
			s.logger.WithError(err).Warn("flush cache manifest")
		}
	}
	if s.deps.Browser != nil {
		if err := s.deps.Browser.Close(); err != nil {
			s.logger.WithError(err).Warn("close browser")
		}
	}
}
