package bulksync

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/hpungsan/plusblocks/internal/block"
	"github.com/hpungsan/plusblocks/internal/catalog"
	"github.com/hpungsan/plusblocks/internal/db"
	apperrors "github.com/hpungsan/plusblocks/internal/errors"
	"github.com/hpungsan/plusblocks/internal/logging"
	"github.com/hpungsan/plusblocks/internal/scrape"
)

// run is the state of one Syncer.Run call.
type run struct {
	s      *Syncer
	opts   Options
	report *Report
	logger *logrus.Entry
	entry  *db.Run

	processedSinceRecycle int
}

func (r *run) single(ctx context.Context) error {
	existing, ok := r.s.deps.Catalog.FindBlock(r.opts.Context, r.opts.Block)
	if !ok {
		return apperrors.NewBlockNotFound(r.opts.Block, string(r.opts.Context))
	}
	r.report.BlocksTotal = 1
	ref := scrape.BlockRef{Category: existing.Category, Subcategory: existing.Subcategory, Slug: existing.Slug}
	if err := r.syncBlock(ctx, ref, 1, 1); err != nil {
		r.fail(ref, err)
		r.report.Halted = apperrors.IsAuth(err)
		return err
	}
	return nil
}

func (r *run) full(ctx context.Context) error {
	entries, err := r.s.deps.Fetcher.FetchBlockIndex(ctx)
	if err != nil {
		return err
	}
	r.recordIndex(entries)

	if r.opts.Context != "" {
		filtered := make([]scrape.IndexEntry, 0, len(entries))
		for _, e := range entries {
			if e.Category == r.opts.Context {
				filtered = append(filtered, e)
			}
		}
		entries = filtered
	}
	r.report.BlocksTotal = len(entries)
	r.logger.WithFields(logging.Fields{"blocks": len(entries), "context": r.opts.Context}).Info("syncing blocks")

	for i, e := range entries {
		if err := ctx.Err(); err != nil {
			r.report.Halted = true
			return err
		}
		if err := r.maybeRecycle(ctx); err != nil {
			r.report.Halted = true
			return err
		}

		ref := scrape.BlockRef{Category: e.Category, Subcategory: e.Subcategory, Slug: e.Slug}
		if !r.opts.Force && r.complete(ref) {
			continue
		}

		if err := r.syncBlock(ctx, ref, i+1, len(entries)); err != nil {
			r.fail(ref, err)
			r.processedSinceRecycle++
			if apperrors.IsAuth(err) {
				r.report.Halted = true
				r.logger.Error("authentication failed; run 'plusblocks login' to refresh")
				return err
			}
		}
	}
	return nil
}

// recordIndex merges the index into the legacy catalog, one context at a time.
func (r *run) recordIndex(entries []scrape.IndexEntry) {
	if r.s.deps.Legacy == nil {
		return
	}
	now := r.s.deps.Now().UnixMilli()
	byContext := make(map[block.Context][]catalog.LegacyCategory)
	for _, e := range entries {
		byContext[e.Category] = append(byContext[e.Category], catalog.LegacyCategory{
			Category: block.Category{
				Name:           e.Name,
				Slug:           e.Slug,
				Subcategory:    e.Subcategory,
				Context:        e.Category,
				ComponentCount: e.ComponentCount,
				URL:            e.URL,
			},
			LastFetchedAt: now,
		})
	}
	for _, c := range block.Contexts {
		if len(byContext[c]) == 0 {
			continue
		}
		if err := r.s.deps.Legacy.Merge(c, byContext[c]); err != nil {
			r.logger.WithError(err).WithField("context", c).Warn("record block index")
		}
	}
}

func (r *run) maybeRecycle(ctx context.Context) error {
	interval := r.s.deps.RecycleInterval
	if interval <= 0 || r.processedSinceRecycle < interval || r.s.deps.Browser == nil {
		return nil
	}
	r.logger.WithField("after", r.processedSinceRecycle).Info("recycling browser")
	r.processedSinceRecycle = 0
	return r.s.deps.Browser.Recycle(ctx, r.s.deps.RecyclePause)
}

// complete reports whether a block can be skipped: it has variants and,
// unless metadata-only, every light-theme code is cached.
func (r *run) complete(ref scrape.BlockRef) bool {
	existing, ok := r.s.deps.Catalog.Block(ref.Category, ref.Subcategory, ref.Slug)
	if !ok || len(existing.Variants) == 0 {
		return false
	}
	if !r.opts.MetadataOnly {
		for _, v := range existing.Variants {
			for _, f := range block.Formats {
				for _, ver := range block.Versions {
					key := block.CacheKey{Context: ref.Category, Block: ref.Slug, Variant: v.Slug, Format: f, Theme: SyncTheme, Version: ver}
					if !r.s.deps.Cache.HasVariant(key) {
						return false
					}
				}
			}
		}
	}
	r.report.BlocksSkipped++
	r.report.Variants += len(existing.Variants)
	r.logger.WithField("block", ref.Slug).Info("skipped (complete)")
	return true
}

func (r *run) syncBlock(ctx context.Context, ref scrape.BlockRef, n, total int) error {
	started := r.s.deps.Now()
	log := r.logger.WithFields(logging.Fields{"block": ref.Slug, "position": fmt.Sprintf("%d/%d", n, total)})
	log.Debug("starting block")

	formats, versions := formatsFor(r.opts.MetadataOnly)
	progress := func(p scrape.Progress) {
		e := log.WithField("progress", fmt.Sprintf("%d/%d", p.Current, p.Total))
		if r.opts.Verbose {
			e.Info(p.Label)
		} else {
			e.Debug(p.Label)
		}
	}

	b, codes, err := r.s.deps.Fetcher.FetchBlockComplete(ctx, ref, formats, versions, SyncTheme, progress)
	if err != nil {
		return err
	}
	if err := r.s.deps.Catalog.SetBlock(b); err != nil {
		return err
	}
	stored := 0
	for i := range codes {
		if err := r.s.deps.Cache.SetVariant(&codes[i]); err != nil {
			log.WithError(err).WithField("variant", codes[i].VariantSlug).Warn("cache variant code")
			continue
		}
		stored++
	}

	r.report.BlocksSynced++
	r.report.Variants += b.VariantCount
	r.report.Codes += stored
	r.processedSinceRecycle++

	log.WithFields(logging.Fields{
		"variants": b.VariantCount,
		"codes":    stored,
		"elapsed":  r.s.deps.Now().Sub(started).Round(100 * time.Millisecond).String(),
	}).Info("block synced")
	if b.VariantCount == 0 {
		log.Warn("0 variants found; possible rate limiting or page structure change")
	}
	return nil
}

// fail records a block failure in the report and the journal.
func (r *run) fail(ref scrape.BlockRef, err error) {
	key := block.BlockKey(ref.Category, ref.Subcategory, ref.Slug)
	f := BlockFailure{Block: key, Message: err.Error()}
	if pe, ok := apperrors.As(err); ok {
		f.Code = string(pe.Code)
		f.Message = pe.Message
	}
	r.report.BlocksFailed++
	r.report.Failures = append(r.report.Failures, f)
	r.logger.WithField("block", key).WithError(err).Error("block failed")

	if r.entry == nil {
		return
	}
	jf := &db.Failure{RunID: r.entry.ID, BlockKey: key, Code: f.Code, Message: f.Message, CreatedAt: r.s.deps.Now().UnixMilli()}
	if err := db.InsertFailure(r.s.deps.Journal, jf); err != nil {
		r.logger.WithError(err).Warn("journal failure")
	}
}

// begin opens the journal entry. Journal errors never fail the run.
func (r *run) begin(started time.Time) {
	if r.s.deps.Journal == nil {
		return
	}
	entry := &db.Run{
		ID:           r.report.RunID,
		Mode:         r.report.Mode,
		Category:     string(r.opts.Context),
		Block:        r.opts.Block,
		Force:        r.opts.Force,
		MetadataOnly: r.opts.MetadataOnly,
		Status:       db.StatusRunning,
		StartedAt:    started.UnixMilli(),
	}
	if err := db.InsertRun(r.s.deps.Journal, entry); err != nil {
		r.logger.WithError(err).Warn("journal run start")
		return
	}
	r.entry = entry
}

func (r *run) end(runErr error) {
	rep := r.report
	r.logger.WithFields(logging.Fields{
		"synced":   rep.BlocksSynced,
		"skipped":  rep.BlocksSkipped,
		"failed":   rep.BlocksFailed,
		"variants": rep.Variants,
		"codes":    rep.Codes,
	}).Info("sync done")

	if r.entry == nil {
		return
	}
	finished := r.s.deps.Now().UnixMilli()
	e := r.entry
	e.Status = db.StatusCompleted
	switch {
	case rep.Halted:
		e.Status = db.StatusHalted
	case runErr != nil:
		e.Status = db.StatusFailed
	}
	if runErr != nil {
		e.Error = runErr.Error()
	}
	e.BlocksTotal = rep.BlocksTotal
	e.BlocksSynced = rep.BlocksSynced
	e.BlocksSkipped = rep.BlocksSkipped
	e.BlocksFailed = rep.BlocksFailed
	e.Variants = rep.Variants
	e.Codes = rep.Codes
	e.FinishedAt = &finished
	if err := db.UpdateRun(r.s.deps.Journal, e); err != nil {
		r.logger.WithError(err).Warn("journal run end")
	}
}
