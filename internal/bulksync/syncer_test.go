package bulksync

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/hpungsan/plusblocks/internal/block"
	"github.com/hpungsan/plusblocks/internal/cache"
	"github.com/hpungsan/plusblocks/internal/catalog"
	"github.com/hpungsan/plusblocks/internal/db"
	apperrors "github.com/hpungsan/plusblocks/internal/errors"
	"github.com/hpungsan/plusblocks/internal/scrape"
)

type fakeFetcher struct {
	index    []scrape.IndexEntry
	indexErr error
	// failures maps a block slug to the error FetchBlockComplete returns.
	failures map[string]error
	variants int
	calls    []string
	formats  [][]block.Format
}

func (f *fakeFetcher) FetchBlockIndex(context.Context) ([]scrape.IndexEntry, error) {
	return f.index, f.indexErr
}

func (f *fakeFetcher) FetchBlockComplete(_ context.Context, ref scrape.BlockRef, formats []block.Format, versions []block.Version, theme block.Theme, progress scrape.ProgressFunc) (*block.Block, []block.VariantCode, error) {
	f.calls = append(f.calls, ref.Slug)
	f.formats = append(f.formats, formats)
	if err := f.failures[ref.Slug]; err != nil {
		return nil, nil, err
	}
	b := &block.Block{
		Name:         ref.Slug,
		Slug:         ref.Slug,
		Category:     ref.Category,
		Subcategory:  ref.Subcategory,
		URL:          ref.URL(),
		VariantCount: f.variants,
		Variants:     make([]block.Variant, 0, f.variants),
	}
	codes := make([]block.VariantCode, 0)
	for i := 0; i < f.variants; i++ {
		v := block.Variant{Index: i, Name: fmt.Sprintf("V%d", i), Slug: fmt.Sprintf("v%d", i), ComponentID: fmt.Sprintf("component-%d", i)}
		b.Variants = append(b.Variants, v)
		for _, format := range formats {
			for _, version := range versions {
				if progress != nil {
					progress(scrape.Progress{Current: len(codes) + 1, Label: v.Name})
				}
				codes = append(codes, block.VariantCode{
					Category: ref.Category, BlockSlug: ref.Slug, VariantSlug: v.Slug, VariantName: v.Name,
					Format: format, Version: version, Theme: theme, Code: "export default {}",
					Dependencies: []string{}, CachedAt: 1_700_000_000_000,
				})
			}
		}
	}
	return b, codes, nil
}

type fakeBrowser struct {
	recycles int
	closes   int
}

func (b *fakeBrowser) Recycle(context.Context, time.Duration) error {
	b.recycles++
	return nil
}

func (b *fakeBrowser) Close() error {
	b.closes++
	return nil
}

type harness struct {
	fetcher *fakeFetcher
	browser *fakeBrowser
	catalog *catalog.Store
	legacy  *catalog.LegacyStore
	cache   *cache.Manager
	deps    Deps
}

func newHarness(t *testing.T, index []scrape.IndexEntry) *harness {
	t.Helper()
	dir := t.TempDir()
	now := func() time.Time { return time.UnixMilli(1_700_000_000_000) }

	c, err := cache.Open(filepath.Join(dir, "cache"), cache.Options{Debounce: time.Hour, Now: now})
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })

	journal, err := db.Init(dir)
	require.NoError(t, err)
	t.Cleanup(func() { journal.Close() })

	h := &harness{
		fetcher: &fakeFetcher{index: index, variants: 2, failures: map[string]error{}},
		browser: &fakeBrowser{},
		catalog: catalog.NewStore(filepath.Join(dir, "catalog-v3.json"), catalog.Options{Now: now}),
		legacy:  catalog.NewLegacyStore(filepath.Join(dir, "catalog.json"), catalog.Options{Now: now}),
		cache:   c,
	}
	h.deps = Deps{
		Fetcher:         h.fetcher,
		Browser:         h.browser,
		Catalog:         h.catalog,
		Legacy:          h.legacy,
		Cache:           c,
		Journal:         journal,
		Now:             now,
		RecycleInterval: 15,
	}
	return h
}

func entry(ctx block.Context, sub, slug string) scrape.IndexEntry {
	return scrape.IndexEntry{
		Name:           slug,
		Slug:           slug,
		Category:       ctx,
		Subcategory:    sub,
		ComponentCount: 2,
		URL:            block.UIBlocksURL + "/" + string(ctx) + "/" + sub + "/" + slug,
	}
}

var testIndex = []scrape.IndexEntry{
	entry(block.ContextMarketing, "sections", "heroes"),
	entry(block.ContextMarketing, "sections", "pricing"),
	entry(block.ContextApplicationUI, "forms", "sign-in-forms"),
}

func TestRun_Full(t *testing.T) {
	h := newHarness(t, testIndex)

	report, err := New(h.deps).Run(context.Background(), Options{})
	require.NoError(t, err)
	require.Equal(t, ModeFull, report.Mode)
	require.Equal(t, 3, report.BlocksTotal)
	require.Equal(t, 3, report.BlocksSynced)
	require.Equal(t, 6, report.Variants)
	// 2 variants x 3 formats x 2 versions per block
	require.Equal(t, 36, report.Codes)
	require.False(t, report.Halted)

	require.Len(t, h.catalog.Blocks("", ""), 3)
	require.Equal(t, 36, h.cache.VariantStats().TotalVariants)
	stats, ok := h.catalog.Stats()
	require.True(t, ok)
	require.Equal(t, 36, stats.TotalCachedVariants)

	// The index phase lands in the legacy catalog.
	require.Len(t, h.legacy.Categories(block.ContextMarketing), 2)
	require.Len(t, h.legacy.Categories(block.ContextApplicationUI), 1)

	require.Equal(t, 1, h.browser.closes)
	require.Zero(t, h.browser.recycles)

	run, err := db.LatestRun(h.deps.Journal)
	require.NoError(t, err)
	require.NotNil(t, run)
	require.Equal(t, report.RunID, run.ID)
	require.Equal(t, db.StatusCompleted, run.Status)
	require.Equal(t, 36, run.Codes)
	require.NotNil(t, run.FinishedAt)
}

func TestRun_ContextFilter(t *testing.T) {
	h := newHarness(t, testIndex)

	report, err := New(h.deps).Run(context.Background(), Options{Context: block.ContextApplicationUI})
	require.NoError(t, err)
	require.Equal(t, 1, report.BlocksTotal)
	require.Equal(t, []string{"sign-in-forms"}, h.fetcher.calls)
	// The whole index is still recorded.
	require.Len(t, h.legacy.Categories(""), 3)
}

func TestRun_SkipsCompleteBlocks(t *testing.T) {
	h := newHarness(t, testIndex)
	s := New(h.deps)

	_, err := s.Run(context.Background(), Options{})
	require.NoError(t, err)
	h.fetcher.calls = nil

	report, err := s.Run(context.Background(), Options{})
	require.NoError(t, err)
	require.Empty(t, h.fetcher.calls)
	require.Equal(t, 3, report.BlocksSkipped)
	require.Zero(t, report.BlocksSynced)
	require.Equal(t, 6, report.Variants)

	// A missing code makes the block incomplete again.
	key := block.CacheKey{Context: block.ContextMarketing, Block: "pricing", Variant: "v1", Format: block.FormatVue, Theme: block.ThemeLight, Version: block.VersionV3}
	require.True(t, h.cache.Delete(key.String()))

	report, err = s.Run(context.Background(), Options{})
	require.NoError(t, err)
	require.Equal(t, []string{"pricing"}, h.fetcher.calls)
	require.Equal(t, 2, report.BlocksSkipped)
	require.Equal(t, 1, report.BlocksSynced)
}

func TestRun_ForceResyncs(t *testing.T) {
	h := newHarness(t, testIndex)
	s := New(h.deps)

	_, err := s.Run(context.Background(), Options{})
	require.NoError(t, err)
	h.fetcher.calls = nil

	report, err := s.Run(context.Background(), Options{Force: true})
	require.NoError(t, err)
	require.Len(t, h.fetcher.calls, 3)
	require.Zero(t, report.BlocksSkipped)
}

func TestRun_MetadataOnly(t *testing.T) {
	h := newHarness(t, testIndex)
	s := New(h.deps)

	report, err := s.Run(context.Background(), Options{MetadataOnly: true})
	require.NoError(t, err)
	require.Equal(t, 3, report.BlocksSynced)
	require.Zero(t, report.Codes)
	for _, f := range h.fetcher.formats {
		require.Empty(t, f)
	}

	// Metadata-only skips blocks with variants even though no code is cached.
	h.fetcher.calls = nil
	report, err = s.Run(context.Background(), Options{MetadataOnly: true})
	require.NoError(t, err)
	require.Empty(t, h.fetcher.calls)
	require.Equal(t, 3, report.BlocksSkipped)
}

func TestRun_ContinuesPastBlockFailure(t *testing.T) {
	h := newHarness(t, testIndex)
	h.fetcher.failures["heroes"] = apperrors.NewCodeFetchFailed(0)

	report, err := New(h.deps).Run(context.Background(), Options{})
	require.NoError(t, err)
	require.Equal(t, 2, report.BlocksSynced)
	require.Equal(t, 1, report.BlocksFailed)
	require.Len(t, report.Failures, 1)
	require.Equal(t, "marketing/sections/heroes", report.Failures[0].Block)
	require.Equal(t, string(apperrors.ErrCodeFetchFailed), report.Failures[0].Code)

	failures, err := db.ListFailures(h.deps.Journal, report.RunID)
	require.NoError(t, err)
	require.Len(t, failures, 1)
	require.Equal(t, "CODE_FETCH_FAILED", failures[0].Code)
}

func TestRun_AuthHalts(t *testing.T) {
	h := newHarness(t, testIndex)
	h.fetcher.failures["pricing"] = apperrors.NewAuthExpired()

	report, err := New(h.deps).Run(context.Background(), Options{})
	require.True(t, apperrors.Is(err, apperrors.ErrAuthExpired))
	require.True(t, report.Halted)
	require.Equal(t, []string{"heroes", "pricing"}, h.fetcher.calls)
	require.Equal(t, 1, report.BlocksSynced)
	require.Equal(t, 1, h.browser.closes)

	run, err := db.GetRun(h.deps.Journal, report.RunID)
	require.NoError(t, err)
	require.Equal(t, db.StatusHalted, run.Status)
	require.Contains(t, run.Error, "AUTH_EXPIRED")
}

func TestRun_IndexFailure(t *testing.T) {
	h := newHarness(t, nil)
	h.fetcher.indexErr = errors.New("navigation timeout")

	_, err := New(h.deps).Run(context.Background(), Options{})
	require.Error(t, err)

	run, err := db.LatestRun(h.deps.Journal)
	require.NoError(t, err)
	require.Equal(t, db.StatusFailed, run.Status)
	require.Equal(t, "navigation timeout", run.Error)
	require.Equal(t, 1, h.browser.closes)
}

func TestRun_RecyclesBrowser(t *testing.T) {
	index := make([]scrape.IndexEntry, 0, 5)
	for i := 0; i < 5; i++ {
		index = append(index, entry(block.ContextEcommerce, "components", fmt.Sprintf("block-%d", i)))
	}
	h := newHarness(t, index)
	h.deps.RecycleInterval = 2
	// Failures count toward the recycle interval.
	h.fetcher.failures["block-1"] = errors.New("boom")

	_, err := New(h.deps).Run(context.Background(), Options{MetadataOnly: true})
	require.NoError(t, err)
	// Recycled before block-2 and before block-4.
	require.Equal(t, 2, h.browser.recycles)
}

func TestRun_SingleBlock(t *testing.T) {
	h := newHarness(t, testIndex)
	require.NoError(t, h.catalog.SetBlock(&block.Block{
		Name: "Heroes", Slug: "heroes", Category: block.ContextMarketing, Subcategory: "sections",
	}))

	report, err := New(h.deps).Run(context.Background(), Options{Context: block.ContextMarketing, Block: "heroes"})
	require.NoError(t, err)
	require.Equal(t, ModeBlock, report.Mode)
	require.Equal(t, []string{"heroes"}, h.fetcher.calls)
	require.Equal(t, 12, report.Codes)

	b, ok := h.catalog.FindBlock(block.ContextMarketing, "heroes")
	require.True(t, ok)
	require.Len(t, b.Variants, 2)
}

func TestRun_SingleBlockErrors(t *testing.T) {
	h := newHarness(t, testIndex)
	s := New(h.deps)

	_, err := s.Run(context.Background(), Options{Block: "heroes"})
	require.True(t, apperrors.Is(err, apperrors.ErrInvalidRequest))

	_, err = s.Run(context.Background(), Options{Context: block.ContextMarketing, Block: "heroes"})
	require.True(t, apperrors.Is(err, apperrors.ErrBlockNotFound))
	require.Empty(t, h.fetcher.calls)
}

func TestRun_Cancelled(t *testing.T) {
	h := newHarness(t, testIndex)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	report, err := New(h.deps).Run(ctx, Options{})
	require.ErrorIs(t, err, context.Canceled)
	require.True(t, report.Halted)
	require.Empty(t, h.fetcher.calls)
}
