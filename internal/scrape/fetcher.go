// Package scrape extracts the block index, block metadata and variant source
// code from the catalog site through a browser.Page.
package scrape

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/hpungsan/plusblocks/internal/block"
	"github.com/hpungsan/plusblocks/internal/browser"
	apperrors "github.com/hpungsan/plusblocks/internal/errors"
	"github.com/hpungsan/plusblocks/internal/logging"
	"github.com/hpungsan/plusblocks/internal/ratelimit"
	"github.com/hpungsan/plusblocks/internal/retry"
)

// UIBlocksURL is the master index page.
const UIBlocksURL = block.UIBlocksURL

// codeSoftWait bounds the wait for code to render after a tab click.
const codeSoftWait = 5 * time.Second

// PageOpener opens configured pages. *browser.Driver implements it.
type PageOpener interface {
	NewPage(ctx context.Context) (browser.Page, error)
}

// CookieSource supplies the stored session. *browser.SessionStore implements it.
type CookieSource interface {
	Load() (*browser.CookieJar, bool)
}

// BlockRef addresses a block page.
type BlockRef struct {
	Category    block.Context
	Subcategory string
	Slug        string
}

// URL returns the block page address.
func (r BlockRef) URL() string {
	return fmt.Sprintf("%s/%s/%s/%s", UIBlocksURL, r.Category, r.Subcategory, r.Slug)
}

// CodeRequest identifies one variant code to extract.
type CodeRequest struct {
	Block        BlockRef
	VariantIndex int
	Format       block.Format
	Version      block.Version
	Theme        block.Theme
}

// Progress reports batch position.
type Progress struct {
	Current int    `json:"current"`
	Total   int    `json:"total"`
	Label   string `json:"label"`
}

// ProgressFunc receives batch progress. It may be nil.
type ProgressFunc func(Progress)

// Options configures a Fetcher.
type Options struct {
	Limiter         *ratelimit.Limiter
	Retry           retry.Options
	SelectorTimeout time.Duration
	FormatSettle    time.Duration
	VersionSettle   time.Duration
	UISettle        time.Duration
	Strategies      []Strategy
	Logger          logging.Logger
	Now             func() time.Time
}

// Fetcher runs extractions. All page loads go through the shared limiter.
type Fetcher struct {
	pages   PageOpener
	cookies CookieSource
	opts    Options
	logger  logging.Logger
}

// NewFetcher creates a Fetcher.
func NewFetcher(pages PageOpener, cookies CookieSource, opts Options) *Fetcher {
	if opts.Limiter == nil {
		opts.Limiter = ratelimit.New(0)
	}
	if opts.SelectorTimeout <= 0 {
		opts.SelectorTimeout = 10 * time.Second
	}
	if len(opts.Strategies) == 0 {
		opts.Strategies = DefaultStrategies
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Retry.Abort == nil {
		opts.Retry.Abort = apperrors.IsDeterministic
	}
	return &Fetcher{
		pages:   pages,
		cookies: cookies,
		opts:    opts,
		logger:  logging.OrDiscard(opts.Logger),
	}
}

// retryOpts returns the shared policy with retry logging for label.
func (f *Fetcher) retryOpts(label string) retry.Options {
	o := f.opts.Retry
	o.OnRetry = func(attempt int, err error, delay time.Duration) {
		f.logger.WithFields(logging.Fields{
			"target":  label,
			"attempt": attempt,
			"of":      o.MaxAttempts,
			"delay":   delay.String(),
		}).WithError(err).Warn("retrying")
	}
	return o
}

// open applies the session, navigates, and checks for a login redirect.
// The page is closed on any error.
func (f *Fetcher) open(ctx context.Context, url string, onLogin func() error) (browser.Page, error) {
	jar, ok := f.cookies.Load()
	if !ok || len(jar.Cookies) == 0 {
		return nil, apperrors.NewAuthRequired()
	}
	page, err := f.pages.NewPage(ctx)
	if err != nil {
		return nil, err
	}
	fail := func(err error) (browser.Page, error) {
		_ = page.Close()
		return nil, err
	}
	if err := page.SetCookies(jar.Params()); err != nil {
		return fail(fmt.Errorf("apply cookies: %w", err))
	}
	if err := page.Navigate(ctx, url); err != nil {
		return fail(fmt.Errorf("navigate %s: %w", url, err))
	}
	current, err := page.URL()
	if err != nil {
		return fail(err)
	}
	if strings.Contains(current, "/login") {
		return fail(onLogin())
	}
	return page, nil
}

func authRequired() error { return apperrors.NewAuthRequired() }

func authExpired() error { return apperrors.NewAuthExpired() }

// settle pauses for d unless d is zero or ctx ends first.
func settle(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
	case <-ctx.Done():
	}
}

// FetchBlockIndex loads the master index page and returns every block link
// in document order.
func (f *Fetcher) FetchBlockIndex(ctx context.Context) ([]IndexEntry, error) {
	if err := f.opts.Limiter.Acquire(ctx); err != nil {
		return nil, err
	}
	f.logger.WithField("url", UIBlocksURL).Info("loading block index")

	page, err := f.open(ctx, UIBlocksURL, authExpired)
	if err != nil {
		return nil, err
	}
	defer func() { _ = page.Close() }()

	doc, err := page.HTML()
	if err != nil {
		return nil, fmt.Errorf("read index page: %w", err)
	}
	entries, err := ParseBlockIndex(strings.NewReader(doc))
	if err != nil {
		return nil, err
	}
	f.logger.WithField("blocks", len(entries)).Info("block index loaded")
	return entries, nil
}

// FetchBlockVariants loads a block page and returns its metadata without code.
func (f *Fetcher) FetchBlockVariants(ctx context.Context, ref BlockRef) (*block.Block, error) {
	if err := f.opts.Limiter.Acquire(ctx); err != nil {
		return nil, err
	}
	return retry.Do(ctx, f.retryOpts(ref.Slug), func(ctx context.Context) (*block.Block, error) {
		page, err := f.open(ctx, ref.URL(), authRequired)
		if err != nil {
			return nil, err
		}
		defer func() { _ = page.Close() }()

		if err := page.WaitElement(ctx, "h1", f.opts.SelectorTimeout); err != nil {
			return nil, fmt.Errorf("wait for block heading: %w", err)
		}
		meta, err := f.readBlockPage(page)
		if err != nil {
			return nil, err
		}
		return f.toBlock(ref, meta), nil
	})
}

func (f *Fetcher) readBlockPage(page browser.Page) (*BlockPage, error) {
	doc, err := page.HTML()
	if err != nil {
		return nil, fmt.Errorf("read block page: %w", err)
	}
	return ParseBlockPage(strings.NewReader(doc))
}

func (f *Fetcher) toBlock(ref BlockRef, meta *BlockPage) *block.Block {
	return &block.Block{
		Name:          meta.Name,
		Slug:          ref.Slug,
		Category:      ref.Category,
		Subcategory:   ref.Subcategory,
		URL:           ref.URL(),
		Description:   meta.Description,
		VariantCount:  len(meta.Variants),
		Variants:      meta.Variants,
		LastFetchedAt: block.Millis(f.opts.Now()),
	}
}

func (f *Fetcher) controlsFor(page browser.Page, v block.Variant) *controls {
	return &controls{
		page:       page,
		variant:    v,
		strategies: f.opts.Strategies,
		logger:     f.logger.WithField("variant", v.Slug),
	}
}

// FetchVariantCode loads the block page and extracts one variant's code for
// the requested format, version and theme.
func (f *Fetcher) FetchVariantCode(ctx context.Context, req CodeRequest) (*block.VariantCode, error) {
	if err := f.opts.Limiter.Acquire(ctx); err != nil {
		return nil, err
	}
	label := fmt.Sprintf("%s[%d] %s %s %s", req.Block.Slug, req.VariantIndex, req.Format, req.Version, req.Theme)
	f.logger.WithField("target", label).Debug("fetching variant code")

	return retry.Do(ctx, f.retryOpts(label), func(ctx context.Context) (*block.VariantCode, error) {
		page, err := f.open(ctx, req.Block.URL(), authRequired)
		if err != nil {
			return nil, err
		}
		defer func() { _ = page.Close() }()

		if err := page.WaitElement(ctx, tabPanelSelector, f.opts.SelectorTimeout); err != nil {
			return nil, fmt.Errorf("wait for tab panels: %w", err)
		}
		meta, err := f.readBlockPage(page)
		if err != nil {
			return nil, err
		}
		if req.VariantIndex < 0 || req.VariantIndex >= len(meta.Variants) {
			return nil, apperrors.NewVariantIndexOutOfRange(req.VariantIndex, len(meta.Variants))
		}
		v := meta.Variants[req.VariantIndex]

		c := f.controlsFor(page, v)
		tab, ok := f.clickTab(ctx, page, c)
		if !ok {
			c.logger.Debug("no Code tab bound to variant")
		}
		code, ok := f.extractFromTab(ctx, c, tab, req.Format, req.Version, req.Theme)
		if !ok {
			return nil, apperrors.NewCodeFetchFailed(req.VariantIndex)
		}
		return f.variantCode(req.Block, v, req.Format, req.Version, req.Theme, code), nil
	})
}

// clickTab clicks the variant's Code tab and waits softly for code to render.
func (f *Fetcher) clickTab(ctx context.Context, page browser.Page, c *controls) (browser.Element, bool) {
	tab, ok := c.clickCodeTab()
	if !ok {
		return nil, false
	}
	_ = page.WaitElement(ctx, "code", codeSoftWait)
	settle(ctx, f.opts.UISettle)
	return tab, true
}

func (f *Fetcher) variantCode(ref BlockRef, v block.Variant, format block.Format, version block.Version, theme block.Theme, code string) *block.VariantCode {
	return &block.VariantCode{
		Category:     ref.Category,
		BlockSlug:    ref.Slug,
		VariantSlug:  v.Slug,
		VariantName:  v.Name,
		ComponentID:  v.ComponentID,
		Format:       format,
		Version:      version,
		Theme:        theme,
		Code:         code,
		Dependencies: block.ParseDependencies(code),
		CachedAt:     block.Millis(f.opts.Now()),
	}
}

// FetchAllVariantCodes fetches block metadata, then every variant × format ×
// version combination with one page load each. Per-combination failures are
// logged and skipped; an authentication failure aborts the batch.
func (f *Fetcher) FetchAllVariantCodes(ctx context.Context, ref BlockRef, formats []block.Format, versions []block.Version, theme block.Theme, progress ProgressFunc) ([]block.VariantCode, error) {
	b, err := f.FetchBlockVariants(ctx, ref)
	if err != nil {
		return nil, err
	}

	total := len(b.Variants) * len(formats) * len(versions)
	current := 0
	codes := make([]block.VariantCode, 0, total)
	for _, v := range b.Variants {
		for _, format := range formats {
			for _, version := range versions {
				current++
				label := fmt.Sprintf("%s (%s, %s)", v.Name, format, version)
				if progress != nil {
					progress(Progress{Current: current, Total: total, Label: label})
				}
				vc, err := f.FetchVariantCode(ctx, CodeRequest{Block: ref, VariantIndex: v.Index, Format: format, Version: version, Theme: theme})
				if err != nil {
					if apperrors.IsAuth(err) || ctx.Err() != nil {
						return codes, err
					}
					f.logger.WithField("target", label).WithError(err).Warn("variant code failed")
					continue
				}
				codes = append(codes, *vc)
			}
		}
	}
	return codes, nil
}

// openBlock acquires a slot and opens the block page under the retry policy.
func (f *Fetcher) openBlock(ctx context.Context, ref BlockRef) (browser.Page, error) {
	if err := f.opts.Limiter.Acquire(ctx); err != nil {
		return nil, err
	}
	f.logger.WithField("url", ref.URL()).Debug("loading block page")
	return retry.Do(ctx, f.retryOpts(ref.Slug), func(ctx context.Context) (browser.Page, error) {
		return f.open(ctx, ref.URL(), authRequired)
	})
}

// FetchBlockCodeEfficient extracts every combination for the given variants
// from a single page load.
func (f *Fetcher) FetchBlockCodeEfficient(ctx context.Context, ref BlockRef, variants []block.Variant, formats []block.Format, versions []block.Version, theme block.Theme, progress ProgressFunc) ([]block.VariantCode, error) {
	page, err := f.openBlock(ctx, ref)
	if err != nil {
		return nil, err
	}
	defer func() { _ = page.Close() }()

	_ = page.WaitElement(ctx, tabPanelSelector, f.opts.SelectorTimeout)
	return f.codesForVariants(ctx, page, ref, variants, formats, versions, theme, progress), nil
}

// FetchBlockComplete reads block metadata and every combination's code from
// a single page load. This is the bulk sync primitive.
func (f *Fetcher) FetchBlockComplete(ctx context.Context, ref BlockRef, formats []block.Format, versions []block.Version, theme block.Theme, progress ProgressFunc) (*block.Block, []block.VariantCode, error) {
	page, err := f.openBlock(ctx, ref)
	if err != nil {
		return nil, nil, err
	}
	defer func() { _ = page.Close() }()

	if err := page.WaitElement(ctx, "h1", f.opts.SelectorTimeout); err != nil {
		return nil, nil, fmt.Errorf("wait for block heading: %w", err)
	}
	meta, err := f.readBlockPage(page)
	if err != nil {
		return nil, nil, err
	}
	b := f.toBlock(ref, meta)
	f.logger.WithFields(logging.Fields{"block": ref.Slug, "variants": len(b.Variants)}).Debug("block metadata read")

	if len(formats) == 0 || len(versions) == 0 || len(b.Variants) == 0 {
		return b, []block.VariantCode{}, nil
	}
	_ = page.WaitElement(ctx, tabPanelSelector, f.opts.SelectorTimeout)
	return b, f.codesForVariants(ctx, page, ref, b.Variants, formats, versions, theme, progress), nil
}

// codesForVariants clicks each variant's Code tab once and iterates formats
// and versions on the already loaded page. Combinations whose controls
// cannot be driven are skipped.
func (f *Fetcher) codesForVariants(ctx context.Context, page browser.Page, ref BlockRef, variants []block.Variant, formats []block.Format, versions []block.Version, theme block.Theme, progress ProgressFunc) []block.VariantCode {
	total := len(variants) * len(formats) * len(versions)
	current := 0
	codes := make([]block.VariantCode, 0, total)

	for _, v := range variants {
		if ctx.Err() != nil {
			break
		}
		c := f.controlsFor(page, v)
		tab, ok := f.clickTab(ctx, page, c)
		if !ok {
			c.logger.Warn("could not find Code tab")
			current += len(formats) * len(versions)
			continue
		}
		for _, format := range formats {
			for _, version := range versions {
				current++
				if progress != nil {
					progress(Progress{Current: current, Total: total, Label: fmt.Sprintf("%s (%s, %s)", v.Name, format, version)})
				}
				code, ok := f.extractFromTab(ctx, c, tab, format, version, theme)
				if !ok {
					continue
				}
				codes = append(codes, *f.variantCode(ref, v, format, version, theme, code))
			}
		}
	}
	return codes
}

// extractFromTab drives the format, version and theme controls for one
// combination and reads the code. A control that cannot be driven fails the
// combination, since the code shown would belong to another one.
func (f *Fetcher) extractFromTab(ctx context.Context, c *controls, tab browser.Element, format block.Format, version block.Version, theme block.Theme) (string, bool) {
	if !c.selectFormat(format) {
		c.logger.WithField("format", format).Warn("could not select format")
		return "", false
	}
	settle(ctx, f.opts.FormatSettle)
	if !c.selectVersion(version) {
		c.logger.WithField("version", version).Warn("could not select version")
		return "", false
	}
	settle(ctx, f.opts.VersionSettle)
	if theme == block.ThemeDark {
		if !c.selectDark() {
			c.logger.Warn("could not select dark theme")
			return "", false
		}
		settle(ctx, f.opts.VersionSettle)
	}
	code := c.extractCode(tab)
	return code, code != ""
}
