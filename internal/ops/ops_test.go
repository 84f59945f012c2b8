package ops

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/hpungsan/plusblocks/internal/block"
	"github.com/hpungsan/plusblocks/internal/browser"
	"github.com/hpungsan/plusblocks/internal/cache"
	"github.com/hpungsan/plusblocks/internal/catalog"
	"github.com/hpungsan/plusblocks/internal/config"
	"github.com/hpungsan/plusblocks/internal/db"
	"github.com/hpungsan/plusblocks/internal/scrape"
)

var testNow = time.UnixMilli(1_700_000_000_000)

type fakeCodes struct {
	requests []scrape.CodeRequest
	err      error
}

func (f *fakeCodes) FetchVariantCode(_ context.Context, req scrape.CodeRequest) (*block.VariantCode, error) {
	f.requests = append(f.requests, req)
	if f.err != nil {
		return nil, f.err
	}
	return &block.VariantCode{
		Category:     req.Block.Category,
		BlockSlug:    req.Block.Slug,
		VariantSlug:  "grid",
		VariantName:  "Grid",
		Format:       req.Format,
		Version:      req.Version,
		Theme:        req.Theme,
		Code:         "import { Dialog } from '@headlessui/react'",
		Dependencies: []string{"@headlessui/react"},
		CachedAt:     testNow.UnixMilli(),
	}, nil
}

func newTestEnv(t *testing.T) (*Env, *fakeCodes) {
	t.Helper()
	paths := config.Paths(t.TempDir())
	now := func() time.Time { return testNow }

	c, err := cache.Open(paths.CacheDir, cache.Options{Debounce: time.Hour, Now: now})
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })

	journal, err := db.Init(paths.Base)
	require.NoError(t, err)
	t.Cleanup(func() { journal.Close() })

	codes := &fakeCodes{}
	env := &Env{
		Catalog: catalog.NewStore(paths.Catalog, catalog.Options{Now: now}),
		Legacy:  catalog.NewLegacyStore(paths.LegacyCatalog, catalog.Options{Now: now}),
		Cache:   c,
		Session: browser.NewSessionStore(paths.Cookies),
		Journal: journal,
		Codes:   codes,
		Now:     now,
	}
	return env, codes
}

func login(t *testing.T, env *Env) {
	t.Helper()
	require.NoError(t, env.Session.Save([]browser.Cookie{{Name: "session", Value: "abc", Domain: ".tailwindcss.com", Path: "/", Expires: -1}}))
}

func seedCatalog(t *testing.T, env *Env) {
	t.Helper()
	blocks := []block.Block{
		{
			Name: "Testimonials", Slug: "testimonials", Category: block.ContextMarketing, Subcategory: "sections",
			Description: "Quotes from happy customers.",
			Variants: []block.Variant{
				{Index: 0, Name: "Simple centered", Slug: "simple-centered"},
				{Index: 1, Name: "Grid", Slug: "grid"},
			},
		},
		{
			Name: "Pricing Sections", Slug: "pricing", Category: block.ContextMarketing, Subcategory: "sections",
			Variants: []block.Variant{{Index: 0, Name: "Three tiers", Slug: "three-tiers"}},
		},
		{
			Name: "Sign-in Forms", Slug: "sign-in-forms", Category: block.ContextApplicationUI, Subcategory: "forms",
			Variants: []block.Variant{{Index: 0, Name: "Simple", Slug: "simple"}},
		},
	}
	for i := range blocks {
		blocks[i].VariantCount = len(blocks[i].Variants)
		require.NoError(t, env.Catalog.SetBlock(&blocks[i]))
	}
}
