package cache

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/hpungsan/plusblocks/internal/block"
	apperrors "github.com/hpungsan/plusblocks/internal/errors"
)

type clock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

func setup(t *testing.T) (*Manager, *clock) {
	t.Helper()
	clk := &clock{t: time.UnixMilli(1_700_000_000_000)}
	m, err := Open(filepath.Join(t.TempDir(), "cache"), Options{Debounce: time.Hour, Now: clk.Now})
	require.NoError(t, err)
	t.Cleanup(func() { _ = m.Close() })
	return m, clk
}

func sampleCode(variant string, format block.Format, cachedAt int64) *block.VariantCode {
	return &block.VariantCode{
		Category:     block.ContextMarketing,
		BlockSlug:    "testimonials",
		VariantSlug:  variant,
		VariantName:  "Grid",
		ComponentID:  "component-1234abcd",
		Format:       format,
		Version:      block.VersionV4,
		Theme:        block.ThemeLight,
		Code:         "export default function Grid() {}",
		Dependencies: []string{"@heroicons/react"},
		CachedAt:     cachedAt,
	}
}

func TestSetGetVariant(t *testing.T) {
	m, clk := setup(t)
	vc := sampleCode("grid", block.FormatReact, block.Millis(clk.Now()))

	require.NoError(t, m.SetVariant(vc))
	require.True(t, m.HasVariant(vc.Key()))

	got, ok := m.GetVariant(vc.Key())
	require.True(t, ok)
	require.Equal(t, vc, got)

	_, err := os.Stat(filepath.Join(m.Dir(), "marketing--testimonials--grid--react--light--v4.1.json"))
	require.NoError(t, err)
}

func TestGetVariant_Miss(t *testing.T) {
	m, _ := setup(t)
	_, ok := m.GetVariant(sampleCode("grid", block.FormatReact, 0).Key())
	require.False(t, ok)
}

func TestGetVariant_ExpiredIsRemoved(t *testing.T) {
	m, clk := setup(t)
	vc := sampleCode("grid", block.FormatReact, block.Millis(clk.Now()))
	require.NoError(t, m.SetVariant(vc))

	clk.Advance(7*24*time.Hour + time.Millisecond)

	require.False(t, m.HasVariant(vc.Key()))
	_, ok := m.GetVariant(vc.Key())
	require.False(t, ok)
	require.Equal(t, 0, m.Stats().TotalEntries)

	_, err := os.Stat(filepath.Join(m.Dir(), vc.Key().String()+".json"))
	require.True(t, os.IsNotExist(err))
}

func TestSetVariant_ExpiryRunsFromCaptureTime(t *testing.T) {
	m, clk := setup(t)
	captured := clk.Now().Add(-6 * 24 * time.Hour)
	vc := sampleCode("grid", block.FormatReact, block.Millis(captured))
	require.NoError(t, m.SetVariant(vc))

	clk.Advance(23 * time.Hour)
	require.True(t, m.HasVariant(vc.Key()))

	clk.Advance(time.Hour + time.Millisecond)
	require.False(t, m.HasVariant(vc.Key()))
}

func TestSetVariant_DefaultsCaptureTime(t *testing.T) {
	m, clk := setup(t)
	vc := sampleCode("grid", block.FormatReact, 0)
	require.NoError(t, m.SetVariant(vc))

	m.mu.Lock()
	e := m.manifest.Entries[vc.Key().String()]
	m.mu.Unlock()
	require.Equal(t, block.Millis(clk.Now()), e.CachedAt)
	require.Equal(t, e.CachedAt+(7*24*time.Hour).Milliseconds(), e.ExpiresAt)
	require.Equal(t, "marketing/testimonials/grid", e.ID)
	require.Positive(t, e.Size)
}

func TestSetVariant_InvalidKey(t *testing.T) {
	m, _ := setup(t)
	vc := sampleCode("two--parts", block.FormatReact, 0)

	err := m.SetVariant(vc)
	require.True(t, apperrors.Is(err, apperrors.ErrInvalidKey))
	require.Equal(t, 0, m.Stats().TotalEntries)
}

func TestGetVariant_CorruptBodySelfHeals(t *testing.T) {
	m, _ := setup(t)
	vc := sampleCode("grid", block.FormatReact, 0)
	require.NoError(t, m.SetVariant(vc))
	require.NoError(t, os.WriteFile(filepath.Join(m.Dir(), vc.Key().String()+".json"), []byte("{nope"), 0600))

	_, ok := m.GetVariant(vc.Key())
	require.False(t, ok)
	require.False(t, m.HasVariant(vc.Key()))
}

func TestFlush_WritesStatsAndReopens(t *testing.T) {
	m, clk := setup(t)
	require.NoError(t, m.SetVariant(sampleCode("grid", block.FormatReact, 0)))
	require.NoError(t, m.SetVariant(sampleCode("grid", block.FormatVue, 0)))

	_, err := os.Stat(filepath.Join(m.Dir(), ManifestFile))
	require.True(t, os.IsNotExist(err), "manifest must not be written before the debounce window")

	require.NoError(t, m.Flush())

	var man Manifest
	data, err := os.ReadFile(filepath.Join(m.Dir(), ManifestFile))
	require.NoError(t, err)
	require.Contains(t, string(data), `"version": "2.0.0"`)

	reopened, err := Open(m.Dir(), Options{Now: clk.Now})
	require.NoError(t, err)
	man = *reopened.manifest
	require.Equal(t, 2, man.Stats.EntryCount)
	require.Len(t, man.Entries, 2)
	require.Equal(t, m.Stats().TotalSize, man.Stats.TotalSize)

	got, ok := reopened.GetVariant(sampleCode("grid", block.FormatVue, 0).Key())
	require.True(t, ok)
	require.Equal(t, block.FormatVue, got.Format)
}

func TestDebounce_CoalescesWrites(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "cache")
	m, err := Open(dir, Options{Debounce: 50 * time.Millisecond})
	require.NoError(t, err)

	for _, f := range block.Formats {
		require.NoError(t, m.SetVariant(sampleCode("grid", f, 0)))
	}
	manifest := filepath.Join(dir, ManifestFile)
	_, err = os.Stat(manifest)
	require.True(t, os.IsNotExist(err))

	require.Eventually(t, func() bool {
		_, err := os.Stat(manifest)
		return err == nil
	}, 2*time.Second, 10*time.Millisecond)

	reopened, err := Open(dir, Options{})
	require.NoError(t, err)
	require.Equal(t, 3, reopened.manifest.Stats.EntryCount)
}

func TestOpen_CorruptManifestStartsEmpty(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ManifestFile), []byte("not json"), 0600))

	m, err := Open(dir, Options{})
	require.NoError(t, err)
	require.Equal(t, 0, m.Stats().TotalEntries)

	require.NoError(t, m.SetVariant(sampleCode("grid", block.FormatHTML, 0)))
	require.NoError(t, m.Flush())
	reopened, err := Open(dir, Options{})
	require.NoError(t, err)
	require.Equal(t, 1, reopened.Stats().TotalEntries)
}

func TestPruneExpiredAndClearAll(t *testing.T) {
	m, clk := setup(t)
	old := block.Millis(clk.Now().Add(-8 * 24 * time.Hour))
	require.NoError(t, m.SetVariant(sampleCode("old-one", block.FormatReact, old)))
	require.NoError(t, m.SetVariant(sampleCode("old-two", block.FormatReact, old)))
	require.NoError(t, m.SetVariant(sampleCode("fresh", block.FormatReact, 0)))

	stats := m.Stats()
	require.Equal(t, 3, stats.TotalEntries)
	require.Equal(t, 2, stats.ExpiredCount)

	require.Equal(t, 2, m.PruneExpired())
	require.Equal(t, 1, m.Stats().TotalEntries)
	require.Equal(t, 0, m.PruneExpired())

	require.Equal(t, 1, m.ClearAll())
	require.Equal(t, Stats{}, m.Stats())
}

func TestBlockVariants_PrefixIsExact(t *testing.T) {
	m, _ := setup(t)
	require.NoError(t, m.SetVariant(sampleCode("grid", block.FormatReact, 0)))
	require.NoError(t, m.SetVariant(sampleCode("grid", block.FormatHTML, 0)))

	other := sampleCode("grid", block.FormatReact, 0)
	other.BlockSlug = "testimonials-extra"
	require.NoError(t, m.SetVariant(other))

	codes, err := m.BlockVariants(context.Background(), block.ContextMarketing, "testimonials")
	require.NoError(t, err)
	require.Len(t, codes, 2)
	require.Equal(t, block.FormatHTML, codes[0].Format)
	require.Equal(t, block.FormatReact, codes[1].Format)
}

func TestVariantStats(t *testing.T) {
	m, _ := setup(t)
	require.NoError(t, m.SetVariant(sampleCode("grid", block.FormatReact, 0)))
	require.NoError(t, m.SetVariant(sampleCode("grid", block.FormatVue, 0)))
	eco := sampleCode("grid", block.FormatReact, 0)
	eco.Category = block.ContextEcommerce
	require.NoError(t, m.SetVariant(eco))
	require.NoError(t, m.SetComponent(&block.Component{ID: "marketing/heroes/0", Category: "sections/heroes", Context: block.ContextMarketing, Format: block.FormatReact, Theme: block.ThemeLight, Version: block.VersionV4}))

	s := m.VariantStats()
	require.Equal(t, 3, s.TotalVariants)
	require.Equal(t, map[string]int{"marketing": 2, "ecommerce": 1}, s.ByCategory)
	require.Equal(t, map[string]int{"react": 2, "vue": 1}, s.ByFormat)
	require.Equal(t, 4, m.Stats().TotalEntries)
}

func TestComponentKey(t *testing.T) {
	require.Equal(t, "marketing--sections--heroes--3--react--dark--v3.4",
		ComponentKey("sections/heroes", block.ContextMarketing, 3, block.FormatReact, block.ThemeDark, block.VersionV3))
}

func TestSetGetComponent(t *testing.T) {
	m, clk := setup(t)
	c := &block.Component{
		ID:       "marketing/sections/heroes/2",
		Name:     "Hero Sections",
		Category: "sections/heroes",
		Context:  block.ContextMarketing,
		Code:     "<div></div>",
		Format:   block.FormatHTML,
		Theme:    block.ThemeLight,
		Version:  block.VersionV4,
	}
	require.NoError(t, m.SetComponent(c))

	got, ok := m.GetComponent("sections/heroes", block.ContextMarketing, 2, block.FormatHTML, block.ThemeLight, block.VersionV4)
	require.True(t, ok)
	require.Equal(t, c, got)

	clk.Advance(7*24*time.Hour + time.Millisecond)
	_, ok = m.GetComponent("sections/heroes", block.ContextMarketing, 2, block.FormatHTML, block.ThemeLight, block.VersionV4)
	require.False(t, ok)
}
