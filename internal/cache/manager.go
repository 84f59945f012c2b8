// Package cache stores extracted variant code on disk, one JSON file per key,
// indexed by a manifest that is persisted write-behind.
package cache

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/hpungsan/plusblocks/internal/block"
	apperrors "github.com/hpungsan/plusblocks/internal/errors"
	"github.com/hpungsan/plusblocks/internal/fsutil"
	"github.com/hpungsan/plusblocks/internal/logging"
)

// ManifestFile is the index file name inside the cache directory.
const ManifestFile = "manifest.json"

const (
	defaultTTL      = 7 * 24 * time.Hour
	defaultDebounce = time.Second
)

// Options configures a Manager.
type Options struct {
	TTL      time.Duration
	Debounce time.Duration
	Logger   logging.Logger
	Now      func() time.Time
}

// Manager owns the cache directory. Mutations update the in-memory manifest
// and schedule a single flush after the debounce window.
type Manager struct {
	dir          string
	manifestPath string
	ttl          time.Duration
	debounce     time.Duration
	logger       logging.Logger
	now          func() time.Time

	mu       sync.Mutex
	manifest *Manifest
	dirty    bool
	timer    *time.Timer

	flushMu sync.Mutex
}

// Open loads the manifest from dir, creating the directory if needed.
// A missing or corrupt manifest yields an empty cache.
func Open(dir string, opts Options) (*Manager, error) {
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("create cache dir: %w", err)
	}
	m := &Manager{
		dir:          dir,
		manifestPath: filepath.Join(dir, ManifestFile),
		ttl:          opts.TTL,
		debounce:     opts.Debounce,
		logger:       logging.OrDiscard(opts.Logger),
		now:          opts.Now,
	}
	if m.ttl <= 0 {
		m.ttl = defaultTTL
	}
	if m.debounce <= 0 {
		m.debounce = defaultDebounce
	}
	if m.now == nil {
		m.now = time.Now
	}
	m.manifest = m.loadManifest()
	return m, nil
}

func (m *Manager) loadManifest() *Manifest {
	var man Manifest
	if err := fsutil.ReadJSON(m.manifestPath, &man); err != nil {
		if !os.IsNotExist(err) {
			m.logger.WithError(err).Warn("cache manifest unreadable; starting empty")
		}
		return newManifest(m.now())
	}
	if man.Entries == nil {
		man.Entries = make(map[string]Entry)
	}
	if man.Version == "" {
		man.Version = ManifestVersion
	}
	return &man
}

// Dir returns the cache directory.
func (m *Manager) Dir() string { return m.dir }

// markDirtyLocked records a pending manifest change. Callers hold m.mu.
func (m *Manager) markDirtyLocked() {
	m.dirty = true
	if m.timer == nil {
		m.timer = time.AfterFunc(m.debounce, func() {
			if err := m.Flush(); err != nil {
				m.logger.WithError(err).Error("cache manifest flush failed")
			}
		})
	}
}

// Flush writes the manifest now if it has pending changes and cancels any
// scheduled flush. It is safe for concurrent use.
func (m *Manager) Flush() error {
	m.flushMu.Lock()
	defer m.flushMu.Unlock()

	m.mu.Lock()
	if m.timer != nil {
		m.timer.Stop()
		m.timer = nil
	}
	if !m.dirty {
		m.mu.Unlock()
		return nil
	}
	m.manifest.recomputeStats()
	snapshot := *m.manifest
	snapshot.Entries = make(map[string]Entry, len(m.manifest.Entries))
	for k, e := range m.manifest.Entries {
		snapshot.Entries[k] = e
	}
	m.dirty = false
	m.mu.Unlock()

	if _, err := fsutil.WriteJSON(m.manifestPath, &snapshot, 0600); err != nil {
		m.mu.Lock()
		m.dirty = true
		m.mu.Unlock()
		return fmt.Errorf("write cache manifest: %w", err)
	}
	return nil
}

// Close flushes pending changes.
func (m *Manager) Close() error {
	return m.Flush()
}

// lookup returns the live entry for key. An expired entry is deleted.
func (m *Manager) lookup(key string) (Entry, bool) {
	m.mu.Lock()
	e, ok := m.manifest.Entries[key]
	m.mu.Unlock()
	if !ok {
		return Entry{}, false
	}
	if e.expired(m.now()) {
		m.Delete(key)
		return Entry{}, false
	}
	return e, true
}

// readBody decodes the entry's file into v. A read or parse failure removes
// the entry so the next lookup is a clean miss.
func (m *Manager) readBody(key string, e Entry, v any) bool {
	if err := fsutil.ReadJSON(e.FilePath, v); err != nil {
		m.logger.WithField("key", key).WithError(err).Debug("dropping unreadable cache entry")
		m.Delete(key)
		return false
	}
	return true
}

// put writes body to the key's file and records the entry.
func (m *Manager) put(key string, body any, e Entry) error {
	e.FilePath = filepath.Join(m.dir, key+".json")
	n, err := fsutil.WriteJSON(e.FilePath, body, 0600)
	if err != nil {
		return fmt.Errorf("write cache entry: %w", err)
	}
	e.Size = int64(n)

	m.mu.Lock()
	m.manifest.Entries[key] = e
	m.markDirtyLocked()
	m.mu.Unlock()
	return nil
}

// GetVariant returns the cached code for key, or false on a miss.
func (m *Manager) GetVariant(key block.CacheKey) (*block.VariantCode, bool) {
	k := key.String()
	e, ok := m.lookup(k)
	if !ok {
		return nil, false
	}
	var vc block.VariantCode
	if !m.readBody(k, e, &vc) {
		return nil, false
	}
	return &vc, true
}

// SetVariant caches vc. Expiry is measured from vc.CachedAt, which defaults
// to now when unset.
func (m *Manager) SetVariant(vc *block.VariantCode) error {
	key := vc.Key()
	if err := key.Validate(); err != nil {
		return err
	}
	cachedAt := vc.CachedAt
	if cachedAt == 0 {
		cachedAt = block.Millis(m.now())
	}
	return m.put(key.String(), vc, Entry{
		ID:          key.EntryID(),
		Kind:        KindVariant,
		Category:    vc.Category,
		BlockSlug:   vc.BlockSlug,
		VariantSlug: vc.VariantSlug,
		Format:      vc.Format,
		Theme:       vc.Theme,
		Version:     vc.Version,
		CachedAt:    cachedAt,
		ExpiresAt:   cachedAt + m.ttl.Milliseconds(),
	})
}

// HasVariant reports whether a live entry exists for key without reading it.
func (m *Manager) HasVariant(key block.CacheKey) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.manifest.Entries[key.String()]
	return ok && !e.expired(m.now())
}

// BlockVariants returns every live cached code of one block, ordered by key.
// Unreadable bodies are skipped.
func (m *Manager) BlockVariants(ctx context.Context, category block.Context, blockSlug string) ([]block.VariantCode, error) {
	prefix := string(category) + "--" + blockSlug + "--"
	now := m.now()

	m.mu.Lock()
	keys := make([]string, 0)
	entries := make(map[string]Entry)
	for k, e := range m.manifest.Entries {
		if strings.HasPrefix(k, prefix) && e.Kind != KindComponent && !e.expired(now) {
			keys = append(keys, k)
			entries[k] = e
		}
	}
	m.mu.Unlock()
	sort.Strings(keys)

	out := make([]block.VariantCode, 0, len(keys))
	for _, k := range keys {
		if err := ctx.Err(); err != nil {
			return out, err
		}
		var vc block.VariantCode
		if err := fsutil.ReadJSON(entries[k].FilePath, &vc); err != nil {
			continue
		}
		out = append(out, vc)
	}
	return out, nil
}

// Delete removes key's file and manifest entry. It reports whether the entry existed.
func (m *Manager) Delete(key string) bool {
	m.mu.Lock()
	e, ok := m.manifest.Entries[key]
	if ok {
		delete(m.manifest.Entries, key)
		m.markDirtyLocked()
	}
	m.mu.Unlock()
	if ok && e.FilePath != "" {
		if err := os.Remove(e.FilePath); err != nil && !os.IsNotExist(err) {
			m.logger.WithField("key", key).WithError(err).Debug("remove cache file")
		}
	}
	return ok
}

func (m *Manager) keys(match func(Entry) bool) []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	keys := make([]string, 0, len(m.manifest.Entries))
	for k, e := range m.manifest.Entries {
		if match(e) {
			keys = append(keys, k)
		}
	}
	return keys
}

// PruneExpired deletes every expired entry and returns how many were removed.
func (m *Manager) PruneExpired() int {
	now := m.now()
	keys := m.keys(func(e Entry) bool { return e.expired(now) })
	for _, k := range keys {
		m.Delete(k)
	}
	if len(keys) > 0 {
		m.logger.WithField("pruned", len(keys)).Info("pruned expired cache entries")
	}
	return len(keys)
}

// ClearAll deletes every entry and returns how many were removed.
func (m *Manager) ClearAll() int {
	keys := m.keys(func(Entry) bool { return true })
	for _, k := range keys {
		m.Delete(k)
	}
	return len(keys)
}

// Stats summarizes the whole cache.
type Stats struct {
	TotalEntries int   `json:"totalEntries"`
	TotalSize    int64 `json:"totalSize"`
	ExpiredCount int   `json:"expiredCount"`
}

// Stats counts every entry, live or expired.
func (m *Manager) Stats() Stats {
	now := m.now()
	m.mu.Lock()
	defer m.mu.Unlock()
	var s Stats
	for _, e := range m.manifest.Entries {
		s.TotalEntries++
		s.TotalSize += e.Size
		if e.expired(now) {
			s.ExpiredCount++
		}
	}
	return s
}

// VariantStats breaks down live variant entries.
type VariantStats struct {
	TotalVariants int            `json:"totalVariants"`
	ByCategory    map[string]int `json:"byCategory"`
	ByFormat      map[string]int `json:"byFormat"`
	TotalSize     int64          `json:"totalSize"`
}

// VariantStats reads the breakdown from entry fields, so keys are never split.
func (m *Manager) VariantStats() VariantStats {
	now := m.now()
	s := VariantStats{ByCategory: make(map[string]int), ByFormat: make(map[string]int)}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range m.manifest.Entries {
		if e.Kind == KindComponent || e.expired(now) {
			continue
		}
		s.TotalVariants++
		s.ByCategory[string(e.Category)]++
		s.ByFormat[string(e.Format)]++
		s.TotalSize += e.Size
	}
	return s
}

// ComponentKey builds the legacy whole-component key. Slashes in the
// category slug become "--".
func ComponentKey(categorySlug string, ctx block.Context, index int, format block.Format, theme block.Theme, version block.Version) string {
	return fmt.Sprintf("%s--%s--%d--%s--%s--%s",
		ctx, strings.ReplaceAll(categorySlug, "/", "--"), index, format, theme, version)
}

// GetComponent returns a cached legacy component, or false on a miss.
func (m *Manager) GetComponent(categorySlug string, ctx block.Context, index int, format block.Format, theme block.Theme, version block.Version) (*block.Component, bool) {
	k := ComponentKey(categorySlug, ctx, index, format, theme, version)
	e, ok := m.lookup(k)
	if !ok {
		return nil, false
	}
	var c block.Component
	if !m.readBody(k, e, &c) {
		return nil, false
	}
	return &c, true
}

// SetComponent caches a legacy component. Its index is the last "/"-separated
// segment of the id and its expiry runs from now.
func (m *Manager) SetComponent(c *block.Component) error {
	index, _ := strconv.Atoi(c.ID[strings.LastIndex(c.ID, "/")+1:])
	if strings.Contains(c.Category, "..") || strings.Contains(c.Category, `\`) {
		return apperrors.NewInvalidKey("category", c.Category)
	}
	now := block.Millis(m.now())
	return m.put(ComponentKey(c.Category, c.Context, index, c.Format, c.Theme, c.Version), c, Entry{
		ID:        c.ID,
		Kind:      KindComponent,
		Format:    c.Format,
		Theme:     c.Theme,
		Version:   c.Version,
		CachedAt:  now,
		ExpiresAt: now + m.ttl.Milliseconds(),
	})
}
