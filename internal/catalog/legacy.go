package catalog

import (
	"fmt"
	"sync"

	"github.com/hpungsan/plusblocks/internal/block"
)

// LegacyVersion is the schema version of catalog.json.
const LegacyVersion = "2.0.0"

// LegacyCategory is one index entry as recorded by the index phase of a sync.
type LegacyCategory struct {
	block.Category
	LastFetchedAt int64 `json:"lastFetchedAt"`
	IsComplete    bool  `json:"isComplete"`
}

// LegacyStats are recomputed on every save.
type LegacyStats struct {
	TotalCategories       int `json:"totalCategories"`
	TotalBlocks           int `json:"totalBlocks"`
	TotalCachedComponents int `json:"totalCachedComponents"`
}

// LegacyDocument is the persisted per-context category list.
type LegacyDocument struct {
	Version       string                             `json:"version"`
	GeneratedAt   int64                              `json:"generatedAt"`
	LastUpdatedAt int64                              `json:"lastUpdatedAt"`
	Contexts      map[block.Context][]LegacyCategory `json:"contexts"`
	Stats         LegacyStats                        `json:"stats"`
}

// LegacyStore is the flat category catalog.
type LegacyStore struct {
	opts Options
	mu   sync.Mutex
	file jsonFile[LegacyDocument]
}

// NewLegacyStore opens the legacy catalog at path.
func NewLegacyStore(path string, opts Options) *LegacyStore {
	opts = opts.withDefaults()
	return &LegacyStore{opts: opts, file: jsonFile[LegacyDocument]{path: path, logger: opts.Logger}}
}

// Exists reports whether the catalog file is present.
func (s *LegacyStore) Exists() bool {
	return s.file.exists()
}

func (s *LegacyStore) emptyDocument() *LegacyDocument {
	now := s.opts.Now().UnixMilli()
	doc := &LegacyDocument{
		Version:       LegacyVersion,
		GeneratedAt:   now,
		LastUpdatedAt: now,
		Contexts:      make(map[block.Context][]LegacyCategory),
	}
	for _, c := range block.Contexts {
		doc.Contexts[c] = []LegacyCategory{}
	}
	return doc
}

// Merge upserts categories of one context by slug. Existing categories keep
// their position; new ones are appended. Categories not in the batch survive.
func (s *LegacyStore) Merge(ctx block.Context, categories []LegacyCategory) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc := s.file.load()
	if doc == nil {
		doc = s.emptyDocument()
	}
	if doc.Contexts == nil {
		doc.Contexts = make(map[block.Context][]LegacyCategory)
	}

	merged := append([]LegacyCategory(nil), doc.Contexts[ctx]...)
	pos := make(map[string]int, len(merged))
	for i, c := range merged {
		pos[c.Slug] = i
	}
	for _, c := range categories {
		if i, ok := pos[c.Slug]; ok {
			merged[i] = c
			continue
		}
		pos[c.Slug] = len(merged)
		merged = append(merged, c)
	}
	doc.Contexts[ctx] = merged

	doc.LastUpdatedAt = s.opts.Now().UnixMilli()
	doc.Stats.TotalCategories = 0
	doc.Stats.TotalBlocks = 0
	for _, cats := range doc.Contexts {
		doc.Stats.TotalCategories += len(cats)
		for _, c := range cats {
			doc.Stats.TotalBlocks += c.ComponentCount
		}
	}
	if err := s.file.save(doc); err != nil {
		return fmt.Errorf("save legacy catalog: %w", err)
	}
	return nil
}

// Categories returns one context's categories, or all of them in site order
// when ctx is empty.
func (s *LegacyStore) Categories(ctx block.Context) []LegacyCategory {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]LegacyCategory, 0)
	doc := s.file.load()
	if doc == nil {
		return out
	}
	if ctx != "" {
		return append(out, doc.Contexts[ctx]...)
	}
	for _, c := range block.Contexts {
		out = append(out, doc.Contexts[c]...)
	}
	return out
}

// NeedsRefresh reports whether the catalog is missing or older than the refresh threshold.
func (s *LegacyStore) NeedsRefresh() bool {
	last, ok := s.LastUpdated()
	return !ok || stale(s.opts.Now(), last, s.opts.RefreshAfter)
}

// Stats returns the stored aggregate counts.
func (s *LegacyStore) Stats() (LegacyStats, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc := s.file.load()
	if doc == nil {
		return LegacyStats{}, false
	}
	return doc.Stats, true
}

// LastUpdated returns the last save time in Unix milliseconds.
func (s *LegacyStore) LastUpdated() (int64, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc := s.file.load()
	if doc == nil {
		return 0, false
	}
	return doc.LastUpdatedAt, true
}
