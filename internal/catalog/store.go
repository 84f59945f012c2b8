package catalog

import (
	"fmt"
	"sort"
	"sync"

	"github.com/hpungsan/plusblocks/internal/block"
)

// StoreVersion is the schema version of catalog-v3.json.
const StoreVersion = "3.0.0"

// Stats are recomputed on every save.
type Stats struct {
	TotalBlocks         int `json:"totalBlocks"`
	TotalVariants       int `json:"totalVariants"`
	TotalCachedVariants int `json:"totalCachedVariants"`
}

// Document is the persisted block map keyed by "{category}/{subcategory}/{slug}".
type Document struct {
	Version       string                 `json:"version"`
	GeneratedAt   int64                  `json:"generatedAt"`
	LastUpdatedAt int64                  `json:"lastUpdatedAt"`
	Blocks        map[string]block.Block `json:"blocks"`
	Stats         Stats                  `json:"stats"`
}

// CategoryInfo summarizes one context for listing.
type CategoryInfo struct {
	Name          string        `json:"name"`
	Slug          block.Context `json:"slug"`
	BlockCount    int           `json:"blockCount"`
	Subcategories []string      `json:"subcategories"`
}

// Store is the block catalog with variants.
type Store struct {
	opts Options
	mu   sync.Mutex
	file jsonFile[Document]
}

// NewStore opens the catalog at path. Nothing is read until first use.
func NewStore(path string, opts Options) *Store {
	opts = opts.withDefaults()
	return &Store{opts: opts, file: jsonFile[Document]{path: path, logger: opts.Logger}}
}

// Exists reports whether the catalog file is present.
func (s *Store) Exists() bool {
	return s.file.exists()
}

// view runs fn with the loaded document, or nil when there is none.
func (s *Store) view(fn func(doc *Document)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(s.file.load())
}

// Blocks returns blocks ordered by key, filtered by category and, when
// category is set, by subcategory. Empty filters match everything.
func (s *Store) Blocks(category block.Context, subcategory string) []block.Block {
	out := make([]block.Block, 0)
	s.view(func(doc *Document) {
		if doc == nil {
			return
		}
		keys := make([]string, 0, len(doc.Blocks))
		for k := range doc.Blocks {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		for _, k := range keys {
			b := doc.Blocks[k]
			if category != "" && b.Category != category {
				continue
			}
			if category != "" && subcategory != "" && b.Subcategory != subcategory {
				continue
			}
			out = append(out, b)
		}
	})
	return out
}

// Block looks a block up by its full identity.
func (s *Store) Block(category block.Context, subcategory, slug string) (*block.Block, bool) {
	var found *block.Block
	s.view(func(doc *Document) {
		if doc == nil {
			return
		}
		if b, ok := doc.Blocks[block.BlockKey(category, subcategory, slug)]; ok {
			found = &b
		}
	})
	return found, found != nil
}

// FindBlock looks a block up by slug within a category, for callers that do
// not know the subcategory. The first match in key order wins.
func (s *Store) FindBlock(category block.Context, slug string) (*block.Block, bool) {
	for _, b := range s.Blocks(category, "") {
		if b.Slug == slug {
			return &b, true
		}
	}
	return nil, false
}

// Variants returns the variants of one block, or an empty list.
func (s *Store) Variants(category block.Context, subcategory, slug string) []block.Variant {
	b, ok := s.Block(category, subcategory, slug)
	if !ok {
		return []block.Variant{}
	}
	return b.Variants
}

// CategoryInfo counts blocks and distinct subcategories per context, in site order.
// Contexts without blocks are omitted.
func (s *Store) CategoryInfo() []CategoryInfo {
	counts := make(map[block.Context]int)
	subs := make(map[block.Context]map[string]bool)
	for _, b := range s.Blocks("", "") {
		counts[b.Category]++
		if subs[b.Category] == nil {
			subs[b.Category] = make(map[string]bool)
		}
		subs[b.Category][b.Subcategory] = true
	}

	out := make([]CategoryInfo, 0, len(counts))
	for _, c := range block.Contexts {
		if counts[c] == 0 {
			continue
		}
		names := make([]string, 0, len(subs[c]))
		for sub := range subs[c] {
			names = append(names, sub)
		}
		sort.Strings(names)
		out = append(out, CategoryInfo{Name: c.Label(), Slug: c, BlockCount: counts[c], Subcategories: names})
	}
	return out
}

func (s *Store) emptyDocument() *Document {
	now := s.opts.Now().UnixMilli()
	return &Document{
		Version:       StoreVersion,
		GeneratedAt:   now,
		LastUpdatedAt: now,
		Blocks:        make(map[string]block.Block),
	}
}

// saveLocked stamps, recomputes stats and rewrites the whole file.
func (s *Store) saveLocked(doc *Document) error {
	doc.LastUpdatedAt = s.opts.Now().UnixMilli()
	doc.Stats.TotalBlocks = len(doc.Blocks)
	doc.Stats.TotalVariants = 0
	for _, b := range doc.Blocks {
		doc.Stats.TotalVariants += b.VariantCount
	}
	if err := s.file.save(doc); err != nil {
		return fmt.Errorf("save catalog: %w", err)
	}
	return nil
}

// mutate applies fn to the current document, or a new one, and saves it.
func (s *Store) mutate(fn func(doc *Document)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc := s.file.load()
	if doc == nil {
		doc = s.emptyDocument()
	}
	if doc.Blocks == nil {
		doc.Blocks = make(map[string]block.Block)
	}
	fn(doc)
	return s.saveLocked(doc)
}

// SetBlock upserts b by its key and rewrites the catalog.
func (s *Store) SetBlock(b *block.Block) error {
	return s.mutate(func(doc *Document) {
		doc.Blocks[b.Key()] = *b
	})
}

// SetCachedVariants records how many variant codes the cache holds.
func (s *Store) SetCachedVariants(n int) error {
	return s.mutate(func(doc *Document) {
		doc.Stats.TotalCachedVariants = n
	})
}

// NeedsRefresh reports whether the catalog is missing or older than the refresh threshold.
func (s *Store) NeedsRefresh() bool {
	last, ok := s.LastUpdated()
	return !ok || stale(s.opts.Now(), last, s.opts.RefreshAfter)
}

// Stats returns the stored aggregate counts.
func (s *Store) Stats() (stats Stats, ok bool) {
	s.view(func(doc *Document) {
		if doc != nil {
			stats, ok = doc.Stats, true
		}
	})
	return stats, ok
}

// LastUpdated returns the last save time in Unix milliseconds.
func (s *Store) LastUpdated() (ms int64, ok bool) {
	s.view(func(doc *Document) {
		if doc != nil {
			ms, ok = doc.LastUpdatedAt, true
		}
	})
	return ms, ok
}
