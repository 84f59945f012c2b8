package cache

import (
	"time"

	"github.com/hpungsan/plusblocks/internal/block"
)

// ManifestVersion is the schema version written to manifest.json.
const ManifestVersion = "2.0.0"

// EntryKind distinguishes variant entries from legacy whole-component entries.
type EntryKind string

const (
	KindVariant   EntryKind = "variant"
	KindComponent EntryKind = "component"
)

// Entry indexes one cached body file.
type Entry struct {
	ID          string        `json:"id"`
	Kind        EntryKind     `json:"kind,omitempty"`
	Category    block.Context `json:"category,omitempty"`
	BlockSlug   string        `json:"blockSlug,omitempty"`
	VariantSlug string        `json:"variantSlug,omitempty"`
	Format      block.Format  `json:"format"`
	Theme       block.Theme   `json:"theme"`
	Version     block.Version `json:"version"`
	CachedAt    int64         `json:"cachedAt"`
	ExpiresAt   int64         `json:"expiresAt"`
	FilePath    string        `json:"filePath"`
	Size        int64         `json:"size"`
}

func (e Entry) expired(now time.Time) bool {
	return block.Millis(now) > e.ExpiresAt
}

// ManifestStats are recomputed on every flush.
type ManifestStats struct {
	TotalSize  int64 `json:"totalSize"`
	EntryCount int   `json:"entryCount"`
}

// Manifest is the persisted cache index.
type Manifest struct {
	Version   string           `json:"version"`
	CreatedAt int64            `json:"createdAt"`
	Entries   map[string]Entry `json:"entries"`
	Stats     ManifestStats    `json:"stats"`
}

func newManifest(now time.Time) *Manifest {
	return &Manifest{
		Version:   ManifestVersion,
		CreatedAt: block.Millis(now),
		Entries:   make(map[string]Entry),
	}
}

func (m *Manifest) recomputeStats() {
	var size int64
	for _, e := range m.Entries {
		size += e.Size
	}
	m.Stats = ManifestStats{TotalSize: size, EntryCount: len(m.Entries)}
}
