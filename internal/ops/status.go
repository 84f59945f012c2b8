package ops

import (
	"github.com/hpungsan/plusblocks/internal/browser"
	"github.com/hpungsan/plusblocks/internal/cache"
	"github.com/hpungsan/plusblocks/internal/catalog"
	"github.com/hpungsan/plusblocks/internal/db"
)

// CatalogStatus describes the synced block catalog.
type CatalogStatus struct {
	Available      bool   `json:"available"`
	Version        string `json:"version,omitempty"`
	Blocks         int    `json:"blocks"`
	Variants       int    `json:"variants"`
	CachedVariants int    `json:"cachedVariants"`
	LastUpdatedAt  int64  `json:"lastUpdatedAt,omitempty"`
	AgeHours       int64  `json:"ageHours"`
	NeedsRefresh   bool   `json:"needsRefresh"`
}

// IndexStatus describes the block index recorded by the last full sync.
type IndexStatus struct {
	Available     bool  `json:"available"`
	Categories    int   `json:"categories"`
	Blocks        int   `json:"blocks"`
	LastUpdatedAt int64 `json:"lastUpdatedAt,omitempty"`
	NeedsRefresh  bool  `json:"needsRefresh"`
}

// CacheStatus describes the variant code cache.
type CacheStatus struct {
	cache.VariantStats
	Entries int `json:"entries"`
	Expired int `json:"expired"`
}

// LastSync is the most recent sync run with its failure count.
type LastSync struct {
	*db.Run
	FailureCount int `json:"failureCount"`
}

// StatusOutput contains the result of the Status operation.
type StatusOutput struct {
	Auth     browser.AuthState `json:"auth"`
	Catalog  CatalogStatus     `json:"catalog"`
	Index    IndexStatus       `json:"index"`
	Cache    CacheStatus       `json:"cache"`
	LastSync *LastSync         `json:"lastSync,omitempty"`
}

// Status reports auth state, catalog freshness, cache size and the last sync.
func Status(env *Env) (*StatusOutput, error) {
	now := env.now()
	out := &StatusOutput{Auth: env.Session.AuthState(now)}

	if stats, ok := env.Catalog.Stats(); ok {
		last, _ := env.Catalog.LastUpdated()
		out.Catalog = CatalogStatus{
			Available:      true,
			Version:        catalog.StoreVersion,
			Blocks:         stats.TotalBlocks,
			Variants:       stats.TotalVariants,
			CachedVariants: stats.TotalCachedVariants,
			LastUpdatedAt:  last,
			AgeHours:       (now.UnixMilli() - last) / 3_600_000,
		}
	}
	out.Catalog.NeedsRefresh = env.Catalog.NeedsRefresh()

	if env.Legacy != nil {
		if stats, ok := env.Legacy.Stats(); ok {
			last, _ := env.Legacy.LastUpdated()
			out.Index = IndexStatus{
				Available:     true,
				Categories:    stats.TotalCategories,
				Blocks:        stats.TotalBlocks,
				LastUpdatedAt: last,
			}
		}
		out.Index.NeedsRefresh = env.Legacy.NeedsRefresh()
	}

	all := env.Cache.Stats()
	out.Cache = CacheStatus{VariantStats: env.Cache.VariantStats(), Entries: all.TotalEntries, Expired: all.ExpiredCount}

	if env.Journal != nil {
		run, err := db.LatestRun(env.Journal)
		if err != nil {
			return nil, err
		}
		if run != nil {
			n, err := db.CountFailures(env.Journal, run.ID)
			if err != nil {
				return nil, err
			}
			out.LastSync = &LastSync{Run: run, FailureCount: n}
		}
	}
	return out, nil
}
