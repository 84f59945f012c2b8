// Package catalog persists the block inventory: the block map with variants
// (catalog-v3.json) and the legacy per-context category list (catalog.json).
package catalog

import (
	"os"
	"time"

	"github.com/hpungsan/plusblocks/internal/fsutil"
	"github.com/hpungsan/plusblocks/internal/logging"
)

// DefaultRefreshAfter is the catalog age after which a refresh is due.
const DefaultRefreshAfter = 24 * time.Hour

// Options configures a store.
type Options struct {
	RefreshAfter time.Duration
	Logger       logging.Logger
	Now          func() time.Time
}

func (o Options) withDefaults() Options {
	if o.RefreshAfter <= 0 {
		o.RefreshAfter = DefaultRefreshAfter
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	o.Logger = logging.OrDiscard(o.Logger)
	return o
}

// jsonFile is a lazily loaded JSON document kept in memory after the first
// read. Every save rewrites the whole file. Callers serialize access.
type jsonFile[T any] struct {
	path   string
	logger logging.Logger
	doc    *T
}

// load returns the cached document, reading it on first use. A missing or
// corrupt file yields nil.
func (f *jsonFile[T]) load() *T {
	if f.doc != nil {
		return f.doc
	}
	var doc T
	if err := fsutil.ReadJSON(f.path, &doc); err != nil {
		if !os.IsNotExist(err) {
			f.logger.WithField("path", f.path).WithError(err).Warn("catalog unreadable; treating as absent")
		}
		return nil
	}
	f.doc = &doc
	return f.doc
}

func (f *jsonFile[T]) save(doc *T) error {
	if _, err := fsutil.WriteJSON(f.path, doc, 0600); err != nil {
		return err
	}
	f.doc = doc
	return nil
}

func (f *jsonFile[T]) exists() bool {
	_, err := os.Stat(f.path)
	return err == nil
}

func stale(now time.Time, lastUpdatedAt int64, after time.Duration) bool {
	return now.Sub(time.UnixMilli(lastUpdatedAt)) > after
}
