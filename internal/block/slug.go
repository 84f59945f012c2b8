package block

import (
	"fmt"
	"regexp"
	"strings"

	apperrors "github.com/hpungsan/plusblocks/internal/errors"
)

var (
	nonWordRe    = regexp.MustCompile(`[^\w\s-]`)
	whitespaceRe = regexp.MustCompile(`\s+`)
	dashRunRe    = regexp.MustCompile(`-+`)
)

// ToKebabCase turns a display name into a slug: "Simple centered" becomes "simple-centered".
// The result is idempotent under a second application.
func ToKebabCase(s string) string {
	s = strings.TrimSpace(strings.ToLower(s))
	s = nonWordRe.ReplaceAllString(s, "")
	s = whitespaceRe.ReplaceAllString(s, "-")
	s = dashRunRe.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}

const keySep = "--"

// CacheKey identifies one cached variant code.
type CacheKey struct {
	Context Context
	Block   string
	Variant string
	Format  Format
	Theme   Theme
	Version Version
}

// String joins the components with "--".
func (k CacheKey) String() string {
	return VariantCacheKey(string(k.Context), k.Block, k.Variant, string(k.Format), string(k.Theme), string(k.Version))
}

// Validate rejects components that are empty, contain the separator, or could
// leave the cache directory when the key is used as a file name.
func (k CacheKey) Validate() error {
	parts := []struct{ field, value string }{
		{"category", string(k.Context)},
		{"block", k.Block},
		{"variant", k.Variant},
		{"format", string(k.Format)},
		{"theme", string(k.Theme)},
		{"version", string(k.Version)},
	}
	for _, p := range parts {
		if p.value == "" || strings.Contains(p.value, keySep) ||
			strings.ContainsAny(p.value, `/\`) || strings.Contains(p.value, "..") {
			return apperrors.NewInvalidKey(p.field, p.value)
		}
	}
	return nil
}

// EntryID is the manifest id for the key: "category/block/variant".
func (k CacheKey) EntryID() string {
	return string(k.Context) + "/" + k.Block + "/" + k.Variant
}

// VariantCacheKey builds "{category}--{block}--{variant}--{format}--{theme}--{version}".
func VariantCacheKey(category, blockSlug, variantSlug, format, theme, version string) string {
	return strings.Join([]string{category, blockSlug, variantSlug, format, theme, version}, keySep)
}

// ParseCacheKey splits a variant cache key. It fails unless there are exactly six components.
func ParseCacheKey(key string) (CacheKey, error) {
	parts := strings.Split(key, keySep)
	if len(parts) != 6 {
		return CacheKey{}, fmt.Errorf("cache key %q has %d components, want 6", key, len(parts))
	}
	return CacheKey{
		Context: Context(parts[0]),
		Block:   parts[1],
		Variant: parts[2],
		Format:  Format(parts[3]),
		Theme:   Theme(parts[4]),
		Version: Version(parts[5]),
	}, nil
}

// BlockKey builds "{category}/{subcategory}/{slug}".
func BlockKey(category Context, subcategory, slug string) string {
	return string(category) + "/" + subcategory + "/" + slug
}

// ParseBlockKey splits a block key. It fails unless there are exactly three components.
func ParseBlockKey(key string) (category Context, subcategory, slug string, err error) {
	parts := strings.Split(key, "/")
	if len(parts) != 3 {
		return "", "", "", fmt.Errorf("block key %q has %d components, want 3", key, len(parts))
	}
	return Context(parts[0]), parts[1], parts[2], nil
}
