// Package block defines the catalog data model: contexts, formats, versions,
// themes, blocks, variants and extracted variant code.
package block

import (
	"fmt"
	"strings"
	"time"
)

const (
	// SiteOrigin prefixes relative links found on the catalog site.
	SiteOrigin = "https://tailwindcss.com"
	// UIBlocksURL is the master index page.
	UIBlocksURL = SiteOrigin + "/plus/ui-blocks"
)

// Context is one of the three top-level product areas.
type Context string

const (
	ContextMarketing     Context = "marketing"
	ContextApplicationUI Context = "application-ui"
	ContextEcommerce     Context = "ecommerce"
)

// Contexts lists every context in site order.
var Contexts = []Context{ContextMarketing, ContextApplicationUI, ContextEcommerce}

// ParseContext validates a context slug.
func ParseContext(s string) (Context, error) {
	c := Context(strings.ToLower(strings.TrimSpace(s)))
	switch c {
	case ContextMarketing, ContextApplicationUI, ContextEcommerce:
		return c, nil
	}
	return "", fmt.Errorf("unknown category %q (want marketing, application-ui or ecommerce)", s)
}

// Label is the display name used on the site.
func (c Context) Label() string {
	switch c {
	case ContextMarketing:
		return "Marketing"
	case ContextApplicationUI:
		return "Application UI"
	case ContextEcommerce:
		return "Ecommerce"
	}
	return string(c)
}

// Format is the code flavor offered by a variant's format selector.
type Format string

const (
	FormatReact Format = "react"
	FormatVue   Format = "vue"
	FormatHTML  Format = "html"
)

// Formats lists every format.
var Formats = []Format{FormatReact, FormatVue, FormatHTML}

// ParseFormat validates a format name.
func ParseFormat(s string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimSpace(s)))
	switch f {
	case FormatReact, FormatVue, FormatHTML:
		return f, nil
	}
	return "", fmt.Errorf("unknown format %q (want react, vue or html)", s)
}

// Label is the option text shown in the page's format selector.
func (f Format) Label() string {
	switch f {
	case FormatReact:
		return "React"
	case FormatVue:
		return "Vue"
	case FormatHTML:
		return "HTML"
	}
	return string(f)
}

// Version is the Tailwind CSS version a snippet targets.
type Version string

const (
	VersionV4 Version = "v4.1"
	VersionV3 Version = "v3.4"
)

// Versions lists every version, newest first.
var Versions = []Version{VersionV4, VersionV3}

// ParseVersion validates a version label.
func ParseVersion(s string) (Version, error) {
	v := Version(strings.ToLower(strings.TrimSpace(s)))
	switch v {
	case VersionV4, VersionV3:
		return v, nil
	}
	return "", fmt.Errorf("unknown version %q (want v4.1 or v3.4)", s)
}

// Theme is the color scheme of the rendered snippet.
type Theme string

const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
)

// ParseTheme validates a theme name.
func ParseTheme(s string) (Theme, error) {
	t := Theme(strings.ToLower(strings.TrimSpace(s)))
	switch t {
	case ThemeLight, ThemeDark:
		return t, nil
	}
	return "", fmt.Errorf("unknown theme %q (want light or dark)", s)
}

// Variant is one concrete design of a block.
type Variant struct {
	Index       int    `json:"index"`
	Name        string `json:"name"`
	Slug        string `json:"slug"`
	ComponentID string `json:"componentId"`
	PreviewURL  string `json:"previewUrl,omitempty"`
}

// Block is a named group of variants on one page of the site.
type Block struct {
	Name          string    `json:"name"`
	Slug          string    `json:"slug"`
	Category      Context   `json:"category"`
	Subcategory   string    `json:"subcategory"`
	URL           string    `json:"url"`
	Description   string    `json:"description,omitempty"`
	VariantCount  int       `json:"variantCount"`
	Variants      []Variant `json:"variants"`
	LastFetchedAt int64     `json:"lastFetchedAt,omitempty"`
}

// Key returns the block's catalog key.
func (b *Block) Key() string {
	return BlockKey(b.Category, b.Subcategory, b.Slug)
}

// VariantBySlug finds a variant by slug.
func (b *Block) VariantBySlug(slug string) (Variant, bool) {
	for _, v := range b.Variants {
		if v.Slug == slug {
			return v, true
		}
	}
	return Variant{}, false
}

// VariantCode is the extracted source for one variant/format/version/theme.
type VariantCode struct {
	Category     Context  `json:"category"`
	BlockSlug    string   `json:"blockSlug"`
	VariantSlug  string   `json:"variantSlug"`
	VariantName  string   `json:"variantName"`
	ComponentID  string   `json:"componentId"`
	Format       Format   `json:"format"`
	Version      Version  `json:"version"`
	Theme        Theme    `json:"theme"`
	Code         string   `json:"code"`
	Dependencies []string `json:"dependencies"`
	CachedAt     int64    `json:"cachedAt"`
}

// Key returns the cache key for this code.
func (vc *VariantCode) Key() CacheKey {
	return CacheKey{
		Context: vc.Category,
		Block:   vc.BlockSlug,
		Variant: vc.VariantSlug,
		Format:  vc.Format,
		Theme:   vc.Theme,
		Version: vc.Version,
	}
}

// Category is a block as listed on the index page (legacy catalog shape).
type Category struct {
	Name           string  `json:"name"`
	Slug           string  `json:"slug"`
	Subcategory    string  `json:"subcategory,omitempty"`
	Context        Context `json:"context"`
	ComponentCount int     `json:"componentCount"`
	URL            string  `json:"url"`
}

// Component is a legacy whole-component cache object.
type Component struct {
	ID             string   `json:"id"`
	Name           string   `json:"name"`
	Category       string   `json:"category"`
	Subcategory    string   `json:"subcategory,omitempty"`
	Context        Context  `json:"context"`
	URL            string   `json:"url"`
	ComponentCount int      `json:"componentCount,omitempty"`
	Code           string   `json:"code"`
	Format         Format   `json:"format"`
	Theme          Theme    `json:"theme"`
	Version        Version  `json:"version"`
	Dependencies   []string `json:"dependencies,omitempty"`
}

// Millis converts t to Unix milliseconds, the timestamp unit of every persisted file.
func Millis(t time.Time) int64 { return t.UnixMilli() }

// FromMillis converts Unix milliseconds back to a time.
func FromMillis(ms int64) time.Time { return time.UnixMilli(ms) }
