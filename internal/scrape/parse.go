package scrape

import (
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/net/html"

	"github.com/hpungsan/plusblocks/internal/block"
)

// SiteOrigin prefixes relative links found on the site.
const SiteOrigin = block.SiteOrigin

// IndexEntry is one block link on the master index page.
type IndexEntry struct {
	Name           string        `json:"name"`
	Slug           string        `json:"slug"`
	Category       block.Context `json:"category"`
	Subcategory    string        `json:"subcategory"`
	ComponentCount int           `json:"componentCount"`
	URL            string        `json:"url"`
}

// Key returns the catalog key of the block the entry links to.
func (e IndexEntry) Key() string {
	return block.BlockKey(e.Category, e.Subcategory, e.Slug)
}

// BlockPage is the metadata scraped from a block page.
type BlockPage struct {
	Name        string
	Description string
	Variants    []block.Variant
}

var linkCountRe = regexp.MustCompile(`^(.+?)(\d+)\s+(?:components?|examples?)`)

// ParseBlockIndex walks <main> in document order. An <h2> naming a context
// switches the current context; each block link under it is parsed for its
// name and item count. Entries are de-duplicated by (slug, context).
func ParseBlockIndex(r io.Reader) ([]IndexEntry, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse index page: %w", err)
	}
	main := findFirst(doc, "main")
	if main == nil {
		return []IndexEntry{}, nil
	}

	var (
		current block.Context
		entries = make([]IndexEntry, 0)
		seen    = make(map[string]bool)
	)

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "h2":
				if c, ok := contextForHeading(textContent(n)); ok {
					current = c
				}
			case "a":
				if current != "" {
					if e, ok := parseIndexLink(n, current); ok {
						dedupe := string(e.Category) + "|" + e.Slug
						if !seen[dedupe] {
							seen[dedupe] = true
							entries = append(entries, e)
						}
					}
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(main)

	return entries, nil
}

func contextForHeading(text string) (block.Context, bool) {
	switch strings.ToLower(strings.TrimSpace(text)) {
	case "marketing":
		return block.ContextMarketing, true
	case "application ui":
		return block.ContextApplicationUI, true
	case "ecommerce":
		return block.ContextEcommerce, true
	}
	return "", false
}

func parseIndexLink(n *html.Node, current block.Context) (IndexEntry, bool) {
	href := getAttr(n, "href")
	if !strings.Contains(href, "/ui-blocks/") || !strings.Contains(href, string(current)) {
		return IndexEntry{}, false
	}
	m := linkCountRe.FindStringSubmatch(textContent(n))
	if m == nil {
		return IndexEntry{}, false
	}
	count, err := strconv.Atoi(m[2])
	if err != nil {
		return IndexEntry{}, false
	}

	segments := nonEmpty(strings.Split(strings.SplitN(href, "#", 2)[0], "/"))
	var slug, sub string
	if len(segments) >= 1 {
		slug = segments[len(segments)-1]
	}
	if len(segments) >= 2 {
		sub = segments[len(segments)-2]
	}
	if slug == "" {
		return IndexEntry{}, false
	}

	url := href
	if !strings.HasPrefix(href, "http") {
		url = SiteOrigin + href
	}
	return IndexEntry{
		Name:           strings.TrimSpace(m[1]),
		Slug:           slug,
		Category:       current,
		Subcategory:    sub,
		ComponentCount: count,
		URL:            url,
	}, true
}

// ParseBlockPage reads the block name from <h1>, the description from the
// <p> immediately following it, and one variant per <h2> carrying a
// component anchor. Variant indexes count only qualifying headings.
func ParseBlockPage(r io.Reader) (*BlockPage, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse block page: %w", err)
	}
	page := &BlockPage{Variants: make([]block.Variant, 0)}

	if h1 := findFirst(doc, "h1"); h1 != nil {
		page.Name = strings.TrimSpace(textContent(h1))
		if p := nextElementSibling(h1); p != nil && p.Data == "p" {
			page.Description = strings.TrimSpace(textContent(p))
		}
	}

	for _, h2 := range findAll(doc, "h2") {
		anchor := componentAnchor(h2)
		if anchor == "" {
			continue
		}
		idx := len(page.Variants)
		name := strings.TrimSpace(textContent(h2))
		if name == "" {
			name = fmt.Sprintf("Variant %d", idx)
		}
		page.Variants = append(page.Variants, block.Variant{
			Index:       idx,
			Name:        name,
			Slug:        block.ToKebabCase(name),
			ComponentID: anchor,
		})
	}
	return page, nil
}

// componentAnchor returns the anchor id ("component-<hash>") linked from
// inside n, or "".
func componentAnchor(n *html.Node) string {
	for _, a := range findAll(n, "a") {
		href := getAttr(a, "href")
		if i := strings.Index(href, "#component-"); i >= 0 {
			return href[i+1:]
		}
	}
	return ""
}

func findFirst(n *html.Node, tag string) *html.Node {
	if n.Type == html.ElementNode && n.Data == tag {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findFirst(c, tag); found != nil {
			return found
		}
	}
	return nil
}

func findAll(n *html.Node, tag string) []*html.Node {
	var out []*html.Node
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == tag {
			out = append(out, n)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return out
}

func nextElementSibling(n *html.Node) *html.Node {
	for s := n.NextSibling; s != nil; s = s.NextSibling {
		if s.Type == html.ElementNode {
			return s
		}
	}
	return nil
}

// getAttr retrieves an attribute value from an HTML node.
func getAttr(n *html.Node, key string) string {
	for _, attr := range n.Attr {
		if attr.Key == key {
			return attr.Val
		}
	}
	return ""
}

// textContent concatenates descendant text without trimming, like the DOM property.
func textContent(n *html.Node) string {
	if n.Type == html.TextNode {
		return n.Data
	}
	var b strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		b.WriteString(textContent(c))
	}
	return b.String()
}

func nonEmpty(parts []string) []string {
	out := parts[:0:0]
	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
