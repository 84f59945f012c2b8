package search

import (
	"fmt"
	"sort"
	"strings"

	"github.com/hpungsan/plusblocks/internal/block"
)

// Suggestion recommends a block for what the user is building.
type Suggestion struct {
	Category            block.Context `json:"category"`
	Block               string        `json:"block"`
	BlockName           string        `json:"blockName"`
	Reason              string        `json:"reason"`
	RecommendedVariants []string      `json:"recommendedVariants"`
}

// MaxSuggestions caps Suggest's result.
const MaxSuggestions = 6

const keywordThreshold = 0.4

type keyword struct {
	phrase  string
	context block.Context
	blocks  []string
}

var keywords = []keyword{
	{"landing page", block.ContextMarketing, []string{"heroes", "cta-sections", "features", "pricing", "testimonials", "footers"}},
	{"saas", block.ContextMarketing, []string{"heroes", "pricing", "features", "testimonials", "cta-sections"}},
	{"portfolio", block.ContextMarketing, []string{"heroes", "portfolios", "contact-sections", "footers"}},
	{"dashboard", block.ContextApplicationUI, []string{"sidebars", "stacked-layouts", "stats", "tables", "lists"}},
	{"admin", block.ContextApplicationUI, []string{"sidebars", "tables", "forms", "stats", "overlays"}},
	{"settings", block.ContextApplicationUI, []string{"form-layouts", "headings", "vertical-navigation", "description-lists"}},
	{"store", block.ContextEcommerce, []string{"product-overviews", "product-lists", "shopping-carts", "category-filters"}},
	{"checkout", block.ContextEcommerce, []string{"checkout-forms", "order-summaries", "shopping-carts"}},
	{"product", block.ContextEcommerce, []string{"product-overviews", "product-quickviews", "product-features", "reviews"}},
	{"blog", block.ContextMarketing, []string{"blog-sections", "headers", "footers"}},
	{"auth", block.ContextApplicationUI, []string{"sign-in-and-registration", "forms"}},
	{"login", block.ContextApplicationUI, []string{"sign-in-and-registration"}},
	{"modal", block.ContextApplicationUI, []string{"modal-dialogs", "overlays", "notifications"}},
	{"form", block.ContextApplicationUI, []string{"form-layouts", "forms", "input-groups", "select-menus"}},
	{"table", block.ContextApplicationUI, []string{"tables", "lists", "grid-lists"}},
	{"navigation", block.ContextApplicationUI, []string{"navbars", "sidebars", "vertical-navigation", "tabs"}},
}

var reasons = map[string]string{
	"heroes":                   "Eye-catching hero section to grab attention",
	"cta-sections":             "Drive conversions with a call-to-action",
	"pricing":                  "Display your pricing plans clearly",
	"testimonials":             "Add social proof to build trust",
	"features":                 "Showcase your product features",
	"footers":                  "Professional footer with links and info",
	"sidebars":                 "Navigation sidebar for your dashboard",
	"tables":                   "Display data in organized tables",
	"forms":                    "Collect user input with styled forms",
	"shopping-carts":           "Shopping cart for your store",
	"product-overviews":        "Showcase your products",
	"checkout-forms":           "Streamline the checkout process",
	"sign-in-and-registration": "User authentication forms",
	"modal-dialogs":            "Overlay dialogs for actions and confirmations",
	"navbars":                  "Top navigation for your site",
	"stats":                    "Display key metrics and statistics",
}

func reason(b block.Block, building string) string {
	if r, ok := reasons[b.Slug]; ok {
		return r
	}
	return fmt.Sprintf("%s components for your %s", b.Name, building)
}

func firstVariants(b block.Block, n int) []string {
	out := make([]string, 0, n)
	for i := 0; i < len(b.Variants) && i < n; i++ {
		out = append(out, b.Variants[i].Slug)
	}
	return out
}

func find(blocks []block.Block, ctx block.Context, slug string) (block.Block, bool) {
	for _, b := range blocks {
		if b.Category == ctx && b.Slug == slug {
			return b, true
		}
	}
	return block.Block{}, false
}

// Suggest recommends blocks for a free-text description of what is being
// built, skipping block slugs in alreadyUsed. Curated keyword phrases are
// tried first; when none matches, a block-only search is used instead.
func Suggest(building string, blocks []block.Block, alreadyUsed []string) []Suggestion {
	lower := strings.ToLower(building)
	used := make(map[string]bool, len(alreadyUsed))
	for _, s := range alreadyUsed {
		used[strings.ToLower(s)] = true
	}

	type match struct {
		kw    keyword
		score float64
	}
	var matched []match
	for _, kw := range keywords {
		if score := Similarity(lower, kw.phrase); score > keywordThreshold {
			matched = append(matched, match{kw, score})
		}
	}
	sort.SliceStable(matched, func(i, j int) bool { return matched[i].score > matched[j].score })

	out := make([]Suggestion, 0, MaxSuggestions)
	suggested := make(map[string]bool)
	for _, m := range matched {
		for _, slug := range m.kw.blocks {
			if used[slug] || suggested[slug] {
				continue
			}
			suggested[slug] = true
			b, ok := find(blocks, m.kw.context, slug)
			if !ok {
				continue
			}
			out = append(out, Suggestion{
				Category:            b.Category,
				Block:               b.Slug,
				BlockName:           b.Name,
				Reason:              reason(b, lower),
				RecommendedVariants: firstVariants(b, 2),
			})
		}
	}

	if len(matched) == 0 {
		for _, r := range Search(building, blocks, Options{Limit: 5}) {
			if r.Type != TypeBlock || used[r.Block] {
				continue
			}
			b, ok := find(blocks, r.Category, r.Block)
			if !ok {
				continue
			}
			out = append(out, Suggestion{
				Category:            b.Category,
				Block:               b.Slug,
				BlockName:           b.Name,
				Reason:              fmt.Sprintf("Matches your search for %q", building),
				RecommendedVariants: firstVariants(b, 2),
			})
		}
	}

	if len(out) > MaxSuggestions {
		out = out[:MaxSuggestions]
	}
	return out
}
