package ops

import (
	"fmt"
	"sort"
	"strings"

	"github.com/hpungsan/plusblocks/internal/block"
	"github.com/hpungsan/plusblocks/internal/catalog"
	"github.com/hpungsan/plusblocks/internal/errors"
)

// Category sources, from most to least detailed.
const (
	SourceCatalog = "catalog"
	SourceIndex   = "index"
	SourceSeed    = "seed"
)

// ListCategoriesOutput lists the top-level contexts.
type ListCategoriesOutput struct {
	Categories []catalog.CategoryInfo `json:"categories"`
	// Source says which data produced the list: the synced catalog, the
	// last block index, or the built-in seed list.
	Source string `json:"source"`
}

// ListCategories counts blocks per context from the synced catalog, falling
// back to the recorded block index and then to the seed list.
func ListCategories(env *Env) (*ListCategoriesOutput, error) {
	if infos := env.Catalog.CategoryInfo(); len(infos) > 0 {
		return &ListCategoriesOutput{Categories: infos, Source: SourceCatalog}, nil
	}
	if env.Legacy != nil {
		legacy := env.Legacy.Categories("")
		cats := make([]block.Category, 0, len(legacy))
		for _, c := range legacy {
			cats = append(cats, c.Category)
		}
		if len(cats) > 0 {
			return &ListCategoriesOutput{Categories: summarize(cats), Source: SourceIndex}, nil
		}
	}
	return &ListCategoriesOutput{Categories: summarize(catalog.Seeds), Source: SourceSeed}, nil
}

// summarize groups index-level categories by context, in site order.
func summarize(cats []block.Category) []catalog.CategoryInfo {
	counts := make(map[block.Context]int)
	subs := make(map[block.Context]map[string]bool)
	for _, c := range cats {
		counts[c.Context]++
		if subs[c.Context] == nil {
			subs[c.Context] = make(map[string]bool)
		}
		if c.Subcategory != "" {
			subs[c.Context][c.Subcategory] = true
		}
	}
	out := make([]catalog.CategoryInfo, 0, len(counts))
	for _, ctx := range block.Contexts {
		if counts[ctx] == 0 {
			continue
		}
		names := make([]string, 0, len(subs[ctx]))
		for s := range subs[ctx] {
			names = append(names, s)
		}
		sort.Strings(names)
		out = append(out, catalog.CategoryInfo{Name: ctx.Label(), Slug: ctx, BlockCount: counts[ctx], Subcategories: names})
	}
	return out
}

// ListBlocksInput contains parameters for the ListBlocks operation.
type ListBlocksInput struct {
	Category    string // required
	Subcategory string // optional filter
}

// BlockSummary is one row of ListBlocks.
type BlockSummary struct {
	Name         string `json:"name"`
	Slug         string `json:"slug"`
	Subcategory  string `json:"subcategory"`
	VariantCount int    `json:"variantCount"`
	Description  string `json:"description,omitempty"`
}

// ListBlocksOutput contains the result of the ListBlocks operation.
type ListBlocksOutput struct {
	Category    block.Context  `json:"category"`
	Subcategory string         `json:"subcategory"`
	BlockCount  int            `json:"blockCount"`
	Blocks      []BlockSummary `json:"blocks"`
}

// ListBlocks lists a context's synced blocks.
func ListBlocks(env *Env, input ListBlocksInput) (*ListBlocksOutput, error) {
	ctx, err := parseContext(input.Category)
	if err != nil {
		return nil, err
	}
	sub := strings.TrimSpace(input.Subcategory)

	blocks := env.Catalog.Blocks(ctx, sub)
	if len(blocks) == 0 {
		return nil, noBlocks(ctx, sub)
	}

	out := &ListBlocksOutput{
		Category:    ctx,
		Subcategory: orAll(sub),
		BlockCount:  len(blocks),
		Blocks:      make([]BlockSummary, 0, len(blocks)),
	}
	for _, b := range blocks {
		out.Blocks = append(out.Blocks, BlockSummary{
			Name:         b.Name,
			Slug:         b.Slug,
			Subcategory:  b.Subcategory,
			VariantCount: b.VariantCount,
			Description:  b.Description,
		})
	}
	return out, nil
}

func noBlocks(ctx block.Context, sub string) error {
	err := errors.NewCatalogEmpty()
	if sub != "" {
		err.Message = fmt.Sprintf("no blocks found in %s/%s", ctx, sub)
		err.Hint = "try again without the subcategory filter"
		return err
	}
	err.Message = fmt.Sprintf("no blocks found in %s", ctx)
	return err
}

// ListVariantsInput contains parameters for the ListVariants operation.
type ListVariantsInput struct {
	Category string // required
	Block    string // required block slug
}

// BlockInfo describes the block whose variants are listed.
type BlockInfo struct {
	Name        string        `json:"name"`
	Slug        string        `json:"slug"`
	Category    block.Context `json:"category"`
	Subcategory string        `json:"subcategory"`
	Description string        `json:"description,omitempty"`
}

// VariantSummary is one row of ListVariants.
type VariantSummary struct {
	Index int    `json:"index"`
	Name  string `json:"name"`
	Slug  string `json:"slug"`
}

// ListVariantsOutput contains the result of the ListVariants operation.
type ListVariantsOutput struct {
	Block        BlockInfo        `json:"block"`
	VariantCount int              `json:"variantCount"`
	Variants     []VariantSummary `json:"variants"`
}

// ListVariants lists one block's variants in page order.
func ListVariants(env *Env, input ListVariantsInput) (*ListVariantsOutput, error) {
	b, err := findBlock(env, input.Category, input.Block)
	if err != nil {
		return nil, err
	}
	out := &ListVariantsOutput{
		Block: BlockInfo{
			Name:        b.Name,
			Slug:        b.Slug,
			Category:    b.Category,
			Subcategory: b.Subcategory,
			Description: b.Description,
		},
		VariantCount: len(b.Variants),
		Variants:     make([]VariantSummary, 0, len(b.Variants)),
	}
	for _, v := range b.Variants {
		out.Variants = append(out.Variants, VariantSummary{Index: v.Index, Name: v.Name, Slug: v.Slug})
	}
	return out, nil
}

// findBlock resolves a block by context and slug. A miss lists some of the
// context's block slugs.
func findBlock(env *Env, category, slug string) (*block.Block, error) {
	ctx, err := parseContext(category)
	if err != nil {
		return nil, err
	}
	slug = strings.TrimSpace(slug)
	if slug == "" {
		return nil, errors.NewInvalidRequest("block is required")
	}
	if b, ok := env.Catalog.FindBlock(ctx, slug); ok {
		return b, nil
	}

	available := make([]string, 0, availableBlocksShown)
	for _, b := range env.Catalog.Blocks(ctx, "") {
		if len(available) == availableBlocksShown {
			break
		}
		available = append(available, b.Slug)
	}
	notFound := errors.NewBlockNotFound(slug, string(ctx))
	notFound.Details["availableBlocks"] = available
	return nil, notFound
}
