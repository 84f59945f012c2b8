package ops

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hpungsan/plusblocks/internal/block"
	"github.com/hpungsan/plusblocks/internal/catalog"
	"github.com/hpungsan/plusblocks/internal/errors"
)

func TestListCategories_FromCatalog(t *testing.T) {
	env, _ := newTestEnv(t)
	seedCatalog(t, env)

	out, err := ListCategories(env)
	require.NoError(t, err)
	require.Equal(t, SourceCatalog, out.Source)
	require.Len(t, out.Categories, 2)
	require.Equal(t, block.ContextMarketing, out.Categories[0].Slug)
	require.Equal(t, 2, out.Categories[0].BlockCount)
	require.Equal(t, []string{"sections"}, out.Categories[0].Subcategories)
	require.Equal(t, block.ContextApplicationUI, out.Categories[1].Slug)
}

func TestListCategories_FromIndex(t *testing.T) {
	env, _ := newTestEnv(t)
	require.NoError(t, env.Legacy.Merge(block.ContextEcommerce, []catalog.LegacyCategory{
		{Category: block.Category{Name: "Product Overviews", Slug: "product-overviews", Subcategory: "components", Context: block.ContextEcommerce}},
		{Category: block.Category{Name: "Shopping Carts", Slug: "shopping-carts", Subcategory: "components", Context: block.ContextEcommerce}},
	}))

	out, err := ListCategories(env)
	require.NoError(t, err)
	require.Equal(t, SourceIndex, out.Source)
	require.Len(t, out.Categories, 1)
	require.Equal(t, 2, out.Categories[0].BlockCount)
}

func TestListCategories_FallsBackToSeeds(t *testing.T) {
	env, _ := newTestEnv(t)

	out, err := ListCategories(env)
	require.NoError(t, err)
	require.Equal(t, SourceSeed, out.Source)
	require.Len(t, out.Categories, 3)

	total := 0
	for _, c := range out.Categories {
		total += c.BlockCount
	}
	require.Equal(t, len(catalog.Seeds), total)
}

func TestListBlocks(t *testing.T) {
	env, _ := newTestEnv(t)
	seedCatalog(t, env)

	out, err := ListBlocks(env, ListBlocksInput{Category: "marketing"})
	require.NoError(t, err)
	require.Equal(t, "all", out.Subcategory)
	require.Equal(t, 2, out.BlockCount)
	require.Equal(t, "pricing", out.Blocks[0].Slug)
	require.Equal(t, "testimonials", out.Blocks[1].Slug)
	require.Equal(t, 2, out.Blocks[1].VariantCount)

	out, err = ListBlocks(env, ListBlocksInput{Category: "application-ui", Subcategory: "forms"})
	require.NoError(t, err)
	require.Equal(t, "forms", out.Subcategory)
	require.Len(t, out.Blocks, 1)
}

func TestListBlocks_Errors(t *testing.T) {
	env, _ := newTestEnv(t)

	_, err := ListBlocks(env, ListBlocksInput{})
	require.True(t, errors.Is(err, errors.ErrInvalidRequest))

	_, err = ListBlocks(env, ListBlocksInput{Category: "landing"})
	require.True(t, errors.Is(err, errors.ErrInvalidRequest))

	_, err = ListBlocks(env, ListBlocksInput{Category: "ecommerce"})
	require.True(t, errors.Is(err, errors.ErrCatalogEmpty))

	seedCatalog(t, env)
	_, err = ListBlocks(env, ListBlocksInput{Category: "marketing", Subcategory: "elements"})
	require.True(t, errors.Is(err, errors.ErrCatalogEmpty))
	pe, _ := errors.As(err)
	require.Contains(t, pe.Message, "marketing/elements")
}

func TestListVariants(t *testing.T) {
	env, _ := newTestEnv(t)
	seedCatalog(t, env)

	out, err := ListVariants(env, ListVariantsInput{Category: "marketing", Block: "testimonials"})
	require.NoError(t, err)
	require.Equal(t, "Testimonials", out.Block.Name)
	require.Equal(t, "sections", out.Block.Subcategory)
	require.Equal(t, 2, out.VariantCount)
	require.Equal(t, VariantSummary{Index: 1, Name: "Grid", Slug: "grid"}, out.Variants[1])
}

func TestListVariants_BlockNotFound(t *testing.T) {
	env, _ := newTestEnv(t)
	seedCatalog(t, env)

	_, err := ListVariants(env, ListVariantsInput{Category: "marketing", Block: "heroes"})
	require.True(t, errors.Is(err, errors.ErrBlockNotFound))
	pe, _ := errors.As(err)
	require.Equal(t, []string{"pricing", "testimonials"}, pe.Details["availableBlocks"])
}
