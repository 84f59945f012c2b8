package scrape

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hpungsan/plusblocks/internal/block"
)

const indexFixture = `<!doctype html>
<html><body>
<nav><a href="/plus/ui-blocks/marketing/sections/heroes">Hero Sections 12 components</a></nav>
<main>
  <h2>Marketing</h2>
  <section>
    <a href="/plus/ui-blocks/marketing/sections/heroes"><span>Hero Sections</span><span>12 components</span></a>
    <a href="/plus/ui-blocks/marketing/sections/feature-sections">Feature Sections 15 components</a>
    <a href="/plus/ui-blocks/marketing/sections/heroes">Hero Sections 12 components</a>
    <a href="/plus/templates">Templates</a>
  </section>
  <h2> APPLICATION UI </h2>
  <a href="https://tailwindcss.com/plus/ui-blocks/application-ui/forms/input-groups">Input Groups 21 components</a>
  <a href="/plus/ui-blocks/marketing/sections/cta-sections">CTA Sections 11 components</a>
  <a href="/plus/ui-blocks/application-ui/page-examples/home-screens">Home Screens 2 examples</a>
  <h2>Ecommerce</h2>
  <a href="/plus/ui-blocks/ecommerce/components/product-overviews">Product Overviews5 components</a>
  <a href="/plus/ui-blocks/ecommerce/components/no-count">No count here</a>
</main>
</body></html>`

func TestParseBlockIndex(t *testing.T) {
	entries, err := ParseBlockIndex(strings.NewReader(indexFixture))
	require.NoError(t, err)

	require.Equal(t, []IndexEntry{
		{Name: "Hero Sections", Slug: "heroes", Category: block.ContextMarketing, Subcategory: "sections", ComponentCount: 12,
			URL: "https://tailwindcss.com/plus/ui-blocks/marketing/sections/heroes"},
		{Name: "Feature Sections", Slug: "feature-sections", Category: block.ContextMarketing, Subcategory: "sections", ComponentCount: 15,
			URL: "https://tailwindcss.com/plus/ui-blocks/marketing/sections/feature-sections"},
		{Name: "Input Groups", Slug: "input-groups", Category: block.ContextApplicationUI, Subcategory: "forms", ComponentCount: 21,
			URL: "https://tailwindcss.com/plus/ui-blocks/application-ui/forms/input-groups"},
		{Name: "Home Screens", Slug: "home-screens", Category: block.ContextApplicationUI, Subcategory: "page-examples", ComponentCount: 2,
			URL: "https://tailwindcss.com/plus/ui-blocks/application-ui/page-examples/home-screens"},
		{Name: "Product Overviews", Slug: "product-overviews", Category: block.ContextEcommerce, Subcategory: "components", ComponentCount: 5,
			URL: "https://tailwindcss.com/plus/ui-blocks/ecommerce/components/product-overviews"},
	}, entries)
	require.Equal(t, "marketing/sections/heroes", entries[0].Key())
}

func TestParseBlockIndex_NoMain(t *testing.T) {
	entries, err := ParseBlockIndex(strings.NewReader(`<html><body><h2>Marketing</h2></body></html>`))
	require.NoError(t, err)
	require.Empty(t, entries)
}

func TestParseBlockIndex_LinksBeforeAnyHeadingIgnored(t *testing.T) {
	entries, err := ParseBlockIndex(strings.NewReader(`<main>
		<a href="/plus/ui-blocks/marketing/sections/heroes">Hero Sections 12 components</a>
		<h2>Marketing</h2>
		<a href="/plus/ui-blocks/marketing/elements/banners">Banners 13 components</a>
	</main>`))
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, "banners", entries[0].Slug)
}

const blockFixture = `<html><body><main>
<h1>Hero Sections</h1>
<p>Hero sections for landing pages.</p>
<h2>Overview</h2>
<h2><a href="#component-aaa111">Simple centered</a></h2>
<div role="tabpanel"></div>
<h2>Some unrelated heading</h2>
<h2>Split with screenshot <a href="#component-bbb222" aria-label="anchor"></a></h2>
</main></body></html>`

func TestParseBlockPage(t *testing.T) {
	page, err := ParseBlockPage(strings.NewReader(blockFixture))
	require.NoError(t, err)

	require.Equal(t, "Hero Sections", page.Name)
	require.Equal(t, "Hero sections for landing pages.", page.Description)
	require.Equal(t, []block.Variant{
		{Index: 0, Name: "Simple centered", Slug: "simple-centered", ComponentID: "component-aaa111"},
		{Index: 1, Name: "Split with screenshot", Slug: "split-with-screenshot", ComponentID: "component-bbb222"},
	}, page.Variants)
}

func TestParseBlockPage_DescriptionMustFollowH1(t *testing.T) {
	page, err := ParseBlockPage(strings.NewReader(`<h1>Banners</h1><div>x</div><p>not it</p>`))
	require.NoError(t, err)
	require.Equal(t, "Banners", page.Name)
	require.Empty(t, page.Description)
	require.Empty(t, page.Variants)
}
