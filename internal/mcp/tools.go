package mcp

import (
	"github.com/mark3labs/mcp-go/mcp"
)

var categoryEnum = []string{"marketing", "application-ui", "ecommerce"}

var listCategoriesToolDef = mcp.NewTool("list_categories",
	mcp.WithTitleAnnotation("List Categories"),
	mcp.WithDescription(`List the top-level Tailwind Plus UI block categories with block counts.

CATEGORIES:
- marketing: landing pages, hero sections, pricing
- application-ui: dashboards, forms, tables, modals
- ecommerce: products, carts, checkout

Each category contains blocks, and each block has variants. Before the first
sync the built-in seed list is returned.`),
	mcp.WithReadOnlyHintAnnotation(true),
)

var listBlocksToolDef = mcp.NewTool("list_blocks",
	mcp.WithTitleAnnotation("List Blocks"),
	mcp.WithDescription(`List the blocks of a category with variant counts.

EXAMPLES:
- category="marketing" → Heroes, Testimonials, Pricing, CTAs...
- category="application-ui", subcategory="forms" → Form layouts, Sign-in...`),
	mcp.WithString("category", mcp.Required(), mcp.Enum(categoryEnum...),
		mcp.Description("Category to list blocks for")),
	mcp.WithString("subcategory",
		mcp.Description("Filter by subcategory (e.g. 'sections', 'forms')")),
	mcp.WithReadOnlyHintAnnotation(true),
)

var listVariantsToolDef = mcp.NewTool("list_variants",
	mcp.WithTitleAnnotation("List Variants"),
	mcp.WithDescription(`List the variants of one block.

Use the returned variant slugs with get_variant to fetch code.`),
	mcp.WithString("category", mcp.Required(), mcp.Enum(categoryEnum...),
		mcp.Description("Category containing the block")),
	mcp.WithString("block", mcp.Required(),
		mcp.Description("Block slug (e.g. 'testimonials', 'heroes')")),
	mcp.WithReadOnlyHintAnnotation(true),
)

var getVariantToolDef = mcp.NewTool("get_variant",
	mcp.WithTitleAnnotation("Get Variant Code"),
	mcp.WithDescription(`Fetch the source code of one variant.

Requires a Tailwind Plus session: run 'plusblocks login' first.
Code is cached for 7 days after the first fetch.`),
	mcp.WithString("category", mcp.Required(), mcp.Enum(categoryEnum...),
		mcp.Description("Category")),
	mcp.WithString("block", mcp.Required(), mcp.Description("Block slug")),
	mcp.WithString("variant", mcp.Required(), mcp.Description("Variant slug (kebab-case)")),
	mcp.WithString("format", mcp.Enum("react", "vue", "html"), mcp.DefaultString("react"),
		mcp.Description("Code format")),
	mcp.WithString("version", mcp.Enum("v4.1", "v3.4"), mcp.DefaultString("v4.1"),
		mcp.Description("Tailwind CSS version: v4.1 (latest) or v3.4 (legacy)")),
	mcp.WithString("theme", mcp.Enum("light", "dark"), mcp.DefaultString("light"),
		mcp.Description("Color theme")),
	mcp.WithOpenWorldHintAnnotation(true),
)

var searchToolDef = mcp.NewTool("search",
	mcp.WithTitleAnnotation("Search Components"),
	mcp.WithDescription(`Search across all synced blocks and variants.

EXAMPLES:
- "testimonial grid" → Grid testimonial variant
- "pricing table" → Pricing blocks and variants

Results are ranked by relevance.`),
	mcp.WithString("query", mcp.Required(), mcp.Description("Search term")),
	mcp.WithString("category", mcp.Enum(categoryEnum...), mcp.Description("Limit to one category")),
	mcp.WithNumber("limit", mcp.DefaultNumber(10), mcp.Description("Max results (max 100)")),
	mcp.WithReadOnlyHintAnnotation(true),
)

var suggestToolDef = mcp.NewTool("suggest",
	mcp.WithTitleAnnotation("Suggest Components"),
	mcp.WithDescription(`Suggest blocks for what you're building.

EXAMPLES:
- "SaaS landing page" → heroes, pricing, testimonials, CTAs
- "admin dashboard" → sidebars, tables, stats, forms
- "ecommerce store" → products, carts, checkout`),
	mcp.WithString("building", mcp.Required(), mcp.Description("What you're building")),
	mcp.WithArray("alreadyUsed", mcp.WithStringItems(),
		mcp.Description("Block slugs to exclude")),
	mcp.WithReadOnlyHintAnnotation(true),
)

var statusToolDef = mcp.NewTool("status",
	mcp.WithTitleAnnotation("Status"),
	mcp.WithDescription("Report authentication state, catalog freshness, cache size and the last sync run."),
	mcp.WithReadOnlyHintAnnotation(true),
)

var loginToolDef = mcp.NewTool("login",
	mcp.WithTitleAnnotation("Log In"),
	mcp.WithDescription(`Open a browser window to sign in to Tailwind Plus and store the session.

Only works where a desktop browser can be shown. Waits up to 5 minutes.`),
	mcp.WithOpenWorldHintAnnotation(true),
)
