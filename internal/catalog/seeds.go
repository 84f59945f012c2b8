package catalog

import "github.com/hpungsan/plusblocks/internal/block"

func seed(name, slug string, ctx block.Context, count int, subcategory string) block.Category {
	return block.Category{
		Name:           name,
		Slug:           slug,
		Subcategory:    subcategory,
		Context:        ctx,
		ComponentCount: count,
		URL:            block.UIBlocksURL + "/" + string(ctx) + "/" + slug,
	}
}

// Seeds is the built-in block list used only when no catalog has been synced.
// Component counts reflect the site at the time the list was written.
var Seeds = []block.Category{
	// Marketing: Page Sections
	seed("Hero Sections", "sections/heroes", block.ContextMarketing, 12, "PAGE SECTIONS"),
	seed("Feature Sections", "sections/feature-sections", block.ContextMarketing, 15, "PAGE SECTIONS"),
	seed("CTA Sections", "sections/cta-sections", block.ContextMarketing, 11, "PAGE SECTIONS"),
	seed("Bento Grids", "sections/bento-grids", block.ContextMarketing, 3, "PAGE SECTIONS"),
	seed("Pricing Sections", "sections/pricing", block.ContextMarketing, 12, "PAGE SECTIONS"),
	seed("Header Sections", "sections/header", block.ContextMarketing, 8, "PAGE SECTIONS"),
	seed("Newsletter Sections", "sections/newsletter-sections", block.ContextMarketing, 6, "PAGE SECTIONS"),
	seed("Stats", "sections/stats-sections", block.ContextMarketing, 8, "PAGE SECTIONS"),
	seed("Testimonials", "sections/testimonials", block.ContextMarketing, 8, "PAGE SECTIONS"),
	seed("Blog Sections", "sections/blog-sections", block.ContextMarketing, 7, "PAGE SECTIONS"),
	seed("Contact Sections", "sections/contact-sections", block.ContextMarketing, 7, "PAGE SECTIONS"),
	seed("Team Sections", "sections/team-sections", block.ContextMarketing, 9, "PAGE SECTIONS"),
	seed("Content Sections", "sections/content-sections", block.ContextMarketing, 7, "PAGE SECTIONS"),
	seed("Logo Clouds", "sections/logo-clouds", block.ContextMarketing, 6, "PAGE SECTIONS"),
	seed("FAQs", "sections/faq-sections", block.ContextMarketing, 7, "PAGE SECTIONS"),
	seed("Footers", "sections/footers", block.ContextMarketing, 7, "PAGE SECTIONS"),
	// Marketing: Elements
	seed("Headers", "elements/headers", block.ContextMarketing, 11, "ELEMENTS"),
	seed("Flyout Menus", "elements/flyout-menus", block.ContextMarketing, 7, "ELEMENTS"),
	seed("Banners", "elements/banners", block.ContextMarketing, 13, "ELEMENTS"),
	// Marketing: Feedback
	seed("404 Pages", "feedback/404-pages", block.ContextMarketing, 5, "FEEDBACK"),
	// Marketing: Page Examples
	seed("Landing Pages", "page-examples/landing-pages", block.ContextMarketing, 4, "PAGE EXAMPLES"),
	seed("Pricing Pages", "page-examples/pricing-pages", block.ContextMarketing, 3, "PAGE EXAMPLES"),
	seed("About Pages", "page-examples/about-pages", block.ContextMarketing, 3, "PAGE EXAMPLES"),
	// Application UI: Application Shells
	seed("Stacked Layouts", "application-shells/stacked", block.ContextApplicationUI, 9, "APPLICATION SHELLS"),
	seed("Sidebar Layouts", "application-shells/sidebar", block.ContextApplicationUI, 8, "APPLICATION SHELLS"),
	seed("Multi-Column Layouts", "application-shells/multi-column", block.ContextApplicationUI, 6, "APPLICATION SHELLS"),
	// Application UI: Headings
	seed("Page Headings", "headings/page-headings", block.ContextApplicationUI, 9, "HEADINGS"),
	seed("Card Headings", "headings/card-headings", block.ContextApplicationUI, 6, "HEADINGS"),
	seed("Section Headings", "headings/section-headings", block.ContextApplicationUI, 10, "HEADINGS"),
	// Application UI: Data Display
	seed("Description Lists", "data-display/description-lists", block.ContextApplicationUI, 6, "DATA DISPLAY"),
	seed("Stats", "data-display/stats", block.ContextApplicationUI, 5, "DATA DISPLAY"),
	seed("Calendars", "data-display/calendars", block.ContextApplicationUI, 8, "DATA DISPLAY"),
	// Application UI: Lists
	seed("Stacked Lists", "lists/stacked-lists", block.ContextApplicationUI, 15, "LISTS"),
	seed("Tables", "lists/tables", block.ContextApplicationUI, 19, "LISTS"),
	seed("Grid Lists", "lists/grid-lists", block.ContextApplicationUI, 7, "LISTS"),
	seed("Feeds", "lists/feeds", block.ContextApplicationUI, 3, "LISTS"),
	// Application UI: Forms
	seed("Form Layouts", "forms/form-layouts", block.ContextApplicationUI, 4, "FORMS"),
	seed("Input Groups", "forms/input-groups", block.ContextApplicationUI, 21, "FORMS"),
	seed("Select Menus", "forms/select-menus", block.ContextApplicationUI, 7, "FORMS"),
	seed("Sign-in and Registration", "forms/sign-in-forms", block.ContextApplicationUI, 4, "FORMS"),
	seed("Textareas", "forms/textareas", block.ContextApplicationUI, 5, "FORMS"),
	seed("Radio Groups", "forms/radio-groups", block.ContextApplicationUI, 12, "FORMS"),
	seed("Checkboxes", "forms/checkboxes", block.ContextApplicationUI, 4, "FORMS"),
	seed("Toggles", "forms/toggles", block.ContextApplicationUI, 5, "FORMS"),
	seed("Action Panels", "forms/action-panels", block.ContextApplicationUI, 8, "FORMS"),
	seed("Comboboxes", "forms/comboboxes", block.ContextApplicationUI, 4, "FORMS"),
	// Application UI: Feedback
	seed("Alerts", "feedback/alerts", block.ContextApplicationUI, 6, "FEEDBACK"),
	seed("Empty States", "feedback/empty-states", block.ContextApplicationUI, 6, "FEEDBACK"),
	// Application UI: Navigation
	seed("Navbars", "navigation/navbars", block.ContextApplicationUI, 11, "NAVIGATION"),
	seed("Pagination", "navigation/pagination", block.ContextApplicationUI, 3, "NAVIGATION"),
	seed("Tabs", "navigation/tabs", block.ContextApplicationUI, 9, "NAVIGATION"),
	seed("Vertical Navigation", "navigation/vertical-navigation", block.ContextApplicationUI, 6, "NAVIGATION"),
	seed("Sidebar Navigation", "navigation/sidebar-navigation", block.ContextApplicationUI, 5, "NAVIGATION"),
	seed("Breadcrumbs", "navigation/breadcrumbs", block.ContextApplicationUI, 4, "NAVIGATION"),
	seed("Progress Bars", "navigation/progress-bars", block.ContextApplicationUI, 8, "NAVIGATION"),
	seed("Command Palettes", "navigation/command-palettes", block.ContextApplicationUI, 8, "NAVIGATION"),
	// Application UI: Overlays
	seed("Modal Dialogs", "overlays/modal-dialogs", block.ContextApplicationUI, 6, "OVERLAYS"),
	seed("Drawers", "overlays/drawers", block.ContextApplicationUI, 12, "OVERLAYS"),
	seed("Notifications", "overlays/notifications", block.ContextApplicationUI, 6, "OVERLAYS"),
	// Application UI: Elements
	seed("Avatars", "elements/avatars", block.ContextApplicationUI, 11, "ELEMENTS"),
	seed("Badges", "elements/badges", block.ContextApplicationUI, 16, "ELEMENTS"),
	seed("Dropdowns", "elements/dropdowns", block.ContextApplicationUI, 5, "ELEMENTS"),
	seed("Buttons", "elements/buttons", block.ContextApplicationUI, 8, "ELEMENTS"),
	seed("Button Groups", "elements/button-groups", block.ContextApplicationUI, 5, "ELEMENTS"),
	// Application UI: Layout
	seed("Containers", "layout/containers", block.ContextApplicationUI, 5, "LAYOUT"),
	seed("Cards", "layout/cards", block.ContextApplicationUI, 10, "LAYOUT"),
	seed("List containers", "layout/list-containers", block.ContextApplicationUI, 7, "LAYOUT"),
	seed("Media Objects", "layout/media-objects", block.ContextApplicationUI, 8, "LAYOUT"),
	seed("Dividers", "layout/dividers", block.ContextApplicationUI, 8, "LAYOUT"),
	// Application UI: Page Examples
	seed("Home Screens", "page-examples/home-screens", block.ContextApplicationUI, 2, "PAGE EXAMPLES"),
	seed("Detail Screens", "page-examples/detail-screens", block.ContextApplicationUI, 2, "PAGE EXAMPLES"),
	seed("Settings Screens", "page-examples/settings-screens", block.ContextApplicationUI, 2, "PAGE EXAMPLES"),
	// Ecommerce: Components
	seed("Product Overviews", "components/product-overviews", block.ContextEcommerce, 5, "COMPONENTS"),
	seed("Product Lists", "components/product-lists", block.ContextEcommerce, 11, "COMPONENTS"),
	seed("Category Previews", "components/category-previews", block.ContextEcommerce, 6, "COMPONENTS"),
	seed("Shopping Carts", "components/shopping-carts", block.ContextEcommerce, 6, "COMPONENTS"),
	seed("Category Filters", "components/category-filters", block.ContextEcommerce, 5, "COMPONENTS"),
	seed("Product Quickviews", "components/product-quickviews", block.ContextEcommerce, 4, "COMPONENTS"),
	seed("Product Features", "components/product-features", block.ContextEcommerce, 9, "COMPONENTS"),
	seed("Store Navigation", "components/store-navigation", block.ContextEcommerce, 5, "COMPONENTS"),
	seed("Promo Sections", "components/promo-sections", block.ContextEcommerce, 8, "COMPONENTS"),
	seed("Checkout Forms", "components/checkout-forms", block.ContextEcommerce, 5, "COMPONENTS"),
	seed("Reviews", "components/reviews", block.ContextEcommerce, 4, "COMPONENTS"),
	seed("Order Summaries", "components/order-summaries", block.ContextEcommerce, 4, "COMPONENTS"),
	seed("Order History", "components/order-history", block.ContextEcommerce, 4, "COMPONENTS"),
	seed("Incentives", "components/incentives", block.ContextEcommerce, 8, "COMPONENTS"),
	// Ecommerce: Page Examples
	seed("Storefront Pages", "page-examples/storefront-pages", block.ContextEcommerce, 4, "PAGE EXAMPLES"),
	seed("Product Pages", "page-examples/product-pages", block.ContextEcommerce, 5, "PAGE EXAMPLES"),
	seed("Category Pages", "page-examples/category-pages", block.ContextEcommerce, 5, "PAGE EXAMPLES"),
	seed("Shopping Cart Pages", "page-examples/shopping-cart-pages", block.ContextEcommerce, 3, "PAGE EXAMPLES"),
	seed("Checkout Pages", "page-examples/checkout-pages", block.ContextEcommerce, 5, "PAGE EXAMPLES"),
	seed("Order Detail Pages", "page-examples/order-detail-pages", block.ContextEcommerce, 3, "PAGE EXAMPLES"),
	seed("Order History Pages", "page-examples/order-history-pages", block.ContextEcommerce, 5, "PAGE EXAMPLES"),
}
