package web

import (
	"net/http"
	"strings"
	"time"

	"github.com/hpungsan/plusblocks/internal/errors"
	"github.com/hpungsan/plusblocks/internal/ops"
)

// Handlers contains HTTP route handlers.
type Handlers struct {
	env      *ops.Env
	renderer *Renderer
	index    []byte
	version  string
}

// HealthOutput is the GET /health body.
type HealthOutput struct {
	Status        string      `json:"status"`
	Server        string      `json:"server"`
	Version       string      `json:"version"`
	Authenticated bool        `json:"authenticated"`
	Cache         HealthCache `json:"cache"`
}

// HealthCache summarizes live cached variants.
type HealthCache struct {
	TotalVariants int   `json:"totalVariants"`
	TotalSize     int64 `json:"totalSize"`
}

// HandleIndex handles GET / and shows the current status.
func (h *Handlers) HandleIndex(w http.ResponseWriter, r *http.Request) {
	status, err := ops.Status(h.env)
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}
	if wantsJSON(r) {
		renderJSON(w, http.StatusOK, status)
		return
	}
	h.renderer.renderPage(w, "index", IndexPageData{
		PageData: h.renderer.page("Overview", "home"),
		Status:   status,
		Body:     renderMarkdown(h.index),
	})
}

// HandleHealth handles GET /health.
func (h *Handlers) HandleHealth(w http.ResponseWriter, r *http.Request) {
	now := time.Now
	if h.env.Now != nil {
		now = h.env.Now
	}
	stats := h.env.Cache.VariantStats()
	renderJSON(w, http.StatusOK, HealthOutput{
		Status:        "ok",
		Server:        "plusblocks",
		Version:       h.version,
		Authenticated: h.env.Session.AuthState(now()).IsAuthenticated,
		Cache: HealthCache{
			TotalVariants: stats.TotalVariants,
			TotalSize:     stats.TotalSize,
		},
	})
}

// HandleCategories handles GET /blocks with the category list.
func (h *Handlers) HandleCategories(w http.ResponseWriter, r *http.Request) {
	result, err := ops.ListCategories(h.env)
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}
	if wantsJSON(r) {
		renderJSON(w, http.StatusOK, result)
		return
	}
	h.renderer.renderPage(w, "categories", CategoriesPageData{
		PageData:             h.renderer.page("Categories", "blocks"),
		ListCategoriesOutput: result,
	})
}

// HandleBlocks handles GET /blocks/{category} with the blocks of one category.
func (h *Handlers) HandleBlocks(w http.ResponseWriter, r *http.Request) {
	result, err := ops.ListBlocks(h.env, ops.ListBlocksInput{
		Category:    r.PathValue("category"),
		Subcategory: r.URL.Query().Get("subcategory"),
	})
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}
	if wantsJSON(r) {
		renderJSON(w, http.StatusOK, result)
		return
	}
	sub := ""
	if result.Subcategory != "all" {
		sub = result.Subcategory
	}
	h.renderer.renderPage(w, "blocks", BlocksPageData{
		PageData: h.renderer.page(string(result.Category), "blocks"),
		ListBlocksOutput: &ops.ListBlocksOutput{
			Category:    result.Category,
			Subcategory: sub,
			BlockCount:  result.BlockCount,
			Blocks:      result.Blocks,
		},
	})
}

// HandleVariants handles GET /blocks/{category}/{block} with the variants of one block.
func (h *Handlers) HandleVariants(w http.ResponseWriter, r *http.Request) {
	result, err := ops.ListVariants(h.env, ops.ListVariantsInput{
		Category: r.PathValue("category"),
		Block:    r.PathValue("block"),
	})
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}
	if wantsJSON(r) {
		renderJSON(w, http.StatusOK, result)
		return
	}

	codes, err := h.env.Cache.BlockVariants(r.Context(), result.Block.Category, result.Block.Slug)
	if err != nil {
		h.renderer.renderError(w, r, errors.NewInternal(err))
		return
	}
	cached := make(map[string]bool, len(codes))
	for _, c := range codes {
		cached[c.VariantSlug] = true
	}

	h.renderer.renderPage(w, "variants", VariantsPageData{
		PageData:           h.renderer.page(result.Block.Name, "blocks"),
		ListVariantsOutput: result,
		Cached:             cached,
	})
}

// HandleNotFound renders 404 for unmatched paths.
func (h *Handlers) HandleNotFound(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/")
	h.renderer.renderError(w, r, &errors.PlusError{
		Code:    errors.ErrInvalidRequest,
		Status:  http.StatusNotFound,
		Message: "no page at /" + path,
		Hint:    "see /blocks for the catalog",
	})
}
