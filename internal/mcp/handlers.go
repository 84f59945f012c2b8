package mcp

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/hpungsan/plusblocks/internal/errors"
	"github.com/hpungsan/plusblocks/internal/ops"
)

// Handlers holds dependencies for MCP tool handlers.
type Handlers struct {
	env *ops.Env
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(env *ops.Env) *Handlers {
	return &Handlers{env: env}
}

// Request types for each tool

// ListBlocksRequest represents the arguments for list_blocks.
type ListBlocksRequest struct {
	Category    string `json:"category"`
	Subcategory string `json:"subcategory,omitempty"`
}

// ListVariantsRequest represents the arguments for list_variants.
type ListVariantsRequest struct {
	Category string `json:"category"`
	Block    string `json:"block"`
}

// GetVariantRequest represents the arguments for get_variant.
type GetVariantRequest struct {
	Category string `json:"category"`
	Block    string `json:"block"`
	Variant  string `json:"variant"`
	Format   string `json:"format,omitempty"`
	Version  string `json:"version,omitempty"`
	Theme    string `json:"theme,omitempty"`
}

// SearchRequest represents the arguments for search.
type SearchRequest struct {
	Query    string `json:"query"`
	Category string `json:"category,omitempty"`
	Limit    int    `json:"limit,omitempty"`
}

// SuggestRequest represents the arguments for suggest.
type SuggestRequest struct {
	Building    string   `json:"building"`
	AlreadyUsed []string `json:"alreadyUsed,omitempty"`
}

// HandleListCategories handles the list_categories tool call.
func (h *Handlers) HandleListCategories(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	result, err := ops.ListCategories(h.env)
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(result)
}

// HandleListBlocks handles the list_blocks tool call.
func (h *Handlers) HandleListBlocks(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[ListBlocksRequest](req)
	if err != nil {
		return errorResult(err), nil
	}

	result, err := ops.ListBlocks(h.env, ops.ListBlocksInput{
		Category:    input.Category,
		Subcategory: input.Subcategory,
	})
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(result)
}

// HandleListVariants handles the list_variants tool call.
func (h *Handlers) HandleListVariants(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[ListVariantsRequest](req)
	if err != nil {
		return errorResult(err), nil
	}

	result, err := ops.ListVariants(h.env, ops.ListVariantsInput{
		Category: input.Category,
		Block:    input.Block,
	})
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(result)
}

// HandleGetVariant handles the get_variant tool call.
func (h *Handlers) HandleGetVariant(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[GetVariantRequest](req)
	if err != nil {
		return errorResult(err), nil
	}

	result, err := ops.GetVariant(ctx, h.env, ops.GetVariantInput{
		Category: input.Category,
		Block:    input.Block,
		Variant:  input.Variant,
		Format:   input.Format,
		Version:  input.Version,
		Theme:    input.Theme,
	})
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(result)
}

// HandleSearch handles the search tool call.
func (h *Handlers) HandleSearch(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[SearchRequest](req)
	if err != nil {
		return errorResult(err), nil
	}

	result, err := ops.Search(h.env, ops.SearchInput{
		Query:    input.Query,
		Category: input.Category,
		Limit:    input.Limit,
	})
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(result)
}

// HandleSuggest handles the suggest tool call.
func (h *Handlers) HandleSuggest(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[SuggestRequest](req)
	if err != nil {
		return errorResult(err), nil
	}

	result, err := ops.Suggest(h.env, ops.SuggestInput{
		Building:    input.Building,
		AlreadyUsed: input.AlreadyUsed,
	})
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(result)
}

// HandleStatus handles the status tool call.
func (h *Handlers) HandleStatus(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	result, err := ops.Status(h.env)
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(result)
}

// HandleLogin handles the login tool call.
func (h *Handlers) HandleLogin(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	result, err := ops.Login(ctx, h.env)
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(result)
}

// Result helpers

// errorResult creates an MCP error result from any error.
// Uses IsError: true so MCP clients recognize failures properly.
// Internal error details are never exposed.
func errorResult(err error) *mcp.CallToolResult {
	var payload map[string]any

	if pErr, ok := errors.As(err); ok {
		msg := pErr.Message
		// Keep wrapper context such as "block heroes: ".
		if prefix := strings.TrimSuffix(err.Error(), pErr.Error()); prefix != err.Error() {
			msg = prefix + msg
		}
		errorObj := map[string]any{
			"code":    pErr.Code,
			"message": msg,
			"status":  pErr.Status,
		}
		if pErr.Hint != "" {
			errorObj["hint"] = pErr.Hint
		}
		if pErr.Code != errors.ErrInternal && pErr.Details != nil {
			errorObj["details"] = pErr.Details
		}
		if pErr.Code == errors.ErrInternal {
			errorObj["message"] = "an internal error occurred"
		}
		payload = map[string]any{"error": errorObj}
	} else {
		payload = map[string]any{
			"error": map[string]any{
				"code":    errors.ErrInternal,
				"message": "an internal error occurred",
				"status":  500,
			},
		}
	}

	content, _ := json.Marshal(payload)
	return &mcp.CallToolResult{
		Content: []mcp.Content{mcp.TextContent{Type: "text", Text: string(content)}},
		IsError: true,
	}
}

// successResult creates an MCP success result from any data.
func successResult(data any) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultJSON(data)
}
