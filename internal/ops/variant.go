package ops

import (
	"context"
	"strings"

	"github.com/hpungsan/plusblocks/internal/block"
	"github.com/hpungsan/plusblocks/internal/errors"
	"github.com/hpungsan/plusblocks/internal/logging"
	"github.com/hpungsan/plusblocks/internal/scrape"
)

// GetVariantInput contains parameters for the GetVariant operation.
// Format, Version and Theme default to react, v4.1 and light.
type GetVariantInput struct {
	Category string
	Block    string
	Variant  string
	Format   string
	Version  string
	Theme    string
}

// GetVariantOutput is one variant's code.
type GetVariantOutput struct {
	Block        string        `json:"block"`
	Variant      string        `json:"variant"`
	VariantName  string        `json:"variantName"`
	Format       block.Format  `json:"format"`
	Version      block.Version `json:"version"`
	Theme        block.Theme   `json:"theme"`
	Code         string        `json:"code"`
	Dependencies []string      `json:"dependencies"`
	Cached       bool          `json:"cached"`
	CachedAt     int64         `json:"cachedAt,omitempty"`
}

// parseKey validates the inputs and applies defaults.
func (in GetVariantInput) parseKey() (block.CacheKey, error) {
	ctx, err := parseContext(in.Category)
	if err != nil {
		return block.CacheKey{}, err
	}
	key := block.CacheKey{
		Context: ctx,
		Block:   strings.TrimSpace(in.Block),
		Variant: strings.TrimSpace(in.Variant),
		Format:  DefaultFormat,
		Version: DefaultVersion,
		Theme:   DefaultTheme,
	}
	if key.Block == "" || key.Variant == "" {
		return block.CacheKey{}, errors.NewInvalidRequest("block and variant are required")
	}
	if s := strings.TrimSpace(in.Format); s != "" {
		if key.Format, err = block.ParseFormat(s); err != nil {
			return block.CacheKey{}, errors.NewInvalidRequest(err.Error())
		}
	}
	if s := strings.TrimSpace(in.Version); s != "" {
		if key.Version, err = block.ParseVersion(s); err != nil {
			return block.CacheKey{}, errors.NewInvalidRequest(err.Error())
		}
	}
	if s := strings.TrimSpace(in.Theme); s != "" {
		if key.Theme, err = block.ParseTheme(s); err != nil {
			return block.CacheKey{}, errors.NewInvalidRequest(err.Error())
		}
	}
	if err := key.Validate(); err != nil {
		return block.CacheKey{}, err
	}
	return key, nil
}

// GetVariant returns a variant's code from the cache, extracting and caching
// it on a miss. A stored session is required either way.
func GetVariant(ctx context.Context, env *Env, input GetVariantInput) (*GetVariantOutput, error) {
	key, err := input.parseKey()
	if err != nil {
		return nil, err
	}
	if err := env.requireAuth(); err != nil {
		return nil, err
	}

	if vc, ok := env.Cache.GetVariant(key); ok {
		return variantOutput(vc, true), nil
	}

	b, err := findBlock(env, string(key.Context), key.Block)
	if err != nil {
		return nil, err
	}
	v, ok := b.VariantBySlug(key.Variant)
	if !ok {
		notFound := errors.NewVariantNotFound(key.Variant, key.Block)
		available := make([]string, 0, len(b.Variants))
		for _, v := range b.Variants {
			available = append(available, v.Slug)
		}
		notFound.Details["availableVariants"] = available
		return nil, notFound
	}

	vc, err := env.Codes.FetchVariantCode(ctx, scrape.CodeRequest{
		Block:        scrape.BlockRef{Category: b.Category, Subcategory: b.Subcategory, Slug: b.Slug},
		VariantIndex: v.Index,
		Format:       key.Format,
		Version:      key.Version,
		Theme:        key.Theme,
	})
	if err != nil {
		return nil, err
	}
	if err := env.Cache.SetVariant(vc); err != nil {
		env.logger().WithFields(logging.Fields{"key": key.String()}).WithError(err).Warn("cache variant code")
	}
	return variantOutput(vc, false), nil
}

func variantOutput(vc *block.VariantCode, cached bool) *GetVariantOutput {
	out := &GetVariantOutput{
		Block:        vc.BlockSlug,
		Variant:      vc.VariantSlug,
		VariantName:  vc.VariantName,
		Format:       vc.Format,
		Version:      vc.Version,
		Theme:        vc.Theme,
		Code:         vc.Code,
		Dependencies: vc.Dependencies,
		Cached:       cached,
	}
	if out.Dependencies == nil {
		out.Dependencies = []string{}
	}
	if cached {
		out.CachedAt = vc.CachedAt
	}
	return out
}
