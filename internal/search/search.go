package search

import (
	"sort"
	"strings"

	"github.com/hpungsan/plusblocks/internal/block"
)

// ResultType says whether a result names a whole block or one variant.
type ResultType string

const (
	TypeBlock   ResultType = "block"
	TypeVariant ResultType = "variant"
)

// Result is one ranked hit.
type Result struct {
	Type         ResultType    `json:"type"`
	Category     block.Context `json:"category"`
	Block        string        `json:"block"`
	BlockName    string        `json:"blockName"`
	Variant      string        `json:"variant,omitempty"`
	VariantName  string        `json:"variantName,omitempty"`
	VariantCount int           `json:"variantCount,omitempty"`
	Relevance    float64       `json:"relevance"`
}

// Options narrows a search.
type Options struct {
	Category        block.Context
	Limit           int
	IncludeVariants bool
}

// DefaultOptions returns the defaults used when a caller passes none: ten
// results, variants included.
func DefaultOptions() Options {
	return Options{Limit: 10, IncludeVariants: true}
}

const (
	matchThreshold = 0.3
	boostThreshold = 0.5
)

// Search ranks blocks and, optionally, variants against query. Results are
// sorted by relevance; ties keep catalog order.
func Search(query string, blocks []block.Block, opts Options) []Result {
	if opts.Limit <= 0 {
		opts.Limit = 10
	}
	q := strings.ToLower(query)
	results := make([]Result, 0)

	for _, b := range blocks {
		if opts.Category != "" && b.Category != opts.Category {
			continue
		}
		score := Similarity(b.Name, q)
		if b.Description != "" {
			score = max(score, Similarity(b.Description, q)*0.8)
		}
		if score > matchThreshold {
			results = append(results, Result{
				Type:         TypeBlock,
				Category:     b.Category,
				Block:        b.Slug,
				BlockName:    b.Name,
				VariantCount: b.VariantCount,
				Relevance:    score,
			})
		}

		if !opts.IncludeVariants {
			continue
		}
		for _, v := range b.Variants {
			vs := Similarity(v.Name, q)
			if score > boostThreshold {
				vs = vs*0.7 + score*0.3
			}
			if vs > matchThreshold {
				results = append(results, Result{
					Type:        TypeVariant,
					Category:    b.Category,
					Block:       b.Slug,
					BlockName:   b.Name,
					Variant:     v.Slug,
					VariantName: v.Name,
					Relevance:   vs,
				})
			}
		}
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Relevance > results[j].Relevance
	})
	if len(results) > opts.Limit {
		results = results[:opts.Limit]
	}
	return results
}
