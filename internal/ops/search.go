package ops

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/hpungsan/plusblocks/internal/errors"
	"github.com/hpungsan/plusblocks/internal/search"
)

// MaxQueryLength bounds free-text inputs in runes.
const MaxQueryLength = 500

// SearchInput contains parameters for the Search operation.
type SearchInput struct {
	Query    string // required
	Category string // optional filter
	Limit    int    // default: 10, max: 100
}

// SearchOutput contains the result of the Search operation.
type SearchOutput struct {
	Query       string          `json:"query"`
	Category    string          `json:"category"`
	ResultCount int             `json:"resultCount"`
	Results     []search.Result `json:"results"`
}

func validateText(field, s string) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", errors.NewInvalidRequest(field + " is required")
	}
	if utf8.RuneCountInString(s) > MaxQueryLength {
		return "", errors.NewInvalidRequest(fmt.Sprintf("%s exceeds %d characters", field, MaxQueryLength))
	}
	return s, nil
}

// Search ranks the synced blocks and variants against a free-text query.
func Search(env *Env, input SearchInput) (*SearchOutput, error) {
	query, err := validateText("query", input.Query)
	if err != nil {
		return nil, err
	}
	ctx, err := parseOptionalContext(input.Category)
	if err != nil {
		return nil, err
	}

	limit := input.Limit
	if limit <= 0 {
		limit = DefaultSearchLimit
	}
	limit = min(limit, MaxSearchLimit)

	results := search.Search(query, env.Catalog.Blocks("", ""), search.Options{
		Category:        ctx,
		Limit:           limit,
		IncludeVariants: true,
	})
	return &SearchOutput{
		Query:       query,
		Category:    orAll(string(ctx)),
		ResultCount: len(results),
		Results:     results,
	}, nil
}

// SuggestInput contains parameters for the Suggest operation.
type SuggestInput struct {
	Building    string   // required
	AlreadyUsed []string // block slugs to exclude
}

// SuggestOutput contains the result of the Suggest operation.
type SuggestOutput struct {
	Building        string              `json:"building"`
	ExcludedCount   int                 `json:"excludedCount"`
	SuggestionCount int                 `json:"suggestionCount"`
	Suggestions     []search.Suggestion `json:"suggestions"`
}

// Suggest recommends blocks for what the user is building.
func Suggest(env *Env, input SuggestInput) (*SuggestOutput, error) {
	building, err := validateText("building", input.Building)
	if err != nil {
		return nil, err
	}
	used := make([]string, 0, len(input.AlreadyUsed))
	for _, s := range input.AlreadyUsed {
		if s = strings.TrimSpace(s); s != "" {
			used = append(used, s)
		}
	}

	suggestions := search.Suggest(building, env.Catalog.Blocks("", ""), used)
	return &SuggestOutput{
		Building:        building,
		ExcludedCount:   len(used),
		SuggestionCount: len(suggestions),
		Suggestions:     suggestions,
	}, nil
}
