package block

import (
	"testing"

	"github.com/stretchr/testify/require"

	apperrors "github.com/hpungsan/plusblocks/internal/errors"
)

func TestToKebabCase(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Simple centered", "simple-centered"},
		{"With large avatar", "with-large-avatar"},
		{"  Split with image & text  ", "split-with-image-text"},
		{"Hero -- Sections", "hero-sections"},
		{"--leading and trailing--", "leading-and-trailing"},
		{"Card with 3 columns (new)", "card-with-3-columns-new"},
		{"", ""},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got := ToKebabCase(tt.in)
			require.Equal(t, tt.want, got)
			require.Equal(t, got, ToKebabCase(got), "must be idempotent")
			require.NotContains(t, got, "--")
		})
	}
}

func TestVariantCacheKey_RoundTrip(t *testing.T) {
	key := VariantCacheKey("marketing", "heroes", "simple-centered", "react", "light", "v4.1")
	require.Equal(t, "marketing--heroes--simple-centered--react--light--v4.1", key)

	parsed, err := ParseCacheKey(key)
	require.NoError(t, err)
	require.Equal(t, CacheKey{
		Context: ContextMarketing,
		Block:   "heroes",
		Variant: "simple-centered",
		Format:  FormatReact,
		Theme:   ThemeLight,
		Version: VersionV4,
	}, parsed)
	require.Equal(t, key, parsed.String())
	require.Equal(t, "marketing/heroes/simple-centered", parsed.EntryID())
}

func TestParseCacheKey_WrongArity(t *testing.T) {
	_, err := ParseCacheKey("marketing--heroes--react")
	require.Error(t, err)

	// A separator inside a component breaks the round trip.
	_, err = ParseCacheKey(VariantCacheKey("marketing", "a--b", "c", "react", "light", "v4.1"))
	require.Error(t, err)
}

func TestCacheKey_Validate(t *testing.T) {
	good := CacheKey{ContextEcommerce, "product-overviews", "split", FormatHTML, ThemeDark, VersionV3}
	require.NoError(t, good.Validate())

	bad := good
	bad.Variant = "a--b"
	require.Error(t, bad.Validate())

	empty := good
	empty.Block = ""
	require.Error(t, empty.Validate())

	escape := good
	escape.Block = "../secrets"
	err := escape.Validate()
	require.True(t, apperrors.Is(err, apperrors.ErrInvalidKey))
}

func TestBlockKey(t *testing.T) {
	key := BlockKey(ContextApplicationUI, "forms", "input-groups")
	require.Equal(t, "application-ui/forms/input-groups", key)

	c, sub, slug, err := ParseBlockKey(key)
	require.NoError(t, err)
	require.Equal(t, ContextApplicationUI, c)
	require.Equal(t, "forms", sub)
	require.Equal(t, "input-groups", slug)

	_, _, _, err = ParseBlockKey("marketing/heroes")
	require.Error(t, err)
}
