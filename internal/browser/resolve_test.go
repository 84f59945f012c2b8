package browser

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hpungsan/plusblocks/internal/logging"
)

func testResolver(goos string, present map[string]bool) (*Resolver, *int) {
	downloads := 0
	r := NewResolver("", "/tmp/browsers", nil)
	r.goos = goos
	r.getenv = func(string) string { return "" }
	r.exists = func(p string) bool { return present[p] }
	r.lookPath = func(string) (string, error) { return "", errors.New("not found") }
	r.download = func(context.Context, string, logging.Logger) (string, error) {
		downloads++
		return "/tmp/browsers/chromium/chrome", nil
	}
	return r, &downloads
}

func TestResolver_OverrideWins(t *testing.T) {
	r, downloads := testResolver("linux", map[string]bool{"/opt/chrome": true, "/usr/bin/chromium": true})
	r.Override = "/opt/chrome"

	p, err := r.Resolve(context.Background())
	require.NoError(t, err)
	require.Equal(t, "/opt/chrome", p)
	require.Zero(t, *downloads)
}

func TestResolver_MissingOverrideFallsThrough(t *testing.T) {
	r, _ := testResolver("linux", map[string]bool{"/usr/bin/chromium": true})
	r.Override = "/does/not/exist"

	p, err := r.Resolve(context.Background())
	require.NoError(t, err)
	require.Equal(t, "/usr/bin/chromium", p)
}

func TestResolver_KnownPathOrder(t *testing.T) {
	r, _ := testResolver("darwin", map[string]bool{
		"/Applications/Chromium.app/Contents/MacOS/Chromium":             true,
		"/Applications/Brave Browser.app/Contents/MacOS/Brave Browser": true,
	})
	p, err := r.Resolve(context.Background())
	require.NoError(t, err)
	require.Equal(t, "/Applications/Chromium.app/Contents/MacOS/Chromium", p)
}

func TestResolver_LookPathOnPOSIX(t *testing.T) {
	r, downloads := testResolver("linux", nil)
	r.lookPath = func(name string) (string, error) {
		if name == "chromium" {
			return "/home/me/bin/chromium", nil
		}
		return "", errors.New("not found")
	}
	p, err := r.Resolve(context.Background())
	require.NoError(t, err)
	require.Equal(t, "/home/me/bin/chromium", p)
	require.Zero(t, *downloads)
}

func TestResolver_DownloadsOnceAndCaches(t *testing.T) {
	r, downloads := testResolver("windows", nil)
	r.exists = func(p string) bool { return p == "/tmp/browsers/chromium/chrome" }

	p, err := r.Resolve(context.Background())
	require.NoError(t, err)
	require.Equal(t, "/tmp/browsers/chromium/chrome", p)

	_, err = r.Resolve(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, *downloads)
}

func TestKnownPaths_WindowsEnv(t *testing.T) {
	paths := knownPaths("windows", func(k string) string {
		if k == "LOCALAPPDATA" {
			return `C:\Users\me\AppData\Local`
		}
		return ""
	})
	require.Contains(t, paths, `C:\Program Files\Google\Chrome\Application\chrome.exe`)
	require.Contains(t, paths, `C:\Users\me\AppData\Local\Google\Chrome\Application\chrome.exe`)
}
