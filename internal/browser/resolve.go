package browser

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"sync"

	"github.com/go-rod/rod/lib/launcher"

	"github.com/hpungsan/plusblocks/internal/logging"
)

// Resolver finds a Chromium-family executable, downloading a pinned build as
// the last resort. The first successful result is reused.
type Resolver struct {
	// Override is an explicit path (config chrome_path or CHROME_PATH).
	Override string
	// DownloadDir receives the pinned build when nothing is installed.
	DownloadDir string
	Logger      logging.Logger

	goos     string
	getenv   func(string) string
	exists   func(string) bool
	lookPath func(string) (string, error)
	download func(ctx context.Context, dir string, logger logging.Logger) (string, error)

	mu     sync.Mutex
	cached string
}

// NewResolver creates a resolver for the running platform.
func NewResolver(override, downloadDir string, logger logging.Logger) *Resolver {
	return &Resolver{
		Override:    override,
		DownloadDir: downloadDir,
		Logger:      logging.OrDiscard(logger),
		goos:        runtime.GOOS,
		getenv:      os.Getenv,
		exists:      fileExists,
		lookPath:    exec.LookPath,
		download:    downloadPinned,
	}
}

// Resolve returns the executable path, checking in order: the cached result,
// the override, well-known install locations, PATH (not on Windows), and
// finally a download into DownloadDir.
func (r *Resolver) Resolve(ctx context.Context) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.cached != "" && r.exists(r.cached) {
		return r.cached, nil
	}
	if r.Override != "" && r.exists(r.Override) {
		r.cached = r.Override
		return r.cached, nil
	}
	for _, p := range knownPaths(r.goos, r.getenv) {
		if r.exists(p) {
			r.cached = p
			return p, nil
		}
	}
	if r.goos != "windows" {
		for _, name := range []string{"google-chrome", "chromium", "chromium-browser"} {
			if p, err := r.lookPath(name); err == nil && p != "" {
				r.cached = p
				return p, nil
			}
		}
	}

	r.Logger.WithField("dir", r.DownloadDir).Info("no Chrome/Chromium found; downloading a pinned build")
	p, err := r.download(ctx, r.DownloadDir, r.Logger)
	if err != nil {
		return "", fmt.Errorf("download browser: %w", err)
	}
	r.cached = p
	return p, nil
}

func knownPaths(goos string, getenv func(string) string) []string {
	switch goos {
	case "darwin":
		return []string{
			"/Applications/Google Chrome.app/Contents/MacOS/Google Chrome",
			"/Applications/Chromium.app/Contents/MacOS/Chromium",
			"/Applications/Google Chrome Canary.app/Contents/MacOS/Google Chrome Canary",
			"/Applications/Brave Browser.app/Contents/MacOS/Brave Browser",
			"/Applications/Microsoft Edge.app/Contents/MacOS/Microsoft Edge",
		}
	case "windows":
		programFiles := envOr(getenv, "PROGRAMFILES", `C:\Program Files`)
		programFilesX86 := envOr(getenv, "PROGRAMFILES(X86)", `C:\Program Files (x86)`)
		paths := []string{
			programFiles + `\Google\Chrome\Application\chrome.exe`,
			programFilesX86 + `\Google\Chrome\Application\chrome.exe`,
		}
		if local := getenv("LOCALAPPDATA"); local != "" {
			paths = append(paths, local+`\Google\Chrome\Application\chrome.exe`)
		}
		return append(paths,
			programFiles+`\Microsoft\Edge\Application\msedge.exe`,
			programFilesX86+`\Microsoft\Edge\Application\msedge.exe`,
		)
	default:
		return []string{
			"/usr/bin/google-chrome",
			"/usr/bin/google-chrome-stable",
			"/usr/bin/chromium",
			"/usr/bin/chromium-browser",
			"/snap/bin/chromium",
			"/usr/bin/brave-browser",
			"/usr/bin/microsoft-edge",
		}
	}
}

func envOr(getenv func(string) string, key, def string) string {
	if v := getenv(key); v != "" {
		return v
	}
	return def
}

func fileExists(p string) bool {
	info, err := os.Stat(p)
	return err == nil && !info.IsDir()
}

// downloadPinned fetches rod's pinned Chromium revision. Download progress is
// reported through the logger.
func downloadPinned(ctx context.Context, dir string, logger logging.Logger) (string, error) {
	if err := os.MkdirAll(dir, 0700); err != nil {
		return "", err
	}
	b := launcher.NewBrowser()
	b.Context = ctx
	b.RootDir = filepath.Clean(dir)
	b.Logger = logger
	return b.Get()
}
