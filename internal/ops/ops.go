// Package ops implements the tool surface shared by the CLI and the MCP
// server. Every operation takes an *Env and a plain input struct and returns
// a JSON-ready output or a *errors.PlusError.
package ops

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/hpungsan/plusblocks/internal/block"
	"github.com/hpungsan/plusblocks/internal/browser"
	"github.com/hpungsan/plusblocks/internal/bulksync"
	"github.com/hpungsan/plusblocks/internal/cache"
	"github.com/hpungsan/plusblocks/internal/catalog"
	"github.com/hpungsan/plusblocks/internal/errors"
	"github.com/hpungsan/plusblocks/internal/logging"
	"github.com/hpungsan/plusblocks/internal/scrape"
)

// Defaults applied to optional inputs.
const (
	DefaultFormat      = block.FormatReact
	DefaultVersion     = block.VersionV4
	DefaultTheme       = block.ThemeLight
	DefaultSearchLimit = 10
	MaxSearchLimit     = 100
	// availableBlocksShown caps the block slugs listed in a BLOCK_NOT_FOUND error.
	availableBlocksShown = 10
)

// CodeFetcher extracts one variant code. *scrape.Fetcher implements it.
type CodeFetcher interface {
	FetchVariantCode(ctx context.Context, req scrape.CodeRequest) (*block.VariantCode, error)
}

// Env carries the shared state every operation reads.
type Env struct {
	Catalog *catalog.Store
	Legacy  *catalog.LegacyStore
	Cache   *cache.Manager
	Session *browser.SessionStore
	// Journal may be nil; status then omits the last sync.
	Journal *sql.DB
	Codes   CodeFetcher
	Syncer  *bulksync.Syncer
	// Login runs the interactive sign-in. Nil disables the login operation.
	Login  func(ctx context.Context) error
	Logger logging.Logger
	Now    func() time.Time
}

func (e *Env) now() time.Time {
	if e.Now == nil {
		return time.Now()
	}
	return e.Now()
}

func (e *Env) logger() logging.Logger {
	return logging.OrDiscard(e.Logger)
}

// requireAuth fails with AUTH_REQUIRED unless a usable session is stored.
func (e *Env) requireAuth() error {
	state := e.Session.AuthState(e.now())
	if state.IsAuthenticated {
		return nil
	}
	err := errors.NewAuthRequired()
	err.Details = map[string]any{
		"cookiesExist":   state.CookiesExist,
		"cookiesExpired": state.CookiesExpired,
	}
	if state.CookiesExpired {
		err.Message = "session cookies have expired"
		err.Hint = "run 'plusblocks login' to refresh the session"
	}
	return err
}

// parseContext validates a required context argument.
func parseContext(s string) (block.Context, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", errors.NewInvalidRequest("category is required (marketing, application-ui or ecommerce)")
	}
	c, err := block.ParseContext(s)
	if err != nil {
		return "", errors.NewInvalidRequest(err.Error())
	}
	return c, nil
}

// parseOptionalContext accepts an empty value as "all contexts".
func parseOptionalContext(s string) (block.Context, error) {
	if strings.TrimSpace(s) == "" {
		return "", nil
	}
	return parseContext(s)
}

// orAll renders an empty filter as "all".
func orAll(s string) string {
	if s == "" {
		return "all"
	}
	return s
}
