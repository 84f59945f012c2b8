package web

import (
	"context"
	"embed"
	stderrors "errors"
	"fmt"
	"io/fs"
	"net/http"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/mark3labs/mcp-go/server"

	"github.com/hpungsan/plusblocks/internal/logging"
	"github.com/hpungsan/plusblocks/internal/ops"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static/*
var staticFS embed.FS

//go:embed content/index.md
var indexMarkdown []byte

// MCPPath is where the streamable-HTTP MCP endpoint is mounted.
const MCPPath = "/mcp"

// Options configures NewServer.
type Options struct {
	Env     *ops.Env
	MCP     *server.MCPServer
	Version string
	Bind    string
	Port    int
	Logger  logging.Logger
}

// NewServer creates the HTTP server: MCP endpoint, health check and catalog pages.
func NewServer(opts Options) (*http.Server, error) {
	templateSub, err := fs.Sub(templateFS, "templates")
	if err != nil {
		return nil, fmt.Errorf("template sub-FS: %w", err)
	}
	staticSub, err := fs.Sub(staticFS, "static")
	if err != nil {
		return nil, fmt.Errorf("static sub-FS: %w", err)
	}

	h := &Handlers{
		env:      opts.Env,
		renderer: NewRenderer(templateSub, opts.Version, opts.Logger),
		index:    indexMarkdown,
		version:  opts.Version,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", h.HandleIndex)
	mux.HandleFunc("GET /health", h.HandleHealth)
	mux.HandleFunc("GET /blocks", h.HandleCategories)
	mux.HandleFunc("GET /blocks/{category}", h.HandleBlocks)
	mux.HandleFunc("GET /blocks/{category}/{block}", h.HandleVariants)
	mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServerFS(staticSub)))
	if opts.MCP != nil {
		mux.Handle(MCPPath, server.NewStreamableHTTPServer(opts.MCP, server.WithEndpointPath(MCPPath)))
	}
	mux.HandleFunc("/", h.HandleNotFound)

	return &http.Server{
		Addr:              fmt.Sprintf("%s:%d", opts.Bind, opts.Port),
		Handler:           securityHeaders(mux),
		ReadHeaderTimeout: 10 * time.Second,
	}, nil
}

// securityHeaders adds security-related HTTP headers to all responses.
func securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Security-Policy", "default-src 'self'; script-src 'self'; style-src 'self'")
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		next.ServeHTTP(w, r)
	})
}

// Run serves srv until ctx ends or SIGINT/SIGTERM arrives, then shuts down
// and runs each cleanup in order. Cleanup errors are logged, not returned.
func Run(ctx context.Context, srv *http.Server, logger logging.Logger, cleanup ...func() error) error {
	logger = logging.OrDiscard(logger)
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	logger.WithField("addr", srv.Addr).Infof("plusblocks listening on http://%s (MCP at %s)", srv.Addr, MCPPath)
	if strings.HasPrefix(srv.Addr, "0.0.0.0") || strings.HasPrefix(srv.Addr, ":") || strings.Contains(srv.Addr, "::") {
		logger.Warn("server is binding to all interfaces and may be accessible from the network")
	}

	var serveErr error
	select {
	case err := <-errCh:
		if !stderrors.Is(err, http.ErrServerClosed) {
			serveErr = err
		}
	case <-ctx.Done():
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		serveErr = srv.Shutdown(shutdownCtx)
		cancel()
	}

	for _, fn := range cleanup {
		if err := fn(); err != nil {
			logger.WithError(err).Warn("shutdown cleanup failed")
		}
	}
	return serveErr
}
