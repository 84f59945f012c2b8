package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os/signal"
	"strings"
	"syscall"

	"github.com/urfave/cli/v2"

	"github.com/hpungsan/plusblocks/internal/errors"
	"github.com/hpungsan/plusblocks/internal/mcp"
	"github.com/hpungsan/plusblocks/internal/ops"
	"github.com/hpungsan/plusblocks/internal/web"
)

// opener builds the runtime for a base directory ("" = default).
type opener func(baseDir string) (*runtime, error)

// lazyRuntime opens the runtime on first use, so --help never touches disk.
type lazyRuntime struct {
	open opener
	rt   *runtime
}

func (l *lazyRuntime) get(c *cli.Context) (*runtime, error) {
	if l.rt != nil {
		return l.rt, nil
	}
	if l.open == nil {
		return nil, errors.NewInternal(fmt.Errorf("no runtime configured"))
	}
	rt, err := l.open(c.String("home"))
	if err != nil {
		return nil, err
	}
	l.rt = rt
	return rt, nil
}

func (l *lazyRuntime) close() error {
	if l.rt == nil {
		return nil
	}
	err := l.rt.Close()
	l.rt = nil
	return err
}

// newCLIApp creates the CLI application with all commands.
func newCLIApp(open opener) *cli.App {
	l := &lazyRuntime{open: open}
	app := &cli.App{
		Name:    "plusblocks",
		Usage:   "Tailwind Plus UI blocks for MCP clients",
		Version: Version,
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "home", EnvVars: []string{"PLUSBLOCKS_HOME"}, Usage: "State directory (default ~/.plusblocks)"},
		},
		Commands: []*cli.Command{
			loginCmd(l),
			statusCmd(l),
			listCategoriesCmd(l),
			listBlocksCmd(l),
			listVariantsCmd(l),
			getVariantCmd(l),
			searchCmd(l),
			suggestCmd(l),
			syncCatalogCmd(l),
			clearCacheCmd(l),
			serveCmd(l),
		},
		After: func(*cli.Context) error {
			return l.close()
		},
	}
	// Disable default exit error handler to allow proper error return in tests
	app.ExitErrHandler = func(_ *cli.Context, _ error) {}
	return app
}

// action wraps a command body: it opens the runtime, runs fn and prints the
// result as JSON or the error in CLI form.
func action(l *lazyRuntime, fn func(c *cli.Context, rt *runtime) (any, error)) cli.ActionFunc {
	return func(c *cli.Context) error {
		rt, err := l.get(c)
		if err != nil {
			return outputError(err)
		}
		out, err := fn(c, rt)
		if err != nil {
			return outputError(err)
		}
		return outputJSON(c, out)
	}
}

// loginCmd creates the login command.
func loginCmd(l *lazyRuntime) *cli.Command {
	return &cli.Command{
		Name:  "login",
		Usage: "Sign in to Tailwind Plus in a browser window and store the session",
		Action: action(l, func(c *cli.Context, rt *runtime) (any, error) {
			ctx, stop := signalContext(c.Context)
			defer stop()
			return ops.Login(ctx, rt.env)
		}),
	}
}

// statusCmd creates the status command.
func statusCmd(l *lazyRuntime) *cli.Command {
	return &cli.Command{
		Name:  "status",
		Usage: "Show session, catalog, cache and last sync state",
		Action: action(l, func(_ *cli.Context, rt *runtime) (any, error) {
			return ops.Status(rt.env)
		}),
	}
}

// listCategoriesCmd creates the list-categories command.
func listCategoriesCmd(l *lazyRuntime) *cli.Command {
	return &cli.Command{
		Name:  "list-categories",
		Usage: "List top-level categories with block counts",
		Action: action(l, func(_ *cli.Context, rt *runtime) (any, error) {
			return ops.ListCategories(rt.env)
		}),
	}
}

// listBlocksCmd creates the list-blocks command.
func listBlocksCmd(l *lazyRuntime) *cli.Command {
	return &cli.Command{
		Name:      "list-blocks",
		Usage:     "List the blocks of a category",
		ArgsUsage: "[category]",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "category", Aliases: []string{"c"}, Usage: "marketing|application-ui|ecommerce"},
			&cli.StringFlag{Name: "subcategory", Aliases: []string{"s"}, Usage: "Filter by subcategory"},
		},
		Action: action(l, func(c *cli.Context, rt *runtime) (any, error) {
			return ops.ListBlocks(rt.env, ops.ListBlocksInput{
				Category:    argOrFlag(c, 0, "category"),
				Subcategory: c.String("subcategory"),
			})
		}),
	}
}

// listVariantsCmd creates the list-variants command.
func listVariantsCmd(l *lazyRuntime) *cli.Command {
	return &cli.Command{
		Name:      "list-variants",
		Usage:     "List the variants of a block",
		ArgsUsage: "[category] [block]",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "category", Aliases: []string{"c"}, Usage: "Category"},
			&cli.StringFlag{Name: "block", Aliases: []string{"b"}, Usage: "Block slug"},
		},
		Action: action(l, func(c *cli.Context, rt *runtime) (any, error) {
			return ops.ListVariants(rt.env, ops.ListVariantsInput{
				Category: argOrFlag(c, 0, "category"),
				Block:    argOrFlag(c, 1, "block"),
			})
		}),
	}
}

// getVariantCmd creates the get-variant command.
func getVariantCmd(l *lazyRuntime) *cli.Command {
	return &cli.Command{
		Name:      "get-variant",
		Usage:     "Fetch the code of one variant (cached for 7 days)",
		ArgsUsage: "[category] [block] [variant]",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "category", Aliases: []string{"c"}, Usage: "Category"},
			&cli.StringFlag{Name: "block", Aliases: []string{"b"}, Usage: "Block slug"},
			&cli.StringFlag{Name: "variant", Usage: "Variant slug"},
			&cli.StringFlag{Name: "format", Aliases: []string{"f"}, Value: ops.DefaultFormat, Usage: "react|vue|html"},
			// --version is taken by the app's version flag.
			&cli.StringFlag{Name: "tailwind", Aliases: []string{"tw"}, Value: ops.DefaultVersion, Usage: "Tailwind version: v4.1|v3.4"},
			&cli.StringFlag{Name: "theme", Aliases: []string{"t"}, Value: ops.DefaultTheme, Usage: "light|dark"},
			&cli.BoolFlag{Name: "code-only", Usage: "Print only the code instead of JSON"},
		},
		Action: func(c *cli.Context) error {
			rt, err := l.get(c)
			if err != nil {
				return outputError(err)
			}
			ctx, stop := signalContext(c.Context)
			defer stop()
			out, err := ops.GetVariant(ctx, rt.env, ops.GetVariantInput{
				Category: argOrFlag(c, 0, "category"),
				Block:    argOrFlag(c, 1, "block"),
				Variant:  argOrFlag(c, 2, "variant"),
				Format:   c.String("format"),
				Version:  c.String("tailwind"),
				Theme:    c.String("theme"),
			})
			if err != nil {
				return outputError(err)
			}
			if c.Bool("code-only") {
				_, err := fmt.Fprintln(c.App.Writer, out.Code)
				return err
			}
			return outputJSON(c, out)
		},
	}
}

// searchCmd creates the search command.
func searchCmd(l *lazyRuntime) *cli.Command {
	return &cli.Command{
		Name:      "search",
		Usage:     "Search blocks and variants",
		ArgsUsage: "<query>",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "category", Aliases: []string{"c"}, Usage: "Limit to one category"},
			&cli.IntFlag{Name: "limit", Aliases: []string{"l"}, Value: ops.DefaultSearchLimit, Usage: "Maximum results"},
		},
		Action: action(l, func(c *cli.Context, rt *runtime) (any, error) {
			return ops.Search(rt.env, ops.SearchInput{
				Query:    strings.Join(c.Args().Slice(), " "),
				Category: c.String("category"),
				Limit:    c.Int("limit"),
			})
		}),
	}
}

// suggestCmd creates the suggest command.
func suggestCmd(l *lazyRuntime) *cli.Command {
	return &cli.Command{
		Name:      "suggest",
		Usage:     "Suggest blocks for what you're building",
		ArgsUsage: "<description>",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "used", Aliases: []string{"u"}, Usage: "Comma-separated block slugs to exclude"},
		},
		Action: action(l, func(c *cli.Context, rt *runtime) (any, error) {
			return ops.Suggest(rt.env, ops.SuggestInput{
				Building:    strings.Join(c.Args().Slice(), " "),
				AlreadyUsed: parseList(c.String("used")),
			})
		}),
	}
}

// syncCatalogCmd creates the sync-catalog command.
func syncCatalogCmd(l *lazyRuntime) *cli.Command {
	return &cli.Command{
		Name:  "sync-catalog",
		Usage: "Discover every block and cache its variants' code",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "category", Aliases: []string{"c"}, Usage: "Only sync one category"},
			&cli.StringFlag{Name: "block", Aliases: []string{"b"}, Usage: "Only sync one block (requires --category)"},
			&cli.BoolFlag{Name: "force", Usage: "Re-sync blocks that are already complete"},
			&cli.BoolFlag{Name: "metadata-only", Usage: "Record variants without fetching code"},
			&cli.BoolFlag{Name: "verbose", Usage: "Log per-variant progress"},
		},
		Action: action(l, func(c *cli.Context, rt *runtime) (any, error) {
			ctx, stop := signalContext(c.Context)
			defer stop()
			return ops.SyncCatalog(ctx, rt.env, ops.SyncInput{
				Category:     c.String("category"),
				Block:        c.String("block"),
				Force:        c.Bool("force"),
				MetadataOnly: c.Bool("metadata-only"),
				Verbose:      c.Bool("verbose"),
			})
		}),
	}
}

// clearCacheCmd creates the clear-cache command.
func clearCacheCmd(l *lazyRuntime) *cli.Command {
	return &cli.Command{
		Name:  "clear-cache",
		Usage: "Delete cached variant code",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "expired", Usage: "Only delete entries past their TTL"},
		},
		Action: action(l, func(c *cli.Context, rt *runtime) (any, error) {
			return ops.ClearCache(rt.env, ops.ClearCacheInput{ExpiredOnly: c.Bool("expired")})
		}),
	}
}

// serveCmd creates the serve command.
func serveCmd(l *lazyRuntime) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Run the MCP server (stdio, or HTTP with --remote)",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "remote", Usage: "Serve streamable HTTP instead of stdio"},
			&cli.IntFlag{Name: "port", Aliases: []string{"p"}, Usage: "HTTP port (default: PORT or config)"},
			&cli.StringFlag{Name: "bind", Value: "127.0.0.1", Usage: "HTTP bind address"},
		},
		Action: func(c *cli.Context) error {
			rt, err := l.get(c)
			if err != nil {
				return outputError(err)
			}
			if !c.Bool("remote") {
				return mcp.Run(rt.env, rt.cfg, Version)
			}
			port := rt.cfg.Port
			if c.IsSet("port") {
				port = c.Int("port")
			}
			if err := serveRemote(c.Context, rt, c.String("bind"), port); err != nil {
				return outputError(err)
			}
			return nil
		},
	}
}

// serveRemote runs the HTTP transport with scheduled cache maintenance.
func serveRemote(ctx context.Context, rt *runtime, bind string, port int) error {
	srv, err := web.NewServer(web.Options{
		Env:     rt.env,
		MCP:     mcp.NewServer(rt.env, rt.cfg, Version),
		Version: Version,
		Bind:    bind,
		Port:    port,
		Logger:  rt.logger,
	})
	if err != nil {
		return errors.NewInternal(err)
	}

	maint, err := web.NewMaintenance(rt.env, rt.cfg.CachePruneEvery(), rt.logger)
	if err != nil {
		return errors.NewInternal(err)
	}
	maint.Start()

	return web.Run(ctx, srv, rt.logger, maint.Stop, rt.Close)
}

// Helper functions

// signalContext cancels on SIGINT/SIGTERM so long operations stop cleanly.
func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	if parent == nil {
		parent = context.Background()
	}
	return signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
}

// outputJSON marshals result to the app's writer as JSON.
func outputJSON(c *cli.Context, v any) error {
	enc := json.NewEncoder(c.App.Writer)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// outputError formats error for CLI: "[CODE] message (hint)".
func outputError(err error) error {
	if pErr, ok := errors.As(err); ok {
		msg := fmt.Sprintf("[%s] %s", pErr.Code, pErr.Message)
		if pErr.Hint != "" {
			msg += fmt.Sprintf(" (%s)", pErr.Hint)
		}
		return cli.Exit(msg, 1)
	}
	return cli.Exit(err.Error(), 1)
}

// argOrFlag returns positional argument i when present, else the named flag.
func argOrFlag(c *cli.Context, i int, flag string) string {
	if c.NArg() > i {
		return c.Args().Get(i)
	}
	return c.String(flag)
}

// parseList splits a comma-separated string, dropping blanks.
func parseList(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if v := strings.TrimSpace(p); v != "" {
			out = append(out, v)
		}
	}
	return out
}
