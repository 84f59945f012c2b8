package main

import (
	"fmt"
	"os"

	"github.com/hpungsan/plusblocks/internal/mcp"
)

// Version is set via -ldflags at build time.
var Version = "dev"

// cliCommands contains known CLI subcommands.
var cliCommands = map[string]bool{
	"login": true, "status": true,
	"list-categories": true, "list-blocks": true, "list-variants": true,
	"get-variant": true, "search": true, "suggest": true,
	"sync-catalog": true, "clear-cache": true, "serve": true,
	"help": true,
}

// isCLIMode determines if we should run CLI vs MCP server.
func isCLIMode() bool {
	if len(os.Args) < 2 {
		return false // No args → MCP server
	}
	arg := os.Args[1]
	if cliCommands[arg] {
		return true
	}
	if arg == "--help" || arg == "-h" || arg == "--version" || arg == "-v" {
		return true
	}
	// Global flags such as --home precede the subcommand.
	for _, a := range os.Args[2:] {
		if cliCommands[a] {
			return true
		}
	}
	return false // Default → MCP server
}

// isHelpOrVersion returns true if the user is requesting help or version info.
func isHelpOrVersion() bool {
	if len(os.Args) < 2 {
		return false
	}
	arg := os.Args[1]
	return arg == "--help" || arg == "-h" || arg == "--version" || arg == "-v" || arg == "help"
}

// isTerminal returns true if stdin is a terminal (not piped).
func isTerminal() bool {
	stat, _ := os.Stdin.Stat()
	return (stat.Mode() & os.ModeCharDevice) != 0
}

// printBanner displays a friendly banner when run interactively without args.
func printBanner() {
	fmt.Println(`
        _           _     _            _
  _ __ | |_  _ ___ | |__ | | ___   ___| | _____
 | '_ \| | || (_-< | '_ \| |/ _ \ / __| |/ / __|
 | .__/|_|\_,_/__/ |_.__/|_|\___/| (__|   <\__ \
 |_|                              \___|_|\_\___/

  Tailwind Plus UI blocks for MCP clients

  Usage: plusblocks <command> [options]
         plusblocks --help

  MCP server mode requires piped input.`)
}

// openDefault opens the runtime with logs on stderr.
func openDefault(baseDir string) (*runtime, error) {
	return openRuntime(baseDir, os.Stderr)
}

func main() {
	// No args + interactive terminal → show banner and exit
	if len(os.Args) < 2 && isTerminal() {
		printBanner()
		return
	}

	if isHelpOrVersion() || isCLIMode() {
		app := newCLIApp(openDefault)
		if err := app.Run(os.Args); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	// Unknown argument + terminal → show error (don't start MCP server)
	if len(os.Args) >= 2 && isTerminal() {
		fmt.Fprintf(os.Stderr, "error: unknown command %q\n", os.Args[1])
		fmt.Fprintf(os.Stderr, "Run 'plusblocks --help' for usage.\n")
		os.Exit(1)
	}

	// MCP server mode (default)
	rt, err := openDefault("")
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	err = mcp.Run(rt.env, rt.cfg, Version)
	if cerr := rt.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
