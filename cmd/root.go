// Package cmd implements the CLI command structure for todoapp.
package cmd

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/nibzard/todoapp-go/internal/config"
	"github.com/nibzard/todoapp-go/internal/logging"
	"github.com/nibzard/todoapp-go/internal/store"
	"github.com/nibzard/todoapp-go/internal/todo"
	"github.com/nibzard/todoapp-go/internal/ui"
)

// Version is set via ldflags at build time.
var Version = "dev"

// app carries what every subcommand needs.
type app struct {
	cfg     *config.Config
	sources *config.ConfigWithSources
	stdout  io.Writer
	stderr  io.Writer
	logger  *log.Logger
}

// Run executes the todoapp CLI.
func Run(ctx context.Context, args []string) error {
	return run(ctx, args, os.Stdout, os.Stderr)
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("todoapp", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		printUsage(fs, stderr)
	}
	help := fs.Bool("help", false, "Show help")
	fs.BoolVar(help, "h", false, "Show help")
	showVersion := fs.Bool("version", false, "Show version")
	fs.BoolVar(showVersion, "v", false, "Show version")

	cws, err := config.LoadWithSources(fs, args)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if *help {
		printUsage(fs, stdout)
		return nil
	}
	if *showVersion {
		return versionCommand(stdout)
	}

	cfg := cws.Config
	a := &app{
		cfg:     cfg,
		sources: cws,
		stdout:  stdout,
		stderr:  stderr,
		logger:  logging.NewFromConfig(stderr, cfg.LogLevel, cfg.LogFormat, cfg.LogTimestamps, cfg.LogCaller),
	}

	// No subcommand, or a flag where one would be, means serve.
	subcommand := "serve"
	remainingArgs := fs.Args()
	if len(remainingArgs) > 0 && !strings.HasPrefix(remainingArgs[0], "-") {
		subcommand = remainingArgs[0]
		remainingArgs = remainingArgs[1:]
	}

	switch subcommand {
	case "serve":
		return a.serveCommand(ctx, remainingArgs)
	case "ls", "list":
		return a.lsCommand(ctx, remainingArgs)
	case "add":
		return a.addCommand(ctx, remainingArgs)
	case "edit":
		return a.editCommand(ctx, remainingArgs)
	case "done":
		return a.setCompletedCommand(ctx, "done", true, remainingArgs)
	case "undone":
		return a.setCompletedCommand(ctx, "undone", false, remainingArgs)
	case "rm":
		return a.rmCommand(ctx, remainingArgs)
	case "clear":
		return a.clearCommand(ctx, remainingArgs)
	case "toggle-all":
		return a.toggleAllCommand(ctx, remainingArgs)
	case "tui":
		return a.tuiCommand(ctx, remainingArgs)
	case "doctor":
		return a.doctorCommand(ctx, remainingArgs)
	case "config":
		fmt.Fprint(stdout, config.ExampleConfig())
		return nil
	case "version":
		return versionCommand(stdout)
	case "help":
		printUsage(fs, stdout)
		return nil
	default:
		fmt.Fprintf(stderr, "Unknown command: %s\n", subcommand)
		printUsage(fs, stderr)
		return fmt.Errorf("unknown command: %s", subcommand)
	}
}

// openService opens the configured store and builds a service over it.
// The caller closes the returned store.
func (a *app) openService() (*todo.Service, store.Store, error) {
	backend, err := store.ParseBackend(a.cfg.Store)
	if err != nil {
		return nil, nil, err
	}
	ids, err := todo.NewIDGenerator(todo.IDFormat(a.cfg.IDFormat))
	if err != nil {
		return nil, nil, err
	}
	st, err := store.Open(store.Options{
		Backend:  backend,
		Path:     a.cfg.DataFile,
		FileLock: a.cfg.FileLock,
		Logger:   a.logger,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("opening store: %w", err)
	}
	svc := todo.NewService(st, todo.WithIDGenerator(ids), todo.WithLogger(a.logger))
	return svc, st, nil
}

// tuiCommand launches the read-only terminal viewer.
func (a *app) tuiCommand(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("todoapp tui", flag.ContinueOnError)
	fs.SetOutput(a.stderr)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() > 0 {
		return fmt.Errorf("unexpected arguments: %v", fs.Args())
	}

	svc, st, err := a.openService()
	if err != nil {
		return err
	}
	defer st.Close()

	return ui.RunTUI(ctx, svc, st.Path())
}

// versionCommand prints version information.
func versionCommand(w io.Writer) error {
	fmt.Fprintf(w, "todoapp version %s\n", Version)
	return nil
}

// printUsage prints the usage message.
func printUsage(fs *flag.FlagSet, w io.Writer) {
	fmt.Fprintln(w, "todoapp - A small todo list server")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  todoapp [global options] [command] [options]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  serve                  Serve the HTTP API and static client (default command)")
	fmt.Fprintln(w, "  ls                     List tasks")
	fmt.Fprintln(w, "  add <text...>          Add a task")
	fmt.Fprintln(w, "  edit <id> <text...>    Change the text of a task")
	fmt.Fprintln(w, "  done <id>              Mark a task completed")
	fmt.Fprintln(w, "  undone <id>            Mark a task active")
	fmt.Fprintln(w, "  rm <id>                Delete a task")
	fmt.Fprintln(w, "  clear                  Delete all completed tasks")
	fmt.Fprintln(w, "  toggle-all <true|false>  Set every task's completed state")
	fmt.Fprintln(w, "  tui                    Launch terminal viewer")
	fmt.Fprintln(w, "  doctor                 Check config and data file validity")
	fmt.Fprintln(w, "  config                 Print an example todoapp.toml")
	fmt.Fprintln(w, "  version                Show version information")
	fmt.Fprintln(w, "  help                   Show this help message")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Global Options:")
	fs.SetOutput(w)
	fs.PrintDefaults()
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Serve Options:")
	fmt.Fprintln(w, "  -addr string")
	fmt.Fprintln(w, "        Listen address (overrides the global value)")
	fmt.Fprintln(w, "  -static-dir string")
	fmt.Fprintln(w, "        Directory served at / (empty disables)")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Ls Options:")
	fmt.Fprintln(w, "  -filter string")
	fmt.Fprintln(w, "        all, active or completed (default \"all\")")
	fmt.Fprintln(w, "  -format string")
	fmt.Fprintln(w, "        text, json or yaml (default \"text\")")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Doctor Options:")
	fmt.Fprintln(w, "  -v    Show config sources and every task")
}
