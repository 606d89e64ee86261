// Command memmerge merges individual Valgrind memcheck XML reports into one
// file, either as a one-shot CLI run or behind an HTTP endpoint.
package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/alecthomas/kong"
	"github.com/go-git/go-billy/v5/osfs"

	"github.com/wrv/memmerge/internal/api"
	"github.com/wrv/memmerge/internal/config"
	"github.com/wrv/memmerge/internal/pipeline"
)

// Command is the CLI surface.
type Command struct {
	Verbose bool `help:"Enable debug logging." short:"v"`

	Merge *MergeCmd `cmd:"" default:"withargs" help:"Merge memcheck XML reports from a directory into one file."`
	Serve *ServeCmd `cmd:"" help:"Expose the merge pipeline over HTTP."`
}

// App carries the global flags into the subcommands.
type App struct {
	Verbose bool
}

type MergeCmd struct {
	SourceDirectory string `help:"Directory scanned for memcheck XML reports. Defaults to the current directory." short:"s" placeholder:"DIR"`
	OutputDirectory string `help:"Directory the merged report is written into. Defaults to the source directory." short:"o" placeholder:"DIR"`
	OutputFile      string `help:"File name for the merged report, created inside the output directory." short:"f" required:""`
	HTMLSummary     string `help:"Also write an HTML run summary to this path." placeholder:"PATH"`
	Config          string `help:"YAML file with default settings." short:"c" placeholder:"PATH" type:"path"`
}

func (m *MergeCmd) Run(app *App) error {
	log := newLogger(app.Verbose)
	fsys := osfs.New("/")

	cfg := config.Default()

	cfgPath, explicit := m.Config, m.Config != ""
	if !explicit {
		cfgPath = absPath(config.DefaultFile)
	}
	if err := cfg.LoadFile(fsys, cfgPath, explicit); err != nil {
		return err
	}

	if m.SourceDirectory != "" {
		cfg.SourceDir = m.SourceDirectory
	}
	if m.OutputDirectory != "" {
		cfg.OutputDir = m.OutputDirectory
	}
	cfg.OutputFile = m.OutputFile
	if m.HTMLSummary != "" {
		cfg.HTMLSummary = m.HTMLSummary
	}

	cfg.Normalize()
	// The osfs root is the real filesystem root, so run paths have to be
	// anchored at the working directory first.
	cfg.SourceDir = absPath(cfg.SourceDir)
	cfg.OutputDir = absPath(cfg.OutputDir)
	if cfg.HTMLSummary != "" {
		cfg.HTMLSummary = absPath(cfg.HTMLSummary)
	}

	_, err := pipeline.Run(fsys, cfg, log)
	return err
}

type ServeCmd struct {
	Port   string `help:"Port to listen on." short:"p"`
	Config string `help:"YAML file with default settings." short:"c" placeholder:"PATH" type:"path"`
}

func (c *ServeCmd) Run(app *App) error {
	opts := &slog.HandlerOptions{Level: slog.LevelInfo}
	if app.Verbose {
		opts.Level = slog.LevelDebug
	}
	log := slog.New(slog.NewJSONHandler(os.Stdout, opts))

	cfg := config.Default()
	cfgPath, explicit := c.Config, c.Config != ""
	if !explicit {
		cfgPath = absPath(config.DefaultFile)
	}
	if err := cfg.LoadFile(osfs.New("/"), cfgPath, explicit); err != nil {
		return err
	}
	if c.Port != "" {
		cfg.Port = c.Port
	}

	srv := api.NewServer(log, cfg)

	httpServer := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      srv,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown.
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		log.Info("shutting down...")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		httpServer.Shutdown(shutdownCtx)
	}()

	log.Info("starting memmerge", "port", cfg.Port)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// newLogger builds the CLI logger. Lines go to stderr; stdout stays clean.
func newLogger(verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// absPath anchors a possibly relative path at the working directory.
func absPath(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		return path
	}
	return abs
}

func main() {
	command := new(Command)
	ctx := kong.Parse(command,
		kong.Name("memmerge"),
		kong.Description("Merge individual memcheck XML reports into one file."),
		kong.UsageOnError(),
	)
	err := ctx.Run(&App{Verbose: command.Verbose})
	ctx.FatalIfErrorf(err)
}
