package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/standardbeagle/contextweaver/internal/config"
	"github.com/standardbeagle/contextweaver/internal/debug"
	"github.com/standardbeagle/contextweaver/internal/display"
	"github.com/standardbeagle/contextweaver/internal/indexing"
	"github.com/standardbeagle/contextweaver/internal/mcp"
	"github.com/standardbeagle/contextweaver/internal/report"
	"github.com/standardbeagle/contextweaver/pkg/pathutil"
)

const stdoutPath = "-"

// projectOptions collects the project flags of c
func projectOptions(c *cli.Context) indexing.ProjectOptions {
	return indexing.ProjectOptions{
		ConfigPath:   c.String("config"),
		SettingsPath: c.String("settings"),
		Workers:      c.Int("workers"),
		Include:      c.StringSlice("include"),
		Exclude:      c.StringSlice("exclude"),
		Strict:       c.Bool("strict"),
	}
}

// reportTarget is where and how a report is written
type reportTarget struct {
	renderer report.Renderer
	path     string
}

// resolveTarget takes the output format and path from flags, then config.
// The renderer is looked up here so an unknown format fails before any
// file is read.
func resolveTarget(c *cli.Context, cfg *config.Config) (reportTarget, error) {
	format := cfg.Output.Format
	if c.IsSet("format") {
		format = c.String("format")
	}
	path := cfg.Output.Path
	if c.IsSet("output") {
		path = c.String("output")
	}

	renderer, err := report.DefaultRegistry().Lookup(format)
	if err != nil {
		return reportTarget{}, err
	}
	return reportTarget{renderer: renderer, path: path}, nil
}

// skipReport keeps the report file out of the analysis when it is written below root
func skipReport(root, path string) []string {
	if path == stdoutPath {
		return nil
	}
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil
	}
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil
	}
	rel, err := filepath.Rel(absRoot, absPath)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return nil
	}
	return []string{pathutil.Normalize(rel)}
}

// openReportingProject loads the project and its report target. The config
// is read first so a report written below the root is kept out of the analysis.
func openReportingProject(c *cli.Context, cache *indexing.ResultCache) (*indexing.Project, reportTarget, error) {
	opts := projectOptions(c)
	opts.Cache = cache

	cfg, err := config.Load(opts.ConfigPath, c.String("dir"))
	if err != nil {
		return nil, reportTarget{}, err
	}
	target, err := resolveTarget(c, cfg)
	if err != nil {
		return nil, reportTarget{}, err
	}
	opts.SkipFiles = skipReport(cfg.Project.Root, target.path)

	project, err := indexing.OpenProject(c.String("dir"), opts)
	if err != nil {
		return nil, reportTarget{}, err
	}
	return project, target, nil
}

// writeReport renders fully before touching the destination so a failed
// render never leaves a truncated report behind
func writeReport(w io.Writer, target reportTarget, rep *indexing.Report) error {
	var buf bytes.Buffer
	if err := target.renderer.Render(&buf, rep); err != nil {
		return fmt.Errorf("failed to render %s report: %w", target.renderer.Format(), err)
	}
	if target.path == stdoutPath {
		_, err := w.Write(buf.Bytes())
		return err
	}
	if dir := filepath.Dir(target.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create report directory: %w", err)
		}
	}
	if err := os.WriteFile(target.path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	return nil
}

func printSummary(c *cli.Context, rep *indexing.Report, target reportTarget, elapsed time.Duration) {
	if c.Bool("quiet") {
		return
	}
	printer := display.NewPrinter(c.App.ErrWriter)
	printer.PrintDiagnostics(rep.Diagnostics)

	outputPath := target.path
	if outputPath == stdoutPath {
		outputPath = "stdout"
	}
	printer.PrintSummary(display.Summary{
		Files:       len(rep.Files),
		Modules:     len(rep.Modules),
		Cycles:      len(rep.Cycles),
		Diagnostics: rep.Diagnostics,
		OutputPath:  outputPath,
		Duration:    elapsed,
	})
}

func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}

func analyzeCommand(c *cli.Context) error {
	if c.NArg() > 0 {
		return fmt.Errorf("unexpected argument %q; use --dir to choose the directory", c.Args().First())
	}
	start := time.Now()

	project, target, err := openReportingProject(c, nil)
	if err != nil {
		return err
	}

	ctx, stop := signalContext(c.Context)
	defer stop()

	rep, err := project.Analyze(ctx)
	if err != nil {
		return fmt.Errorf("analysis of %s failed: %w", project.Root(), err)
	}
	if err := writeReport(c.App.Writer, target, rep); err != nil {
		return err
	}
	printSummary(c, rep, target, time.Since(start))
	return nil
}

func watchCommand(c *cli.Context) error {
	cache, err := indexing.NewResultCache(mcp.DefaultCacheSize)
	if err != nil {
		return err
	}
	project, target, err := openReportingProject(c, cache)
	if err != nil {
		return err
	}

	ctx, stop := signalContext(c.Context)
	defer stop()

	start := time.Now()
	rep, err := project.Analyze(ctx)
	if err != nil {
		return fmt.Errorf("analysis of %s failed: %w", project.Root(), err)
	}
	if err := writeReport(c.App.Writer, target, rep); err != nil {
		return err
	}
	printSummary(c, rep, target, time.Since(start))

	printer := display.NewPrinter(c.App.ErrWriter)
	printer.Info(fmt.Sprintf("Watching %s for changes (Ctrl+C to stop)", project.Root()))

	return project.Watch(ctx, func(rep *indexing.Report, err error) {
		if err != nil {
			log.Printf("WARNING: re-analysis failed: %v", err)
			return
		}
		if err := writeReport(c.App.Writer, target, rep); err != nil {
			log.Printf("WARNING: %v", err)
			return
		}
		if !c.Bool("quiet") {
			printer.PrintDiagnostics(rep.Diagnostics)
			printer.Success(fmt.Sprintf("%s: report updated (%d files, %d modules)",
				time.Now().Format("15:04:05"), len(rep.Files), len(rep.Modules)))
		}
	})
}

func modulesCommand(c *cli.Context) error {
	project, err := indexing.OpenProject(c.String("dir"), projectOptions(c))
	if err != nil {
		return err
	}

	ctx, stop := signalContext(c.Context)
	defer stop()

	rep, err := project.Analyze(ctx)
	if err != nil {
		return fmt.Errorf("analysis of %s failed: %w", project.Root(), err)
	}
	display.NewPrinter(c.App.ErrWriter).PrintDiagnostics(rep.Diagnostics)

	format := "text"
	if c.Bool("compact") {
		format = "compact"
	}
	formatter := display.NewTreeFormatter(display.FormatterOptions{
		Format:      format,
		ShowMetrics: c.Bool("metrics"),
		MaxDepth:    c.Int("depth"),
	})
	fmt.Fprintln(c.App.Writer, formatter.Format(rep.Graph(), rep.Modules))
	return nil
}

func mcpCommand(c *cli.Context) error {
	// stdio carries the protocol, so debug output goes to a file or nowhere
	if debug.IsDebugEnabled() {
		if logPath, err := debug.InitDebugLogFile(); err == nil {
			defer debug.CloseDebugLog()
			debug.LogMCP("debug log at %s", logPath)
		} else {
			debug.SetDebugOutput(nil)
		}
	}
	debug.SetQuietMode(!debug.IsDebugEnabled())

	server := mcp.NewServer(c.String("dir"), projectOptions(c))

	ctx, stop := signalContext(c.Context)
	defer stop()

	if err := server.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("MCP server error: %w", err)
	}
	return nil
}

func settingsInitCommand(c *cli.Context) error {
	path := c.String("path")
	switch {
	case path != "":
	case c.Bool("local"):
		path = filepath.Join(c.String("dir"), config.LocalSettingsFile)
	default:
		path = config.DefaultGlobalSettingsPath()
		if path == "" {
			return errors.New("cannot determine the user config directory; use --path")
		}
	}

	if _, err := os.Stat(path); err == nil && !c.Bool("force") {
		return fmt.Errorf("%s already exists (use --force to overwrite)", path)
	}
	if err := config.WriteSettingsFile(path, config.DefaultSettings()); err != nil {
		return err
	}
	display.NewPrinter(c.App.ErrWriter).Success("Wrote default settings to " + path)
	return nil
}

func settingsShowCommand(c *cli.Context) error {
	settings, diags := config.NewSettingsProvider(c.String("settings")).Load(c.String("dir"))
	display.NewPrinter(c.App.ErrWriter).PrintDiagnostics(diags)

	data, err := json.MarshalIndent(map[string]config.AnalysisSettings{config.SettingsSection: settings}, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(c.App.Writer, string(data))
	return nil
}
