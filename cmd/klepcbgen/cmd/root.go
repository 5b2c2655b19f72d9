package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/OpenTraceLab/kle-pcbgen/pkg/kicad/project"
	"github.com/OpenTraceLab/kle-pcbgen/pkg/report"
)

// version is overridden at link time with -ldflags "-X ...cmd.version=...".
var version = "0.4.0"

var (
	// Global flags
	configPath string
	layoutFmt  string
	logLevel   string
	logFormat  string
	verbose    bool

	// Generate flags
	infile     string
	outname    string
	reportKind string
)

var rootCmd = &cobra.Command{
	Use:   "klepcbgen",
	Short: "Keyboard Layout Editor to KiCad project generator",
	Long: `klepcbgen turns a keyboard-layout-editor.com layout into a KiCad 5
project skeleton: a schematic, a PCB layout and a project file with one
switch and one diode per key, wired into a row/column matrix.

Examples:
  klepcbgen --infile layout.json --outname mypad            # Generate mypad/mypad.{sch,kicad_pcb,pro,net}
  klepcbgen --infile layout.txt --format raw --outname pad  # Read KLE "raw data"
  klepcbgen --infile layout.json --outname pad --report csv # Also write CPL and BOM
  klepcbgen matrix --infile layout.json                     # Show the inferred matrix
  klepcbgen inspect mypad/mypad.kicad_pcb                   # List nets of a board`,
	Version:       version,
	Args:          cobra.NoArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runGenerate,
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "klepcbgen:", err)
		os.Exit(1)
	}
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&configPath, "config", "", "YAML config file (default: $KLEPCBGEN_CONFIG)")
	pf.StringVar(&layoutFmt, "format", "auto", "layout format: auto, json or raw")
	pf.StringVar(&logLevel, "log-level", "warn", "log level: debug, info, warn or error")
	pf.StringVar(&logFormat, "log-format", "text", "log format: text or json")
	pf.BoolVarP(&verbose, "verbose", "v", false, "verbose output (same as --log-level info)")

	rootCmd.Flags().StringVarP(&infile, "infile", "i", "", "KLE layout file")
	rootCmd.Flags().StringVarP(&outname, "outname", "o", "", "output directory and project name")
	rootCmd.Flags().StringVar(&reportKind, "report", "none", "assembly reports: none, csv or xlsx")
	rootCmd.MarkFlagRequired("infile")
	rootCmd.MarkFlagRequired("outname")
}

func runGenerate(cmd *cobra.Command, args []string) error {
	logger, err := newLogger(cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	kind, err := report.ParseFormat(reportKind)
	if err != nil {
		return err
	}

	res, err := build(infile, logger)
	if err != nil {
		return err
	}

	opts := project.DefaultOptions()
	opts.Layout = res.cfg.LayoutConfig()
	opts.Schematic = res.cfg.SchematicConfig()
	opts.Version = version
	opts.Comment = res.cfg.Project.Comment
	opts.Source = filepath.Base(infile)
	opts.Logger = logger

	gen, err := project.New(res.kb, res.nets, opts)
	if err != nil {
		return &stageError{stage: "writing project", err: err}
	}
	out, err := gen.Write(outname)
	if err != nil {
		return &stageError{stage: "writing project", err: err}
	}

	base := filepath.Join(out.Dir, filepath.Base(out.Dir))
	reports, err := report.WriteFiles(base, kind,
		report.Placements(res.kb, opts.Layout), report.BOM(res.kb))
	if err != nil {
		return &stageError{stage: "writing reports", err: err}
	}
	logger.Info("Project written.", "dir", out.Dir, "reports", len(reports))

	printSummary(cmd.OutOrStdout(), res, out, reports)
	return nil
}

// newLogger builds the process logger from the global flags and installs it
// as the slog default.
func newLogger(w io.Writer) (*slog.Logger, error) {
	lvl := logLevel
	if verbose && lvl == "warn" {
		lvl = "info"
	}

	var level slog.Level
	switch lvl {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return nil, fmt.Errorf("invalid log-level %q: must be debug, info, warn or error", lvl)
	}

	handlerOpts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	switch logFormat {
	case "text":
		handler = slog.NewTextHandler(w, handlerOpts)
	case "json":
		handler = slog.NewJSONHandler(w, handlerOpts)
	default:
		return nil, fmt.Errorf("invalid log-format %q: must be text or json", logFormat)
	}

	logger := slog.New(handler)
	slog.SetDefault(logger)
	return logger, nil
}
