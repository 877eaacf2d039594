// Package commands implements the cypherast command line.
package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/cypherast/pkg/config"
	"github.com/Sumatoshi-tech/cypherast/pkg/cypherast"
	"github.com/Sumatoshi-tech/cypherast/pkg/cypherast/astnode"
	"github.com/Sumatoshi-tech/cypherast/pkg/observability"
	"github.com/Sumatoshi-tech/cypherast/pkg/version"
)

// Output formats shared by several commands.
const (
	formatJSON    = "json"
	formatCompact = "compact"
	formatYAML    = "yaml"
	formatTable   = "table"
	formatTree    = "tree"
	formatDump    = "dump"
	formatNone    = "none"
)

// Options are the persistent root flags.
type Options struct {
	ConfigPath string
	Verbose    bool
	Quiet      bool
}

// NewRootCommand builds the cypherast command tree.
func NewRootCommand() *cobra.Command {
	opts := &Options{}

	root := &cobra.Command{
		Use:   "cypherast",
		Short: "Parse Cypher queries into reflected syntax trees",
		Long: `cypherast parses Cypher query text into syntax trees whose nodes carry
their kind, the kinds they satisfy, scalar properties, byte spans and roles.

It also serves the same trees over HTTP, MCP and LSP.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVar(&opts.ConfigPath, "config", "", "config file (default: ./config.yaml)")
	root.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	root.PersistentFlags().BoolVarP(&opts.Quiet, "quiet", "q", false, "suppress output")

	root.AddCommand(
		newParseCommand(opts),
		newFindCommand(opts),
		newKindsCommand(opts),
		newDiffCommand(opts),
		newValidateCommand(opts),
		newStatsCommand(opts),
		newServerCommand(opts),
		newMCPCommand(opts),
		newLSPCommand(opts),
		newVersionCommand(),
	)

	return root
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "cypherast %s\n", version.String())
		},
	}
}

// loadConfig reads the configuration named by --config.
func (o *Options) loadConfig() (*config.Config, error) {
	cfg, err := config.LoadConfig(o.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	return cfg, nil
}

// observability returns the observability settings for mode, with the log
// level raised or lowered by --verbose and --quiet.
func (o *Options) observability(cfg *config.Config, mode observability.AppMode) observability.Config {
	obs := cfg.Observability(mode, version.Version)

	switch {
	case o.Verbose:
		obs.LogLevel = slog.LevelDebug
	case o.Quiet:
		obs.LogLevel = slog.LevelError
	}

	return obs
}

// logger returns a stderr logger for one-shot commands.
func (o *Options) logger(cfg *config.Config) *slog.Logger {
	return observability.NewLogger(os.Stderr, o.observability(cfg, observability.ModeCLI))
}

// newEngine builds an engine from the parser settings. strict disables
// recovery regardless of configuration.
func newEngine(cfg *config.Config, logger *slog.Logger, strict bool, extra ...cypherast.EngineOption) *cypherast.Engine {
	opts := []cypherast.EngineOption{
		cypherast.WithLogger(logger),
		cypherast.WithMaxInputBytes(cfg.Parser.MaxQueryBytes),
	}

	if cfg.Parser.Recovery && !strict {
		opts = append(opts, cypherast.WithRecovery())
	}

	return cypherast.NewEngine(append(opts, extra...)...)
}

// parseContext bounds a parse by the configured timeout.
func parseContext(parent context.Context, cfg *config.Config) (context.Context, context.CancelFunc) {
	if cfg.Parser.Timeout <= 0 {
		return context.WithCancel(parent)
	}

	return context.WithTimeout(parent, cfg.Parser.Timeout)
}

// readQuery returns the query text from inline, the file named by args[0], or
// stdin when args is empty or "-". The label names the source in messages.
func readQuery(cmd *cobra.Command, args []string, inline string) (text, label string, err error) {
	switch {
	case inline != "":
		return inline, "query", nil
	case len(args) == 0 || args[0] == "-":
		data, readErr := io.ReadAll(cmd.InOrStdin())
		if readErr != nil {
			return "", "", fmt.Errorf("read stdin: %w", readErr)
		}

		return string(data), "stdin", nil
	default:
		data, resolved, readErr := safeReadFile(args[0])
		if readErr != nil {
			return "", "", readErr
		}

		return string(data), resolved, nil
	}
}

// parsed is a query read and parsed by a one-shot command.
type parsed struct {
	cfg      *config.Config
	engine   *cypherast.Engine
	text     string
	label    string
	forest   []*astnode.Node
	duration time.Duration
}

// parseSource loads the configuration, reads the query and parses it.
func (o *Options) parseSource(
	cmd *cobra.Command, args []string, inline string, strict bool, extra ...cypherast.EngineOption,
) (*parsed, error) {
	cfg, err := o.loadConfig()
	if err != nil {
		return nil, err
	}

	text, label, err := readQuery(cmd, args, inline)
	if err != nil {
		return nil, err
	}

	engine := newEngine(cfg, o.logger(cfg), strict, extra...)

	ctx, cancel := parseContext(cmd.Context(), cfg)
	defer cancel()

	started := time.Now()

	forest, err := astnode.ParseWith(ctx, engine, text)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", label, err)
	}

	return &parsed{
		cfg:      cfg,
		engine:   engine,
		text:     text,
		label:    label,
		forest:   forest,
		duration: time.Since(started),
	}, nil
}

// openOutput returns w, or a created file when path is set. The returned
// close function must be called.
func openOutput(w io.Writer, path string) (io.Writer, func() error, error) {
	if path == "" {
		return w, func() error { return nil }, nil
	}

	file, err := os.Create(path) //nolint:gosec // Output path is chosen by the user.
	if err != nil {
		return nil, nil, fmt.Errorf("create output file: %w", err)
	}

	return file, file.Close, nil
}
