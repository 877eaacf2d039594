package commands

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/cypherast/pkg/cypherast"
	"github.com/Sumatoshi-tech/cypherast/pkg/cypherast/astnode"
)

// ErrUnknownKind is returned when a kind filter names no registered kind.
var ErrUnknownKind = errors.New("unknown node kind")

const (
	// excerptWidth bounds the TEXT column of find tables.
	excerptWidth = 48

	// kindPrefix is prepended to short kind names such as "match".
	kindPrefix = "CYPHER_AST_"
)

type findFlags struct {
	query      string
	format     string
	kind       string
	role       string
	instanceOf string
	start      int
	end        int
	strict     bool
}

func newFindCommand(opts *Options) *cobra.Command {
	flags := &findFlags{}

	cmd := &cobra.Command{
		Use:   "find [file|-]",
		Short: "List syntax nodes matching kind, role and span criteria",
		Long: `Parse a Cypher query and list the nodes matching every given criterion,
in pre-order. Kinds may be given as CYPHER_AST_MATCH or as the short form MATCH.

Examples:
  cypherast find --type COMPARISON query.cypher
  cypherast find --instanceof EXPRESSION -e 'RETURN 1 + 2'
  cypherast find --role predicate --start 10 --end 80 query.cypher
  cypherast find -f json --type IDENTIFIER query.cypher`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFind(cmd, opts, flags, args)
		},
	}

	cmd.Flags().StringVarP(&flags.query, "query", "e", "", "query text (instead of a file)")
	cmd.Flags().StringVarP(&flags.format, "format", "f", formatTable, "output format (table, json)")
	cmd.Flags().StringVarP(&flags.kind, "type", "t", "", "exact node kind")
	cmd.Flags().StringVarP(&flags.role, "role", "r", "", "role under which the parent refers to the node")
	cmd.Flags().StringVar(&flags.instanceOf, "instanceof", "", "kind the node must satisfy")
	cmd.Flags().IntVar(&flags.start, "start", 0, "keep nodes starting at or after this byte offset")
	cmd.Flags().IntVar(&flags.end, "end", 0, "keep nodes ending at or before this byte offset")
	cmd.Flags().BoolVar(&flags.strict, "strict", false, "fail on the first malformed statement instead of recovering")

	return cmd
}

func runFind(cmd *cobra.Command, opts *Options, flags *findFlags, args []string) error {
	if flags.format != formatTable && flags.format != formatJSON {
		return fmt.Errorf("%w: %s", ErrUnsupportedFormat, flags.format)
	}

	src, err := opts.parseSource(cmd, args, flags.query, flags.strict)
	if err != nil {
		return err
	}

	query := astnode.Query{Role: flags.role}

	if query.Type, err = resolveKind(src.engine, flags.kind); err != nil {
		return err
	}

	if query.InstanceOf, err = resolveKind(src.engine, flags.instanceOf); err != nil {
		return err
	}

	if cmd.Flags().Changed("start") {
		query.Start = astnode.Offset(flags.start)
	}

	if cmd.Flags().Changed("end") {
		query.End = astnode.Offset(flags.end)
	}

	matches := astnode.Matches(astnode.FindAll(src.forest, query), src.text)

	if flags.format == formatJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")

		if encodeErr := enc.Encode(matches); encodeErr != nil {
			return fmt.Errorf("failed to encode JSON: %w", encodeErr)
		}

		return nil
	}

	return writeMatchTable(cmd.OutOrStdout(), matches)
}

// resolveKind accepts a full kind name or its suffix after CYPHER_AST_.
// Empty input stays empty.
func resolveKind(engine *cypherast.Engine, name string) (string, error) {
	if name == "" {
		return "", nil
	}

	upper := strings.ToUpper(name)

	for _, candidate := range []string{upper, kindPrefix + upper} {
		if kind, ok := engine.Types().Lookup(candidate); ok {
			return kind.Name(), nil
		}
	}

	if hint, ok := engine.SuggestKind(name); ok {
		return "", fmt.Errorf("%w: %s (did you mean %s?)", ErrUnknownKind, name, hint)
	}

	return "", fmt.Errorf("%w: %s", ErrUnknownKind, name)
}

func newTable(w io.Writer) table.Writer {
	tbl := table.NewWriter()
	tbl.SetOutputMirror(w)
	tbl.SetStyle(table.StyleLight)
	tbl.Style().Options.SeparateRows = false
	tbl.Style().Options.DrawBorder = false

	return tbl
}

func writeMatchTable(w io.Writer, matches []astnode.Match) error {
	tbl := newTable(w)
	tbl.AppendHeader(table.Row{"ID", "KIND", "ROLE", "SPAN", "TEXT"})

	for _, match := range matches {
		tbl.AppendRow(table.Row{
			"@" + strconv.Itoa(match.ID),
			astnode.KindLabel(match.Type),
			match.Role,
			fmt.Sprintf("%d..%d", match.Start, match.End),
			truncate(sanitizeForTerminal(match.Text), excerptWidth),
		})
	}

	tbl.AppendFooter(table.Row{fmt.Sprintf("Total: %d nodes", len(matches))})
	tbl.Render()

	return nil
}
