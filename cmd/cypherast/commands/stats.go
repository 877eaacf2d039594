package commands

import (
	"context"
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/cypherast/pkg/cypher"
	"github.com/Sumatoshi-tech/cypherast/pkg/cypherast"
	"github.com/Sumatoshi-tech/cypherast/pkg/cypherast/astnode"
)

type statsFlags struct {
	query  string
	strict bool
	top    int
}

// statsRecorder keeps the last parse statistics reported by the engine.
type statsRecorder struct {
	last cypherast.Stats
}

func (r *statsRecorder) ObserveParse(_ context.Context, stats cypherast.Stats) {
	r.last = stats
}

func newStatsCommand(opts *Options) *cobra.Command {
	flags := &statsFlags{}

	cmd := &cobra.Command{
		Use:   "stats [file|-]",
		Short: "Summarize the syntax forest of a Cypher query",
		Long: `Parse a Cypher query and report input size, statement and node counts,
tree depth, parse time and the most frequent node kinds.

Examples:
  cypherast stats query.cypher
  cypherast stats --top 5 -e 'MATCH (a)-->(b) RETURN a, b'`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStats(cmd, opts, flags, args)
		},
	}

	cmd.Flags().StringVarP(&flags.query, "query", "e", "", "query text (instead of a file)")
	cmd.Flags().BoolVar(&flags.strict, "strict", false, "fail on the first malformed statement instead of recovering")
	cmd.Flags().IntVar(&flags.top, "top", 10, "number of node kinds to list (0 for all)")

	return cmd
}

// forestStats summarizes one parsed forest.
type forestStats struct {
	InputBytes int
	Roots      int
	Nodes      int
	Errors     int
	MaxDepth   int
	Duration   time.Duration
	ByKind     map[string]int
}

func collectStats(forest []*astnode.Node) forestStats {
	stats := forestStats{Roots: len(forest), ByKind: make(map[string]int)}

	var walk func(node *astnode.Node, depth int)

	walk = func(node *astnode.Node, depth int) {
		stats.Nodes++
		stats.ByKind[node.Type]++
		stats.MaxDepth = max(stats.MaxDepth, depth)

		if node.Type == cypher.KindError.Name() {
			stats.Errors++
		}

		for _, child := range node.Children {
			walk(child, depth+1)
		}
	}

	for _, root := range forest {
		walk(root, 1)
	}

	return stats
}

func runStats(cmd *cobra.Command, opts *Options, flags *statsFlags, args []string) error {
	recorder := &statsRecorder{}

	src, err := opts.parseSource(cmd, args, flags.query, flags.strict, cypherast.WithObserver(recorder))
	if err != nil {
		return err
	}

	stats := collectStats(src.forest)
	stats.InputBytes = recorder.last.InputBytes
	stats.Duration = recorder.last.Duration

	return writeStats(cmd.OutOrStdout(), src.label, stats, flags.top)
}

type kindCount struct {
	kind  string
	count int
}

func writeStats(w io.Writer, label string, stats forestStats, top int) error {
	fmt.Fprintf(w, "Source:     %s\n", label)
	fmt.Fprintf(w, "Size:       %s (%s bytes)\n", humanize.Bytes(uint64(max(stats.InputBytes, 0))), humanize.Comma(int64(stats.InputBytes)))
	fmt.Fprintf(w, "Statements: %s\n", humanize.Comma(int64(stats.Roots)))
	fmt.Fprintf(w, "Nodes:      %s\n", humanize.Comma(int64(stats.Nodes)))
	fmt.Fprintf(w, "Max depth:  %d\n", stats.MaxDepth)
	fmt.Fprintf(w, "Skipped:    %d malformed statements\n", stats.Errors)
	fmt.Fprintf(w, "Parse time: %s\n\n", stats.Duration.Round(time.Microsecond))

	counts := make([]kindCount, 0, len(stats.ByKind))
	for kind, count := range stats.ByKind {
		counts = append(counts, kindCount{kind: kind, count: count})
	}

	sort.Slice(counts, func(i, j int) bool {
		if counts[i].count != counts[j].count {
			return counts[i].count > counts[j].count
		}

		return counts[i].kind < counts[j].kind
	})

	if top > 0 && len(counts) > top {
		counts = counts[:top]
	}

	tbl := newTable(w)
	tbl.AppendHeader(table.Row{"KIND", "LABEL", "COUNT", "SHARE"})

	for _, entry := range counts {
		share := 0.0
		if stats.Nodes > 0 {
			share = float64(entry.count) / float64(stats.Nodes) * 100
		}

		tbl.AppendRow(table.Row{
			entry.kind,
			astnode.KindLabel(entry.kind),
			humanize.Comma(int64(entry.count)),
			fmt.Sprintf("%.1f%%", share),
		})
	}

	tbl.Render()

	return nil
}
