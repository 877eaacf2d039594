package commands

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/fatih/color"
	"github.com/sergi/go-diff/diffmatchpatch"
	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/cypherast/pkg/cypherast/astnode"
)

// diffArgCount is the number of arguments expected by the diff command.
const diffArgCount = 2

type diffFlags struct {
	output  string
	format  string
	strict  bool
	colors  bool
	noColor bool
}

func newDiffCommand(opts *Options) *cobra.Command {
	flags := &diffFlags{}

	cmd := &cobra.Command{
		Use:   "diff file1 file2",
		Short: "Compare the syntax trees of two Cypher queries",
		Long: `Compare two Cypher queries structurally. Offsets are ignored, so
reformatting a query reports no changes.

Examples:
  cypherast diff old.cypher new.cypher            # Unified diff of tree outlines
  cypherast diff -f summary old.cypher new.cypher # Change counts
  cypherast diff -f json old.cypher new.cypher    # Changed nodes`,
		Args: cobra.ExactArgs(diffArgCount),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDiff(cmd, opts, flags, args[0], args[1])
		},
	}

	cmd.Flags().StringVarP(&flags.output, "output", "o", "", "output file (default: stdout)")
	cmd.Flags().StringVarP(&flags.format, "format", "f", "unified", "output format (unified, summary, json)")
	cmd.Flags().BoolVar(&flags.strict, "strict", false, "fail on the first malformed statement instead of recovering")
	cmd.Flags().BoolVar(&flags.colors, "color", false, "force colored output")
	cmd.Flags().BoolVar(&flags.noColor, "no-color", false, "disable colored output")

	return cmd
}

// Change is one structural change between two queries.
type Change struct {
	Type   string         `json:"type"`
	Before *astnode.Match `json:"before,omitempty"`
	After  *astnode.Match `json:"after,omitempty"`
}

func runDiff(cmd *cobra.Command, opts *Options, flags *diffFlags, file1, file2 string) error {
	switch flags.format {
	case "unified", "summary", formatJSON:
	default:
		return fmt.Errorf("%w: %s", ErrUnsupportedFormat, flags.format)
	}

	before, err := opts.parseSource(cmd, []string{file1}, "", flags.strict)
	if err != nil {
		return err
	}

	after, err := opts.parseSource(cmd, []string{file2}, "", flags.strict)
	if err != nil {
		return err
	}

	writer, closeOutput, err := openOutput(cmd.OutOrStdout(), flags.output)
	if err != nil {
		return err
	}

	applyColorFlags(flags.colors, flags.noColor)

	var writeErr error

	switch flags.format {
	case "unified":
		writeErr = writeUnifiedDiff(writer, file1, file2,
			astnode.OutlineString(before.forest), astnode.OutlineString(after.forest))
	case "summary":
		writeErr = writeChangeSummary(writer, astnode.DetectChanges(before.forest, after.forest))
	default:
		changes := convertChanges(astnode.DetectChanges(before.forest, after.forest), before.text, after.text)

		enc := json.NewEncoder(writer)
		enc.SetIndent("", "  ")

		if encodeErr := enc.Encode(changes); encodeErr != nil {
			writeErr = fmt.Errorf("failed to encode JSON: %w", encodeErr)
		}
	}

	return errors.Join(writeErr, closeOutput())
}

func convertChanges(changes []astnode.Change, beforeText, afterText string) []Change {
	out := make([]Change, 0, len(changes))

	for _, change := range changes {
		converted := Change{Type: change.Type.String()}

		if change.Before != nil {
			match := astnode.NewMatch(change.Before, beforeText)
			converted.Before = &match
		}

		if change.After != nil {
			match := astnode.NewMatch(change.After, afterText)
			converted.After = &match
		}

		out = append(out, converted)
	}

	return out
}

var (
	diffHeader = color.New(color.Bold)
	diffAdd    = color.New(color.FgGreen)
	diffDel    = color.New(color.FgRed)
)

// writeUnifiedDiff line-diffs two outlines. Equal lines are printed as
// context with a leading space.
func writeUnifiedDiff(w io.Writer, name1, name2, outline1, outline2 string) error {
	dmp := diffmatchpatch.New()

	chars1, chars2, lines := dmp.DiffLinesToChars(outline1, outline2)
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(chars1, chars2, false), lines)

	var sb strings.Builder

	sb.WriteString(diffHeader.Sprintf("--- %s\n", name1))
	sb.WriteString(diffHeader.Sprintf("+++ %s\n", name2))

	for _, diff := range diffs {
		for _, line := range splitKeepLines(diff.Text) {
			switch diff.Type {
			case diffmatchpatch.DiffInsert:
				sb.WriteString(diffAdd.Sprint("+" + line))
			case diffmatchpatch.DiffDelete:
				sb.WriteString(diffDel.Sprint("-" + line))
			case diffmatchpatch.DiffEqual:
				sb.WriteString(" " + line)
			}

			sb.WriteString("\n")
		}
	}

	if _, err := io.WriteString(w, sb.String()); err != nil {
		return fmt.Errorf("write diff: %w", err)
	}

	return nil
}

// splitKeepLines splits text into lines without their trailing newline.
func splitKeepLines(text string) []string {
	text = strings.TrimSuffix(text, "\n")
	if text == "" {
		return nil
	}

	return strings.Split(text, "\n")
}

func writeChangeSummary(w io.Writer, changes []astnode.Change) error {
	summary := make(map[string]map[string]int)

	for _, change := range changes {
		node := change.After
		if node == nil {
			node = change.Before
		}

		kind := astnode.KindLabel(node.Type)

		if summary[change.Type.String()] == nil {
			summary[change.Type.String()] = make(map[string]int)
		}

		summary[change.Type.String()][kind]++
	}

	var sb strings.Builder

	fmt.Fprintf(&sb, "Change Summary: %d changes\n", len(changes))

	for _, changeType := range []astnode.ChangeType{astnode.ChangeAdded, astnode.ChangeRemoved, astnode.ChangeModified} {
		byKind := summary[changeType.String()]
		if len(byKind) == 0 {
			continue
		}

		kinds := make([]string, 0, len(byKind))
		for kind := range byKind {
			kinds = append(kinds, kind)
		}

		sort.Strings(kinds)

		fmt.Fprintf(&sb, "  %s:\n", changeType)

		for _, kind := range kinds {
			fmt.Fprintf(&sb, "    %s: %d\n", kind, byKind[kind])
		}
	}

	if _, err := io.WriteString(w, sb.String()); err != nil {
		return fmt.Errorf("write summary: %w", err)
	}

	return nil
}
