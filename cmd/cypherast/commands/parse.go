package commands

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/Sumatoshi-tech/cypherast/pkg/cypherast"
	"github.com/Sumatoshi-tech/cypherast/pkg/cypherast/astnode"
)

// ErrUnsupportedFormat is returned for an unknown --format value.
var ErrUnsupportedFormat = errors.New("unsupported format")

type parseFlags struct {
	query   string
	output  string
	format  string
	strict  bool
	colors  bool
	noColor bool
}

func newParseCommand(opts *Options) *cobra.Command {
	flags := &parseFlags{}

	cmd := &cobra.Command{
		Use:   "parse [file|-]",
		Short: "Parse a Cypher query into a syntax forest",
		Long: `Parse Cypher query text into a syntax forest, one tree per statement.

Examples:
  cypherast parse query.cypher             # JSON forest
  cypherast parse -e 'MATCH (n) RETURN n'  # Inline query
  cat query.cypher | cypherast parse -     # Read stdin
  cypherast parse -f tree query.cypher     # Colored tree
  cypherast parse -f dump query.cypher     # Listing with ids and spans
  cypherast parse -f yaml -o out.yaml q.cypher`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runParse(cmd, opts, flags, args)
		},
	}

	cmd.Flags().StringVarP(&flags.query, "query", "e", "", "query text (instead of a file)")
	cmd.Flags().StringVarP(&flags.output, "output", "o", "", "output file (default: stdout)")
	cmd.Flags().StringVarP(&flags.format, "format", "f", formatJSON, "output format (json, compact, yaml, tree, dump, none)")
	cmd.Flags().BoolVar(&flags.strict, "strict", false, "fail on the first malformed statement instead of recovering")
	cmd.Flags().BoolVar(&flags.colors, "color", false, "force colored tree output")
	cmd.Flags().BoolVar(&flags.noColor, "no-color", false, "disable colored tree output")

	return cmd
}

func runParse(cmd *cobra.Command, opts *Options, flags *parseFlags, args []string) error {
	switch flags.format {
	case formatJSON, formatCompact, formatYAML, formatTree, formatDump, formatNone:
	default:
		return fmt.Errorf("%w: %s", ErrUnsupportedFormat, flags.format)
	}

	src, err := opts.parseSource(cmd, args, flags.query, flags.strict)
	if err != nil {
		return err
	}

	writer, closeOutput, err := openOutput(cmd.OutOrStdout(), flags.output)
	if err != nil {
		return err
	}

	writeErr := writeForest(writer, src.forest, flags)

	return errors.Join(writeErr, closeOutput())
}

func writeForest(w io.Writer, forest []*astnode.Node, flags *parseFlags) error {
	switch flags.format {
	case formatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")

		return encodeForest(enc, forest)
	case formatCompact:
		return encodeForest(json.NewEncoder(w), forest)
	case formatYAML:
		return writeYAML(w, forest)
	case formatTree:
		applyColorFlags(flags.colors, flags.noColor)

		return writeTree(w, forest)
	case formatDump:
		return astnode.Dump(w, forest)
	case formatNone:
		return nil
	default:
		return fmt.Errorf("%w: %s", ErrUnsupportedFormat, flags.format)
	}
}

func encodeForest(enc *json.Encoder, forest []*astnode.Node) error {
	if forest == nil {
		forest = []*astnode.Node{}
	}

	if err := enc.Encode(forest); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}

	return nil
}

// writeYAML re-reads the JSON rendering as a YAML document so that key
// order is kept, then switches every node to block style.
func writeYAML(w io.Writer, forest []*astnode.Node) error {
	if forest == nil {
		forest = []*astnode.Node{}
	}

	data, err := json.Marshal(forest)
	if err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}

	var doc yaml.Node

	if err = yaml.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("failed to convert to YAML: %w", err)
	}

	blockStyle(&doc)

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)

	if err = enc.Encode(&doc); err != nil {
		return fmt.Errorf("failed to encode YAML: %w", err)
	}

	return enc.Close()
}

// blockStyle clears flow and quoting styles. The encoder re-quotes strings
// that would otherwise read back as another type.
func blockStyle(node *yaml.Node) {
	node.Style = 0

	for _, child := range node.Content {
		blockStyle(child)
	}
}

var (
	treeKind  = color.New(color.FgCyan, color.Bold)
	treeRole  = color.New(color.FgYellow)
	treeSpan  = color.New(color.Faint)
	treeValue = color.New(color.FgGreen)
)

func applyColorFlags(force, disable bool) {
	if disable {
		color.NoColor = true //nolint:reassign // intentional override of library global
	} else if force {
		color.NoColor = false //nolint:reassign // intentional override of library global
	}
}

// writeTree renders the forest with box-drawing guides.
func writeTree(w io.Writer, forest []*astnode.Node) error {
	var sb strings.Builder

	for _, root := range forest {
		writeTreeNode(&sb, root, "", "", "")
	}

	if _, err := io.WriteString(w, sb.String()); err != nil {
		return fmt.Errorf("write tree: %w", err)
	}

	return nil
}

func writeTreeNode(sb *strings.Builder, node *astnode.Node, prefix, branch, childPrefix string) {
	sb.WriteString(prefix)
	sb.WriteString(branch)

	if node.Role != "" {
		sb.WriteString(treeRole.Sprint(node.Role + ": "))
	}

	sb.WriteString(treeKind.Sprint(astnode.KindLabel(node.Type)))
	sb.WriteString(" ")
	sb.WriteString(treeSpan.Sprintf("@%d %d..%d", node.ID, node.Start, node.End))

	node.Props.Range(func(name string, v cypherast.Value) bool {
		sb.WriteString(" ")
		sb.WriteString(name)
		sb.WriteString("=")
		sb.WriteString(treeValue.Sprint(cypherast.Format(v)))

		return true
	})

	sb.WriteString("\n")

	for idx, child := range node.Children {
		last := idx == len(node.Children)-1

		childBranch, nextPrefix := "├── ", "│   "
		if last {
			childBranch, nextPrefix = "└── ", "    "
		}

		writeTreeNode(sb, child, prefix+childPrefix, childBranch, nextPrefix)
	}
}
