package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/Sumatoshi-tech/cypherast/pkg/cypherast"
)

type kindsFlags struct {
	format     string
	instanceOf string
}

func newKindsCommand(opts *Options) *cobra.Command {
	flags := &kindsFlags{}

	cmd := &cobra.Command{
		Use:   "kinds",
		Short: "List node kinds and the properties reflected for each",
		Long: `List every registered node kind with its label, parent kind and the
properties extracted for it, in extraction order.

Examples:
  cypherast kinds
  cypherast kinds --instanceof EXPRESSION
  cypherast kinds -f yaml`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runKinds(cmd.OutOrStdout(), opts, flags)
		},
	}

	cmd.Flags().StringVarP(&flags.format, "format", "f", formatTable, "output format (table, json, yaml)")
	cmd.Flags().StringVar(&flags.instanceOf, "instanceof", "", "only list kinds satisfying this kind")

	return cmd
}

func runKinds(w io.Writer, opts *Options, flags *kindsFlags) error {
	cfg, err := opts.loadConfig()
	if err != nil {
		return err
	}

	engine := newEngine(cfg, opts.logger(cfg), false)

	parent, err := resolveKind(engine, flags.instanceOf)
	if err != nil {
		return err
	}

	infos := engine.KindInfos()

	if parent != "" {
		infos = slices.DeleteFunc(infos, func(info cypherast.KindInfo) bool {
			return !slices.Contains(info.InstanceOf, parent)
		})
	}

	switch flags.format {
	case formatTable:
		return writeKindTable(w, infos)
	case formatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")

		if encodeErr := enc.Encode(infos); encodeErr != nil {
			return fmt.Errorf("failed to encode JSON: %w", encodeErr)
		}

		return nil
	case formatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)

		if encodeErr := enc.Encode(infos); encodeErr != nil {
			return fmt.Errorf("failed to encode YAML: %w", encodeErr)
		}

		return enc.Close()
	default:
		return fmt.Errorf("%w: %s", ErrUnsupportedFormat, flags.format)
	}
}

func writeKindTable(w io.Writer, infos []cypherast.KindInfo) error {
	tbl := newTable(w)
	tbl.AppendHeader(table.Row{"KIND", "LABEL", "PARENT", "PROPERTIES"})

	for _, info := range infos {
		props := make([]string, 0, len(info.Properties))
		for _, prop := range info.Properties {
			props = append(props, prop.Name+":"+prop.Family)
		}

		tbl.AppendRow(table.Row{info.Name, info.Label, info.Parent, strings.Join(props, " ")})
	}

	tbl.AppendFooter(table.Row{fmt.Sprintf("Total: %d kinds", len(infos))})
	tbl.Render()

	return nil
}
