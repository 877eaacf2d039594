package commands

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/xeipuuv/gojsonschema"

	"github.com/Sumatoshi-tech/cypherast/pkg/cypherast/astnode"
)

// complianceMax is the maximum compliance percentage.
const complianceMax = 100

// ErrValidationFailed is returned when the input does not match the schema.
var ErrValidationFailed = errors.New("forest validation failed")

//go:embed forest.schema.json
var forestSchema []byte

type validateFlags struct {
	schemaPath string
	cypher     bool
	colors     bool
	noColor    bool
}

func newValidateCommand(opts *Options) *cobra.Command {
	flags := &validateFlags{}

	cmd := &cobra.Command{
		Use:   "validate <forest.json|->",
		Short: "Validate a syntax forest JSON document against the forest schema",
		Long: `Validate a JSON syntax forest, as written by "cypherast parse", against
the forest JSON schema.

Examples:
  cypherast validate forest.json
  cypherast parse q.cypher | cypherast validate -
  cypherast validate --cypher q.cypher          # Parse, then validate the output
  cypherast validate --schema custom.json forest.json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(cmd, opts, flags, args[0])
		},
	}

	cmd.Flags().StringVar(&flags.schemaPath, "schema", "", "path to a forest JSON schema (default: embedded)")
	cmd.Flags().BoolVar(&flags.cypher, "cypher", false, "treat the input as Cypher text and validate its parse")
	cmd.Flags().BoolVar(&flags.colors, "color", false, "force colored output")
	cmd.Flags().BoolVar(&flags.noColor, "no-color", false, "disable colored output")

	return cmd
}

func runValidate(cmd *cobra.Command, opts *Options, flags *validateFlags, inputPath string) error {
	applyColorFlags(flags.colors, flags.noColor)

	inputData, inputLabel, err := loadValidationInput(cmd, opts, flags, inputPath)
	if err != nil {
		return err
	}

	schemaLoader, err := loadSchema(flags.schemaPath)
	if err != nil {
		return err
	}

	result, err := gojsonschema.Validate(schemaLoader, gojsonschema.NewGoLoader(inputData))
	if err != nil {
		return fmt.Errorf("schema validation error: %w", err)
	}

	out := cmd.OutOrStdout()

	if result.Valid() {
		if !opts.Quiet {
			color.New(color.FgGreen).Fprintf(out, "Forest is valid (%s)\n", inputLabel)
			color.New(color.FgGreen).Fprintf(out, "  Nodes: %d\n", countNodes(inputData))
		}

		return nil
	}

	compliance := calculateCompliance(inputData, result.Errors())

	color.New(color.FgRed).Fprintf(out, "Forest validation failed (%s)\n", inputLabel)
	color.New(color.FgYellow).Fprintf(out, "  Compliance: %d%%\n", compliance)

	fmt.Fprintf(out, "\nErrors:\n")

	for _, verr := range result.Errors() {
		actualValue := getActualValue(inputData, verr.Field())

		if actualValue != "" {
			color.New(color.FgRed).Fprintf(out, "  - %s: %s (got %q)\n", verr.Field(), verr.Description(), actualValue)
		} else {
			color.New(color.FgRed).Fprintf(out, "  - %s: %s\n", verr.Field(), verr.Description())
		}
	}

	fmt.Fprintf(out, "\nRecommendations:\n")
	provideRecommendations(out, result.Errors())

	return fmt.Errorf("%w: %d errors in %s", ErrValidationFailed, len(result.Errors()), inputLabel)
}

func loadValidationInput(cmd *cobra.Command, opts *Options, flags *validateFlags, inputPath string) (any, string, error) {
	var (
		raw   []byte
		label string
	)

	if flags.cypher {
		src, err := opts.parseSource(cmd, []string{inputPath}, "", false)
		if err != nil {
			return nil, "", err
		}

		raw, err = json.Marshal(nonNil(src.forest))
		if err != nil {
			return nil, "", fmt.Errorf("encode forest: %w", err)
		}

		label = src.label
	} else {
		text, source, err := readQuery(cmd, []string{inputPath}, "")
		if err != nil {
			return nil, "", err
		}

		raw, label = []byte(text), source
	}

	var inputData any

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	if err := dec.Decode(&inputData); err != nil {
		return nil, "", fmt.Errorf("invalid JSON in %s: %w", label, err)
	}

	return inputData, label, nil
}

func nonNil(forest []*astnode.Node) []*astnode.Node {
	if forest == nil {
		return []*astnode.Node{}
	}

	return forest
}

func loadSchema(schemaPath string) (gojsonschema.JSONLoader, error) {
	if schemaPath == "" {
		return gojsonschema.NewBytesLoader(forestSchema), nil
	}

	schemaBytes, err := os.ReadFile(schemaPath) //nolint:gosec // Schema path is chosen by the user.
	if err != nil {
		return nil, fmt.Errorf("failed to read schema file: %w", err)
	}

	return gojsonschema.NewBytesLoader(schemaBytes), nil
}

func provideRecommendations(out io.Writer, validationErrors []gojsonschema.ResultError) {
	recommendations := make(map[string]string)
	order := []string{}

	for _, validationErr := range validationErrors {
		key, rec := classifyRecommendation(validationErr.Field(), validationErr.Description())
		if key == "" {
			continue
		}

		if _, seen := recommendations[key]; !seen {
			order = append(order, key)
		}

		recommendations[key] = rec
	}

	for _, key := range order {
		color.New(color.FgCyan).Fprintf(out, "  - %s\n", recommendations[key])
	}

	if len(validationErrors) > 0 {
		fmt.Fprintf(out, "\nGeneral tips:\n")
		color.New(color.FgCyan).Fprintf(out, "  - Regenerate the document with `cypherast parse -f json`\n")
		color.New(color.FgCyan).Fprintf(out, "  - Run `cypherast kinds` to list valid node kinds\n")
	}
}

func classifyRecommendation(field, description string) (key, recommendation string) {
	switch {
	case strings.Contains(description, "Does not match pattern"):
		return "kind", "Node kinds are full names such as CYPHER_AST_MATCH"
	case strings.Contains(description, "is required"):
		return "required", "Every node needs type, instanceof, children, props, start, end and role"
	case strings.Contains(description, "Additional property"):
		return "additional", "Nodes carry only type, instanceof, children, props, start, end and role"
	case strings.Contains(field, "props"):
		return "props", "Props hold strings, booleans or operator name lists; references belong in roles"
	case strings.Contains(field, "start") || strings.Contains(field, "end"):
		return "span", "Spans are non-negative byte offsets"
	case strings.Contains(field, "children"):
		return "children", "Children must be an array of nodes"
	default:
		return "", ""
	}
}

func calculateCompliance(inputData any, validationErrors []gojsonschema.ResultError) int {
	totalNodes := countNodes(inputData)
	if totalNodes == 0 {
		return 0
	}

	validNodes := totalNodes - len(validationErrors)
	compliance := int(float64(validNodes) / float64(totalNodes) * complianceMax)

	return min(max(compliance, 0), complianceMax)
}

// countNodes counts node objects: the forest array itself is not a node.
func countNodes(data any) int {
	switch typedData := data.(type) {
	case map[string]any:
		count := 1

		if children, hasChildren := typedData["children"].([]any); hasChildren {
			for _, child := range children {
				count += countNodes(child)
			}
		}

		return count
	case []any:
		count := 0

		for _, item := range typedData {
			count += countNodes(item)
		}

		return count
	default:
		return 0
	}
}

func getActualValue(data any, fieldPath string) string {
	current := data

	for part := range strings.SplitSeq(fieldPath, ".") {
		switch typedVal := current.(type) {
		case map[string]any:
			val, found := typedVal[part]
			if !found {
				return ""
			}

			current = val
		case []any:
			idx, convErr := strconv.Atoi(part)
			if convErr != nil || idx < 0 || idx >= len(typedVal) {
				return ""
			}

			current = typedVal[idx]
		default:
			return ""
		}
	}

	return formatValue(current)
}

func formatValue(value any) string {
	switch typedVal := value.(type) {
	case string:
		return typedVal
	case json.Number:
		return typedVal.String()
	case bool:
		return strconv.FormatBool(typedVal)
	case map[string]any, []any, nil:
		return ""
	default:
		return fmt.Sprintf("%v", typedVal)
	}
}
