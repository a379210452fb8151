package commands

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/sqlgrain/internal/cli/output"
	"github.com/leapstack-labs/sqlgrain/internal/logging"
	"github.com/leapstack-labs/sqlgrain/pkg/lint"
	"github.com/leapstack-labs/sqlgrain/pkg/segment"
)

const stdinPath = "-"

// ParseOptions holds options for the parse command.
type ParseOptions struct {
	ShowMeta bool
}

// parseReport is the structured form of one parsed file.
type parseReport struct {
	Filepath   string            `json:"filepath" yaml:"filepath"`
	Tree       segment.Record    `json:"segments,omitempty" yaml:"segments,omitempty"`
	Violations []*lint.Violation `json:"violations" yaml:"violations"`
}

// NewParseCommand creates the parse command.
func NewParseCommand() *cobra.Command {
	opts := &ParseOptions{}
	cmd := &cobra.Command{
		Use:   "parse [paths...|-]",
		Short: "Print the parse tree of SQL files",
		Long: `Parse SQL files and print their segment trees.

Use - to read from stdin. The command exits with status 1 when a file
could not be templated, lexed or parsed completely.`,
		Example: `  # Parse one file
  sqlgrain parse models/orders.sql

  # Parse stdin as trino, as YAML
  echo "select 1" | sqlgrain parse --dialect trino -o yaml -`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runParse(cmd, pathsOrCwd(args), opts)
		},
	}

	cmd.Flags().BoolVar(&opts.ShowMeta, "show-meta", false, "Include indent and dedent markers")

	return cmd
}

func runParse(cmd *cobra.Command, paths []string, opts *ParseOptions) error {
	cc, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	ctx := logging.WithLogger(cmd.Context(), cc.Logger)

	l, _, err := cc.NewLinter()
	if err != nil {
		return err
	}

	var files []string
	if len(paths) == 1 && paths[0] == stdinPath {
		files = paths
	} else if files, err = lint.ExpandPaths(paths); err != nil {
		return err
	}

	var reports []parseReport
	failed := false
	for _, path := range files {
		src, err := readSource(cmd.InOrStdin(), path)
		if err != nil {
			return err
		}
		parsed, err := l.ParseString(ctx, src, path)
		if err != nil {
			return err
		}
		if len(parsed.Violations) > 0 {
			failed = true
		}
		report := parseReport{Filepath: path, Violations: parsed.Violations}
		if parsed.Tree != nil {
			report.Tree = parsed.Tree.ToRecord(opts.ShowMeta)
		}
		reports = append(reports, report)

		if cc.Renderer.EffectiveMode() != output.ModeJSON && cc.Renderer.EffectiveMode() != output.ModeYAML {
			printParsed(cc.Renderer, parsed, opts.ShowMeta)
		}
	}

	if ok, err := cc.Renderer.Structured(reports); ok && err != nil {
		return err
	}
	if failed {
		return ErrLintFailed
	}
	return nil
}

func readSource(stdin io.Reader, path string) (string, error) {
	if path == stdinPath {
		b, err := io.ReadAll(stdin)
		if err != nil {
			return "", fmt.Errorf("failed to read stdin: %w", err)
		}
		return string(b), nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", path, err)
	}
	return string(b), nil
}

// printParsed writes the tree and any problems found while parsing.
func printParsed(r *output.Renderer, parsed *lint.ParsedFile, showMeta bool) {
	s := r.Styles()
	if parsed.Path != "" && parsed.Path != stdinPath {
		r.Printf("== [%s]\n", s.Path.Render(parsed.Path))
	}
	if parsed.Tree != nil {
		r.Printf("%s", parsed.Tree.Stringify(showMeta))
	}
	if len(parsed.Violations) == 0 {
		return
	}
	r.Println(s.Fail.Render("==== parsing violations ===="))
	for _, v := range parsed.Violations {
		r.Println(v.Error())
	}
}
