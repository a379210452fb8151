package commands

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/leapstack-labs/sqlgrain/internal/cli/output"
	"github.com/leapstack-labs/sqlgrain/internal/logging"
	"github.com/leapstack-labs/sqlgrain/pkg/lint"
)

// ErrNotConfirmed is returned when fixes need confirmation that cannot be given.
var ErrNotConfirmed = errors.New("fix not confirmed: use --force when stdin is not a terminal")

// FixOptions holds options for the fix command.
type FixOptions struct {
	Force bool
	Diff  bool
}

// NewFixCommand creates the fix command.
func NewFixCommand() *cobra.Command {
	opts := &FixOptions{}
	cmd := &cobra.Command{
		Use:   "fix [paths...]",
		Short: "Fix SQL files",
		Long: `Apply the fixes of fixable rules to SQL files.

The violations found are listed first. Files are rewritten after
confirmation, or straight away with --force. With --diff the changes
are printed as a unified diff and no file is written.`,
		Example: `  # Preview fixes
  sqlgrain fix --diff models/

  # Fix layout issues without prompting
  sqlgrain fix --rules layout --force`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFix(cmd, pathsOrCwd(args), opts)
		},
	}

	cmd.Flags().BoolVarP(&opts.Force, "force", "f", false, "Write fixes without asking for confirmation")
	cmd.Flags().BoolVar(&opts.Diff, "diff", false, "Print a diff of the fixes instead of writing them")
	cmd.Flags().IntP("processes", "p", 0, "Number of files linted in parallel (0 = one per CPU)")

	return cmd
}

func runFix(cmd *cobra.Command, paths []string, opts *FixOptions) error {
	cc, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	ctx := logging.WithLogger(cmd.Context(), cc.Logger)

	l, _, err := cc.NewLinter()
	if err != nil {
		return err
	}
	res, err := l.LintPaths(ctx, paths, true)
	if err != nil {
		return err
	}

	var fixable []*lint.LintedFile
	for _, f := range res.Files {
		if _, changed := f.FixString(); changed {
			fixable = append(fixable, f)
		}
	}

	if opts.Diff {
		for _, f := range fixable {
			diff, err := f.Diff()
			if err != nil {
				return err
			}
			writeColorDiff(cc.Renderer.Out(), diff, cc.Cfg.NoColor)
		}
		if len(fixable) > 0 {
			return ErrLintFailed
		}
		return nil
	}

	if err := cc.Renderer.LintResult(res, false); err != nil {
		return fmt.Errorf("failed to render results: %w", err)
	}
	text := cc.Renderer.EffectiveMode() == output.ModeText
	if len(fixable) == 0 {
		if text {
			cc.Renderer.Success("No fixable violations found")
		}
		return remainingErrors(res, nil)
	}

	if !opts.Force {
		ok, err := confirm(cmd.InOrStdin(), cmd.ErrOrStderr(), len(fixable))
		if err != nil {
			return err
		}
		if !ok {
			cc.Renderer.Warn("Aborting")
			return nil
		}
	}

	written := map[*lint.LintedFile]bool{}
	for _, f := range fixable {
		ok, err := f.Persist()
		if err != nil {
			return err
		}
		if ok {
			written[f] = true
			cc.Logger.Info("fixed file", logging.FieldFile, f.Path)
			if text {
				cc.Renderer.Printf("FIXED %s\n", f.Path)
			}
		}
	}
	if text {
		cc.Renderer.Success(fmt.Sprintf("Fixed %d file(s)", len(written)))
	}
	return remainingErrors(res, written)
}

// remainingErrors fails when a file still holds errors after fixing.
// Files that were written only count their unfixable errors.
func remainingErrors(res *lint.LintingResult, written map[*lint.LintedFile]bool) error {
	for _, f := range res.Files {
		for _, v := range f.Errors() {
			if !written[f] || !v.Fixable {
				return ErrLintFailed
			}
		}
	}
	return nil
}

// confirm asks before files are rewritten. Only a terminal can answer.
func confirm(in io.Reader, out io.Writer, files int) (bool, error) {
	f, ok := in.(*os.File)
	if !ok || !term.IsTerminal(int(f.Fd())) {
		return false, ErrNotConfirmed
	}
	return askYesNo(in, out, fmt.Sprintf("Fix %d file(s)? [Y/n] ", files))
}

func askYesNo(in io.Reader, out io.Writer, prompt string) (bool, error) {
	_, _ = fmt.Fprint(out, prompt)
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return false, err
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "", "y", "yes":
		return true, nil
	default:
		return false, nil
	}
}

var (
	diffHeaderColor = color.New(color.Bold)
	diffHunkColor   = color.New(color.FgCyan)
	diffAddColor    = color.New(color.FgGreen)
	diffDelColor    = color.New(color.FgRed)
)

// writeColorDiff prints a unified diff, colouring headers, hunks and
// changed lines.
func writeColorDiff(w io.Writer, diff string, noColor bool) {
	for _, line := range strings.SplitAfter(diff, "\n") {
		if line == "" {
			continue
		}
		var c *color.Color
		switch {
		case strings.HasPrefix(line, "+++"), strings.HasPrefix(line, "---"):
			c = diffHeaderColor
		case strings.HasPrefix(line, "@@"):
			c = diffHunkColor
		case strings.HasPrefix(line, "+"):
			c = diffAddColor
		case strings.HasPrefix(line, "-"):
			c = diffDelColor
		}
		text := strings.TrimSuffix(line, "\n")
		if c == nil || noColor || color.NoColor {
			_, _ = fmt.Fprintln(w, text)
			continue
		}
		_, _ = fmt.Fprintln(w, c.Sprint(text))
	}
}
