package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/chzyer/readline"
	"github.com/spf13/cobra"

	"github.com/leapstack-labs/sqlgrain/internal/cli/output"
	"github.com/leapstack-labs/sqlgrain/internal/logging"
	"github.com/leapstack-labs/sqlgrain/pkg/dialect"
	"github.com/leapstack-labs/sqlgrain/pkg/lint"
)

const (
	replPrompt     = "sqlgrain> "
	replContPrompt = "     ...> "
)

// NewReplCommand creates the repl command.
func NewReplCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "repl",
		Short: "Interactive parse shell",
		Long: `Start an interactive shell that parses SQL statements.

Statements end with a semicolon and may span several lines. Type .help
for the shell commands.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runRepl(cmd)
		},
	}
}

// replSession holds the state of one shell.
type replSession struct {
	ctx      context.Context
	cfg      *lint.Config
	opts     []lint.Option
	linter   *lint.Linter
	renderer *output.Renderer
	errOut   io.Writer
	showMeta bool
	lint     bool
	buf      strings.Builder
}

func newReplSession(ctx context.Context, cc *CommandContext, errOut io.Writer) (*replSession, error) {
	l, lcfg, err := cc.NewLinter()
	if err != nil {
		return nil, err
	}
	return &replSession{
		ctx:      ctx,
		cfg:      lcfg,
		opts:     []lint.Option{lint.WithLogger(cc.Logger)},
		linter:   l,
		renderer: cc.Renderer,
		errOut:   errOut,
	}, nil
}

func replHistoryFile() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		return ""
	}
	dir = filepath.Join(dir, "sqlgrain")
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return ""
	}
	return filepath.Join(dir, "repl_history")
}

func runRepl(cmd *cobra.Command) error {
	cc, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	ctx := logging.WithLogger(cmd.Context(), cc.Logger)
	s, err := newReplSession(ctx, cc, cmd.ErrOrStderr())
	if err != nil {
		return err
	}

	items := []readline.PrefixCompleterInterface{
		readline.PcItem(".help"),
		readline.PcItem(".quit"),
		readline.PcItem(".exit"),
		readline.PcItem(".meta"),
		readline.PcItem(".lint"),
	}
	var dialects []readline.PrefixCompleterInterface
	for _, name := range dialect.List() {
		dialects = append(dialects, readline.PcItem(name))
	}
	items = append(items, readline.PcItem(".dialect", dialects...))

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          replPrompt,
		HistoryFile:     replHistoryFile(),
		AutoComplete:    readline.NewPrefixCompleter(items...),
		InterruptPrompt: "^C",
		EOFPrompt:       ".quit",
	})
	if err != nil {
		return fmt.Errorf("failed to initialize REPL: %w", err)
	}
	defer func() { _ = rl.Close() }()

	cc.Renderer.Printf("sqlgrain parse shell (dialect: %s)\n", s.cfg.Dialect)
	cc.Renderer.Println("Type .help for commands, .quit to exit")
	cc.Renderer.Println()

	for {
		line, err := rl.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			s.buf.Reset()
			rl.SetPrompt(replPrompt)
			continue
		}
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
		if s.handleLine(line) {
			return nil
		}
		if s.buf.Len() > 0 {
			rl.SetPrompt(replContPrompt)
		} else {
			rl.SetPrompt(replPrompt)
		}
	}
}

// handleLine processes one input line and reports whether the shell
// should exit.
func (s *replSession) handleLine(line string) bool {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" {
		return false
	}
	if s.buf.Len() == 0 && strings.HasPrefix(trimmed, ".") {
		return s.dotCommand(trimmed)
	}

	s.buf.WriteString(line)
	s.buf.WriteString("\n")
	if !strings.HasSuffix(trimmed, ";") {
		return false
	}
	sql := s.buf.String()
	s.buf.Reset()
	if err := s.run(sql); err != nil {
		_, _ = fmt.Fprintf(s.errOut, "Error: %v\n", err)
	}
	return false
}

func (s *replSession) run(sql string) error {
	parsed, err := s.linter.ParseString(s.ctx, sql, "")
	if err != nil {
		return err
	}
	printParsed(s.renderer, parsed, s.showMeta)
	if !s.lint || parsed.Tree == nil {
		return nil
	}
	lf := s.linter.LintParsed(s.ctx, parsed, false)
	for _, v := range lf.Violations {
		if v.Code == lint.CodeTemplate || v.Code == lint.CodeLex || v.Code == lint.CodeParse {
			continue
		}
		s.renderer.Println(v.Error())
	}
	return nil
}

func (s *replSession) dotCommand(line string) bool {
	parts := strings.Fields(line)
	switch strings.ToLower(parts[0]) {
	case ".quit", ".exit":
		return true
	case ".help":
		printReplHelp(s.renderer.Out())
	case ".meta":
		s.showMeta = !s.showMeta
		s.renderer.Printf("meta segments: %s\n", onOff(s.showMeta))
	case ".lint":
		s.lint = !s.lint
		s.renderer.Printf("lint: %s\n", onOff(s.lint))
	case ".dialect":
		if len(parts) < 2 {
			s.renderer.Printf("dialect: %s (available: %s)\n", s.cfg.Dialect, strings.Join(dialect.List(), ", "))
			break
		}
		if err := s.setDialect(parts[1]); err != nil {
			_, _ = fmt.Fprintf(s.errOut, "Error: %v\n", err)
			break
		}
		s.renderer.Printf("dialect: %s\n", s.cfg.Dialect)
	default:
		_, _ = fmt.Fprintf(s.errOut, "Unknown command: %s (type .help for commands)\n", parts[0])
	}
	return false
}

func (s *replSession) setDialect(name string) error {
	cfg := *s.cfg
	cfg.Dialect = name
	l, err := lint.NewLinter(&cfg, s.opts...)
	if err != nil {
		return err
	}
	s.cfg = &cfg
	s.linter = l
	return nil
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}

func printReplHelp(w io.Writer) {
	help := `
Commands:
  .help            Show this help message
  .dialect [name]  Show or switch the dialect
  .meta            Toggle indent and dedent markers in trees
  .lint            Toggle linting of parsed statements
  .quit / .exit    Exit the shell

Statements end with a semicolon (;) and may span several lines.
`
	_, _ = fmt.Fprintln(w, help)
}
