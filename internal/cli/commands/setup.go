// Package commands implements the sqlgrain subcommands.
package commands

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/sqlgrain/internal/cli/config"
	"github.com/leapstack-labs/sqlgrain/internal/cli/output"
	"github.com/leapstack-labs/sqlgrain/internal/logging"
	"github.com/leapstack-labs/sqlgrain/pkg/lint"
)

// ErrLintFailed is returned when linting finds violations that fail the run.
var ErrLintFailed = errors.New("lint found violations")

// CommandContext holds common dependencies for CLI commands.
type CommandContext struct {
	Cfg      *config.Config
	Logger   *slog.Logger
	Renderer *output.Renderer
}

// NewCommandContext collects the config and logger set up by the root
// command. A command run on its own loads the config from its flags.
func NewCommandContext(cmd *cobra.Command) (*CommandContext, error) {
	cfg := config.FromContext(cmd.Context())
	if cfg == nil {
		var err error
		if cfg, err = config.LoadConfig("", cmd.Flags()); err != nil {
			return nil, err
		}
	}
	logger := logging.FromContext(cmd.Context())

	mode, err := output.ParseMode(cfg.Output)
	if err != nil {
		return nil, err
	}
	r := output.NewRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr(), mode, output.WithNoColor(cfg.NoColor))

	return &CommandContext{Cfg: cfg, Logger: logger, Renderer: r}, nil
}

// NewLinter builds a linter from the command's configuration.
func (c *CommandContext) NewLinter(opts ...lint.Option) (*lint.Linter, *lint.Config, error) {
	lcfg, err := c.Cfg.LintConfig()
	if err != nil {
		return nil, nil, err
	}
	opts = append([]lint.Option{lint.WithLogger(c.Logger)}, opts...)
	l, err := lint.NewLinter(lcfg, opts...)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create linter: %w", err)
	}
	return l, lcfg, nil
}

// pathsOrCwd defaults to the working directory.
func pathsOrCwd(args []string) []string {
	if len(args) == 0 {
		return []string{"."}
	}
	return args
}
