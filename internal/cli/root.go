// Package cli provides the command-line interface for sqlgrain.
package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/sqlgrain/internal/cli/commands"
	"github.com/leapstack-labs/sqlgrain/internal/cli/config"
	"github.com/leapstack-labs/sqlgrain/internal/logging"
	"github.com/leapstack-labs/sqlgrain/pkg/dialect"
	"github.com/leapstack-labs/sqlgrain/pkg/lint"
	"github.com/leapstack-labs/sqlgrain/pkg/templater"

	_ "github.com/leapstack-labs/sqlgrain/internal/template" // register the jinja templater
	_ "github.com/leapstack-labs/sqlgrain/pkg/dialects"      // register dialects
	_ "github.com/leapstack-labs/sqlgrain/pkg/lint/rules"    // register rules
)

// Version information (set at build time).
var (
	Version   = "0.1.0"
	GitCommit = ""
)

// NewRootCmd creates and returns the root command.
func NewRootCmd() *cobra.Command {
	var cfgFile string

	rootCmd := &cobra.Command{
		Use:   "sqlgrain",
		Short: "sqlgrain - SQL parser and linter",
		Long: `sqlgrain parses SQL into a segment tree, lints it against a set of
rules and fixes what the rules know how to fix.

It understands the ansi, trino and databricks dialects and renders raw,
placeholder and jinja templated SQL.`,
		Version: Version,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Name() == "help" || cmd.Name() == "completion" || cmd.Name() == "__complete" {
				return nil
			}

			cfg, err := config.LoadConfig(cfgFile, cmd.Flags())
			if err != nil {
				return err
			}
			level := cfg.LogLevel
			if cfg.Verbose && level == config.DefaultLogLevel {
				level = "info"
			}
			logger := logging.New(cmd.ErrOrStderr(), logging.Options{
				Level:   level,
				NoColor: cfg.NoColor,
			})
			if cfg.Verbose && cfg.ConfigFile != "" {
				logger.Info("using config file", "path", cfg.ConfigFile)
			}

			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			ctx = logging.WithLogger(ctx, logger)
			ctx = config.WithConfig(ctx, cfg)
			cmd.SetContext(ctx)
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.SetVersionTemplate("{{.Name}} {{.Version}}\n")

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&cfgFile, "config", "", "config file (default: .sqlgrain.yaml searched upward)")
	pf.String("dialect", "", "SQL dialect (default: ansi)")
	pf.String("templater", "", "Templater: raw, placeholder or jinja")
	pf.StringSlice("macro-paths", nil, "Directories of .star macro files for the jinja templater")
	pf.StringSlice("rules", nil, "Only run these rules (codes, names, aliases or groups)")
	pf.StringSlice("exclude-rules", nil, "Skip these rules")
	pf.StringP("output", "o", "", "Output format (auto|text|json|yaml|github)")
	pf.String("log-level", "", "Log level (debug|info|warn|error)")
	pf.Bool("nocolor", false, "Disable colour output")
	pf.BoolP("verbose", "v", false, "Verbose output")

	_ = rootCmd.RegisterFlagCompletionFunc("output", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{"auto", "text", "json", "yaml", "github"}, cobra.ShellCompDirectiveNoFileComp
	})
	_ = rootCmd.RegisterFlagCompletionFunc("dialect", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return dialect.List(), cobra.ShellCompDirectiveNoFileComp
	})
	_ = rootCmd.RegisterFlagCompletionFunc("templater", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return templater.List(), cobra.ShellCompDirectiveNoFileComp
	})
	_ = rootCmd.RegisterFlagCompletionFunc("log-level", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{"debug", "info", "warn", "error"}, cobra.ShellCompDirectiveNoFileComp
	})
	ruleCompletion := func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		var refs []string
		for _, info := range lint.AllRules() {
			refs = append(refs, info.Code+"\t"+info.Name)
		}
		return refs, cobra.ShellCompDirectiveNoFileComp
	}
	_ = rootCmd.RegisterFlagCompletionFunc("rules", ruleCompletion)
	_ = rootCmd.RegisterFlagCompletionFunc("exclude-rules", ruleCompletion)

	rootCmd.AddCommand(commands.NewLintCommand())
	rootCmd.AddCommand(commands.NewFixCommand())
	rootCmd.AddCommand(commands.NewParseCommand())
	rootCmd.AddCommand(commands.NewRulesCommand())
	rootCmd.AddCommand(commands.NewDialectsCommand())
	rootCmd.AddCommand(commands.NewMacrosCommand())
	rootCmd.AddCommand(commands.NewReplCommand())
	rootCmd.AddCommand(commands.NewLSPCommand(Version))
	rootCmd.AddCommand(commands.NewVersionCommand(Version, GitCommit))
	rootCmd.AddCommand(NewCompletionCommand())

	return rootCmd
}

// Execute runs the root command. A failed lint has already been reported,
// so only other errors are printed.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rootCmd := NewRootCmd()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		if !errors.Is(err, commands.ErrLintFailed) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		return err
	}
	return nil
}

// NewCompletionCommand creates the completion command.
func NewCompletionCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: `Generate shell completion scripts for sqlgrain.

To load completions:

Bash:
  $ source <(sqlgrain completion bash)

  # To load completions for each session, execute once:
  # Linux:
  $ sqlgrain completion bash > /etc/bash_completion.d/sqlgrain
  # macOS:
  $ sqlgrain completion bash > $(brew --prefix)/etc/bash_completion.d/sqlgrain

Zsh:
  # If shell completion is not already enabled in your environment,
  # you will need to enable it. Execute the following once:
  $ echo "autoload -U compinit; compinit" >> ~/.zshrc

  # To load completions for each session, execute once:
  $ sqlgrain completion zsh > "${fpath[1]}/_sqlgrain"

Fish:
  $ sqlgrain completion fish | source

  # To load completions for each session, execute once:
  $ sqlgrain completion fish > ~/.config/fish/completions/sqlgrain.fish

PowerShell:
  PS> sqlgrain completion powershell | Out-String | Invoke-Expression
`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletion(out)
			case "zsh":
				return cmd.Root().GenZshCompletion(out)
			case "fish":
				return cmd.Root().GenFishCompletion(out, true)
			case "powershell":
				return cmd.Root().GenPowerShellCompletionWithDesc(out)
			}
			return nil
		},
	}
	return cmd
}
