package commands

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/sqlgrain/internal/cli/config"
	"github.com/leapstack-labs/sqlgrain/internal/logging"
	"github.com/leapstack-labs/sqlgrain/internal/lsp"
	"github.com/leapstack-labs/sqlgrain/pkg/lint"
)

// NewLSPCommand creates the lsp command.
func NewLSPCommand(version string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "lsp",
		Short: "Start the Language Server Protocol server",
		Long: `Start the LSP server for editor integration.

The server communicates over stdin/stdout using JSON-RPC. The config
file is searched upward from the root the client sends on initialize.
Saving a .sqlgrain config file reloads it.`,
		Example: `  # Start the server (usually run by an editor)
  sqlgrain lsp`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			server := lsp.NewServer(os.Stdin, os.Stdout, lsp.Options{
				Logger:     logging.FromContext(cmd.Context()),
				LoadConfig: lspConfigLoader(cmd),
				Version:    version,
			})
			return server.Run(cmd.Context())
		},
	}

	return cmd
}

// lspConfigLoader loads the config for a workspace root. Flags given on
// the command line still take precedence.
func lspConfigLoader(cmd *cobra.Command) lsp.ConfigLoader {
	return func(root string) (*lint.Config, error) {
		cfgFile := ""
		if root != "" {
			cfgFile = config.FindConfigFile(root)
		}
		cfg, err := config.LoadConfig(cfgFile, cmd.Flags())
		if err != nil {
			return nil, err
		}
		return cfg.LintConfig()
	}
}
