package commands

import (
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/leapstack-labs/sqlgrain/internal/macro"
)

// NewMacrosCommand creates the macros command.
func NewMacrosCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "macros",
		Short: "List the jinja macros found in macro_paths",
		Long: `List the Starlark macro files of the configured macro_paths and the
functions they export. Files are parsed, not executed.`,
		Example: `  sqlgrain macros --macro-paths macros
  sqlgrain macros -o json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cc, err := NewCommandContext(cmd)
			if err != nil {
				return err
			}
			namespaces, err := macro.DescribeDirs(cc.Cfg.MacroPaths...)
			if err != nil {
				return err
			}
			if namespaces == nil {
				namespaces = []*macro.Namespace{}
			}

			if ok, err := cc.Renderer.Structured(namespaces); ok {
				return err
			}
			if len(namespaces) == 0 {
				cc.Renderer.Warn("no macros found")
				return nil
			}

			t := table.NewWriter()
			t.SetOutputMirror(cc.Renderer.Out())
			t.SetStyle(table.StyleLight)
			t.AppendHeader(table.Row{"namespace", "function", "description"})
			for _, ns := range namespaces {
				for _, fn := range ns.Functions {
					t.AppendRow(table.Row{ns.Name, fn.Signature(), fn.Summary()})
				}
			}
			t.Render()
			return nil
		},
	}
}
