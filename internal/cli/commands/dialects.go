package commands

import (
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/leapstack-labs/sqlgrain/pkg/dialect"
	"github.com/leapstack-labs/sqlgrain/pkg/templater"
)

type dialectInfo struct {
	Name               string `json:"name" yaml:"name"`
	ReservedKeywords   int    `json:"reserved_keywords" yaml:"reserved_keywords"`
	UnreservedKeywords int    `json:"unreserved_keywords" yaml:"unreserved_keywords"`
}

// NewDialectsCommand creates the dialects command.
func NewDialectsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "dialects",
		Short: "List available dialects and templaters",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cc, err := NewCommandContext(cmd)
			if err != nil {
				return err
			}

			var infos []dialectInfo
			for _, name := range dialect.List() {
				d, err := dialect.Get(name)
				if err != nil {
					return err
				}
				infos = append(infos, dialectInfo{
					Name:               name,
					ReservedKeywords:   len(d.Sets(dialect.ReservedKeywords)),
					UnreservedKeywords: len(d.Sets(dialect.UnreservedKeywords)),
				})
			}

			if ok, err := cc.Renderer.Structured(map[string]any{
				"dialects":   infos,
				"templaters": templater.List(),
			}); ok {
				return err
			}

			t := table.NewWriter()
			t.SetOutputMirror(cc.Renderer.Out())
			t.SetStyle(table.StyleLight)
			t.AppendHeader(table.Row{"dialect", "reserved", "unreserved"})
			for _, info := range infos {
				t.AppendRow(table.Row{info.Name, info.ReservedKeywords, info.UnreservedKeywords})
			}
			t.Render()

			s := cc.Renderer.Styles()
			cc.Renderer.Println()
			cc.Renderer.Printf("%s ", s.Muted.Render("templaters:"))
			for i, name := range templater.List() {
				if i > 0 {
					cc.Renderer.Printf(", ")
				}
				cc.Renderer.Printf("%s", name)
			}
			cc.Renderer.Println()
			return nil
		},
	}
}
