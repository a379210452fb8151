package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/leapstack-labs/sqlgrain/internal/cli"
)

// generateCLIDocs writes index.md plus one page per command.
func generateCLIDocs(outDir string) error {
	log.Printf("Generating CLI docs to %s", outDir)
	if err := os.MkdirAll(outDir, 0750); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	root := cli.NewRootCmd()
	pages := map[string][]byte{"index.md": cliIndex(root)}
	for _, cmd := range documented(root) {
		pages[cmd.Name()+".md"] = commandPage(cmd)
	}
	for name, page := range pages {
		if err := os.WriteFile(filepath.Join(outDir, name), page, 0600); err != nil {
			return err
		}
		log.Printf("  Generated %s", name)
	}
	return nil
}

func documented(root *cobra.Command) []*cobra.Command {
	var cmds []*cobra.Command
	for _, cmd := range root.Commands() {
		if cmd.Hidden || cmd.Name() == "help" || cmd.Name() == "__complete" {
			continue
		}
		cmds = append(cmds, cmd)
	}
	return cmds
}

func cliIndex(root *cobra.Command) []byte {
	w := NewMarkdownWriter()
	w.Frontmatter("CLI Reference", "Command-line interface reference for sqlgrain")
	w.GeneratedMarker()

	w.Header(1, "CLI Reference")
	w.Paragraph("sqlgrain parses, lints and fixes SQL files from the command line.")

	w.Header(2, "Installation")
	w.CodeBlock("bash", "go install github.com/leapstack-labs/sqlgrain/cmd/sqlgrain@latest")

	w.Header(2, "Basic Usage")
	w.CodeBlock("bash", "sqlgrain <command> [options] [paths...]")

	w.Header(2, "Commands")
	var rows [][]string
	for _, cmd := range documented(root) {
		link := fmt.Sprintf("[%s](/cli/%s)", InlineCode(cmd.Name()), cmd.Name())
		rows = append(rows, []string{link, cleanDescription(cmd.Short)})
	}
	w.Table([]string{"Command", "Description"}, rows)

	w.Header(2, "Global Options")
	w.Paragraph("These flags are available for all commands:")
	flagsTable(w, root.PersistentFlags())

	w.Header(2, "Environment Variables")
	w.Paragraph("Every config key can be set as " + InlineCode("SQLGRAIN_<KEY>") + ", with " +
		InlineCode("__") + " separating nested keys:")
	w.Table([]string{"Variable", "Config key"}, [][]string{
		{InlineCode("SQLGRAIN_DIALECT"), InlineCode("dialect")},
		{InlineCode("SQLGRAIN_EXCLUDE_RULES"), InlineCode("exclude_rules")},
		{InlineCode("SQLGRAIN_INDENTATION__TAB_SPACE_SIZE"), InlineCode("indentation.tab_space_size")},
	})
	w.Paragraph("Command-line flags take precedence over environment variables, which take precedence over the config file.")

	w.Header(2, "Exit Codes")
	w.Table([]string{"Code", "Meaning"}, [][]string{
		{InlineCode("0"), "Success"},
		{InlineCode("1"), "Violations were found, or remain after fixing"},
		{InlineCode("2"), "Error (check stderr for details)"},
	})
	return w.Bytes()
}

func commandPage(cmd *cobra.Command) []byte {
	w := NewMarkdownWriter()
	w.Frontmatter(cmd.Name(), cmd.Short)
	w.GeneratedMarker()

	w.Header(1, cmd.Name())
	if cmd.Long != "" {
		w.Paragraph(cmd.Long)
	} else {
		w.Paragraph(cmd.Short)
	}

	w.Header(2, "Usage")
	w.CodeBlock("bash", cmd.UseLine())

	if len(cmd.Aliases) > 0 {
		w.Header(2, "Aliases")
		aliases := make([]string, len(cmd.Aliases))
		for i, a := range cmd.Aliases {
			aliases[i] = InlineCode(a)
		}
		w.BulletList(aliases)
	}
	if cmd.HasLocalFlags() {
		w.Header(2, "Options")
		flagsTable(w, cmd.LocalFlags())
	}
	if cmd.HasInheritedFlags() {
		w.Header(2, "Global Options")
		flagsTable(w, cmd.InheritedFlags())
	}
	if cmd.Example != "" {
		w.Header(2, "Examples")
		w.CodeBlock("bash", dedent(cmd.Example))
	}
	return w.Bytes()
}

func flagsTable(w *MarkdownWriter, flags *pflag.FlagSet) {
	var rows [][]string
	flags.VisitAll(func(f *pflag.Flag) {
		if f.Hidden {
			return
		}
		short := ""
		if f.Shorthand != "" {
			short = "-" + f.Shorthand
		}
		def := f.DefValue
		if def != "" && def != "[]" && f.Value.Type() != "bool" {
			def = InlineCode(def)
		}
		if def == "[]" {
			def = ""
		}
		rows = append(rows, []string{InlineCode("--" + f.Name), short, def, cleanDescription(f.Usage)})
	})
	w.Table([]string{"Option", "Short", "Default", "Description"}, rows)
}

// dedent strips the indentation common to every non-blank line.
func dedent(s string) string {
	lines := strings.Split(s, "\n")
	common := -1
	for _, l := range lines {
		if strings.TrimSpace(l) == "" {
			continue
		}
		n := len(l) - len(strings.TrimLeft(l, " \t"))
		if common < 0 || n < common {
			common = n
		}
	}
	if common <= 0 {
		return strings.TrimSpace(s)
	}
	for i, l := range lines {
		if len(l) >= common {
			lines[i] = l[common:]
		} else {
			lines[i] = strings.TrimLeft(l, " \t")
		}
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}
