package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/leapstack-labs/sqlgrain/pkg/lint"
	_ "github.com/leapstack-labs/sqlgrain/pkg/lint/rules"
)

var groupDescriptions = map[string]string{
	"aliasing":       "Rules about alias usage and naming.",
	"capitalisation": "Rules about the case of keywords and identifiers.",
	"convention":     "Rules about consistent spelling of equivalent constructs.",
	"layout":         "Rules about whitespace, indentation and line breaks.",
	"structure":      "Rules about query structure.",
}

// generateRuleDocs writes index.md plus one page per rule group.
func generateRuleDocs(outDir string) error {
	log.Printf("Generating rule docs to %s", outDir)
	if err := os.MkdirAll(outDir, 0750); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	byGroup := make(map[string][]lint.Rule)
	for _, r := range lint.GetAll() {
		g := lint.PrimaryGroup(r)
		byGroup[g] = append(byGroup[g], r)
	}
	groups := make([]string, 0, len(byGroup))
	for g := range byGroup {
		groups = append(groups, g)
	}
	slices.Sort(groups)

	w := NewMarkdownWriter()
	w.Frontmatter("Rules", "Lint rule reference for sqlgrain")
	w.GeneratedMarker()
	w.Header(1, "Rules")
	w.Paragraph(fmt.Sprintf("sqlgrain ships **%d rules**. Rules are selected by code, name, alias or group "+
		"with %s and %s.", lint.Count(), InlineCode("rules"), InlineCode("exclude_rules")))
	var rows [][]string
	for _, g := range groups {
		for _, r := range byGroup[g] {
			fix := ""
			if r.IsFixCompatible() {
				fix = "yes"
			}
			link := fmt.Sprintf("[%s](/rules/%s#%s)", r.Code(), g, strings.ToLower(r.Code()))
			rows = append(rows, []string{link, InlineCode(r.Name()), cleanDescription(r.Description()), fix})
		}
	}
	w.Table([]string{"Code", "Name", "Description", "Fixable"}, rows)
	if err := os.WriteFile(filepath.Join(outDir, "index.md"), w.Bytes(), 0600); err != nil {
		return err
	}
	log.Printf("  Generated index.md")

	for _, g := range groups {
		if err := generateGroupPage(outDir, g, byGroup[g]); err != nil {
			return fmt.Errorf("failed to generate page for %s: %w", g, err)
		}
		log.Printf("  Generated %s.md", g)
	}
	return nil
}

func generateGroupPage(outDir, group string, rules []lint.Rule) error {
	w := NewMarkdownWriter()
	title := strings.ToUpper(group[:1]) + group[1:]
	w.Frontmatter(title, groupDescriptions[group])
	w.GeneratedMarker()
	w.Header(1, title)
	if desc := groupDescriptions[group]; desc != "" {
		w.Paragraph(desc)
	}
	for _, r := range rules {
		writeRuleDoc(w, r)
	}
	return os.WriteFile(filepath.Join(outDir, group+".md"), w.Bytes(), 0600)
}

func writeRuleDoc(w *MarkdownWriter, r lint.Rule) {
	info := lint.GetRuleInfo(r)
	w.Header(2, fmt.Sprintf("%s: %s", info.Code, info.Name))
	w.Paragraph(info.Description)

	props := []string{
		Bold("Severity") + ": " + info.DefaultSeverity,
		Bold("Phase") + ": " + info.Phase,
		Bold("Groups") + ": " + strings.Join(info.Groups, ", "),
	}
	if info.FixCompatible {
		props = append(props, Bold("Fixable")+": yes")
	}
	if len(info.Aliases) > 0 {
		props = append(props, Bold("Aliases")+": "+strings.Join(info.Aliases, ", "))
	}
	w.BulletList(props)

	if len(info.ConfigKeys) > 0 {
		w.Header(3, "Options")
		keys := make([]string, len(info.ConfigKeys))
		for i, k := range info.ConfigKeys {
			keys[i] = InlineCode(fmt.Sprintf("rule_options.%s.%s", info.Code, k))
		}
		w.BulletList(keys)
	}
	if long := r.LongDescription(); long != "" && long != info.Description {
		w.CodeBlock("text", long)
	}
}
