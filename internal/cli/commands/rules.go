package commands

import (
	"fmt"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/sqlgrain/pkg/lint"
)

// RulesOptions holds options for the rules command.
type RulesOptions struct {
	Group string
}

// NewRulesCommand creates the rules command.
func NewRulesCommand() *cobra.Command {
	opts := &RulesOptions{}
	cmd := &cobra.Command{
		Use:   "rules [rule]",
		Short: "List available lint rules",
		Long: `List the registered lint rules.

A rule can be named by code (LT01), name (layout.spacing) or alias.`,
		Example: `  # List all rules
  sqlgrain rules

  # Show one rule
  sqlgrain rules AL01

  # List layout rules as JSON
  sqlgrain rules --group layout -o json`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) > 0 {
				return showRule(cmd, args[0])
			}
			return listRules(cmd, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.Group, "group", "g", "", "Only list rules in this group")

	return cmd
}

// findRule resolves a code, name or alias.
func findRule(ref string) (lint.RuleInfo, bool) {
	if r, ok := lint.GetByCode(strings.ToUpper(ref)); ok {
		return lint.GetRuleInfo(r), true
	}
	for _, info := range lint.AllRules() {
		if strings.EqualFold(info.Name, ref) || slices.ContainsFunc(info.Aliases, func(a string) bool {
			return strings.EqualFold(a, ref)
		}) {
			return info, true
		}
	}
	return lint.RuleInfo{}, false
}

func showRule(cmd *cobra.Command, ref string) error {
	cc, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	info, ok := findRule(ref)
	if !ok {
		return fmt.Errorf("unknown rule %q", ref)
	}
	if ok, err := cc.Renderer.Structured(info); ok {
		return err
	}

	s := cc.Renderer.Styles()
	cc.Renderer.Println(s.Header.Render(info.Code) + " " + s.Bold.Render(info.Name))
	cc.Renderer.Println(info.Description)
	cc.Renderer.Println()
	cc.Renderer.Printf("%s %s\n", s.Muted.Render("groups:"), strings.Join(info.Groups, ", "))
	if len(info.Aliases) > 0 {
		cc.Renderer.Printf("%s %s\n", s.Muted.Render("aliases:"), strings.Join(info.Aliases, ", "))
	}
	cc.Renderer.Printf("%s %s\n", s.Muted.Render("severity:"), info.DefaultSeverity)
	cc.Renderer.Printf("%s %t\n", s.Muted.Render("fixable:"), info.FixCompatible)
	if len(info.ConfigKeys) > 0 {
		cc.Renderer.Printf("%s %s\n", s.Muted.Render("options:"), strings.Join(info.ConfigKeys, ", "))
	}
	cc.Renderer.Printf("%s %s\n", s.Muted.Render("docs:"), info.DocURL)
	return nil
}

func listRules(cmd *cobra.Command, opts *RulesOptions) error {
	cc, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}

	var rules []lint.RuleInfo
	for _, info := range lint.AllRules() {
		if opts.Group != "" && !slices.Contains(info.Groups, opts.Group) {
			continue
		}
		rules = append(rules, info)
	}
	slices.SortFunc(rules, func(a, b lint.RuleInfo) int { return strings.Compare(a.Code, b.Code) })

	if ok, err := cc.Renderer.Structured(rules); ok {
		return err
	}
	if len(rules) == 0 {
		cc.Renderer.Warn("No rules match")
		return nil
	}
	cc.Renderer.RulesTable(rules)
	return nil
}
