package lint

import (
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"strings"
)

// ErrUnknownRule is returned when a rule reference matches nothing.
var ErrUnknownRule = errors.New("unknown rule reference")

// RulePack is the configured set of rules for one linter.
type RulePack struct {
	Rules []Rule
	refs  map[string][]string
}

// Codes returns the codes of the selected rules in order.
func (p *RulePack) Codes() []string {
	codes := make([]string, len(p.Rules))
	for i, r := range p.Rules {
		codes[i] = r.Code()
	}
	return codes
}

// Expand resolves a reference to rule codes.
func (p *RulePack) Expand(ref string) ([]string, bool) {
	codes, ok := p.refs[strings.ToLower(strings.TrimSpace(ref))]
	return codes, ok
}

// BuildRulePack selects and configures rules from the registry.
func BuildRulePack(cfg *Config, logger *slog.Logger) (*RulePack, error) {
	if logger == nil {
		logger = slog.Default()
	}
	all := GetAll()
	pack := &RulePack{refs: referenceMap(all, logger)}

	selected := make(map[string]bool, len(all))
	allow := cfg.Rules
	if len(allow) == 0 {
		allow = []string{"all"}
	}
	for _, ref := range allow {
		codes, ok := pack.Expand(ref)
		if !ok {
			return nil, pack.unknown(ref)
		}
		for _, c := range codes {
			selected[c] = true
		}
	}
	for _, ref := range cfg.ExcludeRules {
		codes, ok := pack.Expand(ref)
		if !ok {
			return nil, pack.unknown(ref)
		}
		for _, c := range codes {
			delete(selected, c)
		}
	}
	for ref := range cfg.RuleOptions {
		if _, ok := pack.Expand(ref); !ok {
			return nil, pack.unknown(ref)
		}
	}

	for _, r := range all {
		if !selected[r.Code()] {
			continue
		}
		configured, err := r.Configure(cfg.GetRuleOptions(r))
		if err != nil {
			return nil, err
		}
		pack.Rules = append(pack.Rules, configured)
	}
	logger.Debug("rule pack built", "rules", len(pack.Rules))
	return pack, nil
}

func (p *RulePack) unknown(ref string) error {
	valid := slices.Sorted(maps.Keys(p.refs))
	return fmt.Errorf("%w: %q (valid: %s)", ErrUnknownRule, ref, strings.Join(valid, ", "))
}

// referenceMap maps codes, names, aliases and groups to codes. Codes win over
// names, names over aliases and aliases over groups.
func referenceMap(rules []Rule, logger *slog.Logger) map[string][]string {
	refs := make(map[string][]string)
	kind := make(map[string]string)

	claim := func(ref, what, code string) {
		ref = strings.ToLower(ref)
		if prev, ok := kind[ref]; ok && prev != what {
			logger.Warn("rule reference collision", "reference", ref, "kept", prev, "ignored", what+" of "+code)
			return
		}
		kind[ref] = what
		refs[ref] = append(refs[ref], code)
	}

	for _, r := range rules {
		claim(r.Code(), "code", r.Code())
	}
	for _, r := range rules {
		claim(r.Name(), "name", r.Code())
	}
	for _, r := range rules {
		for _, a := range r.Aliases() {
			claim(a, "alias", r.Code())
		}
	}
	for _, r := range rules {
		for _, g := range r.Groups() {
			claim(g, "group", r.Code())
		}
	}
	return refs
}
