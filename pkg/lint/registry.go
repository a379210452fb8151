package lint

import (
	"slices"
	"strings"
	"sync"
)

// globalRegistry is the single registry for all lint rules.
var globalRegistry = &Registry{
	rules: make(map[string]Rule),
}

// Registry stores registered lint rules for discovery.
type Registry struct {
	mu    sync.RWMutex
	rules map[string]Rule // keyed by code
}

// Register adds a rule to the global registry.
// Call this from init() functions in rule packages.
func Register(def RuleDef) {
	RegisterRule(WrapRuleDef(def))
}

// RegisterRule adds a hand-written Rule implementation.
func RegisterRule(rule Rule) {
	globalRegistry.mu.Lock()
	defer globalRegistry.mu.Unlock()
	globalRegistry.rules[rule.Code()] = rule
}

// GetAll returns all registered rules sorted by code.
func GetAll() []Rule {
	globalRegistry.mu.RLock()
	defer globalRegistry.mu.RUnlock()

	rules := make([]Rule, 0, len(globalRegistry.rules))
	for _, rule := range globalRegistry.rules {
		rules = append(rules, rule)
	}
	slices.SortFunc(rules, func(a, b Rule) int {
		return strings.Compare(a.Code(), b.Code())
	})
	return rules
}

// GetByCode returns a rule by its code.
func GetByCode(code string) (Rule, bool) {
	globalRegistry.mu.RLock()
	defer globalRegistry.mu.RUnlock()
	rule, ok := globalRegistry.rules[code]
	return rule, ok
}

// GetByGroup returns all rules in a specific group.
func GetByGroup(group string) []Rule {
	var rules []Rule
	for _, rule := range GetAll() {
		if slices.Contains(rule.Groups(), group) {
			rules = append(rules, rule)
		}
	}
	return rules
}

// AllRules returns metadata for all registered rules.
func AllRules() []RuleInfo {
	all := GetAll()
	infos := make([]RuleInfo, 0, len(all))
	for _, r := range all {
		infos = append(infos, GetRuleInfo(r))
	}
	return infos
}

// Count returns the number of registered rules.
func Count() int {
	globalRegistry.mu.RLock()
	defer globalRegistry.mu.RUnlock()
	return len(globalRegistry.rules)
}
