package capitalisation

import (
	"fmt"
	"slices"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/leapstack-labs/sqlgrain/pkg/fix"
	"github.com/leapstack-labs/sqlgrain/pkg/lint"
	"github.com/leapstack-labs/sqlgrain/pkg/segment"
)

// Capitalisation policies.
const (
	Consistent = "consistent"
	Upper      = "upper"
	Lower      = "lower"
	Capitalise = "capitalise"
)

var policies = []string{Consistent, Upper, Lower, Capitalise}

func validatePolicy(opts map[string]any) error {
	p := lint.GetStringOption(opts, "capitalisation_policy", Consistent)
	if !slices.Contains(policies, p) {
		return fmt.Errorf("capitalisation_policy must be one of %v, got %q", policies, p)
	}
	return nil
}

// caseMemory carries what earlier segments of the file said about the
// casing in use.
type caseMemory struct {
	refuted map[string]bool
	latest  string
}

func applyCase(policy, raw string) string {
	switch policy {
	case Upper:
		return cases.Upper(language.Und).String(raw)
	case Lower:
		return cases.Lower(language.Und).String(raw)
	case Capitalise:
		r, size := utf8.DecodeRuneInString(raw)
		if r == utf8.RuneError {
			return raw
		}
		return cases.Upper(language.Und).String(raw[:size]) + cases.Lower(language.Und).String(raw[size:])
	}
	return raw
}

// refute records the policies raw is inconsistent with.
func (m *caseMemory) refute(raw string) {
	for _, p := range []string{Upper, Lower, Capitalise} {
		if applyCase(p, raw) != raw {
			m.refuted[p] = true
		}
	}
}

// checkCase returns an evaluator that enforces the capitalisation policy on
// the crawled segment. elem names the checked elements in messages.
func checkCase(elem string) lint.EvalFunc {
	return func(ctx *lint.RuleContext, opts map[string]any) []lint.LintResult {
		seg := ctx.Segment
		raw := seg.Raw()

		mem, _ := ctx.Memory.(*caseMemory)
		if mem == nil {
			mem = &caseMemory{refuted: make(map[string]bool)}
		}
		for _, w := range lint.GetStringSliceOption(opts, "ignore_words", nil) {
			if applyCase(Lower, w) == applyCase(Lower, raw) {
				return []lint.LintResult{{Memory: mem}}
			}
		}
		mem.refute(raw)

		policy := lint.GetStringOption(opts, "capitalisation_policy", Consistent)
		concrete := policy
		consistency := ""
		if policy == Consistent {
			consistency = "consistently "
			for _, p := range []string{Upper, Lower, Capitalise} {
				if !mem.refuted[p] {
					mem.latest = p
					return []lint.LintResult{{Memory: mem}}
				}
			}
			concrete = mem.latest
			if concrete == "" {
				concrete = Upper
			}
		}

		fixed := applyCase(concrete, raw)
		if fixed == raw {
			return []lint.LintResult{{Memory: mem}}
		}
		name := concrete
		if name == Capitalise {
			name = "capitalised"
		}
		return []lint.LintResult{{
			Anchor:      seg,
			Description: fmt.Sprintf("%s must be %s%s case.", elem, consistency, name),
			Fixes:       []fix.LintFix{fix.Replace(seg, []*segment.Segment{seg.Edit(fixed)})},
			Memory:      mem,
		}}
	}
}
