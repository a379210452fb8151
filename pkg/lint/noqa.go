package lint

import (
	"slices"
	"strings"

	"github.com/leapstack-labs/sqlgrain/pkg/segment"
	"github.com/leapstack-labs/sqlgrain/pkg/syntax"
)

// noqaMask holds inline "-- noqa" directives by source line. A nil entry
// silences every rule on the line.
type noqaMask map[int][]string

func collectNoqa(tree *segment.Segment) noqaMask {
	mask := make(noqaMask)
	if tree == nil {
		return mask
	}
	for _, c := range tree.Crawl(syntax.InlineComment) {
		body := strings.TrimLeft(c.Raw(), "-#")
		body = strings.TrimSpace(body)
		if len(body) < 4 || !strings.EqualFold(body[:4], "noqa") {
			continue
		}
		rest := strings.TrimSpace(body[4:])
		if !strings.HasPrefix(rest, ":") {
			if rest == "" {
				mask[c.LineNo()] = nil
			}
			continue
		}
		var refs []string
		for _, ref := range SplitList(rest[1:]) {
			refs = append(refs, strings.ToLower(ref))
		}
		mask[c.LineNo()] = append(mask[c.LineNo()], refs...)
		if len(mask[c.LineNo()]) == 0 {
			delete(mask, c.LineNo())
		}
	}
	return mask
}

func (m noqaMask) suppresses(v *Violation) bool {
	refs, ok := m[v.Line]
	if !ok {
		return false
	}
	if refs == nil {
		return true
	}
	return slices.Contains(refs, strings.ToLower(v.Code)) ||
		slices.Contains(refs, strings.ToLower(v.Name)) ||
		slices.Contains(refs, "all")
}
