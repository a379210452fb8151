package lsp

import (
	"fmt"
	"slices"
	"strings"

	"github.com/leapstack-labs/sqlgrain/pkg/dialect"
	"github.com/leapstack-labs/sqlgrain/pkg/lint"
)

func dialectKeywords(d *dialect.Dialect) []string {
	words := append(d.Sets(dialect.ReservedKeywords), d.Sets(dialect.UnreservedKeywords)...)
	slices.Sort(words)
	return slices.Compact(words)
}

// completions offers the dialect's keywords matching the word before the
// cursor.
func (s *Server) completions(params CompletionParams) *CompletionList {
	list := &CompletionList{Items: []CompletionItem{}}
	doc := s.documents.Get(params.TextDocument.URI)
	if doc == nil {
		return list
	}
	offset := doc.PositionToOffset(params.Position)
	word, start, _ := doc.WordAt(offset)
	prefix := strings.ToUpper(word[:offset-start])

	s.mu.RLock()
	keywords := s.keywords
	s.mu.RUnlock()

	for _, kw := range keywords {
		if strings.HasPrefix(kw, prefix) {
			list.Items = append(list.Items, CompletionItem{Label: kw, Kind: CompletionItemKindKeyword, Detail: "keyword"})
		}
	}
	return list
}

// hover describes the rules of the violations under the cursor.
func (s *Server) hover(params HoverParams) *Hover {
	uri := params.TextDocument.URI
	doc := s.documents.Get(uri)
	res := s.lastResult(uri)
	if doc == nil || res == nil {
		return nil
	}

	var parts []string
	var at *Range
	for _, d := range res.diagnostics {
		if !contains(d.Range, params.Position) {
			continue
		}
		if at == nil {
			r := d.Range
			at = &r
		}
		parts = append(parts, describeRule(d))
	}
	if len(parts) == 0 {
		return nil
	}
	return &Hover{
		Contents: MarkupContent{Kind: MarkupKindMarkdown, Value: strings.Join(parts, "\n\n---\n\n")},
		Range:    at,
	}
}

func describeRule(d Diagnostic) string {
	var b strings.Builder
	r, ok := lint.GetByCode(d.Code)
	if !ok {
		fmt.Fprintf(&b, "**%s**\n\n%s", d.Code, d.Message)
		return b.String()
	}
	info := lint.GetRuleInfo(r)
	fmt.Fprintf(&b, "**%s** `%s`\n\n%s", info.Code, info.Name, d.Message)
	if info.Description != "" && info.Description != d.Message {
		fmt.Fprintf(&b, "\n\n%s", info.Description)
	}
	if info.FixCompatible {
		b.WriteString("\n\nFixable.")
	}
	if info.DocURL != "" {
		fmt.Fprintf(&b, " [Documentation](%s)", info.DocURL)
	}
	return b.String()
}

func before(a, b Position) bool {
	return a.Line < b.Line || (a.Line == b.Line && a.Character < b.Character)
}

// contains treats ranges as closed so that zero length ranges still match.
func contains(r Range, p Position) bool {
	return !before(p, r.Start) && !before(r.End, p)
}
