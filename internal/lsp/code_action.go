package lsp

import (
	"context"
	"fmt"
	"strings"

	"github.com/leapstack-labs/sqlgrain/pkg/lint"
)

func wantsKind(only []CodeActionKind, kind CodeActionKind) bool {
	if len(only) == 0 {
		return true
	}
	for _, o := range only {
		if kind == o || strings.HasPrefix(string(kind), string(o)+".") {
			return true
		}
	}
	return false
}

// codeActions offers a fix-all action for the document and, per
// diagnostic, a fix for its rule and a noqa suppression.
func (s *Server) codeActions(ctx context.Context, params CodeActionParams) []CodeAction {
	actions := []CodeAction{}
	uri := params.TextDocument.URI
	doc := s.documents.Get(uri)
	if doc == nil {
		return actions
	}
	only := params.Context.Only

	if wantsKind(only, CodeActionKindQuickFix) {
		seen := make(map[string]bool)
		ignored := make(map[string]bool)
		for _, diag := range params.Context.Diagnostics {
			if diag.Source != diagnosticSource || diag.Code == "" {
				continue
			}
			if !seen[diag.Code] && ruleIsFixable(diag.Code) {
				seen[diag.Code] = true
				if edit := s.fixEdit(ctx, doc, diag.Code); edit != nil {
					actions = append(actions, CodeAction{
						Title:       fmt.Sprintf("Fix %s violations", diag.Code),
						Kind:        CodeActionKindQuickFix,
						Diagnostics: []Diagnostic{diag},
						IsPreferred: true,
						Edit:        &WorkspaceEdit{Changes: map[string][]TextEdit{uri: {*edit}}},
					})
				}
			}
			key := fmt.Sprintf("%d:%s", diag.Range.Start.Line, diag.Code)
			if ignored[key] {
				continue
			}
			ignored[key] = true
			if edit := noqaEdit(doc, diag); edit != nil {
				actions = append(actions, CodeAction{
					Title:       fmt.Sprintf("Ignore %s on this line", diag.Code),
					Kind:        CodeActionKindQuickFix,
					Diagnostics: []Diagnostic{diag},
					Edit:        &WorkspaceEdit{Changes: map[string][]TextEdit{uri: {*edit}}},
				})
			}
		}
	}

	if wantsKind(only, CodeActionKindSourceFixAllSG) {
		if edit := s.fixEdit(ctx, doc, ""); edit != nil {
			actions = append(actions, CodeAction{
				Title: "Fix all sqlgrain violations",
				Kind:  CodeActionKindSourceFixAllSG,
				Edit:  &WorkspaceEdit{Changes: map[string][]TextEdit{uri: {*edit}}},
			})
		}
	}
	return actions
}

func ruleIsFixable(code string) bool {
	r, ok := lint.GetByCode(code)
	return ok && lint.GetRuleInfo(r).FixCompatible
}

// format applies every available fix to the document.
func (s *Server) format(ctx context.Context, uri string) ([]TextEdit, error) {
	doc := s.documents.Get(uri)
	if doc == nil {
		return []TextEdit{}, nil
	}
	fixed, changed, err := s.fixDocument(ctx, s.currentLinter(), doc)
	if err != nil {
		return nil, err
	}
	if !changed {
		return []TextEdit{}, nil
	}
	return []TextEdit{{Range: doc.FullRange(), NewText: fixed}}, nil
}

// fixEdit returns a whole document edit applying the fixes of code, or of
// every rule when code is empty. Nil means nothing changes.
func (s *Server) fixEdit(ctx context.Context, doc *Document, code string) *TextEdit {
	l := s.currentLinter()
	if code != "" {
		var err error
		if l, err = s.ruleLinter(code); err != nil {
			s.logger.Warn("cannot build rule linter", "rule", code, "error", err)
			return nil
		}
	}
	fixed, changed, err := s.fixDocument(ctx, l, doc)
	if err != nil {
		s.logger.Warn("fix failed", "uri", doc.URI, "rule", code, "error", err)
		return nil
	}
	if !changed {
		return nil
	}
	return &TextEdit{Range: doc.FullRange(), NewText: fixed}
}

func (s *Server) fixDocument(ctx context.Context, l *lint.Linter, doc *Document) (string, bool, error) {
	lf, err := l.LintString(ctx, doc.Content, URIToPath(doc.URI), true)
	if err != nil {
		return "", false, err
	}
	fixed, changed := lf.FixString()
	return fixed, changed, nil
}

// ruleLinter returns a linter restricted to one rule of the current
// configuration.
func (s *Server) ruleLinter(code string) (*lint.Linter, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if l, ok := s.ruleLinters[code]; ok {
		return l, nil
	}
	cfg := *s.linter.Config()
	cfg.Rules = []string{code}
	cfg.ExcludeRules = nil
	l, err := lint.NewLinter(&cfg, lint.WithLogger(s.logger))
	if err != nil {
		return nil, err
	}
	s.ruleLinters[code] = l
	return l, nil
}

// noqaEdit appends a "-- noqa" comment for the diagnostic's code to the end
// of its first line. Lines that already carry a comment are left alone.
func noqaEdit(doc *Document, diag Diagnostic) *TextEdit {
	line := int(diag.Range.Start.Line)
	text := doc.GetLine(line)
	if strings.Contains(text, "--") || strings.Contains(text, "/*") {
		return nil
	}
	end := doc.LineEnd(line)
	if end > 0 && end <= len(doc.Content) && doc.Content[end-1] == '\r' {
		end--
	}
	pos := doc.OffsetToPosition(end)
	return &TextEdit{Range: Range{Start: pos, End: pos}, NewText: "  -- noqa: " + diag.Code}
}
