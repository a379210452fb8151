package lsp

import (
	"context"

	"github.com/leapstack-labs/sqlgrain/pkg/lint"
)

// diagnosticSource is the source name shown by editors.
const diagnosticSource = "sqlgrain"

// lintResult is the last lint of a document version.
type lintResult struct {
	version     int
	violations  []*lint.Violation
	diagnostics []Diagnostic
}

// publishDiagnostics lints the document and publishes its violations.
func (s *Server) publishDiagnostics(ctx context.Context, uri string) {
	doc := s.documents.Get(uri)
	if doc == nil {
		return
	}
	res, err := s.lintDocument(ctx, doc)
	if err != nil {
		s.logger.Error("lint failed", "uri", uri, "error", err)
		return
	}
	version := doc.Version
	s.sendNotification("textDocument/publishDiagnostics", &PublishDiagnosticsParams{
		URI:         uri,
		Version:     &version,
		Diagnostics: res.diagnostics,
	})
}

func (s *Server) lintDocument(ctx context.Context, doc *Document) (*lintResult, error) {
	l := s.currentLinter()
	lf, err := l.LintString(ctx, doc.Content, URIToPath(doc.URI), false)
	if err != nil {
		return nil, err
	}
	res := &lintResult{
		version:     doc.Version,
		violations:  lf.Violations,
		diagnostics: make([]Diagnostic, 0, len(lf.Violations)),
	}
	for _, v := range lf.Violations {
		res.diagnostics = append(res.diagnostics, toDiagnostic(doc, v))
	}

	s.mu.Lock()
	if prev, ok := s.results[doc.URI]; !ok || prev.version <= doc.Version {
		s.results[doc.URI] = res
	}
	s.mu.Unlock()
	s.logger.Debug("linted", "uri", doc.URI, "version", doc.Version, "violations", len(lf.Violations))
	return res, nil
}

func (s *Server) lastResult(uri string) *lintResult {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.results[uri]
}

func (s *Server) forget(uri string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.results, uri)
}

// violationSpan returns the byte range a violation covers. Zero length
// spans are widened to the word they point at.
func violationSpan(doc *Document, v *lint.Violation) (int, int) {
	start, end := -1, -1
	if v.Segment != nil {
		if m := v.Segment.Marker(); m != nil && m.SourceSlice.Start <= len(doc.Content) {
			start, end = m.SourceSlice.Start, min(m.SourceSlice.Stop, len(doc.Content))
		}
	}
	if start < 0 {
		start = doc.LinePosToOffset(v.Line, v.Pos)
		end = start
	}
	if end <= start {
		if _, _, wordEnd := doc.WordAt(start); wordEnd > start {
			end = wordEnd
		} else {
			end = start
		}
	}
	return start, end
}

func toDiagnostic(doc *Document, v *lint.Violation) Diagnostic {
	start, end := violationSpan(doc, v)
	d := Diagnostic{
		Range:    Range{Start: doc.OffsetToPosition(start), End: doc.OffsetToPosition(end)},
		Severity: toLSPSeverity(v),
		Code:     v.Code,
		Source:   diagnosticSource,
		Message:  v.Description,
	}
	if _, ok := lint.GetByCode(v.Code); ok {
		d.CodeDescription = &CodeDescription{Href: lint.BuildDocURL(v.Code)}
	}
	return d
}

func toLSPSeverity(v *lint.Violation) DiagnosticSeverity {
	switch v.Severity {
	case lint.SeverityInfo:
		return DiagnosticSeverityInformation
	case lint.SeverityHint:
		return DiagnosticSeverityHint
	case lint.SeverityWarning:
		return DiagnosticSeverityWarning
	}
	if v.Warning {
		return DiagnosticSeverityWarning
	}
	return DiagnosticSeverityError
}
