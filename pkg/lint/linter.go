package lint

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"slices"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/leapstack-labs/sqlgrain/pkg/dialect"
	"github.com/leapstack-labs/sqlgrain/pkg/fix"
	"github.com/leapstack-labs/sqlgrain/pkg/segment"
	"github.com/leapstack-labs/sqlgrain/pkg/syntax"
	"github.com/leapstack-labs/sqlgrain/pkg/templater"
)

// Codes of violations raised by the linter itself rather than by a rule.
const (
	CodeTemplate = "TMP"
	CodeLex      = "LXR"
	CodeParse    = "PRS"
)

// Linter parses files and runs a rule pack over them.
type Linter struct {
	cfg       *Config
	dialect   *dialect.Dialect
	templater templater.Templater
	pack      *RulePack
	logger    *slog.Logger
	cache     Cache
}

// Option configures a Linter.
type Option func(*Linter)

// WithLogger sets the logger; slog.Default() is used otherwise.
func WithLogger(logger *slog.Logger) Option {
	return func(l *Linter) {
		l.logger = logger
	}
}

// WithCache makes LintPaths reuse results for unchanged files.
func WithCache(c Cache) Option {
	return func(l *Linter) {
		l.cache = c
	}
}

// NewLinter resolves the dialect, templater and rules named by cfg.
func NewLinter(cfg *Config, opts ...Option) (*Linter, error) {
	if cfg == nil {
		cfg = NewConfig()
	}
	l := &Linter{cfg: cfg, logger: slog.Default()}
	for _, opt := range opts {
		opt(l)
	}

	d, err := dialect.Get(cfg.Dialect)
	if err != nil {
		return nil, err
	}
	l.dialect = d

	name := cfg.Templater
	if name == "" {
		name = DefaultTemplater
	}
	t, err := templater.Get(name)
	if err != nil {
		return nil, err
	}
	l.templater = t

	pack, err := BuildRulePack(cfg, l.logger)
	if err != nil {
		return nil, err
	}
	l.pack = pack
	return l, nil
}

// Config returns the linter configuration.
func (l *Linter) Config() *Config { return l.cfg }

// Dialect returns the dialect files are parsed with.
func (l *Linter) Dialect() *dialect.Dialect { return l.dialect }

// Rules returns the configured rules.
func (l *Linter) Rules() []Rule { return l.pack.Rules }

// ParsedFile is a templated, lexed and parsed file.
type ParsedFile struct {
	Path          string
	Source        string
	TemplatedFile *templater.TemplatedFile
	// Tree is nil when templating failed.
	Tree *segment.Segment
	// Violations holds template, lex and parse problems.
	Violations []*Violation
}

// ParseString templates, lexes and parses sql. Template, lex and parse
// problems become violations; only unexpected failures are returned as errors.
func (l *Linter) ParseString(ctx context.Context, sql, fname string) (*ParsedFile, error) {
	parsed := &ParsedFile{Path: fname, Source: sql}

	tf, err := l.templater.Process(ctx, sql, fname, templater.Config{
		Context:    l.cfg.TemplaterContext,
		ParamStyle: l.cfg.ParamStyle,
		MacroPaths: l.cfg.MacroPaths,
	})
	if err != nil {
		var te *templater.TemplateError
		if !errors.As(err, &te) {
			return nil, fmt.Errorf("template %s: %w", fname, err)
		}
		parsed.Violations = append(parsed.Violations, &Violation{
			Code:        CodeTemplate,
			Name:        "templating",
			Description: te.Message,
			Line:        te.Line,
			Pos:         te.Column,
		})
		return parsed, nil
	}
	parsed.TemplatedFile = tf

	segs, lexErrs := l.dialect.Lexer().WithLogger(l.logger).Lex(tf)
	for _, le := range lexErrs {
		parsed.Violations = append(parsed.Violations, &Violation{
			Code:        CodeLex,
			Name:        "lexing",
			Description: le.Message,
			Line:        le.Line,
			Pos:         le.Column,
			Segment:     le.Segment,
		})
	}

	pcfg := l.cfg.ParserConfig()
	pcfg.Logger = l.logger
	tree, err := l.dialect.Parser(pcfg).Parse(segs, fname)
	if err != nil {
		l.logger.Debug("parse failed", "file", fname, "error", err)
	}
	if tree == nil {
		return nil, fmt.Errorf("parse %s: %w", fname, err)
	}
	parsed.Tree = tree

	for _, u := range tree.Crawl(syntax.Unparsable) {
		parsed.Violations = append(parsed.Violations, &Violation{
			Code:        CodeParse,
			Name:        "parsing",
			Description: fmt.Sprintf("Found unparsable section: %q", truncate(u.Raw(), 40)),
			Line:        u.LineNo(),
			Pos:         u.LinePos(),
			Segment:     u,
		})
	}
	return parsed, nil
}

// LintString lints sql, applying fixes to the tree when fixing is set.
func (l *Linter) LintString(ctx context.Context, sql, fname string, fixing bool) (*LintedFile, error) {
	start := time.Now()
	parsed, err := l.ParseString(ctx, sql, fname)
	if err != nil {
		return nil, err
	}
	lf := l.LintParsed(ctx, parsed, fixing)
	lf.Elapsed = time.Since(start)
	return lf, nil
}

// LintParsed runs the rule pack over a parsed file.
func (l *Linter) LintParsed(ctx context.Context, parsed *ParsedFile, fixing bool) *LintedFile {
	lf := &LintedFile{
		Path:          parsed.Path,
		Source:        parsed.Source,
		TemplatedFile: parsed.TemplatedFile,
		Tree:          parsed.Tree,
	}
	violations := slices.Clone(parsed.Violations)
	if parsed.Tree == nil {
		lf.Violations = sortViolations(violations)
		return lf
	}

	mask := collectNoqa(parsed.Tree)
	var rules []Rule
	for _, r := range l.pack.Rules {
		if !slices.Contains(r.DialectSkip(), l.dialect.Name()) {
			rules = append(rules, r)
		}
	}

	phases := []Phase{PhaseMain}
	if fixing {
		phases = append(phases, PhasePost)
	}

	tree := parsed.Tree
	reported := make(map[string]bool, len(rules))
	for _, phase := range phases {
		phaseRules := rules
		if fixing {
			phaseRules = slices.DeleteFunc(slices.Clone(rules), func(r Rule) bool { return r.LintPhase() != phase })
		}
		limit := 1
		if fixing {
			limit = max(l.cfg.RunawayLimit, 1)
			if phase == PhasePost {
				limit = 2
			}
		}

		for loop := 0; loop < limit; loop++ {
			if ctx.Err() != nil {
				break
			}
			changed := false
			for _, r := range phaseRules {
				vs := l.crawl(r, tree, parsed, mask)
				if !reported[r.Code()] {
					violations = append(violations, vs...)
					reported[r.Code()] = true
				}
				if !fixing {
					continue
				}
				var fixes []fix.LintFix
				for _, v := range vs {
					fixes = append(fixes, v.Fixes...)
				}
				if len(fixes) == 0 {
					continue
				}
				if next, ok := l.applyFixes(r, tree, fixes, parsed.Path); ok {
					tree = next
					changed = true
				}
			}
			l.logger.Debug("lint loop done", "file", parsed.Path, "phase", phase, "loop", loop, "changed", changed)
			if !fixing || !changed {
				break
			}
			if loop == limit-1 && phase == PhaseMain {
				l.logger.Warn("fix loop limit reached, the file may not be fully fixed",
					"file", parsed.Path, "runaway_limit", limit)
			}
		}
	}

	lf.Tree = tree
	lf.Violations = sortViolations(violations)
	return lf
}

// crawl evaluates one rule over the tree. A panicking rule yields a single
// violation at the root so the remaining rules still run.
func (l *Linter) crawl(r Rule, tree *segment.Segment, parsed *ParsedFile, mask noqaMask) (vs []*Violation) {
	defer func() {
		if p := recover(); p != nil {
			l.logger.Error("rule panicked", "rule", r.Code(), "file", parsed.Path, "panic", p, "stack", string(debug.Stack()))
			vs = []*Violation{{
				Code:        r.Code(),
				Name:        r.Name(),
				Description: fmt.Sprintf("Unexpected exception: %v; Could you open an issue?", p),
				Line:        max(tree.LineNo(), 1),
				Pos:         max(tree.LinePos(), 1),
				Severity:    SeverityError,
				Segment:     tree,
			}}
		}
	}()

	root := RuleContext{
		Dialect:       l.dialect,
		Config:        l.cfg,
		Path:          parsed.Path,
		TemplatedFile: parsed.TemplatedFile,
		Segment:       tree,
	}
	var memory any
	for _, c := range r.Crawler().Crawl(root) {
		c.Memory = memory
		for _, res := range r.Eval(&c) {
			if res.Memory != nil {
				memory = res.Memory
			}
			v := res.toViolation(r, l.cfg, parsed.TemplatedFile)
			if v == nil || mask.suppresses(v) {
				continue
			}
			vs = append(vs, v)
		}
	}
	return vs
}

// applyFixes applies one rule's fixes. It reports false, leaving tree alone,
// when the fixes conflict, change nothing or break the parse.
func (l *Linter) applyFixes(r Rule, tree *segment.Segment, fixes []fix.LintFix, path string) (*segment.Segment, bool) {
	infos, conflicts := fix.ComputeAnchorEditInfo(fixes)
	if len(conflicts) > 0 {
		for _, err := range conflicts {
			l.logger.Warn("skipping conflicting fixes", "rule", r.Code(), "file", path, "error", err)
		}
		return tree, false
	}
	for id, info := range infos {
		if !info.IsValid() {
			l.logger.Warn("skipping invalid fix combination", "rule", r.Code(), "file", path, "anchor", id, "edits", info.Total())
			return tree, false
		}
	}

	next, validate := fix.Apply(tree, infos)
	if next.Raw() == tree.Raw() {
		return tree, false
	}

	before := len(tree.Crawl(syntax.Unparsable))
	after := len(next.Crawl(syntax.Unparsable))
	if validate && after <= before {
		after = l.reparseUnparsable(next.Raw())
		before = l.reparseUnparsable(tree.Raw())
	}
	if after > before {
		l.logger.Warn("rolling back fixes that break parsing", "rule", r.Code(), "file", path)
		return tree, false
	}

	l.logger.Debug("applied fixes", "rule", r.Code(), "file", path, "fixes", len(fixes))
	return next, true
}

func (l *Linter) reparseUnparsable(sql string) int {
	segs, _ := l.dialect.Lexer().LexString(sql)
	tree, _ := l.dialect.Parser(l.cfg.ParserConfig()).Parse(segs, "<validate>")
	if tree == nil {
		return 0
	}
	return len(tree.Crawl(syntax.Unparsable))
}

func sortViolations(vs []*Violation) []*Violation {
	slices.SortStableFunc(vs, func(a, b *Violation) int {
		if a.Line != b.Line {
			return a.Line - b.Line
		}
		if a.Pos != b.Pos {
			return a.Pos - b.Pos
		}
		return strings.Compare(a.Code, b.Code)
	})
	return vs
}

func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n]) + "..."
}
