package lexer

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/leapstack-labs/sqlgrain/pkg/syntax"
)

// Element is one lexed piece of the templated string.
type Element struct {
	Raw  string
	Kind syntax.Kind
}

// Matcher consumes a prefix of the remaining input.
type Matcher interface {
	// Name identifies the matcher, e.g. "whitespace" or "single_quote".
	Name() string
	// Match returns the elements lexed from the start of forward and the
	// number of bytes consumed. Zero bytes means no match.
	Match(forward string) ([]Element, int)
}

// Pattern is a regular expression with the kind its matches are given. It is
// used to split an already matched element.
type Pattern struct {
	Name string
	Kind syntax.Kind
	re   *regexp.Regexp
}

// NewPattern compiles a subdivision pattern. It panics on invalid input.
func NewPattern(name, expr string, kind syntax.Kind) *Pattern {
	return &Pattern{Name: name, Kind: kind, re: regexp.MustCompile(expr)}
}

// split is shared by StringLexer and RegexLexer.
type split struct {
	subdivider    *Pattern
	postSubdivide *Pattern
}

// subdivide breaks raw on the subdivider. The pieces between subdivisions
// keep kind, and are trimmed of postSubdivide matches at either end.
func (s split) subdivide(raw string, kind syntax.Kind) []Element {
	if s.subdivider == nil {
		return []Element{{Raw: raw, Kind: kind}}
	}
	var out []Element
	rest := raw
	for rest != "" {
		loc := s.subdivider.re.FindStringIndex(rest)
		if loc == nil || loc[1] == loc[0] {
			out = append(out, s.trim(rest, kind)...)
			break
		}
		if loc[0] > 0 {
			out = append(out, s.trim(rest[:loc[0]], kind)...)
		}
		out = append(out, Element{Raw: rest[loc[0]:loc[1]], Kind: s.subdivider.Kind})
		rest = rest[loc[1]:]
	}
	return out
}

func (s split) trim(raw string, kind syntax.Kind) []Element {
	if s.postSubdivide == nil || raw == "" {
		return []Element{{Raw: raw, Kind: kind}}
	}
	var head, tail []Element
	for {
		loc := s.postSubdivide.re.FindStringIndex(raw)
		if loc == nil || loc[0] != 0 || loc[1] == 0 || loc[1] == len(raw) {
			break
		}
		head = append(head, Element{Raw: raw[:loc[1]], Kind: s.postSubdivide.Kind})
		raw = raw[loc[1]:]
	}
	for {
		all := s.postSubdivide.re.FindAllStringIndex(raw, -1)
		if len(all) == 0 {
			break
		}
		last := all[len(all)-1]
		if last[1] != len(raw) || last[0] == 0 || last[0] == last[1] {
			break
		}
		tail = append([]Element{{Raw: raw[last[0]:], Kind: s.postSubdivide.Kind}}, tail...)
		raw = raw[:last[0]]
	}
	out := append(head, Element{Raw: raw, Kind: kind})
	return append(out, tail...)
}

// StringLexer matches a literal string exactly.
type StringLexer struct {
	split
	name     string
	template string
	kind     syntax.Kind
}

// NewStringLexer matches template and gives it kind.
func NewStringLexer(name, template string, kind syntax.Kind) *StringLexer {
	return &StringLexer{name: name, template: template, kind: kind}
}

func (s *StringLexer) Name() string { return s.name }

// Subdivider splits matches on p.
func (s *StringLexer) Subdivider(p *Pattern) *StringLexer {
	s.subdivider = p
	return s
}

// PostSubdivide trims p from the ends of each subdivided piece.
func (s *StringLexer) PostSubdivide(p *Pattern) *StringLexer {
	s.postSubdivide = p
	return s
}

func (s *StringLexer) Match(forward string) ([]Element, int) {
	if s.template == "" || !strings.HasPrefix(forward, s.template) {
		return nil, 0
	}
	return s.subdivide(s.template, s.kind), len(s.template)
}

func (s *StringLexer) String() string { return fmt.Sprintf("StringLexer(%s)", s.name) }

// RegexLexer matches a regular expression anchored at the current position.
type RegexLexer struct {
	split
	name    string
	pattern string
	re      *regexp.Regexp
	kind    syntax.Kind
}

// NewRegexLexer compiles pattern. It panics on invalid input, which is a
// dialect authoring error.
func NewRegexLexer(name, pattern string, kind syntax.Kind) *RegexLexer {
	return &RegexLexer{
		name:    name,
		pattern: pattern,
		re:      regexp.MustCompile(`^(?:` + pattern + `)`),
		kind:    kind,
	}
}

func (r *RegexLexer) Name() string { return r.name }

func (r *RegexLexer) Pattern() string { return r.pattern }

// Subdivider splits matches on p.
func (r *RegexLexer) Subdivider(p *Pattern) *RegexLexer {
	r.subdivider = p
	return r
}

// PostSubdivide trims p from the ends of each subdivided piece.
func (r *RegexLexer) PostSubdivide(p *Pattern) *RegexLexer {
	r.postSubdivide = p
	return r
}

func (r *RegexLexer) Match(forward string) ([]Element, int) {
	loc := r.re.FindStringIndex(forward)
	if loc == nil || loc[1] == 0 {
		return nil, 0
	}
	return r.subdivide(forward[:loc[1]], r.kind), loc[1]
}

func (r *RegexLexer) String() string { return fmt.Sprintf("RegexLexer(%s)", r.name) }

// FuncLexer matches with a scanning function. It covers tokens a regular
// expression without lookaround or backreferences cannot describe.
type FuncLexer struct {
	name string
	scan func(forward string) int
	kind syntax.Kind
}

// NewFuncLexer wraps scan, which returns the length of the token at the start
// of its input or 0.
func NewFuncLexer(name string, kind syntax.Kind, scan func(forward string) int) *FuncLexer {
	return &FuncLexer{name: name, scan: scan, kind: kind}
}

func (f *FuncLexer) Name() string { return f.name }

func (f *FuncLexer) Match(forward string) ([]Element, int) {
	n := f.scan(forward)
	if n <= 0 || n > len(forward) {
		return nil, 0
	}
	return []Element{{Raw: forward[:n], Kind: f.kind}}, n
}

func (f *FuncLexer) String() string { return fmt.Sprintf("FuncLexer(%s)", f.name) }

var numericHead = regexp.MustCompile(`^(?:\d+\.\d+|\.\d+|\d+\.?)(?:[eE][+-]?\d+)?`)

func isWordByte(b byte) bool {
	return b == '_' || (b >= '0' && b <= '9') || (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}

// ScanNumber matches numeric literals such as 1, 1.5, .5, 1. and 1e10. A
// number directly followed by a word character is not a number (1abc is a
// word), and a trailing dot is only taken when no dot or word follows it.
func ScanNumber(forward string) int {
	loc := numericHead.FindStringIndex(forward)
	if loc == nil {
		return 0
	}
	n := loc[1]
	if forward[n-1] == '.' && n < len(forward) && (forward[n] == '.' || isWordByte(forward[n])) {
		n--
		if n == 0 {
			return 0
		}
	}
	if forward[n-1] != '.' && n < len(forward) && isWordByte(forward[n]) {
		return 0
	}
	return n
}

// ScanDollarQuote matches $$...$$ and $tag$...$tag$ strings.
func ScanDollarQuote(forward string) int {
	if len(forward) < 2 || forward[0] != '$' {
		return 0
	}
	end := 1
	for end < len(forward) && isWordByte(forward[end]) {
		end++
	}
	if end >= len(forward) || forward[end] != '$' {
		return 0
	}
	tag := forward[:end+1]
	if i := strings.Index(forward[end+1:], tag); i >= 0 {
		return end + 1 + i + len(tag)
	}
	return 0
}
