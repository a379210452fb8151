package templater

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// paramStyle describes one bind parameter syntax. Go's regexp has no
// lookbehind, so the characters that may not precede a match are checked by hand.
type paramStyle struct {
	re        *regexp.Regexp
	notAfter  string // bytes that may not immediately precede the match
	notBefore string // bytes that may not immediately follow the match
}

const wordBytes = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789_"

var paramStyles = map[string]paramStyle{
	"colon":          {re: regexp.MustCompile(`:(\w+)`), notAfter: ":\\" + wordBytes, notBefore: ":"},
	"colon_nospaces": {re: regexp.MustCompile(`:(\w+)`), notAfter: ":"},
	"numeric_colon":  {re: regexp.MustCompile(`:(\d+)`), notAfter: ":\\" + wordBytes},
	"pyformat":       {re: regexp.MustCompile(`%\((\w+)\)s`), notAfter: ":\\" + wordBytes},
	"dollar":         {re: regexp.MustCompile(`\$(\w+)`), notAfter: ":\\" + wordBytes},
	"numeric_dollar": {re: regexp.MustCompile(`\$(\d+)`), notAfter: ":\\" + wordBytes},
	"question_mark":  {re: regexp.MustCompile(`\?`), notAfter: ":\\" + wordBytes},
	"percent":        {re: regexp.MustCompile(`%s`), notAfter: "-\\" + wordBytes},
	"ampersand":      {re: regexp.MustCompile(`&\{?(\w+)\}?`), notAfter: "&"},
}

// ParamStyles returns the supported placeholder styles.
func ParamStyles() []string {
	out := make([]string, 0, len(paramStyles))
	for k := range paramStyles {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Placeholder substitutes bind parameters (":name", "$1", "?", ...) with values
// from the templater context. Unknown parameters are replaced by their name.
type Placeholder struct{}

func init() {
	Register(Placeholder{})
}

// Name implements Templater.
func (Placeholder) Name() string { return "placeholder" }

// Description implements Templater.
func (Placeholder) Description() string {
	return "Replaces bind parameters with values from templater_context."
}

// Process implements Templater.
func (Placeholder) Process(_ context.Context, in, fname string, cfg Config) (*TemplatedFile, error) {
	styleName := cfg.ParamStyle
	if styleName == "" {
		styleName = "colon"
	}
	style, ok := paramStyles[styleName]
	if !ok {
		return nil, fmt.Errorf("unknown param_style %q (available: %s)", styleName, strings.Join(ParamStyles(), ", "))
	}

	var out strings.Builder
	var sliced []TemplatedFileSlice
	var raw []RawFileSlice
	lastPosRaw, lastPosTempl := 0, 0
	paramCounter := 1

	for _, loc := range style.re.FindAllStringSubmatchIndex(in, -1) {
		start, stop := loc[0], loc[1]
		if start < lastPosRaw {
			continue
		}
		if start > 0 && strings.IndexByte(style.notAfter, in[start-1]) >= 0 {
			continue
		}
		if stop < len(in) && style.notBefore != "" && strings.IndexByte(style.notBefore, in[stop]) >= 0 {
			continue
		}

		var name string
		if len(loc) >= 4 && loc[2] >= 0 {
			name = in[loc[2]:loc[3]]
		} else {
			name = strconv.Itoa(paramCounter)
			paramCounter++
		}
		replacement := name
		if v, ok := cfg.Context[name]; ok {
			replacement = fmt.Sprint(v)
		}

		literalLen := start - lastPosRaw
		sliced = append(sliced, TemplatedFileSlice{
			SliceType:      SliceLiteral,
			SourceSlice:    Slice{lastPosRaw, start},
			TemplatedSlice: Slice{lastPosTempl, lastPosTempl + literalLen},
		})
		raw = append(raw, RawFileSlice{Raw: in[lastPosRaw:start], SliceType: SliceLiteral, SourceIdx: lastPosRaw})
		out.WriteString(in[lastPosRaw:start])

		startTempl := lastPosTempl + literalLen
		sliced = append(sliced, TemplatedFileSlice{
			SliceType:      SliceTemplated,
			SourceSlice:    Slice{start, stop},
			TemplatedSlice: Slice{startTempl, startTempl + len(replacement)},
		})
		raw = append(raw, RawFileSlice{Raw: in[start:stop], SliceType: SliceTemplated, SourceIdx: start})
		out.WriteString(replacement)

		lastPosRaw = stop
		lastPosTempl = startTempl + len(replacement)
	}

	if len(in) > lastPosRaw {
		sliced = append(sliced, TemplatedFileSlice{
			SliceType:      SliceLiteral,
			SourceSlice:    Slice{lastPosRaw, len(in)},
			TemplatedSlice: Slice{lastPosTempl, lastPosTempl + len(in) - lastPosRaw},
		})
		raw = append(raw, RawFileSlice{Raw: in[lastPosRaw:], SliceType: SliceLiteral, SourceIdx: lastPosRaw})
		out.WriteString(in[lastPosRaw:])
	}

	if len(raw) == 0 {
		return New(in, fname, nil, nil, nil)
	}
	templated := out.String()
	return New(in, fname, &templated, sliced, raw)
}
