package segment

import (
	"fmt"
	"strings"
)

// Record is the serialisable form of a tree used by parse output.
// A token maps its kind to its raw text; a node maps its kind to the records
// of its children.
type Record map[string]any

// ToRecord converts the tree into nested records. Metas are skipped unless
// includeMeta is set.
func (s *Segment) ToRecord(includeMeta bool) Record {
	if s.token {
		return Record{s.kind.String(): s.raw}
	}
	children := make([]Record, 0, len(s.children))
	for _, c := range s.children {
		if c.IsMeta() && !includeMeta {
			continue
		}
		children = append(children, c.ToRecord(includeMeta))
	}
	return Record{s.kind.String(): children}
}

// Stringify renders the tree one segment per line, the way the parse command
// prints it.
func (s *Segment) Stringify(showMeta bool) string {
	var b strings.Builder
	s.stringify(&b, 0, showMeta)
	return b.String()
}

const stringifyTabSize = 4

func (s *Segment) stringify(b *strings.Builder, depth int, showMeta bool) {
	if s.IsMeta() && !showMeta {
		return
	}
	pos := "[L:  ?, P:  ?]"
	if s.marker != nil {
		pos = s.marker.String()
	}
	prefix := fmt.Sprintf("%-20s|%s", pos, strings.Repeat(" ", depth*stringifyTabSize))

	switch {
	case s.IsMeta():
		fmt.Fprintf(b, "%s[META] %s:", prefix, s.kind)
		if s.sourceStr != "" {
			fmt.Fprintf(b, " [%s]", quoteRaw(s.sourceStr))
		}
		b.WriteString("\n")
	case s.token:
		label := s.kind.String() + ":"
		fmt.Fprintf(b, "%s%-*s%s\n", prefix, max(40-depth*stringifyTabSize, len(label)+1), label, quoteRaw(s.raw))
	default:
		fmt.Fprintf(b, "%s%s:\n", prefix, s.kind)
		for _, c := range s.children {
			c.stringify(b, depth+1, showMeta)
		}
	}
}

func quoteRaw(raw string) string {
	r := strings.NewReplacer("\n", `\n`, "\r", `\r`, "\t", `\t`, "'", `\'`)
	return "'" + r.Replace(raw) + "'"
}

func (s *Segment) String() string {
	pos := ""
	if s.marker != nil {
		pos = fmt.Sprintf(" (L:%d, P:%d)", s.marker.WorkingLineNo, s.marker.WorkingLinePos)
	}
	return fmt.Sprintf("%s%s: %s", s.kind, pos, quoteRaw(s.Raw()))
}
