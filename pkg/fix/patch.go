package fix

import (
	"sort"
	"strings"

	"github.com/leapstack-labs/sqlgrain/pkg/segment"
	"github.com/leapstack-labs/sqlgrain/pkg/syntax"
	"github.com/leapstack-labs/sqlgrain/pkg/templater"
)

// FixPatch replaces one source range with new text.
type FixPatch struct {
	TemplatedSlice templater.Slice
	FixedRaw       string
	// PatchCategory is "literal" for tree edits and "source" for source fixes.
	PatchCategory string
	SourceSlice   templater.Slice
	TemplatedStr  string
	SourceStr     string
}

type patchKey struct {
	source templater.Slice
	raw    string
}

func (p FixPatch) dedupeKey() patchKey {
	return patchKey{source: p.SourceSlice, raw: p.FixedRaw}
}

// IterPatches walks a fixed tree and yields a patch for every region whose
// raw text no longer matches the templated file.
func IterPatches(s *segment.Segment, tf *templater.TemplatedFile) []FixPatch {
	pos := s.Marker()
	if pos == nil {
		return nil
	}
	if s.Raw() == pos.TemplatedSlice.Of(tf.TemplatedStr) {
		return sourceFixPatches(s, tf)
	}

	if pos.IsLiteral() {
		acc := sourceFixPatches(s, tf)
		return append(acc, FixPatch{
			TemplatedSlice: pos.TemplatedSlice,
			FixedRaw:       s.Raw(),
			PatchCategory:  templater.SliceLiteral,
			SourceSlice:    pos.SourceSlice,
			TemplatedStr:   pos.TemplatedSlice.Of(tf.TemplatedStr),
			SourceStr:      pos.SourceSlice.Of(tf.SourceStr),
		})
	}
	if s.IsToken() {
		return nil
	}

	children := s.Segments()
	for len(children) > 0 && children[len(children)-1].IsType(syntax.EndOfFile, syntax.Indent, syntax.Dedent, syntax.ImplicitIndent) {
		children = children[:len(children)-1]
	}

	var (
		acc          []FixPatch
		sourceIdx    = pos.SourceSlice.Start
		templatedIdx = pos.TemplatedSlice.Start
		insert       strings.Builder
	)
	for _, child := range children {
		cm := child.Marker()
		if cm == nil {
			insert.WriteString(child.Raw())
			continue
		}
		if child.Raw() != "" && cm.IsPoint() {
			insert.WriteString(child.Raw())
			continue
		}

		if cm.TemplatedSlice.Start > templatedIdx || insert.Len() > 0 {
			first := cm
			if raws := child.RawSegments(); len(raws) > 0 && raws[0].Marker() != nil {
				first = raws[0].Marker()
			}
			acc = append(acc, FixPatch{
				TemplatedSlice: templater.Slice{Start: templatedIdx, Stop: first.TemplatedSlice.Start},
				FixedRaw:       insert.String(),
				PatchCategory:  templater.SliceLiteral,
				SourceSlice:    templater.Slice{Start: sourceIdx, Stop: first.SourceSlice.Start},
			})
			insert.Reset()
		}

		acc = append(acc, IterPatches(child, tf)...)
		sourceIdx = cm.SourceSlice.Stop
		templatedIdx = cm.TemplatedSlice.Stop
	}

	if templatedIdx != pos.TemplatedSlice.Stop || insert.Len() > 0 {
		ss := templater.Slice{Start: sourceIdx, Stop: pos.SourceSlice.Stop}
		ts := templater.Slice{Start: templatedIdx, Stop: pos.TemplatedSlice.Stop}
		acc = append(acc, FixPatch{
			TemplatedSlice: ts,
			FixedRaw:       insert.String(),
			PatchCategory:  templater.SliceLiteral,
			SourceSlice:    ss,
			TemplatedStr:   ts.Of(tf.TemplatedStr),
			SourceStr:      ss.Of(tf.SourceStr),
		})
	}
	return acc
}

func sourceFixPatches(s *segment.Segment, tf *templater.TemplatedFile) []FixPatch {
	fixes := s.SourceFixes()
	if len(fixes) == 0 {
		return nil
	}
	out := make([]FixPatch, 0, len(fixes))
	for _, sf := range fixes {
		out = append(out, FixPatch{
			TemplatedSlice: sf.TemplatedSlice,
			FixedRaw:       sf.Edit,
			PatchCategory:  "source",
			SourceSlice:    sf.SourceSlice,
			TemplatedStr:   sf.TemplatedSlice.Of(tf.TemplatedStr),
			SourceStr:      sf.SourceSlice.Of(tf.SourceStr),
		})
	}
	return out
}

// GenerateSourcePatches returns the deduplicated patches of tree, sorted by
// source offset.
func GenerateSourcePatches(tree *segment.Segment, tf *templater.TemplatedFile) []FixPatch {
	var out []FixPatch
	seen := make(map[patchKey]bool)
	for _, p := range IterPatches(tree, tf) {
		k := p.dedupeKey()
		if seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, p)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].SourceSlice.Start < out[j].SourceSlice.Start
	})
	return out
}

// SliceSourceFile cuts the source into disjoint ranges at every patch
// boundary and around every source-only slice, so template tags are never
// merged into an edit. Patches must be sorted; a patch overlapping an
// earlier one is skipped.
func SliceSourceFile(patches []FixPatch, sourceOnly []templater.RawFileSlice, source string) []templater.Slice {
	var (
		buf []templater.Slice
		idx int
	)
	pending := append([]templater.RawFileSlice(nil), sourceOnly...)

	for _, p := range patches {
		for len(pending) > 0 && pending[0].SourceIdx < p.SourceSlice.Start {
			so := pending[0].SourceSlice()
			pending = pending[1:]
			if so.Stop > idx {
				buf = append(buf, templater.Slice{Start: idx, Stop: so.Start})
			}
			buf = append(buf, so)
			idx = so.Stop
		}

		// A patch exactly covering a source-only slice replaces it.
		if len(pending) > 0 && pending[0].SourceSlice() == p.SourceSlice {
			pending = pending[1:]
		}

		if p.SourceSlice.Start > idx {
			buf = append(buf, templater.Slice{Start: idx, Stop: p.SourceSlice.Start})
		}
		if p.SourceSlice.Start < idx {
			continue
		}
		buf = append(buf, p.SourceSlice)
		idx = p.SourceSlice.Stop
	}

	if idx < len(source) {
		buf = append(buf, templater.Slice{Start: idx, Stop: len(source)})
	}
	return buf
}

// BuildFixedString concatenates the slices, taking the patched text where a
// patch covers a slice exactly and the original source elsewhere.
func BuildFixedString(slices []templater.Slice, patches []FixPatch, source string) string {
	var b strings.Builder
	b.Grow(len(source))
	for _, sl := range slices {
		patched := false
		for _, p := range patches {
			if p.SourceSlice == sl {
				b.WriteString(p.FixedRaw)
				patched = true
				break
			}
		}
		if !patched {
			b.WriteString(sl.Of(source))
		}
	}
	return b.String()
}

// FixString renders a fixed tree back onto the source of tf. Source bytes
// outside every patch are copied unchanged.
func FixString(tree *segment.Segment, tf *templater.TemplatedFile) string {
	patches := GenerateSourcePatches(tree, tf)
	slices := SliceSourceFile(patches, tf.SourceOnlySlices(), tf.SourceStr)
	return BuildFixedString(slices, patches, tf.SourceStr)
}
