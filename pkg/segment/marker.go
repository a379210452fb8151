package segment

import (
	"fmt"
	"strings"

	"github.com/leapstack-labs/sqlgrain/pkg/templater"
)

// Marker locates a segment in the source file, in the templated file, and at a
// working line/position that fix application may move before realignment.
type Marker struct {
	SourceSlice    templater.Slice
	TemplatedSlice templater.Slice
	File           *templater.TemplatedFile
	WorkingLineNo  int
	WorkingLinePos int
}

// NewMarker builds a marker whose working position is its source position.
func NewMarker(source, templated templater.Slice, tf *templater.TemplatedFile) Marker {
	m := Marker{SourceSlice: source, TemplatedSlice: templated, File: tf}
	m.WorkingLineNo, m.WorkingLinePos = m.SourcePosition()
	return m
}

// MarkerFromPoint builds a zero length marker.
func MarkerFromPoint(sourcePoint, templatedPoint int, tf *templater.TemplatedFile) Marker {
	return NewMarker(templater.ZeroSlice(sourcePoint), templater.ZeroSlice(templatedPoint), tf)
}

// MarkerFromPoints spans from the start of one marker to the end of another.
func MarkerFromPoints(start, end Marker) Marker {
	m := Marker{
		SourceSlice:    templater.Slice{Start: start.SourceSlice.Start, Stop: end.SourceSlice.Stop},
		TemplatedSlice: templater.Slice{Start: start.TemplatedSlice.Start, Stop: end.TemplatedSlice.Stop},
		File:           start.File,
	}
	m.WorkingLineNo, m.WorkingLinePos = start.WorkingLineNo, start.WorkingLinePos
	return m
}

// MarkerFromChildMarkers merges child markers into the marker of their parent.
// The working position is taken from the first marker.
func MarkerFromChildMarkers(markers ...Marker) Marker {
	if len(markers) == 0 {
		panic("segment: cannot merge zero markers")
	}
	m := markers[0]
	for _, c := range markers[1:] {
		if c.File != m.File {
			panic("segment: merging markers from different templated files")
		}
		m.SourceSlice.Start = min(m.SourceSlice.Start, c.SourceSlice.Start)
		m.SourceSlice.Stop = max(m.SourceSlice.Stop, c.SourceSlice.Stop)
		m.TemplatedSlice.Start = min(m.TemplatedSlice.Start, c.TemplatedSlice.Start)
		m.TemplatedSlice.Stop = max(m.TemplatedSlice.Stop, c.TemplatedSlice.Stop)
	}
	return m
}

// StartPoint returns a point marker at the start of m, keeping its working position.
func (m Marker) StartPoint() Marker {
	p := MarkerFromPoint(m.SourceSlice.Start, m.TemplatedSlice.Start, m.File)
	p.WorkingLineNo, p.WorkingLinePos = m.WorkingLineNo, m.WorkingLinePos
	return p
}

// EndPoint returns a point marker at the end of m.
func (m Marker) EndPoint() Marker {
	return MarkerFromPoint(m.SourceSlice.Stop, m.TemplatedSlice.Stop, m.File)
}

// IsPoint reports whether both ranges are empty.
func (m Marker) IsPoint() bool {
	return m.SourceSlice.IsZero() && m.TemplatedSlice.IsZero()
}

// IsLiteral reports whether the source range contains no templated code.
func (m Marker) IsLiteral() bool {
	if m.File == nil {
		return true
	}
	return m.File.IsSourceSliceLiteral(m.SourceSlice)
}

// SourcePosition is the 1-based line and position of the start in the source.
func (m Marker) SourcePosition() (int, int) {
	if m.File == nil {
		return 1, m.SourceSlice.Start + 1
	}
	return m.File.GetLineposOfCharPos(m.SourceSlice.Start, true)
}

// TemplatedPosition is the 1-based line and position of the start in the templated file.
func (m Marker) TemplatedPosition() (int, int) {
	if m.File == nil {
		return 1, m.TemplatedSlice.Start + 1
	}
	return m.File.GetLineposOfCharPos(m.TemplatedSlice.Start, false)
}

// LineNo is the source line.
func (m Marker) LineNo() int {
	l, _ := m.SourcePosition()
	return l
}

// LinePos is the source position within the line.
func (m Marker) LinePos() int {
	_, p := m.SourcePosition()
	return p
}

// WithWorkingPosition returns a copy with a new working location.
func (m Marker) WithWorkingPosition(lineNo, linePos int) Marker {
	m.WorkingLineNo, m.WorkingLinePos = lineNo, linePos
	return m
}

// WorkingLocAfter infers where the working position lands after raw.
func (m Marker) WorkingLocAfter(raw string) (int, int) {
	return InferNextPosition(raw, m.WorkingLineNo, m.WorkingLinePos)
}

// SourceStr returns the source text covered by the marker.
func (m Marker) SourceStr() string {
	if m.File == nil {
		return ""
	}
	return m.SourceSlice.Of(m.File.SourceStr)
}

// Equal compares both ranges and the working location.
func (m Marker) Equal(o Marker) bool {
	return m.SourceSlice == o.SourceSlice &&
		m.TemplatedSlice == o.TemplatedSlice &&
		m.WorkingLineNo == o.WorkingLineNo &&
		m.WorkingLinePos == o.WorkingLinePos
}

func (m Marker) String() string {
	return fmt.Sprintf("[L:%3d, P:%3d]", m.WorkingLineNo, m.WorkingLinePos)
}

// InferNextPosition advances a line/position pair over raw.
func InferNextPosition(raw string, lineNo, linePos int) (int, int) {
	if raw == "" {
		return lineNo, linePos
	}
	if nl := strings.Count(raw, "\n"); nl > 0 {
		return lineNo + nl, len(raw) - strings.LastIndexByte(raw, '\n')
	}
	return lineNo, linePos + len(raw)
}
