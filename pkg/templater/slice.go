package templater

import "fmt"

// Slice is a half-open byte range [Start, Stop).
type Slice struct {
	Start int
	Stop  int
}

// ZeroSlice returns the empty slice at i.
func ZeroSlice(i int) Slice {
	return Slice{Start: i, Stop: i}
}

// Len returns Stop - Start.
func (s Slice) Len() int {
	return s.Stop - s.Start
}

// IsZero reports whether the slice covers no bytes.
func (s Slice) IsZero() bool {
	return s.Start == s.Stop
}

// Of returns the substring of str covered by the slice.
func (s Slice) Of(str string) string {
	return str[s.Start:s.Stop]
}

func (s Slice) String() string {
	return fmt.Sprintf("%d..%d", s.Start, s.Stop)
}

// Slice types shared by raw and templated file slices.
const (
	SliceLiteral    = "literal"
	SliceTemplated  = "templated"
	SliceComment    = "comment"
	SliceBlockStart = "block_start"
	SliceBlockMid   = "block_mid"
	SliceBlockEnd   = "block_end"
)

// RawFileSlice is one region of the source file as the templater saw it.
type RawFileSlice struct {
	Raw       string `json:"raw"`
	SliceType string `json:"slice_type"`
	SourceIdx int    `json:"source_idx"`
	BlockIdx  int    `json:"block_idx"`
}

// EndSourceIdx returns the source offset just past this slice.
func (r RawFileSlice) EndSourceIdx() int {
	return r.SourceIdx + len(r.Raw)
}

// SourceSlice returns the source range of the slice.
func (r RawFileSlice) SourceSlice() Slice {
	return Slice{Start: r.SourceIdx, Stop: r.EndSourceIdx()}
}

// IsSourceOnly reports whether the slice produces no templated output.
func (r RawFileSlice) IsSourceOnly() bool {
	switch r.SliceType {
	case SliceComment, SliceBlockStart, SliceBlockMid, SliceBlockEnd:
		return true
	}
	return false
}

// TemplatedFileSlice maps a source range onto the templated range it produced.
type TemplatedFileSlice struct {
	SliceType      string `json:"slice_type"`
	SourceSlice    Slice  `json:"source_slice"`
	TemplatedSlice Slice  `json:"templated_slice"`
}
