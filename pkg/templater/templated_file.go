package templater

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrPositionNotFound is returned when a templated offset is outside every slice.
var ErrPositionNotFound = errors.New("position not found in templated file")

// TemplatedFile is a source file together with its templated output and the
// mapping between the two.
type TemplatedFile struct {
	SourceStr    string
	TemplatedStr string
	FName        string
	SlicedFile   []TemplatedFileSlice
	RawSliced    []RawFileSlice

	sourceNewlines    []int
	templatedNewlines []int
}

// FromString wraps an untemplated string. The whole file is one literal slice.
func FromString(s string) *TemplatedFile {
	tf, err := New(s, "<string>", nil, nil, nil)
	if err != nil {
		// A single literal slice is always consistent.
		panic(err)
	}
	return tf
}

// New builds a templated file. A nil templated string means the source was not
// changed by templating, and nil slices mean a single literal slice.
func New(source, fname string, templated *string, sliced []TemplatedFileSlice, raw []RawFileSlice) (*TemplatedFile, error) {
	tf := &TemplatedFile{
		SourceStr: source,
		FName:     fname,
	}
	if templated != nil {
		tf.TemplatedStr = *templated
	} else {
		tf.TemplatedStr = source
	}

	switch {
	case sliced == nil && raw == nil:
		if tf.TemplatedStr != source {
			return nil, fmt.Errorf("templated file %s: changed output requires slices", fname)
		}
		tf.SlicedFile = []TemplatedFileSlice{{
			SliceType:      SliceLiteral,
			SourceSlice:    Slice{0, len(source)},
			TemplatedSlice: Slice{0, len(source)},
		}}
		tf.RawSliced = []RawFileSlice{{Raw: source, SliceType: SliceLiteral}}
	case sliced == nil || raw == nil:
		return nil, fmt.Errorf("templated file %s: both sliced file and raw slices are required", fname)
	default:
		tf.SlicedFile = sliced
		tf.RawSliced = raw
	}

	if err := tf.validate(); err != nil {
		return nil, err
	}

	tf.sourceNewlines = newlineIndices(tf.SourceStr)
	tf.templatedNewlines = newlineIndices(tf.TemplatedStr)
	return tf, nil
}

func (tf *TemplatedFile) validate() error {
	prevStop := 0
	for i, s := range tf.SlicedFile {
		if s.TemplatedSlice.Start != prevStop {
			return fmt.Errorf("templated file %s: templated slices found to be non-contiguous at slice %d (%s after %d)",
				tf.FName, i, s.TemplatedSlice, prevStop)
		}
		prevStop = s.TemplatedSlice.Stop
	}
	if len(tf.SlicedFile) > 0 && prevStop != len(tf.TemplatedStr) {
		return fmt.Errorf("templated file %s: length of templated file mismatch with final slice: %d != %d",
			tf.FName, len(tf.TemplatedStr), prevStop)
	}
	pos := 0
	for _, r := range tf.RawSliced {
		if r.SourceIdx != pos {
			return fmt.Errorf("templated file %s: raw slices found to be non-contiguous at %d", tf.FName, r.SourceIdx)
		}
		pos = r.EndSourceIdx()
	}
	if pos != len(tf.SourceStr) {
		return fmt.Errorf("templated file %s: raw slices do not cover the source (%d of %d)", tf.FName, pos, len(tf.SourceStr))
	}
	return nil
}

func newlineIndices(s string) []int {
	var out []int
	for i := 0; i < len(s); i++ {
		if s[i] == '\n' {
			out = append(out, i)
		}
	}
	return out
}

// Templated returns the templated output.
func (tf *TemplatedFile) Templated() string {
	return tf.TemplatedStr
}

// IsTemplated reports whether templating changed anything.
func (tf *TemplatedFile) IsTemplated() bool {
	return len(tf.RawSliced) > 1 || (len(tf.RawSliced) == 1 && tf.RawSliced[0].SliceType != SliceLiteral)
}

// GetLineposOfCharPos returns the 1-based line and position of a byte offset in
// either the source or the templated string.
func (tf *TemplatedFile) GetLineposOfCharPos(charPos int, source bool) (int, int) {
	ref := tf.templatedNewlines
	if source {
		ref = tf.sourceNewlines
	}
	nlIdx := sort.SearchInts(ref, charPos)
	if nlIdx > 0 {
		return nlIdx + 1, charPos - ref[nlIdx-1]
	}
	return 1, charPos + 1
}

// findSliceIndicesOfTemplatedPos returns the half-open range of sliced file
// indices that touch templatedPos.
func (tf *TemplatedFile) findSliceIndicesOfTemplatedPos(templatedPos int, inclusive bool) (int, int, error) {
	firstIdx := -1
	lastIdx := 0
	exhausted := true
	for idx, elem := range tf.SlicedFile {
		lastIdx = idx
		if elem.TemplatedSlice.Stop >= templatedPos {
			if firstIdx < 0 {
				firstIdx = idx
			}
			if elem.TemplatedSlice.Start > templatedPos {
				exhausted = false
				break
			} else if !inclusive && elem.TemplatedSlice.Start >= templatedPos {
				exhausted = false
				break
			}
		}
	}
	if exhausted {
		lastIdx++
	}
	if firstIdx < 0 {
		return 0, 0, fmt.Errorf("%w: %d", ErrPositionNotFound, templatedPos)
	}
	return firstIdx, lastIdx, nil
}

// TemplatedSliceToSourceSlice converts a templated range into the source range
// it came from. Literal regions map exactly, templated regions map greedily.
func (tf *TemplatedFile) TemplatedSliceToSourceSlice(ts Slice) (Slice, error) {
	if len(tf.SlicedFile) == 0 {
		return ts, nil
	}

	startSfStart, startSfStop, err := tf.findSliceIndicesOfTemplatedPos(ts.Start, true)
	if err != nil {
		return Slice{}, err
	}
	startSubsliced := tf.SlicedFile[startSfStart:startSfStop]

	// Where would a zero length insertion go?
	insertionPoint := -1
	for _, elem := range startSubsliced {
		for _, pair := range [2][2]int{
			{elem.TemplatedSlice.Start, elem.SourceSlice.Start},
			{elem.TemplatedSlice.Stop, elem.SourceSlice.Stop},
		} {
			if pair[0] == ts.Start {
				if insertionPoint < 0 || pair[1] < insertionPoint {
					insertionPoint = pair[1]
				}
			}
		}
	}

	if ts.IsZero() {
		if insertionPoint >= 0 {
			return ZeroSlice(insertionPoint), nil
		}
		if len(startSubsliced) > 0 && startSubsliced[0].SliceType == SliceLiteral {
			offset := ts.Start - startSubsliced[0].TemplatedSlice.Start
			return ZeroSlice(startSubsliced[0].SourceSlice.Start + offset), nil
		}
		return Slice{}, fmt.Errorf("attempting a single length slice within a templated section: %s", ts)
	}

	stopSfStart, stopSfStop, err := tf.findSliceIndicesOfTemplatedPos(ts.Stop, false)
	if err != nil {
		return Slice{}, err
	}

	if insertionPoint >= 0 {
		for _, elem := range tf.SlicedFile[startSfStart:] {
			if elem.SourceSlice.Start != insertionPoint {
				startSfStart++
			} else {
				break
			}
		}
	}

	subslices := tf.SlicedFile[min(startSfStart, stopSfStart):min(max(startSfStop, stopSfStop), len(tf.SlicedFile))]

	var startSlices []TemplatedFileSlice
	if startSfStart == startSfStop {
		if startSfStart > len(tf.SlicedFile) {
			return Slice{}, errors.New("starting position higher than sliced file position")
		}
		if startSfStart < len(tf.SlicedFile) {
			return tf.SlicedFile[startSfStart].SourceSlice, nil
		}
		return tf.SlicedFile[len(tf.SlicedFile)-1].SourceSlice, nil
	}
	startSlices = tf.SlicedFile[startSfStart:min(startSfStop, len(tf.SlicedFile))]

	var stopSlices []TemplatedFileSlice
	if stopSfStart == stopSfStop {
		stopSlices = []TemplatedFileSlice{tf.SlicedFile[min(stopSfStart, len(tf.SlicedFile)-1)]}
	} else {
		stopSlices = tf.SlicedFile[stopSfStart:min(stopSfStop, len(tf.SlicedFile))]
	}

	var sourceStart int
	switch {
	case insertionPoint >= 0:
		sourceStart = insertionPoint
	case startSlices[0].SliceType == SliceLiteral:
		offset := ts.Start - startSlices[0].TemplatedSlice.Start
		sourceStart = startSlices[0].SourceSlice.Start + offset
	default:
		sourceStart = startSlices[0].SourceSlice.Start
	}

	last := stopSlices[len(stopSlices)-1]
	var sourceStop int
	if last.SliceType == SliceLiteral {
		offset := last.TemplatedSlice.Stop - ts.Stop
		sourceStop = last.SourceSlice.Stop - offset
	} else {
		sourceStop = last.SourceSlice.Stop
	}

	// Loops and mixed literal/templated spans can run backwards. Take the
	// widest span in that case.
	if sourceStart > sourceStop && len(subslices) > 0 {
		sourceStart = subslices[0].SourceSlice.Start
		sourceStop = subslices[0].SourceSlice.Stop
		for _, e := range subslices[1:] {
			sourceStart = min(sourceStart, e.SourceSlice.Start)
			sourceStop = max(sourceStop, e.SourceSlice.Stop)
		}
	}

	return Slice{Start: sourceStart, Stop: sourceStop}, nil
}

// IsSourceSliceLiteral reports whether the source range lies entirely within
// literal regions.
func (tf *TemplatedFile) IsSourceSliceLiteral(ss Slice) bool {
	if len(tf.RawSliced) == 0 {
		return true
	}
	if ss.IsZero() {
		return true
	}
	isLiteral := true
	for _, raw := range tf.RawSliced {
		switch {
		case raw.SourceIdx <= ss.Start:
			isLiteral = raw.SliceType == SliceLiteral
		case raw.SourceIdx >= ss.Stop:
			return isLiteral
		default:
			if raw.SliceType != SliceLiteral {
				isLiteral = false
			}
		}
	}
	return isLiteral
}

// RawSlicesSpanningSourceSlice returns the raw slices overlapping a source range.
func (tf *TemplatedFile) RawSlicesSpanningSourceSlice(ss Slice) []RawFileSlice {
	if len(tf.RawSliced) == 0 {
		return nil
	}
	last := tf.RawSliced[len(tf.RawSliced)-1]
	if ss.Start >= last.EndSourceIdx() {
		return nil
	}

	idx := 0
	for idx+1 < len(tf.RawSliced) && tf.RawSliced[idx+1].SourceIdx <= ss.Start {
		idx++
	}
	span := 1
	for idx+span < len(tf.RawSliced) && tf.RawSliced[idx+span].SourceIdx < ss.Stop {
		span++
	}
	return tf.RawSliced[idx : idx+span]
}

// SourceOnlySlices returns the raw slices that produce no templated output,
// such as template comments and block tags.
func (tf *TemplatedFile) SourceOnlySlices() []RawFileSlice {
	var out []RawFileSlice
	for _, r := range tf.RawSliced {
		if r.IsSourceOnly() {
			out = append(out, r)
		}
	}
	return out
}

// SourcePosition is a resolved location in the source file.
type SourcePosition struct {
	StartLineNo  int `json:"start_line_no"`
	StartLinePos int `json:"start_line_pos"`
	StartFilePos int `json:"start_file_pos"`
	EndLineNo    int `json:"end_line_no"`
	EndLinePos   int `json:"end_line_pos"`
	EndFilePos   int `json:"end_file_pos"`
}

// SourcePositionDictFromSlice resolves a source range to line and position.
func (tf *TemplatedFile) SourcePositionDictFromSlice(ss Slice) SourcePosition {
	sl, sp := tf.GetLineposOfCharPos(ss.Start, true)
	el, ep := tf.GetLineposOfCharPos(ss.Stop, true)
	return SourcePosition{
		StartLineNo: sl, StartLinePos: sp, StartFilePos: ss.Start,
		EndLineNo: el, EndLinePos: ep, EndFilePos: ss.Stop,
	}
}

func (tf *TemplatedFile) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "TemplatedFile(%s", tf.FName)
	for _, s := range tf.SlicedFile {
		fmt.Fprintf(&b, " %s[%s->%s]", s.SliceType, s.SourceSlice, s.TemplatedSlice)
	}
	b.WriteString(")")
	return b.String()
}
