package lsp

import (
	"maps"
	"net/url"
	"path/filepath"
	"slices"
	"sort"
	"strings"
	"sync"
	"unicode/utf16"
	"unicode/utf8"

	"fortio.org/safecast"
)

// Document is an open text document.
type Document struct {
	URI     string
	Content string
	Version int
	Lines   []int // byte offsets of line starts
}

// DocumentStore holds the open documents.
type DocumentStore struct {
	mu        sync.RWMutex
	documents map[string]*Document
}

// NewDocumentStore creates an empty store.
func NewDocumentStore() *DocumentStore {
	return &DocumentStore{documents: make(map[string]*Document)}
}

// Open adds or replaces a document.
func (s *DocumentStore) Open(uri, content string, version int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.documents[uri] = newDocument(uri, content, version)
}

// Close removes a document.
func (s *DocumentStore) Close(uri string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.documents, uri)
}

// Get returns a snapshot of a document, or nil.
func (s *DocumentStore) Get(uri string) *Document {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.documents[uri]
}

// Update replaces the content of an open document. Stale versions are
// ignored.
func (s *DocumentStore) Update(uri, content string, version int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if doc, ok := s.documents[uri]; ok && version >= doc.Version {
		s.documents[uri] = newDocument(uri, content, version)
	}
}

// List returns the open document URIs, sorted.
func (s *DocumentStore) List() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Sorted(maps.Keys(s.documents))
}

// Documents are replaced, never mutated, so a snapshot from Get stays
// consistent while a lint of it runs.
func newDocument(uri, content string, version int) *Document {
	return &Document{URI: uri, Content: content, Version: version, Lines: computeLineOffsets(content)}
}

func computeLineOffsets(content string) []int {
	offsets := make([]int, 1, strings.Count(content, "\n")+1)
	for i, c := range []byte(content) {
		if c == '\n' {
			offsets = append(offsets, i+1)
		}
	}
	return offsets
}

func (d *Document) lineBounds(line int) (int, int) {
	start := d.Lines[line]
	end := len(d.Content)
	if line+1 < len(d.Lines) {
		end = d.Lines[line+1] - 1
	}
	return start, end
}

// PositionToOffset converts an LSP position to a byte offset.
func (d *Document) PositionToOffset(pos Position) int {
	if d == nil || len(d.Lines) == 0 {
		return 0
	}
	line := int(pos.Line)
	if line >= len(d.Lines) {
		return len(d.Content)
	}
	start, end := d.lineBounds(line)
	units := int(pos.Character)
	off := start
	for off < end && units > 0 {
		r, size := utf8.DecodeRuneInString(d.Content[off:end])
		units -= max(utf16.RuneLen(r), 1)
		if units < 0 {
			break
		}
		off += size
	}
	return off
}

// OffsetToPosition converts a byte offset to an LSP position.
func (d *Document) OffsetToPosition(offset int) Position {
	if d == nil || len(d.Lines) == 0 {
		return Position{}
	}
	offset = min(max(offset, 0), len(d.Content))

	// last line starting at or before offset
	lo := sort.SearchInts(d.Lines, offset+1) - 1
	units := 0
	for _, r := range d.Content[d.Lines[lo]:offset] {
		units += max(utf16.RuneLen(r), 1)
	}
	line, _ := safecast.Conv[uint32](lo)
	char, _ := safecast.Conv[uint32](units)
	return Position{Line: line, Character: char}
}

// LinePosToOffset converts a 1-based line and 1-based byte position, as
// carried by violations, to a byte offset.
func (d *Document) LinePosToOffset(line, pos int) int {
	if d == nil || line < 1 || line > len(d.Lines) {
		return len(d.Content)
	}
	start, end := d.lineBounds(line - 1)
	return min(start+max(pos-1, 0), end)
}

// LineEnd returns the byte offset of the end of a 0-based line, before its
// newline.
func (d *Document) LineEnd(line int) int {
	if d == nil || line < 0 || line >= len(d.Lines) {
		return len(d.Content)
	}
	_, end := d.lineBounds(line)
	return end
}

// GetLine returns the content of a 0-based line.
func (d *Document) GetLine(line int) string {
	if d == nil || line < 0 || line >= len(d.Lines) {
		return ""
	}
	start, end := d.lineBounds(line)
	return d.Content[start:end]
}

// WordAt returns the identifier-like word around offset.
func (d *Document) WordAt(offset int) (string, int, int) {
	offset = min(max(offset, 0), len(d.Content))
	start := offset
	for start > 0 && isWordChar(d.Content[start-1]) {
		start--
	}
	end := offset
	for end < len(d.Content) && isWordChar(d.Content[end]) {
		end++
	}
	return d.Content[start:end], start, end
}

// FullRange covers the whole document.
func (d *Document) FullRange() Range {
	return Range{Start: Position{}, End: d.OffsetToPosition(len(d.Content))}
}

func isWordChar(c byte) bool {
	return (c >= 'a' && c <= 'z') ||
		(c >= 'A' && c <= 'Z') ||
		(c >= '0' && c <= '9') ||
		c == '_'
}

// URIToPath converts a file:// URI to a file system path.
func URIToPath(uri string) string {
	u, err := url.Parse(uri)
	if err != nil || u.Scheme != "file" {
		return strings.TrimPrefix(uri, "file://")
	}
	return filepath.FromSlash(u.Path)
}

// PathToURI converts a file system path to a file:// URI.
func PathToURI(path string) string {
	if strings.HasPrefix(path, "file://") {
		return path
	}
	return (&url.URL{Scheme: "file", Path: filepath.ToSlash(path)}).String()
}
