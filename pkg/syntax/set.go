package syntax

import (
	"math/bits"
	"strings"
)

// Set is a bitset of kinds. The zero value is an empty set ready to use.
type Set struct {
	words []uint64
}

// NewSet builds a set holding the given kinds.
func NewSet(kinds ...Kind) Set {
	var s Set
	for _, k := range kinds {
		s.Add(k)
	}
	return s
}

// Add inserts k.
func (s *Set) Add(k Kind) {
	w := int(k) / 64
	for len(s.words) <= w {
		s.words = append(s.words, 0)
	}
	s.words[w] |= 1 << (uint(k) % 64)
}

// Contains reports whether k is in the set.
func (s Set) Contains(k Kind) bool {
	w := int(k) / 64
	if w >= len(s.words) {
		return false
	}
	return s.words[w]&(1<<(uint(k)%64)) != 0
}

// ContainsAny reports whether any of kinds is in the set.
func (s Set) ContainsAny(kinds ...Kind) bool {
	for _, k := range kinds {
		if s.Contains(k) {
			return true
		}
	}
	return false
}

// Intersects reports whether the two sets share at least one kind.
func (s Set) Intersects(other Set) bool {
	n := min(len(s.words), len(other.words))
	for i := 0; i < n; i++ {
		if s.words[i]&other.words[i] != 0 {
			return true
		}
	}
	return false
}

// Union returns a new set holding the kinds of both.
func (s Set) Union(other Set) Set {
	n := max(len(s.words), len(other.words))
	out := Set{words: make([]uint64, n)}
	copy(out.words, s.words)
	for i, w := range other.words {
		out.words[i] |= w
	}
	return out
}

// Len returns the number of kinds in the set.
func (s Set) Len() int {
	n := 0
	for _, w := range s.words {
		n += bits.OnesCount64(w)
	}
	return n
}

// IsEmpty reports whether the set holds nothing.
func (s Set) IsEmpty() bool {
	for _, w := range s.words {
		if w != 0 {
			return false
		}
	}
	return true
}

// Slice returns the kinds in ascending order.
func (s Set) Slice() []Kind {
	out := make([]Kind, 0, s.Len())
	for i, w := range s.words {
		for w != 0 {
			b := bits.TrailingZeros64(w)
			out = append(out, Kind(i*64+b))
			w &^= 1 << uint(b)
		}
	}
	return out
}

func (s Set) String() string {
	kinds := s.Slice()
	names := make([]string, len(kinds))
	for i, k := range kinds {
		names[i] = k.String()
	}
	return "{" + strings.Join(names, ", ") + "}"
}
