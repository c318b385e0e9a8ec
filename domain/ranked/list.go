// Package ranked holds the ranked binary list consumed by the XL-mHG engines.
//
// A list of length N is stored as the ascending, duplicate-free positions of its
// 1's. Positions are 16-bit, so N is limited to MaxLength.
package ranked

import (
	"fmt"
	"strings"

	"xlmhg/domain/core"
)

// MaxLength is the longest list whose positions fit into uint16.
const MaxLength = 1 << 16

// List is a ranked binary list of length N with ones at Indices.
type List struct {
	N       int
	Indices []uint16
}

// FromIndices validates indices and returns a list of length n.
// The slice is not copied.
func FromIndices(n int, indices []uint16) (*List, error) {
	if err := ValidateIndices(n, indices); err != nil {
		return nil, err
	}
	return &List{N: n, Indices: indices}, nil
}

// FromVector converts a dense 0/1 vector. Any non-zero entry counts as a 1.
func FromVector(v []uint8) (*List, error) {
	n := len(v)
	if n == 0 {
		return nil, core.ErrEmptyList
	}
	if n > MaxLength {
		return nil, core.NewListTooLongError(n, MaxLength)
	}
	indices := make([]uint16, 0, n/4+1)
	for i, x := range v {
		if x != 0 {
			indices = append(indices, uint16(i))
		}
	}
	return &List{N: n, Indices: indices}, nil
}

// Parse reads a list written as a string of '0' and '1' characters.
// Whitespace and commas are ignored.
func Parse(s string) (*List, error) {
	v := make([]uint8, 0, len(s))
	for i, r := range s {
		switch r {
		case '0':
			v = append(v, 0)
		case '1':
			v = append(v, 1)
		case ' ', '\t', '\n', '\r', ',':
		default:
			return nil, core.NewParameterError("list", fmt.Sprintf("%q at offset %d", r, i), "'0' or '1'")
		}
	}
	return FromVector(v)
}

// ValidateIndices checks that n is a valid length and that indices are strictly
// ascending and smaller than n.
func ValidateIndices(n int, indices []uint16) error {
	if n <= 0 {
		return core.ErrEmptyList
	}
	if n > MaxLength {
		return core.NewListTooLongError(n, MaxLength)
	}
	if len(indices) > n {
		return core.NewParameterError("K", len(indices), fmt.Sprintf("<= N=%d", n))
	}
	for i, idx := range indices {
		if int(idx) >= n {
			return core.NewIndicesError(i, fmt.Sprintf("index %d >= N=%d", idx, n))
		}
		if i > 0 && idx <= indices[i-1] {
			return core.NewIndicesError(i, fmt.Sprintf("index %d follows %d", idx, indices[i-1]))
		}
	}
	return nil
}

// K returns the number of 1's.
func (l *List) K() int {
	return len(l.Indices)
}

// W returns the number of 0's.
func (l *List) W() int {
	return l.N - len(l.Indices)
}

// Vector expands the list into a dense 0/1 vector.
func (l *List) Vector() []uint8 {
	v := make([]uint8, l.N)
	for _, idx := range l.Indices {
		v[idx] = 1
	}
	return v
}

// OnesBefore counts the 1's at positions < n.
func (l *List) OnesBefore(n int) int {
	k := 0
	for _, idx := range l.Indices {
		if int(idx) >= n {
			break
		}
		k++
	}
	return k
}

// String renders the list as a 0/1 string.
func (l *List) String() string {
	var b strings.Builder
	b.Grow(l.N)
	for _, x := range l.Vector() {
		b.WriteByte('0' + x)
	}
	return b.String()
}
