package ranked

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"xlmhg/domain/core"
)

func paperVector() []uint8 {
	v := []uint8{1, 0, 1, 1, 0, 1}
	v = append(v, make([]uint8, 12)...)
	return append(v, 1, 0)
}

func TestFromVector_RoundTrip(t *testing.T) {
	v := paperVector()
	l, err := FromVector(v)
	require.NoError(t, err)

	assert.Equal(t, 20, l.N)
	assert.Equal(t, []uint16{0, 2, 3, 5, 18}, l.Indices)
	assert.Equal(t, 5, l.K())
	assert.Equal(t, 15, l.W())
	assert.Equal(t, v, l.Vector())
}

func TestFromVector_NonZeroIsOne(t *testing.T) {
	l, err := FromVector([]uint8{0, 7, 0, 255})
	require.NoError(t, err)
	assert.Equal(t, []uint16{1, 3}, l.Indices)
}

func TestFromVector_Errors(t *testing.T) {
	_, err := FromVector(nil)
	assert.ErrorIs(t, err, core.ErrEmptyList)

	_, err = FromVector(make([]uint8, MaxLength+1))
	assert.ErrorIs(t, err, core.ErrListTooLong)

	_, err = FromVector(make([]uint8, MaxLength))
	assert.NoError(t, err)
}

func TestFromIndices_Validation(t *testing.T) {
	_, err := FromIndices(20, []uint16{0, 2, 3, 5, 18})
	assert.NoError(t, err)

	cases := map[string]struct {
		n       int
		indices []uint16
		target  error
	}{
		"reversed":     {20, []uint16{18, 5, 3, 2, 0}, core.ErrInvalidIndices},
		"duplicate":    {20, []uint16{0, 2, 2, 5}, core.ErrInvalidIndices},
		"out of range": {20, []uint16{0, 20}, core.ErrInvalidIndices},
		"empty list":   {0, nil, core.ErrEmptyList},
		"too long":     {100006, []uint16{0}, core.ErrListTooLong},
		"too many":     {2, []uint16{0, 1, 2}, core.ErrInvalidParameter},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := FromIndices(tc.n, tc.indices)
			require.Error(t, err)
			assert.ErrorIs(t, err, tc.target)
			assert.True(t, core.IsParameterError(err))
		})
	}
}

func TestParse(t *testing.T) {
	l, err := Parse("101101 000000 000000 10")
	require.NoError(t, err)
	assert.Equal(t, []uint16{0, 2, 3, 5, 18}, l.Indices)
	assert.Equal(t, "10110100000000000010", l.String())

	_, err = Parse("10x1")
	assert.True(t, core.IsParameterError(err))
}

func TestOnesBefore(t *testing.T) {
	l, err := FromVector(paperVector())
	require.NoError(t, err)

	assert.Equal(t, 0, l.OnesBefore(0))
	assert.Equal(t, 1, l.OnesBefore(1))
	assert.Equal(t, 4, l.OnesBefore(6))
	assert.Equal(t, 5, l.OnesBefore(20))
}
