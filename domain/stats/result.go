package stats

import (
	"encoding/binary"
	"fmt"
	"math"
	"strconv"
	"strings"

	"xlmhg/domain/core"
	"xlmhg/domain/ranked"
)

// Result is the outcome of one XL-mHG test.
type Result struct {
	N       int      `json:"n"`
	Indices []uint16 `json:"indices"`
	X       int      `json:"x"`
	L       int      `json:"l"`

	Stat   float64      `json:"stat"`
	Cutoff int          `json:"cutoff"`
	PValue float64      `json:"pval"`
	Source PValueSource `json:"pval_source"`

	// Optional settings carried along for the E-score and the hash.
	PValueThresh       *float64 `json:"pval_thresh,omitempty"`
	EScorePValueThresh *float64 `json:"escore_pval_thresh,omitempty"`
	EScoreTol          *float64 `json:"escore_tol,omitempty"`

	// Warning wraps core.ErrInsufficientPrecision when float64 precision
	// limited the reported p-value.
	Warning error `json:"-"`
}

// K returns the number of 1's in the list.
func (r *Result) K() int {
	return len(r.Indices)
}

// CutoffK returns the number of 1's above the cutoff.
func (r *Result) CutoffK() int {
	return r.List().OnesBefore(r.Cutoff)
}

// List returns the tested list.
func (r *Result) List() *ranked.List {
	return &ranked.List{N: r.N, Indices: r.Indices}
}

// Vector expands the tested list into a dense vector.
func (r *Result) Vector() []uint8 {
	return r.List().Vector()
}

// Imprecise reports whether the p-value was limited by float64 precision.
func (r *Result) Imprecise() bool {
	return core.IsPrecisionError(r.Warning)
}

// Significant reports whether the p-value is at or below thresh, within tol.
func (r *Result) Significant(thresh, tol float64) bool {
	return r.PValue <= thresh || isClose(r.PValue, thresh, tol)
}

// Hash identifies the result by its parameters, outcome and list.
func (r *Result) Hash() core.Hash {
	fields := []string{
		strconv.Itoa(r.N), strconv.Itoa(r.K()), strconv.Itoa(r.X), strconv.Itoa(r.L),
		strconv.FormatFloat(r.Stat, 'g', -1, 64), strconv.Itoa(r.Cutoff),
		strconv.FormatFloat(r.PValue, 'g', -1, 64),
		optFloat(r.PValueThresh), optFloat(r.EScorePValueThresh),
	}
	data := []byte(strings.Join(fields, ";") + ";")
	for _, idx := range r.Indices {
		data = binary.LittleEndian.AppendUint16(data, idx)
	}
	return core.NewHash(data)
}

func (r *Result) String() string {
	return fmt.Sprintf("<Result (N=%d, K=%d, X=%d, L=%d, pval=%.1e)>", r.N, r.K(), r.X, r.L, r.PValue)
}

func optFloat(f *float64) string {
	if f == nil {
		return "None"
	}
	return strconv.FormatFloat(*f, 'g', -1, 64)
}

// isClose is the ratio test used by the engines' comparator.
func isClose(a, b, tol float64) bool {
	return a == b || math.Abs(a-b) <= tol*math.Max(math.Abs(a), math.Abs(b))
}
