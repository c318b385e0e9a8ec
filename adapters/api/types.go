package api

import (
	"math"

	"xlmhg/domain/stats"
)

// TestRequest is the body of POST /v1/tests. The list is given either as a
// 0/1 string, as a dense vector, or as its length plus the positions of its
// ones.
type TestRequest struct {
	List    string   `json:"list,omitempty"`
	Vector  []int    `json:"vector,omitempty"`
	N       int      `json:"n,omitempty"`
	Indices []uint16 `json:"indices,omitempty"`

	X            *int     `json:"x,omitempty"`
	L            *int     `json:"l,omitempty"`
	PValueThresh *float64 `json:"pval_thresh,omitempty"`
	Tol          *float64 `json:"tol,omitempty"`
	ExactPValue  string   `json:"exact_pval,omitempty"`
	Algorithm    string   `json:"algorithm,omitempty"`
	SkipPValue   bool     `json:"skip_pval,omitempty"`

	EScore             bool     `json:"escore,omitempty"`
	EScorePValueThresh *float64 `json:"escore_pval_thresh,omitempty"`
	EScoreTol          *float64 `json:"escore_tol,omitempty"`
}

// TestResponse reports one test. Undefined values are null.
type TestResponse struct {
	N       int      `json:"n"`
	K       int      `json:"k"`
	X       int      `json:"x"`
	L       int      `json:"l"`
	Stat    float64  `json:"stat"`
	Cutoff  int      `json:"cutoff"`
	CutoffK int      `json:"cutoff_k"`
	PValue  *float64 `json:"pval"`
	Source  string   `json:"pval_source"`
	EScore  *float64 `json:"escore,omitempty"`
	Hash    string   `json:"hash"`
	Warning string   `json:"warning,omitempty"`
}

// CurveResponse is the body returned by POST /v1/curves.
type CurveResponse struct {
	N       int        `json:"n"`
	K       int        `json:"k"`
	PValues []*float64 `json:"pvals"`
	Folds   []*float64 `json:"folds"`
}

// ErrorResponse wraps every error body.
type ErrorResponse struct {
	Error ErrorBody `json:"error"`
}

type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// NewTestResponse converts a test result; the E-score is left unset.
func NewTestResponse(r *stats.Result) *TestResponse {
	resp := &TestResponse{
		N:       r.N,
		K:       r.K(),
		X:       r.X,
		L:       r.L,
		Stat:    r.Stat,
		Cutoff:  r.Cutoff,
		CutoffK: r.CutoffK(),
		PValue:  optional(r.PValue),
		Source:  string(r.Source),
		Hash:    r.Hash().String(),
	}
	if r.Warning != nil {
		resp.Warning = r.Warning.Error()
	}
	return resp
}

// NewCurveResponse converts the curve of a list with n entries and k ones.
func NewCurveResponse(n, k int, c *stats.Curve) *CurveResponse {
	resp := &CurveResponse{
		N:       n,
		K:       k,
		PValues: make([]*float64, len(c.PValues)),
		Folds:   make([]*float64, len(c.Folds)),
	}
	for i := range c.PValues {
		resp.PValues[i] = optional(c.PValues[i])
		resp.Folds[i] = optional(c.Folds[i])
	}
	return resp
}

// optional maps NaN, which JSON cannot carry, to null.
func optional(v float64) *float64 {
	if math.IsNaN(v) {
		return nil
	}
	return &v
}
