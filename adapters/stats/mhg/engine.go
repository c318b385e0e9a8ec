package mhg

import (
	"xlmhg/domain/ranked"
	"xlmhg/domain/stats"
	"xlmhg/ports"
)

// EngineName identifies the recurrence backend.
const EngineName = "recurrence"

// Engine exposes the package functions as a ports.Engine.
type Engine struct{}

var _ ports.Engine = (*Engine)(nil)

func NewEngine() *Engine {
	return &Engine{}
}

func (e *Engine) Name() string {
	return EngineName
}

func (e *Engine) Stat(list *ranked.List, X, L int, tol float64) (float64, int, error) {
	if err := checkList(list); err != nil {
		return 0, 0, err
	}
	return StatIndices(list.Indices, list.N, X, L, tol)
}

func (e *Engine) PValue(alg stats.Algorithm, N, K, X, L int, stat float64, table *stats.Table, tol float64) (float64, error) {
	return PValue(alg, N, K, X, L, stat, table, tol)
}

func (e *Engine) Bound(N, K, X, L int, stat, tol float64) (float64, error) {
	return Bound(N, K, X, L, stat, tol)
}

func (e *Engine) EScore(list *ranked.List, X, L int, hgpThresh, tol float64) (float64, error) {
	if err := checkList(list); err != nil {
		return 0, err
	}
	return EScore(list.Indices, list.N, X, L, hgpThresh, tol)
}

func (e *Engine) Curve(list *ranked.List) (*stats.Curve, error) {
	if err := checkList(list); err != nil {
		return nil, err
	}
	return Curve(list.Indices, list.N)
}
