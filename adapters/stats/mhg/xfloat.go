package mhg

import "math"

// xfloat is a non-negative float64 mantissa in [0.5, 1) with a separate binary
// exponent. Running products of hypergeometric ratios stay representable far
// below the smallest subnormal float64; in the normal range every operation
// rounds exactly like the plain float64 one.
type xfloat struct {
	m float64
	e int
}

func newXfloat(f float64) xfloat {
	m, e := math.Frexp(f)
	return xfloat{m, e}
}

func (x xfloat) mul(f float64) xfloat {
	m, e := math.Frexp(x.m * f)
	if m == 0 {
		return xfloat{}
	}
	return xfloat{m, x.e + e}
}

func (x xfloat) add(y xfloat) xfloat {
	if y.m == 0 {
		return x
	}
	if x.m == 0 {
		return y
	}
	if x.e < y.e {
		x, y = y, x
	}
	m, e := math.Frexp(x.m + math.Ldexp(y.m, y.e-x.e))
	return xfloat{m, x.e + e}
}

// float converts back, flushing to 0 below the subnormal range.
func (x xfloat) float() float64 {
	return math.Ldexp(x.m, x.e)
}

func (x xfloat) less(y xfloat) bool {
	switch {
	case x.m == 0:
		return y.m > 0
	case y.m == 0:
		return false
	case x.e != y.e:
		return x.e < y.e
	}
	return x.m < y.m
}

func (x xfloat) equal(y xfloat, tol float64) bool {
	if x == y {
		return true
	}
	hi, lo := x, y
	if hi.less(lo) {
		hi, lo = lo, hi
	}
	return hi.m-math.Ldexp(lo.m, lo.e-hi.e) <= tol*hi.m
}
