// Package vecgrid implements the dense 1-D and 2-D numeric buffers that the
// rest of marigraph is built on: linspace construction, min/max scans,
// element-wise arithmetic, and bilinear grid access.
package vecgrid

import (
	"math"

	"golang.org/x/exp/constraints"
)

// Number is the set of floating-point types a Vec can hold: float64 for
// computation and float32 for wire/display buffers.
type Number interface {
	constraints.Float
}

// Vec is a dense, contiguous sequence of numbers.
type Vec[T Number] []T

// New allocates a zeroed Vec of length n.
func New[T Number](n int) Vec[T] {
	return make(Vec[T], n)
}

// Linspace returns n values from a to b inclusive, strictly monotone, with
// endpoints exactly a and b. n must be at least 2.
func Linspace[T Number](a, b T, n int) Vec[T] {
	if n < 2 {
		if n == 1 {
			return Vec[T]{a}
		}
		return Vec[T]{}
	}
	out := make(Vec[T], n)
	out[0] = a
	out[n-1] = b
	step := (b - a) / T(n-1)
	for i := 1; i < n-1; i++ {
		out[i] = a + step*T(i)
	}
	return out
}

// MinMax performs a single pass and returns (+Inf, -Inf) for an empty input.
func MinMax[T Number](v Vec[T]) (min, max T) {
	min = T(math.Inf(1))
	max = T(math.Inf(-1))
	for _, x := range v {
		if x < min {
			min = x
		}
		if x > max {
			max = x
		}
	}
	return min, max
}

// Normalize rescales v into [0,1]. If max == min every output is 0.
func Normalize[T Number](v Vec[T]) Vec[T] {
	min, max := MinMax(v)
	out := make(Vec[T], len(v))
	if max == min {
		return out
	}
	span := max - min
	for i, x := range v {
		out[i] = (x - min) / span
	}
	return out
}

// Concat returns a fresh buffer containing the parts in order.
func Concat[T Number](parts ...Vec[T]) Vec[T] {
	total := 0
	for _, p := range parts {
		total += len(p)
	}
	out := make(Vec[T], 0, total)
	for _, p := range parts {
		out = append(out, p...)
	}
	return out
}

// Copy returns a fresh copy of v.
func (v Vec[T]) Copy() Vec[T] {
	out := make(Vec[T], len(v))
	copy(out, v)
	return out
}

// Add returns a fresh vector a+b. Panics if lengths differ.
func Add[T Number](a, b Vec[T]) Vec[T] {
	out := make(Vec[T], len(a))
	for i := range a {
		out[i] = a[i] + b[i]
	}
	return out
}

// Sub returns a fresh vector a-b. Panics if lengths differ.
func Sub[T Number](a, b Vec[T]) Vec[T] {
	out := make(Vec[T], len(a))
	for i := range a {
		out[i] = a[i] - b[i]
	}
	return out
}

// Mul returns a fresh vector a*b element-wise. Panics if lengths differ.
func Mul[T Number](a, b Vec[T]) Vec[T] {
	out := make(Vec[T], len(a))
	for i := range a {
		out[i] = a[i] * b[i]
	}
	return out
}

// Scale returns a fresh vector v*k.
func Scale[T Number](v Vec[T], k T) Vec[T] {
	out := make(Vec[T], len(v))
	for i, x := range v {
		out[i] = x * k
	}
	return out
}

// AddInPlace adds b into a element-wise.
func AddInPlace[T Number](a, b Vec[T]) {
	for i := range a {
		a[i] += b[i]
	}
}

// SubInPlace subtracts b from a element-wise.
func SubInPlace[T Number](a, b Vec[T]) {
	for i := range a {
		a[i] -= b[i]
	}
}

// MulInPlace multiplies a by b element-wise.
func MulInPlace[T Number](a, b Vec[T]) {
	for i := range a {
		a[i] *= b[i]
	}
}

// ScaleInPlace multiplies a by k element-wise.
func ScaleInPlace[T Number](a Vec[T], k T) {
	for i := range a {
		a[i] *= k
	}
}
