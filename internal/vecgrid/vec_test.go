package vecgrid

import (
	"math"
	"testing"
)

func TestLinspaceEndpoints(t *testing.T) {
	cases := []struct {
		a, b float64
		n    int
	}{
		{0, 1, 2},
		{-5, 5, 11},
		{2, 2, 4},
		{1, 100, 50},
	}
	for _, c := range cases {
		v := Linspace(c.a, c.b, c.n)
		if len(v) != c.n {
			t.Fatalf("linspace(%v,%v,%d): len=%d", c.a, c.b, c.n, len(v))
		}
		if v[0] != c.a {
			t.Fatalf("linspace(%v,%v,%d): start=%v want=%v", c.a, c.b, c.n, v[0], c.a)
		}
		if v[c.n-1] != c.b {
			t.Fatalf("linspace(%v,%v,%d): end=%v want=%v", c.a, c.b, c.n, v[c.n-1], c.b)
		}
		for i := 1; i < len(v); i++ {
			if c.a < c.b && v[i] < v[i-1] {
				t.Fatalf("linspace not monotone increasing at %d", i)
			}
			if c.a > c.b && v[i] > v[i-1] {
				t.Fatalf("linspace not monotone decreasing at %d", i)
			}
		}
	}
}

func TestMinMaxEmpty(t *testing.T) {
	min, max := MinMax(Vec[float64]{})
	if !math.IsInf(float64(min), 1) || !math.IsInf(float64(max), -1) {
		t.Fatalf("minmax(empty)=(%v,%v) want=(+Inf,-Inf)", min, max)
	}
}

func TestMinMax(t *testing.T) {
	min, max := MinMax(Vec[float64]{3, -1, 4, 1, 5, 9, -2})
	if min != -2 || max != 9 {
		t.Fatalf("minmax=(%v,%v) want=(-2,9)", min, max)
	}
}

func TestNormalizeConstant(t *testing.T) {
	out := Normalize(Vec[float64]{5, 5, 5})
	for i, x := range out {
		if x != 0 {
			t.Fatalf("normalize(constant)[%d]=%v want=0", i, x)
		}
	}
}

func TestNormalizeRange(t *testing.T) {
	out := Normalize(Vec[float64]{0, 5, 10})
	want := Vec[float64]{0, 0.5, 1}
	for i := range out {
		if out[i] != want[i] {
			t.Fatalf("normalize[%d]=%v want=%v", i, out[i], want[i])
		}
	}
}

func TestConcatPreservesOrderAndLength(t *testing.T) {
	a := Vec[float64]{1, 2}
	b := Vec[float64]{3}
	c := Vec[float64]{4, 5, 6}
	got := Concat(a, b, c)
	want := Vec[float64]{1, 2, 3, 4, 5, 6}
	if len(got) != len(want) {
		t.Fatalf("concat len=%d want=%d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("concat[%d]=%v want=%v", i, got[i], want[i])
		}
	}
}

func TestElementwiseArithmetic(t *testing.T) {
	a := Vec[float64]{1, 2, 3}
	b := Vec[float64]{4, 5, 6}

	if got, want := Add(a, b), (Vec[float64]{5, 7, 9}); !vecEqual(got, want) {
		t.Fatalf("Add=%v want=%v", got, want)
	}
	if got, want := Sub(a, b), (Vec[float64]{-3, -3, -3}); !vecEqual(got, want) {
		t.Fatalf("Sub=%v want=%v", got, want)
	}
	if got, want := Mul(a, b), (Vec[float64]{4, 10, 18}); !vecEqual(got, want) {
		t.Fatalf("Mul=%v want=%v", got, want)
	}
	if got, want := Scale(a, 2.0), (Vec[float64]{2, 4, 6}); !vecEqual(got, want) {
		t.Fatalf("Scale=%v want=%v", got, want)
	}
}

func TestElementwiseArithmeticInPlace(t *testing.T) {
	a := Vec[float64]{1, 2, 3}.Copy()
	AddInPlace(a, Vec[float64]{1, 1, 1})
	if want := (Vec[float64]{2, 3, 4}); !vecEqual(a, want) {
		t.Fatalf("AddInPlace=%v want=%v", a, want)
	}

	a = Vec[float64]{1, 2, 3}.Copy()
	SubInPlace(a, Vec[float64]{1, 1, 1})
	if want := (Vec[float64]{0, 1, 2}); !vecEqual(a, want) {
		t.Fatalf("SubInPlace=%v want=%v", a, want)
	}

	a = Vec[float64]{1, 2, 3}.Copy()
	MulInPlace(a, Vec[float64]{2, 2, 2})
	if want := (Vec[float64]{2, 4, 6}); !vecEqual(a, want) {
		t.Fatalf("MulInPlace=%v want=%v", a, want)
	}

	a = Vec[float64]{1, 2, 3}.Copy()
	ScaleInPlace(a, 3.0)
	if want := (Vec[float64]{3, 6, 9}); !vecEqual(a, want) {
		t.Fatalf("ScaleInPlace=%v want=%v", a, want)
	}
}

func vecEqual(a, b Vec[float64]) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestGrid2BilinearCorners(t *testing.T) {
	g := NewGrid2[float64](2, 2)
	g.Set(0, 0, 0)
	g.Set(1, 0, 1)
	g.Set(0, 1, 2)
	g.Set(1, 1, 3)

	if got := g.BilinearAt(0, 0, 0, 0); got != 0 {
		t.Fatalf("corner(0,0)=%v want=0", got)
	}
	if got := g.BilinearAt(0, 0, 1, 1); got != 3 {
		t.Fatalf("corner(1,1)=%v want=3", got)
	}
	if got := g.BilinearAt(0, 0, 0.5, 0.5); got != 1.5 {
		t.Fatalf("center=%v want=1.5", got)
	}
}
