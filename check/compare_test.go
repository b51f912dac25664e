package check

import (
	"math"
	"testing"
)

func TestWithinTolerance(t *testing.T) {
	tests := []struct {
		name      string
		expected  float64
		actual    float64
		tolerance float64
		want      bool
	}{
		{"half percent under one percent", 1000, 1005, 1, true},
		{"five percent over one percent", 1000, 1050, 1, false},
		{"exactly on the boundary", 1000, 1010, 1, true},
		{"just over the boundary", 1000, 1010.01, 1, false},
		{"zero tolerance equal", 42, 42, 0, true},
		{"zero tolerance differ", 42, 43, 0, false},
		{"expected zero uses a floor of one", 0, 0.5, 50, true},
		{"expected zero over the floor", 0, 2, 50, false},
		{"negative expected", -200, -202, 1, true},
		{"actual below expected", 1000, 950, 5, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := WithinTolerance(tt.expected, tt.actual, tt.tolerance); got != tt.want {
				t.Errorf("WithinTolerance(%v, %v, %v) = %v, want %v", tt.expected, tt.actual, tt.tolerance, got, tt.want)
			}
		})
	}
}

func TestWithinTolerance_IdenticalAlwaysPasses(t *testing.T) {
	for _, v := range []float64{0, 1, -1, 999999, 0.0001, -123.45} {
		for _, tol := range []float64{0, 0.001, 1, 100} {
			if !WithinTolerance(v, v, tol) {
				t.Errorf("WithinTolerance(%v, %v, %v) = false", v, v, tol)
			}
		}
	}
}

func TestWithinTolerance_MatchesRelDiff(t *testing.T) {
	pairs := [][2]float64{{1000, 1005}, {1000, 1050}, {3, 7}, {0.2, 0.9}, {-50, 10}, {12345, 12000}}
	for _, p := range pairs {
		for _, tol := range []float64{0, 0.5, 1, 5, 10, 300} {
			want := RelDiff(p[0], p[1]) <= tol+1e-9
			if got := WithinTolerance(p[0], p[1], tol); got != want {
				t.Errorf("pair %v tol %v: WithinTolerance=%v, RelDiff=%v", p, tol, got, RelDiff(p[0], p[1]))
			}
		}
	}
}

func TestCompare(t *testing.T) {
	abs, rel, pass := Compare(1000, 1005, 1)
	if abs != 5 || math.Abs(rel-0.5) > 1e-9 || !pass {
		t.Fatalf("Compare(1000, 1005, 1) = %v, %v, %v", abs, rel, pass)
	}
	abs, rel, pass = Compare(1000, 1050, 1)
	if abs != 50 || math.Abs(rel-5) > 1e-9 || pass {
		t.Fatalf("Compare(1000, 1050, 1) = %v, %v, %v", abs, rel, pass)
	}
}
