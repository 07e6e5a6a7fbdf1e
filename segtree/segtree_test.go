package segtree

import (
	"math"
	"math/rand"
	"testing"
)

func approxEqual(a, b, eps float64) bool {
	return math.Abs(a-b) <= eps
}

// TestSeedScenario1 reproduces spec §8 seed scenario 1 verbatim.
func TestSeedScenario1(t *testing.T) {
	tr := New[float64](4)
	tr.Update(1, 1.0)
	tr.Update(2, 2.0)
	tr.Update(3, 5.0)
	tr.Update(4, 2.0)

	if got := tr.Total(); !approxEqual(got, 10.0, 1e-12) {
		t.Fatalf("total() = %v, want 10.0", got)
	}

	cases := []struct {
		u       float64
		i       int
		w       float64
	}{
		{0, 1, 1.0},
		{0.999, 1, 1.0},
		{1.0, 2, 2.0},
		{7.999, 3, 5.0},
		{8.0, 4, 2.0},
	}
	for _, c := range cases {
		i, w, err := tr.Choose(c.u)
		if err != nil {
			t.Fatalf("choose(%v) returned error: %v", c.u, err)
		}
		if i != c.i || !approxEqual(w, c.w, 1e-12) {
			t.Errorf("choose(%v) = (%v,%v), want (%v,%v)", c.u, i, w, c.i, c.w)
		}
	}
}

func TestChooseOutOfRange(t *testing.T) {
	tr := New[float64](2)
	tr.Update(1, 3.0)
	if _, _, err := tr.Choose(-0.1); err == nil {
		t.Error("expected OutOfRange for negative u")
	}
	if _, _, err := tr.Choose(3.0); err == nil {
		t.Error("expected OutOfRange for u == total()")
	}
}

func TestGrowPreservesWeights(t *testing.T) {
	tr := New[float64](2)
	tr.Update(1, 1.0)
	tr.Update(2, 2.0)
	tr.Update(5, 9.0) // forces growth past offset=2

	if got := tr.Get(1); got != 1.0 {
		t.Errorf("slot 1 = %v after grow, want 1.0", got)
	}
	if got := tr.Get(2); got != 2.0 {
		t.Errorf("slot 2 = %v after grow, want 2.0", got)
	}
	if got := tr.Total(); !approxEqual(got, 12.0, 1e-9) {
		t.Errorf("total() = %v after grow, want 12.0", got)
	}
}

func TestPrefixBeforeMatchesRunningSum(t *testing.T) {
	tr := New[float64](8)
	weights := []float64{3, 0, 1, 4, 1, 5, 9, 2}
	for i, w := range weights {
		tr.Update(i+1, w)
	}
	var running float64
	for i, w := range weights {
		if got := tr.PrefixBefore(i + 1); !approxEqual(got, running, 1e-9) {
			t.Errorf("prefixBefore(%d) = %v, want %v", i+1, got, running)
		}
		running += w
	}
}

// TestDistributionLaw is property 4 of spec §8: empirical frequency
// converges to w_k/total().
func TestDistributionLaw(t *testing.T) {
	tr := New[float64](4)
	weights := []float64{1, 2, 3, 4}
	for i, w := range weights {
		tr.Update(i+1, w)
	}
	total := tr.Total()

	const n = 200000
	counts := make([]int, len(weights))
	rng := rand.New(rand.NewSource(1))
	for k := 0; k < n; k++ {
		u := rng.Float64() * total
		i, _, err := tr.Choose(u)
		if err != nil {
			t.Fatalf("choose(%v): %v", u, err)
		}
		counts[i-1]++
	}
	for i, w := range weights {
		want := w / total
		got := float64(counts[i]) / n
		if math.Abs(got-want) > 0.01 {
			t.Errorf("slot %d empirical freq %v, want ~%v", i+1, got, want)
		}
	}
}
