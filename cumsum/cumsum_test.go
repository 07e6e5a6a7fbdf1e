package cumsum

import (
	"math"
	"testing"
)

func approxEqual(a, b, eps float64) bool {
	return math.Abs(a-b) <= eps
}

// TestSeedScenario3 reproduces spec §8 seed scenario 3 verbatim.
func TestSeedScenario3(t *testing.T) {
	c := New[float64](5)
	c.Update(3, 7.0)
	c.Update(1, 1.0)

	if got := c.Total(); !approxEqual(got, 8.0, 1e-12) {
		t.Fatalf("total() = %v, want 8.0", got)
	}

	if i, w, err := c.Choose(0); err != nil || i != 1 || !approxEqual(w, 1.0, 1e-12) {
		t.Errorf("choose(0) = (%v,%v,%v), want (1,1.0,nil)", i, w, err)
	}
	if i, w, err := c.Choose(1.0); err != nil || i != 3 || !approxEqual(w, 7.0, 1e-12) {
		t.Errorf("choose(1.0) = (%v,%v,%v), want (3,7.0,nil)", i, w, err)
	}
}

func TestRefreshIsLazy(t *testing.T) {
	c := New[float64](4)
	c.Update(1, 1.0)
	c.Update(2, 2.0)
	if c.dirtyFrom > c.n {
		t.Fatal("dirtyFrom should not start clean after updates")
	}
	c.Refresh()
	if c.dirtyFrom != c.n+1 {
		t.Errorf("dirtyFrom after refresh = %v, want %v", c.dirtyFrom, c.n+1)
	}
}

func TestGrowPreservesWeights(t *testing.T) {
	c := New[float64](2)
	c.Update(1, 3.0)
	c.Update(2, 4.0)
	c.Update(6, 10.0)

	if got := c.Total(); !approxEqual(got, 17.0, 1e-9) {
		t.Errorf("total() = %v, want 17.0", got)
	}
}

func TestChooseOutOfRange(t *testing.T) {
	c := New[float64](3)
	c.Update(1, 5.0)
	if _, _, err := c.Choose(-1); err == nil {
		t.Error("expected OutOfRange for negative u")
	}
	if _, _, err := c.Choose(5.0); err == nil {
		t.Error("expected OutOfRange for u == total()")
	}
}
