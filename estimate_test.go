package sapling

import (
	"math"
	"math/rand"
	"testing"
)

func TestHoeffdingBoundPositiveAndShrinking(t *testing.T) {
	for _, r := range []float64{0.1, 1.0, math.Log2(3), 10.0} {
		for _, delta := range []float64{1e-7, 1e-3, 0.05, 0.5} {
			prev := math.Inf(1)
			for _, n := range []int{1, 2, 10, 100, 10000} {
				eps := HoeffdingBound(r, n, delta)
				if eps <= 0 {
					t.Errorf("expected epsilon(%v, %d, %v) to be positive, got %v", r, n, delta, eps)
				}
				if eps >= prev {
					t.Errorf("expected epsilon(%v, %d, %v)=%v to be below the bound for fewer observations %v", r, n, delta, eps, prev)
				}
				prev = eps
			}
		}
	}
}

func TestHoeffdingBoundValue(t *testing.T) {
	eps := HoeffdingBound(1.0, 1000, 1e-6)
	expected := math.Sqrt(math.Log(1e6) / 2000.0)
	if math.Abs(eps-expected) > 1e-12 {
		t.Errorf("expected epsilon to be %v, got %v", expected, eps)
	}
}

func TestLaplaceEstimate(t *testing.T) {
	if p := LaplaceEstimate(0, 0, 2); math.Abs(p-0.5) > 1e-12 {
		t.Errorf("expected Laplace estimate with no observations to be 0.5, got %v", p)
	}
	if p := LaplaceEstimate(3, 10, 2); math.Abs(p-4.0/12.0) > 1e-12 {
		t.Errorf("expected Laplace estimate to be 1/3, got %v", p)
	}
}

func TestMEstimate(t *testing.T) {
	if p := MEstimate(0, 0, 0.25, 2); math.Abs(p-0.25) > 1e-12 {
		t.Errorf("expected m-estimate with no observations to be the apriori 0.25, got %v", p)
	}
	if p := MEstimate(8, 10, 0.5, 2); math.Abs(p-9.0/12.0) > 1e-12 {
		t.Errorf("expected m-estimate to be 0.75, got %v", p)
	}
}

func TestRelativeFrequency(t *testing.T) {
	if p := RelativeFrequency(3, 4); math.Abs(p-0.75) > 1e-12 {
		t.Errorf("expected relative frequency to be 0.75, got %v", p)
	}
}

func TestEntropyOf(t *testing.T) {
	if e := entropyOf([]int{5, 5}, 10); math.Abs(e-1.0) > 1e-12 {
		t.Errorf("expected entropy of a balanced binary distribution to be 1 bit, got %v", e)
	}
	if e := entropyOf([]int{10, 0}, 10); e != 0.0 {
		t.Errorf("expected entropy of a pure distribution to be 0, got %v", e)
	}
	if e := entropyOf(nil, 0); e != 0.0 {
		t.Errorf("expected entropy of an empty distribution to be 0, got %v", e)
	}
}

func TestGiniOf(t *testing.T) {
	if g := giniOf([]int{5, 5}, 10); math.Abs(g-0.5) > 1e-12 {
		t.Errorf("expected Gini impurity of a balanced binary distribution to be 0.5, got %v", g)
	}
	if g := giniOf([]int{10, 0}, 10); math.Abs(g) > 1e-12 {
		t.Errorf("expected Gini impurity of a pure distribution to be 0, got %v", g)
	}
}

func TestWelfordMatchesTwoPass(t *testing.T) {
	r := rand.New(rand.NewSource(7))
	values := make([]float64, 1000)
	w := &welfordStat{}
	for i := range values {
		values[i] = r.Float64()*20.0 - 10.0
		w.add(values[i])
	}
	var sum float64
	for _, x := range values {
		sum += x
	}
	mean := sum / float64(len(values))
	var varSum float64
	for _, x := range values {
		varSum += (x - mean) * (x - mean)
	}
	if math.Abs(w.mean-mean) > 1e-9 {
		t.Errorf("expected incremental mean %v to match two-pass mean %v", w.mean, mean)
	}
	if math.Abs(w.variance()-varSum/float64(len(values))) > 1e-8 {
		t.Errorf("expected incremental variance %v to match two-pass variance %v", w.variance(), varSum/float64(len(values)))
	}
}

func TestWelfordRemoveReversesAdd(t *testing.T) {
	r := rand.New(rand.NewSource(11))
	w := &welfordStat{}
	for i := 0; i < 100; i++ {
		w.add(r.Float64())
	}
	mean, varSum, sum := w.mean, w.varSum, w.sum
	extra := []float64{0.123, 4.56, -7.89}
	for _, x := range extra {
		w.add(x)
	}
	for i := len(extra) - 1; i >= 0; i-- {
		w.remove(extra[i])
	}
	if math.Abs(w.mean-mean) > 1e-9 || math.Abs(w.varSum-varSum) > 1e-9 || math.Abs(w.sum-sum) > 1e-9 {
		t.Errorf("expected add-then-remove to restore (%v %v %v), got (%v %v %v)", mean, varSum, sum, w.mean, w.varSum, w.sum)
	}
}

func TestVarianceOfFromSufficientStats(t *testing.T) {
	// values 1, 2, 3: variance 2/3
	v := varianceOf(14.0, 6.0, 3)
	if math.Abs(v-2.0/3.0) > 1e-12 {
		t.Errorf("expected variance to be 2/3, got %v", v)
	}
}
