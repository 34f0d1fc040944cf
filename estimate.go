package sapling

import "math"

/*
RelativeFrequency takes the number of positive examples and the number
of all examples and returns the relative frequency of the positives.
*/
func RelativeFrequency(positives, all int) float64 {
	return float64(positives) / float64(all)
}

/*
LaplaceEstimate takes the number of positive examples, the number of all
examples and the number of possible outcomes and returns the Laplace
probability estimate p = (r+1)/(n+k).
*/
func LaplaceEstimate(positives, all, outcomes int) float64 {
	return float64(positives+1) / float64(all+outcomes)
}

/*
MEstimate takes the number of positive examples, the number of all
examples, an apriori probability and a trust parameter m and returns the
m-estimate p = (r+m*p0)/(n+m). A trust parameter of 2 is the customary
default.
*/
func MEstimate(positives, all int, apriori float64, m int) float64 {
	return (float64(positives) + apriori*float64(m)) / float64(all+m)
}

/*
HoeffdingBound takes the range r of a split heuristic, the number n of
observations it was estimated from and an error tolerance delta, and
returns the bound epsilon such that with probability 1-delta the true
mean of the heuristic lies within epsilon of its estimate.
*/
func HoeffdingBound(r float64, n int, delta float64) float64 {
	return math.Sqrt(r * r * math.Log(1.0/delta) / (2.0 * float64(n)))
}

// entropyOf returns the entropy, in bits, of the distribution given by
// the counts slice. n must be the sum of the counts.
func entropyOf(counts []int, n int) float64 {
	if n == 0 {
		return 0.0
	}
	var result float64
	for _, c := range counts {
		if c > 0 {
			p := float64(c) / float64(n)
			result -= p * math.Log2(p)
		}
	}
	return result
}

// giniOf returns the Gini impurity of the distribution given by the
// counts slice. n must be the sum of the counts.
func giniOf(counts []int, n int) float64 {
	if n == 0 {
		return 0.0
	}
	result := 1.0
	for _, c := range counts {
		p := float64(c) / float64(n)
		result -= p * p
	}
	return result
}

// varianceOf computes a variance from the sufficient statistics: the
// sum of squared values, the sum of values and the number of values.
func varianceOf(sqSum, sum float64, n int) float64 {
	if n == 0 {
		return 0.0
	}
	mean := sum / float64(n)
	v := sqSum/float64(n) - mean*mean
	if v < 0 {
		return 0.0
	}
	return v
}

// stdDevOf computes a standard deviation from the same sufficient
// statistics as varianceOf.
func stdDevOf(sqSum, sum float64, n int) float64 {
	return math.Sqrt(varianceOf(sqSum, sum, n))
}

/*
welfordStat accumulates a running mean and sum of squared deviations
over a sequence of float64 values using Welford's recurrence, so that
values can also be removed by reversing it.
*/
type welfordStat struct {
	count  int
	mean   float64
	varSum float64
	sum    float64
}

func (w *welfordStat) add(x float64) {
	w.count++
	delta := x - w.mean
	w.sum += x
	w.mean += delta / float64(w.count)
	w.varSum += delta * (x - w.mean)
}

func (w *welfordStat) remove(x float64) {
	w.count--
	if w.count == 0 {
		w.mean = 0.0
		w.varSum = 0.0
		w.sum = 0.0
		return
	}
	delta := x - w.mean
	w.mean -= delta / float64(w.count)
	w.varSum -= delta * (x - w.mean)
	w.sum -= x
}

// variance returns the (biased) variance of the accumulated values.
// The unbiased estimator would divide by count-1 instead; splits use
// the biased form.
func (w *welfordStat) variance() float64 {
	if w.count == 0 {
		return 0.0
	}
	v := w.varSum / float64(w.count)
	if v < 0 {
		return 0.0
	}
	return v
}

func (w *welfordStat) stdDev() float64 {
	return math.Sqrt(w.variance())
}

// sqSum reconstructs the sum of squared values from the accumulated
// statistics, for combining partial aggregates.
func (w *welfordStat) sqSum() float64 {
	if w.count == 0 {
		return 0.0
	}
	return w.varSum + w.sum*w.sum/float64(w.count)
}
