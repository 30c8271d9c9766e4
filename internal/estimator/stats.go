package estimator

import "math"

// Aggregate computes the arithmetic mean and the population standard
// deviation (dividing by the sample count, not count-1) of the
// samples. An empty sample list yields (0, 0); the sampling loop's
// minimum-one-round rule means that case never arises in practice.
func Aggregate(samples []int64) (mean, stddev float64) {
	if len(samples) == 0 {
		return 0, 0
	}

	var sum float64
	for _, s := range samples {
		sum += float64(s)
	}
	mean = sum / float64(len(samples))

	var variance float64
	for _, s := range samples {
		delta := float64(s) - mean
		variance += delta * delta
	}
	variance /= float64(len(samples))

	return mean, math.Sqrt(variance)
}
