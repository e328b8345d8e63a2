package index

import "math"

// normalize scales v to unit L2 length in place.
// A zero vector is left untouched rather than divided by zero.
func normalize(v []float32) {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	if sum == 0 {
		return
	}
	norm := float32(math.Sqrt(sum))
	for i := range v {
		v[i] /= norm
	}
}

// Normalize scales v to unit L2 length in place. Query vectors must be
// normalized before being handed to a Strategy so inner product equals
// cosine similarity.
func Normalize(v []float32) {
	normalize(v)
}

// dot computes the inner product of two equal-length vectors.
func dot(a, b []float32) float64 {
	var sum float64
	for i := range a {
		sum += float64(a[i]) * float64(b[i])
	}
	return sum
}
