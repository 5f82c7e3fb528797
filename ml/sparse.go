package ml

import "math"

// SparseVector holds the non-zero entries of one feature row, indices ascending.
type SparseVector struct {
	Indices []int
	Values  []float64
}

// Dot multiplies the row with a dense weight slice.
func (v SparseVector) Dot(weights []float64) float64 {
	sum := 0.0
	for k, idx := range v.Indices {
		sum += v.Values[k] * weights[idx]
	}
	return sum
}

// Norm returns the Euclidean norm.
func (v SparseVector) Norm() float64 {
	sum := 0.0
	for _, val := range v.Values {
		sum += val * val
	}
	return math.Sqrt(sum)
}

func (v SparseVector) Len() int {
	return len(v.Indices)
}
