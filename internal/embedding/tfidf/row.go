package tfidf

import "math"

// Row is a sparse vector with strictly ascending column indices.
type Row struct {
	Indices []int
	Values  []float64
}

// Len returns the number of non-zero entries.
func (r Row) Len() int { return len(r.Indices) }

// Dot returns the inner product of r and o. The sum is accumulated in column
// order so equal inputs always produce bit-identical scores.
func (r Row) Dot(o Row) float64 {
	sum := 0.0
	i, j := 0, 0
	for i < len(r.Indices) && j < len(o.Indices) {
		switch {
		case r.Indices[i] == o.Indices[j]:
			sum += r.Values[i] * o.Values[j]
			i++
			j++
		case r.Indices[i] < o.Indices[j]:
			i++
		default:
			j++
		}
	}
	return sum
}

// Norm returns the Euclidean norm of r.
func (r Row) Norm() float64 {
	sum := 0.0
	for _, v := range r.Values {
		sum += v * v
	}
	return math.Sqrt(sum)
}

// Dense expands r into a slice of length dim.
func (r Row) Dense(dim int) []float64 {
	vec := make([]float64, dim)
	for k, idx := range r.Indices {
		if idx < dim {
			vec[idx] = r.Values[k]
		}
	}
	return vec
}

// FromDense collects the non-zero entries of vec.
func FromDense(vec []float64) Row {
	var row Row
	for i, v := range vec {
		if v == 0 {
			continue
		}
		row.Indices = append(row.Indices, i)
		row.Values = append(row.Values, v)
	}
	return row
}

func (r *Row) normalize() {
	norm := r.Norm()
	if norm == 0 {
		return
	}
	for i := range r.Values {
		r.Values[i] /= norm
	}
}
