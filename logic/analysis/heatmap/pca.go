package heatmap

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// Components is the fixed output dimensionality of every projection.
const Components = 3

// ErrProjection is recoverable: the affected dataset gets its placeholder.
var ErrProjection = errors.New("projection failed")

// Project reduces each row to its first three principal components. Rows
// narrower than three features are zero-padded. At least three rows are
// required.
func Project(rows [][]float64) ([][Components]float64, error) {
	n := len(rows)
	if n < Components {
		return nil, fmt.Errorf("%w: need at least %d samples, got %d", ErrProjection, Components, n)
	}
	d := len(rows[0])
	for i, r := range rows {
		if len(r) != d {
			return nil, fmt.Errorf("%w: row %d has %d features, want %d", ErrProjection, i, len(r), d)
		}
	}
	if d == 0 {
		return nil, fmt.Errorf("%w: empty feature vectors", ErrProjection)
	}
	width := max(d, Components)

	a := mat.NewDense(n, width, nil)
	for i, r := range rows {
		for j, v := range r {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return nil, fmt.Errorf("%w: non-finite value at (%d,%d)", ErrProjection, i, j)
			}
			a.Set(i, j, v)
		}
	}

	var pc stat.PC
	if ok := pc.PrincipalComponents(a, nil); !ok {
		return nil, fmt.Errorf("%w: decomposition did not converge", ErrProjection)
	}
	var vecs mat.Dense
	pc.VectorsTo(&vecs)
	if _, c := vecs.Dims(); c < Components {
		return nil, fmt.Errorf("%w: only %d components available", ErrProjection, c)
	}

	means := make([]float64, width)
	for j := range means {
		means[j] = stat.Mean(mat.Col(nil, j, a), nil)
	}
	var centered mat.Dense
	centered.Apply(func(_, j int, v float64) float64 { return v - means[j] }, a)

	var proj mat.Dense
	proj.Mul(&centered, vecs.Slice(0, width, 0, Components))

	out := make([][Components]float64, n)
	for i := range out {
		for k := 0; k < Components; k++ {
			v := proj.At(i, k)
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return nil, fmt.Errorf("%w: non-finite projection at row %d", ErrProjection, i)
			}
			out[i][k] = v
		}
	}
	return out, nil
}
