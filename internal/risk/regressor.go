package risk

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// RidgeRegressor is a linear regressor with L2 regularization, fit on
// standardized features via the normal equations. The regularization term
// keeps the system well-posed even with correlated feature columns.
type RidgeRegressor struct {
	Weights   []float64 `json:"weights"`
	Intercept float64   `json:"intercept"`
	Lambda    float64   `json:"lambda"`
}

// FitRidge solves (XᵀX + λI)w = Xᵀ(y − ȳ) with the intercept held out of
// the penalty.
func FitRidge(rows [][]float64, targets []float64, lambda float64) (*RidgeRegressor, error) {
	n := len(rows)
	if n == 0 || n != len(targets) {
		return nil, fmt.Errorf("ridge fit: %d rows, %d targets", n, len(targets))
	}
	p := len(rows[0])

	mean := 0.0
	for _, y := range targets {
		mean += y
	}
	mean /= float64(n)

	flat := make([]float64, 0, n*p)
	centered := make([]float64, n)
	for i, row := range rows {
		flat = append(flat, row...)
		centered[i] = targets[i] - mean
	}
	x := mat.NewDense(n, p, flat)

	var xtx mat.Dense
	xtx.Mul(x.T(), x)
	for i := 0; i < p; i++ {
		xtx.Set(i, i, xtx.At(i, i)+lambda)
	}

	xty := mat.NewVecDense(p, nil)
	xty.MulVec(x.T(), mat.NewVecDense(n, centered))

	var theta mat.VecDense
	if err := theta.SolveVec(&xtx, xty); err != nil {
		return nil, fmt.Errorf("ridge solve: %w", err)
	}

	weights := make([]float64, p)
	for i := range weights {
		weights[i] = theta.AtVec(i)
	}
	return &RidgeRegressor{Weights: weights, Intercept: mean, Lambda: lambda}, nil
}

// Predict returns the regression estimate for one standardized row.
func (r *RidgeRegressor) Predict(row []float64) float64 {
	sum := r.Intercept
	for i, w := range r.Weights {
		if i < len(row) {
			sum += w * row[i]
		}
	}
	return sum
}

// Importance returns the normalized absolute weight per column index. On
// standardized inputs the weight magnitudes are directly comparable.
func (r *RidgeRegressor) Importance() []float64 {
	total := 0.0
	for _, w := range r.Weights {
		total += math.Abs(w)
	}
	out := make([]float64, len(r.Weights))
	if total == 0 {
		return out
	}
	for i, w := range r.Weights {
		out[i] = math.Abs(w) / total
	}
	return out
}
