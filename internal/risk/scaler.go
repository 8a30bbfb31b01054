package risk

import (
	"github.com/montanaflynn/stats"
)

// Scaler standardizes feature columns to zero mean and unit variance. It is
// fit only on training data and applied unchanged at scoring time.
type Scaler struct {
	Means []float64 `json:"means"`
	Stds  []float64 `json:"stds"`
}

// FitScaler computes per-column mean and population standard deviation.
// Constant columns get a std of 1 so transformed values stay finite.
func FitScaler(rows [][]float64) *Scaler {
	if len(rows) == 0 {
		return &Scaler{}
	}
	cols := len(rows[0])
	scaler := &Scaler{
		Means: make([]float64, cols),
		Stds:  make([]float64, cols),
	}

	column := make([]float64, len(rows))
	for j := 0; j < cols; j++ {
		for i, row := range rows {
			column[i] = row[j]
		}
		mean, _ := stats.Mean(column)
		std, _ := stats.StandardDeviationPopulation(column)
		if std == 0 {
			std = 1
		}
		scaler.Means[j] = mean
		scaler.Stds[j] = std
	}
	return scaler
}

// Transform standardizes one row.
func (s *Scaler) Transform(row []float64) []float64 {
	out := make([]float64, len(row))
	for j, v := range row {
		if j < len(s.Means) {
			out[j] = (v - s.Means[j]) / s.Stds[j]
		}
	}
	return out
}

// TransformAll standardizes every row.
func (s *Scaler) TransformAll(rows [][]float64) [][]float64 {
	out := make([][]float64, len(rows))
	for i, row := range rows {
		out[i] = s.Transform(row)
	}
	return out
}
