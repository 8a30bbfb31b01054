package risk

import (
	"math"

	"github.com/montanaflynn/stats"
)

// AnomalyDetector flags unusual usage/maintenance patterns independent of
// labeled condition. It scores a standardized row by its RMS z-distance from
// the training distribution; the decision value is positive for typical rows
// and negative for outliers, mirroring the sign convention of tree-based
// outlier detectors.
type AnomalyDetector struct {
	// Threshold is the 90th-percentile training distance, so roughly the
	// most distant tenth of the training set scores as anomalous.
	Threshold float64 `json:"threshold"`
}

// FitAnomalyDetector computes the decision threshold from the standardized
// training rows.
func FitAnomalyDetector(rows [][]float64) *AnomalyDetector {
	distances := make([]float64, len(rows))
	for i, row := range rows {
		distances[i] = rmsDistance(row)
	}
	threshold, err := stats.Percentile(distances, 90)
	if err != nil {
		threshold = 0
	}
	return &AnomalyDetector{Threshold: threshold}
}

// Decision returns threshold − distance: positive means typical, negative
// means anomalous.
func (d *AnomalyDetector) Decision(row []float64) float64 {
	return d.Threshold - rmsDistance(row)
}

func rmsDistance(row []float64) float64 {
	if len(row) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range row {
		sum += v * v
	}
	return math.Sqrt(sum / float64(len(row)))
}
