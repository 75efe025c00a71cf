package stats

import (
	"errors"

	mstats "github.com/montanaflynn/stats"
)

// ErrTooFewPoints is returned when a fit is requested on fewer than two points.
var ErrTooFewPoints = errors.New("at least two points are required")

// LinearFit is an ordinary least-squares line over x = 0..n-1.
type LinearFit struct {
	Slope     float64
	Intercept float64
	// RSquared is the coefficient of determination, clamped to [0,1].
	// It is 0 when the observations have no variance.
	RSquared float64
	N        int
}

// Predict evaluates the fitted line at x.
func (f LinearFit) Predict(x float64) float64 {
	return f.Intercept + f.Slope*x
}

// Next predicts the value one step past the last observation.
func (f LinearFit) Next() float64 {
	return f.Predict(float64(f.N))
}

// FitLine fits y against its index.
func FitLine(ys []float64) (LinearFit, error) {
	n := len(ys)
	if n < 2 {
		return LinearFit{}, ErrTooFewPoints
	}

	xs := make([]float64, n)
	for i := range xs {
		xs[i] = float64(i)
	}

	meanX, err := mstats.Mean(xs)
	if err != nil {
		return LinearFit{}, err
	}
	meanY, err := mstats.Mean(ys)
	if err != nil {
		return LinearFit{}, err
	}
	varX, err := mstats.PopulationVariance(xs)
	if err != nil {
		return LinearFit{}, err
	}
	covXY, err := mstats.CovariancePopulation(xs, ys)
	if err != nil {
		return LinearFit{}, err
	}

	fit := LinearFit{N: n}
	fit.Slope = covXY / varX
	fit.Intercept = meanY - fit.Slope*meanX

	var ssTot, ssRes float64
	for i, y := range ys {
		d := y - meanY
		ssTot += d * d
		r := y - fit.Predict(xs[i])
		ssRes += r * r
	}

	if ssTot > 0 {
		fit.RSquared = clamp(1-ssRes/ssTot, 0, 1)
	}

	return fit, nil
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
