package analysis

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// OLSFit is a fitted ordinary-least-squares model with its diagnostics.
type OLSFit struct {
	Target     string
	Predictors []string
	Intercept  float64
	Coef       []float64 // aligned with Predictors
	R2         float64
	AdjR2      float64
	RMSE       float64
	Fitted     []float64
	Residuals  []float64
}

// FitOLS regresses y on the row-major predictor matrix X (with an implicit
// intercept) by QR least squares.
func FitOLS(target string, predictors []string, X [][]float64, y []float64) (*OLSFit, error) {
	n := len(y)
	p := len(predictors)
	if n == 0 || len(X) != n {
		return nil, fmt.Errorf("ols: %d observations vs %d predictor rows", n, len(X))
	}
	if n <= p+1 {
		return nil, fmt.Errorf("ols: %d observations cannot identify %d coefficients", n, p+1)
	}

	design := mat.NewDense(n, p+1, nil)
	for i, row := range X {
		if len(row) != p {
			return nil, fmt.Errorf("ols: row %d has %d values, want %d", i, len(row), p)
		}
		design.Set(i, 0, 1)
		for j, v := range row {
			design.Set(i, j+1, v)
		}
	}

	var beta mat.Dense
	if err := beta.Solve(design, mat.NewDense(n, 1, append([]float64(nil), y...))); err != nil {
		return nil, fmt.Errorf("ols: solve: %w", err)
	}

	fit := &OLSFit{
		Target:     target,
		Predictors: predictors,
		Intercept:  beta.At(0, 0),
		Coef:       make([]float64, p),
		Fitted:     make([]float64, n),
		Residuals:  make([]float64, n),
	}
	for j := 0; j < p; j++ {
		fit.Coef[j] = beta.At(j+1, 0)
	}

	for i, row := range X {
		pred := fit.Intercept
		for j, v := range row {
			pred += fit.Coef[j] * v
		}
		fit.Fitted[i] = pred
		fit.Residuals[i] = y[i] - pred
	}

	fit.R2 = R2(y, fit.Fitted)
	fit.AdjR2 = 1 - (1-fit.R2)*float64(n-1)/float64(n-p-1)
	fit.RMSE = RMSE(y, fit.Fitted)
	return fit, nil
}

// RMSE is the root mean squared error of predictions against observations.
func RMSE(y, yhat []float64) float64 {
	var sse float64
	for i := range y {
		d := y[i] - yhat[i]
		sse += d * d
	}
	return math.Sqrt(sse / float64(len(y)))
}

// R2 is the coefficient of determination. A constant target yields NaN.
func R2(y, yhat []float64) float64 {
	var mean float64
	for _, v := range y {
		mean += v
	}
	mean /= float64(len(y))

	var sse, sst float64
	for i := range y {
		d := y[i] - yhat[i]
		sse += d * d
		t := y[i] - mean
		sst += t * t
	}
	return 1 - sse/sst
}
