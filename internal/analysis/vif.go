package analysis

import (
	"fmt"
	"math"
)

// VIF computes the variance-inflation factor for each predictor by regressing
// it on the remaining predictors: VIF = 1/(1−R²) of the auxiliary fit. A
// perfectly collinear predictor reports +Inf. Needs at least two predictors.
func VIF(predictors []string, X [][]float64) (map[string]float64, error) {
	p := len(predictors)
	if p < 2 {
		return nil, fmt.Errorf("vif: need at least 2 predictors, have %d", p)
	}

	out := make(map[string]float64, p)
	for j := 0; j < p; j++ {
		others := make([]string, 0, p-1)
		rows := make([][]float64, len(X))
		target := make([]float64, len(X))
		for k, name := range predictors {
			if k != j {
				others = append(others, name)
			}
		}
		for i, row := range X {
			rest := make([]float64, 0, p-1)
			for k, v := range row {
				if k == j {
					target[i] = v
					continue
				}
				rest = append(rest, v)
			}
			rows[i] = rest
		}

		aux, err := FitOLS(predictors[j], others, rows, target)
		if err != nil {
			return nil, fmt.Errorf("vif %s: %w", predictors[j], err)
		}
		if aux.R2 >= 1-1e-12 {
			out[predictors[j]] = math.Inf(1)
			continue
		}
		out[predictors[j]] = 1 / (1 - aux.R2)
	}
	return out, nil
}
