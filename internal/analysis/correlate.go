package analysis

import (
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// CorrelationMatrix computes the Pearson correlation matrix over every column
// of the dataset, in column order.
func CorrelationMatrix(d Dataset) *mat.SymDense {
	n := d.Len()
	k := len(d.Names)

	x := mat.NewDense(n, k, nil)
	for j, col := range d.cols {
		for i, v := range col {
			x.Set(i, j, v)
		}
	}

	var corr mat.SymDense
	stat.CorrelationMatrix(&corr, x, nil)
	return &corr
}
