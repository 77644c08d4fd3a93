package analysis

import (
	"math/rand"
)

// TrainTestSplit shuffles row indices with the given seed and carves off the
// trailing fraction as the test set. The same (n, frac, seed) triple always
// produces the same split.
func TrainTestSplit(n int, testFrac float64, seed uint64) (train, test []int) {
	rng := rand.New(rand.NewSource(int64(seed)))
	perm := rng.Perm(n)

	nTest := int(float64(n)*testFrac + 0.5)
	if nTest >= n && n > 0 {
		nTest = n - 1
	}

	cut := n - nTest
	return perm[:cut], perm[cut:]
}

// Take gathers the indexed rows/values out of a split.
func Take[T any](values []T, idx []int) []T {
	out := make([]T, len(idx))
	for i, j := range idx {
		out[i] = values[j]
	}
	return out
}
