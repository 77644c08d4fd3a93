package analysis

import (
	"fmt"
	"math"
	"math/rand"
	"sort"
)

// ForestConfig tunes the regression random forest.
type ForestConfig struct {
	Trees       int
	MaxDepth    int
	MinLeaf     int     // minimum samples per leaf
	FeatureFrac float64 // fraction of features considered per split
	Seed        uint64
}

// DefaultForestConfig returns the tuning used by the analysis stage.
func DefaultForestConfig() ForestConfig {
	return ForestConfig{
		Trees:       200,
		MaxDepth:    12,
		MinLeaf:     2,
		FeatureFrac: 1.0 / 3.0,
		Seed:        42,
	}
}

// Forest is a bagged ensemble of variance-minimizing regression trees.
// Predictions average the per-tree leaf means.
type Forest struct {
	trees     []*treeNode
	nFeatures int
}

type treeNode struct {
	leaf      bool
	value     float64
	feature   int
	threshold float64
	left      *treeNode
	right     *treeNode
}

// TrainForest fits a regression forest on the row-major matrix X and target y.
// Each tree sees a bootstrap resample and a random feature subset per split;
// the same config always yields the same forest.
func TrainForest(X [][]float64, y []float64, cfg ForestConfig) (*Forest, error) {
	n := len(y)
	if n == 0 || len(X) != n {
		return nil, fmt.Errorf("forest: %d observations vs %d rows", n, len(X))
	}
	if cfg.Trees <= 0 || cfg.MinLeaf <= 0 || cfg.MaxDepth <= 0 {
		return nil, fmt.Errorf("forest: non-positive tuning parameter")
	}

	p := len(X[0])
	mtry := int(math.Ceil(float64(p) * cfg.FeatureFrac))
	if mtry < 1 {
		mtry = 1
	}
	if mtry > p {
		mtry = p
	}

	rng := rand.New(rand.NewSource(int64(cfg.Seed)))
	f := &Forest{trees: make([]*treeNode, cfg.Trees), nFeatures: p}
	for t := 0; t < cfg.Trees; t++ {
		sample := make([]int, n)
		for i := range sample {
			sample[i] = rng.Intn(n)
		}
		f.trees[t] = growTree(X, y, sample, mtry, cfg.MaxDepth, cfg.MinLeaf, rng)
	}
	return f, nil
}

// Predict returns the forest's estimate for one feature vector.
func (f *Forest) Predict(x []float64) float64 {
	var sum float64
	for _, t := range f.trees {
		sum += t.predict(x)
	}
	return sum / float64(len(f.trees))
}

// PredictAll predicts every row of a row-major matrix.
func (f *Forest) PredictAll(X [][]float64) []float64 {
	out := make([]float64, len(X))
	for i, row := range X {
		out[i] = f.Predict(row)
	}
	return out
}

// PermutationImportance scores each feature by the RMSE increase when that
// feature's column is shuffled, against the unshuffled baseline. Larger is
// more important; near-zero (or negative) means the model never relied on it.
func (f *Forest) PermutationImportance(X [][]float64, y []float64, seed uint64) []float64 {
	baseline := RMSE(y, f.PredictAll(X))
	rng := rand.New(rand.NewSource(int64(seed)))

	out := make([]float64, f.nFeatures)
	for j := 0; j < f.nFeatures; j++ {
		perm := rng.Perm(len(X))
		shuffled := make([][]float64, len(X))
		for i, row := range X {
			r := append([]float64(nil), row...)
			r[j] = X[perm[i]][j]
			shuffled[i] = r
		}
		out[j] = RMSE(y, f.PredictAll(shuffled)) - baseline
	}
	return out
}

func (t *treeNode) predict(x []float64) float64 {
	for !t.leaf {
		if x[t.feature] <= t.threshold {
			t = t.left
		} else {
			t = t.right
		}
	}
	return t.value
}

func growTree(X [][]float64, y []float64, idx []int, mtry, maxDepth, minLeaf int, rng *rand.Rand) *treeNode {
	mean := meanAt(y, idx)
	if maxDepth == 0 || len(idx) < 2*minLeaf || constantAt(y, idx) {
		return &treeNode{leaf: true, value: mean}
	}

	feature, threshold, ok := bestSplit(X, y, idx, mtry, minLeaf, rng)
	if !ok {
		return &treeNode{leaf: true, value: mean}
	}

	var left, right []int
	for _, i := range idx {
		if X[i][feature] <= threshold {
			left = append(left, i)
		} else {
			right = append(right, i)
		}
	}

	return &treeNode{
		feature:   feature,
		threshold: threshold,
		left:      growTree(X, y, left, mtry, maxDepth-1, minLeaf, rng),
		right:     growTree(X, y, right, mtry, maxDepth-1, minLeaf, rng),
	}
}

// bestSplit scans a random feature subset for the threshold minimizing the
// summed squared error of the two children.
func bestSplit(X [][]float64, y []float64, idx []int, mtry, minLeaf int, rng *rand.Rand) (int, float64, bool) {
	p := len(X[0])
	features := rng.Perm(p)[:mtry]

	bestSSE := math.Inf(1)
	bestFeature, bestThreshold := -1, 0.0

	order := append([]int(nil), idx...)
	for _, j := range features {
		sortByFeature(order, X, j)

		// Prefix sums over the sorted order let every cut point be scored in
		// one pass.
		var sumL, sqL float64
		var sumR, sqR float64
		for _, i := range order {
			sumR += y[i]
			sqR += y[i] * y[i]
		}

		for k := 0; k < len(order)-1; k++ {
			i := order[k]
			sumL += y[i]
			sqL += y[i] * y[i]
			sumR -= y[i]
			sqR -= y[i] * y[i]

			nL, nR := k+1, len(order)-k-1
			if nL < minLeaf || nR < minLeaf {
				continue
			}
			// Identical feature values cannot be separated.
			if X[order[k]][j] == X[order[k+1]][j] {
				continue
			}

			sse := (sqL - sumL*sumL/float64(nL)) + (sqR - sumR*sumR/float64(nR))
			if sse < bestSSE {
				bestSSE = sse
				bestFeature = j
				bestThreshold = (X[order[k]][j] + X[order[k+1]][j]) / 2
			}
		}
	}

	return bestFeature, bestThreshold, bestFeature >= 0
}

func sortByFeature(idx []int, X [][]float64, j int) {
	sort.Slice(idx, func(a, b int) bool { return X[idx[a]][j] < X[idx[b]][j] })
}

func meanAt(y []float64, idx []int) float64 {
	var sum float64
	for _, i := range idx {
		sum += y[i]
	}
	return sum / float64(len(idx))
}

func constantAt(y []float64, idx []int) bool {
	for _, i := range idx[1:] {
		if y[i] != y[idx[0]] {
			return false
		}
	}
	return true
}
