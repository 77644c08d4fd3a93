package charts

import (
	"math/rand"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func assertPNG(t *testing.T, dir, name string) {
	t.Helper()
	raw, err := os.ReadFile(filepath.Join(dir, name+".png"))
	require.NoError(t, err)
	require.Greater(t, len(raw), 8)
	assert.Equal(t, []byte("\x89PNG\r\n\x1a\n"), raw[:8], "png signature")
}

func sampleValues(n int, seed int64) []float64 {
	rng := rand.New(rand.NewSource(seed))
	out := make([]float64, n)
	for i := range out {
		out[i] = rng.NormFloat64()*2 + 5
	}
	return out
}

func TestHistogram(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, Histogram(dir, "dist", sampleValues(100, 1), "Trip distance", "km"))
	assertPNG(t, dir, "dist")
}

func TestScatter(t *testing.T) {
	dir := t.TempDir()
	xs := sampleValues(50, 2)
	ys := sampleValues(50, 3)
	require.NoError(t, Scatter(dir, "xy", xs, ys, "y vs x", "x", "y"))
	assertPNG(t, dir, "xy")
}

func TestResiduals(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, Residuals(dir, "resid", sampleValues(40, 4), sampleValues(40, 5)))
	assertPNG(t, dir, "resid")
}

func TestQQ(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, QQ(dir, "qq", sampleValues(40, 6)))
	assertPNG(t, dir, "qq")

	assert.Error(t, QQ(dir, "empty", nil))
}

func TestImportance(t *testing.T) {
	dir := t.TempDir()
	labels := []string{"mean_temp_c", "mean_wind_mph", "mean_aerosol_index"}
	require.NoError(t, Importance(dir, "imp", labels, []float64{0.8, 0.2, 0.05}))
	assertPNG(t, dir, "imp")
}

func TestEnsureDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "plots", "nested")
	require.NoError(t, EnsureDir(dir))
	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}
