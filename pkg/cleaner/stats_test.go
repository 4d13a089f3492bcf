// pkg/cleaner/stats_test.go
package cleaner

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMedian(t *testing.T) {
	assert.Equal(t, 2.0, median([]float64{1, 2, 3}))
	assert.Equal(t, 2.5, median([]float64{1, 2, 3, 4}))
	assert.Equal(t, 5.0, median([]float64{5}))
	assert.True(t, math.IsNaN(median(nil)))

	// Input order does not matter and the input is not mutated.
	values := []float64{3, 1, 2}
	assert.Equal(t, 2.0, median(values))
	assert.Equal(t, []float64{3, 1, 2}, values)
}

func TestQuantileLinearInterpolation(t *testing.T) {
	values := []float64{1, 2, 2, 3, 100}

	assert.Equal(t, 2.0, quantile(values, 0.25))
	assert.Equal(t, 3.0, quantile(values, 0.75))
	assert.Equal(t, 1.0, quantile(values, 0))
	assert.Equal(t, 100.0, quantile(values, 1))

	// Interpolated position: 0.5 * 3 = 1.5 between 1 and 2.
	assert.Equal(t, 1.5, quantile([]float64{1, 2, 3, 4}, 0.5))
	assert.True(t, math.IsNaN(quantile(nil, 0.5)))
}

func TestIQRBounds(t *testing.T) {
	lower, upper := iqrBounds([]float64{1, 2, 2, 3, 100})
	assert.Equal(t, 0.5, lower)
	assert.Equal(t, 4.5, upper)
}

func TestMeanStd(t *testing.T) {
	mean, std := meanStd([]float64{2, 4, 4, 4, 5, 5, 7, 9})
	assert.Equal(t, 5.0, mean)
	assert.Equal(t, 2.0, std)

	mean, std = meanStd([]float64{3, 3, 3})
	assert.Equal(t, 3.0, mean)
	assert.Equal(t, 0.0, std)

	mean, std = meanStd(nil)
	assert.Equal(t, 0.0, mean)
	assert.Equal(t, 0.0, std)
}
