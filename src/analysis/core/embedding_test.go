package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// -----------------------------------------------------------------------------

func TestTimeDelayEmbeddingShape(t *testing.T) {
	series := []float64{1, 2, 3, 4, 5}

	cloud := TimeDelayEmbedding(series, 2, 1)
	require.Len(t, cloud, 4)
	assert.Equal(t, []float64{1, 2}, cloud[0])
	assert.Equal(t, []float64{4, 5}, cloud[3])

	cloud = TimeDelayEmbedding(series, 3, 2)
	require.Len(t, cloud, 1)
	assert.Equal(t, []float64{1, 3, 5}, cloud[0])
}

// -----------------------------------------------------------------------------

func TestTimeDelayEmbeddingTooShort(t *testing.T) {
	assert.Nil(t, TimeDelayEmbedding([]float64{1, 2}, 4, 1))
	assert.Nil(t, TimeDelayEmbedding(nil, 2, 1))
	assert.Nil(t, TimeDelayEmbedding([]float64{1, 2, 3}, 0, 1))
	assert.Nil(t, TimeDelayEmbedding([]float64{1, 2, 3}, 2, 0))
}

// -----------------------------------------------------------------------------

func TestDistinctPoints(t *testing.T) {
	constant := TimeDelayEmbedding([]float64{7, 7, 7, 7}, 2, 1)
	assert.Equal(t, 1, DistinctPoints(constant))

	varied := TimeDelayEmbedding([]float64{1, 2, 1, 2}, 2, 1)
	assert.Equal(t, 2, DistinctPoints(varied))

	assert.Equal(t, 0, DistinctPoints(nil))
}
