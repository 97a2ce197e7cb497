package core

import (
	"math"
	"testing"

	"tda-observer/src/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// -----------------------------------------------------------------------------

func TestLandscapeSingleTent(t *testing.T) {
	diagram := models.MPersistenceDiagram{
		Dimension: 1,
		Pairs:     []models.MPersistencePair{{Birth: 0, Death: 2}},
	}

	vector := Landscape(diagram, 1, 5, 0, 2)
	require.Len(t, vector, 5)

	// Tent peaks at the midpoint with height (death-birth)/2
	assert.InDelta(t, 0.0, vector[0], 1e-12)
	assert.InDelta(t, 0.5, vector[1], 1e-12)
	assert.InDelta(t, 1.0, vector[2], 1e-12)
	assert.InDelta(t, 0.5, vector[3], 1e-12)
	assert.InDelta(t, 0.0, vector[4], 1e-12)
}

// -----------------------------------------------------------------------------

func TestLandscapeLevelsBeyondCardinality(t *testing.T) {
	diagram := models.MPersistenceDiagram{
		Dimension: 1,
		Pairs:     []models.MPersistencePair{{Birth: 0, Death: 2}},
	}

	vector := Landscape(diagram, 3, 4, 0, 2)
	require.Len(t, vector, 12)

	// Levels 1 and 2 have no second or third largest tent: all zero
	for i := 4; i < 12; i++ {
		assert.Zero(t, vector[i])
	}
}

// -----------------------------------------------------------------------------

func TestLandscapeSecondLevel(t *testing.T) {
	// Two overlapping tents; level 1 picks the smaller at the overlap
	diagram := models.MPersistenceDiagram{
		Dimension: 1,
		Pairs: []models.MPersistencePair{
			{Birth: 0, Death: 2},
			{Birth: 0, Death: 1},
		},
	}

	vector := Landscape(diagram, 2, 3, 0, 2)
	require.Len(t, vector, 6)

	// At t=1: tents are min(1, 1)=1 and min(1, 0)=0
	assert.InDelta(t, 1.0, vector[1], 1e-12) // level 0 at t=1
	assert.InDelta(t, 0.0, vector[4], 1e-12) // level 1 at t=1

	// At t=0.5 (not sampled) the second tent is 0.5; sample at t=0 and t=2 are 0
	assert.Zero(t, vector[3])
	assert.Zero(t, vector[5])
}

// -----------------------------------------------------------------------------

func TestLandscapeDegenerateInputs(t *testing.T) {
	// No finite pairs: zero vector, not an error
	infinite := models.MPersistenceDiagram{
		Dimension: 0,
		Pairs:     []models.MPersistencePair{{Birth: 0, Death: math.Inf(1)}},
	}
	vector := Landscape(infinite, 2, 4, 0, 1)
	assert.Equal(t, make([]float64, 8), vector)

	// Empty domain
	diagram := models.MPersistenceDiagram{
		Dimension: 1,
		Pairs:     []models.MPersistencePair{{Birth: 0, Death: 2}},
	}
	vector = Landscape(diagram, 2, 4, 1, 1)
	assert.Equal(t, make([]float64, 8), vector)

	// Empty diagram
	vector = Landscape(models.MPersistenceDiagram{}, 2, 4, 0, 1)
	assert.Equal(t, make([]float64, 8), vector)
}

// -----------------------------------------------------------------------------

func TestDiagramRange(t *testing.T) {
	diagram := models.MPersistenceDiagram{
		Pairs: []models.MPersistencePair{
			{Birth: 0.5, Death: 2},
			{Birth: 0.2, Death: 1},
			{Birth: 0.1, Death: math.Inf(1)},
		},
	}

	tmin, tmax, ok := DiagramRange(diagram)
	require.True(t, ok)
	assert.Equal(t, 0.2, tmin, "infinite pairs are excluded from the range")
	assert.Equal(t, 2.0, tmax)

	_, _, ok = DiagramRange(models.MPersistenceDiagram{})
	assert.False(t, ok)
}

// -----------------------------------------------------------------------------

func TestLandscapeNorms(t *testing.T) {
	l1, l2 := LandscapeNorms([]float64{0, 0.5, 1, 0.5, 0})
	assert.InDelta(t, 2.0, l1, 1e-12)
	assert.InDelta(t, math.Sqrt(1.5), l2, 1e-12)

	l1, l2 = LandscapeNorms(nil)
	assert.Zero(t, l1)
	assert.Zero(t, l2)
}
