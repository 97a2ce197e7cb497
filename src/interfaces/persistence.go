package interfaces

import "tda-observer/src/models"

// -----------------------------------------------------------------------------
// IPersistenceComputer is the injected topological-summary capability.
// The pipeline only depends on this contract, so the underlying
// persistent-homology implementation can be swapped or stubbed in tests.
// -----------------------------------------------------------------------------

type IPersistenceComputer interface {

	// ComputeDiagrams takes a finite point cloud in R^d and returns one
	// persistence diagram per homology dimension 0..maxDim. Diagrams may
	// be empty; pairs with infinite death represent essential features.
	ComputeDiagrams(cloud [][]float64, maxDim int) ([]models.MPersistenceDiagram, error)
}
