package core

import (
	"fmt"
	"math"
	"sort"

	"tda-observer/src/models"
)

// -----------------------------------------------------------------------------
// RipsPersistence computes persistence diagrams of a Vietoris-Rips
// filtration over a Euclidean point cloud. It is the default
// IPersistenceComputer used by the landscape pipeline; the pipeline only
// sees the diagram contract, so this implementation can be swapped out.
//
// Homology dimensions 0 and 1 are supported. The filtration is built up
// to MaxEdgeLength; with the default (the cloud diameter) every simplex
// of the 2-skeleton eventually enters, so all 1-cycles die and H1
// contains only finite pairs.
// -----------------------------------------------------------------------------

type RipsPersistence struct {
	// MaxEdgeLength caps the filtration. Zero means use the cloud diameter.
	MaxEdgeLength float64
}

// -----------------------------------------------------------------------------

func NewRipsPersistence() *RipsPersistence {
	return &RipsPersistence{}
}

// -----------------------------------------------------------------------------

type simplex struct {
	filt  float64
	dim   int
	verts [3]int // unused slots are -1
}

// -----------------------------------------------------------------------------

// ComputeDiagrams returns one diagram per homology dimension 0..maxDim.
// Zero-persistence pairs (birth == death) are dropped.
func (r *RipsPersistence) ComputeDiagrams(cloud [][]float64, maxDim int) ([]models.MPersistenceDiagram, error) {
	if maxDim < 0 || maxDim > 1 {
		return nil, fmt.Errorf("unsupported homology dimension %d (0 and 1 available)", maxDim)
	}

	diagrams := make([]models.MPersistenceDiagram, maxDim+1)
	for d := range diagrams {
		diagrams[d] = models.MPersistenceDiagram{Dimension: d}
	}

	n := len(cloud)
	if n == 0 {
		return diagrams, nil
	}
	pointDim := len(cloud[0])
	for _, p := range cloud {
		if len(p) != pointDim {
			return nil, fmt.Errorf("point cloud has mixed dimensions")
		}
	}

	// Pairwise distances
	dist := make([][]float64, n)
	diameter := 0.0
	for i := 0; i < n; i++ {
		dist[i] = make([]float64, n)
	}
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			d := euclidean(cloud[i], cloud[j])
			dist[i][j] = d
			dist[j][i] = d
			if d > diameter {
				diameter = d
			}
		}
	}

	threshold := r.MaxEdgeLength
	if threshold <= 0 {
		threshold = diameter
	}

	// Build the filtration: vertices at 0, edges at their length,
	// triangles at their longest edge.
	simplices := make([]simplex, 0, n)
	for i := 0; i < n; i++ {
		simplices = append(simplices, simplex{filt: 0, dim: 0, verts: [3]int{i, -1, -1}})
	}
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			if dist[i][j] <= threshold {
				simplices = append(simplices, simplex{filt: dist[i][j], dim: 1, verts: [3]int{i, j, -1}})
			}
		}
	}
	if maxDim >= 1 {
		for i := 0; i < n; i++ {
			for j := i + 1; j < n; j++ {
				if dist[i][j] > threshold {
					continue
				}
				for k := j + 1; k < n; k++ {
					if dist[i][k] > threshold || dist[j][k] > threshold {
						continue
					}
					f := math.Max(dist[i][j], math.Max(dist[i][k], dist[j][k]))
					simplices = append(simplices, simplex{filt: f, dim: 2, verts: [3]int{i, j, k}})
				}
			}
		}
	}

	// Filtration order: by value, faces before cofaces, then lexicographic
	// for determinism.
	sort.Slice(simplices, func(a, b int) bool {
		sa, sb := simplices[a], simplices[b]
		if sa.filt != sb.filt {
			return sa.filt < sb.filt
		}
		if sa.dim != sb.dim {
			return sa.dim < sb.dim
		}
		if sa.verts[0] != sb.verts[0] {
			return sa.verts[0] < sb.verts[0]
		}
		if sa.verts[1] != sb.verts[1] {
			return sa.verts[1] < sb.verts[1]
		}
		return sa.verts[2] < sb.verts[2]
	})

	index := make(map[[3]int]int, len(simplices))
	for i, s := range simplices {
		index[s.verts] = i
	}

	// Standard boundary-matrix reduction over Z/2.
	lowToCol := make(map[int]int)
	reduced := make(map[int][]int)
	isCreator := make([]bool, len(simplices))

	for j, s := range simplices {
		col := boundaryIndices(s, index)
		for len(col) > 0 {
			low := col[len(col)-1]
			k, claimed := lowToCol[low]
			if !claimed {
				break
			}
			col = symmetricDifference(col, reduced[k])
		}
		if len(col) == 0 {
			isCreator[j] = true
			continue
		}
		low := col[len(col)-1]
		lowToCol[low] = j
		reduced[j] = col
	}

	// Read pairs off the reduction. A creator paired with a destroyer
	// yields a finite bar; an unpaired creator is essential.
	for i, s := range simplices {
		if !isCreator[i] || s.dim > maxDim {
			continue
		}
		birth := s.filt
		death := math.Inf(1)
		if j, ok := lowToCol[i]; ok {
			death = simplices[j].filt
		}
		if death == birth {
			continue
		}
		diagrams[s.dim].Pairs = append(diagrams[s.dim].Pairs, models.MPersistencePair{
			Birth: birth,
			Death: death,
		})
	}

	return diagrams, nil
}

// -----------------------------------------------------------------------------

func boundaryIndices(s simplex, index map[[3]int]int) []int {
	switch s.dim {
	case 0:
		return nil
	case 1:
		b := []int{
			index[[3]int{s.verts[0], -1, -1}],
			index[[3]int{s.verts[1], -1, -1}],
		}
		sort.Ints(b)
		return b
	default:
		b := []int{
			index[[3]int{s.verts[0], s.verts[1], -1}],
			index[[3]int{s.verts[0], s.verts[2], -1}],
			index[[3]int{s.verts[1], s.verts[2], -1}],
		}
		sort.Ints(b)
		return b
	}
}

// -----------------------------------------------------------------------------

// symmetricDifference merges two sorted index slices mod 2.
func symmetricDifference(a, b []int) []int {
	out := make([]int, 0, len(a)+len(b))
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		switch {
		case a[i] < b[j]:
			out = append(out, a[i])
			i++
		case a[i] > b[j]:
			out = append(out, b[j])
			j++
		default:
			i++
			j++
		}
	}
	out = append(out, a[i:]...)
	out = append(out, b[j:]...)
	return out
}

// -----------------------------------------------------------------------------

func euclidean(a, b []float64) float64 {
	sum := 0.0
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return math.Sqrt(sum)
}
