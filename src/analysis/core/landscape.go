package core

import (
	"math"

	"tda-observer/src/models"
)

// -----------------------------------------------------------------------------
// Persistence landscapes: the diagram is transformed into k piecewise-linear
// level functions sampled at m evenly spaced points over [tmin, tmax],
// flattened into a single k*m vector. Each (birth, death) pair contributes
// the tent function max(0, min(t - birth, death - t)); level L at t is the
// (L+1)-th largest tent value. Infinite pairs are excluded.
// -----------------------------------------------------------------------------

// DiagramRange returns the [min birth, max death] range over the finite
// pairs of a diagram. ok is false when the diagram has no finite pairs.
func DiagramRange(diagram models.MPersistenceDiagram) (tmin, tmax float64, ok bool) {
	tmin = math.Inf(1)
	tmax = math.Inf(-1)
	for _, p := range diagram.Pairs {
		if !p.IsFinite() {
			continue
		}
		if p.Birth < tmin {
			tmin = p.Birth
		}
		if p.Death > tmax {
			tmax = p.Death
		}
	}
	if tmax <= tmin {
		return 0, 0, false
	}
	return tmin, tmax, true
}

// -----------------------------------------------------------------------------

// Landscape samples `levels` landscape functions of a diagram at
// `resolution` points over [tmin, tmax] and returns the flattened vector
// of length levels*resolution. A diagram with no finite pairs, or an
// empty domain, yields the all-zero vector rather than an error.
func Landscape(diagram models.MPersistenceDiagram, levels, resolution int, tmin, tmax float64) []float64 {
	vector := make([]float64, levels*resolution)

	var finite []models.MPersistencePair
	for _, p := range diagram.Pairs {
		if p.IsFinite() && p.Death > p.Birth {
			finite = append(finite, p)
		}
	}
	if len(finite) == 0 || tmax <= tmin {
		return vector
	}

	step := (tmax - tmin) / float64(resolution-1)
	tents := make([]float64, len(finite))

	for s := 0; s < resolution; s++ {
		t := tmin + step*float64(s)

		for i, p := range finite {
			v := math.Min(t-p.Birth, p.Death-t)
			if v < 0 {
				v = 0
			}
			tents[i] = v
		}
		// Descending order: tents[L] is the value of level L at t
		sortDescending(tents)

		for level := 0; level < levels && level < len(tents); level++ {
			vector[level*resolution+s] = tents[level]
		}
	}

	return vector
}

// -----------------------------------------------------------------------------

// LandscapeNorms computes the L1 and L2 norms of a flattened landscape
// vector, the crash indicators tracked over time by the dashboard.
func LandscapeNorms(vector []float64) (l1, l2 float64) {
	for _, v := range vector {
		l1 += math.Abs(v)
		l2 += v * v
	}
	return l1, math.Sqrt(l2)
}

// -----------------------------------------------------------------------------

func sortDescending(vals []float64) {
	// Insertion sort: tent arrays are small and mostly sorted between
	// neighboring samples.
	for i := 1; i < len(vals); i++ {
		v := vals[i]
		j := i - 1
		for j >= 0 && vals[j] < v {
			vals[j+1] = vals[j]
			j--
		}
		vals[j+1] = v
	}
}
