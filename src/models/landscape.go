package models

import "math"

// -----------------------------------------------------------------------------
// Persistence diagram types (output of the topological summary routine)
// -----------------------------------------------------------------------------

// MPersistencePair is a single (birth, death) feature. Death may be +Inf
// for essential features (the everlasting connected component).
type MPersistencePair struct {
	Birth float64 `json:"birth"`
	Death float64 `json:"death"`
}

// IsFinite reports whether the pair has a finite death value.
func (p MPersistencePair) IsFinite() bool {
	return !math.IsInf(p.Death, 1)
}

// Persistence returns death - birth (lifetime of the feature).
func (p MPersistencePair) Persistence() float64 {
	return p.Death - p.Birth
}

// -----------------------------------------------------------------------------

// MPersistenceDiagram holds all pairs of one homology dimension.
type MPersistenceDiagram struct {
	Dimension int                `json:"dimension"`
	Pairs     []MPersistencePair `json:"pairs"`
}

// -----------------------------------------------------------------------------
// Landscape series types (output of the sliding-window pipeline)
// -----------------------------------------------------------------------------

// MLandscapePoint is the landscape summary of one sliding window,
// anchored at the window's end date. Vector has length levels*resolution.
type MLandscapePoint struct {
	EndDate string    `json:"end_date"`
	Vector  []float64 `json:"vector"`
	NormL1  float64   `json:"norm_l1"`
	NormL2  float64   `json:"norm_l2"`
}

// -----------------------------------------------------------------------------

// MLandscapeSeries is the full landscape time series for one index.
type MLandscapeSeries struct {
	Symbol     string            `json:"symbol"`
	Window     int               `json:"window"`
	Levels     int               `json:"levels"`
	Resolution int               `json:"resolution"`
	DomainMin  float64           `json:"domain_min"`
	DomainMax  float64           `json:"domain_max"`
	Points     []MLandscapePoint `json:"points"`
}

// -----------------------------------------------------------------------------

// SliceLevel returns a copy of the series reduced to one level: every
// point keeps only that level's resolution samples, with norms
// recomputed over the slice. A level outside [0, Levels) returns the
// series unchanged.
func (s *MLandscapeSeries) SliceLevel(level int) MLandscapeSeries {
	if level < 0 || level >= s.Levels {
		return *s
	}

	out := MLandscapeSeries{
		Symbol:     s.Symbol,
		Window:     s.Window,
		Levels:     1,
		Resolution: s.Resolution,
		DomainMin:  s.DomainMin,
		DomainMax:  s.DomainMax,
	}
	for _, pt := range s.Points {
		start := level * s.Resolution
		end := start + s.Resolution
		if end > len(pt.Vector) {
			end = len(pt.Vector)
		}
		var vec []float64
		if start < len(pt.Vector) {
			vec = append([]float64(nil), pt.Vector[start:end]...)
		}
		var l1, l2 float64
		for _, v := range vec {
			l1 += math.Abs(v)
			l2 += v * v
		}
		out.Points = append(out.Points, MLandscapePoint{
			EndDate: pt.EndDate,
			Vector:  vec,
			NormL1:  l1,
			NormL2:  math.Sqrt(l2),
		})
	}
	return out
}

// -----------------------------------------------------------------------------

// Level extracts one landscape level as a plottable (date, value) series.
// The amplitude reported per end date is the level's maximum over its
// resolution samples, which is what the dashboard plots.
func (s *MLandscapeSeries) Level(level int) []MSeriesPoint {
	out := make([]MSeriesPoint, 0, len(s.Points))
	for _, pt := range s.Points {
		maxVal := 0.0
		start := level * s.Resolution
		for i := start; i < start+s.Resolution && i < len(pt.Vector); i++ {
			if pt.Vector[i] > maxVal {
				maxVal = pt.Vector[i]
			}
		}
		out = append(out, MSeriesPoint{Date: pt.EndDate, Value: maxVal})
	}
	return out
}
