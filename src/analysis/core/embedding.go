package core

// -----------------------------------------------------------------------------

// TimeDelayEmbedding maps a scalar sequence into a point cloud in R^dim by
// stacking lagged samples: point i = (x[i], x[i+delay], ..., x[i+(dim-1)*delay]).
// The cloud has len(series) - (dim-1)*delay points; nil when the series is
// too short. dim and delay are configuration parameters, never derived.
func TimeDelayEmbedding(series []float64, dim, delay int) [][]float64 {
	if dim < 1 || delay < 1 {
		return nil
	}

	span := (dim - 1) * delay
	n := len(series) - span
	if n <= 0 {
		return nil
	}

	cloud := make([][]float64, n)
	for i := 0; i < n; i++ {
		point := make([]float64, dim)
		for j := 0; j < dim; j++ {
			point[j] = series[i+j*delay]
		}
		cloud[i] = point
	}
	return cloud
}

// -----------------------------------------------------------------------------

// DistinctPoints counts the number of distinct points in a cloud.
// A window of constant returns collapses to a single point and carries
// no topological structure.
func DistinctPoints(cloud [][]float64) int {
	distinct := 0
	for i := range cloud {
		dup := false
		for j := 0; j < i; j++ {
			if equalPoints(cloud[i], cloud[j]) {
				dup = true
				break
			}
		}
		if !dup {
			distinct++
		}
	}
	return distinct
}

func equalPoints(a, b []float64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
