package analysis

import (
	"math"
	"time"

	"tda-observer/src/analysis/core"
	"tda-observer/src/helpers"
	"tda-observer/src/interfaces"
	"tda-observer/src/logger"
	"tda-observer/src/models"
)

// -----------------------------------------------------------------------------
// Pipeline runs the sliding-window landscape computation: for every end
// date with a full window of returns behind it, embed the window, compute
// its persistence diagram through the injected computer, and reduce the
// diagram to a flattened landscape vector plus L1/L2 norms.
//
// The pipeline is stateless between windows: the result for an end date
// depends only on that window's returns and the fixed configuration, so
// any single entry can be recomputed independently.
// -----------------------------------------------------------------------------

type Pipeline struct {
	Config   *models.MConfig
	Computer interfaces.IPersistenceComputer
	Logger   *logger.Logger
}

// -----------------------------------------------------------------------------

func NewPipeline(cfg *models.MConfig, computer interfaces.IPersistenceComputer, log *logger.Logger) *Pipeline {
	return &Pipeline{
		Config:   cfg,
		Computer: computer,
		Logger:   log,
	}
}

// -----------------------------------------------------------------------------

// windowResult carries one window's diagram until the sampling domain is
// known (global mode needs every diagram before sampling any window).
type windowResult struct {
	endDate    string
	diagram    models.MPersistenceDiagram
	degenerate bool
}

// -----------------------------------------------------------------------------

// BuildLandscapeSeries computes the landscape time series for one index.
// A return series shorter than the window yields an empty series; windows
// with non-finite values are skipped; degenerate windows (fewer than two
// distinct embedded points) yield the all-zero vector.
func (p *Pipeline) BuildLandscapeSeries(symbol string, returns []models.MReturnPoint) (models.MLandscapeSeries, error) {
	cfg := p.Config.Pipeline
	series := models.MLandscapeSeries{
		Symbol:     symbol,
		Window:     cfg.Window,
		Levels:     cfg.Levels,
		Resolution: cfg.Resolution,
	}

	n := len(returns)
	w := cfg.Window
	if n < w {
		return series, nil
	}

	// Pass 1: persistence diagram per window
	results := make([]windowResult, 0, n-w+1)
	for t := w - 1; t < n; t++ {
		window := make([]float64, w)
		finite := true
		for i := 0; i < w; i++ {
			v := returns[t-w+1+i].LogReturn
			if math.IsNaN(v) || math.IsInf(v, 0) {
				finite = false
				break
			}
			window[i] = v
		}
		if !finite {
			p.Logger.Warning("Skipping window ending %s for %s: non-finite return", returns[t].Date, symbol)
			continue
		}

		cloud := core.TimeDelayEmbedding(window, cfg.EmbeddingDim, cfg.EmbeddingDelay)
		if core.DistinctPoints(cloud) < 2 {
			results = append(results, windowResult{endDate: returns[t].Date, degenerate: true})
			continue
		}

		diagrams, err := p.Computer.ComputeDiagrams(cloud, cfg.MaxHomologyDim)
		if err != nil {
			return series, helpers.NewPipelineError("persistence computation failed for "+symbol, err)
		}
		results = append(results, windowResult{
			endDate: returns[t].Date,
			diagram: p.selectDiagram(diagrams),
		})
	}

	// Pass 2: fix the sampling domain, then sample every window on it.
	// Global mode shares one domain across the whole series so landscape
	// amplitudes stay comparable over time; per-window mode rescales each
	// window to its own diagram range.
	if cfg.DomainMode == "global" {
		tmin, tmax := globalRange(results)
		series.DomainMin = tmin
		series.DomainMax = tmax
		for _, res := range results {
			series.Points = append(series.Points, p.samplePoint(res, tmin, tmax))
		}
	} else {
		for _, res := range results {
			tmin, tmax, _ := core.DiagramRange(res.diagram)
			series.Points = append(series.Points, p.samplePoint(res, tmin, tmax))
		}
	}

	return series, nil
}

// -----------------------------------------------------------------------------

// BuildAll runs the pipeline for every symbol and reports processing metrics.
func (p *Pipeline) BuildAll(returnsBySymbol map[string][]models.MReturnPoint) (map[string]models.MLandscapeSeries, models.MProcessingMetrics, error) {
	start := time.Now()
	out := make(map[string]models.MLandscapeSeries, len(returnsBySymbol))
	windows := 0

	for symbol, returns := range returnsBySymbol {
		series, err := p.BuildLandscapeSeries(symbol, returns)
		if err != nil {
			return nil, models.MProcessingMetrics{}, err
		}
		out[symbol] = series
		windows += len(series.Points)
	}

	metrics := models.MProcessingMetrics{
		PipelineTimeSeconds: time.Since(start).Seconds(),
		SymbolsProcessed:    len(out),
		WindowsProcessed:    windows,
	}
	p.Logger.Info("Pipeline processed %d windows for %d symbols in %.2fs",
		windows, len(out), metrics.PipelineTimeSeconds)
	return out, metrics, nil
}

// -----------------------------------------------------------------------------

// selectDiagram picks the homology dimension the landscape summarizes:
// H1 (loops) when computed, otherwise H0 with its essential bar excluded
// later by the landscape sampler.
func (p *Pipeline) selectDiagram(diagrams []models.MPersistenceDiagram) models.MPersistenceDiagram {
	dim := p.Config.Pipeline.MaxHomologyDim
	if dim < len(diagrams) {
		return diagrams[dim]
	}
	if len(diagrams) > 0 {
		return diagrams[len(diagrams)-1]
	}
	return models.MPersistenceDiagram{}
}

// -----------------------------------------------------------------------------

func (p *Pipeline) samplePoint(res windowResult, tmin, tmax float64) models.MLandscapePoint {
	cfg := p.Config.Pipeline
	var vector []float64
	if res.degenerate {
		vector = make([]float64, cfg.Levels*cfg.Resolution)
	} else {
		vector = core.Landscape(res.diagram, cfg.Levels, cfg.Resolution, tmin, tmax)
	}
	l1, l2 := core.LandscapeNorms(vector)
	return models.MLandscapePoint{
		EndDate: res.endDate,
		Vector:  vector,
		NormL1:  l1,
		NormL2:  l2,
	}
}

// -----------------------------------------------------------------------------

func globalRange(results []windowResult) (tmin, tmax float64) {
	tmin = math.Inf(1)
	tmax = math.Inf(-1)
	found := false
	for _, res := range results {
		if res.degenerate {
			continue
		}
		lo, hi, ok := core.DiagramRange(res.diagram)
		if !ok {
			continue
		}
		found = true
		if lo < tmin {
			tmin = lo
		}
		if hi > tmax {
			tmax = hi
		}
	}
	if !found {
		return 0, 0
	}
	return tmin, tmax
}
