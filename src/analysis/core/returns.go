package core

import (
	"fmt"
	"math"
	"sort"

	"tda-observer/src/models"
)

// -----------------------------------------------------------------------------

// LogReturns converts an ordered daily price series into its log-return
// series: r[t] = ln(p[t] / p[t-1]). The result has exactly len(prices)-1
// points, each anchored at the later date. Pure, no side effects.
func LogReturns(prices []models.MPriceRecord) ([]models.MReturnPoint, error) {
	if len(prices) < 2 {
		return nil, nil
	}

	returns := make([]models.MReturnPoint, 0, len(prices)-1)
	for t := 1; t < len(prices); t++ {
		prev := prices[t-1].Close
		cur := prices[t].Close
		if prev <= 0 || cur <= 0 {
			return nil, fmt.Errorf("non-positive close for %s at %s", prices[t].Symbol, prices[t].Date)
		}
		returns = append(returns, models.MReturnPoint{
			Date:      prices[t].Date,
			LogReturn: math.Log(cur / prev),
		})
	}
	return returns, nil
}

// -----------------------------------------------------------------------------

// AlignOnCommonDates filters every symbol's price series down to the
// intersection of all symbols' trading dates. Dates present for only a
// subset of the indices are dropped before any downstream analysis.
func AlignOnCommonDates(data map[string][]models.MPriceRecord) map[string][]models.MPriceRecord {
	if len(data) == 0 {
		return data
	}

	// Count date occurrences across symbols
	dateCounts := make(map[string]int)
	for _, records := range data {
		for _, r := range records {
			dateCounts[r.Date]++
		}
	}

	common := make(map[string]bool)
	for date, count := range dateCounts {
		if count == len(data) {
			common[date] = true
		}
	}

	aligned := make(map[string][]models.MPriceRecord, len(data))
	for symbol, records := range data {
		kept := make([]models.MPriceRecord, 0, len(common))
		for _, r := range records {
			if common[r.Date] {
				kept = append(kept, r)
			}
		}
		sort.Slice(kept, func(i, j int) bool { return kept[i].Date < kept[j].Date })
		aligned[symbol] = kept
	}
	return aligned
}
