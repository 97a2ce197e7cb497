package yahoo

import (
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"time"

	"tda-observer/src/interfaces"
	"tda-observer/src/logger"
	"tda-observer/src/models"
)

// -----------------------------------------------------------------------------
// YahooFinanceSource fetches daily closing prices from the Yahoo Finance
// v8 chart API. It is the external financial-data provider behind the
// IDataSource boundary: given a symbol and a date range it returns an
// ordered (date, close) sequence, possibly with fewer rows than calendar
// days in the range.
// -----------------------------------------------------------------------------

type YahooFinanceSource struct {
	Config  *models.MConfig
	Network interfaces.INetworkManager
	Logger  *logger.Logger
}

// -----------------------------------------------------------------------------

func NewYahooFinanceSource(cfg *models.MConfig, netMgr interfaces.INetworkManager) *YahooFinanceSource {
	return &YahooFinanceSource{
		Config:  cfg,
		Network: netMgr,
		Logger:  logger.NewLogger(cfg.LogLevel, "YahooFinanceSource"),
	}
}

// -----------------------------------------------------------------------------

func (s *YahooFinanceSource) Name() string {
	return "yahoo"
}

// -----------------------------------------------------------------------------

// FetchHistory fetches daily closes for one symbol over [from, to].
func (s *YahooFinanceSource) FetchHistory(symbol string, from, to time.Time) ([]models.MPriceRecord, error) {
	params := map[string]string{
		"interval":       "1d",
		"period1":        fmt.Sprintf("%d", from.Unix()),
		"period2":        fmt.Sprintf("%d", to.AddDate(0, 0, 1).Unix()), // period2 is exclusive
		"includePrePost": "false",
		"events":         "history",
	}

	url := fmt.Sprintf("https://query1.finance.yahoo.com/v8/finance/chart/%s", symbol)

	respBytes, err := s.Network.Get(url, params)
	if err != nil {
		return nil, fmt.Errorf("network error for %s: %w", symbol, err)
	}

	return s.parseChartResponse(symbol, respBytes)
}

// -----------------------------------------------------------------------------

// FetchAll fetches every configured symbol with bounded concurrency.
// It fails only when no symbol could be fetched at all.
func (s *YahooFinanceSource) FetchAll(from, to time.Time) (map[string][]models.MPriceRecord, error) {
	symbols := s.Config.DataSource.Symbols
	if len(symbols) == 0 {
		return make(map[string][]models.MPriceRecord), nil
	}

	results := make(map[string][]models.MPriceRecord)
	var mu sync.Mutex
	var wg sync.WaitGroup
	errors := make([]error, 0, len(symbols))
	var errorsMu sync.Mutex

	sem := make(chan struct{}, s.Config.Network.ConcurrentRequests)

	for _, symbol := range symbols {
		wg.Add(1)
		go func(sym string) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			// Small delay to avoid rate limiting
			time.Sleep(10 * time.Millisecond)

			records, err := s.FetchHistory(sym, from, to)
			if err != nil {
				s.Logger.Info("Error fetching symbol %s: %v", sym, err)
				errorsMu.Lock()
				errors = append(errors, err)
				errorsMu.Unlock()
				return
			}

			if len(records) > 0 {
				mu.Lock()
				results[sym] = records
				mu.Unlock()
			}
		}(symbol)
	}

	wg.Wait()

	s.Logger.Info("YahooFinance: Fetched %d/%d symbols successfully", len(results), len(symbols))

	if len(results) == 0 && len(errors) > 0 {
		return nil, fmt.Errorf("all fetches failed: %v", errors[0])
	}

	return results, nil
}

// -----------------------------------------------------------------------------

type yahooChartResponse struct {
	Chart struct {
		Result []struct {
			Meta struct {
				Currency           string  `json:"currency"`
				Symbol             string  `json:"symbol"`
				ExchangeName       string  `json:"exchangeName"`
				RegularMarketPrice float64 `json:"regularMarketPrice"`
				DataGranularity    string  `json:"dataGranularity"`
			} `json:"meta"`
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Close []*float64 `json:"close"` // Pointers to handle null
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

// -----------------------------------------------------------------------------

func (s *YahooFinanceSource) parseChartResponse(symbol string, data []byte) ([]models.MPriceRecord, error) {
	var resp yahooChartResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, fmt.Errorf("json unmarshal failed: %w", err)
	}

	if resp.Chart.Error != nil {
		return nil, fmt.Errorf("yahoo api error: %s - %s", resp.Chart.Error.Code, resp.Chart.Error.Description)
	}

	if len(resp.Chart.Result) == 0 {
		return nil, fmt.Errorf("no result in response for %s", symbol)
	}

	result := resp.Chart.Result[0]
	if len(result.Timestamp) == 0 {
		return nil, fmt.Errorf("no timestamps in response for %s", symbol)
	}

	if len(result.Indicators.Quote) == 0 {
		return nil, fmt.Errorf("no quote data in response for %s", symbol)
	}
	quote := result.Indicators.Quote[0]

	if len(result.Timestamp) != len(quote.Close) {
		return nil, fmt.Errorf("data alignment error for %s", symbol)
	}

	// One record per trading date; later entries for the same date win,
	// so a same-day revision replaces the earlier value.
	byDate := make(map[string]float64, len(result.Timestamp))
	for i, ts := range result.Timestamp {
		if quote.Close[i] == nil {
			s.Logger.Debug("Null close for %s at index %d", symbol, i)
			continue
		}
		closeVal := *quote.Close[i]
		if closeVal <= 0 {
			s.Logger.Info("Skipping invalid close for %s: %f", symbol, closeVal)
			continue
		}
		date := time.Unix(ts, 0).UTC().Format(models.DateLayout)
		byDate[date] = closeVal
	}

	if len(byDate) == 0 {
		return nil, fmt.Errorf("no valid data points for %s", symbol)
	}

	records := make([]models.MPriceRecord, 0, len(byDate))
	for date, closeVal := range byDate {
		records = append(records, models.MPriceRecord{
			Symbol: symbol,
			Date:   date,
			Close:  closeVal,
		})
	}
	sort.Slice(records, func(i, j int) bool { return records[i].Date < records[j].Date })

	s.Logger.Info("Fetched %s: %d trading days [%s -> %s]",
		symbol, len(records), records[0].Date, records[len(records)-1].Date)

	return records, nil
}
