package storage

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"sync"

	"tda-observer/src/logger"
	"tda-observer/src/models"
)

// -----------------------------------------------------------------------------
// CSVStore persists the price table as a flat comma-separated file: one
// row per date, one closing-price column per index symbol. This is the
// published table the dashboard and the scheduled refresh job share.
//
// Writes are atomic: the full table is written to a temp file in the same
// directory, fsynced, then renamed over the old file, so a concurrent
// reader never observes a partial table. Closes are formatted with the
// shortest exact float representation, so persist/reload round-trips are
// byte-identical.
// -----------------------------------------------------------------------------

type CSVStore struct {
	Config  *models.MConfig
	Logger  *logger.Logger
	mu      sync.Mutex
	columns []string                      // symbol column order, fixed once created
	rows    map[string]map[string]float64 // date -> symbol -> close
}

// -----------------------------------------------------------------------------

func NewCSVStore(cfg *models.MConfig, log *logger.Logger) (*CSVStore, error) {
	return &CSVStore{
		Config: cfg,
		Logger: log,
		rows:   make(map[string]map[string]float64),
	}, nil
}

// -----------------------------------------------------------------------------

// Initialize loads the existing table when present; otherwise the column
// layout is fixed from the configured symbols and written on first merge.
func (s *CSVStore) Initialize() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	path := s.Config.Storage.CSVPath
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		s.columns = append([]string(nil), s.Config.DataSource.Symbols...)
		s.Logger.Info("No existing price table at %s, starting fresh", path)
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to open price table: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	if err != nil {
		return fmt.Errorf("failed to parse price table: %w", err)
	}
	if len(records) == 0 {
		s.columns = append([]string(nil), s.Config.DataSource.Symbols...)
		return nil
	}

	header := records[0]
	if len(header) < 2 || header[0] != "date" {
		return fmt.Errorf("malformed price table header in %s", path)
	}
	s.columns = append([]string(nil), header[1:]...)

	for _, row := range records[1:] {
		if len(row) != len(header) {
			return fmt.Errorf("malformed row for date %s: %d fields, want %d", row[0], len(row), len(header))
		}
		date := row[0]
		cells := make(map[string]float64, len(s.columns))
		for i, symbol := range s.columns {
			field := row[i+1]
			if field == "" {
				continue // missing trading day for this index
			}
			v, err := strconv.ParseFloat(field, 64)
			if err != nil {
				return fmt.Errorf("bad close '%s' for %s at %s: %w", field, symbol, date, err)
			}
			cells[symbol] = v
		}
		s.rows[date] = cells
	}

	s.Logger.Info("Loaded price table: %d dates, %d symbols", len(s.rows), len(s.columns))
	return nil
}

// -----------------------------------------------------------------------------

// MergePriceRecords merges records into the table, de-duplicating by
// (date, symbol), and rewrites the file atomically when anything changed.
func (s *CSVStore) MergePriceRecords(records []models.MPriceRecord) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	colSet := make(map[string]bool, len(s.columns))
	for _, c := range s.columns {
		colSet[c] = true
	}

	changed := false
	for _, r := range records {
		if !colSet[r.Symbol] {
			return changed, fmt.Errorf("symbol %s is not a column of the price table", r.Symbol)
		}
		cells, ok := s.rows[r.Date]
		if !ok {
			cells = make(map[string]float64, len(s.columns))
			s.rows[r.Date] = cells
		}
		if existing, ok := cells[r.Symbol]; !ok || existing != r.Close {
			cells[r.Symbol] = r.Close
			changed = true
		}
	}

	if !changed {
		return false, nil
	}
	return true, s.writeAtomic()
}

// -----------------------------------------------------------------------------

// LoadAll returns every stored record per symbol, ordered by date.
func (s *CSVStore) LoadAll() (map[string][]models.MPriceRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	dates := s.sortedDates()
	out := make(map[string][]models.MPriceRecord, len(s.columns))
	for _, symbol := range s.columns {
		var series []models.MPriceRecord
		for _, date := range dates {
			if v, ok := s.rows[date][symbol]; ok {
				series = append(series, models.MPriceRecord{Symbol: symbol, Date: date, Close: v})
			}
		}
		out[symbol] = series
	}
	return out, nil
}

// -----------------------------------------------------------------------------

// LastDate returns the latest stored date, the cursor incremental
// fetches resume from. Empty string when the table is empty.
func (s *CSVStore) LastDate() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	last := ""
	for date := range s.rows {
		if date > last {
			last = date
		}
	}
	return last, nil
}

// -----------------------------------------------------------------------------

func (s *CSVStore) Close() error {
	return nil
}

// -----------------------------------------------------------------------------

func (s *CSVStore) sortedDates() []string {
	dates := make([]string, 0, len(s.rows))
	for date := range s.rows {
		dates = append(dates, date)
	}
	sort.Strings(dates)
	return dates
}

// -----------------------------------------------------------------------------

// writeAtomic writes the full table to a temp file in the target
// directory and renames it over the old file.
func (s *CSVStore) writeAtomic() error {
	path := s.Config.Storage.CSVPath

	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp table: %w", err)
	}
	tmpPath := tmp.Name()

	writer := csv.NewWriter(tmp)
	header := append([]string{"date"}, s.columns...)
	if err := writer.Write(header); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return err
	}

	for _, date := range s.sortedDates() {
		row := make([]string, 0, len(header))
		row = append(row, date)
		for _, symbol := range s.columns {
			if v, ok := s.rows[date][symbol]; ok {
				row = append(row, strconv.FormatFloat(v, 'g', -1, 64))
			} else {
				row = append(row, "")
			}
		}
		if err := writer.Write(row); err != nil {
			tmp.Close()
			os.Remove(tmpPath)
			return err
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return err
	}

	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to replace price table: %w", err)
	}
	return nil
}
