package storage

import (
	"database/sql"
	"fmt"

	"tda-observer/src/logger"
	"tda-observer/src/models"

	_ "modernc.org/sqlite"
)

// -----------------------------------------------------------------------------

type SQLiteStore struct {
	Config *models.MConfig
	DB     *sql.DB
	Logger *logger.Logger
}

// -----------------------------------------------------------------------------

func NewSQLiteStore(cfg *models.MConfig, log *logger.Logger) (*SQLiteStore, error) {
	return &SQLiteStore{
		Config: cfg,
		Logger: log,
	}, nil
}

// -----------------------------------------------------------------------------

func (d *SQLiteStore) Initialize() error {
	dsn := d.Config.Storage.DBPath

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return err
	}

	if err := db.Ping(); err != nil {
		return err
	}

	d.DB = db

	// PRAGMA optimizations
	if _, err := db.Exec("PRAGMA journal_mode = WAL;"); err != nil {
		d.Logger.Warning("Failed to set WAL mode: %v", err)
	}
	if _, err := db.Exec("PRAGMA synchronous = NORMAL;"); err != nil {
		d.Logger.Warning("Failed to set synchronous mode: %v", err)
	}

	// The table is append-only across scheduled runs, so create without dropping.
	query := `
		CREATE TABLE IF NOT EXISTS price_records (
			symbol TEXT,
			date TEXT,
			close REAL,
			PRIMARY KEY (symbol, date)
		);
	`
	if _, err := d.DB.Exec(query); err != nil {
		return fmt.Errorf("failed to create price_records: %w", err)
	}

	return nil
}

// -----------------------------------------------------------------------------

func (d *SQLiteStore) MergePriceRecords(records []models.MPriceRecord) (bool, error) {
	if len(records) == 0 {
		return false, nil
	}

	tx, err := d.DB.Begin()
	if err != nil {
		return false, err
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT INTO price_records (symbol, date, close)
		VALUES (?, ?, ?)
		ON CONFLICT (symbol, date) DO UPDATE SET close = excluded.close
		WHERE price_records.close <> excluded.close
	`)
	if err != nil {
		return false, err
	}
	defer stmt.Close()

	changed := false
	for _, r := range records {
		res, err := stmt.Exec(r.Symbol, r.Date, r.Close)
		if err != nil {
			return false, err
		}
		if n, err := res.RowsAffected(); err == nil && n > 0 {
			changed = true
		}
	}

	if err := tx.Commit(); err != nil {
		return false, err
	}
	return changed, nil
}

// -----------------------------------------------------------------------------

func (d *SQLiteStore) LoadAll() (map[string][]models.MPriceRecord, error) {
	rows, err := d.DB.Query(`
		SELECT symbol, date, close FROM price_records ORDER BY symbol, date
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string][]models.MPriceRecord)
	for rows.Next() {
		var r models.MPriceRecord
		if err := rows.Scan(&r.Symbol, &r.Date, &r.Close); err != nil {
			return nil, err
		}
		out[r.Symbol] = append(out[r.Symbol], r)
	}
	return out, rows.Err()
}

// -----------------------------------------------------------------------------

func (d *SQLiteStore) LastDate() (string, error) {
	var last sql.NullString
	err := d.DB.QueryRow(`SELECT MAX(date) FROM price_records`).Scan(&last)
	if err != nil {
		return "", err
	}
	if !last.Valid {
		return "", nil
	}
	return last.String, nil
}

// -----------------------------------------------------------------------------

func (d *SQLiteStore) Close() error {
	if d.DB != nil {
		return d.DB.Close()
	}
	return nil
}
