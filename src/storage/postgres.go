package storage

import (
	"database/sql"
	"fmt"

	"tda-observer/src/logger"
	"tda-observer/src/models"

	_ "github.com/lib/pq"
)

// -----------------------------------------------------------------------------

type PostgresStore struct {
	Config *models.MConfig
	DB     *sql.DB
	Logger *logger.Logger
}

// -----------------------------------------------------------------------------

func NewPostgresStore(cfg *models.MConfig, log *logger.Logger) (*PostgresStore, error) {
	return &PostgresStore{
		Config: cfg,
		Logger: log,
	}, nil
}

// -----------------------------------------------------------------------------

func (d *PostgresStore) Initialize() error {
	db, err := sql.Open("postgres", d.Config.Storage.DBConnectionString)
	if err != nil {
		return err
	}

	if err := db.Ping(); err != nil {
		return err
	}

	d.DB = db

	query := `
		CREATE TABLE IF NOT EXISTS price_records (
			symbol TEXT NOT NULL,
			date TEXT NOT NULL,
			close DOUBLE PRECISION NOT NULL,
			PRIMARY KEY (symbol, date)
		);
	`
	if _, err := d.DB.Exec(query); err != nil {
		return fmt.Errorf("failed to create price_records: %w", err)
	}

	return nil
}

// -----------------------------------------------------------------------------

func (d *PostgresStore) MergePriceRecords(records []models.MPriceRecord) (bool, error) {
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
		VALUES ($1, $2, $3)
		ON CONFLICT (symbol, date) DO UPDATE SET close = EXCLUDED.close
		WHERE price_records.close <> EXCLUDED.close
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

func (d *PostgresStore) LoadAll() (map[string][]models.MPriceRecord, error) {
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

func (d *PostgresStore) LastDate() (string, error) {
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

func (d *PostgresStore) Close() error {
	if d.DB != nil {
		return d.DB.Close()
	}
	return nil
}
