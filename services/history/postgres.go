package history

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"

	"sjmori/vacancywatcher/internal/checker"
	"sjmori/vacancywatcher/pkg/errors"
)

// PostgresStore implements Store on top of PostgreSQL
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore opens a connection and ensures the schema exists
func NewPostgresStore(host string, port int, user, password, dbname string) (*PostgresStore, error) {
	connStr := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		host, port, user, password, dbname)

	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, errors.NewHistory("postgres", "failed to open database", err)
	}

	if err := db.Ping(); err != nil {
		return nil, errors.NewHistory("postgres", "failed to ping database", err)
	}

	store := &PostgresStore{db: db}
	if err := store.createTables(); err != nil {
		db.Close()
		return nil, err
	}

	return store, nil
}

// Close closes the database connection
func (s *PostgresStore) Close() error {
	return s.db.Close()
}

func (s *PostgresStore) createTables() error {
	query := `
	CREATE TABLE IF NOT EXISTS check_runs (
		id SERIAL PRIMARY KEY,
		started_at TIMESTAMPTZ NOT NULL,
		finished_at TIMESTAMPTZ NOT NULL,
		status VARCHAR(20) NOT NULL,
		pairs_checked INTEGER NOT NULL,
		records_found INTEGER NOT NULL,
		errors INTEGER NOT NULL,
		error_message TEXT
	);

	CREATE TABLE IF NOT EXISTS availability_history (
		id SERIAL PRIMARY KEY,
		accommodation VARCHAR(255) NOT NULL,
		room_type TEXT NOT NULL,
		stay_date VARCHAR(10) NOT NULL,
		status VARCHAR(20) NOT NULL,
		price VARCHAR(50),
		booking_url TEXT,
		discovered_at TIMESTAMPTZ NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_availability_stay_date ON availability_history(stay_date);
	CREATE INDEX IF NOT EXISTS idx_availability_accommodation ON availability_history(accommodation);
	CREATE INDEX IF NOT EXISTS idx_check_runs_started_at ON check_runs(started_at);
	`

	_, err := s.db.Exec(query)
	if err != nil {
		return errors.NewHistory("postgres", "failed to create tables", err)
	}

	return nil
}

// RecordRun persists a completed check cycle summary
func (s *PostgresStore) RecordRun(ctx context.Context, run CheckRun) error {
	var errMsg sql.NullString
	if run.Error != "" {
		errMsg = sql.NullString{String: run.Error, Valid: true}
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO check_runs (started_at, finished_at, status, pairs_checked, records_found, errors, error_message)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, run.StartedAt, run.FinishedAt, run.Status, run.PairsChecked, run.RecordsFound, run.Errors, errMsg)
	if err != nil {
		return errors.NewHistory("postgres", "failed to insert check run", err)
	}
	return nil
}

// RecordAvailability persists a batch of availability records in one transaction
func (s *PostgresStore) RecordAvailability(ctx context.Context, records []checker.AvailabilityRecord) error {
	if len(records) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.NewHistory("postgres", "failed to begin transaction", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO availability_history (accommodation, room_type, stay_date, status, price, booking_url, discovered_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`)
	if err != nil {
		return errors.NewHistory("postgres", "failed to prepare statement", err)
	}
	defer stmt.Close()

	for _, record := range records {
		_, err := stmt.ExecContext(ctx,
			record.Accommodation,
			record.RoomType,
			record.Date,
			string(record.Status),
			record.Price,
			record.BookingURL,
			record.DiscoveredAt,
		)
		if err != nil {
			return errors.NewHistory("postgres", "failed to insert availability record", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return errors.NewHistory("postgres", "failed to commit transaction", err)
	}

	return nil
}

// RecentRuns returns the most recent check cycles, newest first
func (s *PostgresStore) RecentRuns(ctx context.Context, limit int) ([]CheckRun, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, started_at, finished_at, status, pairs_checked, records_found, errors, error_message
		FROM check_runs
		ORDER BY started_at DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, errors.NewHistory("postgres", "failed to query check runs", err)
	}
	defer rows.Close()

	runs := make([]CheckRun, 0)
	for rows.Next() {
		var run CheckRun
		var errMsg sql.NullString
		err := rows.Scan(&run.ID, &run.StartedAt, &run.FinishedAt, &run.Status, &run.PairsChecked, &run.RecordsFound, &run.Errors, &errMsg)
		if err != nil {
			return nil, errors.NewHistory("postgres", "failed to scan row", err)
		}
		if errMsg.Valid {
			run.Error = errMsg.String
		}
		runs = append(runs, run)
	}

	if err := rows.Err(); err != nil {
		return nil, errors.NewHistory("postgres", "row iteration error", err)
	}

	return runs, nil
}

// RecentAvailability returns the most recent availability records, newest first
func (s *PostgresStore) RecentAvailability(ctx context.Context, limit int) ([]checker.AvailabilityRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT accommodation, room_type, stay_date, status, price, booking_url, discovered_at
		FROM availability_history
		ORDER BY discovered_at DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, errors.NewHistory("postgres", "failed to query availability history", err)
	}
	defer rows.Close()

	records := make([]checker.AvailabilityRecord, 0)
	for rows.Next() {
		var record checker.AvailabilityRecord
		var status string
		var price, bookingURL sql.NullString

		err := rows.Scan(
			&record.Accommodation,
			&record.RoomType,
			&record.Date,
			&status,
			&price,
			&bookingURL,
			&record.DiscoveredAt,
		)
		if err != nil {
			return nil, errors.NewHistory("postgres", "failed to scan row", err)
		}

		record.Status = checker.Status(status)
		if price.Valid {
			record.Price = price.String
		}
		if bookingURL.Valid {
			record.BookingURL = bookingURL.String
		}

		records = append(records, record)
	}

	if err := rows.Err(); err != nil {
		return nil, errors.NewHistory("postgres", "row iteration error", err)
	}

	return records, nil
}
