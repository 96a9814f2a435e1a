// Package history persists completed diagnoses to a local SQLite database.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite"

	"github.com/healthcare-diagnosis-server/internal/domain"
)

// SQLiteStore records diagnoses using SQLite.
type SQLiteStore struct {
	db     *sql.DB
	dbPath string
}

// NewSQLiteStore creates a new SQLite history store.
// It creates the database file and schema if they don't exist.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Enable WAL mode for better concurrency
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to set WAL mode: %w", err)
	}

	if err := createSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	return &SQLiteStore{
		db:     db,
		dbPath: dbPath,
	}, nil
}

// NewStoreWithDB wraps an existing database handle. Used in tests.
func NewStoreWithDB(db *sql.DB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

func createSchema(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS diagnoses (
		id TEXT PRIMARY KEY,
		client_id TEXT NOT NULL DEFAULT '',
		initial_symptom TEXT NOT NULL,
		matched_symptoms TEXT NOT NULL,
		days_experiencing INTEGER NOT NULL,
		primary_diagnosis TEXT NOT NULL,
		secondary_diagnosis TEXT DEFAULT '',
		confidence TEXT NOT NULL,
		severity TEXT NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_diagnoses_client_id ON diagnoses(client_id);
	CREATE INDEX IF NOT EXISTS idx_diagnoses_created_at ON diagnoses(created_at);
	`

	_, err := db.Exec(schema)
	return err
}

// scanner is an interface for sql.Row and sql.Rows
type scanner interface {
	Scan(dest ...interface{}) error
}

func scanRecord(s scanner) (*domain.DiagnosisRecord, error) {
	rec := &domain.DiagnosisRecord{}
	var matched, confidence, severity string

	err := s.Scan(
		&rec.ID, &rec.ClientID, &rec.InitialSymptom, &matched,
		&rec.DaysExperiencing, &rec.Primary, &rec.Secondary,
		&confidence, &severity, &rec.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	if matched != "" {
		rec.MatchedSymptoms = strings.Split(matched, ",")
	}
	rec.Confidence = domain.ConfidenceLevel(confidence)
	rec.Severity = domain.SeverityLevel(severity)
	return rec, nil
}

// Record inserts one completed diagnosis.
func (s *SQLiteStore) Record(ctx context.Context, record *domain.DiagnosisRecord) error {
	if err := record.Validate(); err != nil {
		return err
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO diagnoses (
			id, client_id, initial_symptom, matched_symptoms,
			days_experiencing, primary_diagnosis, secondary_diagnosis,
			confidence, severity, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		record.ID,
		record.ClientID,
		record.InitialSymptom,
		strings.Join(record.MatchedSymptoms, ","),
		record.DaysExperiencing,
		record.Primary,
		record.Secondary,
		string(record.Confidence),
		string(record.Severity),
		record.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert: %w", err)
	}
	return nil
}

// Get retrieves a single diagnosis by id. Returns nil when not found.
func (s *SQLiteStore) Get(ctx context.Context, id string) (*domain.DiagnosisRecord, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, client_id, initial_symptom, matched_symptoms,
			days_experiencing, primary_diagnosis, secondary_diagnosis,
			confidence, severity, created_at
		FROM diagnoses
		WHERE id = ?
		LIMIT 1
	`, id)

	rec, err := scanRecord(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan: %w", err)
	}
	return rec, nil
}

// List returns diagnoses in reverse chronological order with pagination.
func (s *SQLiteStore) List(ctx context.Context, limit, offset int) ([]*domain.DiagnosisRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, client_id, initial_symptom, matched_symptoms,
			days_experiencing, primary_diagnosis, secondary_diagnosis,
			confidence, severity, created_at
		FROM diagnoses
		ORDER BY created_at DESC
		LIMIT ? OFFSET ?
	`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to query: %w", err)
	}
	defer rows.Close()

	var result []*domain.DiagnosisRecord
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		result = append(result, rec)
	}
	return result, rows.Err()
}

// Count returns the total number of recorded diagnoses.
func (s *SQLiteStore) Count(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM diagnoses").Scan(&count)
	return count, err
}

// Close releases the underlying database handle.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
