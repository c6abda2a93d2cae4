package audit

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// SQLiteStore implements the Store interface using SQLite.
type SQLiteStore struct {
	db     *sql.DB
	dbPath string
}

// NewSQLiteStore creates a new SQLite assessment store. It creates the
// database file and schema if they don't exist.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// WAL mode for better concurrency
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to set WAL mode: %w", err)
	}

	if err := createSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	return &SQLiteStore{db: db, dbPath: dbPath}, nil
}

func createSchema(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS assessments (
		id TEXT PRIMARY KEY,
		patient_id TEXT DEFAULT '',
		question TEXT NOT NULL,
		strategy TEXT NOT NULL,
		answer TEXT NOT NULL,
		confidence REAL NOT NULL DEFAULT 0,
		is_synthesis INTEGER NOT NULL DEFAULT 0,
		guidelines_consulted TEXT DEFAULT '[]',
		detail TEXT DEFAULT '',
		review_status TEXT NOT NULL DEFAULT 'pending',
		review_notes TEXT DEFAULT '',
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_assessments_patient_id ON assessments(patient_id);
	CREATE INDEX IF NOT EXISTS idx_assessments_strategy ON assessments(strategy);
	CREATE INDEX IF NOT EXISTS idx_assessments_created_at ON assessments(created_at);
	`

	_, err := db.Exec(schema)
	return err
}

// scanner is an interface over sql.Row and sql.Rows.
type scanner interface {
	Scan(dest ...interface{}) error
}

func scanAssessment(s scanner) (*Assessment, error) {
	a := &Assessment{}
	var status, guidelinesJSON, detail string

	err := s.Scan(
		&a.ID, &a.PatientID, &a.Question, &a.Strategy, &a.Answer,
		&a.Confidence, &a.IsSynthesis, &guidelinesJSON, &detail,
		&status, &a.ReviewNotes, &a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	a.ReviewStatus = ReviewStatus(status)
	if guidelinesJSON != "" && guidelinesJSON != "[]" {
		if err := json.Unmarshal([]byte(guidelinesJSON), &a.GuidelinesConsulted); err != nil {
			return nil, fmt.Errorf("failed to decode guidelines: %w", err)
		}
	}
	if detail != "" {
		a.Detail = json.RawMessage(detail)
	}
	return a, nil
}

func encodeGuidelines(guidelines []string) (string, error) {
	if len(guidelines) == 0 {
		return "[]", nil
	}
	raw, err := json.Marshal(guidelines)
	if err != nil {
		return "", fmt.Errorf("failed to encode guidelines: %w", err)
	}
	return string(raw), nil
}

// Save stores an assessment, updating in place when the ID exists.
func (s *SQLiteStore) Save(ctx context.Context, a *Assessment) error {
	now := time.Now()
	if a.ID == "" {
		a.ID = uuid.New().String()
	}
	if a.ReviewStatus == "" {
		a.ReviewStatus = ReviewPending
	}

	guidelinesJSON, err := encodeGuidelines(a.GuidelinesConsulted)
	if err != nil {
		return err
	}

	var existingCreated time.Time
	err = s.db.QueryRowContext(ctx,
		"SELECT created_at FROM assessments WHERE id = ?", a.ID,
	).Scan(&existingCreated)

	if err == nil {
		a.CreatedAt = existingCreated
		a.UpdatedAt = now

		_, err = s.db.ExecContext(ctx, `
			UPDATE assessments SET
				patient_id = ?,
				question = ?,
				strategy = ?,
				answer = ?,
				confidence = ?,
				is_synthesis = ?,
				guidelines_consulted = ?,
				detail = ?,
				review_status = ?,
				review_notes = ?,
				updated_at = ?
			WHERE id = ?
		`,
			a.PatientID, a.Question, a.Strategy, a.Answer,
			a.Confidence, a.IsSynthesis, guidelinesJSON, string(a.Detail),
			string(a.ReviewStatus), a.ReviewNotes, now, a.ID,
		)
		return err
	}

	if err != sql.ErrNoRows {
		return fmt.Errorf("failed to check existing: %w", err)
	}

	a.CreatedAt = now
	a.UpdatedAt = now

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO assessments (
			id, patient_id, question, strategy, answer, confidence,
			is_synthesis, guidelines_consulted, detail,
			review_status, review_notes, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		a.ID, a.PatientID, a.Question, a.Strategy, a.Answer,
		a.Confidence, a.IsSynthesis, guidelinesJSON, string(a.Detail),
		string(a.ReviewStatus), a.ReviewNotes, now, now,
	)
	if err != nil {
		return fmt.Errorf("failed to insert: %w", err)
	}
	return nil
}

// Get retrieves an assessment by ID.
func (s *SQLiteStore) Get(ctx context.Context, id string) (*Assessment, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, patient_id, question, strategy, answer, confidence,
			is_synthesis, guidelines_consulted, detail,
			review_status, review_notes, created_at, updated_at
		FROM assessments
		WHERE id = ?
		LIMIT 1
	`, id)

	a, err := scanAssessment(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan: %w", err)
	}
	return a, nil
}

// List returns assessments newest first with pagination.
func (s *SQLiteStore) List(ctx context.Context, limit, offset int) ([]*Assessment, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, patient_id, question, strategy, answer, confidence,
			is_synthesis, guidelines_consulted, detail,
			review_status, review_notes, created_at, updated_at
		FROM assessments
		ORDER BY created_at DESC, id
		LIMIT ? OFFSET ?
	`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to query: %w", err)
	}
	defer rows.Close()

	var result []*Assessment
	for rows.Next() {
		a, err := scanAssessment(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		result = append(result, a)
	}
	return result, rows.Err()
}

// Count returns the total number of stored assessments.
func (s *SQLiteStore) Count(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM assessments").Scan(&count)
	return count, err
}

// Delete removes an assessment by ID.
func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM assessments WHERE id = ?", id)
	return err
}

// maxExportLimit is the maximum number of entries to export at once.
const maxExportLimit = 1000000

// ExportJSON exports all assessments to a JSON writer.
func (s *SQLiteStore) ExportJSON(ctx context.Context, w io.Writer) error {
	all, err := s.List(ctx, maxExportLimit, 0)
	if err != nil {
		return fmt.Errorf("failed to list assessments: %w", err)
	}

	export := &Export{
		Version:     "1.0",
		ExportedAt:  time.Now(),
		Count:       len(all),
		Assessments: all,
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(export)
}

// ImportJSON imports assessments from a JSON reader.
func (s *SQLiteStore) ImportJSON(ctx context.Context, r io.Reader) (imported int, skipped int, err error) {
	var export Export
	if err := json.NewDecoder(r).Decode(&export); err != nil {
		return 0, 0, fmt.Errorf("failed to decode JSON: %w", err)
	}

	for _, a := range export.Assessments {
		existing, err := s.Get(ctx, a.ID)
		if err != nil {
			return imported, skipped, fmt.Errorf("failed to check existing: %w", err)
		}
		if existing != nil {
			skipped++
			continue
		}

		if err := s.Save(ctx, a); err != nil {
			return imported, skipped, fmt.Errorf("failed to save: %w", err)
		}
		imported++
	}

	return imported, skipped, nil
}

// Close closes the store and releases resources.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
