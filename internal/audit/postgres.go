package audit

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	_ "github.com/lib/pq"
)

// PostgresStore implements the Store interface using PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore creates a new PostgreSQL assessment store. It expects
// the schema to already exist (created via migrations).
func NewPostgresStore(db *sql.DB) (*PostgresStore, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is required")
	}
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return &PostgresStore{db: db}, nil
}

// NewPostgresStoreFromURL creates a new PostgreSQL assessment store from a
// connection URL.
func NewPostgresStoreFromURL(databaseURL string) (*PostgresStore, error) {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	store, err := NewPostgresStore(db)
	if err != nil {
		db.Close()
		return nil, err
	}
	return store, nil
}

// Save stores an assessment via upsert on the ID.
func (s *PostgresStore) Save(ctx context.Context, a *Assessment) error {
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

	query := `
		INSERT INTO assessments (
			id, patient_id, question, strategy, answer, confidence,
			is_synthesis, guidelines_consulted, detail,
			review_status, review_notes, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		ON CONFLICT (id) DO UPDATE SET
			patient_id = EXCLUDED.patient_id,
			question = EXCLUDED.question,
			strategy = EXCLUDED.strategy,
			answer = EXCLUDED.answer,
			confidence = EXCLUDED.confidence,
			is_synthesis = EXCLUDED.is_synthesis,
			guidelines_consulted = EXCLUDED.guidelines_consulted,
			detail = EXCLUDED.detail,
			review_status = EXCLUDED.review_status,
			review_notes = EXCLUDED.review_notes,
			updated_at = EXCLUDED.updated_at
		RETURNING created_at
	`

	err = s.db.QueryRowContext(ctx, query,
		a.ID, a.PatientID, a.Question, a.Strategy, a.Answer,
		a.Confidence, a.IsSynthesis, guidelinesJSON, string(a.Detail),
		string(a.ReviewStatus), a.ReviewNotes, now, now,
	).Scan(&a.CreatedAt)

	if err != nil {
		return fmt.Errorf("failed to save assessment: %w", err)
	}

	a.UpdatedAt = now
	return nil
}

// Get retrieves an assessment by ID.
func (s *PostgresStore) Get(ctx context.Context, id string) (*Assessment, error) {
	query := `
		SELECT id, patient_id, question, strategy, answer, confidence,
			is_synthesis, guidelines_consulted, detail,
			review_status, review_notes, created_at, updated_at
		FROM assessments
		WHERE id = $1
		LIMIT 1
	`

	a, err := scanAssessment(s.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get assessment: %w", err)
	}
	return a, nil
}

// List returns assessments newest first with pagination.
func (s *PostgresStore) List(ctx context.Context, limit, offset int) ([]*Assessment, error) {
	query := `
		SELECT id, patient_id, question, strategy, answer, confidence,
			is_synthesis, guidelines_consulted, detail,
			review_status, review_notes, created_at, updated_at
		FROM assessments
		ORDER BY created_at DESC, id
		LIMIT $1 OFFSET $2
	`

	rows, err := s.db.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list assessments: %w", err)
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
func (s *PostgresStore) Count(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM assessments").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count assessments: %w", err)
	}
	return count, nil
}

// Delete removes an assessment by ID.
func (s *PostgresStore) Delete(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM assessments WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("failed to delete assessment: %w", err)
	}
	return nil
}

// ExportJSON exports all assessments to a JSON writer.
func (s *PostgresStore) ExportJSON(ctx context.Context, w io.Writer) error {
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
func (s *PostgresStore) ImportJSON(ctx context.Context, r io.Reader) (imported int, skipped int, err error) {
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
func (s *PostgresStore) Close() error {
	return s.db.Close()
}
