// Package audit provides persistent storage for clinical assessments
// produced by the reasoning engine. The engine itself stays stateless;
// the audit log records each reasoner output so clinicians can review
// synthesized and extrapolated answers after the fact.
package audit

import (
	"context"
	"encoding/json"
	"io"
	"time"
)

// ReviewStatus tracks the clinician review state of a stored assessment.
type ReviewStatus string

const (
	ReviewPending  ReviewStatus = "pending"
	ReviewAccepted ReviewStatus = "accepted"
	ReviewRejected ReviewStatus = "rejected"
)

// Assessment is one stored reasoner output.
type Assessment struct {
	ID        string `json:"id"`
	PatientID string `json:"patient_id,omitempty"`
	Question  string `json:"question"`

	Strategy    string  `json:"strategy"`
	Answer      string  `json:"answer"`
	Confidence  float64 `json:"confidence"`
	IsSynthesis bool    `json:"is_synthesis"`

	GuidelinesConsulted []string `json:"guidelines_consulted,omitempty"`

	// Detail holds the full serialized reasoning result.
	Detail json.RawMessage `json:"detail,omitempty"`

	ReviewStatus ReviewStatus `json:"review_status"`
	ReviewNotes  string       `json:"review_notes,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Store defines the interface for assessment storage operations.
type Store interface {
	// Save stores an assessment, or updates it when the ID already
	// exists. A missing ID is assigned before insert.
	Save(ctx context.Context, a *Assessment) error

	// Get retrieves an assessment by ID. Returns nil when not found.
	Get(ctx context.Context, id string) (*Assessment, error)

	// List returns assessments newest first with pagination.
	List(ctx context.Context, limit, offset int) ([]*Assessment, error)

	// Count returns the total number of stored assessments.
	Count(ctx context.Context) (int64, error)

	// Delete removes an assessment by ID.
	Delete(ctx context.Context, id string) error

	// ExportJSON exports all assessments to a JSON writer.
	ExportJSON(ctx context.Context, w io.Writer) error

	// ImportJSON imports assessments from a JSON reader. Entries whose
	// ID already exists are skipped.
	ImportJSON(ctx context.Context, r io.Reader) (imported int, skipped int, err error)

	// Close closes the store and releases resources.
	Close() error
}

// Export is the JSON export envelope.
type Export struct {
	Version     string        `json:"version"`
	ExportedAt  time.Time     `json:"exported_at"`
	Count       int           `json:"count"`
	Assessments []*Assessment `json:"assessments"`
}
