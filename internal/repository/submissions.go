package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/tendant/simple-media-migrate/internal/links"
)

// Submission is one pending record together with its media link rows.
type Submission struct {
	SubmitID int64
	Links    []links.Link
}

// Store reads pending submissions and persists their descriptors.
type Store struct {
	db *sql.DB
}

// New creates a submission store over an open database handle.
func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// NextPending returns the newest visual submission (subtype band 1000-1999)
// whose descriptor column is still NULL, with its media links aggregated into
// one JSON array. Returns nil when no rows remain. A submission without links
// comes back with nil Links; the resolver then fails it as missing its
// required roles.
func (s *Store) NextPending(ctx context.Context) (*Submission, error) {
	query := `
		SELECT submission.submitid,
		       CASE WHEN min(submission_media_links.submitid) IS NULL THEN NULL
		            ELSE jsonb_agg(jsonb_build_object(
		                'link_type', link_type,
		                'mediaid', media.mediaid,
		                'sha256', media.sha256,
		                'file_type', media.file_type,
		                'attributes', media.attributes)) END AS links
		FROM submission
		LEFT JOIN submission_media_links USING (submitid)
		LEFT JOIN media USING (mediaid)
		WHERE subtype BETWEEN 1000 AND 1999
		AND image_representations IS NULL
		GROUP BY submission.submitid
		ORDER BY submission.submitid DESC
		LIMIT 1
	`

	var (
		submitID  int64
		linksJSON []byte
	)
	err := s.db.QueryRowContext(ctx, query).Scan(&submitID, &linksJSON)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query pending submission: %w", err)
	}

	sub := &Submission{SubmitID: submitID}
	if linksJSON != nil {
		if err := json.Unmarshal(linksJSON, &sub.Links); err != nil {
			return nil, fmt.Errorf("failed to decode media links for submission %d: %w", submitID, err)
		}
	}

	return sub, nil
}

// SaveDescriptor persists the serialized representation set against the
// submission row. The descriptor bytes are the only durable form of the set.
func (s *Store) SaveDescriptor(ctx context.Context, submitID int64, descriptor []byte) error {
	query := `UPDATE submission SET image_representations = $1 WHERE submitid = $2`

	if _, err := s.db.ExecContext(ctx, query, descriptor, submitID); err != nil {
		return fmt.Errorf("failed to save descriptor for submission %d: %w", submitID, err)
	}

	return nil
}
