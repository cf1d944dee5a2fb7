package ledger

import (
	"context"
	"database/sql"
	"fmt"
	"log"
)

// Tracker keeps an upsert log of migrated submissions. Reprocessing a
// submission (after a crash left its descriptor unwritten) bumps seen_count
// rather than inserting a second row, which makes orphaned destination
// objects easy to spot later.
type Tracker struct {
	db *sql.DB
}

// NewTracker creates a migration ledger
func NewTracker(db *sql.DB) (*Tracker, error) {
	tracker := &Tracker{db: db}

	// Create table if not exists
	if err := tracker.ensureTable(); err != nil {
		return nil, fmt.Errorf("failed to ensure migration log table: %w", err)
	}

	return tracker, nil
}

// ensureTable creates the media_migration_log table if it doesn't exist
func (t *Tracker) ensureTable() error {
	query := `
		CREATE TABLE IF NOT EXISTS media_migration_log (
			submitid BIGINT PRIMARY KEY,
			representation_count INTEGER,
			first_seen_at TIMESTAMPTZ DEFAULT NOW(),
			last_seen_at TIMESTAMPTZ DEFAULT NOW(),
			seen_count INTEGER DEFAULT 1
		)
	`

	_, err := t.db.Exec(query)
	if err != nil {
		return fmt.Errorf("failed to create media_migration_log table: %w", err)
	}

	log.Printf("✓ media_migration_log table ready")
	return nil
}

// Record records a migrated submission and returns the seen count
func (t *Tracker) Record(ctx context.Context, submitID int64, representationCount int) (int, error) {
	// Upsert: increment seen_count if exists, insert if not
	query := `
		INSERT INTO media_migration_log (submitid, representation_count, first_seen_at, last_seen_at, seen_count)
		VALUES ($1, $2, NOW(), NOW(), 1)
		ON CONFLICT (submitid) DO UPDATE
		SET last_seen_at = NOW(),
		    seen_count = media_migration_log.seen_count + 1,
		    representation_count = EXCLUDED.representation_count
		RETURNING seen_count
	`

	var seenCount int
	err := t.db.QueryRowContext(ctx, query, submitID, representationCount).Scan(&seenCount)
	if err != nil {
		return 0, fmt.Errorf("failed to record migration: %w", err)
	}

	return seenCount, nil
}

// GetSeenCount retrieves the seen count for a submission
func (t *Tracker) GetSeenCount(ctx context.Context, submitID int64) (int, error) {
	query := `SELECT seen_count FROM media_migration_log WHERE submitid = $1`

	var seenCount int
	err := t.db.QueryRowContext(ctx, query, submitID).Scan(&seenCount)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to get seen count: %w", err)
	}

	return seenCount, nil
}
