package migrate

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/tendant/simple-media-migrate/internal/links"
	"github.com/tendant/simple-media-migrate/internal/metrics"
	"github.com/tendant/simple-media-migrate/internal/repository"
)

// Repository is the database collaborator: it supplies pending submissions
// with their link rows and accepts the serialized descriptor.
type Repository interface {
	NextPending(ctx context.Context) (*repository.Submission, error)
	SaveDescriptor(ctx context.Context, submitID int64, descriptor []byte) error
}

// Uploader moves one media item's bytes into the destination store and
// returns the transferred length.
type Uploader interface {
	Upload(ctx context.Context, item links.Item) (int64, error)
}

// Ledger records processed submissions.
type Ledger interface {
	Record(ctx context.Context, submitID int64, representationCount int) (int, error)
}

// Migrator processes one submission at a time: resolve links, upload every
// distinct media item, then persist the descriptor. There is no retry tier
// and no rollback: any error aborts the submission and surfaces to the
// caller, possibly leaving already-uploaded sibling objects behind. Orphans
// are harmless — their keys are random and referenced by nothing — and a
// later pass regenerates fresh keys from scratch.
type Migrator struct {
	repo     Repository
	uploader Uploader
	ledger   Ledger            // optional
	observer *metrics.Observer // optional
}

// New creates a migrator. Ledger and observer may be nil.
func New(repo Repository, uploader Uploader, ledger Ledger, observer *metrics.Observer) *Migrator {
	return &Migrator{
		repo:     repo,
		uploader: uploader,
		ledger:   ledger,
		observer: observer,
	}
}

// ProcessNext migrates the next pending submission. It reports done=true when
// no pending submissions remain.
func (m *Migrator) ProcessNext(ctx context.Context) (bool, error) {
	sub, err := m.repo.NextPending(ctx)
	if err != nil {
		return false, err
	}
	if sub == nil {
		log.Printf("No rows remaining")
		return true, nil
	}

	runID := uuid.New().String()
	log.Printf("[%s] submission %d: uploading representations", runID, sub.SubmitID)

	if err := m.process(ctx, runID, sub); err != nil {
		m.observer.RecordFailure()
		return false, fmt.Errorf("submission %d: %w", sub.SubmitID, err)
	}

	return false, nil
}

func (m *Migrator) process(ctx context.Context, runID string, sub *repository.Submission) error {
	start := time.Now()

	res, err := links.Resolve(sub.Links)
	if err != nil {
		return err
	}

	var totalBytes int64
	for _, item := range res.Items {
		n, err := m.uploader.Upload(ctx, item)
		if err != nil {
			return fmt.Errorf("media %d: %w", item.MediaID, err)
		}
		totalBytes += n
	}

	descriptor, err := res.Set.MarshalBinary()
	if err != nil {
		return err
	}

	if err := m.repo.SaveDescriptor(ctx, sub.SubmitID, descriptor); err != nil {
		return err
	}

	if m.ledger != nil {
		seenCount, err := m.ledger.Record(ctx, sub.SubmitID, len(res.Items))
		if err != nil {
			return err
		}
		if seenCount > 1 {
			log.Printf("[%s] submission %d: seen %d times; earlier passes left orphaned objects behind", runID, sub.SubmitID, seenCount)
		}
	}

	m.observer.RecordMigrated(time.Since(start), len(res.Items), totalBytes)
	log.Printf("[%s] submission %d: uploaded %d representations (%d bytes)", runID, sub.SubmitID, len(res.Items), totalBytes)
	return nil
}
