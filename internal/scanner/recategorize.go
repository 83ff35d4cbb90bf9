package scanner

import (
	"context"
	"fmt"

	"photo-index/internal/logging"
)

// RecategorizeAll re-runs the category classifier over every stored
// record using only persisted fields, never the filesystem. Updates are
// committed in batches. The classifier is deterministic, so running this
// twice without an intervening scan yields identical assignments.
// Returns the per-category counts.
func (s *Scanner) RecategorizeAll(ctx context.Context) (map[string]int, error) {
	rows, err := s.db.AllForRecategorize(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load photos for recategorization: %w", err)
	}

	logging.Info("Recategorizing %d photos...", len(rows))

	counts := make(map[string]int)

	tx, err := s.db.BeginBatch()
	if err != nil {
		return nil, fmt.Errorf("failed to begin batch: %w", err)
	}
	inBatch := 0

	for _, row := range rows {
		if err := ctx.Err(); err != nil {
			if endErr := s.db.EndBatch(tx, err); endErr != nil {
				logging.Error("failed to roll back after cancellation: %v", endErr)
			}
			return counts, err
		}

		category := Categorize(row.Path, row.Width, row.Height, row.DateTaken)

		if err := s.db.UpdateCategoryTx(tx, row.ID, category); err != nil {
			logging.Warn("Error recategorizing %s: %v", row.Path, err)
			continue
		}
		counts[category]++

		inBatch++
		if inBatch >= s.opts.BatchSize {
			if err := s.db.EndBatch(tx, nil); err != nil {
				return counts, fmt.Errorf("failed to commit batch: %w", err)
			}
			tx, err = s.db.BeginBatch()
			if err != nil {
				return counts, fmt.Errorf("failed to begin batch: %w", err)
			}
			inBatch = 0
		}
	}

	if err := s.db.EndBatch(tx, nil); err != nil {
		return counts, fmt.Errorf("failed to commit final batch: %w", err)
	}

	logging.Info("Recategorized %d photos", len(rows))
	return counts, nil
}
