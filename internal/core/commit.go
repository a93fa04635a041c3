package core

// commit.go applies a previously validated dry-run session to the
// storage collaborator. The token is consumed atomically before any
// write, so a session can never be committed twice, not even when a
// row write later fails. Writes are best-effort per row: one row's
// failure does not abort the rest, and failures are aggregated into a
// terminal ErrStorageWrite.

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
)

// CommitResult carries the outcome counts and the ledger entry ID of
// a finished commit.
type CommitResult struct {
	Outcome   Outcome `json:"outcome"`
	HistoryID string  `json:"historyId"`
}

// Commit consumes a dry-run token and applies its rows under the
// session's mode. Fails with ErrValidationBlocked (session left
// intact) when the cached report contains errors, and with
// ErrTokenNotFound when the token is unknown, expired, or already
// consumed.
func (s *Service) Commit(ctx context.Context, token, userID string) (*CommitResult, error) {
	// Peek first: a blocked session must stay untouched so the check
	// has no partial effect.
	peek, err := s.cache.Get(token)
	if err != nil {
		return nil, err
	}
	if peek.Report.Summary.Errors > 0 {
		return nil, fmt.Errorf("%w: %d row error(s)", ErrValidationBlocked, peek.Report.Summary.Errors)
	}

	sess, err := s.cache.Consume(token)
	if err != nil {
		// Lost the race against a concurrent commit of the same token.
		return nil, err
	}

	def, err := GetTemplate(sess.Entity)
	if err != nil {
		return nil, err
	}

	startedAt := s.now()
	var outcome Outcome
	var failures []string
	committed := make(map[string]bool, len(sess.Rows))

	for _, row := range sess.Report.Rows {
		key := naturalKey(def, row)
		if key == "" {
			// Cannot happen for a clean report; count it rather than
			// silently dropping the row.
			outcome.Skipped++
			failures = append(failures, fmt.Sprintf("row %d: missing natural key", row.RowNumber))
			continue
		}
		committed[key] = true

		rec := AssetRecord{Key: key, Fields: row.Normalized}

		if err := s.applyRow(ctx, sess, rec, &outcome); err != nil {
			outcome.Skipped++
			failures = append(failures, fmt.Sprintf("row %d: %v", row.RowNumber, err))
		}
	}

	if sess.ArchiveMissing {
		archived, err := s.archiveMissing(ctx, sess, committed)
		if err != nil {
			failures = append(failures, fmt.Sprintf("archive missing: %v", err))
		}
		outcome.Archived = archived
	}

	status := HistoryCompleted
	if len(failures) > 0 {
		status = HistoryPartial
	}

	historyID, err := s.ledger.Append(ctx, HistoryRecord{
		Entity:         sess.Entity,
		Mode:           sess.Mode,
		ArchiveMissing: sess.ArchiveMissing,
		UserID:         userID,
		VesselID:       sess.VesselID,
		Outcome:        outcome,
		StartedAt:      startedAt,
		FinishedAt:     s.now(),
		Status:         status,
		FileName:       sess.FileName,
		FileData:       sess.FileData,
	})
	if err != nil {
		// The writes happened; losing the ledger entry is worth a loud
		// log but not a different outcome for the caller.
		slog.Error("history append failed", "entity", sess.Entity, "vessel", sess.VesselID, "error", err)
	}

	slog.Info("import committed",
		"entity", sess.Entity,
		"mode", sess.Mode,
		"vessel", sess.VesselID,
		"created", outcome.Created,
		"updated", outcome.Updated,
		"skipped", outcome.Skipped,
		"archived", outcome.Archived,
		"failures", len(failures),
		"history_id", historyID,
	)

	result := &CommitResult{Outcome: outcome, HistoryID: historyID}
	if len(failures) > 0 {
		return result, fmt.Errorf("%w: %d row(s) failed: %s",
			ErrStorageWrite, len(failures), strings.Join(failures, "; "))
	}
	return result, nil
}

// applyRow writes one record under the session's mode and bumps the
// matching outcome counter.
func (s *Service) applyRow(ctx context.Context, sess *Session, rec AssetRecord, outcome *Outcome) error {
	switch sess.Mode {
	case ModeAdd:
		if err := s.store.Create(ctx, sess.VesselID, sess.Entity, rec); err != nil {
			return err
		}
		outcome.Created++

	case ModeUpdate:
		err := s.store.UpdateByKey(ctx, sess.VesselID, sess.Entity, rec)
		if errors.Is(err, ErrRecordNotFound) {
			outcome.Skipped++
			return nil
		}
		if err != nil {
			return err
		}
		outcome.Updated++

	case ModeUpsert:
		existing, err := s.store.GetByKey(ctx, sess.VesselID, sess.Entity, rec.Key)
		if err != nil {
			return err
		}
		if existing != nil {
			if err := s.store.UpdateByKey(ctx, sess.VesselID, sess.Entity, rec); err != nil {
				return err
			}
			outcome.Updated++
		} else {
			if err := s.store.Create(ctx, sess.VesselID, sess.Entity, rec); err != nil {
				return err
			}
			outcome.Created++
		}

	default:
		return invalidImportMode(string(sess.Mode))
	}
	return nil
}

// archiveMissing soft-deletes every stored record whose natural key
// is absent from the committed row set.
func (s *Service) archiveMissing(ctx context.Context, sess *Session, committed map[string]bool) (int, error) {
	keys, err := s.store.ListKeys(ctx, sess.VesselID, sess.Entity)
	if err != nil {
		return 0, err
	}

	var missing []string
	for _, k := range keys {
		if !committed[k] {
			missing = append(missing, k)
		}
	}
	if len(missing) == 0 {
		return 0, nil
	}

	return s.store.ArchiveByKeys(ctx, sess.VesselID, sess.Entity, missing)
}
