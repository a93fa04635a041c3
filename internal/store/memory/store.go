// Package memory provides process-local implementations of the asset
// store and history ledger ports. This is the reference backing: the
// default for local runs and the fixture for tests. A production
// deployment swaps in the postgres package.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/harborworks/fleetimport/internal/core"
)

type assetKey struct {
	vessel string
	entity core.EntityType
	key    string
}

type assetRecord struct {
	fields   map[string]any
	archived bool
}

// Store is an in-memory core.AssetStore. Safe for concurrent use.
type Store struct {
	mu      sync.RWMutex
	records map[assetKey]*assetRecord
}

// NewStore creates an empty Store.
func NewStore() *Store {
	return &Store{records: make(map[assetKey]*assetRecord)}
}

// Create inserts a new record. An existing live record under the same
// natural key is a duplicate-key error; an archived one is revived
// with the new field values.
func (s *Store) Create(_ context.Context, vesselID string, entity core.EntityType, rec core.AssetRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	k := assetKey{vessel: vesselID, entity: entity, key: rec.Key}
	if existing, ok := s.records[k]; ok && !existing.archived {
		return fmt.Errorf("duplicate key %q", rec.Key)
	}
	s.records[k] = &assetRecord{fields: copyFields(rec.Fields)}
	return nil
}

// UpdateByKey replaces the fields of a live record.
func (s *Store) UpdateByKey(_ context.Context, vesselID string, entity core.EntityType, rec core.AssetRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	k := assetKey{vessel: vesselID, entity: entity, key: rec.Key}
	existing, ok := s.records[k]
	if !ok || existing.archived {
		return fmt.Errorf("%w: %q", core.ErrRecordNotFound, rec.Key)
	}
	existing.fields = copyFields(rec.Fields)
	return nil
}

// GetByKey returns a live record, or nil when absent or archived.
func (s *Store) GetByKey(_ context.Context, vesselID string, entity core.EntityType, key string) (*core.AssetRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.records[assetKey{vessel: vesselID, entity: entity, key: key}]
	if !ok || rec.archived {
		return nil, nil
	}
	return &core.AssetRecord{Key: key, Fields: copyFields(rec.fields)}, nil
}

// ListKeys returns the natural keys of all live records for the
// vessel and entity type, sorted.
func (s *Store) ListKeys(_ context.Context, vesselID string, entity core.EntityType) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var keys []string
	for k, rec := range s.records {
		if k.vessel == vesselID && k.entity == entity && !rec.archived {
			keys = append(keys, k.key)
		}
	}
	sort.Strings(keys)
	return keys, nil
}

// ArchiveByKeys soft-deletes the given records and returns how many
// were live before the call.
func (s *Store) ArchiveByKeys(_ context.Context, vesselID string, entity core.EntityType, keys []string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	archived := 0
	for _, key := range keys {
		rec, ok := s.records[assetKey{vessel: vesselID, entity: entity, key: key}]
		if ok && !rec.archived {
			rec.archived = true
			archived++
		}
	}
	return archived, nil
}

func copyFields(in map[string]any) map[string]any {
	out := make(map[string]any, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

// Ledger is an in-memory core.HistoryLedger. Records are append-only
// and immutable for the process lifetime.
type Ledger struct {
	mu      sync.RWMutex
	records []core.HistoryRecord
}

// NewLedger creates an empty Ledger.
func NewLedger() *Ledger {
	return &Ledger{}
}

// Append stores a record and returns its generated ID.
func (l *Ledger) Append(_ context.Context, rec core.HistoryRecord) (string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	rec.ID = uuid.NewString()
	l.records = append(l.records, rec)
	return rec.ID, nil
}

// List returns paged summaries, newest first.
func (l *Ledger) List(_ context.Context, f core.HistoryFilter) ([]core.HistorySummary, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	var matched []core.HistorySummary
	for i := len(l.records) - 1; i >= 0; i-- {
		rec := l.records[i]
		if f.Entity != "" && rec.Entity != f.Entity {
			continue
		}
		matched = append(matched, core.HistorySummary{
			ID:             rec.ID,
			Entity:         rec.Entity,
			Mode:           rec.Mode,
			ArchiveMissing: rec.ArchiveMissing,
			UserID:         rec.UserID,
			VesselID:       rec.VesselID,
			Outcome:        rec.Outcome,
			StartedAt:      rec.StartedAt,
			FinishedAt:     rec.FinishedAt,
			Status:         rec.Status,
			FileName:       rec.FileName,
		})
	}

	if f.Offset >= len(matched) {
		return nil, nil
	}
	matched = matched[f.Offset:]
	if f.Limit > 0 && len(matched) > f.Limit {
		matched = matched[:f.Limit]
	}
	return matched, nil
}

// GetFile returns the stored artifact for a record, or nil bytes when
// the record or the kind has no content.
func (l *Ledger) GetFile(_ context.Context, id string, kind core.FileKind) ([]byte, string, error) {
	if kind != core.FileOriginal {
		return nil, "", nil
	}

	l.mu.RLock()
	defer l.mu.RUnlock()

	for i := range l.records {
		if l.records[i].ID == id {
			data := make([]byte, len(l.records[i].FileData))
			copy(data, l.records[i].FileData)
			return data, l.records[i].FileName, nil
		}
	}
	return nil, "", nil
}
