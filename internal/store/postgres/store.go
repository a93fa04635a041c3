// Package postgres backs the asset store and history ledger ports
// with PostgreSQL via pgx. Register field payloads are stored as
// JSONB; archiving is a soft-delete flag so history stays queryable.
package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/harborworks/fleetimport/internal/core"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const schema = `
CREATE TABLE IF NOT EXISTS asset_records (
	vessel_id   TEXT        NOT NULL,
	entity      TEXT        NOT NULL,
	natural_key TEXT        NOT NULL,
	fields      JSONB       NOT NULL DEFAULT '{}',
	archived    BOOLEAN     NOT NULL DEFAULT FALSE,
	created_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
	PRIMARY KEY (vessel_id, entity, natural_key)
);

CREATE TABLE IF NOT EXISTS import_history (
	id              UUID        PRIMARY KEY,
	entity          TEXT        NOT NULL,
	mode            TEXT        NOT NULL,
	archive_missing BOOLEAN     NOT NULL,
	user_id         TEXT        NOT NULL DEFAULT '',
	vessel_id       TEXT        NOT NULL,
	created_count   INTEGER     NOT NULL,
	updated_count   INTEGER     NOT NULL,
	skipped_count   INTEGER     NOT NULL,
	archived_count  INTEGER     NOT NULL,
	started_at      TIMESTAMPTZ NOT NULL,
	finished_at     TIMESTAMPTZ NOT NULL,
	status          TEXT        NOT NULL,
	file_name       TEXT        NOT NULL,
	file_data       BYTEA
);

CREATE INDEX IF NOT EXISTS import_history_entity_started
	ON import_history (entity, started_at DESC);
`

// Store implements core.AssetStore on a pgx connection pool.
type Store struct {
	pool *pgxpool.Pool
}

// NewStore wraps a connection pool.
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// EnsureSchema creates the tables if they do not exist yet.
func (s *Store) EnsureSchema(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}

// Create inserts a new record. A live record under the same key is a
// duplicate-key error; an archived one is revived with the new fields.
func (s *Store) Create(ctx context.Context, vesselID string, entity core.EntityType, rec core.AssetRecord) error {
	fields, err := json.Marshal(rec.Fields)
	if err != nil {
		return fmt.Errorf("marshal fields: %w", err)
	}

	tag, err := s.pool.Exec(ctx, `
		INSERT INTO asset_records (vessel_id, entity, natural_key, fields)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (vessel_id, entity, natural_key) DO UPDATE
			SET fields = EXCLUDED.fields, archived = FALSE, updated_at = now()
			WHERE asset_records.archived`,
		vesselID, string(entity), rec.Key, fields)
	if err != nil {
		return fmt.Errorf("create %q: %w", rec.Key, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("duplicate key %q", rec.Key)
	}
	return nil
}

// UpdateByKey replaces the fields of a live record.
func (s *Store) UpdateByKey(ctx context.Context, vesselID string, entity core.EntityType, rec core.AssetRecord) error {
	fields, err := json.Marshal(rec.Fields)
	if err != nil {
		return fmt.Errorf("marshal fields: %w", err)
	}

	tag, err := s.pool.Exec(ctx, `
		UPDATE asset_records
		SET fields = $4, updated_at = now()
		WHERE vessel_id = $1 AND entity = $2 AND natural_key = $3 AND NOT archived`,
		vesselID, string(entity), rec.Key, fields)
	if err != nil {
		return fmt.Errorf("update %q: %w", rec.Key, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: %q", core.ErrRecordNotFound, rec.Key)
	}
	return nil
}

// GetByKey returns a live record, or nil when absent or archived.
func (s *Store) GetByKey(ctx context.Context, vesselID string, entity core.EntityType, key string) (*core.AssetRecord, error) {
	var raw []byte
	err := s.pool.QueryRow(ctx, `
		SELECT fields FROM asset_records
		WHERE vessel_id = $1 AND entity = $2 AND natural_key = $3 AND NOT archived`,
		vesselID, string(entity), key).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get %q: %w", key, err)
	}

	fields := make(map[string]any)
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, fmt.Errorf("unmarshal fields for %q: %w", key, err)
	}
	return &core.AssetRecord{Key: key, Fields: fields}, nil
}

// ListKeys returns the natural keys of all live records for the
// vessel and entity type, sorted.
func (s *Store) ListKeys(ctx context.Context, vesselID string, entity core.EntityType) ([]string, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT natural_key FROM asset_records
		WHERE vessel_id = $1 AND entity = $2 AND NOT archived
		ORDER BY natural_key`,
		vesselID, string(entity))
	if err != nil {
		return nil, fmt.Errorf("list keys: %w", err)
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, err
		}
		keys = append(keys, k)
	}
	return keys, rows.Err()
}

// ArchiveByKeys soft-deletes the given records and returns how many
// were live before the call.
func (s *Store) ArchiveByKeys(ctx context.Context, vesselID string, entity core.EntityType, keys []string) (int, error) {
	tag, err := s.pool.Exec(ctx, `
		UPDATE asset_records
		SET archived = TRUE, updated_at = now()
		WHERE vessel_id = $1 AND entity = $2 AND natural_key = ANY($3) AND NOT archived`,
		vesselID, string(entity), keys)
	if err != nil {
		return 0, fmt.Errorf("archive: %w", err)
	}
	return int(tag.RowsAffected()), nil
}

// Ledger implements core.HistoryLedger on the same pool.
type Ledger struct {
	pool *pgxpool.Pool
}

// NewLedger wraps a connection pool.
func NewLedger(pool *pgxpool.Pool) *Ledger {
	return &Ledger{pool: pool}
}

// Append inserts a history record and returns its generated ID.
func (l *Ledger) Append(ctx context.Context, rec core.HistoryRecord) (string, error) {
	id := uuid.NewString()
	_, err := l.pool.Exec(ctx, `
		INSERT INTO import_history (
			id, entity, mode, archive_missing, user_id, vessel_id,
			created_count, updated_count, skipped_count, archived_count,
			started_at, finished_at, status, file_name, file_data
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15)`,
		id, string(rec.Entity), string(rec.Mode), rec.ArchiveMissing, rec.UserID, rec.VesselID,
		rec.Outcome.Created, rec.Outcome.Updated, rec.Outcome.Skipped, rec.Outcome.Archived,
		rec.StartedAt, rec.FinishedAt, string(rec.Status), rec.FileName, rec.FileData)
	if err != nil {
		return "", fmt.Errorf("append history: %w", err)
	}
	return id, nil
}

// List returns paged summaries, newest first.
func (l *Ledger) List(ctx context.Context, f core.HistoryFilter) ([]core.HistorySummary, error) {
	rows, err := l.pool.Query(ctx, `
		SELECT id, entity, mode, archive_missing, user_id, vessel_id,
		       created_count, updated_count, skipped_count, archived_count,
		       started_at, finished_at, status, file_name
		FROM import_history
		WHERE $1 = '' OR entity = $1
		ORDER BY started_at DESC
		LIMIT $2 OFFSET $3`,
		string(f.Entity), f.Limit, f.Offset)
	if err != nil {
		return nil, fmt.Errorf("list history: %w", err)
	}
	defer rows.Close()

	var out []core.HistorySummary
	for rows.Next() {
		var s core.HistorySummary
		var entity, mode, status string
		if err := rows.Scan(
			&s.ID, &entity, &mode, &s.ArchiveMissing, &s.UserID, &s.VesselID,
			&s.Outcome.Created, &s.Outcome.Updated, &s.Outcome.Skipped, &s.Outcome.Archived,
			&s.StartedAt, &s.FinishedAt, &status, &s.FileName,
		); err != nil {
			return nil, err
		}
		s.Entity = core.EntityType(entity)
		s.Mode = core.ImportMode(mode)
		s.Status = core.HistoryStatus(status)
		out = append(out, s)
	}
	return out, rows.Err()
}

// GetFile returns the stored artifact for a record, or nil bytes when
// the record or the kind has no content.
func (l *Ledger) GetFile(ctx context.Context, id string, kind core.FileKind) ([]byte, string, error) {
	if kind != core.FileOriginal {
		return nil, "", nil
	}

	var data []byte
	var name string
	err := l.pool.QueryRow(ctx,
		`SELECT file_data, file_name FROM import_history WHERE id = $1`,
		id).Scan(&data, &name)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, "", nil
	}
	if err != nil {
		return nil, "", fmt.Errorf("get history file: %w", err)
	}
	return data, name, nil
}
