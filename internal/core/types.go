// Package core implements the bulk import pipeline for the vessel
// asset register: template generation, file parsing, row validation,
// dry-run session caching, commit, and the import history ledger.
// This package has no HTTP dependencies and can be driven by any
// transport layer.
package core

import (
	"context"
	"time"
)

// EntityType identifies which asset register a file targets.
type EntityType string

const (
	EntityComponent EntityType = "component"
	EntitySpare     EntityType = "spare"
	EntityStore     EntityType = "store"
)

// ParseEntityType converts a request parameter to an EntityType.
func ParseEntityType(s string) (EntityType, error) {
	switch EntityType(s) {
	case EntityComponent, EntitySpare, EntityStore:
		return EntityType(s), nil
	}
	return "", unknownEntityType(s)
}

// ImportMode controls how committed rows are applied to the store.
type ImportMode string

const (
	ModeAdd    ImportMode = "add"
	ModeUpdate ImportMode = "update"
	ModeUpsert ImportMode = "upsert"
)

// ParseImportMode converts a request parameter to an ImportMode.
func ParseImportMode(s string) (ImportMode, error) {
	switch ImportMode(s) {
	case ModeAdd, ModeUpdate, ModeUpsert:
		return ImportMode(s), nil
	}
	return "", invalidImportMode(s)
}

// FieldType represents the validation rule applied to a column.
type FieldType int

const (
	FieldText FieldType = iota
	FieldEnum
	FieldNumeric
	FieldFlag     // Yes/No
	FieldCrossRef // code referencing another register
)

// FieldSpec defines one column of an import template.
type FieldSpec struct {
	Name       string     // Column header (files must match exactly)
	Type       FieldType  // Validation rule
	Required   bool       // Empty value is a row error
	Key        bool       // Part of the natural key
	EnumValues []string   // Canonical casing for FieldEnum
	RefEntity  EntityType // Target register for FieldCrossRef
	Example    string     // Value for the template's example row
	Hint       string     // Override for the template's hint row
}

// TemplateDefinition declares the column set, constraints, and example
// row for one entity type. Headers, hint row, example row, and the
// validator's rules are all derived from Fields, so the downloadable
// template can never drift from what validation enforces.
type TemplateDefinition struct {
	Entity EntityType
	Label  string // Sheet name in the generated workbook
	Fields []FieldSpec
}

// Headers returns the ordered column headers.
func (t TemplateDefinition) Headers() []string {
	out := make([]string, len(t.Fields))
	for i, f := range t.Fields {
		out[i] = f.Name
	}
	return out
}

// ExampleRow returns the canonical example row, in header order.
func (t TemplateDefinition) ExampleRow() []string {
	out := make([]string, len(t.Fields))
	for i, f := range t.Fields {
		out[i] = f.Example
	}
	return out
}

// HintRow returns the human-readable "valid values" row for the
// downloadable template. It is documentation only: validation derives
// its rules from the FieldSpecs directly, never from this row.
func (t TemplateDefinition) HintRow() []string {
	out := make([]string, len(t.Fields))
	for i, f := range t.Fields {
		out[i] = f.hint()
	}
	return out
}

func (f FieldSpec) hint() string {
	if f.Hint != "" {
		return f.Hint
	}
	switch f.Type {
	case FieldEnum:
		return "One of: " + joinDomain(f.EnumValues)
	case FieldFlag:
		return "Yes or No"
	case FieldNumeric:
		return "Number, zero or greater"
	case FieldCrossRef:
		return "Code of an existing " + string(f.RefEntity)
	}
	if f.Required {
		return "Required"
	}
	return "Optional"
}

// KeyFields returns the natural-key column names.
func (t TemplateDefinition) KeyFields() []string {
	var out []string
	for _, f := range t.Fields {
		if f.Key {
			out = append(out, f.Name)
		}
	}
	return out
}

// RawRow is one data row from an uploaded file. Values are keyed by
// the verbatim header string; Number is the 1-based data row index
// and stays stable from dry-run preview through commit.
type RawRow struct {
	Number int
	Values map[string]string
}

// RowStatus classifies a validated row.
type RowStatus string

const (
	StatusOK      RowStatus = "ok"
	StatusWarning RowStatus = "warning"
	StatusError   RowStatus = "error"
)

// RowResult is the validation outcome for a single row. Normalized
// holds only the fields that passed their rule; failed fields appear
// only in Messages.
type RowResult struct {
	RowNumber  int            `json:"rowNumber"`
	Status     RowStatus      `json:"status"`
	Messages   []string       `json:"messages,omitempty"`
	Normalized map[string]any `json:"normalized,omitempty"`
}

// ValidationSummary holds aggregate row counts for a report.
type ValidationSummary struct {
	OK       int `json:"ok"`
	Warnings int `json:"warnings"`
	Errors   int `json:"errors"`
}

// ValidationReport is the full result of validating an upload.
type ValidationReport struct {
	Columns []string          `json:"columns"`
	Summary ValidationSummary `json:"summary"`
	Rows    []RowResult       `json:"rows"`
}

// Session is a cached dry-run result awaiting commit. Created by
// DryRun, consumed (deleted) by a successful Commit, or evicted once
// the cache TTL elapses.
type Session struct {
	Token          string
	Entity         EntityType
	Mode           ImportMode
	ArchiveMissing bool
	VesselID       string
	Rows           []RawRow
	Report         *ValidationReport
	FileName       string
	FileData       []byte
	CreatedAt      time.Time
}

// Outcome aggregates the effect of a commit. With ArchiveMissing
// disabled, Created+Updated+Skipped equals the number of committed
// rows.
type Outcome struct {
	Created  int `json:"created"`
	Updated  int `json:"updated"`
	Skipped  int `json:"skipped"`
	Archived int `json:"archived"`
}

// HistoryStatus records how a commit finished.
type HistoryStatus string

const (
	HistoryCompleted HistoryStatus = "completed"
	HistoryPartial   HistoryStatus = "partial" // some row writes failed
)

// HistoryRecord is one immutable entry in the import ledger. FileData
// retains the original uploaded bytes for later download.
type HistoryRecord struct {
	ID             string        `json:"id"`
	Entity         EntityType    `json:"entityType"`
	Mode           ImportMode    `json:"mode"`
	ArchiveMissing bool          `json:"archiveMissing"`
	UserID         string        `json:"userId,omitempty"`
	VesselID       string        `json:"vesselId"`
	Outcome        Outcome       `json:"outcome"`
	StartedAt      time.Time     `json:"startedAt"`
	FinishedAt     time.Time     `json:"finishedAt"`
	Status         HistoryStatus `json:"status"`
	FileName       string        `json:"fileName"`
	FileData       []byte        `json:"-"`
}

// HistorySummary is a HistoryRecord without the file payload, for
// listing endpoints.
type HistorySummary struct {
	ID             string        `json:"id"`
	Entity         EntityType    `json:"entityType"`
	Mode           ImportMode    `json:"mode"`
	ArchiveMissing bool          `json:"archiveMissing"`
	UserID         string        `json:"userId,omitempty"`
	VesselID       string        `json:"vesselId"`
	Outcome        Outcome       `json:"outcome"`
	StartedAt      time.Time     `json:"startedAt"`
	FinishedAt     time.Time     `json:"finishedAt"`
	Status         HistoryStatus `json:"status"`
	FileName       string        `json:"fileName"`
}

// HistoryFilter narrows a history listing.
type HistoryFilter struct {
	Entity EntityType // empty matches all
	Limit  int
	Offset int
}

// FileKind selects which stored artifact to download for a history
// record.
type FileKind string

const (
	FileOriginal FileKind = "original"
	// FileErrorReport is a declared extension point; no content is
	// generated for it yet and lookups return nil bytes.
	FileErrorReport FileKind = "error-report"
)

// ParseFileKind converts a request parameter to a FileKind.
func ParseFileKind(s string) (FileKind, error) {
	switch FileKind(s) {
	case FileOriginal, FileErrorReport:
		return FileKind(s), nil
	}
	return "", invalidFileKind(s)
}

// AssetRecord is one register entry as seen by the storage
// collaborator. Fields carries the normalized column values.
type AssetRecord struct {
	Key    string
	Fields map[string]any
}

// AssetStore is the storage collaborator for register records. All
// operations are scoped to a vessel and entity type. Implementations
// must treat archived records as absent from GetByKey and ListKeys.
type AssetStore interface {
	Create(ctx context.Context, vesselID string, entity EntityType, rec AssetRecord) error
	UpdateByKey(ctx context.Context, vesselID string, entity EntityType, rec AssetRecord) error
	GetByKey(ctx context.Context, vesselID string, entity EntityType, key string) (*AssetRecord, error)
	ListKeys(ctx context.Context, vesselID string, entity EntityType) ([]string, error)
	ArchiveByKeys(ctx context.Context, vesselID string, entity EntityType, keys []string) (int, error)
}

// HistoryLedger persists the append-only import history. There is no
// update or delete: records are immutable once written.
type HistoryLedger interface {
	Append(ctx context.Context, rec HistoryRecord) (string, error)
	List(ctx context.Context, f HistoryFilter) ([]HistorySummary, error)
	// GetFile returns the stored bytes and file name for the given
	// kind, or (nil, "", nil) when the record has no such artifact.
	GetFile(ctx context.Context, id string, kind FileKind) ([]byte, string, error)
}
