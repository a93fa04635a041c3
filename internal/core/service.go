package core

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// CrossRefPolicy decides how a cross-reference field that names a
// nonexistent record is reported during dry run. The pure validator
// only checks presence; the existence lookup happens here, where the
// storage collaborator is available.
type CrossRefPolicy string

const (
	CrossRefOff   CrossRefPolicy = "off"   // presence check only
	CrossRefWarn  CrossRefPolicy = "warn"  // row accepted, flagged
	CrossRefError CrossRefPolicy = "error" // row rejected
)

// ParseCrossRefPolicy converts a config value to a CrossRefPolicy.
func ParseCrossRefPolicy(s string) (CrossRefPolicy, error) {
	switch CrossRefPolicy(s) {
	case CrossRefOff, CrossRefWarn, CrossRefError:
		return CrossRefPolicy(s), nil
	}
	return "", fmt.Errorf("invalid cross-reference policy %q (expected off, warn, or error)", s)
}

// Service wires the import pipeline together: parser and validator in
// front, the dry-run cache in the middle, the storage collaborator
// and history ledger behind commit.
type Service struct {
	store       AssetStore
	ledger      HistoryLedger
	cache       *DryRunCache
	crossRef    CrossRefPolicy
	maxFileSize int64
	now         func() time.Time
}

// NewService creates a Service. A nil cache gets a fresh one with the
// default TTL; a maxFileSize of zero or less falls back to
// DefaultMaxUploadSize.
func NewService(store AssetStore, ledger HistoryLedger, cache *DryRunCache, crossRef CrossRefPolicy, maxFileSize int64) *Service {
	if cache == nil {
		cache = NewDryRunCache(DefaultSessionTTL)
	}
	if crossRef == "" {
		crossRef = CrossRefWarn
	}
	if maxFileSize <= 0 {
		maxFileSize = DefaultMaxUploadSize
	}
	return &Service{
		store:       store,
		ledger:      ledger,
		cache:       cache,
		crossRef:    crossRef,
		maxFileSize: maxFileSize,
		now:         time.Now,
	}
}

// DryRunParams carries one upload through parse and validate.
type DryRunParams struct {
	Entity         EntityType
	Mode           ImportMode
	ArchiveMissing bool
	VesselID       string
	FileName       string
	FileData       []byte
}

// DryRunResult is the preview returned to the client. The token stays
// committable until the cache TTL elapses.
type DryRunResult struct {
	Token  string            `json:"fileToken"`
	Report *ValidationReport `json:"report"`
}

// DryRun parses and validates an upload, caches the session under a
// fresh token, and returns the full report. Stored data is never
// touched.
func (s *Service) DryRun(ctx context.Context, p DryRunParams) (*DryRunResult, error) {
	def, err := GetTemplate(p.Entity)
	if err != nil {
		return nil, err
	}

	_, rows, err := Parse(p.FileData, p.FileName, s.maxFileSize)
	if err != nil {
		return nil, err
	}

	report, err := Validate(p.Entity, rows)
	if err != nil {
		return nil, err
	}

	if s.crossRef != CrossRefOff {
		s.checkCrossRefs(ctx, def, p.VesselID, report)
	}

	token := s.cache.Put(&Session{
		Entity:         p.Entity,
		Mode:           p.Mode,
		ArchiveMissing: p.ArchiveMissing,
		VesselID:       p.VesselID,
		Rows:           rows,
		Report:         report,
		FileName:       p.FileName,
		FileData:       p.FileData,
	})

	slog.Info("dry run complete",
		"entity", p.Entity,
		"mode", p.Mode,
		"vessel", p.VesselID,
		"rows", len(rows),
		"ok", report.Summary.OK,
		"warnings", report.Summary.Warnings,
		"errors", report.Summary.Errors,
	)

	return &DryRunResult{Token: token, Report: report}, nil
}

// checkCrossRefs looks up every cross-reference value in its target
// register and flags misses per the configured policy. Summary counts
// are rebuilt afterwards since row statuses may change.
func (s *Service) checkCrossRefs(ctx context.Context, def TemplateDefinition, vesselID string, report *ValidationReport) {
	var refFields []FieldSpec
	for _, f := range def.Fields {
		if f.Type == FieldCrossRef {
			refFields = append(refFields, f)
		}
	}
	if len(refFields) == 0 {
		return
	}

	// One lookup per distinct code, not per row.
	seen := make(map[string]bool)

	for i := range report.Rows {
		row := &report.Rows[i]
		for _, spec := range refFields {
			code, ok := row.Normalized[spec.Name].(string)
			if !ok || code == "" {
				continue
			}
			cacheKey := string(spec.RefEntity) + "|" + code
			exists, found := seen[cacheKey]
			if !found {
				rec, err := s.store.GetByKey(ctx, vesselID, spec.RefEntity, code)
				if err != nil {
					// Lookup failure is not the row's fault; leave it be.
					slog.Warn("cross-reference lookup failed", "entity", spec.RefEntity, "code", code, "error", err)
					continue
				}
				exists = rec != nil
				seen[cacheKey] = exists
			}
			if exists {
				continue
			}
			msg := fmt.Sprintf("%q %s does not exist in the %s register", code, spec.Name, spec.RefEntity)
			if s.crossRef == CrossRefError {
				row.fail(msg)
			} else {
				row.warn(msg)
			}
		}
	}

	report.Summary = summarize(report.Rows)
}

// summarize recounts row statuses into a summary.
func summarize(rows []RowResult) ValidationSummary {
	var sum ValidationSummary
	for _, r := range rows {
		switch r.Status {
		case StatusError:
			sum.Errors++
		case StatusWarning:
			sum.Warnings++
		default:
			sum.OK++
		}
	}
	return sum
}
