package core

import (
	"context"
)

// DefaultHistoryLimit caps a history page when the caller does not
// specify one.
const DefaultHistoryLimit = 50

// History returns paged import history summaries, newest first,
// optionally filtered by entity type.
func (s *Service) History(ctx context.Context, f HistoryFilter) ([]HistorySummary, error) {
	if f.Limit <= 0 {
		f.Limit = DefaultHistoryLimit
	}
	if f.Offset < 0 {
		f.Offset = 0
	}
	return s.ledger.List(ctx, f)
}

// HistoryFile returns the stored artifact for a history record.
// The error-report kind is a declared extension point with no content
// yet, so it yields (nil, "", nil) like a record with no file.
func (s *Service) HistoryFile(ctx context.Context, id string, kind FileKind) ([]byte, string, error) {
	return s.ledger.GetFile(ctx, id, kind)
}
