package core

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"
)

// fakeStore is an in-memory AssetStore for service tests, with
// injectable per-key write failures.
type fakeStore struct {
	mu      sync.Mutex
	records map[string]*fakeRecord
	failOn  map[string]error // natural key -> error for Create/Update
}

type fakeRecord struct {
	fields   map[string]any
	archived bool
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		records: make(map[string]*fakeRecord),
		failOn:  make(map[string]error),
	}
}

func storeKey(vesselID string, entity EntityType, key string) string {
	return vesselID + "|" + string(entity) + "|" + key
}

func (f *fakeStore) Create(_ context.Context, vesselID string, entity EntityType, rec AssetRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.failOn[rec.Key]; err != nil {
		return err
	}
	k := storeKey(vesselID, entity, rec.Key)
	if existing, ok := f.records[k]; ok && !existing.archived {
		return fmt.Errorf("duplicate key %q", rec.Key)
	}
	f.records[k] = &fakeRecord{fields: rec.Fields}
	return nil
}

func (f *fakeStore) UpdateByKey(_ context.Context, vesselID string, entity EntityType, rec AssetRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.failOn[rec.Key]; err != nil {
		return err
	}
	k := storeKey(vesselID, entity, rec.Key)
	existing, ok := f.records[k]
	if !ok || existing.archived {
		return fmt.Errorf("%w: %q", ErrRecordNotFound, rec.Key)
	}
	existing.fields = rec.Fields
	return nil
}

func (f *fakeStore) GetByKey(_ context.Context, vesselID string, entity EntityType, key string) (*AssetRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	rec, ok := f.records[storeKey(vesselID, entity, key)]
	if !ok || rec.archived {
		return nil, nil
	}
	return &AssetRecord{Key: key, Fields: rec.fields}, nil
}

func (f *fakeStore) ListKeys(_ context.Context, vesselID string, entity EntityType) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	prefix := vesselID + "|" + string(entity) + "|"
	var keys []string
	for k, rec := range f.records {
		if strings.HasPrefix(k, prefix) && !rec.archived {
			keys = append(keys, strings.TrimPrefix(k, prefix))
		}
	}
	return keys, nil
}

func (f *fakeStore) ArchiveByKeys(_ context.Context, vesselID string, entity EntityType, keys []string) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	n := 0
	for _, key := range keys {
		if rec, ok := f.records[storeKey(vesselID, entity, key)]; ok && !rec.archived {
			rec.archived = true
			n++
		}
	}
	return n, nil
}

// fakeLedger captures appended history records.
type fakeLedger struct {
	mu         sync.Mutex
	records    []HistoryRecord
	failAppend error
}

func newFakeLedger() *fakeLedger {
	return &fakeLedger{}
}

func (f *fakeLedger) Append(_ context.Context, rec HistoryRecord) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.failAppend != nil {
		return "", f.failAppend
	}
	rec.ID = fmt.Sprintf("hist-%d", len(f.records)+1)
	f.records = append(f.records, rec)
	return rec.ID, nil
}

func (f *fakeLedger) List(_ context.Context, _ HistoryFilter) ([]HistorySummary, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	out := make([]HistorySummary, 0, len(f.records))
	for i := len(f.records) - 1; i >= 0; i-- {
		r := f.records[i]
		out = append(out, HistorySummary{
			ID: r.ID, Entity: r.Entity, Mode: r.Mode, Outcome: r.Outcome,
			Status: r.Status, FileName: r.FileName,
		})
	}
	return out, nil
}

func (f *fakeLedger) GetFile(_ context.Context, id string, kind FileKind) ([]byte, string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if kind != FileOriginal {
		return nil, "", nil
	}
	for _, r := range f.records {
		if r.ID == id {
			return r.FileData, r.FileName, nil
		}
	}
	return nil, "", nil
}

func (f *fakeLedger) last(t *testing.T) HistoryRecord {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.records) == 0 {
		t.Fatal("no history records appended")
	}
	return f.records[len(f.records)-1]
}

// componentCSV builds an upload with one row per code.
func componentCSV(codes ...string) []byte {
	var b strings.Builder
	b.WriteString("Component Code,Component Name,Component Category\n")
	for _, c := range codes {
		fmt.Fprintf(&b, "%s,Engine %s,Main Engine\n", c, c)
	}
	return []byte(b.String())
}

func newTestService(store *fakeStore, ledger *fakeLedger, policy CrossRefPolicy) *Service {
	return NewService(store, ledger, NewDryRunCache(time.Hour), policy, 0)
}

func mustDryRun(t *testing.T, svc *Service, p DryRunParams) *DryRunResult {
	t.Helper()
	res, err := svc.DryRun(context.Background(), p)
	if err != nil {
		t.Fatalf("DryRun() error = %v", err)
	}
	return res
}

func TestDryRun_ValidFile(t *testing.T) {
	svc := newTestService(newFakeStore(), newFakeLedger(), CrossRefOff)

	res := mustDryRun(t, svc, DryRunParams{
		Entity:   EntityComponent,
		Mode:     ModeAdd,
		VesselID: "v1",
		FileName: "components.csv",
		FileData: componentCSV("ME-601", "AE-101"),
	})

	if res.Token == "" {
		t.Error("expected non-empty token")
	}
	if res.Report.Summary.OK != 2 || res.Report.Summary.Errors != 0 {
		t.Errorf("Summary = %+v, want 2 ok", res.Report.Summary)
	}
}

func TestDryRun_UnknownEntity(t *testing.T) {
	svc := newTestService(newFakeStore(), newFakeLedger(), CrossRefOff)

	_, err := svc.DryRun(context.Background(), DryRunParams{
		Entity:   EntityType("cargo"),
		Mode:     ModeAdd,
		FileName: "f.csv",
		FileData: componentCSV("ME-601"),
	})
	if !errors.Is(err, ErrUnknownEntityType) {
		t.Errorf("DryRun() error = %v, want ErrUnknownEntityType", err)
	}
}

func TestDryRun_DoesNotTouchStore(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store, newFakeLedger(), CrossRefOff)

	mustDryRun(t, svc, DryRunParams{
		Entity:   EntityComponent,
		Mode:     ModeAdd,
		VesselID: "v1",
		FileName: "f.csv",
		FileData: componentCSV("ME-601"),
	})

	keys, _ := store.ListKeys(context.Background(), "v1", EntityComponent)
	if len(keys) != 0 {
		t.Errorf("dry run wrote %d records, want 0", len(keys))
	}
}

func spareCSV(partCode, componentCode string) []byte {
	return []byte(fmt.Sprintf(
		"Part Code,Part Name,Component Code\n%s,Test Part,%s\n",
		partCode, componentCode))
}

func TestDryRun_CrossRefPolicies(t *testing.T) {
	tests := []struct {
		name       string
		policy     CrossRefPolicy
		wantStatus RowStatus
	}{
		{name: "off ignores missing reference", policy: CrossRefOff, wantStatus: StatusOK},
		{name: "warn flags missing reference", policy: CrossRefWarn, wantStatus: StatusWarning},
		{name: "error rejects missing reference", policy: CrossRefError, wantStatus: StatusError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newTestService(newFakeStore(), newFakeLedger(), tt.policy)

			res := mustDryRun(t, svc, DryRunParams{
				Entity:   EntitySpare,
				Mode:     ModeAdd,
				VesselID: "v1",
				FileName: "spares.csv",
				FileData: spareCSV("SP-1", "ME-999"),
			})

			if got := res.Report.Rows[0].Status; got != tt.wantStatus {
				t.Errorf("row status = %q, want %q", got, tt.wantStatus)
			}
		})
	}
}

func TestDryRun_CrossRefExisting(t *testing.T) {
	store := newFakeStore()
	err := store.Create(context.Background(), "v1", EntityComponent, AssetRecord{
		Key: "ME-601", Fields: map[string]any{"Component Code": "ME-601"},
	})
	if err != nil {
		t.Fatalf("seed: %v", err)
	}

	svc := newTestService(store, newFakeLedger(), CrossRefError)

	res := mustDryRun(t, svc, DryRunParams{
		Entity:   EntitySpare,
		Mode:     ModeAdd,
		VesselID: "v1",
		FileName: "spares.csv",
		FileData: spareCSV("SP-1", "ME-601"),
	})

	if got := res.Report.Rows[0].Status; got != StatusOK {
		t.Errorf("row status = %q, want %q (messages: %v)", got, StatusOK, res.Report.Rows[0].Messages)
	}
}

func TestDryRun_CrossRefSummaryRebuilt(t *testing.T) {
	svc := newTestService(newFakeStore(), newFakeLedger(), CrossRefError)

	res := mustDryRun(t, svc, DryRunParams{
		Entity:   EntitySpare,
		Mode:     ModeAdd,
		VesselID: "v1",
		FileName: "spares.csv",
		FileData: spareCSV("SP-1", "ME-999"),
	})

	if res.Report.Summary.Errors != 1 || res.Report.Summary.OK != 0 {
		t.Errorf("Summary = %+v, want the crossref failure counted", res.Report.Summary)
	}
}
