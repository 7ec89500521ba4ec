package observations

import (
	"context"
	"errors"
	"sort"
	"strings"
	"testing"
	"time"

	"riskwatch/internal/domain/observation"
	"riskwatch/internal/ports"
)

type memRepo struct {
	records []observation.Record
	nextID  int64
	failing bool
}

func newMemRepo() *memRepo { return &memRepo{nextID: 1} }

func (m *memRepo) Create(_ context.Context, rec observation.Record) (int64, error) {
	if m.failing {
		return 0, errors.New("store unavailable")
	}
	rec.ID = m.nextID
	m.nextID++
	m.records = append(m.records, rec)
	return rec.ID, nil
}

func (m *memRepo) List(_ context.Context, query ports.ObservationQuery) ([]observation.Record, error) {
	if m.failing {
		return nil, errors.New("store unavailable")
	}

	matches := func(rec observation.Record) bool {
		if query.Search == "" {
			return true
		}
		needle := strings.ToLower(query.Search)
		return strings.Contains(strings.ToLower(rec.Description), needle) ||
			strings.Contains(strings.ToLower(rec.Location), needle) ||
			strings.Contains(strings.ToLower(rec.Floor), needle)
	}

	out := make([]observation.Record, 0, len(m.records))
	for _, rec := range m.records {
		if matches(rec) {
			out = append(out, rec)
		}
	}

	switch query.Sort {
	case ports.SortNewestFirst:
		sort.SliceStable(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	case ports.SortHighestRiskFirst:
		sort.SliceStable(out, func(i, j int) bool { return out[i].RiskRating > out[j].RiskRating })
	}
	return out, nil
}

func (m *memRepo) Get(_ context.Context, id int64) (observation.Record, error) {
	for _, rec := range m.records {
		if rec.ID == id {
			return rec, nil
		}
	}
	return observation.Record{}, ports.ErrObservationNotFound
}

func (m *memRepo) Delete(_ context.Context, id int64) error {
	for i, rec := range m.records {
		if rec.ID == id {
			m.records = append(m.records[:i], m.records[i+1:]...)
			return nil
		}
	}
	return ports.ErrObservationNotFound
}

type memUow struct{}

func (memUow) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func newTestService(repo *memRepo, oracle ports.TextOracle) *Service {
	svc := NewService(repo, memUow{}, oracle)
	svc.now = func() time.Time { return time.Date(2026, 9, 1, 9, 0, 0, 0, time.UTC) }
	return svc
}

func TestSubmitStoresEnrichedRecord(t *testing.T) {
	repo := newMemRepo()
	svc := newTestService(repo, &fakeOracle{available: true, reply: cleanReply})

	res, err := svc.Submit(context.Background(), SubmitInput{
		Floor:       "G",
		Location:    "entrance",
		Description: "spill near entrance",
	})
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	if res.ID != 1 {
		t.Fatalf("assigned id = %d", res.ID)
	}
	if res.Record.Floor != "groundfloor" {
		t.Fatalf("stored floor = %q", res.Record.Floor)
	}
	if res.Record.RiskRating != 12 {
		t.Fatalf("stored rating = %d", res.Record.RiskRating)
	}
	if res.Record.DateStr != "01-Sep-2026" {
		t.Fatalf("stored date = %q", res.Record.DateStr)
	}
}

func TestSubmitProceedsOnOracleFailure(t *testing.T) {
	repo := newMemRepo()
	svc := newTestService(repo, &fakeOracle{available: true, err: errors.New("timeout")})

	res, err := svc.Submit(context.Background(), SubmitInput{
		Floor:       "G",
		Location:    "entrance",
		Description: "spill",
	})
	if err != nil {
		t.Fatalf("Submit() error = %v, oracle failure must not abort", err)
	}

	stored, err := repo.Get(context.Background(), res.ID)
	if err != nil {
		t.Fatalf("record was not stored: %v", err)
	}
	if stored.Description != observation.SentinelGeneral {
		t.Fatalf("stored description = %q, want general sentinel", stored.Description)
	}
	if stored.RiskRating != 0 {
		t.Fatalf("stored rating = %d, want unscored", stored.RiskRating)
	}
}

func TestSubmitRejectsIncompleteInputBeforeOracle(t *testing.T) {
	oracle := &fakeOracle{available: true, reply: cleanReply}
	repo := newMemRepo()
	svc := newTestService(repo, oracle)

	_, err := svc.Submit(context.Background(), SubmitInput{Location: "entrance"})
	if err == nil {
		t.Fatal("Submit() with missing fields returned nil error")
	}
	var verr *observation.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("error type = %T", err)
	}
	if oracle.prompt != "" {
		t.Fatal("oracle was called before validation")
	}
	if len(repo.records) != 0 {
		t.Fatal("record stored despite validation failure")
	}
}

func TestSubmitPropagatesStoreFailure(t *testing.T) {
	repo := newMemRepo()
	repo.failing = true
	svc := newTestService(repo, &fakeOracle{available: true, reply: cleanReply})

	_, err := svc.Submit(context.Background(), SubmitInput{
		Floor:       "G",
		Location:    "entrance",
		Description: "spill",
	})
	if err == nil {
		t.Fatal("Submit() with failing store returned nil error")
	}
}

func TestExportReportNamesFileByDate(t *testing.T) {
	repo := newMemRepo()
	svc := newTestService(repo, &fakeOracle{available: false})

	res, err := svc.ExportReport(context.Background())
	if err != nil {
		t.Fatalf("ExportReport() error = %v", err)
	}
	if res.Filename != "Full_Safety_Report_20260901.xlsx" {
		t.Fatalf("filename = %q", res.Filename)
	}
	if len(res.Data) == 0 {
		t.Fatal("empty export payload")
	}
}

func TestSeedInsertsEntriesAndRecomputesRating(t *testing.T) {
	repo := newMemRepo()
	svc := newTestService(repo, &fakeOracle{available: false})

	n, err := svc.Seed(context.Background(), []SeedEntry{
		{Floor: "groundfloor", Location: "lobby", Description: "spill", Likelihood: 2, Severity: 3},
		{Floor: "roof top", Location: "plant room", Description: "loose railing", Likelihood: 4, Severity: 5},
	})
	if err != nil {
		t.Fatalf("Seed() error = %v", err)
	}
	if n != 2 {
		t.Fatalf("inserted = %d", n)
	}
	if repo.records[0].RiskRating != 6 || repo.records[1].RiskRating != 20 {
		t.Fatalf("ratings = %d, %d", repo.records[0].RiskRating, repo.records[1].RiskRating)
	}
	if repo.records[0].DateStr != "01-Sep-2026" {
		t.Fatalf("defaulted date = %q", repo.records[0].DateStr)
	}
}

func TestSeedRejectsIncompleteEntry(t *testing.T) {
	repo := newMemRepo()
	svc := newTestService(repo, &fakeOracle{available: false})

	_, err := svc.Seed(context.Background(), []SeedEntry{{Location: "lobby"}})
	if err == nil {
		t.Fatal("Seed() with incomplete entry returned nil error")
	}
	if len(repo.records) != 0 {
		t.Fatal("incomplete seed entry was inserted")
	}
}
