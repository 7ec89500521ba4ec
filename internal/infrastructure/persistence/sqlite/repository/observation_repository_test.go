package repository

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	gormsqlite "github.com/glebarez/sqlite"
	"gorm.io/gorm"

	"riskwatch/internal/domain/observation"
	"riskwatch/internal/infrastructure/persistence/sqlite/model"
	"riskwatch/internal/ports"
)

func setupObservationRepository(t *testing.T) *ObservationRepository {
	t.Helper()

	dsn := filepath.Join(t.TempDir(), "riskwatch.sqlite")
	db, err := gorm.Open(gormsqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("get sql db: %v", err)
	}
	t.Cleanup(func() {
		_ = sqlDB.Close()
	})
	if err := db.AutoMigrate(&model.Observation{}); err != nil {
		t.Fatalf("auto migrate: %v", err)
	}
	return NewObservationRepository(db)
}

func testRecord(floor, location, description string, rating int) observation.Record {
	likelihood, severity := 1, rating
	if rating == 0 {
		likelihood, severity = 0, 0
	}
	return observation.Record{
		DateStr:           "01-Sep-2026",
		Floor:             floor,
		Location:          location,
		Description:       description,
		Impact:            "n/a for test",
		Likelihood:        likelihood,
		Severity:          severity,
		RiskRating:        rating,
		CorrectiveAction:  "fix it",
		ResponsiblePerson: "chief engineer",
		Deadline:          "24 Hours",
	}
}

func TestCreateAssignsMonotonicIDs(t *testing.T) {
	repo := setupObservationRepository(t)
	ctx := context.Background()

	var last int64
	for i := 0; i < 3; i++ {
		id, err := repo.Create(ctx, testRecord("groundfloor", "lobby", "spill", 4))
		if err != nil {
			t.Fatalf("Create() error = %v", err)
		}
		if id <= last {
			t.Fatalf("id %d not greater than previous %d", id, last)
		}
		last = id
	}
}

func TestListSearchIsCaseInsensitiveAcrossFields(t *testing.T) {
	repo := setupObservationRepository(t)
	ctx := context.Background()

	if _, err := repo.Create(ctx, testRecord("groundfloor", "Main Lobby", "wet floor", 4)); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := repo.Create(ctx, testRecord("basement 1", "car park", "broken light near LOBBY sign", 6)); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := repo.Create(ctx, testRecord("roof top", "plant room", "loose railing", 20)); err != nil {
		t.Fatalf("create: %v", err)
	}

	records, err := repo.List(ctx, ports.ObservationQuery{Search: "lobby"})
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("List(search=lobby) len = %d, want 2", len(records))
	}
	for _, rec := range records {
		t.Logf("matched id=%d location=%q description=%q", rec.ID, rec.Location, rec.Description)
	}
}

func TestListSortOrders(t *testing.T) {
	repo := setupObservationRepository(t)
	ctx := context.Background()

	// Insertion order: ratings 6, 20, 6.
	for _, rating := range []int{6, 20, 6} {
		if _, err := repo.Create(ctx, testRecord("groundfloor", "lobby", "hazard", rating)); err != nil {
			t.Fatalf("create: %v", err)
		}
	}

	newest, err := repo.List(ctx, ports.ObservationQuery{Sort: ports.SortNewestFirst})
	if err != nil {
		t.Fatalf("List(newest) error = %v", err)
	}
	if newest[0].ID != 3 || newest[2].ID != 1 {
		t.Fatalf("newest order = %d,%d,%d", newest[0].ID, newest[1].ID, newest[2].ID)
	}

	oldest, err := repo.List(ctx, ports.ObservationQuery{Sort: ports.SortOldestFirst})
	if err != nil {
		t.Fatalf("List(oldest) error = %v", err)
	}
	if oldest[0].ID != 1 || oldest[2].ID != 3 {
		t.Fatalf("oldest order = %d,%d,%d", oldest[0].ID, oldest[1].ID, oldest[2].ID)
	}

	byRisk, err := repo.List(ctx, ports.ObservationQuery{Sort: ports.SortHighestRiskFirst})
	if err != nil {
		t.Fatalf("List(risk) error = %v", err)
	}
	if byRisk[0].RiskRating != 20 {
		t.Fatalf("highest risk first rating = %d", byRisk[0].RiskRating)
	}
	// Equal ratings keep insertion order.
	if byRisk[1].ID != 1 || byRisk[2].ID != 3 {
		t.Fatalf("tie-break order = %d,%d", byRisk[1].ID, byRisk[2].ID)
	}
}

func TestGetAndDelete(t *testing.T) {
	repo := setupObservationRepository(t)
	ctx := context.Background()

	rec := testRecord("groundfloor", "lobby", "spill", 4)
	rec.PhotoBytes = []byte{0xff, 0xd8, 0x01}
	id, err := repo.Create(ctx, rec)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	got, err := repo.Get(ctx, id)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.Location != "lobby" || len(got.PhotoBytes) != 3 {
		t.Fatalf("Get() = %+v", got)
	}

	if err := repo.Delete(ctx, id); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, err := repo.Get(ctx, id); !errors.Is(err, ports.ErrObservationNotFound) {
		t.Fatalf("Get() after delete error = %v, want ErrObservationNotFound", err)
	}
	if err := repo.Delete(ctx, id); !errors.Is(err, ports.ErrObservationNotFound) {
		t.Fatalf("Delete() twice error = %v, want ErrObservationNotFound", err)
	}
}
