package forecast

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"mes-planner/internal/apperror"
	"mes-planner/internal/models"
	"mes-planner/internal/testutil"
)

func fixtureInput(opts ...func(*Input)) Input {
	start := time.Date(2025, time.August, 3, 0, 0, 0, 0, time.UTC)
	end := time.Date(2025, time.August, 10, 0, 0, 0, 0, time.UTC)
	in := Input{
		PartCode:        "P-001",
		ForecastedUsage: 30,
		JobID:           strPtr("J-789"),
		JobStartDate:    &start,
		JobEndDate:      &end,
	}
	for _, opt := range opts {
		opt(&in)
	}
	return in
}

func assertSameFields(t *testing.T, got *models.Forecast, want Input) {
	t.Helper()

	if got.PartCode != want.PartCode {
		t.Errorf("expected part_code %s, got %s", want.PartCode, got.PartCode)
	}
	if got.ForecastedUsage != want.ForecastedUsage {
		t.Errorf("expected forecasted_usage %d, got %d", want.ForecastedUsage, got.ForecastedUsage)
	}
	if (got.JobID == nil) != (want.JobID == nil) || (got.JobID != nil && *got.JobID != *want.JobID) {
		t.Errorf("expected job_id %v, got %v", want.JobID, got.JobID)
	}
	if (got.JobStartDate == nil) != (want.JobStartDate == nil) ||
		(got.JobStartDate != nil && !got.JobStartDate.Equal(*want.JobStartDate)) {
		t.Errorf("expected job_start_date %v, got %v", want.JobStartDate, got.JobStartDate)
	}
	if (got.JobEndDate == nil) != (want.JobEndDate == nil) ||
		(got.JobEndDate != nil && !got.JobEndDate.Equal(*want.JobEndDate)) {
		t.Errorf("expected job_end_date %v, got %v", want.JobEndDate, got.JobEndDate)
	}
}

func TestStore_CreateAndGet(t *testing.T) {
	db := testutil.NewTestDB(t)
	store := NewStore(db)
	ctx := context.Background()

	t.Run("Round trip keeps every field", func(t *testing.T) {
		in := fixtureInput()

		created, err := store.Create(ctx, in)
		if err != nil {
			t.Fatalf("failed to create forecast: %v", err)
		}
		if created.ID == 0 {
			t.Fatal("expected an assigned id")
		}

		found, err := store.Get(ctx, created.ID)
		if err != nil {
			t.Fatalf("failed to get forecast: %v", err)
		}
		if found.ID != created.ID {
			t.Errorf("expected ID %d, got %d", created.ID, found.ID)
		}
		assertSameFields(t, found, in)
	})

	t.Run("Optional fields may be empty", func(t *testing.T) {
		in := fixtureInput(func(i *Input) {
			i.PartCode = "P-002"
			i.JobID = nil
			i.JobStartDate = nil
			i.JobEndDate = nil
		})

		created, err := store.Create(ctx, in)
		if err != nil {
			t.Fatalf("failed to create forecast: %v", err)
		}
		found, err := store.Get(ctx, created.ID)
		if err != nil {
			t.Fatalf("failed to get forecast: %v", err)
		}
		assertSameFields(t, found, in)
	})

	t.Run("Ids are unique", func(t *testing.T) {
		a, err := store.Create(ctx, fixtureInput())
		if err != nil {
			t.Fatalf("create: %v", err)
		}
		b, err := store.Create(ctx, fixtureInput())
		if err != nil {
			t.Fatalf("create: %v", err)
		}
		if a.ID == b.ID {
			t.Errorf("expected distinct ids, both %d", a.ID)
		}
	})
}

func TestStore_CreateValidation(t *testing.T) {
	db := testutil.NewTestDB(t)
	store := NewStore(db)
	ctx := context.Background()

	tests := []struct {
		name  string
		input Input
		field string
	}{
		{"empty part code", fixtureInput(func(i *Input) { i.PartCode = "" }), "part_code"},
		{"blank part code", fixtureInput(func(i *Input) { i.PartCode = "   " }), "part_code"},
		{"negative usage", fixtureInput(func(i *Input) { i.ForecastedUsage = -1 }), "forecasted_usage"},
		{"end before start", fixtureInput(func(i *Input) {
			early := i.JobStartDate.Add(-48 * time.Hour)
			i.JobEndDate = &early
		}), "job_end_date"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := store.Create(ctx, tt.input)

			var verr *apperror.ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			if verr.Field != tt.field {
				t.Errorf("expected field %s, got %s", tt.field, verr.Field)
			}
		})
	}

	testutil.AssertRowCount(t, db, &models.Forecast{}, 0)
}

func TestStore_Update(t *testing.T) {
	db := testutil.NewTestDB(t)
	store := NewStore(db)
	ctx := context.Background()

	created, err := store.Create(ctx, fixtureInput())
	if err != nil {
		t.Fatalf("failed to create forecast: %v", err)
	}

	t.Run("Replaces all mutable fields", func(t *testing.T) {
		in := Input{PartCode: "P-009", ForecastedUsage: 5}

		updated, before, err := store.Update(ctx, created.ID, in)
		if err != nil {
			t.Fatalf("failed to update forecast: %v", err)
		}
		if updated.ID != created.ID {
			t.Errorf("update changed id: %d -> %d", created.ID, updated.ID)
		}
		if before.PartCode != "P-001" {
			t.Errorf("expected previous part_code P-001, got %s", before.PartCode)
		}

		found, err := store.Get(ctx, created.ID)
		if err != nil {
			t.Fatalf("failed to get forecast: %v", err)
		}
		assertSameFields(t, found, in)
	})

	t.Run("Unknown id", func(t *testing.T) {
		_, _, err := store.Update(ctx, 9999, fixtureInput())
		var nf *apperror.NotFoundError
		if !errors.As(err, &nf) {
			t.Fatalf("expected NotFoundError, got %v", err)
		}
	})

	t.Run("Invalid input does not touch the row", func(t *testing.T) {
		_, _, err := store.Update(ctx, created.ID, Input{PartCode: "P-010", ForecastedUsage: -3})
		var verr *apperror.ValidationError
		if !errors.As(err, &verr) {
			t.Fatalf("expected ValidationError, got %v", err)
		}

		found, err := store.Get(ctx, created.ID)
		if err != nil {
			t.Fatalf("failed to get forecast: %v", err)
		}
		if found.PartCode != "P-009" {
			t.Errorf("expected part_code to stay P-009, got %s", found.PartCode)
		}
	})
}

func TestStore_Delete(t *testing.T) {
	db := testutil.NewTestDB(t)
	store := NewStore(db)
	ctx := context.Background()

	created, err := store.Create(ctx, fixtureInput())
	if err != nil {
		t.Fatalf("failed to create forecast: %v", err)
	}

	deleted, err := store.Delete(ctx, created.ID)
	if err != nil {
		t.Fatalf("failed to delete forecast: %v", err)
	}
	if deleted.PartCode != "P-001" {
		t.Errorf("expected deleted row to be returned, got %+v", deleted)
	}

	var nf *apperror.NotFoundError
	if _, err := store.Get(ctx, created.ID); !errors.As(err, &nf) {
		t.Errorf("expected NotFoundError after delete, got %v", err)
	}
	if _, err := store.Delete(ctx, created.ID); !errors.As(err, &nf) {
		t.Errorf("expected NotFoundError on second delete, got %v", err)
	}
}

func TestStore_CreateBatch(t *testing.T) {
	db := testutil.NewTestDB(t)
	store := NewStore(db)
	ctx := context.Background()

	t.Run("Invalid row rejects the batch", func(t *testing.T) {
		_, err := store.CreateBatch(ctx, []Input{
			fixtureInput(),
			fixtureInput(func(i *Input) { i.PartCode = "" }),
		})
		var verr *apperror.ValidationError
		if !errors.As(err, &verr) {
			t.Fatalf("expected ValidationError, got %v", err)
		}
		testutil.AssertRowCount(t, db, &models.Forecast{}, 0)
	})

	t.Run("Valid batch", func(t *testing.T) {
		rows, err := store.CreateBatch(ctx, DemoForecasts())
		if err != nil {
			t.Fatalf("failed to create batch: %v", err)
		}
		if len(rows) != 2 {
			t.Fatalf("expected 2 rows, got %d", len(rows))
		}
		testutil.AssertRowCount(t, db, &models.Forecast{}, 2)
	})
}

func TestStore_ConcurrentWriters(t *testing.T) {
	db := testutil.NewTestDB(t)
	store := NewStore(db)
	ctx := context.Background()

	var wg sync.WaitGroup
	errs := make(chan error, 20)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			if _, err := store.Create(ctx, fixtureInput(func(in *Input) { in.ForecastedUsage = n })); err != nil {
				errs <- err
			}
		}(i)
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		t.Errorf("concurrent create failed: %v", err)
	}
	testutil.AssertRowCount(t, db, &models.Forecast{}, 20)
}

func TestSeed(t *testing.T) {
	db := testutil.NewTestDB(t)
	store := NewStore(db)
	ctx := context.Background()

	n, err := Seed(ctx, store)
	if err != nil {
		t.Fatalf("seed failed: %v", err)
	}
	if n != 2 {
		t.Errorf("expected 2 seeded rows, got %d", n)
	}

	n, err = Seed(ctx, store)
	if err != nil {
		t.Fatalf("second seed failed: %v", err)
	}
	if n != 0 {
		t.Errorf("expected seed to be a no-op on a non-empty table, added %d", n)
	}
	testutil.AssertRowCount(t, db, &models.Forecast{}, 2)
}
