package forecast

import (
	"context"
	"time"
)

func strPtr(s string) *string { return &s }

func datePtr(y int, m time.Month, d int) *time.Time {
	t := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return &t
}

// DemoForecasts are the records inserted by Seed.
func DemoForecasts() []Input {
	return []Input{
		{
			PartCode:        "P-001",
			ForecastedUsage: 30,
			JobID:           strPtr("J-789"),
			JobStartDate:    datePtr(2025, time.August, 3),
			JobEndDate:      datePtr(2025, time.August, 10),
		},
		{
			PartCode:        "P-002",
			ForecastedUsage: 10,
			JobID:           strPtr("J-790"),
			JobStartDate:    datePtr(2025, time.August, 4),
			JobEndDate:      datePtr(2025, time.August, 8),
		},
	}
}

// Seed inserts the demo forecasts when the table is empty and reports how
// many rows it added.
func Seed(ctx context.Context, store *Store) (int, error) {
	n, err := store.Count(ctx)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		return 0, nil
	}

	rows, err := store.CreateBatch(ctx, DemoForecasts())
	if err != nil {
		return 0, err
	}
	return len(rows), nil
}
