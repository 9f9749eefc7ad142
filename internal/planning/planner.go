package planning

import (
	"context"
	"fmt"
	"time"

	"mes-planner/internal/apperror"
	"mes-planner/internal/erp"
	"mes-planner/internal/models"
)

const (
	DefaultHorizonDays = 7
	MinHorizonDays     = 1
	MaxHorizonDays     = 90
)

type InventoryFetcher interface {
	FetchInventory(ctx context.Context) ([]erp.InventoryRecord, error)
}

type ForecastLister interface {
	List(ctx context.Context) ([]models.Forecast, error)
}

// Candidate is one reorder recommendation. It lives for a single request.
type Candidate struct {
	PartID                int64     `json:"part_id"`
	PartName              string    `json:"part_name"`
	PartCode              string    `json:"part_code"`
	CurrentStock          int       `json:"current_stock"`
	ReorderPoint          int       `json:"reorder_point"`
	UsageRatePerDay       float64   `json:"usage_rate_per_day"`
	LeadTimeDays          int       `json:"lead_time_days"`
	MinThreshold          *int      `json:"min_threshold,omitempty"`
	MaxThreshold          *int      `json:"max_threshold,omitempty"`
	ForecastedUsageWindow int       `json:"forecasted_usage_window"`
	Urgency               Urgency   `json:"urgency"`
	Reason                string    `json:"reason"`
	RecommendedQuantity   int       `json:"recommendedQuantity"`
	DepletionDate         time.Time `json:"depletionDate"`
}

type Planner struct {
	inventory InventoryFetcher
	forecasts ForecastLister
	now       func() time.Time
}

func NewPlanner(inventory InventoryFetcher, forecasts ForecastLister) *Planner {
	return &Planner{
		inventory: inventory,
		forecasts: forecasts,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// ComputeReorderCandidates joins the inventory snapshot with summed forecast
// demand and returns ranked candidates. Any upstream failure aborts the
// computation with no partial result.
func (p *Planner) ComputeReorderCandidates(ctx context.Context, horizonDays int) ([]Candidate, error) {
	if horizonDays < MinHorizonDays || horizonDays > MaxHorizonDays {
		return nil, apperror.Validation("horizon_days", fmt.Sprintf("%d..%d arasında olmalı", MinHorizonDays, MaxHorizonDays))
	}

	records, err := p.inventory.FetchInventory(ctx)
	if err != nil {
		return nil, err
	}

	forecasts, err := p.forecasts.List(ctx)
	if err != nil {
		return nil, err
	}

	return BuildCandidates(records, SumDemand(forecasts), p.now()), nil
}

// BuildCandidates is the pure part of the computation. Records without a
// part code cannot be matched to demand and are skipped.
func BuildCandidates(records []erp.InventoryRecord, demand map[string]int, now time.Time) []Candidate {
	out := make([]Candidate, 0, len(records))
	for _, r := range records {
		if r.PartCode == "" {
			continue
		}

		window := demand[r.PartCode]
		urgency := ClassifyUrgency(r.CurrentStock, r.UsageRatePerDay, r.LeadTimeDays, r.ReorderPoint, window)

		out = append(out, Candidate{
			PartID:                r.PartID,
			PartName:              r.PartName,
			PartCode:              r.PartCode,
			CurrentStock:          r.CurrentStock,
			ReorderPoint:          r.ReorderPoint,
			UsageRatePerDay:       r.UsageRatePerDay.InexactFloat64(),
			LeadTimeDays:          r.LeadTimeDays,
			MinThreshold:          r.MinThreshold,
			MaxThreshold:          r.MaxThreshold,
			ForecastedUsageWindow: window,
			Urgency:               urgency,
			Reason:                urgency.Reason(),
			RecommendedQuantity:   RecommendedQuantity(r.CurrentStock, r.ReorderPoint, window, r.MaxThreshold),
			DepletionDate:         DepletionDate(now, r.CurrentStock, r.UsageRatePerDay),
		})
	}

	RankCandidates(out)
	return out
}
