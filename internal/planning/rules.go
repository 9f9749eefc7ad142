package planning

import (
	"sort"
	"time"

	"mes-planner/internal/models"

	"github.com/shopspring/decimal"
)

type Urgency string

const (
	UrgencyCritical Urgency = "Critical"
	UrgencyHigh     Urgency = "High"
	UrgencyMedium   Urgency = "Medium"
	UrgencyLow      Urgency = "Low"
)

// Rank orders urgencies for sorting; lower is more urgent.
func (u Urgency) Rank() int {
	switch u {
	case UrgencyCritical:
		return 0
	case UrgencyHigh:
		return 1
	case UrgencyMedium:
		return 2
	case UrgencyLow:
		return 3
	default:
		return 9
	}
}

func (u Urgency) Valid() bool {
	return u.Rank() < 9
}

func (u Urgency) Reason() string {
	switch u {
	case UrgencyCritical:
		return "Stock may deplete before supplier lead time."
	case UrgencyHigh:
		return "Stock below reorder point."
	case UrgencyMedium:
		return "Forecasted usage may push stock near reorder threshold."
	default:
		return "Sufficient stock vs. demand."
	}
}

var (
	// usage rates below this are treated as this value when estimating
	// depletion, so zero usage gives a far-future date
	depletionEpsilon = decimal.New(1, -6)
	maxDepletionDays = decimal.NewFromInt(100 * 365)
	nanosPerDay      = decimal.NewFromInt(int64(24 * time.Hour))
)

// SumDemand totals forecasted usage per part code.
func SumDemand(forecasts []models.Forecast) map[string]int {
	demand := make(map[string]int, len(forecasts))
	for _, f := range forecasts {
		demand[f.PartCode] += f.ForecastedUsage
	}
	return demand
}

// ClassifyUrgency applies the rules in priority order; the first match wins.
func ClassifyUrgency(currentStock int, usagePerDay decimal.Decimal, leadTimeDays, reorderPoint, windowDemand int) Urgency {
	stock := decimal.NewFromInt(int64(currentStock))

	switch {
	case usagePerDay.Mul(decimal.NewFromInt(int64(leadTimeDays))).GreaterThan(stock):
		return UrgencyCritical
	case currentStock < reorderPoint:
		return UrgencyHigh
	case windowDemand > 0 && currentStock <= reorderPoint+windowDemand:
		return UrgencyMedium
	default:
		return UrgencyLow
	}
}

// RecommendedQuantity restocks to max_threshold when ERP defines one,
// otherwise to reorder point plus windowed demand. Never negative.
func RecommendedQuantity(currentStock, reorderPoint, windowDemand int, maxThreshold *int) int {
	target := reorderPoint + windowDemand
	if maxThreshold != nil {
		target = *maxThreshold
	}
	if q := target - currentStock; q > 0 {
		return q
	}
	return 0
}

// DepletionDate estimates when stock runs out at the current usage rate.
// The estimate is capped at 100 years out and never lies before now.
func DepletionDate(now time.Time, currentStock int, usagePerDay decimal.Decimal) time.Time {
	rate := decimal.Max(usagePerDay, depletionEpsilon)
	days := decimal.NewFromInt(int64(currentStock)).Div(rate)

	if days.IsNegative() {
		days = decimal.Zero
	}
	if days.GreaterThan(maxDepletionDays) {
		days = maxDepletionDays
	}

	return now.Add(time.Duration(days.Mul(nanosPerDay).IntPart()))
}

// RankCandidates sorts in place: urgency rank ascending, then windowed
// demand descending. Equal keys keep their input order.
func RankCandidates(candidates []Candidate) {
	sort.SliceStable(candidates, func(i, j int) bool {
		ri, rj := candidates[i].Urgency.Rank(), candidates[j].Urgency.Rank()
		if ri != rj {
			return ri < rj
		}
		return candidates[i].ForecastedUsageWindow > candidates[j].ForecastedUsageWindow
	})
}
