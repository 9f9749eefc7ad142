package erp

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// InventoryRecord is one normalized inventory row. Counts and rates that
// ERP sends as null or omits are zero; PartCode is empty when ERP does not
// embed one.
type InventoryRecord struct {
	PartID          int64
	PartName        string
	PartCode        string
	MaterialID      *int64
	CurrentStock    int
	ReorderPoint    int
	LeadTimeDays    int
	UsageRatePerDay decimal.Decimal
	MinThreshold    *int
	MaxThreshold    *int
}

// CatalogKey is the identifier used to join against catalog material ids.
func (r InventoryRecord) CatalogKey() int64 {
	if r.MaterialID != nil {
		return *r.MaterialID
	}
	return r.PartID
}

// inventoryRow is the inbound wire schema of GET /inventory/.
type inventoryRow struct {
	PartID          *int64              `json:"part_id"`
	PartName        *string             `json:"part_name"`
	PartCode        *string             `json:"part_code"`
	MaterialID      *int64              `json:"material_id"`
	CurrentStock    decimal.NullDecimal `json:"current_stock"`
	ReorderPoint    decimal.NullDecimal `json:"reorder_point"`
	LeadTimeDays    decimal.NullDecimal `json:"lead_time_days"`
	UsageRatePerDay decimal.NullDecimal `json:"usage_rate_per_day"`
	MinThreshold    decimal.NullDecimal `json:"min_threshold"`
	MaxThreshold    decimal.NullDecimal `json:"max_threshold"`
}

func (row inventoryRow) normalize() (InventoryRecord, error) {
	if row.PartID == nil {
		return InventoryRecord{}, errors.New("part_id eksik")
	}
	if row.PartName == nil {
		return InventoryRecord{}, fmt.Errorf("part_id=%d: part_name eksik", *row.PartID)
	}

	rec := InventoryRecord{
		PartID:          *row.PartID,
		PartName:        *row.PartName,
		MaterialID:      row.MaterialID,
		CurrentStock:    intOrZero(row.CurrentStock),
		ReorderPoint:    intOrZero(row.ReorderPoint),
		LeadTimeDays:    intOrZero(row.LeadTimeDays),
		UsageRatePerDay: decimalOrZero(row.UsageRatePerDay),
		MinThreshold:    optionalInt(row.MinThreshold),
		MaxThreshold:    optionalInt(row.MaxThreshold),
	}
	if row.PartCode != nil {
		rec.PartCode = strings.TrimSpace(*row.PartCode)
	}
	return rec, nil
}

func decimalOrZero(d decimal.NullDecimal) decimal.Decimal {
	if !d.Valid {
		return decimal.Zero
	}
	return d.Decimal
}

// int() semantics: fractional counts are truncated toward zero.
func intOrZero(d decimal.NullDecimal) int {
	if !d.Valid {
		return 0
	}
	return int(d.Decimal.IntPart())
}

func optionalInt(d decimal.NullDecimal) *int {
	if !d.Valid {
		return nil
	}
	v := int(d.Decimal.IntPart())
	return &v
}

// PurchaseOrder is the subset of an ERP purchase order this service reads.
// Raw keeps the record exactly as ERP sent it.
type PurchaseOrder struct {
	ID            int64   `json:"id"`
	PartID        int64   `json:"part_id"`
	Quantity      int     `json:"quantity"`
	Urgency       string  `json:"urgency"`
	Reason        *string `json:"reason"`
	CorrelationID string  `json:"correlation_id"`
	CreatedAt     string  `json:"created_at"`

	Raw json.RawMessage `json:"-"`
}

// CreatedTime parses created_at. Offset-less timestamps are UTC.
func (po PurchaseOrder) CreatedTime() (time.Time, bool) {
	return ParseTimestamp(po.CreatedAt)
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999",
}

func ParseTimestamp(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}

// CreatePurchaseOrderRequest is the JSON body of POST /purchase-orders/.
type CreatePurchaseOrderRequest struct {
	PartID        int64  `json:"part_id"`
	Quantity      int    `json:"quantity"`
	Urgency       string `json:"urgency"`
	Reason        string `json:"reason"`
	CorrelationID string `json:"correlation_id"`
}
