package planning

import (
	"context"
	"fmt"

	"mes-planner/internal/catalog"
	"mes-planner/internal/erp"
)

type InventorySource interface {
	ListInventory(ctx context.Context) ([]erp.InventoryRecord, error)
}

type PartSource interface {
	ListParts(ctx context.Context) ([]catalog.Part, error)
}

// Aggregator produces the per-part inventory view used for planning: the
// ERP snapshot, with part codes the snapshot lacks filled in from the
// catalog when one is configured.
type Aggregator struct {
	inventory InventorySource
	parts     PartSource
}

// NewAggregator wires the sources; parts may be nil when no catalog is
// configured.
func NewAggregator(inventory InventorySource, parts PartSource) *Aggregator {
	return &Aggregator{inventory: inventory, parts: parts}
}

// FetchInventory fails as a whole when either upstream fails.
func (a *Aggregator) FetchInventory(ctx context.Context) ([]erp.InventoryRecord, error) {
	records, err := a.inventory.ListInventory(ctx)
	if err != nil {
		return nil, fmt.Errorf("inventory alınamadı: %w", err)
	}

	if a.parts == nil || !needsCatalog(records) {
		return records, nil
	}

	parts, err := a.parts.ListParts(ctx)
	if err != nil {
		return nil, fmt.Errorf("katalog alınamadı: %w", err)
	}
	codes := catalog.CodesByMaterial(parts)

	for i := range records {
		if records[i].PartCode != "" {
			continue
		}
		if code, ok := codes[records[i].CatalogKey()]; ok {
			records[i].PartCode = code
		}
	}
	return records, nil
}

func needsCatalog(records []erp.InventoryRecord) bool {
	for _, r := range records {
		if r.PartCode == "" {
			return true
		}
	}
	return false
}
