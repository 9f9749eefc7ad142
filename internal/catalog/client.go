package catalog

import (
	"context"
	"strings"

	"mes-planner/internal/config"
	"mes-planner/internal/upstream"
)

const serviceName = "Catalog"

// Part is a catalog entry; only the fields used to resolve part codes are
// kept.
type Part struct {
	MaterialID int64
	PartCode   string
}

type partRow struct {
	MaterialID *int64  `json:"material_id"`
	PartCode   *string `json:"part_code"`
}

type Client struct {
	http *upstream.Client
}

func NewClient(cfg config.UpstreamConfig) *Client {
	return &Client{http: upstream.New(serviceName, cfg)}
}

// ListParts fetches GET /parts/. Entries without a material id or part code
// cannot resolve anything and are dropped.
func (c *Client) ListParts(ctx context.Context) ([]Part, error) {
	var rows []partRow
	if err := c.http.GetJSON(ctx, "/parts/", &rows); err != nil {
		return nil, err
	}

	parts := make([]Part, 0, len(rows))
	for _, r := range rows {
		if r.MaterialID == nil || r.PartCode == nil {
			continue
		}
		code := strings.TrimSpace(*r.PartCode)
		if code == "" {
			continue
		}
		parts = append(parts, Part{MaterialID: *r.MaterialID, PartCode: code})
	}
	return parts, nil
}

// CodesByMaterial indexes parts by material id. A later entry for the same
// material overrides an earlier one.
func CodesByMaterial(parts []Part) map[int64]string {
	m := make(map[int64]string, len(parts))
	for _, p := range parts {
		m[p.MaterialID] = p.PartCode
	}
	return m
}
