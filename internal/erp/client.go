package erp

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"mes-planner/internal/apperror"
	"mes-planner/internal/config"
	"mes-planner/internal/upstream"
)

const serviceName = "ERP"

type Client struct {
	http *upstream.Client
}

func NewClient(cfg config.UpstreamConfig) *Client {
	return &Client{http: upstream.New(serviceName, cfg)}
}

// ListInventory fetches the current inventory snapshot. A row without
// part_id or part_name makes the whole payload malformed.
func (c *Client) ListInventory(ctx context.Context) ([]InventoryRecord, error) {
	var rows []inventoryRow
	if err := c.http.GetJSON(ctx, "/inventory/", &rows); err != nil {
		return nil, err
	}

	out := make([]InventoryRecord, 0, len(rows))
	for i, row := range rows {
		rec, err := row.normalize()
		if err != nil {
			return nil, apperror.Unavailable(serviceName, fmt.Errorf("inventory satır %d: %w", i, err))
		}
		out = append(out, rec)
	}
	return out, nil
}

func (c *Client) ListPurchaseOrders(ctx context.Context) ([]PurchaseOrder, error) {
	resp, err := c.http.Do(ctx, http.MethodGet, "/purchase-orders/", nil)
	if err != nil {
		return nil, err
	}
	if !resp.OK() {
		return nil, &apperror.UpstreamError{Service: serviceName, StatusCode: resp.StatusCode, Body: resp.Snippet()}
	}

	var orders []PurchaseOrder
	if err := json.Unmarshal(resp.Body, &orders); err != nil {
		return nil, apperror.Unavailable(serviceName, fmt.Errorf("purchase-orders: geçersiz JSON: %w", err))
	}
	return orders, nil
}

// CreatePurchaseOrder submits a purchase order. lookbackHours > 0 asks ERP
// to reject duplicates for the same part inside that window; ERP answers
// those with 409, which becomes ConflictError.
func (c *Client) CreatePurchaseOrder(ctx context.Context, req CreatePurchaseOrderRequest, lookbackHours int) (*PurchaseOrder, error) {
	path := "/purchase-orders/"
	if lookbackHours > 0 {
		path += "?lookback_hours=" + strconv.Itoa(lookbackHours)
	}

	resp, err := c.http.Do(ctx, http.MethodPost, path, req)
	if err != nil {
		return nil, err
	}

	switch {
	case resp.StatusCode == http.StatusConflict:
		return nil, &apperror.ConflictError{
			Message: fmt.Sprintf("ERP mükerrer PO talebini reddetti (part %d): %s", req.PartID, resp.Snippet()),
		}
	case !resp.OK():
		return nil, &apperror.UpstreamError{Service: serviceName, StatusCode: resp.StatusCode, Body: resp.Snippet()}
	}

	var po PurchaseOrder
	if err := json.Unmarshal(resp.Body, &po); err != nil {
		return nil, apperror.Unavailable(serviceName, fmt.Errorf("purchase-order cevabı çözümlenemedi: %w", err))
	}
	po.Raw = json.RawMessage(resp.Body)
	return &po, nil
}
