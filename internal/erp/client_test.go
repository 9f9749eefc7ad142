package erp

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"mes-planner/internal/apperror"
	"mes-planner/internal/config"

	"github.com/shopspring/decimal"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	return NewClient(config.UpstreamConfig{
		BaseURL: srv.URL,
		Timeout: config.Duration{Duration: 2 * time.Second},
	})
}

func TestClient_ListInventory(t *testing.T) {
	ctx := context.Background()

	t.Run("Normalizes nulls and missing numbers to zero", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/inventory/" {
				t.Errorf("unexpected path %s", r.URL.Path)
			}
			io.WriteString(w, `[
				{"part_id": 1, "part_name": "Bolt", "part_code": "P-001", "current_stock": 12,
				 "reorder_point": 10, "lead_time_days": 3, "usage_rate_per_day": 2.5, "max_threshold": 50},
				{"part_id": 2, "part_name": "Nut", "current_stock": null, "usage_rate_per_day": null}
			]`)
		})

		records, err := client.ListInventory(ctx)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(records) != 2 {
			t.Fatalf("expected 2 records, got %d", len(records))
		}

		bolt := records[0]
		if bolt.PartCode != "P-001" || bolt.CurrentStock != 12 || bolt.LeadTimeDays != 3 {
			t.Errorf("unexpected bolt record: %+v", bolt)
		}
		if !bolt.UsageRatePerDay.Equal(decimal.RequireFromString("2.5")) {
			t.Errorf("expected usage 2.5, got %s", bolt.UsageRatePerDay)
		}
		if bolt.MaxThreshold == nil || *bolt.MaxThreshold != 50 {
			t.Errorf("expected max_threshold 50, got %v", bolt.MaxThreshold)
		}

		nut := records[1]
		if nut.PartCode != "" || nut.CurrentStock != 0 || nut.ReorderPoint != 0 || !nut.UsageRatePerDay.IsZero() {
			t.Errorf("expected zero-normalized record, got %+v", nut)
		}
		if nut.MaxThreshold != nil {
			t.Errorf("expected absent max_threshold, got %v", *nut.MaxThreshold)
		}
	})

	t.Run("Missing part_name is malformed", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			io.WriteString(w, `[{"part_id": 1}]`)
		})

		_, err := client.ListInventory(ctx)
		var unavailable *apperror.UpstreamUnavailableError
		if !errors.As(err, &unavailable) {
			t.Fatalf("expected UpstreamUnavailableError, got %v", err)
		}
	})

	t.Run("Non-success status", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "down", http.StatusServiceUnavailable)
		})

		_, err := client.ListInventory(ctx)
		var unavailable *apperror.UpstreamUnavailableError
		if !errors.As(err, &unavailable) {
			t.Fatalf("expected UpstreamUnavailableError, got %v", err)
		}
	})

	t.Run("Invalid JSON", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			io.WriteString(w, `{"not": "a list"`)
		})

		_, err := client.ListInventory(ctx)
		var unavailable *apperror.UpstreamUnavailableError
		if !errors.As(err, &unavailable) {
			t.Fatalf("expected UpstreamUnavailableError, got %v", err)
		}
	})

	t.Run("Timeout fails fast", func(t *testing.T) {
		release := make(chan struct{})
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			<-release
		}))
		defer srv.Close()
		defer close(release)

		client := NewClient(config.UpstreamConfig{
			BaseURL: srv.URL,
			Timeout: config.Duration{Duration: 50 * time.Millisecond},
		})

		start := time.Now()
		_, err := client.ListInventory(ctx)
		var unavailable *apperror.UpstreamUnavailableError
		if !errors.As(err, &unavailable) {
			t.Fatalf("expected UpstreamUnavailableError, got %v", err)
		}
		if elapsed := time.Since(start); elapsed > time.Second {
			t.Errorf("expected timeout near 50ms, took %s", elapsed)
		}
	})

	t.Run("Connection refused", func(t *testing.T) {
		srv := httptest.NewServer(http.NotFoundHandler())
		url := srv.URL
		srv.Close()

		client := NewClient(config.UpstreamConfig{
			BaseURL: url,
			Timeout: config.Duration{Duration: time.Second},
		})

		_, err := client.ListInventory(ctx)
		var unavailable *apperror.UpstreamUnavailableError
		if !errors.As(err, &unavailable) {
			t.Fatalf("expected UpstreamUnavailableError, got %v", err)
		}
	})
}

func TestClient_CreatePurchaseOrder(t *testing.T) {
	ctx := context.Background()
	req := CreatePurchaseOrderRequest{PartID: 42, Quantity: 10, Urgency: "High", Reason: "r", CorrelationID: "mes-abc"}

	t.Run("Sends lookback and returns record verbatim", func(t *testing.T) {
		const body = `{"id": 7, "part_id": 42, "quantity": 10, "urgency": "High", "created_at": "2026-10-17T10:00:00Z", "extra": true}`
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost {
				t.Errorf("expected POST, got %s", r.Method)
			}
			if got := r.URL.Query().Get("lookback_hours"); got != "24" {
				t.Errorf("expected lookback_hours=24, got %q", got)
			}
			b, _ := io.ReadAll(r.Body)
			if !strings.Contains(string(b), `"correlation_id":"mes-abc"`) {
				t.Errorf("expected correlation id in body, got %s", b)
			}
			w.WriteHeader(http.StatusCreated)
			io.WriteString(w, body)
		})

		po, err := client.CreatePurchaseOrder(ctx, req, 24)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if po.ID != 7 {
			t.Errorf("expected id 7, got %d", po.ID)
		}
		if string(po.Raw) != body {
			t.Errorf("expected raw body to be preserved, got %s", po.Raw)
		}
	})

	t.Run("No query string without lookback", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			if r.URL.RawQuery != "" {
				t.Errorf("expected no query, got %q", r.URL.RawQuery)
			}
			io.WriteString(w, `{"id": 1}`)
		})

		if _, err := client.CreatePurchaseOrder(ctx, req, 0); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})

	t.Run("409 becomes ConflictError", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, `{"detail":"duplicate"}`, http.StatusConflict)
		})

		_, err := client.CreatePurchaseOrder(ctx, req, 24)
		var conflict *apperror.ConflictError
		if !errors.As(err, &conflict) {
			t.Fatalf("expected ConflictError, got %v", err)
		}
		if !strings.Contains(conflict.Error(), "mükerrer") || !strings.Contains(conflict.Error(), "duplicate") {
			t.Errorf("unexpected conflict message %q", conflict.Error())
		}
	})

	t.Run("Other failures carry status and body", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "validation failed", http.StatusUnprocessableEntity)
		})

		_, err := client.CreatePurchaseOrder(ctx, req, 24)
		var upstreamErr *apperror.UpstreamError
		if !errors.As(err, &upstreamErr) {
			t.Fatalf("expected UpstreamError, got %v", err)
		}
		if upstreamErr.StatusCode != http.StatusUnprocessableEntity || upstreamErr.Body != "validation failed" {
			t.Errorf("unexpected upstream error: %+v", upstreamErr)
		}
	})
}

func TestParseTimestamp(t *testing.T) {
	tests := []struct {
		in   string
		ok   bool
		want time.Time
	}{
		{"2026-10-17T10:00:00Z", true, time.Date(2026, 10, 17, 10, 0, 0, 0, time.UTC)},
		{"2026-10-17T12:00:00+02:00", true, time.Date(2026, 10, 17, 10, 0, 0, 0, time.UTC)},
		{"2026-10-17T10:00:00.123456", true, time.Date(2026, 10, 17, 10, 0, 0, 123456000, time.UTC)},
		{"2026-10-17 10:00:00", true, time.Date(2026, 10, 17, 10, 0, 0, 0, time.UTC)},
		{"", false, time.Time{}},
		{"yesterday", false, time.Time{}},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := ParseTimestamp(tt.in)
			if ok != tt.ok {
				t.Fatalf("ok = %v, want %v", ok, tt.ok)
			}
			if ok && !got.Equal(tt.want) {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}
