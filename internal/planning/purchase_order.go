package planning

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"mes-planner/internal/apperror"
	"mes-planner/internal/audit"
	"mes-planner/internal/erp"
	"mes-planner/internal/models"

	"github.com/google/uuid"
)

const (
	DefaultLookbackHours = 24
	DefaultReason        = "Created by MES planner"
	DefaultUrgency       = UrgencyHigh
	correlationPrefix    = "mes-"
)

type PurchaseOrderGateway interface {
	ListPurchaseOrders(ctx context.Context) ([]erp.PurchaseOrder, error)
	CreatePurchaseOrder(ctx context.Context, req erp.CreatePurchaseOrderRequest, lookbackHours int) (*erp.PurchaseOrder, error)
}

type AuditWriter interface {
	WriteLog(ctx context.Context, opts audit.LogOptions) error
}

type PurchaseOrderRequest struct {
	PartID         int64   `json:"part_id"`
	Quantity       int     `json:"quantity"`
	Urgency        Urgency `json:"urgency"`
	Reason         string  `json:"reason"`
	CorrelationID  string  `json:"correlation_id"`
	LookbackHours  *int    `json:"lookback_hours"`
	AllowDuplicate bool    `json:"allow_duplicate"`
}

func (r *PurchaseOrderRequest) normalize() error {
	if r.PartID <= 0 {
		return apperror.Validation("part_id", "pozitif olmalı")
	}
	if r.Quantity <= 0 {
		return apperror.Validation("quantity", "pozitif olmalı")
	}
	if r.LookbackHours == nil {
		h := DefaultLookbackHours
		r.LookbackHours = &h
	}
	if *r.LookbackHours < 0 {
		return apperror.Validation("lookback_hours", "negatif olamaz")
	}
	if r.Urgency == "" {
		r.Urgency = DefaultUrgency
	}
	if !r.Urgency.Valid() {
		return apperror.Validation("urgency", "Critical, High, Medium veya Low olmalı")
	}
	r.Reason = strings.TrimSpace(r.Reason)
	if r.Reason == "" {
		r.Reason = DefaultReason
	}
	r.CorrelationID = strings.TrimSpace(r.CorrelationID)
	return nil
}

// Orchestrator creates purchase orders in ERP behind a two-layer duplicate
// guard: a best-effort local lookback check, then ERP's own enforcement of
// the same window. The two are not atomic; ERP is authoritative.
type Orchestrator struct {
	erp           PurchaseOrderGateway
	audit         AuditWriter
	now           func() time.Time
	correlationID func() string
}

// NewOrchestrator wires the gateway; auditWriter may be nil.
func NewOrchestrator(gateway PurchaseOrderGateway, auditWriter AuditWriter) *Orchestrator {
	return &Orchestrator{
		erp:           gateway,
		audit:         auditWriter,
		now:           func() time.Time { return time.Now().UTC() },
		correlationID: newCorrelationID,
	}
}

func newCorrelationID() string {
	return correlationPrefix + strings.ReplaceAll(uuid.NewString(), "-", "")
}

func (o *Orchestrator) CreatePurchaseOrder(ctx context.Context, req PurchaseOrderRequest) (*erp.PurchaseOrder, error) {
	if err := req.normalize(); err != nil {
		return nil, err
	}
	if req.CorrelationID == "" {
		req.CorrelationID = o.correlationID()
	}
	lookback := *req.LookbackHours

	if !req.AllowDuplicate && lookback > 0 {
		if err := o.checkRecentOrders(ctx, req.PartID, lookback); err != nil {
			return nil, err
		}
	}

	po, err := o.erp.CreatePurchaseOrder(ctx, erp.CreatePurchaseOrderRequest{
		PartID:        req.PartID,
		Quantity:      req.Quantity,
		Urgency:       string(req.Urgency),
		Reason:        req.Reason,
		CorrelationID: req.CorrelationID,
	}, lookback)
	if err != nil {
		log.Printf("PO oluşturulamadı (part %d, correlation %s): %v", req.PartID, req.CorrelationID, err)
		return nil, err
	}

	log.Printf("PO oluşturuldu: id=%d part=%d qty=%d correlation=%s", po.ID, req.PartID, req.Quantity, req.CorrelationID)
	o.recordAudit(ctx, req, po)
	return po, nil
}

// checkRecentOrders fails with ConflictError when ERP already holds an order
// for the part created inside the lookback window.
func (o *Orchestrator) checkRecentOrders(ctx context.Context, partID int64, lookbackHours int) error {
	orders, err := o.erp.ListPurchaseOrders(ctx)
	if err != nil {
		return fmt.Errorf("mevcut PO'lar kontrol edilemedi: %w", err)
	}

	cutoff := o.now().Add(-time.Duration(lookbackHours) * time.Hour)
	for _, po := range orders {
		if po.PartID != partID {
			continue
		}
		created, ok := po.CreatedTime()
		if !ok || created.Before(cutoff) {
			continue
		}
		id := po.ID
		return &apperror.ConflictError{
			ExistingID: &id,
			Message:    fmt.Sprintf("part %d için son %d saatte PO %d zaten oluşturulmuş", partID, lookbackHours, po.ID),
		}
	}
	return nil
}

func (o *Orchestrator) recordAudit(ctx context.Context, req PurchaseOrderRequest, po *erp.PurchaseOrder) {
	if o.audit == nil {
		return
	}
	err := o.audit.WriteLog(ctx, audit.LogOptions{
		EntityType:    models.AuditEntityPurchaseOrder,
		EntityID:      uint(po.ID),
		Action:        models.AuditActionCreate,
		Description:   fmt.Sprintf("ERP PO oluşturuldu: part %d, miktar %d", req.PartID, req.Quantity),
		CorrelationID: req.CorrelationID,
		Before:        req,
		After:         po.Raw,
	})
	if err != nil {
		log.Printf("Audit log yazılamadı (PO %d): %v", po.ID, err)
	}
}
