package planning

import (
	"bytes"
	"fmt"
	"log"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
)

type Handler struct {
	planner      *Planner
	orchestrator *Orchestrator
}

func NewHandler(planner *Planner, orchestrator *Orchestrator) *Handler {
	return &Handler{planner: planner, orchestrator: orchestrator}
}

// ?horizon_days yoksa varsayılan, sayı değilse 400
func horizonFromQuery(c *fiber.Ctx) (int, error) {
	raw := c.Query("horizon_days")
	if raw == "" {
		return DefaultHorizonDays, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fiber.NewError(fiber.StatusBadRequest, "horizon_days tamsayı olmalı")
	}
	return n, nil
}

// GET /planning/reorder-candidates?horizon_days=7
func (h *Handler) ReorderCandidates() fiber.Handler {
	return func(c *fiber.Ctx) error {
		horizon, err := horizonFromQuery(c)
		if err != nil {
			return err
		}

		candidates, err := h.planner.ComputeReorderCandidates(c.UserContext(), horizon)
		if err != nil {
			return err
		}
		return c.JSON(candidates)
	}
}

// GET /planning/reorder-candidates/export?horizon_days=7
func (h *Handler) ExportReorderCandidates() fiber.Handler {
	return func(c *fiber.Ctx) error {
		horizon, err := horizonFromQuery(c)
		if err != nil {
			return err
		}

		candidates, err := h.planner.ComputeReorderCandidates(c.UserContext(), horizon)
		if err != nil {
			return err
		}

		var buf bytes.Buffer
		if err := WriteWorkbook(&buf, candidates, horizon); err != nil {
			log.Printf("XLSX export hatası: %v", err)
			return fiber.NewError(fiber.StatusInternalServerError, "Excel dosyası oluşturulamadı")
		}

		fileName := fmt.Sprintf("reorder-candidates-%s.xlsx", time.Now().UTC().Format("20060102"))
		c.Set(fiber.HeaderContentType, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+fileName+`"`)
		return c.Send(buf.Bytes())
	}
}

// POST /planning/create-po
func (h *Handler) CreatePurchaseOrder() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body PurchaseOrderRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz veri")
		}

		po, err := h.orchestrator.CreatePurchaseOrder(c.UserContext(), body)
		if err != nil {
			return err
		}

		// ERP kaydı olduğu gibi döner
		if len(po.Raw) > 0 {
			c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
			return c.Status(fiber.StatusCreated).Send(po.Raw)
		}
		return c.Status(fiber.StatusCreated).JSON(po)
	}
}
