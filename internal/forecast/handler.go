package forecast

import (
	"log"

	"mes-planner/internal/audit"
	"mes-planner/internal/models"

	"github.com/gofiber/fiber/v2"
)

type ForecastRequest struct {
	PartCode        string  `json:"part_code"`
	ForecastedUsage *int    `json:"forecasted_usage"`
	JobID           *string `json:"job_id"`
	JobStartDate    *Date   `json:"job_start_date"`
	JobEndDate      *Date   `json:"job_end_date"`
}

func (r ForecastRequest) toInput() (Input, error) {
	if r.ForecastedUsage == nil {
		return Input{}, fiber.NewError(fiber.StatusBadRequest, "forecasted_usage zorunlu")
	}
	return Input{
		PartCode:        r.PartCode,
		ForecastedUsage: *r.ForecastedUsage,
		JobID:           r.JobID,
		JobStartDate:    r.JobStartDate.timePtr(),
		JobEndDate:      r.JobEndDate.timePtr(),
	}, nil
}

// Handler groups the forecast routes; audit may be nil.
type Handler struct {
	store *Store
	audit *audit.Service
}

func NewHandler(store *Store, auditSvc *audit.Service) *Handler {
	return &Handler{store: store, audit: auditSvc}
}

// GET /forecast/
func (h *Handler) List() fiber.Handler {
	return func(c *fiber.Ctx) error {
		rows, err := h.store.List(c.UserContext())
		if err != nil {
			return err
		}
		return c.JSON(rows)
	}
}

// GET /forecast/:id
func (h *Handler) Get() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := parseID(c)
		if err != nil {
			return err
		}
		row, err := h.store.Get(c.UserContext(), id)
		if err != nil {
			return err
		}
		return c.JSON(row)
	}
}

// POST /forecast/
func (h *Handler) Create() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body ForecastRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz veri")
		}
		in, err := body.toInput()
		if err != nil {
			return err
		}

		row, err := h.store.Create(c.UserContext(), in)
		if err != nil {
			return err
		}

		h.writeAudit(c, audit.LogOptions{
			EntityType:  models.AuditEntityForecast,
			EntityID:    row.ID,
			Action:      models.AuditActionCreate,
			Description: "Forecast oluşturuldu: " + row.PartCode,
			After:       row,
		})

		return c.Status(fiber.StatusCreated).JSON(row)
	}
}

// PUT /forecast/:id
func (h *Handler) Update() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := parseID(c)
		if err != nil {
			return err
		}

		var body ForecastRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz veri")
		}
		in, err := body.toInput()
		if err != nil {
			return err
		}

		row, before, err := h.store.Update(c.UserContext(), id, in)
		if err != nil {
			return err
		}

		h.writeAudit(c, audit.LogOptions{
			EntityType:  models.AuditEntityForecast,
			EntityID:    row.ID,
			Action:      models.AuditActionUpdate,
			Description: "Forecast güncellendi: " + row.PartCode,
			Before:      before,
			After:       row,
		})

		return c.JSON(row)
	}
}

// DELETE /forecast/:id
func (h *Handler) Delete() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := parseID(c)
		if err != nil {
			return err
		}

		row, err := h.store.Delete(c.UserContext(), id)
		if err != nil {
			return err
		}

		h.writeAudit(c, audit.LogOptions{
			EntityType:  models.AuditEntityForecast,
			EntityID:    row.ID,
			Action:      models.AuditActionDelete,
			Description: "Forecast silindi: " + row.PartCode,
			Before:      row,
		})

		return c.SendStatus(fiber.StatusNoContent)
	}
}

// Audit hatası isteği bozmaz, sadece loglanır.
func (h *Handler) writeAudit(c *fiber.Ctx, opts audit.LogOptions) {
	if h.audit == nil {
		return
	}
	if err := h.audit.WriteLog(c.UserContext(), opts); err != nil {
		log.Printf("Audit log yazılamadı (%s #%d): %v", opts.EntityType, opts.EntityID, err)
	}
}

func parseID(c *fiber.Ctx) (uint, error) {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return 0, fiber.NewError(fiber.StatusBadRequest, "Geçersiz forecast id")
	}
	return uint(id), nil
}
