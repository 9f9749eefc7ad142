package audit

import (
	"time"

	"mes-planner/internal/models"

	"github.com/gofiber/fiber/v2"
)

type AuditLogResponse struct {
	ID            uint               `json:"id"`
	CreatedAt     string             `json:"created_at"`
	EntityType    string             `json:"entity_type"`
	EntityID      uint               `json:"entity_id"`
	Action        models.AuditAction `json:"action"`
	Description   string             `json:"description"`
	CorrelationID string             `json:"correlation_id,omitempty"`
	IsUndone      bool               `json:"is_undone"`
	UndoneAt      *string            `json:"undone_at"`
}

// GET /audit-logs?entity_type=forecast&entity_id=1&limit=50
func ListAuditLogsHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		filter := ListFilter{
			EntityType: c.Query("entity_type"),
			EntityID:   uint(c.QueryInt("entity_id", 0)),
			Limit:      c.QueryInt("limit", 100),
		}

		logs, err := svc.List(c.UserContext(), filter)
		if err != nil {
			return err
		}

		res := make([]AuditLogResponse, 0, len(logs))
		for _, l := range logs {
			item := AuditLogResponse{
				ID:            l.ID,
				CreatedAt:     l.CreatedAt.Format(time.RFC3339),
				EntityType:    l.EntityType,
				EntityID:      l.EntityID,
				Action:        l.Action,
				Description:   l.Description,
				CorrelationID: l.CorrelationID,
				IsUndone:      l.IsUndone,
			}
			if l.UndoneAt != nil {
				s := l.UndoneAt.Format(time.RFC3339)
				item.UndoneAt = &s
			}
			res = append(res, item)
		}
		return c.JSON(res)
	}
}

// POST /audit-logs/:id/undo
func UndoAuditLogHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := c.ParamsInt("id")
		if err != nil || id <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz log id")
		}

		if err := svc.Undo(c.UserContext(), uint(id)); err != nil {
			return err
		}

		return c.JSON(fiber.Map{"success": true})
	}
}
