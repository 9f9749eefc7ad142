package server

import (
	"errors"
	"log"
	"strings"

	"mes-planner/internal/apperror"
	"mes-planner/internal/audit"
	"mes-planner/internal/catalog"
	"mes-planner/internal/config"
	"mes-planner/internal/erp"
	"mes-planner/internal/forecast"
	"mes-planner/internal/planning"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"gorm.io/gorm"
)

// ErrorHandler renders every failure as {"error": ...}. Taxonomy errors
// keep their status; anything else is a 500.
func ErrorHandler(c *fiber.Ctx, err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return c.Status(fe.Code).JSON(fiber.Map{
			"error": fe.Message,
		})
	}

	if apperror.IsKnown(err) {
		body := fiber.Map{"error": err.Error()}

		var conflict *apperror.ConflictError
		if errors.As(err, &conflict) && conflict.ExistingID != nil {
			body["existing_po_id"] = *conflict.ExistingID
		}
		var upstreamErr *apperror.UpstreamError
		if errors.As(err, &upstreamErr) {
			body["upstream_status"] = upstreamErr.StatusCode
			body["upstream_body"] = upstreamErr.Body
		}
		var verr *apperror.ValidationError
		if errors.As(err, &verr) && verr.Field != "" {
			body["field"] = verr.Field
		}

		return c.Status(apperror.Status(err)).JSON(body)
	}

	log.Println("Unexpected error:", err)
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"error": "Beklenmeyen sunucu hatası",
	})
}

// New wires the clients, services and routes for one configuration.
func New(cfg *config.Config, db *gorm.DB) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:      "mes-planner",
		ErrorHandler: ErrorHandler,
	})

	app.Use(recover.New())
	app.Use(logger.New(logger.Config{
		Format: "[${time}] ${status} - ${latency} ${method} ${path}\n",
	}))

	// CORS origins'i virgülle ayrılmış string'den temizle
	corsOrigins := strings.Split(cfg.CORSOrigins, ",")
	for i := range corsOrigins {
		corsOrigins[i] = strings.TrimSpace(corsOrigins[i])
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins: strings.Join(corsOrigins, ","),
		AllowHeaders: "Origin, Content-Type, Accept",
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
	}))

	auditSvc := audit.NewService(db)
	forecastStore := forecast.NewStore(db)
	erpClient := erp.NewClient(cfg.ERP)

	var parts planning.PartSource
	if cfg.CatalogEnabled() {
		parts = catalog.NewClient(cfg.Catalog)
	}

	forecasts := forecast.NewHandler(forecastStore, auditSvc)
	plans := planning.NewHandler(
		planning.NewPlanner(planning.NewAggregator(erpClient, parts), forecastStore),
		planning.NewOrchestrator(erpClient, auditSvc),
	)

	// Health
	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "MES OK"})
	})
	app.Get("/info", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"service":         "mes-planner",
			"database_driver": cfg.DatabaseDriver,
			"erp_url":         cfg.ERP.BaseURL,
			"catalog_enabled": cfg.CatalogEnabled(),
			"catalog_url":     cfg.Catalog.BaseURL,
			"timeout":         cfg.ERP.Timeout.String(),
		})
	})

	// Forecast CRUD
	fc := app.Group("/forecast")
	fc.Get("/", forecasts.List())
	fc.Post("/", forecasts.Create())
	fc.Post("/import", forecasts.Import())
	fc.Get("/:id", forecasts.Get())
	fc.Put("/:id", forecasts.Update())
	fc.Delete("/:id", forecasts.Delete())

	// Planlama (ERP + Catalog + MES)
	pl := app.Group("/planning")
	pl.Get("/reorder-candidates", plans.ReorderCandidates())
	pl.Get("/reorder-candidates/export", plans.ExportReorderCandidates())
	pl.Post("/create-po", plans.CreatePurchaseOrder())

	// Audit logs
	app.Get("/audit-logs", audit.ListAuditLogsHandler(auditSvc))
	app.Post("/audit-logs/:id/undo", audit.UndoAuditLogHandler(auditSvc))

	return app
}
