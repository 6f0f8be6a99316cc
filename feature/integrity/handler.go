package integrity

import (
	"auto-validator/core/logger"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Handler handles HTTP requests for integrity checks.
type Handler struct {
	service *Service
}

// NewHandler creates a new HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers the integrity routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	group := app.Group("/integrity")
	group.Get("/", h.HandleIntegrityCheck)
	group.Get("/schema", h.HandleSchemaCheck)
	group.Get("/documents", h.HandleDocumentCheck)
}

// HandleIntegrityCheck runs all checks.
// @Summary Run All Integrity Checks
// @Description Checks the tables of both schemas and validates both configuration documents.
// @Tags integrity
// @Produce json
// @Success 200 {object} Report "Combined Report"
// @Failure 500 {object} map[string]string "Internal Server Error"
// @Router /integrity [get]
func (h *Handler) HandleIntegrityCheck(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)
	l.Info("Triggering all integrity checks")

	report, err := h.service.CheckAll(c.Context())
	if err != nil {
		l.Error("Integrity check failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	if !report.Healthy {
		l.Warn("Integrity problems detected")
	}
	return c.JSON(report)
}

// HandleSchemaCheck checks the database tables.
// @Summary Check Schema
// @Description Compares the tables of the core and validator_manager schemas with their models.
// @Tags integrity
// @Produce json
// @Success 200 {array} checks.SchemaReport "Schema Reports"
// @Failure 500 {object} map[string]string "Internal Server Error"
// @Router /integrity/schema [get]
func (h *Handler) HandleSchemaCheck(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)
	reports, err := h.service.CheckSchemas(c.Context())
	if err != nil {
		l.Error("Schema check failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(reports)
}

// HandleDocumentCheck validates the configuration documents.
// @Summary Check Documents
// @Description Reads the validators and subnets documents and reports problems a sync would hit.
// @Tags integrity
// @Produce json
// @Success 200 {array} checks.DocumentReport "Document Reports"
// @Router /integrity/documents [get]
func (h *Handler) HandleDocumentCheck(c *fiber.Ctx) error {
	return c.JSON(h.service.CheckDocuments(c.Context()))
}
