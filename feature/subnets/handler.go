package subnets

import (
	"errors"

	"auto-validator/core/lock"
	"auto-validator/core/logger"
	"auto-validator/core/reconcile"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Handler handles HTTP requests for subnets.
type Handler struct {
	service *Service
}

// NewHandler creates a new HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers the subnet routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	group := app.Group("/subnets")
	group.Get("/", h.HandleList)
	group.Get("/diff", h.HandleDiff)
	group.Post("/sync", h.HandleSync)
	group.Get("/:identifier/dumper-commands", h.HandleDumperCommands)
}

// HandleList returns the subnets.
// @Summary List Subnets
// @Description Lists subnets with the delegate stake percentage of their hotkeys summed.
// @Tags subnets
// @Produce json
// @Success 200 {array} SubnetView "Subnets"
// @Failure 500 {object} map[string]string "Internal Server Error"
// @Router /subnets [get]
func (h *Handler) HandleList(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)
	subnets, err := h.service.List(c.Context())
	if err != nil {
		return respondError(c, l, "List subnets failed", err)
	}
	return c.JSON(subnets)
}

// HandleDiff compares the subnet table with the document.
// @Summary Subnet Diff
// @Tags subnets
// @Produce json
// @Success 200 {object} Plan "Plan"
// @Failure 502 {object} map[string]string "Configuration unavailable"
// @Router /subnets/diff [get]
func (h *Handler) HandleDiff(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)
	plan, err := h.service.Diff(c.Context())
	if err != nil {
		return respondError(c, l, "Subnet diff failed", err)
	}
	return c.JSON(plan)
}

// HandleSync upserts the subnets of the document.
// @Summary Sync Subnets
// @Tags subnets
// @Produce json
// @Param dry_run query boolean false "Only compute the diff"
// @Success 200 {object} SyncReport "Sync Report"
// @Failure 409 {object} map[string]string "Sync in progress"
// @Failure 502 {object} map[string]string "Configuration unavailable"
// @Router /subnets/sync [post]
func (h *Handler) HandleSync(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)
	report, err := h.service.Sync(c.Context(), c.QueryBool("dry_run", false))
	if err != nil {
		return respondError(c, l, "Subnet sync failed", err)
	}
	return c.JSON(report)
}

// HandleDumperCommands returns the dumper commands of a subnet.
// @Summary Dumper Commands
// @Tags subnets
// @Produce json
// @Param identifier path string true "Codename, mainnet netuid, sn<netuid> or testnet netuid"
// @Success 200 {object} map[string]interface{} "Commands"
// @Failure 404 {object} map[string]string "Subnet not found"
// @Router /subnets/{identifier}/dumper-commands [get]
func (h *Handler) HandleDumperCommands(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)
	identifier := c.Params("identifier")
	commands, err := h.service.DumperCommands(c.Context(), identifier)
	if err != nil {
		return respondError(c, l, "Dumper commands lookup failed", err)
	}
	return c.JSON(fiber.Map{"identifier": identifier, "dumper_commands": commands})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, ErrSubnetNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, reconcile.ErrLoad):
		return fiber.StatusBadGateway
	case errors.Is(err, lock.ErrLocked), errors.Is(err, reconcile.ErrConstraintViolation):
		return fiber.StatusConflict
	default:
		return fiber.StatusInternalServerError
	}
}

func respondError(c *fiber.Ctx, l *zap.Logger, msg string, err error) error {
	status := statusFor(err)
	if status >= fiber.StatusInternalServerError {
		l.Error(msg, zap.Error(err))
	} else {
		l.Warn(msg, zap.Int("status", status), zap.Error(err))
	}
	return c.Status(status).JSON(fiber.Map{"error": err.Error()})
}
