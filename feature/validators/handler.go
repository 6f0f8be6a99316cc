package validators

import (
	"errors"
	"strconv"

	"auto-validator/core/lock"
	"auto-validator/core/logger"
	"auto-validator/core/reconcile"
	"auto-validator/feature/validators/store"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Handler handles HTTP requests for validators.
type Handler struct {
	service *Service
}

// NewHandler creates a new HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// DelegateStakeRequest sets one delegate stake percentage.
type DelegateStakeRequest struct {
	Percentage *float64 `json:"percentage"`
}

// DelegateStakesRequest sets several percentages keyed by hotkey id.
type DelegateStakesRequest struct {
	Stakes map[string]float64 `json:"stakes"`
}

// RegisterRoutes registers the validator routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	group := app.Group("/validators")
	group.Get("/", h.HandleList)
	group.Get("/diff", h.HandleDiff)
	group.Post("/sync", h.HandleSync)
	group.Get("/auto-sync", h.HandleAutoSync)
	group.Post("/auto-sync/toggle", h.HandleToggleAutoSync)

	hotkeys := app.Group("/hotkeys")
	hotkeys.Put("/delegate-stake", h.HandleSetDelegateStakes)
	hotkeys.Put("/:id/delegate-stake", h.HandleSetDelegateStake)
}

// HandleList returns the persisted validators.
// @Summary List Validators
// @Description Lists validators of a schema with their subnets and hotkeys.
// @Tags validators
// @Produce json
// @Param schema query string false "core or validator_manager"
// @Success 200 {array} store.ValidatorView "Validators"
// @Failure 400 {object} map[string]string "Unknown schema"
// @Failure 500 {object} map[string]string "Internal Server Error"
// @Router /validators [get]
func (h *Handler) HandleList(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)
	validators, err := h.service.ListValidators(c.Context(), c.Query("schema"))
	if err != nil {
		return respondError(c, l, "List validators failed", err)
	}
	return c.JSON(validators)
}

// HandleDiff previews a sync.
// @Summary Validator Diff
// @Description Compares persisted validators with the configuration source and returns a unified diff.
// @Tags validators
// @Produce json
// @Param schema query string false "core or validator_manager"
// @Success 200 {object} reconcile.Plan "Plan"
// @Failure 502 {object} map[string]string "Configuration unavailable"
// @Router /validators/diff [get]
func (h *Handler) HandleDiff(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)
	plan, err := h.service.Plan(c.Context(), c.Query("schema"))
	if err != nil {
		return respondError(c, l, "Validator diff failed", err)
	}
	return c.JSON(plan)
}

// HandleSync applies the configuration to a schema.
// @Summary Sync Validators
// @Description Reconciles a schema with a fresh read of the configuration source. Runs atomically.
// @Tags validators
// @Produce json
// @Param schema query string false "core or validator_manager"
// @Param dry_run query boolean false "Only compute the plan"
// @Success 200 {object} SyncReport "Sync Report"
// @Failure 409 {object} map[string]string "Sync in progress or constraint violation"
// @Failure 422 {object} map[string]string "Invalid record"
// @Failure 502 {object} map[string]string "Configuration unavailable"
// @Router /validators/sync [post]
func (h *Handler) HandleSync(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)
	dryRun := c.QueryBool("dry_run", false)

	report, err := h.service.Sync(c.Context(), c.Query("schema"), dryRun)
	if err != nil {
		return respondError(c, l, "Validator sync failed", err)
	}
	if report.Result != nil {
		l.Info("Validator sync completed",
			zap.String("schema", report.Schema),
			zap.Int("validators", report.Result.Validators))
	}
	return c.JSON(report)
}

// HandleAutoSync returns the auto-sync toggle.
// @Summary Auto-Sync State
// @Tags validators
// @Produce json
// @Success 200 {object} map[string]bool "State"
// @Router /validators/auto-sync [get]
func (h *Handler) HandleAutoSync(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)
	enabled, err := h.service.AutoSyncEnabled(c.Context())
	if err != nil {
		return respondError(c, l, "Read auto-sync failed", err)
	}
	return c.JSON(fiber.Map{"enabled": enabled})
}

// HandleToggleAutoSync flips the auto-sync toggle.
// @Summary Toggle Auto-Sync
// @Tags validators
// @Produce json
// @Success 200 {object} map[string]bool "New State"
// @Router /validators/auto-sync/toggle [post]
func (h *Handler) HandleToggleAutoSync(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)
	enabled, err := h.service.ToggleAutoSync(c.Context())
	if err != nil {
		return respondError(c, l, "Toggle auto-sync failed", err)
	}
	return c.JSON(fiber.Map{"enabled": enabled})
}

// HandleSetDelegateStake sets the delegate stake percentage of one hotkey.
// @Summary Set Delegate Stake
// @Tags hotkeys
// @Accept json
// @Produce json
// @Param id path int true "External hotkey id"
// @Param body body DelegateStakeRequest true "Percentage"
// @Success 200 {object} map[string]interface{} "Updated"
// @Failure 400 {object} map[string]string "Invalid percentage"
// @Failure 404 {object} map[string]string "Hotkey not found"
// @Router /hotkeys/{id}/delegate-stake [put]
func (h *Handler) HandleSetDelegateStake(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)
	id, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid hotkey id"})
	}
	var req DelegateStakeRequest
	if err := c.BodyParser(&req); err != nil || req.Percentage == nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "percentage is required"})
	}

	if err := h.service.SetDelegateStake(c.Context(), c.Query("schema"), uint(id), *req.Percentage); err != nil {
		return respondError(c, l, "Set delegate stake failed", err)
	}
	return c.JSON(fiber.Map{"id": id, "percentage": *req.Percentage})
}

// HandleSetDelegateStakes sets several delegate stake percentages at once.
// @Summary Set Delegate Stakes
// @Tags hotkeys
// @Accept json
// @Produce json
// @Param body body DelegateStakesRequest true "Percentages keyed by hotkey id"
// @Success 200 {object} map[string]interface{} "Updated"
// @Failure 400 {object} map[string]string "Invalid percentage"
// @Failure 404 {object} map[string]string "Hotkey not found"
// @Router /hotkeys/delegate-stake [put]
func (h *Handler) HandleSetDelegateStakes(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)
	var req DelegateStakesRequest
	if err := c.BodyParser(&req); err != nil || len(req.Stakes) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "stakes are required"})
	}

	stakes := make(map[uint]float64, len(req.Stakes))
	for key, pct := range req.Stakes {
		id, err := strconv.ParseUint(key, 10, 64)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid hotkey id " + key})
		}
		stakes[uint(id)] = pct
	}
	if err := h.service.SetDelegateStakes(c.Context(), c.Query("schema"), stakes); err != nil {
		return respondError(c, l, "Set delegate stakes failed", err)
	}
	return c.JSON(fiber.Map{"updated": len(stakes)})
}

// StatusFor maps a service error to an HTTP status.
func StatusFor(err error) int {
	var missing *reconcile.MissingFieldError
	switch {
	case errors.As(err, &missing):
		return fiber.StatusUnprocessableEntity
	case errors.Is(err, reconcile.ErrLoad):
		return fiber.StatusBadGateway
	case errors.Is(err, lock.ErrLocked), errors.Is(err, reconcile.ErrConstraintViolation):
		return fiber.StatusConflict
	case errors.Is(err, reconcile.ErrUnknownMode),
		errors.Is(err, ErrInvalidPercentage),
		errors.Is(err, ErrUnsupportedSchema):
		return fiber.StatusBadRequest
	case store.IsNotFound(err):
		return fiber.StatusNotFound
	default:
		return fiber.StatusInternalServerError
	}
}

func respondError(c *fiber.Ctx, l *zap.Logger, msg string, err error) error {
	status := StatusFor(err)
	if status >= fiber.StatusInternalServerError {
		l.Error(msg, zap.Error(err))
	} else {
		l.Warn(msg, zap.Int("status", status), zap.Error(err))
	}
	return c.Status(status).JSON(fiber.Map{"error": err.Error()})
}
