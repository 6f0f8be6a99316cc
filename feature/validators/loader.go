package validators

import (
	"time"

	"auto-validator/core/lock"
	"auto-validator/core/reconcile"
	"auto-validator/core/scheduler"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Feature implements the loader.Feature interface.
type Feature struct {
	service *Service
	handler *Handler
}

// NewFeature creates a new validators feature.
func NewFeature(db *gorm.DB, fetch reconcile.FetchFunc, locker lock.Locker, location string, cacheTTL time.Duration, cfg Config, logger *zap.Logger) *Feature {
	svc := NewService(db, fetch, locker, location, cacheTTL, cfg, logger)
	return &Feature{service: svc, handler: NewHandler(svc)}
}

// Name returns the name of the feature.
func (f *Feature) Name() string {
	return "validators"
}

// IsEnabled checks if the feature is enabled.
func (f *Feature) IsEnabled() bool {
	return true
}

// Load registers the feature's routes.
func (f *Feature) Load(app fiber.Router) error {
	f.handler.RegisterRoutes(app)
	return nil
}

// Service exposes the feature's service to commands.
func (f *Feature) Service() *Service {
	return f.service
}

// Schedule registers the periodic sync jobs.
func (f *Feature) Schedule(s *scheduler.Scheduler) error {
	cfg := f.service.cfg
	if err := s.Add("validators:core", cfg.CoreCron, f.service.ScheduledCoreSync); err != nil {
		return err
	}
	return s.Add("validators:validator_manager", cfg.ManagerCron, f.service.ScheduledManagerSync)
}
