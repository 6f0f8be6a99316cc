package subnets

import (
	"time"

	"auto-validator/core/lock"
	"auto-validator/core/reconcile"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Feature implements the loader.Feature interface.
type Feature struct {
	service *Service
	handler *Handler
}

// NewFeature creates a new subnets feature.
func NewFeature(db *gorm.DB, fetch reconcile.FetchFunc, locker lock.Locker, location string, cacheTTL, lockTTL time.Duration, logger *zap.Logger) *Feature {
	svc := NewService(db, fetch, locker, location, cacheTTL, lockTTL, logger)
	return &Feature{service: svc, handler: NewHandler(svc)}
}

// Name returns the name of the feature.
func (f *Feature) Name() string {
	return "subnets"
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
