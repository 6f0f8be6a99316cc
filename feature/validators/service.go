package validators

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"auto-validator/core/lock"
	"auto-validator/core/reconcile"
	"auto-validator/feature/validators/models"
	"auto-validator/feature/validators/store"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	// AutoSyncSetting is the settings key of the core schema auto-sync toggle.
	AutoSyncSetting = "enable_validator_auto_sync"

	persistedLabel = "db_data"
	externalLabel  = "github_data"
)

var (
	// ErrInvalidPercentage is returned for delegate stake values outside 0..100.
	ErrInvalidPercentage = errors.New("validators: percentage must be between 0 and 100")
	// ErrUnsupportedSchema is returned when an operation is not available for a schema.
	ErrUnsupportedSchema = errors.New("validators: operation not supported for schema")
)

// SyncReport describes a sync run.
type SyncReport struct {
	Schema  string                `json:"schema"`
	DryRun  bool                  `json:"dry_run"`
	Summary reconcile.PlanSummary `json:"summary"`
	Diff    string                `json:"diff"`
	Result  *reconcile.Result     `json:"result,omitempty"`
}

// Service handles validator synchronization.
type Service struct {
	db       *gorm.DB
	fetch    reconcile.FetchFunc
	cache    *reconcile.Cache
	locker   lock.Locker
	settings *store.Settings
	location string
	fallback string
	cfg      Config
	logger   *zap.Logger
}

// NewService creates a new validators service.
// fetch reads the configuration at location; diff views go through a cache with cacheTTL.
func NewService(db *gorm.DB, fetch reconcile.FetchFunc, locker lock.Locker, location string, cacheTTL time.Duration, cfg Config, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if locker == nil {
		locker = lock.NewLocal()
	}
	return &Service{
		db:       db,
		fetch:    fetch,
		cache:    reconcile.NewCache(fetch, cacheTTL),
		locker:   locker,
		settings: store.NewSettings(db),
		location: location,
		cfg:      cfg,
		logger:   logger,
	}
}

// SetDefaultSchema selects the schema used when a caller passes an empty name.
func (s *Service) SetDefaultSchema(name string) {
	s.fallback = name
}

func (s *Service) storeFor(schemaName string) (*store.Store, error) {
	if schemaName == "" {
		schemaName = s.fallback
	}
	schema, err := models.SchemaByName(schemaName)
	if err != nil {
		return nil, err
	}
	return store.New(s.db, schema), nil
}

// ListValidators returns the persisted validators of a schema.
func (s *Service) ListValidators(ctx context.Context, schemaName string) ([]store.ValidatorView, error) {
	st, err := s.storeFor(schemaName)
	if err != nil {
		return nil, err
	}
	return st.Validators(ctx)
}

// Plan compares the store with the configuration. The document may come from the cache.
func (s *Service) Plan(ctx context.Context, schemaName string) (*reconcile.Plan, error) {
	st, err := s.storeFor(schemaName)
	if err != nil {
		return nil, err
	}
	external, err := reconcile.LoadValidators(ctx, s.cache.Fetch, s.location)
	if err != nil {
		return nil, err
	}
	return s.plan(ctx, st, external)
}

func (s *Service) plan(ctx context.Context, st *store.Store, external []reconcile.Record) (*reconcile.Plan, error) {
	persisted, err := st.Records(ctx)
	if err != nil {
		return nil, err
	}
	return reconcile.BuildPlan(persisted, external, persistedLabel, externalLabel)
}

// Sync reads the configuration fresh and reconciles the schema with it.
// With dryRun set only the plan is computed. Concurrent syncs of one schema fail with lock.ErrLocked.
func (s *Service) Sync(ctx context.Context, schemaName string, dryRun bool) (*SyncReport, error) {
	st, err := s.storeFor(schemaName)
	if err != nil {
		return nil, err
	}
	schema := st.Schema()

	release, err := s.locker.Acquire(ctx, "validators:"+schema.Name, time.Duration(s.cfg.LockTTLSeconds)*time.Second)
	if err != nil {
		return nil, err
	}
	defer release()

	external, err := reconcile.LoadValidators(ctx, s.cache.Fresh, s.location)
	if err != nil {
		return nil, err
	}

	plan, err := s.plan(ctx, st, external)
	if err != nil {
		return nil, err
	}
	report := &SyncReport{Schema: schema.Name, DryRun: dryRun, Summary: plan.Summary, Diff: plan.Diff}
	if dryRun {
		return report, nil
	}

	result, err := reconcile.Reconcile(ctx, st, external, schema.Mode, s.logger.With(zap.String("schema", schema.Name)))
	if err != nil {
		return nil, err
	}
	report.Result = &result
	return report, nil
}

// SetDelegateStake updates the delegate stake percentage of one core schema hotkey.
func (s *Service) SetDelegateStake(ctx context.Context, schemaName string, hotkeyID uint, percentage float64) error {
	st, err := s.delegateStore(schemaName, map[uint]float64{hotkeyID: percentage})
	if err != nil {
		return err
	}
	return st.SetDelegateStake(ctx, hotkeyID, percentage)
}

// SetDelegateStakes updates delegate stake percentages of core schema hotkeys.
// Nothing is written when one id is unknown.
func (s *Service) SetDelegateStakes(ctx context.Context, schemaName string, stakes map[uint]float64) error {
	st, err := s.delegateStore(schemaName, stakes)
	if err != nil {
		return err
	}
	return st.SetDelegateStakes(ctx, stakes)
}

func (s *Service) delegateStore(schemaName string, stakes map[uint]float64) (*store.Store, error) {
	st, err := s.storeFor(schemaName)
	if err != nil {
		return nil, err
	}
	if st.Schema().Name != models.Core.Name {
		return nil, fmt.Errorf("%w: delegate stake on %s", ErrUnsupportedSchema, st.Schema().Name)
	}
	for id, pct := range stakes {
		if math.IsNaN(pct) || pct < 0 || pct > 100 {
			return nil, fmt.Errorf("%w: hotkey %d has %v", ErrInvalidPercentage, id, pct)
		}
	}
	return st, nil
}

// AutoSyncEnabled reports whether the scheduled core schema sync runs.
func (s *Service) AutoSyncEnabled(ctx context.Context) (bool, error) {
	return s.settings.Bool(ctx, AutoSyncSetting, s.cfg.AutoSyncEnabled)
}

// ToggleAutoSync flips the core schema auto-sync toggle and returns the new state.
func (s *Service) ToggleAutoSync(ctx context.Context) (bool, error) {
	enabled, err := s.settings.ToggleBool(ctx, AutoSyncSetting, s.cfg.AutoSyncEnabled)
	if err != nil {
		return false, err
	}
	s.logger.Info("Validator auto-sync toggled", zap.Bool("enabled", enabled))
	return enabled, nil
}

// ScheduledCoreSync syncs the core schema when the auto-sync toggle is on.
func (s *Service) ScheduledCoreSync(ctx context.Context) error {
	enabled, err := s.AutoSyncEnabled(ctx)
	if err != nil {
		return err
	}
	if !enabled {
		s.logger.Debug("Validator auto-sync disabled, skipping")
		return nil
	}
	_, err = s.Sync(ctx, models.Core.Name, false)
	return err
}

// ScheduledManagerSync syncs the validator manager schema unconditionally.
func (s *Service) ScheduledManagerSync(ctx context.Context) error {
	_, err := s.Sync(ctx, models.ValidatorManager.Name, false)
	return err
}
