package subnets

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"auto-validator/core/lock"
	"auto-validator/core/reconcile"
	"auto-validator/feature/validators/models"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	persistedLabel = "db_data"
	externalLabel  = "github_data"
	lockKey        = "subnets"
)

// ErrSubnetNotFound is returned when no subnet matches an identifier.
var ErrSubnetNotFound = errors.New("subnets: subnet not found")

// SubnetView is a subnet row with the delegate stake of its hotkeys summed up.
type SubnetView struct {
	models.Subnet
	DelegatedStakePercentage float64 `json:"delegated_stake_percentage"`
}

// Plan is the comparison of the subnet table with the document.
type Plan struct {
	Diff     string `json:"diff"`
	External int    `json:"total_external"`
	Stored   int    `json:"total_persisted"`
}

// SyncReport describes a subnet sync.
type SyncReport struct {
	DryRun  bool   `json:"dry_run"`
	Diff    string `json:"diff"`
	Created int    `json:"created"`
	Updated int    `json:"updated"`
}

// Service handles subnet synchronization.
type Service struct {
	db       *gorm.DB
	cache    *reconcile.Cache
	locker   lock.Locker
	location string
	lockTTL  time.Duration
	logger   *zap.Logger
}

// NewService creates a new subnets service reading the document at location.
func NewService(db *gorm.DB, fetch reconcile.FetchFunc, locker lock.Locker, location string, cacheTTL, lockTTL time.Duration, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if locker == nil {
		locker = lock.NewLocal()
	}
	return &Service{
		db:       db,
		cache:    reconcile.NewCache(fetch, cacheTTL),
		locker:   locker,
		location: location,
		lockTTL:  lockTTL,
		logger:   logger,
	}
}

func (s *Service) definitions(ctx context.Context, fetch reconcile.FetchFunc) ([]Definition, error) {
	data, err := fetch(ctx, s.location)
	if err != nil {
		if errors.Is(err, reconcile.ErrLoad) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %s: %w", reconcile.ErrLoad, s.location, err)
	}
	return ParseDefinitions(data)
}

func (s *Service) stored(ctx context.Context) ([]Definition, error) {
	var rows []models.Subnet
	if err := s.db.WithContext(ctx).Order("id").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list subnets: %w", err)
	}
	out := make([]Definition, 0, len(rows))
	for _, row := range rows {
		out = append(out, FromModel(row))
	}
	return out, nil
}

func (s *Service) plan(ctx context.Context, external []Definition) (*Plan, error) {
	stored, err := s.stored(ctx)
	if err != nil {
		return nil, err
	}
	diff, err := reconcile.DiffValues(byCodename(stored), byCodename(external), persistedLabel, externalLabel)
	if err != nil {
		return nil, err
	}
	return &Plan{Diff: diff, External: len(external), Stored: len(stored)}, nil
}

func byCodename(defs []Definition) []Definition {
	out := slices.Clone(defs)
	slices.SortStableFunc(out, func(a, b Definition) int { return strings.Compare(a.Codename, b.Codename) })
	return out
}

// Diff compares the subnet table with the document. The document may come from the cache.
func (s *Service) Diff(ctx context.Context) (*Plan, error) {
	external, err := s.definitions(ctx, s.cache.Fetch)
	if err != nil {
		return nil, err
	}
	return s.plan(ctx, external)
}

// Sync upserts every subnet of a fresh document read by codename inside one transaction.
func (s *Service) Sync(ctx context.Context, dryRun bool) (*SyncReport, error) {
	release, err := s.locker.Acquire(ctx, lockKey, s.lockTTL)
	if err != nil {
		return nil, err
	}
	defer release()

	external, err := s.definitions(ctx, s.cache.Fresh)
	if err != nil {
		return nil, err
	}
	plan, err := s.plan(ctx, external)
	if err != nil {
		return nil, err
	}
	report := &SyncReport{DryRun: dryRun, Diff: plan.Diff}
	if dryRun {
		return report, nil
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, def := range external {
			created, err := upsert(tx, def)
			if err != nil {
				return fmt.Errorf("subnet %s: %w", def.Codename, err)
			}
			if created {
				report.Created++
			} else {
				report.Updated++
			}
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			err = fmt.Errorf("%w: %w", reconcile.ErrConstraintViolation, err)
		}
		s.logger.Error("Subnet sync failed", zap.Error(err))
		return nil, err
	}

	s.logger.Info("Subnet sync completed", zap.Int("created", report.Created), zap.Int("updated", report.Updated))
	return report, nil
}

func upsert(tx *gorm.DB, def Definition) (bool, error) {
	row := def.Model()
	var existing models.Subnet
	err := tx.Where("codename = ?", def.Codename).First(&existing).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return true, tx.Create(&row).Error
	case err != nil:
		return false, err
	}
	row.ID = existing.ID
	return false, tx.Save(&row).Error
}

// List returns every subnet with the delegate stake percentage of its hotkeys summed.
func (s *Service) List(ctx context.Context) ([]SubnetView, error) {
	db := s.db.WithContext(ctx)

	var rows []models.Subnet
	if err := db.Order("id").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list subnets: %w", err)
	}

	var sums []struct {
		SubnetID uint
		Total    float64
	}
	err := db.Model(&models.ExternalHotkey{}).
		Select("subnet_id, SUM(delegate_stake_percentage) AS total").
		Where("subnet_id IS NOT NULL").
		Group("subnet_id").
		Scan(&sums).Error
	if err != nil {
		return nil, fmt.Errorf("sum delegate stake: %w", err)
	}
	totals := make(map[uint]float64, len(sums))
	for _, sum := range sums {
		totals[sum.SubnetID] = sum.Total
	}

	out := make([]SubnetView, 0, len(rows))
	for _, row := range rows {
		out = append(out, SubnetView{Subnet: row, DelegatedStakePercentage: totals[row.ID]})
	}
	return out, nil
}

// DumperCommands returns the dumper commands of the first document entry matching identifier.
func (s *Service) DumperCommands(ctx context.Context, identifier string) ([]string, error) {
	defs, err := s.definitions(ctx, s.cache.Fetch)
	if err != nil {
		return nil, err
	}
	for _, def := range defs {
		if def.Matches(identifier) {
			return def.DumperCommands, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrSubnetNotFound, identifier)
}
