package integrity

import (
	"context"
	"fmt"
	"strings"

	"auto-validator/feature/integrity/checks"
	"auto-validator/feature/validators/models"
	"auto-validator/feature/validators/store"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Locations names the configuration documents to check.
type Locations struct {
	Validators string
	Subnets    string
}

// Report combines every integrity check.
type Report struct {
	Healthy   bool                     `json:"healthy"`
	Schemas   []*checks.SchemaReport   `json:"schemas"`
	Documents []*checks.DocumentReport `json:"documents"`
}

// Service handles integrity checks.
type Service struct {
	db        *gorm.DB
	fetcher   checks.Fetcher
	locations Locations
	logger    *zap.Logger
}

// NewService creates a new integrity service.
func NewService(db *gorm.DB, fetcher checks.Fetcher, locations Locations, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		db:        db,
		fetcher:   fetcher,
		locations: locations,
		logger:    logger,
	}
}

// CheckSchemas compares the tables of every schema with the models and
// counts the rows of schemas that matched.
func (s *Service) CheckSchemas(ctx context.Context) ([]*checks.SchemaReport, error) {
	var reports []*checks.SchemaReport
	for _, schema := range models.Schemas() {
		report, err := checks.CheckSchema(s.db, schema)
		if err != nil {
			return nil, err
		}
		if report.Matched {
			counts, err := store.New(s.db, schema).Counts(ctx)
			if err != nil {
				s.logger.Warn("Row count failed", zap.String("schema", schema.Name), zap.Error(err))
				report.Errors = append(report.Errors, err.Error())
			} else {
				report.Rows = counts
			}

			names, err := store.New(s.db, schema).ValidatorsWithSeveralDefaults(ctx)
			switch {
			case err != nil:
				s.logger.Warn("Default hotkey check failed", zap.String("schema", schema.Name), zap.Error(err))
				report.Errors = append(report.Errors, err.Error())
			case len(names) > 0:
				report.SeveralDefaults = names
				report.Matched = false
				report.Errors = append(report.Errors, fmt.Sprintf("validators with several default hotkeys: %s", strings.Join(names, ", ")))
			}
		}
		reports = append(reports, report)
	}
	return reports, nil
}

// CheckDocuments reads and validates both configuration documents.
func (s *Service) CheckDocuments(ctx context.Context) []*checks.DocumentReport {
	return []*checks.DocumentReport{
		checks.CheckValidatorsDocument(ctx, s.fetcher, s.locations.Validators),
		checks.CheckSubnetsDocument(ctx, s.fetcher, s.locations.Subnets),
	}
}

// CheckAll runs every check.
func (s *Service) CheckAll(ctx context.Context) (*Report, error) {
	schemas, err := s.CheckSchemas(ctx)
	if err != nil {
		return nil, err
	}
	report := &Report{Healthy: true, Schemas: schemas, Documents: s.CheckDocuments(ctx)}
	for _, sr := range report.Schemas {
		report.Healthy = report.Healthy && sr.Matched
	}
	for _, dr := range report.Documents {
		report.Healthy = report.Healthy && dr.Status == "ok"
	}
	return report, nil
}
