package store

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"auto-validator/core/utils"
	"auto-validator/feature/validators/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Settings reads and writes runtime toggles shared by every replica.
type Settings struct {
	db *gorm.DB
}

// NewSettings creates a settings accessor.
func NewSettings(db *gorm.DB) *Settings {
	return &Settings{db: db}
}

// Bool returns the named toggle, or fallback when it was never written.
// Stored values other than "1" and "true" read as false.
func (s *Settings) Bool(ctx context.Context, name string, fallback bool) (bool, error) {
	var row models.Setting
	err := s.db.WithContext(ctx).Where("name = ?", name).Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fallback, nil
	}
	if err != nil {
		return fallback, err
	}
	// Values written by hand may read "1" or "True".
	return utils.ToBool(strings.TrimSpace(row.Value)), nil
}

// SetBool stores the named toggle.
func (s *Settings) SetBool(ctx context.Context, name string, value bool) error {
	row := models.Setting{Name: name, Value: strconv.FormatBool(value)}
	return s.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "name"}}, DoUpdates: clause.AssignmentColumns([]string{"value"})}).
		Create(&row).Error
}

// ToggleBool flips the named toggle inside a transaction and returns the new value.
func (s *Settings) ToggleBool(ctx context.Context, name string, fallback bool) (bool, error) {
	var next bool
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		inner := &Settings{db: tx}
		current, err := inner.Bool(ctx, name, fallback)
		if err != nil {
			return err
		}
		next = !current
		return inner.SetBool(ctx, name, next)
	})
	return next, err
}
