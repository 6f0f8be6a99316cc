// Package store implements reconcile.Store on top of GORM for one schema.
package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"auto-validator/core/reconcile"
	"auto-validator/feature/validators/models"

	"gorm.io/gorm"
)

// Store is a GORM backed reconcile.Store bound to one schema.
type Store struct {
	db     *gorm.DB
	schema models.Schema
}

// New creates a store for schema.
func New(db *gorm.DB, schema models.Schema) *Store {
	return &Store{db: db, schema: schema}
}

// Schema returns the schema the store is bound to.
func (s *Store) Schema() models.Schema {
	return s.schema
}

// Transaction runs fn inside a database transaction.
func (s *Store) Transaction(ctx context.Context, fn func(tx reconcile.Tx) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&Tx{db: tx, schema: s.schema})
	})
}

// Tx implements reconcile.Tx over an open GORM transaction.
type Tx struct {
	db     *gorm.DB
	schema models.Schema
}

func (t *Tx) table(ctx context.Context, name string) *gorm.DB {
	return t.db.WithContext(ctx).Table(name)
}

// UpsertValidator updates last_stake of the validator matching both names, or creates it.
func (t *Tx) UpsertValidator(ctx context.Context, shortName, longName string, lastStake int64) (uint, bool, error) {
	var v models.Validator
	err := t.table(ctx, t.schema.Validators).
		Where("short_name = ? AND long_name = ?", shortName, longName).
		Take(&v).Error
	switch {
	case err == nil:
		if v.LastStake != lastStake {
			if err := t.table(ctx, t.schema.Validators).Where("id = ?", v.ID).Update("last_stake", lastStake).Error; err != nil {
				return 0, false, translate(err)
			}
		}
		return v.ID, false, nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		v = models.Validator{ShortName: shortName, LongName: longName, LastStake: lastStake}
		if err := t.table(ctx, t.schema.Validators).Create(&v).Error; err != nil {
			return 0, false, translate(err)
		}
		return v.ID, true, nil
	default:
		return 0, false, err
	}
}

// FindSubnet looks a subnet up by codename.
func (t *Tx) FindSubnet(ctx context.Context, codename string) (uint, bool, error) {
	var subnet models.Subnet
	err := t.table(ctx, t.schema.Subnets).Select("id").Where("codename = ?", codename).Take(&subnet).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return subnet.ID, true, nil
}

// GetOrCreateSubnet returns the subnet with codename, creating an otherwise empty row.
func (t *Tx) GetOrCreateSubnet(ctx context.Context, codename string) (uint, bool, error) {
	id, found, err := t.FindSubnet(ctx, codename)
	if err != nil || found {
		return id, false, err
	}
	subnet := models.Subnet{Codename: codename}
	if err := t.table(ctx, t.schema.Subnets).Create(&subnet).Error; err != nil {
		return 0, false, translate(err)
	}
	return subnet.ID, true, nil
}

// GetOrCreateHotkey returns the hotkey matching spec.Hotkey. An existing row keeps its name and subnet.
func (t *Tx) GetOrCreateHotkey(ctx context.Context, spec reconcile.HotkeySpec) (uint, bool, error) {
	var hk models.ExternalHotkey
	err := t.table(ctx, t.schema.Hotkeys).Select("id").Where("hotkey = ?", spec.Hotkey).Take(&hk).Error
	if err == nil {
		return hk.ID, false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, false, err
	}

	hk = models.ExternalHotkey{
		Name:                    spec.Name,
		Hotkey:                  spec.Hotkey,
		SubnetID:                spec.SubnetID,
		DelegateStakePercentage: 0,
	}
	if err := t.table(ctx, t.schema.Hotkeys).Create(&hk).Error; err != nil {
		return 0, false, translate(err)
	}
	return hk.ID, true, nil
}

// UpsertAssignment matches on (validatorID, hotkeyID) and overwrites is_default.
func (t *Tx) UpsertAssignment(ctx context.Context, validatorID, hotkeyID uint, isDefault bool) error {
	var a models.ValidatorHotkey
	err := t.table(ctx, t.schema.Assignments).
		Where("validator_id = ? AND external_hotkey_id = ?", validatorID, hotkeyID).
		Take(&a).Error
	switch {
	case err == nil:
		if a.IsDefault == isDefault {
			return nil
		}
		return translate(t.table(ctx, t.schema.Assignments).Where("id = ?", a.ID).Update("is_default", isDefault).Error)
	case errors.Is(err, gorm.ErrRecordNotFound):
		a = models.ValidatorHotkey{ValidatorID: validatorID, ExternalHotkeyID: hotkeyID, IsDefault: isDefault}
		return translate(t.table(ctx, t.schema.Assignments).Create(&a).Error)
	default:
		return err
	}
}

// DefaultAssignment returns the default assignment of a validator, or nil.
func (t *Tx) DefaultAssignment(ctx context.Context, validatorID uint) (*reconcile.Assignment, error) {
	rows, err := t.assignments(ctx, validatorID, true)
	if err != nil || len(rows) == 0 {
		return nil, err
	}
	return &rows[0], nil
}

// DeleteAssignment removes one assignment row.
func (t *Tx) DeleteAssignment(ctx context.Context, id uint) error {
	return translate(t.table(ctx, t.schema.Assignments).Where("id = ?", id).Delete(&models.ValidatorHotkey{}).Error)
}

// NonDefaultAssignments lists the non-default assignments of a validator in id order.
func (t *Tx) NonDefaultAssignments(ctx context.Context, validatorID uint) ([]reconcile.Assignment, error) {
	return t.assignments(ctx, validatorID, false)
}

func (t *Tx) assignments(ctx context.Context, validatorID uint, isDefault bool) ([]reconcile.Assignment, error) {
	var rows []reconcile.Assignment
	err := t.db.WithContext(ctx).
		Table(t.schema.Assignments+" AS a").
		Select("a.id AS id, a.validator_id AS validator_id, a.external_hotkey_id AS hotkey_id, h.hotkey AS hotkey, a.is_default AS is_default").
		Joins("JOIN "+t.schema.Hotkeys+" AS h ON h.id = a.external_hotkey_id").
		Where("a.validator_id = ? AND a.is_default = ?", validatorID, isDefault).
		Order("a.id").
		Scan(&rows).Error
	return rows, err
}

// DeleteHotkey removes the hotkey and the assignment that references it.
func (t *Tx) DeleteHotkey(ctx context.Context, id uint) error {
	if err := t.table(ctx, t.schema.Assignments).Where("external_hotkey_id = ?", id).Delete(&models.ValidatorHotkey{}).Error; err != nil {
		return translate(err)
	}
	return translate(t.table(ctx, t.schema.Hotkeys).Where("id = ?", id).Delete(&models.ExternalHotkey{}).Error)
}

// SetValidatorSubnets replaces the membership rows of a validator.
func (t *Tx) SetValidatorSubnets(ctx context.Context, validatorID uint, subnetIDs []uint) error {
	if err := t.table(ctx, t.schema.ValidatorSubnets).Where("validator_id = ?", validatorID).Delete(&models.ValidatorSubnet{}).Error; err != nil {
		return translate(err)
	}
	if len(subnetIDs) == 0 {
		return nil
	}
	rows := make([]models.ValidatorSubnet, 0, len(subnetIDs))
	for _, id := range subnetIDs {
		rows = append(rows, models.ValidatorSubnet{ValidatorID: validatorID, SubnetID: id})
	}
	return translate(t.table(ctx, t.schema.ValidatorSubnets).Create(&rows).Error)
}

// translate maps unique and foreign key failures to reconcile.ErrConstraintViolation.
// Drivers without error translation are matched on their message.
func translate(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) || errors.Is(err, gorm.ErrForeignKeyViolated) || isConstraintMessage(err.Error()) {
		return fmt.Errorf("%w: %w", reconcile.ErrConstraintViolation, err)
	}
	return err
}

func isConstraintMessage(msg string) bool {
	msg = strings.ToLower(msg)
	return strings.Contains(msg, "unique constraint failed") ||
		strings.Contains(msg, "duplicate entry") ||
		strings.Contains(msg, "foreign key constraint")
}
