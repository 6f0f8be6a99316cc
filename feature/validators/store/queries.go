package store

import (
	"context"
	"errors"
	"fmt"

	"auto-validator/core/reconcile"
	"auto-validator/feature/validators/models"

	"gorm.io/gorm"
)

// ErrNotFound is returned when a referenced row does not exist.
var ErrNotFound = errors.New("store: not found")

// HotkeyView is an external hotkey together with its assignment.
type HotkeyView struct {
	ID                      uint    `json:"id"`
	Name                    string  `json:"name"`
	Hotkey                  string  `json:"hotkey"`
	Subnet                  *string `json:"subnet"`
	IsDefault               bool    `json:"is_default"`
	DelegateStakePercentage float64 `json:"delegate_stake_percentage"`
}

// ValidatorView is a validator with its subnet membership and hotkeys.
type ValidatorView struct {
	ID            uint         `json:"id"`
	ShortName     string       `json:"short_name"`
	LongName      string       `json:"long_name"`
	LastStake     int64        `json:"last_stake"`
	DefaultHotkey *string      `json:"default_hotkey"`
	Subnets       []string     `json:"subnets"`
	Hotkeys       []HotkeyView `json:"hotkeys"`
}

type hotkeyRow struct {
	ValidatorID             uint
	ID                      uint
	Name                    string
	Hotkey                  string
	Codename                *string
	IsDefault               bool
	DelegateStakePercentage float64
}

type membershipRow struct {
	ValidatorID uint
	Codename    string
}

// Validators returns every validator of the schema ordered by id.
func (s *Store) Validators(ctx context.Context) ([]ValidatorView, error) {
	db := s.db.WithContext(ctx)

	var validators []models.Validator
	if err := db.Table(s.schema.Validators).Order("id").Find(&validators).Error; err != nil {
		return nil, fmt.Errorf("list validators: %w", err)
	}

	var hotkeys []hotkeyRow
	err := db.Table(s.schema.Assignments+" AS a").
		Select("a.validator_id AS validator_id, h.id AS id, h.name AS name, h.hotkey AS hotkey, " +
			"sn.codename AS codename, a.is_default AS is_default, h.delegate_stake_percentage AS delegate_stake_percentage").
		Joins("JOIN " + s.schema.Hotkeys + " AS h ON h.id = a.external_hotkey_id").
		Joins("LEFT JOIN " + s.schema.Subnets + " AS sn ON sn.id = h.subnet_id").
		Order("a.id").
		Scan(&hotkeys).Error
	if err != nil {
		return nil, fmt.Errorf("list hotkeys: %w", err)
	}

	var memberships []membershipRow
	err = db.Table(s.schema.ValidatorSubnets + " AS vs").
		Select("vs.validator_id AS validator_id, sn.codename AS codename").
		Joins("JOIN " + s.schema.Subnets + " AS sn ON sn.id = vs.subnet_id").
		Order("sn.codename").
		Scan(&memberships).Error
	if err != nil {
		return nil, fmt.Errorf("list memberships: %w", err)
	}

	views := make([]ValidatorView, 0, len(validators))
	index := make(map[uint]int, len(validators))
	for i, v := range validators {
		index[v.ID] = i
		views = append(views, ValidatorView{
			ID:        v.ID,
			ShortName: v.ShortName,
			LongName:  v.LongName,
			LastStake: v.LastStake,
			Subnets:   []string{},
			Hotkeys:   []HotkeyView{},
		})
	}
	for _, h := range hotkeys {
		i, ok := index[h.ValidatorID]
		if !ok {
			continue
		}
		if h.IsDefault {
			hotkey := h.Hotkey
			views[i].DefaultHotkey = &hotkey
		}
		views[i].Hotkeys = append(views[i].Hotkeys, HotkeyView{
			ID:                      h.ID,
			Name:                    h.Name,
			Hotkey:                  h.Hotkey,
			Subnet:                  h.Codename,
			IsDefault:               h.IsDefault,
			DelegateStakePercentage: h.DelegateStakePercentage,
		})
	}
	for _, m := range memberships {
		if i, ok := index[m.ValidatorID]; ok {
			views[i].Subnets = append(views[i].Subnets, m.Codename)
		}
	}
	return views, nil
}

// Records projects the persisted validators into the shape of the configuration document.
// Non-default hotkeys are grouped by the codename of their subnet in assignment order.
func (s *Store) Records(ctx context.Context) ([]reconcile.Record, error) {
	views, err := s.Validators(ctx)
	if err != nil {
		return nil, err
	}

	records := make([]reconcile.Record, 0, len(views))
	for _, v := range views {
		longName, stake := v.LongName, v.LastStake
		record := reconcile.Record{
			ShortName:     v.ShortName,
			LongName:      &longName,
			LastStake:     &stake,
			SubnetHotkeys: []reconcile.SubnetHotkeys{},
		}
		if v.DefaultHotkey != nil {
			record.DefaultHotkey = *v.DefaultHotkey
		}

		groups := make(map[string]int)
		for _, h := range v.Hotkeys {
			if h.IsDefault {
				continue
			}
			codename := ""
			if h.Subnet != nil {
				codename = *h.Subnet
			}
			i, ok := groups[codename]
			if !ok {
				i = len(record.SubnetHotkeys)
				groups[codename] = i
				record.SubnetHotkeys = append(record.SubnetHotkeys, reconcile.SubnetHotkeys{Codename: codename, Hotkeys: []string{}})
			}
			record.SubnetHotkeys[i].Hotkeys = append(record.SubnetHotkeys[i].Hotkeys, h.Hotkey)
		}
		records = append(records, record)
	}
	return records, nil
}

// SetDelegateStakes updates delegate stake percentages keyed by hotkey id in one transaction.
// An unknown id aborts the whole update.
func (s *Store) SetDelegateStakes(ctx context.Context, stakes map[uint]float64) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for id, percentage := range stakes {
			var n int64
			if err := tx.Table(s.schema.Hotkeys).Where("id = ?", id).Count(&n).Error; err != nil {
				return err
			}
			if n == 0 {
				return fmt.Errorf("%w: hotkey %d", ErrNotFound, id)
			}
			if err := tx.Table(s.schema.Hotkeys).Where("id = ?", id).Update("delegate_stake_percentage", percentage).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// SetDelegateStake updates the delegate stake percentage of one external hotkey.
func (s *Store) SetDelegateStake(ctx context.Context, hotkeyID uint, percentage float64) error {
	return s.SetDelegateStakes(ctx, map[uint]float64{hotkeyID: percentage})
}

// Counts returns the number of rows per table of the schema.
func (s *Store) Counts(ctx context.Context) (map[string]int64, error) {
	tables := []string{s.schema.Validators, s.schema.Subnets, s.schema.Hotkeys, s.schema.Assignments, s.schema.ValidatorSubnets}
	out := make(map[string]int64, len(tables))
	for _, table := range tables {
		var n int64
		if err := s.db.WithContext(ctx).Table(table).Count(&n).Error; err != nil {
			return nil, fmt.Errorf("count %s: %w", table, err)
		}
		out[table] = n
	}
	return out, nil
}

// ValidatorsWithSeveralDefaults lists the short names of validators holding
// more than one default assignment. The tables carry no partial unique index
// for this, so rows written outside Reconcile can break the rule.
func (s *Store) ValidatorsWithSeveralDefaults(ctx context.Context) ([]string, error) {
	var names []string
	err := s.db.WithContext(ctx).
		Table(s.schema.Assignments+" AS a").
		Select("v.short_name").
		Joins("JOIN "+s.schema.Validators+" AS v ON v.id = a.validator_id").
		Where("a.is_default = ?", true).
		Group("v.short_name").
		Having("COUNT(*) > 1").
		Order("v.short_name").
		Pluck("v.short_name", &names).Error
	if err != nil {
		return nil, fmt.Errorf("count defaults: %w", err)
	}
	return names, nil
}

// IsNotFound reports whether err is ErrNotFound or gorm.ErrRecordNotFound.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound) || errors.Is(err, gorm.ErrRecordNotFound)
}
