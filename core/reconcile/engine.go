package reconcile

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// Reconcile applies records to store inside a single transaction.
// Records are processed in slice order. The first error aborts the pass and
// rolls back every mutation made by it.
func Reconcile(ctx context.Context, store Store, records []Record, mode Mode, logger *zap.Logger) (Result, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if mode != ModeCore && mode != ModeValidatorManager {
		return Result{}, fmt.Errorf("%w: %q", ErrUnknownMode, mode)
	}

	var result Result
	err := store.Transaction(ctx, func(tx Tx) error {
		result = Result{}
		for _, record := range records {
			if err := ctx.Err(); err != nil {
				return err
			}
			if err := applyRecord(ctx, tx, record, mode, &result); err != nil {
				return err
			}
			logger.Debug("Validator reconciled",
				zap.String("short_name", record.ShortName),
				zap.Int("subnets", len(record.SubnetHotkeys)),
			)
		}
		return nil
	})
	if err != nil {
		logger.Error("Reconcile failed", zap.String("mode", string(mode)), zap.Error(err))
		return Result{}, err
	}

	logger.Info("Reconcile completed",
		zap.String("mode", string(mode)),
		zap.Int("validators", result.Validators),
		zap.Int("subnets_created", result.SubnetsCreated),
		zap.Int("hotkeys_created", result.HotkeysCreated),
		zap.Int("hotkeys_deleted", result.HotkeysDeleted),
	)
	return result, nil
}

func applyRecord(ctx context.Context, tx Tx, record Record, mode Mode, result *Result) error {
	if err := record.Validate(); err != nil {
		return err
	}

	validatorID, _, err := tx.UpsertValidator(ctx, record.ShortName, *record.LongName, *record.LastStake)
	if err != nil {
		return fmt.Errorf("upsert validator %q: %w", record.ShortName, err)
	}
	result.Validators++

	if err := applyDefaultHotkey(ctx, tx, validatorID, record, result); err != nil {
		return err
	}

	subnetIDs, err := applySubnetHotkeys(ctx, tx, validatorID, record, mode, result)
	if err != nil {
		return err
	}

	if err := tx.SetValidatorSubnets(ctx, validatorID, subnetIDs); err != nil {
		return fmt.Errorf("set subnets of %q: %w", record.ShortName, err)
	}

	return pruneStaleHotkeys(ctx, tx, validatorID, record, result)
}

// applyDefaultHotkey makes record.DefaultHotkey the single default of the validator.
// The previous default assignment is removed before the new one is written so
// that a unique default constraint in the store is never violated.
func applyDefaultHotkey(ctx context.Context, tx Tx, validatorID uint, record Record, result *Result) error {
	existing, err := tx.DefaultAssignment(ctx, validatorID)
	if err != nil {
		return fmt.Errorf("default assignment of %q: %w", record.ShortName, err)
	}

	if record.DefaultHotkey == "" {
		if existing != nil {
			if err := tx.DeleteAssignment(ctx, existing.ID); err != nil {
				return fmt.Errorf("drop default of %q: %w", record.ShortName, err)
			}
			result.AssignmentsDeleted++
		}
		return nil
	}

	hotkeyID, created, err := tx.GetOrCreateHotkey(ctx, HotkeySpec{
		Hotkey: record.DefaultHotkey,
		Name:   DefaultHotkeyName(record.ShortName),
	})
	if err != nil {
		return fmt.Errorf("default hotkey of %q: %w", record.ShortName, err)
	}
	if created {
		result.HotkeysCreated++
	}

	if existing != nil && existing.HotkeyID != hotkeyID {
		if err := tx.DeleteAssignment(ctx, existing.ID); err != nil {
			return fmt.Errorf("replace default of %q: %w", record.ShortName, err)
		}
		result.AssignmentsDeleted++
	}

	if err := tx.UpsertAssignment(ctx, validatorID, hotkeyID, true); err != nil {
		return fmt.Errorf("assign default hotkey of %q: %w", record.ShortName, err)
	}
	result.AssignmentsWritten++
	return nil
}

// applySubnetHotkeys writes the per-subnet hotkeys and returns the ids of the
// subnets that were resolved.
func applySubnetHotkeys(ctx context.Context, tx Tx, validatorID uint, record Record, mode Mode, result *Result) ([]uint, error) {
	subnetIDs := make([]uint, 0, len(record.SubnetHotkeys))
	seen := make(map[uint]struct{}, len(record.SubnetHotkeys))

	for _, sh := range record.SubnetHotkeys {
		subnetID, ok, err := resolveSubnet(ctx, tx, sh.Codename, mode, result)
		if err != nil {
			return nil, fmt.Errorf("subnet %q of %q: %w", sh.Codename, record.ShortName, err)
		}
		if !ok {
			result.SubnetsSkipped++
			continue
		}

		for idx, hotkey := range sh.Hotkeys {
			sid := subnetID
			hotkeyID, created, err := tx.GetOrCreateHotkey(ctx, HotkeySpec{
				Hotkey:   hotkey,
				Name:     HotkeyName(record.ShortName, idx),
				SubnetID: &sid,
			})
			if err != nil {
				return nil, fmt.Errorf("hotkey %d of %q on %q: %w", idx, record.ShortName, sh.Codename, err)
			}
			if created {
				result.HotkeysCreated++
			}
			if err := tx.UpsertAssignment(ctx, validatorID, hotkeyID, false); err != nil {
				return nil, fmt.Errorf("assign hotkey %d of %q on %q: %w", idx, record.ShortName, sh.Codename, err)
			}
			result.AssignmentsWritten++
		}

		if _, dup := seen[subnetID]; !dup {
			seen[subnetID] = struct{}{}
			subnetIDs = append(subnetIDs, subnetID)
		}
	}
	return subnetIDs, nil
}

func resolveSubnet(ctx context.Context, tx Tx, codename string, mode Mode, result *Result) (uint, bool, error) {
	if mode.CreatesSubnets() {
		id, created, err := tx.GetOrCreateSubnet(ctx, codename)
		if err != nil {
			return 0, false, err
		}
		if created {
			result.SubnetsCreated++
		}
		return id, true, nil
	}
	return tx.FindSubnet(ctx, codename)
}

// pruneStaleHotkeys deletes every non-default hotkey of the validator that the
// record no longer lists.
func pruneStaleHotkeys(ctx context.Context, tx Tx, validatorID uint, record Record, result *Result) error {
	assignments, err := tx.NonDefaultAssignments(ctx, validatorID)
	if err != nil {
		return fmt.Errorf("list hotkeys of %q: %w", record.ShortName, err)
	}

	desired := record.DesiredSubnetHotkeys()
	for _, a := range assignments {
		if _, keep := desired[a.Hotkey]; keep {
			continue
		}
		if err := tx.DeleteHotkey(ctx, a.HotkeyID); err != nil {
			return fmt.Errorf("prune hotkey of %q: %w", record.ShortName, err)
		}
		result.HotkeysDeleted++
	}
	return nil
}
