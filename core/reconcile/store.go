package reconcile

import "context"

// Store opens transactions over the four entity collections.
// Implementations are bound to a single schema.
type Store interface {
	// Transaction runs fn atomically. A non-nil error from fn rolls back
	// every mutation performed through tx.
	Transaction(ctx context.Context, fn func(tx Tx) error) error
}

// HotkeySpec carries the values used when an external hotkey is created.
// They never overwrite an existing row.
type HotkeySpec struct {
	Hotkey   string
	Name     string
	SubnetID *uint
}

// Assignment is a validator hotkey association as seen by the engine.
type Assignment struct {
	ID          uint
	ValidatorID uint
	HotkeyID    uint
	Hotkey      string
	IsDefault   bool
}

// Tx exposes the storage operations used by a reconciliation pass.
type Tx interface {
	// UpsertValidator updates or creates the validator matching shortName and longName.
	UpsertValidator(ctx context.Context, shortName, longName string, lastStake int64) (id uint, created bool, err error)
	// FindSubnet looks a subnet up by codename.
	FindSubnet(ctx context.Context, codename string) (id uint, found bool, err error)
	// GetOrCreateSubnet returns the subnet with codename, creating it when missing.
	GetOrCreateSubnet(ctx context.Context, codename string) (id uint, created bool, err error)
	// GetOrCreateHotkey returns the external hotkey matching spec.Hotkey, creating it from spec when missing.
	GetOrCreateHotkey(ctx context.Context, spec HotkeySpec) (id uint, created bool, err error)
	// UpsertAssignment matches on (validatorID, hotkeyID) and overwrites isDefault.
	UpsertAssignment(ctx context.Context, validatorID, hotkeyID uint, isDefault bool) error
	// DefaultAssignment returns the default assignment of a validator, or nil.
	DefaultAssignment(ctx context.Context, validatorID uint) (*Assignment, error)
	// DeleteAssignment removes one assignment row.
	DeleteAssignment(ctx context.Context, id uint) error
	// NonDefaultAssignments lists the non-default assignments of a validator.
	NonDefaultAssignments(ctx context.Context, validatorID uint) ([]Assignment, error)
	// DeleteHotkey removes an external hotkey together with its assignment.
	DeleteHotkey(ctx context.Context, id uint) error
	// SetValidatorSubnets replaces the subnet membership of a validator.
	SetValidatorSubnets(ctx context.Context, validatorID uint, subnetIDs []uint) error
}
