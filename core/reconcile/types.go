package reconcile

import (
	"fmt"
	"strings"
)

// HotkeyLength is the length of an SS58 encoded hotkey address.
const HotkeyLength = 48

// Mode selects how subnets referenced by the config are resolved.
type Mode string

const (
	// ModeCore only uses subnets that already exist in the store.
	ModeCore Mode = "core"
	// ModeValidatorManager creates missing subnets by codename.
	ModeValidatorManager Mode = "validator_manager"
)

// ParseMode converts a schema or mode name into a Mode.
// An empty string selects ModeCore.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", string(ModeCore):
		return ModeCore, nil
	case string(ModeValidatorManager), "validator-manager", "manager":
		return ModeValidatorManager, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownMode, s)
	}
}

// CreatesSubnets reports whether unknown subnet codenames are created.
func (m Mode) CreatesSubnets() bool {
	return m == ModeValidatorManager
}

// SubnetHotkeys is the ordered list of hotkeys a validator runs on one subnet.
type SubnetHotkeys struct {
	Codename string   `json:"codename"`
	Hotkeys  []string `json:"hotkeys"`
}

// Record is one validator entry of the external configuration.
//
// LongName and LastStake are pointers so that a missing field can be told
// apart from a zero value. The loader defaults LastStake to zero but leaves
// LongName unset when the document omits it.
type Record struct {
	ShortName     string          `json:"short_name"`
	LongName      *string         `json:"long_name"`
	LastStake     *int64          `json:"last_stake"`
	DefaultHotkey string          `json:"default_hotkey,omitempty"`
	SubnetHotkeys []SubnetHotkeys `json:"subnet_hotkeys"`
}

// Validate checks that the record carries every required field.
func (r Record) Validate() error {
	switch {
	case strings.TrimSpace(r.ShortName) == "":
		return &MissingFieldError{Record: r.ShortName, Field: "short_name"}
	case r.LongName == nil:
		return &MissingFieldError{Record: r.ShortName, Field: "long_name"}
	case r.LastStake == nil:
		return &MissingFieldError{Record: r.ShortName, Field: "last_stake"}
	}
	return nil
}

// DesiredSubnetHotkeys returns the flattened set of non-default hotkeys.
func (r Record) DesiredSubnetHotkeys() map[string]struct{} {
	desired := make(map[string]struct{})
	for _, sh := range r.SubnetHotkeys {
		for _, hk := range sh.Hotkeys {
			desired[hk] = struct{}{}
		}
	}
	return desired
}

// NoSubnetKey groups non-default hotkeys without a subnet in Projection,
// the way a null key serializes to JSON.
const NoSubnetKey = "null"

// Projection returns the record as a generic map shaped like the YAML entry.
// It is the comparable form used by Diff.
func (r Record) Projection() map[string]any {
	subnets := make(map[string]any, len(r.SubnetHotkeys))
	for _, sh := range r.SubnetHotkeys {
		hotkeys := make([]any, 0, len(sh.Hotkeys))
		for _, hk := range sh.Hotkeys {
			hotkeys = append(hotkeys, hk)
		}
		key := sh.Codename
		if key == "" {
			key = NoSubnetKey
		}
		subnets[key] = hotkeys
	}

	var defaultHotkey any
	if r.DefaultHotkey != "" {
		defaultHotkey = r.DefaultHotkey
	}
	var longName any
	if r.LongName != nil {
		longName = *r.LongName
	}
	var lastStake any
	if r.LastStake != nil {
		lastStake = *r.LastStake
	}

	return map[string]any{
		"short_name":     r.ShortName,
		"long_name":      longName,
		"last_stake":     lastStake,
		"default_hotkey": defaultHotkey,
		"subnet_hotkeys": subnets,
	}
}

// Stake returns LastStake or zero when unset.
func (r Record) Stake() int64 {
	if r.LastStake == nil {
		return 0
	}
	return *r.LastStake
}

// HotkeyName returns the display name of the hotkey at position idx of a subnet list.
func HotkeyName(shortName string, idx int) string {
	if idx == 0 {
		return shortName
	}
	return fmt.Sprintf("%s[%d]", shortName, idx)
}

// DefaultHotkeyName returns the display name of a validator's default hotkey.
func DefaultHotkeyName(shortName string) string {
	return shortName + "-default"
}

// Result summarizes the mutations of a Reconcile call.
type Result struct {
	// Validators counts validators created or updated.
	Validators int `json:"validators"`
	// SubnetsCreated counts subnets created from config codenames.
	SubnetsCreated int `json:"subnets_created"`
	// SubnetsSkipped counts codenames skipped because the subnet does not exist.
	SubnetsSkipped int `json:"subnets_skipped"`
	// HotkeysCreated counts external hotkeys created.
	HotkeysCreated int `json:"hotkeys_created"`
	// HotkeysDeleted counts stale external hotkeys deleted.
	HotkeysDeleted int `json:"hotkeys_deleted"`
	// AssignmentsWritten counts assignment upserts.
	AssignmentsWritten int `json:"assignments_written"`
	// AssignmentsDeleted counts default assignments removed.
	AssignmentsDeleted int `json:"assignments_deleted"`
}
