package reconcile

import (
	"context"
	"fmt"
	"sort"
)

type memValidator struct {
	ID        uint
	ShortName string
	LongName  string
	LastStake int64
	Subnets   []uint
}

type memHotkey struct {
	ID       uint
	Hotkey   string
	Name     string
	SubnetID *uint
}

type memState struct {
	nextID      uint
	validators  map[uint]*memValidator
	subnets     map[string]uint
	hotkeys     map[uint]*memHotkey
	assignments map[uint]*Assignment
}

func (s *memState) clone() *memState {
	c := &memState{
		nextID:      s.nextID,
		validators:  make(map[uint]*memValidator, len(s.validators)),
		subnets:     make(map[string]uint, len(s.subnets)),
		hotkeys:     make(map[uint]*memHotkey, len(s.hotkeys)),
		assignments: make(map[uint]*Assignment, len(s.assignments)),
	}
	for k, v := range s.validators {
		cp := *v
		cp.Subnets = append([]uint(nil), v.Subnets...)
		c.validators[k] = &cp
	}
	for k, v := range s.subnets {
		c.subnets[k] = v
	}
	for k, v := range s.hotkeys {
		cp := *v
		c.hotkeys[k] = &cp
	}
	for k, v := range s.assignments {
		cp := *v
		c.assignments[k] = &cp
	}
	return c
}

// memStore is an in-memory Store enforcing the same uniqueness rules as the SQL schema.
type memStore struct {
	state *memState
	// failOn makes the named operation return an error.
	failOn string
}

func newMemStore() *memStore {
	return &memStore{state: (&memState{}).clone()}
}

func (m *memStore) Transaction(ctx context.Context, fn func(tx Tx) error) error {
	snapshot := m.state.clone()
	if err := fn(&memTx{store: m}); err != nil {
		m.state = snapshot
		return err
	}
	return nil
}

func (m *memStore) id() uint {
	m.state.nextID++
	return m.state.nextID
}

func (m *memStore) counts() (validators, subnets, hotkeys, assignments int) {
	return len(m.state.validators), len(m.state.subnets), len(m.state.hotkeys), len(m.state.assignments)
}

func (m *memStore) validator(shortName string) *memValidator {
	for _, v := range m.state.validators {
		if v.ShortName == shortName {
			return v
		}
	}
	return nil
}

func (m *memStore) hotkey(value string) *memHotkey {
	for _, h := range m.state.hotkeys {
		if h.Hotkey == value {
			return h
		}
	}
	return nil
}

func (m *memStore) assignmentsOf(validatorID uint) []Assignment {
	var out []Assignment
	for _, a := range m.state.assignments {
		if a.ValidatorID == validatorID {
			a.Hotkey = m.state.hotkeys[a.HotkeyID].Hotkey
			out = append(out, *a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (m *memStore) subnetCodenames(v *memValidator) []string {
	var out []string
	for _, id := range v.Subnets {
		for name, sid := range m.state.subnets {
			if sid == id {
				out = append(out, name)
			}
		}
	}
	sort.Strings(out)
	return out
}

type memTx struct {
	store *memStore
}

func (t *memTx) fail(op string) error {
	if t.store.failOn == op {
		return fmt.Errorf("%w: %s", ErrConstraintViolation, op)
	}
	return nil
}

func (t *memTx) UpsertValidator(ctx context.Context, shortName, longName string, lastStake int64) (uint, bool, error) {
	if err := t.fail("UpsertValidator"); err != nil {
		return 0, false, err
	}
	for _, v := range t.store.state.validators {
		if v.ShortName == shortName && v.LongName == longName {
			v.LastStake = lastStake
			return v.ID, false, nil
		}
		if v.ShortName == shortName || v.LongName == longName {
			return 0, false, fmt.Errorf("%w: validator name taken", ErrConstraintViolation)
		}
	}
	id := t.store.id()
	t.store.state.validators[id] = &memValidator{ID: id, ShortName: shortName, LongName: longName, LastStake: lastStake}
	return id, true, nil
}

func (t *memTx) FindSubnet(ctx context.Context, codename string) (uint, bool, error) {
	id, ok := t.store.state.subnets[codename]
	return id, ok, nil
}

func (t *memTx) GetOrCreateSubnet(ctx context.Context, codename string) (uint, bool, error) {
	if id, ok := t.store.state.subnets[codename]; ok {
		return id, false, nil
	}
	id := t.store.id()
	t.store.state.subnets[codename] = id
	return id, true, nil
}

func (t *memTx) GetOrCreateHotkey(ctx context.Context, spec HotkeySpec) (uint, bool, error) {
	if err := t.fail("GetOrCreateHotkey"); err != nil {
		return 0, false, err
	}
	if h := t.store.hotkey(spec.Hotkey); h != nil {
		return h.ID, false, nil
	}
	id := t.store.id()
	t.store.state.hotkeys[id] = &memHotkey{ID: id, Hotkey: spec.Hotkey, Name: spec.Name, SubnetID: spec.SubnetID}
	return id, true, nil
}

func (t *memTx) UpsertAssignment(ctx context.Context, validatorID, hotkeyID uint, isDefault bool) error {
	for _, a := range t.store.state.assignments {
		if a.HotkeyID != hotkeyID {
			continue
		}
		if a.ValidatorID != validatorID {
			return fmt.Errorf("%w: hotkey already assigned", ErrConstraintViolation)
		}
		a.IsDefault = isDefault
		return t.checkDefaults(validatorID)
	}
	id := t.store.id()
	t.store.state.assignments[id] = &Assignment{ID: id, ValidatorID: validatorID, HotkeyID: hotkeyID, IsDefault: isDefault}
	return t.checkDefaults(validatorID)
}

func (t *memTx) checkDefaults(validatorID uint) error {
	n := 0
	for _, a := range t.store.state.assignments {
		if a.ValidatorID == validatorID && a.IsDefault {
			n++
		}
	}
	if n > 1 {
		return fmt.Errorf("%w: more than one default", ErrConstraintViolation)
	}
	return nil
}

func (t *memTx) DefaultAssignment(ctx context.Context, validatorID uint) (*Assignment, error) {
	for _, a := range t.store.assignmentsOf(validatorID) {
		if a.IsDefault {
			a := a
			return &a, nil
		}
	}
	return nil, nil
}

func (t *memTx) DeleteAssignment(ctx context.Context, id uint) error {
	delete(t.store.state.assignments, id)
	return nil
}

func (t *memTx) NonDefaultAssignments(ctx context.Context, validatorID uint) ([]Assignment, error) {
	var out []Assignment
	for _, a := range t.store.assignmentsOf(validatorID) {
		if !a.IsDefault {
			out = append(out, a)
		}
	}
	return out, nil
}

func (t *memTx) DeleteHotkey(ctx context.Context, id uint) error {
	for aid, a := range t.store.state.assignments {
		if a.HotkeyID == id {
			delete(t.store.state.assignments, aid)
		}
	}
	delete(t.store.state.hotkeys, id)
	return nil
}

func (t *memTx) SetValidatorSubnets(ctx context.Context, validatorID uint, subnetIDs []uint) error {
	if err := t.fail("SetValidatorSubnets"); err != nil {
		return err
	}
	t.store.state.validators[validatorID].Subnets = append([]uint(nil), subnetIDs...)
	return nil
}
