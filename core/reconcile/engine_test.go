package reconcile

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// hk builds a deterministic 48 character hotkey.
func hk(prefix string, index int) string {
	s := fmt.Sprintf("%s_%d", prefix, index)
	return s + strings.Repeat("0", HotkeyLength-len(s))
}

func strPtr(s string) *string { return &s }
func intPtr(v int64) *int64   { return &v }

func record(short, long string, stake int64, def string, subnets ...SubnetHotkeys) Record {
	if subnets == nil {
		subnets = []SubnetHotkeys{}
	}
	return Record{
		ShortName:     short,
		LongName:      strPtr(long),
		LastStake:     intPtr(stake),
		DefaultHotkey: def,
		SubnetHotkeys: subnets,
	}
}

func TestReconcile_EndToEndValidatorManager(t *testing.T) {
	store := newMemStore()
	def, omron := hk("default", 0), hk("omron", 0)

	records := []Record{record("OTF", "Opentensor Foundation", 1064117, def,
		SubnetHotkeys{Codename: "omron", Hotkeys: []string{omron}})}

	result, err := Reconcile(context.Background(), store, records, ModeValidatorManager, nil)
	require.NoError(t, err)

	v := store.validator("OTF")
	require.NotNil(t, v)
	assert.Equal(t, int64(1064117), v.LastStake)
	assert.Equal(t, []string{"omron"}, store.subnetCodenames(v))

	validators, subnets, hotkeys, assignments := store.counts()
	assert.Equal(t, 1, validators)
	assert.Equal(t, 1, subnets)
	assert.Equal(t, 2, hotkeys)
	assert.Equal(t, 2, assignments)

	var defaultHotkey string
	for _, a := range store.assignmentsOf(v.ID) {
		if a.IsDefault {
			defaultHotkey = a.Hotkey
		}
	}
	assert.Equal(t, def, defaultHotkey)
	assert.Equal(t, "OTF-default", store.hotkey(def).Name)
	assert.Nil(t, store.hotkey(def).SubnetID)
	assert.NotNil(t, store.hotkey(omron).SubnetID)

	assert.Equal(t, Result{
		Validators:         1,
		SubnetsCreated:     1,
		HotkeysCreated:     2,
		AssignmentsWritten: 2,
	}, result)
}

func TestReconcile_CoreModeSkipsUnknownSubnets(t *testing.T) {
	store := newMemStore()
	records := []Record{record("OTF", "Opentensor Foundation", 10, hk("default", 0),
		SubnetHotkeys{Codename: "omron", Hotkeys: []string{hk("omron", 0)}})}

	result, err := Reconcile(context.Background(), store, records, ModeCore, nil)
	require.NoError(t, err)

	validators, subnets, hotkeys, _ := store.counts()
	assert.Equal(t, 1, validators)
	assert.Equal(t, 0, subnets)
	assert.Equal(t, 1, hotkeys, "only the default hotkey is created")
	assert.Empty(t, store.validator("OTF").Subnets)
	assert.Equal(t, 1, result.SubnetsSkipped)
}

func TestReconcile_CoreModeUsesExistingSubnets(t *testing.T) {
	store := newMemStore()
	store.state.subnets["omron"] = store.id()

	records := []Record{record("OTF", "Opentensor Foundation", 10, "",
		SubnetHotkeys{Codename: "omron", Hotkeys: []string{hk("omron", 0), hk("omron", 1)}},
		SubnetHotkeys{Codename: "unknown", Hotkeys: []string{hk("unknown", 0)}})}

	_, err := Reconcile(context.Background(), store, records, ModeCore, nil)
	require.NoError(t, err)

	v := store.validator("OTF")
	assert.Equal(t, []string{"omron"}, store.subnetCodenames(v))
	assert.Equal(t, "OTF", store.hotkey(hk("omron", 0)).Name)
	assert.Equal(t, "OTF[1]", store.hotkey(hk("omron", 1)).Name)
	assert.Nil(t, store.hotkey(hk("unknown", 0)))
}

func TestReconcile_Idempotent(t *testing.T) {
	store := newMemStore()
	records := []Record{
		record("OTF", "Opentensor Foundation", 100, hk("d", 0),
			SubnetHotkeys{Codename: "omron", Hotkeys: []string{hk("a", 0), hk("a", 1)}}),
		record("RT21", "Round Table 21", 50, hk("d", 1),
			SubnetHotkeys{Codename: "dojo", Hotkeys: []string{hk("b", 0)}}),
	}

	_, err := Reconcile(context.Background(), store, records, ModeValidatorManager, nil)
	require.NoError(t, err)
	first := store.state.clone()

	second, err := Reconcile(context.Background(), store, records, ModeValidatorManager, nil)
	require.NoError(t, err)

	assert.Equal(t, first, store.state)
	assert.Zero(t, second.HotkeysCreated)
	assert.Zero(t, second.HotkeysDeleted)
	assert.Zero(t, second.SubnetsCreated)
}

func TestReconcile_ReplacesDefaultHotkey(t *testing.T) {
	store := newMemStore()
	ctx := context.Background()

	_, err := Reconcile(ctx, store, []Record{record("OTF", "Opentensor Foundation", 1, hk("old", 0))}, ModeCore, nil)
	require.NoError(t, err)

	result, err := Reconcile(ctx, store, []Record{record("OTF", "Opentensor Foundation", 1, hk("new", 0))}, ModeCore, nil)
	require.NoError(t, err)

	v := store.validator("OTF")
	assignments := store.assignmentsOf(v.ID)
	require.Len(t, assignments, 1)
	assert.True(t, assignments[0].IsDefault)
	assert.Equal(t, hk("new", 0), assignments[0].Hotkey)
	assert.NotNil(t, store.hotkey(hk("old", 0)), "old default hotkey row is kept")
	assert.Equal(t, 1, result.AssignmentsDeleted)
}

func TestReconcile_RemovesDefaultWhenAbsent(t *testing.T) {
	store := newMemStore()
	ctx := context.Background()

	_, err := Reconcile(ctx, store, []Record{record("OTF", "Opentensor Foundation", 1, hk("old", 0))}, ModeCore, nil)
	require.NoError(t, err)

	_, err = Reconcile(ctx, store, []Record{record("OTF", "Opentensor Foundation", 1, "")}, ModeCore, nil)
	require.NoError(t, err)

	assert.Empty(t, store.assignmentsOf(store.validator("OTF").ID))
}

func TestReconcile_PrunesStaleHotkeys(t *testing.T) {
	store := newMemStore()
	ctx := context.Background()
	a, b, c := hk("A", 0), hk("B", 0), hk("C", 0)

	_, err := Reconcile(ctx, store, []Record{record("OTF", "Opentensor Foundation", 1, "",
		SubnetHotkeys{Codename: "S", Hotkeys: []string{a, b}})}, ModeValidatorManager, nil)
	require.NoError(t, err)

	result, err := Reconcile(ctx, store, []Record{record("OTF", "Opentensor Foundation", 1, "",
		SubnetHotkeys{Codename: "S", Hotkeys: []string{c}})}, ModeValidatorManager, nil)
	require.NoError(t, err)

	assert.Nil(t, store.hotkey(a))
	assert.Nil(t, store.hotkey(b))
	assert.NotNil(t, store.hotkey(c))
	assert.Equal(t, 2, result.HotkeysDeleted)
	assert.Len(t, store.assignmentsOf(store.validator("OTF").ID), 1)
}

func TestReconcile_KeepsHotkeysOfSkippedSubnets(t *testing.T) {
	store := newMemStore()
	ctx := context.Background()
	keep := hk("keep", 0)

	_, err := Reconcile(ctx, store, []Record{record("OTF", "Opentensor Foundation", 1, "",
		SubnetHotkeys{Codename: "gone", Hotkeys: []string{keep}})}, ModeValidatorManager, nil)
	require.NoError(t, err)
	delete(store.state.subnets, "gone")

	_, err = Reconcile(ctx, store, []Record{record("OTF", "Opentensor Foundation", 1, "",
		SubnetHotkeys{Codename: "gone", Hotkeys: []string{keep}})}, ModeCore, nil)
	require.NoError(t, err)

	assert.NotNil(t, store.hotkey(keep), "hotkey listed in the config is not pruned")
	assert.Empty(t, store.validator("OTF").Subnets)
}

func TestReconcile_DefaultHotkeyInvariants(t *testing.T) {
	store := newMemStore()
	ctx := context.Background()
	records := []Record{
		record("A", "Alpha", 3, hk("da", 0), SubnetHotkeys{Codename: "x", Hotkeys: []string{hk("xa", 0)}}),
		record("B", "Beta", 2, hk("db", 0), SubnetHotkeys{Codename: "x", Hotkeys: []string{hk("xb", 0), hk("xb", 1)}}),
	}
	for i := 0; i < 3; i++ {
		_, err := Reconcile(ctx, store, records, ModeValidatorManager, nil)
		require.NoError(t, err)
	}

	perHotkey := map[uint]int{}
	for _, v := range store.state.validators {
		defaults := 0
		for _, a := range store.assignmentsOf(v.ID) {
			perHotkey[a.HotkeyID]++
			if a.IsDefault {
				defaults++
			}
		}
		assert.LessOrEqual(t, defaults, 1, v.ShortName)
	}
	for id, n := range perHotkey {
		assert.Equal(t, 1, n, "hotkey %d", id)
	}
}

func TestReconcile_MissingFieldRollsBack(t *testing.T) {
	tests := []struct {
		name   string
		broken Record
		field  string
	}{
		{name: "missing long_name", broken: Record{ShortName: "X", LastStake: intPtr(1), SubnetHotkeys: []SubnetHotkeys{}}, field: "long_name"},
		{name: "missing last_stake", broken: Record{ShortName: "X", LongName: strPtr("Ex"), SubnetHotkeys: []SubnetHotkeys{}}, field: "last_stake"},
		{name: "missing short_name", broken: Record{LongName: strPtr("Ex"), LastStake: intPtr(1)}, field: "short_name"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newMemStore()
			records := []Record{
				record("OTF", "Opentensor Foundation", 1, hk("d", 0),
					SubnetHotkeys{Codename: "omron", Hotkeys: []string{hk("o", 0)}}),
				tt.broken,
				record("RT21", "Round Table 21", 1, hk("d", 1)),
			}

			_, err := Reconcile(context.Background(), store, records, ModeValidatorManager, nil)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrMissingField))

			var mf *MissingFieldError
			require.ErrorAs(t, err, &mf)
			assert.Equal(t, tt.field, mf.Field)

			validators, subnets, hotkeys, assignments := store.counts()
			assert.Zero(t, validators)
			assert.Zero(t, subnets)
			assert.Zero(t, hotkeys)
			assert.Zero(t, assignments)
		})
	}
}

func TestReconcile_StoreErrorRollsBack(t *testing.T) {
	store := newMemStore()
	store.failOn = "SetValidatorSubnets"

	records := []Record{record("OTF", "Opentensor Foundation", 1, hk("d", 0))}
	_, err := Reconcile(context.Background(), store, records, ModeValidatorManager, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrConstraintViolation)

	validators, _, hotkeys, _ := store.counts()
	assert.Zero(t, validators)
	assert.Zero(t, hotkeys)
}

func TestReconcile_HotkeyOwnedByAnotherValidator(t *testing.T) {
	store := newMemStore()
	shared := hk("shared", 0)
	records := []Record{
		record("A", "Alpha", 1, shared),
		record("B", "Beta", 1, shared),
	}

	_, err := Reconcile(context.Background(), store, records, ModeCore, nil)
	assert.ErrorIs(t, err, ErrConstraintViolation)
	validators, _, _, _ := store.counts()
	assert.Zero(t, validators)
}

func TestReconcile_UnknownMode(t *testing.T) {
	_, err := Reconcile(context.Background(), newMemStore(), nil, Mode("bogus"), nil)
	assert.ErrorIs(t, err, ErrUnknownMode)
}

func TestReconcile_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	store := newMemStore()
	_, err := Reconcile(ctx, store, []Record{record("OTF", "Opentensor Foundation", 1, "")}, ModeCore, nil)
	assert.ErrorIs(t, err, context.Canceled)
	validators, _, _, _ := store.counts()
	assert.Zero(t, validators)
}

func TestParseMode(t *testing.T) {
	tests := []struct {
		in      string
		want    Mode
		wantErr bool
	}{
		{in: "", want: ModeCore},
		{in: "core", want: ModeCore},
		{in: "validator_manager", want: ModeValidatorManager},
		{in: "Validator-Manager", want: ModeValidatorManager},
		{in: "other", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseMode(tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrUnknownMode)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
