package checks

import (
	"context"
	"fmt"

	"auto-validator/core/reconcile"
	"auto-validator/feature/subnets"
)

// Fetcher reads a configuration document and probes its location.
type Fetcher interface {
	Fetch(ctx context.Context, location string) ([]byte, error)
	Check(ctx context.Context, location string) error
}

// DocumentReport is the result of reading and validating one configuration document.
type DocumentReport struct {
	Location string   `json:"location"`
	Status   string   `json:"status"` // "ok", "error"
	Entries  int      `json:"entries"`
	Problems []string `json:"problems"`
}

func newDocumentReport(location string) *DocumentReport {
	return &DocumentReport{Location: location, Status: "ok", Problems: []string{}}
}

func (r *DocumentReport) fail(problem string) {
	r.Status = "error"
	r.Problems = append(r.Problems, problem)
}

func read(ctx context.Context, f Fetcher, report *DocumentReport) []byte {
	if err := f.Check(ctx, report.Location); err != nil {
		report.fail(fmt.Sprintf("unreachable: %v", err))
		return nil
	}
	data, err := f.Fetch(ctx, report.Location)
	if err != nil {
		report.fail(err.Error())
		return nil
	}
	return data
}

// CheckValidatorsDocument parses the validators document and validates every record
// the way a sync would, without touching the database.
func CheckValidatorsDocument(ctx context.Context, f Fetcher, location string) *DocumentReport {
	report := newDocumentReport(location)
	data := read(ctx, f, report)
	if data == nil {
		return report
	}

	records, err := reconcile.ParseValidators(data)
	if err != nil {
		report.fail(err.Error())
		return report
	}
	report.Entries = len(records)

	owners := make(map[string]string)
	for _, record := range records {
		if err := record.Validate(); err != nil {
			report.fail(err.Error())
		}
		var hotkeys []string
		for _, sh := range record.SubnetHotkeys {
			hotkeys = append(hotkeys, sh.Hotkeys...)
		}
		if record.DefaultHotkey != "" {
			hotkeys = append(hotkeys, record.DefaultHotkey)
		}
		for _, hotkey := range hotkeys {
			if len(hotkey) != reconcile.HotkeyLength {
				report.fail(fmt.Sprintf("%s: hotkey %q is not %d characters", record.ShortName, hotkey, reconcile.HotkeyLength))
			}
			if owner, taken := owners[hotkey]; taken && owner != record.ShortName {
				report.fail(fmt.Sprintf("%s: hotkey %s is also listed by %s", record.ShortName, hotkey, owner))
			}
			owners[hotkey] = record.ShortName
		}
	}
	return report
}

// CheckSubnetsDocument parses the subnets document and reports entries without a name
// and netuids claimed by more than one subnet.
func CheckSubnetsDocument(ctx context.Context, f Fetcher, location string) *DocumentReport {
	report := newDocumentReport(location)
	data := read(ctx, f, report)
	if data == nil {
		return report
	}

	defs, err := subnets.ParseDefinitions(data)
	if err != nil {
		report.fail(err.Error())
		return report
	}
	report.Entries = len(defs)

	mainnet := make(map[int]string)
	for _, def := range defs {
		if def.Name == "" {
			report.fail(fmt.Sprintf("%s: name is missing", def.Codename))
		}
		if def.MainnetNetuid == nil {
			continue
		}
		if other, taken := mainnet[*def.MainnetNetuid]; taken {
			report.fail(fmt.Sprintf("%s: mainnet netuid %d is also used by %s", def.Codename, *def.MainnetNetuid, other))
			continue
		}
		mainnet[*def.MainnetNetuid] = def.Codename
	}
	return report
}
