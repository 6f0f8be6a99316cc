package reconcile

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/pmezard/go-difflib/difflib"
)

// Diff renders a unified diff between the persisted and external record sets.
// Both sides are serialized as key-sorted JSON indented by two spaces.
// Identical inputs produce an empty string.
func Diff(persisted, external []Record, fromLabel, toLabel string) (string, error) {
	return DiffValues(projections(persisted), projections(external), fromLabel, toLabel)
}

// DiffValues renders a unified diff of two arbitrary JSON-serializable values.
func DiffValues(from, to any, fromLabel, toLabel string) (string, error) {
	a, err := CanonicalJSON(from)
	if err != nil {
		return "", fmt.Errorf("serialize %s: %w", fromLabel, err)
	}
	b, err := CanonicalJSON(to)
	if err != nil {
		return "", fmt.Errorf("serialize %s: %w", toLabel, err)
	}

	text, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(a),
		B:        difflib.SplitLines(b),
		FromFile: fromLabel,
		ToFile:   toLabel,
		Context:  3,
	})
	if err != nil {
		return "", err
	}
	return strings.TrimRight(text, "\n"), nil
}

// CanonicalJSON serializes v with sorted object keys and two-space indentation.
// Structs are normalized through a generic round trip so their fields are
// sorted as well.
func CanonicalJSON(v any) (string, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return "", err
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var generic any
	if err := dec.Decode(&generic); err != nil {
		return "", err
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(generic); err != nil {
		return "", err
	}
	return strings.TrimRight(buf.String(), "\n"), nil
}

// NormalizeForComparison returns a copy of records ordered by stake, highest first.
// Records with equal stake keep their relative order.
func NormalizeForComparison(records []Record) []Record {
	out := make([]Record, len(records))
	copy(out, records)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Stake() > out[j].Stake()
	})
	return out
}

func projections(records []Record) []map[string]any {
	out := make([]map[string]any, 0, len(records))
	for _, r := range records {
		out = append(out, r.Projection())
	}
	return out
}
