package reconcile

// Plan is the read-only preview of a sync shown before an operator confirms it.
type Plan struct {
	// Diff is the unified diff between persisted and external records.
	Diff string `json:"diff"`

	// Summary provides aggregate counts.
	Summary PlanSummary `json:"summary"`
}

// PlanSummary provides aggregate statistics for a plan, keyed by short name.
type PlanSummary struct {
	// TotalExternal is the number of records in the configuration.
	TotalExternal int `json:"total_external"`

	// TotalPersisted is the number of validators in the store.
	TotalPersisted int `json:"total_persisted"`

	// New counts validators present only in the configuration.
	New int `json:"new"`

	// Changed counts validators whose persisted state differs from the configuration.
	Changed int `json:"changed"`

	// Unchanged counts validators already in sync.
	Unchanged int `json:"unchanged"`

	// Untracked counts validators absent from the configuration. Sync never deletes them.
	Untracked int `json:"untracked"`
}

// InSync reports whether applying the plan would change nothing visible.
func (s PlanSummary) InSync() bool {
	return s.New == 0 && s.Changed == 0
}

// BuildPlan compares persisted and external records and renders the diff.
// Both sides are ordered with NormalizeForComparison before rendering.
func BuildPlan(persisted, external []Record, fromLabel, toLabel string) (*Plan, error) {
	diff, err := Diff(NormalizeForComparison(persisted), NormalizeForComparison(external), fromLabel, toLabel)
	if err != nil {
		return nil, err
	}
	return &Plan{Diff: diff, Summary: Summarize(persisted, external)}, nil
}

// Summarize counts new, changed, unchanged and untracked validators.
func Summarize(persisted, external []Record) PlanSummary {
	summary := PlanSummary{
		TotalExternal:  len(external),
		TotalPersisted: len(persisted),
	}

	index := make(map[string]Record, len(persisted))
	for _, r := range persisted {
		index[r.ShortName] = r
	}

	seen := make(map[string]struct{}, len(external))
	for _, r := range external {
		seen[r.ShortName] = struct{}{}
		current, ok := index[r.ShortName]
		switch {
		case !ok:
			summary.New++
		case comparisonKey(current) == comparisonKey(r):
			summary.Unchanged++
		default:
			summary.Changed++
		}
	}

	for name := range index {
		if _, ok := seen[name]; !ok {
			summary.Untracked++
		}
	}
	return summary
}

// comparisonKey canonicalizes a record projection through JSON so that numeric
// types and empty collections compare equal.
func comparisonKey(r Record) string {
	s, err := CanonicalJSON(r.Projection())
	if err != nil {
		return ""
	}
	return s
}
