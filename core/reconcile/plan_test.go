package reconcile

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSummarize(t *testing.T) {
	persisted := []Record{
		record("same", "Same", 1, hk("s", 0)),
		record("changed", "Changed", 1, ""),
		record("untracked", "Untracked", 1, ""),
	}
	external := []Record{
		record("same", "Same", 1, hk("s", 0)),
		record("changed", "Changed", 2, ""),
		record("new", "New", 1, ""),
	}

	summary := Summarize(persisted, external)
	assert.Equal(t, PlanSummary{
		TotalExternal:  3,
		TotalPersisted: 3,
		New:            1,
		Changed:        1,
		Unchanged:      1,
		Untracked:      1,
	}, summary)
	assert.False(t, summary.InSync())
}

func TestBuildPlan_InSync(t *testing.T) {
	records := []Record{
		record("a", "A", 1, ""),
		record("b", "B", 2, ""),
	}
	reversed := []Record{records[1], records[0]}

	plan, err := BuildPlan(records, reversed, "db", "yaml")
	require.NoError(t, err)
	assert.Empty(t, plan.Diff, "ordering differences are normalized away")
	assert.True(t, plan.Summary.InSync())
}
