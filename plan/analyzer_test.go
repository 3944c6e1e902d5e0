package plan

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateBatches_LinearChainOneStepPerBatch(t *testing.T) {
	steps := []Step{
		{ID: "a"},
		{ID: "b", DependsOn: []string{"a"}},
		{ID: "c", DependsOn: []string{"b"}},
	}
	batches, err := GenerateBatches(steps)
	require.NoError(t, err)
	require.Len(t, batches, 3)
	assert.Equal(t, "a", batches[0].Steps[0].ID)
	assert.Equal(t, "b", batches[1].Steps[0].ID)
	assert.Equal(t, "c", batches[2].Steps[0].ID)
}

func TestGenerateBatches_IndependentStepsShareABatch(t *testing.T) {
	steps := []Step{{ID: "a"}, {ID: "b"}, {ID: "c"}}
	batches, err := GenerateBatches(steps)
	require.NoError(t, err)
	require.Len(t, batches, 1)
	assert.Len(t, batches[0].Steps, 3)
}

func TestGenerateBatches_DiamondDependency(t *testing.T) {
	steps := []Step{
		{ID: "root"},
		{ID: "left", DependsOn: []string{"root"}},
		{ID: "right", DependsOn: []string{"root"}},
		{ID: "join", DependsOn: []string{"left", "right"}},
	}
	batches, err := GenerateBatches(steps)
	require.NoError(t, err)
	require.Len(t, batches, 3)
	assert.Len(t, batches[1].Steps, 2) // left and right run together
}

func TestGenerateBatches_UnknownDependencyErrorsBeforeBatching(t *testing.T) {
	steps := []Step{{ID: "a", DependsOn: []string{"ghost"}}}
	_, err := GenerateBatches(steps)
	require.Error(t, err)
	var unknownErr *UnknownDependencyError
	require.ErrorAs(t, err, &unknownErr)
	assert.Equal(t, "a", unknownErr.StepID)
	assert.Equal(t, "ghost", unknownErr.DependencyID)
}

func TestGenerateBatches_DirectCycleIsDetected(t *testing.T) {
	steps := []Step{
		{ID: "a", DependsOn: []string{"b"}},
		{ID: "b", DependsOn: []string{"a"}},
	}
	_, err := GenerateBatches(steps)
	require.Error(t, err)
	var cycleErr *CycleError
	require.ErrorAs(t, err, &cycleErr)
	assert.Contains(t, cycleErr.Path, "a")
	assert.Contains(t, cycleErr.Path, "b")
}

func TestGenerateBatches_LongerCycleReportsAtLeastTwoMembers(t *testing.T) {
	steps := []Step{
		{ID: "a", DependsOn: []string{"c"}},
		{ID: "b", DependsOn: []string{"a"}},
		{ID: "c", DependsOn: []string{"b"}},
	}
	_, err := GenerateBatches(steps)
	require.Error(t, err)
	var cycleErr *CycleError
	require.ErrorAs(t, err, &cycleErr)
	assert.GreaterOrEqual(t, len(cycleErr.Path), 2)
}

func TestCriticalPath_FollowsLongestChain(t *testing.T) {
	steps := []Step{
		{ID: "a"},
		{ID: "b", DependsOn: []string{"a"}},
		{ID: "c", DependsOn: []string{"b"}},
		{ID: "shortcut", DependsOn: []string{"a"}},
	}
	path := CriticalPath(steps)
	assert.Equal(t, []string{"a", "b", "c"}, path)
}

func TestBottlenecks_RequiresAtLeastTwoDependents(t *testing.T) {
	steps := []Step{
		{ID: "shared"},
		{ID: "alone"},
		{ID: "x", DependsOn: []string{"shared"}},
		{ID: "y", DependsOn: []string{"shared"}},
		{ID: "z", DependsOn: []string{"alone"}},
	}
	assert.Equal(t, []string{"shared"}, Bottlenecks(steps))
}

func TestMaxParallelWidth_AndTotalEdges(t *testing.T) {
	steps := []Step{
		{ID: "root"},
		{ID: "left", DependsOn: []string{"root"}},
		{ID: "right", DependsOn: []string{"root"}},
	}
	batches, err := GenerateBatches(steps)
	require.NoError(t, err)
	assert.Equal(t, 2, MaxParallelWidth(batches))
	assert.Equal(t, 2, TotalEdges(steps))
}

func TestAnalyze_BundlesEverything(t *testing.T) {
	steps := []Step{
		{ID: "root"},
		{ID: "leaf", DependsOn: []string{"root"}},
	}
	analysis, err := Analyze(steps)
	require.NoError(t, err)
	require.Len(t, analysis.Batches, 2)
	assert.Equal(t, []string{"root", "leaf"}, analysis.CriticalPath)
	assert.Equal(t, 1, analysis.MaxParallelWidth)
	assert.Equal(t, 1, analysis.TotalEdges)
}
