package rbd

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rel(values map[string]float64) map[string]Component {
	comps := make(map[string]Component, len(values))
	for name, v := range values {
		comps[name] = Component{Name: name, Reliability: v, MTBF: 1, MTTR: 0}
	}
	return comps
}

func conns(pairs ...string) []Connection {
	var out []Connection
	for i := 0; i+1 < len(pairs); i += 2 {
		out = append(out, Connection{Source: pairs[i], Target: pairs[i+1]})
	}
	return out
}

func reduce(t *testing.T, comps map[string]Component, connections []Connection, metric Metric, opts Options) *Result {
	t.Helper()
	n, err := NewNetwork(comps, connections)
	require.NoError(t, err)
	res, err := Reduce(n, metric, opts)
	require.NoError(t, err)
	return res
}

func TestReduce_Series(t *testing.T) {
	res := reduce(t, rel(map[string]float64{"A": 0.9, "B": 0.8}), conns("A", "B"), Reliability, Options{})

	assert.InDelta(t, 0.72, res.Value, 1e-12)
	assert.Equal(t, "A", res.Root)
	assert.Equal(t, "series(A, B)", res.Expression())
}

func TestReduce_ParallelFanOut(t *testing.T) {
	res := reduce(t, rel(map[string]float64{"R": 1.0, "X": 0.9, "Y": 0.8}), conns("R", "X", "R", "Y"), Reliability, Options{})

	assert.InDelta(t, 0.98, res.Value, 1e-12)
	assert.Equal(t, "series(R, parallel(X, Y))", res.Expression())
}

func TestReduce_IsolatedComponent(t *testing.T) {
	comps := map[string]Component{"A": {Reliability: 0.5, MTBF: 900, MTTR: 100}}

	res := reduce(t, comps, nil, Availability, Options{})
	assert.InDelta(t, 0.9, res.Value, 1e-12)

	res = reduce(t, comps, nil, Reliability, Options{})
	assert.InDelta(t, 0.5, res.Value, 1e-12)
	assert.Equal(t, "A", res.Expression())
}

func TestReduce_Availability(t *testing.T) {
	comps := map[string]Component{
		"A": {MTBF: 900, MTTR: 100},
		"B": {MTBF: 4, MTTR: 1},
	}
	res := reduce(t, comps, conns("A", "B"), Availability, Options{})
	assert.InDelta(t, 0.9*0.8, res.Value, 1e-12)
}

func TestReduce_RejoiningBranchesCountSharedBlockOnce(t *testing.T) {
	// R fans out to X and Y which both feed Z.
	comps := rel(map[string]float64{"R": 0.99, "X": 0.9, "Y": 0.8, "Z": 0.95})
	res := reduce(t, comps, conns("R", "X", "R", "Y", "X", "Z", "Y", "Z"), Reliability, Options{})

	want := 0.99 * Parallel(0.9, 0.8) * 0.95
	assert.InDelta(t, want, res.Value, 1e-12)
	assert.Equal(t, "series(R, parallel(X, Y), Z)", res.Expression())
}

func TestReduce_NestedParallel(t *testing.T) {
	// R -> {A -> {B, C}, D}
	comps := rel(map[string]float64{"R": 0.9, "A": 0.8, "B": 0.7, "C": 0.6, "D": 0.5})
	res := reduce(t, comps, conns("R", "A", "R", "D", "A", "B", "A", "C"), Reliability, Options{})

	want := 0.9 * Parallel(0.8*Parallel(0.7, 0.6), 0.5)
	assert.InDelta(t, want, res.Value, 1e-12)
	assert.Equal(t, "series(R, parallel(series(A, parallel(B, C)), D))", res.Expression())
}

func TestReduce_BypassLink(t *testing.T) {
	// A direct A->C connection bypasses B, so B cannot fail the system.
	comps := rel(map[string]float64{"A": 0.9, "B": 0.5, "C": 0.8})
	res := reduce(t, comps, conns("A", "B", "B", "C", "A", "C"), Reliability, Options{})

	assert.InDelta(t, 0.9*0.8, res.Value, 1e-12)
}

func TestReduce_DuplicateConnectionsCollapse(t *testing.T) {
	res := reduce(t, rel(map[string]float64{"A": 0.9, "B": 0.8}), conns("A", "B", "A", "B"), Reliability, Options{})
	assert.InDelta(t, 0.72, res.Value, 1e-12)
}

func TestReduce_Idempotent(t *testing.T) {
	comps := rel(map[string]float64{"R": 0.99, "X": 0.9, "Y": 0.8, "Z": 0.95})
	n, err := NewNetwork(comps, conns("R", "X", "R", "Y", "X", "Z", "Y", "Z"))
	require.NoError(t, err)

	first, err := Reduce(n, Reliability, Options{})
	require.NoError(t, err)
	second, err := Reduce(n, Reliability, Options{})
	require.NoError(t, err)

	assert.Equal(t, first.Value, second.Value)
	assert.Equal(t, first.Expression(), second.Expression())
}

func TestReduce_MultipleRoots(t *testing.T) {
	n, err := NewNetwork(rel(map[string]float64{"A": 0.9, "B": 0.8, "C": 0.7}), conns("A", "C", "B", "C"))
	require.NoError(t, err)

	_, err = Reduce(n, Reliability, Options{})
	var roots *MultipleRootsError
	require.ErrorAs(t, err, &roots)
	assert.Equal(t, []string{"A", "B"}, roots.Roots)
}

func TestReduce_CycleRejectedByDefault(t *testing.T) {
	n, err := NewNetwork(rel(map[string]float64{"A": 0.9, "B": 0.8, "C": 0.7}), conns("A", "B", "B", "C", "C", "A"))
	require.NoError(t, err)

	_, err = Reduce(n, Reliability, Options{})
	var cycleErr *CycleError
	require.ErrorAs(t, err, &cycleErr)
	require.Len(t, cycleErr.Cycles, 1)
	assert.Equal(t, Cycle{"A", "B", "C"}, cycleErr.Cycles[0])
}

func TestReduce_CycleBreakRing(t *testing.T) {
	res := reduce(t, rel(map[string]float64{"A": 0.9, "B": 0.8, "C": 0.7}), conns("A", "B", "B", "C", "C", "A"), Reliability, Options{Cycles: CycleBreak})

	assert.InDelta(t, 0.9*0.8*0.7, res.Value, 1e-12)
	assert.Equal(t, []Connection{{Source: "C", Target: "A"}}, res.Severed)
	assert.Equal(t, "A", res.Root)
}

func TestReduce_CycleBreakFeedbackIntoFanOut(t *testing.T) {
	// R -> {X, Y}, with Y feeding back into R.
	comps := rel(map[string]float64{"S": 1.0, "R": 0.95, "X": 0.9, "Y": 0.8})
	res := reduce(t, comps, conns("S", "R", "R", "X", "R", "Y", "Y", "R"), Reliability, Options{Cycles: CycleBreak})

	assert.Equal(t, []Connection{{Source: "Y", Target: "R"}}, res.Severed)
	assert.InDelta(t, 1.0*0.95*Parallel(0.9, 0.8), res.Value, 1e-12)
}

func TestReduce_SelfLoop(t *testing.T) {
	comps := rel(map[string]float64{"A": 0.9, "B": 0.8})

	n, err := NewNetwork(comps, conns("A", "B", "B", "B"))
	require.NoError(t, err)
	_, err = Reduce(n, Reliability, Options{})
	var cycleErr *CycleError
	require.ErrorAs(t, err, &cycleErr)

	res := reduce(t, comps, conns("A", "B", "B", "B"), Reliability, Options{Cycles: CycleBreak})
	assert.InDelta(t, 0.72, res.Value, 1e-12)
}

func TestReduce_NoRootAfterNothingToBreak(t *testing.T) {
	// Two disjoint rings: breaking leaves two entry points.
	comps := rel(map[string]float64{"A": 0.9, "B": 0.8, "C": 0.7, "D": 0.6})
	n, err := NewNetwork(comps, conns("A", "B", "B", "A", "C", "D", "D", "C"))
	require.NoError(t, err)

	_, err = Reduce(n, Reliability, Options{Cycles: CycleBreak})
	var roots *MultipleRootsError
	require.ErrorAs(t, err, &roots)
	assert.Equal(t, []string{"A", "C"}, roots.Roots)
}

func TestReduce_BridgeIsNotSeriesParallel(t *testing.T) {
	// A -> B is the bridge between the two parallel arms.
	comps := rel(map[string]float64{"S": 0.9, "A": 0.8, "B": 0.7, "T": 0.6})
	n, err := NewNetwork(comps, conns("S", "A", "S", "B", "A", "B", "A", "T", "B", "T"))
	require.NoError(t, err)

	_, err = Reduce(n, Reliability, Options{})
	var spErr *NotSeriesParallelError
	require.ErrorAs(t, err, &spErr)
	assert.NotEmpty(t, spErr.Remaining)
}

func TestReduce_InvalidComponentValues(t *testing.T) {
	n, err := NewNetwork(map[string]Component{"A": {Reliability: 1.2, MTBF: 10}, "B": {Reliability: 0.5, MTBF: 0, MTTR: 1}}, conns("A", "B"))
	require.NoError(t, err)

	var invalid *InvalidComponentError
	_, err = Reduce(n, Reliability, Options{})
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, "A", invalid.Name)

	_, err = Reduce(n, Availability, Options{})
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, "B", invalid.Name)
}

func TestReduce_EmptyNetwork(t *testing.T) {
	_, err := Reduce(nil, Reliability, Options{})
	assert.ErrorIs(t, err, ErrEmptyNetwork)
}
