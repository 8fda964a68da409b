package signal

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCoerceDispatchSpec_SingleTarget(t *testing.T) {
	spec, err := coerceDispatchSpec(Target{Tag: "console"})
	require.NoError(t, err)
	require.Len(t, spec.Targets, 1)
	require.Equal(t, "console", spec.Targets[0].Tag)
}

func TestCoerceDispatchSpec_TargetSlice(t *testing.T) {
	spec, err := coerceDispatchSpec([]Target{{Tag: "console"}, {Tag: "noop"}})
	require.NoError(t, err)
	require.Len(t, spec.Targets, 2)
}

func TestCoerceDispatchSpec_MapShape(t *testing.T) {
	spec, err := coerceDispatchSpec(map[string]any{"tag": "bus", "options": map[string]any{"target": "t1"}})
	require.NoError(t, err)
	require.Len(t, spec.Targets, 1)
	require.Equal(t, "bus", spec.Targets[0].Tag)
	require.Equal(t, "t1", spec.Targets[0].Options["target"])
}

func TestCoerceDispatchSpec_MapShapeAcceptsAdapterAlias(t *testing.T) {
	spec, err := coerceDispatchSpec(map[string]any{"adapter": "console"})
	require.NoError(t, err)
	require.Equal(t, "console", spec.Targets[0].Tag)
}

func TestCoerceDispatchSpec_SliceOfMaps(t *testing.T) {
	spec, err := coerceDispatchSpec([]any{
		map[string]any{"tag": "console"},
		map[string]any{"tag": "noop"},
	})
	require.NoError(t, err)
	require.Len(t, spec.Targets, 2)
}

func TestCoerceDispatchSpec_RejectsMissingTag(t *testing.T) {
	_, err := coerceDispatchSpec(map[string]any{"options": map[string]any{}})
	require.Error(t, err)
	require.Contains(t, err.Error(), "invalid dispatch config")
}

func TestCoerceDispatchSpec_RejectsUnsupportedShape(t *testing.T) {
	_, err := coerceDispatchSpec(42)
	require.Error(t, err)
}

func TestCoerceDispatchSpec_RejectsEmptyTargetList(t *testing.T) {
	_, err := coerceDispatchSpec([]Target{})
	require.Error(t, err)
}

func TestFlattenHandler_InstructionAndDispatchPassThrough(t *testing.T) {
	require.Equal(t, []Handler{Instruction{Action: "a"}}, flattenHandler(Instruction{Action: "a"}))
	d := Dispatch{Target: Target{Tag: "console"}}
	require.Equal(t, []Handler{d}, flattenHandler(d))
}

func TestFlattenHandler_GroupExpandsInOrder(t *testing.T) {
	group := DispatchGroup{Targets: []Target{{Tag: "a"}, {Tag: "b"}}}
	flat := flattenHandler(group)
	require.Equal(t, []Handler{Dispatch{Target: Target{Tag: "a"}}, Dispatch{Target: Target{Tag: "b"}}}, flat)
}
