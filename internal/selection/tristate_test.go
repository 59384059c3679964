package selection

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var linkGroup = []string{"links:view", "links:create", "links:edit"}

func TestGroupStateExactlyOneHolds(t *testing.T) {
	// Enumerate every subset of the group and assert the three indicators
	// are mutually exclusive.
	for mask := 0; mask < 1<<len(linkGroup); mask++ {
		sel := NewSet()
		for i, k := range linkGroup {
			if mask&(1<<i) != 0 {
				sel[k] = struct{}{}
			}
		}

		full := IsFullySelected(linkGroup, sel)
		partial := IsPartiallySelected(linkGroup, sel)
		none := !full && !partial

		states := 0
		for _, b := range []bool{full, partial, none} {
			if b {
				states++
			}
		}
		require.Equal(t, 1, states, "subset mask %b", mask)

		switch GroupState(linkGroup, sel) {
		case Checked:
			assert.True(t, full)
		case Indeterminate:
			assert.True(t, partial)
		case Unchecked:
			assert.True(t, none)
		}
	}
}

func TestEmptyGroupIsFullySelected(t *testing.T) {
	assert.True(t, IsFullySelected(nil, NewSet()))
	assert.False(t, IsPartiallySelected(nil, NewSet()))
	assert.Equal(t, Checked, GroupState(nil, NewSet()))

	assert.False(t, IsFullySelected(linkGroup, NewSet()))
	assert.Equal(t, Unchecked, GroupState(linkGroup, NewSet()))
}

func TestToggleGroupIdempotent(t *testing.T) {
	sel := FromKeys([]string{"links:view", "qr:create"})

	for _, checked := range []bool{true, false} {
		once := ToggleGroup(linkGroup, sel, checked)
		twice := ToggleGroup(linkGroup, once, checked)
		assert.True(t, once.Equal(twice), "checked=%v", checked)
	}
}

func TestToggleGroupPostconditions(t *testing.T) {
	sel := FromKeys([]string{"links:view", "qr:create"})

	on := ToggleGroup(linkGroup, sel, true)
	assert.True(t, IsFullySelected(linkGroup, on))
	assert.True(t, on.Has("qr:create"), "keys outside the group are untouched")

	off := ToggleGroup(linkGroup, sel, false)
	assert.False(t, IsFullySelected(linkGroup, off))
	assert.Equal(t, Unchecked, GroupState(linkGroup, off))
	assert.True(t, off.Has("qr:create"))
}

func TestToggleGroupDoesNotMutateInput(t *testing.T) {
	sel := FromKeys([]string{"links:view"})
	_ = ToggleGroup(linkGroup, sel, true)
	_ = ToggleGroup(linkGroup, sel, false)
	assert.Equal(t, []string{"links:view"}, sel.Keys())
}

func TestTogglePermissionSelfInverse(t *testing.T) {
	sel := FromKeys([]string{"links:view"})

	once := TogglePermission("links:create", sel)
	assert.True(t, once.Has("links:create"))

	twice := TogglePermission("links:create", once)
	assert.True(t, sel.Equal(twice))
}

func TestPartialScenario(t *testing.T) {
	sel := FromKeys([]string{"links:view"})

	assert.True(t, IsPartiallySelected(linkGroup, sel))
	assert.False(t, IsFullySelected(linkGroup, sel))
	assert.Equal(t, Indeterminate, GroupState(linkGroup, sel))

	all := ToggleGroup(linkGroup, sel, true)
	assert.ElementsMatch(t, linkGroup, all.Keys())
}

func TestFromKeysCollapsesDuplicates(t *testing.T) {
	sel := FromKeys([]string{"links:view", "links:view", "links:edit"})
	assert.Equal(t, 2, sel.Len())
	assert.Equal(t, []string{"links:edit", "links:view"}, sel.Keys())
}
