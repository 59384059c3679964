package selection

// State is the tri-state indicator rendered on a group checkbox.
type State int

const (
	// Unchecked means no member of the group is selected.
	Unchecked State = iota
	// Indeterminate means some but not all members are selected.
	Indeterminate
	// Checked means every member of the group is selected.
	Checked
)

// String returns the state name for logging and API payloads.
func (s State) String() string {
	switch s {
	case Checked:
		return "checked"
	case Indeterminate:
		return "indeterminate"
	default:
		return "unchecked"
	}
}

// IsFullySelected reports whether every member key of the group is selected.
// An empty group is fully selected: nothing to select, nothing missing.
func IsFullySelected(memberKeys []string, sel Set) bool {
	for _, k := range memberKeys {
		if !sel.Has(k) {
			return false
		}
	}
	return true
}

// IsPartiallySelected reports whether strictly more than zero and strictly
// fewer than all member keys are selected.
func IsPartiallySelected(memberKeys []string, sel Set) bool {
	n := countSelected(memberKeys, sel)
	return n > 0 && n < len(memberKeys)
}

// GroupState collapses the two predicates into the tri-state indicator.
// Exactly one of Checked, Indeterminate, Unchecked holds for any pair.
func GroupState(memberKeys []string, sel Set) State {
	n := countSelected(memberKeys, sel)
	switch {
	case n == len(memberKeys):
		return Checked
	case n > 0:
		return Indeterminate
	default:
		return Unchecked
	}
}

// ToggleGroup returns a new set with every member key of the group added
// (checked) or removed (unchecked). Keys outside the group are untouched and
// the input set is never mutated. Applying the same toggle twice yields the
// same result as applying it once.
func ToggleGroup(memberKeys []string, sel Set, checked bool) Set {
	out := sel.Clone()
	for _, k := range memberKeys {
		if checked {
			out[k] = struct{}{}
		} else {
			delete(out, k)
		}
	}
	return out
}

// TogglePermission returns a new set with key removed if present, added
// otherwise. Group membership is not consulted.
func TogglePermission(key string, sel Set) Set {
	out := sel.Clone()
	if _, ok := out[key]; ok {
		delete(out, key)
	} else {
		out[key] = struct{}{}
	}
	return out
}

func countSelected(memberKeys []string, sel Set) int {
	n := 0
	for _, k := range memberKeys {
		if sel.Has(k) {
			n++
		}
	}
	return n
}
