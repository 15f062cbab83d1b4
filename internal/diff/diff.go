// Package diff implements the structural diff/apply pair used to store
// checkpoints incrementally.
//
// A diff captures changes-to-apply-forward only: keys present in the old
// map but absent from the new one are never emitted, so Apply cannot
// remove keys. Checkpoint restoration relies on that asymmetry staying
// put.
package diff

import "reflect"

// Map is a nested key-value snapshot, typically a JSON-decoded document.
type Map = map[string]any

// Create returns the keys of updated that are absent from old or differ
// from it. Nested maps are diffed recursively and included only when the
// nested diff is non-empty; any other value is replaced wholesale.
func Create(old, updated Map) Map {
	out := Map{}
	for key, value := range updated {
		oldValue, ok := old[key]
		if ok && reflect.DeepEqual(oldValue, value) {
			continue
		}

		if nested, isMap := value.(Map); isMap {
			oldNested, _ := oldValue.(Map)
			if oldNested == nil {
				oldNested = Map{}
			}
			if nestedDiff := Create(oldNested, nested); len(nestedDiff) > 0 {
				out[key] = nestedDiff
			}
			continue
		}

		out[key] = value
	}
	return out
}

// Apply returns a copy of base with d merged in. Nested maps merge
// recursively; any other value overwrites. Keys absent from d are kept
// as-is, never removed.
func Apply(base, d Map) Map {
	out := make(Map, len(base))
	for key, value := range base {
		out[key] = value
	}

	for key, value := range d {
		if nested, isMap := value.(Map); isMap {
			baseNested, _ := out[key].(Map)
			if baseNested == nil {
				baseNested = Map{}
			}
			out[key] = Apply(baseNested, nested)
			continue
		}
		out[key] = value
	}
	return out
}
