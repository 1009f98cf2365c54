package nav

import "slices"

// Selection is an immutable set of bookmark ids chosen for a bulk move.
// Toggle returns a new value; earlier values are never modified.
type Selection struct {
	ids map[int64]bool
}

// Toggle returns a copy of s with id added or removed.
func (s Selection) Toggle(id int64) Selection {
	next := make(map[int64]bool, len(s.ids)+1)
	for k := range s.ids {
		next[k] = true
	}
	if s.ids[id] {
		delete(next, id)
	} else {
		next[id] = true
	}
	return Selection{ids: next}
}

// Has reports whether id is selected.
func (s Selection) Has(id int64) bool {
	return s.ids[id]
}

// Len returns the number of selected ids.
func (s Selection) Len() int {
	return len(s.ids)
}

// IDs returns the selected ids in ascending order.
func (s Selection) IDs() []int64 {
	ids := make([]int64, 0, len(s.ids))
	for id := range s.ids {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}
