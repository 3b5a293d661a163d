// Package ordering keeps ordered entry collections dense, stably sorted and
// pointing at their parent.
//
// Every function is pure: inputs are never modified, results are fresh slices.
package ordering

import "sort"

// Base is the order value given to the first entry of a collection.
const Base = 0

// Direction is the way Move shifts an entry.
type Direction int

const (
	Up Direction = iota
	Down
)

// ParseDirection maps "up"/"down" to a Direction.
func ParseDirection(s string) (Direction, bool) {
	switch s {
	case "up":
		return Up, true
	case "down":
		return Down, true
	default:
		return 0, false
	}
}

func (d Direction) String() string {
	if d == Up {
		return "up"
	}
	return "down"
}

// Entity is an entry that has an identifier and an order among its siblings.
type Entity interface {
	EntityID() int
	EntityOrder() int
}

// Placeable is the pointer form of an entry, able to take a new position.
type Placeable[E any] interface {
	*E
	Entity
	SetEntityID(id int)
	Place(order, parentID int)
}

// Nested is implemented by entries that own an ordered sub-collection. It is
// called after the entry has been placed, so the entry id is final.
type Nested interface {
	NormalizeChildren()
}

// Normalize returns items sorted by order (original position breaks ties),
// renumbered from Base and stamped with parentID.
func Normalize[E any, P Placeable[E]](items []E, parentID int) []E {
	out := make([]E, len(items))
	copy(out, items)

	sort.SliceStable(out, func(i, j int) bool {
		return P(&out[i]).EntityOrder() < P(&out[j]).EntityOrder()
	})

	return place[E, P](out, parentID)
}

// NextID returns max(ids)+1, or 1 for an empty collection.
func NextID[E Entity](items []E) int {
	next := 1
	for _, item := range items {
		if id := item.EntityID(); id >= next {
			next = id + 1
		}
	}
	return next
}

// Append adds item at the end with a fresh id and returns the new id.
func Append[E any, P Placeable[E]](items []E, item E, parentID int) ([]E, int) {
	out := Normalize[E, P](items, parentID)
	id := nextID[E, P](out)
	P(&item).SetEntityID(id)
	out = append(out, item)
	return place[E, P](out, parentID), id
}

// Replace swaps the entry with the same id as item, keeping its position.
// It reports false when no such entry exists.
func Replace[E any, P Placeable[E]](items []E, item E, parentID int) ([]E, bool) {
	out := Normalize[E, P](items, parentID)
	id := P(&item).EntityID()
	for i := range out {
		if P(&out[i]).EntityID() == id {
			out[i] = item
			return place[E, P](out, parentID), true
		}
	}
	return out, false
}

// Move swaps the entry at index with its neighbour. Moving past either end
// leaves the collection as it was and reports false.
func Move[E any, P Placeable[E]](items []E, index int, dir Direction, parentID int) ([]E, bool) {
	out := Normalize[E, P](items, parentID)
	target := index - 1
	if dir == Down {
		target = index + 1
	}
	if index < 0 || index >= len(out) || target < 0 || target >= len(out) {
		return out, false
	}
	out[index], out[target] = out[target], out[index]
	return place[E, P](out, parentID), true
}

// Duplicate clones the entry with the given id, gives the copy a fresh id and
// appends it. It returns the new id, or false when id is unknown.
func Duplicate[E any, P Placeable[E]](items []E, id, parentID int) ([]E, int, bool) {
	out := Normalize[E, P](items, parentID)
	for i := range out {
		if P(&out[i]).EntityID() == id {
			clone := out[i]
			next, newID := Append[E, P](out, clone, parentID)
			return next, newID, true
		}
	}
	return out, 0, false
}

// Delete drops the entry with the given id and closes the gap it leaves.
// The result is never nil.
func Delete[E any, P Placeable[E]](items []E, id, parentID int) []E {
	kept := make([]E, 0, len(items))
	for i := range items {
		if P(&items[i]).EntityID() != id {
			kept = append(kept, items[i])
		}
	}
	return Normalize[E, P](kept, parentID)
}

// place renumbers out by position in place.
func place[E any, P Placeable[E]](out []E, parentID int) []E {
	for i := range out {
		p := P(&out[i])
		p.Place(Base+i, parentID)
		if n, ok := any(p).(Nested); ok {
			n.NormalizeChildren()
		}
	}
	return out
}

func nextID[E any, P Placeable[E]](items []E) int {
	next := 1
	for i := range items {
		if id := P(&items[i]).EntityID(); id >= next {
			next = id + 1
		}
	}
	return next
}
