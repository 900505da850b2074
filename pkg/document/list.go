package document

import (
	"bytes"
	"encoding/json"
	"fmt"
	"iter"
)

// List is an ordered sequence of slots. A slot either holds a value or is a
// hole left behind by Remove. Holes keep the index of every surviving sibling
// stable until the list is compacted.
type List[T any] struct {
	slots []*T
}

// NewList builds a list with every slot present.
func NewList[T any](items ...T) List[T] {
	l := List[T]{slots: make([]*T, 0, len(items))}
	for i := range items {
		item := items[i]
		l.slots = append(l.slots, &item)
	}
	return l
}

// Len reports the number of slots, holes included.
func (l List[T]) Len() int {
	return len(l.slots)
}

// Present reports the number of slots holding a value.
func (l List[T]) Present() int {
	count := 0
	for _, slot := range l.slots {
		if slot != nil {
			count++
		}
	}
	return count
}

// At returns the value at index i. The boolean is false for holes and
// out-of-range indices.
func (l List[T]) At(i int) (*T, bool) {
	if i < 0 || i >= len(l.slots) || l.slots[i] == nil {
		return nil, false
	}
	return l.slots[i], true
}

// IsHole reports whether index i is a removed slot.
func (l List[T]) IsHole(i int) bool {
	return i >= 0 && i < len(l.slots) && l.slots[i] == nil
}

// Append adds value at the end and returns its index. Holes are never reused.
func (l *List[T]) Append(value T) int {
	l.slots = append(l.slots, &value)
	return len(l.slots) - 1
}

// Remove turns slot i into a hole without shifting later slots.
func (l *List[T]) Remove(i int) error {
	if i < 0 || i >= len(l.slots) {
		return fmt.Errorf("%w: index %d of %d", ErrIndexOutOfRange, i, len(l.slots))
	}
	if l.slots[i] == nil {
		return fmt.Errorf("%w: index %d", ErrHole, i)
	}
	l.slots[i] = nil
	return nil
}

// All yields present slots with their stable index.
func (l List[T]) All() iter.Seq2[int, *T] {
	return func(yield func(int, *T) bool) {
		for i, slot := range l.slots {
			if slot == nil {
				continue
			}
			if !yield(i, slot) {
				return
			}
		}
	}
}

// Values returns copies of the present values in order.
func (l List[T]) Values() []T {
	out := make([]T, 0, len(l.slots))
	for _, slot := range l.slots {
		if slot != nil {
			out = append(out, *slot)
		}
	}
	return out
}

// Compact returns a new list holding only present values, in order. The
// receiver is left untouched.
func (l List[T]) Compact() List[T] {
	return NewList(l.Values()...)
}

// MarshalJSON encodes holes as null so a sparse list stays inspectable.
func (l List[T]) MarshalJSON() ([]byte, error) {
	if len(l.slots) == 0 {
		return []byte("[]"), nil
	}
	return json.Marshal(l.slots)
}

// UnmarshalJSON decodes null entries as holes. A null list decodes empty.
func (l *List[T]) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		l.slots = nil
		return nil
	}
	var slots []*T
	if err := json.Unmarshal(data, &slots); err != nil {
		return err
	}
	l.slots = slots
	return nil
}

// mapList copies l applying fn to every present value. When compact is true
// holes are dropped, otherwise they are kept in place.
func mapList[T any](l List[T], compact bool, fn func(T, bool) T) List[T] {
	out := List[T]{slots: make([]*T, 0, len(l.slots))}
	for _, slot := range l.slots {
		if slot == nil {
			if !compact {
				out.slots = append(out.slots, nil)
			}
			continue
		}
		value := fn(*slot, compact)
		out.slots = append(out.slots, &value)
	}
	return out
}
