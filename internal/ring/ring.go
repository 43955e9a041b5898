// Package ring implements the fixed-capacity rolling histories used by the
// detectors and the orchestrator. Oldest entries are evicted first.
package ring

// Buffer is a bounded FIFO history. The zero value is unusable; create one
// with New.
type Buffer[T any] struct {
	capacity int
	items    []T
}

// New returns a Buffer holding at most capacity items. Capacities below 1
// are clamped to 1.
func New[T any](capacity int) *Buffer[T] {
	if capacity < 1 {
		capacity = 1
	}
	return &Buffer[T]{capacity: capacity}
}

// Push appends v, evicting the oldest item when the buffer is full.
func (b *Buffer[T]) Push(v T) {
	if len(b.items) == b.capacity {
		copy(b.items, b.items[1:])
		b.items[len(b.items)-1] = v
		return
	}
	b.items = append(b.items, v)
}

// Len reports the number of stored items.
func (b *Buffer[T]) Len() int { return len(b.items) }

// Cap reports the maximum number of stored items.
func (b *Buffer[T]) Cap() int { return b.capacity }

// Items returns the stored items oldest first. The returned slice is a copy.
func (b *Buffer[T]) Items() []T {
	out := make([]T, len(b.items))
	copy(out, b.items)
	return out
}

// At returns the i-th item counted from the oldest.
func (b *Buffer[T]) At(i int) T { return b.items[i] }

// Last returns the most recent item, or the zero value if empty.
func (b *Buffer[T]) Last() (T, bool) {
	var zero T
	if len(b.items) == 0 {
		return zero, false
	}
	return b.items[len(b.items)-1], true
}

// Clear discards all items, keeping the capacity.
func (b *Buffer[T]) Clear() {
	b.items = b.items[:0]
}
