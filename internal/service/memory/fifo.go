package memory

// FIFO is a bounded ordered container. Insert evicts from the front in the
// same operation once the capacity is reached; lists are never trimmed lazily
// on read.
type FIFO[T any] struct {
	capacity int
	items    []T
}

func NewFIFO[T any](capacity int) *FIFO[T] {
	return &FIFO[T]{capacity: capacity}
}

// FIFOFrom seeds a container with existing items, keeping only the newest
// ones when the seed exceeds the capacity.
func FIFOFrom[T any](capacity int, items []T) *FIFO[T] {
	f := &FIFO[T]{capacity: capacity}
	if len(items) > capacity {
		items = items[len(items)-capacity:]
	}
	f.items = append(f.items, items...)
	return f
}

func (f *FIFO[T]) Insert(item T) {
	f.items = append(f.items, item)
	if len(f.items) > f.capacity {
		f.items = f.items[len(f.items)-f.capacity:]
	}
}

func (f *FIFO[T]) Items() []T {
	out := make([]T, len(f.items))
	copy(out, f.items)
	return out
}

func (f *FIFO[T]) Len() int {
	return len(f.items)
}
