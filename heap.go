package main

import "errors"

var (
	// ErrHeapFull is returned by Add once the heap holds Capacity items
	ErrHeapFull = errors.New("heap capacity exceeded")
	// ErrHeapEmpty is returned by RemoveFirst on an empty heap
	ErrHeapEmpty = errors.New("remove from empty heap")
)

// Heap is a fixed-capacity binary min-heap that tracks the slot of every item,
// so membership tests and priority updates don't need a linear scan.
//
// less(a, b) reports whether a has strictly better priority than b.
type Heap[T comparable] struct {
	items    []T
	index    map[T]int
	less     func(a, b T) bool
	capacity int
}

// NewHeap creates an empty heap that accepts at most capacity items
func NewHeap[T comparable](capacity int, less func(a, b T) bool) *Heap[T] {
	if capacity < 0 {
		capacity = 0
	}
	return &Heap[T]{
		items:    make([]T, 0, capacity),
		index:    make(map[T]int, capacity),
		less:     less,
		capacity: capacity,
	}
}

// Count returns the number of items in the heap
func (h *Heap[T]) Count() int { return len(h.items) }

// Capacity returns the maximum number of items the heap accepts
func (h *Heap[T]) Capacity() int { return h.capacity }

// Add inserts an item and restores heap order
func (h *Heap[T]) Add(item T) error {
	if len(h.items) >= h.capacity {
		return ErrHeapFull
	}
	h.items = append(h.items, item)
	h.index[item] = len(h.items) - 1
	h.siftUp(len(h.items) - 1)
	return nil
}

// RemoveFirst pops the item with the best priority
func (h *Heap[T]) RemoveFirst() (T, error) {
	var zero T
	if len(h.items) == 0 {
		return zero, ErrHeapEmpty
	}

	first := h.items[0]
	last := len(h.items) - 1
	h.items[0] = h.items[last]
	h.index[h.items[0]] = 0
	h.items[last] = zero
	h.items = h.items[:last]
	delete(h.index, first)

	if len(h.items) > 0 {
		h.siftDown(0)
	}
	return first, nil
}

// Contains reports whether item is currently in the heap
func (h *Heap[T]) Contains(item T) bool {
	_, ok := h.index[item]
	return ok
}

// UpdateItem must be called after an item's priority has improved.
// Priorities only ever get better during a search, so only sift-up is needed.
func (h *Heap[T]) UpdateItem(item T) {
	i, ok := h.index[item]
	if !ok {
		return
	}
	h.siftUp(i)
}

func (h *Heap[T]) siftUp(i int) {
	for i > 0 {
		parent := (i - 1) / 2
		if !h.less(h.items[i], h.items[parent]) {
			break
		}
		h.swap(i, parent)
		i = parent
	}
}

func (h *Heap[T]) siftDown(i int) {
	n := len(h.items)
	for {
		left := 2*i + 1
		if left >= n {
			return
		}
		best := left
		if right := left + 1; right < n && h.less(h.items[right], h.items[left]) {
			best = right
		}
		if !h.less(h.items[best], h.items[i]) {
			return
		}
		h.swap(i, best)
		i = best
	}
}

func (h *Heap[T]) swap(i, j int) {
	h.items[i], h.items[j] = h.items[j], h.items[i]
	h.index[h.items[i]] = i
	h.index[h.items[j]] = j
}
