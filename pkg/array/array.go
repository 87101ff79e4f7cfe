package array

// MinCapacity is the capacity allocated on the first growth.
const MinCapacity = 8

// GrowCapacity returns the next capacity after c.
func GrowCapacity(c int) int {
	if c < MinCapacity {
		return MinCapacity
	}
	return c * 2
}

// Array is a contiguous buffer that grows by doubling and never shrinks.
type Array[T any] struct {
	items []T
	count int
}

// Append adds v at the end, growing the backing buffer when full.
func (a *Array[T]) Append(v T) {
	if a.count+1 > len(a.items) {
		grown := make([]T, GrowCapacity(len(a.items)))
		copy(grown, a.items[:a.count])
		a.items = grown
	}
	a.items[a.count] = v
	a.count++
}

// At returns the element at index i. It panics when i is out of range.
func (a *Array[T]) At(i int) T {
	if i < 0 || i >= a.count {
		panic("array: index out of range")
	}
	return a.items[i]
}

// Set overwrites the element at index i. It panics when i is out of range.
func (a *Array[T]) Set(i int, v T) {
	if i < 0 || i >= a.count {
		panic("array: index out of range")
	}
	a.items[i] = v
}

// Last returns a pointer to the most recently appended element, or nil.
func (a *Array[T]) Last() *T {
	if a.count == 0 {
		return nil
	}
	return &a.items[a.count-1]
}

// Truncate drops elements past n, keeping the capacity.
func (a *Array[T]) Truncate(n int) {
	if n < 0 || n > a.count {
		panic("array: truncate out of range")
	}
	var zero T
	for i := n; i < a.count; i++ {
		a.items[i] = zero
	}
	a.count = n
}

// Len returns the number of elements.
func (a *Array[T]) Len() int {
	return a.count
}

// Cap returns the allocated capacity.
func (a *Array[T]) Cap() int {
	return len(a.items)
}

// Slice returns the live elements. The result aliases the buffer until the next growth.
func (a *Array[T]) Slice() []T {
	return a.items[:a.count]
}

// Free releases the backing buffer.
func (a *Array[T]) Free() {
	a.items = nil
	a.count = 0
}
