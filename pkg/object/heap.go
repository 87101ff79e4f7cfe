package object

// Heap owns every object allocated through it. Objects are pushed at the head of an
// intrusive list and stay reachable from Head until Free.
type Heap struct {
	head  Object
	count int
	bytes int
}

// NewHeap returns an empty heap.
func NewHeap() *Heap {
	return &Heap{}
}

// AllocateString copies chars into a new NUL-terminated buffer and links the result.
func (h *Heap) AllocateString(chars []byte) *String {
	buf := make([]byte, len(chars)+1)
	copy(buf, chars)
	buf[len(chars)] = 0

	s := &String{length: len(chars), chars: buf}
	h.track(s, len(buf))
	return s
}

// CopyString is AllocateString for Go strings.
func (h *Heap) CopyString(s string) *String {
	return h.AllocateString([]byte(s))
}

func (h *Heap) track(obj Object, size int) {
	obj.link(h.head)
	h.head = obj
	h.count++
	h.bytes += size
}

// Head returns the most recently allocated object, or nil.
func (h *Heap) Head() Object {
	return h.head
}

// Count returns the number of live objects.
func (h *Heap) Count() int {
	return h.count
}

// Bytes returns the payload bytes held by live objects.
func (h *Heap) Bytes() int {
	return h.bytes
}

// Each walks the allocation list from the newest object, stopping when fn returns false.
func (h *Heap) Each(fn func(Object) bool) {
	for obj := h.head; obj != nil; obj = obj.Next() {
		if !fn(obj) {
			return
		}
	}
}

// Free unlinks every object. Objects must not be used afterwards.
func (h *Heap) Free() {
	obj := h.head
	for obj != nil {
		next := obj.Next()
		obj.link(nil)
		obj = next
	}
	h.head = nil
	h.count = 0
	h.bytes = 0
}
