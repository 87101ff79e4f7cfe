package object

import "fmt"

type Kind int

const (
	KindString Kind = iota
)

func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Object is a heap record linked into a Heap's allocation list.
type Object interface {
	Kind() Kind
	String() string

	// Next returns the object allocated before this one.
	Next() Object

	link(next Object)
}

// header is embedded in every object variant and carries the list link.
type header struct {
	next Object
}

func (h *header) Next() Object {
	return h.next
}

func (h *header) link(next Object) {
	h.next = next
}

// String is an immutable byte string. chars holds length bytes followed by a NUL.
type String struct {
	header
	length int
	chars  []byte
}

func (s *String) Kind() Kind {
	return KindString
}

// Len returns the stored length, excluding the terminator.
func (s *String) Len() int {
	return s.length
}

// Bytes returns the string contents without the terminator.
// Callers must not modify the result.
func (s *String) Bytes() []byte {
	return s.chars[:s.length]
}

// Chars returns the full buffer, terminator included.
func (s *String) Chars() []byte {
	return s.chars
}

func (s *String) String() string {
	return string(s.chars[:s.length])
}

// Equal compares exactly Len bytes of both strings.
func (s *String) Equal(other *String) bool {
	if s == other {
		return true
	}
	if other == nil || s.length != other.length {
		return false
	}
	return string(s.Bytes()) == string(other.Bytes())
}
