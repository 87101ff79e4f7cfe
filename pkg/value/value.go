package value

import (
	"fmt"

	"clox/pkg/object"
)

type Kind int

const (
	KindNil Kind = iota
	KindBool
	KindNumber
	KindObject
)

func (k Kind) String() string {
	switch k {
	case KindNil:
		return "nil"
	case KindBool:
		return "bool"
	case KindNumber:
		return "number"
	case KindObject:
		return "object"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Value is a tagged runtime datum. Object values hold a non-owning reference
// into a Heap.
type Value struct {
	Kind Kind
	num  float64
	b    bool
	obj  object.Object
}

// Nil returns the nil value.
func Nil() Value {
	return Value{Kind: KindNil}
}

// Bool creates a boolean Value.
func Bool(b bool) Value {
	return Value{Kind: KindBool, b: b}
}

// Number creates a numeric Value.
func Number(n float64) Value {
	return Value{Kind: KindNumber, num: n}
}

// Obj wraps a heap object.
func Obj(o object.Object) Value {
	return Value{Kind: KindObject, obj: o}
}

func (v Value) IsNil() bool    { return v.Kind == KindNil }
func (v Value) IsBool() bool   { return v.Kind == KindBool }
func (v Value) IsNumber() bool { return v.Kind == KindNumber }
func (v Value) IsObject() bool { return v.Kind == KindObject }

// IsString reports whether v references a string object.
func (v Value) IsString() bool {
	if v.Kind != KindObject {
		return false
	}
	_, ok := v.obj.(*object.String)
	return ok
}

func (v Value) AsBool() bool            { return v.b }
func (v Value) AsNumber() float64       { return v.num }
func (v Value) AsObject() object.Object { return v.obj }

// AsString returns the referenced string object, or nil.
func (v Value) AsString() *object.String {
	s, _ := v.obj.(*object.String)
	return s
}

// IsFalsey reports whether v is nil or false.
func (v Value) IsFalsey() bool {
	return v.Kind == KindNil || (v.Kind == KindBool && !v.b)
}

// TypeName names the dynamic type for diagnostics.
func (v Value) TypeName() string {
	if v.Kind == KindObject && v.obj != nil {
		return v.obj.Kind().String()
	}
	return v.Kind.String()
}

// Equal compares two values. Strings compare by contents.
func Equal(a, b Value) bool {
	if a.Kind != b.Kind {
		return false
	}

	switch a.Kind {
	case KindNil:
		return true
	case KindBool:
		return a.b == b.b
	case KindNumber:
		return a.num == b.num
	case KindObject:
		as, aok := a.obj.(*object.String)
		bs, bok := b.obj.(*object.String)
		if aok && bok {
			return as.Equal(bs)
		}
		return a.obj == b.obj
	default:
		return false
	}
}

// String renders the value the way print does.
func (v Value) String() string {
	switch v.Kind {
	case KindNil:
		return "nil"
	case KindBool:
		if v.b {
			return "true"
		}
		return "false"
	case KindNumber:
		return fmt.Sprintf("%g", v.num)
	case KindObject:
		if v.obj == nil {
			return "<nil object>"
		}
		return v.obj.String()
	default:
		return "<unknown>"
	}
}
