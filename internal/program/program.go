// Package program describes hand-assembled chunks as data, so they can be kept in
// TOML files or compact CBOR images and turned into a chunk.Chunk.
package program

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"clox/pkg/chunk"
	"clox/pkg/object"
	"clox/pkg/value"

	"github.com/BurntSushi/toml"
)

var (
	ErrUnknownOp     = errors.New("unknown op")
	ErrPayload       = errors.New("bad constant payload")
	ErrLine          = errors.New("line must not be negative")
	ErrUnknownKey    = errors.New("unknown key")
	ErrUnknownFormat = errors.New("unknown program format")
	ErrImageVersion  = errors.New("image built for another opcode set")
	ErrEmptyProgram  = errors.New("program has no steps")
)

// Program is an ordered list of assembly steps.
type Program struct {
	Name  string `toml:"name" cbor:"1,keyasint"`
	Steps []Step `toml:"step" cbor:"2,keyasint"`
}

// Step is one instruction. Op is the opcode name in lower case without the OP_
// prefix. "constant" picks the short or long encoding from the pool size;
// "constant_long" always uses the long one. Constant steps carry exactly one payload.
type Step struct {
	Op     string   `toml:"op" cbor:"1,keyasint"`
	Number *float64 `toml:"number,omitempty" cbor:"2,keyasint,omitempty"`
	String *string  `toml:"string,omitempty" cbor:"3,keyasint,omitempty"`
	Bool   *bool    `toml:"bool,omitempty" cbor:"4,keyasint,omitempty"`
	Line   int      `toml:"line" cbor:"5,keyasint"`
}

// Load reads a program from path, choosing the decoder from the file extension.
func Load(path string) (*Program, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	var p *Program
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		p, err = ParseTOML(data)
	case ".cbor", ".image":
		p, err = UnmarshalImage(data)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownFormat, path)
	}
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", path, err)
	}

	if p.Name == "" {
		p.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return p, nil
}

// ParseTOML decodes a program. Keys the Program type does not know are rejected.
func ParseTOML(data []byte) (*Program, error) {
	var p Program
	md, err := toml.Decode(string(data), &p)
	if err != nil {
		return nil, fmt.Errorf("parsing toml: %w", err)
	}

	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, fmt.Errorf("%w: %s", ErrUnknownKey, strings.Join(keys, ", "))
	}

	return &p, nil
}

// Build emits the program into a new chunk. String constants are allocated on heap.
func (p *Program) Build(heap *object.Heap) (*chunk.Chunk, error) {
	if len(p.Steps) == 0 {
		return nil, ErrEmptyProgram
	}

	c := chunk.New()
	for i, s := range p.Steps {
		if err := s.emit(c, heap); err != nil {
			return nil, fmt.Errorf("step %d (%s): %w", i, s.Op, err)
		}
	}
	return c, nil
}

func (s Step) emit(c *chunk.Chunk, heap *object.Heap) error {
	if s.Line < 0 {
		return ErrLine
	}

	op, ok := chunk.Lookup("OP_" + strings.ToUpper(s.Op))
	if !ok {
		return ErrUnknownOp
	}

	payloads := 0
	for _, set := range []bool{s.Number != nil, s.String != nil, s.Bool != nil} {
		if set {
			payloads++
		}
	}

	switch op {
	case chunk.OpConstant, chunk.OpConstantLong:
		if payloads != 1 {
			return fmt.Errorf("%w: expected one payload, got %d", ErrPayload, payloads)
		}
	default:
		if payloads != 0 {
			return fmt.Errorf("%w: %s takes no constant", ErrPayload, op)
		}
		return c.Write(op, s.Line)
	}

	v := s.constant(heap)
	if op == chunk.OpConstant {
		_, err := c.EmitConstant(v, s.Line)
		return err
	}

	if len(c.Constants()) > chunk.MaxLongConstant {
		return chunk.ErrTooManyConstants
	}
	index := c.AddConstant(v)
	return c.Write(chunk.OpConstantLong, s.Line, byte(index), byte(index>>8), byte(index>>16))
}

func (s Step) constant(heap *object.Heap) value.Value {
	switch {
	case s.Number != nil:
		return value.Number(*s.Number)
	case s.String != nil:
		return value.Obj(heap.CopyString(*s.String))
	default:
		return value.Bool(*s.Bool)
	}
}
