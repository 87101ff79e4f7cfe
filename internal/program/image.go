package program

import (
	"fmt"

	"clox/pkg/chunk"

	"github.com/fxamacker/cbor/v2"
)

// image is the on-disk CBOR layout: the opcode set version and the program.
type image struct {
	Version int     `cbor:"1,keyasint"`
	Program Program `cbor:"2,keyasint"`
}

// cborEncMode uses canonical mode so equal programs encode to equal bytes.
var cborEncMode cbor.EncMode

func init() {
	em, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(fmt.Sprintf("program: failed to create CBOR enc mode: %v", err))
	}
	cborEncMode = em
}

// MarshalImage serializes p to CBOR bytes tagged with chunk.Version.
func MarshalImage(p *Program) ([]byte, error) {
	return cborEncMode.Marshal(image{Version: chunk.Version, Program: *p})
}

// UnmarshalImage deserializes a program, rejecting images of another opcode set.
func UnmarshalImage(data []byte) (*Program, error) {
	var img image
	if err := cbor.Unmarshal(data, &img); err != nil {
		return nil, fmt.Errorf("program: unmarshal image: %w", err)
	}
	if img.Version != chunk.Version {
		return nil, fmt.Errorf("%w: version %d, want %d", ErrImageVersion, img.Version, chunk.Version)
	}
	return &img.Program, nil
}
