// Package wire holds the canonical CBOR plumbing shared by every content codec:
// the deterministic encode mode, the strict decode mode and the positional
// (array-of-fields) reader and writer used by records whose layout is known
// only from a leading tag.
package wire

import (
	"errors"
	"fmt"

	"github.com/fxamacker/cbor/v2"
)

var (
	ErrMissingElement   = errors.New("missing positional element")
	ErrTrailingElements = errors.New("unexpected trailing elements")
	ErrElementCount     = errors.New("element count mismatch")
	ErrUnexpectedNull   = errors.New("unexpected null")
	ErrNotArray         = errors.New("not a definite-length array")
	ErrNotMap           = errors.New("not a definite-length map")
	ErrDepthExceeded    = errors.New("nesting depth exceeded")
	ErrMalformed        = errors.New("malformed data item")
	ErrDuplicateKey     = errors.New("duplicate map key")
)

// DefaultMaxNestedLevels is the CBOR nesting limit of the shared decode mode
const DefaultMaxNestedLevels = 256

// Limits imposed by the CBOR library on MaxNestedLevels
const (
	minNestedLevels = 4
	maxNestedLevels = 65535
)

var (
	encMode cbor.EncMode
	decMode cbor.DecMode
)

func init() {
	var err error

	encMode, err = EncOptions().EncMode()
	if err != nil {
		panic(fmt.Sprintf("wire: invalid encode options: %v", err))
	}

	decMode, err = NewDecMode(DefaultMaxNestedLevels)
	if err != nil {
		panic(fmt.Sprintf("wire: invalid decode options: %v", err))
	}
}

// EncOptions returns the canonical encoding options: Core Deterministic
// Encoding with nil slices and maps written as empty containers.
func EncOptions() cbor.EncOptions {
	opts := cbor.CoreDetEncOptions()
	opts.NilContainers = cbor.NilContainerAsEmpty
	return opts
}

// NewDecMode builds a strict decode mode with the given nesting limit.
// The limit is clamped to the range the CBOR library accepts.
func NewDecMode(maxLevels int) (cbor.DecMode, error) {
	if maxLevels < minNestedLevels {
		maxLevels = minNestedLevels
	}
	if maxLevels > maxNestedLevels {
		maxLevels = maxNestedLevels
	}

	return cbor.DecOptions{
		DupMapKey:       cbor.DupMapKeyEnforcedAPF,
		IndefLength:     cbor.IndefLengthForbidden,
		MaxNestedLevels: maxLevels,
		UTF8:            cbor.UTF8RejectInvalid,
	}.DecMode()
}

// EncMode returns the shared canonical encode mode
func EncMode() cbor.EncMode {
	return encMode
}

// DecMode returns the shared strict decode mode
func DecMode() cbor.DecMode {
	return decMode
}

// Marshal encodes v in canonical form
func Marshal(v any) ([]byte, error) {
	return encMode.Marshal(v)
}

// Unmarshal decodes data into v with the shared decode mode
func Unmarshal(data []byte, v any) error {
	return decMode.Unmarshal(data, v)
}

// IsNull reports whether raw is a CBOR null or undefined simple value
func IsNull(raw []byte) bool {
	return len(raw) == 1 && (raw[0] == 0xf6 || raw[0] == 0xf7)
}

// Diagnose renders data in CBOR diagnostic notation
func Diagnose(data []byte) (string, error) {
	return cbor.Diagnose(data)
}
