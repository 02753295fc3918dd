package content

import (
	"fmt"
	"iter"

	"github.com/ZentaChain/zentalk-content/pkg/wire"
	"github.com/fxamacker/cbor/v2"
)

// Extension is one entry of an extension map
type Extension struct {
	Name  Name
	Value Value
}

// Extensions is an insertion-ordered map from Name to Value.
// Entry order is part of the encoding and therefore of the message ID.
type Extensions struct {
	entries []Extension
}

// Set inserts or replaces name. A replaced entry keeps its position.
func (e *Extensions) Set(name Name, value Value) {
	for i := range e.entries {
		if e.entries[i].Name == name {
			e.entries[i].Value = value
			return
		}
	}
	e.entries = append(e.entries, Extension{Name: name, Value: value})
}

// Get looks up name
func (e Extensions) Get(name Name) (Value, bool) {
	for _, ext := range e.entries {
		if ext.Name == name {
			return ext.Value, true
		}
	}
	return Value{}, false
}

// Len returns the number of entries
func (e Extensions) Len() int {
	return len(e.entries)
}

// All iterates entries in insertion order
func (e Extensions) All() iter.Seq2[Name, Value] {
	return func(yield func(Name, Value) bool) {
		for _, ext := range e.entries {
			if !yield(ext.Name, ext.Value) {
				return
			}
		}
	}
}

// Clone returns an independent copy
func (e Extensions) Clone() Extensions {
	if len(e.entries) == 0 {
		return Extensions{}
	}
	entries := make([]Extension, len(e.entries))
	copy(entries, e.entries)
	return Extensions{entries: entries}
}

// View returns a borrowed view of e
func (e *Extensions) View() ExtensionsRef {
	return ExtensionsRef{p: e}
}

// MarshalCBOR encodes e as a map in insertion order
func (e Extensions) MarshalCBOR() ([]byte, error) {
	return e.View().MarshalCBOR()
}

// UnmarshalCBOR decodes a map keeping wire order. Repeated keys are rejected.
// Values are bounded by the shared decode mode's nesting limit.
func (e *Extensions) UnmarshalCBOR(data []byte) error {
	return e.decode(nil, data)
}

func (e *Extensions) decode(dm cbor.DecMode, data []byte) error {
	if wire.IsNull(data) {
		return fmt.Errorf("extensions: %w", wire.ErrUnexpectedNull)
	}

	var entries []Extension
	seen := make(map[Name]struct{})

	err := wire.ReadMap(data, func(key, value cbor.RawMessage) error {
		var ext Extension
		if err := ext.Name.UnmarshalCBOR(key); err != nil {
			return err
		}
		if _, dup := seen[ext.Name]; dup {
			return fmt.Errorf("%w: %s", ErrDuplicateExtension, ext.Name)
		}
		seen[ext.Name] = struct{}{}

		v, err := valueFromCBOR(dm, value)
		if err != nil {
			return fmt.Errorf("extension %s: %w", ext.Name, err)
		}
		ext.Value = v
		entries = append(entries, ext)
		return nil
	})
	if err != nil {
		return err
	}

	e.entries = entries
	return nil
}

// ExtensionsRef is a borrowed view of Extensions
type ExtensionsRef struct {
	p *Extensions
}

// Len returns the number of viewed entries
func (r ExtensionsRef) Len() int {
	if r.p == nil {
		return 0
	}
	return len(r.p.entries)
}

// MarshalCBOR encodes the viewed entries in order
func (r ExtensionsRef) MarshalCBOR() ([]byte, error) {
	w := wire.NewMapWriter(r.Len())
	for i := 0; i < r.Len(); i++ {
		ext := &r.p.entries[i]
		w.Entry(ext.Name.View(), ext.Value.View())
	}
	return w.End()
}
