package wire

import (
	"fmt"

	"github.com/fxamacker/cbor/v2"
)

// SeqWriter writes a positional array whose element count is fixed up front
type SeqWriter struct {
	items []cbor.RawMessage
	want  int
	err   error
}

// NewSeqWriter starts an array of exactly n elements
func NewSeqWriter(n int) SeqWriter {
	return SeqWriter{
		items: make([]cbor.RawMessage, 0, n),
		want:  n,
	}
}

// Elem encodes v as the next element
func (w *SeqWriter) Elem(v any) {
	if w.err != nil {
		return
	}

	b, err := encMode.Marshal(v)
	if err != nil {
		w.err = fmt.Errorf("element %d: %w", len(w.items), err)
		return
	}
	w.items = append(w.items, b)
}

// Raw appends an already encoded data item as the next element
func (w *SeqWriter) Raw(b []byte) {
	if w.err != nil {
		return
	}
	w.items = append(w.items, b)
}

// End returns the encoded array or the first element error
func (w *SeqWriter) End() ([]byte, error) {
	if w.err != nil {
		return nil, w.err
	}
	if len(w.items) != w.want {
		return nil, fmt.Errorf("%w: wrote %d of %d elements", ErrElementCount, len(w.items), w.want)
	}
	return encMode.Marshal(w.items)
}

// MapWriter writes a map in caller order rather than sorted key order
type MapWriter struct {
	buf  []byte
	want int
	have int
	err  error
}

// NewMapWriter starts a map of exactly n entries
func NewMapWriter(n int) MapWriter {
	return MapWriter{
		buf:  appendHead(make([]byte, 0, 64), majorMap, uint64(n)),
		want: n,
	}
}

// Entry encodes one key/value pair
func (w *MapWriter) Entry(key, value any) {
	if w.err != nil {
		return
	}

	k, err := encMode.Marshal(key)
	if err != nil {
		w.err = fmt.Errorf("map key %d: %w", w.have, err)
		return
	}
	v, err := encMode.Marshal(value)
	if err != nil {
		w.err = fmt.Errorf("map value %d: %w", w.have, err)
		return
	}

	w.buf = append(append(w.buf, k...), v...)
	w.have++
}

// End returns the encoded map or the first entry error
func (w *MapWriter) End() ([]byte, error) {
	if w.err != nil {
		return nil, w.err
	}
	if w.have != w.want {
		return nil, fmt.Errorf("%w: wrote %d of %d entries", ErrElementCount, w.have, w.want)
	}
	return w.buf, nil
}

// SeqReader reads the elements of a definite-length array by position.
// Elements are located on demand and returned as subslices of the input,
// so nothing is copied or validated until a caller decodes it.
type SeqReader struct {
	dm    cbor.DecMode
	n     int
	pos   int
	rest  []byte
	exact bool
}

// NewSeqReader reads data, which must hold exactly one array. A nil dm
// selects the shared decode mode.
func NewSeqReader(dm cbor.DecMode, data []byte) (*SeqReader, error) {
	r, err := OpenSeq(dm, data)
	if err != nil {
		return nil, err
	}
	r.exact = true
	return r, nil
}

// OpenSeq reads the array at the start of data. Bytes after the array are
// left for the caller and returned by Rest once every element is consumed.
func OpenSeq(dm cbor.DecMode, data []byte) (*SeqReader, error) {
	if dm == nil {
		dm = decMode
	}

	major, n, rest, err := readHead(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNotArray, err)
	}
	if major != majorArray {
		return nil, fmt.Errorf("%w: major type %d", ErrNotArray, major)
	}
	// every element takes at least one byte
	if n > uint64(len(rest)) {
		return nil, fmt.Errorf("%w: %d elements declared in %d bytes", ErrMalformed, n, len(rest))
	}

	return &SeqReader{dm: dm, n: int(n), rest: rest}, nil
}

// Len returns the number of elements in the array
func (r *SeqReader) Len() int {
	return r.n
}

// Remaining returns the number of unread elements
func (r *SeqReader) Remaining() int {
	return r.n - r.pos
}

// NextRaw returns the next element undecoded. The result aliases the input.
func (r *SeqReader) NextRaw() (cbor.RawMessage, error) {
	if r.pos >= r.n {
		return nil, fmt.Errorf("%w at position %d", ErrMissingElement, r.pos)
	}
	item, rest, err := splitItem(r.rest)
	if err != nil {
		return nil, fmt.Errorf("position %d: %w", r.pos, err)
	}
	r.rest = rest
	r.pos++
	return item, nil
}

// Decode hands fn the undecoded input starting at the next element. fn
// consumes exactly one element and returns the bytes it did not consume.
func (r *SeqReader) Decode(fn func(data []byte) ([]byte, error)) error {
	if r.pos >= r.n {
		return fmt.Errorf("%w at position %d", ErrMissingElement, r.pos)
	}
	rest, err := fn(r.rest)
	if err != nil {
		return err
	}
	r.rest = rest
	r.pos++
	return nil
}

// Next decodes the next element into v. Null is rejected.
func (r *SeqReader) Next(v any) error {
	pos := r.pos
	raw, err := r.NextRaw()
	if err != nil {
		return err
	}
	if IsNull(raw) {
		return fmt.Errorf("%w at position %d", ErrUnexpectedNull, pos)
	}
	if err := r.dm.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("position %d: %w", pos, err)
	}
	return nil
}

// Optional decodes the next element into v unless it is null.
// The element itself must be present.
func (r *SeqReader) Optional(v any) (bool, error) {
	pos := r.pos
	raw, err := r.NextRaw()
	if err != nil {
		return false, err
	}
	if IsNull(raw) {
		return false, nil
	}
	if err := r.dm.Unmarshal(raw, v); err != nil {
		return false, fmt.Errorf("position %d: %w", pos, err)
	}
	return true, nil
}

// End fails if elements are left unread. A reader from NewSeqReader also
// fails if bytes follow the array.
func (r *SeqReader) End() error {
	if r.pos != r.n {
		return fmt.Errorf("%w: %d of %d elements unread", ErrTrailingElements, r.n-r.pos, r.n)
	}
	if r.exact && len(r.rest) != 0 {
		return fmt.Errorf("%w: %d bytes after array", ErrTrailingElements, len(r.rest))
	}
	return nil
}

// Rest returns the input following the consumed elements
func (r *SeqReader) Rest() []byte {
	return r.rest
}

// ReadMap walks a definite-length map in wire order, calling fn for each
// entry. Keys and values alias data and are not validated here.
func ReadMap(data []byte, fn func(key, value cbor.RawMessage) error) error {
	major, n, rest, err := readHead(data)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrNotMap, err)
	}
	if major != majorMap {
		return fmt.Errorf("%w: major type %d", ErrNotMap, major)
	}

	for i := uint64(0); i < n; i++ {
		var key, value []byte

		if key, rest, err = splitItem(rest); err != nil {
			return fmt.Errorf("map key %d: %w", i, err)
		}
		if value, rest, err = splitItem(rest); err != nil {
			return fmt.Errorf("map value %d: %w", i, err)
		}
		if err := fn(key, value); err != nil {
			return err
		}
	}

	if len(rest) != 0 {
		return fmt.Errorf("%w: %d bytes after map", ErrTrailingElements, len(rest))
	}
	return nil
}
