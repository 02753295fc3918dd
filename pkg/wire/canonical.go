package wire

import (
	"bytes"
	"fmt"
	"slices"
	"unicode/utf8"

	"github.com/fxamacker/cbor/v2"
)

// Canonical rewrites one data item into Core Deterministic form without
// decoding it into Go values, so map key types, tags and simple values
// survive unchanged. Heads are shortened, floats take their shortest exact
// width and map entries are sorted by encoded key. Keys that collide once
// canonical are rejected with ErrDuplicateKey. A nil dm selects the shared
// decode mode, whose nesting limit bounds the walk.
func Canonical(dm cbor.DecMode, data []byte) ([]byte, error) {
	if dm == nil {
		dm = decMode
	}
	if err := dm.Wellformed(data); err != nil {
		return nil, err
	}

	out, rest, err := appendCanonical(make([]byte, 0, len(data)), data)
	if err != nil {
		return nil, err
	}
	if len(rest) != 0 {
		return nil, fmt.Errorf("%w: %d bytes after data item", ErrMalformed, len(rest))
	}
	return out, nil
}

type mapEntry struct {
	key, value []byte
}

func appendCanonical(dst, data []byte) ([]byte, []byte, error) {
	major, n, rest, err := readHead(data)
	if err != nil {
		return nil, nil, err
	}

	switch major {
	case majorUint, majorNint:
		return appendHead(dst, major, n), rest, nil

	case majorBytes, majorText:
		if n > uint64(len(rest)) {
			return nil, nil, ErrMalformed
		}
		payload := rest[:n]
		if major == majorText && !utf8.Valid(payload) {
			return nil, nil, fmt.Errorf("%w: invalid UTF-8 text", ErrMalformed)
		}
		return append(appendHead(dst, major, n), payload...), rest[n:], nil

	case majorArray:
		dst = appendHead(dst, major, n)
		for i := uint64(0); i < n; i++ {
			if dst, rest, err = appendCanonical(dst, rest); err != nil {
				return nil, nil, err
			}
		}
		return dst, rest, nil

	case majorMap:
		entries := make([]mapEntry, 0, min(n, uint64(len(rest))))
		for i := uint64(0); i < n; i++ {
			var e mapEntry
			if e.key, rest, err = appendCanonical(nil, rest); err != nil {
				return nil, nil, err
			}
			if e.value, rest, err = appendCanonical(nil, rest); err != nil {
				return nil, nil, err
			}
			entries = append(entries, e)
		}

		slices.SortFunc(entries, func(a, b mapEntry) int {
			return bytes.Compare(a.key, b.key)
		})

		dst = appendHead(dst, major, n)
		for i, e := range entries {
			if i > 0 && bytes.Equal(entries[i-1].key, e.key) {
				return nil, nil, fmt.Errorf("%w: %x", ErrDuplicateKey, e.key)
			}
			dst = append(append(dst, e.key...), e.value...)
		}
		return dst, rest, nil

	case majorTag:
		return appendCanonical(appendHead(dst, major, n), rest)

	default:
		item := data[:len(data)-len(rest)]
		switch data[0] & 0x1f {
		case info2Bytes, info4Bytes, info8Bytes:
			var f float64
			if err := decMode.Unmarshal(item, &f); err != nil {
				return nil, nil, err
			}
			b, err := encMode.Marshal(f)
			if err != nil {
				return nil, nil, err
			}
			return append(dst, b...), rest, nil
		}
		return append(dst, item...), rest, nil
	}
}
