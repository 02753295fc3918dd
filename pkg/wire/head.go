package wire

import (
	"encoding/binary"
	"fmt"
	"math"
)

// CBOR major types (RFC 8949 section 3.1)
const (
	majorUint   byte = 0
	majorNint   byte = 1
	majorBytes  byte = 2
	majorText   byte = 3
	majorArray  byte = 4
	majorMap    byte = 5
	majorTag    byte = 6
	majorSimple byte = 7
)

// Additional information values
const (
	info1Byte  = 24
	info2Bytes = 25
	info4Bytes = 26
	info8Bytes = 27
	infoIndef  = 31
)

// appendHead appends a data item head in its shortest form
func appendHead(dst []byte, major byte, n uint64) []byte {
	m := major << 5

	switch {
	case n < info1Byte:
		return append(dst, m|byte(n))
	case n <= math.MaxUint8:
		return append(dst, m|info1Byte, byte(n))
	case n <= math.MaxUint16:
		return binary.BigEndian.AppendUint16(append(dst, m|info2Bytes), uint16(n))
	case n <= math.MaxUint32:
		return binary.BigEndian.AppendUint32(append(dst, m|info4Bytes), uint32(n))
	default:
		return binary.BigEndian.AppendUint64(append(dst, m|info8Bytes), n)
	}
}

// readHead parses a definite-length data item head
func readHead(data []byte) (major byte, n uint64, rest []byte, err error) {
	if len(data) == 0 {
		return 0, 0, nil, ErrMalformed
	}

	major = data[0] >> 5
	info := data[0] & 0x1f
	data = data[1:]

	var size int
	switch {
	case info < info1Byte:
		return major, uint64(info), data, nil
	case info == info1Byte:
		size = 1
	case info == info2Bytes:
		size = 2
	case info == info4Bytes:
		size = 4
	case info == info8Bytes:
		size = 8
	default:
		// reserved values and indefinite lengths
		return major, 0, nil, ErrMalformed
	}

	if len(data) < size {
		return major, 0, nil, ErrMalformed
	}

	switch size {
	case 1:
		n = uint64(data[0])
	case 2:
		n = uint64(binary.BigEndian.Uint16(data))
	case 4:
		n = uint64(binary.BigEndian.Uint32(data))
	default:
		n = binary.BigEndian.Uint64(data)
	}

	return major, n, data[size:], nil
}

// MajorType returns the major type of the first data item in raw
func MajorType(raw []byte) (byte, bool) {
	if len(raw) == 0 {
		return 0, false
	}
	return raw[0] >> 5, true
}

// IsInt reports whether raw starts with an unsigned or negative integer
func IsInt(raw []byte) bool {
	m, ok := MajorType(raw)
	return ok && (m == majorUint || m == majorNint)
}

// IsText reports whether raw starts with a text string
func IsText(raw []byte) bool {
	m, ok := MajorType(raw)
	return ok && m == majorText
}

// IsTag reports whether raw starts with a tag
func IsTag(raw []byte) bool {
	m, ok := MajorType(raw)
	return ok && m == majorTag
}

// IsMap reports whether raw starts with a map
func IsMap(raw []byte) bool {
	m, ok := MajorType(raw)
	return ok && m == majorMap
}

// IsUint reports whether raw starts with an unsigned integer
func IsUint(raw []byte) bool {
	m, ok := MajorType(raw)
	return ok && m == majorUint
}

// splitItem returns the first data item of data and the bytes after it.
// It walks heads iteratively and checks only framing, so deep nesting costs
// no stack and leaf contents are left for the decoder.
func splitItem(data []byte) (item, rest []byte, err error) {
	rest = data
	for pending := uint64(1); pending > 0; pending-- {
		var (
			major byte
			n     uint64
		)
		if major, n, rest, err = readHead(rest); err != nil {
			return nil, nil, err
		}

		switch major {
		case majorBytes, majorText:
			if n > uint64(len(rest)) {
				return nil, nil, fmt.Errorf("%w: string of %d bytes, %d left", ErrMalformed, n, len(rest))
			}
			rest = rest[n:]
		case majorArray:
			if n > uint64(len(rest)) {
				return nil, nil, fmt.Errorf("%w: %d elements declared in %d bytes", ErrMalformed, n, len(rest))
			}
			pending += n
		case majorMap:
			if n > uint64(len(rest))/2 {
				return nil, nil, fmt.Errorf("%w: %d entries declared in %d bytes", ErrMalformed, n, len(rest))
			}
			pending += 2 * n
		case majorTag:
			pending++
		}

		// every pending item takes at least one byte
		if pending-1 > uint64(len(rest)) {
			return nil, nil, fmt.Errorf("%w: %d items declared in %d bytes", ErrMalformed, pending-1, len(rest))
		}
	}
	return data[:len(data)-len(rest)], rest, nil
}
