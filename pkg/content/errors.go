package content

import (
	"errors"
	"fmt"
)

var (
	ErrEncode                  = errors.New("content encode failed")
	ErrDecode                  = errors.New("content decode failed")
	ErrUnsupportedHashAlg      = errors.New("unsupported message ID hash algorithm")
	ErrUnknownHashAlg          = errors.New("unknown message ID hash algorithm")
	ErrCustomHashAlgOutOfRange = errors.New("custom hash algorithm outside the custom range")
	ErrIO                      = errors.New("content i/o failed")

	ErrInvalidLength      = errors.New("invalid length")
	ErrInvalidName        = errors.New("extension name must be an integer or text")
	ErrDuplicateExtension = errors.New("duplicate extension name")
	ErrUnknownCardinality = errors.New("unknown nested part cardinality")
	ErrUnknownSemantics   = errors.New("unknown part semantics")
	ErrNilContent         = errors.New("nil content")

	ErrMissingSalt       = errors.New("salt not set")
	ErrMissingTopicID    = errors.New("topic ID not set")
	ErrMissingNestedPart = errors.New("nested part not set")
)

func encodeError(err error) error {
	if errors.Is(err, ErrEncode) {
		return err
	}
	return fmt.Errorf("%w: %w", ErrEncode, err)
}

func decodeError(err error) error {
	if errors.Is(err, ErrDecode) {
		return err
	}
	return fmt.Errorf("%w: %w", ErrDecode, err)
}
