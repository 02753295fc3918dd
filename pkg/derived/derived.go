// Package derived holds the values a hub attaches to a message after
// accepting it. They are never part of the signed content envelope.
package derived

import (
	"bytes"
	"errors"
	"fmt"
	"time"

	"github.com/fxamacker/cbor/v2"

	"github.com/ZentaChain/zentalk-content/pkg/content"
	"github.com/ZentaChain/zentalk-content/pkg/wire"
)

// ExtendedTimeTag is the CBOR tag of an RFC 9581 extended time map
const ExtendedTimeTag = 1001

const derivedFieldCount = 7

var ErrInvalidTimestamp = errors.New("timestamp must be milliseconds or an extended time")

// Timestamp is either milliseconds since the epoch or an extended time.
// Extended times are kept verbatim and not interpreted.
type Timestamp struct {
	msecs    uint64
	extended cbor.RawMessage
}

// FromMsecs returns a timestamp of ms milliseconds since the epoch
func FromMsecs(ms uint64) Timestamp {
	return Timestamp{msecs: ms}
}

// FromTime truncates t to milliseconds; times before the epoch clamp to zero
func FromTime(t time.Time) Timestamp {
	return Timestamp{msecs: uint64(max(t.UnixMilli(), 0))}
}

// ExtendedTime wraps an encoded tag 1001 data item
func ExtendedTime(raw []byte) (Timestamp, error) {
	var ts Timestamp
	if err := ts.UnmarshalCBOR(raw); err != nil {
		return Timestamp{}, err
	}
	if !ts.IsExtended() {
		return Timestamp{}, fmt.Errorf("%w: not tag %d", ErrInvalidTimestamp, ExtendedTimeTag)
	}
	return ts, nil
}

// IsExtended reports whether ts holds an extended time
func (ts Timestamp) IsExtended() bool {
	return ts.extended != nil
}

// Msecs returns the milliseconds since the epoch
func (ts Timestamp) Msecs() (uint64, bool) {
	if ts.IsExtended() {
		return 0, false
	}
	return ts.msecs, true
}

// Time converts a millisecond timestamp to UTC
func (ts Timestamp) Time() (time.Time, bool) {
	ms, ok := ts.Msecs()
	if !ok {
		return time.Time{}, false
	}
	return time.UnixMilli(int64(ms)).UTC(), true
}

// Extended returns the encoded extended time, or nil
func (ts Timestamp) Extended() cbor.RawMessage {
	return bytes.Clone(ts.extended)
}

func (ts Timestamp) String() string {
	if ts.IsExtended() {
		s, err := wire.Diagnose(ts.extended)
		if err != nil {
			return "extended(?)"
		}
		return s
	}
	t, _ := ts.Time()
	return t.Format(time.RFC3339Nano)
}

// MarshalCBOR encodes an unsigned integer or the stored extended time
func (ts Timestamp) MarshalCBOR() ([]byte, error) {
	if ts.IsExtended() {
		return bytes.Clone(ts.extended), nil
	}
	return wire.Marshal(ts.msecs)
}

// UnmarshalCBOR accepts an unsigned integer or a tag 1001 wrapping a map
func (ts *Timestamp) UnmarshalCBOR(data []byte) error {
	switch {
	case wire.IsNull(data):
		return wire.ErrUnexpectedNull

	case wire.IsUint(data):
		var ms uint64
		if err := wire.Unmarshal(data, &ms); err != nil {
			return err
		}
		*ts = Timestamp{msecs: ms}
		return nil

	case wire.IsTag(data):
		var tag cbor.RawTag
		if err := wire.Unmarshal(data, &tag); err != nil {
			return err
		}
		if tag.Number != ExtendedTimeTag {
			return fmt.Errorf("%w: tag %d", ErrInvalidTimestamp, tag.Number)
		}
		if !wire.IsMap(tag.Content) {
			return fmt.Errorf("%w: tag %d content is not a map", ErrInvalidTimestamp, ExtendedTimeTag)
		}
		*ts = Timestamp{extended: bytes.Clone(data)}
		return nil
	}

	return ErrInvalidTimestamp
}

// View returns a borrowed view of ts
func (ts *Timestamp) View() TimestampRef {
	return TimestampRef{p: ts}
}

// TimestampRef is a borrowed view of a Timestamp
type TimestampRef struct {
	p *Timestamp
}

// MarshalCBOR encodes the viewed timestamp
func (r TimestampRef) MarshalCBOR() ([]byte, error) {
	if r.p == nil {
		return wire.Marshal(uint64(0))
	}
	if r.p.IsExtended() {
		return r.p.extended, nil
	}
	return wire.Marshal(r.p.msecs)
}

// MessageDerivedValues are the facts a hub records about an accepted message
type MessageDerivedValues struct {
	_                    struct{} `cbor:",toarray"`
	MessageID            content.MessageID
	HubAcceptedTimestamp Timestamp
	MLSGroupID           content.Bytes
	SenderLeafIndex      uint32
	SenderClientURL      content.Text
	SenderUserURL        content.Text
	RoomURL              content.Text
}

// derivedWire drops the methods of MessageDerivedValues so the library
// encodes it field by field
type derivedWire MessageDerivedValues

// MarshalCBOR encodes v as a seven element array
func (v MessageDerivedValues) MarshalCBOR() ([]byte, error) {
	return wire.Marshal(derivedWire(v))
}

// UnmarshalCBOR decodes a seven element array. Every field is required.
func (v *MessageDerivedValues) UnmarshalCBOR(data []byte) error {
	if wire.IsNull(data) {
		return wire.ErrUnexpectedNull
	}

	r, err := wire.NewSeqReader(nil, data)
	if err != nil {
		return err
	}

	var out MessageDerivedValues
	fields := []struct {
		name string
		dst  any
	}{
		{"message ID", &out.MessageID},
		{"hub accepted timestamp", &out.HubAcceptedTimestamp},
		{"MLS group ID", &out.MLSGroupID},
		{"sender leaf index", &out.SenderLeafIndex},
		{"sender client URL", &out.SenderClientURL},
		{"sender user URL", &out.SenderUserURL},
		{"room URL", &out.RoomURL},
	}
	for _, f := range fields {
		if err := r.Next(f.dst); err != nil {
			return fmt.Errorf("%s: %w", f.name, err)
		}
	}
	if err := r.End(); err != nil {
		return err
	}

	*v = out
	return nil
}

// View returns a borrowed view of v
func (v *MessageDerivedValues) View() MessageDerivedValuesRef {
	return MessageDerivedValuesRef{
		MessageID:            v.MessageID.View(),
		HubAcceptedTimestamp: v.HubAcceptedTimestamp.View(),
		MLSGroupID:           v.MLSGroupID.View(),
		SenderLeafIndex:      &v.SenderLeafIndex,
		SenderClientURL:      v.SenderClientURL.View(),
		SenderUserURL:        v.SenderUserURL.View(),
		RoomURL:              v.RoomURL.View(),
	}
}

// MessageDerivedValuesRef is a borrowed view of a MessageDerivedValues
type MessageDerivedValuesRef struct {
	MessageID            content.MessageIDRef
	HubAcceptedTimestamp TimestampRef
	MLSGroupID           content.BytesRef
	SenderLeafIndex      *uint32
	SenderClientURL      content.TextRef
	SenderUserURL        content.TextRef
	RoomURL              content.TextRef
}

// MarshalCBOR writes the seven fields in order
func (r MessageDerivedValuesRef) MarshalCBOR() ([]byte, error) {
	w := wire.NewSeqWriter(derivedFieldCount)
	w.Elem(r.MessageID)
	w.Elem(r.HubAcceptedTimestamp)
	w.Elem(r.MLSGroupID)
	w.Elem(*r.SenderLeafIndex)
	w.Elem(r.SenderClientURL)
	w.Elem(r.SenderUserURL)
	w.Elem(r.RoomURL)
	return w.End()
}

// Encode serializes v
func Encode(v *MessageDerivedValues) ([]byte, error) {
	if v == nil {
		return nil, fmt.Errorf("%w: %w", content.ErrEncode, content.ErrNilContent)
	}

	data, err := v.View().MarshalCBOR()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", content.ErrEncode, err)
	}
	return data, nil
}

// Decode parses encoded derived values
func Decode(data []byte) (*MessageDerivedValues, error) {
	var v MessageDerivedValues
	if err := v.UnmarshalCBOR(data); err != nil {
		return nil, fmt.Errorf("%w: %w", content.ErrDecode, err)
	}
	return &v, nil
}
