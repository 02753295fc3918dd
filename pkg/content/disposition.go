package content

import (
	"fmt"

	"github.com/ZentaChain/zentalk-content/pkg/enum"
	"github.com/ZentaChain/zentalk-content/pkg/wire"
)

// BaseDisposition says how a nested part is meant to be presented
type BaseDisposition uint8

const (
	DispositionUnspecified BaseDisposition = 0
	DispositionRender      BaseDisposition = 1
	DispositionReaction    BaseDisposition = 2
	DispositionProfile     BaseDisposition = 3
	DispositionInline      BaseDisposition = 4
	DispositionIcon        BaseDisposition = 5
	DispositionAttachment  BaseDisposition = 6
	DispositionSession     BaseDisposition = 7
	DispositionPreview     BaseDisposition = 8
)

// Disposition is a disposition code that tolerates unassigned values
type Disposition = enum.Code[BaseDisposition]

var dispositionNames = [...]string{
	"unspecified",
	"render",
	"reaction",
	"profile",
	"inline",
	"icon",
	"attachment",
	"session",
	"preview",
}

// Known reports whether d is an assigned disposition
func (d BaseDisposition) Known() bool {
	return int(d) < len(dispositionNames)
}

func (d BaseDisposition) String() string {
	if d.Known() {
		return dispositionNames[d]
	}
	return fmt.Sprintf("disposition(%d)", uint8(d))
}

// Code returns d as an extensible code
func (d BaseDisposition) Code() Disposition {
	return enum.Of(d)
}

// ParseDisposition maps a name back to its disposition
func ParseDisposition(s string) (Disposition, bool) {
	for i, name := range dispositionNames {
		if name == s {
			return enum.Of(BaseDisposition(i)), true
		}
	}
	return Disposition{}, false
}

// PartSemantics says how the children of a multipart relate to each other
type PartSemantics uint8

const (
	// ChooseOne: exactly one child is picked and processed
	ChooseOne PartSemantics = 0
	// SingleUnit: every child must be processed
	SingleUnit PartSemantics = 1
	// ProcessAll: as many children as possible are processed
	ProcessAll PartSemantics = 2
)

func (s PartSemantics) String() string {
	switch s {
	case ChooseOne:
		return "chooseOne"
	case SingleUnit:
		return "singleUnit"
	case ProcessAll:
		return "processAll"
	default:
		return fmt.Sprintf("semantics(%d)", uint8(s))
	}
}

// ParsePartSemantics looks up semantics by name
func ParsePartSemantics(name string) (PartSemantics, bool) {
	for s := ChooseOne; s <= ProcessAll; s++ {
		if s.String() == name {
			return s, true
		}
	}
	return 0, false
}

// Valid reports whether s is an assigned value
func (s PartSemantics) Valid() bool {
	return s <= ProcessAll
}

// MarshalCBOR encodes s as an unsigned integer
func (s PartSemantics) MarshalCBOR() ([]byte, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownSemantics, uint8(s))
	}
	return wire.Marshal(uint8(s))
}

// UnmarshalCBOR accepts assigned values only
func (s *PartSemantics) UnmarshalCBOR(data []byte) error {
	raw, err := decodeSmallCode(data)
	if err != nil {
		return err
	}
	if !PartSemantics(raw).Valid() {
		return fmt.Errorf("%w: %d", ErrUnknownSemantics, raw)
	}
	*s = PartSemantics(raw)
	return nil
}

// Cardinality is the tag that selects a nested part's content variant and
// with it the number of trailing fields
type Cardinality uint8

const (
	CardinalityNull     Cardinality = 0
	CardinalitySingle   Cardinality = 1
	CardinalityExternal Cardinality = 2
	CardinalityMulti    Cardinality = 3
)

func (c Cardinality) String() string {
	switch c {
	case CardinalityNull:
		return "nullPart"
	case CardinalitySingle:
		return "singlePart"
	case CardinalityExternal:
		return "externalPart"
	case CardinalityMulti:
		return "multiPart"
	default:
		return fmt.Sprintf("cardinality(%d)", uint8(c))
	}
}

// FieldCount returns the number of fields following the tag
func (c Cardinality) FieldCount() (int, error) {
	switch c {
	case CardinalityNull:
		return 0, nil
	case CardinalitySingle:
		return singlePartFieldCount, nil
	case CardinalityExternal:
		return externalFieldCount, nil
	case CardinalityMulti:
		return multiPartFieldCount, nil
	default:
		return 0, fmt.Errorf("%w: %d", ErrUnknownCardinality, uint8(c))
	}
}

// MarshalCBOR encodes c as an unsigned integer
func (c Cardinality) MarshalCBOR() ([]byte, error) {
	return wire.Marshal(uint8(c))
}

// UnmarshalCBOR accepts assigned values only
func (c *Cardinality) UnmarshalCBOR(data []byte) error {
	raw, err := decodeSmallCode(data)
	if err != nil {
		return err
	}
	if _, err := Cardinality(raw).FieldCount(); err != nil {
		return err
	}
	*c = Cardinality(raw)
	return nil
}

func decodeSmallCode(data []byte) (uint8, error) {
	if wire.IsNull(data) {
		return 0, wire.ErrUnexpectedNull
	}
	var raw uint8
	if err := wire.Unmarshal(data, &raw); err != nil {
		return 0, err
	}
	return raw, nil
}
