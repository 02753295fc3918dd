package content

import "github.com/fxamacker/cbor/v2"

// Viewer is implemented by every owned aggregate. View returns a value of
// the same shape whose fields point into the owner, so encoding the view
// produces the owner's bytes without copying it.
type Viewer[V any] interface {
	View() V
}

// EncodeView encodes owner through its borrowed view
func EncodeView[V cbor.Marshaler, T Viewer[V]](owner T) ([]byte, error) {
	b, err := owner.View().MarshalCBOR()
	if err != nil {
		return nil, encodeError(err)
	}
	return b, nil
}

var (
	_ Viewer[TextRef]         = (*Text)(nil)
	_ Viewer[BytesRef]        = (*Bytes)(nil)
	_ Viewer[MessageIDRef]    = (*MessageID)(nil)
	_ Viewer[NameRef]         = (*Name)(nil)
	_ Viewer[ValueRef]        = (*Value)(nil)
	_ Viewer[ExtensionsRef]   = (*Extensions)(nil)
	_ Viewer[SinglePartRef]   = (*SinglePart)(nil)
	_ Viewer[ExternalPartRef] = (*ExternalPart)(nil)
	_ Viewer[MultiPartRef]    = (*MultiPart)(nil)
	_ Viewer[NestedPartRef]   = (*NestedPart)(nil)
	_ Viewer[ContentRef]      = (*MimiContent)(nil)
)
