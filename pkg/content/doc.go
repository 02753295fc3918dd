// Package content implements the MIMI message content format.
//
// The content package defines the message content envelope, the recursive
// nested content tree, its positional CBOR encoding and the content-addressed
// message identifier derived from the encoded bytes.
//
// # Envelope
//
// Every message is a MimiContent encoded as a 7-element CBOR array:
//   - salt (16 bytes): per-message entropy mixed into the message ID
//   - replaces (MessageID or null): message being edited or deleted
//   - topic_id (bytes): optional topic, empty when unused
//   - expires ([relative, time] or null): expiry of the message
//   - in_reply_to (MessageID or null): message being answered
//   - extensions (map): ordered map of integer or text keys to canonical values
//   - nested_part: the content tree
//
// Envelopes are only created through a Builder, which requires the salt, the
// topic ID and the nested part to be supplied explicitly.
//
// # Nested Parts
//
// A nested part is encoded positionally. The first three elements are the
// disposition, the language and a cardinality tag; the tag decides how many
// elements follow:
//   - NullPart (0): nothing
//   - SinglePart (1): content type, content
//   - ExternalPart (2): content type, url, expires, size, encryption
//     algorithm, key, nonce, aad, hash algorithm, content hash, description,
//     filename
//   - MultiPart (3): part semantics, array of nested parts
//
// The trailing filename of an ExternalPart may be missing and decodes as the
// empty string. Any other missing element is a decode error.
//
// # Views
//
// Every owned aggregate has a View method returning a borrowed counterpart
// (TextRef, NestedPartRef, ContentRef, ...) that points into the owner.
// Encoding a view yields exactly the bytes of encoding the owner, so content
// can be re-emitted without cloning it.
//
// # Message IDs
//
// A MessageID is 32 bytes: a hash algorithm code followed by the first 31
// bytes of digest(sender URI || room URI || encoded content || salt).
// Code 0x01 is SHA-256; 0x40 and above are available for custom algorithms.
//
//	c, err := content.NewBuilder().
//	    SaltWithRNG(rand.Reader).
//	    TopicID(nil).
//	    NestedPart(content.NewTextPart("Hello World")).
//	    Build()
//	if err != nil {
//	    return err
//	}
//
//	id, err := content.NewMessageID("mimi://example.com/u/alice", "mimi://example.com/r/room", c)
package content
