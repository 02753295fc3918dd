package content

// Media types
const (
	// MediaType identifies a MIMI content envelope
	MediaType = "application/mimi-content"

	// StatusMediaType identifies a message status report
	StatusMediaType = "application/mimi-message-status"
)

// Sizes
const (
	SaltSize      = 16
	MessageIDSize = 32

	// Digest bytes carried by a MessageID after the algorithm byte
	MessageIDDigestSize = MessageIDSize - 1
)

// Standard extension keys
const (
	SenderURIExtensionKey int64 = 1
	RoomURIExtensionKey   int64 = 2
)

// Positional field counts
const (
	contentFieldCount    = 7
	nestedPartFieldCount = 3
	singlePartFieldCount = 2
	externalFieldCount   = 12
	multiPartFieldCount  = 2
)

// DefaultLanguage is the language of a nested part when none is given
const DefaultLanguage = "en"
