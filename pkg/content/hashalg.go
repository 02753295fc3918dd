package content

import (
	"fmt"

	"github.com/ZentaChain/zentalk-content/pkg/crypto"
	"github.com/ZentaChain/zentalk-content/pkg/enum"
)

// BaseHashAlg is a hash algorithm code from the Named Information Hash
// Algorithm registry (RFC 6920)
type BaseHashAlg uint8

const (
	HashAlgReserved   BaseHashAlg = 0x00
	HashAlgSHA256     BaseHashAlg = 0x01
	HashAlgSHA256_128 BaseHashAlg = 0x02
	HashAlgSHA256_120 BaseHashAlg = 0x03
	HashAlgSHA256_96  BaseHashAlg = 0x04
	HashAlgSHA256_64  BaseHashAlg = 0x05
	HashAlgSHA256_32  BaseHashAlg = 0x06
	HashAlgSHA384     BaseHashAlg = 0x07
	HashAlgSHA512     BaseHashAlg = 0x08
	HashAlgSHA3_224   BaseHashAlg = 0x09
	HashAlgSHA3_256   BaseHashAlg = 0x0A
	HashAlgSHA3_384   BaseHashAlg = 0x0B
	HashAlgSHA3_512   BaseHashAlg = 0x0C
)

// Code ranges
const (
	MaxStandardHashAlg uint8 = 0x3F
	MinCustomHashAlg   uint8 = 0x40
)

// HashAlg is a hash algorithm code that tolerates unassigned values
type HashAlg = enum.Code[BaseHashAlg]

var hashAlgNames = map[BaseHashAlg]string{
	HashAlgReserved:   "reserved",
	HashAlgSHA256:     "sha-256",
	HashAlgSHA256_128: "sha-256-128",
	HashAlgSHA256_120: "sha-256-120",
	HashAlgSHA256_96:  "sha-256-96",
	HashAlgSHA256_64:  "sha-256-64",
	HashAlgSHA256_32:  "sha-256-32",
	HashAlgSHA384:     "sha-384",
	HashAlgSHA512:     "sha-512",
	HashAlgSHA3_224:   "sha3-224",
	HashAlgSHA3_256:   "sha3-256",
	HashAlgSHA3_384:   "sha3-384",
	HashAlgSHA3_512:   "sha3-512",
}

// Known reports whether a is an assigned registry value
func (a BaseHashAlg) Known() bool {
	_, ok := hashAlgNames[a]
	return ok
}

func (a BaseHashAlg) String() string {
	if name, ok := hashAlgNames[a]; ok {
		return name
	}
	return fmt.Sprintf("hash-alg(%d)", uint8(a))
}

// Code returns a as an extensible code
func (a BaseHashAlg) Code() HashAlg {
	return enum.Of(a)
}

// ParseHashAlg looks up an assigned algorithm by its registry name
func ParseHashAlg(name string) (HashAlg, bool) {
	for a, n := range hashAlgNames {
		if n == name && a != HashAlgReserved {
			return a.Code(), true
		}
	}
	return HashAlg{}, false
}

func standardDigests() map[uint8]crypto.Digest {
	sha256 := crypto.SHA256()
	return map[uint8]crypto.Digest{
		uint8(HashAlgSHA256):     sha256,
		uint8(HashAlgSHA256_128): crypto.Truncated(sha256, "sha-256-128", 16),
		uint8(HashAlgSHA256_120): crypto.Truncated(sha256, "sha-256-120", 15),
		uint8(HashAlgSHA256_96):  crypto.Truncated(sha256, "sha-256-96", 12),
		uint8(HashAlgSHA256_64):  crypto.Truncated(sha256, "sha-256-64", 8),
		uint8(HashAlgSHA256_32):  crypto.Truncated(sha256, "sha-256-32", 4),
		uint8(HashAlgSHA384):     crypto.SHA384(),
		uint8(HashAlgSHA512):     crypto.SHA512(),
		uint8(HashAlgSHA3_224):   crypto.SHA3_224(),
		uint8(HashAlgSHA3_256):   crypto.SHA3_256(),
		uint8(HashAlgSHA3_384):   crypto.SHA3_384(),
		uint8(HashAlgSHA3_512):   crypto.SHA3_512(),
	}
}

// HashRegistryConfig lists custom algorithms to add to the standard set
type HashRegistryConfig struct {
	Custom map[uint8]crypto.Digest
}

// HashRegistry resolves message ID algorithm codes to digests.
// It is immutable once built and safe for concurrent use.
type HashRegistry struct {
	digests map[uint8]crypto.Digest
}

// DefaultHashRegistry holds the standard algorithms only
var DefaultHashRegistry = &HashRegistry{digests: standardDigests()}

// NewHashRegistry builds a registry with the standard algorithms plus cfg.Custom.
// Custom codes must be at least MinCustomHashAlg.
func NewHashRegistry(cfg HashRegistryConfig) (*HashRegistry, error) {
	digests := standardDigests()

	for code, d := range cfg.Custom {
		if code < MinCustomHashAlg {
			return nil, fmt.Errorf("%w: 0x%02X", ErrCustomHashAlgOutOfRange, code)
		}
		if d.New == nil {
			return nil, fmt.Errorf("custom hash algorithm 0x%02X has no hash function", code)
		}
		digests[code] = d
	}

	return &HashRegistry{digests: digests}, nil
}

// Digest resolves alg. Unassigned standard codes are unsupported; code 0 and
// unregistered custom codes are unknown.
func (r *HashRegistry) Digest(alg HashAlg) (crypto.Digest, error) {
	code := alg.Uint8()
	if d, ok := r.digests[code]; ok {
		return d, nil
	}

	switch {
	case code == uint8(HashAlgReserved):
		return crypto.Digest{}, fmt.Errorf("%w: 0x%02X", ErrUnknownHashAlg, code)
	case code <= MaxStandardHashAlg:
		return crypto.Digest{}, fmt.Errorf("%w: 0x%02X", ErrUnsupportedHashAlg, code)
	default:
		return crypto.Digest{}, fmt.Errorf("%w: 0x%02X", ErrUnknownHashAlg, code)
	}
}

// NewMessageID derives a message ID with the algorithm registered for alg
func (r *HashRegistry) NewMessageID(alg HashAlg, senderURI, roomURI string, c *MimiContent) (MessageID, error) {
	d, err := r.Digest(alg)
	if err != nil {
		return MessageID{}, err
	}
	return NewMessageIDWithDigest(alg.Uint8(), d, senderURI, roomURI, c)
}
