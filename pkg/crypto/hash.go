package crypto

import (
	"crypto/sha512"
	"encoding/hex"
	"hash"

	"github.com/minio/sha256-simd"
	"golang.org/x/crypto/blake2b"
	"golang.org/x/crypto/sha3"
	"lukechampine.com/blake3"
)

// Digest describes a hash function and how much of its output is used
type Digest struct {
	Name string
	New  func() hash.Hash

	// Size is the number of output bytes kept; 0 keeps the full output
	Size int
}

// Sum finalizes h and truncates the result to d.Size
func (d Digest) Sum(h hash.Hash) []byte {
	sum := h.Sum(nil)
	if d.Size > 0 && d.Size < len(sum) {
		sum = sum[:d.Size]
	}
	return sum
}

// OutputSize returns the number of bytes Sum produces
func (d Digest) OutputSize() int {
	full := d.New().Size()
	if d.Size > 0 && d.Size < full {
		return d.Size
	}
	return full
}

// Truncated returns d keeping only the first n bytes of output
func Truncated(d Digest, name string, n int) Digest {
	return Digest{Name: name, New: d.New, Size: n}
}

// SHA256 returns SHA-256
func SHA256() Digest {
	return Digest{Name: "sha-256", New: sha256.New}
}

// SHA384 returns SHA-384
func SHA384() Digest {
	return Digest{Name: "sha-384", New: sha512.New384}
}

// SHA512 returns SHA-512
func SHA512() Digest {
	return Digest{Name: "sha-512", New: sha512.New}
}

// SHA3_224 returns SHA3-224
func SHA3_224() Digest {
	return Digest{Name: "sha3-224", New: sha3.New224}
}

// SHA3_256 returns SHA3-256
func SHA3_256() Digest {
	return Digest{Name: "sha3-256", New: sha3.New256}
}

// SHA3_384 returns SHA3-384
func SHA3_384() Digest {
	return Digest{Name: "sha3-384", New: sha3.New384}
}

// SHA3_512 returns SHA3-512
func SHA3_512() Digest {
	return Digest{Name: "sha3-512", New: sha3.New512}
}

// Blake2b256 returns unkeyed BLAKE2b-256
func Blake2b256() Digest {
	return Digest{
		Name: "blake2b-256",
		New: func() hash.Hash {
			// New256 only fails for keys longer than 64 bytes
			h, _ := blake2b.New256(nil)
			return h
		},
	}
}

// Blake3 returns BLAKE3 with a 32-byte output
func Blake3() Digest {
	return Digest{
		Name: "blake3",
		New: func() hash.Hash {
			return blake3.New(32, nil)
		},
	}
}

// Sum hashes the concatenation of chunks with d
func Sum(d Digest, chunks ...[]byte) []byte {
	h := d.New()
	for _, c := range chunks {
		h.Write(c)
	}
	return d.Sum(h)
}

// SumString hashes the concatenation of chunks and returns a hex string
func SumString(d Digest, chunks ...[]byte) string {
	return hex.EncodeToString(Sum(d, chunks...))
}
