package crypto

import (
	"crypto/hmac"
	"crypto/rand"
	"io"

	"github.com/minio/sha256-simd"
)

// HMACSHA256 computes HMAC-SHA-256 of data under key
func HMACSHA256(key, data []byte) [32]byte {
	mac := hmac.New(sha256.New, key)
	mac.Write(data)

	var out [32]byte
	copy(out[:], mac.Sum(nil))
	return out
}

// VerifyHMACSHA256 checks tag in constant time
func VerifyHMACSHA256(key, data []byte, tag [32]byte) bool {
	expected := HMACSHA256(key, data)
	return hmac.Equal(expected[:], tag[:])
}

// FillRandom zeroes buf and fills it from r, or from crypto/rand when r is nil
func FillRandom(r io.Reader, buf []byte) error {
	clear(buf)
	if r == nil {
		r = rand.Reader
	}
	_, err := io.ReadFull(r, buf)
	return err
}

// GenerateNonce generates a random nonce
func GenerateNonce(size int) ([]byte, error) {
	nonce := make([]byte, size)
	if err := FillRandom(nil, nonce); err != nil {
		return nil, err
	}
	return nonce, nil
}
