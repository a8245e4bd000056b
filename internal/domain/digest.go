package domain

import (
	"crypto/sha512"
	"encoding/hex"
	"fmt"
	"math/big"
)

// DigestSize is the length in bytes of a Digest.
const DigestSize = sha512.Size

// Digest is the SHA-512 digest of a byte sequence.
type Digest [DigestSize]byte

// Sum hashes data with SHA-512.
// The result depends only on data; the empty sequence hashes to a fixed constant.
func Sum(data []byte) (Digest, error) {
	var d Digest

	h := sha512.New()
	if _, err := h.Write(data); err != nil {
		return d, fmt.Errorf("%w: %v", ErrDigest, err)
	}
	out := h.Sum(nil)
	if len(out) != DigestSize {
		return d, fmt.Errorf("%w: got %d bytes, want %d", ErrDigest, len(out), DigestSize)
	}

	copy(d[:], out)
	return d, nil
}

// Bytes returns a copy of the digest as a slice.
func (d Digest) Bytes() []byte {
	b := make([]byte, DigestSize)
	copy(b, d[:])
	return b
}

// Hex renders the digest as 128 lowercase hexadecimal characters.
func (d Digest) Hex() string {
	return hex.EncodeToString(d[:])
}

// BigInt interprets the digest as an unsigned big-endian integer.
func (d Digest) BigInt() *big.Int {
	return new(big.Int).SetBytes(d[:])
}

// String implements fmt.Stringer.
func (d Digest) String() string {
	return d.Hex()
}
