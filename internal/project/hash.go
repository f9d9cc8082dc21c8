package project

import (
	"crypto/sha256"
	"encoding/hex"
)

// Digest is a SHA-256 content hash.
type Digest [32]byte

// Sum hashes data.
func Sum(data []byte) Digest {
	return Digest(sha256.Sum256(data))
}

// Combine hashes content followed by deps: H(content || dep1 || dep2 ...).
// The order of deps is significant.
func Combine(content Digest, deps ...Digest) Digest {
	h := sha256.New()
	_, _ = h.Write(content[:])
	for _, d := range deps {
		_, _ = h.Write(d[:])
	}
	var out Digest
	copy(out[:], h.Sum(nil))
	return out
}

// IsZero reports whether d was never computed.
func (d Digest) IsZero() bool {
	return d == Digest{}
}

func (d Digest) String() string {
	return hex.EncodeToString(d[:])
}
