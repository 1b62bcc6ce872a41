package utils // package utils provides helper functions for token creation and hashing

import (
	"crypto/rand"   // secure random number generation
	"crypto/sha256" // SHA-256 hashing for session tokens
	"encoding/hex"  // hex encoding of random bytes and digests
)

// NewSessionToken returns an opaque, unguessable session token: 32 bytes of
// cryptographically secure randomness (256 bits of entropy) encoded as 64
// hex characters.  The raw value goes to the client as a cookie; only its
// hash is persisted.
func NewSessionToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

// HashToken returns the SHA-256 hash of a raw session token as a hex
// string.  Storing only the hash in the database prevents attackers from
// replaying stolen database entries as live sessions.
func HashToken(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}
