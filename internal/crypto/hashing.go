package crypto

import (
	"crypto/sha512"
	"crypto/subtle"

	"golang.org/x/crypto/pbkdf2"
)

// KeyLength is the size of a PBKDF2-SHA512 derived key, one SHA-512 block.
const KeyLength = sha512.Size

// DeriveKey runs PBKDF2-HMAC-SHA512 over the raw password bytes.
func DeriveKey(password, salt []byte, iterations int) []byte {
	return pbkdf2.Key(password, salt, iterations, KeyLength, sha512.New)
}

// HashSaltedSHA512 computes SHA-512(password || salt), the digest behind
// Mosquitto's legacy "$6$" entries.
func HashSaltedSHA512(password, salt []byte) []byte {
	h := sha512.New()
	h.Write(password)
	h.Write(salt)
	return h.Sum(nil)
}

// Equal compares two digests in constant time.
func Equal(a, b []byte) bool {
	return subtle.ConstantTimeCompare(a, b) == 1
}
