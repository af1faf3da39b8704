// Package radix64 implements the base64 variants that appear in PBKDF2 digest strings.
//
// The modular-crypt form of a PBKDF2 hash ("$pbkdf2-sha512$...") uses the adapted
// alphabet: standard base64 with '+' written as '.' and no '=' padding. Mosquitto
// password files use the standard alphabet instead.
package radix64

import (
	"encoding/base64"
	"strings"
)

// EncodeAdapted encodes src with the adapted alphabet.
func EncodeAdapted(src []byte) string {
	return strings.ReplaceAll(base64.RawStdEncoding.EncodeToString(src), "+", ".")
}

// DecodeAdapted reverses EncodeAdapted. Trailing padding is tolerated.
func DecodeAdapted(s string) ([]byte, error) {
	return DecodeStandard(strings.ReplaceAll(s, ".", "+"))
}

// DecodeStandard decodes standard-alphabet base64 with or without '=' padding.
func DecodeStandard(s string) ([]byte, error) {
	return base64.RawStdEncoding.DecodeString(strings.TrimRight(s, "="))
}

// EncodeStandard encodes src with the standard alphabet and padding.
func EncodeStandard(src []byte) string {
	return base64.StdEncoding.EncodeToString(src)
}
