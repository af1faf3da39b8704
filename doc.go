// Package mqpasswd produces and verifies Mosquitto password file digests.
//
// Mosquitto's "$7$" entries are PBKDF2-HMAC-SHA512 hashes. Encode builds one the same
// way the modular-crypt tooling does: derive the key, serialize it as
// "$pbkdf2-sha512$<rounds>$<salt>$<key>" in the adapted base64 alphabet, then rewrite it
// for the broker by swapping the algorithm tag for "7", turning every '.' back into '+',
// and appending the "==" padding of the 64-byte key.
//
// # Quick Start
//
//	digest, err := mqpasswd.Encode("s3cret-passw0rd")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Printf("sensor:%s\n", digest)
//	// sensor:$7$101$<16 chars of salt>$<86 chars of key>==
//
// # Input policy
//
//   - Empty passwords are rejected with ErrInvalidInput.
//   - Passwords must be valid UTF-8 and are hashed as their raw bytes, without Unicode normalization.
//   - Passwords longer than MaxPasswordBytes are rejected with ErrInvalidInput.
//
// # Host integration
//
// Automation hosts that dispatch filters by name can use Filters, which maps
// FilterName ("mosquitto_passwd") to MosquittoPasswd. The filter accepts string and
// []byte values only; anything else fails with ErrInvalidInputType.
//
// # Password files
//
// The passwdfile package reads and writes the broker's "username:digest" file, and
// Generator renders one from a Config whose users pull their passwords from a
// PasswordSource (environment, file, or HashiCorp Vault).
package mqpasswd
