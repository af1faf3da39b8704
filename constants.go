package mqpasswd

// Digest constants
const (
	// AlgorithmPBKDF2SHA512 is Mosquitto's identifier for PBKDF2-HMAC-SHA512 entries.
	AlgorithmPBKDF2SHA512 = "7"

	// AlgorithmSHA512 is Mosquitto's identifier for legacy salted SHA-512 entries.
	// These are verified but never produced.
	AlgorithmSHA512 = "6"

	// DefaultIterations is the PBKDF2 round count written by Encode.
	DefaultIterations = 101

	// DefaultSaltLength is the salt size in bytes written by Encode.
	DefaultSaltLength = 12

	// MaxPasswordBytes is the largest accepted password, in bytes.
	MaxPasswordBytes = 4096

	// modularCryptTag names PBKDF2-SHA512 in the modular-crypt serialization.
	modularCryptTag = "pbkdf2-sha512"

	// keyPadding completes the base64 padding of the 64-byte derived key.
	keyPadding = "=="
)

// Parameter bounds
const (
	MinIterations = 1
	MaxIterations = 10_000_000
	// Salt lengths are multiples of 3 so the salt encodes to base64 without padding.
	MinSaltLength = 9
	MaxSaltLength = 63
)

// Password source names used in configuration files.
const (
	SourceEnv   = "env"
	SourceFile  = "file"
	SourceVault = "vault"
	SourceAWS   = "aws"
)

// Environment variable names
const (
	// EnvOutput overrides the password file path of the configuration.
	EnvOutput = "MQPASSWD_OUTPUT"

	// EnvIterations overrides the PBKDF2 round count.
	EnvIterations = "MQPASSWD_ITERATIONS"

	// EnvSaltLength overrides the salt size in bytes.
	EnvSaltLength = "MQPASSWD_SALT_LENGTH"

	// EnvLogLevel sets the log level (debug, info, warn, error).
	EnvLogLevel = "MQPASSWD_LOG_LEVEL"

	// EnvLogFormat sets the log format (json, text).
	EnvLogFormat = "MQPASSWD_LOG_FORMAT"
)

// DefaultConfigPath is where the CLI looks for its configuration file.
const DefaultConfigPath = "mqpasswd.yaml"
