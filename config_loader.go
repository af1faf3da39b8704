package mqpasswd

import (
	"fmt"
	"os"
	"strconv"
)

// ApplyEnvironment overrides configuration values from MQPASSWD_* environment variables.
//
// Recognized variables:
//   - MQPASSWD_OUTPUT: password file path
//   - MQPASSWD_ITERATIONS: PBKDF2 round count
//   - MQPASSWD_SALT_LENGTH: salt size in bytes
//   - MQPASSWD_LOG_LEVEL: debug, info, warn or error
//   - MQPASSWD_LOG_FORMAT: json or text
//
// Unset or empty variables leave the configuration untouched. Call Validate afterwards.
func ApplyEnvironment(c *Config) error {
	c.Output = getEnvOrDefault(EnvOutput, c.Output)
	c.Log.Level = getEnvOrDefault(EnvLogLevel, c.Log.Level)
	c.Log.Format = getEnvOrDefault(EnvLogFormat, c.Log.Format)

	iterations, err := getEnvInt(EnvIterations, c.Params.Iterations)
	if err != nil {
		return err
	}
	c.Params.Iterations = iterations

	saltLength, err := getEnvInt(EnvSaltLength, c.Params.SaltLength)
	if err != nil {
		return err
	}
	c.Params.SaltLength = saltLength

	return nil
}

// getEnvOrDefault returns the value of an environment variable, or a default value if not set.
func getEnvOrDefault(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvInt(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("%w: %s must be an integer, got '%s'", ErrInvalidConfiguration, key, value)
	}
	return n, nil
}
