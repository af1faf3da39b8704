package mqpasswd

import (
	"fmt"

	"github.com/hengadev/mqpasswd/internal/mqerr"
)

// FilterName is the name automation hosts look the encoder up by.
const FilterName = "mosquitto_passwd"

// FilterFunc is a single-argument filter as dispatched by a host.
type FilterFunc func(value any) (string, error)

// Filters returns the host's dispatch table.
func Filters() map[string]FilterFunc {
	return map[string]FilterFunc{
		FilterName: MosquittoPasswd,
	}
}

// MosquittoPasswd encodes value with the default encoder. Only string and []byte are
// accepted; numbers, nil and every other type fail with ErrInvalidInputType instead of being coerced.
func MosquittoPasswd(value any) (string, error) {
	switch v := value.(type) {
	case string:
		return Encode(v)
	case []byte:
		return Encode(string(v))
	default:
		return "", mqerr.NewInvalidInputTypeError(mqerr.Filter, fmt.Sprintf("%T", value))
	}
}
