package mqpasswd

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDigest(t *testing.T) {
	d, err := ParseDigest(correctHorseDigest)
	require.NoError(t, err)
	assert.Equal(t, AlgorithmPBKDF2SHA512, d.Algorithm)
	assert.Equal(t, 101, d.Iterations)
	assert.Equal(t, countingSalt, d.Salt)
	assert.Len(t, d.Key, 64)

	legacy, err := ParseDigest(legacyDigest)
	require.NoError(t, err)
	assert.Equal(t, AlgorithmSHA512, legacy.Algorithm)
	assert.Zero(t, legacy.Iterations)
	assert.Equal(t, countingSalt, legacy.Salt)
	assert.Equal(t, legacyDigest, legacy.String())
}

func TestParseDigest_ModularCryptNormalized(t *testing.T) {
	d, err := ParseDigest("$pbkdf2-sha512$101$AQIDBAUGBwgJCgsM$mIOMyf0G01/LkKvFuu6raA.sJydkdh2qDZD.cyTDcrMk08Rnc3N.vIiTgRJqnolJL9TU./R/F.mbz31mQG16jg")
	require.NoError(t, err)
	assert.Equal(t, correctHorseDigest, d.String())
}

func TestParseDigest_Invalid(t *testing.T) {
	tests := []struct {
		name   string
		digest string
		target error
	}{
		{"empty", "", ErrInvalidFormat},
		{"no leading dollar", "7$101$AQIDBAUGBwgJCgsM$abc==", ErrInvalidFormat},
		{"unknown algorithm", "$5$rounds=5000$salt$hash", ErrUnsupportedAlgorithm},
		{"missing key", "$7$101$AQIDBAUGBwgJCgsM", ErrInvalidFormat},
		{"non numeric iterations", "$7$many$AQIDBAUGBwgJCgsM$abc==", ErrInvalidFormat},
		{"zero iterations", "$7$0$AQIDBAUGBwgJCgsM$abc==", ErrInvalidFormat},
		{"signed iterations", "$7$+101$AQIDBAUGBwgJCgsM$mIOMyf0G01/LkKvFuu6raA+sJydkdh2qDZD+cyTDcrMk08Rnc3N+vIiTgRJqnolJL9TU+/R/F+mbz31mQG16jg==", ErrInvalidFormat},
		{"negative iterations", "$7$-101$AQIDBAUGBwgJCgsM$mIOMyf0G01/LkKvFuu6raA+sJydkdh2qDZD+cyTDcrMk08Rnc3N+vIiTgRJqnolJL9TU+/R/F+mbz31mQG16jg==", ErrInvalidFormat},
		{"iterations above maximum", "$7$2000000000$AQIDBAUGBwgJCgsM$mIOMyf0G01/LkKvFuu6raA+sJydkdh2qDZD+cyTDcrMk08Rnc3N+vIiTgRJqnolJL9TU+/R/F+mbz31mQG16jg==", ErrInvalidFormat},
		{"iterations overflow", "$7$99999999999999999999999$AQIDBAUGBwgJCgsM$mIOMyf0G01/LkKvFuu6raA+sJydkdh2qDZD+cyTDcrMk08Rnc3N+vIiTgRJqnolJL9TU+/R/F+mbz31mQG16jg==", ErrInvalidFormat},
		{"empty salt", "$7$101$$mIOMyf0G01/LkKvFuu6raA+sJydkdh2qDZD+cyTDcrMk08Rnc3N+vIiTgRJqnolJL9TU+/R/F+mbz31mQG16jg==", ErrInvalidFormat},
		{"dot in key", "$7$101$AQIDBAUGBwgJCgsM$mIOMyf0G01/LkKvFuu6raA.sJydkdh2qDZD+cyTDcrMk08Rnc3N+vIiTgRJqnolJL9TU+/R/F+mbz31mQG16jg==", ErrInvalidFormat},
		{"short key", "$7$101$AQIDBAUGBwgJCgsM$AQIDBAUGBwgJCgsM", ErrInvalidFormat},
		{"legacy with rounds", "$6$101$AQIDBAUGBwgJCgsM$abc", ErrInvalidFormat},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseDigest(tt.digest)
			assert.ErrorIs(t, err, tt.target)
		})
	}
}
