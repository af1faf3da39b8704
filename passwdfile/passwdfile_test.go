package passwdfile

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/hengadev/errsx"
	"github.com/hengadev/mqpasswd/internal/mqerr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	sensorDigest = "$7$101$AQIDBAUGBwgJCgsM$mIOMyf0G01/LkKvFuu6raA+sJydkdh2qDZD+cyTDcrMk08Rnc3N+vIiTgRJqnolJL9TU+/R/F+mbz31mQG16jg=="
	legacyDigest = "$6$AQIDBAUGBwgJCgsM$MBDNKIlVSWMbvCfwuSa6Ik9Xp1Bqpy4UZzTOsgkkdtBSeXyT8DnI1hPVghxIr3ItJU90BWa60w5TnnzvyTCklw=="
)

func TestParse(t *testing.T) {
	input := strings.Join([]string{
		"# managed by mqpasswd",
		"sensor:" + sensorDigest,
		"",
		"hassio:" + legacyDigest + "\r",
	}, "\n")

	f, err := Parse(strings.NewReader(input))
	require.NoError(t, err)

	assert.Equal(t, 2, f.Len())
	assert.Equal(t, []string{"sensor", "hassio"}, f.Usernames())

	digest, ok := f.Lookup("hassio")
	require.True(t, ok)
	assert.Equal(t, legacyDigest, digest)
}

func TestParse_CollectsEveryBadLine(t *testing.T) {
	input := strings.Join([]string{
		"sensor:" + sensorDigest,
		"no-separator",
		"sensor:" + legacyDigest,
		"empty-digest:",
		"bad user:" + sensorDigest,
	}, "\n")

	f, err := Parse(strings.NewReader(input))
	require.Error(t, err)
	assert.Nil(t, f)

	errs, ok := err.(errsx.Map)
	require.True(t, ok, "expected error to be of type errsx.Map")
	assert.Len(t, errs, 4)
	for _, key := range []string{"line 2", "line 3", "line 4", "line 5"} {
		_, ok := errs[key]
		assert.True(t, ok, "expected key '%s' in errsx.Map", key)
	}
}

func TestValidateUsername(t *testing.T) {
	tests := []struct {
		name     string
		username string
		wantErr  bool
	}{
		{"simple", "sensor", false},
		{"unicode", "gerät-küche", false},
		{"email like", "user@example.com", false},
		{"empty", "", true},
		{"colon", "a:b", true},
		{"space", "a b", true},
		{"tab", "a\tb", true},
		{"newline", "a\nb", true},
		{"too long", strings.Repeat("u", MaxUsernameBytes+1), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateUsername(tt.username)
			if tt.wantErr {
				assert.ErrorIs(t, err, mqerr.ErrInvalidUsername)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestValidateUsername_LongMultibyteName(t *testing.T) {
	username := strings.Repeat("é", MaxUsernameBytes)

	err := ValidateUsername(username)

	require.ErrorIs(t, err, mqerr.ErrInvalidUsername)
	assert.True(t, utf8.ValidString(err.Error()))
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "abc", truncate("abc", 32))
	assert.Equal(t, "ab", truncate("abcd", 2))
	// "é" is two bytes; cutting at 3 would split the second rune.
	assert.Equal(t, "é", truncate("éé", 3))
	assert.Equal(t, "", truncate("é", 1))
}

func TestFile_SetReplacesInPlace(t *testing.T) {
	f := New()
	require.NoError(t, f.Set("a", sensorDigest))
	require.NoError(t, f.Set("b", sensorDigest))
	require.NoError(t, f.Set("a", legacyDigest))

	assert.Equal(t, []string{"a", "b"}, f.Usernames())
	digest, _ := f.Lookup("a")
	assert.Equal(t, legacyDigest, digest)
}

func TestFile_SetRejectsBadDigest(t *testing.T) {
	f := New()
	assert.ErrorIs(t, f.Set("a", ""), mqerr.ErrInvalidFormat)
	assert.ErrorIs(t, f.Set("a", "x\ny"), mqerr.ErrInvalidFormat)
	assert.ErrorIs(t, f.Set("a", "x:y"), mqerr.ErrInvalidFormat)
	assert.Zero(t, f.Len())
}

func TestFile_Delete(t *testing.T) {
	f := New()
	for _, name := range []string{"a", "b", "c"} {
		require.NoError(t, f.Set(name, sensorDigest))
	}

	require.NoError(t, f.Delete("a"))
	assert.Equal(t, []string{"b", "c"}, f.Usernames())

	require.NoError(t, f.Set("c", legacyDigest))
	digest, ok := f.Lookup("c")
	require.True(t, ok)
	assert.Equal(t, legacyDigest, digest)

	assert.ErrorIs(t, f.Delete("missing"), mqerr.ErrUserNotFound)
}

func TestFile_CloneIsIndependent(t *testing.T) {
	f := New()
	require.NoError(t, f.Set("a", sensorDigest))

	c := f.Clone()
	require.NoError(t, c.Set("b", sensorDigest))
	require.NoError(t, c.Delete("a"))

	assert.Equal(t, []string{"a"}, f.Usernames())
	assert.Equal(t, []string{"b"}, c.Usernames())
}

func TestFile_Bytes(t *testing.T) {
	f := New()
	require.NoError(t, f.Set("sensor", sensorDigest))
	require.NoError(t, f.Set("hassio", legacyDigest))

	want := "sensor:" + sensorDigest + "\nhassio:" + legacyDigest + "\n"
	assert.Equal(t, want, string(f.Bytes()))
	assert.Empty(t, New().Bytes())
}

func TestFile_SaveAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "passwd")

	f := New()
	require.NoError(t, f.Set("sensor", sensorDigest))
	require.NoError(t, f.Save(path))

	if runtime.GOOS != "windows" {
		info, err := os.Stat(path)
		require.NoError(t, err)
		assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
	}

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, f.Entries(), loaded.Entries())

	require.NoError(t, loaded.Set("hassio", legacyDigest))
	require.NoError(t, loaded.Save(path))

	reloaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"sensor", "hassio"}, reloaded.Usernames())

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temporary files must not be left behind")
}

func TestLoad_MissingFile(t *testing.T) {
	f, err := Load(filepath.Join(t.TempDir(), "does-not-exist"))
	require.NoError(t, err)
	assert.Zero(t, f.Len())
}
