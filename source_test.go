package mqpasswd

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnvSource(t *testing.T) {
	ctx := context.Background()
	t.Setenv("MQPASSWD_TEST_SENSOR", "sensor-password")

	got, err := EnvSource{}.Password(ctx, "MQPASSWD_TEST_SENSOR")
	require.NoError(t, err)
	assert.Equal(t, "sensor-password", got)

	_, err = EnvSource{}.Password(ctx, "MQPASSWD_TEST_DOES_NOT_EXIST")
	assert.ErrorIs(t, err, ErrSecretNotFound)
}

func TestFileSource(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	path := filepath.Join(dir, "hassio")
	require.NoError(t, os.WriteFile(path, []byte("from-file\r\n"), 0o600))

	got, err := FileSource{}.Password(ctx, path)
	require.NoError(t, err)
	assert.Equal(t, "from-file", got)

	inner := filepath.Join(dir, "inner")
	require.NoError(t, os.WriteFile(inner, []byte("keeps\ninner\n\n"), 0o600))
	got, err = FileSource{}.Password(ctx, inner)
	require.NoError(t, err)
	assert.Equal(t, "keeps\ninner\n", got)

	_, err = FileSource{}.Password(ctx, filepath.Join(dir, "missing"))
	assert.ErrorIs(t, err, ErrSecretNotFound)
}

func TestStaticSource(t *testing.T) {
	src := StaticSource{"a": "alpha"}

	got, err := src.Password(context.Background(), "a")
	require.NoError(t, err)
	assert.Equal(t, "alpha", got)

	_, err = src.Password(context.Background(), "b")
	assert.ErrorIs(t, err, ErrSecretNotFound)
}
