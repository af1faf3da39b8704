package mqpasswd

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/hengadev/errsx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hengadev/mqpasswd/passwdfile"
)

func newTestGenerator(t *testing.T, passwords StaticSource) *Generator {
	t.Helper()
	enc, err := NewEncoder()
	require.NoError(t, err)

	g, err := NewGenerator(enc, map[string]PasswordSource{SourceEnv: passwords}, nil)
	require.NoError(t, err)
	return g
}

func testConfig(users ...UserConfig) *Config {
	return &Config{Output: "passwd", Users: users}
}

func TestGenerator_FreshFile(t *testing.T) {
	g := newTestGenerator(t, StaticSource{"SENSOR": "sensor-pw", "HASSIO": "hassio-pw"})
	cfg := testConfig(
		UserConfig{Username: "sensor", Source: SourceEnv, Ref: "SENSOR"},
		UserConfig{Username: "hassio", Source: SourceEnv, Ref: "HASSIO"},
	)

	f, report, err := g.Generate(context.Background(), cfg, nil)
	require.NoError(t, err)

	assert.Equal(t, []string{"sensor", "hassio"}, f.Usernames())
	assert.Equal(t, []string{"sensor", "hassio"}, report.Added)
	assert.True(t, report.Changed())

	digest, _ := f.Lookup("hassio")
	ok, err := Verify("hassio-pw", digest)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestGenerator_IdempotentRerun(t *testing.T) {
	g := newTestGenerator(t, StaticSource{"SENSOR": "sensor-pw"})
	cfg := testConfig(UserConfig{Username: "sensor", Source: SourceEnv, Ref: "SENSOR"})

	first, _, err := g.Generate(context.Background(), cfg, nil)
	require.NoError(t, err)

	second, report, err := g.Generate(context.Background(), cfg, first)
	require.NoError(t, err)

	assert.Equal(t, first.Bytes(), second.Bytes())
	assert.Equal(t, []string{"sensor"}, report.Unchanged)
	assert.False(t, report.Changed())
}

func TestGenerator_UpdatesChangedAndWeakEntries(t *testing.T) {
	existing := passwdfile.New()
	require.NoError(t, existing.Set("sensor", correctHorseDigest))
	require.NoError(t, existing.Set("legacy", legacyDigest))
	require.NoError(t, existing.Set("rotated", correctHorseDigest))

	g := newTestGenerator(t, StaticSource{
		"SENSOR":  "correct horse",
		"LEGACY":  "legacy-secret",
		"ROTATED": "new password",
	})
	cfg := testConfig(
		UserConfig{Username: "sensor", Source: SourceEnv, Ref: "SENSOR"},
		UserConfig{Username: "legacy", Source: SourceEnv, Ref: "LEGACY"},
		UserConfig{Username: "rotated", Source: SourceEnv, Ref: "ROTATED"},
	)

	f, report, err := g.Generate(context.Background(), cfg, existing)
	require.NoError(t, err)

	assert.Equal(t, []string{"sensor"}, report.Unchanged)
	assert.Equal(t, []string{"legacy", "rotated"}, report.Updated)

	digest, _ := f.Lookup("legacy")
	assert.Regexp(t, digestFormat, digest, "legacy entries are upgraded to $7$")

	original, _ := existing.Lookup("rotated")
	assert.Equal(t, correctHorseDigest, original, "existing file must not be mutated")
}

func TestGenerator_Prune(t *testing.T) {
	existing := passwdfile.New()
	require.NoError(t, existing.Set("old", correctHorseDigest))

	g := newTestGenerator(t, StaticSource{"NEW": "new-pw"})
	cfg := testConfig(UserConfig{Username: "new", Source: SourceEnv, Ref: "NEW"})

	f, report, err := g.Generate(context.Background(), cfg, existing)
	require.NoError(t, err)
	assert.Equal(t, []string{"old", "new"}, f.Usernames())
	assert.Empty(t, report.Removed)

	cfg.Prune = true
	f, report, err = g.Generate(context.Background(), cfg, existing)
	require.NoError(t, err)
	assert.Equal(t, []string{"new"}, f.Usernames())
	assert.Equal(t, []string{"old"}, report.Removed)
}

func TestGenerator_CollectsUserFailures(t *testing.T) {
	g := newTestGenerator(t, StaticSource{"EMPTY": "", "GOOD": "good-pw"})
	cfg := testConfig(
		UserConfig{Username: "good", Source: SourceEnv, Ref: "GOOD"},
		UserConfig{Username: "missing", Source: SourceEnv, Ref: "MISSING"},
		UserConfig{Username: "empty", Source: SourceEnv, Ref: "EMPTY"},
		UserConfig{Username: "vaulted", Source: SourceVault, Ref: "secret/data/x"},
	)

	f, _, err := g.Generate(context.Background(), cfg, nil)
	require.Error(t, err)
	assert.Nil(t, f)

	errs, ok := err.(errsx.Map)
	require.True(t, ok, "expected error to be of type errsx.Map")
	assert.Len(t, errs, 3)
	for _, key := range []string{"user 'missing'", "user 'empty'", "user 'vaulted'"} {
		_, ok := errs[key]
		assert.True(t, ok, "expected key '%s' in errsx.Map", key)
	}
}

func TestGenerator_InvalidConfig(t *testing.T) {
	g := newTestGenerator(t, StaticSource{})

	_, _, err := g.Generate(context.Background(), &Config{}, nil)
	assert.ErrorIs(t, err, ErrInvalidConfiguration)
}

func TestGenerator_CancelledContext(t *testing.T) {
	g := newTestGenerator(t, StaticSource{"A": "a-password"})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, err := g.Generate(ctx, testConfig(UserConfig{Username: "a", Source: SourceEnv, Ref: "A"}), nil)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestGenerator_NeverLogsSecrets(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	enc, err := NewEncoder(WithLogger(logger))
	require.NoError(t, err)
	g, err := NewGenerator(enc, map[string]PasswordSource{SourceEnv: StaticSource{"A": "top-secret-value"}}, logger)
	require.NoError(t, err)

	f, _, err := g.Generate(context.Background(), testConfig(UserConfig{Username: "a", Source: SourceEnv, Ref: "A"}), nil)
	require.NoError(t, err)

	digest, _ := f.Lookup("a")
	assert.Contains(t, buf.String(), "password file rendered")
	assert.NotContains(t, buf.String(), "top-secret-value")
	assert.NotContains(t, buf.String(), digest)
}

func TestNewGenerator_NilEncoder(t *testing.T) {
	_, err := NewGenerator(nil, nil, nil)
	assert.ErrorIs(t, err, ErrInvalidConfiguration)
}

func TestGenerator_ResolvesEachSourceByName(t *testing.T) {
	ctx := context.Background()
	vault := new(PasswordSourceMock)
	vault.On("Password", ctx, "secret/data/mqtt/hassio#password").Return("vault-pw", nil).Once()
	secrets := new(PasswordSourceMock)
	secrets.On("Password", ctx, "mqtt/sensor").Return("", ErrSecretStorageUnavailable).Once()

	enc, err := NewEncoder()
	require.NoError(t, err)
	g, err := NewGenerator(enc, map[string]PasswordSource{
		SourceVault: vault,
		SourceAWS:   secrets,
	}, nil)
	require.NoError(t, err)

	cfg := testConfig(
		UserConfig{Username: "hassio", Source: SourceVault, Ref: "secret/data/mqtt/hassio#password"},
		UserConfig{Username: "sensor", Source: SourceAWS, Ref: "mqtt/sensor"},
	)

	f, _, err := g.Generate(ctx, cfg, nil)
	require.Error(t, err)
	assert.Nil(t, f)

	errs, ok := err.(errsx.Map)
	require.True(t, ok, "expected error to be of type errsx.Map")
	assert.Len(t, errs, 1)
	_, ok = errs["user 'sensor'"]
	assert.True(t, ok)

	vault.AssertExpectations(t)
	secrets.AssertExpectations(t)
}
