package hashicorp

import (
	"context"
	"fmt"
	"strings"

	"github.com/hashicorp/vault/api"

	"github.com/hengadev/mqpasswd"
)

// DefaultField is the secret field read when a reference names none.
const DefaultField = "password"

// KVStore implements mqpasswd.PasswordSource on top of Vault's KV secrets engine.
//
// References have the form "<path>#<field>", for example "secret/data/mqtt/sensor#password".
// KV v2 paths must include the "/data/" segment; KV v1 paths are read as-is.
type KVStore struct {
	client *api.Client
}

var _ mqpasswd.PasswordSource = (*KVStore)(nil)

// NewKVStore creates a KVStore configured from the environment (see createVaultClient).
func NewKVStore() (*KVStore, error) {
	client, err := createVaultClient()
	if err != nil {
		return nil, err
	}

	return &KVStore{client: client}, nil
}

// NewKVStoreWithClient creates a KVStore around an existing client.
func NewKVStoreWithClient(client *api.Client) (*KVStore, error) {
	if client == nil {
		return nil, fmt.Errorf("%w: vault client cannot be nil", mqpasswd.ErrInvalidConfiguration)
	}
	return &KVStore{client: client}, nil
}

// Password reads the password referenced by ref.
func (k *KVStore) Password(ctx context.Context, ref string) (string, error) {
	path, field, err := splitRef(ref)
	if err != nil {
		return "", err
	}

	secret, err := k.client.Logical().ReadWithContext(ctx, path)
	if err != nil {
		return "", fmt.Errorf("%w: failed to read %s from Vault: %w",
			mqpasswd.ErrSecretStorageUnavailable, path, err)
	}

	if secret == nil || secret.Data == nil {
		return "", fmt.Errorf("%w: no secret at %s", mqpasswd.ErrSecretNotFound, path)
	}

	return extractField(secret, path, field)
}

func splitRef(ref string) (string, string, error) {
	path, field, found := strings.Cut(ref, "#")
	path = strings.Trim(path, "/")
	if path == "" {
		return "", "", fmt.Errorf("%w: vault reference '%s' has no path", mqpasswd.ErrInvalidConfiguration, ref)
	}
	if !found || field == "" {
		field = DefaultField
	}
	return path, field, nil
}

// extractField reads field from a KV v2 secret ("data" wrapped) or, failing that, a KV v1 secret.
func extractField(secret *api.Secret, path, field string) (string, error) {
	data := secret.Data
	if inner, ok := secret.Data["data"].(map[string]interface{}); ok {
		data = inner
	}

	raw, ok := data[field]
	if !ok {
		return "", fmt.Errorf("%w: field '%s' not found at %s", mqpasswd.ErrSecretNotFound, field, path)
	}

	value, ok := raw.(string)
	if !ok {
		return "", fmt.Errorf("%w: field '%s' at %s is %T, not a string",
			mqpasswd.ErrInvalidInputType, field, path, raw)
	}
	return value, nil
}
