// Package hashicorp provides a HashiCorp Vault KV password source for mqpasswd.
//
// # Basic Usage
//
//	kv, err := hashicorp.NewKVStore()
//	if err != nil {
//	    // handle error
//	}
//
//	gen, err := mqpasswd.NewGenerator(encoder, map[string]mqpasswd.PasswordSource{
//	    mqpasswd.SourceVault: kv,
//	}, logger)
//
// A user entry such as
//
//	- username: hassio
//	  source: vault
//	  ref: secret/data/mqtt/hassio#password
//
// then reads the "password" field of the KV v2 secret "mqtt/hassio" mounted at "secret".
//
// # Configuration
//
// Vault is configured via environment variables:
//
//   - VAULT_ADDR: Vault server address (required)
//   - VAULT_NAMESPACE: Vault namespace (optional)
//   - VAULT_TOKEN: token authentication
//   - VAULT_ROLE_ID and VAULT_SECRET_ID: AppRole authentication
package hashicorp
