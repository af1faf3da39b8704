package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/hengadev/mqpasswd"
	awssecrets "github.com/hengadev/mqpasswd/providers/secrets/aws"
	"github.com/hengadev/mqpasswd/providers/secrets/hashicorp"
)

// buildSources returns the password sources cfg refers to. Remote stores are only
// contacted when a user needs them, and their transient failures are retried.
func buildSources(ctx context.Context, cfg *mqpasswd.Config, logger *slog.Logger) (map[string]mqpasswd.PasswordSource, error) {
	sources := map[string]mqpasswd.PasswordSource{
		mqpasswd.SourceEnv:  mqpasswd.EnvSource{},
		mqpasswd.SourceFile: mqpasswd.FileSource{},
	}

	if cfg.UsesSource(mqpasswd.SourceVault) {
		store, err := hashicorp.NewKVStore()
		if err != nil {
			return nil, fmt.Errorf("vault: %w", err)
		}
		sources[mqpasswd.SourceVault] = mqpasswd.WithRetry(store, cfg.Retry, logger)
	}

	if cfg.UsesSource(mqpasswd.SourceAWS) {
		store, err := awssecrets.NewSecretsManagerStore(ctx, awssecrets.Config{})
		if err != nil {
			return nil, fmt.Errorf("aws: %w", err)
		}
		sources[mqpasswd.SourceAWS] = mqpasswd.WithRetry(store, cfg.Retry, logger)
	}

	return sources, nil
}
