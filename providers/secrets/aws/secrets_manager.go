// Package aws provides an AWS Secrets Manager password source for mqpasswd.
package aws

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager/types"

	"github.com/hengadev/mqpasswd"
)

// secretsManagerClient interface for AWS Secrets Manager operations (allows mocking)
type secretsManagerClient interface {
	GetSecretValue(ctx context.Context, params *secretsmanager.GetSecretValueInput, optFns ...func(*secretsmanager.Options)) (*secretsmanager.GetSecretValueOutput, error)
}

// SecretsManagerStore implements mqpasswd.PasswordSource using AWS Secrets Manager.
//
// A reference is a secret id or ARN, optionally followed by "#field". Without a field the
// whole SecretString is the password; with one, SecretString must be a JSON object and
// the named string member is used.
type SecretsManagerStore struct {
	client secretsManagerClient
	region string
}

var _ mqpasswd.PasswordSource = (*SecretsManagerStore)(nil)

// NewSecretsManagerStore creates a new AWS Secrets Manager store instance.
//
// Usage:
//
//	// Using default AWS configuration
//	store, err := aws.NewSecretsManagerStore(ctx, aws.Config{})
//
//	// With specific region
//	store, err := aws.NewSecretsManagerStore(ctx, aws.Config{Region: "eu-west-1"})
func NewSecretsManagerStore(ctx context.Context, cfg Config) (*SecretsManagerStore, error) {
	var awsConfig aws.Config
	var err error

	if cfg.AWSConfig != nil {
		awsConfig = *cfg.AWSConfig
	} else {
		opts := []func(*config.LoadOptions) error{}
		if cfg.Region != "" {
			opts = append(opts, config.WithRegion(cfg.Region))
		}

		awsConfig, err = config.LoadDefaultConfig(ctx, opts...)
		if err != nil {
			return nil, fmt.Errorf("%w: failed to load AWS config: %w", mqpasswd.ErrSecretStorageUnavailable, err)
		}
	}

	return &SecretsManagerStore{
		client: secretsmanager.NewFromConfig(awsConfig),
		region: awsConfig.Region,
	}, nil
}

// Region returns the AWS region the store reads from.
func (s *SecretsManagerStore) Region() string {
	return s.region
}

// Password retrieves the password referenced by ref.
func (s *SecretsManagerStore) Password(ctx context.Context, ref string) (string, error) {
	secretID, field, _ := strings.Cut(ref, "#")
	if secretID == "" {
		return "", fmt.Errorf("%w: secrets manager reference '%s' has no secret id", mqpasswd.ErrInvalidConfiguration, ref)
	}

	result, err := s.client.GetSecretValue(ctx, &secretsmanager.GetSecretValueInput{
		SecretId: aws.String(secretID),
	})
	if err != nil {
		var notFound *types.ResourceNotFoundException
		if errors.As(err, &notFound) {
			return "", fmt.Errorf("%w: secret %s does not exist", mqpasswd.ErrSecretNotFound, secretID)
		}
		return "", fmt.Errorf("%w: failed to get %s from Secrets Manager: %w",
			mqpasswd.ErrSecretStorageUnavailable, secretID, err)
	}

	if result.SecretString == nil {
		return "", fmt.Errorf("%w: secret %s has no string value", mqpasswd.ErrSecretNotFound, secretID)
	}
	if field == "" {
		return *result.SecretString, nil
	}

	var values map[string]any
	if err := json.Unmarshal([]byte(*result.SecretString), &values); err != nil {
		return "", fmt.Errorf("%w: secret %s is not a JSON object: %w", mqpasswd.ErrInvalidFormat, secretID, err)
	}

	raw, ok := values[field]
	if !ok {
		return "", fmt.Errorf("%w: field '%s' not found in %s", mqpasswd.ErrSecretNotFound, field, secretID)
	}
	value, ok := raw.(string)
	if !ok {
		return "", fmt.Errorf("%w: field '%s' in %s is %T, not a string", mqpasswd.ErrInvalidInputType, field, secretID, raw)
	}
	return value, nil
}
