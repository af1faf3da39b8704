// Package s3bucket publishes a rendered Mosquitto password file to an S3 bucket.
package s3bucket

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/hengadev/mqpasswd"
	"github.com/hengadev/mqpasswd/internal/monitoring"
)

const contentType = "text/plain; charset=utf-8"

// AWSS3Uploader defines the method used to upload to S3
type AWSS3Uploader interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// Publisher uploads password files to S3 with server-side encryption.
type Publisher struct {
	client AWSS3Uploader
	logger *slog.Logger
}

// NewPublisher wraps an existing S3 client.
func NewPublisher(client AWSS3Uploader, logger *slog.Logger) (*Publisher, error) {
	if client == nil {
		return nil, fmt.Errorf("%w: S3 client cannot be nil", mqpasswd.ErrInvalidConfiguration)
	}
	if logger == nil {
		logger = monitoring.Discard()
	}
	return &Publisher{client: client, logger: logger}, nil
}

// NewPublisherFromConfig loads the default AWS configuration and builds an S3 client from it.
// An empty region defers to AWS_REGION or the shared config file.
func NewPublisherFromConfig(ctx context.Context, region string, logger *slog.Logger) (*Publisher, error) {
	opts := []func(*config.LoadOptions) error{}
	if region != "" {
		opts = append(opts, config.WithRegion(region))
	}

	cfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to load AWS config: %w", mqpasswd.ErrPublishFailed, err)
	}
	return NewPublisher(s3.NewFromConfig(cfg), logger)
}

// Publish uploads body to s3://bucket/key.
func (p *Publisher) Publish(ctx context.Context, bucket, key string, body []byte) error {
	if bucket == "" || key == "" {
		return fmt.Errorf("%w: bucket and key are required", mqpasswd.ErrInvalidConfiguration)
	}

	_, err := p.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:               aws.String(bucket),
		Key:                  aws.String(key),
		Body:                 bytes.NewReader(body),
		ContentLength:        aws.Int64(int64(len(body))),
		ContentType:          aws.String(contentType),
		ServerSideEncryption: types.ServerSideEncryptionAes256,
	})
	if err != nil {
		p.logger.Error("failed to upload password file", "bucket", bucket, "key", key, "error", err)
		return fmt.Errorf("%w: s3://%s/%s: %w", mqpasswd.ErrPublishFailed, bucket, key, err)
	}

	p.logger.Info("uploaded password file", "bucket", bucket, "key", key, "bytes", len(body))
	return nil
}
