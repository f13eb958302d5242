package storage

import (
	"context"
	"fmt"

	appconfig "suspicious-account-graph/internal/infrastructure/config"
	"suspicious-account-graph/internal/infrastructure/logger"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"go.uber.org/zap"
)

// EvidenceStore hands out presigned download links for the screenshot
// evidence objects referenced by oss_key on account nodes. The objects
// themselves are written by the extraction collaborator; this side only
// reads.
type EvidenceStore struct {
	client    *s3.Client
	presigner *s3.PresignClient
	config    *appconfig.StorageConfig
	logger    *logger.Logger
}

// NewEvidenceStore creates the S3 client for the evidence bucket. Returns nil
// when the store is disabled in config; callers treat a nil store as
// evidence-links-off.
func NewEvidenceStore(ctx context.Context, cfg *appconfig.StorageConfig, logger *logger.Logger) (*EvidenceStore, error) {
	if !cfg.Enabled {
		return nil, nil
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(
		ctx,
		awsconfig.WithRegion(cfg.Region),
		awsconfig.WithBaseEndpoint(cfg.Endpoint),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AccessKey,
			cfg.SecretKey,
			"",
		)),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load S3 config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = true
	})

	return &EvidenceStore{
		client:    client,
		presigner: s3.NewPresignClient(client),
		config:    cfg,
		logger:    logger.WithComponent("evidence-store"),
	}, nil
}

// PresignGet returns a time-limited download URL for one evidence object.
func (s *EvidenceStore) PresignGet(ctx context.Context, key string) (string, error) {
	out, err := s.presigner.PresignGetObject(
		ctx,
		&s3.GetObjectInput{
			Bucket: aws.String(s.config.Bucket),
			Key:    aws.String(key),
		},
		s3.WithPresignExpires(s.config.URLExpiry),
	)
	if err != nil {
		s.logger.Error("Failed to presign evidence object", zap.String("key", key), zap.Error(err))
		return "", fmt.Errorf("failed to presign evidence object %s: %w", key, err)
	}

	return out.URL, nil
}
