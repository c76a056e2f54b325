package filestorage

import (
	"context"
	"fmt"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/yigit/placement/internal/pkg/logger"
)

// S3API is the part of the S3 client the storage uses.
type S3API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// S3Storage stores files in an S3 bucket.
type S3Storage struct {
	client  S3API
	bucket  string
	prefix  string
	baseURL string
}

// NewS3Client builds an S3 client from the default AWS credential chain.
func NewS3Client(ctx context.Context, region string) (*s3.Client, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("unable to load AWS SDK config: %w", err)
	}
	return s3.NewFromConfig(cfg), nil
}

// NewS3Storage creates an S3Storage. baseURL defaults to the bucket's
// virtual-hosted URL when empty.
func NewS3Storage(client S3API, bucket, region, prefix, baseURL string) *S3Storage {
	if baseURL == "" {
		baseURL = fmt.Sprintf("https://%s.s3.%s.amazonaws.com", bucket, region)
	}
	return &S3Storage{
		client:  client,
		bucket:  bucket,
		prefix:  cleanDir(prefix),
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

// Save uploads obj and returns its URL
func (s *S3Storage) Save(ctx context.Context, obj Object) (string, error) {
	key := path.Join(s.prefix, cleanDir(obj.Dir), generatedName(obj.FileName))

	input := &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
		Body:   obj.Body,
	}
	if obj.ContentType != "" {
		input.ContentType = aws.String(obj.ContentType)
	}
	if obj.Size > 0 {
		input.ContentLength = aws.Int64(obj.Size)
	}

	if _, err := s.client.PutObject(ctx, input); err != nil {
		logger.Error().Err(err).Str("bucket", s.bucket).Str("key", key).Msg("Failed to upload object")
		return "", fmt.Errorf("failed to upload %s: %w", key, err)
	}

	logger.Info().Str("bucket", s.bucket).Str("key", key).Msg("Object uploaded")
	return s.baseURL + "/" + key, nil
}

// Delete removes the object behind fileURL
func (s *S3Storage) Delete(ctx context.Context, fileURL string) error {
	key := strings.TrimPrefix(strings.TrimPrefix(fileURL, s.baseURL), "/")
	if key == "" {
		return fmt.Errorf("invalid file url: %s", fileURL)
	}

	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("failed to delete %s: %w", key, err)
	}
	return nil
}
