package storage

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"gallery-go/internal/config"
	"gallery-go/internal/gallery"
)

// S3API is the subset of the S3 client used for listing.
type S3API interface {
	s3.ListObjectsV2APIClient
	HeadBucket(ctx context.Context, params *s3.HeadBucketInput, optFns ...func(*s3.Options)) (*s3.HeadBucketOutput, error)
}

// S3Provider lists objects from an S3 or S3-compatible bucket.
type S3Provider struct {
	client S3API
	bucket string
}

// NewS3Client builds an S3 client from storage config. Static credentials are
// used when configured, otherwise the SDK default chain applies.
func NewS3Client(ctx context.Context, cfg config.StorageConfig) (*s3.Client, error) {
	var opts []func(*awsconfig.LoadOptions) error
	if cfg.S3Region != "" {
		opts = append(opts, awsconfig.WithRegion(cfg.S3Region))
	}
	if cfg.S3AccessKeyID != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.S3AccessKeyID, cfg.S3SecretAccessKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("loading aws config: %w", err)
	}

	return s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.S3Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.S3Endpoint)
		}
		o.UsePathStyle = cfg.S3ForcePathStyle
	}), nil
}

// NewS3Provider creates a provider for bucket using client.
func NewS3Provider(client S3API, bucket string) *S3Provider {
	return &S3Provider{client: client, bucket: bucket}
}

// ListObjects pages through ListObjectsV2 and returns every object under prefix.
func (p *S3Provider) ListObjects(ctx context.Context, prefix string) ([]gallery.StorageObject, error) {
	input := &s3.ListObjectsV2Input{Bucket: aws.String(p.bucket)}
	if prefix != "" {
		input.Prefix = aws.String(prefix)
	}

	var objects []gallery.StorageObject
	paginator := s3.NewListObjectsV2Paginator(p.client, input)
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("listing s3://%s/%s: %w", p.bucket, prefix, err)
		}
		for _, o := range page.Contents {
			if o.Key == nil || *o.Key == "" {
				continue
			}
			objects = append(objects, FromS3Object(o))
		}
	}
	return objects, nil
}

// ValidateSetup checks that the bucket exists and is accessible.
func (p *S3Provider) ValidateSetup(ctx context.Context) error {
	if _, err := p.client.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(p.bucket)}); err != nil {
		return fmt.Errorf("bucket %s not accessible: %w", p.bucket, err)
	}
	return nil
}

// Compile-time check that S3Provider implements gallery.StorageProvider
var _ gallery.StorageProvider = (*S3Provider)(nil)
