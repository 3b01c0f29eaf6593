package store

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"

	"gallery-go/internal/gallery"
	"gallery-go/internal/manifest"
)

// S3API is the subset of the S3 client the store needs.
type S3API interface {
	manager.UploadAPIClient
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// S3Store keeps the manifest as a single object in a bucket.
type S3Store struct {
	client   S3API
	uploader *manager.Uploader
	bucket   string
	key      string
}

// NewS3Store creates a store for s3://bucket/key.
func NewS3Store(client S3API, bucket, key string) *S3Store {
	return &S3Store{
		client:   client,
		uploader: manager.NewUploader(client),
		bucket:   bucket,
		key:      key,
	}
}

// Load downloads and decodes the manifest. A missing object yields nil, nil.
func (s *S3Store) Load(ctx context.Context) (*manifest.Document, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key),
	})
	if err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("fetching %s: %w", s.Location(), err)
	}
	defer out.Body.Close()

	doc, err := manifest.Decode(out.Body)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", s.Location(), err)
	}
	return doc, nil
}

// Save uploads the encoded manifest.
func (s *S3Store) Save(ctx context.Context, doc *manifest.Document) error {
	var buf bytes.Buffer
	if err := manifest.Encode(&buf, doc); err != nil {
		return err
	}

	_, err := s.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket:       aws.String(s.bucket),
		Key:          aws.String(s.key),
		Body:         bytes.NewReader(buf.Bytes()),
		ContentType:  aws.String("application/json"),
		CacheControl: aws.String("no-cache"),
	})
	if err != nil {
		return fmt.Errorf("uploading %s: %w", s.Location(), err)
	}
	return nil
}

// Location returns the manifest's s3:// URL.
func (s *S3Store) Location() string {
	return fmt.Sprintf("s3://%s/%s", s.bucket, s.key)
}

func isNotFound(err error) bool {
	var nsk *types.NoSuchKey
	if errors.As(err, &nsk) {
		return true
	}
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "NoSuchKey", "NotFound":
			return true
		}
	}
	return false
}

// Compile-time check that S3Store implements gallery.ManifestStore
var _ gallery.ManifestStore = (*S3Store)(nil)
