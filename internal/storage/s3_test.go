package storage

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeS3 serves a fixed sequence of listing pages.
type fakeS3 struct {
	pages   [][]types.Object
	inputs  []s3.ListObjectsV2Input
	listErr error
	headErr error
}

func (f *fakeS3) ListObjectsV2(_ context.Context, in *s3.ListObjectsV2Input, _ ...func(*s3.Options)) (*s3.ListObjectsV2Output, error) {
	f.inputs = append(f.inputs, *in)
	if f.listErr != nil {
		return nil, f.listErr
	}

	page := 0
	if in.ContinuationToken != nil {
		for i := range f.pages {
			if *in.ContinuationToken == pageToken(i) {
				page = i
			}
		}
	}

	out := &s3.ListObjectsV2Output{Contents: f.pages[page], IsTruncated: aws.Bool(false)}
	if page+1 < len(f.pages) {
		out.IsTruncated = aws.Bool(true)
		out.NextContinuationToken = aws.String(pageToken(page + 1))
	}
	return out, nil
}

func (f *fakeS3) HeadBucket(context.Context, *s3.HeadBucketInput, ...func(*s3.Options)) (*s3.HeadBucketOutput, error) {
	if f.headErr != nil {
		return nil, f.headErr
	}
	return &s3.HeadBucketOutput{}, nil
}

func pageToken(i int) string {
	return "page-" + string(rune('0'+i))
}

func TestS3Provider_ListObjects_Paginates(t *testing.T) {
	fake := &fakeS3{pages: [][]types.Object{
		{
			{Key: aws.String("photos/a.jpg"), ETag: aws.String(`"e1"`), Size: aws.Int64(10)},
			{Key: aws.String("photos/b.heic"), ETag: aws.String(`"e2"`)},
		},
		{
			{Key: aws.String("photos/c.txt")},
			{Key: nil},
			{Key: aws.String("")},
		},
		{
			{Key: aws.String("photos/d.png"), StorageClass: types.ObjectStorageClassGlacier},
		},
	}}

	p := NewS3Provider(fake, "bucket")
	objs, err := p.ListObjects(context.Background(), "photos/")
	require.NoError(t, err)

	keys := make([]string, len(objs))
	for i, o := range objs {
		keys[i] = o.Key
	}
	assert.Equal(t, []string{"photos/a.jpg", "photos/b.heic", "photos/c.txt", "photos/d.png"}, keys)
	assert.Equal(t, "e1", objs[0].ETagValue())
	assert.Equal(t, "GLACIER", *objs[3].StorageClass)

	require.Len(t, fake.inputs, 3)
	assert.Equal(t, "bucket", *fake.inputs[0].Bucket)
	assert.Equal(t, "photos/", *fake.inputs[0].Prefix)
	assert.Nil(t, fake.inputs[0].ContinuationToken)
	assert.Equal(t, "page-1", *fake.inputs[1].ContinuationToken)
}

func TestS3Provider_ListObjects_NoPrefix(t *testing.T) {
	fake := &fakeS3{pages: [][]types.Object{{}}}
	objs, err := NewS3Provider(fake, "bucket").ListObjects(context.Background(), "")
	require.NoError(t, err)
	assert.Empty(t, objs)
	assert.Nil(t, fake.inputs[0].Prefix)
}

func TestS3Provider_ListObjects_Error(t *testing.T) {
	boom := errors.New("connection reset")
	fake := &fakeS3{pages: [][]types.Object{{}}, listErr: boom}

	_, err := NewS3Provider(fake, "bucket").ListObjects(context.Background(), "p/")
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "s3://bucket/p/")
}

func TestS3Provider_ValidateSetup(t *testing.T) {
	assert.NoError(t, NewS3Provider(&fakeS3{}, "bucket").ValidateSetup(context.Background()))

	err := NewS3Provider(&fakeS3{headErr: errors.New("forbidden")}, "bucket").ValidateSetup(context.Background())
	assert.ErrorContains(t, err, "bucket bucket not accessible")
}
