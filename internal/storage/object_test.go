package storage

import (
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitizeETag(t *testing.T) {
	tests := []struct {
		name string
		in   *string
		want *string
	}{
		{"nil", nil, nil},
		{"empty", aws.String(""), nil},
		{"only quotes", aws.String(`""`), nil},
		{"quotes and spaces", aws.String(` " " `), nil},
		{"quoted", aws.String(`"d41d8cd98f00b204e9800998ecf8427e"`), aws.String("d41d8cd98f00b204e9800998ecf8427e")},
		{"unquoted", aws.String("abc123"), aws.String("abc123")},
		{"surrounding whitespace", aws.String("  \"abc\"\n"), aws.String("abc")},
		{"embedded quotes", aws.String(`ab"c"d`), aws.String("abcd")},
		{"multipart", aws.String(`"9b2cf535f27731c974343645a3985328-2"`), aws.String("9b2cf535f27731c974343645a3985328-2")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SanitizeETag(tt.in)
			if tt.want == nil {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.Equal(t, *tt.want, *got)
		})
	}
}

func TestSanitizeETag_DoesNotModifyInput(t *testing.T) {
	raw := `"abc"`
	SanitizeETag(&raw)
	assert.Equal(t, `"abc"`, raw)
}

func TestFromS3Object(t *testing.T) {
	mod := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	obj := FromS3Object(types.Object{
		Key:          aws.String("photos/a.jpg"),
		ETag:         aws.String(`"abc"`),
		Size:         aws.Int64(1024),
		LastModified: &mod,
		StorageClass: types.ObjectStorageClassStandard,
	})

	assert.Equal(t, "photos/a.jpg", obj.Key)
	assert.Equal(t, "abc", obj.ETagValue())
	assert.Equal(t, int64(1024), obj.SizeValue())
	require.NotNil(t, obj.LastModified)
	assert.True(t, mod.Equal(*obj.LastModified))
	require.NotNil(t, obj.StorageClass)
	assert.Equal(t, "STANDARD", *obj.StorageClass)
}

func TestFromS3Object_OptionalFieldsAbsent(t *testing.T) {
	obj := FromS3Object(types.Object{Key: aws.String("a.png"), ETag: aws.String(`""`)})

	assert.Equal(t, "a.png", obj.Key)
	assert.Nil(t, obj.ETag)
	assert.Nil(t, obj.Size)
	assert.Nil(t, obj.LastModified)
	assert.Nil(t, obj.StorageClass)
	assert.Equal(t, "", obj.ETagValue())
	assert.Equal(t, int64(0), obj.SizeValue())
}
