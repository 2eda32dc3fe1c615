package storage

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeS3 struct {
	put     *s3.PutObjectInput
	body    string
	listErr error
}

func (f *fakeS3) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	f.put = in
	b, _ := io.ReadAll(in.Body)
	f.body = string(b)
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeS3) ListObjectsV2(_ context.Context, in *s3.ListObjectsV2Input, _ ...func(*s3.Options)) (*s3.ListObjectsV2Output, error) {
	return &s3.ListObjectsV2Output{}, f.listErr
}

func TestUploadReturnsPublicURL(t *testing.T) {
	fake := &fakeS3{}
	store := newProofStore(fake, "proofs-bucket", "https://cdn.example.com/", "")

	url, err := store.Upload(context.Background(), "proofs/TT244560001/a.jpg", strings.NewReader("img"), 3, "image/jpeg")
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/proofs/TT244560001/a.jpg", url)
	assert.Equal(t, "proofs-bucket", aws.ToString(fake.put.Bucket))
	assert.Equal(t, "image/jpeg", aws.ToString(fake.put.ContentType))
	assert.Equal(t, int64(3), aws.ToInt64(fake.put.ContentLength))
	assert.Equal(t, "img", fake.body)
}

func TestPublicURLFallsBackToEndpoint(t *testing.T) {
	store := newProofStore(&fakeS3{}, "b", "", "http://minio:9000/")
	url, err := store.Upload(context.Background(), "k.png", strings.NewReader(""), 0, "")
	require.NoError(t, err)
	assert.Equal(t, "http://minio:9000/b/k.png", url)
}

func TestPing(t *testing.T) {
	fake := &fakeS3{listErr: errors.New("denied")}
	assert.Error(t, newProofStore(fake, "b", "", "").Ping(context.Background()))
	fake.listErr = nil
	assert.NoError(t, newProofStore(fake, "b", "", "").Ping(context.Background()))
}
