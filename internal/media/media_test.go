package media

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"yatube/internal/config"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/request"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostKey(t *testing.T) {
	now := time.Date(2024, 3, 9, 0, 0, 0, 0, time.UTC)
	key := postKey(`..\..\evil.png`, now)
	assert.True(t, strings.HasPrefix(key, "posts/2024/03/"), key)
	assert.True(t, strings.HasSuffix(key, "-evil.png"), key)
	assert.NotContains(t, key, "..")
}

func TestLocalStorageRoundTrip(t *testing.T) {
	root := t.TempDir()
	store, err := NewLocalStorage(root, "/media")
	require.NoError(t, err)

	key, err := store.Save(context.Background(), "cat.png", "image/png", []byte("png-bytes"))
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(root, filepath.FromSlash(key)))
	require.NoError(t, err)
	assert.Equal(t, "png-bytes", string(data))
	assert.Equal(t, "/media/"+key, store.URL(key))
	assert.Empty(t, store.URL(""))

	rec := httptest.NewRecorder()
	store.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, store.URL(key), nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "png-bytes", rec.Body.String())

	rec = httptest.NewRecorder()
	store.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/media/posts/", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

type fakeS3 struct {
	s3iface.S3API
	input *s3.PutObjectInput
}

func (f *fakeS3) PutObjectWithContext(ctx aws.Context, input *s3.PutObjectInput, opts ...request.Option) (*s3.PutObjectOutput, error) {
	f.input = input
	return &s3.PutObjectOutput{}, nil
}

func TestS3StorageSave(t *testing.T) {
	fake := &fakeS3{}
	store := &S3Storage{client: fake, bucket: "yatube-media", region: "eu-west-1"}

	key, err := store.Save(context.Background(), "dog.jpeg", "image/jpeg", []byte("jpeg"))
	require.NoError(t, err)
	require.NotNil(t, fake.input)
	assert.Equal(t, "yatube-media", aws.StringValue(fake.input.Bucket))
	assert.Equal(t, key, aws.StringValue(fake.input.Key))
	assert.Equal(t, "image/jpeg", aws.StringValue(fake.input.ContentType))
	assert.Equal(t, "https://yatube-media.s3.eu-west-1.amazonaws.com/"+key, store.URL(key))
}

func TestNewRejectsUnknownBackend(t *testing.T) {
	_, err := New(&config.MediaConfig{Backend: "ftp"})
	assert.Error(t, err)
}
