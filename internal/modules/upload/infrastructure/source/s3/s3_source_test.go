package s3

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stegoweb/imagetrigger/internal/modules/upload/domain"
	"github.com/stretchr/testify/require"
)

type fakeGetter struct {
	bucket, key string
	out         *s3.GetObjectOutput
	err         error
}

func (f *fakeGetter) GetObject(ctx context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	f.bucket = aws.ToString(in.Bucket)
	f.key = aws.ToString(in.Key)
	return f.out, f.err
}

func TestNewS3Source_Config(t *testing.T) {
	st, err := NewS3Source(context.Background(), S3Config{
		BucketName: "bucket",
		Region:     "us-east-1",
		Endpoint:   "localhost:9000",
		AccessKey:  "x",
		SecretKey:  "y",
	})
	require.NoError(t, err)
	require.NotNil(t, st)
	require.NotNil(t, st.client)
}

func TestS3Source_Open(t *testing.T) {
	getter := &fakeGetter{out: &s3.GetObjectOutput{
		Body:          io.NopCloser(strings.NewReader("GIF89a")),
		ContentType:   aws.String("image/gif"),
		ContentLength: aws.Int64(6),
	}}
	st := NewS3SourceWithClient(getter, S3Config{BucketName: "default"})

	f, err := st.Open(context.Background(), "s3://images/uploads/cat.gif")
	require.NoError(t, err)
	defer f.Close()

	require.Equal(t, "images", getter.bucket)
	require.Equal(t, "uploads/cat.gif", getter.key)
	require.Equal(t, "cat.gif", f.Name)
	require.Equal(t, "image/gif", f.ContentType)
	require.Equal(t, int64(6), f.Size)

	body, err := io.ReadAll(f.Content)
	require.NoError(t, err)
	require.Equal(t, "GIF89a", string(body))
}

func TestS3Source_Open_BareKeyAndGenericType(t *testing.T) {
	getter := &fakeGetter{out: &s3.GetObjectOutput{
		Body:        io.NopCloser(strings.NewReader("x")),
		ContentType: aws.String("binary/octet-stream"),
	}}
	st := NewS3SourceWithClient(getter, S3Config{BucketName: "default"})

	f, err := st.Open(context.Background(), "photos/dog.jpg")
	require.NoError(t, err)
	require.Equal(t, "default", getter.bucket)
	require.Equal(t, "photos/dog.jpg", getter.key)
	require.Equal(t, "image/jpeg", f.ContentType)
	require.Equal(t, int64(0), f.Size)
}

func TestS3Source_Open_Errors(t *testing.T) {
	st := NewS3SourceWithClient(&fakeGetter{err: errors.New("no such key")}, S3Config{BucketName: "b"})
	_, err := st.Open(context.Background(), "missing.png")
	require.Error(t, err)
	require.Contains(t, err.Error(), "b/missing.png")

	noBucket := NewS3SourceWithClient(&fakeGetter{}, S3Config{})

	_, err = noBucket.Open(context.Background(), "key.png")
	require.ErrorIs(t, err, domain.ErrSourceNotConfigured)

	_, err = noBucket.Open(context.Background(), "s3://bucketonly")
	require.ErrorIs(t, err, domain.ErrUnsupportedRef)

	_, err = noBucket.Open(context.Background(), "s3://b/folder/")
	require.ErrorIs(t, err, domain.ErrNotAFile)
}

func TestEndpointHelpers(t *testing.T) {
	require.Equal(t, "http://minio:9000", endpointURL("minio:9000", false))
	require.Equal(t, "https://minio:9000", endpointURL("minio:9000", true))
	require.Equal(t, "http://x:1", endpointURL("http://x:1", true))

	require.True(t, hasHTTPPrefix("http://x"))
	require.True(t, hasHTTPPrefix("https://x"))
	require.False(t, hasHTTPPrefix("x"))
}
