package archive

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/request"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"applytrack/internal/config"
)

type fakeS3 struct {
	s3iface.S3API
	put     *s3.PutObjectInput
	body    []byte
	failPut error
}

func (f *fakeS3) PutObjectWithContext(ctx aws.Context, in *s3.PutObjectInput, opts ...request.Option) (*s3.PutObjectOutput, error) {
	if f.failPut != nil {
		return nil, f.failPut
	}
	f.put = in
	f.body, _ = io.ReadAll(in.Body)
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeS3) HeadBucketWithContext(ctx aws.Context, in *s3.HeadBucketInput, opts ...request.Option) (*s3.HeadBucketOutput, error) {
	return &s3.HeadBucketOutput{}, nil
}

func spacesConfig() *config.Config {
	cfg := config.Default()
	cfg.Spaces.BucketName = "resumes"
	cfg.Spaces.Region = "blr1"
	return cfg
}

func TestPutUploadsUnderUserPrefix(t *testing.T) {
	client := &fakeS3{}
	cfg := spacesConfig()
	cfg.Spaces.CDNEndpoint = "https://cdn.example.com/"
	a := NewSpacesArchiveWithClient(client, cfg)

	url, err := a.Put(context.Background(), "user-1", "My CV (final).pdf", "application/pdf", []byte("%PDF"))
	require.NoError(t, err)

	require.NotNil(t, client.put)
	key := aws.StringValue(client.put.Key)
	assert.True(t, strings.HasPrefix(key, "resumes/uploads/user-1/"), key)
	assert.True(t, strings.HasSuffix(key, "-My_CV_final_.pdf"), key)
	assert.Equal(t, "application/pdf", aws.StringValue(client.put.ContentType))
	assert.Equal(t, []byte("%PDF"), client.body)
	assert.Equal(t, "https://cdn.example.com/"+key, url)
}

func TestObjectURLFallbacks(t *testing.T) {
	cfg := spacesConfig()
	cfg.Spaces.BucketURL = "resumes.blr1.digitaloceanspaces.com"
	a := NewSpacesArchiveWithClient(&fakeS3{}, cfg)
	assert.Equal(t, "https://resumes.blr1.digitaloceanspaces.com/k", a.objectURL("k"))

	a = NewSpacesArchiveWithClient(&fakeS3{}, spacesConfig())
	assert.Equal(t, "https://resumes.blr1.digitaloceanspaces.com/k", a.objectURL("k"))
}

func TestPutFailure(t *testing.T) {
	a := NewSpacesArchiveWithClient(&fakeS3{failPut: errors.New("denied")}, spacesConfig())

	_, err := a.Put(context.Background(), "u", "cv.txt", "", []byte("x"))
	assert.ErrorContains(t, err, "denied")
}

func TestObjectKeySanitizes(t *testing.T) {
	key := ObjectKey("../evil", "../../etc/passwd")
	assert.True(t, strings.HasPrefix(key, "resumes/uploads/_evil/"), key)
	assert.True(t, strings.HasSuffix(key, "-passwd"), key)
	assert.NoError(t, NewSpacesArchiveWithClient(&fakeS3{}, spacesConfig()).IsHealthy(context.Background()))
}
