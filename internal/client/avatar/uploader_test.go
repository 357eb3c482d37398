package avatar

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	cc "github.com/dmitrijs2005/treehole/internal/client/config"
	"github.com/dmitrijs2005/treehole/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

type fakePutter struct {
	in   *s3.PutObjectInput
	body []byte
	err  error
}

func (f *fakePutter) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	f.in = in
	f.body, _ = io.ReadAll(in.Body)
	if f.err != nil {
		return nil, f.err
	}
	return &s3.PutObjectOutput{}, nil
}

func withFakeS3(t *testing.T, fp *fakePutter) *s3.Options {
	t.Helper()
	origLoad, origNew := loadDefaultAWSConfig, newS3ClientFromConfig
	t.Cleanup(func() { loadDefaultAWSConfig, newS3ClientFromConfig = origLoad, origNew })

	opts := &s3.Options{}
	loadDefaultAWSConfig = func(ctx context.Context, optFns ...func(*config.LoadOptions) error) (aws.Config, error) {
		return aws.Config{}, nil
	}
	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) objectPutter {
		for _, fn := range optFns {
			fn(opts)
		}
		return fp
	}
	return opts
}

func writeFile(t *testing.T, name string, data []byte) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(p, data, 0o600))
	return p
}

func TestUpload_Disabled(t *testing.T) {
	u := NewUploader(cc.AvatarStorage{})
	require.False(t, u.Enabled())

	_, err := u.Upload(context.Background(), "u_1", "whatever.png")
	require.ErrorIs(t, err, common.ErrAvatarStorageDisabled)
}

func TestUpload_PutsObjectAndReturnsURL(t *testing.T) {
	fp := &fakePutter{}
	opts := withFakeS3(t, fp)

	u := NewUploader(cc.AvatarStorage{Endpoint: "http://minio:9000/", Region: "us-east-1", Bucket: "pics"})
	url, err := u.Upload(context.Background(), "u_abc", writeFile(t, "me.PNG", pngHeader))
	require.NoError(t, err)

	key := aws.ToString(fp.in.Key)
	assert.Regexp(t, regexp.MustCompile(`^avatars/u_abc/[0-9a-f-]{36}\.png$`), key)
	assert.Equal(t, "pics", aws.ToString(fp.in.Bucket))
	assert.Equal(t, "image/png", aws.ToString(fp.in.ContentType))
	assert.Equal(t, pngHeader, fp.body)
	assert.Equal(t, "http://minio:9000/pics/"+key, url)

	assert.Equal(t, "http://minio:9000/", aws.ToString(opts.BaseEndpoint))
	assert.True(t, opts.UsePathStyle)
}

func TestUpload_RejectsNonImages(t *testing.T) {
	withFakeS3(t, &fakePutter{})
	u := NewUploader(cc.AvatarStorage{Bucket: "pics"})

	_, err := u.Upload(context.Background(), "u_1", writeFile(t, "notes.txt", []byte("plain text")))
	require.ErrorIs(t, err, common.ErrValidation)

	_, err = u.Upload(context.Background(), "u_1", writeFile(t, "empty.png", nil))
	require.ErrorIs(t, err, common.ErrValidation)
}

func TestUpload_PutError(t *testing.T) {
	withFakeS3(t, &fakePutter{err: errors.New("access denied")})
	u := NewUploader(cc.AvatarStorage{Bucket: "pics"})

	_, err := u.Upload(context.Background(), "u_1", writeFile(t, "a.png", pngHeader))
	require.ErrorContains(t, err, "access denied")
}

func TestUpload_ConfigError(t *testing.T) {
	orig := loadDefaultAWSConfig
	t.Cleanup(func() { loadDefaultAWSConfig = orig })
	loadDefaultAWSConfig = func(ctx context.Context, optFns ...func(*config.LoadOptions) error) (aws.Config, error) {
		return aws.Config{}, errors.New("no region")
	}

	u := NewUploader(cc.AvatarStorage{Bucket: "pics"})
	_, err := u.Upload(context.Background(), "u_1", writeFile(t, "a.png", pngHeader))
	require.ErrorContains(t, err, "load aws config")
}

func TestPublicURL_AWSDefault(t *testing.T) {
	u := NewUploader(cc.AvatarStorage{Bucket: "pics", Region: "eu-west-1"})
	assert.Equal(t, "https://pics.s3.eu-west-1.amazonaws.com/k", u.PublicURL("k"))
}
