// Package avatar uploads profile pictures to S3-compatible storage.
package avatar

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"

	cc "github.com/dmitrijs2005/treehole/internal/client/config"
	"github.com/dmitrijs2005/treehole/internal/common"
	"github.com/google/uuid"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// MaxSize is the largest accepted avatar file.
const MaxSize = 2 << 20

type objectPutter interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

var (
	loadDefaultAWSConfig = config.LoadDefaultConfig

	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) objectPutter {
		return s3.NewFromConfig(cfg, optFns...)
	}
)

type Uploader struct {
	cfg cc.AvatarStorage

	once    sync.Once
	client  objectPutter
	initErr error
}

func NewUploader(cfg cc.AvatarStorage) *Uploader {
	return &Uploader{cfg: cfg}
}

// Enabled reports whether a bucket is configured.
func (u *Uploader) Enabled() bool {
	return u.cfg.Bucket != ""
}

func (u *Uploader) getClient() (objectPutter, error) {
	u.once.Do(func() {
		opts := []func(*config.LoadOptions) error{config.WithRegion(u.cfg.Region)}
		if u.cfg.AccessKey != "" {
			opts = append(opts, config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
				u.cfg.AccessKey,
				u.cfg.SecretKey,
				"",
			)))
		}

		awsCfg, err := loadDefaultAWSConfig(context.Background(), opts...)
		if err != nil {
			u.initErr = fmt.Errorf("load aws config: %w", err)
			return
		}

		u.client = newS3ClientFromConfig(awsCfg, func(o *s3.Options) {
			if u.cfg.Endpoint != "" {
				o.BaseEndpoint = aws.String(u.cfg.Endpoint)
				o.UsePathStyle = true
			}
		})
	})
	return u.client, u.initErr
}

// ObjectKey builds the storage key for a new avatar of deviceID.
func ObjectKey(deviceID, ext string) string {
	return fmt.Sprintf("avatars/%s/%s%s", deviceID, uuid.New(), strings.ToLower(ext))
}

// PublicURL is the address the stored object is served from.
func (u *Uploader) PublicURL(key string) string {
	if u.cfg.Endpoint != "" {
		return strings.TrimRight(u.cfg.Endpoint, "/") + "/" + u.cfg.Bucket + "/" + key
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", u.cfg.Bucket, u.cfg.Region, key)
}

// Upload stores the image at path and returns its public URL.
func (u *Uploader) Upload(ctx context.Context, deviceID, path string) (string, error) {
	if !u.Enabled() {
		return "", common.ErrAvatarStorageDisabled
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read avatar: %w", err)
	}
	if len(data) == 0 || len(data) > MaxSize {
		return "", fmt.Errorf("avatar must be between 1 byte and %d bytes: %w", MaxSize, common.ErrValidation)
	}
	contentType := http.DetectContentType(data)
	if !strings.HasPrefix(contentType, "image/") {
		return "", fmt.Errorf("avatar is %s, not an image: %w", contentType, common.ErrValidation)
	}

	client, err := u.getClient()
	if err != nil {
		return "", err
	}

	key := ObjectKey(deviceID, filepath.Ext(path))
	_, err = client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(u.cfg.Bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(data),
		ContentType:   aws.String(contentType),
		ContentLength: aws.Int64(int64(len(data))),
	})
	if err != nil {
		return "", fmt.Errorf("put avatar object: %w", err)
	}
	return u.PublicURL(key), nil
}
