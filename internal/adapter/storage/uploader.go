package storage

import (
	"bytes"
	"context"
	"fmt"
	"path"
	"strings"

	"resume-builder/internal/model"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
)

// MaxUploadBytes caps a single uploaded file.
const MaxUploadBytes = 5 << 20

// AllowedTypes are the MIME types accepted for upload, as sniffed from the
// file content.
var AllowedTypes = []string{"image/jpeg", "image/png", "image/gif", "image/webp"}

type R2Config struct {
	AccountID     string
	Bucket        string
	AccessKey     string
	SecretKey     string
	PublicBaseURL string
	Prefix        string
}

// ObjectPutter is the part of the S3 client the uploader needs.
type ObjectPutter interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, opts ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// Uploader checks files locally and stores them in an S3 compatible bucket.
type Uploader struct {
	client  ObjectPutter
	bucket  string
	baseURL string
	prefix  string
	newKey  func() string
}

// NewR2Uploader builds an uploader for a Cloudflare R2 bucket.
func NewR2Uploader(ctx context.Context, cfg R2Config) (*Uploader, error) {
	awsConfig, err := config.LoadDefaultConfig(ctx,
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, "")),
		config.WithRegion("auto"),
	)
	if err != nil {
		return nil, fmt.Errorf("load storage config: %w", err)
	}
	client := s3.NewFromConfig(awsConfig, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(fmt.Sprintf("https://%s.r2.cloudflarestorage.com", cfg.AccountID))
	})
	return NewUploader(client, cfg), nil
}

func NewUploader(client ObjectPutter, cfg R2Config) *Uploader {
	prefix := cfg.Prefix
	if prefix == "" {
		prefix = "uploads"
	}
	return &Uploader{
		client:  client,
		bucket:  cfg.Bucket,
		baseURL: strings.TrimRight(cfg.PublicBaseURL, "/"),
		prefix:  prefix,
		newKey:  uuid.NewString,
	}
}

// Check validates size and content type without touching the network and
// returns the detected type.
func Check(filename string, data []byte) (*mimetype.MIME, error) {
	ve := &model.ValidationError{}
	if len(data) == 0 {
		ve.Add("file", "is empty")
		return nil, ve
	}
	if len(data) > MaxUploadBytes {
		ve.Add("file", fmt.Sprintf("must be at most %d MiB", MaxUploadBytes>>20))
		return nil, ve
	}
	mt := mimetype.Detect(data)
	if !mimetype.EqualsAny(mt.String(), AllowedTypes...) {
		ve.Add("file", fmt.Sprintf("%s has unsupported type %s", path.Base(filename), mt.String()))
		return nil, ve
	}
	return mt, nil
}

// Upload stores data and returns its public URL.
func (u *Uploader) Upload(ctx context.Context, filename string, data []byte) (string, error) {
	mt, err := Check(filename, data)
	if err != nil {
		return "", err
	}
	key := path.Join(u.prefix, u.newKey()+mt.Extension())
	_, err = u.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(u.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(data),
		ContentType:   aws.String(mt.String()),
		ContentLength: aws.Int64(int64(len(data))),
	})
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrStorage, err)
	}
	return u.baseURL + "/" + key, nil
}
