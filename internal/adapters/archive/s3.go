// Package archive keeps raw statement uploads in S3 compatible object storage.
package archive

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/SscSPs/xero_import_app/internal/core/ports/gateways"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
)

// objectPutter is the part of *s3.Client the archive needs.
type objectPutter interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Config locates the bucket.
type S3Config struct {
	Bucket       string
	Endpoint     string
	Region       string
	AccessKey    string
	SecretKey    string
	UsePathStyle bool
}

// S3Archive implements gateways.StatementArchive.
type S3Archive struct {
	client objectPutter
	bucket string
	now    func() time.Time
}

var _ gateways.StatementArchive = (*S3Archive)(nil)

// S3ArchiveOption is a functional option for configuring S3Archive
type S3ArchiveOption func(*S3Archive)

// WithClock overrides the clock used to date object keys.
func WithClock(now func() time.Time) S3ArchiveOption {
	return func(a *S3Archive) {
		a.now = now
	}
}

// NewS3Archive creates an archive backed by AWS S3 or any S3 compatible store (MinIO, R2, ...).
// With static keys empty the default AWS credential chain is used.
func NewS3Archive(ctx context.Context, cfg S3Config, opts ...S3ArchiveOption) (*S3Archive, error) {
	if cfg.Bucket == "" {
		return nil, errors.New("archive bucket is required")
	}
	region := cfg.Region
	if region == "" {
		region = "us-east-1"
	}

	loadOpts := []func(*config.LoadOptions) error{config.WithRegion(region)}
	if cfg.AccessKey != "" && cfg.SecretKey != "" {
		loadOpts = append(loadOpts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}
	awsCfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = cfg.UsePathStyle
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
	})
	return newS3Archive(client, cfg.Bucket, opts...), nil
}

func newS3Archive(client objectPutter, bucket string, opts ...S3ArchiveOption) *S3Archive {
	a := &S3Archive{client: client, bucket: bucket, now: time.Now}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Store uploads body under statements/<company>/<yyyy-mm-dd>/<uuid>-<filename>.
func (a *S3Archive) Store(ctx context.Context, companyID int64, filename string, body []byte) (string, error) {
	key := objectKey(companyID, a.now(), uuid.NewString(), filename)
	_, err := a.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(a.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(body),
		ContentType:   aws.String("text/csv"),
		ContentLength: aws.Int64(int64(len(body))),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload statement to archive: %w", err)
	}
	return key, nil
}

func objectKey(companyID int64, at time.Time, id, filename string) string {
	name := path.Base(strings.ReplaceAll(filename, "\\", "/"))
	if name == "." || name == "/" || name == "" {
		name = "statement.csv"
	}
	name = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '-', r == '_':
			return r
		}
		return '_'
	}, name)
	return fmt.Sprintf("statements/%d/%s/%s-%s", companyID, at.UTC().Format("2006-01-02"), id, name)
}
