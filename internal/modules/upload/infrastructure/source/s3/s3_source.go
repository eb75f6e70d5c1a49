package s3

import (
	"context"
	"fmt"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stegoweb/imagetrigger/internal/modules/upload/domain"
	"github.com/stegoweb/imagetrigger/internal/modules/upload/infrastructure/source"
)

const scheme = "s3://"

// S3Config holds configuration for S3/MinIO selections
type S3Config struct {
	BucketName string // default bucket for bare keys
	Region     string
	Endpoint   string // e.g. minio:9000, empty for AWS
	AccessKey  string
	SecretKey  string
	UseSSL     bool
}

// ObjectGetter is the part of the S3 client the source needs.
type ObjectGetter interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// S3Source opens selections stored as S3 objects
type S3Source struct {
	client ObjectGetter
	config S3Config
}

// NewS3Source creates a source backed by AWS S3 or an S3-compatible endpoint.
func NewS3Source(ctx context.Context, cfg S3Config) (*S3Source, error) {
	var awsCfg aws.Config
	var err error

	if cfg.Endpoint != "" {
		awsCfg, err = config.LoadDefaultConfig(ctx,
			config.WithRegion(cfg.Region),
			config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, "")),
		)
	} else {
		awsCfg, err = config.LoadDefaultConfig(ctx, config.WithRegion(cfg.Region))
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(endpointURL(cfg.Endpoint, cfg.UseSSL))
			o.UsePathStyle = true // Required for MinIO
		}
	})

	return NewS3SourceWithClient(client, cfg), nil
}

// NewS3SourceWithClient wraps an existing client.
func NewS3SourceWithClient(client ObjectGetter, cfg S3Config) *S3Source {
	return &S3Source{client: client, config: cfg}
}

// Open fetches the object. Its body is streamed into the upload.
func (s *S3Source) Open(ctx context.Context, ref string) (domain.SelectedFile, error) {
	bucket, key, err := s.parseRef(ref)
	if err != nil {
		return domain.SelectedFile{}, err
	}

	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return domain.SelectedFile{}, fmt.Errorf("failed to get s3 object %s/%s: %w", bucket, key, err)
	}

	name := path.Base(key)
	contentType := aws.ToString(out.ContentType)
	if contentType == "" || contentType == "binary/octet-stream" {
		contentType = source.ContentType(name, nil)
	}

	return domain.NewSelectedFile(name, contentType, aws.ToInt64(out.ContentLength), out.Body), nil
}

// parseRef splits s3://bucket/key, or takes a bare key in the default bucket.
func (s *S3Source) parseRef(ref string) (string, string, error) {
	bucket := s.config.BucketName
	key := ref

	if strings.HasPrefix(ref, scheme) {
		rest := strings.TrimPrefix(ref, scheme)
		var ok bool
		bucket, key, ok = strings.Cut(rest, "/")
		if !ok || bucket == "" {
			return "", "", fmt.Errorf("%s: %w", ref, domain.ErrUnsupportedRef)
		}
	}

	if bucket == "" {
		return "", "", fmt.Errorf("%s: no bucket: %w", ref, domain.ErrSourceNotConfigured)
	}
	key = strings.TrimPrefix(key, "/")
	if key == "" || strings.HasSuffix(key, "/") {
		return "", "", fmt.Errorf("%s: %w", ref, domain.ErrNotAFile)
	}

	return bucket, key, nil
}

func endpointURL(endpoint string, useSSL bool) string {
	if hasHTTPPrefix(endpoint) {
		return endpoint
	}
	if useSSL {
		return "https://" + endpoint
	}
	return "http://" + endpoint
}

// hasHTTPPrefix checks if a string has http:// or https:// prefix
func hasHTTPPrefix(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}
