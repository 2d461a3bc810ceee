package objectstore

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	appcfg "github.com/mx-space/content-migrate/internal/config"
)

type putObjectAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Store uploads to an S3-compatible bucket.
type S3Store struct {
	client       putObjectAPI
	endpoint     *url.URL
	bucket       string
	prefix       string
	customDomain string
	pathStyle    bool
}

// NewS3Store builds a store from the assets.s3 config section.
func NewS3Store(opts appcfg.S3Config) (*S3Store, error) {
	bucket := strings.TrimSpace(opts.Bucket)
	region := strings.TrimSpace(opts.Region)
	accessKey := strings.TrimSpace(opts.AccessKeyID)
	secretKey := strings.TrimSpace(opts.SecretAccessKey)
	if bucket == "" || region == "" || accessKey == "" || secretKey == "" {
		return nil, fmt.Errorf("incomplete s3 config: bucket/region/access_key_id/secret_access_key are required")
	}

	endpoint := strings.TrimSpace(opts.Endpoint)
	if endpoint == "" {
		endpoint = fmt.Sprintf("https://s3.%s.amazonaws.com", region)
	}
	if !strings.HasPrefix(endpoint, "http://") && !strings.HasPrefix(endpoint, "https://") {
		endpoint = "https://" + endpoint
	}
	endpoint = strings.TrimSuffix(endpoint, "/")

	parsed, err := url.Parse(endpoint)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return nil, fmt.Errorf("invalid s3 endpoint: %s", endpoint)
	}

	// custom endpoints (R2, MinIO, ...) rarely support virtual-hosted buckets
	pathStyle := opts.PathStyle || strings.TrimSpace(opts.Endpoint) != ""

	client := s3.New(s3.Options{
		Region:       region,
		Credentials:  credentials.NewStaticCredentialsProvider(accessKey, secretKey, ""),
		BaseEndpoint: aws.String(endpoint),
		UsePathStyle: pathStyle,
	})

	return &S3Store{
		client:       client,
		endpoint:     parsed,
		bucket:       bucket,
		prefix:       strings.Trim(strings.TrimSpace(opts.Prefix), "/"),
		customDomain: strings.TrimRight(strings.TrimSpace(opts.CustomDomain), "/"),
		pathStyle:    pathStyle,
	}, nil
}

func (s *S3Store) Put(ctx context.Context, objectKey string, payload []byte, contentType string) (string, error) {
	key := s.objectKey(objectKey)
	if key == "" {
		return "", fmt.Errorf("invalid s3 object key")
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(payload),
		ContentType:   aws.String(contentType),
		ContentLength: aws.Int64(int64(len(payload))),
	})
	if err != nil {
		return "", fmt.Errorf("s3 put %q: %w", key, err)
	}
	return s.publicURL(key), nil
}

func (s *S3Store) objectKey(key string) string {
	key = normalizeObjectKey(key)
	if key == "" {
		return ""
	}
	if s.prefix != "" {
		return s.prefix + "/" + key
	}
	return key
}

func (s *S3Store) publicURL(objectKey string) string {
	encoded := encodeObjectKey(objectKey)
	if s.customDomain != "" {
		return s.customDomain + "/" + encoded
	}

	basePath := strings.TrimSuffix(s.endpoint.Path, "/")
	if s.pathStyle {
		return s.endpoint.Scheme + "://" + s.endpoint.Host + joinURLPath(basePath, s.bucket, encoded)
	}
	host := s.endpoint.Host
	if !strings.HasPrefix(strings.ToLower(host), strings.ToLower(s.bucket)+".") {
		host = s.bucket + "." + host
	}
	return s.endpoint.Scheme + "://" + host + joinURLPath(basePath, encoded)
}
