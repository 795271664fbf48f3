package storage

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// S3Options 描述 S3 兼容存储的连接参数。
type S3Options struct {
	Region        string
	AccessKey     string
	SecretKey     string
	Bucket        string
	Endpoint      string // optional, for S3-compatible services
	PublicBaseURL string // optional CDN/custom domain
}

type s3API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// S3Store 将对象写入 S3 bucket。
type S3Store struct {
	client  s3API
	bucket  string
	region  string
	baseURL string
}

// NewS3Store 使用静态凭证构造 S3Store。
func NewS3Store(ctx context.Context, opts S3Options) (*S3Store, error) {
	if opts.AccessKey == "" || opts.SecretKey == "" {
		return nil, fmt.Errorf("S3_ACCESS_KEY or S3_SECRET_KEY missing")
	}
	if opts.Bucket == "" {
		return nil, fmt.Errorf("s3 bucket is required")
	}

	cfg, err := config.LoadDefaultConfig(ctx,
		config.WithRegion(opts.Region),
		config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(opts.AccessKey, opts.SecretKey, ""),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if opts.Endpoint != "" {
			o.BaseEndpoint = aws.String(opts.Endpoint)
			o.UsePathStyle = true
		}
	})

	return newS3Store(client, opts), nil
}

func newS3Store(client s3API, opts S3Options) *S3Store {
	return &S3Store{
		client:  client,
		bucket:  opts.Bucket,
		region:  opts.Region,
		baseURL: strings.TrimSuffix(opts.PublicBaseURL, "/"),
	}
}

// Put 上传对象。
func (s *S3Store) Put(ctx context.Context, key, contentType string, body io.Reader, size int64) error {
	cleaned, err := cleanKey(key)
	if err != nil {
		return err
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	input := &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(cleaned),
		Body:        body,
		ContentType: aws.String(contentType),
	}
	if size > 0 {
		input.ContentLength = aws.Int64(size)
	}

	if _, err := s.client.PutObject(ctx, input); err != nil {
		return fmt.Errorf("S3 upload failed: %w", err)
	}
	return nil
}

// Delete 删除对象。
func (s *S3Store) Delete(ctx context.Context, key string) error {
	cleaned, err := cleanKey(key)
	if err != nil {
		return err
	}
	if _, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(cleaned),
	}); err != nil {
		return fmt.Errorf("S3 delete failed: %w", err)
	}
	return nil
}

// PublicURL 优先使用自定义域名，否则拼接 bucket 的虚拟主机地址。
func (s *S3Store) PublicURL(key string) string {
	key = strings.TrimLeft(key, "/")
	if s.baseURL != "" {
		return fmt.Sprintf("%s/%s", s.baseURL, key)
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.bucket, s.region, key)
}
