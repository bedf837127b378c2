package s3

import (
	"context"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	s3aws "github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/conduithq/conduit/core/storage"
)

var _ storage.Backend = (*Backend)(nil)

// Client defines the S3 operations the backend needs.
type Client interface {
	PutObject(ctx context.Context, params *s3aws.PutObjectInput, optFns ...func(*s3aws.Options)) (*s3aws.PutObjectOutput, error)
	GetObject(ctx context.Context, params *s3aws.GetObjectInput, optFns ...func(*s3aws.Options)) (*s3aws.GetObjectOutput, error)
}

// Backend is a core/storage.Backend that lands file-destination output in
// S3 (or an S3-compatible service). S3 objects have no native append
// operation, so appendMode is emulated with a read-modify-write: the
// existing object is fetched, the new data concatenated, and the result
// rewritten in full. This is not atomic under concurrent writers to the
// same key -- acceptable for the file destination's per-channel usage but
// worth calling out explicitly.
type Backend struct {
	client Client
	bucket string
	prefix string
}

// Config configures the S3 backend.
type Config struct {
	Bucket         string
	Region         string
	AccessKeyID    string
	SecretKey      string
	Endpoint       string
	ForcePathStyle bool
	// Prefix is prepended to every key, e.g. "conduit/destinations/".
	Prefix string
}

// Option customizes backend construction, primarily for testing.
type Option func(*options)

type options struct {
	client Client
}

// WithClient injects a pre-built client, used by tests to supply a fake.
func WithClient(c Client) Option {
	return func(o *options) { o.client = c }
}

func New(ctx context.Context, cfg Config, opts ...Option) (*Backend, error) {
	if cfg.Bucket == "" || cfg.Region == "" {
		return nil, storage.ErrInvalidConfig
	}

	o := &options{}
	for _, opt := range opts {
		opt(o)
	}

	client := o.client
	if client == nil {
		awsOpts := []func(*config.LoadOptions) error{config.WithRegion(cfg.Region)}
		if cfg.AccessKeyID != "" && cfg.SecretKey != "" {
			awsOpts = append(awsOpts, config.WithCredentialsProvider(
				credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretKey, ""),
			))
		}

		awsCfg, err := config.LoadDefaultConfig(ctx, awsOpts...)
		if err != nil {
			return nil, fmt.Errorf("load AWS config: %w", err)
		}

		client = s3aws.NewFromConfig(awsCfg, func(o *s3aws.Options) {
			if cfg.Endpoint != "" {
				o.BaseEndpoint = aws.String(cfg.Endpoint)
			}
			o.UsePathStyle = cfg.ForcePathStyle
		})
	}

	return &Backend{client: client, bucket: cfg.Bucket, prefix: cfg.Prefix}, nil
}

func (b *Backend) key(key string) string {
	if b.prefix == "" {
		return key
	}
	return b.prefix + key
}

func (b *Backend) Write(ctx context.Context, key string, data []byte, appendMode bool) error {
	fullKey, err := storage.ValidatePath("", b.key(key))
	if err != nil {
		return err
	}

	if appendMode {
		existing, err := b.readExisting(ctx, fullKey)
		if err != nil {
			return err
		}
		data = append(existing, data...)
	}

	_, err = b.client.PutObject(ctx, &s3aws.PutObjectInput{
		Bucket: aws.String(b.bucket),
		Key:    aws.String(fullKey),
		Body:   newReader(data),
	})
	if err != nil {
		return classifyS3Error(err, "put object")
	}

	return nil
}

func (b *Backend) readExisting(ctx context.Context, fullKey string) ([]byte, error) {
	out, err := b.client.GetObject(ctx, &s3aws.GetObjectInput{
		Bucket: aws.String(b.bucket),
		Key:    aws.String(fullKey),
	})
	if err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, classifyS3Error(err, "get object")
	}
	defer out.Body.Close()

	return io.ReadAll(out.Body)
}
