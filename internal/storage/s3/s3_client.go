package s3

import (
	"context"
	"fmt"
	"io"
	"path"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"tikaparse/internal/config"
	"tikaparse/internal/port"
	"tikaparse/internal/tika"
)

// Storage is the S3-backed port.ObjectStorage.
type Storage struct {
	client     *s3.Client
	presigner  *s3.PresignClient
	uploader   *manager.Uploader
	downloader *manager.Downloader
}

var _ port.ObjectStorage = (*Storage)(nil)

// NewStorage creates a Storage from configuration. A custom endpoint
// (MinIO, LocalStack) switches to path-style addressing.
func NewStorage(ctx context.Context, cfg *config.S3Config) (*Storage, error) {
	var opts []func(*awsconfig.LoadOptions) error
	opts = append(opts, awsconfig.WithRegion(cfg.Region))

	if cfg.AccessKey != "" && cfg.SecretKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("loading aws config: %w", err)
	}

	var s3Opts []func(*s3.Options)
	if cfg.Endpoint != "" {
		s3Opts = append(s3Opts, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		})
	}

	return New(s3.NewFromConfig(awsCfg, s3Opts...)), nil
}

// New wraps an existing S3 client.
func New(client *s3.Client) *Storage {
	return &Storage{
		client:     client,
		presigner:  s3.NewPresignClient(client),
		uploader:   manager.NewUploader(client),
		downloader: manager.NewDownloader(client),
	}
}

func (c *Storage) Upload(ctx context.Context, input port.UploadInput) (*port.UploadOutput, error) {
	result, err := c.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(input.Bucket),
		Key:         aws.String(input.Key),
		Body:        input.Body,
		ContentType: aws.String(input.ContentType),
	})
	if err != nil {
		return nil, fmt.Errorf("s3 upload: %w", err)
	}

	etag := ""
	if result.ETag != nil {
		etag = *result.ETag
	}

	return &port.UploadOutput{
		Location: result.Location,
		ETag:     etag,
	}, nil
}

// Download fetches the whole object with concurrent ranged GETs.
func (c *Storage) Download(ctx context.Context, bucket, key string) ([]byte, error) {
	buf := manager.NewWriteAtBuffer(nil)
	if _, err := c.downloader.Download(ctx, buf, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	}); err != nil {
		return nil, fmt.Errorf("s3 download: %w", err)
	}
	return buf.Bytes(), nil
}

func (c *Storage) Delete(ctx context.Context, bucket, key string) error {
	_, err := c.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("s3 delete: %w", err)
	}
	return nil
}

func (c *Storage) GetPresignedURL(ctx context.Context, bucket, key string, expirySeconds int64) (string, error) {
	result, err := c.presigner.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(time.Duration(expirySeconds)*time.Second))
	if err != nil {
		return "", fmt.Errorf("s3 presign: %w", err)
	}
	return result.URL, nil
}

// Source streams an object straight into a Tika call without buffering it.
func (c *Storage) Source(bucket, key string) tika.Source {
	return objectSource{client: c.client, bucket: bucket, key: key}
}

type objectSource struct {
	client *s3.Client
	bucket string
	key    string
}

func (o objectSource) Open(ctx context.Context) (io.ReadCloser, string, error) {
	out, err := o.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(o.bucket),
		Key:    aws.String(o.key),
	})
	if err != nil {
		return nil, "", fmt.Errorf("s3 get %s/%s: %w", o.bucket, o.key, err)
	}
	return out.Body, path.Base(o.key), nil
}
