package artifact

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// S3Getter downloads objects through the AWS SDK transfer manager.
type S3Getter struct {
	downloader *manager.Downloader
}

var _ ObjectGetter = (*S3Getter)(nil)

// NewS3Getter wraps an S3 API client.
func NewS3Getter(client manager.DownloadAPIClient) *S3Getter {
	return &S3Getter{downloader: manager.NewDownloader(client)}
}

// NewS3GetterFromEnv resolves credentials through the default AWS chain.
func NewS3GetterFromEnv(ctx context.Context, region string) (*S3Getter, error) {
	var opts []func(*awsconfig.LoadOptions) error
	if region != "" {
		opts = append(opts, awsconfig.WithRegion(region))
	}
	cfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("artifact s3: load aws config: %w", err)
	}
	return NewS3Getter(s3.NewFromConfig(cfg)), nil
}

// GetObject downloads bucket/key into memory.
func (g *S3Getter) GetObject(ctx context.Context, bucket, key string) ([]byte, error) {
	buf := manager.NewWriteAtBuffer(nil)
	_, err := g.downloader.Download(ctx, buf, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		var nsk *types.NoSuchKey
		if errors.As(err, &nsk) {
			return nil, fmt.Errorf("%w: s3://%s/%s", ErrNotFound, bucket, key)
		}
		var nf *types.NotFound
		if errors.As(err, &nf) {
			return nil, fmt.Errorf("%w: s3://%s/%s", ErrNotFound, bucket, key)
		}
		return nil, fmt.Errorf("artifact s3: get s3://%s/%s: %w", bucket, key, err)
	}
	return buf.Bytes(), nil
}

// MinioGetter reads objects from MinIO and other S3-compatible endpoints.
type MinioGetter struct {
	client *minio.Client
}

var _ ObjectGetter = (*MinioGetter)(nil)

// MinioConfig describes an S3-compatible endpoint.
type MinioConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Region    string
	Secure    bool
}

// NewMinioGetter connects to the endpoint in cfg.
func NewMinioGetter(cfg MinioConfig) (*MinioGetter, error) {
	if cfg.Endpoint == "" {
		return nil, errors.New("artifact minio: endpoint is required")
	}
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.Secure,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("artifact minio: new client: %w", err)
	}
	return &MinioGetter{client: client}, nil
}

// GetObject reads bucket/key fully.
func (g *MinioGetter) GetObject(ctx context.Context, bucket, key string) ([]byte, error) {
	obj, err := g.client.GetObject(ctx, bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, g.mapError(err, bucket, key)
	}
	defer obj.Close()

	data, err := io.ReadAll(obj)
	if err != nil {
		return nil, g.mapError(err, bucket, key)
	}
	return data, nil
}

func (g *MinioGetter) mapError(err error, bucket, key string) error {
	errResp := minio.ToErrorResponse(err)
	if errResp.Code == "NoSuchKey" || errResp.Code == "NotFound" || errResp.Code == "NoSuchBucket" {
		return fmt.Errorf("%w: s3://%s/%s", ErrNotFound, bucket, key)
	}
	return fmt.Errorf("artifact minio: get s3://%s/%s: %w", bucket, key, err)
}
