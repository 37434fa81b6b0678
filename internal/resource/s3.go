package resource

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"craftbench/internal/bench"
	"craftbench/internal/config"
)

const s3Scheme = "s3://"

// S3API is the subset of the S3 client used by S3Store.
type S3API interface {
	manager.UploadAPIClient
	GetObject(ctx context.Context, in *s3.GetObjectInput, opts ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	DeleteObject(ctx context.Context, in *s3.DeleteObjectInput, opts ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// S3Store reads and writes objects addressed as s3://bucket/key.
type S3Store struct {
	client   S3API
	uploader *manager.Uploader
}

var _ bench.ResourceStore = (*S3Store)(nil)

// NewS3Store creates a store using client.
func NewS3Store(client S3API) *S3Store {
	return &S3Store{client: client, uploader: manager.NewUploader(client)}
}

// NewS3StoreFromConfig builds an S3 client from cfg. Static credentials are
// used when both keys are set; otherwise the default AWS credential chain
// applies.
func NewS3StoreFromConfig(ctx context.Context, cfg config.S3Config) (*S3Store, error) {
	var opts []func(*awsconfig.LoadOptions) error
	if cfg.Region != "" {
		opts = append(opts, awsconfig.WithRegion(cfg.Region))
	}
	if cfg.AccessKeyID != "" && cfg.SecretAccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, "")))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("loading aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = cfg.UsePathStyle
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
	})
	return NewS3Store(client), nil
}

// ReadText downloads the object at id. A missing key wraps fs.ErrNotExist.
func (s *S3Store) ReadText(ctx context.Context, id string) (string, error) {
	bucket, key, err := parseS3ID(id)
	if err != nil {
		return "", err
	}

	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{Bucket: aws.String(bucket), Key: aws.String(key)})
	if err != nil {
		var nsk *types.NoSuchKey
		if errors.As(err, &nsk) {
			return "", fmt.Errorf("%s: %w", id, fs.ErrNotExist)
		}
		return "", fmt.Errorf("getting object %s: %w", id, err)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return "", fmt.Errorf("reading object %s: %w", id, err)
	}
	return string(data), nil
}

// WriteText uploads content to id, replacing any existing object.
func (s *S3Store) WriteText(ctx context.Context, id string, content string) error {
	bucket, key, err := parseS3ID(id)
	if err != nil {
		return err
	}

	_, err = s.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
		Body:   strings.NewReader(content),
	})
	if err != nil {
		return fmt.Errorf("uploading object %s: %w", id, err)
	}
	return nil
}

// Delete removes the object at id.
func (s *S3Store) Delete(ctx context.Context, id string) error {
	bucket, key, err := parseS3ID(id)
	if err != nil {
		return err
	}

	if _, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{Bucket: aws.String(bucket), Key: aws.String(key)}); err != nil {
		return fmt.Errorf("deleting object %s: %w", id, err)
	}
	return nil
}

func (s *S3Store) Basename(id string) string {
	return path.Base(strings.TrimPrefix(id, s3Scheme))
}

// Dirname returns the s3:// prefix containing id, without a trailing slash.
func (s *S3Store) Dirname(id string) string {
	return s3Scheme + path.Dir(strings.TrimPrefix(id, s3Scheme))
}

func (s *S3Store) Join(dir, name string) string {
	return s3Scheme + path.Join(strings.TrimPrefix(dir, s3Scheme), name)
}

// parseS3ID splits s3://bucket/key into bucket and key.
func parseS3ID(id string) (bucket, key string, err error) {
	rest, ok := strings.CutPrefix(id, s3Scheme)
	if !ok {
		return "", "", fmt.Errorf("not an s3 resource: %s", id)
	}
	bucket, key, ok = strings.Cut(rest, "/")
	if !ok || bucket == "" || key == "" || strings.HasSuffix(key, "/") {
		return "", "", fmt.Errorf("s3 resource must be s3://bucket/key: %s", id)
	}
	return bucket, key, nil
}
