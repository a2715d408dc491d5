package storage

import (
	"context"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// s3iface is the subset of the s3 client we call; tests swap in a fake.
type s3iface interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// AWSOptions configures SDK clients. Empty fields fall back to the default
// credential chain and region resolution.
type AWSOptions struct {
	Region          string
	AccessKeyID     string
	SecretAccessKey string
	SessionToken    string
	Endpoint        string
	PathStyle       bool
}

// LoadAWSConfig resolves an aws.Config, pinning region and static
// credentials when they are set.
func LoadAWSConfig(ctx context.Context, o AWSOptions) (aws.Config, error) {
	var opts []func(*config.LoadOptions) error
	if o.Region != "" {
		opts = append(opts, config.WithRegion(o.Region))
	}
	if o.AccessKeyID != "" && o.SecretAccessKey != "" {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(o.AccessKeyID, o.SecretAccessKey, o.SessionToken),
		))
	}
	return config.LoadDefaultConfig(ctx, opts...)
}

// newS3Client constructs an s3 client; overridden in tests.
var newS3Client = func(ctx context.Context, o AWSOptions) (s3iface, error) {
	cfg, err := LoadAWSConfig(ctx, o)
	if err != nil {
		return nil, err
	}
	return s3.NewFromConfig(cfg, func(so *s3.Options) {
		if o.Endpoint != "" {
			so.BaseEndpoint = aws.String(o.Endpoint)
		}
		so.UsePathStyle = o.PathStyle
	}), nil
}

type S3Store struct {
	client s3iface
}

// NewS3 creates an S3 reader. Endpoint and PathStyle support MinIO and
// localstack.
func NewS3(ctx context.Context, o AWSOptions) (*S3Store, error) {
	c, err := newS3Client(ctx, o)
	if err != nil {
		return nil, fmt.Errorf("s3 init: %w", err)
	}
	return &S3Store{client: c}, nil
}

func (s *S3Store) Read(ctx context.Context, bucket, key string) ([]byte, error) {
	if bucket == "" || key == "" {
		return nil, ErrInvalidLocation
	}
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket), Key: aws.String(key),
	})
	if err != nil {
		return nil, fmt.Errorf("get s3://%s/%s: %w", bucket, key, err)
	}
	defer out.Body.Close()
	b, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, fmt.Errorf("read s3://%s/%s: %w", bucket, key, err)
	}
	return b, nil
}
