package objectstore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"slices"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/xlml/bench-metrics/internal/abstractions"
	"github.com/xlml/bench-metrics/internal/config"
)

// S3Client is the subset of the S3 API the store needs.
type S3Client interface {
	s3.ListObjectsV2APIClient
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// S3Store serves gs:// and s3:// locations through the S3 API. GCS buckets
// are reached through its S3 interoperability endpoint with HMAC keys.
type S3Store struct {
	scheme string
	client S3Client
}

func NewS3StoreWithClient(scheme string, client S3Client) *S3Store {
	return &S3Store{scheme: scheme, client: client}
}

// NewS3Store builds a client from the default AWS credential chain, or from
// the static keys in the configuration when they are set.
func NewS3Store(ctx context.Context, scheme string, cfg *config.ObjectStoreConfig) (*S3Store, error) {
	var opts []func(*awsconfig.LoadOptions) error
	if cfg != nil {
		if cfg.Region != "" {
			opts = append(opts, awsconfig.WithRegion(cfg.Region))
		}
		if cfg.AccessKeyID != "" {
			opts = append(opts, awsconfig.WithCredentialsProvider(
				credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
			))
		}
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS SDK config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg == nil || scheme != SchemeGCS {
			return
		}
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		o.UsePathStyle = cfg.UsePathStyle
		// the interoperability API rejects the default checksum headers
		o.RequestChecksumCalculation = aws.RequestChecksumCalculationWhenRequired
		o.ResponseChecksumValidation = aws.ResponseChecksumValidationWhenRequired
	})
	return NewS3StoreWithClient(scheme, client), nil
}

func (s *S3Store) List(ctx context.Context, prefix string) ([]string, error) {
	parsed, err := ParseLocation(prefix)
	if err != nil {
		return nil, err
	}

	var keys []string
	paginator := s3.NewListObjectsV2Paginator(s.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(parsed.Bucket),
		Prefix: aws.String(parsed.Key),
	})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list %s: %w", prefix, err)
		}
		for _, object := range page.Contents {
			key := aws.ToString(object.Key)
			keys = append(keys, Location{Scheme: s.scheme, Bucket: parsed.Bucket, Key: key}.String())
		}
	}
	slices.Sort(keys)
	return keys, nil
}

func (s *S3Store) Open(ctx context.Context, location string) (io.ReadCloser, error) {
	parsed, err := ParseLocation(location)
	if err != nil {
		return nil, err
	}
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(parsed.Bucket),
		Key:    aws.String(parsed.Key),
	})
	if err != nil {
		var noSuchKey *types.NoSuchKey
		if errors.As(err, &noSuchKey) {
			return nil, fmt.Errorf("%s: %w", location, abstractions.ErrObjectNotFound)
		}
		return nil, fmt.Errorf("failed to read %s: %w", location, err)
	}
	return out.Body, nil
}
