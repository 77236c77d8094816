// Package s3 implements an object-store-backed reload.Source over the AWS
// SDK v2 S3 client: HeadObject for the cheap metadata probe, GetObject for
// the full body fetch.
package s3

import (
	"bytes"
	"context"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	smithyhttp "github.com/aws/smithy-go/transport/http"

	"github.com/vishalvchavan/streamsmt/internal/reload"
	engerrors "github.com/vishalvchavan/streamsmt/pkg/errors"
)

// Options configures the S3-backed mapping source (spec §6.4 "Remote
// endpoint / bucket / credentials / region").
type Options struct {
	Bucket   string
	Key      string
	Region   string
	Endpoint string // non-empty for S3-compatible stores (e.g. MinIO)

	AccessKeyID     string
	SecretAccessKey string

	UsePathStyle bool
}

// Source fetches the mapping document body and ETag from an S3-compatible
// object store. It holds a long-lived *s3.Client, released by Close (a
// no-op: the SDK client owns no background resources worth stopping, but
// Close exists to satisfy reload.Source's teardown contract).
type Source struct {
	client *s3.Client
	bucket string
	key    string
}

// New builds a Source from opts, resolving the AWS SDK config the same way
// a long-lived service client does: static credentials when supplied,
// region override, and an optional custom endpoint for S3-compatible
// stores.
func New(ctx context.Context, opts Options) (*Source, error) {
	var loadOpts []func(*awsconfig.LoadOptions) error
	if opts.Region != "" {
		loadOpts = append(loadOpts, awsconfig.WithRegion(opts.Region))
	}
	if opts.AccessKeyID != "" {
		loadOpts = append(loadOpts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(opts.AccessKeyID, opts.SecretAccessKey, ""),
		))
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, engerrors.Wrap(err, engerrors.EInternal, "failed to load AWS SDK configuration")
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if opts.Endpoint != "" {
			o.BaseEndpoint = aws.String(opts.Endpoint)
		}
		o.UsePathStyle = opts.UsePathStyle
	})

	return &Source{client: client, bucket: opts.Bucket, key: opts.Key}, nil
}

// Probe implements reload.Source via s3.HeadObject.
func (s *Source) Probe(ctx context.Context) (reload.Metadata, error) {
	out, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key),
	})
	if err != nil {
		return reload.Metadata{}, wrapS3Error(err, "head", s.bucket, s.key)
	}

	if out.ETag == nil {
		return reload.Metadata{}, nil
	}
	return reload.Metadata{ETag: *out.ETag, HasETag: true}, nil
}

// Fetch implements reload.Source via s3.GetObject.
func (s *Source) Fetch(ctx context.Context) (reload.Fetched, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key),
	})
	if err != nil {
		return reload.Fetched{}, wrapS3Error(err, "get", s.bucket, s.key)
	}
	defer out.Body.Close()

	buf := &bytes.Buffer{}
	if out.ContentLength != nil && *out.ContentLength > 0 {
		buf.Grow(int(*out.ContentLength))
	}
	if _, err := io.Copy(buf, out.Body); err != nil {
		return reload.Fetched{}, engerrors.Wrap(err, engerrors.EUnavailable, "failed to read S3 object body for s3://%s/%s", s.bucket, s.key)
	}

	f := reload.Fetched{Body: buf.Bytes()}
	if out.ETag != nil {
		f.ETag = *out.ETag
		f.HasETag = true
	}
	return f, nil
}

// Close satisfies reload.Source; the SDK client owns no resources that
// need releasing.
func (s *Source) Close() error { return nil }

func wrapS3Error(err error, op, bucket, key string) error {
	var respErr *smithyhttp.ResponseError
	if ok := asResponseError(err, &respErr); ok {
		return engerrors.Wrap(err, engerrors.EUnavailable, "%s s3://%s/%s failed with status %d", op, bucket, key, respErr.HTTPStatusCode())
	}
	return engerrors.Wrap(err, engerrors.EUnavailable, "%s s3://%s/%s failed", op, bucket, key)
}

func asResponseError(err error, target **smithyhttp.ResponseError) bool {
	for err != nil {
		if re, ok := err.(*smithyhttp.ResponseError); ok {
			*target = re
			return true
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = u.Unwrap()
	}
	return false
}
