// internal/common/aws/s3.go
package aws

import (
	"context"
	"fmt"
	"io"

	apperrors "loan-risk-workers/internal/common/errors"
	"loan-risk-workers/internal/common/validation"
	"loan-risk-workers/internal/models"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// ObjectGetter is the subset of *s3.Client the fetcher needs.
type ObjectGetter interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// DocumentFetcher downloads uploaded documents from S3.
type DocumentFetcher struct {
	client        ObjectGetter
	defaultBucket string
}

func NewDocumentFetcher(client ObjectGetter, defaultBucket string) *DocumentFetcher {
	return &DocumentFetcher{client: client, defaultBucket: defaultBucket}
}

// NewS3Client builds an S3 client. endpoint is optional and switches to path-style
// addressing for S3-compatible stores.
func NewS3Client(ctx context.Context, region, endpoint string) (*s3.Client, error) {
	cfg, err := LoadConfig(ctx, region)
	if err != nil {
		return nil, err
	}
	return s3.NewFromConfig(cfg, func(o *s3.Options) {
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
			o.UsePathStyle = true
		}
	}), nil
}

// Fetch downloads ref as a document of the given kind. Objects whose reported length
// exceeds the limit for their media type are rejected before the body is read.
func (f *DocumentFetcher) Fetch(ctx context.Context, kind models.DocumentKind, ref models.DocumentRef) (*models.RawDocument, error) {
	bucket := ref.Bucket
	if bucket == "" {
		bucket = f.defaultBucket
	}
	if bucket == "" || ref.Key == "" {
		return nil, apperrors.NewInvalidInputError(fmt.Sprintf("%s: bucket and key are required", kind))
	}

	limit := validation.MaxSize(ref.MimeType)
	if limit == 0 {
		return nil, apperrors.NewDocumentValidationFailedError(
			fmt.Sprintf("%s: unsupported media type %q", kind, ref.MimeType))
	}

	out, err := f.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(ref.Key),
	})
	if err != nil {
		return nil, apperrors.NewDocumentFetchFailedError(ref.Key, err)
	}
	defer out.Body.Close()

	if out.ContentLength != nil && *out.ContentLength > int64(limit) {
		return nil, apperrors.NewDocumentValidationFailedError(
			fmt.Sprintf("%s: object %s is %d bytes, limit is %d", kind, ref.Key, *out.ContentLength, limit))
	}

	data, err := io.ReadAll(io.LimitReader(out.Body, int64(limit)+1))
	if err != nil {
		return nil, apperrors.NewDocumentFetchFailedError(ref.Key, err)
	}
	if len(data) > limit {
		return nil, apperrors.NewDocumentValidationFailedError(
			fmt.Sprintf("%s: object %s exceeds %d bytes", kind, ref.Key, limit))
	}

	return &models.RawDocument{
		Kind:     kind,
		MimeType: ref.MimeType,
		Data:     data,
		Source:   fmt.Sprintf("s3://%s/%s", bucket, ref.Key),
	}, nil
}
