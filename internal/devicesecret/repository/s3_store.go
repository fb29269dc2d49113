package repository

import (
	"bytes"
	"context"
	"errors"
	"io"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"

	deviceDomain "github.com/allisson/devicesecret/internal/devicesecret/domain"
	apperrors "github.com/allisson/devicesecret/internal/errors"
)

// S3API is the subset of the S3 client used by S3Store. *s3.Client implements it.
type S3API interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Store keeps each value in an object named <prefix>/<namespace>/<key>.
type S3Store struct {
	client S3API
	bucket string
	prefix string
}

// NewS3Store creates an S3Store writing to bucket under prefix. prefix may be empty.
func NewS3Store(client S3API, bucket, prefix string) *S3Store {
	return &S3Store{
		client: client,
		bucket: bucket,
		prefix: strings.Trim(prefix, "/"),
	}
}

// Get downloads the object stored under namespace/key.
func (s *S3Store) Get(ctx context.Context, namespace, key string) ([]byte, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.objectKey(namespace, key)),
	})
	if err != nil {
		if isS3NotFound(err) {
			return nil, deviceDomain.ErrKeyNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get object")
	}
	defer func() {
		_ = out.Body.Close()
	}()

	value, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to read object body")
	}
	return value, nil
}

// Put uploads value as the object for namespace/key.
func (s *S3Store) Put(ctx context.Context, namespace, key string, value []byte) error {
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(s.objectKey(namespace, key)),
		Body:          bytes.NewReader(value),
		ContentLength: aws.Int64(int64(len(value))),
		ContentType:   aws.String("application/octet-stream"),
	})
	if err != nil {
		return apperrors.Wrap(err, "failed to put object")
	}
	return nil
}

func (s *S3Store) objectKey(namespace, key string) string {
	if s.prefix == "" {
		return path.Join(namespace, key)
	}
	return path.Join(s.prefix, namespace, key)
}

// isS3NotFound reports missing objects. S3-compatible servers do not all return the
// typed NoSuchKey error, so the generic API error code is checked as well.
func isS3NotFound(err error) bool {
	var noSuchKey *types.NoSuchKey
	if errors.As(err, &noSuchKey) {
		return true
	}
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "NoSuchKey", "NotFound":
			return true
		}
	}
	return false
}
