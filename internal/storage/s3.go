package storage

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// S3Store writes objects to a single S3 bucket.
type S3Store struct {
	client *s3.Client
	bucket string
}

// NewS3Store creates an object store backed by the given bucket.
func NewS3Store(client *s3.Client, bucket string) *S3Store {
	return &S3Store{
		client: client,
		bucket: bucket,
	}
}

// Put uploads one object. The MD5 header makes S3 reject a payload that was
// corrupted in transit.
func (s *S3Store) Put(ctx context.Context, req PutRequest) error {
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(req.Key),
		Body:          req.Body,
		CacheControl:  aws.String(req.CacheControl),
		ContentLength: aws.Int64(req.ContentLength),
		ContentMD5:    aws.String(req.ContentMD5),
		ContentType:   aws.String(req.ContentType),
	})
	if err != nil {
		return fmt.Errorf("failed to put object %s/%s: %w", s.bucket, req.Key, err)
	}

	return nil
}
