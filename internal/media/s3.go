package media

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
	"github.com/pkg/errors"
)

// S3Storage puts objects in a bucket and links to them directly.
// Credentials come from the default AWS chain.
type S3Storage struct {
	client s3iface.S3API
	bucket string
	region string
}

func NewS3Storage(bucket, region string) (*S3Storage, error) {
	sess, err := session.NewSession(&aws.Config{Region: aws.String(region)})
	if err != nil {
		return nil, errors.Wrap(err, "error creating AWS session")
	}
	return &S3Storage{client: s3.New(sess), bucket: bucket, region: region}, nil
}

func (s *S3Storage) Save(ctx context.Context, name, contentType string, data []byte) (string, error) {
	key := postKey(name, time.Now())
	_, err := s.client.PutObjectWithContext(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", errors.Wrapf(err, "error uploading %s to s3", key)
	}
	return key, nil
}

func (s *S3Storage) URL(key string) string {
	if key == "" {
		return ""
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.bucket, s.region, key)
}
