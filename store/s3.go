package store

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	awscreds "github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"bucketdrop/credentials"
	"bucketdrop/logger"
)

// s3Store uploads to S3 with static credentials from the secrets store.
type s3Store struct {
	client   *s3.Client
	uploader *manager.Uploader
	region   string
}

// OpenS3 loads the s3 record and builds a self-contained client.
func OpenS3(ctx context.Context) (ObjectStore, error) {
	creds, err := credentials.LoadS3()
	if err != nil {
		return nil, err
	}

	client := s3.New(s3.Options{
		Region:      creds.Region,
		Credentials: awscreds.NewStaticCredentialsProvider(creds.AccessKeyID, creds.SecretAccessKey, ""),
	})

	return &s3Store{
		client:   client,
		uploader: manager.NewUploader(client),
		region:   creds.Region,
	}, nil
}

func (s *s3Store) EnsureBucket(ctx context.Context, name string) (bool, error) {
	_, err := s.client.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(name)})
	if err == nil {
		return false, nil
	}
	var notFound *types.NotFound
	if !errors.As(err, &notFound) {
		return false, &BucketError{Bucket: name, Err: err}
	}

	input := &s3.CreateBucketInput{Bucket: aws.String(name)}
	// us-east-1 rejects an explicit location constraint.
	if s.region != "us-east-1" {
		input.CreateBucketConfiguration = &types.CreateBucketConfiguration{
			LocationConstraint: types.BucketLocationConstraint(s.region),
		}
	}
	if _, err := s.client.CreateBucket(ctx, input); err != nil {
		return false, &BucketError{Bucket: name, Err: err}
	}
	logger.Infof("Created bucket '%s' in region '%s'", name, s.region)
	return true, nil
}

func (s *s3Store) Put(ctx context.Context, bucket, key, contentType string, r io.Reader, size int64) error {
	_, err := s.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(bucket),
		Key:         aws.String(key),
		Body:        r,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return fmt.Errorf("failed to upload object %s to bucket %s: %w", key, bucket, err)
	}
	return nil
}

func (s *s3Store) Close() error { return nil }
