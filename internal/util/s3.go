package util

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/nakachan-ing/jmt-cli/internal/model"
)

// S3API is the slice of the S3 client used for sync.
type S3API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// ObjectKey is where a storage key lives in the bucket.
func ObjectKey(prefix, key string) string {
	return path.Join(prefix, key+".json")
}

// UploadToS3 writes a stored value to the bucket.
func UploadToS3(ctx context.Context, s3Client S3API, bucket, s3Key, value string) error {
	_, err := s3Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(bucket),
		Key:         aws.String(s3Key),
		Body:        strings.NewReader(value),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return fmt.Errorf("❌ Failed to upload %s to S3: %w", s3Key, err)
	}
	return nil
}

// DownloadFromS3 reads an object. ok is false when the object does not exist.
func DownloadFromS3(ctx context.Context, s3Client S3API, bucket, s3Key string) (value string, ok bool, err error) {
	resp, err := s3Client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(s3Key),
	})
	if err != nil {
		if isNotFoundErr(err) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("❌ Failed to download %s from S3: %w", s3Key, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", false, fmt.Errorf("❌ Failed to read %s from S3: %w", s3Key, err)
	}
	return string(data), true, nil
}

func isNotFoundErr(err error) bool {
	var noKey *types.NoSuchKey
	return errors.As(err, &noKey)
}

func NewS3Client(jmtConfig model.Config) (*s3.Client, error) {
	var opts []func(*config.LoadOptions) error
	if jmtConfig.Sync.AWSProfile != "" {
		opts = append(opts, config.WithSharedConfigProfile(jmtConfig.Sync.AWSProfile))
	}
	if jmtConfig.Sync.AWSRegion != "" {
		opts = append(opts, config.WithRegion(jmtConfig.Sync.AWSRegion))
	}
	cfg, err := config.LoadDefaultConfig(context.TODO(), opts...)
	if err != nil {
		return nil, fmt.Errorf("unable to load SDK config, %v", err)
	}

	return s3.NewFromConfig(cfg), nil
}
