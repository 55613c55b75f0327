package publish

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// S3Config represents the settings required to talk to S3 or an
// S3-compatible API
type S3Config struct {
	Bucket         string
	Region         string
	Endpoint       string
	KeyPrefix      string
	ForcePathStyle bool
}

type putObjectAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// New wires an S3 client if the configuration is complete, otherwise a
// disabled uploader
func New(ctx context.Context, cfg S3Config) (Uploader, error) {
	if cfg.Bucket == "" || cfg.Region == "" {
		return Disabled(), nil
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(cfg.Region))
	if err != nil {
		return nil, fmt.Errorf("load aws sdk config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = cfg.ForcePathStyle
		}
	})

	return newS3Uploader(client, cfg), nil
}

func newS3Uploader(client putObjectAPI, cfg S3Config) *s3Uploader {
	baseURL := ""
	if cfg.Endpoint != "" && cfg.ForcePathStyle {
		baseURL = fmt.Sprintf("%s/%s", strings.TrimSuffix(cfg.Endpoint, "/"), cfg.Bucket)
	}
	return &s3Uploader{
		client:  client,
		bucket:  cfg.Bucket,
		region:  cfg.Region,
		baseURL: baseURL,
		prefix:  strings.Trim(cfg.KeyPrefix, "/"),
	}
}

type s3Uploader struct {
	client  putObjectAPI
	bucket  string
	region  string
	baseURL string
	prefix  string
}

// Upload stores the dataset file in the configured bucket
func (u *s3Uploader) Upload(ctx context.Context, input Input) (Result, error) {
	if input.Path == "" {
		return Result{}, errors.New("dataset path is required")
	}

	f, err := os.Open(input.Path)
	if err != nil {
		return Result{}, fmt.Errorf("open dataset: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return Result{}, fmt.Errorf("stat dataset: %w", err)
	}

	key := Key(u.prefix, input.RunID, input.Path)
	putInput := &s3.PutObjectInput{
		Bucket:        aws.String(u.bucket),
		Key:           aws.String(key),
		Body:          f,
		ContentType:   aws.String(ContentType(input.Path)),
		ContentLength: aws.Int64(info.Size()),
	}
	if input.RunID != "" {
		putInput.Metadata = map[string]string{"run-id": input.RunID}
	}

	if _, err := u.client.PutObject(ctx, putInput); err != nil {
		return Result{}, fmt.Errorf("put object: %w", err)
	}

	return Result{
		Key: key,
		URL: u.objectURL(key),
	}, nil
}

func (u *s3Uploader) objectURL(key string) string {
	if u.baseURL != "" {
		return fmt.Sprintf("%s/%s", u.baseURL, key)
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", u.bucket, u.region, key)
}
