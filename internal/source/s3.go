package source

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	aws "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// ObjectGetter is the subset of *s3.Client the opener needs.
type ObjectGetter interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// S3Config holds client construction parameters. Credentials always come
// from the AWS default chain (AWS_ACCESS_KEY_ID, profiles, instance roles).
type S3Config struct {
	Region    string
	Endpoint  string // optional; enables S3-compatible stores such as MinIO
	PathStyle bool
}

// Environment variables:
//
//	TALLY_S3_REGION=<region> (default us-east-1)
//	TALLY_S3_ENDPOINT=<url> (optional)
//	TALLY_S3_PATH_STYLE=true|false (default false)

// S3ConfigFromEnv reads S3Config from process environment.
func S3ConfigFromEnv() S3Config {
	return S3Config{
		Region:    os.Getenv("TALLY_S3_REGION"),
		Endpoint:  os.Getenv("TALLY_S3_ENDPOINT"),
		PathStyle: strings.EqualFold(os.Getenv("TALLY_S3_PATH_STYLE"), "true"),
	}
}

// NewS3Client builds an S3 client from cfg and the default credential chain.
func NewS3Client(ctx context.Context, cfg S3Config, optFns ...func(*config.LoadOptions) error) (*s3.Client, error) {
	region := cfg.Region
	if region == "" {
		region = "us-east-1"
	}
	loadOpts := append([]func(*config.LoadOptions) error{config.WithRegion(region)}, optFns...)
	awsCfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	return s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.PathStyle {
			o.UsePathStyle = true
		}
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
	}), nil
}

func getObject(ctx context.Context, client ObjectGetter, bucket, key string) (io.ReadCloser, error) {
	out, err := client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, fmt.Errorf("get s3://%s/%s: %w", bucket, key, err)
	}
	return out.Body, nil
}
