package storage

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// ObjectPutter is the slice of the S3 client the storer needs.
type ObjectPutter interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

type R2Options struct {
	Endpoint        string
	Bucket          string
	PublicBaseURL   string
	AccessKeyID     string
	SecretAccessKey string
}

// R2Storer uploads documents to an S3-compatible bucket such as Cloudflare R2.
type R2Storer struct {
	client        ObjectPutter
	bucket        string
	publicBaseURL string
}

func NewR2Storer(ctx context.Context, opts R2Options) (*R2Storer, error) {
	if opts.AccessKeyID == "" || opts.SecretAccessKey == "" {
		return nil, fmt.Errorf("AWS_ACCESS_KEY_ID and AWS_SECRET_ACCESS_KEY must be set")
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion("auto"),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			opts.AccessKeyID,
			opts.SecretAccessKey,
			"",
		)),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(opts.Endpoint)
		o.UsePathStyle = true
	})
	return NewR2StorerWithClient(client, opts.Bucket, opts.PublicBaseURL), nil
}

func NewR2StorerWithClient(client ObjectPutter, bucket, publicBaseURL string) *R2Storer {
	return &R2Storer{client: client, bucket: bucket, publicBaseURL: strings.TrimRight(publicBaseURL, "/")}
}

func (rs *R2Storer) Store(ctx context.Context, userID, carouselID, fileName string, data []byte) (string, error) {
	key, err := objectKey(userID, carouselID, fileName)
	if err != nil {
		return "", err
	}

	_, err = rs.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:             aws.String(rs.bucket),
		Key:                aws.String(key),
		Body:               bytes.NewReader(data),
		ContentType:        aws.String("application/pdf"),
		ContentDisposition: aws.String(fmt.Sprintf("attachment; filename=%q", fileName)),
	})
	if err != nil {
		log.Printf("ERROR (R2Storer): Failed to upload %s to bucket %s: %v", key, rs.bucket, err)
		return "", fmt.Errorf("failed to upload document: %w", err)
	}

	if rs.publicBaseURL == "" {
		return key, nil
	}
	return rs.publicBaseURL + "/" + key, nil
}
