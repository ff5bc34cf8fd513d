package s3

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"
	"github.com/rs/zerolog/log"
	"github.com/segmentio/ksuid"

	"github.com/jd-116/bulletin-board-api/env"
)

// Provider implements an upload provider against the S3 API
type Provider struct {
	maxBytes int64
	uploader *s3manager.Uploader
	bucket   string
}

// Config holds the settings needed to reach a bucket
type Config struct {
	Region          string
	AccessKeyID     string
	SecretAccessKey string
	Bucket          string
	MaxBytes        int64
	PartSize        int64
}

// Enabled reports whether uploads have been configured in the environment
func Enabled() bool {
	return env.GetEnvOrDefault("UPLOAD_S3_BUCKET", "") != ""
}

// NewProvider creates a new instance of a Provider
// and parses environment variables
func NewProvider() (*Provider, error) {
	maxBytes, err := env.GetBytesEnv("max upload file size", "UPLOAD_MAX_SIZE")
	if err != nil {
		return nil, err
	}

	// Parse the S3 credentials from the environment
	awsRegion, err := env.GetEnv("upload AWS region", "UPLOAD_AWS_REGION")
	if err != nil {
		return nil, err
	}
	awsAccessKeyID, err := env.GetEnv("upload AWS access key ID", "UPLOAD_AWS_ACCESS_KEY_ID")
	if err != nil {
		return nil, err
	}
	awsSecretAccessKey, err := env.GetEnv("upload AWS secret access key", "UPLOAD_AWS_SECRET_ACCESS_KEY")
	if err != nil {
		return nil, err
	}

	uploadPartSize, err := env.GetBytesEnv("upload part size", "UPLOAD_PART_SIZE")
	if err != nil {
		return nil, err
	}

	s3Bucket, err := env.GetEnv("upload S3 bucket", "UPLOAD_S3_BUCKET")
	if err != nil {
		return nil, err
	}

	return New(Config{
		Region:          awsRegion,
		AccessKeyID:     awsAccessKeyID,
		SecretAccessKey: awsSecretAccessKey,
		Bucket:          s3Bucket,
		MaxBytes:        int64(maxBytes.Bytes()),
		PartSize:        int64(uploadPartSize.Bytes()),
	})
}

// New creates a Provider from an explicit configuration
func New(config Config) (*Provider, error) {
	sess, err := session.NewSession(&aws.Config{
		Region:      aws.String(config.Region),
		Credentials: credentials.NewStaticCredentials(config.AccessKeyID, config.SecretAccessKey, ""),
	})
	if err != nil {
		return nil, err
	}

	uploader := s3manager.NewUploader(sess, func(u *s3manager.Uploader) {
		if config.PartSize > 0 {
			u.PartSize = config.PartSize
		}
		u.LeavePartsOnError = false
	})

	return &Provider{
		maxBytes: config.MaxBytes,
		uploader: uploader,
		bucket:   config.Bucket,
	}, nil
}

// MaxBytes gets the max number of bytes that can be uploaded at once
func (p *Provider) MaxBytes() int64 {
	return p.maxBytes
}

// Upload streams an image to S3 under a random name,
// returning the URL of the file once uploaded
func (p *Provider) Upload(ctx context.Context, body io.Reader, ext string, mime string) (string, error) {
	fileID, err := ksuid.NewRandom()
	if err != nil {
		return "", err
	}
	fileName := ObjectName(fileID, ext)
	log.Info().Str("file", fileName).Str("mime", mime).Msg("uploading file")

	result, err := p.uploader.UploadWithContext(ctx, &s3manager.UploadInput{
		Bucket:      aws.String(p.bucket),
		Key:         aws.String(fileName),
		Body:        body,
		ContentType: aws.String(mime),
	})
	if err != nil {
		return "", err
	}

	return result.Location, nil
}

// ObjectName builds the object key for an uploaded file
func ObjectName(id ksuid.KSUID, ext string) string {
	return fmt.Sprintf("%s.%s", id, strings.TrimPrefix(ext, "."))
}
