package storage

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	"github.com/PromptBay/promptbay/internal/pkg/env"
)

// Config holds the object storage settings for result media uploads.
type Config struct {
	AccessKeyID     string
	SecretAccessKey string
	Region          string
	BucketName      string
	EndpointURL     string // Optional for S3-compatible services
	PublicBaseURL   string
}

// LoadConfig loads object storage configuration from environment variables
func LoadConfig() (*Config, error) {
	cfg := &Config{
		AccessKeyID:     env.GetEnv("S3_ACCESS_KEY_ID", ""),
		SecretAccessKey: env.GetEnv("S3_SECRET_ACCESS_KEY", ""),
		Region:          env.GetEnv("S3_REGION", "us-east-1"),
		BucketName:      env.GetEnv("S3_BUCKET_NAME", ""),
		EndpointURL:     env.GetEnv("S3_ENDPOINT_URL", ""),
		PublicBaseURL:   env.GetEnv("S3_PUBLIC_BASE_URL", ""),
	}

	if cfg.AccessKeyID == "" {
		return nil, errors.New("S3_ACCESS_KEY_ID is required")
	}
	if cfg.SecretAccessKey == "" {
		return nil, errors.New("S3_SECRET_ACCESS_KEY is required")
	}
	if cfg.BucketName == "" {
		return nil, errors.New("S3_BUCKET_NAME is required")
	}

	return cfg, nil
}

// MediaStore issues presigned PUT URLs so result media goes straight to
// object storage without passing through the API server.
type MediaStore struct {
	presigner *s3.PresignClient
	config    *Config
}

// NewMediaStore creates a media store client from the given config.
func NewMediaStore(cfg *Config) (*MediaStore, error) {
	awsConfig, err := config.LoadDefaultConfig(context.TODO(),
		config.WithRegion(cfg.Region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AccessKeyID,
			cfg.SecretAccessKey,
			"",
		)),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	s3Client := s3.NewFromConfig(awsConfig, func(o *s3.Options) {
		if cfg.EndpointURL != "" {
			o.BaseEndpoint = aws.String(cfg.EndpointURL)
			// S3-compatible services need path-style URLs
			o.UsePathStyle = true
			o.UseAccelerate = false
		}
	})

	return &MediaStore{
		presigner: s3.NewPresignClient(s3Client),
		config:    cfg,
	}, nil
}

var allowedMediaExt = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".gif":  "image/gif",
	".webp": "image/webp",
	".mp4":  "video/mp4",
	".webm": "video/webm",
	".mp3":  "audio/mpeg",
	".wav":  "audio/wav",
}

// ContentTypeForFilename maps a filename extension to its upload content
// type. Unknown extensions are rejected.
func ContentTypeForFilename(filename string) (string, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	contentType, ok := allowedMediaExt[ext]
	if !ok {
		return "", fmt.Errorf("unsupported media extension: %s", ext)
	}
	return contentType, nil
}

// PresignedUpload is the response handed to the client for one direct
// upload.
type PresignedUpload struct {
	UploadURL string `json:"upload_url"`
	ObjectKey string `json:"object_key"`
	PublicURL string `json:"public_url"`
	ExpiresIn int64  `json:"expires_in"`
}

// PresignUpload mints a time-limited PUT URL for one media object. The
// object key is server-generated so callers cannot overwrite foreign
// objects.
func (m *MediaStore) PresignUpload(ctx context.Context, userID uint, filename string) (*PresignedUpload, error) {
	contentType, err := ContentTypeForFilename(filename)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	ext := strings.ToLower(filepath.Ext(filename))
	objectKey := fmt.Sprintf("results/%04d/%02d/u%d/%s%s", now.Year(), int(now.Month()), userID, uuid.New().String(), ext)

	const expiry = 15 * time.Minute
	presigned, err := m.presigner.PresignPutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(m.config.BucketName),
		Key:         aws.String(objectKey),
		ContentType: aws.String(contentType),
	}, s3.WithPresignExpires(expiry))
	if err != nil {
		return nil, fmt.Errorf("failed to presign upload: %w", err)
	}

	return &PresignedUpload{
		UploadURL: presigned.URL,
		ObjectKey: objectKey,
		PublicURL: m.publicURL(objectKey),
		ExpiresIn: int64(expiry.Seconds()),
	}, nil
}

func (m *MediaStore) publicURL(objectKey string) string {
	base := strings.TrimRight(m.config.PublicBaseURL, "/")
	if base == "" {
		base = fmt.Sprintf("https://%s.s3.%s.amazonaws.com", m.config.BucketName, m.config.Region)
	}
	return base + "/" + objectKey
}
