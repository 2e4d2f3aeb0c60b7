// Package archive keeps the original bytes of uploaded resumes in an
// S3-compatible bucket (DigitalOcean Spaces by default).
package archive

import (
	"bytes"
	"context"
	"fmt"
	"path"
	"regexp"
	"strings"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"

	"applytrack/internal/config"
	"applytrack/internal/logging"
	"applytrack/pkg/utils"
)

var unsafeKeyChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// SpacesArchive uploads resume files to a bucket and returns their public URL
type SpacesArchive struct {
	client     s3iface.S3API
	bucketName string
	bucketURL  string
	cdnURL     string
	region     string
	logger     logging.Logger
}

// NewSpacesArchive creates a client for the configured bucket
func NewSpacesArchive(cfg *config.Config) (*SpacesArchive, error) {
	logger := logging.GetGlobalLogger()

	if cfg.Spaces.AccessKeyID == "" || cfg.Spaces.AccessKeySecret == "" {
		return nil, fmt.Errorf("bucket credentials are required")
	}
	if cfg.Spaces.BucketName == "" {
		return nil, fmt.Errorf("bucket name is required")
	}

	// https://<region>.digitaloceanspaces.com unless an explicit endpoint is set
	endpoint := cfg.Spaces.Endpoint
	forcePathStyle := endpoint != ""
	if endpoint == "" {
		endpoint = fmt.Sprintf("https://%s.digitaloceanspaces.com", cfg.Spaces.Region)
	}

	sess, err := session.NewSession(&aws.Config{
		Credentials: credentials.NewStaticCredentials(
			cfg.Spaces.AccessKeyID,
			cfg.Spaces.AccessKeySecret,
			"",
		),
		Endpoint:         aws.String(endpoint),
		Region:           aws.String(cfg.Spaces.Region),
		S3ForcePathStyle: aws.Bool(forcePathStyle),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create bucket session: %w", err)
	}

	logger.Info("Resume archive initialized", map[string]interface{}{
		"bucket_name": cfg.Spaces.BucketName,
		"region":      cfg.Spaces.Region,
		"endpoint":    endpoint,
	})

	return NewSpacesArchiveWithClient(s3.New(sess), cfg), nil
}

// NewSpacesArchiveWithClient wraps an existing S3 client
func NewSpacesArchiveWithClient(client s3iface.S3API, cfg *config.Config) *SpacesArchive {
	return &SpacesArchive{
		client:     client,
		bucketName: cfg.Spaces.BucketName,
		bucketURL:  cfg.Spaces.BucketURL,
		cdnURL:     cfg.Spaces.CDNEndpoint,
		region:     cfg.Spaces.Region,
		logger:     logging.GetGlobalLogger().WithField("component", "archive"),
	}
}

// ObjectKey builds the key a resume upload is stored under
func ObjectKey(userID, filename string) string {
	name := unsafeKeyChars.ReplaceAllString(path.Base(filename), "_")
	if name == "" || name == "." || name == "_" {
		name = "resume"
	}
	user := strings.Trim(unsafeKeyChars.ReplaceAllString(userID, "_"), ".")
	return fmt.Sprintf("resumes/uploads/%s/%s-%s", user, utils.GenerateID(), name)
}

// Put uploads data and returns the URL it can be fetched from
func (a *SpacesArchive) Put(ctx context.Context, userID, filename, contentType string, data []byte) (string, error) {
	objectKey := ObjectKey(userID, filename)
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	_, err := a.client.PutObjectWithContext(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(a.bucketName),
		Key:         aws.String(objectKey),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
		ACL:         aws.String("private"),
	})
	if err != nil {
		a.logger.Error("Failed to archive resume upload", map[string]interface{}{
			"user_id":    userID,
			"object_key": objectKey,
			"error":      err.Error(),
		})
		return "", fmt.Errorf("failed to upload resume: %w", err)
	}

	url := a.objectURL(objectKey)
	a.logger.Info("Resume upload archived", map[string]interface{}{
		"user_id":    userID,
		"object_key": objectKey,
		"size_bytes": len(data),
	})
	return url, nil
}

func (a *SpacesArchive) objectURL(objectKey string) string {
	if a.cdnURL != "" {
		return fmt.Sprintf("%s/%s", strings.TrimRight(a.cdnURL, "/"), objectKey)
	}
	if a.bucketURL != "" {
		base := strings.TrimRight(a.bucketURL, "/")
		if !strings.HasPrefix(base, "https://") && !strings.HasPrefix(base, "http://") {
			base = "https://" + base
		}
		return fmt.Sprintf("%s/%s", base, objectKey)
	}
	return fmt.Sprintf("https://%s.%s.digitaloceanspaces.com/%s", a.bucketName, a.region, objectKey)
}

// IsHealthy checks that the bucket is reachable
func (a *SpacesArchive) IsHealthy(ctx context.Context) error {
	_, err := a.client.HeadBucketWithContext(ctx, &s3.HeadBucketInput{
		Bucket: aws.String(a.bucketName),
	})
	if err != nil {
		return fmt.Errorf("bucket health check failed: %w", err)
	}
	return nil
}
