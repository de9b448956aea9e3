package storage

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/harulab/interp-practice/pkg/config"
)

// ArtifactStore uploads rendered transcript artifacts (SRT, VTT, JSON)
// to MinIO and hands out URLs for them
type ArtifactStore struct {
	client    *minio.Client
	bucket    string
	publicURL string // Public URL when MinIO sits behind a reverse proxy
}

// contentTypes maps artifact kinds to their MIME types
var contentTypes = map[string]string{
	"srt":  "application/x-subrip",
	"vtt":  "text/vtt",
	"json": "application/json",
	"txt":  "text/plain",
}

// NewArtifactStore creates a MinIO-backed artifact store
func NewArtifactStore(cfg *config.StorageConfig) (*ArtifactStore, error) {
	minioClient, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create MinIO client: %w", err)
	}

	store := &ArtifactStore{
		client:    minioClient,
		bucket:    cfg.BucketName,
		publicURL: cfg.PublicURL,
	}

	ctx := context.Background()
	if err := store.ensureBucketWithPolicy(ctx); err != nil {
		return nil, fmt.Errorf("failed to initialize bucket: %w", err)
	}

	return store, nil
}

// ensureBucketWithPolicy ensures bucket exists and has public read policy
func (s *ArtifactStore) ensureBucketWithPolicy(ctx context.Context) error {
	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return fmt.Errorf("failed to check bucket existence: %w", err)
	}

	if !exists {
		err = s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{})
		if err != nil {
			return fmt.Errorf("failed to create bucket: %w", err)
		}
	}

	// Artifacts are meant to be fetched directly by browsers, so the
	// bucket gets a public read policy
	policy := fmt.Sprintf(`{
		"Version": "2012-10-17",
		"Statement": [
			{
				"Effect": "Allow",
				"Principal": {"AWS": ["*"]},
				"Action": ["s3:GetObject"],
				"Resource": ["arn:aws:s3:::%s/*"]
			}
		]
	}`, s.bucket)

	err = s.client.SetBucketPolicy(ctx, s.bucket, policy)
	if err != nil {
		return fmt.Errorf("failed to set bucket policy: %w", err)
	}

	return nil
}

// ArtifactObjectName builds the object key for a rendered artifact
func ArtifactObjectName(sourceID, sessionID, kind string) string {
	return fmt.Sprintf("transcripts/%s/%s.%s", sourceID, sessionID, kind)
}

// UploadArtifact uploads one rendered artifact and returns its URL
func (s *ArtifactStore) UploadArtifact(ctx context.Context, objectName, content, kind string) (string, error) {
	contentType, ok := contentTypes[kind]
	if !ok {
		contentType = "application/octet-stream"
	}

	reader := bytes.NewReader([]byte(content))
	_, err := s.client.PutObject(ctx, s.bucket, objectName, reader, int64(len(content)), minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload artifact: %w", err)
	}

	return s.objectURL(ctx, objectName)
}

// objectURL returns a URL through which the object can be fetched
func (s *ArtifactStore) objectURL(ctx context.Context, objectName string) (string, error) {
	url, err := s.client.PresignedGetObject(ctx, s.bucket, objectName, 7*24*time.Hour, nil)
	if err != nil {
		return "", fmt.Errorf("failed to generate presigned URL: %w", err)
	}

	urlStr := url.String()

	// When a public URL is configured, swap the internal endpoint for it
	// so clients outside the network can reach the object
	if s.publicURL != "" {
		bucketPos := len(url.Scheme) + 3 + len(url.Host)
		if bucketPos < len(urlStr) {
			return s.publicURL + urlStr[bucketPos:], nil
		}
	}

	return urlStr, nil
}
