package services

import (
	"context"
	"fmt"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// DownloadURLExpiry bounds how long a presigned document link stays valid.
const DownloadURLExpiry = 15 * time.Minute

// StorageService resolves document storage locations into time-limited
// download URLs. The bucket itself is written by the ingestion pipeline.
type StorageService struct {
	client *minio.Client
	bucket string
}

func NewStorageService(endpoint, accessKey, secretKey, bucket string, useSSL bool) (*StorageService, error) {
	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: useSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("init minio client: %w", err)
	}
	return &StorageService{client: client, bucket: bucket}, nil
}

// PresignDownload generates a pre-signed GET URL for a stored document.
func (s *StorageService) PresignDownload(ctx context.Context, location string) (string, error) {
	url, err := s.client.PresignedGetObject(ctx, s.bucket, location, DownloadURLExpiry, nil)
	if err != nil {
		return "", fmt.Errorf("presign get: %w", err)
	}
	return url.String(), nil
}
