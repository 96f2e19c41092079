package s3

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/Ismail-Mert-Eksi/GuvenOto/internal/listing/domain"
	"github.com/Ismail-Mert-Eksi/GuvenOto/internal/platform/logger"
)

// ImageStore keeps listing images in a MinIO bucket. The object key is the
// image handle.
type ImageStore struct {
	client         *minio.Client
	bucket         string
	deleteFailures prometheus.Counter
	logger         *logger.Logger
}

// CountDeleteFailures makes Delete increment c whenever removal fails.
func (s *ImageStore) CountDeleteFailures(c prometheus.Counter) {
	s.deleteFailures = c
}

// NewImageStore connects to MinIO and makes sure the bucket exists.
func NewImageStore(ctx context.Context, endpoint, accessKey, secretKey, bucket string, useSSL bool, log *logger.Logger) (*ImageStore, error) {
	log = log.Named("ImageStore")
	log.Info("Initializing MinIO image store", zap.String("endpoint", endpoint), zap.String("bucket", bucket), zap.Bool("use_ssl", useSSL))

	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: useSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create minio client for endpoint %s: %w", endpoint, err)
	}

	exists, err := client.BucketExists(ctx, bucket)
	if err != nil {
		return nil, fmt.Errorf("failed to check bucket %s: %w", bucket, err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("failed to create bucket %s: %w", bucket, err)
		}
		log.Info("Bucket created", zap.String("bucket", bucket))
	}

	return &ImageStore{client: client, bucket: bucket, logger: log}, nil
}

func (s *ImageStore) Upload(ctx context.Context, data []byte, fileName, folder string) (domain.Image, error) {
	key := objectKey(folder, fileName, uuid.NewString())

	info, err := s.client.PutObject(ctx, s.bucket, key, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType:  http.DetectContentType(data),
		UserMetadata: map[string]string{"original-filename": filepath.Base(fileName)},
	})
	if err != nil {
		s.logger.Error("PutObject failed", zap.String("key", key), zap.Error(err))
		return domain.Image{}, fmt.Errorf("failed to upload object %s: %w", key, err)
	}

	s.logger.Debug("Image uploaded", zap.String("key", info.Key), zap.Int64("size", info.Size))
	return domain.Image{
		URL:     objectURL(s.client.EndpointURL().String(), s.bucket, key),
		ImageID: key,
	}, nil
}

// Delete removes the object. A missing object counts as deleted.
func (s *ImageStore) Delete(ctx context.Context, imageID string) error {
	err := s.client.RemoveObject(ctx, s.bucket, imageID, minio.RemoveObjectOptions{})
	if err == nil {
		return nil
	}
	if minio.ToErrorResponse(err).Code == "NoSuchKey" {
		return nil
	}
	if s.deleteFailures != nil {
		s.deleteFailures.Inc()
	}
	return fmt.Errorf("failed to remove object %s: %w", imageID, err)
}

func objectKey(folder, fileName, id string) string {
	ext := strings.ToLower(filepath.Ext(fileName))
	folder = strings.Trim(folder, "/")
	if folder == "" {
		return id + ext
	}
	return path.Join(folder, id+ext)
}

func objectURL(endpoint, bucket, key string) string {
	return strings.TrimRight(endpoint, "/") + "/" + bucket + "/" + key
}
