package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/bookshelf-labs/bookshelf-api/internal/observability"
	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

const (
	MaxCoverSize    = 5 * 1024 * 1024
	presignedURLTTL = 15 * time.Minute
	coverPathPrefix = "covers"
)

var (
	ErrStorageDisabled      = errors.New("cover storage is disabled")
	ErrFileTooBig           = errors.New("file size exceeds 5MB limit")
	ErrInvalidFileType      = errors.New("invalid file type, only JPEG and PNG images are allowed")
	ErrBucketCreationFailed = errors.New("failed to create storage bucket")
	ErrUploadFailed         = errors.New("failed to upload file")
	ErrDeleteFailed         = errors.New("failed to delete file")
	ErrURLGenerationFailed  = errors.New("failed to generate presigned URL")
	ErrInvalidObjectKey     = errors.New("invalid object key")

	allowedContentTypes = map[string]struct{}{
		"image/jpeg": {},
		"image/png":  {},
	}
)

// DisabledCoverStorage is used when STORAGE_ENABLED is false.
type DisabledCoverStorage struct{}

func (DisabledCoverStorage) UploadCover(context.Context, string, io.Reader, int64) (string, error) {
	return "", ErrStorageDisabled
}

func (DisabledCoverStorage) DeleteCover(context.Context, string) error {
	return ErrStorageDisabled
}

func (DisabledCoverStorage) CoverURL(context.Context, string) (string, error) {
	return "", ErrStorageDisabled
}

type MinIOCoverStorage struct {
	client     *minio.Client
	bucketName string
	initOnce   sync.Once
	initErr    error
}

// NewMinIOCoverStorage creates the client only. The bucket is checked on first use.
func NewMinIOCoverStorage(endpoint, accessKey, secretKey, bucketName string, useSSL bool) (*MinIOCoverStorage, error) {
	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: useSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("create minio client: %w", err)
	}
	return &MinIOCoverStorage{client: client, bucketName: bucketName}, nil
}

func (s *MinIOCoverStorage) lazyInit(ctx context.Context) error {
	s.initOnce.Do(func() {
		s.initErr = s.ensureBucketExists(ctx)
	})
	return s.initErr
}

func (s *MinIOCoverStorage) ensureBucketExists(ctx context.Context) error {
	exists, err := s.client.BucketExists(ctx, s.bucketName)
	if err != nil {
		return fmt.Errorf("%w: check bucket existence: %v", ErrBucketCreationFailed, err)
	}
	if !exists {
		if err := s.client.MakeBucket(ctx, s.bucketName, minio.MakeBucketOptions{}); err != nil {
			return fmt.Errorf("%w: create bucket: %v", ErrBucketCreationFailed, err)
		}
	}
	return nil
}

// Ping reports whether the bucket is reachable. Readiness probes call it.
func (s *MinIOCoverStorage) Ping(ctx context.Context) error {
	exists, err := s.client.BucketExists(ctx, s.bucketName)
	if err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("bucket %q does not exist", s.bucketName)
	}
	return nil
}

// UploadCover stores the image under covers/<bookID>/ and returns its object key.
// The content type is sniffed from the payload, not taken from the client.
func (s *MinIOCoverStorage) UploadCover(ctx context.Context, bookID string, file io.Reader, size int64) (string, error) {
	key, err := s.uploadCover(ctx, bookID, file, size)
	observability.RecordStorageOperation(ctx, "upload", storageOutcome(err))
	return key, err
}

func (s *MinIOCoverStorage) uploadCover(ctx context.Context, bookID string, file io.Reader, size int64) (string, error) {
	if size > MaxCoverSize {
		return "", ErrFileTooBig
	}
	contentType, head, err := sniffImage(file)
	if err != nil {
		return "", err
	}
	if err := s.lazyInit(ctx); err != nil {
		return "", err
	}

	objectKey := fmt.Sprintf("%s/%s/%s%s", coverPathPrefix, bookID, uuid.NewString(), contentTypeToExtension(contentType))
	_, err = s.client.PutObject(ctx, s.bucketName, objectKey, io.MultiReader(bytes.NewReader(head), file), size, minio.PutObjectOptions{
		ContentType: contentType,
		UserMetadata: map[string]string{
			"Book-ID":     bookID,
			"Uploaded-At": time.Now().UTC().Format(time.RFC3339),
		},
	})
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUploadFailed, err)
	}
	observability.RecordStorageUploadBytes(ctx, contentType, size)
	return objectKey, nil
}

func (s *MinIOCoverStorage) DeleteCover(ctx context.Context, objectKey string) error {
	err := s.deleteCover(ctx, objectKey)
	observability.RecordStorageOperation(ctx, "delete", storageOutcome(err))
	return err
}

func (s *MinIOCoverStorage) deleteCover(ctx context.Context, objectKey string) error {
	if strings.TrimSpace(objectKey) == "" {
		return nil
	}
	if err := validateObjectKey(objectKey); err != nil {
		return err
	}
	if err := s.lazyInit(ctx); err != nil {
		return err
	}
	if err := s.client.RemoveObject(ctx, s.bucketName, objectKey, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("%w: %v", ErrDeleteFailed, err)
	}
	return nil
}

func (s *MinIOCoverStorage) CoverURL(ctx context.Context, objectKey string) (string, error) {
	u, err := s.coverURL(ctx, objectKey)
	observability.RecordStorageOperation(ctx, "presign", storageOutcome(err))
	return u, err
}

func (s *MinIOCoverStorage) coverURL(ctx context.Context, objectKey string) (string, error) {
	if err := validateObjectKey(objectKey); err != nil {
		return "", fmt.Errorf("%w: %v", ErrURLGenerationFailed, err)
	}
	if err := s.lazyInit(ctx); err != nil {
		return "", err
	}
	presigned, err := s.client.PresignedGetObject(ctx, s.bucketName, objectKey, presignedURLTTL, url.Values{})
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrURLGenerationFailed, err)
	}
	return presigned.String(), nil
}

// sniffImage reads up to 512 bytes and returns the detected type with the bytes it consumed.
func sniffImage(file io.Reader) (string, []byte, error) {
	buf := make([]byte, 512)
	n, err := io.ReadFull(file, buf)
	if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
		return "", nil, fmt.Errorf("%w: read file for content detection: %v", ErrUploadFailed, err)
	}
	buf = buf[:n]
	detected := strings.ToLower(strings.TrimSpace(http.DetectContentType(buf)))
	if _, ok := allowedContentTypes[detected]; !ok {
		return "", nil, ErrInvalidFileType
	}
	return detected, buf, nil
}

func validateObjectKey(objectKey string) error {
	if strings.TrimSpace(objectKey) == "" || strings.Contains(objectKey, "..") || !strings.HasPrefix(objectKey, coverPathPrefix+"/") {
		return ErrInvalidObjectKey
	}
	return nil
}

func contentTypeToExtension(contentType string) string {
	switch contentType {
	case "image/jpeg":
		return ".jpg"
	case "image/png":
		return ".png"
	default:
		return ""
	}
}

func storageOutcome(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, ErrFileTooBig), errors.Is(err, ErrInvalidFileType), errors.Is(err, ErrInvalidObjectKey):
		return "rejected"
	default:
		return "error"
	}
}
